package services

import "errors"

var (
	// ErrScanInFlight rejects a plugin rescan while one is already running.
	ErrScanInFlight = errors.New("plugin scan already in flight")

	// ErrOwnerConflict rejects a database open when the name is held by a
	// different owner.
	ErrOwnerConflict = errors.New("database name is owned by another process")

	// ErrNotLaunchable marks launch modes that are defined but not built.
	ErrNotLaunchable = errors.New("launch mode is not implemented")

	// ErrUnknownApp rejects a launch of an id no scan has registered.
	ErrUnknownApp = errors.New("app id is not registered")

	// ErrAppBroken rejects a launch of a descriptor that failed validation.
	ErrAppBroken = errors.New("app failed validation and cannot launch")

	// ErrNilContent marks a content factory that returned no widget for a
	// window-mode launch.
	ErrNilContent = errors.New("content factory returned no widget")

	// ErrNoShell signals that no usable shell descriptor survived the scan.
	ErrNoShell = errors.New("no usable shell is registered")

	// ErrUnknownScreen rejects a push of an unregistered screen id.
	ErrUnknownScreen = errors.New("screen id is not registered")
)
