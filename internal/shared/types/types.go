// Package types defines the shared vocabulary of the desktop: process kinds,
// launch modes, window settings bundles, log records, and notifications.
//
// Everything here is plain data. Behavior lives in the owning packages.
package types

import "time"

// ============================================================================
// Processes
// ============================================================================

// ProcessType tags every unit of running plugin code.
type ProcessType string

const (
	ProcessApp     ProcessType = "app"
	ProcessService ProcessType = "service"
	ProcessScreen  ProcessType = "screen"
	ProcessShell   ProcessType = "shell"
	ProcessWindow  ProcessType = "window"
)

// LaunchMode selects how an app process materializes.
//
// Fullscreen and Daemon are defined but intentionally unimplemented; a launch
// requesting them fails with a descriptive error rather than guessing at a
// behavior.
type LaunchMode string

const (
	LaunchWindow     LaunchMode = "window"
	LaunchFullscreen LaunchMode = "fullscreen"
	LaunchDaemon     LaunchMode = "daemon"
)

// Valid reports whether m is one of the defined launch modes.
func (m LaunchMode) Valid() bool {
	switch m {
	case LaunchWindow, LaunchFullscreen, LaunchDaemon:
		return true
	}
	return false
}

// ============================================================================
// Windows
// ============================================================================

// MountPoint names a fixed slot on the window frame that a plugin may fill
// with a custom widget.
type MountPoint string

const (
	MountAboveTopBar    MountPoint = "above_topbar"
	MountBelowTopBar    MountPoint = "below_topbar"
	MountLeftPane       MountPoint = "left_pane"
	MountRightPane      MountPoint = "right_pane"
	MountAboveBottomBar MountPoint = "above_bottombar"
	MountBelowBottomBar MountPoint = "below_bottombar"
)

// Valid reports whether p is one of the named frame slots.
func (p MountPoint) Valid() bool {
	switch p {
	case MountAboveTopBar, MountBelowTopBar, MountLeftPane,
		MountRightPane, MountAboveBottomBar, MountBelowBottomBar:
		return true
	}
	return false
}

// WindowSettings is the full, required settings bundle for a window. Every
// field always carries a value; plugin overrides are applied on top via
// WindowOverrides.
type WindowSettings struct {
	Width              int
	Height             int
	StartingHorizontal string // "left", "center", "right"
	StartingVertical   string // "top", "middle", "bottom"
	StartOpen          bool
	AllowResize        bool
	AllowMaximize      bool
	ShowTitle          bool
	Animated           bool
	Icon               string
}

// DefaultWindowSettings returns the complete default bundle used when a
// plugin declares no overrides.
func DefaultWindowSettings() WindowSettings {
	return WindowSettings{
		Width:              48,
		Height:             16,
		StartingHorizontal: "center",
		StartingVertical:   "middle",
		StartOpen:          true,
		AllowResize:        true,
		AllowMaximize:      true,
		ShowTitle:          true,
		Animated:           true,
		Icon:               "❓",
	}
}

// WindowOverrides is a partial settings bundle. Nil fields leave the default
// untouched; set fields win.
type WindowOverrides struct {
	Width              *int
	Height             *int
	StartingHorizontal *string
	StartingVertical   *string
	StartOpen          *bool
	AllowResize        *bool
	AllowMaximize      *bool
	ShowTitle          *bool
	Animated           *bool
	Icon               *string
}

// Apply shallow-merges o onto s and returns the result. s is not modified.
func (s WindowSettings) Apply(o *WindowOverrides) WindowSettings {
	if o == nil {
		return s
	}
	if o.Width != nil {
		s.Width = *o.Width
	}
	if o.Height != nil {
		s.Height = *o.Height
	}
	if o.StartingHorizontal != nil {
		s.StartingHorizontal = *o.StartingHorizontal
	}
	if o.StartingVertical != nil {
		s.StartingVertical = *o.StartingVertical
	}
	if o.StartOpen != nil {
		s.StartOpen = *o.StartOpen
	}
	if o.AllowResize != nil {
		s.AllowResize = *o.AllowResize
	}
	if o.AllowMaximize != nil {
		s.AllowMaximize = *o.AllowMaximize
	}
	if o.ShowTitle != nil {
		s.ShowTitle = *o.ShowTitle
	}
	if o.Animated != nil {
		s.Animated = *o.Animated
	}
	if o.Icon != nil {
		s.Icon = *o.Icon
	}
	return s
}

// WindowStyles is an opaque style bag handed through to the UI toolkit.
type WindowStyles map[string]string

// ============================================================================
// Logging
// ============================================================================

// LogRecord is one entry in a logger process's ring buffer and on-disk file.
type LogRecord struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Logger  string         `json:"logger"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// ============================================================================
// Notifications
// ============================================================================

// Severity grades a desktop notification.
type Severity string

const (
	SeverityInfo    Severity = "information"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a transient, non-blocking toast surfaced on the desktop.
type Notification struct {
	Severity Severity
	Message  string
	Timeout  time.Duration
}
