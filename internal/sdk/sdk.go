// Package sdk defines the contracts between the desktop core and pluggable
// apps, shells, and screens.
//
// Every pluggable kind is a descriptor/runtime pair: the descriptor is cheap
// identity metadata plus factory values that are only invoked when a launch
// or push is requested. Thousands of plugins can be registered without
// materializing any UI.
package sdk

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GriffinCanCode/TermDesk/internal/database"
	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
	"github.com/GriffinCanCode/TermDesk/internal/worker"
)

// Widget is the mountable UI abstraction. The core never looks inside one;
// it only mounts, updates, and tears them down.
type Widget = tea.Model

// Context is handed to a plugin's content factory at launch time. It carries
// the process identity assigned by the owning service and the gateway back
// into the services layer.
type Context struct {
	Type types.ProcessType

	// ProcessID is the instance-numbered id of this launch ("notepad",
	// "notepad_2").
	ProcessID string

	// PluginID is the descriptor id, shared by every instance of the plugin.
	// Stable across launches, so it is the right owner for shared resources
	// like databases.
	PluginID string

	UID      string
	Services Services
}

// Services is the narrow surface of the services manager that plugin code
// may touch. Registries are never exposed directly; every cross-service
// interaction goes through these methods.
type Services interface {
	// Logger returns the ambient structured logger.
	Logger() *logging.Logger

	// Bus returns the desktop event bus.
	Bus() *events.Bus

	// OpenDatabase opens (or returns) the named database for the owner.
	// A second owner requesting a name already held by another is an error.
	OpenDatabase(owner, name string) (*database.Process, error)

	// LaunchApp requests a launch of the registered app with the plain id.
	LaunchApp(plainID string) error

	// RegisteredApps lists the discovered app descriptors, broken included.
	RegisteredApps() []AppDescriptor

	// RecentLogs replays the default logger process's ring buffer.
	RecentLogs() []types.LogRecord

	// AppForFile resolves which registered app opens the given file.
	AppForFile(path string) (plainID string, ok bool)

	// Submit schedules fn on the tracked worker pool, so plugin background
	// work stays visible to the watchdog. Blocking workers hold an OS thread
	// for the duration and are exempt from the elapsed-time ceiling.
	Submit(meta worker.Meta, fn worker.Fn)

	// DataDir returns the root of the user data directory.
	DataDir() string
}

// ContentFactory materializes a plugin's main content widget. It is stored
// at registration time and invoked once per launch.
type ContentFactory func(ctx Context) (Widget, error)

// WidgetFactory builds a bare decorative widget for a custom mount point.
type WidgetFactory func() Widget
