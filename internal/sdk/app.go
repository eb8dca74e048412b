package sdk

import (
	"github.com/GriffinCanCode/TermDesk/internal/process"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
)

// AppDescriptor is the lightweight identity record for a discoverable app.
// It stores factory values, never instances; nothing is materialized until
// a launch is requested.
type AppDescriptor struct {
	ID          string
	Name        string
	Author      string
	Icon        string
	Description string

	Launch types.LaunchMode

	// NewContent builds the app's main widget for one launch. Required for
	// window-mode apps.
	NewContent ContentFactory

	// Window optionally overrides the default window settings bundle.
	Window *types.WindowOverrides

	// Styles is an opaque style bag forwarded to the window.
	Styles types.WindowStyles

	// Mounts optionally fills named frame slots with decorative widgets.
	Mounts map[types.MountPoint]WidgetFactory

	// Broken marks a descriptor that failed validation. Broken apps may
	// still be listed (disabled) but are never launchable.
	Broken bool

	// Missing records the member names that failed validation.
	Missing []string
}

// Validate runs the two-stage contract check. Stage 1 covers required
// factories, stage 2 required identity attributes. The descriptor itself is
// not mutated; callers mark Broken/Missing from the result.
func (d AppDescriptor) Validate() []process.Violation {
	var c process.Checker
	if d.Launch != types.LaunchDaemon {
		c.RequireFunc("new_content", d.NewContent == nil)
	}
	c.RequireString("id", d.ID)
	c.RequireString("name", d.Name)
	c.Require("launch_mode", d.Launch.Valid(), "must be one of window, fullscreen, daemon")
	for point := range d.Mounts {
		c.Require("mounts", point.Valid(), "unknown mount point "+string(point))
	}
	return c.Violations()
}

// MarkBroken returns a copy flagged broken with the violation names recorded.
func (d AppDescriptor) MarkBroken(violations []process.Violation) AppDescriptor {
	d.Broken = true
	names := make([]string, len(violations))
	for i, v := range violations {
		names[i] = v.Name
	}
	d.Missing = names
	return d
}
