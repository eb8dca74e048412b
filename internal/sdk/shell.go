package sdk

import "github.com/GriffinCanCode/TermDesk/internal/process"

// ShellSession is the runtime side of a shell plugin: it materializes the
// desktop furniture for one session.
type ShellSession interface {
	// Taskbar returns the widget rendered along the bottom of the screen.
	Taskbar() Widget

	// StartMenu returns the widget toggled by the start button.
	StartMenu() Widget
}

// SessionFactory builds a shell session for one push.
type SessionFactory func(ctx Context) (ShellSession, error)

// ShellDescriptor is the identity record for a discoverable shell.
type ShellDescriptor struct {
	ID          string
	Name        string
	Author      string
	Icon        string
	Description string

	// NewSession builds the runtime session. Required.
	NewSession SessionFactory

	Broken  bool
	Missing []string
}

// Validate runs the two-stage contract check for shells.
func (d ShellDescriptor) Validate() []process.Violation {
	var c process.Checker
	c.RequireFunc("new_session", d.NewSession == nil)
	c.RequireString("id", d.ID)
	c.RequireString("name", d.Name)
	return c.Violations()
}

// MarkBroken returns a copy flagged broken with the violation names recorded.
func (d ShellDescriptor) MarkBroken(violations []process.Violation) ShellDescriptor {
	d.Broken = true
	names := make([]string, len(violations))
	for i, v := range violations {
		names[i] = v.Name
	}
	d.Missing = names
	return d
}
