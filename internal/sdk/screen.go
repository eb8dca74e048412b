package sdk

import "github.com/GriffinCanCode/TermDesk/internal/process"

// ScreenFactory builds a screen's root widget for one push.
type ScreenFactory func(ctx Context) (Widget, error)

// ScreenDescriptor is the identity record for a pushable screen.
type ScreenDescriptor struct {
	ID   string
	Name string

	// NewScreen builds the screen widget. Required.
	NewScreen ScreenFactory
}

// Validate checks the screen contract.
func (d ScreenDescriptor) Validate() []process.Violation {
	var c process.Checker
	c.RequireFunc("new_screen", d.NewScreen == nil)
	c.RequireString("id", d.ID)
	c.RequireString("name", d.Name)
	return c.Violations()
}
