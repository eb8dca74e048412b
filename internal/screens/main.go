// Package screens defines the compiled-in screens pushed through the screen
// service.
package screens

import (
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/services"
	"github.com/GriffinCanCode/TermDesk/internal/ui"
)

// MainID is the screen pushed once all services report started.
const MainID = "main"

// Main returns the descriptor for the primary desktop screen. The manager is
// captured so the desktop can pick up shell furniture that was activated
// before the screen existed.
func Main(m *services.Manager) sdk.ScreenDescriptor {
	return sdk.ScreenDescriptor{
		ID:   MainID,
		Name: "Main Screen",
		NewScreen: func(ctx sdk.Context) (sdk.Widget, error) {
			d := ui.NewDesktop(ctx.Services.Bus())
			if session, shellID := m.Shells.Active(); session != nil {
				d.SetFurniture(services.ShellFurniture{
					ShellID:   shellID,
					Taskbar:   session.Taskbar(),
					StartMenu: session.StartMenu(),
				})
			}
			return d, nil
		},
	}
}
