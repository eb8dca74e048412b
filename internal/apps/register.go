// Package apps bundles the built-in applications. Importing it registers
// their descriptors and content factories with the loader; discovery then
// treats them exactly like on-disk plugin units.
package apps

import (
	"github.com/GriffinCanCode/TermDesk/internal/loader"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
)

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func init() {
	loader.RegisterAppFactory("calculator", newCalculator)
	loader.RegisterBuiltinApp(sdk.AppDescriptor{
		ID:          "calculator",
		Name:        "Calculator",
		Author:      "TermDesk",
		Icon:        "🧮",
		Description: "Basic arithmetic",
		Launch:      types.LaunchWindow,
		NewContent:  newCalculator,
		Window:      &types.WindowOverrides{Width: intp(24), Height: intp(9), Icon: strp("🧮")},
	})

	loader.RegisterAppFactory("clock", newClock)
	loader.RegisterBuiltinApp(sdk.AppDescriptor{
		ID:          "clock",
		Name:        "Clock",
		Author:      "TermDesk",
		Icon:        "🕐",
		Description: "Live wall clock",
		Launch:      types.LaunchWindow,
		NewContent:  newClock,
		Window:      &types.WindowOverrides{Width: intp(22), Height: intp(3), Icon: strp("🕐")},
	})

	loader.RegisterAppFactory("notepad", newNotepad)
	loader.RegisterBuiltinApp(sdk.AppDescriptor{
		ID:          "notepad",
		Name:        "Notepad",
		Author:      "TermDesk",
		Icon:        "📝",
		Description: "Plain text editor with sqlite-backed autosave",
		Launch:      types.LaunchWindow,
		NewContent:  newNotepad,
		Window:      &types.WindowOverrides{Width: intp(60), Height: intp(18), Icon: strp("📝")},
	})

	loader.RegisterAppFactory("sysinfo", newSysInfo)
	loader.RegisterBuiltinApp(sdk.AppDescriptor{
		ID:          "sysinfo",
		Name:        "System Info",
		Author:      "TermDesk",
		Icon:        "📊",
		Description: "Host, CPU, and memory overview",
		Launch:      types.LaunchWindow,
		NewContent:  newSysInfo,
		Window:      &types.WindowOverrides{Width: intp(44), Height: intp(12), Icon: strp("📊")},
	})

	loader.RegisterAppFactory("logviewer", newLogViewer)
	loader.RegisterBuiltinApp(sdk.AppDescriptor{
		ID:          "logviewer",
		Name:        "Log Viewer",
		Author:      "TermDesk",
		Icon:        "📜",
		Description: "Live desktop log stream",
		Launch:      types.LaunchWindow,
		NewContent:  newLogViewer,
		Window:      &types.WindowOverrides{Width: intp(72), Height: intp(20), Icon: strp("📜")},
	})

	loader.RegisterAppFactory("explorer", newExplorer)
	loader.RegisterBuiltinApp(sdk.AppDescriptor{
		ID:          "explorer",
		Name:        "File Explorer",
		Author:      "TermDesk",
		Icon:        "📁",
		Description: "Browse, search, and open files",
		Launch:      types.LaunchWindow,
		NewContent:  newExplorer,
		Window:      &types.WindowOverrides{Width: intp(64), Height: intp(20), Icon: strp("📁")},
	})
}
