package loader

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
)

// Manifest is the on-disk description of one plugin unit. The factory field
// names an entry in the compile-time registry; everything else is identity
// metadata and presentation overrides.
type Manifest struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Author      string `toml:"author"`
	Icon        string `toml:"icon"`
	Description string `toml:"description"`

	// Kind is "app" or "shell". Units found under an app directory default
	// to "app" and under a shell directory to "shell".
	Kind string `toml:"kind"`

	// Factory names the registered content or session factory.
	Factory string `toml:"factory"`

	LaunchMode string `toml:"launch_mode"`

	Window *types.WindowOverrides `toml:"window"`
	Styles types.WindowStyles     `toml:"styles"`

	// Mounts maps mount point names to registered widget factory names.
	Mounts map[string]string `toml:"mounts"`
}

func readManifest(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}

// appDescriptor resolves a manifest into a launchable app descriptor.
// Resolution failures (unknown factory, unknown mount factory) surface as
// errors so the scan records them against the unit.
func appDescriptor(m Manifest) (sdk.AppDescriptor, error) {
	if m.Kind != "" && m.Kind != "app" {
		return sdk.AppDescriptor{}, fmt.Errorf("manifest kind %q is not an app", m.Kind)
	}
	launch := types.LaunchWindow
	if m.LaunchMode != "" {
		launch = types.LaunchMode(m.LaunchMode)
	}
	desc := sdk.AppDescriptor{
		ID:          m.ID,
		Name:        m.Name,
		Author:      m.Author,
		Icon:        m.Icon,
		Description: m.Description,
		Launch:      launch,
		Window:      m.Window,
		Styles:      m.Styles,
	}
	if m.Factory != "" {
		f, ok := appFactory(m.Factory)
		if !ok {
			return sdk.AppDescriptor{}, fmt.Errorf("unknown app factory %q", m.Factory)
		}
		desc.NewContent = f
	}
	if len(m.Mounts) > 0 {
		desc.Mounts = make(map[types.MountPoint]sdk.WidgetFactory, len(m.Mounts))
		for point, name := range m.Mounts {
			f, ok := mountFactory(name)
			if !ok {
				return sdk.AppDescriptor{}, fmt.Errorf("unknown mount factory %q", name)
			}
			desc.Mounts[types.MountPoint(point)] = f
		}
	}
	return desc, nil
}

// shellDescriptor resolves a manifest into a shell descriptor.
func shellDescriptor(m Manifest) (sdk.ShellDescriptor, error) {
	if m.Kind != "" && m.Kind != "shell" {
		return sdk.ShellDescriptor{}, fmt.Errorf("manifest kind %q is not a shell", m.Kind)
	}
	desc := sdk.ShellDescriptor{
		ID:          m.ID,
		Name:        m.Name,
		Author:      m.Author,
		Icon:        m.Icon,
		Description: m.Description,
	}
	if m.Factory != "" {
		f, ok := shellFactory(m.Factory)
		if !ok {
			return sdk.ShellDescriptor{}, fmt.Errorf("unknown shell factory %q", m.Factory)
		}
		desc.NewSession = f
	}
	return desc, nil
}
