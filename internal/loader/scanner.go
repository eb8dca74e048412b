package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/process"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
)

// unit is one discoverable plugin candidate: a bare manifest file or a
// directory holding a well-known entry manifest.
type unit struct {
	// name is the base name without extension. Unique per scan.
	name string
	// manifest is the absolute path to the unit's manifest file.
	manifest string
}

// entry manifests recognized inside a unit directory, in priority order.
var dirEntryNames = []string{"app.toml", "main.toml", "shell.toml"}

// collectUnits enumerates units across the search dirs. Names beginning with
// an underscore are skipped. A base name seen twice disqualifies every
// occurrence and records exactly one failure for the name.
func collectUnits(dirs []string, failures map[string]error) []unit {
	byName := make(map[string][]unit)
	var order []string

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				failures[dir] = fmt.Errorf("read plugin dir: %w", err)
			}
			continue
		}
		for _, entry := range entries {
			base := entry.Name()
			if strings.HasPrefix(base, "_") {
				continue
			}
			var u unit
			switch {
			case entry.IsDir():
				path, ok := dirEntry(filepath.Join(dir, base))
				if !ok {
					continue
				}
				u = unit{name: base, manifest: path}
			case strings.HasSuffix(base, ".toml"):
				u = unit{
					name:     strings.TrimSuffix(base, ".toml"),
					manifest: filepath.Join(dir, base),
				}
			default:
				continue
			}
			if _, seen := byName[u.name]; !seen {
				order = append(order, u.name)
			}
			byName[u.name] = append(byName[u.name], u)
		}
	}

	units := make([]unit, 0, len(order))
	for _, name := range order {
		group := byName[name]
		if len(group) > 1 {
			paths := make([]string, len(group))
			for i, g := range group {
				paths[i] = g.manifest
			}
			sort.Strings(paths)
			failures[name] = fmt.Errorf(
				"unit name %q appears %d times (%s); none registered",
				name, len(group), strings.Join(paths, ", "))
			continue
		}
		units = append(units, group[0])
	}
	return units
}

func dirEntry(dir string) (string, bool) {
	for _, name := range dirEntryNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// AppScan is the outcome of one pass over the app search dirs: validated
// descriptors keyed by plain id, plus per-unit failures. Broken descriptors
// are registered (disabled) rather than dropped so shells can surface them.
type AppScan struct {
	Apps     map[string]sdk.AppDescriptor
	Failures map[string]error
}

// ScanApps walks the search dirs plus the built-in registry and produces the
// app descriptor mapping. Unit failures never abort the scan.
func ScanApps(log *logging.Logger, dirs []string) AppScan {
	scan := AppScan{
		Apps:     make(map[string]sdk.AppDescriptor),
		Failures: make(map[string]error),
	}

	for _, desc := range snapshotBuiltinApps() {
		admitApp(log, &scan, desc.ID, desc)
	}

	for _, u := range collectUnits(dirs, scan.Failures) {
		m, err := readManifest(u.manifest)
		if err != nil {
			scan.Failures[u.name] = err
			continue
		}
		desc, err := appDescriptor(m)
		if err != nil {
			scan.Failures[u.name] = err
			continue
		}
		admitApp(log, &scan, u.name, desc)
	}

	log.Info("app scan complete",
		zap.Int("registered", len(scan.Apps)),
		zap.Int("failed", len(scan.Failures)))
	return scan
}

// admitApp validates a descriptor and registers it. Broken descriptors are
// kept, flagged, and never launchable; the validation error is also recorded
// against the unit so failure reporting covers them. A plain id claimed by an
// earlier unit wins; the later unit records a failure.
func admitApp(log *logging.Logger, scan *AppScan, unitName string, desc sdk.AppDescriptor) {
	if violations := desc.Validate(); len(violations) > 0 {
		desc = desc.MarkBroken(violations)
		scan.Failures[unitName] = process.ValidationError(fmt.Sprintf("app unit %q", unitName), violations)
		log.Warn("app failed validation",
			zap.String("unit", unitName),
			zap.String("missing", process.ViolationNames(violations)))
	}
	key := desc.ID
	if key == "" {
		scan.Failures[unitName] = fmt.Errorf("app unit %q declares no id", unitName)
		return
	}
	if prior, exists := scan.Apps[key]; exists {
		scan.Failures[unitName] = fmt.Errorf(
			"app id %q already registered by %q", key, prior.Name)
		return
	}
	scan.Apps[key] = desc
}

// ShellScan mirrors AppScan for shell plugins.
type ShellScan struct {
	Shells   map[string]sdk.ShellDescriptor
	Failures map[string]error
}

// ScanShells walks the shell search dirs plus the built-in registry.
func ScanShells(log *logging.Logger, dirs []string) ShellScan {
	scan := ShellScan{
		Shells:   make(map[string]sdk.ShellDescriptor),
		Failures: make(map[string]error),
	}

	for _, desc := range snapshotBuiltinShells() {
		admitShell(log, &scan, desc.ID, desc)
	}

	for _, u := range collectUnits(dirs, scan.Failures) {
		m, err := readManifest(u.manifest)
		if err != nil {
			scan.Failures[u.name] = err
			continue
		}
		desc, err := shellDescriptor(m)
		if err != nil {
			scan.Failures[u.name] = err
			continue
		}
		admitShell(log, &scan, u.name, desc)
	}

	log.Info("shell scan complete",
		zap.Int("registered", len(scan.Shells)),
		zap.Int("failed", len(scan.Failures)))
	return scan
}

func admitShell(log *logging.Logger, scan *ShellScan, unitName string, desc sdk.ShellDescriptor) {
	if violations := desc.Validate(); len(violations) > 0 {
		desc = desc.MarkBroken(violations)
		scan.Failures[unitName] = process.ValidationError(fmt.Sprintf("shell unit %q", unitName), violations)
		log.Warn("shell failed validation",
			zap.String("unit", unitName),
			zap.String("missing", process.ViolationNames(violations)))
	}
	key := desc.ID
	if key == "" {
		scan.Failures[unitName] = fmt.Errorf("shell unit %q declares no id", unitName)
		return
	}
	if prior, exists := scan.Shells[key]; exists {
		scan.Failures[unitName] = fmt.Errorf(
			"shell id %q already registered by %q", key, prior.Name)
		return
	}
	scan.Shells[key] = desc
}
