// Package loader turns plugin directories into validated descriptor
// mappings, tolerating individual unit failures.
//
// Go cannot import arbitrary source files at runtime, so a plugin unit is a
// TOML manifest naming a content factory from the compile-time registry
// below. Built-in plugins register complete descriptors and flow through the
// same validation pipeline as on-disk units.
package loader

import (
	"fmt"
	"sync"

	"github.com/GriffinCanCode/TermDesk/internal/sdk"
)

var (
	registryMu     sync.RWMutex
	appFactories   = make(map[string]sdk.ContentFactory)
	shellFactories = make(map[string]sdk.SessionFactory)
	mountFactories = make(map[string]sdk.WidgetFactory)
	builtinApps    []sdk.AppDescriptor
	builtinShells  []sdk.ShellDescriptor
)

// RegisterAppFactory makes a content factory resolvable from manifests.
// Called from init in the packages providing built-in content.
func RegisterAppFactory(name string, f sdk.ContentFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := appFactories[name]; exists {
		panic(fmt.Sprintf("loader: app factory %q registered twice", name))
	}
	appFactories[name] = f
}

// RegisterShellFactory makes a session factory resolvable from manifests.
func RegisterShellFactory(name string, f sdk.SessionFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := shellFactories[name]; exists {
		panic(fmt.Sprintf("loader: shell factory %q registered twice", name))
	}
	shellFactories[name] = f
}

// RegisterMountFactory makes a mount-point widget factory resolvable from
// manifests.
func RegisterMountFactory(name string, f sdk.WidgetFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := mountFactories[name]; exists {
		panic(fmt.Sprintf("loader: mount factory %q registered twice", name))
	}
	mountFactories[name] = f
}

// RegisterBuiltinApp queues a complete descriptor as an in-memory unit for
// every future app scan.
func RegisterBuiltinApp(desc sdk.AppDescriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	builtinApps = append(builtinApps, desc)
}

// RegisterBuiltinShell queues a complete descriptor as an in-memory unit for
// every future shell scan.
func RegisterBuiltinShell(desc sdk.ShellDescriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	builtinShells = append(builtinShells, desc)
}

func appFactory(name string) (sdk.ContentFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := appFactories[name]
	return f, ok
}

func shellFactory(name string) (sdk.SessionFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := shellFactories[name]
	return f, ok
}

func mountFactory(name string) (sdk.WidgetFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := mountFactories[name]
	return f, ok
}

func snapshotBuiltinApps() []sdk.AppDescriptor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]sdk.AppDescriptor, len(builtinApps))
	copy(out, builtinApps)
	return out
}

func snapshotBuiltinShells() []sdk.ShellDescriptor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]sdk.ShellDescriptor, len(builtinShells))
	copy(out, builtinShells)
	return out
}
