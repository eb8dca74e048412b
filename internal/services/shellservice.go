package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/TermDesk/internal/config"
	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/loader"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/process"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/shared/paths"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
)

// DefaultShellID is activated at startup when present; otherwise the first
// usable shell in id order wins.
const DefaultShellID = "basic"

// ShellFurniture is the payload of TopicShellReady: the widgets the root
// program places around the desktop.
type ShellFurniture struct {
	ShellID   string
	Taskbar   sdk.Widget
	StartMenu sdk.Widget
}

// ShellService discovers shell plugins and activates one session.
type ShellService struct {
	log *logging.Logger
	bus *events.Bus

	dirs     []string
	services sdk.Services

	mu       sync.RWMutex
	descs    map[string]sdk.ShellDescriptor
	failures map[string]error
	active   sdk.ShellSession
	activeID string
}

// NewShellService constructs the service.
func NewShellService(log *logging.Logger, bus *events.Bus, layout paths.Layout, cfg config.PluginConfig) *ShellService {
	dirs := append([]string{layout.Shells()}, cfg.ShellDirs...)
	return &ShellService{
		log:   log.Named("shells"),
		bus:   bus,
		dirs:  dirs,
		descs: make(map[string]sdk.ShellDescriptor),
	}
}

func (s *ShellService) ID() string { return "shells" }

// SetServices wires the gateway handed to shell session factories.
func (s *ShellService) SetServices(services sdk.Services) { s.services = services }

// Start scans for shells and activates the default. A desktop without any
// usable shell cannot boot.
func (s *ShellService) Start(ctx context.Context) error {
	result := loader.ScanShells(s.log, s.dirs)
	s.mu.Lock()
	s.descs = result.Shells
	s.failures = result.Failures
	s.mu.Unlock()

	for unit, err := range result.Failures {
		s.log.Warn("shell unit failed", zap.String("unit", unit), zap.Error(err))
	}
	return s.Activate(DefaultShellID)
}

// Activate builds a session for the shell id (or the first usable shell when
// the id is unknown) and publishes its furniture.
func (s *ShellService) Activate(shellID string) error {
	desc, ok := s.usable(shellID)
	if !ok {
		return ErrNoShell
	}

	identity := process.NewIdentity(types.ProcessShell, desc.ID, "shellprocess")
	session, err := desc.NewSession(sdk.Context{
		Type:      types.ProcessShell,
		ProcessID: desc.ID,
		PluginID:  desc.ID,
		UID:       identity.UID(),
		Services:  s.services,
	})
	if err != nil {
		return fmt.Errorf("shell %q session: %w", desc.ID, err)
	}
	if session == nil {
		return fmt.Errorf("shell %q session factory returned nothing", desc.ID)
	}

	s.mu.Lock()
	s.active = session
	s.activeID = desc.ID
	s.mu.Unlock()

	s.bus.Publish(events.TopicShellReady, ShellFurniture{
		ShellID:   desc.ID,
		Taskbar:   session.Taskbar(),
		StartMenu: session.StartMenu(),
	})
	s.log.Info("shell activated", zap.String("shell", desc.ID), zap.String("uid", identity.UID()))
	return nil
}

// usable resolves the preferred id, falling back to the first non-broken
// shell in id order.
func (s *ShellService) usable(preferred string) (sdk.ShellDescriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, ok := s.descs[preferred]; ok && !d.Broken {
		return d, true
	}
	ids := make([]string, 0, len(s.descs))
	for id := range s.descs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if d := s.descs[id]; !d.Broken {
			return d, true
		}
	}
	return sdk.ShellDescriptor{}, false
}

// Registered returns every discovered shell descriptor sorted by id.
func (s *ShellService) Registered() []sdk.ShellDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]sdk.ShellDescriptor, 0, len(s.descs))
	for _, d := range s.descs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Active returns the live session and its shell id.
func (s *ShellService) Active() (sdk.ShellSession, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.activeID
}

// Stop drops the active session.
func (s *ShellService) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.active = nil
	s.activeID = ""
	s.mu.Unlock()
	return nil
}
