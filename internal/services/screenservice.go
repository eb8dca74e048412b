package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/TermDesk/internal/events"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/process"
	"github.com/GriffinCanCode/TermDesk/internal/sdk"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
)

// ScreenPushed is the payload of TopicScreenPushed.
type ScreenPushed struct {
	ScreenID  string
	ProcessID string
	Root      sdk.Widget
}

// ScreenService registers screen descriptors and pushes built screens to the
// root program. Screens are compiled in; there is no on-disk discovery.
type ScreenService struct {
	log *logging.Logger
	bus *events.Bus

	services sdk.Services

	mu    sync.RWMutex
	descs map[string]sdk.ScreenDescriptor
	reg   *process.Registry[sdk.Widget]
	stack []string
}

// NewScreenService constructs the service.
func NewScreenService(log *logging.Logger, bus *events.Bus) *ScreenService {
	return &ScreenService{
		log:   log.Named("screens"),
		bus:   bus,
		descs: make(map[string]sdk.ScreenDescriptor),
		reg:   process.NewRegistry[sdk.Widget](),
	}
}

func (s *ScreenService) ID() string { return "screens" }

// SetServices wires the gateway handed to screen factories.
func (s *ScreenService) SetServices(services sdk.Services) { s.services = services }

// Register adds a screen descriptor. Invalid descriptors are rejected
// outright; a screen that cannot build is useless.
func (s *ScreenService) Register(desc sdk.ScreenDescriptor) error {
	if violations := desc.Validate(); len(violations) > 0 {
		return process.ValidationError("screen "+desc.ID, violations)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.descs[desc.ID]; exists {
		return fmt.Errorf("screen %q already registered", desc.ID)
	}
	s.descs[desc.ID] = desc
	return nil
}

func (s *ScreenService) Start(ctx context.Context) error { return nil }

// Push builds the screen and publishes it for the root program to install.
func (s *ScreenService) Push(screenID string) error {
	s.mu.RLock()
	desc, ok := s.descs[screenID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScreen, screenID)
	}

	processID, instance := s.reg.NextProcessID(screenID)
	identity := process.NewIdentity(types.ProcessScreen, processID, "screenprocess")
	root, err := desc.NewScreen(sdk.Context{
		Type:      types.ProcessScreen,
		ProcessID: processID,
		PluginID:  screenID,
		UID:       identity.UID(),
		Services:  s.services,
	})
	if err != nil {
		s.reg.Release(screenID, instance)
		return fmt.Errorf("screen %q build: %w", screenID, err)
	}
	if err := s.reg.Add(processID, root); err != nil {
		s.reg.Release(screenID, instance)
		return err
	}

	s.mu.Lock()
	s.stack = append(s.stack, processID)
	s.mu.Unlock()

	s.bus.Publish(events.TopicScreenPushed, ScreenPushed{
		ScreenID:  screenID,
		ProcessID: processID,
		Root:      root,
	})
	s.log.Info("screen pushed", zap.String("screen", processID), zap.String("uid", identity.UID()))
	return nil
}

// Stack returns the pushed screen process ids, oldest first.
func (s *ScreenService) Stack() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.stack))
	copy(out, s.stack)
	return out
}

// Stop drops every pushed screen.
func (s *ScreenService) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stack = nil
	s.mu.Unlock()
	s.reg.Clear()
	return nil
}
