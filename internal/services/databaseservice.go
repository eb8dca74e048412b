package services

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/TermDesk/internal/database"
	"github.com/GriffinCanCode/TermDesk/internal/logging"
	"github.com/GriffinCanCode/TermDesk/internal/process"
	"github.com/GriffinCanCode/TermDesk/internal/shared/paths"
)

// DatabaseService hands out one database process per requested name. The
// first opener becomes the owner; any other owner asking for the same name is
// refused so two plugins cannot silently share a file.
type DatabaseService struct {
	log    *logging.Logger
	layout paths.Layout

	mu     sync.Mutex
	owners map[string]string
	reg    *process.Registry[*database.Process]
}

// NewDatabaseService constructs the service without opening anything.
func NewDatabaseService(log *logging.Logger, layout paths.Layout) *DatabaseService {
	return &DatabaseService{
		log:    log.Named("databases"),
		layout: layout,
		owners: make(map[string]string),
		reg:    process.NewRegistry[*database.Process](),
	}
}

func (s *DatabaseService) ID() string { return "databases" }

// Start ensures the databases directory exists. Connections open lazily.
func (s *DatabaseService) Start(ctx context.Context) error {
	return os.MkdirAll(s.layout.Databases(), 0o755)
}

// Open returns the database process for name, opening it on first use. The
// same owner may open a name repeatedly; a different owner gets
// ErrOwnerConflict.
func (s *DatabaseService) Open(owner, name string) (*database.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if held, ok := s.owners[name]; ok {
		if held != owner {
			return nil, fmt.Errorf("%w: %q is held by %s", ErrOwnerConflict, name, held)
		}
		if proc, ok := s.reg.Get(name); ok {
			return proc, nil
		}
	}

	proc, err := database.Open(s.layout.Databases(), name)
	if err != nil {
		return nil, err
	}
	if err := s.reg.Add(name, proc); err != nil {
		proc.Close()
		return nil, err
	}
	s.owners[name] = owner
	s.log.Info("database opened",
		zap.String("name", name),
		zap.String("owner", owner),
		zap.String("path", proc.Path))
	return proc, nil
}

// Owner reports which process currently holds the name.
func (s *DatabaseService) Owner(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.owners[name]
	return owner, ok
}

// Stop closes every open connection and forgets all ownership.
func (s *DatabaseService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	s.reg.Each(func(name string, proc *database.Process) {
		if err := proc.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close database %s: %w", name, err)
		}
	})
	s.reg.Clear()
	s.owners = make(map[string]string)
	return firstErr
}
