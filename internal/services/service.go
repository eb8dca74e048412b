// Package services implements the desktop's core orchestration layer: the
// individual lifecycle services (logging, shell, screen, window, app,
// database, file association) and the manager that constructs, starts, and
// stops them as a unit.
package services

import (
	"context"

	"github.com/GriffinCanCode/TermDesk/internal/worker"
)

// Service is one unit of the desktop core with a managed lifecycle. Start and
// Stop are called by the manager, in its fixed order, exactly once per run.
type Service interface {
	// ID is the stable service name used in logs and error wrapping.
	ID() string

	// Start brings the service to readiness. Returning an error aborts the
	// whole startup sequence.
	Start(ctx context.Context) error

	// Stop releases the service's resources. Best effort; errors are logged
	// and do not stop the shutdown sequence.
	Stop(ctx context.Context) error
}

// WorkerRunner submits a tracked worker on behalf of a service. The manager
// provides it so every service-owned worker is visible to the watchdog.
type WorkerRunner func(ctx context.Context, meta worker.Meta, fn worker.Fn) *worker.Handle
