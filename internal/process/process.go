// Package process defines what a "process" is inside the desktop: a uniquely
// identified unit of running plugin code tracked by exactly one service. It
// also carries the descriptor-validation pipeline and the per-service
// registry with its instance-numbering scheme.
package process

import (
	"github.com/GriffinCanCode/TermDesk/internal/shared/id"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
)

// Identity is embedded by every concrete process type. The uid is assigned
// once at construction and never changes; services use it for cross-service
// correlation and logging.
type Identity struct {
	kind      types.ProcessType
	processID string
	uid       string
}

// NewIdentity mints an identity for a process. kindName is the concrete
// type's name (e.g. "appprocess"); it becomes the uid prefix.
func NewIdentity(kind types.ProcessType, processID, kindName string) Identity {
	return Identity{
		kind:      kind,
		processID: processID,
		uid:       id.UID(kindName),
	}
}

// Type returns the process-type tag.
func (p Identity) Type() types.ProcessType { return p.kind }

// ProcessID returns the service-scoped process id (e.g. "calculator_2").
func (p Identity) ProcessID() string { return p.processID }

// UID returns the globally unique identifier.
func (p Identity) UID() string { return p.uid }
