// Package id provides centralized ID generation for the desktop.
//
// Process uids are ULID-backed: lexicographically sortable, prefixed with the
// kind of the process so logs stay readable, and guaranteed unique per live
// object. They are assigned once at construction, never persisted, and not
// stable across restarts.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator generates ULIDs from a guarded entropy source.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(rand.Reader)
	})
	return defaultGenerator
}

// NewGenerator creates a generator with the given entropy source. Tests can
// pass a deterministic reader.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// UID returns a process uid of the form "{lowercased kind}:{ulid}".
func (g *Generator) UID(kind string) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(kind), g.Generate().String())
}

// UID generates a process uid using the default generator.
func UID(kind string) string {
	return Default().UID(kind)
}

// NewWorkerID returns an opaque identity for a scheduled worker.
func NewWorkerID() string {
	return uuid.NewString()
}

// Timestamp extracts the embedded timestamp from a uid.
func Timestamp(uid string) (time.Time, error) {
	_, raw, ok := strings.Cut(uid, ":")
	if !ok {
		return time.Time{}, fmt.Errorf("uid %q has no kind prefix", uid)
	}
	parsed, err := ulid.Parse(raw)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
