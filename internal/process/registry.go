package process

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrProcessExists signals a registry add with an already-used process id.
// Instance numbering makes this unreachable in normal operation, so hitting
// it is a programming error.
var ErrProcessExists = errors.New("process id already exists")

// ErrProcessNotFound signals a lookup or removal of an unknown process id.
var ErrProcessNotFound = errors.New("process id does not exist")

// Registry tracks the live processes of one service, keyed by process id,
// together with the instance counter that supports multiple concurrent
// instances of the same plugin.
//
// A registry is mutated only by its owning service; all methods are safe for
// concurrent use so launch workers never observe a half-updated map.
type Registry[T any] struct {
	mu        sync.RWMutex
	processes map[string]T
	counter   map[string]map[int]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		processes: make(map[string]T),
		counter:   make(map[string]map[int]struct{}),
	}
}

// NextProcessID claims the lowest unused instance number >= 1 for plainID and
// returns the resulting process id: the bare plain id for instance 1,
// "{plainID}_{n}" beyond that.
func (r *Registry[T]) NextProcessID(plainID string) (processID string, instance int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.counter[plainID]
	if !ok {
		set = make(map[int]struct{})
		r.counter[plainID] = set
	}
	n := 1
	for {
		if _, used := set[n]; !used {
			break
		}
		n++
	}
	set[n] = struct{}{}

	if n == 1 {
		return plainID, n
	}
	return fmt.Sprintf("%s_%d", plainID, n), n
}

// Release frees an instance number back into the pool. Empty pools are
// deleted.
func (r *Registry[T]) Release(plainID string, instance int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.counter[plainID]; ok {
		delete(set, instance)
		if len(set) == 0 {
			delete(r.counter, plainID)
		}
	}
}

// Add registers a process under its id. A duplicate id is fatal to the call.
func (r *Registry[T]) Add(processID string, proc T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.processes[processID]; exists {
		return fmt.Errorf("%w: %s", ErrProcessExists, processID)
	}
	r.processes[processID] = proc
	return nil
}

// Remove deletes a process record and returns it.
func (r *Registry[T]) Remove(processID string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	proc, ok := r.processes[processID]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrProcessNotFound, processID)
	}
	delete(r.processes, processID)
	return proc, nil
}

// Get returns the process registered under the id.
func (r *Registry[T]) Get(processID string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	proc, ok := r.processes[processID]
	return proc, ok
}

// Len reports the number of live processes.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.processes)
}

// IDs returns the sorted process ids.
func (r *Registry[T]) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.processes))
	for pid := range r.processes {
		ids = append(ids, pid)
	}
	sort.Strings(ids)
	return ids
}

// Each calls fn for every live process. fn must not call back into the
// registry.
func (r *Registry[T]) Each(fn func(processID string, proc T)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for pid, proc := range r.processes {
		fn(pid, proc)
	}
}

// Instances returns a copy of the in-use instance numbers for plainID.
func (r *Registry[T]) Instances(plainID string) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.counter[plainID]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Clear removes every process and instance reservation. Used on service stop
// and before a discovery re-scan repopulates state.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processes = make(map[string]T)
	r.counter = make(map[string]map[int]struct{})
}
