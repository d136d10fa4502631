package envstore

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Store abstracts get/set/unset of environment variables.
type Store interface {
	// Lookup returns the value of name and whether it is present.
	Lookup(name string) (string, bool)

	// Set assigns value to name.
	Set(name, value string) error

	// Unset removes name. Removing an absent variable is not an error.
	Unset(name string) error
}

// osEnvMu guards multi-variable updates of the process environment.
// Every OSStore shares it because there is only one process environment.
var osEnvMu sync.Mutex

// OSStore is backed by the process environment via os.LookupEnv/os.Setenv.
type OSStore struct{}

var (
	_ Store       = (*OSStore)(nil)
	_ sync.Locker = (*OSStore)(nil)
)

// Lock acquires the process-wide environment lock.
func (s *OSStore) Lock() { osEnvMu.Lock() }

// Unlock releases the process-wide environment lock.
func (s *OSStore) Unlock() { osEnvMu.Unlock() }

// Lookup wraps os.LookupEnv.
func (s *OSStore) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// Set wraps os.Setenv.
func (s *OSStore) Set(name, value string) error {
	if err := os.Setenv(name, value); err != nil {
		return fmt.Errorf("envstore.Set(%s): %w", name, err)
	}
	return nil
}

// Unset wraps os.Unsetenv.
func (s *OSStore) Unset(name string) error {
	if err := os.Unsetenv(name); err != nil {
		return fmt.Errorf("envstore.Unset(%s): %w", name, err)
	}
	return nil
}

// MapStore is an in-memory Store. The zero value is not usable; use NewMapStore.
type MapStore struct {
	mu   sync.RWMutex
	vars map[string]string

	// tx is held by callers across a sequence of reads and writes.
	tx sync.Mutex
}

var (
	_ Store       = (*MapStore)(nil)
	_ sync.Locker = (*MapStore)(nil)
)

// Lock acquires the store for a multi-variable update.
// Lookup/Set/Unset stay usable while it is held.
func (m *MapStore) Lock() { m.tx.Lock() }

// Unlock releases the store.
func (m *MapStore) Unlock() { m.tx.Unlock() }

// NewMapStore creates a MapStore holding a copy of vars.
func NewMapStore(vars map[string]string) *MapStore {
	m := &MapStore{vars: make(map[string]string, len(vars))}
	for k, v := range vars {
		m.vars[k] = v
	}
	return m
}

// FromEnviron creates a MapStore from "KEY=VALUE" pairs such as os.Environ().
// Entries without '=' are ignored.
func FromEnviron(environ []string) *MapStore {
	m := &MapStore{vars: make(map[string]string, len(environ))}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		m.vars[k] = v
	}
	return m
}

// Lookup returns the stored value of name.
func (m *MapStore) Lookup(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[name]
	return v, ok
}

// Set stores value under name.
func (m *MapStore) Set(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vars[name] = value
	return nil
}

// Unset deletes name.
func (m *MapStore) Unset(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vars, name)
	return nil
}

// Snapshot returns a copy of all variables.
func (m *MapStore) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.vars))
	for k, v := range m.vars {
		out[k] = v
	}
	return out
}

// Change is one difference between two variable sets.
// Unset is true when the variable disappeared; Value is then empty.
type Change struct {
	Name  string
	Value string
	Unset bool
}

// Diff returns the changes that turn before into after, sorted by name.
func Diff(before, after map[string]string) []Change {
	var changes []Change
	for k, v := range after {
		if old, ok := before[k]; !ok || old != v {
			changes = append(changes, Change{Name: k, Value: v})
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			changes = append(changes, Change{Name: k, Unset: true})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Name < changes[j].Name })
	return changes
}
