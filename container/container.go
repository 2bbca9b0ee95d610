// Package container is the read side of the dependency container consulted while rewriting: whether a
// service key exists and which concrete type an instance of it has.
package container

import (
	"sort"
	"strconv"
	"sync"

	"github.com/arjunmahishi/reconstruct/naming"
)

// Container is a live dependency container that can be queried by key.
type Container interface {
	Has(key string) bool
	Get(key string) (any, error)
}

// TypeName is a fully qualified type name, e.g. `App\Logging\LoggerImpl` or `app/logging.LoggerImpl`.
type TypeName string

// Short returns the last segment of the name.  This is what gets written into source.
func (n TypeName) Short() string { return naming.ShortName(string(n)) }

func (n TypeName) String() string { return string(n) }

// Typed is implemented by instances that know the source-level type they were built from.
type Typed interface {
	TypeName() TypeName
}

// Factory builds a fresh instance on every Get.
type Factory func() (any, error)

// MissingServiceError is returned when a key is not registered.
type MissingServiceError struct{ Key string }

func (e MissingServiceError) Error() string {
	return "container: service " + strconv.Quote(e.Key) + " missing"
}

// Map is an in-memory Container.  It is safe for concurrent use.
type Map struct {
	mu      sync.RWMutex
	items   map[string]any
	aliases map[string]string
}

var _ Container = (*Map)(nil)

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{items: map[string]any{}, aliases: map[string]string{}}
}

// Provide stores a value, or a Factory, under key and returns the map for chaining.
func (m *Map) Provide(key string, val any) *Map {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = val
	return m
}

// Alias makes alias resolve to whatever key resolves to.
func (m *Map) Alias(alias, key string) *Map {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aliases[alias] = key
	return m
}

func (m *Map) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[m.resolve(key)]
	return ok
}

// Get returns the service under key.  Factories are invoked on every call.
func (m *Map) Get(key string) (any, error) {
	m.mu.RLock()
	val, ok := m.items[m.resolve(key)]
	m.mu.RUnlock()

	if !ok {
		return nil, MissingServiceError{Key: key}
	}
	if factory, isFactory := val.(Factory); isFactory {
		return factory()
	}
	return val, nil
}

// Keys returns every registered key and alias, sorted.
func (m *Map) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.items)+len(m.aliases))
	for key := range m.items {
		keys = append(keys, key)
	}
	for alias := range m.aliases {
		if _, shadowed := m.items[alias]; !shadowed {
			keys = append(keys, alias)
		}
	}
	sort.Strings(keys)
	return keys
}

// resolve follows alias chains.  Callers hold the read lock.
func (m *Map) resolve(key string) string {
	if _, ok := m.items[key]; ok {
		return key
	}
	for seen := 0; seen <= len(m.aliases); seen++ {
		target, ok := m.aliases[key]
		if !ok {
			return key
		}
		key = target
	}
	return key
}
