package group

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownGroup indicates no factory is registered under the requested name.
var ErrUnknownGroup = errors.New("unknown group")

// Factory constructs a Group bound to one semester.
type Factory func(Semester) Group

// Registry maps group identifiers to factories. Registration happens at
// process start; lookups are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Names are case-insensitive and must be unique.
func (r *Registry) Register(name string, factory Factory) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return errors.New("group name must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("group %q: nil factory", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("group %q already registered", key)
	}
	r.factories[key] = factory
	return nil
}

// New instantiates the named group for semester.
func (r *Registry) New(name string, semester Semester) (Group, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownGroup, name, strings.Join(r.Names(), ", "))
	}
	return factory(semester), nil
}

// Names returns the registered group names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type builtin struct {
	name   string
	label  string
	policy SlugPolicy
}

var builtins = []builtin{
	{name: "core", label: "Core", policy: SlugDated},
	{name: "intelligence", label: "Intelligence", policy: SlugDated},
	{name: "data-science", label: "Data Science", policy: SlugDated},
	{name: "gbm", label: "GBM", policy: SlugPlain},
	{name: "supplementary", label: "Supplementary", policy: SlugPlain},
}

// DefaultRegistry returns a registry populated with the built-in groups.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, b := range builtins {
		_ = r.Register(b.name, func(s Semester) Group {
			return NewStandard(b.name, b.label, s, b.policy)
		})
	}
	return r
}
