package validate

import (
	"strings"
	"sync"
)

// Func is a caller-supplied named validator. It receives the field's current
// value and the full value snapshot; returning ok=false surfaces message as a
// field-level error.
type Func func(value any, values map[string]any) (ok bool, message string)

// Registry stores named custom validators referenced by a field's
// validation.custom attribute.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register adds a validator under a name. Empty names and nil functions are
// ignored; the latest registration for a name wins.
func (r *Registry) Register(name string, fn Func) {
	if r == nil || fn == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[trimmed] = fn
}

// Get retrieves a validator by name.
func (r *Registry) Get(name string) (Func, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Has reports whether a validator is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}
