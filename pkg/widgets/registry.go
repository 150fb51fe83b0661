package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/telmora/go-formflow/pkg/schema"
)

// Matcher decides whether a widget kind should handle the supplied field.
type Matcher func(field schema.Field) bool

type rule struct {
	kind     Kind
	priority int
	match    Matcher
	order    int
}

// Registry resolves the widget kind for a field. The field type is the
// discriminant; each kind's matcher is registered once so the validator
// compiler and the renderer cannot drift apart. Higher priority wins; ties
// fall back to registration order.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in type matchers.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher for a widget kind. Higher priority values take
// precedence over the built-ins.
func (r *Registry) Register(kind Kind, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	if strings.TrimSpace(string(kind)) == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{
		kind:     kind,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget kind for a field, falling back to a plain input
// when nothing matches.
func (r *Registry) Resolve(field schema.Field) Kind {
	if r == nil {
		return KindInput
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.kind
		}
	}
	return KindInput
}

func (r *Registry) registerBuiltins() {
	r.Register(KindToggle, 90, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeSwitch
	})
	r.Register(KindCheckboxGroup, 85, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeCheckbox && (len(field.Options) > 1 || field.Dynamic())
	})
	r.Register(KindCheckbox, 80, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeCheckbox
	})
	r.Register(KindSelect, 70, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeSelect
	})
	r.Register(KindRadioGroup, 70, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeRadio
	})
	r.Register(KindDatePicker, 60, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeDate || field.Type == schema.FieldTypeDatetime
	})
	r.Register(KindTextarea, 50, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeTextarea
	})
	r.Register(KindFile, 40, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeFile
	})
}
