// Package widgets defines the capability contract the engine requires from a
// rendering layer, plus the registry that resolves which widget kind handles
// each field. The engine is polymorphic over any Provider implementation;
// providers can be swapped without touching schema or evaluation logic.
package widgets

import (
	"github.com/telmora/go-formflow/pkg/fieldstate"
	"github.com/telmora/go-formflow/pkg/schema"
)

// Kind identifies a renderable primitive.
type Kind string

const (
	KindInput         Kind = "input"
	KindTextarea      Kind = "textarea"
	KindSelect        Kind = "select"
	KindRadioGroup    Kind = "radio-group"
	KindCheckbox      Kind = "checkbox"
	KindCheckboxGroup Kind = "checkbox-group"
	KindToggle        Kind = "toggle"
	KindDatePicker    Kind = "date-picker"
	KindFile          Kind = "file"
)

// FieldDescriptor carries everything a provider needs to render one field:
// the schema definition, the resolved path, the derived state, the current
// value, the resolved option list, and any inline errors.
type FieldDescriptor struct {
	Path    string
	Field   schema.Field
	State   fieldstate.State
	Value   any
	Options []schema.FieldOption
	Errors  []string
	Loading bool
}

// ButtonDescriptor describes an action control (submit, add item, remove
// item).
type ButtonDescriptor struct {
	Label    string
	Action   string
	Disabled bool
}

// Provider is the minimal widget set the engine renders through. Each
// primitive returns its rendered bytes; the engine composes them.
type Provider interface {
	Input(d FieldDescriptor) ([]byte, error)
	Textarea(d FieldDescriptor) ([]byte, error)
	Select(d FieldDescriptor) ([]byte, error)
	RadioGroup(d FieldDescriptor) ([]byte, error)
	Checkbox(d FieldDescriptor) ([]byte, error)
	CheckboxGroup(d FieldDescriptor) ([]byte, error)
	Toggle(d FieldDescriptor) ([]byte, error)
	DatePicker(d FieldDescriptor) ([]byte, error)
	FileInput(d FieldDescriptor) ([]byte, error)

	Label(text string) ([]byte, error)
	Button(b ButtonDescriptor) ([]byte, error)
	Container(title string, children [][]byte) ([]byte, error)
	FieldWrapper(d FieldDescriptor, control []byte) ([]byte, error)
	ErrorText(message string) ([]byte, error)
	HelpText(message string) ([]byte, error)
}

// Render dispatches a descriptor to the provider primitive matching the
// resolved widget kind.
func Render(p Provider, kind Kind, d FieldDescriptor) ([]byte, error) {
	switch kind {
	case KindTextarea:
		return p.Textarea(d)
	case KindSelect:
		return p.Select(d)
	case KindRadioGroup:
		return p.RadioGroup(d)
	case KindCheckbox:
		return p.Checkbox(d)
	case KindCheckboxGroup:
		return p.CheckboxGroup(d)
	case KindToggle:
		return p.Toggle(d)
	case KindDatePicker:
		return p.DatePicker(d)
	case KindFile:
		return p.FileInput(d)
	default:
		return p.Input(d)
	}
}
