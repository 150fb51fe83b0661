// Package html renders form widgets as plain HTML fragments. Attribute
// values are escaped; rich-text descriptions pass through a strict
// bluemonday policy so schema-supplied markup cannot inject script.
package html

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/telmora/go-formflow/pkg/schema"
	"github.com/telmora/go-formflow/pkg/widgets"
)

// Classes maps widget chrome to CSS class names.
type Classes struct {
	Field     string
	Label     string
	Control   string
	Container string
	Error     string
	Help      string
	Button    string
}

func defaultClasses() Classes {
	return Classes{
		Field:     "ff-field",
		Label:     "ff-label",
		Control:   "ff-control",
		Container: "ff-group",
		Error:     "ff-error",
		Help:      "ff-help",
		Button:    "ff-button",
	}
}

// Option customises the provider.
type Option func(*Provider)

// WithClasses overrides the default CSS class map.
func WithClasses(classes Classes) Option {
	return func(p *Provider) {
		p.classes = classes
	}
}

// Provider implements widgets.Provider over direct HTML string building.
type Provider struct {
	classes  Classes
	sanitize *bluemonday.Policy
}

// New constructs an HTML provider with a strict sanitization policy.
func New(opts ...Option) *Provider {
	p := &Provider{
		classes:  defaultClasses(),
		sanitize: bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

var _ widgets.Provider = (*Provider)(nil)

func (p *Provider) Input(d widgets.FieldDescriptor) ([]byte, error) {
	return p.input(d, inputType(d.Field.Type)), nil
}

func (p *Provider) DatePicker(d widgets.FieldDescriptor) ([]byte, error) {
	kind := "date"
	if d.Field.Type == schema.FieldTypeDatetime {
		kind = "datetime-local"
	}
	return p.input(d, kind), nil
}

func (p *Provider) FileInput(d widgets.FieldDescriptor) ([]byte, error) {
	return p.input(d, "file"), nil
}

func (p *Provider) Textarea(d widgets.FieldDescriptor) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `<textarea class=%q name=%q`, p.classes.Control, d.Path)
	p.commonAttrs(&b, d)
	b.WriteString(">")
	b.WriteString(html.EscapeString(stringValue(d.Value)))
	b.WriteString("</textarea>")
	return []byte(b.String()), nil
}

func (p *Provider) Select(d widgets.FieldDescriptor) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `<select class=%q name=%q`, p.classes.Control, d.Path)
	p.commonAttrs(&b, d)
	b.WriteString(">")
	b.WriteString(`<option value="">`)
	if d.Loading {
		b.WriteString(html.EscapeString("Loading..."))
	}
	b.WriteString("</option>")
	for _, option := range d.Options {
		selected := ""
		if optionChosen(d.Value, option.Value) {
			selected = " selected"
		}
		disabled := ""
		if option.Disabled {
			disabled = " disabled"
		}
		fmt.Fprintf(&b, `<option value=%q%s%s>%s</option>`,
			html.EscapeString(stringValue(option.Value)), selected, disabled,
			html.EscapeString(option.Label))
	}
	b.WriteString("</select>")
	return []byte(b.String()), nil
}

func (p *Provider) RadioGroup(d widgets.FieldDescriptor) ([]byte, error) {
	return p.choiceGroup(d, "radio"), nil
}

func (p *Provider) CheckboxGroup(d widgets.FieldDescriptor) ([]byte, error) {
	return p.choiceGroup(d, "checkbox"), nil
}

func (p *Provider) Checkbox(d widgets.FieldDescriptor) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `<input type="checkbox" class=%q name=%q`, p.classes.Control, d.Path)
	if truthy(d.Value) {
		b.WriteString(" checked")
	}
	p.commonAttrs(&b, d)
	b.WriteString(">")
	return []byte(b.String()), nil
}

func (p *Provider) Toggle(d widgets.FieldDescriptor) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `<input type="checkbox" role="switch" class=%q name=%q`, p.classes.Control, d.Path)
	if truthy(d.Value) {
		b.WriteString(" checked")
	}
	p.commonAttrs(&b, d)
	b.WriteString(">")
	return []byte(b.String()), nil
}

func (p *Provider) Label(text string) ([]byte, error) {
	return []byte(fmt.Sprintf(`<label class=%q>%s</label>`, p.classes.Label, html.EscapeString(text))), nil
}

func (p *Provider) Button(d widgets.ButtonDescriptor) ([]byte, error) {
	disabled := ""
	if d.Disabled {
		disabled = " disabled"
	}
	return []byte(fmt.Sprintf(`<button type="button" class=%q data-action=%q%s>%s</button>`,
		p.classes.Button, html.EscapeString(d.Action), disabled, html.EscapeString(d.Label))), nil
}

func (p *Provider) Container(title string, children [][]byte) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `<fieldset class=%q>`, p.classes.Container)
	if title != "" {
		fmt.Fprintf(&b, "<legend>%s</legend>", html.EscapeString(title))
	}
	for _, child := range children {
		b.Write(child)
	}
	b.WriteString("</fieldset>")
	return []byte(b.String()), nil
}

func (p *Provider) FieldWrapper(d widgets.FieldDescriptor, control []byte) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class=%q data-field=%q>`, p.classes.Field, d.Path)

	label, err := p.Label(labelText(d))
	if err != nil {
		return nil, err
	}
	b.Write(label)
	b.Write(control)

	if d.Field.Description != "" {
		help, err := p.HelpText(d.Field.Description)
		if err != nil {
			return nil, err
		}
		b.Write(help)
	}
	for _, message := range d.Errors {
		errText, err := p.ErrorText(message)
		if err != nil {
			return nil, err
		}
		b.Write(errText)
	}
	b.WriteString("</div>")
	return []byte(b.String()), nil
}

func (p *Provider) ErrorText(message string) ([]byte, error) {
	return []byte(fmt.Sprintf(`<p class=%q>%s</p>`, p.classes.Error, html.EscapeString(message))), nil
}

// HelpText sanitizes instead of escaping: schema descriptions may carry
// markup from upstream authoring tools.
func (p *Provider) HelpText(message string) ([]byte, error) {
	return []byte(fmt.Sprintf(`<p class=%q>%s</p>`, p.classes.Help, p.sanitize.Sanitize(message))), nil
}

func (p *Provider) input(d widgets.FieldDescriptor, kind string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<input type=%q class=%q name=%q`, kind, p.classes.Control, d.Path)
	if value := stringValue(d.Value); value != "" {
		fmt.Fprintf(&b, ` value=%q`, html.EscapeString(value))
	}
	if d.Field.Placeholder != "" {
		fmt.Fprintf(&b, ` placeholder=%q`, html.EscapeString(d.Field.Placeholder))
	}
	p.commonAttrs(&b, d)
	b.WriteString(">")
	return []byte(b.String())
}

func (p *Provider) choiceGroup(d widgets.FieldDescriptor, kind string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class=%q role="group">`, p.classes.Control)
	for _, option := range d.Options {
		checked := ""
		if optionChosen(d.Value, option.Value) {
			checked = " checked"
		}
		disabled := ""
		if option.Disabled || d.State.Disabled || d.Field.Readonly {
			disabled = " disabled"
		}
		fmt.Fprintf(&b, `<label><input type=%q name=%q value=%q%s%s> %s</label>`,
			kind, d.Path, html.EscapeString(stringValue(option.Value)), checked, disabled,
			html.EscapeString(option.Label))
	}
	b.WriteString("</div>")
	return []byte(b.String())
}

func (p *Provider) commonAttrs(b *strings.Builder, d widgets.FieldDescriptor) {
	if d.State.Disabled {
		b.WriteString(" disabled")
	}
	if d.Field.Readonly {
		b.WriteString(" readonly")
	}
	if d.State.Required {
		b.WriteString(" required")
	}
}

func labelText(d widgets.FieldDescriptor) string {
	text := d.Field.DisplayLabel()
	if d.State.Required {
		text += " *"
	}
	return text
}

func inputType(fieldType schema.FieldType) string {
	switch fieldType {
	case schema.FieldTypeNumber:
		return "number"
	case schema.FieldTypeEmail:
		return "email"
	case schema.FieldTypePassword:
		return "password"
	default:
		return "text"
	}
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func truthy(value any) bool {
	b, ok := value.(bool)
	return ok && b
}

// optionChosen matches a single value or membership in a multi-select slice.
func optionChosen(current, option any) bool {
	if current == nil {
		return false
	}
	if items, ok := current.([]any); ok {
		for _, item := range items {
			if stringValue(item) == stringValue(option) {
				return true
			}
		}
		return false
	}
	return stringValue(current) == stringValue(option)
}
