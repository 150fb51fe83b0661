package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FieldType enumerates the supported form field kinds.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeEmail    FieldType = "email"
	FieldTypePassword FieldType = "password"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeDate     FieldType = "date"
	FieldTypeDatetime FieldType = "datetime"
	FieldTypeSwitch   FieldType = "switch"
	FieldTypeFile     FieldType = "file"
	FieldTypeGroup    FieldType = "group"
	FieldTypeArray    FieldType = "array"
)

// Known reports whether the field type is part of the supported enumeration.
func (t FieldType) Known() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeEmail, FieldTypePassword,
		FieldTypeTextarea, FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox,
		FieldTypeDate, FieldTypeDatetime, FieldTypeSwitch, FieldTypeFile,
		FieldTypeGroup, FieldTypeArray:
		return true
	}
	return false
}

// Container reports whether the field nests child fields.
func (t FieldType) Container() bool {
	return t == FieldTypeGroup || t == FieldTypeArray
}

// FieldOption is a single selectable choice. Value is a string, number, or
// boolean as declared by the schema author.
type FieldOption struct {
	Label    string `json:"label"`
	Value    any    `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Flag models schema attributes that accept either a boolean or a custom
// message string ("required": true vs "required": "Age is mandatory").
type Flag struct {
	Enabled bool
	Message string
}

// UnmarshalJSON accepts a bool or a message string; a non-empty message
// implies the flag is enabled.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = Flag{}
		return nil
	}
	switch data[0] {
	case 't', 'f':
		var enabled bool
		if err := json.Unmarshal(data, &enabled); err != nil {
			return err
		}
		*f = Flag{Enabled: enabled}
		return nil
	case '"':
		var message string
		if err := json.Unmarshal(data, &message); err != nil {
			return err
		}
		*f = Flag{Enabled: message != "", Message: message}
		return nil
	default:
		return fmt.Errorf("schema: flag must be a bool or a message string, got %s", data)
	}
}

// MarshalJSON writes the compact form: a bare bool when no message is set.
func (f Flag) MarshalJSON() ([]byte, error) {
	if f.Message != "" {
		return json.Marshal(f.Message)
	}
	return json.Marshal(f.Enabled)
}

// Bound models numeric constraints that accept either a bare number or a
// {value, message} object.
type Bound struct {
	Value   float64
	Message string
}

// UnmarshalJSON accepts a number or a {value, message} object.
func (b *Bound) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*b = Bound{}
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			Value   float64 `json:"value"`
			Message string  `json:"message"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*b = Bound{Value: obj.Value, Message: obj.Message}
		return nil
	}
	value, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("schema: bound must be a number or {value, message}, got %s", data)
	}
	*b = Bound{Value: value}
	return nil
}

// MarshalJSON writes the compact form: a bare number when no message is set.
func (b Bound) MarshalJSON() ([]byte, error) {
	if b.Message != "" {
		return json.Marshal(map[string]any{"value": b.Value, "message": b.Message})
	}
	return json.Marshal(b.Value)
}

// Pattern models a regular-expression constraint accepting either the raw
// expression or a {value, message} object.
type Pattern struct {
	Expr    string
	Message string
}

// UnmarshalJSON accepts a regex source string or a {value, message} object.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*p = Pattern{}
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			Value   string `json:"value"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*p = Pattern{Expr: obj.Value, Message: obj.Message}
		return nil
	}
	var expr string
	if err := json.Unmarshal(data, &expr); err != nil {
		return fmt.Errorf("schema: pattern must be a string or {value, message}, got %s", data)
	}
	*p = Pattern{Expr: expr}
	return nil
}

// MarshalJSON writes the compact form: the bare expression when no message is
// set.
func (p Pattern) MarshalJSON() ([]byte, error) {
	if p.Message != "" {
		return json.Marshal(map[string]any{"value": p.Expr, "message": p.Message})
	}
	return json.Marshal(p.Expr)
}

// Validation holds the per-field validation rules.
type Validation struct {
	Required  *Flag    `json:"required,omitempty"`
	MinLength *Bound   `json:"minLength,omitempty"`
	MaxLength *Bound   `json:"maxLength,omitempty"`
	Min       *Bound   `json:"min,omitempty"`
	Max       *Bound   `json:"max,omitempty"`
	Pattern   *Pattern `json:"pattern,omitempty"`
	Email     bool     `json:"email,omitempty"`
	URL       bool     `json:"url,omitempty"`
	Custom    string   `json:"custom,omitempty"`
}

// RequiredEnabled reports whether the required rule is set and enabled.
func (v *Validation) RequiredEnabled() bool {
	return v != nil && v.Required != nil && v.Required.Enabled
}

// Condition enumerates the dependency condition kinds.
type Condition string

const (
	ConditionEquals      Condition = "equals"
	ConditionNotEquals   Condition = "notEquals"
	ConditionContains    Condition = "contains"
	ConditionGreaterThan Condition = "greaterThan"
	ConditionLessThan    Condition = "lessThan"
	ConditionIn          Condition = "in"
	ConditionNotIn       Condition = "notIn"
	ConditionIsEmpty     Condition = "isEmpty"
	ConditionIsNotEmpty  Condition = "isNotEmpty"
)

// Action enumerates the effects a dependency can apply to a field.
type Action string

const (
	ActionShow     Action = "show"
	ActionHide     Action = "hide"
	ActionEnable   Action = "enable"
	ActionDisable  Action = "disable"
	ActionRequire  Action = "require"
	ActionOptional Action = "optional"
)

// Dependency links a field's derived state to another field's current value.
// Dependencies are evaluated in declaration order; later rules overwrite the
// attribute targeted by earlier ones.
type Dependency struct {
	Field     string    `json:"field"`
	Condition Condition `json:"condition"`
	Value     any       `json:"value,omitempty"`
	Action    Action    `json:"action"`
}

// StringList accepts a bare string or an array of strings in schema JSON;
// optionsDependsOn commonly appears in both shapes.
type StringList []string

// UnmarshalJSON accepts "field" or ["a", "b"].
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == "" {
		*l = nil
		return nil
	}
	*l = StringList{single}
	return nil
}

// Layout carries rendering hints that the engine passes through untouched.
type Layout struct {
	ColSpan int `json:"colSpan,omitempty"`
}

// Field describes a single form field. Name is unique within its nesting
// scope and doubles as the value-storage path segment; nested fields are
// addressed by dot-joined paths, array items by "arrayName.index.childName".
type Field struct {
	Name             string        `json:"name"`
	Type             FieldType     `json:"type"`
	Label            string        `json:"label,omitempty"`
	Placeholder      string        `json:"placeholder,omitempty"`
	DefaultValue     any           `json:"defaultValue,omitempty"`
	Description      string        `json:"description,omitempty"`
	Disabled         bool          `json:"disabled,omitempty"`
	Readonly         bool          `json:"readonly,omitempty"`
	Hidden           bool          `json:"hidden,omitempty"`
	Options          []FieldOption `json:"options,omitempty"`
	OptionsKey       string        `json:"optionsKey,omitempty"`
	OptionsURL       string        `json:"optionsUrl,omitempty"`
	OptionsDependsOn StringList    `json:"optionsDependsOn,omitempty"`
	Validation       *Validation   `json:"validation,omitempty"`
	Dependencies     []Dependency  `json:"dependencies,omitempty"`
	Children         []Field       `json:"children,omitempty"`
	MinItems         *int          `json:"minItems,omitempty"`
	MaxItems         *int          `json:"maxItems,omitempty"`
	Layout           *Layout       `json:"layout,omitempty"`
}

// DisplayLabel returns the label, falling back to the field name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Dynamic reports whether the field sources its options from the dictionary
// store or a remote endpoint rather than the static list.
func (f Field) Dynamic() bool {
	return f.OptionsKey != "" || f.OptionsURL != ""
}

// SubmitConfig describes the submit target declared by the schema.
type SubmitConfig struct {
	Text   string `json:"text,omitempty"`
	URL    string `json:"url,omitempty"`
	Method string `json:"method,omitempty"`
}

// FormSchema is the top-level form definition. It is treated as immutable for
// the lifetime of a rendering session; swapping in a new instance triggers a
// full re-derivation of validator, defaults, and dependency state.
type FormSchema struct {
	ID          string        `json:"id"`
	Version     string        `json:"version,omitempty"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Fields      []Field       `json:"fields"`
	Submit      *SubmitConfig `json:"submit,omitempty"`
}
