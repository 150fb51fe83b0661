// Package validate compiles a form schema into a structural validator and
// the schema-derived default values. Compilation happens once per schema;
// validation runs against live value snapshots.
package validate

import (
	"fmt"
	"regexp"

	"github.com/telmora/go-formflow/pkg/paths"
	"github.com/telmora/go-formflow/pkg/schema"
)

// Option customises compilation.
type Option func(*config)

type config struct {
	registry *Registry
}

// WithCustomValidators supplies the registry used to resolve
// validation.custom references. Referencing an unregistered name is a
// compile-time error.
func WithCustomValidators(registry *Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// FieldError is a single per-field validation failure addressed by the
// field's dot-joined path.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Path + ": " + e.Message
}

// FormValidator is the compiled structural validator for one schema.
type FormValidator struct {
	fields   []compiledField
	defaults map[string]any
	registry *Registry
}

type compiledField struct {
	name     string
	label    string
	ftype    schema.FieldType
	rules    fieldRules
	children []compiledField
	minItems *int
	maxItems *int
	// multi marks a checkbox with more than one option (multi-select).
	multi bool
}

type fieldRules struct {
	required    bool
	requiredMsg string
	min         *float64
	minMsg      string
	max         *float64
	maxMsg      string
	minLen      *int
	minLenMsg   string
	maxLen      *int
	maxLenMsg   string
	pattern     *regexp.Regexp
	patternMsg  string
	email       bool
	url         bool
	custom      string
}

// Compile builds the validator and the default-value map for a schema.
// Malformed patterns and unresolved custom validator names fail compilation
// with an error naming the offending field path.
func Compile(form *schema.FormSchema, options ...Option) (*FormValidator, error) {
	if form == nil {
		return nil, fmt.Errorf("validate: form schema is nil")
	}
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	compiled, err := compileFields(form.Fields, "", cfg)
	if err != nil {
		return nil, err
	}
	return &FormValidator{
		fields:   compiled,
		defaults: defaultsFor(form.Fields),
		registry: cfg.registry,
	}, nil
}

func compileFields(fields []schema.Field, prefix string, cfg *config) ([]compiledField, error) {
	out := make([]compiledField, 0, len(fields))
	for _, field := range fields {
		path := paths.Join(prefix, field.Name)
		rules, err := compileRules(field, path, cfg)
		if err != nil {
			return nil, err
		}

		entry := compiledField{
			name:     field.Name,
			label:    field.DisplayLabel(),
			ftype:    field.Type,
			rules:    rules,
			minItems: field.MinItems,
			maxItems: field.MaxItems,
			multi:    field.Type == schema.FieldTypeCheckbox && len(field.Options) > 1,
		}
		if field.Type.Container() {
			children, err := compileFields(field.Children, path, cfg)
			if err != nil {
				return nil, err
			}
			entry.children = children
		}
		out = append(out, entry)
	}
	return out, nil
}

func compileRules(field schema.Field, path string, cfg *config) (fieldRules, error) {
	rules := fieldRules{
		// the email field type implies the email format rule
		email: field.Type == schema.FieldTypeEmail,
	}
	v := field.Validation
	if v == nil {
		return rules, nil
	}

	if v.Required != nil {
		rules.required = v.Required.Enabled
		rules.requiredMsg = v.Required.Message
	}
	if v.Min != nil {
		value := v.Min.Value
		rules.min = &value
		rules.minMsg = v.Min.Message
	}
	if v.Max != nil {
		value := v.Max.Value
		rules.max = &value
		rules.maxMsg = v.Max.Message
	}
	if v.MinLength != nil {
		length := int(v.MinLength.Value)
		rules.minLen = &length
		rules.minLenMsg = v.MinLength.Message
	}
	if v.MaxLength != nil {
		length := int(v.MaxLength.Value)
		rules.maxLen = &length
		rules.maxLenMsg = v.MaxLength.Message
	}
	if v.Pattern != nil && v.Pattern.Expr != "" {
		re, err := regexp.Compile(v.Pattern.Expr)
		if err != nil {
			return rules, fmt.Errorf("validate: field %q: invalid pattern %q: %w", path, v.Pattern.Expr, err)
		}
		rules.pattern = re
		rules.patternMsg = v.Pattern.Message
	}
	rules.email = rules.email || v.Email
	rules.url = v.URL
	if v.Custom != "" {
		if cfg.registry == nil || !cfg.registry.Has(v.Custom) {
			return rules, fmt.Errorf("validate: field %q: custom validator %q is not registered", path, v.Custom)
		}
		rules.custom = v.Custom
	}
	return rules, nil
}
