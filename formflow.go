// Package formflow exposes the form engine's primary entry points: parse or
// load a schema, build a live form around it, and validate, resolve, and
// render field state as values change. The subpackages carry the full API;
// this package re-exports the surface most integrations need.
package formflow

import (
	"context"

	"github.com/telmora/go-formflow/pkg/fieldstate"
	"github.com/telmora/go-formflow/pkg/form"
	"github.com/telmora/go-formflow/pkg/listmap"
	"github.com/telmora/go-formflow/pkg/options"
	"github.com/telmora/go-formflow/pkg/schema"
	"github.com/telmora/go-formflow/pkg/schema/loader"
	"github.com/telmora/go-formflow/pkg/validate"
)

// Core types re-exported for callers that only need the facade.
type (
	Form        = form.Form
	Option      = form.Option
	FormSchema  = schema.FormSchema
	Field       = schema.Field
	FieldOption = schema.FieldOption
	FieldError  = validate.FieldError
	FieldState  = fieldstate.State
	ListMap     = listmap.ListMap
	Resolution  = options.Resolution
)

// Re-exported form options.
var (
	WithDefaults         = form.WithDefaults
	WithSubmitHandler    = form.WithSubmitHandler
	WithChangeHandler    = form.WithChangeHandler
	WithResolver         = form.WithResolver
	WithListMapStore     = form.WithListMapStore
	WithCustomValidators = form.WithCustomValidators
)

// ParseSchema decodes and validates a JSON schema document.
func ParseSchema(data []byte) (*FormSchema, error) {
	return schema.Parse(data)
}

// New builds a live form from a schema.
func New(formSchema *FormSchema, opts ...Option) (*Form, error) {
	return form.New(formSchema, opts...)
}

// FromFile loads a schema document (JSON or YAML) and builds a form from it.
func FromFile(path string, opts ...Option) (*Form, error) {
	formSchema, err := loader.New().FromFile(path)
	if err != nil {
		return nil, err
	}
	return form.New(formSchema, opts...)
}

// FromURL fetches a schema document over HTTP and builds a form from it.
func FromURL(ctx context.Context, rawURL string, opts ...Option) (*Form, error) {
	formSchema, err := loader.New().FromURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return form.New(formSchema, opts...)
}

// NewListMapStore builds an in-memory shared option dictionary store.
func NewListMapStore(initial ...ListMap) listmap.Store {
	return listmap.NewMemoryStore(initial...)
}
