package form

import (
	"bytes"
	"context"
	"fmt"

	"github.com/telmora/go-formflow/pkg/paths"
	"github.com/telmora/go-formflow/pkg/schema"
	"github.com/telmora/go-formflow/pkg/widgets"
)

// Render walks the visible field tree and renders every field through the
// provider, composing groups and array items into containers. Dynamic option
// lists are resolved on the way; remote fetches honor ctx.
func (f *Form) Render(ctx context.Context, provider widgets.Provider) ([]byte, error) {
	chunks, err := f.renderFields(ctx, provider, f.schema.Fields, "")
	if err != nil {
		return nil, err
	}

	if f.schema.Submit != nil {
		button, err := provider.Button(widgets.ButtonDescriptor{
			Label:    f.schema.Submit.Text,
			Action:   "submit",
			Disabled: f.submitting,
		})
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, button)
	}

	return bytes.Join(chunks, nil), nil
}

func (f *Form) renderFields(ctx context.Context, provider widgets.Provider, fields []schema.Field, prefix string) ([][]byte, error) {
	var out [][]byte
	for _, field := range fields {
		path := paths.Join(prefix, field.Name)
		if !f.states.StateFor(path).Visible {
			continue
		}

		var rendered []byte
		var err error
		switch field.Type {
		case schema.FieldTypeGroup:
			rendered, err = f.renderGroup(ctx, provider, field, path)
		case schema.FieldTypeArray:
			rendered, err = f.renderArray(ctx, provider, field, path)
		default:
			rendered, err = f.renderLeaf(ctx, provider, field, path)
		}
		if err != nil {
			return nil, fmt.Errorf("form: render %q: %w", path, err)
		}
		out = append(out, rendered)
	}
	return out, nil
}

// renderGroup renders the children under the group's path prefix; the group
// itself contributes only the container chrome.
func (f *Form) renderGroup(ctx context.Context, provider widgets.Provider, field schema.Field, path string) ([]byte, error) {
	children, err := f.renderFields(ctx, provider, field.Children, path)
	if err != nil {
		return nil, err
	}
	return provider.Container(field.DisplayLabel(), children)
}

func (f *Form) renderArray(ctx context.Context, provider widgets.Provider, field schema.Field, path string) ([]byte, error) {
	var items [][]byte
	count := f.itemCount(path)
	for idx := 0; idx < count; idx++ {
		itemPath := paths.Index(path, idx)
		children, err := f.renderFields(ctx, provider, field.Children, itemPath)
		if err != nil {
			return nil, err
		}
		if f.CanRemoveItem(path) {
			remove, err := provider.Button(widgets.ButtonDescriptor{
				Label:  "Remove",
				Action: "remove:" + itemPath,
			})
			if err != nil {
				return nil, err
			}
			children = append(children, remove)
		}
		item, err := provider.Container("", children)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	add, err := provider.Button(widgets.ButtonDescriptor{
		Label:    "Add",
		Action:   "append:" + path,
		Disabled: !f.CanAppendItem(path),
	})
	if err != nil {
		return nil, err
	}
	items = append(items, add)

	return provider.Container(field.DisplayLabel(), items)
}

func (f *Form) renderLeaf(ctx context.Context, provider widgets.Provider, field schema.Field, path string) ([]byte, error) {
	descriptor, err := f.Descriptor(ctx, field, path)
	if err != nil {
		return nil, err
	}
	kind := f.widgetRegistry.Resolve(field)
	control, err := widgets.Render(provider, kind, descriptor)
	if err != nil {
		return nil, err
	}
	return provider.FieldWrapper(descriptor, control)
}

// Descriptor assembles the render-time view of one leaf field: current
// value, derived state, resolved options, and inline errors from the last
// validation pass.
func (f *Form) Descriptor(ctx context.Context, field schema.Field, path string) (widgets.FieldDescriptor, error) {
	descriptor := widgets.FieldDescriptor{
		Path:  path,
		Field: field,
		State: f.states.StateFor(path),
	}
	if value, ok := paths.Get(f.values, path); ok {
		descriptor.Value = value
	}

	if field.Dynamic() || len(field.Options) > 0 {
		resolution := f.resolver.Resolve(ctx, path, field, f.values)
		descriptor.Options = resolution.Options
		descriptor.Loading = resolution.Loading
		if resolution.Err != "" {
			descriptor.Errors = append(descriptor.Errors, resolution.Err)
		}
	}

	for _, fieldErr := range f.lastErrors {
		if fieldErr.Path == path {
			descriptor.Errors = append(descriptor.Errors, fieldErr.Message)
		}
	}
	return descriptor, nil
}
