package validate

import "github.com/telmora/go-formflow/pkg/schema"

// Defaults returns a copy of the schema-derived default values. Keys are
// top-level field names; groups carry nested maps, arrays start empty.
func (v *FormValidator) Defaults() map[string]any {
	return cloneValueMap(v.defaults)
}

// defaultsFor derives the default value for each field: an explicit
// defaultValue wins; otherwise numbers stay absent, a multi-option checkbox
// is an empty slice, a single checkbox or switch is false, a group is the map
// of its children's defaults, an array is empty, and everything else is the
// empty string.
func defaultsFor(fields []schema.Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		if field.DefaultValue != nil {
			out[field.Name] = field.DefaultValue
			continue
		}
		switch field.Type {
		case schema.FieldTypeNumber:
			// absent until the user supplies one
		case schema.FieldTypeCheckbox:
			if len(field.Options) > 1 {
				out[field.Name] = []any{}
			} else {
				out[field.Name] = false
			}
		case schema.FieldTypeSwitch:
			out[field.Name] = false
		case schema.FieldTypeGroup:
			out[field.Name] = defaultsFor(field.Children)
		case schema.FieldTypeArray:
			out[field.Name] = []any{}
		default:
			out[field.Name] = ""
		}
	}
	return out
}

// ItemDefaults derives the initial value for one new array item: each child's
// defaultValue or the empty string.
func ItemDefaults(children []schema.Field) map[string]any {
	out := make(map[string]any, len(children))
	for _, child := range children {
		if child.DefaultValue != nil {
			out[child.Name] = child.DefaultValue
			continue
		}
		out[child.Name] = ""
	}
	return out
}

func cloneValueMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneValueMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// CloneValues deep-copies a value snapshot. Exposed for the orchestrator,
// which hands snapshots to callbacks without aliasing live state.
func CloneValues(values map[string]any) map[string]any {
	return cloneValueMap(values)
}
