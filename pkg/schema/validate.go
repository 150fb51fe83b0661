package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	errSchemaIDMissing = errors.New("schema: form id is required")
	errNoFields        = errors.New("schema: form declares no fields")
)

var submitMethods = map[string]struct{}{
	"POST":  {},
	"PUT":   {},
	"PATCH": {},
}

// Validate checks the structural consistency of the form definition: ids and
// names present, names unique per nesting scope, group/array children
// declared, patterns compilable, item bounds coherent, submit method
// supported. Errors identify the offending field by its dot-joined path.
func (s *FormSchema) Validate() error {
	if s == nil {
		return errors.New("schema: form schema is nil")
	}
	if strings.TrimSpace(s.ID) == "" {
		return errSchemaIDMissing
	}
	if len(s.Fields) == 0 {
		return errNoFields
	}
	if s.Submit != nil && s.Submit.Method != "" {
		if _, ok := submitMethods[strings.ToUpper(s.Submit.Method)]; !ok {
			return fmt.Errorf("schema: unsupported submit method %q", s.Submit.Method)
		}
	}
	return validateFields(s.Fields, "")
}

func validateFields(fields []Field, prefix string) error {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		path := joinPath(prefix, field.Name)
		if strings.TrimSpace(field.Name) == "" {
			return fmt.Errorf("schema: field at %q has no name", orRoot(prefix))
		}
		if strings.Contains(field.Name, ".") {
			return fmt.Errorf("schema: field %q: name must not contain '.'", path)
		}
		if _, dup := seen[field.Name]; dup {
			return fmt.Errorf("schema: field %q: duplicate name in scope", path)
		}
		seen[field.Name] = struct{}{}

		if !field.Type.Known() {
			return fmt.Errorf("schema: field %q: unknown type %q", path, field.Type)
		}
		if field.Type.Container() && len(field.Children) == 0 {
			return fmt.Errorf("schema: field %q: %s requires non-empty children", path, field.Type)
		}
		if field.MinItems != nil && *field.MinItems < 0 {
			return fmt.Errorf("schema: field %q: minItems must not be negative", path)
		}
		if field.MinItems != nil && field.MaxItems != nil && *field.MinItems > *field.MaxItems {
			return fmt.Errorf("schema: field %q: minItems exceeds maxItems", path)
		}
		if field.Validation != nil && field.Validation.Pattern != nil {
			if _, err := regexp.Compile(field.Validation.Pattern.Expr); err != nil {
				return fmt.Errorf("schema: field %q: invalid pattern %q: %w", path, field.Validation.Pattern.Expr, err)
			}
		}
		for idx, dep := range field.Dependencies {
			if strings.TrimSpace(dep.Field) == "" {
				return fmt.Errorf("schema: field %q: dependency %d has no target field", path, idx)
			}
			switch dep.Action {
			case ActionShow, ActionHide, ActionEnable, ActionDisable, ActionRequire, ActionOptional:
			default:
				return fmt.Errorf("schema: field %q: dependency %d has unknown action %q", path, idx, dep.Action)
			}
		}
		if len(field.Children) > 0 {
			if err := validateFields(field.Children, path); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func orRoot(prefix string) string {
	if prefix == "" {
		return "(root)"
	}
	return prefix
}
