package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/telmora/go-formflow/pkg/paths"
	"github.com/telmora/go-formflow/pkg/schema"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks a full value snapshot against the compiled schema and
// returns every field-level failure. An empty result means the snapshot is
// structurally valid.
func (v *FormValidator) Validate(values map[string]any) []FieldError {
	var errs []FieldError
	validateFields(v, v.fields, "", values, &errs)
	return errs
}

// ValidateField checks a single field by its dot-joined path. Numeric
// segments are matched against the enclosing array field's children. Unknown
// paths validate clean.
func (v *FormValidator) ValidateField(path string, values map[string]any) []FieldError {
	field, ok := v.lookup(path)
	if !ok {
		return nil
	}
	var errs []FieldError
	validateOne(v, field, path, values, &errs)
	return errs
}

func (v *FormValidator) lookup(path string) (compiledField, bool) {
	segments := strings.Split(path, ".")
	fields := v.fields
	var current compiledField
	found := false
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			// array item index: stay on the array's children
			fields = current.children
			continue
		}
		found = false
		for _, field := range fields {
			if field.name == segment {
				current = field
				fields = field.children
				found = true
				break
			}
		}
		if !found {
			return compiledField{}, false
		}
	}
	return current, found
}

func validateFields(v *FormValidator, fields []compiledField, prefix string, values map[string]any, errs *[]FieldError) {
	for _, field := range fields {
		path := paths.Join(prefix, field.name)
		validateOne(v, field, path, values, errs)
	}
}

func validateOne(v *FormValidator, field compiledField, path string, values map[string]any, errs *[]FieldError) {
	value, present := paths.Get(values, path)

	if field.ftype == schema.FieldTypeGroup {
		if field.rules.required && !present {
			*errs = append(*errs, requiredError(field, path))
		}
		validateFields(v, field.children, path, values, errs)
		return
	}
	if field.ftype == schema.FieldTypeArray {
		validateArray(v, field, path, value, present, values, errs)
		return
	}

	if emptyValue(field, value, present) {
		if field.rules.required {
			*errs = append(*errs, requiredError(field, path))
		}
		// constraints only apply when a value is present
		return
	}

	switch field.ftype {
	case schema.FieldTypeText, schema.FieldTypeEmail, schema.FieldTypePassword, schema.FieldTypeTextarea:
		validateString(field, path, value, errs)
	case schema.FieldTypeNumber:
		validateNumber(field, path, value, errs)
	case schema.FieldTypeSwitch:
		validateBool(field, path, value, errs)
	case schema.FieldTypeCheckbox:
		if field.multi {
			validateMultiCheckbox(field, path, value, errs)
		} else {
			validateBool(field, path, value, errs)
		}
	case schema.FieldTypeDate, schema.FieldTypeDatetime:
		validateDate(field, path, value, errs)
	case schema.FieldTypeSelect, schema.FieldTypeRadio:
		validateChoice(field, path, value, errs)
	case schema.FieldTypeFile:
		// presence is all the structural validator can check
	}

	if field.rules.custom != "" {
		fn, ok := v.registry.Get(field.rules.custom)
		if ok {
			if passed, message := fn(value, values); !passed {
				if message == "" {
					message = "is invalid"
				}
				*errs = append(*errs, FieldError{Path: path, Message: message})
			}
		}
	}
}

// emptyValue decides whether a field counts as "no value supplied": absent
// keys, empty strings for string-kind fields, and empty slices for
// multi-selects. Booleans and numbers are never empty once present.
func emptyValue(field compiledField, value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	switch field.ftype {
	case schema.FieldTypeText, schema.FieldTypeEmail, schema.FieldTypePassword,
		schema.FieldTypeTextarea, schema.FieldTypeSelect, schema.FieldTypeRadio,
		schema.FieldTypeDate, schema.FieldTypeDatetime:
		if s, ok := value.(string); ok {
			return s == ""
		}
		return false
	case schema.FieldTypeCheckbox:
		if field.multi {
			if list, ok := value.([]any); ok {
				return len(list) == 0
			}
		}
		return false
	default:
		return false
	}
}

func validateString(field compiledField, path string, value any, errs *[]FieldError) {
	s, ok := value.(string)
	if !ok {
		*errs = append(*errs, FieldError{Path: path, Message: "must be a string"})
		return
	}
	r := field.rules
	if r.minLen != nil && len([]rune(s)) < *r.minLen {
		*errs = append(*errs, boundError(path, r.minLenMsg, fmt.Sprintf("must be at least %d characters", *r.minLen)))
	}
	if r.maxLen != nil && len([]rune(s)) > *r.maxLen {
		*errs = append(*errs, boundError(path, r.maxLenMsg, fmt.Sprintf("must be at most %d characters", *r.maxLen)))
	}
	if r.pattern != nil && !r.pattern.MatchString(s) {
		*errs = append(*errs, boundError(path, r.patternMsg, "has an invalid format"))
	}
	if r.email && !emailPattern.MatchString(s) {
		*errs = append(*errs, FieldError{Path: path, Message: "must be a valid email address"})
	}
	if r.url && !validURL(s) {
		*errs = append(*errs, FieldError{Path: path, Message: "must be a valid URL"})
	}
}

func validateNumber(field compiledField, path string, value any, errs *[]FieldError) {
	n, ok := numeric(value)
	if !ok {
		*errs = append(*errs, FieldError{Path: path, Message: "must be a number"})
		return
	}
	r := field.rules
	if r.min != nil && n < *r.min {
		*errs = append(*errs, boundError(path, r.minMsg, fmt.Sprintf("cannot be less than %s", formatNumber(*r.min))))
	}
	if r.max != nil && n > *r.max {
		*errs = append(*errs, boundError(path, r.maxMsg, fmt.Sprintf("cannot be greater than %s", formatNumber(*r.max))))
	}
}

func validateBool(field compiledField, path string, value any, errs *[]FieldError) {
	if _, ok := value.(bool); !ok {
		*errs = append(*errs, FieldError{Path: path, Message: "must be a boolean"})
	}
}

func validateMultiCheckbox(field compiledField, path string, value any, errs *[]FieldError) {
	list, ok := value.([]any)
	if !ok {
		*errs = append(*errs, FieldError{Path: path, Message: "must be a list of selections"})
		return
	}
	for idx, item := range list {
		switch item.(type) {
		case string, bool, float64, float32, int, int32, int64:
		default:
			*errs = append(*errs, FieldError{
				Path:    paths.Index(path, idx),
				Message: "must be a string, number, or boolean",
			})
		}
	}
}

func validateDate(field compiledField, path string, value any, errs *[]FieldError) {
	switch v := value.(type) {
	case time.Time:
		return
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if _, err := time.Parse(layout, v); err == nil {
				return
			}
		}
		*errs = append(*errs, FieldError{Path: path, Message: "must be a valid date"})
	default:
		*errs = append(*errs, FieldError{Path: path, Message: "must be a valid date"})
	}
}

func validateChoice(field compiledField, path string, value any, errs *[]FieldError) {
	switch value.(type) {
	case string, float64, float32, int, int32, int64:
	default:
		*errs = append(*errs, FieldError{Path: path, Message: "must be a string or number"})
	}
}

func validateArray(v *FormValidator, field compiledField, path string, value any, present bool, values map[string]any, errs *[]FieldError) {
	var items []any
	if present {
		items, _ = value.([]any)
	}
	if field.rules.required && len(items) == 0 {
		*errs = append(*errs, requiredError(field, path))
	}
	if !present || value == nil {
		// constraints only apply when a value is present
		return
	}
	if field.minItems != nil && len(items) < *field.minItems {
		*errs = append(*errs, FieldError{Path: path, Message: fmt.Sprintf("must have at least %d items", *field.minItems)})
	}
	if field.maxItems != nil && len(items) > *field.maxItems {
		*errs = append(*errs, FieldError{Path: path, Message: fmt.Sprintf("must have at most %d items", *field.maxItems)})
	}
	for idx := range items {
		validateFields(v, field.children, paths.Index(path, idx), values, errs)
	}
}

func requiredError(field compiledField, path string) FieldError {
	message := field.rules.requiredMsg
	if message == "" {
		message = field.label + " is required"
	}
	return FieldError{Path: path, Message: message}
}

func boundError(path, custom, generated string) FieldError {
	if custom != "" {
		return FieldError{Path: path, Message: custom}
	}
	return FieldError{Path: path, Message: generated}
}

func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func validURL(s string) bool {
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}
