package fieldstate

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/telmora/go-formflow/pkg/schema"
)

// conditionHolds evaluates a dependency condition against the referenced
// field's current value. Unrecognized condition kinds are treated as
// satisfied; a stricter default would change which fields show for malformed
// schemas.
func conditionHolds(kind schema.Condition, value, expected any) bool {
	switch kind {
	case schema.ConditionEquals:
		return looseEqual(value, expected)
	case schema.ConditionNotEquals:
		return !looseEqual(value, expected)
	case schema.ConditionContains:
		return contains(value, expected)
	case schema.ConditionGreaterThan:
		a, aok := coerceNumber(value)
		b, bok := coerceNumber(expected)
		return aok && bok && a > b
	case schema.ConditionLessThan:
		a, aok := coerceNumber(value)
		b, bok := coerceNumber(expected)
		return aok && bok && a < b
	case schema.ConditionIn:
		return member(expected, value)
	case schema.ConditionNotIn:
		return !member(expected, value)
	case schema.ConditionIsEmpty:
		return isEmpty(value)
	case schema.ConditionIsNotEmpty:
		return !isEmpty(value)
	default:
		return true
	}
}

// looseEqual compares strictly within a kind: matching Go types compare
// directly, numeric values compare as float64 regardless of width. JSON
// decoding yields float64 for every number, so cross-width comparison matters
// when values were set programmatically.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if an, aok := numericValue(a); aok {
		if bn, bok := numericValue(b); bok {
			return an == bn
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// numericValue converts numeric Go types only; strings stay strings so that
// "17" does not equal 17.
func numericValue(value any) (float64, bool) {
	switch value.(type) {
	case string, []byte:
		return 0, false
	}
	return coerceNumber(value)
}

// contains matches slice membership or substring inclusion.
func contains(value, expected any) bool {
	switch v := value.(type) {
	case string:
		return strings.Contains(v, coerceString(expected))
	case []any:
		return member(v, expected)
	case []string:
		needle := coerceString(expected)
		for _, item := range v {
			if item == needle {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// member reports whether needle appears in the haystack slice. A non-slice
// haystack has no members.
func member(haystack, needle any) bool {
	switch list := haystack.(type) {
	case []any:
		for _, item := range list {
			if looseEqual(item, needle) {
				return true
			}
		}
	case []string:
		target := coerceString(needle)
		for _, item := range list {
			if item == target {
				return true
			}
		}
	}
	return false
}

// isEmpty treats nil, empty strings, and empty slices as empty. Booleans and
// numbers are never empty.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice {
		return rv.Len() == 0
	}
	return false
}

func coerceNumber(value any) (float64, bool) {
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
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}
