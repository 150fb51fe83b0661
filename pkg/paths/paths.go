// Package paths centralizes dot-joined path addressing for form values and
// errors ("a.b.0.c"). Traversal into missing intermediates reports absence
// instead of panicking, so callers can probe freely against sparse value maps.
package paths

import (
	"strconv"
	"strings"
)

// Join concatenates path segments, skipping empties.
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		parts = append(parts, segment)
	}
	return strings.Join(parts, ".")
}

// Index appends a numeric array-item segment to a base path.
func Index(base string, idx int) string {
	return Join(base, strconv.Itoa(idx))
}

// Get resolves a dot-joined path against nested maps and slices. A flattened
// key that matches the whole path verbatim wins over traversal, matching how
// prefill values are commonly supplied. The second return reports presence.
func Get(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return nil, false
		}
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Set writes a value at a dot-joined path, creating intermediate maps as
// needed. Numeric segments address slice elements; a slice is grown with nil
// placeholders when the index is one past its current length (append).
func Set(values map[string]any, path string, value any) bool {
	if values == nil || path == "" {
		return false
	}
	segments := strings.Split(path, ".")
	return setSegments(values, segments, value)
}

func setSegments(container any, segments []string, value any) bool {
	if len(segments) == 0 {
		return false
	}
	head, rest := segments[0], segments[1:]

	switch node := container.(type) {
	case map[string]any:
		if len(rest) == 0 {
			node[head] = value
			return true
		}
		child, ok := node[head]
		if !ok || child == nil {
			child = childContainer(rest[0])
			node[head] = child
		}
		if slice, isSlice := child.([]any); isSlice {
			updated, ok := setSlice(slice, rest, value)
			if !ok {
				return false
			}
			node[head] = updated
			return true
		}
		return setSegments(child, rest, value)
	case []any:
		// handled by setSlice via the parent map
		return false
	default:
		return false
	}
}

func setSlice(slice []any, segments []string, value any) ([]any, bool) {
	idx, err := strconv.Atoi(segments[0])
	if err != nil || idx < 0 || idx > len(slice) {
		return slice, false
	}
	if idx == len(slice) {
		slice = append(slice, nil)
	}
	if len(segments) == 1 {
		slice[idx] = value
		return slice, true
	}
	child := slice[idx]
	if child == nil {
		child = childContainer(segments[1])
		slice[idx] = child
	}
	if nested, isSlice := child.([]any); isSlice {
		updated, ok := setSlice(nested, segments[1:], value)
		if !ok {
			return slice, false
		}
		slice[idx] = updated
		return slice, true
	}
	if ok := setSegments(child, segments[1:], value); !ok {
		return slice, false
	}
	return slice, true
}

func childContainer(nextSegment string) any {
	if _, err := strconv.Atoi(nextSegment); err == nil {
		return []any{}
	}
	return map[string]any{}
}

// Delete removes the value at a dot-joined path. Deleting a numeric segment
// from a slice removes the element and renumbers subsequent indices, which is
// exactly the behavior array-item removal relies on.
func Delete(values map[string]any, path string) bool {
	if len(values) == 0 || path == "" {
		return false
	}
	segments := strings.Split(path, ".")
	if len(segments) == 1 {
		if _, ok := values[segments[0]]; !ok {
			return false
		}
		delete(values, segments[0])
		return true
	}

	parentPath := strings.Join(segments[:len(segments)-1], ".")
	last := segments[len(segments)-1]
	parent, ok := Get(values, parentPath)
	if !ok {
		return false
	}
	switch node := parent.(type) {
	case map[string]any:
		if _, ok := node[last]; !ok {
			return false
		}
		delete(node, last)
		return true
	case []any:
		idx, err := strconv.Atoi(last)
		if err != nil || idx < 0 || idx >= len(node) {
			return false
		}
		trimmed := append(node[:idx:idx], node[idx+1:]...)
		return Set(values, parentPath, trimmed)
	default:
		return false
	}
}
