// Package listmap holds the externally populated option dictionary: a
// process-wide mapping from string keys to option lists, optionally keyed
// further by a parent field's value for cascading choices (province → city).
// The dictionary is loaded once (typically after authentication) and may be
// replaced wholesale at any time; readers tolerate absent keys and re-read on
// the store's change notification.
package listmap

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/telmora/go-formflow/pkg/schema"
)

// Entry is one dictionary value: either a flat option list or a cascading
// map from stringified parent value to option list.
type Entry struct {
	Flat    []schema.FieldOption
	Cascade map[string][]schema.FieldOption
}

// Cascading reports whether the entry is keyed by a parent value.
func (e Entry) Cascading() bool {
	return e.Cascade != nil
}

// UnmarshalJSON accepts both wire shapes: a bare option array or an object
// mapping parent values to option arrays.
func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*e = Entry{}
		return nil
	}
	switch data[0] {
	case '[':
		var flat []schema.FieldOption
		if err := json.Unmarshal(data, &flat); err != nil {
			return err
		}
		*e = Entry{Flat: flat}
		return nil
	case '{':
		var cascade map[string][]schema.FieldOption
		if err := json.Unmarshal(data, &cascade); err != nil {
			return err
		}
		*e = Entry{Cascade: cascade}
		return nil
	default:
		return fmt.Errorf("listmap: entry must be an option array or a cascading map, got %s", data)
	}
}

// MarshalJSON writes the shape the entry holds.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Cascade != nil {
		return json.Marshal(e.Cascade)
	}
	return json.Marshal(e.Flat)
}

// FlatEntry builds a flat entry.
func FlatEntry(options ...schema.FieldOption) Entry {
	return Entry{Flat: options}
}

// CascadeEntry builds a cascading entry.
func CascadeEntry(byParent map[string][]schema.FieldOption) Entry {
	return Entry{Cascade: byParent}
}

// ListMap is the full dictionary keyed by optionsKey values.
type ListMap map[string]Entry

// Parse decodes a dictionary document.
func Parse(data []byte) (ListMap, error) {
	var lm ListMap
	if err := json.Unmarshal(data, &lm); err != nil {
		return nil, fmt.Errorf("listmap: decode: %w", err)
	}
	return lm, nil
}
