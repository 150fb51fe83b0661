package form

import (
	"fmt"

	"github.com/telmora/go-formflow/pkg/paths"
	"github.com/telmora/go-formflow/pkg/schema"
	"github.com/telmora/go-formflow/pkg/validate"
)

// CanAppendItem reports whether an item may be appended to the array field at
// path: the field must be visible, effectively enabled, and under maxItems.
func (f *Form) CanAppendItem(path string) bool {
	field, ok := f.fieldByPath(path)
	if !ok || field.Type != schema.FieldTypeArray {
		return false
	}
	state := f.states.StateFor(path)
	if !state.Visible || state.Disabled {
		return false
	}
	if field.MaxItems != nil && f.itemCount(path) >= *field.MaxItems {
		return false
	}
	return true
}

// CanRemoveItem reports whether an item may be removed from the array field
// at path.
func (f *Form) CanRemoveItem(path string) bool {
	field, ok := f.fieldByPath(path)
	if !ok || field.Type != schema.FieldTypeArray {
		return false
	}
	state := f.states.StateFor(path)
	if !state.Visible || state.Disabled {
		return false
	}
	count := f.itemCount(path)
	if count == 0 {
		return false
	}
	if field.MinItems != nil && count <= *field.MinItems {
		return false
	}
	return true
}

// AppendItem appends a new item seeded from the child defaults and returns
// the new item's index.
func (f *Form) AppendItem(path string) (int, error) {
	field, ok := f.fieldByPath(path)
	if !ok || field.Type != schema.FieldTypeArray {
		return 0, fmt.Errorf("form: %q is not an array field", path)
	}
	state := f.states.StateFor(path)
	if !state.Visible || state.Disabled {
		return 0, ErrFieldDisabled
	}
	count := f.itemCount(path)
	if field.MaxItems != nil && count >= *field.MaxItems {
		return 0, ErrMaxItems
	}

	item := validate.ItemDefaults(field.Children)
	if !paths.Set(f.values, paths.Index(path, count), item) {
		return 0, fmt.Errorf("form: cannot append item at %q", path)
	}
	f.markChanged(path)
	f.recompute(path)
	f.notifyChange()
	return count, nil
}

// RemoveItem deletes the item at index, renumbering the remainder.
func (f *Form) RemoveItem(path string, index int) error {
	field, ok := f.fieldByPath(path)
	if !ok || field.Type != schema.FieldTypeArray {
		return fmt.Errorf("form: %q is not an array field", path)
	}
	state := f.states.StateFor(path)
	if !state.Visible || state.Disabled {
		return ErrFieldDisabled
	}
	count := f.itemCount(path)
	if index < 0 || index >= count {
		return fmt.Errorf("form: index %d out of range for %q", index, path)
	}
	if field.MinItems != nil && count <= *field.MinItems {
		return ErrMinItems
	}

	if !paths.Delete(f.values, paths.Index(path, index)) {
		return fmt.Errorf("form: cannot remove item %d at %q", index, path)
	}
	f.markChanged(path)
	f.recompute(path)
	f.notifyChange()
	return nil
}

// ItemCount returns the number of items currently held by an array field.
func (f *Form) ItemCount(path string) int {
	return f.itemCount(path)
}

func (f *Form) itemCount(path string) int {
	value, ok := paths.Get(f.values, path)
	if !ok {
		return 0
	}
	items, ok := value.([]any)
	if !ok {
		return 0
	}
	return len(items)
}
