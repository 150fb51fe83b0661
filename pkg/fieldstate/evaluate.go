package fieldstate

import (
	"github.com/telmora/go-formflow/pkg/paths"
	"github.com/telmora/go-formflow/pkg/schema"
)

// Evaluate walks the field tree and computes the derived state for every
// reachable path. Group children are visited under the group's name scope;
// array children are visited once per existing item index.
func Evaluate(fields []schema.Field, values map[string]any) *Result {
	result := &Result{states: make(map[string]State)}
	evaluateFields(fields, "", values, result)
	return result
}

func evaluateFields(fields []schema.Field, prefix string, values map[string]any, result *Result) {
	for _, field := range fields {
		path := paths.Join(prefix, field.Name)
		result.states[path] = evaluateField(field, values)

		switch field.Type {
		case schema.FieldTypeGroup:
			evaluateFields(field.Children, path, values, result)
		case schema.FieldTypeArray:
			items, _ := paths.Get(values, path)
			slice, _ := items.([]any)
			for idx := range slice {
				evaluateFields(field.Children, paths.Index(path, idx), values, result)
			}
		}
	}
}

func evaluateField(field schema.Field, values map[string]any) State {
	state := State{
		Visible:  !field.Hidden,
		Disabled: field.Disabled,
		Required: field.Validation.RequiredEnabled(),
	}

	for _, dep := range field.Dependencies {
		target, _ := paths.Get(values, dep.Field)
		holds := conditionHolds(dep.Condition, target, dep.Value)
		applyAction(&state, dep.Action, holds)
	}
	return state
}

// applyAction overwrites the attribute targeted by the action. show/hide and
// enable/disable invert when the condition is false; require/optional have no
// inverse and leave the required state untouched on a false condition.
func applyAction(state *State, action schema.Action, holds bool) {
	switch action {
	case schema.ActionShow:
		state.Visible = holds
	case schema.ActionHide:
		state.Visible = !holds
	case schema.ActionEnable:
		state.Disabled = !holds
	case schema.ActionDisable:
		state.Disabled = holds
	case schema.ActionRequire:
		if holds {
			state.Required = true
		}
	case schema.ActionOptional:
		if holds {
			state.Required = false
		}
	}
}
