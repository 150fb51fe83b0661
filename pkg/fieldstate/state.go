// Package fieldstate derives the per-field {visible, disabled, required}
// triple from a form schema's dependency rules and the current value
// snapshot. Evaluation is pure and deterministic; it is rerun on every value
// change and may safely be rerun on every keystroke.
package fieldstate

// State is the derived, ephemeral per-field render state. Consumers read it;
// only the evaluator writes it.
type State struct {
	Visible  bool
	Disabled bool
	Required bool
}

// DefaultState is returned for paths the evaluator has not seen, such as
// array items that have not been instantiated yet.
func DefaultState() State {
	return State{Visible: true}
}

// Result holds the evaluated states keyed by dot-joined field path.
type Result struct {
	states map[string]State
}

// StateFor returns the state for a path, defaulting to visible, enabled, and
// optional when the path was not part of the evaluation.
func (r *Result) StateFor(path string) State {
	if r == nil {
		return DefaultState()
	}
	if state, ok := r.states[path]; ok {
		return state
	}
	return DefaultState()
}

// Has reports whether a path was part of the evaluation.
func (r *Result) Has(path string) bool {
	if r == nil {
		return false
	}
	_, ok := r.states[path]
	return ok
}

// Paths returns every evaluated path. The slice is a copy.
func (r *Result) Paths() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.states))
	for path := range r.states {
		out = append(out, path)
	}
	return out
}
