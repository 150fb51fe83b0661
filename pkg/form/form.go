// Package form composes the validation compiler, dependency evaluator, and
// option resolver against live form values. A Form owns its derived state for
// the lifetime of one rendering session; the schema it was built from is
// treated as immutable.
package form

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/telmora/go-formflow/pkg/fieldstate"
	"github.com/telmora/go-formflow/pkg/listmap"
	"github.com/telmora/go-formflow/pkg/options"
	"github.com/telmora/go-formflow/pkg/paths"
	"github.com/telmora/go-formflow/pkg/schema"
	"github.com/telmora/go-formflow/pkg/validate"
	"github.com/telmora/go-formflow/pkg/widgets"
)

var (
	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission has not finished.
	ErrSubmitInFlight = errors.New("form: submit already in flight")
	// ErrNoSubmitHandler is returned by Submit when no handler was
	// configured.
	ErrNoSubmitHandler = errors.New("form: no submit handler configured")
	// ErrMaxItems rejects appending to an array already at maxItems.
	ErrMaxItems = errors.New("form: array field is at maxItems")
	// ErrMinItems rejects removing from an array already at minItems.
	ErrMinItems = errors.New("form: array field is at minItems")
	// ErrFieldDisabled rejects array mutations on an effectively disabled
	// field.
	ErrFieldDisabled = errors.New("form: field is disabled")
)

// ValidationError aggregates per-field failures that blocked a submission.
type ValidationError struct {
	Errors []validate.FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form: validation failed with %d error(s)", len(e.Errors))
}

// SubmitHandler receives the value snapshot on submission. Errors propagate
// back to the Submit caller untouched.
type SubmitHandler func(ctx context.Context, values map[string]any) error

// ChangeHandler fires after every value change with the full current
// snapshot.
type ChangeHandler func(values map[string]any)

// Option customises Form construction.
type Option func(*Form)

// WithDefaults supplies caller default values, shallow-merged over the
// schema-derived defaults: caller keys win one level deep, nested objects are
// replaced wholesale rather than deep-merged.
func WithDefaults(values map[string]any) Option {
	return func(f *Form) {
		f.callerDefaults = values
	}
}

// WithSubmitHandler sets the submission callback.
func WithSubmitHandler(handler SubmitHandler) Option {
	return func(f *Form) {
		f.submitHandler = handler
	}
}

// WithChangeHandler sets the value-change callback.
func WithChangeHandler(handler ChangeHandler) Option {
	return func(f *Form) {
		f.onChange = handler
	}
}

// WithResolver injects a pre-configured option resolver.
func WithResolver(resolver *options.Resolver) Option {
	return func(f *Form) {
		if resolver != nil {
			f.resolver = resolver
		}
	}
}

// WithListMapStore wires the shared dictionary store; a resolver is built
// around it unless one was injected explicitly.
func WithListMapStore(store listmap.Store) Option {
	return func(f *Form) {
		f.store = store
	}
}

// WithCustomValidators supplies named validators referenced by
// validation.custom.
func WithCustomValidators(registry *validate.Registry) Option {
	return func(f *Form) {
		if registry != nil {
			f.customValidators = registry
		}
	}
}

// WithWidgetRegistry overrides the widget-kind resolution registry.
func WithWidgetRegistry(registry *widgets.Registry) Option {
	return func(f *Form) {
		if registry != nil {
			f.widgetRegistry = registry
		}
	}
}

// Form is one live form session. It is not safe for concurrent use: all
// computation is driven by discrete value-change events, matching the
// engine's cooperative model. The option resolver it delegates to is
// internally synchronized.
type Form struct {
	schema           *schema.FormSchema
	validator        *validate.FormValidator
	customValidators *validate.Registry
	widgetRegistry   *widgets.Registry
	resolver         *options.Resolver
	ownsResolver     bool
	store            listmap.Store

	schemaDefaults map[string]any
	callerDefaults map[string]any

	values  map[string]any
	states  *fieldstate.Result
	changed map[string]struct{}

	lastErrors []validate.FieldError

	onChange      ChangeHandler
	submitHandler SubmitHandler
	submitting    bool
	submitErr     error

	storeUnsub func()
}

// New validates and compiles the schema, merges defaults, and computes the
// initial field states.
func New(formSchema *schema.FormSchema, opts ...Option) (*Form, error) {
	if formSchema == nil {
		return nil, errors.New("form: schema is required")
	}
	if err := formSchema.Validate(); err != nil {
		return nil, err
	}

	f := &Form{
		schema:  formSchema,
		changed: make(map[string]struct{}),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(f)
	}

	var compileOpts []validate.Option
	if f.customValidators != nil {
		compileOpts = append(compileOpts, validate.WithCustomValidators(f.customValidators))
	}
	validator, err := validate.Compile(formSchema, compileOpts...)
	if err != nil {
		return nil, err
	}
	f.validator = validator
	f.schemaDefaults = validator.Defaults()

	if f.widgetRegistry == nil {
		f.widgetRegistry = widgets.NewRegistry()
	}
	if f.resolver == nil {
		var resolverOpts []options.Option
		if f.store != nil {
			resolverOpts = append(resolverOpts, options.WithStore(f.store))
		}
		f.resolver = options.New(resolverOpts...)
		f.ownsResolver = true
	}
	if f.store != nil {
		f.storeUnsub = f.store.Subscribe(f.onListMapReplaced)
	}

	f.values = mergeDefaults(f.schemaDefaults, f.callerDefaults)
	f.states = fieldstate.Evaluate(formSchema.Fields, f.values)
	return f, nil
}

// Close releases the dictionary-store subscriptions: the form's own, and the
// resolver's when the form built the resolver itself. Injected resolvers
// outlive the form and stay subscribed.
func (f *Form) Close() {
	if f.storeUnsub != nil {
		f.storeUnsub()
		f.storeUnsub = nil
	}
	if f.ownsResolver && f.resolver != nil {
		f.resolver.Close()
	}
}

// Schema returns the immutable schema this form was built from.
func (f *Form) Schema() *schema.FormSchema {
	return f.schema
}

// Values returns a deep copy of the current value snapshot.
func (f *Form) Values() map[string]any {
	return validate.CloneValues(f.values)
}

// Value resolves a single dot-joined path.
func (f *Form) Value(path string) (any, bool) {
	return paths.Get(f.values, path)
}

// SetValue writes one value and synchronously recomputes the derived state.
// Fields whose state or watched option dependency changed are added to the
// dirty set consumed by Changed.
func (f *Form) SetValue(path string, value any) error {
	if !paths.Set(f.values, path, value) {
		return fmt.Errorf("form: cannot set value at %q", path)
	}
	f.markChanged(path)
	f.recompute(path)
	f.notifyChange()
	return nil
}

// SetValues applies multiple writes as a single change event. The batch is
// atomic: a path that cannot be written leaves the form untouched.
func (f *Form) SetValues(updates map[string]any) error {
	staged := validate.CloneValues(f.values)
	for path, value := range updates {
		if !paths.Set(staged, path, value) {
			return fmt.Errorf("form: cannot set value at %q", path)
		}
	}
	f.values = staged
	for path := range updates {
		f.markChanged(path)
		f.recompute(path)
	}
	f.notifyChange()
	return nil
}

// recompute re-evaluates dependency state after a change at path and marks
// every field whose derived state or option source was affected.
func (f *Form) recompute(changedPath string) {
	previous := f.states
	f.states = fieldstate.Evaluate(f.schema.Fields, f.values)

	for _, statePath := range f.states.Paths() {
		if previous.StateFor(statePath) != f.states.StateFor(statePath) {
			f.markChanged(statePath)
		}
	}

	walkFields(f.schema.Fields, "", func(field schema.Field, fieldPath string) {
		for _, dep := range field.OptionsDependsOn {
			if dep == changedPath {
				f.resolver.Invalidate(fieldPath)
				f.markChanged(fieldPath)
			}
		}
	})
}

// onListMapReplaced reacts to a wholesale dictionary replacement: every
// keyed dynamic field re-resolves on next read.
func (f *Form) onListMapReplaced() {
	walkFields(f.schema.Fields, "", func(field schema.Field, fieldPath string) {
		if field.OptionsKey != "" {
			f.markChanged(fieldPath)
		}
	})
}

// StateFor returns the derived state for a path, defaulting to visible,
// enabled, optional for unknown paths.
func (f *Form) StateFor(path string) fieldstate.State {
	return f.states.StateFor(path)
}

// States exposes the full evaluation result.
func (f *Form) States() *fieldstate.Result {
	return f.states
}

// OptionsFor resolves the current option list for a field path.
func (f *Form) OptionsFor(ctx context.Context, path string) (options.Resolution, error) {
	field, ok := f.fieldByPath(path)
	if !ok {
		return options.Resolution{}, fmt.Errorf("form: unknown field %q", path)
	}
	return f.resolver.Resolve(ctx, path, field, f.values), nil
}

// Validate runs the compiled validator against the current snapshot,
// dropping failures on fields that are currently invisible. The result is
// retained for rendering.
func (f *Form) Validate() []validate.FieldError {
	all := f.validator.Validate(f.values)
	visible := all[:0]
	for _, fieldErr := range all {
		if f.states.StateFor(fieldErr.Path).Visible {
			visible = append(visible, fieldErr)
		}
	}
	f.lastErrors = visible
	return visible
}

// Errors returns the failures recorded by the last Validate or Submit.
func (f *Form) Errors() []validate.FieldError {
	return f.lastErrors
}

// Submit validates and invokes the submit handler with the current snapshot.
// Handler errors propagate to the caller and are retrievable via
// SubmitError; the form stays editable and resubmittable either way.
func (f *Form) Submit(ctx context.Context) error {
	if f.submitting {
		return ErrSubmitInFlight
	}
	if f.submitHandler == nil {
		return ErrNoSubmitHandler
	}
	if errs := f.Validate(); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	f.submitting = true
	defer func() {
		f.submitting = false
	}()

	err := f.submitHandler(ctx, f.Values())
	f.submitErr = err
	return err
}

// Submitting reports whether a submission is in flight.
func (f *Form) Submitting() bool {
	return f.submitting
}

// SubmitError returns the error recorded by the last submission, nil after a
// successful one.
func (f *Form) SubmitError() error {
	return f.submitErr
}

// Reset restores the merged defaults and re-derives all state.
func (f *Form) Reset() {
	f.values = mergeDefaults(f.schemaDefaults, f.callerDefaults)
	f.states = fieldstate.Evaluate(f.schema.Fields, f.values)
	f.markAll()
	f.lastErrors = nil
	f.notifyChange()
}

// SetDefaults replaces the caller defaults and resets the whole form to the
// newly merged values, mirroring a defaults identity change.
func (f *Form) SetDefaults(values map[string]any) {
	f.callerDefaults = values
	f.Reset()
}

// Changed drains and returns the sorted set of paths whose value, derived
// state, or option source changed since the last call. Renderers use it to
// re-render only affected fields.
func (f *Form) Changed() []string {
	if len(f.changed) == 0 {
		return nil
	}
	out := make([]string, 0, len(f.changed))
	for path := range f.changed {
		out = append(out, path)
	}
	sort.Strings(out)
	f.changed = make(map[string]struct{})
	return out
}

func (f *Form) markChanged(path string) {
	f.changed[path] = struct{}{}
}

func (f *Form) markAll() {
	walkFields(f.schema.Fields, "", func(_ schema.Field, fieldPath string) {
		f.markChanged(fieldPath)
	})
}

func (f *Form) notifyChange() {
	if f.onChange != nil {
		f.onChange(f.Values())
	}
}

// fieldByPath finds the schema field addressed by a dot-joined path. Numeric
// segments resolve into the enclosing array field's children.
func (f *Form) fieldByPath(path string) (schema.Field, bool) {
	fields := f.schema.Fields
	var current schema.Field
	found := false
	for _, segment := range strings.Split(path, ".") {
		if _, err := strconv.Atoi(segment); err == nil {
			fields = current.Children
			continue
		}
		found = false
		for _, field := range fields {
			if field.Name == segment {
				current = field
				fields = field.Children
				found = true
				break
			}
		}
		if !found {
			return schema.Field{}, false
		}
	}
	return current, found
}

// walkFields visits every field in the tree with its dot-joined schema path
// (array children are visited once, without item indices).
func walkFields(fields []schema.Field, prefix string, visit func(field schema.Field, path string)) {
	for _, field := range fields {
		path := paths.Join(prefix, field.Name)
		visit(field, path)
		if len(field.Children) > 0 {
			walkFields(field.Children, path, visit)
		}
	}
}

// mergeDefaults applies the documented shallow merge: caller keys win one
// level deep, nested objects are replaced wholesale.
func mergeDefaults(schemaDefaults, callerDefaults map[string]any) map[string]any {
	merged := validate.CloneValues(schemaDefaults)
	if merged == nil {
		merged = make(map[string]any)
	}
	for key, value := range callerDefaults {
		merged[key] = value
	}
	return validate.CloneValues(merged)
}
