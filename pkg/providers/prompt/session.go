package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/telmora/go-formflow/pkg/form"
	"github.com/telmora/go-formflow/pkg/paths"
	"github.com/telmora/go-formflow/pkg/schema"
)

// maxPasses bounds re-prompting after validation failures.
const maxPasses = 3

// Session walks a form's visible fields in document order, prompting for
// each leaf. Visibility and options are re-derived after every answer, so
// dependent fields appear or disappear mid-session.
type Session struct {
	form   *form.Form
	driver Driver
}

// NewSession binds a form to a terminal driver.
func NewSession(f *form.Form, driver Driver) *Session {
	return &Session{form: f, driver: driver}
}

// Run prompts through the form, re-prompts fields that failed validation,
// and submits once the snapshot is valid.
func (s *Session) Run(ctx context.Context) error {
	title := s.form.Schema().Title
	if title != "" {
		s.driver.Info(title)
	}
	if desc := s.form.Schema().Description; desc != "" {
		s.driver.Info(desc)
	}

	if err := s.askFields(ctx, s.form.Schema().Fields, ""); err != nil {
		return err
	}

	for pass := 0; pass < maxPasses; pass++ {
		errs := s.form.Validate()
		if len(errs) == 0 {
			break
		}
		s.driver.Info(fmt.Sprintf("%d field(s) need attention:", len(errs)))
		for _, fieldErr := range errs {
			s.driver.Info("  " + fieldErr.Message)
		}
		if pass == maxPasses-1 {
			return &form.ValidationError{Errors: errs}
		}
		for _, fieldErr := range errs {
			if err := s.reaskPath(ctx, fieldErr.Path); err != nil {
				return err
			}
		}
	}

	return s.form.Submit(ctx)
}

func (s *Session) askFields(ctx context.Context, fields []schema.Field, prefix string) error {
	for _, field := range fields {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := paths.Join(prefix, field.Name)
		state := s.form.StateFor(path)
		if !state.Visible || state.Disabled || field.Readonly {
			continue
		}

		switch field.Type {
		case schema.FieldTypeGroup:
			if label := field.DisplayLabel(); label != "" {
				s.driver.Info(label)
			}
			if err := s.askFields(ctx, field.Children, path); err != nil {
				return err
			}
		case schema.FieldTypeArray:
			if err := s.askArray(ctx, field, path); err != nil {
				return err
			}
		default:
			if err := s.askLeaf(ctx, field, path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) askArray(ctx context.Context, field schema.Field, path string) error {
	label := field.DisplayLabel()
	for idx := 0; idx < s.form.ItemCount(path); idx++ {
		s.driver.Info(fmt.Sprintf("%s #%d", label, idx+1))
		if err := s.askFields(ctx, field.Children, paths.Index(path, idx)); err != nil {
			return err
		}
	}
	for s.form.CanAppendItem(path) {
		more, err := s.driver.Confirm(fmt.Sprintf("Add %s?", label), false)
		if err != nil {
			return err
		}
		if !more {
			break
		}
		idx, err := s.form.AppendItem(path)
		if err != nil {
			return err
		}
		s.driver.Info(fmt.Sprintf("%s #%d", label, idx+1))
		if err := s.askFields(ctx, field.Children, paths.Index(path, idx)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) askLeaf(ctx context.Context, field schema.Field, path string) error {
	message := field.DisplayLabel()
	if s.form.StateFor(path).Required {
		message += " *"
	}
	current, _ := s.form.Value(path)

	switch {
	case field.Type == schema.FieldTypePassword:
		answer, err := s.driver.Password(message, field.Description)
		if err != nil {
			return err
		}
		return s.form.SetValue(path, answer)

	case field.Type == schema.FieldTypeSwitch:
		def, _ := current.(bool)
		answer, err := s.driver.Confirm(message, def)
		if err != nil {
			return err
		}
		return s.form.SetValue(path, answer)

	case field.Type == schema.FieldTypeCheckbox && len(field.Options) <= 1 && !field.Dynamic():
		def, _ := current.(bool)
		answer, err := s.driver.Confirm(message, def)
		if err != nil {
			return err
		}
		return s.form.SetValue(path, answer)

	case field.Type == schema.FieldTypeCheckbox:
		return s.askMultiChoice(ctx, field, path, message, current)

	case field.Type == schema.FieldTypeSelect || field.Type == schema.FieldTypeRadio:
		return s.askChoice(ctx, field, path, message, current)

	case field.Type == schema.FieldTypeNumber:
		return s.askNumber(field, path, message, current)

	default:
		answer, err := s.driver.Input(message, promptDefault(current), field.Description)
		if err != nil {
			return err
		}
		return s.form.SetValue(path, answer)
	}
}

func (s *Session) askNumber(field schema.Field, path, message string, current any) error {
	answer, err := s.driver.Input(message, promptDefault(current), field.Description)
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) == "" {
		return s.form.SetValue(path, nil)
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	if err != nil {
		// store the raw answer; the validator reports "must be a number"
		return s.form.SetValue(path, answer)
	}
	return s.form.SetValue(path, parsed)
}

func (s *Session) askChoice(ctx context.Context, field schema.Field, path, message string, current any) error {
	labels, byLabel, err := s.choiceLabels(ctx, path)
	if err != nil {
		return err
	}
	if len(labels) == 0 {
		s.driver.Info(fmt.Sprintf("%s: no choices available yet, skipping", field.DisplayLabel()))
		return nil
	}

	defaultChoice := ""
	for label, value := range byLabel {
		if optionValueEqual(current, value) {
			defaultChoice = label
			break
		}
	}

	answer, err := s.driver.Select(message, labels, defaultChoice)
	if err != nil {
		return err
	}
	return s.form.SetValue(path, byLabel[answer])
}

func (s *Session) askMultiChoice(ctx context.Context, field schema.Field, path, message string, current any) error {
	labels, byLabel, err := s.choiceLabels(ctx, path)
	if err != nil {
		return err
	}
	if len(labels) == 0 {
		s.driver.Info(fmt.Sprintf("%s: no choices available yet, skipping", field.DisplayLabel()))
		return nil
	}

	var defaults []string
	if selected, ok := current.([]any); ok {
		for label, value := range byLabel {
			for _, item := range selected {
				if optionValueEqual(item, value) {
					defaults = append(defaults, label)
				}
			}
		}
	}

	answers, err := s.driver.MultiSelect(message, labels, defaults)
	if err != nil {
		return err
	}
	chosen := make([]any, 0, len(answers))
	for _, answer := range answers {
		chosen = append(chosen, byLabel[answer])
	}
	return s.form.SetValue(path, chosen)
}

// choiceLabels resolves the option list and returns display labels plus the
// label-to-value mapping used to translate the answer back.
func (s *Session) choiceLabels(ctx context.Context, path string) ([]string, map[string]any, error) {
	resolution, err := s.form.OptionsFor(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if resolution.Err != "" {
		s.driver.Info("Could not refresh choices: " + resolution.Err)
	}
	labels := make([]string, 0, len(resolution.Options))
	byLabel := make(map[string]any, len(resolution.Options))
	for _, option := range resolution.Options {
		if option.Disabled {
			continue
		}
		label := option.Label
		if label == "" {
			label = fmt.Sprintf("%v", option.Value)
		}
		labels = append(labels, label)
		byLabel[label] = option.Value
	}
	return labels, byLabel, nil
}

// reaskPath re-prompts the single field behind a validation failure.
func (s *Session) reaskPath(ctx context.Context, path string) error {
	field, ok := s.fieldForPath(path)
	if !ok {
		return nil
	}
	if field.Type == schema.FieldTypeGroup || field.Type == schema.FieldTypeArray {
		return nil
	}
	return s.askLeaf(ctx, field, path)
}

func (s *Session) fieldForPath(path string) (schema.Field, bool) {
	fields := s.form.Schema().Fields
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

func promptDefault(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func optionValueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
