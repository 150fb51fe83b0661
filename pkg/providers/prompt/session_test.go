package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/telmora/go-formflow/pkg/form"
	"github.com/telmora/go-formflow/pkg/schema"
)

// fakeDriver replays scripted answers and records every notice.
type fakeDriver struct {
	t        *testing.T
	inputs   []string
	selects  []string
	multis   [][]string
	confirms []bool
	infos    []string
}

func (d *fakeDriver) Input(message, defaultValue, help string) (string, error) {
	if len(d.inputs) == 0 {
		d.t.Fatalf("unexpected Input(%q)", message)
	}
	answer := d.inputs[0]
	d.inputs = d.inputs[1:]
	return answer, nil
}

func (d *fakeDriver) Password(message, help string) (string, error) {
	return d.Input(message, "", help)
}

func (d *fakeDriver) Confirm(message string, defaultValue bool) (bool, error) {
	if len(d.confirms) == 0 {
		d.t.Fatalf("unexpected Confirm(%q)", message)
	}
	answer := d.confirms[0]
	d.confirms = d.confirms[1:]
	return answer, nil
}

func (d *fakeDriver) Select(message string, choices []string, defaultChoice string) (string, error) {
	if len(d.selects) == 0 {
		d.t.Fatalf("unexpected Select(%q)", message)
	}
	answer := d.selects[0]
	d.selects = d.selects[1:]
	return answer, nil
}

func (d *fakeDriver) MultiSelect(message string, choices []string, defaults []string) ([]string, error) {
	if len(d.multis) == 0 {
		d.t.Fatalf("unexpected MultiSelect(%q)", message)
	}
	answer := d.multis[0]
	d.multis = d.multis[1:]
	return answer, nil
}

func (d *fakeDriver) Info(message string) {
	d.infos = append(d.infos, message)
}

func sessionSchema() *schema.FormSchema {
	return &schema.FormSchema{
		ID:    "applicant",
		Title: "Applicant",
		Fields: []schema.Field{
			{Name: "name", Type: schema.FieldTypeText, Label: "Name",
				Validation: &schema.Validation{Required: &schema.Flag{Enabled: true}}},
			{Name: "age", Type: schema.FieldTypeNumber, Label: "Age",
				Validation: &schema.Validation{Min: &schema.Bound{Value: 18, Message: "cannot be less than 18"}}},
			{Name: "occupation", Type: schema.FieldTypeSelect, Label: "Occupation",
				Options: []schema.FieldOption{
					{Label: "Engineer", Value: "engineer"},
					{Label: "Other", Value: "other"},
				}},
			{Name: "occupationDetail", Type: schema.FieldTypeText, Label: "Detail",
				Dependencies: []schema.Dependency{
					{Field: "occupation", Condition: schema.ConditionEquals, Value: "other", Action: schema.ActionShow},
				}},
			{Name: "subscribe", Type: schema.FieldTypeSwitch, Label: "Subscribe"},
		},
	}
}

func TestSessionRun(t *testing.T) {
	t.Parallel()

	var submitted map[string]any
	f, err := form.New(sessionSchema(), form.WithSubmitHandler(func(ctx context.Context, values map[string]any) error {
		submitted = values
		return nil
	}))
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	defer f.Close()

	driver := &fakeDriver{
		t:        t,
		inputs:   []string{"Ada", "30", "artist"},
		selects:  []string{"Other"},
		confirms: []bool{true},
	}

	if err := NewSession(f, driver).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if submitted == nil {
		t.Fatal("submit handler never ran")
	}
	if submitted["name"] != "Ada" || submitted["occupation"] != "other" {
		t.Fatalf("submitted = %v", submitted)
	}
	if submitted["age"] != float64(30) {
		t.Fatalf("age = %v (%T)", submitted["age"], submitted["age"])
	}
	// detail became visible mid-session after the occupation answer
	if submitted["occupationDetail"] != "artist" {
		t.Fatalf("detail = %v", submitted["occupationDetail"])
	}
	if submitted["subscribe"] != true {
		t.Fatalf("subscribe = %v", submitted["subscribe"])
	}
	if len(driver.infos) == 0 || driver.infos[0] != "Applicant" {
		t.Fatalf("infos = %v", driver.infos)
	}
}

func TestSessionSkipsHiddenFields(t *testing.T) {
	t.Parallel()

	f, err := form.New(sessionSchema(), form.WithSubmitHandler(func(ctx context.Context, values map[string]any) error {
		return nil
	}))
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	defer f.Close()

	// occupation stays "engineer", so the detail prompt never fires
	driver := &fakeDriver{
		t:        t,
		inputs:   []string{"Ada", "30"},
		selects:  []string{"Engineer"},
		confirms: []bool{false},
	}

	if err := NewSession(f, driver).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(driver.inputs) != 0 {
		t.Fatalf("unconsumed inputs: %v", driver.inputs)
	}
}

func TestSessionReasksInvalidAnswers(t *testing.T) {
	t.Parallel()

	var submitted map[string]any
	f, err := form.New(sessionSchema(), form.WithSubmitHandler(func(ctx context.Context, values map[string]any) error {
		submitted = values
		return nil
	}))
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	defer f.Close()

	// first age answer violates the minimum and triggers one re-prompt
	driver := &fakeDriver{
		t:        t,
		inputs:   []string{"Ada", "17", "30"},
		selects:  []string{"Engineer"},
		confirms: []bool{false},
	}

	if err := NewSession(f, driver).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if submitted["age"] != float64(30) {
		t.Fatalf("age = %v", submitted["age"])
	}

	var sawMessage bool
	for _, info := range driver.infos {
		if info == "  cannot be less than 18" {
			sawMessage = true
		}
	}
	if !sawMessage {
		t.Fatalf("validation notice missing: %v", driver.infos)
	}
}

func TestSessionGivesUpAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	f, err := form.New(sessionSchema(), form.WithSubmitHandler(func(ctx context.Context, values map[string]any) error {
		t.Fatal("handler must not run")
		return nil
	}))
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	defer f.Close()

	driver := &fakeDriver{
		t:        t,
		inputs:   []string{"Ada", "10", "11", "12"},
		selects:  []string{"Engineer"},
		confirms: []bool{false},
	}

	err = NewSession(f, driver).Run(context.Background())
	var verr *form.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Run = %v, want *ValidationError", err)
	}
}

func TestSessionHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	f, err := form.New(sessionSchema())
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	driver := &fakeDriver{t: t}
	if err := NewSession(f, driver).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}
