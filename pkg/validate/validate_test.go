package validate

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/telmora/go-formflow/pkg/schema"
)

func mustCompile(t *testing.T, form *schema.FormSchema, opts ...Option) *FormValidator {
	t.Helper()
	v, err := Compile(form, opts...)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return v
}

func ageForm() *schema.FormSchema {
	return &schema.FormSchema{
		ID: "applicant",
		Fields: []schema.Field{
			{
				Name: "age", Type: schema.FieldTypeNumber, Label: "Age",
				Validation: &schema.Validation{
					Required: &schema.Flag{Enabled: true, Message: "Age is mandatory"},
					Min:      &schema.Bound{Value: 18, Message: "cannot be less than 18"},
					Max:      &schema.Bound{Value: 65},
				},
			},
		},
	}
}

func TestValidateNumberBounds(t *testing.T) {
	t.Parallel()

	v := mustCompile(t, ageForm())

	tests := []struct {
		name    string
		value   any
		wantMsg string
	}{
		{name: "below min", value: float64(17), wantMsg: "cannot be less than 18"},
		{name: "above max", value: float64(66), wantMsg: "cannot be greater than 65"},
		{name: "within bounds", value: float64(30), wantMsg: ""},
		{name: "at min", value: float64(18), wantMsg: ""},
		{name: "not a number", value: "thirty", wantMsg: "must be a number"},
		{name: "absent", value: nil, wantMsg: "Age is mandatory"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			values := map[string]any{}
			if tc.value != nil {
				values["age"] = tc.value
			}
			errs := v.Validate(values)
			if tc.wantMsg == "" {
				if len(errs) != 0 {
					t.Fatalf("Validate = %v, want clean", errs)
				}
				return
			}
			if len(errs) != 1 || errs[0].Message != tc.wantMsg {
				t.Fatalf("Validate = %v, want one error %q", errs, tc.wantMsg)
			}
			if errs[0].Path != "age" {
				t.Fatalf("error path = %q", errs[0].Path)
			}
		})
	}
}

func TestValidateOptionalSkipsConstraintsWhenEmpty(t *testing.T) {
	t.Parallel()

	form := &schema.FormSchema{
		ID: "f",
		Fields: []schema.Field{
			{
				Name: "nickname", Type: schema.FieldTypeText,
				Validation: &schema.Validation{MinLength: &schema.Bound{Value: 3}},
			},
		},
	}
	v := mustCompile(t, form)

	if errs := v.Validate(map[string]any{}); len(errs) != 0 {
		t.Fatalf("absent optional field should validate clean, got %v", errs)
	}
	if errs := v.Validate(map[string]any{"nickname": ""}); len(errs) != 0 {
		t.Fatalf("empty optional field should validate clean, got %v", errs)
	}
	if errs := v.Validate(map[string]any{"nickname": "ab"}); len(errs) != 1 {
		t.Fatalf("short value should fail, got %v", errs)
	}
}

func TestValidateString(t *testing.T) {
	t.Parallel()

	form := &schema.FormSchema{
		ID: "f",
		Fields: []schema.Field{
			{
				Name: "zip", Type: schema.FieldTypeText, Label: "ZIP",
				Validation: &schema.Validation{
					Pattern: &schema.Pattern{Expr: `^\d{5}$`, Message: "five digits"},
				},
			},
			{Name: "contact", Type: schema.FieldTypeEmail, Label: "Contact"},
			{
				Name: "site", Type: schema.FieldTypeText,
				Validation: &schema.Validation{URL: true},
			},
		},
	}
	v := mustCompile(t, form)

	errs := v.Validate(map[string]any{
		"zip":     "1234",
		"contact": "not-an-email",
		"site":    "not a url",
	})
	byPath := map[string]string{}
	for _, e := range errs {
		byPath[e.Path] = e.Message
	}
	if byPath["zip"] != "five digits" {
		t.Fatalf("zip message = %q", byPath["zip"])
	}
	if byPath["contact"] != "must be a valid email address" {
		t.Fatalf("contact message = %q", byPath["contact"])
	}
	if byPath["site"] != "must be a valid URL" {
		t.Fatalf("site message = %q", byPath["site"])
	}

	clean := v.Validate(map[string]any{
		"zip":     "12345",
		"contact": "a@b.co",
		"site":    "https://example.com/x",
	})
	if len(clean) != 0 {
		t.Fatalf("Validate = %v, want clean", clean)
	}
}

func TestValidateRuneLength(t *testing.T) {
	t.Parallel()

	form := &schema.FormSchema{
		ID: "f",
		Fields: []schema.Field{
			{
				Name: "name", Type: schema.FieldTypeText,
				Validation: &schema.Validation{
					MinLength: &schema.Bound{Value: 2},
					MaxLength: &schema.Bound{Value: 4},
				},
			},
		},
	}
	v := mustCompile(t, form)

	// four runes, twelve bytes
	if errs := v.Validate(map[string]any{"name": "日本語字"}); len(errs) != 0 {
		t.Fatalf("rune-length check failed: %v", errs)
	}
	errs := v.Validate(map[string]any{"name": "日本語字五"})
	if len(errs) != 1 || errs[0].Message != "must be at most 4 characters" {
		t.Fatalf("Validate = %v", errs)
	}
}

func TestValidateCheckboxVariants(t *testing.T) {
	t.Parallel()

	form := &schema.FormSchema{
		ID: "f",
		Fields: []schema.Field{
			{
				Name: "accept", Type: schema.FieldTypeCheckbox, Label: "Accept",
				Options: []schema.FieldOption{{Label: "Yes", Value: true}},
			},
			{
				Name: "channels", Type: schema.FieldTypeCheckbox, Label: "Channels",
				Options: []schema.FieldOption{
					{Label: "Email", Value: "email"},
					{Label: "SMS", Value: "sms"},
				},
				Validation: &schema.Validation{Required: &schema.Flag{Enabled: true}},
			},
		},
	}
	v := mustCompile(t, form)

	// single-option checkbox takes a bool
	errs := v.Validate(map[string]any{"accept": "yes", "channels": []any{"email"}})
	if len(errs) != 1 || errs[0].Path != "accept" || errs[0].Message != "must be a boolean" {
		t.Fatalf("Validate = %v", errs)
	}

	// multi-option checkbox requires a non-empty selection
	errs = v.Validate(map[string]any{"accept": true, "channels": []any{}})
	if len(errs) != 1 || errs[0].Message != "Channels is required" {
		t.Fatalf("Validate = %v", errs)
	}

	errs = v.Validate(map[string]any{"accept": false, "channels": []any{"email", "sms"}})
	if len(errs) != 0 {
		t.Fatalf("Validate = %v, want clean", errs)
	}
}

func TestValidateDate(t *testing.T) {
	t.Parallel()

	form := &schema.FormSchema{
		ID:     "f",
		Fields: []schema.Field{{Name: "dob", Type: schema.FieldTypeDate}},
	}
	v := mustCompile(t, form)

	for _, ok := range []string{"2001-02-03", "2001-02-03T04:05:06", "2001-02-03T04:05:06Z"} {
		if errs := v.Validate(map[string]any{"dob": ok}); len(errs) != 0 {
			t.Fatalf("date %q rejected: %v", ok, errs)
		}
	}
	errs := v.Validate(map[string]any{"dob": "03/02/2001"})
	if len(errs) != 1 || errs[0].Message != "must be a valid date" {
		t.Fatalf("Validate = %v", errs)
	}
}

func TestValidateArray(t *testing.T) {
	t.Parallel()

	one, three := 1, 3
	form := &schema.FormSchema{
		ID: "f",
		Fields: []schema.Field{
			{
				Name: "contacts", Type: schema.FieldTypeArray, Label: "Contacts",
				MinItems: &one, MaxItems: &three,
				Children: []schema.Field{
					{
						Name: "phone", Type: schema.FieldTypeText, Label: "Phone",
						Validation: &schema.Validation{Required: &schema.Flag{Enabled: true}},
					},
				},
			},
		},
	}
	v := mustCompile(t, form)

	errs := v.Validate(map[string]any{"contacts": []any{}})
	if len(errs) != 1 || errs[0].Message != "must have at least 1 items" {
		t.Fatalf("Validate = %v", errs)
	}

	errs = v.Validate(map[string]any{"contacts": []any{
		map[string]any{"phone": "1"}, map[string]any{"phone": "2"},
		map[string]any{"phone": "3"}, map[string]any{"phone": "4"},
	}})
	if len(errs) != 1 || errs[0].Message != "must have at most 3 items" {
		t.Fatalf("Validate = %v", errs)
	}

	// per-item recursion addresses failures by item index
	errs = v.Validate(map[string]any{"contacts": []any{
		map[string]any{"phone": "1"},
		map[string]any{"phone": ""},
	}})
	if len(errs) != 1 || errs[0].Path != "contacts.1.phone" {
		t.Fatalf("Validate = %v", errs)
	}
}

func TestValidateAbsentOptionalArray(t *testing.T) {
	t.Parallel()

	two := 2
	form := &schema.FormSchema{
		ID: "f",
		Fields: []schema.Field{
			{
				Name: "contacts", Type: schema.FieldTypeArray,
				MinItems: &two,
				Children: []schema.Field{
					{Name: "phone", Type: schema.FieldTypeText},
				},
			},
		},
	}
	v := mustCompile(t, form)

	// item bounds only apply once a value is present
	if errs := v.Validate(map[string]any{}); len(errs) != 0 {
		t.Fatalf("absent optional array should validate clean, got %v", errs)
	}
	if errs := v.Validate(map[string]any{"contacts": nil}); len(errs) != 0 {
		t.Fatalf("nil optional array should validate clean, got %v", errs)
	}
	errs := v.Validate(map[string]any{"contacts": []any{}})
	if len(errs) != 1 || errs[0].Message != "must have at least 2 items" {
		t.Fatalf("present empty array must still fail minItems, got %v", errs)
	}
}

func TestValidateField(t *testing.T) {
	t.Parallel()

	v := mustCompile(t, ageForm())

	errs := v.ValidateField("age", map[string]any{"age": float64(10)})
	if len(errs) != 1 || errs[0].Message != "cannot be less than 18" {
		t.Fatalf("ValidateField = %v", errs)
	}
	if errs := v.ValidateField("unknown", map[string]any{}); errs != nil {
		t.Fatalf("unknown path should validate clean, got %v", errs)
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	t.Run("unregistered custom validator", func(t *testing.T) {
		t.Parallel()
		form := &schema.FormSchema{
			ID: "f",
			Fields: []schema.Field{
				{
					Name: "code", Type: schema.FieldTypeText,
					Validation: &schema.Validation{Custom: "checksum"},
				},
			},
		}
		_, err := Compile(form)
		if err == nil || !strings.Contains(err.Error(), `custom validator "checksum" is not registered`) {
			t.Fatalf("Compile error = %v", err)
		}
		if !strings.Contains(err.Error(), `field "code"`) {
			t.Fatalf("error should name the field path: %v", err)
		}
	})

	t.Run("invalid pattern names nested path", func(t *testing.T) {
		t.Parallel()
		form := &schema.FormSchema{
			ID: "f",
			Fields: []schema.Field{
				{
					Name: "address", Type: schema.FieldTypeGroup,
					Children: []schema.Field{
						{
							Name: "zip", Type: schema.FieldTypeText,
							Validation: &schema.Validation{Pattern: &schema.Pattern{Expr: "["}},
						},
					},
				},
			},
		}
		_, err := Compile(form)
		if err == nil || !strings.Contains(err.Error(), `field "address.zip"`) {
			t.Fatalf("Compile error = %v", err)
		}
	})
}

func TestCustomValidator(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("adult", func(value any, values map[string]any) (bool, string) {
		n, ok := value.(float64)
		if !ok || n < 18 {
			return false, "must be an adult"
		}
		return true, ""
	})

	form := &schema.FormSchema{
		ID: "f",
		Fields: []schema.Field{
			{
				Name: "age", Type: schema.FieldTypeNumber,
				Validation: &schema.Validation{Custom: "adult"},
			},
		},
	}
	v := mustCompile(t, form, WithCustomValidators(registry))

	errs := v.Validate(map[string]any{"age": float64(12)})
	if len(errs) != 1 || errs[0].Message != "must be an adult" {
		t.Fatalf("Validate = %v", errs)
	}
	if errs := v.Validate(map[string]any{"age": float64(30)}); len(errs) != 0 {
		t.Fatalf("Validate = %v, want clean", errs)
	}
	// custom validators only run when a value is present
	if errs := v.Validate(map[string]any{}); len(errs) != 0 {
		t.Fatalf("Validate = %v, want clean for absent optional value", errs)
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	form := &schema.FormSchema{
		ID: "f",
		Fields: []schema.Field{
			{Name: "name", Type: schema.FieldTypeText},
			{Name: "age", Type: schema.FieldTypeNumber},
			{Name: "country", Type: schema.FieldTypeSelect, DefaultValue: "NL"},
			{Name: "subscribed", Type: schema.FieldTypeSwitch},
			{
				Name: "channels", Type: schema.FieldTypeCheckbox,
				Options: []schema.FieldOption{{Value: "a"}, {Value: "b"}},
			},
			{
				Name: "accept", Type: schema.FieldTypeCheckbox,
				Options: []schema.FieldOption{{Value: true}},
			},
			{
				Name: "address", Type: schema.FieldTypeGroup,
				Children: []schema.Field{
					{Name: "city", Type: schema.FieldTypeText},
				},
			},
			{
				Name: "contacts", Type: schema.FieldTypeArray,
				Children: []schema.Field{
					{Name: "phone", Type: schema.FieldTypeText},
				},
			},
		},
	}
	v := mustCompile(t, form)

	want := map[string]any{
		"name":       "",
		"country":    "NL",
		"subscribed": false,
		"channels":   []any{},
		"accept":     false,
		"address":    map[string]any{"city": ""},
		"contacts":   []any{},
	}
	got := v.Defaults()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Defaults mismatch (-want +got):\n%s", diff)
	}
	if _, present := got["age"]; present {
		t.Fatal("number default must stay absent")
	}

	// returned map is a copy
	got["name"] = "mutated"
	if v.Defaults()["name"] != "" {
		t.Fatal("Defaults must return a fresh copy")
	}
}

func TestItemDefaults(t *testing.T) {
	t.Parallel()

	children := []schema.Field{
		{Name: "phone", Type: schema.FieldTypeText},
		{Name: "kind", Type: schema.FieldTypeSelect, DefaultValue: "mobile"},
	}
	want := map[string]any{"phone": "", "kind": "mobile"}
	if diff := cmp.Diff(want, ItemDefaults(children)); diff != "" {
		t.Fatalf("ItemDefaults mismatch (-want +got):\n%s", diff)
	}
}
