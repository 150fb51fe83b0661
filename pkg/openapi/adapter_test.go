package openapi

import (
	"context"
	"testing"

	"github.com/telmora/go-formflow/pkg/schema"
)

const sampleDoc = `{
	"openapi": "3.0.3",
	"info": {"title": "Policies", "version": "1.0.0"},
	"paths": {
		"/applicants": {
			"post": {
				"operationId": "createApplicant",
				"summary": "Create applicant",
				"requestBody": {
					"required": true,
					"content": {
						"application/json": {
							"schema": {
								"type": "object",
								"required": ["fullName", "age"],
								"properties": {
									"fullName": {
										"type": "string",
										"title": "Full name",
										"minLength": 2,
										"maxLength": 80
									},
									"age": {
										"type": "integer",
										"minimum": 18,
										"maximum": 65
									},
									"email": {"type": "string", "format": "email"},
									"birthDate": {"type": "string", "format": "date"},
									"tier": {
										"type": "string",
										"enum": ["basic", "premium"],
										"default": "basic"
									},
									"subscribed": {"type": "boolean"},
									"address": {
										"type": "object",
										"properties": {
											"city": {"type": "string"},
											"zip": {"type": "string", "pattern": "^\\d{5}$"}
										}
									},
									"contacts": {
										"type": "array",
										"minItems": 1,
										"items": {
											"type": "object",
											"properties": {
												"phone": {"type": "string"}
											}
										}
									},
									"tags": {
										"type": "array",
										"items": {"type": "string"}
									}
								}
							}
						}
					}
				},
				"responses": {"201": {"description": "created"}}
			}
		},
		"/noop": {
			"get": {
				"operationId": "listApplicants",
				"responses": {"200": {"description": "ok"}}
			}
		}
	}
}`

func buildSample(t *testing.T) *schema.FormSchema {
	t.Helper()
	doc, err := LoadDocument(context.Background(), []byte(sampleDoc))
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	form, err := BuildFormSchema(doc, "createApplicant")
	if err != nil {
		t.Fatalf("BuildFormSchema: %v", err)
	}
	return form
}

func fieldByName(t *testing.T, fields []schema.Field, name string) schema.Field {
	t.Helper()
	for _, field := range fields {
		if field.Name == name {
			return field
		}
	}
	t.Fatalf("field %q not found", name)
	return schema.Field{}
}

func TestBuildFormSchema(t *testing.T) {
	t.Parallel()

	form := buildSample(t)

	if form.ID != "createApplicant" || form.Title != "Create applicant" {
		t.Fatalf("header = %+v", form)
	}
	if form.Submit == nil || form.Submit.URL != "/applicants" || form.Submit.Method != "POST" {
		t.Fatalf("submit = %+v", form.Submit)
	}
	if err := form.Validate(); err != nil {
		t.Fatalf("generated schema invalid: %v", err)
	}
}

func TestFieldTypeMapping(t *testing.T) {
	t.Parallel()

	form := buildSample(t)

	fullName := fieldByName(t, form.Fields, "fullName")
	if fullName.Type != schema.FieldTypeText || fullName.Label != "Full name" {
		t.Fatalf("fullName = %+v", fullName)
	}
	if !fullName.Validation.RequiredEnabled() {
		t.Fatal("fullName should be required")
	}
	if fullName.Validation.MinLength.Value != 2 || fullName.Validation.MaxLength.Value != 80 {
		t.Fatalf("fullName lengths = %+v", fullName.Validation)
	}

	age := fieldByName(t, form.Fields, "age")
	if age.Type != schema.FieldTypeNumber {
		t.Fatalf("age type = %q", age.Type)
	}
	if age.Validation.Min.Value != 18 || age.Validation.Max.Value != 65 {
		t.Fatalf("age bounds = %+v", age.Validation)
	}

	email := fieldByName(t, form.Fields, "email")
	if email.Type != schema.FieldTypeEmail {
		t.Fatalf("email type = %q", email.Type)
	}

	birthDate := fieldByName(t, form.Fields, "birthDate")
	if birthDate.Type != schema.FieldTypeDate {
		t.Fatalf("birthDate type = %q", birthDate.Type)
	}

	tier := fieldByName(t, form.Fields, "tier")
	if tier.Type != schema.FieldTypeSelect || len(tier.Options) != 2 {
		t.Fatalf("tier = %+v", tier)
	}
	if tier.DefaultValue != "basic" {
		t.Fatalf("tier default = %v", tier.DefaultValue)
	}

	subscribed := fieldByName(t, form.Fields, "subscribed")
	if subscribed.Type != schema.FieldTypeSwitch {
		t.Fatalf("subscribed type = %q", subscribed.Type)
	}
}

func TestNestedStructures(t *testing.T) {
	t.Parallel()

	form := buildSample(t)

	address := fieldByName(t, form.Fields, "address")
	if address.Type != schema.FieldTypeGroup || len(address.Children) != 2 {
		t.Fatalf("address = %+v", address)
	}
	zip := fieldByName(t, address.Children, "zip")
	if zip.Validation == nil || zip.Validation.Pattern.Expr != `^\d{5}$` {
		t.Fatalf("zip = %+v", zip)
	}

	contacts := fieldByName(t, form.Fields, "contacts")
	if contacts.Type != schema.FieldTypeArray {
		t.Fatalf("contacts type = %q", contacts.Type)
	}
	if contacts.MinItems == nil || *contacts.MinItems != 1 {
		t.Fatalf("contacts minItems = %v", contacts.MinItems)
	}
	if len(contacts.Children) != 1 || contacts.Children[0].Name != "phone" {
		t.Fatalf("contacts children = %+v", contacts.Children)
	}

	// scalar items wrap into a single value child
	tags := fieldByName(t, form.Fields, "tags")
	if len(tags.Children) != 1 || tags.Children[0].Name != "value" {
		t.Fatalf("tags children = %+v", tags.Children)
	}
}

func TestBuildFormSchemaErrors(t *testing.T) {
	t.Parallel()

	doc, err := LoadDocument(context.Background(), []byte(sampleDoc))
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}

	if _, err := BuildFormSchema(doc, "missingOperation"); err == nil {
		t.Fatal("BuildFormSchema accepted an unknown operationId")
	}
	// GET operations carry no request body to derive fields from
	if _, err := BuildFormSchema(doc, "listApplicants"); err == nil {
		t.Fatal("BuildFormSchema accepted an operation without a request body")
	}
}
