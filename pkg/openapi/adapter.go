// Package openapi derives form schemas from OpenAPI 3 operation request
// bodies. One operation becomes one form; the operation's path and method
// become the form's submit target.
package openapi

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/telmora/go-formflow/pkg/schema"
)

// LoadDocument parses and validates an OpenAPI document from raw bytes.
func LoadDocument(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: true,
	}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate document: %w", err)
	}
	return doc, nil
}

// BuildFormSchema converts the JSON request body of the named operation into
// a form schema.
func BuildFormSchema(doc *openapi3.T, operationID string) (*schema.FormSchema, error) {
	path, method, operation, err := findOperation(doc, operationID)
	if err != nil {
		return nil, err
	}

	body, err := requestBodySchema(operation)
	if err != nil {
		return nil, fmt.Errorf("openapi: operation %q: %w", operationID, err)
	}

	fields, err := buildFields(body)
	if err != nil {
		return nil, fmt.Errorf("openapi: operation %q: %w", operationID, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("openapi: operation %q: request body has no properties", operationID)
	}

	title := operation.Summary
	if title == "" {
		title = operationID
	}

	form := &schema.FormSchema{
		ID:          operationID,
		Title:       title,
		Description: operation.Description,
		Fields:      fields,
		Submit: &schema.SubmitConfig{
			Text:   "Submit",
			URL:    path,
			Method: method,
		},
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return form, nil
}

func findOperation(doc *openapi3.T, operationID string) (string, string, *openapi3.Operation, error) {
	if doc == nil || doc.Paths == nil {
		return "", "", nil, fmt.Errorf("openapi: document has no paths")
	}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
			operation := item.GetOperation(method)
			if operation != nil && operation.OperationID == operationID {
				return path, method, operation, nil
			}
		}
	}
	return "", "", nil, fmt.Errorf("openapi: operation %q not found", operationID)
}

func requestBodySchema(operation *openapi3.Operation) (*openapi3.Schema, error) {
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil, fmt.Errorf("no request body")
	}
	media := operation.RequestBody.Value.Content["application/json"]
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, fmt.Errorf("no application/json request schema")
	}
	return media.Schema.Value, nil
}

// buildFields converts an object schema's properties to fields. Property
// order is alphabetical; OpenAPI objects carry no ordering.
func buildFields(object *openapi3.Schema) ([]schema.Field, error) {
	names := make([]string, 0, len(object.Properties))
	for name := range object.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	required := make(map[string]bool, len(object.Required))
	for _, name := range object.Required {
		required[name] = true
	}

	fields := make([]schema.Field, 0, len(names))
	for _, name := range names {
		ref := object.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		field, err := buildField(name, ref.Value, required[name])
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func buildField(name string, prop *openapi3.Schema, required bool) (schema.Field, error) {
	field := schema.Field{
		Name:         name,
		Label:        prop.Title,
		Description:  prop.Description,
		DefaultValue: prop.Default,
	}

	switch {
	case hasType(prop, "object"):
		children, err := buildFields(prop)
		if err != nil {
			return schema.Field{}, err
		}
		if len(children) == 0 {
			return schema.Field{}, fmt.Errorf("object property %q has no properties", name)
		}
		field.Type = schema.FieldTypeGroup
		field.Children = children

	case hasType(prop, "array"):
		children, err := buildItemFields(name, prop)
		if err != nil {
			return schema.Field{}, err
		}
		field.Type = schema.FieldTypeArray
		field.Children = children
		if prop.MinItems > 0 {
			minItems := int(prop.MinItems)
			field.MinItems = &minItems
		}
		if prop.MaxItems != nil {
			maxItems := int(*prop.MaxItems)
			field.MaxItems = &maxItems
		}

	case hasType(prop, "boolean"):
		field.Type = schema.FieldTypeSwitch

	case len(prop.Enum) > 0:
		field.Type = schema.FieldTypeSelect
		field.Options = enumOptions(prop.Enum)

	case hasType(prop, "integer"), hasType(prop, "number"):
		field.Type = schema.FieldTypeNumber

	default:
		field.Type = stringFieldType(prop.Format)
	}

	field.Validation = buildValidation(prop, required)
	return field, nil
}

// buildItemFields maps array items: object items contribute their properties
// as the item template, scalar items get a single "value" field.
func buildItemFields(name string, prop *openapi3.Schema) ([]schema.Field, error) {
	if prop.Items == nil || prop.Items.Value == nil {
		return nil, fmt.Errorf("array property %q has no items schema", name)
	}
	item := prop.Items.Value
	if hasType(item, "object") {
		children, err := buildFields(item)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return nil, fmt.Errorf("array property %q items have no properties", name)
		}
		return children, nil
	}
	child, err := buildField("value", item, false)
	if err != nil {
		return nil, err
	}
	return []schema.Field{child}, nil
}

func buildValidation(prop *openapi3.Schema, required bool) *schema.Validation {
	v := &schema.Validation{}
	touched := false

	if required {
		v.Required = &schema.Flag{Enabled: true}
		touched = true
	}
	if prop.Min != nil {
		v.Min = &schema.Bound{Value: *prop.Min}
		touched = true
	}
	if prop.Max != nil {
		v.Max = &schema.Bound{Value: *prop.Max}
		touched = true
	}
	if prop.MinLength > 0 {
		v.MinLength = &schema.Bound{Value: float64(prop.MinLength)}
		touched = true
	}
	if prop.MaxLength != nil {
		v.MaxLength = &schema.Bound{Value: float64(*prop.MaxLength)}
		touched = true
	}
	if prop.Pattern != "" {
		v.Pattern = &schema.Pattern{Expr: prop.Pattern}
		touched = true
	}
	if prop.Format == "email" {
		v.Email = true
		touched = true
	}
	if prop.Format == "uri" {
		v.URL = true
		touched = true
	}

	if !touched {
		return nil
	}
	return v
}

func enumOptions(enum []any) []schema.FieldOption {
	options := make([]schema.FieldOption, 0, len(enum))
	for _, value := range enum {
		options = append(options, schema.FieldOption{
			Label: fmt.Sprintf("%v", value),
			Value: value,
		})
	}
	return options
}

func stringFieldType(format string) schema.FieldType {
	switch strings.ToLower(format) {
	case "email":
		return schema.FieldTypeEmail
	case "date":
		return schema.FieldTypeDate
	case "date-time":
		return schema.FieldTypeDatetime
	case "password":
		return schema.FieldTypePassword
	case "binary", "byte":
		return schema.FieldTypeFile
	default:
		return schema.FieldTypeText
	}
}

func hasType(prop *openapi3.Schema, want string) bool {
	if prop.Type == nil {
		return false
	}
	for _, t := range prop.Type.Slice() {
		if t == want {
			return true
		}
	}
	return false
}
