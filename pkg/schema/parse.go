package schema

import (
	"encoding/json"
	"fmt"
)

// Parse decodes a JSON form definition and validates its structure.
func Parse(data []byte) (*FormSchema, error) {
	var form FormSchema
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return &form, nil
}
