package backup

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	"invoicer/internal/core"
)

// Schema returns the JSON Schema of the backup document.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(core.Date{}) {
				return &jsonschema.Schema{
					Type:        "string",
					Pattern:     `^(\d{4}-\d{2}-\d{2})?$`,
					Description: "calendar date YYYY-MM-DD, empty when unset",
				}
			}
			return nil
		},
	}
	s := r.Reflect(&Snapshot{})
	s.Title = "Invoice manager backup"
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	return b, nil
}
