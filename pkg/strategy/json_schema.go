// Package strategy holds helpers shared by strategy document producers.
package strategy

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ToJSONSchema reflects a struct into an inlined JSON schema. Field titles,
// descriptions and defaults come from `jsonschema` struct tags.
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
