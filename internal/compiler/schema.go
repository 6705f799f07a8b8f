package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaID is the $id of the configuration JSON Schema.
const SchemaID = "https://github.com/roach88/hotbar/schema/table.json"

// Schema returns the JSON Schema of the configuration document, for
// editors that validate TOML or JSON against one.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		FieldNameTag:   "json",
	}
	s := r.Reflect(&TableDocument{})
	s.ID = jsonschema.ID(SchemaID)
	s.Title = "hotbar mode table"

	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return out, nil
}
