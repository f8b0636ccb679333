// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package module

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the module manifest schema.
const SchemaID = "https://onebot.dev/schemas/module.schema.json"

var (
	schemaOnce     sync.Once
	schemaCompiled *jschema.Schema
	schemaErr      error
)

// GenerateSchema generates a JSON Schema from the Manifest struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Manifest{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "OneBot Module Manifest"
	schema.Description = "Schema for module.yaml manifest files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.In("module").Wrapf(err, "marshal schema")
	}
	return data, nil
}

// ValidateSchema validates YAML data against the manifest JSON Schema.
// It catches structural problems (unknown keys, wrong types) that
// ParseManifest tolerates.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return errManifest("manifest data is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errManifest("invalid YAML: %v", err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	if err := sch.Validate(jsonTypes(doc)); err != nil {
		return oops.In("module").
			Code(CodeInvalidManifest).
			Wrapf(err, "schema validation failed")
	}
	return nil
}

func compiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := GenerateSchema()
		if err != nil {
			schemaErr = err
			return
		}

		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			schemaErr = oops.In("module").Wrapf(err, "parse schema JSON")
			return
		}

		c := jschema.NewCompiler()
		if err := c.AddResource("module.schema.json", doc); err != nil {
			schemaErr = oops.In("module").Wrapf(err, "add schema resource")
			return
		}
		schemaCompiled, schemaErr = c.Compile("module.schema.json")
		if schemaErr != nil {
			schemaErr = oops.In("module").Wrapf(schemaErr, "compile schema")
		}
	})
	return schemaCompiled, schemaErr
}

// jsonTypes walks yaml.v3 output so nested mappings and sequences reach the
// validator as plain JSON shapes.
func jsonTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = jsonTypes(v)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = jsonTypes(v)
		}
		return out
	default:
		return val
	}
}

// FormatSchemaError strips the wrapper prefix from a validation error for
// display.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(err.Error(), "schema validation failed: ")
}
