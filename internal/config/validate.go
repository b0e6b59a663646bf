// CUE schema validation code
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"
)

//go:embed engine.cue
var defaultSchema []byte

// schemaDef is the definition every config document must satisfy.
const schemaDef = "#Config"

func loadSchema(path string) ([]byte, error) {
	if path == "" {
		return defaultSchema, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read CUE schema: %w", err)
	}
	return b, nil
}

// ValidateWithCue checks a YAML document against the #Config definition of a
// CUE schema. filename is only used in error messages.
func ValidateWithCue(filename string, yamlBytes, schemaBytes []byte) error {
	if len(bytes.TrimSpace(yamlBytes)) == 0 {
		return nil
	}
	ctx := cuecontext.New()

	schemaVal := ctx.CompileBytes(schemaBytes, cue.Filename("schema.cue"))
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", err)
	}
	def := schemaVal.LookupPath(cue.ParsePath(schemaDef))
	if !def.Exists() {
		return fmt.Errorf("CUE schema has no %s definition", schemaDef)
	}

	file, err := yaml.Extract(filename, yamlBytes)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(file)
	if err := configVal.Err(); err != nil {
		return fmt.Errorf("cannot build YAML config: %w", err)
	}

	final := def.Unify(configVal)
	if err := final.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
