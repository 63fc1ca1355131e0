package storage

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed definition.schema.json
var definitionSchema string

var schemaLoader = gojsonschema.NewStringLoader(definitionSchema)

// ValidationError lists every schema violation found in a definition file.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid definition: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid definition (%d problems):\n  - %s", len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

// ValidateDefinition checks definition YAML against the embedded JSON schema.
// It returns a *ValidationError when the document is well-formed YAML that
// does not match the schema.
func ValidateDefinition(data []byte) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("failed to parse definition YAML: %w", err)
	}

	// Validate the same JSON the bodies are encoded with, so numeric keys
	// and integers beyond int64 are accepted here too.
	doc := "null"
	if node.Kind != 0 {
		var buf bytes.Buffer
		if err := writeJSON(&buf, &node); err != nil {
			return fmt.Errorf("failed to parse definition YAML: %w", err)
		}
		doc = buf.String()
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate definition: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return &ValidationError{Problems: problems}
}
