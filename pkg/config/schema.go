package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"
	apperrors "runnotate/pkg/errors"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func bindingSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiledSchema, schemaErr = compiler.Compile(schemaJSON)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile binding schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// validateSchema checks the document shape: required sections, key lists, color format
func validateSchema(doc []byte) error {
	schema, err := bindingSchema()
	if err != nil {
		return err
	}

	result := schema.ValidateJSON(doc)
	if result.IsValid() {
		return nil
	}

	var problems []string
	collectProblems(result, "", &problems)
	sort.Strings(problems)

	return apperrors.Config("schema validation failed: %s", strings.Join(problems, "; "))
}

// collectProblems gathers the errors of the deepest invalid results, so a
// message names the failing location, e.g. labels.bird.color. Valid subtrees
// are skipped, including the losing branches of a oneOf that matched.
func collectProblems(r *jsonschema.EvaluationResult, base string, out *[]string) {
	if r == nil || r.IsValid() {
		return
	}
	location := base + r.InstanceLocation

	before := len(*out)
	for _, detail := range r.Details {
		collectProblems(detail, location, out)
	}
	if len(*out) > before {
		return
	}

	keywords := make([]string, 0, len(r.Errors))
	for keyword := range r.Errors {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	for _, keyword := range keywords {
		*out = append(*out, fmt.Sprintf("%s: %s", locationName(location), r.Errors[keyword].Error()))
	}
}

// locationName renders a JSON pointer as the dotted path users write in the file
func locationName(pointer string) string {
	name := strings.ReplaceAll(strings.Trim(pointer, "/"), "/", ".")
	if name == "" {
		return "document"
	}
	return name
}
