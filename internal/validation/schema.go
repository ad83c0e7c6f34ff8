package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// ValidationIssue captures a single validation failure against a named field.
// Field is empty for failures of the body as a whole.
type ValidationIssue struct {
	Field   string
	Message string
}

// PayloadValidationError surfaces validation issues with client facing messages.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// Schema is a compiled request body schema.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
	types    map[string]string
}

// Compile checks and compiles a JSON Schema (draft 2020-12) for an object
// body. name only appears in compile errors.
func Compile(name string, schema map[string]any) (*Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, name, err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	resource := name + ".json"
	if err := compiler.AddResource(resource, bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, name, err)
	}
	return &Schema{
		name:     name,
		compiled: compiled,
		types:    propertyTypes(schema),
	}, nil
}

// MustCompile is Compile for package level schemas.
func MustCompile(name string, schema map[string]any) *Schema {
	s, err := Compile(name, schema)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a decoded JSON value. Failures are returned as
// *PayloadValidationError with one issue per field, sorted by field.
func (s *Schema) Validate(payload any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	err := s.compiled.Validate(payload)
	if err == nil {
		return nil
	}
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return &PayloadValidationError{Issues: []ValidationIssue{{Message: "invalid request body"}}, Cause: err}
	}

	object, _ := payload.(map[string]any)
	issues := s.describe(collectLeaves(validationErr), object)
	return &PayloadValidationError{Issues: issues, Cause: err}
}

var quotedName = regexp.MustCompile(`'([^']+)'`)

func (s *Schema) describe(leaves []*jsonschema.ValidationError, object map[string]any) []ValidationIssue {
	seen := map[string]struct{}{}
	issues := []ValidationIssue{}
	add := func(field, message string) {
		if _, ok := seen[field]; ok {
			return
		}
		seen[field] = struct{}{}
		issues = append(issues, ValidationIssue{Field: field, Message: message})
	}

	for _, leaf := range leaves {
		keyword := leaf.KeywordLocation[strings.LastIndex(leaf.KeywordLocation, "/")+1:]
		field := strings.TrimPrefix(leaf.InstanceLocation, "/")

		switch {
		case keyword == "required":
			for _, match := range quotedName.FindAllStringSubmatch(leaf.Message, -1) {
				add(match[1], match[1]+" is required")
			}
		case field == "":
			add("", "request body must be a JSON object")
		case keyword == "type":
			if value, present := object[field]; present && value == nil {
				add(field, field+" is required")
				continue
			}
			add(field, fmt.Sprintf("%s must be %s", field, article(s.types[field])))
		default:
			add(field, field+" is invalid")
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Field < issues[j].Field
	})
	return issues
}

func collectLeaves(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	var leaves []*jsonschema.ValidationError
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			leaves = append(leaves, node)
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return leaves
}

func propertyTypes(schema map[string]any) map[string]string {
	out := map[string]string{}
	props, _ := schema["properties"].(map[string]any)
	for name, raw := range props {
		prop, _ := raw.(map[string]any)
		if typ, ok := prop["type"].(string); ok {
			out[name] = typ
		}
	}
	return out
}

func article(typ string) string {
	switch typ {
	case "":
		return "valid"
	case "integer", "object", "array":
		return "an " + typ
	default:
		return "a " + typ
	}
}
