// Package jsonschema checks API payloads against JSON Schema documents.
package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Violation is a single schema failure.
type Violation struct {
	// Location is the JSON pointer of the offending value, "" for the root.
	Location string
	Message  string
}

func (v Violation) String() string {
	location := v.Location
	if location == "" {
		location = "/"
	}
	return fmt.Sprintf("%s: %s", location, v.Message)
}

// ValidationErrors is returned when a document does not match its schema.
type ValidationErrors []Violation

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, v := range ve {
		msgs[i] = v.String()
	}
	return "schema validation failed: " + strings.Join(msgs, "; ")
}

// Schema is a compiled JSON Schema.
type Schema struct {
	schema *jsonschema.Schema
}

// Compile compiles a schema document. name identifies it in error messages.
func Compile(name, document string) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(document)); err != nil {
		return nil, errors.Wrapf(err, "invalid schema %s", name)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schema %s", name)
	}
	return &Schema{schema: schema}, nil
}

// Load reads and compiles the schema file at path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading schema file %s", path)
	}
	return Compile(path, string(data))
}

// Validate checks doc against the schema. It returns ValidationErrors when
// the document does not conform, and a plain error when doc is not JSON.
func (s *Schema) Validate(doc []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(doc))
	decoder.UseNumber()
	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return errors.Wrap(err, "invalid JSON document")
	}

	err := s.schema.Validate(value)
	if err == nil {
		return nil
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return collect(validationErr, nil)
	}
	return errors.Wrap(err, "error validating document")
}

// collect flattens the error tree down to its leaves, which name the actual
// failing keywords.
func collect(err *jsonschema.ValidationError, acc ValidationErrors) ValidationErrors {
	if len(err.Causes) == 0 {
		return append(acc, Violation{Location: err.InstanceLocation, Message: err.Message})
	}
	for _, cause := range err.Causes {
		acc = collect(cause, acc)
	}
	return acc
}

// Validate compiles schema and checks doc against it in one step.
func Validate(doc []byte, schema string) error {
	s, err := Compile("schema.json", schema)
	if err != nil {
		return err
	}
	return s.Validate(doc)
}
