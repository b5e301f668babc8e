// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"strings"

	"carvel.dev/schema-enforcer/pkg/validation"
	"carvel.dev/schema-enforcer/pkg/validator"
	"github.com/xeipuuv/gojsonschema"
)

// Schema wraps a compiled JSON Schema document. The stored document is
// never mutated; strict mode compiles a separate transformed copy on first
// use.
type Schema struct {
	id            string
	filename      string
	path          string
	doc           map[string]interface{}
	topLevelProps map[string]struct{}

	compiled       *gojsonschema.Schema
	strictCompiled *gojsonschema.Schema
}

var _ validator.Validation = &Schema{}

func NewSchema(doc map[string]interface{}, filename, path string) (*Schema, error) {
	id, _ := doc["$id"].(string)
	if id == "" {
		return nil, fmt.Errorf("Schema file '%s' does not declare a non-empty $id", filename)
	}

	topLevelProps := map[string]struct{}{}
	if props, ok := doc["properties"].(map[string]interface{}); ok {
		for name := range props {
			topLevelProps[name] = struct{}{}
		}
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("Compiling schema '%s' (%s): %s", id, filename, err)
	}

	return &Schema{
		id:            id,
		filename:      filename,
		path:          path,
		doc:           doc,
		topLevelProps: topLevelProps,
		compiled:      compiled,
	}, nil
}

func (s *Schema) ID() string { return s.id }

func (s *Schema) Filename() string { return s.filename }

func (s *Schema) Path() string { return s.path }

func (s *Schema) Document() map[string]interface{} { return s.doc }

func (s *Schema) TopLevelProperties() map[string]struct{} { return s.topLevelProps }

func (s *Schema) Validate(data interface{}, strict bool) []validation.Result {
	acc := validator.NewAccumulator(s.id)

	compiled, err := s.validator(strict)
	if err != nil {
		acc.AddError(err.Error())
		return acc.Results()
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		acc.AddError(fmt.Sprintf("Validating document: %s", err))
		return acc.Results()
	}

	for _, resultErr := range result.Errors() {
		path := errorPath(resultErr)
		message := resultErr.Description()

		if custom := s.customErrorMessage(path); custom != "" {
			message = renderErrorMessage(custom, resultErr.Value())
		}

		acc.AddError(message, path...)
	}

	return acc.Results()
}

func (s *Schema) validator(strict bool) (*gojsonschema.Schema, error) {
	if !strict {
		return s.compiled, nil
	}

	if s.strictCompiled == nil {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(StrictDocument(s.doc)))
		if err != nil {
			return nil, fmt.Errorf("Compiling strict schema '%s': %s", s.id, err)
		}
		s.strictCompiled = compiled
	}

	return s.strictCompiled, nil
}

// customErrorMessage walks the schema document along the failure path and
// returns the error_message declared on the exact sub-schema reached.
// Declarations at the document root are ignored.
func (s *Schema) customErrorMessage(path []string) string {
	if len(path) == 0 {
		return ""
	}

	node := s.doc
	for _, segment := range path {
		if props, ok := node["properties"].(map[string]interface{}); ok {
			if sub, ok := props[segment].(map[string]interface{}); ok {
				node = sub
				continue
			}
		}
		if isIndexSegment(segment) {
			if items, ok := node["items"].(map[string]interface{}); ok {
				node = items
				continue
			}
		}
		return ""
	}

	message, _ := node["error_message"].(string)
	return message
}

func renderErrorMessage(template string, value interface{}) string {
	return strings.ReplaceAll(template, "{instance}", fmt.Sprintf("'%v'", value))
}

func errorPath(resultErr gojsonschema.ResultError) []string {
	field := resultErr.Field()
	if field == "" || field == "(root)" {
		return nil
	}
	return strings.Split(field, ".")
}

func isIndexSegment(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
