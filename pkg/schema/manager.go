// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"path/filepath"

	"carvel.dev/schema-enforcer/pkg/config"
	"carvel.dev/schema-enforcer/pkg/files"
	"carvel.dev/schema-enforcer/pkg/validator"
)

// Manager is the combined registry of JSON Schema definitions and custom
// validator plugins. IDs share one namespace; a duplicate anywhere is a
// fatal configuration error. Load order (sorted directory walk, schemas
// before validators) determines automap ordering.
type Manager struct {
	order []validator.Validation
	byID  map[string]validator.Validation
	index map[string][]string
}

func NewManager(cfg config.Config) (*Manager, error) {
	manager := &Manager{byID: map[string]validator.Validation{}}

	schemaDir := filepath.Join(cfg.MainDirectory, cfg.SchemaDirectory)

	schemaFiles, err := files.Finder{
		Extensions:        cfg.SchemaFileExtensions,
		ExcludedFilenames: cfg.SchemaFileExcludeFilenames,
	}.Find([]string{schemaDir})
	if err != nil {
		return nil, err
	}

	for _, file := range schemaFiles {
		schema, err := newSchemaFromFile(file)
		if err != nil {
			return nil, err
		}
		err = manager.add(schema)
		if err != nil {
			return nil, err
		}
	}

	validators, err := validator.LoadDir(filepath.Join(cfg.MainDirectory, cfg.ValidatorDirectory))
	if err != nil {
		return nil, err
	}

	for _, v := range validators {
		err = manager.add(v)
		if err != nil {
			return nil, err
		}
	}

	manager.buildIndex()

	return manager, nil
}

// NewManagerWithValidations builds a registry from already-constructed
// schemas and validators, preserving the given order.
func NewManagerWithValidations(validations ...validator.Validation) (*Manager, error) {
	manager := &Manager{byID: map[string]validator.Validation{}}

	for _, v := range validations {
		err := manager.add(v)
		if err != nil {
			return nil, err
		}
	}

	manager.buildIndex()

	return manager, nil
}

func newSchemaFromFile(file *files.File) (*Schema, error) {
	bs, err := file.Bytes()
	if err != nil {
		return nil, fmt.Errorf("Reading schema file '%s': %s", file.Path(), err)
	}

	parsed, err := files.ParseDocument(bs)
	if err != nil {
		return nil, fmt.Errorf("Parsing schema file '%s': %s", file.Path(), err)
	}

	doc, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("Expected schema file '%s' to contain a map, but was %T", file.Path(), parsed)
	}

	return NewSchema(doc, file.Filename(), filepath.Dir(file.Path()))
}

func (m *Manager) add(v validator.Validation) error {
	if _, found := m.byID[v.ID()]; found {
		return fmt.Errorf("Duplicate schema or validator ID '%s'", v.ID())
	}

	m.byID[v.ID()] = v
	m.order = append(m.order, v)
	return nil
}

func (m *Manager) buildIndex() {
	m.index = map[string][]string{}
	for _, v := range m.order {
		for prop := range v.TopLevelProperties() {
			m.index[prop] = append(m.index[prop], v.ID())
		}
	}
}

// All returns every schema and validator in load order.
func (m *Manager) All() []validator.Validation { return m.order }

func (m *Manager) GetByID(id string) (validator.Validation, bool) {
	v, found := m.byID[id]
	return v, found
}

// Schemas returns only the JSON Schema definitions, in load order.
func (m *Manager) Schemas() []*Schema {
	var result []*Schema
	for _, v := range m.order {
		if schema, ok := v.(*Schema); ok {
			result = append(result, schema)
		}
	}
	return result
}

// TopLevelPropertyIndex maps each declared top-level property name to the
// IDs declaring it, in load order. Built once after load; used by the
// automap path of the mapping resolver.
func (m *Manager) TopLevelPropertyIndex() map[string][]string { return m.index }

// CheckIDsExist returns an error naming the first ID not present in the
// registry.
func (m *Manager) CheckIDsExist(ids []string) error {
	for _, id := range ids {
		if _, found := m.byID[id]; !found {
			return fmt.Errorf("Schema or validator ID '%s' is not loaded", id)
		}
	}
	return nil
}
