// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"carvel.dev/schema-enforcer/pkg/files"
)

// LoadDir discovers validator plugins in dir: YAML files declare
// expression-comparison validators, .star files carry arbitrary-logic
// validators. A missing directory simply yields no validators. Load order
// follows the sorted directory walk.
func LoadDir(dir string) ([]Validation, error) {
	found, err := files.Finder{
		Extensions: []string{".yaml", ".yml", ".star"},
	}.Find([]string{dir})
	if err != nil {
		return nil, err
	}

	var validators []Validation

	for _, file := range found {
		bs, err := file.Bytes()
		if err != nil {
			return nil, fmt.Errorf("Reading validator '%s': %s", file.Path(), err)
		}

		defaultID := defaultValidatorID(file)

		var v Validation
		switch file.Type() {
		case files.TypeStarlark:
			v, err = NewStarlarkValidator(defaultID, file.Path(), bs)
		default:
			v, err = NewExpressionValidatorFromBytes(defaultID, bs)
		}
		if err != nil {
			return nil, err
		}

		validators = append(validators, v)
	}

	return validators, nil
}

func defaultValidatorID(file *files.File) string {
	name := file.Filename()
	return strings.TrimSuffix(name, filepath.Ext(name))
}
