// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"

	"carvel.dev/schema-enforcer/pkg/validation"
	"carvel.dev/schema-enforcer/pkg/validator"
)

// Registry is the lookup capability the engine needs from the combined
// schema/validator registry.
type Registry interface {
	GetByID(id string) (validator.Validation, bool)
}

// Validate runs every ID in the resolved check set against data. An ID not
// present in the registry produces a failure scoped to that ID; the
// remaining IDs still run.
func Validate(reg Registry, data interface{}, ids []string, strict bool) []validation.Result {
	return ValidateWith(reg, func(validator.Validation) interface{} { return data }, ids, strict)
}

// ValidateWith is Validate with a per-ID document: dataFor is consulted for
// each resolved validation, which lets host validation narrow the document
// to the properties a schema declares.
func ValidateWith(reg Registry, dataFor func(validator.Validation) interface{}, ids []string, strict bool) []validation.Result {
	var results []validation.Result

	for _, id := range ids {
		v, found := reg.GetByID(id)
		if !found {
			results = append(results, validation.NewFail(id,
				fmt.Sprintf("Schema or validator ID '%s' is not loaded", id), nil))
			continue
		}

		results = append(results, v.Validate(dataFor(v), strict)...)
	}

	return results
}
