// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"carvel.dev/schema-enforcer/pkg/validation"
)

// Validation is the single capability shared by JSON Schema definitions and
// custom validator plugins: check a document, yielding zero or more results.
type Validation interface {
	ID() string
	TopLevelProperties() map[string]struct{}
	Validate(data interface{}, strict bool) []validation.Result
}

// Accumulator collects results for a single Validate invocation. An
// invocation that records nothing yields exactly one passing result.
type Accumulator struct {
	id      string
	results []validation.Result
}

func NewAccumulator(id string) *Accumulator {
	return &Accumulator{id: id}
}

func (a *Accumulator) AddError(message string, absolutePath ...string) {
	a.results = append(a.results, validation.NewFail(a.id, message, absolutePath))
}

func (a *Accumulator) AddPass() {
	a.results = append(a.results, validation.NewPass(a.id))
}

func (a *Accumulator) Results() []validation.Result {
	if len(a.results) == 0 {
		return []validation.Result{validation.NewPass(a.id)}
	}
	return a.results
}

func newPropertySet(names []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
