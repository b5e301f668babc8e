// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"fmt"

	"carvel.dev/schema-enforcer/pkg/validation"
	"github.com/k14s/starlark-go/starlark"
)

// StarlarkValidator runs an arbitrary-logic plugin written as a Starlark
// script. The script must define validate(data, strict) and report through
// the add_error/add_pass builtins; it may override its id and declare
// top_level_properties for automapping.
//
//	top_level_properties = ["interfaces"]
//
//	def validate(data, strict):
//	  for name, intf in data["interfaces"].items():
//	    if not intf.get("description"):
//	      add_error("Missing description", absolute_path=["interfaces", name])
type StarlarkValidator struct {
	id            string
	topLevelProps map[string]struct{}
	validateFn    starlark.Callable

	// bound for the duration of a single Validate call; the run is
	// single-threaded so no synchronization is needed
	acc *Accumulator
}

var _ Validation = &StarlarkValidator{}

func NewStarlarkValidator(defaultID, fileName string, src []byte) (*StarlarkValidator, error) {
	result := &StarlarkValidator{id: defaultID}

	predeclared := starlark.StringDict{
		"add_error": starlark.NewBuiltin("add_error", result.addErrorBuiltin),
		"add_pass":  starlark.NewBuiltin("add_pass", result.addPassBuiltin),
	}

	thread := &starlark.Thread{Name: "validator-load"}

	globals, err := starlark.ExecFile(thread, fileName, src, predeclared)
	if err != nil {
		return nil, fmt.Errorf("Loading validator '%s': %s", fileName, err)
	}

	if idVal, found := globals["id"]; found {
		idStr, err := NewStarlarkValue(idVal).AsString()
		if err != nil {
			return nil, fmt.Errorf("Validator '%s': id: %s", fileName, err)
		}
		result.id = idStr
	}

	if propsVal, found := globals["top_level_properties"]; found {
		props, err := NewStarlarkValue(propsVal).AsStringSlice()
		if err != nil {
			return nil, fmt.Errorf("Validator '%s': top_level_properties: %s", fileName, err)
		}
		result.topLevelProps = newPropertySet(props)
	} else {
		result.topLevelProps = map[string]struct{}{}
	}

	validateVal, found := globals["validate"]
	if !found {
		return nil, fmt.Errorf("Validator '%s': expected a validate function", fileName)
	}
	validateFn, ok := validateVal.(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("Validator '%s': expected validate to be a function, but was %s",
			fileName, validateVal.Type())
	}
	result.validateFn = validateFn

	return result, nil
}

func (v *StarlarkValidator) ID() string { return v.id }

func (v *StarlarkValidator) TopLevelProperties() map[string]struct{} { return v.topLevelProps }

func (v *StarlarkValidator) Validate(data interface{}, strict bool) []validation.Result {
	acc := NewAccumulator(v.id)

	v.acc = acc
	defer func() { v.acc = nil }()

	thread := &starlark.Thread{Name: v.id}
	args := starlark.Tuple{NewGoValue(data).AsStarlarkValue(), starlark.Bool(strict)}

	_, err := starlark.Call(thread, v.validateFn, args, nil)
	if err != nil {
		acc.AddError(fmt.Sprintf("Running validator: %s", err))
	}

	return acc.Results()
}

func (v *StarlarkValidator) addErrorBuiltin(_ *starlark.Thread, _ *starlark.Builtin,
	args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {

	if v.acc == nil {
		return nil, fmt.Errorf("add_error may only be called from validate()")
	}

	var message string
	var pathList *starlark.List

	err := starlark.UnpackArgs("add_error", args, kwargs, "message", &message, "absolute_path?", &pathList)
	if err != nil {
		return nil, err
	}

	var absolutePath []string
	if pathList != nil {
		absolutePath, err = NewStarlarkValue(pathList).AsStringSlice()
		if err != nil {
			return nil, err
		}
	}

	v.acc.AddError(message, absolutePath...)
	return starlark.None, nil
}

func (v *StarlarkValidator) addPassBuiltin(_ *starlark.Thread, _ *starlark.Builtin,
	args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {

	if v.acc == nil {
		return nil, fmt.Errorf("add_pass may only be called from validate()")
	}

	err := starlark.UnpackArgs("add_pass", args, kwargs)
	if err != nil {
		return nil, err
	}

	v.acc.AddPass()
	return starlark.None, nil
}
