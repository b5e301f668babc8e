// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"fmt"

	"github.com/k14s/starlark-go/starlark"
)

// GoValue converts parsed document values into their Starlark equivalents.
type GoValue struct {
	val interface{}
}

func NewGoValue(val interface{}) GoValue { return GoValue{val} }

func (e GoValue) AsStarlarkValue() starlark.Value {
	return e.asStarlarkValue(e.val)
}

func (e GoValue) asStarlarkValue(val interface{}) starlark.Value {
	switch typedVal := val.(type) {
	case nil:
		return starlark.None

	case bool:
		return starlark.Bool(typedVal)

	case string:
		return starlark.String(typedVal)

	case int:
		return starlark.MakeInt(typedVal)

	case int64:
		return starlark.MakeInt64(typedVal)

	case uint64:
		return starlark.MakeUint64(typedVal)

	case float64:
		return starlark.Float(typedVal)

	case map[string]interface{}:
		result := &starlark.Dict{}
		for k, v := range typedVal {
			result.SetKey(starlark.String(k), e.asStarlarkValue(v))
		}
		return result

	case map[interface{}]interface{}:
		result := &starlark.Dict{}
		for k, v := range typedVal {
			result.SetKey(e.asStarlarkValue(k), e.asStarlarkValue(v))
		}
		return result

	case []interface{}:
		result := []starlark.Value{}
		for _, v := range typedVal {
			result = append(result, e.asStarlarkValue(v))
		}
		return starlark.NewList(result)

	default:
		panic(fmt.Sprintf("unknown type %T for conversion to starlark value", val))
	}
}

// StarlarkValue converts Starlark values handed back by plugin code into
// plain Go values.
type StarlarkValue struct {
	val starlark.Value
}

func NewStarlarkValue(val starlark.Value) StarlarkValue { return StarlarkValue{val} }

func (e StarlarkValue) AsGoValue() interface{} {
	return e.asInterface(e.val)
}

func (e StarlarkValue) AsString() (string, error) {
	if typedVal, ok := e.val.(starlark.String); ok {
		return string(typedVal), nil
	}
	return "", fmt.Errorf("expected starlark.String, but was %T", e.val)
}

func (e StarlarkValue) AsStringSlice() ([]string, error) {
	typedVal, ok := e.val.(*starlark.List)
	if !ok {
		return nil, fmt.Errorf("expected starlark.List, but was %T", e.val)
	}

	var result []string
	for i := 0; i < typedVal.Len(); i++ {
		switch item := e.asInterface(typedVal.Index(i)).(type) {
		case string:
			result = append(result, item)
		case int64:
			result = append(result, fmt.Sprintf("%d", item))
		default:
			return nil, fmt.Errorf("expected list of strings or ints, but item was %T", item)
		}
	}
	return result, nil
}

func (e StarlarkValue) asInterface(val starlark.Value) interface{} {
	switch typedVal := val.(type) {
	case nil, starlark.NoneType:
		return nil

	case starlark.Bool:
		return bool(typedVal)

	case starlark.String:
		return string(typedVal)

	case starlark.Int:
		i1, ok := typedVal.Int64()
		if ok {
			return i1
		}
		i2, ok := typedVal.Uint64()
		if ok {
			return i2
		}
		panic(fmt.Sprintf("cannot convert starlark.Int %s", typedVal.String()))

	case starlark.Float:
		return float64(typedVal)

	case *starlark.List:
		result := []interface{}{}
		for i := 0; i < typedVal.Len(); i++ {
			result = append(result, e.asInterface(typedVal.Index(i)))
		}
		return result

	case *starlark.Dict:
		result := map[string]interface{}{}
		for _, item := range typedVal.Items() {
			keyStr, ok := e.asInterface(item[0]).(string)
			if !ok {
				panic(fmt.Sprintf("expected dict key to be string, but was %T", item[0]))
			}
			result[keyStr] = e.asInterface(item[1])
		}
		return result

	default:
		panic(fmt.Sprintf("unknown type %T for conversion to go value", val))
	}
}
