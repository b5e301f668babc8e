// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"fmt"
	"reflect"
	"strings"

	"carvel.dev/schema-enforcer/pkg/validation"
	"github.com/jmespath/go-jmespath"
	"gopkg.in/yaml.v3"
)

// ExpressionDecl is the YAML shape of an expression-comparison validator.
// Right and RightExpr are mutually exclusive; RightExpr is evaluated
// against the document, Right is taken as a literal.
type ExpressionDecl struct {
	ID                 string      `yaml:"id"`
	TopLevelProperties []string    `yaml:"top_level_properties"`
	Left               string      `yaml:"left"`
	Operator           string      `yaml:"operator"`
	Right              interface{} `yaml:"right"`
	RightExpr          string      `yaml:"right_expr"`
	Error              string      `yaml:"error"`
}

// ExpressionValidator compares the result of a JMESPath expression against
// a static value or a second expression. The check is skipped when the left
// expression yields nothing, matching the behavior of data-optional checks.
type ExpressionValidator struct {
	id            string
	topLevelProps map[string]struct{}
	left          *jmespath.JMESPath
	right         interface{}
	rightExpr     *jmespath.JMESPath
	operator      string
	errorMsg      string
}

var _ Validation = &ExpressionValidator{}

var expressionOperators = map[string]struct{}{
	"gt": {}, "gte": {}, "eq": {}, "lt": {}, "lte": {}, "contains": {},
}

func NewExpressionValidatorFromBytes(defaultID string, bs []byte) (*ExpressionValidator, error) {
	var decl ExpressionDecl

	err := yaml.Unmarshal(bs, &decl)
	if err != nil {
		return nil, fmt.Errorf("Parsing validator declaration: %s", err)
	}
	if decl.ID == "" {
		decl.ID = defaultID
	}

	return NewExpressionValidator(decl)
}

func NewExpressionValidator(decl ExpressionDecl) (*ExpressionValidator, error) {
	if decl.ID == "" {
		return nil, fmt.Errorf("Expected validator to declare an id")
	}
	if decl.Left == "" {
		return nil, fmt.Errorf("Validator '%s': expected a left expression", decl.ID)
	}
	if _, found := expressionOperators[decl.Operator]; !found {
		return nil, fmt.Errorf("Validator '%s': unknown operator '%s'", decl.ID, decl.Operator)
	}
	if decl.Error == "" {
		return nil, fmt.Errorf("Validator '%s': expected an error message", decl.ID)
	}

	left, err := jmespath.Compile(decl.Left)
	if err != nil {
		return nil, fmt.Errorf("Validator '%s': compiling left expression: %s", decl.ID, err)
	}

	result := &ExpressionValidator{
		id:            decl.ID,
		topLevelProps: newPropertySet(decl.TopLevelProperties),
		left:          left,
		right:         decl.Right,
		operator:      decl.Operator,
		errorMsg:      decl.Error,
	}

	if decl.RightExpr != "" {
		result.rightExpr, err = jmespath.Compile(decl.RightExpr)
		if err != nil {
			return nil, fmt.Errorf("Validator '%s': compiling right expression: %s", decl.ID, err)
		}
	}

	return result, nil
}

func (v *ExpressionValidator) ID() string { return v.id }

func (v *ExpressionValidator) TopLevelProperties() map[string]struct{} { return v.topLevelProps }

func (v *ExpressionValidator) Validate(data interface{}, strict bool) []validation.Result {
	acc := NewAccumulator(v.id)

	lhs, err := v.left.Search(data)
	if err != nil {
		acc.AddError(fmt.Sprintf("Evaluating expression: %s", err))
		return acc.Results()
	}

	if isEmptyValue(lhs) {
		return acc.Results()
	}

	rhs := v.right
	if v.rightExpr != nil {
		rhs, err = v.rightExpr.Search(data)
		if err != nil {
			acc.AddError(fmt.Sprintf("Evaluating expression: %s", err))
			return acc.Results()
		}
	}

	valid, err := compareValues(v.operator, lhs, rhs)
	if err != nil {
		acc.AddError(err.Error())
	} else if !valid {
		acc.AddError(v.errorMsg)
	}

	return acc.Results()
}

func compareValues(operator string, lhs, rhs interface{}) (bool, error) {
	switch operator {
	case "eq":
		return equalValues(lhs, rhs), nil

	case "contains":
		return containsValue(lhs, rhs)

	default:
		lhsNum, ok := numericValue(lhs)
		if !ok {
			return false, fmt.Errorf("Expected numeric value, but was %T", lhs)
		}
		rhsNum, ok := numericValue(rhs)
		if !ok {
			return false, fmt.Errorf("Expected numeric value, but was %T", rhs)
		}
		switch operator {
		case "gt":
			return lhsNum > rhsNum, nil
		case "gte":
			return lhsNum >= rhsNum, nil
		case "lt":
			return lhsNum < rhsNum, nil
		case "lte":
			return lhsNum <= rhsNum, nil
		}
	}
	return false, fmt.Errorf("Unknown operator '%s'", operator)
}

func equalValues(lhs, rhs interface{}) bool {
	lhsNum, lhsOK := numericValue(lhs)
	rhsNum, rhsOK := numericValue(rhs)
	if lhsOK && rhsOK {
		return lhsNum == rhsNum
	}
	return reflect.DeepEqual(lhs, rhs)
}

func containsValue(lhs, rhs interface{}) (bool, error) {
	switch typedLhs := lhs.(type) {
	case string:
		rhsStr, ok := rhs.(string)
		if !ok {
			return false, fmt.Errorf("Expected string value, but was %T", rhs)
		}
		return strings.Contains(typedLhs, rhsStr), nil

	case []interface{}:
		for _, item := range typedLhs {
			if equalValues(item, rhs) {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, fmt.Errorf("Expected string or list value, but was %T", lhs)
	}
}

func numericValue(val interface{}) (float64, bool) {
	switch typedVal := val.(type) {
	case int:
		return float64(typedVal), true
	case int64:
		return float64(typedVal), true
	case uint64:
		return float64(typedVal), true
	case float64:
		return typedVal, true
	case float32:
		return float64(typedVal), true
	default:
		return 0, false
	}
}

func isEmptyValue(val interface{}) bool {
	switch typedVal := val.(type) {
	case nil:
		return true
	case string:
		return typedVal == ""
	case bool:
		return !typedVal
	case []interface{}:
		return len(typedVal) == 0
	case map[string]interface{}:
		return len(typedVal) == 0
	default:
		if num, ok := numericValue(val); ok {
			return num == 0
		}
		return false
	}
}
