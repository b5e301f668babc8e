// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package validator_test

import (
	"testing"

	"carvel.dev/schema-enforcer/pkg/validation"
	"carvel.dev/schema-enforcer/pkg/validator"
	"github.com/stretchr/testify/require"
)

func mustExpressionValidator(t *testing.T, decl validator.ExpressionDecl) *validator.ExpressionValidator {
	t.Helper()

	v, err := validator.NewExpressionValidator(decl)
	require.NoError(t, err)
	return v
}

func TestExpressionValidator_gte_comparison(t *testing.T) {
	v := mustExpressionValidator(t, validator.ExpressionDecl{
		ID:       "checks/peer_count",
		Left:     "length(peers)",
		Operator: "gte",
		Right:    2,
		Error:    "Expected at least two peers",
	})

	results := v.Validate(map[string]interface{}{
		"peers": []interface{}{"spine1", "spine2"},
	}, false)
	require.Equal(t, []validation.Result{validation.NewPass("checks/peer_count")}, results)

	results = v.Validate(map[string]interface{}{
		"peers": []interface{}{"spine1"},
	}, false)
	require.Len(t, results, 1)
	require.False(t, results[0].Passed())
	require.Equal(t, "Expected at least two peers", results[0].Message)
}

func TestExpressionValidator_empty_left_hand_side_skips_the_check(t *testing.T) {
	v := mustExpressionValidator(t, validator.ExpressionDecl{
		ID:       "checks/peer_count",
		Left:     "peers",
		Operator: "gte",
		Right:    2,
		Error:    "Expected at least two peers",
	})

	results := v.Validate(map[string]interface{}{"hostname": "spine1"}, false)
	require.True(t, validation.Passed(results))
}

func TestExpressionValidator_eq_normalizes_numeric_types(t *testing.T) {
	v := mustExpressionValidator(t, validator.ExpressionDecl{
		ID:       "checks/mtu",
		Left:     "mtu",
		Operator: "eq",
		Right:    9000,
		Error:    "Expected jumbo MTU",
	})

	// yaml produces int, jmespath literals produce float64
	require.True(t, validation.Passed(v.Validate(map[string]interface{}{"mtu": 9000}, false)))
	require.True(t, validation.Passed(v.Validate(map[string]interface{}{"mtu": float64(9000)}, false)))
	require.False(t, validation.Passed(v.Validate(map[string]interface{}{"mtu": 1500}, false)))
}

func TestExpressionValidator_contains_on_lists_and_strings(t *testing.T) {
	v := mustExpressionValidator(t, validator.ExpressionDecl{
		ID:       "checks/dns_primary",
		Left:     "dns_servers[*].address",
		Operator: "contains",
		Right:    "10.1.1.1",
		Error:    "Expected 10.1.1.1 to be a configured DNS server",
	})

	data := map[string]interface{}{
		"dns_servers": []interface{}{
			map[string]interface{}{"address": "10.1.1.1"},
			map[string]interface{}{"address": "10.2.2.2"},
		},
	}
	require.True(t, validation.Passed(v.Validate(data, false)))

	data = map[string]interface{}{
		"dns_servers": []interface{}{
			map[string]interface{}{"address": "10.2.2.2"},
		},
	}
	require.False(t, validation.Passed(v.Validate(data, false)))

	stringContains := mustExpressionValidator(t, validator.ExpressionDecl{
		ID:       "checks/domain",
		Left:     "domain",
		Operator: "contains",
		Right:    "example",
		Error:    "Expected the example domain",
	})
	require.True(t, validation.Passed(stringContains.Validate(map[string]interface{}{"domain": "lab.example.com"}, false)))
}

func TestExpressionValidator_right_expr_compares_two_expressions(t *testing.T) {
	v := mustExpressionValidator(t, validator.ExpressionDecl{
		ID:        "checks/interface_count",
		Left:      "length(interfaces)",
		Operator:  "eq",
		RightExpr: "expected_interface_count",
		Error:     "Interface count does not match the declared expectation",
	})

	data := map[string]interface{}{
		"interfaces":               []interface{}{"eth0", "eth1"},
		"expected_interface_count": 2,
	}
	require.True(t, validation.Passed(v.Validate(data, false)))

	data["expected_interface_count"] = 3
	require.False(t, validation.Passed(v.Validate(data, false)))
}

func TestExpressionValidator_non_numeric_operand_is_an_error_result(t *testing.T) {
	v := mustExpressionValidator(t, validator.ExpressionDecl{
		ID:       "checks/peer_count",
		Left:     "peers",
		Operator: "gt",
		Right:    2,
		Error:    "Expected more peers",
	})

	results := v.Validate(map[string]interface{}{"peers": []interface{}{"spine1"}}, false)
	require.Len(t, results, 1)
	require.False(t, results[0].Passed())
	require.Contains(t, results[0].Message, "Expected numeric value")
}

func TestExpressionValidator_declaration_errors(t *testing.T) {
	_, err := validator.NewExpressionValidator(validator.ExpressionDecl{
		ID: "checks/no_left", Operator: "eq", Error: "e",
	})
	require.Error(t, err)

	_, err = validator.NewExpressionValidator(validator.ExpressionDecl{
		ID: "checks/bad_op", Left: "a", Operator: "matches", Error: "e",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown operator 'matches'")

	_, err = validator.NewExpressionValidator(validator.ExpressionDecl{
		ID: "checks/no_error", Left: "a", Operator: "eq",
	})
	require.Error(t, err)
}

func TestExpressionValidator_from_bytes_defaults_the_id_to_the_filename_stem(t *testing.T) {
	v, err := validator.NewExpressionValidatorFromBytes("check_peers", []byte(`
top_level_properties:
- peers
left: "length(peers)"
operator: gte
right: 2
error: "Expected at least two peers"
`))
	require.NoError(t, err)
	require.Equal(t, "check_peers", v.ID())
	require.Equal(t, map[string]struct{}{"peers": {}}, v.TopLevelProperties())

	v, err = validator.NewExpressionValidatorFromBytes("check_peers", []byte(`
id: checks/custom_id
left: "peers"
operator: contains
right: spine1
error: "Expected spine1 to be a peer"
`))
	require.NoError(t, err)
	require.Equal(t, "checks/custom_id", v.ID())
}
