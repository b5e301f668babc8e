// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package validator_test

import (
	"testing"

	"carvel.dev/schema-enforcer/pkg/validation"
	"carvel.dev/schema-enforcer/pkg/validator"
	"github.com/stretchr/testify/require"
)

const hostnameValidatorSrc = `
id = "checks/hostname"
top_level_properties = ["hostname"]

def validate(data, strict):
  if "hostname" not in data:
    return
  if not data["hostname"].startswith("spine") and not data["hostname"].startswith("leaf"):
    add_error("Hostname must start with spine or leaf", absolute_path=["hostname"])
`

func TestStarlarkValidator_reports_errors_through_add_error(t *testing.T) {
	v, err := validator.NewStarlarkValidator("check_hostname", "check_hostname.star", []byte(hostnameValidatorSrc))
	require.NoError(t, err)

	require.Equal(t, "checks/hostname", v.ID())
	require.Equal(t, map[string]struct{}{"hostname": {}}, v.TopLevelProperties())

	results := v.Validate(map[string]interface{}{"hostname": "core1"}, false)
	require.Len(t, results, 1)
	require.False(t, results[0].Passed())
	require.Equal(t, "Hostname must start with spine or leaf", results[0].Message)
	require.Equal(t, []string{"hostname"}, results[0].AbsolutePath)

	results = v.Validate(map[string]interface{}{"hostname": "spine1"}, false)
	require.Equal(t, []validation.Result{validation.NewPass("checks/hostname")}, results)
}

func TestStarlarkValidator_defaults_id_to_the_filename_stem(t *testing.T) {
	src := `
def validate(data, strict):
  pass
`
	v, err := validator.NewStarlarkValidator("check_anything", "check_anything.star", []byte(src))
	require.NoError(t, err)
	require.Equal(t, "check_anything", v.ID())
	require.Empty(t, v.TopLevelProperties())
}

func TestStarlarkValidator_explicit_add_pass_is_recorded_once(t *testing.T) {
	src := `
def validate(data, strict):
  add_pass()
  add_pass()
`
	v, err := validator.NewStarlarkValidator("check", "check.star", []byte(src))
	require.NoError(t, err)

	results := v.Validate(map[string]interface{}{}, false)
	require.Len(t, results, 2)
	require.True(t, validation.Passed(results))
}

func TestStarlarkValidator_receives_the_strict_flag(t *testing.T) {
	src := `
def validate(data, strict):
  if strict:
    add_error("strict run")
`
	v, err := validator.NewStarlarkValidator("check", "check.star", []byte(src))
	require.NoError(t, err)

	require.True(t, validation.Passed(v.Validate(map[string]interface{}{}, false)))
	require.False(t, validation.Passed(v.Validate(map[string]interface{}{}, true)))
}

func TestStarlarkValidator_iterates_nested_documents(t *testing.T) {
	src := `
top_level_properties = ["interfaces"]

def validate(data, strict):
  for name, intf in data["interfaces"].items():
    if not intf.get("description"):
      add_error("Missing interface description", absolute_path=["interfaces", name])
`
	v, err := validator.NewStarlarkValidator("check_descriptions", "check_descriptions.star", []byte(src))
	require.NoError(t, err)

	data := map[string]interface{}{
		"interfaces": map[string]interface{}{
			"eth0": map[string]interface{}{"description": "uplink"},
			"eth1": map[string]interface{}{},
		},
	}

	results := v.Validate(data, false)
	require.Len(t, results, 1)
	require.Equal(t, []string{"interfaces", "eth1"}, results[0].AbsolutePath)
}

func TestStarlarkValidator_script_errors_become_failing_results(t *testing.T) {
	src := `
def validate(data, strict):
  data["missing_key"]["deeper"]
`
	v, err := validator.NewStarlarkValidator("check", "check.star", []byte(src))
	require.NoError(t, err)

	results := v.Validate(map[string]interface{}{}, false)
	require.Len(t, results, 1)
	require.False(t, results[0].Passed())
	require.Contains(t, results[0].Message, "Running validator")
}

func TestStarlarkValidator_without_validate_function_is_rejected(t *testing.T) {
	_, err := validator.NewStarlarkValidator("check", "check.star", []byte(`x = 1`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected a validate function")
}

func TestStarlarkValidator_add_error_outside_validate_is_rejected(t *testing.T) {
	_, err := validator.NewStarlarkValidator("check", "check.star", []byte(`add_error("too early")`))
	require.Error(t, err)
}
