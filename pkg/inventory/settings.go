// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"fmt"
)

// Control variables recognized on a host; they configure validation and
// are stripped from the variables before any schema sees them.
const (
	SchemasVar = "schema_enforcer_schemas"
	StrictVar  = "schema_enforcer_strict"
	AutomapVar = "schema_enforcer_automap"
)

type HostSettings struct {
	DeclaredIDs []string
	Strict      bool
	Automap     bool
}

// ExtractSettings pulls the schema_enforcer_* control variables out of
// vars, deleting them in place. A mistyped variable, or strict mode without
// exactly one declared schema ID, is a configuration error that must abort
// the run before any validation happens.
func ExtractSettings(hostName string, vars map[string]interface{}) (HostSettings, error) {
	settings := HostSettings{Automap: true}

	if raw, found := vars[SchemasVar]; found {
		list, ok := raw.([]interface{})
		if !ok {
			return HostSettings{}, fmt.Errorf(
				"'%s' attribute defined for %s must be a list of schema IDs", SchemasVar, hostName)
		}
		for _, item := range list {
			id, ok := item.(string)
			if !ok {
				return HostSettings{}, fmt.Errorf(
					"'%s' attribute defined for %s must be a list of schema IDs", SchemasVar, hostName)
			}
			settings.DeclaredIDs = append(settings.DeclaredIDs, id)
		}
		delete(vars, SchemasVar)
	}

	if raw, found := vars[StrictVar]; found {
		strict, ok := raw.(bool)
		if !ok {
			return HostSettings{}, fmt.Errorf(
				"'%s' attribute defined for %s must be a bool", StrictVar, hostName)
		}
		settings.Strict = strict
		delete(vars, StrictVar)
	}

	if raw, found := vars[AutomapVar]; found {
		automap, ok := raw.(bool)
		if !ok {
			return HostSettings{}, fmt.Errorf(
				"'%s' attribute defined for %s must be a bool", AutomapVar, hostName)
		}
		settings.Automap = automap
		delete(vars, AutomapVar)
	}

	if settings.Strict && len(settings.DeclaredIDs) != 1 {
		return HostSettings{}, fmt.Errorf(
			"The '%s' parameter is set for %s but the '%s' parameter does not declare exactly one schema ID",
			StrictVar, hostName, SchemasVar)
	}

	return settings, nil
}
