// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package schema

// StrictDocument returns a deep copy of a schema document with
// additionalProperties set to false at every object level that does not
// already declare it. Existing declarations, true or false, are kept as-is.
func StrictDocument(doc map[string]interface{}) map[string]interface{} {
	return strictCopy(doc).(map[string]interface{})
}

func strictCopy(val interface{}) interface{} {
	switch typedVal := val.(type) {
	case map[string]interface{}:
		result := map[string]interface{}{}
		for k, v := range typedVal {
			result[k] = strictCopy(v)
		}
		if _, declaresProps := result["properties"]; declaresProps {
			if _, declared := result["additionalProperties"]; !declared {
				result["additionalProperties"] = false
			}
		}
		return result

	case []interface{}:
		result := make([]interface{}, len(typedVal))
		for i, v := range typedVal {
			result[i] = strictCopy(v)
		}
		return result

	default:
		return val
	}
}
