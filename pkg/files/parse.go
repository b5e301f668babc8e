// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseDocument decodes YAML or JSON bytes into plain Go values
// (map[string]interface{}, []interface{}, scalars). JSON documents go
// through the YAML decoder since YAML is a superset.
func ParseDocument(bs []byte) (interface{}, error) {
	var doc interface{}

	err := yaml.Unmarshal(bs, &doc)
	if err != nil {
		return nil, fmt.Errorf("Parsing document: %s", err)
	}

	return doc, nil
}
