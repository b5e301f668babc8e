// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"carvel.dev/schema-enforcer/pkg/config"
	"carvel.dev/schema-enforcer/pkg/files"
	"carvel.dev/schema-enforcer/pkg/validation"
	"github.com/k14s/difflib"
	"gopkg.in/yaml.v3"
)

type UI interface {
	Printf(string, ...interface{})
	Warnf(string, ...interface{})
}

// TestSchemas runs the per-schema test fixtures found under the configured
// test directory. For each schema ID, every document under
// <tests>/<id>/valid/ must pass, and every case directory under
// <tests>/<id>/invalid/ must produce results matching its expected results
// file. Mismatches are reported with a diff.
func (m *Manager) TestSchemas(ui UI, cfg config.Config) ([]validation.Result, error) {
	testBase := filepath.Join(cfg.MainDirectory, cfg.TestDirectory)

	var results []validation.Result

	for _, schema := range m.Schemas() {
		validResults, err := m.testSchemaValid(schema, testBase)
		if err != nil {
			return nil, err
		}
		results = append(results, validResults...)

		invalidResults, err := m.testSchemaInvalid(ui, schema, testBase)
		if err != nil {
			return nil, err
		}
		results = append(results, invalidResults...)
	}

	return results, nil
}

func (m *Manager) testSchemaValid(schema *Schema, testBase string) ([]validation.Result, error) {
	validDir := filepath.Join(testBase, schema.ID(), "valid")

	found, err := files.Finder{Extensions: []string{".yaml", ".yml", ".json"}}.Find([]string{validDir})
	if err != nil {
		return nil, err
	}

	var results []validation.Result

	for _, file := range found {
		bs, err := file.Bytes()
		if err != nil {
			return nil, fmt.Errorf("Reading test file '%s': %s", file.Path(), err)
		}
		data, err := files.ParseDocument(bs)
		if err != nil {
			return nil, fmt.Errorf("Parsing test file '%s': %s", file.Path(), err)
		}

		for _, result := range schema.Validate(data, false) {
			result.InstanceType = validation.InstanceTypeTest
			result.InstanceName = file.Filename()
			result.InstanceLocation = filepath.Dir(file.Path())
			results = append(results, result)
		}
	}

	return results, nil
}

func (m *Manager) testSchemaInvalid(ui UI, schema *Schema, testBase string) ([]validation.Result, error) {
	invalidDir := filepath.Join(testBase, schema.ID(), "invalid")

	entries, err := os.ReadDir(invalidDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("Listing test directory '%s': %s", invalidDir, err)
	}

	var results []validation.Result

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		caseDir := filepath.Join(invalidDir, entry.Name())

		dataFile := findTestFile(caseDir, "data")
		if dataFile == "" {
			ui.Warnf("WARNING | Could not find data file in %s. Skipping...\n", caseDir)
			continue
		}

		expectedFile := findTestFile(caseDir, "results")
		if expectedFile == "" {
			ui.Warnf("WARNING | Could not find expected results file in %s. Skipping...\n", caseDir)
			continue
		}

		data, err := parseFile(dataFile)
		if err != nil {
			return nil, err
		}
		expectedDoc, err := parseFile(expectedFile)
		if err != nil {
			return nil, err
		}

		expected, err := expectedResultsList(expectedDoc, expectedFile)
		if err != nil {
			return nil, err
		}

		actual, err := normalizeResults(schema.Validate(data, false))
		if err != nil {
			return nil, err
		}

		result := validation.NewPass(schema.ID())
		if !reflect.DeepEqual(expected, actual) {
			result = validation.NewFail(schema.ID(),
				fmt.Sprintf("Invalid test results do not match expected test results from %s", expectedFile), nil)
			ui.Printf("%s", resultsDiff(expected, actual))
		}
		result.InstanceType = validation.InstanceTypeTest
		result.InstanceName = entry.Name()
		result.InstanceLocation = invalidDir

		results = append(results, result)
	}

	return results, nil
}

func findTestFile(dir, stem string) string {
	for _, ext := range []string{".yml", ".yaml", ".json"} {
		path := filepath.Join(dir, stem+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func parseFile(path string) (interface{}, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Reading file '%s': %s", path, err)
	}
	doc, err := files.ParseDocument(bs)
	if err != nil {
		return nil, fmt.Errorf("Parsing file '%s': %s", path, err)
	}
	return doc, nil
}

func expectedResultsList(doc interface{}, path string) ([]interface{}, error) {
	docMap, ok := doc.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("Expected '%s' to contain a map with a results key", path)
	}
	list, ok := docMap["results"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("Expected '%s' to declare results as a list", path)
	}
	sortResultMaps(list)
	return list, nil
}

func normalizeResults(results []validation.Result) ([]interface{}, error) {
	bs, err := yaml.Marshal(results)
	if err != nil {
		return nil, err
	}

	var list []interface{}
	err = yaml.Unmarshal(bs, &list)
	if err != nil {
		return nil, err
	}

	sortResultMaps(list)
	return list, nil
}

func sortResultMaps(list []interface{}) {
	sort.SliceStable(list, func(i, j int) bool {
		return resultMessage(list[i]) < resultMessage(list[j])
	})
}

func resultMessage(val interface{}) string {
	if m, ok := val.(map[string]interface{}); ok {
		if msg, ok := m["message"].(string); ok {
			return msg
		}
	}
	return ""
}

func resultsDiff(expected, actual []interface{}) string {
	expectedBs, _ := yaml.Marshal(expected)
	actualBs, _ := yaml.Marshal(actual)
	return difflib.PPDiff(strings.Split(string(expectedBs), "\n"), strings.Split(string(actualBs), "\n"))
}
