// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package files_test

import (
	"os"
	"path/filepath"
	"testing"

	"carvel.dev/schema-enforcer/pkg/files"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, names ...string) {
	t.Helper()

	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("key: value\n"), 0600))
	}
}

func foundPaths(result []*files.File) []string {
	var paths []string
	for _, file := range result {
		paths = append(paths, file.RelativePath())
	}
	return paths
}

func TestFinder_filters_on_extension_and_sorts(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "b.yml", "a.yaml", "c.json", "notes.txt", "sub/d.yml")

	result, err := files.Finder{Extensions: []string{".yaml", ".yml", ".json"}}.Find([]string{root})
	require.NoError(t, err)

	require.Equal(t, []string{"a.yaml", "b.yml", "c.json", "sub/d.yml"}, foundPaths(result))
}

func TestFinder_excluded_filenames(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "dns.yml", ".yamllint.yml", ".travis.yml")

	result, err := files.Finder{
		Extensions:        []string{".yml"},
		ExcludedFilenames: []string{".yamllint.yml", ".travis.yml"},
	}.Find([]string{root})
	require.NoError(t, err)

	require.Equal(t, []string{"dns.yml"}, foundPaths(result))
}

func TestFinder_excluded_directories_are_skipped_entirely(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "dns.yml", "schema/schemas/dns.yml", "schema/tests/case/data.yml")

	result, err := files.Finder{
		Extensions:   []string{".yml"},
		ExcludedDirs: []string{"schema"},
	}.Find([]string{root})
	require.NoError(t, err)

	require.Equal(t, []string{"dns.yml"}, foundPaths(result))
}

func TestFinder_missing_directory_is_skipped(t *testing.T) {
	result, err := files.Finder{}.Find([]string{filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)
	require.Empty(t, result)
}

func TestFinder_file_as_search_directory_is_an_error(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "dns.yml")

	_, err := files.Finder{}.Find([]string{filepath.Join(root, "dns.yml")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "to be a directory")
}

func TestFile_type_detection(t *testing.T) {
	require.Equal(t, files.TypeYAML, files.MustNewFileFromSource(files.NewBytesSource("a.yml", nil)).Type())
	require.Equal(t, files.TypeYAML, files.MustNewFileFromSource(files.NewBytesSource("a.yaml", nil)).Type())
	require.Equal(t, files.TypeJSON, files.MustNewFileFromSource(files.NewBytesSource("a.json", nil)).Type())
	require.Equal(t, files.TypeStarlark, files.MustNewFileFromSource(files.NewBytesSource("a.star", nil)).Type())
	require.Equal(t, files.TypeUnknown, files.MustNewFileFromSource(files.NewBytesSource("a.txt", nil)).Type())
}

func TestParseDocument_yaml_and_json(t *testing.T) {
	doc, err := files.ParseDocument([]byte("dns_servers:\n- address: 10.1.1.1\n"))
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{
		"dns_servers": []interface{}{map[string]interface{}{"address": "10.1.1.1"}},
	}, doc)

	doc, err = files.ParseDocument([]byte(`{"dns_servers": []}`))
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"dns_servers": []interface{}{}}, doc)

	_, err = files.ParseDocument([]byte("key: [unclosed\n"))
	require.Error(t, err)
}
