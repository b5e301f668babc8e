// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package instance

import (
	"path/filepath"
	"regexp"
	"strings"

	"carvel.dev/schema-enforcer/pkg/files"
)

// decorator micro-grammar: a single leading comment line of the form
//	# jsonschema: <id>[,<id>...]
// Recognized on YAML files only. An absent or non-matching first line means
// no decorator IDs, never an error.
var decoratorRegexp = regexp.MustCompile(`^#\s*jsonschema:\s*(.+)$`)

// File is one structured data file queued for validation, with everything
// the mapping resolver needs precomputed: top-level keys, decorator IDs and
// filename-mapping IDs. Read failures are carried as ParseErr and surfaced
// as a file-scoped failure at validation time.
type File struct {
	path     string
	filename string

	data         interface{}
	parseErr     error
	topLevelKeys map[string]struct{}
	decoratorIDs []string
	mappingIDs   []string
}

func NewFile(file *files.File, mappingIDs []string) *File {
	result := &File{
		path:         filepath.Dir(file.Path()),
		filename:     file.Filename(),
		topLevelKeys: map[string]struct{}{},
		mappingIDs:   mappingIDs,
	}

	bs, err := file.Bytes()
	if err != nil {
		result.parseErr = err
		return result
	}

	if file.Type() == files.TypeYAML {
		result.decoratorIDs = parseDecorator(bs)
	}

	data, err := files.ParseDocument(bs)
	if err != nil {
		result.parseErr = err
		return result
	}

	result.data = data
	if m, ok := data.(map[string]interface{}); ok {
		for key := range m {
			result.topLevelKeys[key] = struct{}{}
		}
	}

	return result
}

func (f *File) Path() string     { return f.path }
func (f *File) Filename() string { return f.filename }
func (f *File) FullPath() string { return filepath.Join(f.path, f.filename) }

func (f *File) Data() interface{} { return f.data }
func (f *File) ParseErr() error   { return f.parseErr }

func (f *File) TopLevelKeys() map[string]struct{} { return f.topLevelKeys }
func (f *File) DecoratorIDs() []string            { return f.decoratorIDs }
func (f *File) MappingIDs() []string              { return f.mappingIDs }

func parseDecorator(bs []byte) []string {
	firstLine := string(bs)
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	firstLine = strings.TrimRight(firstLine, "\r")

	match := decoratorRegexp.FindStringSubmatch(firstLine)
	if match == nil {
		return nil
	}

	var ids []string
	for _, id := range strings.Split(match[1], ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
