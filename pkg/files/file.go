// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"path/filepath"
	"strings"
)

var (
	yamlExts     = []string{".yaml", ".yml"}
	jsonExts     = []string{".json"}
	starlarkExts = []string{".star"}
)

type Type int

const (
	TypeUnknown Type = iota
	TypeYAML
	TypeJSON
	TypeStarlark
)

type File struct {
	src     Source
	relPath string
}

func NewFileFromSource(fileSrc Source) (*File, error) {
	relPath, err := fileSrc.RelativePath()
	if err != nil {
		return nil, fmt.Errorf("Calculating relative path for '%s': %s", fileSrc.Description(), err)
	}

	return &File{src: fileSrc, relPath: relPath}, nil
}

func MustNewFileFromSource(fileSrc Source) *File {
	file, err := NewFileFromSource(fileSrc)
	if err != nil {
		panic(err)
	}
	return file
}

func (r *File) Description() string    { return r.src.Description() }
func (r *File) RelativePath() string   { return r.relPath }
func (r *File) Bytes() ([]byte, error) { return r.src.Bytes() }

// Path returns the location of the file on disk, or the relative path for
// in-memory sources.
func (r *File) Path() string {
	if local, ok := r.src.(LocalSource); ok {
		return local.Path()
	}
	return r.relPath
}

func (r *File) Filename() string { return filepath.Base(r.relPath) }

func (r *File) Type() Type {
	switch {
	case r.matchesExt(yamlExts):
		return TypeYAML
	case r.matchesExt(jsonExts):
		return TypeJSON
	case r.matchesExt(starlarkExts):
		return TypeStarlark
	default:
		return TypeUnknown
	}
}

func (r *File) matchesExt(exts []string) bool {
	filename := filepath.Base(r.relPath)
	for _, ext := range exts {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}
