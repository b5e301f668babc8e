// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Finder locates files in a set of search directories, filtering on
// extension, excluded filenames and excluded directories. Results are
// sorted by path so traversal order stays deterministic.
type Finder struct {
	Extensions        []string
	ExcludedFilenames []string
	ExcludedDirs      []string
}

func (f Finder) Find(searchDirs []string) ([]*File, error) {
	var files []*File

	for _, dir := range searchDirs {
		fileInfo, err := os.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("Checking directory '%s': %s", dir, err)
		}
		if !fileInfo.IsDir() {
			return nil, fmt.Errorf("Expected '%s' to be a directory", dir)
		}

		var selectedPaths []string

		err = filepath.Walk(dir, func(walkedPath string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				if f.excludedDir(walkedPath) {
					return filepath.SkipDir
				}
				return nil
			}
			if f.matches(filepath.Base(walkedPath)) {
				selectedPaths = append(selectedPaths, walkedPath)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("Listing files '%s': %s", dir, err)
		}

		sort.Strings(selectedPaths)

		for _, selectedPath := range selectedPaths {
			file, err := NewFileFromSource(NewLocalSource(selectedPath, dir))
			if err != nil {
				return nil, err
			}
			files = append(files, file)
		}
	}

	return files, nil
}

func (f Finder) matches(filename string) bool {
	for _, excluded := range f.ExcludedFilenames {
		if filename == excluded {
			return false
		}
	}
	if len(f.Extensions) == 0 {
		return true
	}
	for _, ext := range f.Extensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}

func (f Finder) excludedDir(dir string) bool {
	base := filepath.Base(dir)
	for _, excluded := range f.ExcludedDirs {
		if base == filepath.Base(filepath.Clean(excluded)) || dir == filepath.Clean(excluded) {
			return true
		}
	}
	return false
}
