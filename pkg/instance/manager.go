// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package instance

import (
	"carvel.dev/schema-enforcer/pkg/config"
	"carvel.dev/schema-enforcer/pkg/files"
)

// Manager locates every data file in the configured search directories and
// wraps each in a File carrying its filename-mapping IDs. The schema main
// directory is excluded from the search so schema definitions are never
// validated as data.
type Manager struct {
	Files []*File
}

func NewManager(cfg config.Config) (*Manager, error) {
	found, err := files.Finder{
		Extensions:        cfg.DataFileExtensions,
		ExcludedFilenames: cfg.DataFileExcludeFilenames,
		ExcludedDirs:      []string{cfg.MainDirectory},
	}.Find(cfg.DataFileSearchDirectories)
	if err != nil {
		return nil, err
	}

	manager := &Manager{}

	for _, file := range found {
		manager.Files = append(manager.Files, NewFile(file, cfg.SchemaMapping[file.Filename()]))
	}

	return manager, nil
}
