// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"

	"carvel.dev/schema-enforcer/pkg/version"
	"github.com/BurntSushi/toml"
	goversion "github.com/hashicorp/go-version"
)

const DefaultFileName = "schema-enforcer.toml"

// Config carries every project-level setting. It is constructed once at
// startup and passed by value; nothing mutates it afterwards.
type Config struct {
	MainDirectory       string `toml:"main_directory"`
	SchemaDirectory     string `toml:"schema_directory"`
	DefinitionDirectory string `toml:"definition_directory"`
	ValidatorDirectory  string `toml:"validator_directory"`
	TestDirectory       string `toml:"test_directory"`

	SchemaFileExtensions       []string `toml:"schema_file_extensions"`
	SchemaFileExcludeFilenames []string `toml:"schema_file_exclude_filenames"`

	DataFileSearchDirectories []string `toml:"data_file_search_directories"`
	DataFileExtensions        []string `toml:"data_file_extensions"`
	DataFileExcludeFilenames  []string `toml:"data_file_exclude_filenames"`
	DataFileAutomap           bool     `toml:"data_file_automap"`

	AnsibleInventory string `toml:"ansible_inventory"`
	RequiredVersion  string `toml:"required_version"`

	SchemaMapping map[string][]string `toml:"schema_mapping"`
}

func NewDefaultConfig() Config {
	return Config{
		MainDirectory:       "schema",
		SchemaDirectory:     "schemas",
		DefinitionDirectory: "definitions",
		ValidatorDirectory:  "validators",
		TestDirectory:       "tests",

		SchemaFileExtensions: []string{".json", ".yaml", ".yml"},

		DataFileSearchDirectories: []string{"./"},
		DataFileExtensions:        []string{".json", ".yaml", ".yml"},
		DataFileExcludeFilenames:  []string{".yamllint.yml", ".travis.yml"},
		DataFileAutomap:           true,

		SchemaMapping: map[string][]string{},
	}
}

// Load reads configuration from fileName, falling back to defaults when the
// file does not exist. An unparsable or invalid file is a fatal error.
func Load(fileName string) (Config, error) {
	config := NewDefaultConfig()

	if fileName == "" {
		fileName = DefaultFileName
	}

	bs, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, fmt.Errorf("Reading config file '%s': %s", fileName, err)
	}

	err = toml.Unmarshal(bs, &config)
	if err != nil {
		return Config{}, fmt.Errorf("Parsing config file '%s': %s", fileName, err)
	}

	err = config.checkRequiredVersion()
	if err != nil {
		return Config{}, err
	}

	return config, nil
}

// LoadBytes parses configuration from an in-memory TOML document on top of
// the defaults.
func LoadBytes(bs []byte) (Config, error) {
	config := NewDefaultConfig()

	err := toml.Unmarshal(bs, &config)
	if err != nil {
		return Config{}, fmt.Errorf("Parsing config: %s", err)
	}

	err = config.checkRequiredVersion()
	if err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) checkRequiredVersion() error {
	if c.RequiredVersion == "" {
		return nil
	}

	constraint, err := goversion.NewConstraint(c.RequiredVersion)
	if err != nil {
		return fmt.Errorf("Parsing required_version constraint '%s': %s", c.RequiredVersion, err)
	}

	current, err := goversion.NewVersion(version.Version)
	if err != nil {
		return fmt.Errorf("Parsing current version '%s': %s", version.Version, err)
	}

	if !constraint.Check(current) {
		return fmt.Errorf("schema-enforcer version '%s' does not satisfy required_version '%s'",
			version.Version, c.RequiredVersion)
	}

	return nil
}
