// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"carvel.dev/schema-enforcer/pkg/version"
	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"
)

type EnforcerOptions struct{}

func NewDefaultEnforcerOptions() *EnforcerOptions {
	return &EnforcerOptions{}
}

func NewDefaultEnforcerCmd() *cobra.Command {
	return NewEnforcerCmd(NewDefaultEnforcerOptions())
}

func NewEnforcerCmd(o *EnforcerOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schema-enforcer",
		Version: version.Version,
		Short:   "schema-enforcer checks structured data against schema definitions",
		Long: `schema-enforcer checks that structured data adheres to schema definitions.

Data can come from YAML files, JSON files, or an Ansible inventory. Schemas
are declared in the JSONSchema language in YAML or JSON format, optionally
extended with custom validator plugins.`,
	}

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	cmd.AddCommand(NewVersionCmd(NewVersionOptions()))
	cmd.AddCommand(NewValidateCmd(NewValidateOptions()))
	cmd.AddCommand(NewSchemaCmd(NewSchemaOptions()))
	cmd.AddCommand(NewAnsibleCmd(NewAnsibleOptions()))

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}
