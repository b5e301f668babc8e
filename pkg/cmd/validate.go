// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	cmdui "carvel.dev/schema-enforcer/pkg/cmd/ui"
	"carvel.dev/schema-enforcer/pkg/config"
	"carvel.dev/schema-enforcer/pkg/engine"
	"carvel.dev/schema-enforcer/pkg/instance"
	"carvel.dev/schema-enforcer/pkg/schema"
	"carvel.dev/schema-enforcer/pkg/validation"
	uitable "github.com/cppforlife/go-cli-ui/ui/table"
	"github.com/spf13/cobra"
)

type ValidateOptions struct {
	ShowPass   bool
	ShowChecks bool
	Strict     bool
}

func NewValidateOptions() *ValidateOptions {
	return &ValidateOptions{}
}

func NewValidateCmd(o *ValidateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate data files against defined schemas and validators",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().BoolVar(&o.ShowPass, "show-pass", false, "Show validation checks that passed")
	cmd.Flags().BoolVar(&o.ShowChecks, "show-checks", false,
		"Show the schemas to be checked for each structured data file")
	cmd.Flags().BoolVar(&o.Strict, "strict", false,
		"Force a stricter schema check that flags unexpected additional properties")
	return cmd
}

func (o *ValidateOptions) Run() error {
	ui := cmdui.NewTTY()

	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	registry, err := schema.NewManager(cfg)
	if err != nil {
		return err
	}
	if len(registry.All()) == 0 {
		return fmt.Errorf("No schemas were loaded")
	}

	manager, err := instance.NewManager(cfg)
	if err != nil {
		return err
	}
	if len(manager.Files) == 0 {
		return fmt.Errorf("No instance files were found to validate")
	}

	if o.ShowChecks {
		printCheckSets(manager, registry, cfg)
		return nil
	}

	errorExists := false

	for _, file := range manager.Files {
		for _, result := range validateFile(registry, file, cfg, o.Strict) {
			result.InstanceType = validation.InstanceTypeFile
			result.InstanceName = file.Filename()
			result.InstanceLocation = file.Path()

			if !result.Passed() {
				errorExists = true
				ui.Printf("%s\n", result)
			} else if o.ShowPass {
				ui.Printf("%s\n", result)
			}
		}
	}

	if errorExists {
		return fmt.Errorf("Schema validation failed")
	}

	ui.Printf("ALL SCHEMA VALIDATION CHECKS PASSED\n")
	return nil
}

func validateFile(registry *schema.Manager, file *instance.File, cfg config.Config, strict bool) []validation.Result {
	if err := file.ParseErr(); err != nil {
		return []validation.Result{validation.NewFail("", err.Error(), nil)}
	}

	ids := instance.Resolve(file, registry, cfg.DataFileAutomap)
	return engine.Validate(registry, file.Data(), ids, strict)
}

func printCheckSets(manager *instance.Manager, registry *schema.Manager, cfg config.Config) {
	table := uitable.Table{
		Title:   "Resolved checks",
		Content: "checks",

		Header: []uitable.Header{
			uitable.NewHeader("Structured Data File"),
			uitable.NewHeader("Schema ID"),
		},

		FillFirstColumn: true,
	}

	for _, file := range manager.Files {
		ids := instance.Resolve(file, registry, cfg.DataFileAutomap)
		table.Rows = append(table.Rows, []uitable.Value{
			uitable.NewValueString(file.FullPath()),
			uitable.NewValueString(strings.Join(ids, ", ")),
		})
	}

	printTable(table)
}
