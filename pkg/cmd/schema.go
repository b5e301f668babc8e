// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	cmdui "carvel.dev/schema-enforcer/pkg/cmd/ui"
	"carvel.dev/schema-enforcer/pkg/config"
	"carvel.dev/schema-enforcer/pkg/schema"
	"carvel.dev/schema-enforcer/pkg/validator"
	uitable "github.com/cppforlife/go-cli-ui/ui/table"
	"github.com/spf13/cobra"
)

type SchemaOptions struct {
	List     bool
	Dump     bool
	Check    bool
	SchemaID string
}

func NewSchemaOptions() *SchemaOptions {
	return &SchemaOptions{}
}

func NewSchemaCmd(o *SchemaOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage schemas",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().BoolVar(&o.List, "list", false, "List all available schemas and validators")
	cmd.Flags().BoolVar(&o.Dump, "dump", false, "Dump schema documents for all schemas or --schema-id")
	cmd.Flags().BoolVar(&o.Check, "check", false, "Validate that all schemas pass their defined tests")
	cmd.Flags().StringVar(&o.SchemaID, "schema-id", "", "Limit the operation to a single schema ID")
	return cmd
}

func (o *SchemaOptions) Run() error {
	modes := 0
	for _, set := range []bool{o.List, o.Dump, o.Check} {
		if set {
			modes++
		}
	}
	if modes == 0 {
		return fmt.Errorf("Expected one of --list, --dump or --check to be specified")
	}
	if modes > 1 {
		return fmt.Errorf("Expected only one of --list, --dump or --check to be specified")
	}
	if o.SchemaID != "" && !o.Dump {
		return fmt.Errorf("Expected --schema-id to be used with --dump")
	}

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

	switch {
	case o.List:
		return o.runList(registry)
	case o.Dump:
		return o.runDump(registry)
	default:
		return o.runCheck(registry, cfg)
	}
}

func (o *SchemaOptions) runList(registry *schema.Manager) error {
	table := uitable.Table{
		Title:   "Loaded schemas and validators",
		Content: "schemas",

		Header: []uitable.Header{
			uitable.NewHeader("Schema ID"),
			uitable.NewHeader("Type"),
			uitable.NewHeader("Source"),
		},

		FillFirstColumn: true,
	}

	for _, v := range registry.All() {
		table.Rows = append(table.Rows, []uitable.Value{
			uitable.NewValueString(v.ID()),
			uitable.NewValueString(validationType(v)),
			uitable.NewValueString(validationSource(v)),
		})
	}

	printTable(table)
	return nil
}

func (o *SchemaOptions) runDump(registry *schema.Manager) error {
	ui := cmdui.NewTTY()

	if o.SchemaID != "" {
		v, found := registry.GetByID(o.SchemaID)
		if !found {
			return fmt.Errorf("Could not find schema ID '%s'", o.SchemaID)
		}
		jsonSchema, ok := v.(*schema.Schema)
		if !ok {
			return fmt.Errorf("Schema ID '%s' is a custom validator and cannot be dumped", o.SchemaID)
		}
		return dumpSchema(ui, jsonSchema)
	}

	for _, jsonSchema := range registry.Schemas() {
		err := dumpSchema(ui, jsonSchema)
		if err != nil {
			return err
		}
	}
	return nil
}

func (o *SchemaOptions) runCheck(registry *schema.Manager, cfg config.Config) error {
	ui := cmdui.NewTTY()

	results, err := registry.TestSchemas(ui, cfg)
	if err != nil {
		return err
	}

	errorExists := false
	for _, result := range results {
		if !result.Passed() {
			errorExists = true
		}
		ui.Printf("%s\n", result)
	}

	if errorExists {
		return fmt.Errorf("Schema tests failed")
	}

	ui.Printf("ALL SCHEMAS ARE VALID\n")
	return nil
}

func dumpSchema(ui cmdui.UI, jsonSchema *schema.Schema) error {
	bs, err := json.MarshalIndent(jsonSchema.Document(), "", "  ")
	if err != nil {
		return fmt.Errorf("Marshaling schema '%s': %s", jsonSchema.ID(), err)
	}
	ui.Printf("%s\n", bs)
	return nil
}

func validationType(v validator.Validation) string {
	switch v.(type) {
	case *schema.Schema:
		return "jsonschema"
	case *validator.ExpressionValidator:
		return "expression"
	case *validator.StarlarkValidator:
		return "starlark"
	default:
		return "validator"
	}
}

func validationSource(v validator.Validation) string {
	if jsonSchema, ok := v.(*schema.Schema); ok {
		return filepath.Join(jsonSchema.Path(), jsonSchema.Filename())
	}
	return ""
}
