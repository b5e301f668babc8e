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
	"carvel.dev/schema-enforcer/pkg/inventory"
	"carvel.dev/schema-enforcer/pkg/schema"
	"carvel.dev/schema-enforcer/pkg/validation"
	"carvel.dev/schema-enforcer/pkg/validator"
	uitable "github.com/cppforlife/go-cli-ui/ui/table"
	"github.com/spf13/cobra"
)

type AnsibleOptions struct {
	Inventory  string
	Host       string
	ShowPass   bool
	ShowChecks bool
}

func NewAnsibleOptions() *AnsibleOptions {
	return &AnsibleOptions{}
}

func NewAnsibleCmd(o *AnsibleOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ansible",
		Short: "Validate the merged hostvars of all hosts in an Ansible inventory",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().StringVarP(&o.Inventory, "inventory", "i", "", "Ansible inventory file")
	cmd.Flags().StringVar(&o.Host, "host", "", "Limit the execution to a single host")
	cmd.Flags().BoolVar(&o.ShowPass, "show-pass", false, "Show validation checks that passed")
	cmd.Flags().BoolVar(&o.ShowChecks, "show-checks", false,
		"Show the schemas to be checked for each host")
	return cmd
}

// hostCheck is one host's fully resolved validation work: merged vars with
// control variables stripped, the declared settings and the check set.
type hostCheck struct {
	name     string
	vars     map[string]interface{}
	settings inventory.HostSettings
	ids      []string
}

func (o *AnsibleOptions) Run() error {
	ui := cmdui.NewTTY()

	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if o.Inventory != "" {
		cfg.AnsibleInventory = o.Inventory
	}
	if cfg.AnsibleInventory == "" {
		return fmt.Errorf("Expected an inventory file via --inventory or ansible_inventory config")
	}

	registry, err := schema.NewManager(cfg)
	if err != nil {
		return err
	}
	if len(registry.All()) == 0 {
		return fmt.Errorf("No schemas were loaded")
	}

	inv, err := inventory.NewInventory(cfg.AnsibleInventory)
	if err != nil {
		return err
	}

	ui.Printf("Found %d hosts in the inventory\n", len(inv.Hosts))

	// Resolve settings for every host first: a misconfigured host aborts
	// the run before any validation output is produced.
	var checks []hostCheck

	for _, host := range inv.Hosts {
		if o.Host != "" && host.Name != o.Host {
			continue
		}

		vars := host.Vars()

		settings, err := inventory.ExtractSettings(host.Name, vars)
		if err != nil {
			return err
		}

		err = registry.CheckIDsExist(settings.DeclaredIDs)
		if err != nil {
			return fmt.Errorf("Host '%s': %s", host.Name, err)
		}

		checks = append(checks, hostCheck{
			name:     host.Name,
			vars:     vars,
			settings: settings,
			ids:      instance.ResolveHost(varKeys(vars), settings.DeclaredIDs, registry, settings.Automap),
		})
	}

	if o.ShowChecks {
		printHostCheckSets(checks)
		return nil
	}

	errorExists := false

	for _, check := range checks {
		results := engine.ValidateWith(registry, hostDataFunc(check), check.ids, check.settings.Strict)

		for _, result := range results {
			result.InstanceType = validation.InstanceTypeHost
			result.InstanceHostname = check.name

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

// hostDataFunc narrows the host's merged variables to a schema's declared
// top-level properties in non-strict mode. Strict mode validates the full
// variable set so undeclared keys get flagged.
func hostDataFunc(check hostCheck) func(validator.Validation) interface{} {
	return func(v validator.Validation) interface{} {
		if check.settings.Strict || len(v.TopLevelProperties()) == 0 {
			return check.vars
		}

		data := map[string]interface{}{}
		for prop := range v.TopLevelProperties() {
			data[prop] = check.vars[prop]
		}
		return data
	}
}

func printHostCheckSets(checks []hostCheck) {
	table := uitable.Table{
		Title:   "Resolved checks",
		Content: "checks",

		Header: []uitable.Header{
			uitable.NewHeader("Ansible Host"),
			uitable.NewHeader("Schema ID"),
		},

		FillFirstColumn: true,
	}

	for _, check := range checks {
		table.Rows = append(table.Rows, []uitable.Value{
			uitable.NewValueString(check.name),
			uitable.NewValueString(strings.Join(check.ids, ", ")),
		})
	}

	printTable(table)
}

func varKeys(vars map[string]interface{}) map[string]struct{} {
	keys := map[string]struct{}{}
	for key := range vars {
		keys[key] = struct{}{}
	}
	return keys
}
