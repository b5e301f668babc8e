// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	gocliui "github.com/cppforlife/go-cli-ui/ui"
	uitable "github.com/cppforlife/go-cli-ui/ui/table"
)

func printTable(table uitable.Table) {
	confUI := gocliui.NewConfUI(gocliui.NewNoopLogger())
	defer confUI.Flush()

	confUI.PrintTable(table)
}
