// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"carvel.dev/schema-enforcer/pkg/cmd"
	uierrs "github.com/cppforlife/go-cli-ui/errors"
)

func main() {
	command := cmd.NewDefaultEnforcerCmd()

	err := command.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "schema-enforcer: Error: %s\n", uierrs.NewMultiLineError(err))
		os.Exit(1)
	}
}
