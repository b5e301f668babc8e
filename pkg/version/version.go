// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package version

// Version can be overridden at build time via -ldflags
var Version = "0.4.0"
