// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package ui

type UI interface {
	Printf(string, ...interface{})
	Warnf(string, ...interface{})
}
