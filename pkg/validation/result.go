// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"fmt"
	"strings"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

const (
	InstanceTypeFile = "FILE"
	InstanceTypeHost = "HOST"
	InstanceTypeTest = "TEST"
)

// Result captures the outcome of checking one document against one schema
// or validator ID.
type Result struct {
	Status   string `yaml:"result"`
	SchemaID string `yaml:"schema_id"`

	// set only on failure
	Message      string   `yaml:"message,omitempty"`
	AbsolutePath []string `yaml:"absolute_path,omitempty"`

	InstanceType     string `yaml:"-"`
	InstanceName     string `yaml:"-"`
	InstanceLocation string `yaml:"-"`
	InstanceHostname string `yaml:"-"`
}

func NewPass(schemaID string) Result {
	return Result{Status: StatusPass, SchemaID: schemaID}
}

func NewFail(schemaID, message string, absolutePath []string) Result {
	return Result{Status: StatusFail, SchemaID: schemaID, Message: message, AbsolutePath: absolutePath}
}

func (r Result) Passed() bool { return r.Status == StatusPass }

func (r Result) String() string {
	if r.Passed() {
		switch r.InstanceType {
		case InstanceTypeHost:
			return fmt.Sprintf("PASS | [HOST] %s [SCHEMA ID] %s", r.InstanceHostname, r.SchemaID)
		default:
			return fmt.Sprintf("PASS | [%s] %s/%s", r.InstanceType, r.InstanceLocation, r.InstanceName)
		}
	}

	msg := fmt.Sprintf("FAIL | [ERROR] %s", r.Message)
	switch r.InstanceType {
	case InstanceTypeHost:
		msg += fmt.Sprintf(" [HOST] %s", r.InstanceHostname)
	default:
		msg += fmt.Sprintf(" [%s] %s/%s", r.InstanceType, r.InstanceLocation, r.InstanceName)
	}
	msg += fmt.Sprintf(" [PROPERTY] %s", strings.Join(r.AbsolutePath, ":"))
	return msg
}

// Passed reports whether no result in the set failed.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed() {
			return false
		}
	}
	return true
}
