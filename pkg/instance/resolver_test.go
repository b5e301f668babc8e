// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package instance_test

import (
	"fmt"
	"testing"

	"carvel.dev/schema-enforcer/pkg/files"
	"carvel.dev/schema-enforcer/pkg/instance"
	"carvel.dev/schema-enforcer/pkg/validation"
	"carvel.dev/schema-enforcer/pkg/validator"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
)

type stubValidation struct {
	id    string
	props []string
}

var _ validator.Validation = stubValidation{}

func (s stubValidation) ID() string { return s.id }

func (s stubValidation) TopLevelProperties() map[string]struct{} {
	result := map[string]struct{}{}
	for _, p := range s.props {
		result[p] = struct{}{}
	}
	return result
}

func (s stubValidation) Validate(data interface{}, strict bool) []validation.Result {
	return []validation.Result{validation.NewPass(s.id)}
}

type stubRegistry struct {
	validations []validator.Validation
}

var _ instance.Registry = stubRegistry{}

func (r stubRegistry) All() []validator.Validation { return r.validations }

func (r stubRegistry) TopLevelPropertyIndex() map[string][]string {
	index := map[string][]string{}
	for _, v := range r.validations {
		for prop := range v.TopLevelProperties() {
			index[prop] = append(index[prop], v.ID())
		}
	}
	return index
}

func newTestFile(t *testing.T, name string, content string, mappingIDs []string) *instance.File {
	t.Helper()
	file := files.MustNewFileFromSource(files.NewBytesSource(name, []byte(content)))
	result := instance.NewFile(file, mappingIDs)
	require.NoError(t, result.ParseErr())
	return result
}

func TestResolve_unions_all_three_sources_in_precedence_order(t *testing.T) {
	registry := stubRegistry{[]validator.Validation{
		stubValidation{id: "schemas/dns_servers", props: []string{"dns_servers"}},
	}}

	content := "# jsonschema: schemas/a, schemas/b\n---\ndns_servers: []\n"
	file := newTestFile(t, "dns.yml", content, []string{"schemas/b", "schemas/c"})

	ids := instance.Resolve(file, registry, true)
	require.Equal(t, []string{"schemas/a", "schemas/b", "schemas/c", "schemas/dns_servers"}, ids)
}

func TestResolve_decorator_and_mapping_dedup_first_seen(t *testing.T) {
	registry := stubRegistry{}

	content := "# jsonschema: a,b\nsome_key: 1\n"
	file := newTestFile(t, "data.yml", content, []string{"b", "c"})

	ids := instance.Resolve(file, registry, true)
	require.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestResolve_automap_disabled_and_no_other_sources(t *testing.T) {
	registry := stubRegistry{[]validator.Validation{
		stubValidation{id: "schemas/dns_servers", props: []string{"dns_servers"}},
	}}

	file := newTestFile(t, "dns.yml", "dns_servers: []\n", nil)

	require.Empty(t, instance.Resolve(file, registry, false))
}

func TestResolve_filename_mapping_coexists_with_automap(t *testing.T) {
	// migration scenario: a v2 schema mapped by filename while the v1
	// schema still automaps on the same top-level key
	registry := stubRegistry{[]validator.Validation{
		stubValidation{id: "schemas/dns_servers", props: []string{"dns_servers"}},
	}}

	file := newTestFile(t, "dns_v2.yml", "dns_servers: []\n", []string{"schemas/dns_servers_v2"})

	ids := instance.Resolve(file, registry, true)
	require.Equal(t, []string{"schemas/dns_servers_v2", "schemas/dns_servers"}, ids)
}

func TestResolve_automap_matches_on_any_key_in_common(t *testing.T) {
	registry := stubRegistry{[]validator.Validation{
		stubValidation{id: "schemas/dns", props: []string{"dns_servers", "dns_options"}},
		stubValidation{id: "schemas/syslog", props: []string{"syslog_servers"}},
		stubValidation{id: "schemas/ntp", props: []string{"ntp_servers"}},
	}}

	// extra undeclared keys never disqualify a file, and a schema is not
	// excluded for declaring properties the file lacks
	content := "dns_servers: []\nsyslog_servers: []\nunrelated_key: true\n"
	file := newTestFile(t, "data.yml", content, nil)

	ids := instance.Resolve(file, registry, true)
	require.Equal(t, []string{"schemas/dns", "schemas/syslog"}, ids)
}

func TestResolve_empty_document_automaps_to_nothing(t *testing.T) {
	registry := stubRegistry{[]validator.Validation{
		stubValidation{id: "schemas/dns", props: []string{"dns_servers"}},
	}}

	file := newTestFile(t, "empty.yml", "", nil)

	require.Empty(t, instance.Resolve(file, registry, true))
}

func TestResolve_is_idempotent(t *testing.T) {
	registry := stubRegistry{[]validator.Validation{
		stubValidation{id: "schemas/dns", props: []string{"dns_servers"}},
	}}

	content := "# jsonschema: schemas/x\ndns_servers: []\n"
	file := newTestFile(t, "dns.yml", content, []string{"schemas/y"})

	first := instance.Resolve(file, registry, true)
	second := instance.Resolve(file, registry, true)
	require.Equal(t, first, second)
}

func TestResolveHost_explicit_list_disables_automap(t *testing.T) {
	registry := stubRegistry{[]validator.Validation{
		stubValidation{id: "schemas/dns", props: []string{"dns_servers"}},
		stubValidation{id: "schemas/syslog", props: []string{"syslog_servers"}},
	}}

	keys := map[string]struct{}{"dns_servers": {}, "syslog_servers": {}}

	ids := instance.ResolveHost(keys, []string{"schemas/syslog"}, registry, true)
	require.Equal(t, []string{"schemas/syslog"}, ids)

	ids = instance.ResolveHost(keys, nil, registry, true)
	require.Equal(t, []string{"schemas/dns", "schemas/syslog"}, ids)

	require.Empty(t, instance.ResolveHost(keys, nil, registry, false))
}

func TestResolve_fuzzed_content_never_panics(t *testing.T) {
	registry := stubRegistry{[]validator.Validation{
		stubValidation{id: "schemas/dns", props: []string{"dns_servers"}},
	}}

	fuzzer := fuzz.New().NumElements(0, 10)

	for i := 0; i < 100; i++ {
		var keys []string
		fuzzer.Fuzz(&keys)

		content := ""
		for _, key := range keys {
			content += fmt.Sprintf("%q: 1\n", key)
		}

		file := files.MustNewFileFromSource(files.NewBytesSource("fuzz.yml", []byte(content)))
		instance.Resolve(instance.NewFile(file, nil), registry, true)
	}
}
