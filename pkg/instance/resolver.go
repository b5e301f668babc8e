// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package instance

import (
	"carvel.dev/schema-enforcer/pkg/validator"
)

// Registry is the slice of the schema/validator registry the resolver
// needs: the top-level-property index and stable load order.
type Registry interface {
	All() []validator.Validation
	TopLevelPropertyIndex() map[string][]string
}

// CheckSet accumulates schema/validator IDs, keeping first-seen order and
// dropping duplicates.
type CheckSet struct {
	ids  []string
	seen map[string]struct{}
}

func NewCheckSet() *CheckSet {
	return &CheckSet{seen: map[string]struct{}{}}
}

func (cs *CheckSet) Add(ids ...string) {
	for _, id := range ids {
		if _, found := cs.seen[id]; found {
			continue
		}
		cs.seen[id] = struct{}{}
		cs.ids = append(cs.ids, id)
	}
}

func (cs *CheckSet) IDs() []string { return cs.ids }

// Resolve computes the ordered, deduplicated set of schema/validator IDs
// applicable to a data file. The three mapping sources are unioned in fixed
// precedence order: inline decorator, filename mapping, automap. Decorator
// and filename IDs are included verbatim whether or not they exist in the
// registry; a missing ID surfaces later as a validation failure for that
// ID. An empty result means the file is simply not checked.
func Resolve(f *File, reg Registry, automap bool) []string {
	checkSet := NewCheckSet()

	checkSet.Add(f.DecoratorIDs()...)
	checkSet.Add(f.MappingIDs()...)

	if automap {
		checkSet.Add(automapIDs(f.TopLevelKeys(), reg)...)
	}

	return checkSet.IDs()
}

// ResolveHost computes the check set for an inventory host. Unlike data
// files the two sources are mutually exclusive: a declared explicit ID list
// disables automap for that host.
func ResolveHost(topLevelKeys map[string]struct{}, declaredIDs []string, reg Registry, automap bool) []string {
	checkSet := NewCheckSet()

	if len(declaredIDs) > 0 {
		checkSet.Add(declaredIDs...)
		return checkSet.IDs()
	}

	if automap {
		checkSet.Add(automapIDs(topLevelKeys, reg)...)
	}

	return checkSet.IDs()
}

// automapIDs returns every ID whose declared top-level properties intersect
// the given keys, ordered by registry load order. Any single key in common
// is a match; extra undeclared keys on either side never disqualify.
func automapIDs(topLevelKeys map[string]struct{}, reg Registry) []string {
	index := reg.TopLevelPropertyIndex()

	candidates := map[string]struct{}{}
	for key := range topLevelKeys {
		for _, id := range index[key] {
			candidates[id] = struct{}{}
		}
	}

	var ids []string
	for _, v := range reg.All() {
		if _, found := candidates[v.ID()]; found {
			ids = append(ids, v.ID())
		}
	}
	return ids
}
