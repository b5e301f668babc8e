// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"carvel.dev/schema-enforcer/pkg/files"
	"gopkg.in/yaml.v3"
)

// Inventory reads an Ansible-style INI inventory plus its group_vars/ and
// host_vars/ directories and produces hosts with fully merged variables.
// Merge precedence (lowest to highest): all group, parent groups, child
// groups, host_vars file, inline host vars. Within one level a variable is
// replaced whole, not deep-merged.
type Inventory struct {
	Hosts []*Host
}

type Host struct {
	Name string
	vars map[string]interface{}
}

// Vars returns a copy of the host's merged variables; callers are free to
// delete control keys from it.
func (h *Host) Vars() map[string]interface{} {
	result := map[string]interface{}{}
	for k, v := range h.vars {
		result[k] = v
	}
	return result
}

type group struct {
	name     string
	hosts    []string
	children []string
	vars     map[string]interface{}
}

func NewInventory(path string) (*Inventory, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Reading inventory file '%s': %s", path, err)
	}

	groups, inlineVars, err := parseINI(string(bs))
	if err != nil {
		return nil, fmt.Errorf("Parsing inventory file '%s': %s", path, err)
	}

	baseDir := filepath.Dir(path)

	for _, g := range groups {
		fileVars, err := loadVarsFile(filepath.Join(baseDir, "group_vars"), g.name)
		if err != nil {
			return nil, err
		}
		// [group:vars] section wins over the group_vars file
		for k, v := range g.vars {
			fileVars[k] = v
		}
		g.vars = fileVars
	}

	hostNames := map[string]struct{}{}
	for _, g := range groups {
		for _, h := range g.hosts {
			hostNames[h] = struct{}{}
		}
	}

	orderedGroups := orderByDepth(groups)

	inventory := &Inventory{}

	for name := range hostNames {
		vars := map[string]interface{}{}

		for _, g := range orderedGroups {
			if groupContainsHost(groups, g.name, name) {
				for k, v := range g.vars {
					vars[k] = v
				}
			}
		}

		hostFileVars, err := loadVarsFile(filepath.Join(baseDir, "host_vars"), name)
		if err != nil {
			return nil, err
		}
		for k, v := range hostFileVars {
			vars[k] = v
		}

		for k, v := range inlineVars[name] {
			vars[k] = v
		}

		inventory.Hosts = append(inventory.Hosts, &Host{Name: name, vars: vars})
	}

	sort.Slice(inventory.Hosts, func(i, j int) bool {
		return inventory.Hosts[i].Name < inventory.Hosts[j].Name
	})

	return inventory, nil
}

func parseINI(content string) (map[string]*group, map[string]map[string]interface{}, error) {
	groups := map[string]*group{}
	inlineVars := map[string]map[string]interface{}{}

	ensureGroup := func(name string) *group {
		if g, found := groups[name]; found {
			return g
		}
		g := &group{name: name, vars: map[string]interface{}{}}
		groups[name] = g
		return g
	}

	// "all" is implicit in every inventory; its group_vars apply everywhere
	ensureGroup("all")

	currentGroup := ensureGroup("ungrouped")
	currentKind := "hosts"

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section := line[1 : len(line)-1]
			currentKind = "hosts"
			switch {
			case strings.HasSuffix(section, ":children"):
				currentGroup = ensureGroup(strings.TrimSuffix(section, ":children"))
				currentKind = "children"
			case strings.HasSuffix(section, ":vars"):
				currentGroup = ensureGroup(strings.TrimSuffix(section, ":vars"))
				currentKind = "vars"
			default:
				currentGroup = ensureGroup(section)
			}
			continue
		}

		switch currentKind {
		case "children":
			ensureGroup(line)
			currentGroup.children = append(currentGroup.children, line)

		case "vars":
			key, value, found := strings.Cut(line, "=")
			if !found {
				return nil, nil, fmt.Errorf("Expected key=value in vars section, but was '%s'", line)
			}
			currentGroup.vars[strings.TrimSpace(key)] = parseScalar(strings.TrimSpace(value))

		default:
			tokens := strings.Fields(line)
			hostName := tokens[0]
			currentGroup.hosts = append(currentGroup.hosts, hostName)

			for _, token := range tokens[1:] {
				key, value, found := strings.Cut(token, "=")
				if !found {
					return nil, nil, fmt.Errorf("Expected key=value host variable, but was '%s'", token)
				}
				if inlineVars[hostName] == nil {
					inlineVars[hostName] = map[string]interface{}{}
				}
				inlineVars[hostName][key] = parseScalar(value)
			}
		}
	}

	return groups, inlineVars, nil
}

func parseScalar(val string) interface{} {
	var parsed interface{}
	err := yaml.Unmarshal([]byte(val), &parsed)
	if err != nil {
		return val
	}
	return parsed
}

func loadVarsFile(dir, name string) (map[string]interface{}, error) {
	for _, ext := range []string{".yml", ".yaml", ".json"} {
		path := filepath.Join(dir, name+ext)
		bs, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("Reading vars file '%s': %s", path, err)
		}

		doc, err := files.ParseDocument(bs)
		if err != nil {
			return nil, fmt.Errorf("Parsing vars file '%s': %s", path, err)
		}

		vars, ok := doc.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("Expected vars file '%s' to contain a map, but was %T", path, doc)
		}
		return vars, nil
	}

	return map[string]interface{}{}, nil
}

// orderByDepth returns groups ordered parents before children so child
// group variables override parent group variables during the merge.
func orderByDepth(groups map[string]*group) []*group {
	parents := map[string][]string{}
	for _, g := range groups {
		for _, child := range g.children {
			parents[child] = append(parents[child], g.name)
		}
	}

	depths := map[string]int{}
	var depthOf func(name string, seen map[string]struct{}) int
	depthOf = func(name string, seen map[string]struct{}) int {
		if d, found := depths[name]; found {
			return d
		}
		if _, cycle := seen[name]; cycle {
			return 0
		}
		seen[name] = struct{}{}

		depth := 0
		if name == "all" {
			depths[name] = 0
			return 0
		}
		depth = 1
		for _, parent := range parents[name] {
			if d := depthOf(parent, seen) + 1; d > depth {
				depth = d
			}
		}
		depths[name] = depth
		return depth
	}

	var result []*group
	for _, g := range groups {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		di := depthOf(result[i].name, map[string]struct{}{})
		dj := depthOf(result[j].name, map[string]struct{}{})
		if di != dj {
			return di < dj
		}
		return result[i].name < result[j].name
	})

	return result
}

// groupContainsHost reports whether the host is in the group directly or
// through any of its descendant groups.
func groupContainsHost(groups map[string]*group, groupName, hostName string) bool {
	g, found := groups[groupName]
	if !found {
		return false
	}
	if groupName == "all" {
		return true
	}
	for _, h := range g.hosts {
		if h == hostName {
			return true
		}
	}
	for _, child := range g.children {
		if groupContainsHost(groups, child, hostName) {
			return true
		}
	}
	return false
}
