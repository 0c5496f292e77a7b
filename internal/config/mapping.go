package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// TagMapping maps a project display name to the tags applied to its
// untagged entries. Loaded once per run, read-only afterwards.
type TagMapping map[string][]string

// LoadMapping reads a mapping file. JSON is the native format; .yaml and
// .yml files are accepted as well. Environment references in the file
// are expanded before parsing.
func LoadMapping(path string) (TagMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file %s: %w", path, err)
	}
	expanded := []byte(os.ExpandEnv(string(data)))

	var m TagMapping
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(expanded, &m)
	default:
		err = json.Unmarshal(expanded, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("parse mapping file %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("mapping file %s: %w", path, err)
	}
	return m, nil
}

// Validate rejects empty project names, empty tag lists and empty tags.
// An empty mapping is valid.
func (m TagMapping) Validate() error {
	for name, tags := range m {
		if err := validation.Validate(name, validation.Required); err != nil {
			return fmt.Errorf("project name must not be empty")
		}
		if err := validation.Validate(tags,
			validation.Required.Error("tag list must not be empty"),
			validation.Each(validation.Required.Error("tags must not be empty")),
		); err != nil {
			return fmt.Errorf("project %q: %w", name, err)
		}
	}
	return nil
}

// Lookup returns the tags configured for a project name.
func (m TagMapping) Lookup(projectName string) ([]string, bool) {
	tags, ok := m[projectName]
	return tags, ok
}

// AllTags returns every distinct tag in the mapping, sorted.
func (m TagMapping) AllTags() []string {
	seen := make(map[string]struct{})
	for _, tags := range m {
		for _, t := range tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
