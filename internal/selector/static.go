// Package selector provides the tag-selection strategies: a static
// mapping lookup and an operator-driven interactive prompt.
package selector

import (
	"toggl-tagger/internal/config"
	"toggl-tagger/internal/domain"
)

// Static selects tags by looking the resolved project name up in the
// configured mapping. Unmapped projects are skipped.
type Static struct {
	Mapping config.TagMapping
}

func (s *Static) SelectTags(entry domain.TimeEntry, projectName string) []string {
	tags, ok := s.Mapping.Lookup(projectName)
	if !ok || len(tags) == 0 {
		return nil
	}
	return tags
}
