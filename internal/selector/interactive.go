package selector

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"toggl-tagger/internal/config"
	"toggl-tagger/internal/domain"
)

// Interactive prompts the operator for every candidate entry. Invalid
// input re-prompts; an explicit skip or a closed input stream selects
// nothing.
type Interactive struct {
	mapping config.TagMapping
	in      *bufio.Scanner
	out     io.Writer
}

func NewInteractive(mapping config.TagMapping, in io.Reader, out io.Writer) *Interactive {
	return &Interactive{
		mapping: mapping,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

func (s *Interactive) SelectTags(entry domain.TimeEntry, projectName string) []string {
	suggestion, _ := s.mapping.Lookup(projectName)
	known := s.mapping.AllTags()

	fmt.Fprintf(s.out, "\nEntry %d: %q\n", entry.ID, entry.Description)
	fmt.Fprintf(s.out, "  project:  %s\n", projectName)
	fmt.Fprintf(s.out, "  start:    %s\n", entry.Start.Format(time.RFC3339))
	fmt.Fprintf(s.out, "  duration: %s\n", formatDuration(entry.DurationSec))

	for {
		if len(suggestion) > 0 {
			fmt.Fprintf(s.out, "  1) apply suggested tags %v\n", suggestion)
		} else {
			fmt.Fprintln(s.out, "  1) apply suggested tags (none configured)")
		}
		fmt.Fprintln(s.out, "  2) enter tags (comma-separated)")
		fmt.Fprintf(s.out, "  3) pick from known tags %v by index\n", known)
		fmt.Fprintln(s.out, "  4) skip")
		fmt.Fprint(s.out, "> ")

		line, ok := s.readLine()
		if !ok {
			return nil // input stream ended, same as skip
		}
		switch line {
		case "1":
			if len(suggestion) == 0 {
				fmt.Fprintln(s.out, "no suggestion available for this project")
				continue
			}
			return suggestion
		case "2":
			fmt.Fprint(s.out, "tags: ")
			raw, ok := s.readLine()
			if !ok {
				return nil
			}
			return splitTags(raw)
		case "3":
			tags, ok, eof := s.pickByIndex(known)
			if eof {
				return nil
			}
			if !ok {
				continue
			}
			return tags
		case "4":
			return nil
		default:
			fmt.Fprintf(s.out, "invalid choice %q\n", line)
		}
	}
}

func (s *Interactive) pickByIndex(known []string) (tags []string, ok, eof bool) {
	if len(known) == 0 {
		fmt.Fprintln(s.out, "no tags configured in the mapping")
		return nil, false, false
	}
	for i, t := range known {
		fmt.Fprintf(s.out, "  %d) %s\n", i+1, t)
	}
	fmt.Fprint(s.out, "indices: ")
	raw, alive := s.readLine()
	if !alive {
		return nil, false, true
	}
	var picked []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 1 || idx > len(known) {
			fmt.Fprintf(s.out, "invalid index %q\n", part)
			return nil, false, false
		}
		picked = append(picked, known[idx-1])
	}
	if len(picked) == 0 {
		return nil, true, false // explicit empty selection, skip
	}
	return picked, true, false
}

func (s *Interactive) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func splitTags(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

func formatDuration(sec int64) string {
	if sec < 0 {
		return "running"
	}
	return (time.Duration(sec) * time.Second).String()
}
