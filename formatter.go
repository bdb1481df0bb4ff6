package spyder

import (
	"fmt"
	"strings"
)

// FormatSources returns a numbered list of the distinct sources in results,
// in first-seen order.
func FormatSources(results []SearchResult) string {
	var b strings.Builder
	seen := make(map[string]bool, len(results))
	n := 0
	for _, r := range results {
		if seen[r.Entry.Source] {
			continue
		}
		seen[r.Entry.Source] = true
		n++
		if r.Entry.Title != "" && r.Entry.Title != r.Entry.Source {
			fmt.Fprintf(&b, "[%d] %s (%s)\n", n, r.Entry.Title, r.Entry.Source)
		} else {
			fmt.Fprintf(&b, "[%d] %s\n", n, r.Entry.Source)
		}
	}
	return b.String()
}

func entryLabel(e *Entry) string {
	if e.Title != "" {
		return e.Title
	}
	return e.Source
}
