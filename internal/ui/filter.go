package ui

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/asheshgoplani/opencode-console/internal/session"
)

// handleSource implements fuzzy.Source over session handles.
type handleSource struct {
	items []*session.Handle
}

func (s handleSource) String(i int) string {
	return s.items[i].Dir + " " + s.items[i].ID
}

func (s handleSource) Len() int {
	return len(s.items)
}

// filterHandles narrows items to fuzzy matches for query, best match first.
// An empty query returns items unchanged.
func filterHandles(items []*session.Handle, query string) []*session.Handle {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	matches := fuzzy.FindFrom(query, handleSource{items: items})
	results := make([]*session.Handle, 0, len(matches))
	for _, m := range matches {
		results = append(results, items[m.Index])
	}
	return results
}
