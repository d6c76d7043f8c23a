package service

import (
	"slices"
	"strings"

	"github.com/knowledgeboard/knowledge-server/internal/domain"
)

// Filters narrows a knowledge list. Zero values match everything.
type Filters struct {
	// SearchWord is matched case-insensitively against title, body and
	// primary URL. Surrounding whitespace is trimmed first, so " go" matches
	// like "go" and a blank word matches everything.
	SearchWord string
	// TagNames keeps records carrying any of the names (exact match).
	TagNames []string
}

// IsZero reports whether f matches every record.
func (f Filters) IsZero() bool {
	return strings.TrimSpace(f.SearchWord) == "" && len(f.tagNames()) == 0
}

func (f Filters) tagNames() []string {
	names := make([]string, 0, len(f.TagNames))
	for _, n := range f.TagNames {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// ApplyFilters returns the records of list matching f, in list order.
// list itself is left untouched.
func ApplyFilters(list []domain.Knowledge, f Filters) []domain.Knowledge {
	word := strings.ToLower(strings.TrimSpace(f.SearchWord))
	tags := f.tagNames()

	out := make([]domain.Knowledge, 0, len(list))
	for _, k := range list {
		if word != "" && !matchesWord(k, word) {
			continue
		}
		if len(tags) > 0 && !slices.ContainsFunc(k.Tags, func(t string) bool { return slices.Contains(tags, t) }) {
			continue
		}
		out = append(out, k)
	}
	return out
}

func matchesWord(k domain.Knowledge, word string) bool {
	return strings.Contains(strings.ToLower(k.Title), word) ||
		strings.Contains(strings.ToLower(k.Comment), word) ||
		strings.Contains(strings.ToLower(k.URL), word)
}
