package stories

import (
	"strings"

	"hnstories/internal/domain"
)

// FilterByTitle returns the stories whose title contains term, ignoring
// case. An empty term matches everything. The input is not modified.
func FilterByTitle(items []domain.Story, term string) []domain.Story {
	if term == "" {
		return items
	}
	needle := strings.ToLower(term)
	out := make([]domain.Story, 0, len(items))
	for _, s := range items {
		if strings.Contains(strings.ToLower(s.Title), needle) {
			out = append(out, s)
		}
	}
	return out
}
