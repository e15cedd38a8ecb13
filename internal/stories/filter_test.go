package stories

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hnstories/internal/domain"
)

func TestFilterByTitle(t *testing.T) {
	items := []domain.Story{
		{ID: "1", Title: "Golang 1.24 released"},
		{ID: "2", Title: "Rust in the kernel"},
		{ID: "3", Title: "Why I moved to GOLANG"},
	}

	tests := []struct {
		name string
		term string
		want []string
	}{
		{name: "empty term matches all", term: "", want: []string{"1", "2", "3"}},
		{name: "case insensitive", term: "golang", want: []string{"1", "3"}},
		{name: "no match", term: "haskell", want: []string{}},
		{name: "substring", term: "ker", want: []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByTitle(items, tt.term)
			ids := []string{}
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
	assert.Len(t, items, 3)
}
