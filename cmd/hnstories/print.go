package main

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"hnstories/internal/domain"
)

// renderStories writes stories as a plain table
func renderStories(w io.Writer, items []domain.Story) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false

	t.AppendHeader(table.Row{"ID", "Title", "Author", "Comments", "Points", "URL"})
	for _, s := range items {
		t.AppendRow(table.Row{
			s.ID,
			s.Title,
			s.Author,
			strconv.Itoa(s.NumComments),
			strconv.Itoa(s.Points),
			s.URL,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	t.Render()
}
