package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hnstories/internal/domain"
)

// StoryRenderer handles rendering of story rows
type StoryRenderer struct {
	styles *Styles
}

// NewStoryRenderer creates a new story renderer
func NewStoryRenderer(styles *Styles) *StoryRenderer {
	return &StoryRenderer{styles: styles}
}

// RenderStory renders one row: title, author, comment count and points.
// The part of the title matching highlight is emphasised.
func (r *StoryRenderer) RenderStory(story domain.Story, isSelected bool, highlight string, width int) string {
	cursor := "  "
	if isSelected {
		cursor = "> "
	}

	title := story.Title
	if title == "" {
		title = "(untitled)"
	}
	title = r.highlight(title, highlight)

	pointsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(PointsColor(story.Points)))
	meta := fmt.Sprintf("%s  %s  %s",
		r.styles.Dim.Render("by "+story.Author),
		r.styles.Comments.Render(fmt.Sprintf("%d comments", story.NumComments)),
		pointsStyle.Render(fmt.Sprintf("%d points", story.Points)),
	)

	line := cursor + title + "  " + meta
	if width > 0 && lipgloss.Width(line) > width {
		line = truncate(line, width)
	}
	if isSelected {
		return r.styles.SelectionBg.Render(line)
	}
	return line
}

// RenderDetails renders a story for the pager
func (r *StoryRenderer) RenderDetails(story domain.Story, discussion string) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(story.Title))
	b.WriteString("\n")
	if story.URL != "" {
		b.WriteString(r.styles.Label.Render("URL:        "))
		b.WriteString(r.styles.Link.Render(story.URL))
		b.WriteString("\n")
	}
	if discussion != "" {
		b.WriteString(r.styles.Label.Render("Discussion: "))
		b.WriteString(r.styles.Link.Render(discussion))
		b.WriteString("\n")
	}
	b.WriteString(r.styles.Label.Render("Author:     "))
	b.WriteString(story.Author)
	b.WriteString("\n")
	b.WriteString(r.styles.Label.Render("Comments:   "))
	b.WriteString(fmt.Sprintf("%d", story.NumComments))
	b.WriteString("\n")
	b.WriteString(r.styles.Label.Render("Points:     "))
	b.WriteString(fmt.Sprintf("%d", story.Points))
	b.WriteString("\n")
	b.WriteString(r.styles.Dim.Render("ID " + story.ID))
	b.WriteString("\n")
	return b.String()
}

func (r *StoryRenderer) highlight(title, term string) string {
	if term == "" {
		return title
	}
	lower := strings.ToLower(title)
	if len(lower) != len(title) {
		return title
	}
	idx := strings.Index(lower, strings.ToLower(term))
	if idx < 0 || idx+len(term) > len(title) {
		return title
	}
	end := idx + len(term)
	return title[:idx] + r.styles.Highlight.Render(title[idx:end]) + title[end:]
}

// truncate cuts s to width cells, ignoring styling
func truncate(s string, width int) string {
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
