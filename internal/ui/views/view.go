package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"

	"hnstories/internal/domain"
)

// Header is the title shown above the search box
const Header = "My Hacker Stories"

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width          int
	Height         int
	Input          string // rendered search input
	Items          []domain.Story
	Total          int // items before local filtering
	IsLoading      bool
	IsError        bool
	Spinner        string
	SelectedIndex  int
	ViewportOffset int
	ViewportHeight int
	ListFocused    bool
	Highlight      string
	HelpModel      help.Model
	Keys           help.KeyMap
}

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	storyRender *StoryRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:      styles,
		storyRender: NewStoryRenderer(styles),
	}
}

// Styles exposes the renderer styles
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Details renders the pager content for a story
func (r *Renderer) Details(story domain.Story, discussion string) string {
	return r.storyRender.RenderDetails(story, discussion)
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	content.WriteString(r.styles.Title.Render(Header))
	content.WriteString("\n")

	content.WriteString(r.styles.Label.Render("Search: "))
	content.WriteString(state.Input)
	content.WriteString("\n\n")

	if state.IsError {
		content.WriteString(r.styles.StatusError.Render("Something went wrong ..."))
		content.WriteString("\n")
	}

	if state.IsLoading {
		content.WriteString(r.styles.StatusLoading.Render(strings.TrimSpace(state.Spinner + " Loading ...")))
		content.WriteString("\n")
	} else {
		content.WriteString(r.renderList(state))
	}

	if state.Keys != nil {
		content.WriteString(r.styles.Help.Render(state.HelpModel.View(state.Keys)))
	}

	return r.styles.Main.Render(content.String())
}

func (r *Renderer) renderList(state ViewState) string {
	if len(state.Items) == 0 {
		if state.Total > 0 {
			return r.styles.Dim.Render("No stories match the current search.") + "\n"
		}
		return r.styles.Dim.Render("No stories.") + "\n"
	}

	start := state.ViewportOffset
	if start < 0 || start >= len(state.Items) {
		start = 0
	}
	end := len(state.Items)
	if state.ViewportHeight > 0 && start+state.ViewportHeight < end {
		end = start + state.ViewportHeight
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(r.styles.Scroll.Render(fmt.Sprintf("↑ %d more", start)))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		selected := state.ListFocused && i == state.SelectedIndex
		b.WriteString(r.storyRender.RenderStory(state.Items[i], selected, state.Highlight, state.Width-4))
		b.WriteString("\n")
	}
	if end < len(state.Items) {
		b.WriteString(r.styles.Scroll.Render(fmt.Sprintf("↓ %d more", len(state.Items)-end)))
		b.WriteString("\n")
	}
	if state.Total > len(state.Items) {
		b.WriteString(r.styles.Dim.Render(fmt.Sprintf("showing %d of %d", len(state.Items), state.Total)))
	} else {
		b.WriteString(r.styles.Dim.Render(countLabel(len(state.Items))))
	}
	b.WriteString("\n")
	return b.String()
}

func countLabel(n int) string {
	if n == 1 {
		return "1 story"
	}
	return fmt.Sprintf("%d stories", n)
}
