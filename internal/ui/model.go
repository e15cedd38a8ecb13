package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"hnstories/internal/domain"
	"hnstories/internal/eventbus"
	"hnstories/internal/hn"
	"hnstories/internal/logger"
	"hnstories/internal/stories"
	"hnstories/internal/ui/views"
)

// rows taken by everything except the story list
const reservedLines = 11

// QueryState is the search term the model edits and submits
type QueryState interface {
	Draft() string
	Committed() domain.Query
	SetDraft(ctx context.Context, term string) error
	Submit() domain.Query
}

// StoriesStore is read for rendering and receives dismissals
type StoriesStore interface {
	State() domain.StoriesState
	Dispatch(action stories.Action)
}

// Options tunes the model
type Options struct {
	// LocalFilter narrows the shown list by the draft term while it
	// differs from the submitted one.
	LocalFilter bool
}

// Model represents the UI state
type Model struct {
	query    QueryState
	store    StoriesStore
	log      logger.Logger
	opts     Options
	ctx      context.Context
	renderer *views.Renderer

	state   domain.StoriesState
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	width          int
	height         int
	selected       int
	viewportOffset int
	viewportHeight int
	listFocused    bool
	paused         bool

	// Program reference for terminal management
	program *tea.Program
	pager   Pager
}

// NewModel creates a new UI model
func NewModel(query QueryState, store StoriesStore, log logger.Logger, opts Options) *Model {
	if log == nil {
		log = logger.NewNop()
	}

	input := textinput.New()
	input.Placeholder = "search stories"
	input.CharLimit = 256
	input.SetValue(query.Draft())
	input.Focus()

	return &Model{
		query:          query,
		store:          store,
		log:            log,
		opts:           opts,
		ctx:            context.Background(),
		renderer:       views.NewRenderer(),
		state:          store.State(),
		input:          input,
		spinner:        spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:           help.New(),
		keys:           newKeyMap(),
		viewportHeight: 20, // Will be updated on first WindowSizeMsg
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	if m.pager == nil {
		m.pager = NewPagerOps(p)
	}
}

// SetPager replaces the pager used for story details
func (m *Model) SetPager(p Pager) {
	m.pager = p
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.state.IsLoading {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 16
		m.updateViewportHeight()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		return m.handleEvent(msg.Event)

	case spinner.TickMsg:
		if !m.state.IsLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pagerMsg:
		if msg.err != nil {
			m.log.Warn("Pager failed", logger.String("story", msg.storyID), logger.Error(msg.err))
		}
		return m, nil

	case pauseRenderingMsg:
		m.paused = true
		return m, nil

	case resumeRenderingMsg:
		m.paused = false
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the UI
func (m *Model) View() string {
	if m.paused {
		return ""
	}

	items := m.visible()
	state := views.ViewState{
		Width:          m.width,
		Height:         m.height,
		Input:          m.input.View(),
		Items:          items,
		Total:          len(m.state.Items),
		IsLoading:      m.state.IsLoading,
		IsError:        m.state.IsError,
		Spinner:        m.spinner.View(),
		SelectedIndex:  m.selected,
		ViewportOffset: m.viewportOffset,
		ViewportHeight: m.viewportHeight,
		ListFocused:    m.listFocused,
		Highlight:      m.filterTerm(),
		HelpModel:      m.help,
		Keys:           m.keys,
	}
	return m.renderer.Render(state)
}

// State returns the stories state the model last rendered
func (m *Model) State() domain.StoriesState {
	return m.state
}

// Selected returns the story under the cursor
func (m *Model) Selected() (domain.Story, bool) {
	items := m.visible()
	if m.selected < 0 || m.selected >= len(items) {
		return domain.Story{}, false
	}
	return items[m.selected], true
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		m.submit()
		return m, m.loadingCmd(false)
	case key.Matches(msg, m.keys.Focus):
		return m, m.toggleFocus()
	}

	if !m.listFocused {
		return m.updateInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Dismiss):
		m.dismiss()
	case key.Matches(msg, m.keys.Open):
		return m, m.openSelected()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.input.Value()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if after := m.input.Value(); after != before {
		// a failed save is logged; typing carries on
		if err := m.query.SetDraft(m.ctx, after); err != nil {
			m.log.Warn("Failed to persist search term", logger.Error(err))
		}
		m.clampSelection()
	}
	return m, cmd
}

func (m *Model) handleEvent(event eventbus.DomainEvent) (tea.Model, tea.Cmd) {
	switch e := event.(type) {
	case eventbus.StoriesChangedEvent:
		wasLoading := m.state.IsLoading
		m.setState(e.State)
		return m, m.loadingCmd(wasLoading)
	case eventbus.FetchDiscardedEvent:
		m.log.Debug("Stale response dropped", logger.Uint64("seq", e.Query.Seq), logger.Uint64("latest", e.Latest))
	}
	return m, nil
}

// loadingCmd starts the spinner when a load has just begun
func (m *Model) loadingCmd(wasLoading bool) tea.Cmd {
	if m.state.IsLoading && !wasLoading {
		return m.spinner.Tick
	}
	return nil
}

func (m *Model) submit() {
	q := m.query.Submit()
	m.log.Debug("Search submitted", logger.String("term", q.Term), logger.Uint64("seq", q.Seq))
	m.selected = 0
	m.viewportOffset = 0
	m.setState(m.store.State())
}

func (m *Model) toggleFocus() tea.Cmd {
	m.listFocused = !m.listFocused
	if m.listFocused {
		m.input.Blur()
		return nil
	}
	return m.input.Focus()
}

func (m *Model) dismiss() {
	story, ok := m.Selected()
	if !ok {
		return
	}
	m.store.Dispatch(stories.RemoveItem{ID: story.ID})
	m.setState(m.store.State())
}

// openSelected returns a command that shows the selected story using the pager
func (m *Model) openSelected() tea.Cmd {
	story, ok := m.Selected()
	if !ok {
		return nil
	}
	content := m.renderer.Details(story, hn.StoryURL(story.ID))
	program, pager := m.program, m.pager

	return func() tea.Msg {
		if pager == nil {
			return pagerMsg{storyID: story.ID, err: errNoProgram}
		}
		if program != nil {
			program.Send(pauseRenderingMsg{})
		}

		err := pager.Show(content)

		if program != nil {
			program.Send(resumeRenderingMsg{})
		}
		return pagerMsg{storyID: story.ID, err: err}
	}
}

func (m *Model) setState(state domain.StoriesState) {
	m.state = state
	m.clampSelection()
}

// visible returns the items currently shown
func (m *Model) visible() []domain.Story {
	return stories.FilterByTitle(m.state.Items, m.filterTerm())
}

func (m *Model) filterTerm() string {
	if !m.opts.LocalFilter {
		return ""
	}
	draft := m.input.Value()
	if draft == m.query.Committed().Term {
		return ""
	}
	return draft
}

func (m *Model) moveSelection(delta int) {
	m.selected += delta
	m.clampSelection()
}

func (m *Model) clampSelection() {
	n := len(m.visible())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.ensureSelectedVisible()
}

// updateViewportHeight calculates the available height for the story list
func (m *Model) updateViewportHeight() {
	m.viewportHeight = m.height - reservedLines
	if m.viewportHeight < 1 {
		m.viewportHeight = 1
	}
	m.ensureSelectedVisible()
}

func (m *Model) ensureSelectedVisible() {
	if m.selected < m.viewportOffset {
		m.viewportOffset = m.selected
	} else if m.selected >= m.viewportOffset+m.viewportHeight {
		m.viewportOffset = m.selected - m.viewportHeight + 1
	}
	if m.viewportOffset < 0 {
		m.viewportOffset = 0
	}
}
