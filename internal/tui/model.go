// Package tui renders the extension list in a terminal with bubbletea.
//
// The bubbletea Update loop is single-threaded, so the model drives the
// controller directly.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/extdeck/internal/controller"
	"github.com/starford/extdeck/internal/models"
	"github.com/starford/extdeck/internal/source"
	"github.com/starford/extdeck/internal/view"
)

type loadedMsg struct {
	records []models.Extension
	err     error
}

// Model is the bubbletea model for the extension list.
type Model struct {
	ctrl    *controller.Controller
	fetcher source.Fetcher

	keys   keyMap
	help   help.Model
	cursor int
	// pending is the remove action awaiting y/n.
	pending *view.Action
	status  string
}

// New creates a model that loads its records from fetcher on start.
func New(ctrl *controller.Controller, fetcher source.Fetcher) *Model {
	return &Model{
		ctrl:    ctrl,
		fetcher: fetcher,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
}

// Init starts the initial fetch.
func (m *Model) Init() tea.Cmd {
	return m.load
}

func (m *Model) load() tea.Msg {
	records, err := m.fetcher.Fetch(context.Background())
	return loadedMsg{records: records, err: err}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.ctrl.Fail(msg.err)
		} else {
			m.ctrl.Load(msg.records)
		}
		m.cursor = 0
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.pending != nil {
			return m, m.answer(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.all):
		m.selectFilter(models.FilterAll)
	case key.Matches(msg, m.keys.active):
		m.selectFilter(models.FilterActive)
	case key.Matches(msg, m.keys.inactive):
		m.selectFilter(models.FilterInactive)
	case key.Matches(msg, m.keys.next):
		if _, err := m.ctrl.NextFilter(); err != nil {
			m.status = err.Error()
		}
		m.cursor = 0
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(m.cards())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.toggle):
		if card, ok := m.selected(); ok {
			m.dispatch(card.Toggle, nil)
		}
	case key.Matches(msg, m.keys.remove):
		if card, ok := m.selected(); ok {
			action := card.Remove
			m.pending = &action
		}
	}
	return nil
}

func (m *Model) answer(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.dispatch(*m.pending, controller.Confirmed)
	case key.Matches(msg, m.keys.no):
		m.dispatch(*m.pending, controller.Declined)
	case msg.String() == "ctrl+c":
		return tea.Quit
	default:
		return nil
	}
	m.pending = nil
	return nil
}

func (m *Model) selectFilter(mode models.Filter) {
	if _, err := m.ctrl.Select(mode); err != nil {
		m.status = err.Error()
		return
	}
	m.cursor = 0
}

func (m *Model) dispatch(a view.Action, confirm controller.ConfirmFunc) {
	if err := m.ctrl.Dispatch(a, confirm); err != nil {
		m.status = err.Error()
	}
	m.clamp()
}

func (m *Model) cards() []view.Card {
	return m.ctrl.Page().Content.Cards
}

func (m *Model) selected() (view.Card, bool) {
	cards := m.cards()
	if m.cursor < 0 || m.cursor >= len(cards) {
		return view.Card{}, false
	}
	return cards[m.cursor], true
}

// clamp keeps the cursor on a visible card after the list shrank.
func (m *Model) clamp() {
	if n := len(m.cards()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// View renders the screen.
func (m *Model) View() string {
	page := m.ctrl.Page()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Extensions List"))
	b.WriteString("\n")

	if len(page.Filters) > 0 {
		tabs := make([]string, 0, len(page.Filters))
		for _, f := range page.Filters {
			if f.Active {
				tabs = append(tabs, filterActiveStyle.Render(f.Label))
			} else {
				tabs = append(tabs, filterStyle.Render(f.Label))
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
		b.WriteString("\n\n")
	}

	if page.Content.Empty() {
		style := placeholderStyle
		if page.Failed {
			style = errorStyle
		}
		b.WriteString(style.Render(page.Content.Placeholder))
		b.WriteString("\n")
	}
	for i, card := range page.Content.Cards {
		b.WriteString(renderCard(card, i == m.cursor))
		b.WriteString("\n")
	}

	if m.pending != nil {
		b.WriteString("\n")
		b.WriteString(promptStyle.Render(m.pending.Confirm + " (y/n)"))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.pending != nil {
		b.WriteString(m.help.View(confirmKeys{m.keys}))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func renderCard(c view.Card, selected bool) string {
	pointer := "  "
	if selected {
		pointer = cursorStyle.Render("> ")
	}
	state := offStyle.Render("○ Inactive")
	if c.Active {
		state = onStyle.Render("● Active")
	}
	return pointer + nameStyle.Render(c.Name) + "  " + state + "\n    " + descStyle.Render(c.Description)
}
