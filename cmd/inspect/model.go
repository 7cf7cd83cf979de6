// Package main implements a Bubbletea TUI that drives the engine's
// introspection surface: a list of registered derived functions, the
// cached argument keys for a selected one, and the dependency listing
// and two timestamps for a selected entry.
package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lanewayhq/laneway/engine"
)

// pane identifies which column of the three-pane layout currently has
// keyboard focus.
type pane int

const (
	paneDerived pane = iota
	paneKeys
	paneDetail
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Right  key.Binding
	Left   key.Binding
	Refresh key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l", "enter"),
		key.WithHelp("→/enter", "drill in"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h", "esc"),
		key.WithHelp("←/esc", "back"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	paneStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			PaddingRight(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

// model is the TUI's Elm-architecture state: a read-only view over an
// *engine.Database, re-polled on demand rather than held live, since the
// introspection surface makes no promise of push notification.
type model struct {
	db *engine.Database

	derivedIds    []engine.DerivedId
	selectedDerived int

	keys            []any
	selectedKey     int

	focus pane
	quitting bool
}

func newModel(db *engine.Database) model {
	m := model{db: db, focus: paneDerived}
	m.refresh()
	return m
}

func (m *model) refresh() {
	m.derivedIds = m.db.DerivedIds()
	if m.selectedDerived >= len(m.derivedIds) {
		m.selectedDerived = 0
	}
	m.refreshKeys()
}

func (m *model) refreshKeys() {
	if len(m.derivedIds) == 0 {
		m.keys = nil
		return
	}
	m.keys = m.db.Keys(m.derivedIds[m.selectedDerived])
	if m.selectedKey >= len(m.keys) {
		m.selectedKey = 0
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Refresh):
		m.refresh()
	case key.Matches(keyMsg, keys.Right):
		if m.focus < paneDetail {
			m.focus++
		}
	case key.Matches(keyMsg, keys.Left):
		if m.focus > paneDerived {
			m.focus--
		}
	case key.Matches(keyMsg, keys.Up):
		m.moveSelection(-1)
	case key.Matches(keyMsg, keys.Down):
		m.moveSelection(1)
	}

	return m, nil
}

func (m *model) moveSelection(delta int) {
	switch m.focus {
	case paneDerived:
		if len(m.derivedIds) == 0 {
			return
		}
		m.selectedDerived = clamp(m.selectedDerived+delta, 0, len(m.derivedIds)-1)
		m.selectedKey = 0
		m.refreshKeys()
	case paneKeys:
		if len(m.keys) == 0 {
			return
		}
		m.selectedKey = clamp(m.selectedKey+delta, 0, len(m.keys)-1)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("laneway inspect — revision %d", m.db.Revision())))
	b.WriteString("\n\n")

	b.WriteString(paneStyle.Render(m.renderDerivedPane()))
	b.WriteString(paneStyle.Render(m.renderKeysPane()))
	b.WriteString(paneStyle.Render(m.renderDetailPane()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move · →/←/enter/esc drill · r refresh · q quit"))
	return b.String()
}

func (m model) renderDerivedPane() string {
	var b strings.Builder
	b.WriteString("Derived\n")
	for i, id := range m.derivedIds {
		line := id.String()
		if i == m.selectedDerived && m.focus == paneDerived {
			line = selectedStyle.Render("> " + line)
		} else if i == m.selectedDerived {
			line = "> " + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	if len(m.derivedIds) == 0 {
		b.WriteString(dimStyle.Render("  (none registered)\n"))
	}
	return b.String()
}

func (m model) renderKeysPane() string {
	var b strings.Builder
	b.WriteString("Keys\n")
	for i, k := range m.keys {
		line := fmt.Sprintf("%v", k)
		if i == m.selectedKey && m.focus == paneKeys {
			line = selectedStyle.Render("> " + line)
		} else if i == m.selectedKey {
			line = "> " + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	if len(m.keys) == 0 {
		b.WriteString(dimStyle.Render("  (no cached keys)\n"))
	}
	return b.String()
}

func (m model) renderDetailPane() string {
	var b strings.Builder
	b.WriteString("Entry\n")
	if len(m.derivedIds) == 0 || len(m.keys) == 0 {
		b.WriteString(dimStyle.Render("  (nothing selected)\n"))
		return b.String()
	}

	snap, ok := m.db.Dependencies(m.derivedIds[m.selectedDerived], m.keys[m.selectedKey])
	if !ok {
		b.WriteString(dimStyle.Render("  (entry no longer cached)\n"))
		return b.String()
	}

	fmt.Fprintf(&b, "  value:       %v\n", snap.Value)
	fmt.Fprintf(&b, "  changed_at:  %d\n", snap.ChangedAt)
	fmt.Fprintf(&b, "  verified_at: %d\n", snap.VerifiedAt)
	b.WriteString("  dependencies:\n")
	for _, dep := range snap.Dependencies {
		fmt.Fprintf(&b, "    - %s\n", dep)
	}
	if len(snap.Dependencies) == 0 {
		b.WriteString(dimStyle.Render("    (none)\n"))
	}
	return b.String()
}
