package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/asheshgoplani/opencode-console/internal/clipboard"
	"github.com/asheshgoplani/opencode-console/internal/session"
)

// tickInterval drives session state refreshes in the list.
const tickInterval = time.Second

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type mode int

const (
	modeList mode = iota
	modeFilter
	modeNew
)

// Model is the home screen: the list of sessions plus filter and
// new-session inputs.
type Model struct {
	manager *session.Manager
	list    *List

	filterInput textinput.Model
	newInput    textinput.Model
	mode        mode

	width  int
	height int

	statusMsg string
	errMsg    string

	// AttachID is set when the user picks a session to attach; the program
	// quits and the caller takes over the terminal in raw mode.
	AttachID string
	Quitting bool
}

// NewModel creates the home screen bound to manager.
func NewModel(manager *session.Manager) *Model {
	filter := textinput.New()
	filter.Placeholder = "Filter sessions..."
	filter.CharLimit = 100
	filter.Width = 40

	newIn := textinput.New()
	newIn.Placeholder = "Working directory (empty = current)"
	newIn.CharLimit = 256
	newIn.Width = 50

	m := &Model{
		manager:     manager,
		list:        NewList(),
		filterInput: filter,
		newInput:    newIn,
	}
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) refresh() {
	m.list.SetItems(filterHandles(m.manager.List(), m.filterInput.Value()))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case tea.KeyMsg:
		switch m.mode {
		case modeFilter:
			return m.updateFilter(msg)
		case modeNew:
			return m.updateNew(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""

	switch msg.String() {
	case "q", "ctrl+c":
		m.Quitting = true
		return m, tea.Quit

	case "up", "k":
		m.list.MoveUp()

	case "down", "j":
		m.list.MoveDown()

	case "/":
		m.mode = modeFilter
		m.filterInput.Focus()

	case "n":
		m.mode = modeNew
		m.newInput.SetValue("")
		m.newInput.Focus()

	case "enter":
		if h := m.list.Selected(); h != nil {
			m.AttachID = h.ID
			return m, tea.Quit
		}

	case "x":
		if h := m.list.Selected(); h != nil {
			m.manager.Remove(h.ID)
			m.refresh()
			m.statusMsg = "session closed"
		}

	case "c":
		if h := m.list.Selected(); h != nil {
			if result, err := clipboard.Copy(h.Dir, false); err != nil {
				m.errMsg = fmt.Sprintf("copy failed: %v", err)
			} else {
				m.statusMsg = fmt.Sprintf("copied via %s", result.Method)
			}
		}
	}

	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterInput.SetValue("")
		m.filterInput.Blur()
		m.mode = modeList
		m.refresh()
		return m, nil
	case tea.KeyEnter:
		m.filterInput.Blur()
		m.mode = modeList
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.refresh()
	return m, cmd
}

func (m *Model) updateNew(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.newInput.Blur()
		m.mode = modeList
		return m, nil
	case tea.KeyEnter:
		dir := strings.TrimSpace(m.newInput.Value())
		if dir == "" {
			dir, _ = os.Getwd()
		} else {
			dir = session.ExpandPath(dir)
		}
		m.newInput.Blur()
		m.mode = modeList

		handle, err := m.manager.Spawn(context.Background(), dir, m.width, m.height-1)
		if err != nil {
			m.errMsg = fmt.Sprintf("spawn failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.AttachID = handle.ID
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.newInput, cmd = m.newInput.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("OpenCode Console"))
	b.WriteString("\n\n")
	b.WriteString(m.list.View())
	b.WriteString("\n")

	switch m.mode {
	case modeFilter:
		b.WriteString(InputBoxStyle.Render(m.filterInput.View()))
		b.WriteString("\n")
	case modeNew:
		b.WriteString(InputBoxStyle.Render(m.newInput.View()))
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString(ErrorStyle.Render(m.errMsg))
		b.WriteString("\n")
	} else if m.statusMsg != "" {
		b.WriteString(DimStyle.Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("n new · enter attach · x close · / filter · c copy dir · q quit"))
	return b.String()
}
