package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/asheshgoplani/opencode-console/internal/session"
)

// List manages session list display
type List struct {
	items  []*session.Handle
	cursor int
	width  int
	height int
}

// NewList creates a new list
func NewList() *List {
	return &List{}
}

// SetItems sets the list items, clamping the cursor.
func (l *List) SetItems(items []*session.Handle) {
	l.items = items
	if l.cursor >= len(items) {
		l.cursor = len(items) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

// Len returns number of items
func (l *List) Len() int {
	return len(l.items)
}

// Selected returns the currently selected item
func (l *List) Selected() *session.Handle {
	if len(l.items) == 0 || l.cursor >= len(l.items) {
		return nil
	}
	return l.items[l.cursor]
}

// MoveUp moves cursor up
func (l *List) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
}

// MoveDown moves cursor down
func (l *List) MoveDown() {
	if l.cursor < len(l.items)-1 {
		l.cursor++
	}
}

// SetSize sets the list dimensions
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// View renders the list
func (l *List) View() string {
	if len(l.items) == 0 {
		return DimStyle.Render("  no sessions (press n to start one)")
	}

	var b strings.Builder
	for i, h := range l.items {
		style := ItemStyle
		prefix := "  "
		if i == l.cursor {
			style = ItemSelectedStyle
			prefix = "▶ "
		}

		label := sessionLabel(h)
		if l.width > 4 {
			label = runewidth.Truncate(label, l.width-4, "...")
		}

		b.WriteString(style.Render(prefix + label + " " + statusIndicator(h.State())))
		b.WriteString("\n")
	}
	return b.String()
}

func sessionLabel(h *session.Handle) string {
	dir := h.Dir
	if dir == "" {
		dir = "~"
	}
	return fmt.Sprintf("%s  %s", dir, DimStyle.Render(h.ID))
}

func statusIndicator(state session.State) string {
	switch state {
	case session.StateRunning:
		return StatusRunning.Render("●")
	case session.StateErrored:
		return StatusErrored.Render("✗")
	case session.StateExited, session.StateDisposed:
		return StatusExited.Render("○")
	default:
		return StatusExited.Render("◌")
	}
}
