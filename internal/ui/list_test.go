package ui

import (
	"strings"
	"testing"

	"github.com/asheshgoplani/opencode-console/internal/session"
)

func testHandles(dirs ...string) []*session.Handle {
	handles := make([]*session.Handle, 0, len(dirs))
	for i, dir := range dirs {
		handles = append(handles, &session.Handle{
			Session: &session.Session{ID: string(rune('a'+i)) + "-id", Dir: dir},
		})
	}
	return handles
}

func TestNewList(t *testing.T) {
	l := NewList()
	if l.Len() != 0 {
		t.Errorf("expected empty list, got %d items", l.Len())
	}
	if l.Selected() != nil {
		t.Error("Selected on empty list should be nil")
	}
}

func TestListCursorMovement(t *testing.T) {
	l := NewList()
	l.SetItems(testHandles("/tmp/one", "/tmp/two", "/tmp/three"))

	l.MoveUp()
	if l.Selected().Dir != "/tmp/one" {
		t.Error("MoveUp at top should stay at first item")
	}

	l.MoveDown()
	l.MoveDown()
	if l.Selected().Dir != "/tmp/three" {
		t.Errorf("expected cursor on third item, got %s", l.Selected().Dir)
	}

	l.MoveDown()
	if l.Selected().Dir != "/tmp/three" {
		t.Error("MoveDown at bottom should stay at last item")
	}
}

func TestListCursorClampedOnShrink(t *testing.T) {
	l := NewList()
	l.SetItems(testHandles("/tmp/one", "/tmp/two", "/tmp/three"))
	l.MoveDown()
	l.MoveDown()

	l.SetItems(testHandles("/tmp/one"))
	if l.Selected() == nil || l.Selected().Dir != "/tmp/one" {
		t.Error("cursor should clamp to remaining items")
	}

	l.SetItems(nil)
	if l.Selected() != nil {
		t.Error("Selected should be nil after clearing items")
	}
}

func TestListViewEmpty(t *testing.T) {
	l := NewList()
	if !strings.Contains(l.View(), "no sessions") {
		t.Errorf("expected empty-state hint, got: %s", l.View())
	}
}

func TestListViewShowsItems(t *testing.T) {
	l := NewList()
	l.SetSize(120, 20)
	l.SetItems(testHandles("/tmp/project"))

	view := l.View()
	if !strings.Contains(view, "/tmp/project") {
		t.Errorf("expected session dir in view, got: %s", view)
	}
}
