package picker

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/bmtag/internal/model"
	"github.com/nikbrunner/bmtag/internal/search"
)

func twoResults() []search.SearchResult {
	return []search.SearchResult{
		{Bookmark: model.BookmarkRecord{Title: "GitHub", URL: "https://github.com", Tags: model.Labels{"代码托管"}}},
		{Bookmark: model.BookmarkRecord{Title: "GitLab", URL: "https://gitlab.com"}},
	}
}

func press(p Picker, msg tea.KeyMsg) (Picker, tea.Cmd) {
	newModel, cmd := p.Update(msg)
	return newModel.(Picker), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_InitialState(t *testing.T) {
	p := New(twoResults(), "git")

	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}
	if len(p.results) != 2 {
		t.Errorf("expected 2 results, got %d", len(p.results))
	}
}

func TestPicker_NavigateDown(t *testing.T) {
	p, _ := press(New(twoResults(), "git"), runes("j"))

	if p.cursor != 1 {
		t.Errorf("expected cursor at 1, got %d", p.cursor)
	}
}

func TestPicker_NavigateUp(t *testing.T) {
	p := New(twoResults(), "git")
	// Move down first
	p.cursor = 1

	p, _ = press(p, runes("k"))

	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}
}

func TestPicker_BoundsCheck(t *testing.T) {
	p := New(twoResults()[:1], "git")

	// Try to go up from 0 (should stay at 0)
	p, _ = press(p, runes("k"))
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}

	// Try to go down from last (should stay at last)
	p, _ = press(p, runes("j"))
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 (only 1 item), got %d", p.cursor)
	}
}

func TestPicker_SelectItem(t *testing.T) {
	p := New(twoResults(), "git")
	p.cursor = 1 // Select GitLab

	p, cmd := press(p, tea.KeyMsg{Type: tea.KeyEnter})

	if !p.selected {
		t.Error("expected selected to be true after Enter")
	}
	// Should return quit command
	if cmd == nil {
		t.Error("expected quit command after selection")
	}
	if got := p.SelectedBookmark(); got == nil || got.URL != "https://gitlab.com" {
		t.Errorf("expected GitLab to be selected, got %+v", got)
	}
}

func TestPicker_Cancel(t *testing.T) {
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}, runes("q")} {
		p, cmd := press(New(twoResults(), "git"), msg)

		if !p.cancelled {
			t.Errorf("expected cancelled to be true after %s", msg)
		}
		if cmd == nil {
			t.Errorf("expected quit command after %s", msg)
		}
		if p.SelectedBookmark() != nil {
			t.Error("expected nil when cancelled")
		}
	}
}

func TestPicker_ArrowKeys(t *testing.T) {
	p := New(twoResults(), "git")

	// Test down arrow
	p, _ = press(p, tea.KeyMsg{Type: tea.KeyDown})
	if p.cursor != 1 {
		t.Errorf("expected cursor at 1 after down arrow, got %d", p.cursor)
	}

	// Test up arrow
	p, _ = press(p, tea.KeyMsg{Type: tea.KeyUp})
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 after up arrow, got %d", p.cursor)
	}
}

func TestPicker_YankURL(t *testing.T) {
	var copied string
	p := New(twoResults(), "git")
	p.copyURL = func(s string) error {
		copied = s
		return nil
	}
	p.cursor = 1

	p, cmd := press(p, runes("y"))

	if cmd != nil {
		t.Error("yank should not quit")
	}
	if copied != "https://gitlab.com" {
		t.Errorf("expected GitLab URL on clipboard, got %q", copied)
	}
	if !strings.Contains(p.View(), "Copied https://gitlab.com") {
		t.Error("expected copy confirmation in view")
	}
}

func TestPicker_YankURLFailure(t *testing.T) {
	p := New(twoResults(), "git")
	p.copyURL = func(string) error { return errors.New("no clipboard utility") }

	p, _ = press(p, runes("y"))

	if !strings.Contains(p.status, "no clipboard utility") {
		t.Errorf("expected failure in status, got %q", p.status)
	}
}

func TestPicker_ViewShowsTag(t *testing.T) {
	view := New(twoResults(), "git").View()

	if !strings.Contains(view, "#代码托管") {
		t.Error("expected first tag in view")
	}
	if !strings.Contains(view, "(2 results)") {
		t.Error("expected result count in header")
	}
}
