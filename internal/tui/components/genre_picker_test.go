package components

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/domain"
)

func testGenres() []domain.Genre {
	names := []string{"Action", "Comedy", "Drama", "Comédie musicale", "Western"}
	genres := make([]domain.Genre, len(names))
	for i, n := range names {
		genres[i] = domain.Genre{ID: n, Name: n}
	}
	return genres
}

func typeKeys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGenrePicker_OpensOnActiveGenre(t *testing.T) {
	p := NewGenrePicker()
	p.Show(testGenres(), "drama")

	if !p.IsVisible() {
		t.Fatal("picker should be visible")
	}
	g, ok := p.Selected()
	if !ok || g.Name != "Drama" {
		t.Fatalf("selected = %+v, want Drama", g)
	}
	if out := p.View(); !strings.Contains(out, "✓") || !strings.Contains(out, "Western") {
		t.Fatalf("view:\n%s", out)
	}
}

func TestGenrePicker_FilterAndSelect(t *testing.T) {
	p := NewGenrePicker()
	p.Show(testGenres(), "")

	p.HandleKey(typeKeys("com"))
	if p.Query() != "com" {
		t.Fatalf("query = %q", p.Query())
	}
	if p.MatchCount() != 2 {
		t.Fatalf("matches for com = %d, want 2", p.MatchCount())
	}

	p.HandleKey(typeKeys("edy"))
	if p.MatchCount() != 1 {
		t.Fatalf("matches for comedy = %d, want 1", p.MatchCount())
	}

	handled, sel, _ := p.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if !handled || sel == nil || sel.Name != "Comedy" {
		t.Fatalf("enter = %v %+v", handled, sel)
	}
	if p.IsVisible() {
		t.Fatal("selection should close the picker")
	}
}

func TestGenrePicker_NoMatch(t *testing.T) {
	p := NewGenrePicker()
	p.Show(testGenres(), "")

	p.HandleKey(typeKeys("zzz"))
	if p.MatchCount() != 0 {
		t.Fatalf("matches = %d", p.MatchCount())
	}
	if _, sel, _ := p.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}); sel != nil {
		t.Fatalf("enter with no match selected %+v", sel)
	}
	if !p.IsVisible() {
		t.Fatal("picker should stay open without a selection")
	}
	if out := p.View(); !strings.Contains(out, "No matching genre") {
		t.Fatalf("view:\n%s", out)
	}

	p.HandleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if p.IsVisible() {
		t.Fatal("esc should close the picker")
	}
	if handled, _, _ := p.HandleKey(typeKeys("a")); handled {
		t.Fatal("hidden picker should not consume keys")
	}
}

func TestGenrePicker_Navigation(t *testing.T) {
	p := NewGenrePicker()
	p.Show(testGenres(), "")

	p.HandleKey(tea.KeyMsg{Type: tea.KeyUp})
	if g, _ := p.Selected(); g.Name != "Action" {
		t.Fatalf("up at top moved to %q", g.Name)
	}
	for range 10 {
		p.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	}
	if g, _ := p.Selected(); g.Name != "Western" {
		t.Fatalf("down past the end selected %q", g.Name)
	}
}

func TestGenrePicker_LoadingAndError(t *testing.T) {
	p := NewGenrePicker()
	p.Show(nil, "")
	if out := p.View(); !strings.Contains(out, "Loading genres") {
		t.Fatalf("loading view:\n%s", out)
	}

	p.SetGenres(testGenres()[:2])
	p.SetError(errors.New("page 2: 503"))
	out := p.View()
	if !strings.Contains(out, "Comedy") || !strings.Contains(out, "Genre list incomplete") {
		t.Fatalf("partial view:\n%s", out)
	}
}
