package components

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/rail"
)

func movies(n int) []domain.MovieSummary {
	items := make([]domain.MovieSummary, n)
	for i := range items {
		items[i] = domain.MovieSummary{ID: fmt.Sprint(i + 1), Title: fmt.Sprintf("Movie %d", i+1), Year: 2000 + i, Score: 7.5}
	}
	return items
}

func loadedView(n int) rail.View {
	return rail.View{
		ID:          "top-rated",
		Title:       "Top rated",
		State:       rail.StateLoaded,
		Items:       movies(n),
		CanShowMore: true,
	}
}

func TestRailRow_CursorStaysInRange(t *testing.T) {
	r := NewRailRow(loadedView(5), DefaultCardWidth, false)
	r.SetSize(80)

	r.MoveLeft()
	if r.Cursor() != 0 {
		t.Fatalf("cursor = %d after MoveLeft at start", r.Cursor())
	}
	for range 10 {
		r.MoveRight()
	}
	if r.Cursor() != 4 {
		t.Fatalf("cursor = %d, want 4", r.Cursor())
	}
	if m, ok := r.Selected(); !ok || m.ID != "5" {
		t.Fatalf("selected = %+v %v", m, ok)
	}

	// shrinking the rail pulls the cursor back
	r.SetView(loadedView(2))
	if r.Cursor() != 1 {
		t.Fatalf("cursor = %d after shrink, want 1", r.Cursor())
	}

	r.ResetCursor()
	r.MoveEnd()
	if r.Cursor() != 1 {
		t.Fatalf("MoveEnd cursor = %d", r.Cursor())
	}

	r.SetView(rail.View{ID: "top-rated", State: rail.StateLoading})
	if _, ok := r.Selected(); ok {
		t.Fatal("empty rail should have no selection")
	}
}

func TestRailRow_PerLine(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{width: 10, want: 1},
		{width: 80, want: 3},
		{width: 135, want: 5},
	}
	for _, tt := range tests {
		r := NewRailRow(loadedView(1), DefaultCardWidth, false)
		r.SetSize(tt.width)
		if got := r.PerLine(); got != tt.want {
			t.Errorf("PerLine(width=%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestRailRow_TitleHints(t *testing.T) {
	tests := []struct {
		name string
		view rail.View
		want []string
	}{
		{
			name: "more available",
			view: loadedView(2),
			want: []string{"Top rated", "1/2", "m more"},
		},
		{
			name: "exhausted",
			view: func() rail.View {
				v := loadedView(2)
				v.CanShowMore = false
				v.Cursor = domain.Cursor{NextPage: 3, Exhausted: true}
				return v
			}(),
			want: []string{"end"},
		},
		{
			name: "partial",
			view: func() rail.View {
				v := loadedView(2)
				v.CanShowMore = false
				v.Err = errors.New("page 2 timed out")
				return v
			}(),
			want: []string{"partial: page 2 timed out"},
		},
		{
			name: "failed",
			view: rail.View{ID: "top-rated", Title: "Top rated", State: rail.StateFailed, Err: errors.New("offline")},
			want: []string{"unavailable: offline"},
		},
		{
			name: "empty",
			view: rail.View{ID: "top-rated", Title: "Top rated", State: rail.StateLoaded},
			want: []string{"no movies with a loadable poster"},
		},
		{
			name: "loading",
			view: rail.View{ID: "top-rated", Title: "Top rated", State: rail.StateLoading},
			want: []string{"loading..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRailRow(tt.view, DefaultCardWidth, false)
			r.SetSize(200)
			out := r.View()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Fatalf("view missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestRailRow_CustomTitleShowsGenre(t *testing.T) {
	v := loadedView(1)
	v.ID = "custom"
	v.Title = "Browse by genre"
	v.Query = domain.Query{Genre: "Drama"}

	r := NewRailRow(v, DefaultCardWidth, true)
	r.SetSize(200)
	if !r.IsCustom() {
		t.Fatal("row should be custom")
	}
	if out := r.View(); !strings.Contains(out, "Browse by genre: Drama") {
		t.Fatalf("custom title missing genre:\n%s", out)
	}
}

func TestRailRow_ExpandShowsEveryItem(t *testing.T) {
	r := NewRailRow(loadedView(7), DefaultCardWidth, false)
	r.SetSize(80)

	collapsed := r.View()
	if strings.Contains(collapsed, "Movie 7") {
		t.Fatalf("collapsed strip should only show %d cards:\n%s", r.PerLine(), collapsed)
	}
	if !strings.Contains(collapsed, "e all") {
		t.Fatalf("collapsed view should offer expand:\n%s", collapsed)
	}

	r.ToggleExpanded()
	expanded := r.View()
	for i := 1; i <= 7; i++ {
		if !strings.Contains(expanded, fmt.Sprintf("Movie %d", i)) {
			t.Fatalf("expanded view missing Movie %d:\n%s", i, expanded)
		}
	}
	if !strings.Contains(expanded, "e less") {
		t.Fatalf("expanded view should offer collapse:\n%s", expanded)
	}
}

func TestRailRow_ScrollFollowsCursor(t *testing.T) {
	r := NewRailRow(loadedView(7), DefaultCardWidth, false)
	r.SetSize(80)
	r.SetFocused(true)

	for range 6 {
		r.MoveRight()
	}
	out := r.View()
	if !strings.Contains(out, "Movie 7") || strings.Contains(out, "Movie 1 ") {
		t.Fatalf("strip did not scroll to the cursor:\n%s", out)
	}
}
