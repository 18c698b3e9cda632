package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/rail"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

const (
	DefaultCardWidth = 22
	MinCardWidth     = 10
	cardChrome       = 4 // border + padding
	cardGap          = 1
)

// RailRow renders one rail as a title line over a strip of movie cards.
// Collapsed, the strip scrolls horizontally; expanded, every loaded item
// is shown wrapped over several lines.
type RailRow struct {
	view         rail.View
	cursor       int
	offset       int
	expanded     bool
	focused      bool
	width        int
	cardWidth    int
	spinnerFrame int
	custom       bool
}

// NewRailRow creates a row for a rail
func NewRailRow(view rail.View, cardWidth int, custom bool) RailRow {
	if cardWidth < MinCardWidth {
		cardWidth = DefaultCardWidth
	}
	return RailRow{view: view, cardWidth: cardWidth, custom: custom, width: 80}
}

// SetView replaces the rail snapshot, keeping the cursor in range
func (r *RailRow) SetView(v rail.View) {
	r.view = v
	r.clamp()
}

// RailView returns the current snapshot
func (r RailRow) RailView() rail.View { return r.view }

// ID returns the rail id
func (r RailRow) ID() string { return r.view.ID }

// IsCustom reports whether this is the genre-selectable rail
func (r RailRow) IsCustom() bool { return r.custom }

// SetLoading marks the row as loading before the fill starts
func (r *RailRow) SetLoading() {
	r.view.State = rail.StateLoading
	r.view.CanShowMore = false
}

// IsLoading reports whether a fill is in flight
func (r RailRow) IsLoading() bool { return r.view.State == rail.StateLoading }

// SetSize updates the available width
func (r *RailRow) SetSize(width int) {
	r.width = width
	r.clamp()
}

// SetFocused marks the row as the focused one
func (r *RailRow) SetFocused(focused bool) { r.focused = focused }

// SetSpinnerFrame advances the loading spinner
func (r *RailRow) SetSpinnerFrame(frame int) { r.spinnerFrame = frame }

// ResetCursor moves back to the first card
func (r *RailRow) ResetCursor() {
	r.cursor = 0
	r.offset = 0
}

// Cursor returns the selected card index
func (r RailRow) Cursor() int { return r.cursor }

// Expanded reports whether every item is shown
func (r RailRow) Expanded() bool { return r.expanded }

// ToggleExpanded switches between the strip and the full grid
func (r *RailRow) ToggleExpanded() {
	r.expanded = !r.expanded
	r.clamp()
}

// MoveLeft selects the previous card
func (r *RailRow) MoveLeft() {
	if r.cursor > 0 {
		r.cursor--
	}
	r.clamp()
}

// MoveRight selects the next card
func (r *RailRow) MoveRight() {
	if r.cursor < len(r.view.Items)-1 {
		r.cursor++
	}
	r.clamp()
}

// MoveEnd selects the last card
func (r *RailRow) MoveEnd() {
	r.cursor = len(r.view.Items) - 1
	r.clamp()
}

// Selected returns the movie under the cursor
func (r RailRow) Selected() (domain.MovieSummary, bool) {
	if r.cursor < 0 || r.cursor >= len(r.view.Items) {
		return domain.MovieSummary{}, false
	}
	return r.view.Items[r.cursor], true
}

// PerLine returns how many cards fit on one line
func (r RailRow) PerLine() int {
	n := (r.width + cardGap) / (r.cardWidth + cardChrome + cardGap)
	if n < 1 {
		n = 1
	}
	return n
}

func (r *RailRow) clamp() {
	n := len(r.view.Items)
	if r.cursor >= n {
		r.cursor = n - 1
	}
	if r.cursor < 0 {
		r.cursor = 0
	}

	visible := r.PerLine()
	if r.cursor < r.offset {
		r.offset = r.cursor
	}
	if r.cursor >= r.offset+visible {
		r.offset = r.cursor - visible + 1
	}
	if r.offset > n-visible {
		r.offset = n - visible
	}
	if r.offset < 0 {
		r.offset = 0
	}
}

// View renders the row
func (r RailRow) View() string {
	lines := []string{r.renderTitle()}

	switch {
	case len(r.view.Items) > 0:
		lines = append(lines, r.renderCards())
	case r.view.State == rail.StateFailed:
		// error already shown on the title line
	case r.view.State == rail.StateLoading || r.view.State == rail.StateIdle:
		lines = append(lines, styles.DimStyle.Render("  loading..."))
	default:
		lines = append(lines, styles.DimStyle.Render("  no movies with a loadable poster"))
	}

	return strings.Join(lines, "\n")
}

func (r RailRow) renderTitle() string {
	titleStyle := styles.RailTitleStyle
	marker := "  "
	if r.focused {
		titleStyle = styles.RailTitleFocusedStyle
		marker = styles.AccentStyle.Render("▍ ")
	}

	title := r.view.Title
	if r.custom && r.view.Query.Genre != "" {
		title = fmt.Sprintf("%s: %s", title, r.view.Query.Genre)
	}
	parts := []string{marker + titleStyle.Render(title)}

	if n := len(r.view.Items); n > 0 {
		parts = append(parts, styles.DimStyle.Render(fmt.Sprintf("%d/%d", r.cursor+1, n)))
	}

	switch r.view.State {
	case rail.StateLoading:
		parts = append(parts, RenderSpinner(r.spinnerFrame))
	case rail.StateFailed:
		parts = append(parts, styles.ErrorStyle.Render("unavailable: "+errText(r.view.Err)))
	case rail.StateLoaded:
		switch {
		case r.view.Err != nil:
			parts = append(parts, styles.ErrorStyle.Render("partial: "+errText(r.view.Err)))
		case r.view.CanShowMore:
			parts = append(parts, styles.DimStyle.Render("m more"))
		case r.view.Cursor.Exhausted:
			parts = append(parts, styles.DimStyle.Render("end"))
		}
		if r.expanded {
			parts = append(parts, styles.DimStyle.Render("e less"))
		} else if len(r.view.Items) > r.PerLine() {
			parts = append(parts, styles.DimStyle.Render("e all"))
		}
	}

	return lipgloss.NewStyle().MaxWidth(r.width).Render(strings.Join(parts, "  "))
}

func (r RailRow) renderCards() string {
	perLine := r.PerLine()
	items := r.view.Items

	if !r.expanded {
		end := min(r.offset+perLine, len(items))
		cards := make([]string, 0, end-r.offset)
		for i := r.offset; i < end; i++ {
			cards = append(cards, r.renderCard(items[i], i == r.cursor && r.focused))
		}
		strip := joinCards(cards)

		left, right := " ", " "
		if r.offset > 0 {
			left = styles.AccentStyle.Render("‹")
		}
		if end < len(items) {
			right = styles.AccentStyle.Render("›")
		}
		return lipgloss.JoinHorizontal(lipgloss.Center, left, strip, right)
	}

	var rows []string
	for start := 0; start < len(items); start += perLine {
		end := min(start+perLine, len(items))
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cards = append(cards, r.renderCard(items[i], i == r.cursor && r.focused))
		}
		rows = append(rows, " "+joinCards(cards))
	}
	return strings.Join(rows, "\n")
}

func (r RailRow) renderCard(m domain.MovieSummary, selected bool) string {
	style := styles.CardStyle
	titleStyle := styles.SubtitleStyle
	if selected {
		style = styles.CardSelectedStyle
		titleStyle = styles.TitleStyle
	}

	title := titleStyle.Render(styles.Pad(styles.Truncate(m.Title, r.cardWidth), r.cardWidth))

	meta := ""
	if m.Year > 0 {
		meta = fmt.Sprintf("%d", m.Year)
	}
	score := ""
	if m.Score > 0 {
		score = fmt.Sprintf("★ %.1f", m.Score)
	}
	gap := r.cardWidth - len([]rune(meta)) - len([]rune(score))
	if gap < 1 {
		gap = 1
	}
	metaLine := styles.DimStyle.Render(meta) + strings.Repeat(" ", gap) + styles.ScoreStyle.Render(score)

	return style.Width(r.cardWidth + 2).Render(title + "\n" + metaLine)
}

func joinCards(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	spaced := make([]string, 0, len(cards)*2)
	for i, c := range cards {
		if i > 0 {
			spaced = append(spaced, strings.Repeat(" ", cardGap))
		}
		spaced = append(spaced, c)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, spaced...)
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
