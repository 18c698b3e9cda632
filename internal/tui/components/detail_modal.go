package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

const maxModalWidth = 84

// modalContent holds the three-zone layout content
type modalContent struct {
	header string // fixed top
	body   string // scrollable middle
	footer string // fixed bottom
}

// DetailModal shows the full record of one movie. The header and footer
// stay put while the body scrolls.
type DetailModal struct {
	visible      bool
	loading      bool
	id           string
	title        string
	movie        *domain.MovieDetail
	err          error
	offset       int
	spinnerFrame int
}

// NewDetailModal creates a hidden modal
func NewDetailModal() DetailModal {
	return DetailModal{}
}

// Show opens the modal for a movie whose detail is being fetched
func (m *DetailModal) Show(summary domain.MovieSummary) {
	m.visible = true
	m.loading = true
	m.id = summary.ID
	m.title = summary.Title
	m.movie = nil
	m.err = nil
	m.offset = 0
}

// SetMovie fills the modal if it still waits for that movie
func (m *DetailModal) SetMovie(movie *domain.MovieDetail) {
	if !m.visible || movie == nil || movie.ID != m.id {
		return
	}
	m.movie = movie
	m.loading = false
	m.err = nil
}

// SetError shows a fetch failure for the movie id
func (m *DetailModal) SetError(id string, err error) {
	if !m.visible || id != m.id {
		return
	}
	m.err = err
	m.loading = false
}

// Hide closes the modal
func (m *DetailModal) Hide() {
	m.visible = false
	m.movie = nil
	m.err = nil
}

// IsVisible returns whether the modal is shown
func (m DetailModal) IsVisible() bool { return m.visible }

// MovieID returns the id the modal was opened for
func (m DetailModal) MovieID() string { return m.id }

// SetSpinnerFrame advances the loading spinner
func (m *DetailModal) SetSpinnerFrame(frame int) { m.spinnerFrame = frame }

// HandleKey processes a key press and reports whether it was consumed
func (m *DetailModal) HandleKey(msg tea.KeyMsg) bool {
	if !m.visible {
		return false
	}

	switch {
	case key.Matches(msg, DetailModalKeys.Down):
		m.offset++
	case key.Matches(msg, DetailModalKeys.Up):
		if m.offset > 0 {
			m.offset--
		}
	case key.Matches(msg, DetailModalKeys.Top):
		m.offset = 0
	case key.Matches(msg, DetailModalKeys.Escape):
		m.Hide()
	}
	return true // consume all keys when visible
}

// View renders the modal for a screen of the given size
func (m DetailModal) View(screenW, screenH int) string {
	if !m.visible {
		return ""
	}

	style := styles.ModalStyle
	frameW, frameH := style.GetFrameSize()
	width := min(screenW-4, maxModalWidth)
	if width < 30 {
		width = 30
	}
	height := screenH - 2
	if height < 10 {
		height = 10
	}
	contentWidth := width - frameW
	maxVisible := height - frameH

	content := m.render(contentWidth)

	headerLines := splitLines(content.header)
	footerLines := splitLines(content.footer)
	bodyLines := splitLines(content.body)

	// two lines reserved for the scroll indicators
	availableForBody := maxVisible - len(headerLines) - len(footerLines) - 2
	if availableForBody < 1 {
		availableForBody = 1
	}

	maxOffset := len(bodyLines) - availableForBody
	if maxOffset < 0 {
		maxOffset = 0
	}
	offset := min(m.offset, maxOffset)
	end := min(offset+availableForBody, len(bodyLines))
	visibleBody := bodyLines[offset:end]

	up := " "
	if offset > 0 {
		up = styles.DimStyle.Render("↑ more")
	}
	down := " "
	if end < len(bodyLines) {
		down = styles.DimStyle.Render("↓ more")
	}

	var parts []string
	if len(headerLines) > 0 {
		parts = append(parts, headerLines...)
	}
	parts = append(parts, up)
	parts = append(parts, visibleBody...)
	parts = append(parts, down)
	if len(footerLines) > 0 {
		parts = append(parts, footerLines...)
	}

	return style.Width(width - 2).Render(strings.Join(parts, "\n"))
}

func (m DetailModal) render(width int) modalContent {
	title := styles.ModalTitleStyle.Render(styles.Truncate(m.title, width))

	switch {
	case m.movie != nil:
		return modalContent{
			header: renderDetailHeader(*m.movie, width),
			body:   renderDetailBody(*m.movie, width),
			footer: styles.DimStyle.Render("j/k scroll · esc close"),
		}
	case m.err != nil:
		return modalContent{
			header: title,
			body:   styles.ErrorStyle.Render(wordWrap("Could not load details: "+m.err.Error(), width)),
			footer: styles.DimStyle.Render("esc close"),
		}
	default:
		return modalContent{
			header: title,
			body:   RenderSpinner(m.spinnerFrame) + " loading details...",
		}
	}
}

func renderDetailHeader(movie domain.MovieDetail, width int) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(styles.Truncate(movie.Title, width)))
	b.WriteString("\n")
	if movie.OriginalTitle != "" && movie.OriginalTitle != movie.Title {
		b.WriteString(styles.SubtitleStyle.Render(styles.Truncate(movie.OriginalTitle, width)))
		b.WriteString("\n")
	}

	// Meta line: Year • Duration • Rated
	var metaParts []string
	if y := movie.ReleaseYear(); y > 0 {
		metaParts = append(metaParts, fmt.Sprintf("%d", y))
	}
	if d := movie.FormattedDuration(); d != "" {
		metaParts = append(metaParts, d)
	}
	if movie.Rated != "" {
		metaParts = append(metaParts, movie.Rated)
	}
	if len(metaParts) > 0 {
		b.WriteString(styles.DimStyle.Render(strings.Join(metaParts, " · ")))
		b.WriteString("\n")
	}

	if movie.Score > 0 {
		var ratingStyle lipgloss.Style
		switch {
		case movie.Score >= 7:
			ratingStyle = lipgloss.NewStyle().Foreground(styles.Green)
		case movie.Score >= 5:
			ratingStyle = lipgloss.NewStyle().Foreground(styles.MarqueeGold)
		default:
			ratingStyle = lipgloss.NewStyle().Foreground(styles.Red)
		}
		rating := ratingStyle.Render(fmt.Sprintf("★ %.1f IMDb", movie.Score))
		if movie.Votes > 0 {
			rating += styles.DimStyle.Render(fmt.Sprintf("  %d votes", movie.Votes))
		}
		b.WriteString(rating)
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderDetailBody(movie domain.MovieDetail, width int) string {
	bodyWidth := min(width, 80)

	var sections []string
	field := func(label string, values []string) {
		if len(values) == 0 {
			return
		}
		wrapped := wordWrap(label+": "+strings.Join(values, ", "), bodyWidth)
		sections = append(sections, styles.AccentStyle.Render(label+":")+strings.TrimPrefix(wrapped, label+":"))
	}

	field("Genres", movie.Genres)
	field("Directors", movie.Directors)
	field("Countries", movie.Countries)
	field("Languages", movie.Languages)
	if movie.Company != "" {
		field("Company", []string{movie.Company})
	}
	if movie.Budget > 0 {
		field("Budget", []string{strings.TrimSpace(fmt.Sprintf("%d %s", movie.Budget, movie.BudgetCurrency))})
	}

	if syn := strings.TrimSpace(movie.Synopsis()); syn != "" {
		sections = append(sections, "", styles.SubtitleStyle.Render(wordWrap(syn, bodyWidth)))
	}

	if len(movie.Actors) > 0 {
		sections = append(sections, "", styles.AccentStyle.Render("Cast"))
		for _, a := range movie.Actors {
			sections = append(sections, "  "+styles.Truncate(a, bodyWidth-2))
		}
	}

	return strings.Join(sections, "\n")
}
