package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

const (
	pickerWidth       = 36
	pickerMaxVisible  = 10
	pickerPlaceholder = "Type to filter genres..."
)

// pickerMatch is one visible entry: the genre and the matched byte offsets
type pickerMatch struct {
	genre   domain.Genre
	matched []int
}

// GenrePicker is a popup for choosing the custom rail's genre, with a
// fuzzy filter over the genre names
type GenrePicker struct {
	visible bool
	loading bool
	err     error
	input   textinput.Model
	genres  []domain.Genre
	matches []pickerMatch
	cursor  int
	offset  int
	active  string
}

// NewGenrePicker creates a hidden picker
func NewGenrePicker() GenrePicker {
	ti := textinput.New()
	ti.Placeholder = pickerPlaceholder
	ti.CharLimit = 40
	ti.Width = pickerWidth - 4
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return GenrePicker{input: ti}
}

// Show opens the picker; genres may be nil while they are being fetched
func (p *GenrePicker) Show(genres []domain.Genre, active string) tea.Cmd {
	p.visible = true
	p.active = active
	p.err = nil
	p.input.SetValue("")
	p.SetGenres(genres)
	p.loading = genres == nil

	// Position cursor on the active genre
	for i, m := range p.matches {
		if strings.EqualFold(m.genre.Name, active) {
			p.cursor = i
			break
		}
	}
	p.ensureVisible()
	return p.input.Focus()
}

// SetGenres replaces the genre list and reapplies the filter
func (p *GenrePicker) SetGenres(genres []domain.Genre) {
	p.genres = genres
	p.loading = false
	p.applyFilter()
}

// SetLoading marks the genre list as being fetched
func (p *GenrePicker) SetLoading(loading bool) { p.loading = loading }

// SetError shows why the genre list is incomplete
func (p *GenrePicker) SetError(err error) {
	p.err = err
	p.loading = false
}

// Hide dismisses the picker
func (p *GenrePicker) Hide() {
	p.visible = false
	p.input.Blur()
}

// IsVisible returns whether the picker is shown
func (p GenrePicker) IsVisible() bool { return p.visible }

// Query returns the filter text
func (p GenrePicker) Query() string { return p.input.Value() }

// MatchCount returns the number of genres passing the filter
func (p GenrePicker) MatchCount() int { return len(p.matches) }

// Selected returns the highlighted genre
func (p GenrePicker) Selected() (domain.Genre, bool) {
	if p.cursor < 0 || p.cursor >= len(p.matches) {
		return domain.Genre{}, false
	}
	return p.matches[p.cursor].genre, true
}

// HandleKey processes a key press, returns (handled, selection, cmd).
// If selection is non-nil, the user confirmed a genre.
func (p *GenrePicker) HandleKey(msg tea.KeyMsg) (bool, *domain.Genre, tea.Cmd) {
	if !p.visible {
		return false, nil, nil
	}

	switch {
	case key.Matches(msg, GenrePickerKeys.Escape):
		p.Hide()
		return true, nil, nil
	case key.Matches(msg, GenrePickerKeys.Down):
		if p.cursor < len(p.matches)-1 {
			p.cursor++
			p.ensureVisible()
		}
		return true, nil, nil
	case key.Matches(msg, GenrePickerKeys.Up):
		if p.cursor > 0 {
			p.cursor--
			p.ensureVisible()
		}
		return true, nil, nil
	case key.Matches(msg, GenrePickerKeys.Enter):
		g, ok := p.Selected()
		if !ok {
			return true, nil, nil
		}
		p.Hide()
		return true, &g, nil
	}

	// Route to textinput
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.applyFilter()
	return true, nil, cmd // consume all keys when visible
}

func (p *GenrePicker) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(p.input.Value()))

	p.matches = p.matches[:0]
	if query == "" {
		for _, g := range p.genres {
			p.matches = append(p.matches, pickerMatch{genre: g})
		}
	} else {
		lowerNames := make([]string, len(p.genres))
		for i, g := range p.genres {
			lowerNames[i] = strings.ToLower(g.Name)
		}
		for _, m := range fuzzy.Find(query, lowerNames) {
			p.matches = append(p.matches, pickerMatch{genre: p.genres[m.Index], matched: m.MatchedIndexes})
		}
	}

	// Reset cursor to first match
	p.cursor = 0
	p.offset = 0
}

func (p *GenrePicker) ensureVisible() {
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+pickerMaxVisible {
		p.offset = p.cursor - pickerMaxVisible + 1
	}
}

// View renders the picker
func (p GenrePicker) View() string {
	if !p.visible {
		return ""
	}

	inner := pickerWidth - 2
	var lines []string
	lines = append(lines, styles.ModalTitleStyle.Render("Choose a genre"))
	lines = append(lines, p.input.View(), "")

	switch {
	case p.loading && len(p.genres) == 0:
		lines = append(lines, styles.SpinnerStyle.Render("Loading genres..."))
	case len(p.matches) == 0:
		lines = append(lines, styles.DimStyle.Render("No matching genre"))
	default:
		end := min(p.offset+pickerMaxVisible, len(p.matches))
		for i := p.offset; i < end; i++ {
			lines = append(lines, p.renderLine(p.matches[i], i == p.cursor, inner))
		}
		if len(p.matches) > pickerMaxVisible {
			lines = append(lines, styles.DimStyle.Render(fmt.Sprintf("  %d/%d", p.cursor+1, len(p.matches))))
		}
	}

	if p.err != nil {
		lines = append(lines, "", styles.ErrorStyle.Render(styles.Truncate("Genre list incomplete: "+p.err.Error(), inner)))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.MarqueeGold).
		Background(styles.SlateDark).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (p GenrePicker) renderLine(m pickerMatch, selected bool, width int) string {
	isActive := strings.EqualFold(m.genre.Name, p.active)

	prefix := "  "
	if isActive {
		prefix = "✓ "
	}

	name := styles.Truncate(m.genre.Name, width-2)
	matched := m.matched
	if name != m.genre.Name {
		matched = nil
	}
	text := prefix + styles.HighlightMatches(name, matched, selected)
	pad := width - lipgloss.Width(prefix+name)
	if pad > 0 {
		text += strings.Repeat(" ", pad)
	}

	switch {
	case selected:
		return lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight).Render(text)
	case isActive:
		return lipgloss.NewStyle().Foreground(styles.MarqueeGold).Render(text)
	default:
		return lipgloss.NewStyle().Foreground(styles.LightGray).Render(text)
	}
}
