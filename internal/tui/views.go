package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/tui/components"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	contentHeight := m.calculateLayout().contentHeight

	// Render every block and remember where the focused one lands
	var lines []string
	focusStart, focusEnd := 0, 0
	blocks := make([]string, 0, len(m.Rows)+1)
	blocks = append(blocks, m.Banner.View())
	for _, row := range m.Rows {
		blocks = append(blocks, row.View())
	}
	for i, block := range blocks {
		if i > 0 {
			lines = append(lines, "")
		}
		start := len(lines)
		lines = append(lines, strings.Split(block, "\n")...)
		if i == m.Focus {
			focusStart, focusEnd = start, len(lines)
		}
	}

	content := strings.Join(visibleWindow(lines, focusStart, focusEnd, contentHeight), "\n")
	content = lipgloss.NewStyle().Height(contentHeight).MaxHeight(contentHeight).Render(content)

	view := lipgloss.JoinVertical(lipgloss.Left, content, m.renderFooter())

	// Overlay genre picker if visible
	if m.GenrePicker.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.GenrePicker.View())
	}

	// Overlay detail modal if visible
	if m.DetailModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.DetailModal.View(m.Width, m.Height))
	}

	return view
}

// visibleWindow returns height lines that include [focusStart, focusEnd)
// when they fit, preferring to keep the top of the page
func visibleWindow(lines []string, focusStart, focusEnd, height int) []string {
	if len(lines) <= height {
		return lines
	}
	offset := 0
	if focusEnd > height {
		offset = focusEnd - height
	}
	if focusStart < offset {
		offset = focusStart
	}
	end := min(offset+height, len(lines))
	return lines[offset:end]
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	// Left side: spinner while anything loads, else the status message
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	} else if m.loadingCount() > 0 {
		left = components.RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Loading...")
	}

	// Center section: hints for the focused block
	var center string
	if m.Focus == 0 {
		center = hint("enter", "details") + "  " + hint("r", "reload")
	} else if row := m.focusedRow(); row != nil {
		center = hint("enter", "details")
		if row.RailView().CanShowMore {
			center += "  " + hint("m", "more")
		}
		if row.IsCustom() {
			center += "  " + hint("g", "genre")
		}
	}

	// Right side: "? help" hint
	right := hint("?", "help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	totalContent := leftWidth + centerWidth + rightWidth
	if totalContent >= m.Width {
		// Not enough space - just left + right
		gap := m.Width - leftWidth - rightWidth
		if gap < 0 {
			gap = 0
		}
		return left + strings.Repeat(" ", gap) + right
	}

	// Center the hints in available space
	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

func hint(k, desc string) string {
	return styles.HelpKeyStyle.Render(k) + styles.HelpDescStyle.Render(" "+desc)
}

func (m Model) loadingCount() int {
	n := 0
	for _, r := range m.Rows {
		if r.IsLoading() {
			n++
		}
	}
	return n
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      RAILS
  j/k        Previous/next rail    m      Show more
  h/l        Previous/next movie   e      Expand/collapse
  0/Home     First movie           g      Choose genre
  $/End      Last movie            r      Reload rail
  Enter      Movie details         R      Reload all

OTHER
  ?          This help
  Esc        Close
  q          Quit

Press ? or Esc to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}
