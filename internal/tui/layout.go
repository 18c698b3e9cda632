package tui

const (
	MinContentWidth = 40
	rowIndent       = 2 // room for the strip's scroll arrows
)

// homeLayout holds calculated widths for the View
type homeLayout struct {
	bannerWidth   int
	rowWidth      int
	contentHeight int
}

// calculateLayout computes component sizes from the window size
func (m Model) calculateLayout() homeLayout {
	width := max(m.Width, MinContentWidth)
	return homeLayout{
		bannerWidth:   width,
		rowWidth:      width - rowIndent,
		contentHeight: max(m.Height-ChromeHeight, 1),
	}
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	layout := m.calculateLayout()
	m.Banner.SetSize(layout.bannerWidth)
	for i := range m.Rows {
		m.Rows[i].SetSize(layout.rowWidth)
	}
}
