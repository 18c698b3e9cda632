package components

import (
	"fmt"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

const bannerSynopsisLines = 3

// Banner shows the best-rated movie above the rails
type Banner struct {
	feature      *domain.Feature
	err          error
	loading      bool
	focused      bool
	width        int
	spinnerFrame int
}

// NewBanner creates a banner in the loading state
func NewBanner() Banner {
	return Banner{loading: true, width: 80}
}

// SetFeature shows a loaded movie
func (b *Banner) SetFeature(f domain.Feature) {
	b.feature = &f
	b.err = nil
	b.loading = false
}

// SetError shows a load failure, keeping any movie already shown
func (b *Banner) SetError(err error) {
	b.err = err
	b.loading = false
}

// SetLoading marks the banner as refreshing
func (b *Banner) SetLoading() {
	b.loading = true
	b.err = nil
}

// SetFocused marks the banner as focused
func (b *Banner) SetFocused(focused bool) { b.focused = focused }

// SetSize updates the available width
func (b *Banner) SetSize(width int) { b.width = width }

// SetSpinnerFrame advances the loading spinner
func (b *Banner) SetSpinnerFrame(frame int) { b.spinnerFrame = frame }

// Movie returns the featured movie, if any
func (b Banner) Movie() (domain.MovieSummary, bool) {
	if b.feature == nil {
		return domain.MovieSummary{}, false
	}
	return b.feature.Movie.MovieSummary, true
}

// View renders the banner
func (b Banner) View() string {
	style := styles.BannerStyle
	if b.focused {
		style = styles.BannerFocusedStyle
	}
	frameW, _ := style.GetFrameSize()
	inner := b.width - frameW
	if inner < 20 {
		inner = 20
	}

	var lines []string
	heading := styles.AccentStyle.Render("★ Best movie")
	if b.loading {
		heading += " " + RenderSpinner(b.spinnerFrame)
	}
	lines = append(lines, heading)

	switch {
	case b.feature != nil:
		lines = append(lines, b.renderFeature(inner)...)
		if b.err != nil {
			lines = append(lines, styles.ErrorStyle.Render(styles.Truncate(errText(b.err), inner)))
		}
	case b.err != nil:
		lines = append(lines, styles.ErrorStyle.Render(styles.Truncate("unavailable: "+errText(b.err), inner)))
	default:
		lines = append(lines, styles.DimStyle.Render("loading..."))
	}

	return style.Width(b.width - 2).Render(strings.Join(lines, "\n"))
}

func (b Banner) renderFeature(width int) []string {
	m := b.feature.Movie

	title := styles.BannerTitleStyle.Render(styles.Truncate(m.Title, width))

	var meta []string
	if y := m.ReleaseYear(); y > 0 {
		meta = append(meta, fmt.Sprintf("%d", y))
	}
	if len(m.Genres) > 0 {
		meta = append(meta, strings.Join(m.Genres, ", "))
	}
	if d := m.FormattedDuration(); d != "" {
		meta = append(meta, d)
	}
	metaLine := styles.DimStyle.Render(styles.Truncate(strings.Join(meta, " · "), width-10))
	if m.Score > 0 {
		metaLine += "  " + styles.ScoreStyle.Render(fmt.Sprintf("★ %.1f", m.Score))
	}

	lines := []string{title, metaLine}
	if !b.feature.PosterOK {
		lines = append(lines, styles.DimStyle.Render(styles.PosterPlaceholder))
	}
	if syn := strings.TrimSpace(m.Synopsis()); syn != "" {
		lines = append(lines, styles.SubtitleStyle.Render(clampLines(wordWrap(syn, width), bannerSynopsisLines)))
	}
	if b.focused {
		lines = append(lines, styles.DimStyle.Render("enter details"))
	}
	return lines
}
