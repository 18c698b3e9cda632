package tui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/rail"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// PlainHome is the homepage content for non-interactive output
type PlainHome struct {
	Feature    *domain.Feature
	FeatureErr error
	Rails      []rail.View
}

// RenderPlain writes the homepage as plain text, one section per rail
func RenderPlain(w io.Writer, home PlainHome) error {
	var b strings.Builder

	b.WriteString("== Best movie ==\n")
	switch {
	case home.Feature != nil:
		m := home.Feature.Movie
		fmt.Fprintf(&b, "%s", m.Title)
		if y := m.ReleaseYear(); y > 0 {
			fmt.Fprintf(&b, " (%d)", y)
		}
		if m.Score > 0 {
			fmt.Fprintf(&b, "  ★ %.1f", m.Score)
		}
		b.WriteString("\n")
		if !home.Feature.PosterOK {
			b.WriteString(styles.PosterPlaceholder + "\n")
		}
		if syn := strings.TrimSpace(m.Synopsis()); syn != "" {
			b.WriteString(syn + "\n")
		}
	case home.FeatureErr != nil:
		fmt.Fprintf(&b, "unavailable: %v\n", home.FeatureErr)
	default:
		b.WriteString("no movie\n")
	}

	for _, v := range home.Rails {
		title := v.Title
		if v.Query.Genre != "" && !strings.EqualFold(v.Query.Genre, v.Title) {
			title = fmt.Sprintf("%s: %s", title, v.Query.Genre)
		}
		fmt.Fprintf(&b, "\n== %s ==\n", title)

		if v.Err != nil {
			label := "partial"
			if len(v.Items) == 0 {
				label = "unavailable"
			}
			fmt.Fprintf(&b, "%s: %v\n", label, v.Err)
		}
		if len(v.Items) == 0 {
			if v.Err == nil {
				b.WriteString("no movies with a loadable poster\n")
			}
			continue
		}

		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		for i, m := range v.Items {
			year, score := "", ""
			if m.Year > 0 {
				year = fmt.Sprintf("%d", m.Year)
			}
			if m.Score > 0 {
				score = fmt.Sprintf("%.1f", m.Score)
			}
			fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\n", i+1, m.Title, year, score)
		}
		tw.Flush()
	}

	_, err := io.WriteString(w, b.String())
	return err
}
