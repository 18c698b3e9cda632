package catalog

import (
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// MapSummary converts a list DTO to a domain summary
func MapSummary(t titleDTO) domain.MovieSummary {
	return domain.MovieSummary{
		ID:       string(t.ID),
		Title:    strings.TrimSpace(t.Title),
		ImageURL: strings.TrimSpace(t.ImageURL),
		Score:    float64(t.IMDbScore),
		Year:     int(t.Year),
		Genres:   t.Genres,
	}
}

// MapSummaries converts list results, preserving order
func MapSummaries(results []titleDTO) []domain.MovieSummary {
	items := make([]domain.MovieSummary, 0, len(results))
	for _, r := range results {
		items = append(items, MapSummary(r))
	}
	return items
}

// MapDetail converts a detail DTO to a domain detail
func MapDetail(d detailDTO) *domain.MovieDetail {
	return &domain.MovieDetail{
		MovieSummary:    MapSummary(d.titleDTO),
		OriginalTitle:   d.OriginalTitle,
		Directors:       d.Directors,
		Actors:          d.Actors,
		Writers:         d.Writers,
		Countries:       d.Countries,
		Languages:       d.Languages,
		Duration:        int(d.Duration),
		Description:     d.Description,
		LongDescription: d.LongDescription,
		DatePublished:   parseDate(d.DatePublished),
		Rated:           string(d.Rated),
		Votes:           int(d.Votes),
		Company:         d.Company,
		Budget:          int64(d.Budget),
		BudgetCurrency:  d.BudgetCurrency,
	}
}

// MapGenres converts genre results, skipping nameless entries
func MapGenres(results []genreDTO) []domain.Genre {
	genres := make([]domain.Genre, 0, len(results))
	for _, g := range results {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			continue
		}
		genres = append(genres, domain.Genre{ID: string(g.ID), Name: name})
	}
	return genres
}

// hasNext reports whether a "next" link is present
func hasNext(next *string) bool {
	return next != nil && strings.TrimSpace(*next) != ""
}

// parseDate accepts "2006-01-02" and RFC 3339 timestamps
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
