package domain

import (
	"fmt"
	"strings"
	"time"
)

// MovieSummary is a movie as returned by the catalog list endpoint
type MovieSummary struct {
	ID       string   // Catalog identifier
	Title    string   // Display title
	ImageURL string   // Poster URL (may be broken)
	Score    float64  // IMDb score, 0 when unknown
	Year     int      // Release year, 0 when unknown
	Genres   []string // Genre names, possibly empty on list responses
}

// GetID returns the unique identifier
func (m MovieSummary) GetID() string { return m.ID }

// GetTitle returns the display title
func (m MovieSummary) GetTitle() string { return m.Title }

// Label returns "Title (Year)" or just the title when the year is unknown
func (m MovieSummary) Label() string {
	if m.Year > 0 {
		return fmt.Sprintf("%s (%d)", m.Title, m.Year)
	}
	return m.Title
}

// MovieDetail is the full record returned by the catalog detail endpoint
type MovieDetail struct {
	MovieSummary

	OriginalTitle   string
	Directors       []string
	Actors          []string
	Writers         []string
	Countries       []string
	Languages       []string
	Duration        int // Runtime in minutes
	Description     string
	LongDescription string
	DatePublished   time.Time
	Rated           string
	Votes           int
	Company         string
	Budget          int64
	BudgetCurrency  string
}

// ReleaseYear returns the year from DatePublished, falling back to Year
func (m MovieDetail) ReleaseYear() int {
	if !m.DatePublished.IsZero() {
		return m.DatePublished.Year()
	}
	return m.Year
}

// Synopsis returns the long description, or the short one when absent
func (m MovieDetail) Synopsis() string {
	if strings.TrimSpace(m.LongDescription) != "" {
		return m.LongDescription
	}
	return m.Description
}

// FormattedDuration returns the runtime in a human-readable format
func (m MovieDetail) FormattedDuration() string {
	if m.Duration <= 0 {
		return ""
	}
	return fmt.Sprintf("%d minutes", m.Duration)
}

// Genre is a catalog genre usable as a rail filter
type Genre struct {
	ID   string
	Name string
}

// Page is one page of list results
type Page struct {
	Items   []MovieSummary
	HasNext bool
}

// GenrePage is one page of genre results
type GenrePage struct {
	Genres  []Genre
	HasNext bool
}

// Feature is the best-movie banner content
type Feature struct {
	Movie    MovieDetail
	PosterOK bool // False when the poster URL did not load
}
