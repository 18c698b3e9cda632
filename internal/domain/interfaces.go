package domain

import "context"

// Query is a list-endpoint filter: sort field and optional genre.
// A leading "-" on SortBy means descending (e.g. "-imdb_score").
type Query struct {
	SortBy string
	Genre  string
}

// WithGenre returns a copy of the query filtered on genre
func (q Query) WithGenre(genre string) Query {
	q.Genre = genre
	return q
}

// CatalogRepository provides access to the movie catalog API
type CatalogRepository interface {
	// ListMovies returns one 1-based page of movies matching q
	ListMovies(ctx context.Context, q Query, page int) (Page, error)

	// GetMovie returns the full record for a movie
	GetMovie(ctx context.Context, id string) (*MovieDetail, error)

	// ListGenres returns one 1-based page of genres
	ListGenres(ctx context.Context, page int) (GenrePage, error)
}

// PageSource yields pages of a single bound query
type PageSource interface {
	FetchPage(ctx context.Context, page int) (Page, error)
}

// Prober reports whether image URLs resolve to loadable images.
// It never fails: any problem is a false verdict.
type Prober interface {
	IsLoadable(ctx context.Context, url string) bool
	ProbeAll(ctx context.Context, urls []string) []bool
}
