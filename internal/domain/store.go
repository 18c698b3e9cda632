package domain

// Store handles the local cache (BoltDB + memory).
// Entries older than the store's TTL read as misses.
type Store interface {
	// === Movie details ===
	GetMovie(id string) (*MovieDetail, bool)
	SaveMovie(movie *MovieDetail) error

	// === Genres ===
	GetGenres() ([]Genre, bool)
	SaveGenres(genres []Genre) error

	// === Poster probe verdicts ===
	GetVerdict(url string) (loadable bool, ok bool)
	SaveVerdict(url string, loadable bool) error

	// === Invalidation ===
	InvalidateMovie(id string)
	InvalidateAll()

	Close() error
}
