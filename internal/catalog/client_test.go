package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/catalog/catalogtest"
	"github.com/mmcdole/marquee/internal/domain"
	mlog "github.com/mmcdole/marquee/internal/log"
)

func newFixture(t *testing.T) (*catalogtest.Server, *Client) {
	t.Helper()
	srv := catalogtest.New(t)
	srv.SetMovies([]catalogtest.Movie{
		{ID: 1, Title: "Alpha", Year: 2001, Score: 7.1, Genres: []string{"Action"}, ImageURL: srv.PosterURL("1", true)},
		{ID: 2, Title: "Bravo", Year: 2002, Score: 9.0, Genres: []string{"Comedy"}, ImageURL: srv.PosterURL("2", true)},
		{ID: 3, Title: "Charlie", Year: 2003, Score: 8.2, Genres: []string{"Action", "Drama"}, ImageURL: srv.PosterURL("3", false),
			Directors: []string{"D. Rector"}, Actors: []string{"A. Ctor", "B. Ctor"}, Countries: []string{"France"},
			Duration: 101, DatePublished: "2003-05-04", LongDescription: "A long story."},
	})
	srv.SetPageSize(2)
	srv.SetGenres("Action", "Comedy", "Drama", "Western")

	client := NewClient(Options{
		TitlesURL: srv.TitlesURL(),
		GenresURL: strings.TrimSuffix(srv.GenresURL(), "/"),
		Timeout:   2 * time.Second,
	}, mlog.NullLogger())
	return srv, client
}

func TestListMovies_SortAndPaging(t *testing.T) {
	srv, client := newFixture(t)
	ctx := context.Background()
	q := domain.Query{SortBy: "-imdb_score"}

	p1, err := client.ListMovies(ctx, q, 1)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(p1.Items) != 2 || !p1.HasNext {
		t.Fatalf("page 1 = %+v", p1)
	}
	if p1.Items[0].Title != "Bravo" || p1.Items[0].Score != 9.0 || p1.Items[0].ID != "2" {
		t.Fatalf("first item = %+v", p1.Items[0])
	}

	p2, err := client.ListMovies(ctx, q, 2)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(p2.Items) != 1 || p2.HasNext {
		t.Fatalf("page 2 = %+v", p2)
	}

	reqs := srv.Requests()
	if len(reqs) != 2 || !strings.Contains(reqs[0], "sort_by=-imdb_score") || !strings.Contains(reqs[0], "page=1") {
		t.Fatalf("requests = %v", reqs)
	}
}

func TestListMovies_GenreFilterAndPageSize(t *testing.T) {
	srv, _ := newFixture(t)
	client := NewClient(Options{TitlesURL: srv.TitlesURL(), PageSize: 10}, mlog.NullLogger())

	page, err := client.ListMovies(context.Background(), domain.Query{Genre: "Action"}, 1)
	if err != nil {
		t.Fatalf("ListMovies: %v", err)
	}
	if len(page.Items) != 2 || page.HasNext {
		t.Fatalf("page = %+v", page)
	}
	if !strings.Contains(srv.Requests()[0], "page_size=10") {
		t.Fatalf("page_size not sent: %v", srv.Requests())
	}
}

func TestListMovies_InvalidPage(t *testing.T) {
	srv, client := newFixture(t)
	if _, err := client.ListMovies(context.Background(), domain.Query{}, 0); !errors.Is(err, domain.ErrInvalidPage) {
		t.Fatalf("err = %v, want ErrInvalidPage", err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Fatalf("invalid page should not hit the network, got %d requests", n)
	}
}

func TestListMovies_TransportErrors(t *testing.T) {
	srv, client := newFixture(t)
	srv.FailTitlesPage("", 1, http.StatusBadGateway)

	_, err := client.ListMovies(context.Background(), domain.Query{}, 1)
	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %T %v, want *TransportError", err, err)
	}
	if te.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d", te.StatusCode)
	}
	if got := srv.CountRequests("/api/v1/titles/"); got != 1 {
		t.Fatalf("fetcher must not retry, got %d requests", got)
	}

	srv.Close()
	_, err = client.ListMovies(context.Background(), domain.Query{}, 2)
	if !errors.Is(err, domain.ErrCatalogOffline) {
		t.Fatalf("closed server err = %v, want ErrCatalogOffline", err)
	}
}

func TestListMovies_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [`))
	}))
	defer srv.Close()

	client := NewClient(Options{TitlesURL: srv.URL}, mlog.NullLogger())
	_, err := client.ListMovies(context.Background(), domain.Query{}, 1)
	if err == nil || !strings.Contains(err.Error(), "failed to parse response") {
		t.Fatalf("err = %v", err)
	}
}

func TestListMovies_InterruptedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// declared length is never delivered, so the connection drops mid-body
		w.Header().Set("Content-Length", "4096")
		w.Write([]byte(`{"results": [`))
	}))
	defer srv.Close()

	client := NewClient(Options{TitlesURL: srv.URL}, mlog.NullLogger())
	_, err := client.ListMovies(context.Background(), domain.Query{}, 1)

	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if te.StatusCode != 0 || te.Err == nil {
		t.Fatalf("transport error = %+v", te)
	}
	if strings.Contains(err.Error(), "failed to parse response") {
		t.Fatalf("interrupted body reported as parse error: %v", err)
	}
}

func TestGetMovie(t *testing.T) {
	_, client := newFixture(t)

	movie, err := client.GetMovie(context.Background(), "3")
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	if movie.Title != "Charlie" || movie.Duration != 101 || movie.ReleaseYear() != 2003 {
		t.Fatalf("movie = %+v", movie)
	}
	if movie.Synopsis() != "A long story." {
		t.Fatalf("synopsis = %q", movie.Synopsis())
	}
	if len(movie.Actors) != 2 || movie.Countries[0] != "France" || movie.Directors[0] != "D. Rector" {
		t.Fatalf("people = %+v", movie)
	}

	if _, err := client.GetMovie(context.Background(), "99"); !errors.Is(err, domain.ErrMovieNotFound) {
		t.Fatalf("missing movie err = %v", err)
	}
	if _, err := client.GetMovie(context.Background(), " "); !errors.Is(err, domain.ErrMovieNotFound) {
		t.Fatalf("blank id err = %v", err)
	}
}

func TestListGenres(t *testing.T) {
	_, client := newFixture(t)

	p1, err := client.ListGenres(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListGenres: %v", err)
	}
	if len(p1.Genres) != 3 || !p1.HasNext || p1.Genres[0].Name != "Action" || p1.Genres[0].ID != "1" {
		t.Fatalf("page 1 = %+v", p1)
	}

	p2, err := client.ListGenres(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListGenres page 2: %v", err)
	}
	if len(p2.Genres) != 1 || p2.HasNext {
		t.Fatalf("page 2 = %+v", p2)
	}
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	srv, _ := newFixture(t)
	client := NewClient(Options{TitlesURL: srv.TitlesURL(), RequestsPerSecond: 0.001}, mlog.NullLogger())

	// first call consumes the only token
	if _, err := client.ListMovies(context.Background(), domain.Query{}, 1); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.ListMovies(ctx, domain.Query{}, 1)
	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("throttled call err = %v, want *TransportError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrCatalogOffline) {
		t.Fatalf("throttled call err = %v, want a deadline error, not offline", err)
	}
}

func TestListSource(t *testing.T) {
	_, client := newFixture(t)
	src := ListSource{Repo: client, Query: domain.Query{Genre: "Comedy"}}

	page, err := src.FetchPage(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Title != "Bravo" {
		t.Fatalf("page = %+v", page)
	}
}
