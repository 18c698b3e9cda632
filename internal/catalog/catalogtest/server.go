// Package catalogtest serves an in-memory titles/genres API for tests.
package catalogtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// Movie is one fixture row
type Movie struct {
	ID              int
	Title           string
	Year            int
	Score           float64
	Genres          []string
	ImageURL        string
	Directors       []string
	Actors          []string
	Countries       []string
	Duration        int
	DatePublished   string
	Description     string
	LongDescription string
}

// Server is a fixture catalog API backed by httptest
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	movies        []Movie
	genres        []string
	pageSize      int
	genrePageSize int
	failures      map[string]int
	requests      []string
}

// New starts a fixture server that shuts down with the test
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		pageSize:      5,
		genrePageSize: 3,
		failures:      make(map[string]int),
	}

	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/api/v1/titles/", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/titles/{id}", s.handleDetail).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/genres/", s.handleGenres).Methods(http.MethodGet)
	r.HandleFunc("/posters/{name}", s.handlePoster).Methods(http.MethodGet)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// TitlesURL returns the list/detail endpoint
func (s *Server) TitlesURL() string { return s.URL + "/api/v1/titles/" }

// GenresURL returns the genre endpoint
func (s *Server) GenresURL() string { return s.URL + "/api/v1/genres/" }

// PosterURL returns a poster URL that loads (ok) or answers 404
func (s *Server) PosterURL(name string, ok bool) string {
	if ok {
		return s.URL + "/posters/ok-" + name + ".png"
	}
	return s.URL + "/posters/broken-" + name + ".jpg"
}

// HTMLPosterURL returns a 200 response that is not an image
func (s *Server) HTMLPosterURL(name string) string {
	return s.URL + "/posters/html-" + name
}

// SetMovies replaces the fixture rows
func (s *Server) SetMovies(movies []Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies = append([]Movie(nil), movies...)
}

// SetGenres replaces the genre list
func (s *Server) SetGenres(genres ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genres = append([]string(nil), genres...)
}

// SetPageSize sets the default titles page size
func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// SetGenrePageSize sets the genres page size
func (s *Server) SetGenrePageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genrePageSize = n
}

// FailTitlesPage makes a titles page for genre ("" = unfiltered) answer status
func (s *Server) FailTitlesPage(genre string, page, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[fmt.Sprintf("titles:%s:%d", strings.ToLower(genre), page)] = status
}

// FailGenresPage makes a genres page answer status
func (s *Server) FailGenresPage(page, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[fmt.Sprintf("genres:%d", page)] = status
}

// Requests returns the request URIs received so far
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// CountRequests counts received request URIs with the given path prefix
func (s *Server) CountRequests(prefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.RequestURI())
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	genre := q.Get("genre")
	page := atoiDefault(q.Get("page"), 1)

	s.mu.Lock()
	status := s.failures[fmt.Sprintf("titles:%s:%d", strings.ToLower(genre), page)]
	size := atoiDefault(q.Get("page_size"), s.pageSize)
	var rows []Movie
	for _, m := range s.movies {
		if genre == "" || hasGenre(m, genre) {
			rows = append(rows, m)
		}
	}
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, "injected failure", status)
		return
	}

	sortMovies(rows, q.Get("sort_by"))

	start := (page - 1) * size
	if page < 1 || (start >= len(rows) && !(page == 1 && len(rows) == 0)) {
		http.Error(w, `{"detail":"Invalid page."}`, http.StatusNotFound)
		return
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}

	var next any
	if end < len(rows) {
		nq := r.URL.Query()
		nq.Set("page", strconv.Itoa(page+1))
		next = s.URL + r.URL.Path + "?" + nq.Encode()
	}

	results := make([]map[string]any, 0, end-start)
	for _, m := range rows[start:end] {
		results = append(results, summaryJSON(m))
	}

	writeJSON(w, map[string]any{
		"count":    len(rows),
		"next":     next,
		"previous": nil,
		"results":  results,
	})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	var found *Movie
	for i := range s.movies {
		if s.movies[i].ID == id {
			m := s.movies[i]
			found = &m
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)
		return
	}

	body := summaryJSON(*found)
	body["duration"] = found.Duration
	body["date_published"] = found.DatePublished
	body["description"] = found.Description
	body["long_description"] = found.LongDescription
	body["countries"] = found.Countries
	body["languages"] = []string{"English"}
	body["rated"] = "Not rated or unkown rating"
	writeJSON(w, body)
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	page := atoiDefault(r.URL.Query().Get("page"), 1)

	s.mu.Lock()
	status := s.failures[fmt.Sprintf("genres:%d", page)]
	size := s.genrePageSize
	genres := append([]string(nil), s.genres...)
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, "injected failure", status)
		return
	}

	start := (page - 1) * size
	if page < 1 || (start >= len(genres) && page != 1) {
		http.Error(w, `{"detail":"Invalid page."}`, http.StatusNotFound)
		return
	}
	end := start + size
	if end > len(genres) {
		end = len(genres)
	}

	var next any
	if end < len(genres) {
		next = fmt.Sprintf("%s%s?page=%d", s.URL, r.URL.Path, page+1)
	}

	results := make([]map[string]any, 0, end-start)
	for i, g := range genres[start:end] {
		results = append(results, map[string]any{"id": start + i + 1, "name": g})
	}
	writeJSON(w, map[string]any{"count": len(genres), "next": next, "results": results})
}

func (s *Server) handlePoster(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	switch {
	case strings.HasPrefix(name, "ok-"):
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngPoster)
	case strings.HasPrefix(name, "html-"):
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<!doctype html><html><body>poster missing</body></html>"))
	default:
		http.NotFound(w, r)
	}
}

func summaryJSON(m Movie) map[string]any {
	return map[string]any{
		"id":         m.ID,
		"url":        fmt.Sprintf("/api/v1/titles/%d", m.ID),
		"title":      m.Title,
		"year":       m.Year,
		"imdb_score": strconv.FormatFloat(m.Score, 'f', 1, 64),
		"votes":      1000,
		"image_url":  m.ImageURL,
		"directors":  m.Directors,
		"actors":     m.Actors,
		"writers":    []string{},
		"genres":     m.Genres,
	}
}

func sortMovies(rows []Movie, sortBy string) {
	desc := strings.HasPrefix(sortBy, "-")
	field := strings.TrimPrefix(sortBy, "-")
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if desc {
			a, b = b, a
		}
		switch field {
		case "imdb_score":
			return a.Score < b.Score
		case "title":
			return a.Title < b.Title
		default:
			return a.ID < b.ID
		}
	})
}

func hasGenre(m Movie, genre string) bool {
	for _, g := range m.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

var pngPoster = func() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{200, 40, 40, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}()

// PNG returns the bytes served for loadable posters
func PNG() []byte {
	return append([]byte(nil), pngPoster...)
}
