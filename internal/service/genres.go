package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/rail"
	"github.com/mozillazg/go-unidecode"
)

// Genres returns every genre the catalog knows, walking all pages.
// When a later page fails the genres collected so far are returned with
// the error; only complete lists are cached.
func (s *HomeService) Genres(ctx context.Context) ([]domain.Genre, error) {
	if s.store != nil {
		if genres, ok := s.store.GetGenres(); ok {
			s.logger.Debug("cache hit", "key", "genres", "count", len(genres))
			return genres, nil
		}
	}

	genres, err := fetchAll(ctx, func(ctx context.Context, page int) ([]domain.Genre, bool, error) {
		gp, err := retryCall(s, ctx, func() (domain.GenrePage, error) {
			return s.repo.ListGenres(ctx, page)
		})
		return gp.Genres, gp.HasNext, err
	}, func(page, loaded int) {
		s.logger.Debug("genre page loaded", "page", page, "total", loaded)
	})
	if err != nil {
		s.logger.Error("failed to load genres", "loaded", len(genres), "error", err)
		return genres, err
	}

	if s.store != nil {
		if err := s.store.SaveGenres(genres); err != nil {
			s.logger.Warn("failed to cache genres", "error", err)
		}
	}
	s.logger.Info("loaded genres", "count", len(genres))
	return genres, nil
}

// foldGenre normalizes a genre name for comparison ("Comédie" -> "comedie")
func foldGenre(name string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(name)))
}

// ResolveGenre maps user input onto a known genre. Exact matches win,
// ignoring case and accents; otherwise the closest fuzzy match is used.
func ResolveGenre(query string, genres []domain.Genre) (domain.Genre, bool) {
	q := foldGenre(query)
	if q == "" || len(genres) == 0 {
		return domain.Genre{}, false
	}

	targets := make([]string, len(genres))
	for i, g := range genres {
		targets[i] = foldGenre(g.Name)
		if targets[i] == q {
			return g, true
		}
	}

	ranks := fuzzy.RankFind(q, targets)
	if len(ranks) == 0 {
		return domain.Genre{}, false
	}
	sort.Sort(ranks)
	return genres[ranks[0].OriginalIndex], true
}

// SelectGenre resolves query against the catalog genres and rebinds the
// custom rail to the match. A partial genre list is still searched.
func (s *HomeService) SelectGenre(ctx context.Context, query string) (domain.Genre, rail.Outcome, error) {
	if s.custom == nil {
		return domain.Genre{}, rail.Outcome{}, errors.New("no custom rail configured")
	}

	genres, err := s.Genres(ctx)
	if err != nil && len(genres) == 0 {
		return domain.Genre{}, rail.Outcome{}, fmt.Errorf("failed to load genres: %w", err)
	}

	g, ok := ResolveGenre(query, genres)
	if !ok {
		return domain.Genre{}, rail.Outcome{}, fmt.Errorf("unknown genre %q", query)
	}
	s.logger.Info("genre selected", "query", query, "genre", g.Name)
	return g, s.custom.SetGenre(ctx, g.Name), nil
}
