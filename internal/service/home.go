package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/rail"
	"golang.org/x/sync/errgroup"
)

const defaultRetryDelay = 250 * time.Millisecond

// Options tunes HomeService
type Options struct {
	Retries    int // extra attempts for genre and detail fetches
	RetryDelay time.Duration
	BestSortBy string // sort used to pick the best movie
}

// HomeService assembles the homepage: banner, rails, genres and details
type HomeService struct {
	repo   domain.CatalogRepository
	store  domain.Store // nil disables caching
	prober domain.Prober
	logger *slog.Logger

	rails  []*rail.Rail
	custom *rail.Rail

	retries    int
	retryDelay time.Duration
	bestQuery  domain.Query
}

// NewHomeService creates a new home service
func NewHomeService(
	repo domain.CatalogRepository,
	store domain.Store,
	prober domain.Prober,
	rails []*rail.Rail,
	custom *rail.Rail,
	opts Options,
	logger *slog.Logger,
) *HomeService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.BestSortBy == "" {
		opts.BestSortBy = "-imdb_score"
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	return &HomeService{
		repo:       repo,
		store:      store,
		prober:     prober,
		logger:     logger,
		rails:      rails,
		custom:     custom,
		retries:    opts.Retries,
		retryDelay: opts.RetryDelay,
		bestQuery:  domain.Query{SortBy: opts.BestSortBy},
	}
}

// Rails returns the fixed rails in display order
func (s *HomeService) Rails() []*rail.Rail { return s.rails }

// CustomRail returns the genre-selectable rail, or nil
func (s *HomeService) CustomRail() *rail.Rail { return s.custom }

// AllRails returns the fixed rails followed by the custom rail
func (s *HomeService) AllRails() []*rail.Rail {
	all := append([]*rail.Rail(nil), s.rails...)
	if s.custom != nil {
		all = append(all, s.custom)
	}
	return all
}

// Rail finds a rail by id
func (s *HomeService) Rail(id string) *rail.Rail {
	for _, r := range s.AllRails() {
		if r.ID() == id {
			return r
		}
	}
	return nil
}

// LoadHome loads every rail concurrently. Failures stay scoped to their
// rail and are reported in its Outcome.
func (s *HomeService) LoadHome(ctx context.Context) []rail.Outcome {
	return s.loadRails(ctx, s.AllRails())
}

// LoadHomeWithGenre loads the fixed rails while binding the custom rail to
// genre. When genre cannot be resolved the custom rail loads its configured
// query and the resolution error is returned alongside the outcomes.
func (s *HomeService) LoadHomeWithGenre(ctx context.Context, genre string) ([]rail.Outcome, error) {
	if s.custom == nil || strings.TrimSpace(genre) == "" {
		return s.LoadHome(ctx), nil
	}

	var (
		fixed     []rail.Outcome
		customOut rail.Outcome
		selectErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fixed = s.loadRails(gctx, s.rails)
		return nil
	})
	g.Go(func() error {
		_, customOut, selectErr = s.SelectGenre(gctx, genre)
		if selectErr != nil {
			s.logger.Warn("genre selection failed", "genre", genre, "error", selectErr)
			customOut = s.custom.Load(gctx)
		}
		return nil
	})
	g.Wait()

	return append(fixed, customOut), selectErr
}

func (s *HomeService) loadRails(ctx context.Context, rails []*rail.Rail) []rail.Outcome {
	outcomes := make([]rail.Outcome, len(rails))

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range rails {
		g.Go(func() error {
			outcomes[i] = r.Load(gctx)
			return nil
		})
	}
	g.Wait()

	for _, out := range outcomes {
		s.logger.Info("rail loaded", "rail", out.RailID, "status", out.Status.String(), "items", len(out.All))
	}
	return outcomes
}

// BestMovie returns the top movie of the best-movie query, enriched with
// its detail record. A failed detail fetch degrades to the list fields.
func (s *HomeService) BestMovie(ctx context.Context) (domain.Feature, error) {
	page, err := retryCall(s, ctx, func() (domain.Page, error) {
		return s.repo.ListMovies(ctx, s.bestQuery, 1)
	})
	if err != nil {
		return domain.Feature{}, fmt.Errorf("failed to load best movie: %w", err)
	}
	if len(page.Items) == 0 {
		return domain.Feature{}, domain.ErrMovieNotFound
	}

	top := page.Items[0]
	feature := domain.Feature{Movie: domain.MovieDetail{MovieSummary: top}}

	if detail, err := s.MovieDetail(ctx, top.ID); err != nil {
		s.logger.Warn("best movie detail unavailable", "id", top.ID, "error", err)
	} else {
		feature.Movie = *detail
		if feature.Movie.ImageURL == "" {
			feature.Movie.ImageURL = top.ImageURL
		}
	}

	if s.prober != nil {
		feature.PosterOK = s.prober.IsLoadable(ctx, feature.Movie.ImageURL)
	}
	return feature, nil
}

// MovieDetail returns the full record for id, from cache when fresh
func (s *HomeService) MovieDetail(ctx context.Context, id string) (*domain.MovieDetail, error) {
	if s.store != nil {
		if movie, ok := s.store.GetMovie(id); ok {
			s.logger.Debug("cache hit", "movie", id)
			return movie, nil
		}
	}

	movie, err := retryCall(s, ctx, func() (*domain.MovieDetail, error) {
		return s.repo.GetMovie(ctx, id)
	})
	if err != nil {
		s.logger.Error("failed to get movie", "id", id, "error", err)
		return nil, err
	}

	if s.store != nil {
		if err := s.store.SaveMovie(movie); err != nil {
			s.logger.Warn("failed to cache movie", "id", id, "error", err)
		}
	}
	return movie, nil
}

// Refresh drops cached details, genres and poster verdicts
func (s *HomeService) Refresh() {
	if s.store != nil {
		s.store.InvalidateAll()
	}
	if p, ok := s.prober.(interface{ Purge() }); ok {
		p.Purge()
	}
}

// retryCall runs fn with the service's retry policy. Missing movies and
// invalid pages are never retried.
func retryCall[T any](s *HomeService, ctx context.Context, fn func() (T, error)) (T, error) {
	return retry.DoWithData(fn,
		retry.Context(ctx),
		retry.Attempts(uint(s.retries+1)),
		retry.Delay(s.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Debug("retrying catalog call", "attempt", n+1, "error", err)
		}),
	)
}

func retryable(err error) bool {
	if errors.Is(err, domain.ErrMovieNotFound) || errors.Is(err, domain.ErrInvalidPage) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
