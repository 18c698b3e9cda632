// Package rail drives one homepage rail: its query, its cursor and the
// items it has accepted so far.
package rail

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/paginator"
)

// State is the lifecycle of a rail
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Status classifies the result of one trigger
type Status int

const (
	OutcomeOK        Status = iota // quota met or source ran out cleanly
	OutcomePartial                 // some items plus an error
	OutcomeFailed                  // no items plus an error
	OutcomeStale                   // superseded by a newer trigger, nothing applied
	OutcomeExhausted               // nothing left to fetch, no request made
)

func (s Status) String() string {
	switch s {
	case OutcomeOK:
		return "ok"
	case OutcomePartial:
		return "partial"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	case OutcomeExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Outcome is what a trigger produced
type Outcome struct {
	RailID     string
	Status     Status
	Items      []domain.MovieSummary // accepted by this trigger
	All        []domain.MovieSummary // everything the rail now shows
	Err        error
	Exhausted  bool
	Generation uint64
}

// Config describes one rail
type Config struct {
	ID    string
	Title string
	Query domain.Query
	Quota int // items on load
	Batch int // items per ShowMore
}

// View is a point-in-time copy of a rail's state
type View struct {
	ID          string
	Title       string
	Query       domain.Query
	State       State
	Items       []domain.MovieSummary
	Cursor      domain.Cursor
	Err         error
	Generation  uint64
	CanShowMore bool
}

// Filler is the paginator contract a rail needs
type Filler interface {
	Fill(ctx context.Context, src domain.PageSource, quota int, cursor domain.Cursor) (paginator.Result, error)
}

// Rail is a single parameterized rail controller. Every trigger bumps a
// generation and cancels the fill it supersedes; results that come back
// under an older generation are dropped.
type Rail struct {
	cfg    Config
	repo   domain.CatalogRepository
	filler Filler
	logger *slog.Logger

	mu        sync.Mutex
	query     domain.Query
	cursor    domain.Cursor
	state     State
	items     []domain.MovieSummary
	lastErr   error
	gen       uint64
	cancel    context.CancelFunc
	replacing bool // in-flight fill replaces items
}

// New creates an idle rail
func New(cfg Config, repo domain.CatalogRepository, filler Filler, logger *slog.Logger) *Rail {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Batch <= 0 {
		cfg.Batch = cfg.Quota
	}
	return &Rail{
		cfg:    cfg,
		repo:   repo,
		filler: filler,
		logger: logger.With("rail", cfg.ID),
		query:  cfg.Query,
		cursor: domain.NewCursor(),
	}
}

// ID returns the rail identifier
func (r *Rail) ID() string { return r.cfg.ID }

// Title returns the configured title
func (r *Rail) Title() string { return r.cfg.Title }

// Query returns the current query
func (r *Rail) Query() domain.Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.query
}

// Load resets the cursor and fills the rail's quota, replacing its items
func (r *Rail) Load(ctx context.Context) Outcome {
	r.mu.Lock()
	query := r.query
	r.mu.Unlock()
	return r.replace(ctx, query)
}

// SetGenre switches the rail to genre and reloads it from the first page
func (r *Rail) SetGenre(ctx context.Context, genre string) Outcome {
	r.mu.Lock()
	r.query = r.query.WithGenre(genre)
	query := r.query
	r.mu.Unlock()
	return r.replace(ctx, query)
}

// ShowMore fills one batch from the stored cursor and appends it.
// An exhausted rail answers OutcomeExhausted without fetching.
func (r *Rail) ShowMore(ctx context.Context) Outcome {
	r.mu.Lock()
	switch {
	case r.state == StateIdle:
		query := r.query
		r.mu.Unlock()
		return r.replace(ctx, query)
	case r.state == StateLoading && r.replacing:
		// the reload in flight supersedes this request
		gen := r.gen
		r.mu.Unlock()
		return Outcome{RailID: r.cfg.ID, Status: OutcomeStale, Generation: gen}
	case r.cursor.Exhausted:
		out := Outcome{
			RailID:     r.cfg.ID,
			Status:     OutcomeExhausted,
			All:        cloneItems(r.items),
			Exhausted:  true,
			Generation: r.gen,
		}
		r.mu.Unlock()
		return out
	}

	ctx, gen := r.begin(ctx, false)
	query, cursor := r.query, r.cursor
	r.mu.Unlock()

	return r.run(ctx, gen, query, r.cfg.Batch, cursor, false)
}

func (r *Rail) replace(ctx context.Context, query domain.Query) Outcome {
	r.mu.Lock()
	ctx, gen := r.begin(ctx, true)
	r.mu.Unlock()

	return r.run(ctx, gen, query, r.cfg.Quota, domain.NewCursor(), true)
}

// begin starts a new generation, cancelling the previous fill. r.mu must be held.
func (r *Rail) begin(parent context.Context, replacing bool) (context.Context, uint64) {
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	r.gen++
	r.cancel = cancel
	r.state = StateLoading
	r.replacing = replacing
	return ctx, r.gen
}

func (r *Rail) run(ctx context.Context, gen uint64, query domain.Query, quota int, cursor domain.Cursor, replacing bool) Outcome {
	src := catalog.ListSource{Repo: r.repo, Query: query}
	res, err := r.filler.Fill(ctx, src, quota, cursor)

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen {
		r.logger.Debug("discarding stale fill", "generation", gen, "current", r.gen)
		return Outcome{RailID: r.cfg.ID, Status: OutcomeStale, Generation: gen}
	}
	r.cancel()
	r.cancel = nil
	r.replacing = false

	if replacing {
		r.items = cloneItems(res.Items)
	} else {
		r.items = append(r.items, res.Items...)
	}
	r.cursor = res.Cursor
	r.lastErr = err

	out := Outcome{
		RailID:     r.cfg.ID,
		Status:     OutcomeOK,
		Items:      res.Items,
		All:        cloneItems(r.items),
		Err:        err,
		Exhausted:  res.Cursor.Exhausted,
		Generation: gen,
	}

	switch {
	case err == nil:
		r.state = StateLoaded
	case len(res.Items) > 0:
		out.Status = OutcomePartial
		r.state = StateLoaded
	default:
		out.Status = OutcomeFailed
		if len(r.items) == 0 {
			r.state = StateFailed
		} else {
			r.state = StateLoaded
		}
	}

	if err != nil {
		r.logger.Warn("rail fill failed", "status", out.Status.String(), "items", len(res.Items), "error", err)
	} else {
		r.logger.Debug("rail filled", "items", len(res.Items), "total", len(r.items), "exhausted", res.Cursor.Exhausted)
	}
	return out
}

// CanShowMore reports whether a ShowMore could add items
func (r *Rail) CanShowMore() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canShowMore()
}

func (r *Rail) canShowMore() bool {
	return r.state == StateLoaded && !r.cursor.Exhausted && r.lastErr == nil
}

// Snapshot returns a copy of the rail's state
func (r *Rail) Snapshot() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return View{
		ID:          r.cfg.ID,
		Title:       r.cfg.Title,
		Query:       r.query,
		State:       r.state,
		Items:       cloneItems(r.items),
		Cursor:      r.cursor,
		Err:         r.lastErr,
		Generation:  r.gen,
		CanShowMore: r.canShowMore(),
	}
}

func cloneItems(items []domain.MovieSummary) []domain.MovieSummary {
	if items == nil {
		return nil
	}
	return append([]domain.MovieSummary(nil), items...)
}
