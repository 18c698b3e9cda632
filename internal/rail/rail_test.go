package rail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	mlog "github.com/mmcdole/marquee/internal/log"
	"github.com/mmcdole/marquee/internal/paginator"
)

type fakeRepo struct {
	mu    sync.Mutex
	pages map[string][]domain.Page // by genre
	errs  map[string]error         // by "genre:page"
	calls []string
}

func (f *fakeRepo) ListMovies(ctx context.Context, q domain.Query, page int) (domain.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%s:%d", q.Genre, page)
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return domain.Page{}, err
	}
	pages := f.pages[q.Genre]
	if page > len(pages) {
		return domain.Page{}, &domain.TransportError{StatusCode: 404}
	}
	return pages[page-1], nil
}

func (f *fakeRepo) GetMovie(ctx context.Context, id string) (*domain.MovieDetail, error) {
	return nil, domain.ErrMovieNotFound
}

func (f *fakeRepo) ListGenres(ctx context.Context, page int) (domain.GenrePage, error) {
	return domain.GenrePage{}, nil
}

func (f *fakeRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// okProber accepts any URL starting with "ok:"
type okProber struct{}

func (okProber) IsLoadable(ctx context.Context, url string) bool {
	return strings.HasPrefix(url, "ok:")
}

func (p okProber) ProbeAll(ctx context.Context, urls []string) []bool {
	out := make([]bool, len(urls))
	for i, u := range urls {
		out[i] = p.IsLoadable(ctx, u)
	}
	return out
}

func page(prefix string, n int, hasNext bool) domain.Page {
	items := make([]domain.MovieSummary, n)
	for i := range items {
		id := fmt.Sprintf("%s%d", prefix, i+1)
		items[i] = domain.MovieSummary{ID: id, Title: id, ImageURL: "ok:" + id}
	}
	return domain.Page{Items: items, HasNext: hasNext}
}

func ids(items []domain.MovieSummary) string {
	out := make([]string, len(items))
	for i, m := range items {
		out[i] = m.ID
	}
	return strings.Join(out, ",")
}

func newRail(repo *fakeRepo, quota, batch int) *Rail {
	cfg := Config{ID: "test", Title: "Test", Query: domain.Query{SortBy: "-imdb_score"}, Quota: quota, Batch: batch}
	return New(cfg, repo, paginator.New(okProber{}, mlog.NullLogger()), mlog.NullLogger())
}

func TestRail_LoadAndShowMore(t *testing.T) {
	repo := &fakeRepo{pages: map[string][]domain.Page{
		"": {page("a", 3, true), page("b", 3, true), page("c", 2, false)},
	}}
	r := newRail(repo, 3, 2)

	if v := r.Snapshot(); v.State != StateIdle || v.CanShowMore {
		t.Fatalf("initial view = %+v", v)
	}

	out := r.Load(context.Background())
	if out.Status != OutcomeOK || ids(out.Items) != "a1,a2,a3" {
		t.Fatalf("load = %+v", out)
	}
	if !r.CanShowMore() {
		t.Fatal("loaded rail should offer show more")
	}

	out = r.ShowMore(context.Background())
	if out.Status != OutcomeOK || ids(out.Items) != "b1,b2" || ids(out.All) != "a1,a2,a3,b1,b2" {
		t.Fatalf("show more = %+v", out)
	}

	// b3 was on a consumed page; next batch starts at page 3
	out = r.ShowMore(context.Background())
	if ids(out.Items) != "c1,c2" || !out.Exhausted {
		t.Fatalf("final show more = %+v", out)
	}
	if r.CanShowMore() {
		t.Fatal("exhausted rail should not offer show more")
	}

	calls := repo.callCount()
	out = r.ShowMore(context.Background())
	if out.Status != OutcomeExhausted || len(out.All) != 7 {
		t.Fatalf("exhausted show more = %+v", out)
	}
	if repo.callCount() != calls {
		t.Fatal("show more on an exhausted rail fetched")
	}
}

func TestRail_SetGenreResetsCursor(t *testing.T) {
	repo := &fakeRepo{pages: map[string][]domain.Page{
		"Action": {page("act", 2, true), page("act-p2-", 2, false)},
		"Drama":  {page("dr", 4, false)},
	}}
	cfg := Config{ID: "custom", Query: domain.Query{Genre: "Action"}, Quota: 2}
	r := New(cfg, repo, paginator.New(okProber{}, mlog.NullLogger()), mlog.NullLogger())

	r.Load(context.Background())
	r.ShowMore(context.Background())
	if v := r.Snapshot(); v.Cursor.NextPage != 3 {
		t.Fatalf("cursor = %+v", v.Cursor)
	}

	out := r.SetGenre(context.Background(), "Drama")
	if out.Status != OutcomeOK || ids(out.All) != "dr1,dr2" {
		t.Fatalf("set genre = %+v", out)
	}
	v := r.Snapshot()
	if v.Query.Genre != "Drama" || v.Cursor.NextPage != 2 {
		t.Fatalf("view = %+v", v)
	}
	if last := repo.calls[len(repo.calls)-1]; last != "Drama:1" {
		t.Fatalf("last call = %s", last)
	}
}

func TestRail_PartialFailure(t *testing.T) {
	repo := &fakeRepo{
		pages: map[string][]domain.Page{"": {page("a", 2, true), page("b", 2, false)}},
		errs:  map[string]error{":2": &domain.TransportError{StatusCode: 503}},
	}
	r := newRail(repo, 4, 4)

	out := r.Load(context.Background())
	if out.Status != OutcomePartial || ids(out.Items) != "a1,a2" {
		t.Fatalf("load = %+v", out)
	}
	var te *domain.TransportError
	if !errors.As(out.Err, &te) {
		t.Fatalf("err = %v", out.Err)
	}
	v := r.Snapshot()
	if v.State != StateLoaded || v.CanShowMore || v.Err == nil {
		t.Fatalf("view = %+v", v)
	}
}

func TestRail_Failure(t *testing.T) {
	repo := &fakeRepo{
		pages: map[string][]domain.Page{"": {page("a", 2, false)}},
		errs:  map[string]error{":1": &domain.TransportError{StatusCode: 500}},
	}
	r := newRail(repo, 2, 2)

	out := r.Load(context.Background())
	if out.Status != OutcomeFailed || out.Err == nil || len(out.All) != 0 {
		t.Fatalf("load = %+v", out)
	}
	if v := r.Snapshot(); v.State != StateFailed {
		t.Fatalf("state = %v", v.State)
	}

	// a reload recovers
	delete(repo.errs, ":1")
	if out := r.Load(context.Background()); out.Status != OutcomeOK || r.Snapshot().State != StateLoaded {
		t.Fatalf("reload = %+v", out)
	}
}

func TestRail_ShowMoreFailureKeepsItems(t *testing.T) {
	repo := &fakeRepo{
		pages: map[string][]domain.Page{"": {page("a", 2, true), page("b", 2, false)}},
		errs:  map[string]error{":2": &domain.TransportError{StatusCode: 500}},
	}
	r := newRail(repo, 2, 2)
	r.Load(context.Background())

	out := r.ShowMore(context.Background())
	if out.Status != OutcomeFailed || ids(out.All) != "a1,a2" {
		t.Fatalf("show more = %+v", out)
	}
	if v := r.Snapshot(); v.State != StateLoaded || len(v.Items) != 2 {
		t.Fatalf("view = %+v", v)
	}
}

func TestRail_ShowMoreOnIdleLoads(t *testing.T) {
	repo := &fakeRepo{pages: map[string][]domain.Page{"": {page("a", 5, false)}}}
	r := newRail(repo, 3, 1)

	out := r.ShowMore(context.Background())
	if out.Status != OutcomeOK || len(out.Items) != 3 {
		t.Fatalf("show more on idle = %+v", out)
	}
}

// gateFiller blocks its first call until released
type gateFiller struct {
	inner    Filler
	entered  chan struct{}
	release  chan struct{}
	mu       sync.Mutex
	calls    int
	firstCtx context.Context
}

func (g *gateFiller) Fill(ctx context.Context, src domain.PageSource, quota int, cursor domain.Cursor) (paginator.Result, error) {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	if first {
		g.firstCtx = ctx
	}
	g.mu.Unlock()

	if first {
		close(g.entered)
		<-g.release
		// report what the slow query would have produced
		return paginator.Result{
			Items:  []domain.MovieSummary{{ID: "stale"}},
			Cursor: domain.Cursor{NextPage: 9},
		}, nil
	}
	return g.inner.Fill(ctx, src, quota, cursor)
}

func TestRail_StaleFillIsDiscarded(t *testing.T) {
	repo := &fakeRepo{pages: map[string][]domain.Page{
		"Drama":  {page("dr", 2, false)},
		"Comedy": {page("co", 2, false)},
	}}
	gate := &gateFiller{
		inner:   paginator.New(okProber{}, mlog.NullLogger()),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	r := New(Config{ID: "custom", Query: domain.Query{Genre: "Drama"}, Quota: 2}, repo, gate, mlog.NullLogger())

	firstDone := make(chan Outcome, 1)
	go func() { firstDone <- r.Load(context.Background()) }()
	<-gate.entered

	second := r.SetGenre(context.Background(), "Comedy")
	if second.Status != OutcomeOK || ids(second.All) != "co1,co2" {
		t.Fatalf("second = %+v", second)
	}

	select {
	case <-gate.firstCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded fill was not cancelled")
	}

	close(gate.release)
	first := <-firstDone
	if first.Status != OutcomeStale {
		t.Fatalf("first = %+v", first)
	}

	v := r.Snapshot()
	if ids(v.Items) != "co1,co2" || v.Cursor.NextPage == 9 || v.Query.Genre != "Comedy" {
		t.Fatalf("stale fill leaked into view: %+v", v)
	}
}

func TestRail_ShowMoreDuringReloadIsStale(t *testing.T) {
	repo := &fakeRepo{pages: map[string][]domain.Page{"": {page("a", 4, false)}}}
	gate := &gateFiller{
		inner:   paginator.New(okProber{}, mlog.NullLogger()),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	r := New(Config{ID: "top", Quota: 2}, repo, gate, mlog.NullLogger())

	done := make(chan Outcome, 1)
	go func() { done <- r.Load(context.Background()) }()
	<-gate.entered

	if out := r.ShowMore(context.Background()); out.Status != OutcomeStale {
		t.Fatalf("show more during reload = %+v", out)
	}
	if r.CanShowMore() {
		t.Fatal("loading rail offered show more")
	}

	close(gate.release)
	if out := <-done; out.Status != OutcomeOK {
		t.Fatalf("load = %+v", out)
	}
}

func TestStatusStrings(t *testing.T) {
	if OutcomePartial.String() != "partial" || StateFailed.String() != "failed" {
		t.Fatal("unexpected String output")
	}
}
