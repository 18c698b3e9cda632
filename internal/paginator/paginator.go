// Package paginator fills a display quota of movies with loadable posters,
// fetching further pages to replace items whose posters are broken.
package paginator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mmcdole/marquee/internal/domain"
)

// Result is the outcome of one Fill
type Result struct {
	Items        []domain.MovieSummary // accepted items, never more than the quota
	Cursor       domain.Cursor         // cursor to store for the next fill
	PagesFetched int
	Probed       int // poster probes issued
}

// Paginator runs quota fills against any page source
type Paginator struct {
	prober domain.Prober
	logger *slog.Logger
}

// New creates a Paginator that validates posters with prober
func New(prober domain.Prober, logger *slog.Logger) *Paginator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Paginator{prober: prober, logger: logger}
}

// Fill fetches pages from src starting at cursor.NextPage until quota
// items with loadable posters are accepted or the source runs out.
//
// Pages are fetched one at a time. A fetched page counts as consumed even
// when the quota is met partway through it, and a page without a
// successor exhausts the cursor regardless of the quota.
//
// A fetch error stops the fill. The items accepted so far are returned
// with the error and the cursor stays on the failed page.
func (p *Paginator) Fill(ctx context.Context, src domain.PageSource, quota int, cursor domain.Cursor) (Result, error) {
	res := Result{Cursor: cursor}
	if quota <= 0 || cursor.Exhausted {
		return res, nil
	}
	if res.Cursor.NextPage < 1 {
		res.Cursor.NextPage = 1
	}

	logger := p.logger.With("fill_id", uuid.NewString())
	logger.Debug("fill started", "quota", quota, "page", res.Cursor.NextPage)

	for len(res.Items) < quota && !res.Cursor.Exhausted {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		pageIdx := res.Cursor.NextPage
		page, err := src.FetchPage(ctx, pageIdx)
		if err != nil {
			logger.Warn("page fetch failed", "page", pageIdx, "accepted", len(res.Items), "error", err)
			return res, fmt.Errorf("fetch page %d: %w", pageIdx, err)
		}
		res.PagesFetched++

		accepted, probed := p.accept(ctx, page.Items, quota-len(res.Items))
		res.Probed += probed
		if err := ctx.Err(); err != nil {
			// verdicts from a cancelled wave are unreliable; leave the page unconsumed
			return res, err
		}

		res.Items = append(res.Items, accepted...)
		res.Cursor.Advance(page.HasNext)

		logger.Debug("page consumed",
			"page", pageIdx,
			"items", len(page.Items),
			"accepted", len(accepted),
			"total", len(res.Items),
			"has_next", page.HasNext,
		)
	}

	logger.Info("fill finished",
		"accepted", len(res.Items),
		"quota", quota,
		"pages", res.PagesFetched,
		"probed", res.Probed,
		"exhausted", res.Cursor.Exhausted,
	)
	return res, nil
}

// accept validates items in waves. Each wave probes exactly as many
// unvalidated items as are still needed, so nothing past the point where
// need is met gets probed.
func (p *Paginator) accept(ctx context.Context, items []domain.MovieSummary, need int) ([]domain.MovieSummary, int) {
	var accepted []domain.MovieSummary
	probed := 0

	for next := 0; len(accepted) < need && next < len(items); {
		end := min(next+need-len(accepted), len(items))
		wave := items[next:end]

		urls := make([]string, len(wave))
		for i, m := range wave {
			urls[i] = m.ImageURL
		}
		for i, ok := range p.prober.ProbeAll(ctx, urls) {
			if ok {
				accepted = append(accepted, wave[i])
			}
		}

		probed += len(wave)
		next = end
		if ctx.Err() != nil {
			break
		}
	}
	return accepted, probed
}
