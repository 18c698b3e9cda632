// Package imageprobe decides whether poster URLs resolve to loadable images.
package imageprobe

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/sourcegraph/conc/pool"
	_ "golang.org/x/image/webp"
)

const (
	defaultTimeout     = 5 * time.Second
	defaultConcurrency = 8
	defaultCacheSize   = 1024
	defaultMaxBytes    = 512 << 10
)

// decodable lists the sniffed types whose header must decode
var decodable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Options configures a Validator
type Options struct {
	Timeout     time.Duration // per probe
	Concurrency int           // max probes in flight for ProbeAll
	CacheSize   int           // in-memory verdicts
	MaxBytes    int64         // bytes read from each response
	Store       domain.Store  // optional persistent verdicts
	HTTPClient  *http.Client
}

// Validator implements domain.Prober over HTTP
type Validator struct {
	client      *http.Client
	timeout     time.Duration
	concurrency int
	maxBytes    int64
	cache       *lru.Cache[string, bool]
	store       domain.Store
	logger      *slog.Logger
}

// New creates a Validator; zero options fall back to defaults
func New(opts Options, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	// only errors on a non-positive size
	cache, _ := lru.New[string, bool](opts.CacheSize)

	return &Validator{
		client:      client,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		maxBytes:    opts.MaxBytes,
		cache:       cache,
		store:       opts.Store,
		logger:      logger,
	}
}

// IsLoadable reports whether rawURL serves an image. It never fails:
// every problem, including the probe timeout, is a false verdict.
func (v *Validator) IsLoadable(ctx context.Context, rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	if !validURL(rawURL) {
		return false
	}

	if ok, hit := v.cache.Get(rawURL); hit {
		return ok
	}
	if v.store != nil {
		if ok, hit := v.store.GetVerdict(rawURL); hit {
			v.cache.Add(rawURL, ok)
			return ok
		}
	}

	ok, definitive, reason := v.probe(ctx, rawURL)
	if ctx.Err() != nil {
		// a cancelled caller says nothing about the image
		return false
	}
	if !ok {
		v.logger.Debug("poster not loadable", "url", rawURL, "reason", reason, "definitive", definitive)
	}
	if !definitive {
		return ok
	}

	v.cache.Add(rawURL, ok)
	if v.store != nil {
		if err := v.store.SaveVerdict(rawURL, ok); err != nil {
			v.logger.Warn("failed to persist probe verdict", "url", rawURL, "error", err)
		}
	}
	return ok
}

// Purge drops every in-memory verdict
func (v *Validator) Purge() {
	v.cache.Purge()
}

// ProbeAll probes urls concurrently and returns verdicts in input order
// once every probe has settled.
func (v *Validator) ProbeAll(ctx context.Context, urls []string) []bool {
	verdicts := make([]bool, len(urls))
	if len(urls) == 0 {
		return verdicts
	}

	p := pool.New().WithMaxGoroutines(v.concurrency)
	for i, u := range urls {
		p.Go(func() {
			verdicts[i] = v.IsLoadable(ctx, u)
		})
	}
	p.Wait()
	return verdicts
}

// probe fetches the head of rawURL. definitive is false for failures that
// may clear on retry: timeouts, transport errors, 5xx, 408 and 429.
func (v *Validator) probe(ctx context.Context, rawURL string) (ok, definitive bool, reason string) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, true, "bad request"
	}
	req.Header.Set("Accept", "image/*")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, false, err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, !transientStatus(resp.StatusCode), resp.Status
	}

	head, err := io.ReadAll(io.LimitReader(resp.Body, v.maxBytes))
	if err != nil && len(head) == 0 {
		return false, false, err.Error()
	}
	ok, reason = Sniff(head)
	return ok, true, reason
}

func transientStatus(code int) bool {
	return code >= 500 || code == http.StatusRequestTimeout || code == http.StatusTooManyRequests
}

// Sniff reports whether data starts like an image, with the reason when not
func Sniff(data []byte) (bool, string) {
	if len(data) == 0 {
		return false, "empty body"
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return false, "content is " + mt.String()
	}

	mime := strings.SplitN(mt.String(), ";", 2)[0]
	if decodable[mime] {
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return false, "undecodable " + mime
		}
	}
	return true, ""
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
