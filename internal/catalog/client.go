package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Marquee/1.0"
	maxErrorBody   = 4 << 10
)

// Options configures a catalog Client
type Options struct {
	TitlesURL         string        // list and detail endpoint, e.g. http://host/api/v1/titles/
	GenresURL         string        // genre endpoint, e.g. http://host/api/v1/genres/
	Timeout           time.Duration // per request; 0 uses the default
	RequestsPerSecond float64       // 0 disables throttling
	PageSize          int           // sent as page_size when > 0
	HTTPClient        *http.Client  // optional, overrides Timeout
}

// Client implements domain.CatalogRepository for the titles/genres REST API.
// Every call is a single attempt; retry policy belongs to the caller.
type Client struct {
	titlesURL  string
	genresURL  string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a new catalog API client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		titlesURL:  withTrailingSlash(opts.TitlesURL),
		genresURL:  withTrailingSlash(opts.GenresURL),
		pageSize:   opts.PageSize,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}
}

func withTrailingSlash(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

// getJSON performs a throttled GET and decodes a 2xx JSON body into dest.
// Network failures and non-2xx answers become *domain.TransportError.
func (c *Client) getJSON(ctx context.Context, reqURL string, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			// the limiter refuses waits that would outlive the deadline
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return &domain.TransportError{URL: reqURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("catalog request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("catalog request failed", "url", reqURL, "error", err)
		return &domain.TransportError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("catalog request error", "url", reqURL, "status", resp.StatusCode, "body", string(body))
		return &domain.TransportError{URL: reqURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("catalog response interrupted", "url", reqURL, "error", err)
		return &domain.TransportError{URL: reqURL, Err: err}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "url", reqURL, "error", err)
		return fmt.Errorf("failed to parse response from %s: %w", reqURL, err)
	}
	return nil
}

// ListMovies returns one page of titles matching q
func (c *Client) ListMovies(ctx context.Context, q domain.Query, page int) (domain.Page, error) {
	if page < 1 {
		return domain.Page{}, domain.ErrInvalidPage
	}

	query := url.Values{}
	if q.SortBy != "" {
		query.Set("sort_by", q.SortBy)
	}
	if q.Genre != "" {
		query.Set("genre", q.Genre)
	}
	if c.pageSize > 0 {
		query.Set("page_size", strconv.Itoa(c.pageSize))
	}
	query.Set("page", strconv.Itoa(page))

	var resp listResponse
	if err := c.getJSON(ctx, c.titlesURL+"?"+query.Encode(), &resp); err != nil {
		return domain.Page{}, err
	}

	return domain.Page{
		Items:   MapSummaries(resp.Results),
		HasNext: hasNext(resp.Next),
	}, nil
}

// GetMovie returns the full record for one title
func (c *Client) GetMovie(ctx context.Context, id string) (*domain.MovieDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrMovieNotFound
	}

	var resp detailDTO
	if err := c.getJSON(ctx, c.titlesURL+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return MapDetail(resp), nil
}

// ListGenres returns one page of genres
func (c *Client) ListGenres(ctx context.Context, page int) (domain.GenrePage, error) {
	if page < 1 {
		return domain.GenrePage{}, domain.ErrInvalidPage
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))

	var resp genreListResponse
	if err := c.getJSON(ctx, c.genresURL+"?"+query.Encode(), &resp); err != nil {
		return domain.GenrePage{}, err
	}

	return domain.GenrePage{
		Genres:  MapGenres(resp.Results),
		HasNext: hasNext(resp.Next),
	}, nil
}

// ListSource binds a query to the client so a paginator can pull pages
type ListSource struct {
	Repo  domain.CatalogRepository
	Query domain.Query
}

// FetchPage implements domain.PageSource
func (s ListSource) FetchPage(ctx context.Context, page int) (domain.Page, error) {
	return s.Repo.ListMovies(ctx, s.Query, page)
}
