package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/climate-graph/internal/domain"
	"github.com/couchcryptid/climate-graph/internal/observability"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrUpstreamUnavailable is returned while the circuit breaker rejects calls.
var ErrUpstreamUnavailable = errors.New("wikipedia upstream unavailable")

const maxResponseBytes = 32 << 20

// Client implements domain.PageFetcher using the MediaWiki revisions API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a MediaWiki client. A requestsPerSecond of zero disables
// rate limiting.
func NewClient(baseURL, userAgent string, timeout time.Duration, requestsPerSecond float64, metrics *observability.Metrics, logger *slog.Logger) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		breaker: newBreaker(metrics, logger),
		metrics: metrics,
		logger:  logger,
	}
}

func newBreaker(metrics *observability.Metrics, logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "wikipedia",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// Client errors mean the request was bad, not that the API is down.
			var se *statusError
			return errors.As(err, &se) && se.code >= 400 && se.code < 500 && se.code != http.StatusTooManyRequests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.Set(float64(to))
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// FetchPage retrieves the current wikitext of title, following redirects.
// A missing page is returned with Found=false and a nil error.
func (c *Client) FetchPage(ctx context.Context, title string) (domain.Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Page{}, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"action":    {"query"},
		"prop":      {"revisions"},
		"rvprop":    {"content"},
		"rvslots":   {"main"},
		"redirects": {"true"},
		"format":    {"json"},
		"titles":    {title},
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	})
	c.metrics.PageFetchLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.PageFetches.WithLabelValues("error").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.Page{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
		return domain.Page{}, err
	}

	page, err := decodePage(title, body)
	if err != nil {
		c.metrics.PageFetches.WithLabelValues("error").Inc()
		return domain.Page{}, err
	}
	if page.Found {
		c.metrics.PageFetches.WithLabelValues("found").Inc()
	} else {
		c.metrics.PageFetches.WithLabelValues("missing").Inc()
	}
	c.logger.Debug("page fetched", "title", title, "canonical", page.Title, "found", page.Found)
	return page, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{code: resp.StatusCode, body: string(body)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("mediawiki API error: status %d: %s", e.code, e.body)
}

// decodePage picks the first page of a revisions query. Missing and invalid
// titles come back as pages without revisions.
func decodePage(requested string, body []byte) (domain.Page, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Page{}, fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != nil {
		return domain.Page{}, fmt.Errorf("mediawiki API error: %s: %s", resp.Error.Code, resp.Error.Info)
	}

	for _, p := range resp.Query.Pages {
		if len(p.Revisions) == 0 {
			return domain.Page{Title: requested}, nil
		}
		return domain.Page{Title: p.Title, Body: p.Revisions[0].content(), Found: true}, nil
	}
	return domain.Page{Title: requested}, nil
}

// MediaWiki API response types (formatversion=1).

type response struct {
	Error *apiError `json:"error"`
	Query struct {
		Pages map[string]page `json:"pages"`
	} `json:"query"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type page struct {
	Title     string     `json:"title"`
	Revisions []revision `json:"revisions"`
}

type revision struct {
	Legacy string `json:"*"`
	Slots  struct {
		Main struct {
			Content string `json:"*"`
		} `json:"main"`
	} `json:"slots"`
}

func (r revision) content() string {
	if r.Slots.Main.Content != "" {
		return r.Slots.Main.Content
	}
	return r.Legacy
}
