// Package transport performs single HTTP GET requests against the Graph API
// and classifies failures into the domain error taxonomy.
//
// Transport does not retry: retry policy belongs to the batch orchestrator,
// which can tell retry-worthy failures (network errors, 429, 5xx) from
// terminal ones (404 and other 4xx).
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/scholarkit/scholargraph/domain"
	"github.com/scholarkit/scholargraph/observability"
)

const (
	// maxBodyBytes bounds successful response bodies.
	maxBodyBytes = 10 << 20

	// maxErrorBodyBytes bounds error response bodies.
	maxErrorBodyBytes = 1 << 20

	// apiKeyHeader is the header name for the Semantic Scholar API key.
	apiKeyHeader = "x-api-key"
)

// Config configures the transport.
type Config struct {
	// BaseURL is the API base URL, e.g. "https://api.semanticscholar.org/graph/v1".
	BaseURL string

	// APIKey is an optional API key sent in the x-api-key header.
	APIKey string

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// Client issues one outbound GET per call. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	cfg     Config
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// errorResponse is the JSON error body shape returned by the API.
type errorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// New creates a transport client. httpClient may be nil, in which case a
// client with the configured timeout is used. metrics may be nil.
func New(cfg Config, httpClient *http.Client, logger zerolog.Logger, metrics *observability.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		http:    httpClient,
		cfg:     cfg,
		logger:  logger.With().Str("component", "transport").Logger(),
		metrics: metrics,
	}
}

// Get performs one GET against path (relative to the base URL, e.g.
// "paper/search") with the given query parameters and decodes the JSON
// response into v.
//
// Failures are classified: request that never produced a response ->
// *domain.NetworkError; non-2xx response -> *domain.HTTPError; malformed
// body -> *domain.DecodeError. Context cancellation of the caller is
// passed through unwrapped so orchestration layers can recognize it.
func (c *Client) Get(ctx context.Context, path string, query url.Values, v any) error {
	reqURL := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.cfg.APIKey != "" {
		req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	}

	endpoint := endpointLabel(path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		// Caller cancellation is not a transport failure.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.observe(endpoint, "network", time.Since(start))
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("request failed")
		return domain.NewNetworkError("get "+endpoint, err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := c.toHTTPError(resp)
		c.observe(endpoint, statusReason(resp.StatusCode), elapsed)
		if resp.StatusCode == http.StatusTooManyRequests && c.metrics != nil {
			c.metrics.RateLimitedTotal.Inc()
		}
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("endpoint", endpoint).
			Dur("elapsed", elapsed).
			Msg("request rejected")
		return httpErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.observe(endpoint, "network", elapsed)
		return domain.NewNetworkError("read "+endpoint, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		c.observe(endpoint, "decode", elapsed)
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("response decode failed")
		return domain.NewDecodeError(endpoint, err)
	}

	if c.metrics != nil {
		c.metrics.APIRequestsTotal.WithLabelValues(endpoint).Inc()
		c.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	}
	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("request completed")
	return nil
}

// toHTTPError builds a domain.HTTPError from a non-2xx response.
func (c *Client) toHTTPError(resp *http.Response) *domain.HTTPError {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	message := ""
	if err == nil {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil {
			message = errResp.Error
			if message == "" {
				message = errResp.Message
			}
		}
		if message == "" {
			message = strings.TrimSpace(string(body))
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return domain.NewHTTPError(resp.StatusCode, message, retryAfter(resp))
}

// retryAfter parses the Retry-After header as delay seconds or an HTTP date.
func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.ParseInt(header, 10, 64); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}
	return 0
}

// observe records a failed request in the metrics, when wired.
func (c *Client) observe(endpoint, reason string, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.APIRequestsTotal.WithLabelValues(endpoint).Inc()
	c.metrics.APIRequestsFailed.WithLabelValues(endpoint, reason).Inc()
	c.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// statusReason maps an HTTP status to a failure reason label.
func statusReason(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status >= 500:
		return "http_5xx"
	default:
		return "http_4xx"
	}
}

// endpointLabel collapses id-bearing paths to a stable label to keep metric
// cardinality bounded: "paper/DOI:10.1038/abc" -> "paper/:id".
func endpointLabel(path string) string {
	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 2 {
		return path
	}
	if parts[1] == "search" {
		return parts[0] + "/search"
	}
	return parts[0] + "/:id"
}
