// Package scholargraph is a client for the Semantic Scholar Graph API.
//
// The client fetches paper and author metadata and maps JSON responses into
// the typed records of the domain package. Batch lookups over many
// independent keys (keywords, author names, identifiers) fan out concurrent
// requests through a shared rate limiter, retry transient failures with
// backoff, and always return one outcome per key: a single failing key never
// aborts the rest of the batch.
//
// Construct a client from defaults and look up a paper:
//
//	client, err := scholargraph.New(config.Default())
//	if err != nil {
//	    return err
//	}
//	paper, err := client.GetPaperByTitle(ctx, "Attention Is All You Need")
package scholargraph

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/scholarkit/scholargraph/config"
	"github.com/scholarkit/scholargraph/internal/batch"
	"github.com/scholarkit/scholargraph/internal/ratelimit"
	"github.com/scholarkit/scholargraph/internal/transport"
	"github.com/scholarkit/scholargraph/match"
	"github.com/scholarkit/scholargraph/observability"
)

// Field lists requested from the API per record shape. These mirror the
// documented Graph API field sets.
const (
	paperFields = "paperId,externalIds,url,title,abstract,venue,year," +
		"referenceCount,citationCount,influentialCitationCount,isOpenAccess," +
		"fieldsOfStudy,authors"

	detailedPaperFields = paperFields + ",publicationDate,journal,citations,references"

	authorFields = "authorId,externalIds,url,name,aliases,affiliations," +
		"homepage,paperCount,citationCount,hIndex,papers"
)

// Client is the entry point for all lookups. It is safe for concurrent use;
// all concurrent callers share one rate budget.
type Client struct {
	cfg     config.Config
	http    *transport.Client
	limiter *ratelimit.Limiter
	matcher match.Matcher
	logger  zerolog.Logger
	metrics *observability.Metrics
}

type options struct {
	logger     *zerolog.Logger
	matcher    match.Matcher
	httpClient *http.Client
	registerer prometheus.Registerer
}

// Option customizes client construction.
type Option func(*options)

// WithLogger replaces the logger built from cfg.Logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

// WithMatcher replaces the default Levenshtein title matcher.
func WithMatcher(m match.Matcher) Option {
	return func(o *options) { o.matcher = m }
}

// WithHTTPClient replaces the underlying HTTP client, e.g. to install a
// custom transport or for testing.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithMetricsRegisterer sets the Prometheus registerer used when
// cfg.Metrics.Enabled is true. Defaults to the global registry.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// New creates a client. The configuration is validated before any resource
// is built; invalid configuration is a programming error and fails fast.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var logger zerolog.Logger
	if o.logger != nil {
		logger = *o.logger
	} else {
		logger = observability.NewLogger(observability.LoggingConfig{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			Output:    cfg.Logging.Output,
			AddSource: cfg.Logging.AddSource,
		})
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(o.registerer, cfg.Metrics.Namespace)
	}

	matcher := o.matcher
	if matcher == nil {
		matcher = match.TitleMatcher{}
	}

	limiter := ratelimit.New(ratelimit.Config{
		MaxConcurrent:     cfg.MaxConcurrentRequests,
		RequestsPerWindow: cfg.RequestsPerWindow,
		Window:            cfg.WindowDuration,
	})

	return &Client{
		cfg: cfg,
		http: transport.New(transport.Config{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
		}, o.httpClient, logger, metrics),
		limiter: limiter,
		matcher: matcher,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// searchPage is the pagination envelope wrapping all search responses.
type searchPage[T any] struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Next   int `json:"next"`
	Data   []T `json:"data"`
}

// batchConfig derives the orchestrator retry settings from the client config.
func (c *Client) batchConfig() batch.Config {
	return batch.Config{
		MaxAttempts: c.cfg.RetryAttempts + 1,
		Backoff:     c.cfg.RetryBackoff,
	}
}

// limit resolves a caller-supplied result limit against the configured
// default and the API's page ceiling.
func (c *Client) limit(requested int) int {
	if requested <= 0 {
		return c.cfg.DefaultLimit
	}
	if requested > 100 {
		return 100
	}
	return requested
}

// recordLookup bumps the per-operation counter when metrics are enabled.
func (c *Client) recordLookup(operation string) {
	if c.metrics != nil {
		c.metrics.RecordLookup(operation)
	}
}
