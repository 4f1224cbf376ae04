package scholargraph

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/scholarkit/scholargraph/domain"
	"github.com/scholarkit/scholargraph/internal/batch"
)

// GetPaperByTitle looks up the paper best matching title. It searches the
// API for candidates, scores each candidate title with the configured
// Matcher, and returns the highest-scoring candidate whose similarity is at
// or above the configured threshold.
//
// Not finding a paper is not an error: the method returns (nil, nil) when
// the search comes back empty or no candidate clears the threshold. A
// non-nil error means the request itself failed after retries.
func (c *Client) GetPaperByTitle(ctx context.Context, title string) (*domain.Paper, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.NewValidationError("title", "must not be empty")
	}
	c.recordLookup("paper_by_title")

	runner := batch.NewRunner[[]domain.Paper](c.batchConfig(), c.limiter, c.logger, c.metrics)
	res := runner.Run(ctx, []string{title}, func(ctx context.Context, key string) ([]domain.Paper, error) {
		page, err := c.fetchPaperSearch(ctx, key, c.cfg.DefaultLimit, 0)
		if err != nil {
			return nil, err
		}
		return page.Data, nil
	})

	outcome := res[title]
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	if outcome.NotFound || len(outcome.Value) == 0 {
		return nil, nil
	}

	titles := make([]string, len(outcome.Value))
	for i, p := range outcome.Value {
		titles[i] = p.Title
	}
	idx, score := c.matcher.Best(title, titles)
	if idx < 0 || score < c.cfg.SimilarityThreshold {
		c.logger.Debug().
			Str("title", title).
			Float64("best_score", score).
			Float64("threshold", c.cfg.SimilarityThreshold).
			Msg("no candidate above similarity threshold")
		return nil, nil
	}

	paper := outcome.Value[idx]
	return &paper, nil
}

// GetPaperByKeyword searches papers matching a single keyword. limit bounds
// the number of results; a non-positive limit uses the configured default.
// Returns an empty slice when nothing matched.
func (c *Client) GetPaperByKeyword(ctx context.Context, keyword string, limit int) ([]domain.Paper, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, domain.NewValidationError("keyword", "must not be empty")
	}
	c.recordLookup("paper_by_keyword")

	runner := batch.NewRunner[[]domain.Paper](c.batchConfig(), c.limiter, c.logger, c.metrics)
	res := runner.Run(ctx, []string{keyword}, c.keywordFetch(c.limit(limit)))

	outcome := res[keyword]
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	if outcome.NotFound {
		return []domain.Paper{}, nil
	}
	return outcome.Value, nil
}

// GetPapersByKeyword resolves every keyword to its matching papers
// concurrently. The returned result contains one entry per distinct keyword:
// keywords that matched nothing map to an empty slice and are listed in
// NotFound; keywords whose request failed map to an empty slice with the
// terminal error in Errors. A failing keyword never affects the others.
//
// The returned error reports only invalid input; per-keyword request
// failures are always delivered inside the result.
func (c *Client) GetPapersByKeyword(ctx context.Context, keywords []string, limit int) (*KeywordResult, error) {
	if len(keywords) == 0 {
		return nil, domain.NewValidationError("keywords", "must not be empty")
	}
	if limit < 0 {
		return nil, domain.NewValidationError("limit", "must not be negative")
	}
	c.recordLookup("papers_by_keyword")

	runner := batch.NewRunner[[]domain.Paper](c.batchConfig(), c.limiter, c.logger, c.metrics)
	res := runner.Run(ctx, keywords, c.keywordFetch(c.limit(limit)))

	result := &KeywordResult{
		Papers: make(map[string][]domain.Paper, len(res)),
		Errors: make(map[string]error),
	}
	for key, outcome := range res {
		switch {
		case outcome.Err != nil:
			result.Papers[key] = []domain.Paper{}
			result.Errors[key] = outcome.Err
		case outcome.NotFound:
			result.Papers[key] = []domain.Paper{}
			result.NotFound = append(result.NotFound, key)
		default:
			result.Papers[key] = outcome.Value
		}
	}
	sort.Strings(result.NotFound)
	return result, nil
}

// SearchPapers runs one paginated paper search and exposes the API's
// pagination envelope, letting callers walk large result sets page by page.
func (c *Client) SearchPapers(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewValidationError("query", "must not be empty")
	}
	if opts.Offset < 0 {
		return nil, domain.NewValidationError("offset", "must not be negative")
	}
	c.recordLookup("search_papers")

	runner := batch.NewRunner[*searchPage[domain.Paper]](c.batchConfig(), c.limiter, c.logger, c.metrics)
	res := runner.Run(ctx, []string{query}, func(ctx context.Context, key string) (*searchPage[domain.Paper], error) {
		return c.fetchPaperSearch(ctx, key, c.limit(opts.Limit), opts.Offset)
	})

	outcome := res[query]
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	if outcome.NotFound {
		return &SearchResult{Papers: []domain.Paper{}}, nil
	}
	page := outcome.Value
	return &SearchResult{
		Papers: page.Data,
		Total:  page.Total,
		Offset: page.Offset,
		Next:   page.Next,
	}, nil
}

// SearchOptions controls pagination for SearchPapers.
type SearchOptions struct {
	// Limit bounds the number of results per page; non-positive values use
	// the configured default. The API caps pages at 100 results.
	Limit int

	// Offset is the starting position within the full result set.
	Offset int
}

// GetPaperByID retrieves a paper by identifier. Accepted formats are the
// 40-character Semantic Scholar id and the documented prefixed forms
// (DOI:..., ARXIV:..., CorpusId:..., MAG:..., ACL:..., PMID:..., PMCID:...,
// URL:...). Invalid ids fail fast without a network call; unknown ids
// return an error wrapping domain.ErrNotFound.
func (c *Client) GetPaperByID(ctx context.Context, id string) (*domain.DetailedPaper, error) {
	if err := domain.ValidatePaperID(id); err != nil {
		return nil, err
	}
	c.recordLookup("paper_by_id")

	runner := batch.NewRunner[*domain.DetailedPaper](c.batchConfig(), c.limiter, c.logger, c.metrics)
	res := runner.Run(ctx, []string{id}, c.fetchPaperByID)

	outcome := res[id]
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	if outcome.NotFound {
		return nil, fmt.Errorf("paper %q: %w", id, domain.ErrNotFound)
	}
	return outcome.Value, nil
}

// GetPapersByID retrieves several papers by identifier concurrently. All
// ids are validated up front; one invalid id fails the whole call before
// any request is issued. Unknown ids land in NotFound, failed requests in
// Errors, and neither affects the other ids.
func (c *Client) GetPapersByID(ctx context.Context, ids []string) (*PaperIDResult, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("ids", "must not be empty")
	}
	for _, id := range ids {
		if err := domain.ValidatePaperID(id); err != nil {
			return nil, err
		}
	}
	c.recordLookup("papers_by_id")

	runner := batch.NewRunner[*domain.DetailedPaper](c.batchConfig(), c.limiter, c.logger, c.metrics)
	res := runner.Run(ctx, ids, c.fetchPaperByID)

	result := &PaperIDResult{
		Papers: make(map[string]*domain.DetailedPaper),
		Errors: make(map[string]error),
	}
	for key, outcome := range res {
		switch {
		case outcome.Err != nil:
			result.Errors[key] = outcome.Err
		case outcome.NotFound:
			result.NotFound = append(result.NotFound, key)
		default:
			result.Papers[key] = outcome.Value
		}
	}
	sort.Strings(result.NotFound)
	return result, nil
}

// keywordFetch builds the per-key fetch for keyword batches. An empty
// result set is reported as not-found so the orchestrator can tag the
// outcome accordingly.
func (c *Client) keywordFetch(limit int) batch.FetchFunc[[]domain.Paper] {
	return func(ctx context.Context, key string) ([]domain.Paper, error) {
		page, err := c.fetchPaperSearch(ctx, key, limit, 0)
		if err != nil {
			return nil, err
		}
		if len(page.Data) == 0 {
			return nil, fmt.Errorf("papers for keyword %q: %w", key, domain.ErrNotFound)
		}
		return page.Data, nil
	}
}

// fetchPaperSearch performs one paper search request.
func (c *Client) fetchPaperSearch(ctx context.Context, query string, limit, offset int) (*searchPage[domain.Paper], error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("fields", paperFields)
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var page searchPage[domain.Paper]
	if err := c.http.Get(ctx, "paper/search", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// fetchPaperByID performs one single-paper request.
func (c *Client) fetchPaperByID(ctx context.Context, id string) (*domain.DetailedPaper, error) {
	q := url.Values{}
	q.Set("fields", detailedPaperFields)

	var paper domain.DetailedPaper
	if err := c.http.Get(ctx, "paper/"+url.PathEscape(id), q, &paper); err != nil {
		return nil, err
	}
	return &paper, nil
}
