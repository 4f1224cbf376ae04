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
	"github.com/scholarkit/scholargraph/match"
)

// GetAuthorByName searches authors by name. Results are ordered by
// similarity of the author's name to the query, most similar first, so the
// likeliest author comes first even when the API returns loosely matching
// records. Returns an empty slice when nothing matched.
func (c *Client) GetAuthorByName(ctx context.Context, name string) ([]domain.DetailedAuthor, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}
	c.recordLookup("author_by_name")

	runner := batch.NewRunner[[]domain.DetailedAuthor](c.batchConfig(), c.limiter, c.logger, c.metrics)
	res := runner.Run(ctx, []string{name}, c.authorFetch(c.cfg.DefaultLimit))

	outcome := res[name]
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	if outcome.NotFound {
		return []domain.DetailedAuthor{}, nil
	}

	authors := outcome.Value
	sort.SliceStable(authors, func(i, j int) bool {
		return match.NameSimilarity(name, authors[i].Name) > match.NameSimilarity(name, authors[j].Name)
	})
	return authors, nil
}

// GetAuthorsByName resolves every name to its matching authors concurrently.
// The result contains one entry per distinct name; names that matched
// nothing map to an empty slice and are listed in NotFound, failed names
// carry their error in Errors. A failing name never affects the others.
func (c *Client) GetAuthorsByName(ctx context.Context, names []string) (*AuthorResult, error) {
	if len(names) == 0 {
		return nil, domain.NewValidationError("names", "must not be empty")
	}
	c.recordLookup("authors_by_name")

	runner := batch.NewRunner[[]domain.DetailedAuthor](c.batchConfig(), c.limiter, c.logger, c.metrics)
	res := runner.Run(ctx, names, c.authorFetch(c.cfg.DefaultLimit))

	result := &AuthorResult{
		Authors: make(map[string][]domain.DetailedAuthor, len(res)),
		Errors:  make(map[string]error),
	}
	for key, outcome := range res {
		switch {
		case outcome.Err != nil:
			result.Authors[key] = []domain.DetailedAuthor{}
			result.Errors[key] = outcome.Err
		case outcome.NotFound:
			result.Authors[key] = []domain.DetailedAuthor{}
			result.NotFound = append(result.NotFound, key)
		default:
			result.Authors[key] = outcome.Value
		}
	}
	sort.Strings(result.NotFound)
	return result, nil
}

// GetAuthorByID retrieves an author by Semantic Scholar author id. Author
// ids are numeric; invalid ids fail fast without a network call, unknown
// ids return an error wrapping domain.ErrNotFound.
func (c *Client) GetAuthorByID(ctx context.Context, id string) (*domain.DetailedAuthor, error) {
	if err := domain.ValidateAuthorID(id); err != nil {
		return nil, err
	}
	c.recordLookup("author_by_id")

	runner := batch.NewRunner[*domain.DetailedAuthor](c.batchConfig(), c.limiter, c.logger, c.metrics)
	res := runner.Run(ctx, []string{id}, c.fetchAuthorByID)

	outcome := res[id]
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	if outcome.NotFound {
		return nil, fmt.Errorf("author %q: %w", id, domain.ErrNotFound)
	}
	return outcome.Value, nil
}

// GetAuthorsByID retrieves several authors by id concurrently. All ids are
// validated up front; one invalid id fails the whole call before any
// request is issued.
func (c *Client) GetAuthorsByID(ctx context.Context, ids []string) (*AuthorIDResult, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("ids", "must not be empty")
	}
	for _, id := range ids {
		if err := domain.ValidateAuthorID(id); err != nil {
			return nil, err
		}
	}
	c.recordLookup("authors_by_id")

	runner := batch.NewRunner[*domain.DetailedAuthor](c.batchConfig(), c.limiter, c.logger, c.metrics)
	res := runner.Run(ctx, ids, c.fetchAuthorByID)

	result := &AuthorIDResult{
		Authors: make(map[string]*domain.DetailedAuthor),
		Errors:  make(map[string]error),
	}
	for key, outcome := range res {
		switch {
		case outcome.Err != nil:
			result.Errors[key] = outcome.Err
		case outcome.NotFound:
			result.NotFound = append(result.NotFound, key)
		default:
			result.Authors[key] = outcome.Value
		}
	}
	sort.Strings(result.NotFound)
	return result, nil
}

// authorFetch builds the per-key fetch for author-name batches.
func (c *Client) authorFetch(limit int) batch.FetchFunc[[]domain.DetailedAuthor] {
	return func(ctx context.Context, key string) ([]domain.DetailedAuthor, error) {
		q := url.Values{}
		q.Set("query", key)
		q.Set("fields", authorFields)
		q.Set("limit", strconv.Itoa(limit))

		var page searchPage[domain.DetailedAuthor]
		if err := c.http.Get(ctx, "author/search", q, &page); err != nil {
			return nil, err
		}
		if len(page.Data) == 0 {
			return nil, fmt.Errorf("authors for %q: %w", key, domain.ErrNotFound)
		}
		return page.Data, nil
	}
}

// fetchAuthorByID performs one single-author request.
func (c *Client) fetchAuthorByID(ctx context.Context, id string) (*domain.DetailedAuthor, error) {
	q := url.Values{}
	q.Set("fields", authorFields)

	var author domain.DetailedAuthor
	if err := c.http.Get(ctx, "author/"+url.PathEscape(id), q, &author); err != nil {
		return nil, err
	}
	return &author, nil
}
