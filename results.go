package scholargraph

import "github.com/scholarkit/scholargraph/domain"

// KeywordResult is the outcome of a batch keyword lookup.
//
// Papers holds one entry per distinct input keyword, no more and no fewer.
// Keywords that matched nothing map to an empty slice and are listed in
// NotFound; keywords whose request failed after retries also map to an empty
// slice and carry their error in Errors. A keyword never appears in both
// NotFound and Errors.
type KeywordResult struct {
	// Papers maps every queried keyword to its matched papers.
	Papers map[string][]domain.Paper

	// NotFound lists keywords for which the API returned no papers.
	NotFound []string

	// Errors maps keywords whose request failed to the terminal error.
	Errors map[string]error
}

// Failed reports whether any keyword's request failed.
func (r *KeywordResult) Failed() bool {
	return len(r.Errors) > 0
}

// AuthorResult is the outcome of a batch author-name lookup. The same
// completeness guarantees as KeywordResult apply, keyed by queried name.
type AuthorResult struct {
	// Authors maps every queried name to the matching author records.
	Authors map[string][]domain.DetailedAuthor

	// NotFound lists names for which the API returned no authors.
	NotFound []string

	// Errors maps names whose request failed to the terminal error.
	Errors map[string]error
}

// Failed reports whether any name's request failed.
func (r *AuthorResult) Failed() bool {
	return len(r.Errors) > 0
}

// PaperIDResult is the outcome of a batch paper lookup by identifier.
type PaperIDResult struct {
	// Papers maps every queried id to its paper. Ids that were not found
	// or whose request failed are absent from Papers but present in
	// NotFound or Errors respectively.
	Papers map[string]*domain.DetailedPaper

	// NotFound lists ids the API did not recognize.
	NotFound []string

	// Errors maps ids whose request failed to the terminal error.
	Errors map[string]error
}

// AuthorIDResult is the outcome of a batch author lookup by identifier.
type AuthorIDResult struct {
	// Authors maps every queried id to its author record.
	Authors map[string]*domain.DetailedAuthor

	// NotFound lists ids the API did not recognize.
	NotFound []string

	// Errors maps ids whose request failed to the terminal error.
	Errors map[string]error
}

// SearchResult is one page of paper search results with API pagination state.
type SearchResult struct {
	// Papers contains the papers on this page.
	Papers []domain.Paper

	// Total is the total number of papers matching the query.
	Total int

	// Offset is the offset of this page in the full result set.
	Offset int

	// Next is the offset of the next page. Zero when there is no next page.
	Next int
}

// HasMore reports whether another page of results is available.
func (r *SearchResult) HasMore() bool {
	return r.Next > 0
}
