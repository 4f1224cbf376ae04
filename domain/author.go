package domain

// DetailedAuthor is the full author record returned by author endpoints.
type DetailedAuthor struct {
	// AuthorID is the Semantic Scholar unique identifier for the author.
	AuthorID string `json:"authorId"`

	// ExternalIDs contains external identifiers for the author.
	ExternalIDs map[string]any `json:"externalIds,omitempty"`

	// URL is the Semantic Scholar URL for the author.
	URL string `json:"url,omitempty"`

	// Name is the author's name.
	Name string `json:"name,omitempty"`

	// Aliases lists alternative spellings of the author's name.
	Aliases []string `json:"aliases,omitempty"`

	// Affiliations lists the author's institutional affiliations.
	Affiliations []string `json:"affiliations,omitempty"`

	// Homepage is the author's homepage URL.
	Homepage string `json:"homepage,omitempty"`

	// PaperCount is the number of papers attributed to the author.
	PaperCount int `json:"paperCount,omitempty"`

	// CitationCount is the author's total citation count.
	CitationCount int `json:"citationCount,omitempty"`

	// HIndex is the author's h-index.
	HIndex int `json:"hIndex,omitempty"`

	// Papers lists the author's papers.
	Papers []Paper `json:"papers,omitempty"`
}
