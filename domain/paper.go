// Package domain defines the typed records returned by the Semantic Scholar
// Graph API and the error taxonomy shared by all scholargraph packages.
package domain

import "strings"

// ExternalIDs contains external identifiers for a paper.
type ExternalIDs struct {
	// DOI is the Digital Object Identifier.
	DOI string `json:"DOI,omitempty"`

	// ArXiv is the arXiv identifier.
	ArXiv string `json:"ArXiv,omitempty"`

	// PubMed is the PubMed identifier.
	PubMed string `json:"PubMed,omitempty"`

	// PubMedCentral is the PubMed Central identifier.
	PubMedCentral string `json:"PubMedCentral,omitempty"`

	// CorpusID is the Semantic Scholar corpus identifier.
	CorpusID int64 `json:"CorpusId,omitempty"`

	// MAG is the Microsoft Academic Graph identifier.
	MAG string `json:"MAG,omitempty"`

	// ACL is the ACL Anthology identifier.
	ACL string `json:"ACL,omitempty"`

	// DBLP is the DBLP identifier.
	DBLP string `json:"DBLP,omitempty"`
}

// Author is the compact author record embedded in paper results.
type Author struct {
	// AuthorID is the Semantic Scholar unique identifier for the author.
	AuthorID string `json:"authorId,omitempty"`

	// Name is the author's name.
	Name string `json:"name,omitempty"`
}

// Paper represents a paper returned by search endpoints.
type Paper struct {
	// PaperID is the Semantic Scholar unique identifier for the paper.
	PaperID string `json:"paperId"`

	// ExternalIDs contains external identifiers (DOI, arXiv, etc.).
	ExternalIDs *ExternalIDs `json:"externalIds,omitempty"`

	// URL is the Semantic Scholar URL for the paper.
	URL string `json:"url,omitempty"`

	// Title is the title of the paper.
	Title string `json:"title,omitempty"`

	// Abstract is the paper's abstract text.
	Abstract string `json:"abstract,omitempty"`

	// Venue is the publication venue (conference, journal name, etc.).
	Venue string `json:"venue,omitempty"`

	// Year is the publication year.
	Year int `json:"year,omitempty"`

	// ReferenceCount is the number of references in this paper.
	ReferenceCount int `json:"referenceCount,omitempty"`

	// CitationCount is the number of citations this paper has received.
	CitationCount int `json:"citationCount,omitempty"`

	// InfluentialCitationCount is the number of influential citations.
	InfluentialCitationCount int `json:"influentialCitationCount,omitempty"`

	// IsOpenAccess indicates whether the paper is open access.
	IsOpenAccess bool `json:"isOpenAccess,omitempty"`

	// FieldsOfStudy lists the research fields the paper belongs to.
	FieldsOfStudy []string `json:"fieldsOfStudy,omitempty"`

	// Authors is the list of paper authors.
	Authors []Author `json:"authors,omitempty"`
}

// Citation is a paper citing the requested paper.
type Citation struct {
	PaperID string   `json:"paperId"`
	URL     string   `json:"url,omitempty"`
	Title   string   `json:"title,omitempty"`
	Venue   string   `json:"venue,omitempty"`
	Year    int      `json:"year,omitempty"`
	Authors []Author `json:"authors,omitempty"`
}

// Reference is a paper referenced by the requested paper.
type Reference struct {
	PaperID string   `json:"paperId"`
	URL     string   `json:"url,omitempty"`
	Title   string   `json:"title,omitempty"`
	Venue   string   `json:"venue,omitempty"`
	Year    int      `json:"year,omitempty"`
	Authors []Author `json:"authors,omitempty"`
}

// Journal contains journal-specific publication information.
type Journal struct {
	// Name is the name of the journal.
	Name string `json:"name,omitempty"`

	// Volume is the journal volume.
	Volume string `json:"volume,omitempty"`

	// Pages is the page range (e.g., "1-15").
	Pages string `json:"pages,omitempty"`
}

// DetailedPaper is the full paper record returned by the single-paper
// endpoint, including citation and reference lists.
type DetailedPaper struct {
	Paper

	// PublicationDate is the full publication date in YYYY-MM-DD format.
	PublicationDate string `json:"publicationDate,omitempty"`

	// Journal contains journal information if published in a journal.
	Journal *Journal `json:"journal,omitempty"`

	// Citations lists papers citing this paper.
	Citations []Citation `json:"citations,omitempty"`

	// References lists papers referenced by this paper.
	References []Reference `json:"references,omitempty"`
}

// Identifiers holds all identifiers known for a paper, used to derive a
// canonical identifier for cross-source correlation.
type Identifiers struct {
	DOI               string
	ArXivID           string
	PubMedID          string
	SemanticScholarID string
}

// CanonicalID derives a canonical identifier from the paper's identifiers.
// Priority order: DOI > arXiv > PubMed > Semantic Scholar ID.
// Returns empty string if no identifier is available.
func CanonicalID(ids Identifiers) string {
	if doi := strings.TrimSpace(ids.DOI); doi != "" {
		// DOIs are case-insensitive, normalize to lowercase.
		return "doi:" + strings.ToLower(doi)
	}
	if arxiv := strings.TrimSpace(ids.ArXivID); arxiv != "" {
		return "arxiv:" + arxiv
	}
	if pubmed := strings.TrimSpace(ids.PubMedID); pubmed != "" {
		return "pubmed:" + pubmed
	}
	if s2 := strings.TrimSpace(ids.SemanticScholarID); s2 != "" {
		return "s2:" + s2
	}
	return ""
}

// CanonicalID derives the canonical identifier for p.
func (p *Paper) CanonicalID() string {
	ids := Identifiers{SemanticScholarID: p.PaperID}
	if p.ExternalIDs != nil {
		ids.DOI = p.ExternalIDs.DOI
		ids.ArXivID = p.ExternalIDs.ArXiv
		ids.PubMedID = p.ExternalIDs.PubMed
	}
	return CanonicalID(ids)
}
