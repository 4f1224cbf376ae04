package domain

import "strings"

// Prefixes accepted by the Graph API for paper lookups, in addition to the
// bare 40-character Semantic Scholar sha.
var validPaperIDPrefixes = []string{
	"CorpusId:", "DOI:", "ARXIV:", "MAG:", "ACL:", "PMID:", "PMCID:", "URL:",
}

// ValidatePaperID reports whether id matches a supported paper identifier
// format: a 40-character hex Semantic Scholar id, or one of the documented
// prefixed forms (DOI:, ARXIV:, CorpusId:, ...). Returns an InvalidIDError
// for anything else so that callers fail fast before issuing a request.
func ValidatePaperID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return NewInvalidIDError("paper", id)
	}
	if isSHAID(id) {
		return nil
	}
	for _, prefix := range validPaperIDPrefixes {
		if len(id) > len(prefix) && strings.EqualFold(id[:len(prefix)], prefix) {
			return nil
		}
	}
	return NewInvalidIDError("paper", id)
}

// ValidateAuthorID reports whether id is a plausible author identifier.
// Author ids are numeric strings assigned by Semantic Scholar.
func ValidateAuthorID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return NewInvalidIDError("author", id)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return NewInvalidIDError("author", id)
		}
	}
	return nil
}

// isSHAID reports whether id is a 40-character lowercase hex string.
func isSHAID(id string) bool {
	if len(id) != 40 {
		return false
	}
	for _, r := range id {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
