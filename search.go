package docsync

import (
	"strings"
)

// DefaultMatchesPerDocument caps matching lines reported for one document.
const DefaultMatchesPerDocument = 5

// SearchMatch is a document containing the query.
type SearchMatch struct {
	Filename string      `json:"filename"`
	Title    string      `json:"title,omitempty"`
	Lines    []MatchLine `json:"lines"`
	Total    int         `json:"total"`
}

// MatchLine is a single matching line, numbered from 1.
type MatchLine struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// SearchOptions configures SearchDocuments.
type SearchOptions struct {
	// Limit caps the number of documents returned. Zero means no limit.
	Limit int

	// MatchesPerDocument caps matching lines per document.
	// Defaults to DefaultMatchesPerDocument.
	MatchesPerDocument int
}

// SearchDocuments performs case-insensitive substring matching over the
// lines of each document. Documents are returned in the order given,
// skipping those without matches.
func SearchDocuments(docs []*Document, query string, opts SearchOptions) []SearchMatch {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	perDoc := opts.MatchesPerDocument
	if perDoc <= 0 {
		perDoc = DefaultMatchesPerDocument
	}

	var matches []SearchMatch
	for _, doc := range docs {
		if opts.Limit > 0 && len(matches) >= opts.Limit {
			break
		}

		m := SearchMatch{Filename: doc.Filename, Title: doc.Title}
		for i, line := range strings.Split(doc.Content, "\n") {
			if !strings.Contains(strings.ToLower(line), query) {
				continue
			}
			m.Total++
			if len(m.Lines) < perDoc {
				m.Lines = append(m.Lines, MatchLine{Number: i + 1, Text: strings.TrimSpace(line)})
			}
		}
		if m.Total > 0 {
			matches = append(matches, m)
		}
	}
	return matches
}
