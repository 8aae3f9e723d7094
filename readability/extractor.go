// Package readability extracts main content from HTML pages with
// go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/docsync"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements docsync.Extractor at compile time.
var _ docsync.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*docsync.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docsync.Errorf(docsync.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &docsync.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}, nil
}
