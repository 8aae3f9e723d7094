// Package goquery extracts the main content of HTML documentation pages
// using CSS selectors.
package goquery

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docsync"
)

// Ensure Extractor implements docsync.Extractor at compile time.
var _ docsync.Extractor = (*Extractor)(nil)

// contentSelectors maps each framework to the element holding the page body.
var contentSelectors = map[Framework][]string{
	FrameworkDocusaurus: {".theme-doc-markdown", "article"},
	FrameworkMkDocs:     {".md-content__inner", ".md-content"},
	FrameworkSphinx:     {"div[role='main']", "div.body", "div.document"},
	FrameworkVitePress:  {".vp-doc", ".VPDoc"},
	FrameworkVuePress:   {".theme-default-content"},
	FrameworkGitBook:    {"main"},
	FrameworkNextra:     {"article", "main"},
}

// genericSelectors are tried when the framework is unknown or its
// selectors match nothing.
var genericSelectors = []string{"main article", "article", "main", "[role='main']", "#content", ".content", "body"}

// chromeSelectors are removed before extraction.
const chromeSelectors = "script, style, noscript, nav, header, footer, aside, form, iframe, " +
	"[role='navigation'], [aria-hidden='true'], .sidebar, .toc, .table-of-contents"

// Extractor selects main content with framework-aware CSS selectors.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page title and the HTML of its main content element.
func (e *Extractor) Extract(rawHTML string) (*docsync.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, errors.New("empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, docsync.Errorf(docsync.EINVALID, "failed to parse HTML: %v", err)
	}

	framework := Detect(doc)
	title := pageTitle(doc)

	doc.Find(chromeSelectors).Remove()

	selectors := make([]string, 0, len(contentSelectors[framework])+len(genericSelectors))
	selectors = append(selectors, contentSelectors[framework]...)
	selectors = append(selectors, genericSelectors...)
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 || strings.TrimSpace(node.Text()) == "" {
			continue
		}
		content, err := goquery.OuterHtml(node)
		if err != nil {
			return nil, err
		}
		return &docsync.ExtractResult{Title: title, ContentHTML: content}, nil
	}

	return &docsync.ExtractResult{Title: title}, nil
}

// pageTitle prefers the first h1, then the document title.
func pageTitle(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
