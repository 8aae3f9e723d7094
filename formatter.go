package docsync

import "strings"

// FormatDocuments formats documents for display or agent context.
// Uses title if available, falls back to filename.
// Documents are separated by blank lines.
func FormatDocuments(docs []*Document) string {
	if len(docs) == 0 {
		return ""
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		header := doc.Title
		if header == "" {
			header = doc.Filename
		}
		parts = append(parts, "## Document: "+header+"\n"+strings.TrimRight(doc.Content, "\n"))
	}

	return strings.Join(parts, "\n\n")
}

// DocumentTitle returns the text of the first level-one heading in
// markdown, or an empty string if there is none.
func DocumentTitle(markdown string) string {
	for _, s := range ExtractSections(markdown) {
		if s.Level == 1 {
			return s.Title
		}
	}
	return ""
}
