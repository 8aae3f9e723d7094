package docsync

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// Relative links are resolved against baseURL when it is not empty.
	Convert(html, baseURL string) (string, error)
}

// Transformer turns a fetched document into canonical markdown.
type Transformer interface {
	// Transform strips source-specific markup from content and rewrites
	// relative links against sourceURL.
	Transform(content, sourceURL string) (string, error)
}
