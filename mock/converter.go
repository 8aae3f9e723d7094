package mock

import "github.com/fwojciec/docsync"

var _ docsync.Converter = (*Converter)(nil)

// Converter is a mock implementation of docsync.Converter.
type Converter struct {
	ConvertFn func(html, baseURL string) (string, error)
}

func (c *Converter) Convert(html, baseURL string) (string, error) {
	return c.ConvertFn(html, baseURL)
}

var _ docsync.Transformer = (*Transformer)(nil)

// Transformer is a mock implementation of docsync.Transformer.
type Transformer struct {
	TransformFn func(content, sourceURL string) (string, error)
}

func (t *Transformer) Transform(content, sourceURL string) (string, error) {
	return t.TransformFn(content, sourceURL)
}
