package docsync

import (
	"context"
	"strings"
	"time"
)

// DocumentSection is one documentation unit listed in a manifest.
// Its identity is Filename, which addresses the document in every store.
type DocumentSection struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
}

// ContentURL returns the location of the document's raw markdown.
func (d *DocumentSection) ContentURL() string {
	return d.URL + ".md"
}

// Category is a named, ordered group of documents.
type Category struct {
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	Docs        []*DocumentSection `json:"docs"`
}

// Manifest is the full list of documentation categories.
type Manifest struct {
	Categories []*Category `json:"categories"`
}

// Validate returns an error if the manifest contains invalid fields or
// duplicate filenames.
func (m *Manifest) Validate() error {
	if m == nil {
		return Errorf(EINVALID, "manifest required")
	}
	seen := make(map[string]bool)
	for i, c := range m.Categories {
		if c == nil {
			return Errorf(EINVALID, "category %d is empty", i)
		}
		if c.Name == "" {
			return Errorf(EINVALID, "category %d name required", i)
		}
		if c.Slug == "" {
			return Errorf(EINVALID, "category %q slug required", c.Name)
		}
		for j, d := range c.Docs {
			if d == nil {
				return Errorf(EINVALID, "category %q document %d is empty", c.Name, j)
			}
			if d.Title == "" || d.URL == "" {
				return Errorf(EINVALID, "category %q document %d requires title and url", c.Name, j)
			}
			if err := ValidateFilename(d.Filename); err != nil {
				return err
			}
			if seen[d.Filename] {
				return Errorf(EINVALID, "duplicate filename %q", d.Filename)
			}
			seen[d.Filename] = true
		}
	}
	return nil
}

// ValidateFilename returns an error unless name is a flat markdown filename.
func ValidateFilename(name string) error {
	switch {
	case name == "":
		return Errorf(EINVALID, "filename required")
	case !strings.HasSuffix(name, ".md"):
		return Errorf(EINVALID, "filename %q must end in .md", name)
	case strings.ContainsAny(name, `/\`), strings.HasPrefix(name, "."):
		return Errorf(EINVALID, "filename %q must not contain path elements", name)
	}
	return nil
}

// Documents flattens the manifest in category order, then document order.
func (m *Manifest) Documents() []*DocumentSection {
	docs := make([]*DocumentSection, 0, TotalSections(m))
	for _, c := range m.Categories {
		docs = append(docs, c.Docs...)
	}
	return docs
}

// Find returns the document with the given filename.
// Returns ENOTFOUND if the manifest does not list it.
func (m *Manifest) Find(filename string) (*DocumentSection, error) {
	for _, c := range m.Categories {
		for _, d := range c.Docs {
			if d.Filename == filename {
				return d, nil
			}
		}
	}
	return nil, Errorf(ENOTFOUND, "document %q not found", filename)
}

// TotalSections returns the number of documents across all categories.
func TotalSections(m *Manifest) int {
	if m == nil {
		return 0
	}
	var n int
	for _, c := range m.Categories {
		n += len(c.Docs)
	}
	return n
}

// ManifestSource identifies where a loaded manifest came from.
type ManifestSource string

// ManifestSource constants.
const (
	ManifestSourceRemote  ManifestSource = "remote"
	ManifestSourceCache   ManifestSource = "cache"
	ManifestSourceBundled ManifestSource = "bundled"
)

// ManifestLoader loads the documentation manifest.
type ManifestLoader interface {
	// Load returns the freshest valid manifest available.
	// Returns EMANIFEST if no source yields a valid manifest.
	Load(ctx context.Context) (*Manifest, ManifestSource, error)
}

// ManifestValidator checks the structural shape of raw manifest JSON.
type ManifestValidator interface {
	ValidateManifest(data []byte) error
}

// CachedManifest is a manifest snapshot persisted locally.
type CachedManifest struct {
	FetchedAt time.Time
	Data      []byte
}

// ManifestCache persists the last successfully fetched manifest.
type ManifestCache interface {
	// ReadManifest returns the cached snapshot.
	// Returns ENOTFOUND if nothing has been cached.
	ReadManifest(ctx context.Context) (*CachedManifest, error)

	// WriteManifest replaces the cached snapshot.
	WriteManifest(ctx context.Context, data []byte, fetchedAt time.Time) error
}
