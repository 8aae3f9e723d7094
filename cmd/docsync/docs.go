package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/docsync"
)

type documentSummary struct {
	Filename string `json:"filename"`
	Title    string `json:"title,omitempty"`
	Bytes    int    `json:"bytes"`
}

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	if c.Manifest {
		return c.listManifest(deps)
	}

	docs, err := readAll(deps.Ctx, deps.Documents)
	if err != nil {
		return err
	}

	summaries := make([]documentSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, documentSummary{Filename: d.Filename, Title: d.Title, Bytes: len(d.Content)})
	}

	if deps.Output.JSON() {
		return deps.Output.Encode(struct {
			Documents []documentSummary `json:"documents"`
		}{summaries})
	}

	if len(summaries) == 0 {
		deps.Output.Line("No documents installed. Run 'docsync update check' to fetch them.")
		return nil
	}
	deps.Output.Title("Installed documents (%d)", len(summaries))
	for _, s := range summaries {
		deps.Output.Line("  %-32s %s", s.Filename, s.Title)
	}
	return nil
}

type manifestDocument struct {
	Title     string `json:"title"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	Installed bool   `json:"installed"`
}

type manifestCategory struct {
	Name string             `json:"name"`
	Slug string             `json:"slug"`
	Docs []manifestDocument `json:"docs"`
}

func (c *ListCmd) listManifest(deps *Dependencies) error {
	m, source, err := deps.Manifests.Load(deps.Ctx)
	if err != nil {
		return err
	}

	names, err := deps.Documents.ListDocuments(deps.Ctx)
	if err != nil {
		return err
	}
	installed := make(map[string]bool, len(names))
	for _, n := range names {
		installed[n] = true
	}

	categories := make([]manifestCategory, 0, len(m.Categories))
	for _, cat := range m.Categories {
		mc := manifestCategory{Name: cat.Name, Slug: cat.Slug, Docs: []manifestDocument{}}
		for _, d := range cat.Docs {
			mc.Docs = append(mc.Docs, manifestDocument{
				Title:     d.Title,
				Filename:  d.Filename,
				URL:       d.URL,
				Installed: installed[d.Filename],
			})
		}
		categories = append(categories, mc)
	}

	if deps.Output.JSON() {
		return deps.Output.Encode(struct {
			Source     docsync.ManifestSource `json:"source"`
			Categories []manifestCategory     `json:"categories"`
		}{source, categories})
	}

	deps.Output.Muted("manifest: %s", source)
	for _, cat := range categories {
		deps.Output.Title("%s", cat.Name)
		for _, d := range cat.Docs {
			mark := " "
			if d.Installed {
				mark = "*"
			}
			deps.Output.Line("  %s %-32s %s", mark, d.Filename, d.Title)
		}
	}
	return nil
}

// Run executes the get command.
func (c *GetCmd) Run(deps *Dependencies) error {
	docs := make([]*docsync.Document, 0, len(c.Filenames))
	for _, name := range c.Filenames {
		doc, err := deps.Documents.ReadDocument(deps.Ctx, name)
		if docsync.ErrorCode(err) == docsync.ENOTFOUND {
			return docsync.Errorf(docsync.ENOTFOUND, "document %q is not installed. Use 'docsync list' to see available documents", name)
		} else if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	if c.Sections {
		return c.printSections(deps, docs)
	}

	if deps.Output.JSON() {
		return deps.Output.Encode(struct {
			Documents []*docsync.Document `json:"documents"`
		}{docs})
	}

	if len(docs) == 1 {
		fmt.Fprint(deps.Stdout, docs[0].Content)
		return nil
	}
	fmt.Fprintln(deps.Stdout, docsync.FormatDocuments(docs))
	return nil
}

type documentOutline struct {
	Filename string            `json:"filename"`
	Title    string            `json:"title,omitempty"`
	Sections []docsync.Section `json:"sections"`
}

func (c *GetCmd) printSections(deps *Dependencies, docs []*docsync.Document) error {
	outlines := make([]documentOutline, 0, len(docs))
	for _, d := range docs {
		sections := docsync.ExtractSections(d.Content)
		if sections == nil {
			sections = []docsync.Section{}
		}
		outlines = append(outlines, documentOutline{Filename: d.Filename, Title: d.Title, Sections: sections})
	}

	if deps.Output.JSON() {
		return deps.Output.Encode(struct {
			Documents []documentOutline `json:"documents"`
		}{outlines})
	}

	for _, o := range outlines {
		deps.Output.Title("%s", o.Filename)
		for _, s := range o.Sections {
			deps.Output.Line("%*s%s  (line %d, #%s)", (s.Level-1)*2, "", s.Title, s.Line, s.Anchor)
		}
	}
	return nil
}

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	if c.Limit < 0 {
		return docsync.Errorf(docsync.EINVALID, "limit must not be negative")
	}

	docs, err := readAll(deps.Ctx, deps.Documents)
	if err != nil {
		return err
	}

	matches := docsync.SearchDocuments(docs, c.Query, docsync.SearchOptions{Limit: c.Limit})
	if matches == nil {
		matches = []docsync.SearchMatch{}
	}

	if deps.Output.JSON() {
		return deps.Output.Encode(struct {
			Query   string                `json:"query"`
			Matches []docsync.SearchMatch `json:"matches"`
		}{c.Query, matches})
	}

	if len(matches) == 0 {
		deps.Output.Line("No matches for %q.", c.Query)
		return nil
	}
	for _, m := range matches {
		title := m.Title
		if title == "" {
			title = m.Filename
		}
		deps.Output.Title("%s", title)
		deps.Output.Muted("%s (%d matches)", m.Filename, m.Total)
		for _, l := range m.Lines {
			deps.Output.Line("  %4d: %s", l.Number, l.Text)
		}
	}
	return nil
}

// readAll loads every committed document in filename order.
func readAll(ctx context.Context, store docsync.DocumentStore) ([]*docsync.Document, error) {
	names, err := store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]*docsync.Document, 0, len(names))
	for _, name := range names {
		doc, err := store.ReadDocument(ctx, name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
