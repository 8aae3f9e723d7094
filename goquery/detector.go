package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Framework identifies the static site generator that rendered a page.
type Framework string

// Framework constants.
const (
	FrameworkUnknown    Framework = ""
	FrameworkDocusaurus Framework = "docusaurus"
	FrameworkMkDocs     Framework = "mkdocs"
	FrameworkSphinx     Framework = "sphinx"
	FrameworkVitePress  Framework = "vitepress"
	FrameworkVuePress   Framework = "vuepress"
	FrameworkGitBook    Framework = "gitbook"
	FrameworkNextra     Framework = "nextra"
)

// markers lists structural selectors unique to each framework, checked in
// order. VitePress precedes VuePress since it reuses some VuePress markup.
var markers = []struct {
	framework Framework
	selectors []string
}{
	{FrameworkDocusaurus, []string{"#__docusaurus_skipToContent_fallback", ".theme-doc-sidebar-container", ".theme-doc-markdown"}},
	{FrameworkMkDocs, []string{"[data-md-color-scheme]", "[data-md-component]", ".md-nav--primary"}},
	{FrameworkSphinx, []string{".toctree-wrapper", ".wy-nav-side", ".wy-menu-vertical", ".sphinxsidebar"}},
	{FrameworkVitePress, []string{"#VPContent", ".VPDoc", ".vp-doc"}},
	{FrameworkVuePress, []string{".theme-default-content", ".sidebar-links", ".vuepress-navbar"}},
	{FrameworkGitBook, []string{"[data-testid='space.sidebar']", "[data-testid='page.desktopTableOfContents']"}},
	{FrameworkNextra, []string{".nextra-navbar", ".nextra-sidebar", ".nextra-toc", ".nextra-content"}},
}

// Detect returns the framework that rendered doc, or FrameworkUnknown.
// The meta generator tag wins when present.
func Detect(doc *goquery.Document) Framework {
	if framework := detectFromMetaGenerator(doc); framework != FrameworkUnknown {
		return framework
	}

	for _, m := range markers {
		for _, sel := range m.selectors {
			if doc.Find(sel).Length() > 0 {
				return m.framework
			}
		}
	}

	return FrameworkUnknown
}

func detectFromMetaGenerator(doc *goquery.Document) Framework {
	generator := strings.ToLower(doc.Find("meta[name='generator']").AttrOr("content", ""))
	if generator == "" {
		return FrameworkUnknown
	}

	for _, f := range []Framework{
		FrameworkSphinx, FrameworkGitBook, FrameworkDocusaurus, FrameworkMkDocs,
		FrameworkVitePress, FrameworkVuePress, FrameworkNextra,
	} {
		if strings.Contains(generator, string(f)) {
			return f
		}
	}

	return FrameworkUnknown
}
