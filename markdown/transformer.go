// Package markdown turns fetched documents into canonical markdown.
//
// Raw markdown is cleaned of documentation-site markup: YAML frontmatter,
// MDX import and export statements, and JSX components. Callout components
// become blockquotes and layout wrappers are unwrapped. Root-relative links
// are made absolute. HTML responses are reduced to their main content and
// converted.
package markdown

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/fwojciec/docsync"
	"gopkg.in/yaml.v3"
)

// Ensure Transformer implements docsync.Transformer at compile time.
var _ docsync.Transformer = (*Transformer)(nil)

var (
	fenceRe  = regexp.MustCompile("^\\s*(```+|~~~+)")
	moduleRe = regexp.MustCompile(`^(?:import\s+(?:[\w*{}\s,]+\s+from\s+)?['"]|import\s+\{|export\s+(?:const|let|var|default|function|\{))`)

	calloutOpenRe  = regexp.MustCompile(`^\s*<(Note|Tip|Info|Warning|Check)(\s[^>]*)?>\s*(.*?)\s*$`)
	calloutCloseRe = regexp.MustCompile(`^\s*(.*?)\s*</(Note|Tip|Info|Warning|Check)>\s*$`)
	wrapperRe      = regexp.MustCompile(`^\s*<(/?)(Steps|Step|Tabs|Tab|CodeGroup|Frame|AccordionGroup|Accordion|CardGroup|Card)(\s[^>]*?)?\s*(/?)>\s*$`)
	titleAttrRe    = regexp.MustCompile(`\btitle=(?:"([^"]*)"|'([^']*)'|\{["']([^"']*)["']\})`)

	rootLinkRe = regexp.MustCompile(`(\]\()(/[^/\s)][^\s)]*|/)([\s)])`)
	blankRe    = regexp.MustCompile(`\n{3,}`)
)

// Transformer implements docsync.Transformer.
type Transformer struct {
	// Extractors are tried in order on HTML responses; the first one that
	// yields content wins.
	Extractors []docsync.Extractor

	// Converter renders extracted HTML as markdown.
	Converter docsync.Converter
}

// NewTransformer returns a Transformer using the given HTML pipeline.
func NewTransformer(conv docsync.Converter, extractors ...docsync.Extractor) *Transformer {
	return &Transformer{Extractors: extractors, Converter: conv}
}

// Transform returns canonical markdown for content fetched from sourceURL.
// Returns EINVALID when nothing remains after transformation.
func (t *Transformer) Transform(content, sourceURL string) (string, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\ufeff")

	var out string
	if IsHTML(content) {
		md, err := t.transformHTML(content, sourceURL)
		if err != nil {
			return "", err
		}
		out = md
	} else {
		out = transformMarkdown(content, origin(sourceURL))
	}

	out = strings.TrimSpace(blankRe.ReplaceAllString(out, "\n\n"))
	if out == "" {
		return "", docsync.Errorf(docsync.EINVALID, "empty content after transformation")
	}
	return out + "\n", nil
}

// IsHTML reports whether content looks like an HTML page rather than markdown.
func IsHTML(content string) bool {
	head := strings.ToLower(strings.TrimSpace(content))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func (t *Transformer) transformHTML(content, sourceURL string) (string, error) {
	if t.Converter == nil {
		return "", docsync.Errorf(docsync.EINVALID, "received HTML but no converter is configured")
	}

	body, title := content, ""
	for _, ex := range t.Extractors {
		res, err := ex.Extract(content)
		if err != nil || res == nil || strings.TrimSpace(res.ContentHTML) == "" {
			continue
		}
		body, title = res.ContentHTML, res.Title
		break
	}

	md, err := t.Converter.Convert(body, sourceURL)
	if err != nil {
		return "", err
	}

	if title != "" && docsync.DocumentTitle(md) == "" {
		md = "# " + title + "\n\n" + md
	}
	return md, nil
}

type frontmatter struct {
	Title string `yaml:"title"`
}

// splitFrontmatter separates a leading YAML block from the body. Content
// whose leading block is not a YAML mapping is returned unchanged.
func splitFrontmatter(content string) (frontmatter, string) {
	var fm frontmatter
	if !strings.HasPrefix(content, "---\n") {
		return fm, content
	}

	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm, content
	}
	after := rest[end+len("\n---"):]
	if after != "" && after[0] != '\n' {
		return fm, content
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &raw); err != nil {
		return fm, content
	}
	if title, ok := raw["title"].(string); ok {
		fm.Title = strings.TrimSpace(title)
	}
	return fm, strings.TrimPrefix(after, "\n")
}

// transformMarkdown strips site markup outside code fences.
func transformMarkdown(content, host string) string {
	fm, body := splitFrontmatter(content)

	var (
		out          []string
		fence        string
		depth        int
		inCallout    bool
		skipModule   bool
		moduleCloser string
	)

	emit := func(line string) {
		if inCallout {
			if strings.TrimSpace(line) == "" {
				line = ">"
			} else {
				line = "> " + line
			}
		}
		out = append(out, line)
	}

	for _, line := range strings.Split(body, "\n") {
		if fence != "" {
			emit(dedent(line, depth))
			if m := fenceRe.FindStringSubmatch(line); m != nil && strings.HasPrefix(m[1], fence) {
				fence = ""
			}
			continue
		}
		if m := fenceRe.FindStringSubmatch(line); m != nil {
			fence = m[1]
			emit(dedent(line, depth))
			continue
		}

		if skipModule {
			if strings.HasPrefix(strings.TrimSpace(line), moduleCloser) {
				skipModule = false
			}
			continue
		}
		if moduleRe.MatchString(line) {
			if closer, open := unbalanced(line); open {
				skipModule = true
				moduleCloser = closer
			}
			continue
		}

		if !inCallout {
			if m := calloutOpenRe.FindStringSubmatch(line); m != nil {
				label := m[1]
				if title := attrTitle(m[2]); title != "" {
					label = title
				}
				inline := m[3]
				closed := false
				if c := calloutCloseRe.FindStringSubmatch(inline); c != nil {
					inline, closed = c[1], true
				}
				inCallout = true
				emit(strings.TrimSpace("**" + label + ":** " + rewriteLinks(inline, host)))
				if closed {
					inCallout = false
				}
				continue
			}
		} else if c := calloutCloseRe.FindStringSubmatch(line); c != nil {
			if c[1] != "" {
				emit(rewriteLinks(c[1], host))
			}
			inCallout = false
			continue
		}

		if m := wrapperRe.FindStringSubmatch(line); m != nil {
			closing, selfClosing := m[1] == "/", m[4] == "/"
			switch {
			case closing:
				if depth > 0 {
					depth--
				}
			default:
				if title := attrTitle(m[3]); title != "" {
					emit("**" + title + "**")
					emit("")
				}
				if !selfClosing {
					depth++
				}
			}
			continue
		}

		emit(rewriteLinks(dedent(line, depth), host))
	}

	result := strings.Join(out, "\n")
	if fm.Title != "" && docsync.DocumentTitle(result) == "" {
		result = "# " + fm.Title + "\n\n" + strings.TrimLeft(result, "\n")
	}
	return result
}

// unbalanced reports whether an import or export statement continues past
// this line, returning the closing bracket that ends it.
func unbalanced(line string) (string, bool) {
	for _, pair := range [][2]string{{"{", "}"}, {"(", ")"}, {"[", "]"}} {
		if strings.Count(line, pair[0]) > strings.Count(line, pair[1]) {
			return pair[1], true
		}
	}
	return "", false
}

func attrTitle(attrs string) string {
	m := titleAttrRe.FindStringSubmatch(attrs)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// dedent removes the two-space indentation MDX wrappers add per level.
func dedent(line string, depth int) string {
	for i := 0; i < depth*2 && strings.HasPrefix(line, " "); i++ {
		line = line[1:]
	}
	return line
}

func rewriteLinks(line, host string) string {
	if host == "" || !strings.Contains(line, "](/") {
		return line
	}
	return rootLinkRe.ReplaceAllString(line, "${1}"+host+"${2}${3}")
}

// origin returns scheme://host of rawURL, or "" if it is not absolute.
func origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
