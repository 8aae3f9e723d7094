package docsync

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)(?:\s+#+)?\s*$`)
	fenceRe   = regexp.MustCompile("^\\s*(```|~~~)")
)

// Section represents a heading in a markdown document.
type Section struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
	Line   int    `json:"line"`
}

// ExtractSections parses markdown and returns all headings (H1-H6) outside
// fenced code blocks, with 1-based line numbers. Anchors are URL-safe and
// duplicates get numeric suffixes.
func ExtractSections(markdown string) []Section {
	if markdown == "" {
		return nil
	}

	var sections []Section
	anchorCounts := make(map[string]int)
	inFence := false

	for i, line := range strings.Split(markdown, "\n") {
		if fenceRe.MatchString(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		match := headingRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		title := strings.TrimSpace(match[2])
		baseAnchor := generateAnchor(title)

		anchor := baseAnchor
		if count, exists := anchorCounts[baseAnchor]; exists {
			anchor = baseAnchor + "-" + strconv.Itoa(count)
			anchorCounts[baseAnchor]++
		} else {
			anchorCounts[baseAnchor] = 1
		}

		sections = append(sections, Section{
			Level:  len(match[1]),
			Title:  title,
			Anchor: anchor,
			Line:   i + 1,
		})
	}

	return sections
}

// generateAnchor creates a URL-safe anchor from a title.
// Converts to lowercase, replaces spaces with hyphens, removes special chars.
func generateAnchor(title string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevHyphen = false
		} else if unicode.IsSpace(r) || r == '-' {
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}
