package narrative

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Section-boundary heuristic. An end marker closer than MinSectionSpan to
// its start is usually a table-of-contents entry, so the span falls back to
// a fixed MaxSectionWindow instead. Both are tunable; offsets are in bytes.
const (
	MinSectionSpan   = 2000
	MaxSectionWindow = 8000
)

// Filing HTML often separates words with non-breaking spaces.
const ws = `[\s\x{00a0}]`

var (
	mdaStart = regexp.MustCompile(`(?i)item` + ws + `+7\.?` + ws + `*(management|[^<]{0,80}discussion)`)
	mdaEnd   = regexp.MustCompile(`(?i)item` + ws + `+7a\.?|item` + ws + `+8\.?`)
)

// ExtractMDA returns the cleaned text of the Management's Discussion and
// Analysis section (Item 7) of a 10-K body, or "" if no section start is
// found. Every candidate start is tried and the longest cleaned span wins.
func ExtractMDA(doc string) string {
	var best string
	for _, loc := range mdaStart.FindAllStringIndex(doc, -1) {
		start := loc[0]
		end := start + MaxSectionWindow
		if m := mdaEnd.FindStringIndex(doc[start:]); m != nil && m[0] > MinSectionSpan {
			end = start + m[0]
		}
		if end > len(doc) {
			end = len(doc)
		}

		if text := CleanText(doc[start:end]); len(text) > len(best) {
			best = text
		}
	}
	return best
}

// CleanText strips markup from an HTML fragment, decodes entities and
// collapses whitespace. Tag boundaries become word breaks.
func CleanText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc.Find("script, style").Remove()

	var b strings.Builder
	for _, n := range doc.Nodes {
		collectText(n, &b)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
