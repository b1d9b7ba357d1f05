package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMDA_SkipsTableOfContents(t *testing.T) {
	filler := strings.Repeat("Revenue grew due to expansion. ", 300)
	doc := `<html><body>` +
		`<p>Item 7. Management's Discussion</p><p>Item 8. Financial Statements</p>` +
		`<p>Item 1. Business</p>` +
		`<h2>Item 7. Management's Discussion and Analysis</h2><p>` + filler + `</p>` +
		`<h2>Item 7A. Quantitative and Qualitative Disclosures</h2><p>Rates.</p>` +
		`</body></html>`

	got := ExtractMDA(doc)
	assert.True(t, strings.HasPrefix(got, "Item 7. Management's Discussion and Analysis Revenue grew"))
	assert.True(t, strings.HasSuffix(got, "expansion."))
	assert.NotContains(t, got, "Quantitative")
	assert.Greater(t, len(got), MaxSectionWindow)
}

func TestExtractMDA_FixedWindowWhenNoEndMarker(t *testing.T) {
	doc := `<p>ITEM 7. MANAGEMENT'S DISCUSSION</p><p>` + strings.Repeat("x ", 6000) + `</p>`

	got := ExtractMDA(doc)
	assert.True(t, strings.HasPrefix(got, "ITEM 7. MANAGEMENT'S DISCUSSION x x"))
	assert.LessOrEqual(t, len(got), MaxSectionWindow)
}

func TestExtractMDA_DecodesEntities(t *testing.T) {
	doc := "<p>Item\u00a07. Management&#8217;s Discussion &amp; Analysis</p><p>Our NRR&nbsp;was   120%</p>"

	assert.Equal(t, "Item 7. Management’s Discussion & Analysis Our NRR was 120%", ExtractMDA(doc))
}

func TestExtractMDA_LooseHeading(t *testing.T) {
	doc := `<p>Item 7 - Executive overview and discussion of results</p><p>Body.</p>`
	assert.Equal(t, "Item 7 - Executive overview and discussion of results Body.", ExtractMDA(doc))
}

func TestExtractMDA_NoSection(t *testing.T) {
	assert.Empty(t, ExtractMDA(`<p>Item 1. Business</p><p>Item 7A. Market risk</p>`))
	assert.Empty(t, ExtractMDA(""))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tags become breaks", `<div>alpha<b>beta</b></div>`, "alpha beta"},
		{"script dropped", `<p>keep</p><script>var x = 1;</script>`, "keep"},
		{"whitespace collapsed", "<p>a\n\n\t b</p>", "a b"},
		{"entities", `<p>R&amp;D &lt;growth&gt;</p>`, "R&D <growth>"},
		{"plain text", "just text", "just text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}
