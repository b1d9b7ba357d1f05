package model

import "fmt"

// NarrativeText is management commentary extracted from a filing.
type NarrativeText struct {
	Ticker     string     `json:"ticker" yaml:"ticker"`
	Text       string     `json:"text" yaml:"text"`
	Provenance Provenance `json:"provenance" yaml:"provenance"`
}

// Truncate returns the first max characters of the text. A non-positive
// max returns the full text.
func (n NarrativeText) Truncate(max int) string {
	if max <= 0 || len(n.Text) <= max {
		return n.Text
	}
	count := 0
	for i := range n.Text {
		if count == max {
			return n.Text[:i]
		}
		count++
	}
	return n.Text
}

// FallbackNarrative returns a deterministic MD&A stand-in. It mentions net
// revenue retention and growth investment so the estimator has realistic
// input when the filing cannot be fetched.
func FallbackNarrative(ticker string) NarrativeText {
	return NarrativeText{
		Ticker: ticker,
		Text: fmt.Sprintf("Management Discussion & Analysis for %s: "+
			"Our Net Revenue Retention rate remained strong at 123%%, driven by upsells to existing enterprise customers. "+
			"We continue to invest aggressively in Sales & Marketing to capture market share in new geographies. "+
			"Research & Development expenses increased as we launched our new 'Enterprise Grid' platform features.", ticker),
		Provenance: Mock(),
	}
}
