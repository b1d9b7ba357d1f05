package model

// Source names for data provenance.
const (
	SourceFMP   = "fmp"
	SourceYahoo = "yahoo"
	SourceEDGAR = "edgar"
	SourceLLM   = "llm"
	SourceMock  = "mock"
)

// Provenance records which source produced an entity and whether the data
// is synthetic. Every resolved entity carries one.
type Provenance struct {
	Source string `json:"source" yaml:"source"`
	Mock   bool   `json:"is_mock" yaml:"is_mock"`
}

// Live reports a provenance that came from a real upstream.
func Live(source string) Provenance {
	return Provenance{Source: source}
}

// Mock reports a provenance for a static fallback value.
func Mock() Provenance {
	return Provenance{Source: SourceMock, Mock: true}
}

// String renders the provenance for logs and reports.
func (p Provenance) String() string {
	if p.Mock {
		return p.Source + " (mock)"
	}
	return p.Source
}
