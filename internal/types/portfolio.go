package types

// PortfolioSummary describes the outcome of one portfolio aggregation, for
// verbose CLI output and logs.
type PortfolioSummary struct {
	RootURL       string
	RootTitle     string
	Sections      []SectionSummary
	Skipped       []SkippedSummary
	Omitted       int
	ContentLength int
	Truncated     bool
}

// SectionSummary is a sub-page that made it into the aggregated content.
type SectionSummary struct {
	Category string
	URL      string
	Title    string
}

// SkippedSummary is a ranked link whose fetch failed.
type SkippedSummary struct {
	Category string
	URL      string
	Kind     string
	Reason   string
}
