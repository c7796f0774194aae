// Package crawling selects the relevant sub-pages of a portfolio site with an
// LLM and aggregates their text into a bounded block of content.
package crawling

import "fmt"

// AggregationError represents a failure to build portfolio content, such as
// the root page being unreachable.
type AggregationError struct {
	URL     string
	Message string
	Cause   error
}

func (e *AggregationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("aggregation error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("aggregation error for %s: %s", e.URL, e.Message)
}

func (e *AggregationError) Unwrap() error {
	return e.Cause
}

// ModelResponseError represents a failed link-ranking LLM call or a response
// that is not the expected JSON shape.
type ModelResponseError struct {
	Message  string
	Response string
	Cause    error
}

func (e *ModelResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model response error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("model response error: %s", e.Message)
}

func (e *ModelResponseError) Unwrap() error {
	return e.Cause
}

// LinkResolutionError represents a ranked link that cannot be turned into a
// fetchable http(s) URL.
type LinkResolutionError struct {
	Link    string
	Message string
	Cause   error
}

func (e *LinkResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link resolution error for %q: %s: %v", e.Link, e.Message, e.Cause)
	}
	return fmt.Sprintf("link resolution error for %q: %s", e.Link, e.Message)
}

func (e *LinkResolutionError) Unwrap() error {
	return e.Cause
}
