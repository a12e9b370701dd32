// Package docs supplies the external tool providers the pipeline consumes:
// documentation search and document retrieval. Providers surface failures
// as error payloads in the transcript rather than aborting a stage.
package docs

import (
	"context"
	"fmt"
	"strings"
)

// SearchResult is one raw search hit.
type SearchResult struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Searcher finds candidate documentation for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Reader retrieves the text of a documentation page.
type Reader interface {
	Read(ctx context.Context, url string) (string, error)
}

// Provider bundles both tool capabilities.
type Provider interface {
	Searcher
	Reader
}

// RenderSearchResults formats search hits for injection into a stage's
// context. A failed search is rendered as an error payload so the persona
// can surface it instead of fabricating results.
func RenderSearchResults(results []SearchResult, err error) string {
	if err != nil {
		return fmt.Sprintf("[tool error] search_documentation failed: %v", err)
	}
	if len(results) == 0 {
		return "[tool result] search_documentation returned no results"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[tool result] search_documentation returned %d results:\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, r.URL, r.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderDocument formats retrieved document text for injection into a
// stage's context, with the same error-payload convention as search.
func RenderDocument(url, content string, err error) string {
	if err != nil {
		return fmt.Sprintf("[tool error] read_documentation failed for %s: %v", url, err)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Sprintf("[tool result] read_documentation returned empty content for %s", url)
	}
	return fmt.Sprintf("[tool result] read_documentation content for %s:\n%s", url, content)
}
