package docs

import (
	"context"
	"fmt"

	"github.com/docsentry/docsentry/internal/types"
)

// StaticProvider implements Provider from in-memory fixtures. It backs
// offline runs and tests.
type StaticProvider struct {
	// Results maps a query substring to search hits.
	Results map[string][]SearchResult

	// Pages maps a URL to document text.
	Pages map[string]string

	// FailSubjects lists query substrings whose search fails with a
	// service-unavailable error.
	FailSubjects []string
}

// NewStaticProvider creates an empty static provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		Results: make(map[string][]SearchResult),
		Pages:   make(map[string]string),
	}
}

// WithResults registers search hits for a query substring.
func (p *StaticProvider) WithResults(querySubstring string, results ...SearchResult) *StaticProvider {
	p.Results[querySubstring] = results
	return p
}

// WithPage registers document text for a URL.
func (p *StaticProvider) WithPage(url, content string) *StaticProvider {
	p.Pages[url] = content
	return p
}

// WithFailure marks a query substring as failing.
func (p *StaticProvider) WithFailure(querySubstring string) *StaticProvider {
	p.FailSubjects = append(p.FailSubjects, querySubstring)
	return p
}

// Search returns the fixtures whose key is contained in the query.
func (p *StaticProvider) Search(ctx context.Context, query string) ([]SearchResult, error) {
	for _, failing := range p.FailSubjects {
		if containsFold(query, failing) {
			return nil, types.NewRetryableError(types.SERVICE_UNAVAILABLE,
				fmt.Sprintf("documentation search unavailable for query %q", query))
		}
	}

	for key, results := range p.Results {
		if containsFold(query, key) {
			return results, nil
		}
	}
	return nil, nil
}

// Read returns the fixture page for a URL.
func (p *StaticProvider) Read(ctx context.Context, url string) (string, error) {
	content, ok := p.Pages[url]
	if !ok {
		return "", types.NewError(types.TOOL_READ_FAILED, fmt.Sprintf("no document at %s", url))
	}
	return content, nil
}
