package docs

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docsentry/docsentry/internal/types"
)

// MCP tool names exposed by documentation MCP servers such as
// awslabs.aws-documentation-mcp-server.
const (
	toolSearchDocumentation = "search_documentation"
	toolReadDocumentation   = "read_documentation"
)

// ToolSession is the slice of an MCP client session the provider needs.
// *mcp.ClientSession satisfies it; tests substitute a fake.
type ToolSession interface {
	CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)
}

// MCPProvider implements Provider against a documentation MCP server.
type MCPProvider struct {
	session ToolSession
}

// NewMCPProvider wraps an established MCP session.
func NewMCPProvider(session ToolSession) *MCPProvider {
	return &MCPProvider{session: session}
}

// ConnectMCP dials a streamable-HTTP documentation MCP server and returns a
// provider bound to the session. The caller owns the session lifetime.
func ConnectMCP(ctx context.Context, endpoint string) (*MCPProvider, *mcp.ClientSession, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "docsentry",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: endpoint}, nil)
	if err != nil {
		return nil, nil, types.WrapError(types.SERVICE_UNAVAILABLE,
			fmt.Sprintf("failed to connect to MCP server at %s", endpoint), err)
	}

	return NewMCPProvider(session), session, nil
}

// Search calls the search_documentation tool.
func (p *MCPProvider) Search(ctx context.Context, query string) ([]SearchResult, error) {
	result, err := p.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolSearchDocumentation,
		Arguments: map[string]any{"query": query},
	})
	if err != nil {
		return nil, types.WrapError(types.TOOL_SEARCH_FAILED, "search_documentation call failed", err)
	}

	text := toolText(result)
	if result.IsError {
		return nil, types.NewError(types.TOOL_SEARCH_FAILED, text)
	}

	return parseSearchText(text), nil
}

// Read calls the read_documentation tool.
func (p *MCPProvider) Read(ctx context.Context, url string) (string, error) {
	result, err := p.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolReadDocumentation,
		Arguments: map[string]any{"url": url},
	})
	if err != nil {
		return "", types.WrapError(types.TOOL_READ_FAILED, "read_documentation call failed", err)
	}

	text := toolText(result)
	if result.IsError {
		return "", types.NewError(types.TOOL_READ_FAILED, text)
	}

	return text, nil
}

// toolText concatenates the text content blocks of a tool result.
func toolText(result *mcp.CallToolResult) string {
	var b strings.Builder
	for _, content := range result.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// parseSearchText converts the tool's line-oriented output into structured
// results. Lines are expected as "url - description"; lines without a
// separator become URL-only results.
func parseSearchText(text string) []SearchResult {
	var results []SearchResult
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Strip a leading "N." ordinal if present.
		if i := strings.Index(line, ". "); i > 0 && i <= 3 {
			line = strings.TrimSpace(line[i+2:])
		}

		url, description, found := strings.Cut(line, " - ")
		if !found {
			results = append(results, SearchResult{URL: strings.TrimSpace(line)})
			continue
		}
		results = append(results, SearchResult{
			URL:         strings.TrimSpace(url),
			Description: strings.TrimSpace(description),
		})
	}
	return results
}
