package docs

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsentry/docsentry/internal/types"
)

func TestStaticProvider_Search(t *testing.T) {
	provider := NewStaticProvider().
		WithResults("S3", SearchResult{URL: "https://docs.example.com/s3", Description: "S3 security"})

	results, err := provider.Search(context.Background(), "S3 security controls best practices compliance")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://docs.example.com/s3", results[0].URL)

	results, err = provider.Search(context.Background(), "unknown subject")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStaticProvider_Failure(t *testing.T) {
	provider := NewStaticProvider().WithFailure("BadService")

	_, err := provider.Search(context.Background(), "BadService security controls")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.SERVICE_UNAVAILABLE, ""))
}

func TestStaticProvider_Read(t *testing.T) {
	provider := NewStaticProvider().WithPage("https://docs.example.com/s3", "Enable bucket encryption.")

	content, err := provider.Read(context.Background(), "https://docs.example.com/s3")
	require.NoError(t, err)
	assert.Equal(t, "Enable bucket encryption.", content)

	_, err = provider.Read(context.Background(), "https://docs.example.com/absent")
	assert.Error(t, err)
}

func TestRenderSearchResults(t *testing.T) {
	out := RenderSearchResults([]SearchResult{
		{URL: "https://a", Description: "first"},
		{URL: "https://b", Description: "second"},
	}, nil)

	assert.Contains(t, out, "returned 2 results")
	assert.Contains(t, out, "1. https://a - first")
	assert.Contains(t, out, "2. https://b - second")
}

func TestRenderSearchResults_ErrorPayload(t *testing.T) {
	out := RenderSearchResults(nil, errors.New("connection refused"))
	assert.Contains(t, out, "[tool error]")
	assert.Contains(t, out, "connection refused")
}

func TestRenderDocument(t *testing.T) {
	out := RenderDocument("https://a", "body text", nil)
	assert.Contains(t, out, "https://a")
	assert.Contains(t, out, "body text")

	out = RenderDocument("https://a", "", errors.New("404"))
	assert.Contains(t, out, "[tool error]")

	out = RenderDocument("https://a", "   ", nil)
	assert.Contains(t, out, "empty content")
}

type fakeSession struct {
	result *mcp.CallToolResult
	err    error

	lastName string
	lastArgs map[string]any
}

func (f *fakeSession) CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error) {
	f.lastName = params.Name
	if args, ok := params.Arguments.(map[string]any); ok {
		f.lastArgs = args
	}
	return f.result, f.err
}

func TestMCPProvider_Search(t *testing.T) {
	session := &fakeSession{
		result: &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: "1. https://docs.example.com/s3 - S3 security guide\n2. https://docs.example.com/iam - IAM basics"},
			},
		},
	}

	provider := NewMCPProvider(session)

	results, err := provider.Search(context.Background(), "S3 security")
	require.NoError(t, err)
	assert.Equal(t, "search_documentation", session.lastName)
	assert.Equal(t, "S3 security", session.lastArgs["query"])

	require.Len(t, results, 2)
	assert.Equal(t, "https://docs.example.com/s3", results[0].URL)
	assert.Equal(t, "S3 security guide", results[0].Description)
	assert.Equal(t, "https://docs.example.com/iam", results[1].URL)
}

func TestMCPProvider_SearchToolError(t *testing.T) {
	session := &fakeSession{
		result: &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: "rate limited"}},
		},
	}

	_, err := NewMCPProvider(session).Search(context.Background(), "S3")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.TOOL_SEARCH_FAILED, ""))
}

func TestMCPProvider_Read(t *testing.T) {
	session := &fakeSession{
		result: &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "page body"}},
		},
	}

	provider := NewMCPProvider(session)

	content, err := provider.Read(context.Background(), "https://docs.example.com/s3")
	require.NoError(t, err)
	assert.Equal(t, "read_documentation", session.lastName)
	assert.Equal(t, "https://docs.example.com/s3", session.lastArgs["url"])
	assert.Equal(t, "page body", content)
}

func TestMCPProvider_ReadTransportError(t *testing.T) {
	session := &fakeSession{err: errors.New("connection reset")}

	_, err := NewMCPProvider(session).Read(context.Background(), "https://docs.example.com/s3")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.TOOL_READ_FAILED, ""))
}
