package mcp_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
	"github.com/Sumatoshi-tech/amdshake/pkg/graphview"
	"github.com/Sumatoshi-tech/amdshake/pkg/mcp"
)

const bundle = `define("app/main", ["app/util", "lib/dom"], function (util, dom) { util.go(dom.body); });
define("app/util", [], function () { return { go: 1 }; });
define("lib/dom", [], function () { return { body: 2 }; });
define("app/dead", [], function () { return 3; });
`

// connect starts srv on an in-memory transport and returns a connected
// client session. The server stops when the test ends.
func connect(t *testing.T, srv *mcp.Server) (context.Context, *mcpsdk.ClientSession) {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return ctx, session
}

func call(t *testing.T, ctx context.Context, session *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	return result
}

func firstText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok, "first content is %T", result.Content[0])

	return text.Text
}

type bundlePayload struct {
	Bundle  string `json:"bundle"`
	Summary struct {
		Operation     string `json:"operation"`
		Strategy      string `json:"strategy"`
		ModulesBefore int    `json:"modules_before"`
		ModulesAfter  int    `json:"modules_after"`
	} `json:"summary"`
}

func decodeBundle(t *testing.T, result *mcpsdk.CallToolResult) bundlePayload {
	t.Helper()

	var payload bundlePayload

	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &payload))

	return payload
}

func TestMCPServer_InMemoryTransport_ToolsList(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})
	assert.Equal(t, []string{"amd_graph", "amd_shrink", "amd_treeshake"}, srv.ListToolNames())

	ctx, session := connect(t, srv)

	toolsResult, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, toolsResult)

	toolNames := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		toolNames = append(toolNames, tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
		assert.NotEmpty(t, tool.Description)
	}

	assert.ElementsMatch(t, []string{mcp.ToolNameShrink, mcp.ToolNameTreeshake, mcp.ToolNameGraph}, toolNames)
}

func TestMCPServer_InMemoryTransport_CallShrink(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := call(t, ctx, session, mcp.ToolNameShrink, map[string]any{
		"bundle":   bundle,
		"strategy": "obfuscate",
	})
	assert.False(t, result.IsError)

	payload := decodeBundle(t, result)
	assert.Equal(t, "shrink", payload.Summary.Operation)
	assert.Equal(t, "obfuscate", payload.Summary.Strategy)
	assert.Equal(t, 4, payload.Summary.ModulesAfter)
	assert.Equal(t, []string{"a", "b", "c", "d"}, amd.Names(payload.Bundle))
}

func TestMCPServer_InMemoryTransport_CallShrinkUnknownStrategy(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := call(t, ctx, session, mcp.ToolNameShrink, map[string]any{
		"bundle":   bundle,
		"strategy": "rot13",
	})
	assert.True(t, result.IsError)
	assert.Contains(t, firstText(t, result), "unknown")
}

func TestMCPServer_InMemoryTransport_CallTreeshake(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := call(t, ctx, session, mcp.ToolNameTreeshake, map[string]any{
		"bundle": bundle,
		"keep":   []string{"app/main"},
		"remove": []string{"lib/dom"},
	})
	assert.False(t, result.IsError)

	payload := decodeBundle(t, result)
	assert.Equal(t, "treeshake", payload.Summary.Operation)
	assert.Equal(t, 4, payload.Summary.ModulesBefore)
	assert.Equal(t, []string{"app/main", "app/util"}, amd.Names(payload.Bundle))
}

func TestMCPServer_InMemoryTransport_CallGraph(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := call(t, ctx, session, mcp.ToolNameGraph, map[string]any{
		"bundle": `define("a", ["b", "jquery"], function (b, $) { b.x($); });
define("b", ["a"], function (a) { a.y(); });`,
	})
	assert.False(t, result.IsError)

	var view graphview.View

	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &view))
	assert.Equal(t, []string{"jquery"}, view.Externals)
	assert.Equal(t, [][]string{{"a", "b"}}, view.Cycles)
}

func TestMCPServer_InMemoryTransport_InputErrors(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{MaxBundleBytes: 64}))

	tests := []struct {
		tool string
		args map[string]any
		want string
	}{
		{mcp.ToolNameShrink, map[string]any{"bundle": ""}, "must not be empty"},
		{mcp.ToolNameTreeshake, map[string]any{"bundle": ""}, "must not be empty"},
		{mcp.ToolNameGraph, map[string]any{"bundle": ""}, "must not be empty"},
		{mcp.ToolNameShrink, map[string]any{"bundle": bundle}, "exceeds maximum size"},
		{mcp.ToolNameGraph, map[string]any{"bundle": bundle}, "exceeds maximum size"},
		{mcp.ToolNameTreeshake, map[string]any{"bundle": `define("a", [], 1);`, "compare": bundle}, "compare is"},
	}

	for _, tt := range tests {
		result := call(t, ctx, session, tt.tool, tt.args)
		assert.True(t, result.IsError, tt.tool)
		assert.Contains(t, firstText(t, result), tt.want, tt.tool)
	}
}

func TestMCPServer_Tracing(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{Tracer: provider.Tracer("test")}))

	result := call(t, ctx, session, mcp.ToolNameTreeshake, map[string]any{
		"bundle": bundle,
		"keep":   []string{"app/main"},
	})
	require.False(t, result.IsError)

	last, ok := result.Content[len(result.Content)-1].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(last.Text, "trace_id="))

	names := make([]string, 0)
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}

	assert.Contains(t, names, "mcp.amd_treeshake")
	assert.Contains(t, names, "amdshake.treeshake")
}
