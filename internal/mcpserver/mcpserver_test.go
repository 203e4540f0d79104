package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symcalc"
	"github.com/njchilds90/symcalc/internal/telemetry"
)

func newEngine(t *testing.T) (*Engine, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewEngine(symcalc.DefaultConfig(), slog.New(slog.DiscardHandler), telemetry.NewRecorder(reg)), reg
}

func request(tool string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = tool
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return tc.Text
}

func TestNew_RegistersEveryTool(t *testing.T) {
	e, _ := newEngine(t)
	s, err := New(e)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestHandle_Diff(t *testing.T) {
	e, reg := newEngine(t)
	x := symcalc.S("x")
	res, err := e.Handle(context.Background(), request("diff", map[string]any{
		"expr": symcalc.ToMap(symcalc.PowOf(x, symcalc.N(3))),
		"var":  "x",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var resp symcalc.ToolResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &resp))
	assert.Equal(t, "3*x^2", resp.String)
	assert.NotEmpty(t, resp.Steps)

	n, err := testutil.GatherAndCount(reg, "symcalc_tool_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestHandle_ToolError(t *testing.T) {
	e, _ := newEngine(t)
	res, err := e.Handle(context.Background(), request("nonexistent", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), symcalc.ErrUnknownTool.Error())
}
