// Package mcpserver serves the symcalc tools over the Model Context
// Protocol, for clients that launch the engine as a stdio subprocess.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/njchilds90/symcalc"
	"github.com/njchilds90/symcalc/internal/telemetry"
)

// Version is reported in the MCP initialize handshake.
var Version = "dev"

const instructions = `symcalc computes exact derivatives, integrals and limits.
Expressions are JSON trees such as {"type":"pow","base":{"type":"sym","name":"x"},"exp":{"type":"num","value":2}}.
Every result carries the derivation steps; failures list what could not be solved.`

// Engine runs tool calls with a fixed configuration.
type Engine struct {
	cfg      symcalc.Config
	logger   *slog.Logger
	recorder *telemetry.Recorder
}

func NewEngine(cfg symcalc.Config, logger *slog.Logger, rec *telemetry.Recorder) *Engine {
	return &Engine{cfg: cfg, logger: logger, recorder: rec}
}

// New builds an MCP server exposing every tool in symcalc.ToolSchemas.
func New(e *Engine) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		"symcalc",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	for _, schema := range symcalc.ToolSchemas() {
		name, _ := schema["name"].(string)
		desc, _ := schema["description"].(string)
		raw, err := json.Marshal(schema["inputSchema"])
		if err != nil {
			return nil, fmt.Errorf("tool %s: encoding input schema: %w", name, err)
		}
		s.AddTool(mcp.NewToolWithRawSchema(name, desc, raw), e.Handle)
	}
	return s, nil
}

// Handle answers one tools/call request. Engine failures are reported as
// tool errors in the result, not as protocol errors.
func (e *Engine) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	tool := req.Params.Name
	resp := symcalc.HandleToolCall(
		symcalc.ToolRequest{Tool: tool, Params: req.GetArguments()},
		symcalc.WithConfig(e.cfg),
		symcalc.WithLogger(e.logger),
		symcalc.WithRecorder(e.recorder),
	)
	result := telemetry.Outcome(resp)
	took := time.Since(start)
	e.recorder.ObserveCall(tool, result, len(resp.Steps), took)
	e.logger.InfoContext(ctx, "tool call", "transport", "mcp", "tool", tool, "result", result, "duration", took)

	if resp.Error != "" {
		return mcp.NewToolResultError(resp.Error), nil
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encoding %s response: %w", tool, err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// ServeStdio blocks serving s on stdin and stdout until the client
// disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
