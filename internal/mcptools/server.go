package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/scaffold/internal/orchestrator"
)

// version is set by the linker at build time.
var version = "dev"

// NewScaffoldMCPServer creates an MCP server with the synthesis tools
// registered.
func NewScaffoldMCPServer(orch orchestrator.Orchestrator) *mcp.Server {
	svc := NewScaffoldService(orch)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "scaffold",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "plan_and_generate",
		Description: "Plan a project, design its file layout, write every file behind a quality gate, then add tests and a README. Returns the files and a quality summary.",
	}, svc.PlanAndGenerate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "synthesize_single",
		Description: "Send one prompt to the model and return its reply unchanged.",
	}, svc.SynthesizeSingle)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "improve_code",
		Description: "Refactor a piece of code against a list of improvement requirements.",
	}, svc.ImproveCode)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_tests",
		Description: "Write a test file for a piece of code with the given framework and coverage target.",
	}, svc.GenerateTests)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_project",
		Description: "Generate a whole project in a single model call using the === FILE: path === format.",
	}, svc.GenerateProject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_project",
		Description: "Split text in the === FILE: path === format into files. No model call.",
	}, svc.ParseProject)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
