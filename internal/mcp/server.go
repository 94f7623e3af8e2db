package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"flowguard-mcp/internal/services"
)

type Server struct {
	mcpServer *server.MCPServer
	workflows *services.WorkflowService
}

func NewServer(workflows *services.WorkflowService) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"FlowGuard",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		workflows: workflows,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"validate_workflow",
			mcp.WithDescription("Check a workflow graph for compliance problems without changing it"),
			mcp.WithString("workflow", mcp.Required(), mcp.Description("The workflow JSON to validate")),
		),
		s.handleValidateWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"clean_workflow",
			mcp.WithDescription("Sanitize and normalize a workflow graph, returning the cleaned graph, the applied fixes and a compliance report"),
			mcp.WithString("workflow", mcp.Required(), mcp.Description("The workflow JSON to clean")),
		),
		s.handleCleanWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_workflow",
			mcp.WithDescription("Fetch a workflow from the platform together with its compliance report"),
			mcp.WithString("id", mcp.Required(), mcp.Description("The platform workflow id")),
		),
		s.handleGetWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"push_workflow",
			mcp.WithDescription("Clean a workflow and submit it to the platform; refuses non-compliant graphs unless force is set"),
			mcp.WithString("workflow", mcp.Required(), mcp.Description("The workflow JSON to submit")),
			mcp.WithString("id", mcp.Description("Existing workflow id to update; omit to create")),
			mcp.WithBoolean("force", mcp.Description("Submit even when errors remain")),
		),
		s.handlePushWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_workflows",
			mcp.WithDescription("List the workflows present on the platform"),
		),
		s.handleListWorkflows,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_node_types",
			mcp.WithDescription("List the node types the catalog knows, with their valid versions"),
		),
		s.handleListNodeTypes,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_node_type",
			mcp.WithDescription("Look up one node type by canonical name, short form or common malformed variant"),
			mcp.WithString("name", mcp.Required(), mcp.Description("The type identifier to resolve")),
		),
		s.handleGetNodeType,
	)
}

func (s *Server) handleValidateWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := stringArg(request, "workflow")
	if errResult != nil {
		return errResult, nil
	}

	report, err := s.workflows.Check(ctx, []byte(raw))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to validate: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(report)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleCleanWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := stringArg(request, "workflow")
	if errResult != nil {
		return errResult, nil
	}

	result, err := s.workflows.Clean(ctx, []byte(raw))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to clean: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := stringArg(request, "id")
	if errResult != nil {
		return errResult, nil
	}

	result, err := s.workflows.Pull(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handlePushWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := stringArg(request, "workflow")
	if errResult != nil {
		return errResult, nil
	}

	args, _ := request.Params.Arguments.(map[string]interface{})
	id, _ := args["id"].(string)
	force, _ := args["force"].(bool)

	result, err := s.workflows.Push(ctx, id, []byte(raw), force)
	if err != nil {
		// A refused submission still carries the report the caller needs.
		if result != nil {
			jsonBytes, _ := json.Marshal(result)
			return mcp.NewToolResultError(fmt.Sprintf("Submission refused: %v\n%s", err, jsonBytes)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to push workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries, err := s.workflows.ListWorkflows(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list workflows: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(summaries)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListNodeTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	types, err := s.workflows.NodeTypes()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list node types: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(types)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetNodeType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, errResult := stringArg(request, "name")
	if errResult != nil {
		return errResult, nil
	}

	schema, err := s.workflows.NodeType(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	jsonBytes, _ := json.Marshal(schema)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func stringArg(request mcp.CallToolRequest, key string) (string, *mcp.CallToolResult) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", mcp.NewToolResultError("Invalid arguments type")
	}
	value, ok := args[key].(string)
	if !ok || value == "" {
		return "", mcp.NewToolResultError("Missing required parameter: " + key)
	}
	return value, nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
