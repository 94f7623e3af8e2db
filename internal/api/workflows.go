package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"flowguard-mcp/internal/services"
)

// Server holds the dependencies for the API server.
type Server struct {
	Workflows *services.WorkflowService
}

// NewServer creates a new Server.
func NewServer(workflows *services.WorkflowService) *Server {
	return &Server{Workflows: workflows}
}

// RegisterHandlers mounts the REST routes on an echo group.
func RegisterHandlers(g *echo.Group, s *Server) {
	g.GET("/workflows", s.ListWorkflows)
	g.POST("/workflows/validate", s.ValidateWorkflow)
	g.POST("/workflows/clean", s.CleanWorkflow)
	g.POST("/workflows/push", s.PushWorkflow)
	g.GET("/node-types", s.ListNodeTypes)
	g.GET("/node-types/:name", s.GetNodeType)
	g.GET("/runs", s.ListRuns)
}

// ListWorkflows returns the platform's workflow summaries.
// (GET /api/v1/workflows)
func (s *Server) ListWorkflows(c echo.Context) error {
	summaries, err := s.Workflows.ListWorkflows(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, summaries)
}

// ValidateWorkflow runs the pipeline in check mode over the request body.
// (POST /api/v1/workflows/validate)
func (s *Server) ValidateWorkflow(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body: "+err.Error())
	}

	report, err := s.Workflows.Check(c.Request().Context(), raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

// CleanWorkflow runs the pipeline in clean mode over the request body and
// returns the cleaned graph, the fix log and the report.
// (POST /api/v1/workflows/clean)
func (s *Server) CleanWorkflow(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body: "+err.Error())
	}

	result, err := s.Workflows.Clean(c.Request().Context(), raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// PushWorkflow cleans the request body and submits it to the platform,
// refusing non-compliant graphs unless ?force=true.
// (POST /api/v1/workflows/push)
func (s *Server) PushWorkflow(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body: "+err.Error())
	}
	id := c.QueryParam("id")
	force := c.QueryParam("force") == "true"

	result, err := s.Workflows.Push(c.Request().Context(), id, raw, force)
	if err != nil {
		if errors.Is(err, services.ErrNotCompliant) {
			// The report explains the refusal; 422 keeps it distinct from
			// transport failures.
			return c.JSON(http.StatusUnprocessableEntity, result)
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// ListNodeTypes returns every catalog entry.
// (GET /api/v1/node-types)
func (s *Server) ListNodeTypes(c echo.Context) error {
	types, err := s.Workflows.NodeTypes()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, types)
}

// GetNodeType resolves one type identifier, accepting short forms and the
// known malformed variants.
// (GET /api/v1/node-types/:name)
func (s *Server) GetNodeType(c echo.Context) error {
	schema, err := s.Workflows.NodeType(c.Param("name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, schema)
}

// ListRuns returns recent audit trail entries.
// (GET /api/v1/runs)
func (s *Server) ListRuns(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	runs, err := s.Workflows.RecentRuns(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(http.StatusOK, runs)
}
