package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"flowguard-mcp/internal/catalog"
	"flowguard-mcp/internal/compliance"
	"flowguard-mcp/internal/platform"
	"flowguard-mcp/internal/repository"
	"flowguard-mcp/pkg/models"
)

// ErrNotCompliant is returned by Push when the cleaned graph still has
// errors and force was not set.
var ErrNotCompliant = errors.New("workflow is not compliant")

// PlatformClient is the slice of the management-API client the service
// needs. Kept as an interface so tests can stub the platform.
type PlatformClient interface {
	ListWorkflows(ctx context.Context) ([]platform.WorkflowSummary, error)
	GetWorkflow(ctx context.Context, id string) (*models.WorkflowGraph, error)
	CreateWorkflow(ctx context.Context, g *models.WorkflowGraph) (string, error)
	UpdateWorkflow(ctx context.Context, id string, g *models.WorkflowGraph) error
}

// WorkflowService composes the catalog provider, the compliance pipeline,
// the platform client and the optional audit trail. It is the single entry
// point the MCP tools and REST handlers call into.
type WorkflowService struct {
	provider *catalog.Provider
	platform PlatformClient
	audit    repository.AuditStore
	opts     compliance.Options

	runCounter   metric.Int64Counter
	errorCounter metric.Int64Counter
}

// NewWorkflowService creates a new WorkflowService. platform and audit may
// be nil for offline use (CLI check/clean of local files).
func NewWorkflowService(provider *catalog.Provider, platform PlatformClient,
	audit repository.AuditStore, opts compliance.Options) *WorkflowService {

	meter := otel.Meter("flowguard-mcp/services")
	runCounter, _ := meter.Int64Counter("compliance.runs",
		metric.WithDescription("Validation pipeline invocations"))
	errorCounter, _ := meter.Int64Counter("compliance.issues.errors",
		metric.WithDescription("Error-severity issues reported"))

	return &WorkflowService{
		provider:     provider,
		platform:     platform,
		audit:        audit,
		opts:         opts,
		runCounter:   runCounter,
		errorCounter: errorCounter,
	}
}

func (s *WorkflowService) pipeline() (*compliance.Pipeline, error) {
	cat, err := s.provider.Current()
	if err != nil {
		return nil, err
	}
	return compliance.New(cat, s.opts), nil
}

// Check runs the pipeline in check mode over raw workflow JSON.
func (s *WorkflowService) Check(ctx context.Context, raw []byte) (models.ValidationReport, error) {
	p, err := s.pipeline()
	if err != nil {
		return models.ValidationReport{}, err
	}
	report := p.CheckJSON(raw)
	s.record(ctx, "check", workflowName(raw), report, 0)
	return report, nil
}

// Clean runs the pipeline in clean mode over raw workflow JSON and returns
// the best-effort cleaned graph, the fix log and the report.
func (s *WorkflowService) Clean(ctx context.Context, raw []byte) (models.CleanResult, error) {
	p, err := s.pipeline()
	if err != nil {
		return models.CleanResult{}, err
	}
	result := p.CleanJSON(raw)
	s.record(ctx, "clean", workflowName(raw), result.Report, len(result.Fixed))
	return result, nil
}

// PullResult couples a fetched graph with its compliance report.
type PullResult struct {
	Workflow *models.WorkflowGraph   `json:"workflow"`
	Report   models.ValidationReport `json:"report"`
}

// Pull fetches a workflow from the platform and checks it. The graph is
// returned as fetched, server-managed fields included, so the caller can see
// exactly what the platform holds.
func (s *WorkflowService) Pull(ctx context.Context, id string) (*PullResult, error) {
	if s.platform == nil {
		return nil, errors.New("no platform client configured")
	}
	g, err := s.platform.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.pipeline()
	if err != nil {
		return nil, err
	}
	report := p.Check(g)
	s.record(ctx, "check", g.Name, report, 0)
	return &PullResult{Workflow: g, Report: report}, nil
}

// PushResult is the outcome of a Push: the id the platform assigned (or the
// id that was updated), plus the clean-mode artifacts.
type PushResult struct {
	ID     string                  `json:"id"`
	Fixed  []string                `json:"fixed"`
	Report models.ValidationReport `json:"report"`
}

// Push cleans raw workflow JSON and, when the result is compliant (or force
// is set), submits it to the platform: PUT when id is non-empty, POST
// otherwise. This is the pre-flight gate: nothing reaches the platform with
// unreviewed errors.
func (s *WorkflowService) Push(ctx context.Context, id string, raw []byte, force bool) (*PushResult, error) {
	if s.platform == nil {
		return nil, errors.New("no platform client configured")
	}

	result, err := s.Clean(ctx, raw)
	if err != nil {
		return nil, err
	}
	out := &PushResult{ID: id, Fixed: result.Fixed, Report: result.Report}

	if !result.Report.Valid && !force {
		return out, fmt.Errorf("%w: %d error(s); fix them or force the submission",
			ErrNotCompliant, result.Report.Summary.Errors)
	}

	if id == "" {
		created, err := s.platform.CreateWorkflow(ctx, result.Cleaned)
		if err != nil {
			return out, err
		}
		out.ID = created
		return out, nil
	}
	if err := s.platform.UpdateWorkflow(ctx, id, result.Cleaned); err != nil {
		return out, err
	}
	return out, nil
}

// ListWorkflows returns the platform's workflow summaries.
func (s *WorkflowService) ListWorkflows(ctx context.Context) ([]platform.WorkflowSummary, error) {
	if s.platform == nil {
		return nil, errors.New("no platform client configured")
	}
	return s.platform.ListWorkflows(ctx)
}

// RecentRuns returns the latest audit trail entries, newest first.
func (s *WorkflowService) RecentRuns(ctx context.Context, limit int) ([]*repository.ValidationRun, error) {
	if s.audit == nil {
		return nil, errors.New("no audit trail configured")
	}
	if limit <= 0 {
		limit = 50
	}
	return s.audit.ListRuns(ctx, limit)
}

// NodeTypes returns every catalog entry.
func (s *WorkflowService) NodeTypes() ([]*catalog.NodeTypeSchema, error) {
	cat, err := s.provider.Current()
	if err != nil {
		return nil, err
	}
	return cat.Types(), nil
}

// NodeType resolves one type identifier (canonical, short form or known
// malformed variant).
func (s *WorkflowService) NodeType(raw string) (*catalog.NodeTypeSchema, error) {
	cat, err := s.provider.Current()
	if err != nil {
		return nil, err
	}
	schema, ok := cat.Resolve(raw)
	if !ok {
		return nil, fmt.Errorf("unknown node type %q", raw)
	}
	return schema, nil
}

// record updates metrics and, when an audit store is wired, persists the run
// aggregates. Audit failures are deliberately swallowed: the report already
// exists and losing a trail row must not fail the caller's validation.
func (s *WorkflowService) record(ctx context.Context, mode, name string, report models.ValidationReport, fixCount int) {
	s.runCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("valid", report.Valid),
	))
	s.errorCounter.Add(ctx, int64(report.Summary.Errors),
		metric.WithAttributes(attribute.String("mode", mode)))

	if s.audit == nil {
		return
	}
	_ = s.audit.RecordRun(ctx, &repository.ValidationRun{
		ID:           uuid.New().String(),
		WorkflowName: name,
		Mode:         mode,
		Valid:        report.Valid,
		ErrorCount:   report.Summary.Errors,
		WarningCount: report.Summary.Warnings,
		FixCount:     fixCount,
		CreatedAt:    time.Now().UTC(),
	})
}

// workflowName pulls the display name out of raw input without failing on
// malformed JSON.
func workflowName(raw []byte) string {
	var probe struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Name == "" {
		return "(unnamed)"
	}
	return probe.Name
}
