package compliance

import (
	"bytes"
	"encoding/json"
	"fmt"

	"flowguard-mcp/internal/catalog"
	"flowguard-mcp/pkg/models"
)

// Pipeline sequences sanitize → normalize → validate → report over a working
// copy of the input graph. It is a pure, synchronous computation: safe for
// concurrent use since each run owns its copy and the catalog is read-only.
type Pipeline struct {
	sanitizer  *Sanitizer
	normalizer *Normalizer
	validator  *Validator
}

// New builds a pipeline over the given catalog and policy options.
func New(cat *catalog.Catalog, opts Options) *Pipeline {
	return &Pipeline{
		sanitizer:  NewSanitizer(opts),
		normalizer: NewNormalizer(cat, opts),
		validator:  NewValidator(cat, opts),
	}
}

// Check runs the pipeline in check mode: a pre-flight gate producing only a
// report. The caller's graph is never mutated.
func (p *Pipeline) Check(g *models.WorkflowGraph) models.ValidationReport {
	_, _, report := p.run(g)
	return report
}

// Clean runs the pipeline in clean mode: the sanitized, normalized graph is
// returned alongside the report and fix log. When errors remain the
// best-effort cleaned graph is still returned; the caller decides whether to
// proceed.
func (p *Pipeline) Clean(g *models.WorkflowGraph) models.CleanResult {
	cleaned, fixes, report := p.run(g)
	return models.CleanResult{
		Cleaned: cleaned,
		Fixed:   fixes,
		Report:  report,
	}
}

// CheckJSON validates raw JSON input. Malformed input (not an object,
// non-array nodes) is reported as a single top-level structural error, never
// a panic or a Go error.
func (p *Pipeline) CheckJSON(data []byte) models.ValidationReport {
	g, issue := decodeGraph(data)
	if issue != nil {
		return BuildReport([]models.ComplianceIssue{*issue})
	}
	return p.Check(g)
}

// CleanJSON is CheckJSON's clean-mode counterpart.
func (p *Pipeline) CleanJSON(data []byte) models.CleanResult {
	g, issue := decodeGraph(data)
	if issue != nil {
		return models.CleanResult{
			Fixed:  []string{},
			Report: BuildReport([]models.ComplianceIssue{*issue}),
		}
	}
	return p.Clean(g)
}

func (p *Pipeline) run(g *models.WorkflowGraph) (*models.WorkflowGraph, []string, models.ValidationReport) {
	if g == nil {
		issue := models.ComplianceIssue{
			Severity:    models.SeverityError,
			Kind:        models.KindStructural,
			Message:     "workflow graph is missing",
			AutoFixable: false,
		}
		return nil, []string{}, BuildReport([]models.ComplianceIssue{issue})
	}

	working := g.Clone()
	fixes := []string{}
	var issues []models.ComplianceIssue

	sanFixes, sanIssues := p.sanitizer.Sanitize(working)
	fixes = append(fixes, sanFixes...)
	issues = append(issues, sanIssues...)

	normFixes, normIssues := p.normalizer.Normalize(working)
	fixes = append(fixes, normFixes...)
	issues = append(issues, normIssues...)

	issues = append(issues, p.validator.Validate(working)...)

	return working, fixes, BuildReport(issues)
}

// decodeGraph parses raw input into a graph, mapping malformed shapes to a
// single structural issue.
func decodeGraph(data []byte) (*models.WorkflowGraph, *models.ComplianceIssue) {
	structural := func(msg string) *models.ComplianceIssue {
		return &models.ComplianceIssue{
			Severity:    models.SeverityError,
			Kind:        models.KindStructural,
			Message:     msg,
			AutoFixable: false,
		}
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, structural("workflow must be a JSON object")
	}
	if nodes, ok := probe["nodes"]; ok {
		trimmed := bytes.TrimSpace(nodes)
		if len(trimmed) == 0 || (trimmed[0] != '[' && !bytes.Equal(trimmed, []byte("null"))) {
			return nil, structural("workflow field \"nodes\" must be an array")
		}
	}

	var g models.WorkflowGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, structural(fmt.Sprintf("workflow does not match the expected shape: %v", err))
	}
	return &g, nil
}
