package models

// Severity classifies a compliance issue. Only errors make a graph invalid;
// warnings and suggestions are advisory.
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// Issue kinds, mirroring the engine's error taxonomy.
const (
	KindStructural       = "structural"
	KindReferential      = "referential"
	KindCompatibility    = "compatibility"
	KindVersionMigration = "version_migration"
)

// ComplianceIssue is a single finding from one of the pipeline stages.
// Issues are produced fresh on every run and never persisted.
type ComplianceIssue struct {
	Severity    Severity `json:"severity"`
	Kind        string   `json:"kind,omitempty"`
	NodeName    string   `json:"nodeName,omitempty"`
	Message     string   `json:"message"`
	AutoFixable bool     `json:"autoFixable"`
}

// ReportSummary carries the per-severity counts of a report.
type ReportSummary struct {
	Errors      int `json:"errors"`
	Warnings    int `json:"warnings"`
	Suggestions int `json:"suggestions"`
}

// ValidationReport aggregates the findings of all pipeline stages. Valid is
// false exactly when Errors is non-empty.
type ValidationReport struct {
	Valid       bool              `json:"valid"`
	Errors      []ComplianceIssue `json:"errors"`
	Warnings    []ComplianceIssue `json:"warnings"`
	Suggestions []ComplianceIssue `json:"suggestions"`
	Summary     ReportSummary     `json:"summary"`
}

// CleanResult is the outcome of a clean-mode pipeline run: the best-effort
// repaired graph, the log of fixes actually applied (repairs, not issues),
// and the report over the repaired graph.
type CleanResult struct {
	Cleaned *WorkflowGraph   `json:"cleaned"`
	Fixed   []string         `json:"fixed"`
	Report  ValidationReport `json:"report"`
}
