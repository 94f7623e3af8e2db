package compliance

import "flowguard-mcp/pkg/models"

// BuildReport partitions accumulated issues by severity into a validation
// report. Valid is false exactly when at least one error is present;
// warnings and suggestions never affect it.
func BuildReport(issues []models.ComplianceIssue) models.ValidationReport {
	report := models.ValidationReport{
		Errors:      []models.ComplianceIssue{},
		Warnings:    []models.ComplianceIssue{},
		Suggestions: []models.ComplianceIssue{},
	}
	for _, issue := range issues {
		switch issue.Severity {
		case models.SeverityError:
			report.Errors = append(report.Errors, issue)
		case models.SeverityWarning:
			report.Warnings = append(report.Warnings, issue)
		default:
			report.Suggestions = append(report.Suggestions, issue)
		}
	}
	report.Valid = len(report.Errors) == 0
	report.Summary = models.ReportSummary{
		Errors:      len(report.Errors),
		Warnings:    len(report.Warnings),
		Suggestions: len(report.Suggestions),
	}
	return report
}
