package compliance

import (
	"fmt"
	"sort"

	"flowguard-mcp/pkg/models"
)

// Sanitizer strips fields that may appear on a graph fetched from the
// platform but must never appear on a graph submitted back to it. It never
// fails: sanitization cannot make a graph invalid, only smaller.
type Sanitizer struct {
	serverManaged map[string]bool
	contested     map[string]bool
}

// NewSanitizer builds a sanitizer from the configured key policy.
func NewSanitizer(opts Options) *Sanitizer {
	return &Sanitizer{
		serverManaged: opts.serverManagedKeys(),
		contested:     opts.contestedKeys(),
	}
}

// Sanitize mutates g in place (the pipeline hands it a working copy),
// returning the log of applied fixes and any advisory issues. It drops every
// top-level key outside the allowed set and strips per-node fields outside
// the node's minimal required shape.
func (s *Sanitizer) Sanitize(g *models.WorkflowGraph) (fixes []string, issues []models.ComplianceIssue) {
	for _, key := range sortedKeys(g.Extra) {
		switch {
		case s.serverManaged[key]:
			fixes = append(fixes, fmt.Sprintf("removed server-managed top-level field %q", key))
		case s.contested[key]:
			fixes = append(fixes, fmt.Sprintf("removed top-level field %q", key))
			issues = append(issues, models.ComplianceIssue{
				Severity:    models.SeveritySuggestion,
				Kind:        models.KindStructural,
				Message:     fmt.Sprintf("top-level field %q is accepted by some platform builds and rejected by others; it was removed for safe submission", key),
				AutoFixable: true,
			})
		default:
			fixes = append(fixes, fmt.Sprintf("removed unsupported top-level field %q", key))
		}
	}
	g.Extra = nil

	for i := range g.Nodes {
		node := &g.Nodes[i]

		// An explicit-but-empty credential reference breaks downstream
		// rendering; drop it entirely rather than keeping the placeholder.
		if node.Credentials != nil && len(node.Credentials) == 0 {
			node.Credentials = nil
			fixes = append(fixes, fmt.Sprintf("node %q: removed empty credentials reference", node.Name))
		}

		for _, key := range sortedKeys(node.Extra) {
			fixes = append(fixes, fmt.Sprintf("node %q: removed unsupported field %q", node.Name, key))
		}
		node.Extra = nil
	}

	return fixes, issues
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
