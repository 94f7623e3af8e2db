package compliance

import (
	"fmt"

	"flowguard-mcp/internal/catalog"
	"flowguard-mcp/pkg/models"
)

// Normalizer resolves node type identifiers to their canonical forms and
// forces every typeVersion onto a catalog-supported version, applying
// declared migration rules where they exist. It accumulates errors instead
// of short-circuiting and never emits a best-guess transform: no verified
// mapping means an error, not a repair.
type Normalizer struct {
	cat  *catalog.Catalog
	opts Options
}

// NewNormalizer builds a normalizer over the given read-only catalog.
func NewNormalizer(cat *catalog.Catalog, opts Options) *Normalizer {
	return &Normalizer{cat: cat, opts: opts}
}

// Normalize mutates g in place, returning applied fixes and accumulated
// issues.
func (n *Normalizer) Normalize(g *models.WorkflowGraph) (fixes []string, issues []models.ComplianceIssue) {
	if g.Settings == nil {
		g.Settings = map[string]any{}
		fixes = append(fixes, "added missing settings object")
	}

	for i := range g.Nodes {
		node := &g.Nodes[i]

		schema, ok := n.cat.Resolve(node.Type)
		if !ok {
			issues = append(issues, models.ComplianceIssue{
				Severity:    models.SeverityError,
				Kind:        models.KindCompatibility,
				NodeName:    node.Name,
				Message:     (&CompatibilityError{NodeName: node.Name, RawType: node.Type}).Error(),
				AutoFixable: false,
			})
			continue
		}
		if schema.CanonicalType != node.Type {
			fixes = append(fixes, fmt.Sprintf("node %q: type %q rewritten to canonical %q",
				node.Name, node.Type, schema.CanonicalType))
			node.Type = schema.CanonicalType
		}

		switch {
		case node.TypeVersion == 0:
			node.TypeVersion = schema.DefaultVersion
			fixes = append(fixes, fmt.Sprintf("node %q: missing typeVersion set to default %v",
				node.Name, schema.DefaultVersion))

		case !schema.SupportsVersion(node.TypeVersion):
			migration, ok := n.cat.Migration(schema.CanonicalType, node.TypeVersion)
			if !ok {
				issues = append(issues, models.ComplianceIssue{
					Severity: models.SeverityError,
					Kind:     models.KindVersionMigration,
					NodeName: node.Name,
					Message: (&VersionMigrationError{
						NodeName: node.Name,
						Type:     schema.CanonicalType,
						Version:  node.TypeVersion,
					}).Error(),
					AutoFixable: false,
				})
				break
			}
			fixes = append(fixes, fmt.Sprintf("node %q: typeVersion %v migrated to %v",
				node.Name, node.TypeVersion, migration.ToVersion))
			if node.Parameters == nil {
				node.Parameters = map[string]any{}
			}
			node.Parameters = migration.Transform(node.Parameters)
			node.TypeVersion = migration.ToVersion
			fixes = append(fixes, fmt.Sprintf("node %q: parameters restructured: %s",
				node.Name, migration.Summary))
		}

		// Absent parameters is not an error but downstream tooling expects
		// the key to exist.
		if node.Parameters == nil {
			node.Parameters = map[string]any{}
			fixes = append(fixes, fmt.Sprintf("node %q: added empty parameters object", node.Name))
		}

		if n.opts.positionPolicy() == PositionAutoFix && len(node.Position) != 2 {
			anchor := n.opts.positionAnchor()
			node.Position = []float64{anchor[0], anchor[1]}
			fixes = append(fixes, fmt.Sprintf("node %q: missing position defaulted to [%v, %v]",
				node.Name, anchor[0], anchor[1]))
		}
	}

	return fixes, issues
}
