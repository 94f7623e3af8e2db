package compliance

import (
	"fmt"
	"sort"

	"flowguard-mcp/internal/catalog"
	"flowguard-mcp/pkg/models"
)

// Validator checks structural and referential integrity of the node set and
// the connection map. It never mutates the graph; every check is independent
// and all findings from one run are reported together.
type Validator struct {
	cat  *catalog.Catalog
	opts Options
}

// NewValidator builds a validator over the given read-only catalog.
func NewValidator(cat *catalog.Catalog, opts Options) *Validator {
	return &Validator{cat: cat, opts: opts}
}

// Validate returns every structural and referential issue in the graph.
func (v *Validator) Validate(g *models.WorkflowGraph) []models.ComplianceIssue {
	var issues []models.ComplianceIssue

	names := make(map[string]bool, len(g.Nodes))
	for i := range g.Nodes {
		node := &g.Nodes[i]

		if node.Name == "" {
			issues = append(issues, models.ComplianceIssue{
				Severity:    models.SeverityError,
				Kind:        models.KindStructural,
				Message:     fmt.Sprintf("node at index %d has no name", i),
				AutoFixable: false,
			})
			continue
		}
		if names[node.Name] {
			// Disambiguation would be arbitrary, so this is never auto-fixed.
			issues = append(issues, models.ComplianceIssue{
				Severity:    models.SeverityError,
				Kind:        models.KindStructural,
				NodeName:    node.Name,
				Message:     fmt.Sprintf("duplicate node name %q", node.Name),
				AutoFixable: false,
			})
		}
		names[node.Name] = true

		if len(node.Position) != 2 {
			issues = append(issues, models.ComplianceIssue{
				Severity:    models.SeverityError,
				Kind:        models.KindStructural,
				NodeName:    node.Name,
				Message:     fmt.Sprintf("node %q has no two-element numeric position", node.Name),
				AutoFixable: v.opts.positionPolicy() == PositionAutoFix,
			})
		}
	}

	connected := make(map[string]bool, len(g.Nodes))
	for _, src := range sortedKeys(g.Connections) {
		ports := g.Connections[src]
		if !names[src] {
			issues = append(issues, models.ComplianceIssue{
				Severity:    models.SeverityError,
				Kind:        models.KindReferential,
				Message:     (&ReferentialError{Missing: src, Msg: fmt.Sprintf("connection source %q does not match any node name", src)}).Error(),
				AutoFixable: false,
			})
		}

		for _, port := range sortedKeys(ports) {
			slots := ports[port]
			for slotIdx, slot := range slots {
				if len(slot) > 0 {
					connected[src] = true
				}
				for _, edge := range slot {
					if !names[edge.Node] {
						issues = append(issues, models.ComplianceIssue{
							Severity:    models.SeverityError,
							Kind:        models.KindReferential,
							Message:     (&ReferentialError{Missing: edge.Node, Msg: fmt.Sprintf("connection from %q (port %q, slot %d) targets unknown node %q", src, port, slotIdx, edge.Node)}).Error(),
							AutoFixable: false,
						})
					} else {
						connected[edge.Node] = true
					}
					if edge.Type != "" && edge.Type != port {
						issues = append(issues, models.ComplianceIssue{
							Severity:    models.SeverityError,
							Kind:        models.KindStructural,
							NodeName:    src,
							Message:     fmt.Sprintf("connection from %q: edge type %q does not match its port category %q", src, edge.Type, port),
							AutoFixable: false,
						})
					}
				}
			}
		}
	}

	issues = append(issues, v.checkBranchArity(g, names)...)

	// Disconnected nodes are valid but suspicious.
	for i := range g.Nodes {
		name := g.Nodes[i].Name
		if name == "" || connected[name] {
			continue
		}
		issues = append(issues, models.ComplianceIssue{
			Severity:    models.SeverityWarning,
			Kind:        models.KindStructural,
			NodeName:    name,
			Message:     fmt.Sprintf("node %q is not referenced by any connection", name),
			AutoFixable: false,
		})
	}

	return issues
}

// checkBranchArity verifies that branching node types have exactly as many
// default-port output slots as their schema declares.
func (v *Validator) checkBranchArity(g *models.WorkflowGraph, names map[string]bool) []models.ComplianceIssue {
	var issues []models.ComplianceIssue
	for i := range g.Nodes {
		node := &g.Nodes[i]
		schema, ok := v.cat.Resolve(node.Type)
		if !ok || schema.BranchOutputs() < 2 {
			continue
		}
		want := schema.BranchOutputs()

		ports, hasEntry := g.Connections[node.Name]
		if !hasEntry {
			continue // disconnected branch node is caught by the warning pass
		}
		slots := ports[models.PortMain]
		if len(slots) == want {
			continue
		}

		var missing []int
		for slotIdx := len(slots); slotIdx < want; slotIdx++ {
			missing = append(missing, slotIdx)
		}
		detail := fmt.Sprintf("has %d", len(slots))
		if len(missing) > 0 {
			detail = fmt.Sprintf("has %d (missing output slot(s) %v)", len(slots), missing)
		}
		issues = append(issues, models.ComplianceIssue{
			Severity:    models.SeverityError,
			Kind:        models.KindStructural,
			NodeName:    node.Name,
			Message:     fmt.Sprintf("branching node %q declares %d output slots but its main connection list %s", node.Name, want, detail),
			AutoFixable: false,
		})
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].NodeName < issues[j].NodeName })
	return issues
}
