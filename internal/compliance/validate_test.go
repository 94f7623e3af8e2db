package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowguard-mcp/pkg/models"
)

func TestValidateDuplicateNames(t *testing.T) {
	v := NewValidator(testCatalog(t), Options{})
	g := &models.WorkflowGraph{
		Name: "dupes",
		Nodes: []models.Node{
			{Name: "Webhook", Type: "n8n-nodes-base.webhook", TypeVersion: 2, Position: []float64{0, 0}},
			{Name: "Webhook", Type: "n8n-nodes-base.noOp", TypeVersion: 1, Position: []float64{100, 0}},
		},
	}

	issues := v.Validate(g)
	var dup *models.ComplianceIssue
	for i := range issues {
		if issues[i].Severity == models.SeverityError {
			dup = &issues[i]
		}
	}
	require.NotNil(t, dup)
	assert.Contains(t, dup.Message, "duplicate node name")
	assert.False(t, dup.AutoFixable, "disambiguation would be arbitrary")
}

func TestValidateConnectionSourceMustExist(t *testing.T) {
	v := NewValidator(testCatalog(t), Options{})
	g := &models.WorkflowGraph{
		Name: "bad source",
		Nodes: []models.Node{
			{Name: "Webhook", Type: "n8n-nodes-base.webhook", TypeVersion: 2, Position: []float64{0, 0}},
		},
		Connections: models.ConnectionMap{
			"Phantom": {models.PortMain: {{{Node: "Webhook", Type: models.PortMain, Index: 0}}}},
		},
	}

	issues := v.Validate(g)
	require.NotEmpty(t, issues)
	assert.Equal(t, models.KindReferential, issues[0].Kind)
	assert.Contains(t, issues[0].Message, `"Phantom"`)
}

func TestValidatePortCategoryMismatch(t *testing.T) {
	v := NewValidator(testCatalog(t), Options{})
	g := &models.WorkflowGraph{
		Name: "mismatch",
		Nodes: []models.Node{
			{Name: "A", Type: "n8n-nodes-base.webhook", TypeVersion: 2, Position: []float64{0, 0}},
			{Name: "B", Type: "n8n-nodes-base.noOp", TypeVersion: 1, Position: []float64{100, 0}},
		},
		Connections: models.ConnectionMap{
			"A": {models.PortMain: {{{Node: "B", Type: models.PortAITool, Index: 0}}}},
		},
	}

	issues := v.Validate(g)
	require.Len(t, issues, 1)
	assert.Equal(t, models.SeverityError, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "does not match its port category")
}

func TestValidateDisconnectedNodeIsOnlyAWarning(t *testing.T) {
	v := NewValidator(testCatalog(t), Options{})
	g := &models.WorkflowGraph{
		Name: "stray",
		Nodes: []models.Node{
			{Name: "A", Type: "n8n-nodes-base.webhook", TypeVersion: 2, Position: []float64{0, 0}},
			{Name: "B", Type: "n8n-nodes-base.noOp", TypeVersion: 1, Position: []float64{100, 0}},
			{Name: "Stray", Type: "n8n-nodes-base.set", TypeVersion: 3.4, Position: []float64{100, 200}},
		},
		Connections: models.ConnectionMap{
			"A": {models.PortMain: {{{Node: "B", Type: models.PortMain, Index: 0}}}},
		},
	}

	issues := v.Validate(g)
	require.Len(t, issues, 1)
	assert.Equal(t, models.SeverityWarning, issues[0].Severity)
	assert.Equal(t, "Stray", issues[0].NodeName)
}

func TestValidateMissingPosition(t *testing.T) {
	g := &models.WorkflowGraph{
		Name: "unplaced",
		Nodes: []models.Node{
			{Name: "A", Type: "n8n-nodes-base.webhook", TypeVersion: 2},
		},
	}

	strict := NewValidator(testCatalog(t), Options{})
	issues := strict.Validate(g)
	var positional *models.ComplianceIssue
	for i := range issues {
		if issues[i].Severity == models.SeverityError {
			positional = &issues[i]
		}
	}
	require.NotNil(t, positional)
	assert.Contains(t, positional.Message, "position")
	assert.False(t, positional.AutoFixable)
}

func TestValidateDoesNotMutate(t *testing.T) {
	v := NewValidator(testCatalog(t), Options{})
	g := validGraph()
	v.Validate(g)
	assert.Equal(t, "n8n-nodes-base.webhook", g.Nodes[0].Type)
	assert.Len(t, g.Nodes, 2)
}
