package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowguard-mcp/internal/catalog"
	"flowguard-mcp/internal/compliance"
	platformclient "flowguard-mcp/internal/platform"
	"flowguard-mcp/internal/repository"
	"flowguard-mcp/pkg/models"
)

type stubPlatform struct {
	stored    map[string]*models.WorkflowGraph
	createdID string
	updated   []string
}

func newStubPlatform() *stubPlatform {
	return &stubPlatform{stored: map[string]*models.WorkflowGraph{}, createdID: "wf_new"}
}

func (s *stubPlatform) ListWorkflows(ctx context.Context) ([]platformclient.WorkflowSummary, error) {
	var out []platformclient.WorkflowSummary
	for id, g := range s.stored {
		out = append(out, platformclient.WorkflowSummary{ID: id, Name: g.Name})
	}
	return out, nil
}

func (s *stubPlatform) GetWorkflow(ctx context.Context, id string) (*models.WorkflowGraph, error) {
	return s.stored[id], nil
}

func (s *stubPlatform) CreateWorkflow(ctx context.Context, g *models.WorkflowGraph) (string, error) {
	s.stored[s.createdID] = g
	return s.createdID, nil
}

func (s *stubPlatform) UpdateWorkflow(ctx context.Context, id string, g *models.WorkflowGraph) error {
	s.stored[id] = g
	s.updated = append(s.updated, id)
	return nil
}

type memoryAudit struct {
	runs []*repository.ValidationRun
}

func (m *memoryAudit) RecordRun(ctx context.Context, run *repository.ValidationRun) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryAudit) ListRuns(ctx context.Context, limit int) ([]*repository.ValidationRun, error) {
	return m.runs, nil
}

func testService(t *testing.T, platform PlatformClient, audit repository.AuditStore) *WorkflowService {
	t.Helper()
	provider := catalog.NewProvider(catalog.EmbeddedSource{})
	require.NoError(t, provider.Load(context.Background()))
	return NewWorkflowService(provider, platform, audit, compliance.Options{})
}

const dirtyWorkflow = `{
	"id": "wf_1",
	"active": true,
	"name": "order sync",
	"nodes": [
		{"name": "Webhook", "type": "webhook", "position": [0, 0], "parameters": {"path": "x"}},
		{"name": "Fetch", "type": "n8n-nodes-base.httpRequest", "typeVersion": 4.2,
		 "position": [200, 0], "parameters": {"url": "https://example.test", "options": {}}}
	],
	"connections": {"Webhook": {"main": [[{"node": "Fetch", "type": "main", "index": 0}]]}},
	"settings": {}
}`

const brokenWorkflow = `{
	"name": "broken",
	"nodes": [
		{"name": "A", "type": "acme.unknown", "position": [0, 0], "parameters": {}}
	],
	"connections": {},
	"settings": {}
}`

func TestCheckRecordsAuditRun(t *testing.T) {
	audit := &memoryAudit{}
	svc := testService(t, nil, audit)

	report, err := svc.Check(context.Background(), []byte(dirtyWorkflow))
	require.NoError(t, err)
	assert.True(t, report.Valid)

	require.Len(t, audit.runs, 1)
	assert.Equal(t, "check", audit.runs[0].Mode)
	assert.Equal(t, "order sync", audit.runs[0].WorkflowName)
	assert.True(t, audit.runs[0].Valid)
}

func TestCleanProducesSubmittableGraph(t *testing.T) {
	svc := testService(t, nil, nil)

	result, err := svc.Clean(context.Background(), []byte(dirtyWorkflow))
	require.NoError(t, err)
	assert.True(t, result.Report.Valid)
	assert.NotEmpty(t, result.Fixed)

	out, err := json.Marshal(result.Cleaned)
	require.NoError(t, err)
	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &top))
	assert.NotContains(t, top, "id")
	assert.NotContains(t, top, "active")
}

func TestPushRefusesNonCompliantGraph(t *testing.T) {
	platform := newStubPlatform()
	svc := testService(t, platform, nil)

	result, err := svc.Push(context.Background(), "", []byte(brokenWorkflow), false)
	assert.ErrorIs(t, err, ErrNotCompliant)
	require.NotNil(t, result, "errors are still reported back")
	assert.False(t, result.Report.Valid)
	assert.Empty(t, platform.stored, "nothing reaches the platform")
}

func TestPushForceOverridesTheGate(t *testing.T) {
	platform := newStubPlatform()
	svc := testService(t, platform, nil)

	result, err := svc.Push(context.Background(), "", []byte(brokenWorkflow), true)
	require.NoError(t, err)
	assert.Equal(t, "wf_new", result.ID)
	assert.Contains(t, platform.stored, "wf_new")
}

func TestPushUpdatesExistingWorkflow(t *testing.T) {
	platform := newStubPlatform()
	svc := testService(t, platform, nil)

	result, err := svc.Push(context.Background(), "wf_1", []byte(dirtyWorkflow), false)
	require.NoError(t, err)
	assert.Equal(t, "wf_1", result.ID)
	assert.Equal(t, []string{"wf_1"}, platform.updated)

	pushed := platform.stored["wf_1"]
	require.NotNil(t, pushed)
	assert.Equal(t, "n8n-nodes-base.webhook", pushed.Nodes[0].Type,
		"the cleaned graph is what gets submitted")
	assert.Nil(t, pushed.Extra)
}

func TestListWorkflowsRequiresPlatform(t *testing.T) {
	svc := testService(t, nil, nil)
	_, err := svc.ListWorkflows(context.Background())
	assert.Error(t, err)

	platform := newStubPlatform()
	svc = testService(t, platform, nil)
	_, err = svc.Push(context.Background(), "", []byte(dirtyWorkflow), false)
	require.NoError(t, err)

	summaries, err := svc.ListWorkflows(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "order sync", summaries[0].Name)
}

func TestRecentRunsRequiresAuditTrail(t *testing.T) {
	svc := testService(t, nil, nil)
	_, err := svc.RecentRuns(context.Background(), 10)
	assert.Error(t, err)

	audit := &memoryAudit{}
	svc = testService(t, nil, audit)
	_, err = svc.Check(context.Background(), []byte(dirtyWorkflow))
	require.NoError(t, err)

	runs, err := svc.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "check", runs[0].Mode)
}

func TestNodeTypeLookup(t *testing.T) {
	svc := testService(t, nil, nil)

	schema, err := svc.NodeType("webhook")
	require.NoError(t, err)
	assert.Equal(t, "n8n-nodes-base.webhook", schema.CanonicalType)

	_, err = svc.NodeType("acme.unknown")
	assert.Error(t, err)

	all, err := svc.NodeTypes()
	require.NoError(t, err)
	assert.NotEmpty(t, all)
}
