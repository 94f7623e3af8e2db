package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowguard-mcp/pkg/models"
)

func TestGetWorkflowCarriesAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-N8N-API-KEY")
		assert.Equal(t, "/api/v1/workflows/wf_42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "wf_42", "name": "Order intake", "nodes": [], "connections": {}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key")
	g, err := c.GetWorkflow(context.Background(), "wf_42")
	require.NoError(t, err)

	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "Order intake", g.Name)
	// Server-managed fields land in Extra, not silently dropped.
	assert.Contains(t, g.Extra, "id")
}

func TestListWorkflowsUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"id": "a", "name": "one", "active": true}, {"id": "b", "name": "two"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	summaries, err := c.ListWorkflows(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "one", summaries[0].Name)
	assert.True(t, summaries[0].Active)
}

func TestCreateWorkflowReturnsAssignedID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "fresh", body["name"])
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "wf_new", "name": "fresh"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	id, err := c.CreateWorkflow(context.Background(), &models.WorkflowGraph{Name: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, "wf_new", id)
}

func TestErrorResponsesSurfaceStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "workflow not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	_, err := c.GetWorkflow(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "workflow not found")
}

func TestUpdateWorkflowUsesPut(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	err := c.UpdateWorkflow(context.Background(), "wf_7", &models.WorkflowGraph{Name: "updated"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/v1/workflows/wf_7", gotPath)
}
