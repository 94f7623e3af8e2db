// Package platform is the HTTP client for the workflow platform's
// management API. The compliance engine never talks to the network; this
// client is the external collaborator that fetches contaminated graphs and
// submits cleaned ones.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"flowguard-mcp/pkg/models"
)

const apiKeyHeader = "X-N8N-API-KEY"

// Client talks to the platform's /api/v1 workflow endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL and API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WorkflowSummary is the list-endpoint projection of a workflow.
type WorkflowSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type listResponse struct {
	Data []WorkflowSummary `json:"data"`
}

// ListWorkflows returns the summaries of every workflow on the platform.
func (c *Client) ListWorkflows(ctx context.Context) ([]WorkflowSummary, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/workflows", nil)
	if err != nil {
		return nil, err
	}
	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode workflow list: %w", err)
	}
	return resp.Data, nil
}

// GetWorkflow fetches one workflow by id. The returned graph carries the
// server-managed top-level fields in Extra; run it through the pipeline
// before any resubmission.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*models.WorkflowGraph, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/workflows/"+id, nil)
	if err != nil {
		return nil, err
	}
	var graph models.WorkflowGraph
	if err := json.Unmarshal(body, &graph); err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", id, err)
	}
	return &graph, nil
}

// CreateWorkflow submits a new workflow and returns the server-assigned id.
func (c *Client) CreateWorkflow(ctx context.Context, g *models.WorkflowGraph) (string, error) {
	payload, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("failed to marshal workflow: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, "/api/v1/workflows", payload)
	if err != nil {
		return "", err
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to decode create response: %w", err)
	}
	return created.ID, nil
}

// UpdateWorkflow replaces an existing workflow definition.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, g *models.WorkflowGraph) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}
	_, err = c.do(ctx, http.MethodPut, "/api/v1/workflows/"+id, payload)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read platform response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("platform returned %d for %s %s: %s",
			resp.StatusCode, method, path, truncate(body, 512))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
