package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"casr-tracker/internal/logging"
	"casr-tracker/internal/models"
	"casr-tracker/internal/timeline"
)

// NewBreaker returns the breaker settings shared by service-to-service calls.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
}

// WorkflowClient calls the workflow service through a circuit breaker.
type WorkflowClient struct {
	BaseURL string
	Client  *http.Client
	Breaker *gobreaker.CircuitBreaker
}

func NewWorkflowClient(baseURL string, client *http.Client, breaker *gobreaker.CircuitBreaker) *WorkflowClient {
	return &WorkflowClient{BaseURL: baseURL, Client: client, Breaker: breaker}
}

// ProjectDependencies fetches the dependency edges of a project. When the
// breaker is open it fails fast with gobreaker.ErrOpenState.
func (c *WorkflowClient) ProjectDependencies(ctx context.Context, projectID string, incoming http.Header) ([]timeline.Edge, error) {
	endpoint := fmt.Sprintf("%s/api/workflow/project/%s/dependencies", c.BaseURL, url.PathEscape(projectID))
	result, err := c.Breaker.Execute(func() (interface{}, error) {
		body, err := c.do(ctx, http.MethodGet, endpoint, nil, incoming)
		if err != nil {
			return nil, err
		}
		var edges []timeline.Edge
		if err := json.Unmarshal(body, &edges); err != nil {
			return nil, fmt.Errorf("failed to decode workflow-service response: %w", err)
		}
		return edges, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]timeline.Edge), nil
}

// SyncTaskNode pushes a task's title and status to the dependency graph.
func (c *WorkflowClient) SyncTaskNode(ctx context.Context, node models.TaskNode, incoming http.Header) error {
	payload, err := json.Marshal(node)
	if err != nil {
		return err
	}
	_, err = c.Breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, http.MethodPost, c.BaseURL+"/api/workflow/task-node", payload, incoming)
	})
	return err
}

// DeleteTaskNodes removes deleted tasks from the dependency graph.
func (c *WorkflowClient) DeleteTaskNodes(ctx context.Context, taskIDs []string, incoming http.Header) error {
	payload, err := json.Marshal(map[string][]string{"taskIds": taskIDs})
	if err != nil {
		return err
	}
	_, err = c.Breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, http.MethodDelete, c.BaseURL+"/api/workflow/task-nodes", payload, incoming)
	})
	return err
}

func (c *WorkflowClient) do(ctx context.Context, method, endpoint string, payload []byte, incoming http.Header) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request to workflow-service: %w", err)
	}
	copyHeaders(req.Header, incoming)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request to workflow-service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading workflow-service response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("workflow-service error (%d): %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	return data, nil
}
