// Package client provides a Go client library for the judging
// service's HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the judge API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a new judge API client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Submit submits a source program for judging.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, "POST", "/create", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ErrNotFound reports an unknown job id on Check.
type ErrNotFound struct {
	ID string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("job %s not found", e.ID)
}

// Check retrieves a job's status and result by id.
func (c *Client) Check(ctx context.Context, id string) (*CheckResult, error) {
	resp, err := c.doRequest(ctx, "GET", "/check/"+id, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &ErrNotFound{ID: id}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result CheckResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Health probes the service's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.doRequest(ctx, "GET", "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}
	return nil
}

// doRequest makes an HTTP request against the judge API.
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// parseError parses an error response.
func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("%s: %s", resp.Status, errResp.Error)
	}

	return fmt.Errorf("%s: %s", resp.Status, string(body))
}

// Request/Response types

// SubmitRequest is the external submit request.
type SubmitRequest struct {
	Code        string   `json:"code"`
	Language    string   `json:"language"`
	Input       string   `json:"input"`
	Expected    string   `json:"expected"`
	TimeLimit   *float64 `json:"time_limit,omitempty"`
	MemoryLimit *int64   `json:"memory_limit,omitempty"`
	StackLimit  *int64   `json:"stack_limit,omitempty"`
}

// SubmitResponse is the response from job submission.
type SubmitResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// StatusView pairs a verdict's stable integer id with its description.
type StatusView struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// CheckResult is the job status/result view returned by check.
type CheckResult struct {
	StartedAt     *int64     `json:"started_at,omitempty"`
	FinishedAt    *int64     `json:"finished_at,omitempty"`
	Stdout        string     `json:"stdout"`
	Time          float64    `json:"time"`
	Memory        int64      `json:"memory"`
	Stderr        string     `json:"stderr"`
	Token         string     `json:"token"`
	CompileOutput string     `json:"compile_output"`
	Message       string     `json:"message"`
	Status        StatusView `json:"status"`
}
