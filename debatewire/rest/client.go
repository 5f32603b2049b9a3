package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client provides REST API access to the debate backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new REST API client.
// baseURL should be the server root, e.g., "http://localhost:8000".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient allows setting a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Detail)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Counters and listings

// Stats returns the aggregate platform counters.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var resp Stats
	if err := c.get(ctx, "/api/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListDebates returns the most recent debates, newest first.
func (c *Client) ListDebates(ctx context.Context, limit int) ([]DebateInfo, error) {
	var resp []DebateInfo
	if err := c.get(ctx, "/api/debates", limitQuery(limit), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetDebate returns one debate with its stored messages.
func (c *Client) GetDebate(ctx context.Context, id int64) (*DebateDetail, error) {
	var resp DebateDetail
	if err := c.get(ctx, fmt.Sprintf("/api/debates/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListFacts returns knowledge facts ordered by confidence.
// minConfidence filters below the threshold; limit caps at 200 server side.
func (c *Client) ListFacts(ctx context.Context, domain string, minConfidence float64, limit int) ([]Fact, error) {
	q := limitQuery(limit)
	if domain != "" {
		q.Set("domain", domain)
	}
	if minConfidence > 0 {
		q.Set("min_confidence", strconv.FormatFloat(minConfidence, 'f', -1, 64))
	}
	var resp []Fact
	if err := c.get(ctx, "/api/knowledge", q, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SearchKnowledge returns up to 10 facts of domain matching any word of
// query. An empty domain uses the backend default.
func (c *Client) SearchKnowledge(ctx context.Context, query, domain string) ([]Fact, error) {
	q := url.Values{}
	q.Set("q", query)
	if domain != "" {
		q.Set("domain", domain)
	}
	var resp []Fact
	if err := c.get(ctx, "/api/knowledge/search", q, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListTheories returns theories, optionally filtered by status.
func (c *Client) ListTheories(ctx context.Context, status string, limit int) ([]Theory, error) {
	q := limitQuery(limit)
	if status != "" {
		q.Set("status", status)
	}
	var resp []Theory
	if err := c.get(ctx, "/api/knowledge/theories", q, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListNews returns recent news events.
func (c *Client) ListNews(ctx context.Context, limit int) ([]NewsEvent, error) {
	var resp []NewsEvent
	if err := c.get(ctx, "/api/news", limitQuery(limit), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListAgents returns active agents; tier <= 0 returns every tier.
func (c *Client) ListAgents(ctx context.Context, tier int) ([]Agent, error) {
	q := url.Values{}
	if tier > 0 {
		q.Set("tier", strconv.Itoa(tier))
	}
	var resp []Agent
	if err := c.get(ctx, "/api/agents", q, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Actions

// TriggerDebate asks the backend to start a debate.
func (c *Client) TriggerDebate(ctx context.Context, req TriggerRequest) (*ActionResponse, error) {
	var resp ActionResponse
	if err := c.post(ctx, "/api/debates/trigger", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateTheory runs validation of a pending theory.
func (c *Client) ValidateTheory(ctx context.Context, theoryID int64) (*ValidationResult, error) {
	var resp ValidationResult
	if err := c.post(ctx, fmt.Sprintf("/api/knowledge/theories/%d/validate", theoryID), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "error" {
		return &resp, &APIError{Status: http.StatusOK, Detail: resp.Message}
	}
	return &resp, nil
}

// Season award

// AwardOverview returns the award leaderboard and the current season's predictions.
func (c *Client) AwardOverview(ctx context.Context) (*AwardOverview, error) {
	var resp AwardOverview
	if err := c.get(ctx, "/api/award", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GeneratePredictions asks the top-tier agents for their season predictions.
func (c *Client) GeneratePredictions(ctx context.Context) (*GeneratedPredictions, error) {
	var resp GeneratedPredictions
	if err := c.post(ctx, "/api/award/generate-predictions", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckPredictions checks pending predictions against recent news.
func (c *Client) CheckPredictions(ctx context.Context) (*PredictionChecks, error) {
	var resp PredictionChecks
	if err := c.post(ctx, "/api/award/validate", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AwardSeason awards season to its most accurate predictor.
func (c *Client) AwardSeason(ctx context.Context, season string) (*AwardResult, error) {
	var resp AwardResult
	if err := c.post(ctx, "/api/award/award-winner/"+url.PathEscape(season), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AwardHistory returns every agent that has won, most wins first.
func (c *Client) AwardHistory(ctx context.Context) ([]AwardWinner, error) {
	var resp []AwardWinner
	if err := c.get(ctx, "/api/award/history", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Loop control

// LoopStatus returns the autonomous loop's state.
func (c *Client) LoopStatus(ctx context.Context) (*LoopStatus, error) {
	var resp LoopStatus
	if err := c.get(ctx, "/api/loop/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartLoop starts the autonomous loop.
func (c *Client) StartLoop(ctx context.Context) (*LoopStatus, error) {
	var resp LoopStatus
	if err := c.post(ctx, "/api/loop/start", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StopLoop stops the autonomous loop.
func (c *Client) StopLoop(ctx context.Context) (*LoopStatus, error) {
	var resp LoopStatus
	if err := c.post(ctx, "/api/loop/stop", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Helper methods

func limitQuery(limit int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, dest)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// Handle error responses
	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Detail: errorDetail(body)}
	}

	// Unmarshal success response
	if dest != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// errorDetail extracts FastAPI's detail, which is a string for HTTPException
// and a list of objects for validation failures.
func errorDetail(body []byte) string {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.Detail) > 0 {
		var s string
		if json.Unmarshal(errResp.Detail, &s) == nil {
			return s
		}
		return string(errResp.Detail)
	}
	return string(bytes.TrimSpace(body))
}
