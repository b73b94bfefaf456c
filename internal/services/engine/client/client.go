// Package client provides a typed HTTP client for the engine API. The
// runner, the MCP adapter, and the seed tool all talk to the engine
// through it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/roundtable/internal/services/engine/api"
)

// APIError is a non-2xx engine response with its decoded detail message.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("engine status %d: %s", e.StatusCode, e.Detail)
}

// Client calls the engine HTTP API with a pre-shared key.
type Client struct {
	baseURL   string
	engineKey string
	client    *http.Client
}

// New builds a client for the engine at baseURL. A nil httpClient falls
// back to http.DefaultClient.
func New(baseURL, engineKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		engineKey: engineKey,
		client:    httpClient,
	}
}

// CreateCampaign creates a campaign with its roster.
func (c *Client) CreateCampaign(ctx context.Context, req api.CampaignCreate) (api.Campaign, error) {
	var created api.Campaign
	err := c.do(ctx, http.MethodPost, "/v1/campaigns", nil, req, &created)
	return created, err
}

// State fetches the campaign snapshot as seen by viewer.
func (c *Client) State(ctx context.Context, campaignID, viewer string) (api.State, error) {
	query := url.Values{}
	if viewer != "" {
		query.Set("viewer", viewer)
	}
	var state api.State
	err := c.do(ctx, http.MethodGet, c.campaignPath(campaignID, "state"), query, nil, &state)
	return state, err
}

// AppendEvent appends an event to the campaign log.
func (c *Client) AppendEvent(ctx context.Context, campaignID string, req api.EventCreate) (api.Event, error) {
	var evt api.Event
	err := c.do(ctx, http.MethodPost, c.campaignPath(campaignID, "events"), nil, req, &evt)
	return evt, err
}

// ListEvents lists the events visible to viewer, oldest first. A non-empty
// after returns only events past that id.
func (c *Client) ListEvents(ctx context.Context, campaignID, viewer, after string) ([]api.Event, error) {
	query := url.Values{}
	if viewer != "" {
		query.Set("viewer", viewer)
	}
	if after != "" {
		query.Set("after", after)
	}
	var events []api.Event
	err := c.do(ctx, http.MethodGet, c.campaignPath(campaignID, "events"), query, nil, &events)
	return events, err
}

// Roll resolves a dice expression and logs it as a public event.
func (c *Client) Roll(ctx context.Context, campaignID string, req api.RollRequest) (api.Roll, error) {
	var roll api.Roll
	err := c.do(ctx, http.MethodPost, c.campaignPath(campaignID, "roll"), nil, req, &roll)
	return roll, err
}

// WriteMemory stores a scoped memory entry.
func (c *Client) WriteMemory(ctx context.Context, campaignID string, req api.MemoryWrite) (api.Memory, error) {
	var m api.Memory
	err := c.do(ctx, http.MethodPost, c.campaignPath(campaignID, "memory/write"), nil, req, &m)
	return m, err
}

// ReadMemories lists the memories visible to viewer, optionally filtered
// by scope.
func (c *Client) ReadMemories(ctx context.Context, campaignID, viewer, scope string) ([]api.Memory, error) {
	query := url.Values{}
	if viewer != "" {
		query.Set("viewer", viewer)
	}
	if scope != "" {
		query.Set("scope", scope)
	}
	var memories []api.Memory
	err := c.do(ctx, http.MethodGet, c.campaignPath(campaignID, "memory/read"), query, nil, &memories)
	return memories, err
}

// AdvanceTurn rotates the turn owner and runs the anti-ramble breaker.
func (c *Client) AdvanceTurn(ctx context.Context, campaignID string) (api.TurnAdvance, error) {
	var result api.TurnAdvance
	err := c.do(ctx, http.MethodPost, c.campaignPath(campaignID, "turn/advance"), nil, nil, &result)
	return result, err
}

// DirectorNext assembles the prompt package for the current turn owner.
func (c *Client) DirectorNext(ctx context.Context, campaignID string, req api.DirectorNextRequest) (api.DirectorNext, error) {
	var pkg api.DirectorNext
	err := c.do(ctx, http.MethodPost, c.campaignPath(campaignID, "director/next"), nil, req, &pkg)
	return pkg, err
}

// Mutate applies a state mutation batch atomically.
func (c *Client) Mutate(ctx context.Context, campaignID string, req api.MutateRequest) (api.MutateResult, error) {
	var result api.MutateResult
	err := c.do(ctx, http.MethodPost, c.campaignPath(campaignID, "mutate"), nil, req, &result)
	return result, err
}

func (c *Client) campaignPath(campaignID, suffix string) string {
	return "/v1/campaigns/" + url.PathEscape(campaignID) + "/" + suffix
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal engine request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build engine request: %w", err)
	}
	req.Header.Set(api.EngineKeyHeader, c.engineKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("engine request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return readAPIError(res)
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode engine response: %w", err)
	}
	return nil
}

// readAPIError drains a bounded slice of the error body and surfaces the
// detail message when the body carries one.
func readAPIError(res *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
	if err != nil {
		return fmt.Errorf("read engine error body: %w", err)
	}
	detail := strings.TrimSpace(string(body))
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Detail) != "" {
		detail = strings.TrimSpace(payload.Detail)
	}
	return &APIError{StatusCode: res.StatusCode, Detail: detail}
}
