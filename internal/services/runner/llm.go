package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/roundtable/internal/services/engine/api"
)

// ErrInvalidModelJSON indicates the model answered but the content was not
// the requested JSON document.
var ErrInvalidModelJSON = errors.New("model response is not valid JSON")

// llmRequestTimeout bounds one chat completion round trip.
const llmRequestTimeout = 30 * time.Second

// ChatClient calls an OpenAI-compatible chat-completions endpoint and
// decodes the structured actor response.
type ChatClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewChatClient builds a chat client for the endpoint at baseURL. A nil
// httpClient falls back to a client with the default request timeout.
func NewChatClient(baseURL, apiKey string, httpClient *http.Client) *ChatClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: llmRequestTimeout}
	}
	return &ChatClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		client:  httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
}

// Complete asks the model for one actor turn. The director package is the
// user message; the response format pins the per-role JSON schema.
func (c *ChatClient) Complete(ctx context.Context, model, actorID, actorRole string, director api.DirectorNext) (ActorOutput, error) {
	directorJSON, err := json.Marshal(director)
	if err != nil {
		return ActorOutput{}, fmt.Errorf("marshal director package: %w", err)
	}

	systemPrompt := fmt.Sprintf(
		"You are actor '%s' with role '%s'. Return only valid JSON matching the provided schema.",
		actorID, actorRole,
	)
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(directorJSON)},
		},
		ResponseFormat: &responseFormat{
			Type:       "json_schema",
			JSONSchema: schemaForRole(actorRole),
		},
	})
	if err != nil {
		return ActorOutput{}, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return ActorOutput{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		return ActorOutput{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		errBody, err := io.ReadAll(io.LimitReader(res.Body, 4096))
		if err != nil {
			return ActorOutput{}, fmt.Errorf("read chat error body: %w", err)
		}
		return ActorOutput{}, fmt.Errorf("chat request status %d: %s", res.StatusCode, strings.TrimSpace(string(errBody)))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&completion); err != nil {
		return ActorOutput{}, fmt.Errorf("decode chat response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return ActorOutput{}, fmt.Errorf("chat response missing choices")
	}

	var output ActorOutput
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &output); err != nil {
		return ActorOutput{}, fmt.Errorf("%w: %v", ErrInvalidModelJSON, err)
	}
	return output, nil
}

// schemaForRole mirrors the per-role response contracts: the dm narrates
// and updates state, players speak and keep private thoughts.
func schemaForRole(actorRole string) jsonSchema {
	if actorRole == api.RoleDM {
		return jsonSchema{
			Name: "dm_response",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"say":           map[string]any{"type": "string"},
					"state_updates": map[string]any{"type": "array"},
					"ask":           map[string]any{"type": "string"},
					"notes":         map[string]any{"type": "string"},
				},
				"required": []string{"say", "state_updates", "ask", "notes"},
			},
		}
	}
	return jsonSchema{
		Name: "player_response",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"say":    map[string]any{"type": "string"},
				"think":  map[string]any{"type": "string"},
				"intent": map[string]any{"type": "object"},
				"ask":    map[string]any{"type": "string"},
			},
			"required": []string{"say", "think", "intent", "ask"},
		},
	}
}
