package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"market-sim-orchestrator/internal/dto"

	"github.com/go-playground/validator/v10"
)

// API is the surface the workflow components consume. Kept narrow so tests
// can substitute a recording fake.
type API interface {
	PushState(ctx context.Context, orgId string, req *dto.PushStateRequest) error
	RequestGuidance(ctx context.Context, orgId string, req *dto.GuidanceRequest) error
	Chat(ctx context.Context, orgId string, req *dto.AssistantChatRequest) (*dto.AssistantChatResponse, error)
	Validate(ctx context.Context, orgId string, req *dto.AssistantValidateRequest) (*dto.AssistantValidateResponse, error)
}

// Client talks to the conversational assistant service. State pushes are
// fire-and-forget from the caller's perspective; the client itself still
// reports transport errors so they can be logged.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	validate *validator.Validate
}

var _ API = &Client{}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: timeout,
		},
		validate: validator.New(),
	}
}

// PushState issues PUT /organizations/{orgId}/omi/state.
func (c *Client) PushState(ctx context.Context, orgId string, req *dto.PushStateRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("validate state push: %w", err)
	}
	url := fmt.Sprintf("%s/organizations/%s/omi/state", c.BaseURL, orgId)
	return c.send(ctx, http.MethodPut, url, req, nil)
}

// RequestGuidance issues POST /organizations/{orgId}/omi/guidance.
func (c *Client) RequestGuidance(ctx context.Context, orgId string, req *dto.GuidanceRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("validate guidance request: %w", err)
	}
	url := fmt.Sprintf("%s/organizations/%s/omi/guidance", c.BaseURL, orgId)
	return c.send(ctx, http.MethodPost, url, req, nil)
}

// Chat issues POST /organizations/{orgId}/omi/chat.
func (c *Client) Chat(ctx context.Context, orgId string, req *dto.AssistantChatRequest) (*dto.AssistantChatResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate chat request: %w", err)
	}
	url := fmt.Sprintf("%s/organizations/%s/omi/chat", c.BaseURL, orgId)
	var resp dto.AssistantChatResponse
	if err := c.send(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Validate issues POST /organizations/{orgId}/omi/validate.
func (c *Client) Validate(ctx context.Context, orgId string, req *dto.AssistantValidateRequest) (*dto.AssistantValidateResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate validate request: %w", err)
	}
	url := fmt.Sprintf("%s/organizations/%s/omi/validate", c.BaseURL, orgId)
	var resp dto.AssistantValidateResponse
	if err := c.send(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) send(ctx context.Context, method, url string, payload interface{}, out interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("assistant request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("assistant error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if out != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
