// Package agentapi is the REST client for the video-agent service. It
// covers the two management operations the pipeline exposes: creating an
// agent and listing the available avatars. Both are plain fire-and-forget
// requests with static routing; webhook handling never goes through here.
package agentapi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	http *resty.Client
}

// NewClient builds a client with static JSON headers and bearer auth.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Bearer "+apiKey)

	return &Client{http: http}
}

type CreateAgentRequest struct {
	Name         string `json:"name"`
	AvatarID     string `json:"avatar_id"`
	VoiceID      string `json:"voice_id,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	Greeting     string `json:"greeting,omitempty"`
}

type Agent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarID  string `json:"avatar_id"`
	VoiceID   string `json:"voice_id"`
	CreatedAt string `json:"created_at"`
}

type Avatar struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PreviewURL string `json:"preview_url"`
}

func (c *Client) CreateAgent(ctx context.Context, req CreateAgentRequest) (*Agent, error) {
	var agent Agent
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&agent).
		Post("/v1/agents")
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	if resp.IsError() {
		return nil, apiError("create agent", resp)
	}
	return &agent, nil
}

func (c *Client) ListAvatars(ctx context.Context) ([]Avatar, error) {
	var out struct {
		Avatars []Avatar `json:"avatars"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/v1/avatars")
	if err != nil {
		return nil, fmt.Errorf("list avatars: %w", err)
	}
	if resp.IsError() {
		return nil, apiError("list avatars", resp)
	}
	return out.Avatars, nil
}

func apiError(op string, resp *resty.Response) error {
	body := resp.String()
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode(), body)
}
