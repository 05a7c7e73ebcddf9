package ai

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

	"github.com/nikbrunner/bmtag/internal/model"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-chat"

	systemPrompt = "你是一个打标签专家，根据用户输入的内容给出最合适的一个标签，用中文表达，标签要简约3-5个字，如果是error则返回错误"
)

var (
	ErrNoAPIKey        = errors.New("AI API key not set (BMTAG_AI_API_KEY or DEEPSEEK_API_KEY)")
	ErrAPIRequest      = errors.New("API request failed")
	ErrInvalidResponse = errors.New("invalid API response")
)

// Params holds parameters for creating a Client.
type Params struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Client tags page content through an OpenAI-compatible chat completions API.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewClient creates a new AI client.
// Returns ErrNoAPIKey if no API key is configured.
func NewClient(params Params) (*Client, error) {
	if params.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if params.BaseURL == "" {
		params.BaseURL = DefaultBaseURL
	}
	if params.Model == "" {
		params.Model = DefaultModel
	}
	if params.HTTPClient == nil {
		params.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		apiKey:     params.APIKey,
		endpoint:   strings.TrimRight(params.BaseURL, "/") + "/chat/completions",
		model:      params.Model,
		httpClient: params.HTTPClient,
	}, nil
}

// Tag asks the model for a single short label describing text. A reply that
// means "error" comes back as model.SentinelTag.
func (c *Client) Tag(ctx context.Context, text string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPIRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrAPIRequest, resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", ErrInvalidResponse
	}

	choice := chatResp.Choices[0]
	tag := normalizeTag(choice.Message.Content)
	if tag == "" {
		return "", fmt.Errorf("%w: empty reply (finish_reason %q)", ErrInvalidResponse, choice.FinishReason)
	}
	return tag, nil
}

// normalizeTag trims the reply and strips quotes the model sometimes adds.
func normalizeTag(reply string) string {
	tag := strings.TrimSpace(reply)
	tag = strings.Trim(tag, "\"'“”「」《》")
	tag = strings.TrimSpace(tag)

	switch strings.ToLower(tag) {
	case model.SentinelTag, "错误":
		return model.SentinelTag
	}
	return tag
}
