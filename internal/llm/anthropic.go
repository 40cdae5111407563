package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-sonnet-4-20250514"
	anthropicVersion = "2023-06-01"
)

// AnthropicAdapter forwards requests to an Anthropic-compatible messages endpoint.
type AnthropicAdapter struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewAnthropicAdapter(baseURL, apiKey, model string) *AnthropicAdapter {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultModel
	}
	return &AnthropicAdapter{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type anthropicRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *AnthropicAdapter) Complete(ctx context.Context, req Request) (Response, error) {
	if req.MaxTokens <= 0 {
		req.MaxTokens = 4000
	}
	payload, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Messages:  req.Messages,
	})
	if err != nil {
		return Response{}, &GatewayError{Code: CodeMalformed, Message: "marshal request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return Response{}, &GatewayError{Code: CodeNetwork, Message: "create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	res, err := a.client.Do(httpReq)
	if err != nil {
		return Response{}, &GatewayError{Code: CodeNetwork, Message: "send request", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return Response{}, &GatewayError{
			Code:    codeForStatus(res.StatusCode),
			Message: fmt.Sprintf("status %d: %s", res.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{}, &GatewayError{Code: CodeNetwork, Message: "read response", Err: err}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Response{}, &GatewayError{Code: CodeMalformed, Message: "parse response body", Err: err}
	}
	if parsed.Error != nil {
		return Response{}, &GatewayError{Code: CodeUpstream, Message: parsed.Error.Type + ": " + parsed.Error.Message}
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "" || block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return Response{}, &GatewayError{Code: CodeMalformed, Message: "response contained no text content"}
	}

	return Response{
		Text:         text,
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
	}, nil
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return CodeAuth
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeUpstream
	}
}
