package llm

import "context"

// Message roles accepted by the upstream model API.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn of dialogue sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the normalized request sent to the model.
type Request struct {
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

// Response is the model's reply plus token usage.
type Response struct {
	Text         string `json:"text"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// Client is the single boundary to the external model. Implementations make
// exactly one upstream call per Complete invocation and never retry; retry
// policy belongs to the caller.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// GatewayError wraps any upstream failure (auth, quota, network, malformed
// transport) without interpreting it.
type GatewayError struct {
	Code    string
	Message string
	Err     error
}

// Gateway error codes.
const (
	CodeAuth        = "auth"
	CodeRateLimited = "rate_limited"
	CodeNetwork     = "network"
	CodeUpstream    = "upstream_error"
	CodeMalformed   = "malformed_response"
)

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return "gateway " + e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return "gateway " + e.Code + ": " + e.Message
}

func (e *GatewayError) Unwrap() error { return e.Err }
