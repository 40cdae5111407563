package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicAdapterComplete(t *testing.T) {
	var gotReq anthropicRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q, want /v1/messages", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "key-1" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": `{"project_name":"X"}`}},
			"usage":   map[string]int{"input_tokens": 7, "output_tokens": 9},
		})
	}))
	defer ts.Close()

	a := NewAnthropicAdapter(ts.URL, "key-1", "model-1")
	resp, err := a.Complete(context.Background(), Request{
		System:    "sys",
		Messages:  []Message{{Role: RoleUser, Content: "plan it"}},
		MaxTokens: 123,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != `{"project_name":"X"}` {
		t.Fatalf("Text = %q", resp.Text)
	}
	if resp.InputTokens != 7 || resp.OutputTokens != 9 {
		t.Fatalf("usage = %d/%d", resp.InputTokens, resp.OutputTokens)
	}
	if gotReq.Model != "model-1" || gotReq.MaxTokens != 123 || gotReq.System != "sys" {
		t.Fatalf("upstream request = %+v", gotReq)
	}
}

func TestAnthropicAdapterStatusErrors(t *testing.T) {
	cases := []struct {
		status   int
		wantCode string
	}{
		{http.StatusUnauthorized, CodeAuth},
		{http.StatusTooManyRequests, CodeRateLimited},
		{http.StatusInternalServerError, CodeUpstream},
	}
	for _, tc := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", tc.status)
		}))
		a := NewAnthropicAdapter(ts.URL, "k", "")
		_, err := a.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
		ts.Close()

		var ge *GatewayError
		if !errors.As(err, &ge) {
			t.Fatalf("status %d: error = %v, want GatewayError", tc.status, err)
		}
		if ge.Code != tc.wantCode {
			t.Fatalf("status %d: code = %q, want %q", tc.status, ge.Code, tc.wantCode)
		}
	}
}

func TestAnthropicAdapterMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer ts.Close()

	a := NewAnthropicAdapter(ts.URL, "k", "")
	_, err := a.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var ge *GatewayError
	if !errors.As(err, &ge) || ge.Code != CodeMalformed {
		t.Fatalf("error = %v, want malformed GatewayError", err)
	}
}

func TestNewClientModes(t *testing.T) {
	if _, err := NewClient(Config{Mode: "anthropic"}); err == nil {
		t.Fatalf("anthropic mode without key should fail")
	}

	c, err := NewClient(Config{Mode: "auto"})
	if err != nil {
		t.Fatalf("auto mode error = %v", err)
	}
	if _, ok := c.(*MockAdapter); !ok {
		t.Fatalf("auto mode without key = %T, want *MockAdapter", c)
	}

	c, err = NewClient(Config{Mode: "auto", APIKey: "k"})
	if err != nil {
		t.Fatalf("auto mode with key error = %v", err)
	}
	if _, ok := c.(*AnthropicAdapter); !ok {
		t.Fatalf("auto mode with key = %T, want *AnthropicAdapter", c)
	}

	if _, err := NewClient(Config{Mode: "warp"}); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestMockAdapterPlanningReplies(t *testing.T) {
	m := NewMockAdapter()
	resp, err := m.Complete(context.Background(), Request{Messages: []Message{{
		Role:    RoleUser,
		Content: "You are a project planning expert. Break down the following project goal into a detailed plan: ship it",
	}}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(resp.Text), &fields); err != nil {
		t.Fatalf("mock plan is not valid JSON: %v", err)
	}
	if fields["project_name"] == "" {
		t.Fatalf("mock plan missing project_name: %v", fields)
	}
}
