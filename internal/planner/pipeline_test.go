package planner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ent0n29/planpilot/internal/extract"
	"github.com/ent0n29/planpilot/internal/llm"
)

// stubClient returns canned replies in call order and records every prompt.
type stubClient struct {
	mu      sync.Mutex
	replies map[string]string // stage marker -> reply
	fail    error
	prompts []string
}

func (c *stubClient) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return llm.Response{}, c.fail
	}
	prompt := req.Messages[len(req.Messages)-1].Content
	c.prompts = append(c.prompts, prompt)
	for marker, reply := range c.replies {
		if strings.Contains(prompt, marker) {
			return llm.Response{Text: reply, InputTokens: 10, OutputTokens: 20}, nil
		}
	}
	return llm.Response{Text: `{"stub":true}`}, nil
}

func (c *stubClient) promptsCopy() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

func TestCreatePlanThreadsDecompositionDownstream(t *testing.T) {
	client := &stubClient{replies: map[string]string{
		"Break down the following project goal": `{"project_name":"X","phases":[]}`,
	}}
	p := New(client, nil)

	bundle, err := p.CreatePlan(context.Background(), "Build a mobile app", nil)
	if err != nil {
		t.Fatalf("CreatePlan() error = %v", err)
	}
	if bundle.Plan.Degraded() {
		t.Fatalf("plan degraded: %+v", bundle.Plan)
	}
	if got := bundle.Plan.Fields["project_name"]; got != "X" {
		t.Fatalf("project_name = %v, want X", got)
	}
	phases, ok := bundle.Plan.Fields["phases"].([]any)
	if !ok || len(phases) != 0 {
		t.Fatalf("phases = %v, want empty list", bundle.Plan.Fields["phases"])
	}

	prompts := client.promptsCopy()
	if len(prompts) != 4 {
		t.Fatalf("gateway calls = %d, want 4 (decompose + 3 derived stages)", len(prompts))
	}
	// Each derived stage must receive the extracted decomposition verbatim.
	for _, prompt := range prompts[1:] {
		if !strings.Contains(prompt, `"project_name": "X"`) {
			t.Fatalf("derived stage prompt missing decomposition payload:\n%s", prompt)
		}
	}
}

func TestCreatePlanPropagatesDegradedDecomposition(t *testing.T) {
	client := &stubClient{replies: map[string]string{
		"Break down the following project goal": "Sorry, I cannot help.",
	}}
	p := New(client, nil)

	bundle, err := p.CreatePlan(context.Background(), "Build a mobile app", nil)
	if err != nil {
		t.Fatalf("CreatePlan() error = %v", err)
	}
	if !bundle.Plan.Degraded() {
		t.Fatalf("plan should be degraded: %+v", bundle.Plan)
	}
	if bundle.Plan.RawResponse != "Sorry, I cannot help." {
		t.Fatalf("RawResponse = %q", bundle.Plan.RawResponse)
	}
	if bundle.Plan.Err != extract.ErrExtractionFailed {
		t.Fatalf("Err = %q, want %q", bundle.Plan.Err, extract.ErrExtractionFailed)
	}

	prompts := client.promptsCopy()
	if len(prompts) != 4 {
		t.Fatalf("gateway calls = %d, want 4; degraded output must not abort the pipeline", len(prompts))
	}
	for _, prompt := range prompts[1:] {
		if !strings.Contains(prompt, "Sorry, I cannot help.") {
			t.Fatalf("derived stage prompt missing degraded payload:\n%s", prompt)
		}
	}
}

func TestCreatePlanSurfacesGatewayError(t *testing.T) {
	gwErr := &llm.GatewayError{Code: llm.CodeRateLimited, Message: "quota"}
	client := &stubClient{fail: gwErr}
	p := New(client, nil)

	_, err := p.CreatePlan(context.Background(), "goal", nil)
	if err == nil {
		t.Fatalf("CreatePlan() error = nil, want gateway error")
	}
	var ge *llm.GatewayError
	if !errors.As(err, &ge) || ge.Code != llm.CodeRateLimited {
		t.Fatalf("error = %v, want wrapped GatewayError", err)
	}
}

func TestAdjustPlanAcceptsDegradedPrior(t *testing.T) {
	client := &stubClient{replies: map[string]string{
		"Requested adjustments": "still not json",
	}}
	p := New(client, nil)

	prior := extract.Extract("no structure")
	res, err := p.AdjustPlan(context.Background(), prior, map[string]any{"delay_weeks": 2})
	if err != nil {
		t.Fatalf("AdjustPlan() error = %v", err)
	}
	if !res.Degraded() {
		t.Fatalf("result should be degraded: %+v", res)
	}
	if res.RawResponse != "still not json" {
		t.Fatalf("RawResponse = %q", res.RawResponse)
	}

	prompts := client.promptsCopy()
	if len(prompts) != 1 {
		t.Fatalf("gateway calls = %d, want 1", len(prompts))
	}
	if !strings.Contains(prompts[0], "no structure") {
		t.Fatalf("adjust prompt missing degraded prior plan:\n%s", prompts[0])
	}
	if !strings.Contains(prompts[0], `"delay_weeks": 2`) {
		t.Fatalf("adjust prompt missing adjustments:\n%s", prompts[0])
	}
}

func TestStatusReportReturnsRawText(t *testing.T) {
	client := &stubClient{replies: map[string]string{
		"status report": "# Report\nAll good.",
	}}
	p := New(client, nil)

	report, err := p.StatusReport(context.Background(), map[string]any{"name": "proj"}, "weekly")
	if err != nil {
		t.Fatalf("StatusReport() error = %v", err)
	}
	if !strings.HasPrefix(report, "# Report") {
		t.Fatalf("report = %q", report)
	}
}
