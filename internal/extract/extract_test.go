package extract

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestExtractPlainObject(t *testing.T) {
	res := Extract(`{"project_name":"X","phases":[]}`)
	if res.Degraded() {
		t.Fatalf("result degraded, want ok: %+v", res)
	}
	if got := res.Fields["project_name"]; got != "X" {
		t.Fatalf("project_name = %v, want X", got)
	}
	phases, ok := res.Fields["phases"].([]any)
	if !ok || len(phases) != 0 {
		t.Fatalf("phases = %v, want empty list", res.Fields["phases"])
	}
}

func TestExtractDiscardsSurroundingProse(t *testing.T) {
	raw := "Sure! Here is the plan you asked for:\n\n" +
		`{"project_name":"Mobile App","total_estimated_weeks":10}` +
		"\n\nLet me know if you want changes."
	res := Extract(raw)
	if res.Degraded() {
		t.Fatalf("result degraded, want ok: %+v", res)
	}
	if got := res.Fields["project_name"]; got != "Mobile App" {
		t.Fatalf("project_name = %v, want Mobile App", got)
	}
	if got := res.Fields["total_estimated_weeks"]; got != float64(10) {
		t.Fatalf("total_estimated_weeks = %v, want 10", got)
	}
}

func TestExtractFencedBlock(t *testing.T) {
	raw := "Here you go:\n```json\n{\"ok\":true}\n```\nAnything else?"
	res := Extract(raw)
	if res.Degraded() {
		t.Fatalf("result degraded, want ok: %+v", res)
	}
	if got := res.Fields["ok"]; got != true {
		t.Fatalf("ok = %v, want true", got)
	}
}

func TestExtractNoBracesDegrades(t *testing.T) {
	raw := "Sorry, I cannot help."
	res := Extract(raw)
	if !res.Degraded() {
		t.Fatalf("result ok, want degraded: %+v", res)
	}
	if res.RawResponse != raw {
		t.Fatalf("RawResponse = %q, want original text", res.RawResponse)
	}
	if res.Err != ErrExtractionFailed {
		t.Fatalf("Err = %q, want %q", res.Err, ErrExtractionFailed)
	}
}

func TestExtractUnbalancedOrderDegrades(t *testing.T) {
	raw := "} this is backwards {"
	res := Extract(raw)
	if !res.Degraded() {
		t.Fatalf("result ok, want degraded: %+v", res)
	}
	if res.RawResponse != raw {
		t.Fatalf("RawResponse = %q, want %q", res.RawResponse, raw)
	}
}

func TestExtractInvalidJSONDegrades(t *testing.T) {
	raw := `prefix {"broken": } suffix`
	res := Extract(raw)
	if !res.Degraded() {
		t.Fatalf("result ok, want degraded: %+v", res)
	}
	if res.RawResponse != raw {
		t.Fatalf("RawResponse must keep the full original text, got %q", res.RawResponse)
	}
}

func TestExtractIdempotentOnDegraded(t *testing.T) {
	first := Extract("no structure here at all")
	if !first.Degraded() {
		t.Fatalf("first result ok, want degraded")
	}
	second := Extract(first.RawResponse)
	if !second.Degraded() {
		t.Fatalf("second result ok, want degraded")
	}
	if second.RawResponse != first.RawResponse {
		t.Fatalf("second RawResponse = %q, want %q", second.RawResponse, first.RawResponse)
	}
}

func TestResultMarshalJSON(t *testing.T) {
	ok := FromFields(map[string]any{"a": float64(1)})
	b, err := json.Marshal(ok)
	if err != nil {
		t.Fatalf("marshal ok result: %v", err)
	}
	if string(b) != `{"a":1}` {
		t.Fatalf("ok marshal = %s", b)
	}

	degraded := Extract("nope")
	b, err = json.Marshal(degraded)
	if err != nil {
		t.Fatalf("marshal degraded result: %v", err)
	}
	var out map[string]string
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal degraded record: %v", err)
	}
	if out["raw_response"] != "nope" || out["error"] != ErrExtractionFailed {
		t.Fatalf("degraded record = %v", out)
	}
}

func TestResultJSONNeverEmpty(t *testing.T) {
	for _, raw := range []string{"", "prose", `{"k":"v"}`} {
		res := Extract(raw)
		if strings.TrimSpace(res.JSON()) == "" {
			t.Fatalf("JSON() empty for input %q", raw)
		}
	}
}
