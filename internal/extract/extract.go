// Package extract converts free-form model output into structured records.
//
// Models are prompted to answer in JSON but routinely wrap the payload in
// explanatory prose or markdown fences. Extract recovers the structured
// region when it can and degrades to a raw-text record when it cannot; it
// never fails and never panics, so callers always have something to inspect.
package extract

import (
	"encoding/json"
	"strings"
)

// Quality tags how trustworthy an extraction is, so downstream consumers can
// halt, retry or warn without string-matching on raw text.
type Quality string

const (
	QualityOK       Quality = "ok"
	QualityDegraded Quality = "degraded"
)

// ErrExtractionFailed is the error marker carried by degraded results.
const ErrExtractionFailed = "extraction_failed"

// Result is the outcome of extraction: either parsed fields, or the original
// text plus an error marker. It is never empty.
type Result struct {
	Fields      map[string]any
	RawResponse string
	Err         string
	Quality     Quality
}

func (r Result) Degraded() bool { return r.Quality == QualityDegraded }

// MarshalJSON renders either the parsed object or the degraded record, so a
// Result threads into later prompts and API responses unchanged.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Degraded() {
		return json.Marshal(map[string]string{
			"raw_response": r.RawResponse,
			"error":        r.Err,
		})
	}
	return json.Marshal(r.Fields)
}

// JSON renders the result as indented JSON for embedding in a prompt.
func (r Result) JSON() string {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// FromFields wraps an already-parsed mapping as an ok result.
func FromFields(fields map[string]any) Result {
	return Result{Fields: fields, Quality: QualityOK}
}

// Extract locates a JSON object inside raw model output. A fenced ```json
// block wins when present; otherwise the window from the first "{" to the
// last "}" is tried. Any failure yields a degraded result carrying the
// original text verbatim.
func Extract(raw string) Result {
	if candidate := fencedBlock(raw); candidate != "" {
		if fields, ok := parseObject(candidate); ok {
			return Result{Fields: fields, Quality: QualityOK}
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if fields, ok := parseObject(raw[start : end+1]); ok {
			return Result{Fields: fields, Quality: QualityOK}
		}
	}

	return Result{RawResponse: raw, Err: ErrExtractionFailed, Quality: QualityDegraded}
}

func parseObject(s string) (map[string]any, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, false
	}
	if fields == nil {
		return nil, false
	}
	return fields, true
}

func fencedBlock(raw string) string {
	for _, fence := range []string{"```json", "```"} {
		open := strings.Index(raw, fence)
		if open < 0 {
			continue
		}
		rest := raw[open+len(fence):]
		close := strings.Index(rest, "```")
		if close < 0 {
			continue
		}
		body := strings.TrimSpace(rest[:close])
		if strings.HasPrefix(body, "{") {
			return body
		}
	}
	return ""
}
