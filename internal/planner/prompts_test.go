package planner

import (
	"strings"
	"testing"

	"github.com/ent0n29/planpilot/internal/extract"
)

func TestDecomposePromptIncludesGoalAndConstraints(t *testing.T) {
	spec := DecomposePrompt("Launch a newsletter", map[string]any{"budget": "low"})
	if !strings.Contains(spec.Instructions, "Launch a newsletter") {
		t.Fatalf("prompt missing goal:\n%s", spec.Instructions)
	}
	if !strings.Contains(spec.Instructions, `"budget": "low"`) {
		t.Fatalf("prompt missing constraints:\n%s", spec.Instructions)
	}
	if spec.MaxTokens != decomposeMaxTokens {
		t.Fatalf("MaxTokens = %d, want %d", spec.MaxTokens, decomposeMaxTokens)
	}
	// Downstream decoding depends on these exact field names.
	for _, field := range []string{`"task_id"`, `"dependencies"`, `"estimated_hours"`, `"critical_path"`, `"resource_requirements"`} {
		if !strings.Contains(spec.Instructions, field) {
			t.Fatalf("prompt shape missing %s", field)
		}
	}
}

func TestDecomposePromptOmitsEmptyConstraints(t *testing.T) {
	spec := DecomposePrompt("goal", nil)
	if strings.Contains(spec.Instructions, "Constraints:") {
		t.Fatalf("prompt should omit constraints section when none given:\n%s", spec.Instructions)
	}
}

func TestTimelinePromptEmbedsPlanAndPolicy(t *testing.T) {
	plan := extract.FromFields(map[string]any{"project_name": "X"})
	spec := TimelinePrompt(plan, "2026-09-01")
	if !strings.Contains(spec.Instructions, "2026-09-01") {
		t.Fatalf("prompt missing start date:\n%s", spec.Instructions)
	}
	if !strings.Contains(spec.Instructions, `"project_name": "X"`) {
		t.Fatalf("prompt missing prior plan:\n%s", spec.Instructions)
	}
	if !strings.Contains(spec.Instructions, "add 20% buffer") {
		t.Fatalf("prompt missing risk buffer instruction:\n%s", spec.Instructions)
	}
	if spec.MaxTokens != timelineMaxTokens {
		t.Fatalf("MaxTokens = %d, want %d", spec.MaxTokens, timelineMaxTokens)
	}
}

func TestStageBudgetsOrdering(t *testing.T) {
	plan := extract.FromFields(map[string]any{})
	decompose := DecomposePrompt("g", nil).MaxTokens
	critical := CriticalPathPrompt(plan).MaxTokens
	if decompose <= critical {
		t.Fatalf("decompose budget %d should exceed critical path budget %d", decompose, critical)
	}
}

func TestCriticalPathPromptShape(t *testing.T) {
	plan := extract.FromFields(map[string]any{"project_name": "X"})
	spec := CriticalPathPrompt(plan)
	for _, field := range []string{`"impact_if_delayed"`, `"parallel_opportunities"`, `"bottlenecks"`} {
		if !strings.Contains(spec.Instructions, field) {
			t.Fatalf("prompt shape missing %s", field)
		}
	}
}

func TestAdjustPromptEmbedsDegradedPlanVerbatim(t *testing.T) {
	degraded := extract.Extract("the model rambled instead")
	spec := AdjustPrompt(degraded, map[string]any{"scope": "cut phase 3"})
	if !strings.Contains(spec.Instructions, "the model rambled instead") {
		t.Fatalf("prompt must carry degraded plan text:\n%s", spec.Instructions)
	}
	if !strings.Contains(spec.Instructions, `"error": "extraction_failed"`) {
		t.Fatalf("prompt must carry the degraded marker:\n%s", spec.Instructions)
	}
}
