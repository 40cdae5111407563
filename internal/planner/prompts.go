package planner

import (
	"encoding/json"
	"fmt"

	"github.com/ent0n29/planpilot/internal/extract"
)

// PromptSpec is one stage's instruction text plus its generation budget.
// The required output shape is embedded in the instructions as a literal
// JSON example; downstream decoding relies on those exact field names.
type PromptSpec struct {
	Instructions string
	MaxTokens    int
}

// Per-stage token budgets. Decomposition produces the largest document,
// critical-path extraction the smallest.
const (
	decomposeMaxTokens    = 8000
	timelineMaxTokens     = 6000
	resourcesMaxTokens    = 4000
	adjustMaxTokens       = 6000
	criticalPathMaxTokens = 3000
	reportMaxTokens       = 4000
)

const decomposeShape = `{
  "project_name": "string",
  "total_estimated_weeks": number,
  "phases": [
    {
      "phase_number": number,
      "name": "string",
      "description": "string",
      "duration_weeks": number,
      "milestones": [
        {
          "name": "string",
          "description": "string",
          "target_week": number,
          "success_criteria": ["string"]
        }
      ],
      "tasks": [
        {
          "task_id": "string",
          "title": "string",
          "description": "string",
          "priority": "high|medium|low",
          "estimated_hours": number,
          "dependencies": ["task_id"],
          "required_skills": ["string"],
          "deliverables": ["string"]
        }
      ]
    }
  ],
  "critical_path": ["task_id"],
  "key_risks": ["string"],
  "resource_requirements": {
    "team_size": number,
    "key_roles": ["string"]
  }
}`

// DecomposePrompt builds the goal-decomposition stage prompt.
func DecomposePrompt(goal string, constraints map[string]any) PromptSpec {
	constraintText := ""
	if len(constraints) > 0 {
		constraintText = "\n\nConstraints:\n" + indentJSON(constraints)
	}

	instructions := fmt.Sprintf(`You are a project planning expert. Break down the following project goal into a detailed plan:

Project Goal: %s%s

Provide a comprehensive breakdown including:
1. Project phases (3-6 major phases)
2. Milestones for each phase
3. Detailed tasks with:
   - Clear, actionable descriptions
   - Priority levels (high/medium/low)
   - Estimated effort in hours
   - Dependencies on other tasks
   - Skills/resources required

Format your response as JSON:
%s`, goal, constraintText, decomposeShape)

	return PromptSpec{Instructions: instructions, MaxTokens: decomposeMaxTokens}
}

const timelineShape = `{
  "project_timeline": {
    "start_date": "YYYY-MM-DD",
    "end_date": "YYYY-MM-DD",
    "total_weeks": number,
    "phases": [
      {
        "phase_name": "string",
        "start_date": "YYYY-MM-DD",
        "end_date": "YYYY-MM-DD",
        "milestones": [
          {
            "name": "string",
            "target_date": "YYYY-MM-DD",
            "buffer_days": number
          }
        ],
        "tasks": [
          {
            "task_id": "string",
            "title": "string",
            "start_date": "YYYY-MM-DD",
            "end_date": "YYYY-MM-DD",
            "duration_days": number
          }
        ]
      }
    ],
    "critical_milestones": [
      {
        "name": "string",
        "date": "YYYY-MM-DD",
        "importance": "string"
      }
    ]
  }
}`

// TimelinePrompt builds the timeline stage prompt from a prior decomposition.
// The scheduling policy (dependency ordering, parallel load, risk buffer) is
// an instruction to the model; nothing verifies the returned dates honor it.
func TimelinePrompt(projectPlan extract.Result, startDate string) PromptSpec {
	instructions := fmt.Sprintf(`Given this project plan and start date %s, create a detailed timeline:

%s

Generate a timeline in JSON format:
%s

Ensure tasks are scheduled considering:
- Dependencies (dependent tasks start after prerequisites)
- Resource availability (don't overload parallel tasks)
- Buffer time for high-risk tasks (add 20%% buffer)`, startDate, projectPlan.JSON(), timelineShape)

	return PromptSpec{Instructions: instructions, MaxTokens: timelineMaxTokens}
}

const resourcesShape = `{
  "effort_summary": {
    "total_hours": number,
    "total_weeks": number,
    "phases": [
      {
        "phase_name": "string",
        "hours": number,
        "weeks": number
      }
    ]
  },
  "team_requirements": {
    "recommended_team_size": number,
    "roles": [
      {
        "role": "string",
        "count": number,
        "skills": ["string"],
        "allocation_percentage": number
      }
    ]
  },
  "budget_estimate": {
    "hours_by_priority": {
      "high": number,
      "medium": number,
      "low": number
    },
    "phases": [
      {
        "phase_name": "string",
        "hours": number
      }
    ]
  },
  "risks": [
    {
      "risk": "string",
      "impact": "high|medium|low",
      "mitigation": "string"
    }
  ]
}`

// ResourcesPrompt builds the resource-estimation stage prompt.
func ResourcesPrompt(projectPlan extract.Result) PromptSpec {
	instructions := fmt.Sprintf(`Analyze this project plan and provide resource estimates:

%s

Provide estimates in JSON format:
%s`, projectPlan.JSON(), resourcesShape)

	return PromptSpec{Instructions: instructions, MaxTokens: resourcesMaxTokens}
}

// AdjustPrompt builds the plan-adjustment stage prompt.
func AdjustPrompt(currentPlan extract.Result, adjustments map[string]any) PromptSpec {
	instructions := fmt.Sprintf(`Current project plan:
%s

Requested adjustments:
%s

Create an updated timeline that accommodates these changes while:
- Maintaining critical dependencies
- Identifying new risks introduced by changes
- Suggesting mitigation strategies
- Recalculating end dates and milestones

Return updated plan in the same JSON structure as the original.`, currentPlan.JSON(), indentJSON(adjustments))

	return PromptSpec{Instructions: instructions, MaxTokens: adjustMaxTokens}
}

const criticalPathShape = `{
  "critical_path": [
    {
      "task_id": "string",
      "task_title": "string",
      "reason": "string",
      "impact_if_delayed": "string"
    }
  ],
  "parallel_opportunities": [
    {
      "tasks": ["task_id"],
      "description": "string"
    }
  ],
  "bottlenecks": ["string"]
}`

// CriticalPathPrompt builds the critical-path extraction stage prompt.
func CriticalPathPrompt(projectPlan extract.Result) PromptSpec {
	instructions := fmt.Sprintf(`Analyze this project plan and identify the critical path:

%s

Return JSON:
%s`, projectPlan.JSON(), criticalPathShape)

	return PromptSpec{Instructions: instructions, MaxTokens: criticalPathMaxTokens}
}

// StatusReportPrompt builds the report stage prompt. The reply is consumed
// as markdown, not extracted.
func StatusReportPrompt(project map[string]any, reportType string) PromptSpec {
	if reportType == "" {
		reportType = "weekly"
	}
	instructions := fmt.Sprintf(`Generate a %s status report in markdown for this project:

%s

Include an executive summary, key highlights, current status (completion, health), risks, and next steps. Keep it concise and suitable for stakeholders.`, reportType, indentJSON(project))

	return PromptSpec{Instructions: instructions, MaxTokens: reportMaxTokens}
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
