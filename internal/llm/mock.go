package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockAdapter provides deterministic local replies when no model credentials
// are configured. Planning prompts get a canned plan-shaped document so the
// whole pipeline stays exercisable offline.
type MockAdapter struct{}

func NewMockAdapter() *MockAdapter { return &MockAdapter{} }

func (a *MockAdapter) Complete(ctx context.Context, req Request) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, &GatewayError{Code: CodeNetwork, Message: "request cancelled", Err: ctx.Err()}
	default:
	}

	prompt := lastUserContent(req.Messages)
	return Response{Text: mockReply(prompt)}, nil
}

func lastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func mockReply(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "break down the following project goal"),
		strings.Contains(lower, "requested adjustments"):
		return mockPlanJSON
	case strings.Contains(lower, "create a detailed timeline"):
		return mockTimelineJSON
	case strings.Contains(lower, "provide resource estimates"):
		return mockResourcesJSON
	case strings.Contains(lower, "identify the critical path"):
		return mockCriticalPathJSON
	case strings.Contains(lower, "status report"):
		return mockReport
	default:
		base := strings.TrimSpace(prompt)
		if base == "" {
			base = "I am listening."
		}
		if len(base) > 200 {
			base = base[:200]
		}
		return fmt.Sprintf("Mock response to: %s", base)
	}
}

const mockPlanJSON = `{
  "project_name": "Mock Project",
  "total_estimated_weeks": 12,
  "phases": [
    {
      "phase_number": 1,
      "name": "Planning & Research",
      "description": "Initial planning and requirement gathering",
      "duration_weeks": 2,
      "milestones": [
        {"name": "Scope agreed", "description": "Scope signed off", "target_week": 2, "success_criteria": ["Scope document approved"]}
      ],
      "tasks": [
        {"task_id": "task_001", "title": "Define project scope", "priority": "high", "estimated_hours": 8, "dependencies": [], "required_skills": ["product"], "deliverables": ["scope document"]},
        {"task_id": "task_002", "title": "Research technologies", "priority": "medium", "estimated_hours": 16, "dependencies": ["task_001"], "required_skills": ["engineering"], "deliverables": ["tech report"]}
      ]
    },
    {
      "phase_number": 2,
      "name": "Development",
      "description": "Main development work",
      "duration_weeks": 8,
      "milestones": [
        {"name": "Core complete", "description": "Core features done", "target_week": 10, "success_criteria": ["All core features pass QA"]}
      ],
      "tasks": [
        {"task_id": "task_003", "title": "Build core features", "priority": "high", "estimated_hours": 80, "dependencies": ["task_002"], "required_skills": ["engineering"], "deliverables": ["working build"]}
      ]
    }
  ],
  "critical_path": ["task_001", "task_002", "task_003"],
  "key_risks": ["Scope creep"],
  "resource_requirements": {"team_size": 3, "key_roles": ["engineer", "designer", "pm"]}
}`

const mockTimelineJSON = `{
  "project_timeline": {
    "start_date": "2026-01-05",
    "end_date": "2026-03-30",
    "total_weeks": 12,
    "phases": [
      {
        "phase_name": "Planning & Research",
        "start_date": "2026-01-05",
        "end_date": "2026-01-19",
        "milestones": [{"name": "Scope agreed", "target_date": "2026-01-19", "buffer_days": 2}],
        "tasks": [
          {"task_id": "task_001", "title": "Define project scope", "start_date": "2026-01-05", "end_date": "2026-01-07", "duration_days": 2},
          {"task_id": "task_002", "title": "Research technologies", "start_date": "2026-01-07", "end_date": "2026-01-12", "duration_days": 5}
        ]
      }
    ],
    "critical_milestones": [{"name": "Scope agreed", "date": "2026-01-19", "importance": "Gates all development work"}]
  }
}`

const mockResourcesJSON = `{
  "effort_summary": {"total_hours": 104, "total_weeks": 12, "phases": [{"phase_name": "Planning & Research", "hours": 24, "weeks": 2}, {"phase_name": "Development", "hours": 80, "weeks": 8}]},
  "team_requirements": {"recommended_team_size": 3, "roles": [{"role": "engineer", "count": 2, "skills": ["go"], "allocation_percentage": 100}]},
  "budget_estimate": {"hours_by_priority": {"high": 88, "medium": 16, "low": 0}, "phases": [{"phase_name": "Development", "hours": 80}]},
  "risks": [{"risk": "Scope creep", "impact": "medium", "mitigation": "Weekly scope review"}]
}`

const mockCriticalPathJSON = `{
  "critical_path": [
    {"task_id": "task_001", "task_title": "Define project scope", "reason": "Everything depends on scope", "impact_if_delayed": "Project start slips day for day"},
    {"task_id": "task_003", "task_title": "Build core features", "reason": "Largest effort on the chain", "impact_if_delayed": "Release date slips"}
  ],
  "parallel_opportunities": [{"tasks": ["task_002"], "description": "Research can overlap with late scoping"}],
  "bottlenecks": ["Single engineer on core features"]
}`

const mockReport = `# Project Status Report

## Executive Summary
The project is in active development and on track.

## Current Status
- Completion: 0%
- Health: GREEN

## Next Steps
1. Continue development on core features
2. Schedule testing phase
`
