// Package plan defines the typed records the planning stages exchange and
// validation over them. The field names match the JSON shapes the model is
// instructed to produce; every field beyond the identifiers is optional so a
// partially filled reply still decodes.
package plan

import "encoding/json"

type Task struct {
	TaskID         string   `json:"task_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	EstimatedHours float64  `json:"estimated_hours,omitempty"`
	Dependencies   []string `json:"dependencies,omitempty"`
	RequiredSkills []string `json:"required_skills,omitempty"`
	Deliverables   []string `json:"deliverables,omitempty"`
}

type Milestone struct {
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	TargetWeek      float64  `json:"target_week,omitempty"`
	SuccessCriteria []string `json:"success_criteria,omitempty"`
}

type Phase struct {
	PhaseNumber   int         `json:"phase_number"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	DurationWeeks float64     `json:"duration_weeks,omitempty"`
	Milestones    []Milestone `json:"milestones,omitempty"`
	Tasks         []Task      `json:"tasks,omitempty"`
}

type ResourceRequirements struct {
	TeamSize int      `json:"team_size,omitempty"`
	KeyRoles []string `json:"key_roles,omitempty"`
}

type ProjectPlan struct {
	ProjectName          string                `json:"project_name"`
	TotalEstimatedWeeks  float64               `json:"total_estimated_weeks,omitempty"`
	Phases               []Phase               `json:"phases"`
	CriticalPath         []string              `json:"critical_path,omitempty"`
	KeyRisks             []string              `json:"key_risks,omitempty"`
	ResourceRequirements *ResourceRequirements `json:"resource_requirements,omitempty"`
}

// FromFields decodes an extracted mapping into a typed plan. Unknown fields
// are dropped, missing fields stay zero; decode errors only occur when a
// present field has an incompatible type.
func FromFields(fields map[string]any) (ProjectPlan, error) {
	var p ProjectPlan
	raw, err := json.Marshal(fields)
	if err != nil {
		return ProjectPlan{}, err
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return ProjectPlan{}, err
	}
	return p, nil
}

// Tasks flattens all tasks across phases in document order.
func (p ProjectPlan) Tasks() []Task {
	var out []Task
	for _, ph := range p.Phases {
		out = append(out, ph.Tasks...)
	}
	return out
}
