package plan

import "fmt"

// Inconsistency is a data-quality finding: the plan remains usable, but a
// task references something the plan does not define. Findings are reported,
// never auto-corrected.
type Inconsistency struct {
	TaskID    string `json:"task_id"`
	DependsOn string `json:"depends_on,omitempty"`
	Detail    string `json:"detail"`
}

// ValidateDependencies checks that every task dependency resolves to a task
// id defined in the same plan and that task ids are unique. The model invents
// dangling references often enough that this is routine, not exceptional.
func ValidateDependencies(p ProjectPlan) []Inconsistency {
	known := make(map[string]int)
	for _, t := range p.Tasks() {
		known[t.TaskID]++
	}

	var out []Inconsistency
	for id, count := range known {
		if count > 1 {
			out = append(out, Inconsistency{
				TaskID: id,
				Detail: fmt.Sprintf("task id %q defined %d times", id, count),
			})
		}
	}
	for _, t := range p.Tasks() {
		for _, dep := range t.Dependencies {
			if dep == "" {
				continue
			}
			if _, ok := known[dep]; !ok {
				out = append(out, Inconsistency{
					TaskID:    t.TaskID,
					DependsOn: dep,
					Detail:    fmt.Sprintf("task %q depends on unknown task %q", t.TaskID, dep),
				})
			}
		}
	}
	for _, dep := range p.CriticalPath {
		if dep == "" {
			continue
		}
		if _, ok := known[dep]; !ok {
			out = append(out, Inconsistency{
				DependsOn: dep,
				Detail:    fmt.Sprintf("critical path references unknown task %q", dep),
			})
		}
	}
	return out
}
