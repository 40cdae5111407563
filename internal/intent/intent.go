// Package intent tags user messages with a best-effort planning intent.
// The tag is advisory routing/telemetry metadata; a wrong guess never blocks
// a chat turn.
package intent

import "strings"

type Intent int

const (
	IntentChat Intent = iota
	IntentCreateProject
	IntentStatus
	IntentReport
	IntentAdjust
)

func (i Intent) String() string {
	switch i {
	case IntentChat:
		return "chat"
	case IntentCreateProject:
		return "create_project"
	case IntentStatus:
		return "status"
	case IntentReport:
		return "report"
	case IntentAdjust:
		return "adjust"
	default:
		return "unknown"
	}
}

var createKeywords = []string{
	"create project", "create a project", "new project", "start a project",
	"plan a project", "plan my project", "build a plan", "project plan for",
	"break down", "decompose",
}

var adjustKeywords = []string{
	"adjust", "reschedule", "push back", "move the deadline", "delay",
	"scope change", "change the scope", "add a phase", "remove a phase",
	"shift the timeline", "extend the timeline",
}

var reportKeywords = []string{
	"report", "summary for stakeholders", "executive summary",
	"weekly update", "status update for",
}

var statusKeywords = []string{
	"status", "progress", "how far along", "on track", "completion",
	"where are we", "blockers",
}

// Classify tags the user's message. Specific intents are checked before
// general ones so "status report" resolves to report, not status.
func Classify(input string) Intent {
	lower := strings.ToLower(input)

	for _, kw := range createKeywords {
		if strings.Contains(lower, kw) {
			return IntentCreateProject
		}
	}
	for _, kw := range adjustKeywords {
		if strings.Contains(lower, kw) {
			return IntentAdjust
		}
	}
	for _, kw := range reportKeywords {
		if strings.Contains(lower, kw) {
			return IntentReport
		}
	}
	for _, kw := range statusKeywords {
		if strings.Contains(lower, kw) {
			return IntentStatus
		}
	}
	return IntentChat
}
