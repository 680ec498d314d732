package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/topmx/top-assistant/internal/interview"
	"github.com/topmx/top-assistant/internal/session"
)

// FollowUpHandler reports on an existing application. Read-only: scheduling
// changes go through staff, not through this flow.
type FollowUpHandler struct{}

func NewFollowUpHandler() *FollowUpHandler { return &FollowUpHandler{} }

func (h *FollowUpHandler) Target() Target { return TargetFollowUp }

func (h *FollowUpHandler) Handle(ctx context.Context, turn *Turn) (*Result, error) {
	state := turn.State

	entry := relevantApplication(state)
	if entry == nil {
		return &Result{Reply: msgFollowUpNoApplications}, nil
	}

	reply := interviewLine(entry)

	if len(state.AppliedJobs) > 1 {
		lines := make([]string, 0, len(state.AppliedJobs))
		for i := range state.AppliedJobs {
			lines = append(lines, "- "+applicationLine(&state.AppliedJobs[i]))
		}
		reply += "\n\n" + msgFollowUpApplicationsIntro + "\n" + strings.Join(lines, "\n")
	}

	return &Result{Reply: reply}, nil
}

// relevantApplication picks the entry for the job under discussion, or the
// most recent one.
func relevantApplication(state *session.State) *session.AppliedJob {
	if len(state.AppliedJobs) == 0 {
		return nil
	}

	if state.HasJob() {
		for i := range state.AppliedJobs {
			if state.AppliedJobs[i].ID == state.CurrentJobID {
				return &state.AppliedJobs[i]
			}
		}
	}

	return &state.AppliedJobs[len(state.AppliedJobs)-1]
}

func interviewLine(entry *session.AppliedJob) string {
	date := displayInterviewDate(entry.InterviewDate)

	if entry.InterviewTime == "" {
		return fmt.Sprintf(msgFollowUpInterviewNoTime, entry.Title, date)
	}
	return fmt.Sprintf(msgFollowUpInterview, entry.Title, date, slotStart(entry.InterviewTime))
}

func applicationLine(entry *session.AppliedJob) string {
	label := entry.Title
	if entry.Company != "" {
		label += " (" + entry.Company + ")"
	}
	if entry.InterviewDate != "" {
		label += ", entrevista: " + displayInterviewDate(entry.InterviewDate)
	}
	return label
}

func displayInterviewDate(stored string) string {
	if parsed, err := interview.ParseStoredDate(stored); err == nil {
		return interview.FormatDate(parsed)
	}
	return stored
}
