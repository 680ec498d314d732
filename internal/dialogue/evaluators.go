// Package dialogue holds the conversation core: the evaluators over session
// state, the router that picks a handler for each turn, and the handlers
// themselves.
package dialogue

import (
	"strings"
	"time"

	"github.com/topmx/top-assistant/internal/interview"
	"github.com/topmx/top-assistant/internal/session"
)

// Missing-field names reported by the contact evaluator.
const (
	MissingName     = "name"
	MissingLastName = "last_name"
	MissingPhone    = "phone"
)

// ContactReport is the contact-completeness verdict for a state snapshot.
type ContactReport struct {
	AllComplete   bool
	MissingFields []string
}

// EvaluateContact checks whether the contact data needed for an application
// is present. A field counts once trimmed it is non-empty. The phone resolves
// through ContactPhone.
func EvaluateContact(state *session.State) ContactReport {
	var missing []string

	if strings.TrimSpace(state.UserName) == "" {
		missing = append(missing, MissingName)
	}
	if strings.TrimSpace(state.LastName) == "" {
		missing = append(missing, MissingLastName)
	}
	if ContactPhone(state) == "" {
		missing = append(missing, MissingPhone)
	}

	return ContactReport{
		AllComplete:   len(missing) == 0,
		MissingFields: missing,
	}
}

// ContactPhone resolves the number an interviewer can call: the canonical
// contact number when given, otherwise the channel identity, which is a
// phone only on WhatsApp. Messenger ids are page-scoped and never usable.
func ContactPhone(state *session.State) string {
	if phone := strings.TrimSpace(state.ContactPhoneNumber); phone != "" {
		return phone
	}
	if state.Channel == session.ChannelWhatsApp {
		return strings.TrimSpace(state.PhoneNumber)
	}
	return ""
}

// InterviewStatus is the interview-date verdict for a state snapshot.
type InterviewStatus string

const (
	NoInterviewDate   InterviewStatus = "no_interview_date"
	InterviewUpcoming InterviewStatus = "upcoming"
	InterviewExpired  InterviewStatus = "expired"
)

// EvaluateInterviewDate reports whether the stored interview date is still
// ahead of today. Today is an explicit parameter; only the calendar date
// matters. An unparseable stored date returns NoInterviewDate together with
// the error so the caller can log and recover the field.
func EvaluateInterviewDate(state *session.State, today time.Time) (InterviewStatus, error) {
	if state.CurrentDayInterview == "" {
		return NoInterviewDate, nil
	}

	date, err := interview.ParseStoredDate(state.CurrentDayInterview)
	if err != nil {
		return NoInterviewDate, err
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(day) {
		return InterviewExpired, nil
	}
	return InterviewUpcoming, nil
}
