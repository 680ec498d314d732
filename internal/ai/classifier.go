package ai

import "context"

// Intent is the classified purpose of an inbound message. The router maps
// intents to handlers; anything it cannot place lands on IntentUnknown and
// the user is asked to clarify rather than guessed at.
type Intent string

const (
	IntentGreeting      Intent = "greeting"
	IntentJobQuery      Intent = "job_query"
	IntentInterviewDate Intent = "interview_date"
	IntentFAQ           Intent = "faq"
	IntentApply         Intent = "apply"
	IntentUnknown       Intent = "unknown"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentGreeting, IntentJobQuery, IntentInterviewDate, IntentFAQ, IntentApply, IntentUnknown:
		return true
	}
	return false
}

// Classification is one classifier verdict. Raw keeps the provider's
// response for debugging; keyword matches leave it empty.
type Classification struct {
	Intent     Intent
	Confidence float64
	Raw        string
}

type Classifier interface {
	Classify(ctx context.Context, message string) (*Classification, error)
}
