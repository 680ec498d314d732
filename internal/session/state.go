package session

import (
	"encoding/json"
	"time"
)

// Channel identifies the chat platform a session belongs to. It is set when
// the session is created and never changes afterwards.
type Channel string

const (
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelMessenger Channel = "messenger"
)

func (c Channel) Valid() bool {
	return c == ChannelWhatsApp || c == ChannelMessenger
}

// AppliedAtLayout is the timestamp layout recorded for submitted applications.
const AppliedAtLayout = "2006-01-02 15:04:05"

// InterviewDateLayout is the calendar-date layout stored in
// current_day_interview and applied-job records.
const InterviewDateLayout = "2006-01-02"

// AppliedJob is one entry of the append-only application trail.
type AppliedJob struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Company       string `json:"company"`
	AppliedAt     string `json:"fecha_postulacion"`
	InterviewDate string `json:"interview_date"`
	InterviewTime string `json:"interview_time"`
}

// Interaction is one entry of the per-session turn trail. Fields carries
// action-specific values, always strings.
type Interaction struct {
	Action    string            `json:"action"`
	Timestamp string            `json:"timestamp"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// State is the per-user conversational state record. String fields use the
// empty string as the "unset" sentinel; they are never null on the wire.
type State struct {
	UserName           string  `json:"user_name"`
	LastName           string  `json:"last_name"`
	Email              string  `json:"email"`
	PhoneNumber        string  `json:"phone_number"`
	ContactPhoneNumber string  `json:"contact_phone_number"`
	Channel            Channel `json:"channel"`

	CurrentJobID       string            `json:"current_job_id"`
	CurrentJobTitle    string            `json:"current_job_title"`
	CurrentAdID        string            `json:"current_ad_id"`
	CurrentJobInterest map[string]string `json:"current_job_interest"`

	CurrentSearchStep    int    `json:"current_search_step"`
	CurrentDayInterview  string `json:"current_day_interview"`
	CurrentTimeInterview string `json:"current_time_interview"`

	AppliedJobs        []AppliedJob      `json:"applied_jobs"`
	InteractionHistory []Interaction     `json:"interaction_history"`
	CollectedCriteria  map[string]string `json:"collected_criteria"`
}

// NewState returns the initial-state template for a fresh session. For
// WhatsApp the sender id doubles as the phone number and is stored as such;
// Messenger sender ids carry no usable phone.
func NewState(channel Channel, senderID string) *State {
	s := &State{
		Channel:            channel,
		CurrentJobInterest: map[string]string{},
		AppliedJobs:        []AppliedJob{},
		InteractionHistory: []Interaction{},
		CollectedCriteria:  map[string]string{},
	}

	if channel == ChannelWhatsApp {
		s.PhoneNumber = senderID
	}

	return s
}

// Clone returns a deep copy of the state. Handlers operate on a copy loaded
// per turn; the store never hands out its internal record.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	raw, err := json.Marshal(s)
	if err != nil {
		// State is a plain data record; marshalling cannot fail for it.
		panic(err)
	}

	var out State
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}

	return &out
}

// HasJob reports whether a job is currently under discussion.
func (s *State) HasJob() bool {
	return s.CurrentJobID != ""
}

// SetJobContext installs the current job identifiers. The three fields always
// change together so a concurrent reader never observes a partial context.
func (s *State) SetJobContext(jobID, title, adID string) {
	s.CurrentJobID = jobID
	s.CurrentJobTitle = title
	s.CurrentAdID = adID
	s.CurrentJobInterest = map[string]string{}
}

// HasApplied reports whether an application for the given job id was already
// recorded.
func (s *State) HasApplied(jobID string) bool {
	for _, a := range s.AppliedJobs {
		if a.ID == jobID {
			return true
		}
	}
	return false
}

// AppendApplication records a submitted application. The trail is append-only
// and holds at most one entry per job id.
func (s *State) AppendApplication(job AppliedJob) error {
	if s.HasApplied(job.ID) {
		return ErrDuplicateApplication
	}

	s.AppliedJobs = append(s.AppliedJobs, job)
	return nil
}

// AppendInteraction records a turn in the interaction trail.
func (s *State) AppendInteraction(action string, at time.Time, fields map[string]string) {
	s.InteractionHistory = append(s.InteractionHistory, Interaction{
		Action:    action,
		Timestamp: at.UTC().Format(time.RFC3339),
		Fields:    fields,
	})
}

// LastInteraction returns the most recent interaction, or nil for an empty
// trail.
func (s *State) LastInteraction() *Interaction {
	if len(s.InteractionHistory) == 0 {
		return nil
	}
	return &s.InteractionHistory[len(s.InteractionHistory)-1]
}

// ClearHistory drops the interaction trail. Called on discovery-bound
// transitions so a previous job's turns cannot confuse the next handler.
func (s *State) ClearHistory() {
	s.InteractionHistory = []Interaction{}
}
