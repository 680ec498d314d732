package dialogue

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/topmx/top-assistant/internal/interview"
	"github.com/topmx/top-assistant/internal/session"
)

func TestEvaluateContact(t *testing.T) {
	tests := []struct {
		name        string
		state       func() *session.State
		wantMissing []string
	}{
		{
			name: "complete via contact phone",
			state: func() *session.State {
				return withContact(whatsappState())
			},
		},
		{
			name: "whatsapp falls back to channel phone",
			state: func() *session.State {
				s := whatsappState()
				s.UserName = "Ana"
				s.LastName = "García"
				return s
			},
		},
		{
			name: "messenger has no phone fallback",
			state: func() *session.State {
				s := session.NewState(session.ChannelMessenger, "24031234567890123")
				s.UserName = "Ana"
				s.LastName = "García"
				return s
			},
			wantMissing: []string{MissingPhone},
		},
		{
			name: "whatsapp with both phones empty",
			state: func() *session.State {
				s := whatsappState()
				s.UserName = "Ana"
				s.LastName = "García"
				s.PhoneNumber = ""
				return s
			},
			wantMissing: []string{MissingPhone},
		},
		{
			name: "empty state misses everything",
			state: func() *session.State {
				s := whatsappState()
				s.PhoneNumber = ""
				return s
			},
			wantMissing: []string{MissingName, MissingLastName, MissingPhone},
		},
		{
			name: "whitespace counts as missing",
			state: func() *session.State {
				s := withContact(whatsappState())
				s.LastName = "   "
				return s
			},
			wantMissing: []string{MissingLastName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := EvaluateContact(tt.state())

			if report.AllComplete != (len(tt.wantMissing) == 0) {
				t.Fatalf("AllComplete = %v, want %v", report.AllComplete, len(tt.wantMissing) == 0)
			}
			if !reflect.DeepEqual(report.MissingFields, tt.wantMissing) {
				t.Fatalf("MissingFields = %v, want %v", report.MissingFields, tt.wantMissing)
			}
		})
	}
}

func TestEvaluateContactIdempotent(t *testing.T) {
	state := whatsappState()
	state.UserName = "Ana"

	first := EvaluateContact(state)
	second := EvaluateContact(state)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reports differ: %v vs %v", first, second)
	}
}

func TestEvaluateInterviewDate(t *testing.T) {
	today := time.Date(2025, time.January, 1, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		stored  string
		want    InterviewStatus
		wantErr bool
	}{
		{name: "unset", stored: "", want: NoInterviewDate},
		{name: "expired", stored: "2020-01-01", want: InterviewExpired},
		{name: "upcoming", stored: "2025-01-02", want: InterviewUpcoming},
		{name: "today is still upcoming", stored: "2025-01-01", want: InterviewUpcoming},
		{name: "unparseable", stored: "mañana", want: NoInterviewDate, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := whatsappState()
			state.CurrentDayInterview = tt.stored

			got, err := EvaluateInterviewDate(state, today)
			if got != tt.want {
				t.Fatalf("status = %q, want %q", got, tt.want)
			}
			if tt.wantErr {
				if !errors.Is(err, interview.ErrInvalidDate) {
					t.Fatalf("err = %v, want ErrInvalidDate", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
