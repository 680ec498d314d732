package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/topmx/top-assistant/internal/ai"
	"github.com/topmx/top-assistant/internal/jobindex"
	"github.com/topmx/top-assistant/internal/session"
)

func newApplicationFixture(jobs *stubJobs) (*ApplicationHandler, *stubSink, *stubNotifier, *stubNotifier) {
	sink := &stubSink{}
	staff := &stubNotifier{}
	alerts := &stubNotifier{}
	return NewApplicationHandler(jobs, sink, staff, alerts, noopLogger()), sink, staff, alerts
}

func applicationState() *session.State {
	return withJob(withContact(whatsappState()), testJob("101", "Vendedor de piso"))
}

func TestApplicationOffersDates(t *testing.T) {
	jobs := &stubJobs{jobs: map[string]*jobindex.Job{"101": testJob("101", "Vendedor de piso")}}
	handler, _, _, _ := newApplicationFixture(jobs)

	state := applicationState()
	state.CurrentDayInterview = "2026-01-01"
	state.CurrentTimeInterview = "10:00"

	result, err := handler.Handle(context.Background(), newTurn(state, "quiero postularme", ai.IntentApply))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if !strings.Contains(result.Reply, "Vendedor de piso") {
		t.Fatalf("reply lacks the title:\n%s", result.Reply)
	}
	// Tuesday 2026-08-25 with Mon/Tue/Wed postings: first offer is Wednesday.
	if !strings.Contains(result.Reply, "1. Miércoles 26 de agosto") {
		t.Fatalf("reply lacks the first date:\n%s", result.Reply)
	}

	last := state.LastInteraction()
	if last == nil || last.Action != actionOfferedDates {
		t.Fatalf("last interaction = %+v, want offered_dates", last)
	}
	if last.Fields[fieldCount] != "6" || last.Fields["date_1"] != "2026-08-26" {
		t.Fatalf("offer fields = %v", last.Fields)
	}
	if state.CurrentDayInterview != "" || state.CurrentTimeInterview != "" {
		t.Fatalf("stale schedule kept: %q %q", state.CurrentDayInterview, state.CurrentTimeInterview)
	}
}

func TestApplicationDateSelectionOffersTimes(t *testing.T) {
	handler, _, _, _ := newApplicationFixture(&stubJobs{})

	state := applicationState()
	state.AppendInteraction(actionOfferedDates, testNow, map[string]string{
		fieldCount: "2", "date_1": "2026-08-26", "date_2": "2026-08-31",
	})

	result, err := handler.Handle(context.Background(), newTurn(state, "1", ai.IntentUnknown))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if state.CurrentDayInterview != "2026-08-26" {
		t.Fatalf("CurrentDayInterview = %q", state.CurrentDayInterview)
	}
	if !strings.Contains(result.Reply, "Miércoles 26 de agosto") {
		t.Fatalf("reply lacks the chosen date:\n%s", result.Reply)
	}
	if !strings.Contains(result.Reply, "1. 10:00 - 12:00") || !strings.Contains(result.Reply, "2. 16:00 - 18:00") {
		t.Fatalf("reply lacks the slots:\n%s", result.Reply)
	}

	last := state.LastInteraction()
	if last == nil || last.Action != actionOfferedTimes {
		t.Fatalf("last interaction = %+v, want offered_times", last)
	}
	if last.Fields["time_2"] != "16:00 - 18:00" {
		t.Fatalf("offer fields = %v", last.Fields)
	}
}

func TestApplicationTimeSelectionSubmits(t *testing.T) {
	handler, sink, staff, _ := newApplicationFixture(&stubJobs{})

	state := applicationState()
	state.CurrentDayInterview = "2026-08-26"
	state.AppendInteraction(actionOfferedTimes, testNow, map[string]string{
		fieldCount: "2", "time_1": "10:00 - 12:00", "time_2": "16:00 - 18:00",
	})

	result, err := handler.Handle(context.Background(), newTurn(state, "2", ai.IntentUnknown))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if state.CurrentTimeInterview != "16:00 - 18:00" {
		t.Fatalf("CurrentTimeInterview = %q", state.CurrentTimeInterview)
	}

	if len(state.AppliedJobs) != 1 {
		t.Fatalf("applied_jobs = %+v", state.AppliedJobs)
	}
	entry := state.AppliedJobs[0]
	if entry.ID != "101" || entry.Title != "Vendedor de piso" || entry.Company != "Tiendas del Valle" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.AppliedAt != "2026-08-25 12:00:00" {
		t.Fatalf("AppliedAt = %q", entry.AppliedAt)
	}
	if entry.InterviewDate != "2026-08-26" || entry.InterviewTime != "16:00 - 18:00" {
		t.Fatalf("interview = %q %q", entry.InterviewDate, entry.InterviewTime)
	}

	if len(sink.submissions) != 1 {
		t.Fatalf("submissions = %d", len(sink.submissions))
	}
	sub := sink.submissions[0]
	if sub.FirstName != "Ana" || sub.LastName != "García" || sub.Phone != "5512345678" {
		t.Fatalf("submission candidate = %+v", sub)
	}
	if sub.ProfileType != "Operativo" || sub.Department != "Comercial" || sub.ClientID != "77" {
		t.Fatalf("submission profile = %+v", sub)
	}
	if !strings.Contains(sub.Notes, "Cita programada para: 26 de agosto de 2026 (Miércoles) a las 16:00") {
		t.Fatalf("notes = %q", sub.Notes)
	}

	if len(staff.messages) != 1 || !strings.Contains(staff.messages[0], "NUEVA POSTULACIÓN") {
		t.Fatalf("staff messages = %v", staff.messages)
	}
	if !strings.Contains(staff.messages[0], "Vendedor de piso") {
		t.Fatalf("staff message lacks the title: %q", staff.messages[0])
	}

	if last := state.LastInteraction(); last == nil || last.Action != actionSubmitted {
		t.Fatalf("last interaction = %+v, want application_submitted", last)
	}
	if !strings.Contains(result.Reply, "Miércoles 26 de agosto") || !strings.Contains(result.Reply, "16:00") {
		t.Fatalf("reply = %q", result.Reply)
	}
}

func TestApplicationSinkFailureKeepsApplication(t *testing.T) {
	handler, sink, _, alerts := newApplicationFixture(&stubJobs{})
	sink.err = errors.New("tracker down")

	state := applicationState()
	state.CurrentDayInterview = "2026-08-26"
	state.AppendInteraction(actionOfferedTimes, testNow, map[string]string{
		fieldCount: "1", "time_1": "10:00 - 12:00",
	})

	result, err := handler.Handle(context.Background(), newTurn(state, "1", ai.IntentUnknown))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if len(state.AppliedJobs) != 1 {
		t.Fatalf("application rolled back: %+v", state.AppliedJobs)
	}
	if !strings.Contains(result.Reply, "quedó registrada") {
		t.Fatalf("reply = %q", result.Reply)
	}
	if len(alerts.messages) != 1 || !strings.Contains(alerts.messages[0], "ATS") {
		t.Fatalf("alerts = %v", alerts.messages)
	}
}

func TestApplicationWithoutTimeSlots(t *testing.T) {
	handler, sink, _, _ := newApplicationFixture(&stubJobs{})

	state := applicationState()
	state.CurrentJobInterest["horarios_disponibles_para_entrevistar"] = ""
	state.AppendInteraction(actionOfferedDates, testNow, map[string]string{
		fieldCount: "1", "date_1": "2026-08-26",
	})

	result, err := handler.Handle(context.Background(), newTurn(state, "1", ai.IntentUnknown))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if len(state.AppliedJobs) != 1 {
		t.Fatalf("applied_jobs = %+v", state.AppliedJobs)
	}
	if state.AppliedJobs[0].InterviewTime != "" {
		t.Fatalf("InterviewTime = %q, want empty", state.AppliedJobs[0].InterviewTime)
	}
	if !strings.Contains(result.Reply, "confirmar el horario") {
		t.Fatalf("reply = %q", result.Reply)
	}
	if len(sink.submissions) != 1 || strings.Contains(sink.submissions[0].Notes, "a las") {
		t.Fatalf("notes = %q", sink.submissions[0].Notes)
	}
}

func TestApplicationGuards(t *testing.T) {
	t.Run("no job selected", func(t *testing.T) {
		handler, _, _, _ := newApplicationFixture(&stubJobs{})

		result, err := handler.Handle(context.Background(), newTurn(withContact(whatsappState()), "quiero postularme", ai.IntentApply))
		if err != nil {
			t.Fatalf("Handle() error: %v", err)
		}
		if result.Reply != msgNoJobSelected {
			t.Fatalf("reply = %q", result.Reply)
		}
	})

	t.Run("already applied", func(t *testing.T) {
		handler, _, _, _ := newApplicationFixture(&stubJobs{jobs: map[string]*jobindex.Job{"101": testJob("101", "Vendedor de piso")}})

		state := applicationState()
		if err := state.AppendApplication(session.AppliedJob{ID: "101", Title: "Vendedor de piso", AppliedAt: "2026-08-20 10:00:00"}); err != nil {
			t.Fatalf("AppendApplication() error: %v", err)
		}

		result, err := handler.Handle(context.Background(), newTurn(state, "quiero postularme", ai.IntentApply))
		if err != nil {
			t.Fatalf("Handle() error: %v", err)
		}
		if !strings.Contains(result.Reply, "ya te has postulado") {
			t.Fatalf("reply = %q", result.Reply)
		}
		if result.Transfer != TargetFollowUp {
			t.Fatalf("transfer = %q, want follow-up", result.Transfer)
		}
		if len(state.AppliedJobs) != 1 {
			t.Fatalf("applied twice: %+v", state.AppliedJobs)
		}
	})

	t.Run("posting closed since selection", func(t *testing.T) {
		handler, _, _, _ := newApplicationFixture(&stubJobs{jobs: map[string]*jobindex.Job{"101": closedJob("101", "Vendedor de piso")}})

		result, err := handler.Handle(context.Background(), newTurn(applicationState(), "quiero postularme", ai.IntentApply))
		if err != nil {
			t.Fatalf("Handle() error: %v", err)
		}
		if !strings.Contains(result.Reply, "ya no está disponible") {
			t.Fatalf("reply = %q", result.Reply)
		}
	})

	t.Run("posting gone from index", func(t *testing.T) {
		handler, _, _, _ := newApplicationFixture(&stubJobs{})

		result, err := handler.Handle(context.Background(), newTurn(applicationState(), "quiero postularme", ai.IntentApply))
		if err != nil {
			t.Fatalf("Handle() error: %v", err)
		}
		if !strings.Contains(result.Reply, "ya no está disponible") {
			t.Fatalf("reply = %q", result.Reply)
		}
	})
}

func TestApplicationSelectionRetry(t *testing.T) {
	handler, _, _, _ := newApplicationFixture(&stubJobs{})

	state := applicationState()
	state.AppendInteraction(actionOfferedDates, testNow, map[string]string{
		fieldCount: "2", "date_1": "2026-08-26", "date_2": "2026-08-31",
	})

	result, err := handler.Handle(context.Background(), newTurn(state, "9", ai.IntentUnknown))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if !strings.Contains(result.Reply, "del 1 al 2") {
		t.Fatalf("reply = %q", result.Reply)
	}
	if state.CurrentDayInterview != "" {
		t.Fatalf("CurrentDayInterview = %q, want empty", state.CurrentDayInterview)
	}
}

func TestApplicationRestartsOnNewApplyRequest(t *testing.T) {
	jobs := &stubJobs{jobs: map[string]*jobindex.Job{"101": testJob("101", "Vendedor de piso")}}
	handler, _, _, _ := newApplicationFixture(jobs)

	state := applicationState()
	state.AppendInteraction(actionOfferedDates, testNow, map[string]string{
		fieldCount: "2", "date_1": "2026-08-26", "date_2": "2026-08-31",
	})

	result, err := handler.Handle(context.Background(), newTurn(state, "quiero postularme otra vez", ai.IntentApply))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if last := state.LastInteraction(); last == nil || last.Action != actionOfferedDates {
		t.Fatalf("last interaction = %+v, want a fresh date offer", last)
	}
	if !strings.Contains(result.Reply, "1. Miércoles 26 de agosto") {
		t.Fatalf("reply = %q", result.Reply)
	}
}
