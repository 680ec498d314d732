package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/topmx/top-assistant/internal/ai"
	"github.com/topmx/top-assistant/internal/session"
)

func route(t *testing.T, state *session.State, message string, intent ai.Intent) *Decision {
	t.Helper()

	router := NewRouter(&stubClassifier{intent: intent}, noopLogger())
	decision, err := router.Route(context.Background(), state, message, testNow)
	if err != nil {
		t.Fatalf("Route() error: %v", err)
	}
	return decision
}

func TestRouteGreetingWithoutJob(t *testing.T) {
	state := whatsappState()
	state.AppendInteraction(actionJobInfo, testNow, nil)

	decision := route(t, state, "hola", ai.IntentGreeting)

	if decision.Target != TargetDiscovery {
		t.Fatalf("target = %q, want %q", decision.Target, TargetDiscovery)
	}
	if decision.Reply != msgWelcome {
		t.Fatalf("reply = %q, want welcome", decision.Reply)
	}
	if len(state.InteractionHistory) != 0 {
		t.Fatalf("interaction history not cleared: %d entries", len(state.InteractionHistory))
	}
}

func TestRouteGreetingWithJob(t *testing.T) {
	state := whatsappState()
	state.SetJobContext("47", "Operador de camioneta", "")

	decision := route(t, state, "hola", ai.IntentGreeting)

	if decision.Target != TargetGreeting {
		t.Fatalf("target = %q, want greeting intercept", decision.Target)
	}
	if !strings.Contains(decision.Reply, "Operador de camioneta") {
		t.Fatalf("reply %q does not mention the job title", decision.Reply)
	}
}

func TestRouteJobQuery(t *testing.T) {
	t.Run("with job goes to job-info", func(t *testing.T) {
		state := withJob(whatsappState(), testJob("101", "Vendedor de piso"))

		decision := route(t, state, "¿cuál es el sueldo?", ai.IntentJobQuery)

		if decision.Target != TargetJobInfo {
			t.Fatalf("target = %q, want %q", decision.Target, TargetJobInfo)
		}
	})

	t.Run("without job goes to discovery and clears history", func(t *testing.T) {
		state := whatsappState()
		state.AppendInteraction(actionJobInfo, testNow, nil)

		decision := route(t, state, "busco trabajo", ai.IntentJobQuery)

		if decision.Target != TargetDiscovery {
			t.Fatalf("target = %q, want %q", decision.Target, TargetDiscovery)
		}
		if len(state.InteractionHistory) != 0 {
			t.Fatalf("interaction history not cleared")
		}
	})
}

func TestRouteStoredInterviewDate(t *testing.T) {
	t.Run("upcoming goes to follow-up", func(t *testing.T) {
		state := whatsappState()
		state.CurrentDayInterview = "2026-08-27"

		decision := route(t, state, "vivo en Holanda", ai.IntentUnknown)

		if decision.Target != TargetFollowUp {
			t.Fatalf("target = %q, want %q", decision.Target, TargetFollowUp)
		}
	})

	t.Run("expired without ad goes to discovery", func(t *testing.T) {
		state := whatsappState()
		state.CurrentDayInterview = "2020-01-01"
		state.AppendInteraction(actionSubmitted, testNow, nil)

		decision := route(t, state, "hola?", ai.IntentUnknown)

		if decision.Target != TargetDiscovery {
			t.Fatalf("target = %q, want %q", decision.Target, TargetDiscovery)
		}
		if len(state.InteractionHistory) != 0 {
			t.Fatalf("interaction history not cleared")
		}
	})

	t.Run("expired with ad goes to job-info", func(t *testing.T) {
		state := whatsappState()
		state.SetJobContext("47", "Operador de camioneta", "abc")
		state.CurrentDayInterview = "2020-01-01"

		decision := route(t, state, "sigo interesado", ai.IntentUnknown)

		if decision.Target != TargetJobInfo {
			t.Fatalf("target = %q, want %q", decision.Target, TargetJobInfo)
		}
	})

	t.Run("greeting outranks the stored date", func(t *testing.T) {
		state := whatsappState()
		state.SetJobContext("47", "Operador de camioneta", "")
		state.CurrentDayInterview = "2026-08-27"

		decision := route(t, state, "hola", ai.IntentGreeting)

		if decision.Target != TargetGreeting {
			t.Fatalf("target = %q, want greeting intercept", decision.Target)
		}
	})

	t.Run("unparseable date is recovered and falls through", func(t *testing.T) {
		state := whatsappState()
		state.CurrentDayInterview = "mañana"

		decision := route(t, state, "vivo en Holanda", ai.IntentUnknown)

		if state.CurrentDayInterview != "" {
			t.Fatalf("stored date not cleared: %q", state.CurrentDayInterview)
		}
		if decision.Target != "" || decision.Reply != msgClarify {
			t.Fatalf("decision = {%q, %q}, want clarification", decision.Target, decision.Reply)
		}
	})
}

func TestRouteFAQ(t *testing.T) {
	state := whatsappState()
	state.AppendInteraction(actionOfferedListing, testNow, map[string]string{fieldCount: "2"})

	decision := route(t, state, "¿el servicio es gratis?", ai.IntentFAQ)

	if decision.Target != TargetFAQ {
		t.Fatalf("target = %q, want %q", decision.Target, TargetFAQ)
	}
	if len(state.InteractionHistory) != 1 {
		t.Fatalf("FAQ routing must not touch the interaction trail")
	}
}

func TestRouteApply(t *testing.T) {
	t.Run("already applied answers directly and follows up", func(t *testing.T) {
		state := withContact(whatsappState())
		state.SetJobContext("47", "Operador de camioneta", "")
		if err := state.AppendApplication(session.AppliedJob{ID: "47", Title: "Operador de camioneta", AppliedAt: "2026-08-20 10:00:00"}); err != nil {
			t.Fatalf("AppendApplication() error: %v", err)
		}

		decision := route(t, state, "quiero postularme", ai.IntentApply)

		if decision.Target != TargetFollowUp {
			t.Fatalf("target = %q, want %q", decision.Target, TargetFollowUp)
		}
		if !strings.Contains(decision.Reply, "ya te has postulado") {
			t.Fatalf("reply %q lacks the already-applied notice", decision.Reply)
		}
		if len(state.AppliedJobs) != 1 {
			t.Fatalf("applied_jobs grew to %d entries", len(state.AppliedJobs))
		}
	})

	t.Run("incomplete contact diverts to collection", func(t *testing.T) {
		state := whatsappState()
		state.PhoneNumber = ""
		state.UserName = "Ana"
		state.SetJobContext("47", "Operador de camioneta", "")

		decision := route(t, state, "quiero postularme", ai.IntentApply)

		if decision.Target != TargetContact {
			t.Fatalf("target = %q, want %q", decision.Target, TargetContact)
		}
	})

	t.Run("complete contact goes to application", func(t *testing.T) {
		state := withContact(whatsappState())
		state.SetJobContext("47", "Operador de camioneta", "")

		decision := route(t, state, "quiero postularme", ai.IntentApply)

		if decision.Target != TargetApplication {
			t.Fatalf("target = %q, want %q", decision.Target, TargetApplication)
		}
	})
}

func TestRouteClarification(t *testing.T) {
	decision := route(t, whatsappState(), "vivo en Holanda", ai.IntentUnknown)

	if decision.Target != "" {
		t.Fatalf("target = %q, want none", decision.Target)
	}
	if decision.Reply != msgClarify {
		t.Fatalf("reply = %q, want clarification", decision.Reply)
	}
}

func TestRouteContinuation(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		fields  map[string]string
		message string
		intent  ai.Intent
		want    Target
	}{
		{
			name:    "pending name question",
			action:  actionAskedName,
			message: "Ana",
			intent:  ai.IntentUnknown,
			want:    TargetContact,
		},
		{
			name:    "pending phone question with numeric answer",
			action:  actionAskedPhone,
			message: "5512345678",
			intent:  ai.IntentJobQuery,
			want:    TargetContact,
		},
		{
			name:    "pending date offer",
			action:  actionOfferedDates,
			fields:  map[string]string{fieldCount: "2", "date_1": "2026-08-26", "date_2": "2026-08-31"},
			message: "1",
			intent:  ai.IntentJobQuery,
			want:    TargetApplication,
		},
		{
			name:    "pending time offer",
			action:  actionOfferedTimes,
			fields:  map[string]string{fieldCount: "2"},
			message: "2",
			intent:  ai.IntentUnknown,
			want:    TargetApplication,
		},
		{
			name:    "listing answered with a number",
			action:  actionOfferedListing,
			fields:  map[string]string{fieldCount: "3"},
			message: "2",
			intent:  ai.IntentJobQuery,
			want:    TargetDiscovery,
		},
		{
			name:    "listing answered with more",
			action:  actionOfferedListing,
			fields:  map[string]string{fieldCount: "3"},
			message: "más",
			intent:  ai.IntentUnknown,
			want:    TargetDiscovery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := whatsappState()
			state.AppendInteraction(tt.action, testNow, tt.fields)

			decision := route(t, state, tt.message, tt.intent)

			if decision.Target != tt.want {
				t.Fatalf("target = %q, want %q", decision.Target, tt.want)
			}
		})
	}
}

func TestRouteListingQuestionFallsThrough(t *testing.T) {
	// A non-numeric question during a listing is not a continuation; the
	// ordinary cases decide.
	state := whatsappState()
	state.AppendInteraction(actionOfferedListing, testNow, map[string]string{fieldCount: "3"})

	decision := route(t, state, "¿es gratis?", ai.IntentFAQ)

	if decision.Target != TargetFAQ {
		t.Fatalf("target = %q, want %q", decision.Target, TargetFAQ)
	}
}

func TestRouteClassifierError(t *testing.T) {
	router := NewRouter(&stubClassifier{err: errors.New("quota exhausted")}, noopLogger())

	if _, err := router.Route(context.Background(), whatsappState(), "hola", testNow); err == nil {
		t.Fatal("expected a classification error")
	}
}
