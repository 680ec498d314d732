package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/topmx/top-assistant/internal/ai"
	"github.com/topmx/top-assistant/internal/ats"
	"github.com/topmx/top-assistant/internal/interview"
	"github.com/topmx/top-assistant/internal/jobindex"
	"github.com/topmx/top-assistant/internal/session"
)

// ApplicationSink receives a confirmed candidacy.
type ApplicationSink interface {
	Submit(ctx context.Context, sub *ats.Submission) error
}

// ApplicationHandler walks a candidate through interview scheduling and
// records the application. The flow is date offer, time offer, submission;
// each step is resumable through the interaction trail.
//
// Sink and notifier failures never roll back a recorded application. The
// candidacy forward and the staff ping are delivery concerns; the applied
// entry in state is the system of record.
type ApplicationHandler struct {
	jobs   JobLookup
	sink   ApplicationSink
	staff  Notifier
	alerts Notifier
	log    *zap.Logger
}

func NewApplicationHandler(jobs JobLookup, sink ApplicationSink, staff, alerts Notifier, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{jobs: jobs, sink: sink, staff: staff, alerts: alerts, log: log}
}

func (h *ApplicationHandler) Target() Target { return TargetApplication }

func (h *ApplicationHandler) Handle(ctx context.Context, turn *Turn) (*Result, error) {
	if last := turn.State.LastInteraction(); last != nil {
		switch last.Action {
		case actionOfferedDates:
			return h.pickDate(ctx, turn, last.Fields)
		case actionOfferedTimes:
			return h.pickTime(ctx, turn, last.Fields)
		}
	}
	return h.start(ctx, turn)
}

// start re-checks every application precondition against a fresh lookup and
// offers interview dates.
func (h *ApplicationHandler) start(ctx context.Context, turn *Turn) (*Result, error) {
	state := turn.State

	if !state.HasJob() {
		return &Result{Reply: msgNoJobSelected}, nil
	}
	if state.HasApplied(state.CurrentJobID) {
		return &Result{
			Reply:    fmt.Sprintf(msgAlreadyApplied, state.CurrentJobTitle),
			Transfer: TargetFollowUp,
		}, nil
	}

	job, err := h.jobs.GetJobByID(ctx, state.CurrentJobID)
	if errors.Is(err, jobindex.ErrNotFound) {
		return &Result{Reply: fmt.Sprintf(msgJobUnavailable, state.CurrentJobTitle)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up posting %s: %w", state.CurrentJobID, err)
	}
	if !job.IsAvailable(turn.Now) {
		return &Result{Reply: fmt.Sprintf(msgJobUnavailable, job.Title)}, nil
	}

	cacheJobInterest(state, job)

	options, err := interview.DateOptions(job.InterviewDays, turn.Now)
	if err != nil || len(options) == 0 {
		h.log.Warn("no interview dates for posting",
			append(turn.logFields(),
				zap.String("job_id", job.ID),
				zap.String("interview_days", job.InterviewDays),
				zap.Error(err))...)
		return &Result{Reply: msgNoInterviewDays}, nil
	}

	// A restarted flow drops any half-picked schedule.
	state.CurrentDayInterview = ""
	state.CurrentTimeInterview = ""

	items := make([]string, 0, len(options))
	fields := map[string]string{fieldCount: strconv.Itoa(len(options))}
	for i, opt := range options {
		items = append(items, opt.Display)
		fields[fmt.Sprintf("date_%d", i+1)] = opt.Date.Format(interview.DateLayout)
	}
	state.AppendInteraction(actionOfferedDates, turn.Now, fields)

	reply := fmt.Sprintf(msgOfferDates, state.CurrentJobTitle) + "\n\n" +
		numberedLines(items) + "\n\n" + msgDatePrompt

	return &Result{Reply: reply}, nil
}

func (h *ApplicationHandler) pickDate(ctx context.Context, turn *Turn, fields map[string]string) (*Result, error) {
	date, ok := selectionFromFields(turn.Message, fields, "date")
	if !ok {
		if wantsRestart(turn.Classification) {
			return h.start(ctx, turn)
		}
		return &Result{Reply: fmt.Sprintf(msgSelectionRetry, offerFieldCount(fields))}, nil
	}

	state := turn.State
	state.CurrentDayInterview = date

	slots := interview.TimeOptions(state.CurrentJobInterest["horarios_disponibles_para_entrevistar"])
	if len(slots) == 0 {
		// Posting offers no explicit slots; schedule date-only.
		return h.submit(ctx, turn)
	}

	timeFields := map[string]string{fieldCount: strconv.Itoa(len(slots))}
	for i, slot := range slots {
		timeFields[fmt.Sprintf("time_%d", i+1)] = slot
	}
	state.AppendInteraction(actionOfferedTimes, turn.Now, timeFields)

	display := date
	if parsed, err := interview.ParseStoredDate(date); err == nil {
		display = interview.FormatDate(parsed)
	}

	reply := fmt.Sprintf(msgOfferTimes, display) + "\n\n" +
		numberedLines(slots) + "\n\n" + msgTimePrompt

	return &Result{Reply: reply}, nil
}

func (h *ApplicationHandler) pickTime(ctx context.Context, turn *Turn, fields map[string]string) (*Result, error) {
	slot, ok := selectionFromFields(turn.Message, fields, "time")
	if !ok {
		if wantsRestart(turn.Classification) {
			return h.start(ctx, turn)
		}
		return &Result{Reply: fmt.Sprintf(msgSelectionRetry, offerFieldCount(fields))}, nil
	}

	turn.State.CurrentTimeInterview = slot
	return h.submit(ctx, turn)
}

// submit records the application, forwards the candidacy and pings staff.
func (h *ApplicationHandler) submit(ctx context.Context, turn *Turn) (*Result, error) {
	state := turn.State
	interest := state.CurrentJobInterest

	displayDate := state.CurrentDayInterview
	longDate := state.CurrentDayInterview
	if parsed, err := interview.ParseStoredDate(state.CurrentDayInterview); err == nil {
		displayDate = interview.FormatDate(parsed)
		longDate = interview.FormatDateLong(parsed)
	}
	startTime := slotStart(state.CurrentTimeInterview)

	entry := session.AppliedJob{
		ID:            state.CurrentJobID,
		Title:         state.CurrentJobTitle,
		Company:       interest["empresa"],
		AppliedAt:     turn.Now.Format(session.AppliedAtLayout),
		InterviewDate: state.CurrentDayInterview,
		InterviewTime: state.CurrentTimeInterview,
	}
	if err := state.AppendApplication(entry); err != nil {
		if errors.Is(err, session.ErrDuplicateApplication) {
			return &Result{
				Reply:    fmt.Sprintf(msgAlreadyApplied, state.CurrentJobTitle),
				Transfer: TargetFollowUp,
			}, nil
		}
		return nil, err
	}

	state.AppendInteraction(actionSubmitted, turn.Now, map[string]string{
		"job_id":         state.CurrentJobID,
		"interview_date": state.CurrentDayInterview,
		"interview_time": state.CurrentTimeInterview,
	})

	notes := fmt.Sprintf("Cita programada para: %s a las %s", longDate, startTime)
	if startTime == "" {
		notes = fmt.Sprintf("Cita programada para: %s", longDate)
	}

	sub := &ats.Submission{
		FirstName:   firstWord(state.UserName),
		LastName:    state.LastName,
		Phone:       ContactPhone(state),
		Notes:       notes,
		ProfileType: interest["tipo_de_perfil"],
		Profile:     interest["perfil_de_puesto"],
		Department:  interest["departamento"],
		CorporateID: interest["corporative_id"],
		BusinessID:  interest["business_id"],
		ClientID:    interest["client_id"],
	}
	if err := h.sink.Submit(ctx, sub); err != nil {
		h.log.Error("candidacy forward failed",
			append(turn.logFields(),
				zap.String("job_id", state.CurrentJobID),
				zap.Error(err))...)
		h.alert(ctx, fmt.Sprintf("Postulación registrada pero no enviada al ATS.\nVacante: %s (ID %s)\nUsuario: %s\nError: %v",
			state.CurrentJobTitle, state.CurrentJobID, turn.UserID, err))
	}

	h.notifyStaff(ctx, turn, longDate, startTime)

	h.log.Info("application recorded",
		append(turn.logFields(),
			zap.String("job_id", state.CurrentJobID),
			zap.String("interview_date", state.CurrentDayInterview),
			zap.String("interview_time", state.CurrentTimeInterview))...)

	if startTime == "" {
		return &Result{Reply: fmt.Sprintf(msgApplicationDoneNoTime, state.CurrentJobTitle, displayDate)}, nil
	}
	return &Result{Reply: fmt.Sprintf(msgApplicationDone, state.CurrentJobTitle, displayDate, startTime)}, nil
}

func (h *ApplicationHandler) notifyStaff(ctx context.Context, turn *Turn, longDate, startTime string) {
	if h.staff == nil {
		return
	}

	state := turn.State
	name := strings.TrimSpace(state.UserName + " " + state.LastName)

	message := fmt.Sprintf(
		"🔔 *NUEVA POSTULACIÓN*\n\n"+
			"*Información del candidato:*\nNombre: %s\nTeléfono: %s\nCanal: %s\n\n"+
			"*Información de la vacante:*\nPuesto: %s\nEmpresa: %s\nID de vacante: %s\n\n"+
			"*Entrevista programada:*\nFecha: %s\nHora: %s\n\n"+
			"*Registrado:* %s",
		name, ContactPhone(state), state.Channel,
		state.CurrentJobTitle, state.CurrentJobInterest["empresa"], state.CurrentJobID,
		longDate, startTime,
		turn.Now.Format(session.AppliedAtLayout),
	)

	if err := h.staff.Notify(ctx, message); err != nil {
		h.log.Warn("staff notification failed",
			append(turn.logFields(), zap.Error(err))...)
		h.alert(ctx, fmt.Sprintf("No se pudo notificar al personal la postulación a %s (ID %s): %v",
			state.CurrentJobTitle, state.CurrentJobID, err))
	}
}

func (h *ApplicationHandler) alert(ctx context.Context, message string) {
	if h.alerts == nil {
		return
	}
	if err := h.alerts.Notify(ctx, message); err != nil {
		h.log.Warn("operations alert failed", zap.Error(err))
	}
}

// wantsRestart reports whether an off-option answer is another application
// request, which restarts the offer instead of scolding the candidate.
func wantsRestart(c *ai.Classification) bool {
	return c != nil && c.Intent == ai.IntentApply
}

// slotStart keeps the opening time of a "10:00 - 12:00" slot.
func slotStart(slot string) string {
	start, _, _ := strings.Cut(slot, "-")
	return strings.TrimSpace(start)
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
