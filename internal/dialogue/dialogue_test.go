package dialogue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/topmx/top-assistant/internal/ai"
	"github.com/topmx/top-assistant/internal/ats"
	"github.com/topmx/top-assistant/internal/jobindex"
	"github.com/topmx/top-assistant/internal/session"
)

// testNow is a Tuesday.
var testNow = time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)

const testUserID = "525512345678"

type stubClassifier struct {
	intent ai.Intent
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, message string) (*ai.Classification, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ai.Classification{Intent: s.intent, Confidence: 0.9}, nil
}

type stubJobs struct {
	jobs    map[string]*jobindex.Job
	byAdID  map[string]*jobindex.Job
	pages   map[int]*jobindex.Page
	getErr  error
	listErr error

	getCalls  []string
	listCalls []int
}

func (s *stubJobs) GetJobByID(ctx context.Context, id string) (*jobindex.Job, error) {
	s.getCalls = append(s.getCalls, id)
	if s.getErr != nil {
		return nil, s.getErr
	}
	job, ok := s.jobs[id]
	if !ok {
		return nil, jobindex.ErrNotFound
	}
	return job, nil
}

func (s *stubJobs) GetJobByAdID(ctx context.Context, adID string) (*jobindex.Job, error) {
	job, ok := s.byAdID[adID]
	if !ok {
		return nil, jobindex.ErrNotFound
	}
	return job, nil
}

func (s *stubJobs) ListAvailable(ctx context.Context, offset, limit int) (*jobindex.Page, error) {
	s.listCalls = append(s.listCalls, offset)
	if s.listErr != nil {
		return nil, s.listErr
	}
	page, ok := s.pages[offset]
	if !ok {
		return &jobindex.Page{Jobs: &jobindex.Jobs{}}, nil
	}
	return page, nil
}

type stubSink struct {
	err         error
	submissions []*ats.Submission
}

func (s *stubSink) Submit(ctx context.Context, sub *ats.Submission) error {
	s.submissions = append(s.submissions, sub)
	return s.err
}

type stubNotifier struct {
	err      error
	messages []string
}

func (s *stubNotifier) Notify(ctx context.Context, message string) error {
	s.messages = append(s.messages, message)
	return s.err
}

func testJob(id, title string) *jobindex.Job {
	raw := map[string]string{
		"id_vacante":                            id,
		"nombre_de_la_vacante":                  title,
		"empresa":                               "Tiendas del Valle",
		"sueldo":                                "$9,500 mensuales",
		"horario":                               "Lunes a sábado de 9:00 a 18:00",
		"ubicacion":                             "Ecatepec, Estado de México",
		"requisitos":                            "Secundaria concluida",
		"dias_para_atender_entrevistas":         "Lunes, Martes y Miércoles",
		"horarios_disponibles_para_entrevistar": "10:00 - 12:00, 16:00 - 18:00",
		"tipo_de_perfil":                        "Operativo",
		"perfil_de_puesto":                      "Ventas",
		"departamento":                          "Comercial",
		"corporative_id":                        "9",
		"business_id":                           "4",
		"client_id":                             "77",
		"Estatus":                               "Abierta",
		"Cantidad_de_vacantes":                  "2",
	}

	return &jobindex.Job{
		ID:             id,
		Title:          title,
		Company:        "Tiendas del Valle",
		Department:     "Comercial",
		Salary:         "$9,500 mensuales",
		Location:       "Ecatepec, Estado de México",
		InterviewDays:  "Lunes, Martes y Miércoles",
		InterviewHours: "10:00 - 12:00, 16:00 - 18:00",
		ProfileType:    "Operativo",
		Profile:        "Ventas",
		CorporateID:    "9",
		BusinessID:     "4",
		ClientID:       "77",
		Status:         "Abierta",
		OpenPositions:  "2",
		Raw:            raw,
	}
}

func closedJob(id, title string) *jobindex.Job {
	job := testJob(id, title)
	job.Status = "Cerrada"
	job.Raw["Estatus"] = "Cerrada"
	return job
}

func whatsappState() *session.State {
	return session.NewState(session.ChannelWhatsApp, testUserID)
}

func withContact(state *session.State) *session.State {
	state.UserName = "Ana"
	state.LastName = "García"
	state.ContactPhoneNumber = "5512345678"
	return state
}

func withJob(state *session.State, job *jobindex.Job) *session.State {
	state.SetJobContext(job.ID, job.Title, "")
	cacheJobInterest(state, job)
	return state
}

func newTurn(state *session.State, message string, intent ai.Intent) *Turn {
	return &Turn{
		UserID:         testUserID,
		State:          state,
		Message:        message,
		Classification: &ai.Classification{Intent: intent, Confidence: 0.9},
		Now:            testNow,
	}
}

func noopLogger() *zap.Logger { return zap.NewNop() }
