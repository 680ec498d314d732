package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/topmx/top-assistant/internal/ai"
	"github.com/topmx/top-assistant/internal/jobindex"
)

// JobInfoHandler answers questions about the active job. Every turn refreshes
// the posting from the index before answering; the cached interest map is a
// fallback, not a source of truth.
type JobInfoHandler struct {
	jobs JobLookup
	log  *zap.Logger
}

func NewJobInfoHandler(jobs JobLookup, log *zap.Logger) *JobInfoHandler {
	return &JobInfoHandler{jobs: jobs, log: log}
}

func (h *JobInfoHandler) Target() Target { return TargetJobInfo }

func (h *JobInfoHandler) Handle(ctx context.Context, turn *Turn) (*Result, error) {
	state := turn.State
	if !state.HasJob() {
		return &Result{Reply: msgNoJobSelected}, nil
	}

	job, err := h.jobs.GetJobByID(ctx, state.CurrentJobID)
	if errors.Is(err, jobindex.ErrNotFound) {
		return &Result{Reply: fmt.Sprintf(msgJobUnavailable, state.CurrentJobTitle)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up posting %s: %w", state.CurrentJobID, err)
	}

	cacheJobInterest(state, job)

	if !job.IsAvailable(turn.Now) {
		return &Result{Reply: fmt.Sprintf(msgJobUnavailable, job.Title)}, nil
	}

	answer := h.answer(job, turn.Message)
	state.AppendInteraction(actionJobInfo, turn.Now, map[string]string{"job_id": job.ID})

	h.log.Debug("answered job question",
		append(turn.logFields(), zap.String("job_id", job.ID))...)

	return &Result{Reply: answer + "\n\n" + msgJobInfoClose}, nil
}

// answer picks the posting field the question is about. Unrecognized
// questions get the full summary rather than a refusal.
func (h *JobInfoHandler) answer(job *jobindex.Job, message string) string {
	folded := ai.Fold(message)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(folded, w) {
				return true
			}
		}
		return false
	}

	field := func(label, value string) string {
		value = strings.TrimSpace(value)
		if value == "" {
			return fmt.Sprintf("No tengo ese dato registrado para la vacante %s.", job.Title)
		}
		return fmt.Sprintf("%s de la vacante %s: %s.", label, job.Title, value)
	}

	switch {
	case has("sueldo", "salario", "pagan", "gano", "sueldos"):
		return field("Sueldo", firstField(job, "sueldo", "salario", "Sueldo_Neto_Min"))
	case has("horario", "turno", "jornada", "hora entra", "hora sale"):
		return field("Horario", firstField(job, "horario", "horario_laboral"))
	case has("ubicacion", "donde", "direccion", "municipio", "zona", "queda"):
		return field("Ubicación", firstField(job, "ubicacion", "municipio", "direccion"))
	case has("requisito", "experiencia", "piden", "necesito", "estudios"):
		return field("Requisitos", firstField(job, "requisitos", "experiencia"))
	case has("funciones", "actividades", "hacer", "puesto"):
		return field("Funciones", firstField(job, "funciones", "actividades", "descripcion"))
	case has("empresa", "compania", "quien contrata"):
		return field("Empresa", job.Company)
	}

	return summarizeJob(job)
}
