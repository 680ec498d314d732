package dialogue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/topmx/top-assistant/internal/jobindex"
	"github.com/topmx/top-assistant/internal/session"
)

// cacheJobInterest rebuilds the denormalized job-detail cache from a fresh
// lookup. The cache always describes current_job_id; it is never patched
// field by field.
func cacheJobInterest(state *session.State, job *jobindex.Job) {
	interest := make(map[string]string, len(job.Raw)+2)
	for key, value := range job.Raw {
		interest[key] = value
	}
	interest["id"] = job.ID
	interest["title"] = job.Title
	state.CurrentJobInterest = interest
}

// summarizeJob renders the posting lines shown after a selection or a
// generic detail question. Empty fields are left out.
func summarizeJob(job *jobindex.Job) string {
	lines := []string{fmt.Sprintf("Vacante: %s", job.Title)}

	add := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			lines = append(lines, label+": "+value)
		}
	}

	add("Empresa", job.Company)
	add("Sueldo", firstField(job, "sueldo", "salario", "Sueldo_Neto_Min"))
	add("Horario", firstField(job, "horario", "horario_laboral"))
	add("Ubicación", firstField(job, "ubicacion", "municipio", "direccion"))
	add("Requisitos", firstField(job, "requisitos", "experiencia"))

	return strings.Join(lines, "\n")
}

// firstField returns the first non-empty candidate from the posting's raw
// document. Index documents are not uniform across clients; detail fields
// travel under more than one name.
func firstField(job *jobindex.Job, names ...string) string {
	for _, name := range names {
		if value := strings.TrimSpace(job.Raw[name]); value != "" {
			return value
		}
	}
	return ""
}

// numberedLines renders "1. item" style option lists.
func numberedLines(items []string) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, item))
	}
	return strings.Join(lines, "\n")
}

// selectionFromFields reads a numbered reply against an offer recorded in
// the interaction trail and returns the value stored under prefix_n.
func selectionFromFields(message string, fields map[string]string, prefix string) (string, bool) {
	count, err := strconv.Atoi(fields[fieldCount])
	if err != nil || count <= 0 {
		return "", false
	}

	n, err := strconv.Atoi(strings.TrimSpace(message))
	if err != nil || n < 1 || n > count {
		return "", false
	}

	return fields[fmt.Sprintf("%s_%d", prefix, n)], true
}

func offerFieldCount(fields map[string]string) int {
	count, err := strconv.Atoi(fields[fieldCount])
	if err != nil {
		return 0
	}
	return count
}
