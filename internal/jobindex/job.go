package jobindex

import (
	"errors"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ErrNotFound is returned when the index has no posting for the requested
// id or ad reference.
var ErrNotFound = errors.New("posting not found in index")

const (
	statusClosed   = "Cerrada"
	stateCancelled = "Cancelada"

	expiryLayout     = "2006-01-02"
	expiryLongLayout = "2006-01-02 15:04:05"
)

// Job is one posting from the index. Raw keeps every string field of the
// index document as delivered, for answering free-form questions about the
// posting; the named fields are the ones the conversation logic relies on.
type Job struct {
	ID             string `mapstructure:"id_vacante"`
	Title          string `mapstructure:"nombre_de_la_vacante"`
	Company        string `mapstructure:"empresa"`
	Department     string `mapstructure:"departamento"`
	Area           string `mapstructure:"area"`
	Salary         string `mapstructure:"sueldo"`
	Location       string `mapstructure:"ubicacion"`
	InterviewDays  string `mapstructure:"dias_para_atender_entrevistas"`
	InterviewHours string `mapstructure:"horarios_disponibles_para_entrevistar"`
	ProfileType    string `mapstructure:"tipo_de_perfil"`
	Profile        string `mapstructure:"perfil_de_puesto"`
	CorporateID    string `mapstructure:"corporative_id"`
	BusinessID     string `mapstructure:"business_id"`
	ClientID       string `mapstructure:"client_id"`
	Status         string `mapstructure:"Estatus"`
	State          string `mapstructure:"Estado"`
	OpenPositions  string `mapstructure:"Cantidad_de_vacantes"`
	ExpiresAt      string `mapstructure:"fecha_expiracion"`

	Raw map[string]string `mapstructure:"-"`
}

// decodeJob builds a Job from an index document. Only string-valued fields
// are kept; the index stores everything the conversation needs as strings
// and anything else is service-internal.
func decodeJob(fields map[string]interface{}) (*Job, error) {
	raw := make(map[string]string, len(fields))
	for key, value := range fields {
		if s, ok := value.(string); ok {
			raw[key] = s
		}
	}

	var job Job
	if err := mapstructure.Decode(raw, &job); err != nil {
		return nil, err
	}
	job.Raw = raw

	return &job, nil
}

// IsAvailable reports whether the posting still accepts applications at the
// given time. Closed or cancelled postings, postings with no openings left
// and expired postings are out.
func (j *Job) IsAvailable(now time.Time) bool {
	if j.Status == statusClosed {
		return false
	}
	if j.State == stateCancelled {
		return false
	}
	if j.OpenPositions == "0" {
		return false
	}

	if expiry, ok := parseExpiry(j.ExpiresAt); ok {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if expiry.Before(today) {
			return false
		}
	}

	return true
}

func parseExpiry(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{expiryLayout, expiryLongLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type Jobs struct {
	Items []*Job
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *Job {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

// Page is one listing batch together with its paging cursor.
type Page struct {
	Jobs       *Jobs
	Total      int
	Offset     int
	Limit      int
	HasMore    bool
	NextOffset int
}
