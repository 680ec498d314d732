// Package interview turns a posting's scheduling fields into concrete
// offerable interview slots: calendar dates within the booking window that
// fall on the posting's interview weekdays and are not federal holidays.
package interview

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire layout for stored interview dates.
const DateLayout = "2006-01-02"

// bookingHorizonDays is how far ahead dates are offered, starting tomorrow.
const bookingHorizonDays = 14

var (
	// ErrInvalidDate is returned when a stored interview date does not
	// parse as DateLayout.
	ErrInvalidDate = errors.New("invalid interview date format")

	// ErrNoInterviewDays is returned when a posting's interview-days
	// field yields no recognizable weekday.
	ErrNoInterviewDays = errors.New("no interview weekdays in posting")
)

var weekdayNames = map[string]time.Weekday{
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"domingo":   time.Sunday,
}

var dayNames = map[time.Weekday]string{
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miércoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var accentReplacer = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u")

// Option is one offerable interview date.
type Option struct {
	Date    time.Time
	Display string
}

// ParseDays parses a posting's interview-days field, a list of Spanish
// weekday names separated by commas or "y". Matching ignores case and
// accents; unrecognized tokens are skipped. "Todos los días" reads as
// Monday through Friday.
func ParseDays(field string) ([]time.Weekday, error) {
	if strings.Contains(accentReplacer.Replace(strings.ToLower(field)), "todos los dias") {
		return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, nil
	}

	seen := map[time.Weekday]bool{}
	var days []time.Weekday

	for _, part := range strings.Split(field, ",") {
		for _, token := range strings.Split(part, " y ") {
			name := accentReplacer.Replace(strings.ToLower(strings.TrimSpace(token)))
			day, ok := weekdayNames[name]
			if !ok || seen[day] {
				continue
			}
			seen[day] = true
			days = append(days, day)
		}
	}

	if len(days) == 0 {
		return nil, ErrNoInterviewDays
	}
	return days, nil
}

// DateOptions lists the dates within the booking window that fall on one of
// the posting's interview weekdays. The window starts tomorrow; federal
// holidays are never offered.
func DateOptions(daysField string, now time.Time) ([]Option, error) {
	days, err := ParseDays(daysField)
	if err != nil {
		return nil, err
	}

	allowed := map[time.Weekday]bool{}
	for _, day := range days {
		allowed[day] = true
	}

	var options []Option
	for i := 1; i <= bookingHorizonDays; i++ {
		date := now.AddDate(0, 0, i)
		if !allowed[date.Weekday()] || IsHoliday(date) {
			continue
		}
		options = append(options, Option{
			Date:    time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
			Display: FormatDate(date),
		})
	}

	return options, nil
}

// TimeOptions splits a posting's interview-hours field into offerable time
// slots.
func TimeOptions(hoursField string) []string {
	var slots []string
	for _, part := range strings.Split(hoursField, ",") {
		if slot := strings.TrimSpace(part); slot != "" {
			slots = append(slots, slot)
		}
	}
	return slots
}

// ParseStoredDate parses a date stored in session state. Anything that does
// not parse as DateLayout reports ErrInvalidDate so callers can recover the
// field instead of failing the turn.
func ParseStoredDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// FormatDate renders a date the way it is offered to the user, for example
// "Jueves 27 de agosto".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s %d de %s", dayNames[t.Weekday()], t.Day(), monthNames[t.Month()-1])
}

// FormatDateLong renders a date with the year spelled out, the form used in
// staff notifications: "27 de agosto de 2026 (Jueves)".
func FormatDateLong(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d (%s)", t.Day(), monthNames[t.Month()-1], t.Year(), dayNames[t.Weekday()])
}
