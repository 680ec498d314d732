package interview

import (
	"testing"
	"time"
)

func TestIsHoliday(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"new year", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"constitution day", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), true},
		{"second monday of february", time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), false},
		{"juarez day", time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), true},
		{"labor day", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{"independence day", time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC), true},
		{"revolution day", time.Date(2026, 11, 16, 0, 0, 0, 0, time.UTC), true},
		{"christmas", time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC), true},
		{"october first in an ordinary year", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), false},
		{"transition of federal power", time.Date(2030, 10, 1, 0, 0, 0, 0, time.UTC), true},
		{"plain tuesday", time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHoliday(tt.date); got != tt.want {
				t.Fatalf("IsHoliday(%s) = %v, want %v", tt.date.Format(DateLayout), got, tt.want)
			}
		})
	}
}
