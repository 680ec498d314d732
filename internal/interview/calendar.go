package interview

import "time"

// firstPresidentialYear anchors the six-year transition-of-power cycle.
const firstPresidentialYear = 2024

// IsHoliday reports whether the date is a Mexican federal holiday under
// article 74 of the labor law: New Year, Constitution Day (first Monday of
// February), Benito Juárez Day (third Monday of March), Labor Day,
// Independence Day, Revolution Day (third Monday of November), the
// transition of federal power (October 1 every six years) and Christmas.
func IsHoliday(date time.Time) bool {
	month, day := date.Month(), date.Day()

	switch {
	case month == time.January && day == 1:
		return true
	case month == time.May && day == 1:
		return true
	case month == time.September && day == 16:
		return true
	case month == time.December && day == 25:
		return true
	}

	if date.Weekday() == time.Monday {
		switch month {
		case time.February:
			return day == nthMonday(date.Year(), time.February, 1)
		case time.March:
			return day == nthMonday(date.Year(), time.March, 3)
		case time.November:
			return day == nthMonday(date.Year(), time.November, 3)
		}
	}

	if month == time.October && day == 1 && isPresidentialYear(date.Year()) {
		return true
	}

	return false
}

// nthMonday returns the day of month of the nth Monday.
func nthMonday(year int, month time.Month, n int) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Monday) - int(first.Weekday()) + 7) % 7
	return 1 + offset + (n-1)*7
}

func isPresidentialYear(year int) bool {
	return year >= firstPresidentialYear && (year-firstPresidentialYear)%6 == 0
}
