package calendar

import "time"

// mexicoHolidayList holds Mexican banking holidays (Banxico closing days).
// Weekends are handled separately.
var mexicoHolidayList = []string{
	// 2024
	"2024-01-01", "2024-02-05", "2024-03-18", "2024-03-28", "2024-03-29",
	"2024-05-01", "2024-09-16", "2024-11-18", "2024-12-12", "2024-12-25",
	// 2025
	"2025-01-01", "2025-02-03", "2025-03-17", "2025-04-17", "2025-04-18",
	"2025-05-01", "2025-09-16", "2025-11-17", "2025-12-12", "2025-12-25",
	// 2026
	"2026-01-01", "2026-02-02", "2026-03-16", "2026-04-02", "2026-04-03",
	"2026-05-01", "2026-09-16", "2026-11-16", "2026-12-12", "2026-12-25",
}

var mexicoHolidays map[string]struct{}

func init() {
	mexicoHolidays = make(map[string]struct{}, len(mexicoHolidayList))
	for _, h := range mexicoHolidayList {
		mexicoHolidays[h] = struct{}{}
	}
}

func isHoliday(t time.Time) bool {
	_, ok := mexicoHolidays[t.Format("2006-01-02")]
	return ok
}

// IsBusinessDay checks weekends and the Mexican banking holiday set.
func IsBusinessDay(t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(t)
}

// PreviousBusinessDay returns the closest business day strictly before t.
func PreviousBusinessDay(t time.Time) time.Time {
	t = t.AddDate(0, 0, -1)
	for !IsBusinessDay(t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(t) {
			n -= step
		}
	}
	return t
}
