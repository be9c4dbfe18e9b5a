package common

import "time"

// DayLayout is the day-granularity format used by range and stats queries.
const DayLayout = "2006-01-02"

// TimeLayout is the minute-granularity format carried by reading timestamps.
const TimeLayout = "2006-01-02T15:04"

// EndOfDay extends a day string to the end-of-day bound used by every range
// predicate. The literal ":59" suffix is a fixed contract: timestamps on the
// end day finer than minutes would compare after it and be excluded.
func EndOfDay(day string) string {
	return day + "T23:59"
}

// HourOf extracts the two-digit hour-of-day bucket from a timestamp.
func HourOf(ts string) (string, bool) {
	if len(ts) < 13 {
		return "", false
	}
	return ts[11:13], true
}

// IsDay reports whether s is a well-formed YYYY-MM-DD day string.
func IsDay(s string) bool {
	if len(s) != len(DayLayout) {
		return false
	}
	_, err := time.Parse(DayLayout, s)
	return err == nil
}
