package utils

import (
	"regexp"
	"time"

	"github.com/julianstephens/smartsteps/internal/constants"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DateKey returns the YYYY-MM-DD key of t's calendar day in t's location.
func DateKey(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ValidateDate reports whether text is a real calendar date in strict
// YYYY-MM-DD form. "2024-02-30" is rejected, "2024-02-29" is not.
func ValidateDate(text string) bool {
	if !datePattern.MatchString(text) {
		return false
	}
	t, err := time.Parse(constants.DateFormat, text)
	if err != nil {
		return false
	}
	return t.Format(constants.DateFormat) == text
}

// CompareDates orders two date keys, returning -1, 0 or 1. If either key is
// invalid the dates are reported as equal.
func CompareDates(a, b string) int {
	if !ValidateDate(a) || !ValidateDate(b) {
		return 0
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// AddDays shifts a date key by n calendar days. Invalid keys are returned unchanged.
func AddDays(key string, n int) string {
	t, err := time.Parse(constants.DateFormat, key)
	if err != nil {
		return key
	}
	return t.AddDate(0, 0, n).Format(constants.DateFormat)
}

// LastNDaysKeys returns the keys of the n calendar days ending at now's date,
// today first.
func LastNDaysKeys(now time.Time, n int) []string {
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		day := time.Date(now.Year(), now.Month(), now.Day()-i, 12, 0, 0, 0, now.Location())
		keys = append(keys, DateKey(day))
	}
	return keys
}
