package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/models"
)

var clock12Pattern = regexp.MustCompile(`^(0?[1-9]|1[0-2]):([0-5][0-9])\s*([AaPp][Mm])$`)

// GetTodayInTimezone returns today's date string (YYYY-MM-DD) in the specified timezone.
func GetTodayInTimezone(timezone string) (string, error) {
	now, err := NowInTimezone(timezone)
	if err != nil {
		return "", err
	}
	return DateKey(now), nil
}

// GetTodayFromSettings returns today's date string (YYYY-MM-DD) using the timezone from settings.
func GetTodayFromSettings(settings models.Settings) (string, error) {
	return GetTodayInTimezone(settings.Timezone)
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// Parse12hMinutes parses a 12-hour clock string ("8:30 PM", "08:30pm") into
// minutes since midnight. The second return value is false for any other shape.
func Parse12hMinutes(text string) (int, bool) {
	m := clock12Pattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour == 12 {
		hour = 0
	}
	if strings.EqualFold(m[3], "PM") {
		hour += 12
	}
	return hour*60 + minute, true
}

// FormatMinutes renders minutes since midnight as "H:MM AM|PM". Values outside
// a day wrap around, so -30 is "11:30 PM".
func FormatMinutes(minutes int) string {
	hour, minute, meridian := split12h(minutes)
	return fmt.Sprintf("%d:%02d %s", hour, minute, meridian)
}

// NormalizeTimeString returns the canonical zero-padded form ("08:05 PM") of a
// 12-hour clock string, or the default reminder time when it cannot be parsed.
func NormalizeTimeString(text string) string {
	minutes, ok := Parse12hMinutes(text)
	if !ok {
		return constants.DefaultExactTime
	}
	hour, minute, meridian := split12h(minutes)
	return fmt.Sprintf("%02d:%02d %s", hour, minute, meridian)
}

// ValidateTime12h reports whether text is an acceptable 12-hour clock string.
func ValidateTime12h(text string) bool {
	_, ok := Parse12hMinutes(text)
	return ok
}

func split12h(minutes int) (hour, minute int, meridian string) {
	minutes = ((minutes % constants.MinutesPerDay) + constants.MinutesPerDay) % constants.MinutesPerDay
	hour24 := minutes / 60
	minute = minutes % 60
	meridian = "AM"
	if hour24 >= 12 {
		meridian = "PM"
	}
	hour = hour24 % 12
	if hour == 0 {
		hour = 12
	}
	return hour, minute, meridian
}

// MinutesOfDay returns the wall-clock minutes since midnight of t.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// AtMinutes returns the instant on t's calendar day at the given minutes since
// midnight, in t's location.
func AtMinutes(t time.Time, minutes int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), minutes/60, minutes%60, 0, 0, t.Location())
}
