package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	MinutesPerDay = 24 * 60

	// Time-of-day bucket boundaries, in minutes since midnight
	MorningStartMin   = 5 * 60
	AfternoonStartMin = 12 * 60
	NightStartMin     = 19 * 60

	// WeeklyWindowDays is the rolling window used for weekly progress
	WeeklyWindowDays = 7
)
