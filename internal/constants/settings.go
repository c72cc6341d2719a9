package constants

const (
	// General Settings
	SettingTimezone                   = "timezone"
	SettingNotificationsEnabled       = "notifications_enabled"
	SettingNotificationGracePeriodMin = "notification_grace_period_min"
	SettingDefaultSnoozeMin           = "default_snooze_min"

	// Default Settings Values
	DefaultTimezone                   = "Local" // Use system local timezone by default
	DefaultNotificationsEnabled       = true
	DefaultNotificationGracePeriodMin = 1
	DefaultSnoozeMin                  = 10

	// Habit defaults applied during normalization
	DefaultExactTime     = "08:00 AM"
	DefaultIcon          = "✅"
	DefaultFrequency     = "Diario"
	DefaultOffsetMinutes = 60
	MinDailyRepeats      = 1
	MaxDailyRepeats      = 20
	MinOffsetMinutes     = 1
	MaxOffsetMinutes     = MinutesPerDay

	// SnapshotVersion is the persisted state layout version. Version 2 added
	// dailyRepeats/startDate/endDate/scheduleType on top of a bare time string.
	SnapshotVersion = 2
)
