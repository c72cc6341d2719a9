package models

// Settings represents application-wide settings
type Settings struct {
	Timezone                   string `json:"timezone"`                      // IANA timezone name (e.g. "America/New_York", or "Local" for system timezone)
	NotificationsEnabled       bool   `json:"notifications_enabled"`         // whether reminders are sent at all
	NotificationGracePeriodMin int    `json:"notification_grace_period_min"` // how late a reminder may still be delivered, in minutes
	DefaultSnoozeMin           int    `json:"default_snooze_min"`            // snooze step used when none is given
}
