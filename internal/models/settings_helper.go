package models

import (
	"fmt"

	"github.com/julianstephens/smartsteps/internal/constants"
)

// DefaultSettings returns the settings a freshly initialized store starts with.
func DefaultSettings() Settings {
	return Settings{
		Timezone:                   constants.DefaultTimezone,
		NotificationsEnabled:       constants.DefaultNotificationsEnabled,
		NotificationGracePeriodMin: constants.DefaultNotificationGracePeriodMin,
		DefaultSnoozeMin:           constants.DefaultSnoozeMin,
	}
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Keys that are missing keep their default value.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingNotificationGracePeriodMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.NotificationGracePeriodMin); err != nil {
				return Settings{}, fmt.Errorf("parsing notification_grace_period_min: %w", err)
			}
		case constants.SettingDefaultSnoozeMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.DefaultSnoozeMin); err != nil {
				return Settings{}, fmt.Errorf("parsing default_snooze_min: %w", err)
			}
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:                   settings.Timezone,
		constants.SettingNotificationsEnabled:       fmt.Sprintf("%v", settings.NotificationsEnabled),
		constants.SettingNotificationGracePeriodMin: fmt.Sprintf("%d", settings.NotificationGracePeriodMin),
		constants.SettingDefaultSnoozeMin:           fmt.Sprintf("%d", settings.DefaultSnoozeMin),
	}
}
