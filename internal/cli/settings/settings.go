package settings

import (
	"fmt"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone             *string `help:"IANA timezone used to decide what 'today' is, or 'Local'."`
	NotificationsEnabled *bool   `help:"Enable or disable reminders."`
	GracePeriod          *int    `help:"Minutes a missed reminder is still delivered."`
	SnoozeMin            *int    `help:"Default minutes for 'habit snooze'."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  Timezone:              %s\n", settings.Timezone)
		ctx.Printf("  Default Snooze:        %d min\n", settings.DefaultSnoozeMin)
		ctx.Println("\nNotification Settings:")
		ctx.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
		ctx.Printf("  Grace Period:          %d min\n", settings.NotificationGracePeriodMin)
		return nil
	}

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("unknown timezone: %s", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.GracePeriod != nil {
		if *c.GracePeriod < 1 {
			return fmt.Errorf("grace period must be at least 1 minute")
		}
		settings.NotificationGracePeriodMin = *c.GracePeriod
		updated = true
	}
	if c.SnoozeMin != nil {
		if *c.SnoozeMin < 1 || *c.SnoozeMin > constants.MinutesPerDay {
			return fmt.Errorf("snooze must be between 1 and %d minutes", constants.MinutesPerDay)
		}
		settings.DefaultSnoozeMin = *c.SnoozeMin
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		ctx.Println("Settings updated successfully.")
	} else {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
