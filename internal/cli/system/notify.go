package system

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/logger"
	"github.com/julianstephens/smartsteps/internal/notifier"
	"github.com/julianstephens/smartsteps/internal/scheduler"
	"github.com/julianstephens/smartsteps/internal/utils"
)

const (
	sentLogName = "notify-sent.json"
	sentLogKeep = 48 * time.Hour
)

var newSender = func() notifier.Sender { return notifier.New() }

type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	settings := ctx.Settings()
	if !settings.NotificationsEnabled {
		if c.DryRun {
			ctx.Println("Notifications are disabled in settings.")
		}
		return nil
	}

	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}

	grace := time.Duration(max(1, settings.NotificationGracePeriodMin)) * time.Minute
	due := t.Due(grace)
	if len(due) == 0 {
		if c.DryRun {
			ctx.Println("No reminders due.")
		}
		return nil
	}

	sender := newSender()
	if c.DryRun {
		sender = notifier.Writer{Out: ctx.Stdout()}
	}

	sent := loadSentLog(ctx.ConfigDir)
	now := t.Now()
	for _, r := range due {
		key := sentKey(r)
		if _, ok := sent[key]; ok {
			logger.Debug("Reminder already sent", "habit", r.Habit.ID, "at", r.At)
			continue
		}
		if err := sender.Notify(context.Background(), notifier.ReminderText(r)); err != nil {
			if errors.Is(err, notifier.ErrTrayNotRunning) {
				logger.Warn("Skipping reminders", "error", err)
				break
			}
			ctx.Printf("Failed to send notification: %v\n", err)
			continue
		}
		if !c.DryRun {
			sent[key] = now
		}
	}

	if c.DryRun {
		return nil
	}
	sent.prune(now)
	if err := sent.save(ctx.ConfigDir); err != nil {
		logger.Warn("Failed to record sent reminders", "error", err)
	}
	return nil
}

// sentLog maps a reminder key to the time it was delivered.
type sentLog map[string]time.Time

func sentKey(r scheduler.Reminder) string {
	return fmt.Sprintf("%s|%s|%s", utils.DateKey(r.At), r.Habit.ID, r.At.Format("15:04"))
}

func loadSentLog(dir string) sentLog {
	log := sentLog{}
	if dir == "" {
		return log
	}
	data, err := os.ReadFile(filepath.Join(dir, sentLogName))
	if err != nil {
		return log
	}
	if err := json.Unmarshal(data, &log); err != nil {
		logger.Debug("Ignoring unreadable sent-log", "error", err)
		return sentLog{}
	}
	return log
}

func (l sentLog) prune(now time.Time) {
	for key, at := range l {
		if now.Sub(at) > sentLogKeep {
			delete(l, key)
		}
	}
}

func (l sentLog) save(dir string) error {
	if dir == "" {
		return nil
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}

	// Written to a temp file and renamed so a crash never leaves a partial log.
	tmp, err := os.CreateTemp(dir, sentLogName+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, filepath.Join(dir, sentLogName))
}
