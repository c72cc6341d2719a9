// Package notifier delivers due reminders to the desktop tray companion over
// its localhost webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/logger"
	"github.com/julianstephens/smartsteps/internal/scheduler"
)

const secretHeader = "X-Smartsteps-Secret"

var retryDelay = constants.NotifyRetryDelay

// Sender delivers a reminder text.
type Sender interface {
	Notify(ctx context.Context, text string) error
}

// Notifier posts reminders to the tray app's local webhook.
type Notifier struct {
	client *http.Client
}

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

func New() *Notifier {
	return &Notifier{client: &http.Client{Timeout: 5 * time.Second}}
}

// Notify finds the tray and posts text, retrying failed posts with a linear
// backoff up to constants.NotifyMaxRetries attempts.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	ep, err := locateTray()
	if err != nil {
		return err
	}

	payload := WebhookPayload{Text: text, DurationMs: constants.NotificationDurationMs}
	for attempt := 1; ; attempt++ {
		err = n.post(ctx, ep, payload)
		if err == nil || attempt == constants.NotifyMaxRetries {
			return err
		}
		logger.Debug("Notification failed, retrying", "attempt", attempt, "error", err)

		timer := time.NewTimer(retryDelay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (n *Notifier) post(ctx context.Context, ep endpoint, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.url(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretHeader, ep.secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("tray rejected notification: %s: %s", res.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}

// Writer prints reminders instead of delivering them.
type Writer struct {
	Out io.Writer
}

func (w Writer) Notify(_ context.Context, text string) error {
	_, err := fmt.Fprintln(w.Out, text)
	return err
}

// ReminderText formats the message shown for a reminder.
func ReminderText(r scheduler.Reminder) string {
	text := strings.TrimSpace(r.Habit.Icon + " " + r.Habit.Title)
	if r.Habit.IsOffset() {
		return fmt.Sprintf("%s · %d min desde la primera vez hoy", text, r.Habit.Offset())
	}
	return fmt.Sprintf("%s · %s", text, r.Habit.ExactTime)
}
