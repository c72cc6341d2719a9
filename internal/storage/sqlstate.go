package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/logger"
	"github.com/julianstephens/smartsteps/internal/migration"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/tracker"
)

// Dialect adapts the shared queries below to a SQL driver.
type Dialect int

const (
	// DialectSQLite uses "?" placeholders and INSERT OR REPLACE.
	DialectSQLite Dialect = iota
	// DialectPostgres uses "$n" placeholders and ON CONFLICT.
	DialectPostgres
)

// Rebind rewrites "?" placeholders for d.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) upsertSetting() string {
	if d == DialectPostgres {
		return "INSERT INTO settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value"
	}
	return "INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)"
}

// CheckSchema fails when the database needs migrations in either direction.
func CheckSchema(r *migration.Runner) error {
	st, err := r.Status()
	if err != nil {
		return err
	}
	if st.TooNew() {
		return fmt.Errorf("%w (database at %d, latest known %d)", migration.ErrSchemaTooNew, st.Current, st.Latest)
	}
	if !st.UpToDate() {
		return fmt.Errorf("%w: at version %d, latest is %d, run 'smartsteps migrate'", ErrSchemaOutdated, st.Current, st.Latest)
	}
	return nil
}

// LoadSettingsSQL reads the key/value settings table.
func LoadSettingsSQL(db *sql.DB) (models.Settings, error) {
	rows, err := db.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	data := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}

	if len(data) == 0 {
		return models.Settings{}, ErrSettingsNotFound
	}
	return models.MapToSettings(data)
}

// SaveSettingsSQL writes every setting in one transaction.
func SaveSettingsSQL(db *sql.DB, d Dialect, settings models.Settings) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(d.upsertSetting())
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, value := range models.SettingsToMap(settings) {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("saving setting %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// LoadStateSQL reads habits, catalog and ledger. Habit rows written before
// the schedule columns existed come back with only the legacy time set, and
// the snapshot version reports that.
func LoadStateSQL(db *sql.DB) (tracker.RawSnapshot, error) {
	snap := tracker.RawSnapshot{
		Version:          constants.SnapshotVersion,
		Completions:      make(map[string]map[string]any),
		FirstCompletions: make(map[string]map[string]time.Time),
	}

	rows, err := db.Query(`
		SELECT id, title, icon, frequency, time, daily_repeats, start_date, end_date,
		       schedule_type, exact_time, offset_minutes
		FROM habits
		ORDER BY position, id`)
	if err != nil {
		return snap, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			raw                                       models.RawHabit
			legacyTime, startDate, endDate, schedType sql.NullString
			exactTime                                 sql.NullString
			repeats, offset                           sql.NullInt64
		)
		if err := rows.Scan(&raw.ID, &raw.Title, &raw.Icon, &raw.Frequency, &legacyTime, &repeats,
			&startDate, &endDate, &schedType, &exactTime, &offset); err != nil {
			return snap, fmt.Errorf("failed to scan habit: %w", err)
		}
		raw.Time = legacyTime.String
		raw.StartDate = startDate.String
		raw.ScheduleType = models.ScheduleType(schedType.String)
		raw.ExactTime = exactTime.String
		if endDate.Valid {
			end := endDate.String
			raw.EndDate = &end
		}
		if repeats.Valid {
			raw.DailyRepeats = models.Int(int(repeats.Int64))
		}
		if offset.Valid {
			raw.OffsetMinutes = models.Int(int(offset.Int64))
		}
		if !schedType.Valid {
			snap.Version = 1
		}
		snap.Active = append(snap.Active, raw)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	if err := loadSuggested(db, &snap); err != nil {
		return snap, err
	}
	if err := loadCompletions(db, &snap); err != nil {
		return snap, err
	}
	if err := loadFirstCompletions(db, &snap); err != nil {
		return snap, err
	}
	return snap, nil
}

func loadSuggested(db *sql.DB, snap *tracker.RawSnapshot) error {
	rows, err := db.Query("SELECT id, title, description, icon FROM suggested ORDER BY position, id")
	if err != nil {
		return fmt.Errorf("failed to query suggested habits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.SuggestedHabit
		if err := rows.Scan(&s.ID, &s.Title, &s.Desc, &s.Icon); err != nil {
			return fmt.Errorf("failed to scan suggested habit: %w", err)
		}
		snap.Suggested = append(snap.Suggested, s)
	}
	return rows.Err()
}

func loadCompletions(db *sql.DB, snap *tracker.RawSnapshot) error {
	rows, err := db.Query("SELECT day, habit_id, count FROM completions")
	if err != nil {
		return fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day, habitID string
		var count int
		if err := rows.Scan(&day, &habitID, &count); err != nil {
			return fmt.Errorf("failed to scan completion: %w", err)
		}
		bucket, ok := snap.Completions[day]
		if !ok {
			bucket = make(map[string]any)
			snap.Completions[day] = bucket
		}
		bucket[habitID] = count
	}
	return rows.Err()
}

func loadFirstCompletions(db *sql.DB, snap *tracker.RawSnapshot) error {
	rows, err := db.Query("SELECT day, habit_id, completed_at FROM first_completions")
	if err != nil {
		return fmt.Errorf("failed to query first completions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day, habitID, completedAt string
		if err := rows.Scan(&day, &habitID, &completedAt); err != nil {
			return fmt.Errorf("failed to scan first completion: %w", err)
		}
		at, err := time.Parse(time.RFC3339Nano, completedAt)
		if err != nil {
			logger.Warn("Skipping unreadable first completion", "day", day, "habit", habitID, "value", completedAt)
			continue
		}
		bucket, ok := snap.FirstCompletions[day]
		if !ok {
			bucket = make(map[string]time.Time)
			snap.FirstCompletions[day] = bucket
		}
		bucket[habitID] = at
	}
	return rows.Err()
}

// SaveStateSQL replaces the stored state in a single transaction, so a
// reader never sees habits and completions from different saves.
func SaveStateSQL(db *sql.DB, d Dialect, snap tracker.Snapshot) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"habits", "suggested", "completions", "first_completions"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	habitStmt, err := tx.Prepare(d.Rebind(`
		INSERT INTO habits (id, position, title, icon, frequency, daily_repeats, start_date, end_date,
		                    schedule_type, exact_time, offset_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer habitStmt.Close()

	for i, h := range snap.Active {
		var endDate, exactTime sql.NullString
		var offset sql.NullInt64
		if h.EndDate != nil {
			endDate = sql.NullString{String: *h.EndDate, Valid: true}
		}
		if h.IsExact() {
			exactTime = sql.NullString{String: h.ExactTime, Valid: true}
		}
		if h.OffsetMinutes != nil {
			offset = sql.NullInt64{Int64: int64(*h.OffsetMinutes), Valid: true}
		}
		if _, err := habitStmt.Exec(h.ID, i, h.Title, h.Icon, h.Frequency, h.DailyRepeats, h.StartDate,
			endDate, string(h.ScheduleType), exactTime, offset); err != nil {
			return fmt.Errorf("failed to save habit %s: %w", h.ID, err)
		}
	}

	suggestedStmt, err := tx.Prepare(d.Rebind("INSERT INTO suggested (id, position, title, description, icon) VALUES (?, ?, ?, ?, ?)"))
	if err != nil {
		return err
	}
	defer suggestedStmt.Close()

	for i, s := range snap.Suggested {
		if _, err := suggestedStmt.Exec(s.ID, i, s.Title, s.Desc, s.Icon); err != nil {
			return fmt.Errorf("failed to save suggested habit %s: %w", s.ID, err)
		}
	}

	completionStmt, err := tx.Prepare(d.Rebind("INSERT INTO completions (day, habit_id, count) VALUES (?, ?, ?)"))
	if err != nil {
		return err
	}
	defer completionStmt.Close()

	for day, bucket := range snap.Completions {
		for habitID, count := range bucket {
			if _, err := completionStmt.Exec(day, habitID, count); err != nil {
				return fmt.Errorf("failed to save completion %s/%s: %w", day, habitID, err)
			}
		}
	}

	firstStmt, err := tx.Prepare(d.Rebind("INSERT INTO first_completions (day, habit_id, completed_at) VALUES (?, ?, ?)"))
	if err != nil {
		return err
	}
	defer firstStmt.Close()

	for day, bucket := range snap.FirstCompletions {
		for habitID, at := range bucket {
			if _, err := firstStmt.Exec(day, habitID, at.Format(time.RFC3339Nano)); err != nil {
				return fmt.Errorf("failed to save first completion %s/%s: %w", day, habitID, err)
			}
		}
	}

	return tx.Commit()
}
