package constants

import "time"

// ConflictType represents the type of validation conflict
type ConflictType string

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "smartsteps"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/smartsteps/smartsteps.db"
	EnvDBConnection    = "SMARTSTEPS_DB_CONNECTION"
	EnvLogLevel        = "SMARTSTEPS_LOG_LEVEL"
	Version            = "v0.3.0"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "smartsteps-"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "smartsteps-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.smartsteps"
	TrayExecutablePrefix   = "smartsteps-tray"

	// Conflict Types
	ConflictMissingHabitID  ConflictType = "missing_habit_id"
	ConflictEmptyTitle      ConflictType = "empty_title"
	ConflictDuplicateTitle  ConflictType = "duplicate_title"
	ConflictInvalidTime     ConflictType = "invalid_time"
	ConflictInvalidDate     ConflictType = "invalid_date"
	ConflictEndBeforeStart  ConflictType = "end_before_start"
	ConflictOrphanCompletes ConflictType = "orphan_completions"
)

// Session States
const (
	StateToday SessionState = iota
	StateConfirmDelete
	StateHelp
)
