// Package logger is the process-wide structured logger. Entries always go to
// a rotating file under the config directory; the terminal only sees them in
// debug mode so the TUI keeps the screen.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/smartsteps/internal/constants"
)

// Logger is replaced by Init. Until then entries are dropped.
var Logger = log.New(io.Discard)

type Config struct {
	Debug     bool
	ConfigDir string
	// Level overrides the default level ("warn", or "debug" with Debug set).
	Level string
	// Stderr receives a copy of every entry in debug mode. Defaults to os.Stderr.
	Stderr io.Writer
}

// Path returns the rotating log file location under configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, "logs", constants.AppName+".log")
}

func (c Config) level() (log.Level, error) {
	if c.Level != "" {
		lvl, err := log.ParseLevel(c.Level)
		if err != nil {
			return log.WarnLevel, fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		return lvl, nil
	}
	if c.Debug {
		return log.DebugLevel, nil
	}
	return log.WarnLevel, nil
}

func (c Config) writer(file io.Writer) io.Writer {
	if !c.Debug {
		return file
	}
	stderr := c.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	return io.MultiWriter(stderr, file)
}

// Init installs the global logger. An invalid Level still installs a logger
// at the default level and is reported as an error.
func Init(cfg Config) error {
	logFile := Path(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return err
	}

	file := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    5, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	level, levelErr := cfg.level()
	Logger = log.NewWithOptions(cfg.writer(file), log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})
	return levelErr
}

func Debug(msg string, keyvals ...any) { Logger.Debug(msg, keyvals...) }

func Info(msg string, keyvals ...any) { Logger.Info(msg, keyvals...) }

func Warn(msg string, keyvals ...any) { Logger.Warn(msg, keyvals...) }

func Error(msg string, keyvals ...any) { Logger.Error(msg, keyvals...) }
