package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/smartsteps/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// ErrTrayNotRunning means there is no tray process to deliver to. It is not
// retried.
var ErrTrayNotRunning = errors.New(constants.TrayExecutablePrefix + " is not running")

// endpoint is what the tray app advertises in its "port|pid|secret" lockfile.
type endpoint struct {
	port   int
	pid    int
	secret string
}

func (e endpoint) url() string {
	return "http://127.0.0.1:" + strconv.Itoa(e.port)
}

func parseLockfile(data []byte) (endpoint, error) {
	fields := strings.Split(strings.TrimSpace(string(data)), "|")
	if len(fields) != 3 {
		return endpoint{}, fmt.Errorf("lockfile is malformed: want port|pid|secret, got %d field(s)", len(fields))
	}

	port, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return endpoint{}, fmt.Errorf("invalid port in lockfile: %q", fields[0])
	}
	if port < 1 || port > 65535 {
		return endpoint{}, fmt.Errorf("port %d in lockfile is outside 1-65535", port)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return endpoint{}, fmt.Errorf("invalid process ID in lockfile: %q", fields[1])
	}
	secret := strings.TrimSpace(fields[2])
	if secret == "" {
		return endpoint{}, errors.New("secret in lockfile is empty")
	}
	return endpoint{port: port, pid: pid, secret: secret}, nil
}

// TrayConfigDir returns the directory holding the tray app's lockfile. The
// tray's settings.json may move it with a lockfile_dir entry.
func TrayConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	dir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	if err != nil {
		return dir, nil
	}
	var traySettings struct {
		Settings struct {
			LockfileDir string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if json.Unmarshal(data, &traySettings) == nil && traySettings.Settings.LockfileDir != "" {
		return traySettings.Settings.LockfileDir, nil
	}
	return dir, nil
}

// locateTray reads the lockfile and confirms its pid still belongs to the
// tray executable, so a stale lockfile is reported as ErrTrayNotRunning.
func locateTray() (endpoint, error) {
	dir, err := TrayConfigDir()
	if err != nil {
		return endpoint{}, err
	}
	data, err := os.ReadFile(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return endpoint{}, ErrTrayNotRunning
	}
	ep, err := parseLockfile(data)
	if err != nil {
		return endpoint{}, err
	}

	proc, err := findProcessFunc(ep.pid)
	if err != nil || proc == nil {
		return endpoint{}, ErrTrayNotRunning
	}
	if exe := proc.Executable(); !strings.HasPrefix(exe, constants.TrayExecutablePrefix) {
		return endpoint{}, fmt.Errorf("process %d is %s, not %s", ep.pid, exe, constants.TrayExecutablePrefix)
	}
	return ep, nil
}
