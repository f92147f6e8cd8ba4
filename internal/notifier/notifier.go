// Package notifier presents a ringing alarm outside the terminal. OS-level
// notifications are delivered through the companion tray app, which
// advertises its webhook in a lockfile.
package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/utils"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

var ErrTrayNotRunning = errors.New("alarmist-tray is not running")

// Alerter is anything that can announce a ringing alarm.
type Alerter interface {
	PresentAlert(label, clock string)
}

// Multi forwards each alert to every non-nil alerter in order.
type Multi []Alerter

func (m Multi) PresentAlert(label, clock string) {
	for _, a := range m {
		if a != nil {
			a.PresentAlert(label, clock)
		}
	}
}

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// Notifier sends OS notifications once the user has granted permission.
type Notifier struct {
	permission func() string
	http       *resty.Client
}

// New returns a Notifier gated by permission, which reports the stored
// notification permission (default, granted or denied).
func New(permission func() string) *Notifier {
	r := resty.New()
	r.SetTimeout(2 * time.Second)
	r.SetHeader("Content-Type", "application/json")
	return &Notifier{permission: permission, http: r}
}

// PresentAlert is best effort: failures are logged, never returned.
func (n *Notifier) PresentAlert(label, clock string) {
	if n.permission == nil || n.permission() != constants.PermissionGranted {
		logger.Debug("OS notification skipped, permission not granted")
		return
	}
	if err := n.Notify(AlertText(label, clock)); err != nil {
		logger.Debug("OS notification failed", "error", err)
	}
}

// AlertText renders the notification body for a ringing alarm.
func AlertText(label, clock string) string {
	if label == "" {
		label = constants.DefaultAlarmLabel
	}
	return fmt.Sprintf("Alarm! %s - %s", label, utils.FormatClock(clock))
}

func (n *Notifier) Notify(text string) error {
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		return err
	}

	port, secret, err := findAndValidateTrayProcess(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	return n.send(port, secret, WebhookPayload{
		Text:       text,
		DurationMs: constants.NotificationDurationMs,
	})
}

// GetTrayAppConfigDir returns the tray app's lockfile directory, honoring a
// lockfile_dir override in its settings.json.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	trayDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(trayDir, "settings.json"))
	if err != nil {
		return trayDir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err == nil && store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
		return *store.Settings.LockfileDir, nil
	}
	return trayDir, nil
}

// findAndValidateTrayProcess parses a "port|pid|secret" lockfile and checks
// the pid belongs to a live tray process.
func findAndValidateTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", ErrTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port := strings.TrimSpace(parts[0])
	if port == "" {
		return "", "", errors.New("port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayExecutablePrefix) {
		return "", "", fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayExecutablePrefix, process.Executable())
	}

	return port, secret, nil
}

func (n *Notifier) send(port, secret string, payload WebhookPayload) error {
	resp, err := n.http.R().
		SetHeader("X-Alarmist-Secret", secret).
		SetBody(payload).
		Post(fmt.Sprintf("http://127.0.0.1:%s", port))
	if err != nil {
		return err
	}
	if resp.StatusCode() == 200 {
		return nil
	}
	return fmt.Errorf("notification failed with status %d: %s", resp.StatusCode(), resp.String())
}
