package notifier

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/alarmist/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := userConfigDirFunc
	userConfigDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userConfigDirFunc = old })
	return dir
}

func withProcess(t *testing.T, exe string) {
	t.Helper()
	old := findProcessFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		if exe == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
	t.Cleanup(func() { findProcessFunc = old })
}

func TestGetTrayAppConfigDir(t *testing.T) {
	dir := withConfigDir(t)

	got, err := GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trayDir := filepath.Join(dir, constants.TrayAppIdentifier)
	if got != trayDir {
		t.Errorf("expected %s, got %s", trayDir, got)
	}

	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	custom := filepath.Join(dir, "custom")
	settings := fmt.Sprintf(`{"settings": {"lockfile_dir": %q}}`, custom)
	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != custom {
		t.Errorf("expected %s, got %s", custom, got)
	}
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	lockfile := filepath.Join(t.TempDir(), constants.NotifierLockfileName)

	if _, _, err := findAndValidateTrayProcess(lockfile); err != ErrTrayNotRunning {
		t.Errorf("missing lockfile: got %v", err)
	}

	tests := []struct {
		name    string
		content string
		exe     string
		wantErr string
	}{
		{"two parts", "8080|12345", "alarmist-tray", "malformed"},
		{"empty port", "|12345|secret", "alarmist-tray", "port"},
		{"port out of range", "99999|12345|secret", "alarmist-tray", "range"},
		{"bad pid", "8080|abc|secret", "alarmist-tray", "process ID"},
		{"empty secret", "8080|12345| ", "alarmist-tray", "secret"},
		{"process gone", "8080|12345|secret", "", "not running"},
		{"wrong process", "8080|12345|secret", "bash", "not alarmist-tray"},
		{"valid", "8080|12345|secret", "alarmist-tray.exe", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withProcess(t, tt.exe)
			if err := os.WriteFile(lockfile, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			port, secret, err := findAndValidateTrayProcess(lockfile)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if port != "8080" || secret != "secret" {
					t.Errorf("got port=%q secret=%q", port, secret)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAlertText(t *testing.T) {
	if got := AlertText("Wake up", "07:05"); got != "Alarm! Wake up - 7:05 AM" {
		t.Errorf("AlertText() = %q", got)
	}
	if got := AlertText("", "13:00"); got != "Alarm! Alarm - 1:00 PM" {
		t.Errorf("AlertText() = %q", got)
	}
}

func TestPresentAlertDeliversWhenGranted(t *testing.T) {
	var (
		mu       sync.Mutex
		received []WebhookPayload
		secrets  []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p WebhookPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		mu.Lock()
		received = append(received, p)
		secrets = append(secrets, r.Header.Get("X-Alarmist-Secret"))
		mu.Unlock()
	}))
	defer srv.Close()
	u, _ := url.Parse(srv.URL)

	dir := withConfigDir(t)
	trayDir := filepath.Join(dir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	lock := fmt.Sprintf("%s|4242|s3cret", u.Port())
	if err := os.WriteFile(filepath.Join(trayDir, constants.NotifierLockfileName), []byte(lock), 0644); err != nil {
		t.Fatal(err)
	}
	withProcess(t, "alarmist-tray")

	permission := constants.PermissionDefault
	n := New(func() string { return permission })

	n.PresentAlert("Wake", "07:00")
	mu.Lock()
	if len(received) != 0 {
		t.Fatalf("notification sent without permission: %+v", received)
	}
	mu.Unlock()

	permission = constants.PermissionGranted
	n.PresentAlert("Wake", "07:00")
	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(received))
	}
	if received[0].Text != "Alarm! Wake - 7:00 AM" || received[0].DurationMs != constants.NotificationDurationMs {
		t.Errorf("payload = %+v", received[0])
	}
	if secrets[0] != "s3cret" {
		t.Errorf("secret header = %q", secrets[0])
	}
}

type recordingAlerter struct{ calls []string }

func (r *recordingAlerter) PresentAlert(label, clock string) {
	r.calls = append(r.calls, label+"@"+clock)
}

func TestMulti(t *testing.T) {
	a, b := &recordingAlerter{}, &recordingAlerter{}
	Multi{a, nil, b}.PresentAlert("Wake", "07:00")
	if len(a.calls) != 1 || len(b.calls) != 1 {
		t.Errorf("Multi did not fan out: %v %v", a.calls, b.calls)
	}
}
