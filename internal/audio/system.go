package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoSystemPlayer is returned when no command-line audio player is installed.
var ErrNoSystemPlayer = errors.New("no system audio player found")

// SystemPlayer plays an encoded WAV clip through an external program.
type SystemPlayer interface {
	Play(ctx context.Context, wav []byte) error
}

// lookPath can be overridden in tests.
var lookPath = exec.LookPath

func defaultPlayers() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"afplay"}
	case "windows":
		return nil
	default:
		return []string{"paplay", "aplay", "pw-play"}
	}
}

// ExecPlayer runs Command with the path of a temporary WAV file appended.
type ExecPlayer struct {
	Command []string
}

// FindSystemPlayer returns configured (a command line such as "aplay -q") or
// the first platform default present on PATH.
func FindSystemPlayer(configured string) (*ExecPlayer, error) {
	if fields := strings.Fields(configured); len(fields) > 0 {
		path, err := lookPath(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNoSystemPlayer, fields[0], err)
		}
		return &ExecPlayer{Command: append([]string{path}, fields[1:]...)}, nil
	}
	for _, name := range defaultPlayers() {
		if path, err := lookPath(name); err == nil {
			return &ExecPlayer{Command: []string{path}}, nil
		}
	}
	return nil, ErrNoSystemPlayer
}

func (p *ExecPlayer) Play(ctx context.Context, wav []byte) error {
	f, err := os.CreateTemp("", "alarmist-pulse-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create clip: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(wav); err != nil {
		f.Close()
		return fmt.Errorf("failed to write clip: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write clip: %w", err)
	}

	args := append(append([]string{}, p.Command[1:]...), f.Name())
	cmd := exec.CommandContext(ctx, p.Command[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %w: %s", p.Command[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
