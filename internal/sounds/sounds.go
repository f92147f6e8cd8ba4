// Package sounds stores user-supplied alarm sounds. Alarms hold an opaque
// reference ("sound:<uuid><ext>") rather than the file itself.
package sounds

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/julianstephens/alarmist/internal/constants"
	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/logger"
)

const refPrefix = "sound:"

// Resolver opens the bytes behind a sound reference.
type Resolver interface {
	Open(ref string) (io.ReadCloser, error)
}

type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore keeps sounds under dir on fs.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// ValidateName checks that name has an accepted audio extension.
func ValidateName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range constants.AllowedSoundExtensions {
		if ext == allowed {
			return nil
		}
	}
	return apperrors.Validation("sound", "unsupported file type %q (allowed: %s)",
		ext, strings.Join(constants.AllowedSoundExtensions, ", "))
}

// Import copies the sound read from r into the store and returns its reference.
// name is the user-facing file name and decides the accepted extension.
func (s *Store) Import(name string, r io.Reader) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, constants.MaxSoundFileBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read sound: %w", err)
	}
	if len(data) > constants.MaxSoundFileBytes {
		return "", apperrors.Validation("sound", "file is larger than %d MB", constants.MaxSoundFileBytes/(1024*1024))
	}
	if len(data) == 0 {
		return "", apperrors.Validation("sound", "file is empty")
	}

	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create sounds directory: %w", err)
	}
	file := uuid.New().String() + strings.ToLower(filepath.Ext(name))
	if err := afero.WriteFile(s.fs, filepath.Join(s.dir, file), data, 0644); err != nil {
		return "", fmt.Errorf("failed to store sound: %w", err)
	}

	logger.Debug("Imported sound", "name", name, "file", file, "bytes", len(data))
	return refPrefix + file, nil
}

// Open returns the stored bytes for ref.
func (s *Store) Open(ref string) (io.ReadCloser, error) {
	path, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound("sound", ref)
		}
		return nil, fmt.Errorf("failed to open sound: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Release deletes the sound behind ref. Releasing a missing sound is a no-op.
func (s *Store) Release(ref string) error {
	path, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release sound: %w", err)
	}
	return nil
}

// Ext returns the lower-cased file extension behind ref.
func Ext(ref string) string {
	return strings.ToLower(filepath.Ext(strings.TrimPrefix(ref, refPrefix)))
}

func (s *Store) path(ref string) (string, error) {
	if !strings.HasPrefix(ref, refPrefix) {
		return "", apperrors.Validation("sound", "invalid sound reference %q", ref)
	}
	name := strings.TrimPrefix(ref, refPrefix)
	if name == "" || name != filepath.Base(name) {
		return "", apperrors.Validation("sound", "invalid sound reference %q", ref)
	}
	return filepath.Join(s.dir, name), nil
}

// ImportFile imports the file at path on src, rejecting oversized files
// before reading them.
func (s *Store) ImportFile(src afero.Fs, path string) (string, error) {
	if err := ValidateName(path); err != nil {
		return "", err
	}
	info, err := src.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to open sound: %w", err)
	}
	if info.IsDir() {
		return "", apperrors.Validation("sound", "%s is a directory", path)
	}
	if info.Size() > constants.MaxSoundFileBytes {
		return "", apperrors.Validation("sound", "file is larger than %d MB", constants.MaxSoundFileBytes/(1024*1024))
	}
	f, err := src.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open sound: %w", err)
	}
	defer f.Close()
	return s.Import(filepath.Base(path), f)
}
