package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/alarmist/internal/logger"
)

var (
	// ErrValidation marks input rejected before any state mutation.
	ErrValidation = stderrors.New("validation failed")
	// ErrNotFound is returned when an alarm (or the active alarm) does not exist.
	ErrNotFound = stderrors.New("not found")
	// ErrPlayback marks a single audio layer failing to start or play.
	ErrPlayback = stderrors.New("playback failed")
	// ErrPersistence marks a save or load that did not reach the primary store.
	ErrPersistence = stderrors.New("persistence failed")
	// ErrNoSession is returned when no user session is present.
	ErrNoSession = stderrors.New("no active session")
	// ErrBusy is returned when an alarm is already being presented.
	ErrBusy = stderrors.New("an alarm is already ringing")
	// ErrTeardownFailed is returned when audio resources could not be released.
	ErrTeardownFailed = stderrors.New("audio teardown failed")
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation builds a ValidationError for field.
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound wraps ErrNotFound with the kind and id of the missing item.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
