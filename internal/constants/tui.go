package constants

type SessionState int

const (
	StateAlarms SessionState = iota
	StateEditing
	StateConfirmDelete
	StateRinging
)
