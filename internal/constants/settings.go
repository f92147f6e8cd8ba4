package constants

const (
	PermissionDefault = "default"
	PermissionGranted = "granted"
	PermissionDenied  = "denied"

	DefaultTimezone = "Local" // Use system local timezone by default
)
