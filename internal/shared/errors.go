package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Fatal run errors: no trustworthy baseline, the run aborts before any submission
	ErrBackupUnreadable  = fmt.Errorf("backup file unreadable")
	ErrRemoteUnavailable = fmt.Errorf("remote service unavailable")

	// Per-record errors: contained as skipped entries, never abort a run
	ErrInvalidEntry = fmt.Errorf("invalid magnet entry")

	// API and service errors
	ErrAPIRequest  = fmt.Errorf("API request failed")
	ErrRunNotFound = fmt.Errorf("run not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
