package models

/*
Job status constants for use throughout the codebase.
Centralizing these avoids magic strings and improves maintainability.
*/

// Job status constants
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusError      = "error"
)

// IsTerminalStatus reports whether a job in the given status can never
// transition again.
func IsTerminalStatus(status string) bool {
	return status == JobStatusCompleted || status == JobStatusError
}
