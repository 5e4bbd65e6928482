package models

import "fmt"

// WorklogErrorKind classifies a worklog sink failure so callers can decide
// on a structured code rather than matching message text.
type WorklogErrorKind string

const (
	// WorklogErrorUnknownIssue means the sink does not know the issue key
	WorklogErrorUnknownIssue WorklogErrorKind = "unknown-issue"

	// WorklogErrorInactiveAccount means the billing account linked to the
	// issue is closed or archived; the caller may retry once with an
	// alternate active account
	WorklogErrorInactiveAccount WorklogErrorKind = "inactive-account"

	// WorklogErrorOther is any failure not covered above
	WorklogErrorOther WorklogErrorKind = "other"
)

// WorklogError is a structured worklog sink failure.
type WorklogError struct {
	Kind    WorklogErrorKind
	Status  int
	Message string
}

func (e *WorklogError) Error() string {
	return fmt.Sprintf("worklog sink error (%s, status %d): %s", e.Kind, e.Status, e.Message)
}
