package tempo

import (
	"encoding/json"
	"strings"

	"github.com/ptomasek/tally/pkg/models"
)

// Structured error codes the sink is known to return.
const (
	codeIssueNotFound   = "ISSUE_NOT_FOUND"
	codeAccountInactive = "ACCOUNT_INACTIVE"
	codeAccountClosed   = "ACCOUNT_CLOSED"
)

// apiError is the sink's error envelope.
type apiError struct {
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Message string `json:"message"`
}

// classifyError maps a failed response to a structured WorklogError. It
// prefers the sink's error codes; matching on message text is kept only as
// a last resort for deployments that omit codes.
func classifyError(status int, body []byte) *models.WorklogError {
	kind := models.WorklogErrorOther
	message := strings.TrimSpace(string(body))

	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			message = envelope.Message
		}
		for _, apiErr := range envelope.Errors {
			if apiErr.Message != "" {
				message = apiErr.Message
			}
			switch apiErr.Code {
			case codeIssueNotFound:
				kind = models.WorklogErrorUnknownIssue
			case codeAccountInactive, codeAccountClosed:
				kind = models.WorklogErrorInactiveAccount
			}
			if kind != models.WorklogErrorOther {
				break
			}
		}
	}

	if kind == models.WorklogErrorOther {
		kind = kindFromMessage(message)
	}

	return &models.WorklogError{
		Kind:    kind,
		Status:  status,
		Message: message,
	}
}

// kindFromMessage is the message-matching fallback for sinks that return
// no structured code.
func kindFromMessage(message string) models.WorklogErrorKind {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "account") && (strings.Contains(lower, "inactive") || strings.Contains(lower, "closed") || strings.Contains(lower, "archived")):
		return models.WorklogErrorInactiveAccount
	case strings.Contains(lower, "issue") && (strings.Contains(lower, "not found") || strings.Contains(lower, "does not exist") || strings.Contains(lower, "unknown")):
		return models.WorklogErrorUnknownIssue
	default:
		return models.WorklogErrorOther
	}
}
