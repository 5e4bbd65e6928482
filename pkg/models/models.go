// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// MinLinesChanged is the floor applied to a commit's lines-changed count so
// that trivial commits still carry a non-zero allocation weight.
const MinLinesChanged = 10

// Commit represents a single version-control commit read from history.
// Commits are immutable once collected.
type Commit struct {
	// Hash is the full commit hash
	Hash string

	// Date is the calendar day the commit was authored on
	Date time.Time

	// Message is the commit message (first line)
	Message string

	// IssueKeys are the issue keys extracted from the message (e.g. "ABC-123"),
	// deduplicated, in order of first occurrence
	IssueKeys []string

	// Project identifies the repository the commit came from
	Project string

	// LinesChanged is insertions plus deletions, floored at MinLinesChanged
	LinesChanged int
}

// SignalKind distinguishes the origin of an evidence signal.
type SignalKind string

const (
	// SignalEmail is a signal derived from an email message
	SignalEmail SignalKind = "email"

	// SignalCalendar is a signal derived from a calendar event
	SignalCalendar SignalKind = "calendar"
)

// EvidenceSignal is the unified shape for an email or calendar event.
// Signals are produced by collectors and read-only thereafter.
type EvidenceSignal struct {
	// Date is the calendar day the signal falls on
	Date time.Time

	// Kind is email or calendar
	Kind SignalKind

	// Title is the subject line of the email or event
	Title string

	// Body is the message body or event body preview
	Body string

	// Participants are sender/recipient or attendee addresses
	Participants []string

	// Duration is the event length; zero for emails
	Duration time.Duration
}

// ConfidenceTier is the qualitative strength of an inferred issue match.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// MatchResult is the outcome of matching one signal against the issue pool.
type MatchResult struct {
	// Signal is the signal that was matched
	Signal EvidenceSignal

	// IssueKey is the matched issue key, or empty when no candidate cleared
	// the acceptance threshold
	IssueKey string

	// Confidence is the tier of the match
	Confidence ConfidenceTier

	// Rationale explains how the match was made (or why it wasn't)
	Rationale string
}

// TimesheetEntry is one issue's share of a day.
type TimesheetEntry struct {
	// IssueKey is the issue the time is booked against
	IssueKey string

	// Hours is the booked duration, a multiple of 0.25 and at least 0.25
	Hours float64

	// Description is the worklog description
	Description string

	// Project is the originating project key
	Project string

	// IsFixedMeeting marks recurring-meeting entries whose duration is
	// ground truth; they absorb normalization residual only when every
	// entry on the day is one
	IsFixedMeeting bool
}

// TimesheetDay is one workday's ordered entries.
type TimesheetDay struct {
	// Date is the workday
	Date time.Time

	// Weekday is the label for Date (e.g. "Monday")
	Weekday string

	// Entries is the ordered entry list
	Entries []TimesheetEntry

	// TotalHours is the literal sum of entry hours
	TotalHours float64

	// NoActivity is set when the day had zero commits; such days carry no
	// allocation fabricated from nothing
	NoActivity bool
}

// WeekPlan is the result of one synthesis run over a Monday-Thursday week.
// It is constructed fresh per invocation and never persisted.
type WeekPlan struct {
	// WeekStart is the Monday the week begins on
	WeekStart time.Time

	// Days holds exactly four days, Monday through Thursday
	Days []TimesheetDay

	// WorklogsCreated counts worklogs actually submitted (zero on dry runs)
	WorklogsCreated int

	// Warnings holds informational conditions (no-activity days, degraded
	// collectors)
	Warnings []string

	// Errors holds recoverable failures (per-entry submission failures,
	// failed lookups)
	Errors []string
}

// CandidateIssue is a candidate for heuristic signal matching.
type CandidateIssue struct {
	// Key is the issue key (e.g. "ABC-123")
	Key string

	// Summary is the issue summary field
	Summary string

	// Project is the project key the issue belongs to
	Project string
}

// Project is a known project in the issue tracker.
type Project struct {
	// Key is the project key (e.g. "ABC")
	Key string

	// Name is the human-readable project name
	Name string
}

// IssueDetails are the issue fields the allocator needs.
type IssueDetails struct {
	// EffortEstimate is the tracked relative-size estimate (story points),
	// nil when the issue carries none
	EffortEstimate *float64

	// Summary is the issue summary field
	Summary string
}

// Worklog is a single time-tracking record to be created in the worklog sink.
type Worklog struct {
	// IssueKey is the issue the worklog is booked against
	IssueKey string

	// Hours is the duration, must be positive
	Hours float64

	// Date is the day the work happened
	Date time.Time

	// Description is the worklog description
	Description string

	// AccountKey optionally overrides the account the worklog is billed to;
	// used by the retry-with-alternate-account protocol
	AccountKey string
}

// WorkAttribute is a worklog attribute definition exposed by the sink.
type WorkAttribute struct {
	Key      string
	Name     string
	Type     string
	Required bool
}

// Account is a billing account in the worklog sink.
type Account struct {
	Key    string
	Name   string
	Status string
}
