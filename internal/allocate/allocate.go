// Package allocate partitions a workday's time budget across issues based
// on weighted commit volume, merges matched email/calendar signals, and
// normalizes each day to a fixed total.
package allocate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ptomasek/tally/internal/logging"
	"github.com/ptomasek/tally/pkg/models"
)

const (
	// WorkdayHours is the fixed total every non-empty day normalizes to.
	WorkdayHours = 8.0

	// Quantum is the allowed hour granularity (15 minutes).
	Quantum = 0.25
)

// estimateLookupLimit bounds concurrent per-issue detail lookups.
const estimateLookupLimit = 4

// IssueInfo is the slice of the issue directory the allocator needs.
type IssueInfo interface {
	GetIssueDetails(ctx context.Context, key string) (models.IssueDetails, error)
	FindRecurringMeetingIssue(ctx context.Context, projectKey string) (string, error)
}

// FixedMeeting is a recurring meeting with a known, fixed duration that is
// subtracted from the day's budget up front.
type FixedMeeting struct {
	Name  string
	Hours float64
}

// DayInput is everything the allocator needs for one workday.
type DayInput struct {
	// Date is the target day
	Date time.Time

	// Commits are all commits authored on the day
	Commits []models.Commit

	// Matches are the day's matched email/calendar signals
	Matches []models.MatchResult

	// FixedMeetings are the recurring meetings scheduled for the day
	FixedMeetings []FixedMeeting
}

// Allocator converts one day's evidence into provisional timesheet entries.
type Allocator struct {
	issues   IssueInfo
	strategy Strategy
}

// New creates an Allocator using the given issue directory and weighting
// strategy.
func New(issues IssueInfo, strategy Strategy) *Allocator {
	return &Allocator{
		issues:   issues,
		strategy: strategy,
	}
}

// AllocateDay builds a provisional TimesheetDay from the day's evidence.
// The returned day is not yet normalized; its hours may not sum to
// WorkdayHours. Warnings describe degraded lookups and empty days.
func (a *Allocator) AllocateDay(ctx context.Context, in DayInput) (models.TimesheetDay, []string) {
	day := models.TimesheetDay{
		Date:    in.Date,
		Weekday: in.Date.Weekday().String(),
	}
	var warnings []string

	// A day without commits is emitted empty rather than guessed at.
	if len(in.Commits) == 0 {
		day.NoActivity = true
		warnings = append(warnings, fmt.Sprintf("no commits on %s", in.Date.Format("2006-01-02")))
		return day, warnings
	}

	groups := groupByIssue(in.Commits)
	mainProject := dominantProject(in.Commits, groups)

	meetingHours := 0.0
	for _, meeting := range in.FixedMeetings {
		meetingHours += meeting.Hours
	}
	availableMinutes := (WorkdayHours - meetingHours) * 60

	a.resolveMultipliers(ctx, groups)

	totalWeight := 0.0
	for _, group := range groups {
		totalWeight += a.strategy.Weight(*group)
	}

	for _, group := range groups {
		if totalWeight <= 0 {
			break
		}
		hours := availableMinutes * (a.strategy.Weight(*group) / totalWeight) / 60
		quantized := Quantize(hours)
		if quantized < Quantum {
			quantized = Quantum
		}
		day.Entries = append(day.Entries, models.TimesheetEntry{
			IssueKey:    group.IssueKey,
			Hours:       quantized,
			Description: describeGroup(group),
			Project:     group.Project,
		})
	}

	if len(groups) == 0 {
		warnings = append(warnings, fmt.Sprintf("commits on %s name no issue keys", in.Date.Format("2006-01-02")))
	}

	if len(in.FixedMeetings) > 0 {
		meetingWarnings := a.appendMeetings(ctx, &day, in.FixedMeetings, mainProject)
		warnings = append(warnings, meetingWarnings...)
	}

	mergeSignals(&day, in.Matches)

	day.TotalHours = sumHours(day.Entries)
	return day, warnings
}

// resolveMultipliers fills each group's effort-estimate multiplier. Lookups
// are independent and read-only, so they fan out concurrently; a failed
// lookup leaves the default multiplier of 1 and never fails the day.
func (a *Allocator) resolveMultipliers(ctx context.Context, groups []*CommitGroup) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(estimateLookupLimit)

	for _, group := range groups {
		group := group
		g.Go(func() error {
			details, err := a.issues.GetIssueDetails(gctx, group.IssueKey)
			if err != nil {
				logging.Warn("estimate lookup failed, using default multiplier",
					"issue", group.IssueKey,
					"error", err)
				return nil
			}
			if details.EffortEstimate != nil && *details.EffortEstimate > 0 {
				group.Multiplier = *details.EffortEstimate
			}
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()
}

// appendMeetings attaches the day's fixed recurring meetings to the main
// project's designated meeting issue. A failed or empty lookup skips the
// meeting entries but never aborts the day.
func (a *Allocator) appendMeetings(ctx context.Context, day *models.TimesheetDay, meetings []FixedMeeting, mainProject string) []string {
	if mainProject == "" {
		return []string{fmt.Sprintf("no project to attach meetings to on %s", day.Date.Format("2006-01-02"))}
	}

	meetingIssue, err := a.issues.FindRecurringMeetingIssue(ctx, mainProject)
	if err != nil {
		return []string{fmt.Sprintf("meeting issue lookup failed for %s: %v", mainProject, err)}
	}
	if meetingIssue == "" {
		return []string{fmt.Sprintf("no recurring meeting issue in project %s", mainProject)}
	}

	for _, meeting := range meetings {
		hours := Quantize(meeting.Hours)
		if hours < Quantum {
			hours = Quantum
		}
		day.Entries = append(day.Entries, models.TimesheetEntry{
			IssueKey:       meetingIssue,
			Hours:          hours,
			Description:    meeting.Name,
			Project:        mainProject,
			IsFixedMeeting: true,
		})
	}
	return nil
}

// mergeSignals appends entries for matched signals whose issue key is not
// already represented. Unmatched signals are silently excluded.
func mergeSignals(day *models.TimesheetDay, matches []models.MatchResult) {
	represented := make(map[string]bool, len(day.Entries))
	for _, entry := range day.Entries {
		represented[entry.IssueKey] = true
	}

	for _, match := range matches {
		if match.IssueKey == "" || represented[match.IssueKey] {
			continue
		}

		hours := Quantum
		isMeeting := false
		if match.Signal.Kind == models.SignalCalendar {
			hours = Quantize(match.Signal.Duration.Hours())
			if hours < Quantum {
				hours = Quantum
			}
			isMeeting = IsRecurringMeetingTitle(match.Signal.Title)
		}

		represented[match.IssueKey] = true
		day.Entries = append(day.Entries, models.TimesheetEntry{
			IssueKey:       match.IssueKey,
			Hours:          hours,
			Description:    match.Signal.Title,
			Project:        projectOfKey(match.IssueKey),
			IsFixedMeeting: isMeeting,
		})
	}
}

// groupByIssue groups commits by issue key in first-occurrence order. A
// commit naming several keys contributes its full lines-changed to each;
// commits naming none are excluded.
func groupByIssue(commits []models.Commit) []*CommitGroup {
	index := make(map[string]*CommitGroup)
	var groups []*CommitGroup

	for _, commit := range commits {
		for _, key := range commit.IssueKeys {
			group, ok := index[key]
			if !ok {
				group = &CommitGroup{
					IssueKey:   key,
					Project:    commit.Project,
					Multiplier: 1,
				}
				index[key] = group
				groups = append(groups, group)
			}
			group.Commits = append(group.Commits, commit)
			group.LinesChanged += commit.LinesChanged
		}
	}
	return groups
}

// dominantProject returns the project with the greatest total lines changed
// among the day's keyed commits, falling back to the first commit's project.
func dominantProject(commits []models.Commit, groups []*CommitGroup) string {
	totals := make(map[string]int)
	var order []string
	for _, group := range groups {
		if _, ok := totals[group.Project]; !ok {
			order = append(order, group.Project)
		}
		totals[group.Project] += group.LinesChanged
	}

	best := ""
	bestLines := -1
	for _, project := range order {
		if totals[project] > bestLines {
			best = project
			bestLines = totals[project]
		}
	}
	if best == "" && len(commits) > 0 {
		best = commits[0].Project
	}
	return best
}

func describeGroup(group *CommitGroup) string {
	noun := "commits"
	if len(group.Commits) == 1 {
		noun = "commit"
	}
	return fmt.Sprintf("Development on %s (%d %s)", group.IssueKey, len(group.Commits), noun)
}

// projectOfKey derives the project key from an issue key ("ABC-12" -> "ABC").
func projectOfKey(issueKey string) string {
	if i := strings.Index(issueKey, "-"); i > 0 {
		return issueKey[:i]
	}
	return issueKey
}

// meetingKeywords mark calendar titles as recurring meetings.
var meetingKeywords = []string{"daily", "standup", "stand-up", "planning", "retro", "sync"}

// IsRecurringMeetingTitle reports whether a calendar title names a known
// recurring meeting, matched case-insensitively.
func IsRecurringMeetingTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range meetingKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Quantize rounds hours to the nearest Quantum.
func Quantize(hours float64) float64 {
	return math.Round(hours/Quantum) * Quantum
}

func sumHours(entries []models.TimesheetEntry) float64 {
	total := 0.0
	for _, entry := range entries {
		total += entry.Hours
	}
	return total
}
