// Package timesheet drives a week's synthesis: it collects evidence,
// allocates and normalizes each workday, and submits the resulting entries
// to the worklog sink.
package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ptomasek/tally/internal/allocate"
	"github.com/ptomasek/tally/internal/logging"
	"github.com/ptomasek/tally/internal/match"
	"github.com/ptomasek/tally/pkg/models"
)

// WorkdaysPerWeek is the number of target days: Monday through Thursday.
const WorkdaysPerWeek = 4

// WorklogSink creates worklog records in the time-tracking service.
type WorklogSink interface {
	// CreateWorklog creates one worklog and returns its id.
	CreateWorklog(ctx context.Context, worklog models.Worklog) (string, error)

	// FindActiveAccount returns the key of an active billing account for
	// the project, or "" when none exists.
	FindActiveAccount(ctx context.Context, projectKey string) (string, error)
}

// IssueDirectory answers issue-tracker questions for matching and allocation.
type IssueDirectory interface {
	GetIssueDetails(ctx context.Context, key string) (models.IssueDetails, error)
	FindRecurringMeetingIssue(ctx context.Context, projectKey string) (string, error)
	SearchCandidateIssues(ctx context.Context) ([]models.CandidateIssue, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
}

// CommitSource lists commits authored in a date window.
type CommitSource interface {
	Name() string
	ListCommits(ctx context.Context, from, to time.Time) ([]models.Commit, error)
}

// SignalSource lists email/calendar evidence for a date window. Sources
// degrade to empty lists when unconfigured.
type SignalSource interface {
	Name() string
	ListSignals(ctx context.Context, from, to time.Time) ([]models.EvidenceSignal, error)
}

// Options configures one synthesis run.
type Options struct {
	// WeekStart is the Monday the week begins on.
	WeekStart time.Time

	// DryRun computes the plan without creating any worklogs.
	DryRun bool

	// DailySyncHours is the fixed daily sync duration per workday; zero
	// disables the meeting entry.
	DailySyncHours float64

	// WeeklySyncHours is the fixed weekly sync duration on the first
	// workday; zero disables it.
	WeeklySyncHours float64
}

// Orchestrator owns one week's synthesis. It holds no state across runs;
// the project cache is repopulated per invocation.
type Orchestrator struct {
	directory     IssueDirectory
	sink          WorklogSink
	commitSources []CommitSource
	signalSources []SignalSource
	allocator     *allocate.Allocator
	opts          Options

	// projectCache is fetched once per run and reused for affinity
	// matching; it never outlives the run.
	projectCache []models.Project
}

// New creates an Orchestrator over the given collaborators.
func New(directory IssueDirectory, sink WorklogSink, commitSources []CommitSource, signalSources []SignalSource, strategy allocate.Strategy, opts Options) *Orchestrator {
	return &Orchestrator{
		directory:     directory,
		sink:          sink,
		commitSources: commitSources,
		signalSources: signalSources,
		allocator:     allocate.New(directory, strategy),
		opts:          opts,
	}
}

// Run synthesizes the week plan and, unless DryRun is set, submits every
// entry. Only configuration-level problems return an error; everything
// else degrades into the plan's warning and error lists.
func (o *Orchestrator) Run(ctx context.Context) (*models.WeekPlan, error) {
	if o.opts.WeekStart.Weekday() != time.Monday {
		return nil, fmt.Errorf("week start %s is not a Monday", o.opts.WeekStart.Format("2006-01-02"))
	}
	o.projectCache = nil

	plan := &models.WeekPlan{WeekStart: o.opts.WeekStart}
	from := o.opts.WeekStart
	to := o.opts.WeekStart.AddDate(0, 0, WorkdaysPerWeek-1)

	commits := o.collectCommits(ctx, plan, from, to)
	signals := o.collectSignals(ctx, plan, from, to)
	matcher := o.buildMatcher(ctx, plan)

	for i := 0; i < WorkdaysPerWeek; i++ {
		date := o.opts.WeekStart.AddDate(0, 0, i)

		var matches []models.MatchResult
		for _, signal := range signals {
			if !sameDay(signal.Date, date) {
				continue
			}
			matches = append(matches, matcher.Match(signal))
		}

		day, warnings := o.allocator.AllocateDay(ctx, allocate.DayInput{
			Date:          date,
			Commits:       commitsOn(commits, date),
			Matches:       matches,
			FixedMeetings: o.meetingsFor(i),
		})
		allocate.NormalizeDay(&day)

		plan.Days = append(plan.Days, day)
		plan.Warnings = append(plan.Warnings, warnings...)

		logging.Info("day planned",
			"date", date.Format("2006-01-02"),
			"entries", len(day.Entries),
			"total_hours", day.TotalHours,
			"no_activity", day.NoActivity)
	}

	if o.opts.DryRun {
		logging.Info("dry run, skipping submission")
		return plan, nil
	}

	o.submit(ctx, plan)
	return plan, nil
}

// collectCommits gathers commits from every source, treating an unreachable
// source as empty.
func (o *Orchestrator) collectCommits(ctx context.Context, plan *models.WeekPlan, from, to time.Time) []models.Commit {
	var commits []models.Commit
	for _, source := range o.commitSources {
		list, err := source.ListCommits(ctx, from, to)
		if err != nil {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("commit source %s unavailable: %v", source.Name(), err))
			continue
		}
		commits = append(commits, list...)
	}
	logging.Debug("collected commits", "count", len(commits))
	return commits
}

// collectSignals gathers email/calendar evidence from every source,
// treating an unreachable source as empty.
func (o *Orchestrator) collectSignals(ctx context.Context, plan *models.WeekPlan, from, to time.Time) []models.EvidenceSignal {
	var signals []models.EvidenceSignal
	for _, source := range o.signalSources {
		list, err := source.ListSignals(ctx, from, to)
		if err != nil {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("signal source %s unavailable: %v", source.Name(), err))
			continue
		}
		signals = append(signals, list...)
	}
	logging.Debug("collected signals", "count", len(signals))
	return signals
}

// buildMatcher fetches the candidate pool and project list once for the
// run. Either lookup failing degrades matching rather than aborting.
func (o *Orchestrator) buildMatcher(ctx context.Context, plan *models.WeekPlan) *match.Matcher {
	candidates, err := o.directory.SearchCandidateIssues(ctx)
	if err != nil {
		plan.Warnings = append(plan.Warnings,
			fmt.Sprintf("candidate issue search failed, heuristic matching degraded: %v", err))
		candidates = nil
	}

	projects, err := o.directory.ListProjects(ctx)
	if err != nil {
		plan.Warnings = append(plan.Warnings,
			fmt.Sprintf("project list failed, affinity matching disabled: %v", err))
		projects = nil
	}
	o.projectCache = projects

	return match.New(candidates, o.projectCache)
}

// meetingsFor returns the fixed meetings scheduled for workday index i.
func (o *Orchestrator) meetingsFor(i int) []allocate.FixedMeeting {
	var meetings []allocate.FixedMeeting
	if o.opts.DailySyncHours > 0 {
		meetings = append(meetings, allocate.FixedMeeting{Name: "Daily sync", Hours: o.opts.DailySyncHours})
	}
	if i == 0 && o.opts.WeeklySyncHours > 0 {
		meetings = append(meetings, allocate.FixedMeeting{Name: "Weekly sync", Hours: o.opts.WeeklySyncHours})
	}
	return meetings
}

// submit creates worklogs for every entry, sequentially within the week so
// one failure never blocks the remaining entries.
func (o *Orchestrator) submit(ctx context.Context, plan *models.WeekPlan) {
	for _, day := range plan.Days {
		for _, entry := range day.Entries {
			o.submitEntry(ctx, plan, day.Date, entry)
		}
	}
	logging.Info("submission complete",
		"created", plan.WorklogsCreated,
		"failed", len(plan.Errors))
}

// submitEntry creates one worklog. On an inactive-account failure it looks
// up an alternate active account for the entry's project and retries
// exactly once with the substituted account.
func (o *Orchestrator) submitEntry(ctx context.Context, plan *models.WeekPlan, date time.Time, entry models.TimesheetEntry) {
	worklog := models.Worklog{
		IssueKey:    entry.IssueKey,
		Hours:       entry.Hours,
		Date:        date,
		Description: entry.Description,
	}

	id, err := o.sink.CreateWorklog(ctx, worklog)
	if err != nil && isInactiveAccount(err) {
		account, accountErr := o.sink.FindActiveAccount(ctx, entry.Project)
		if accountErr != nil {
			logging.Warn("alternate account lookup failed",
				"project", entry.Project,
				"error", accountErr)
		} else if account != "" {
			logging.Info("retrying worklog with alternate account",
				"issue", entry.IssueKey,
				"account", account)
			worklog.AccountKey = account
			id, err = o.sink.CreateWorklog(ctx, worklog)
		}
	}

	if err != nil {
		plan.Errors = append(plan.Errors,
			fmt.Sprintf("worklog for %s on %s failed: %v", entry.IssueKey, date.Format("2006-01-02"), err))
		return
	}

	plan.WorklogsCreated++
	logging.Debug("created worklog",
		"id", id,
		"issue", entry.IssueKey,
		"hours", entry.Hours)
}

func isInactiveAccount(err error) bool {
	var worklogErr *models.WorklogError
	return errors.As(err, &worklogErr) && worklogErr.Kind == models.WorklogErrorInactiveAccount
}

func commitsOn(commits []models.Commit, date time.Time) []models.Commit {
	var out []models.Commit
	for _, commit := range commits {
		if sameDay(commit.Date, date) {
			out = append(out, commit)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
