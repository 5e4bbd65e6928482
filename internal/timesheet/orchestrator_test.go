package timesheet

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptomasek/tally/internal/allocate"
	"github.com/ptomasek/tally/pkg/models"
)

var weekStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday

type fakeDirectory struct {
	candidates []models.CandidateIssue
	projects   []models.Project
	searchErr  error
}

func (f *fakeDirectory) GetIssueDetails(ctx context.Context, key string) (models.IssueDetails, error) {
	return models.IssueDetails{Summary: key}, nil
}

func (f *fakeDirectory) FindRecurringMeetingIssue(ctx context.Context, projectKey string) (string, error) {
	return "", nil
}

func (f *fakeDirectory) SearchCandidateIssues(ctx context.Context) ([]models.CandidateIssue, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.candidates, nil
}

func (f *fakeDirectory) ListProjects(ctx context.Context) ([]models.Project, error) {
	return f.projects, nil
}

type fakeSink struct {
	created     []models.Worklog
	failKeys    map[string]error
	altAccounts map[string]string
	calls       int
}

func (f *fakeSink) CreateWorklog(ctx context.Context, worklog models.Worklog) (string, error) {
	f.calls++
	if err, ok := f.failKeys[worklog.IssueKey]; ok && worklog.AccountKey == "" {
		return "", err
	}
	f.created = append(f.created, worklog)
	return fmt.Sprintf("wl-%d", len(f.created)), nil
}

func (f *fakeSink) FindActiveAccount(ctx context.Context, projectKey string) (string, error) {
	return f.altAccounts[projectKey], nil
}

type fakeCommits struct {
	commits []models.Commit
	err     error
}

func (f *fakeCommits) Name() string { return "fake-git" }

func (f *fakeCommits) ListCommits(ctx context.Context, from, to time.Time) ([]models.Commit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.commits, nil
}

type fakeSignals struct {
	signals []models.EvidenceSignal
}

func (f *fakeSignals) Name() string { return "fake-mail" }

func (f *fakeSignals) ListSignals(ctx context.Context, from, to time.Time) ([]models.EvidenceSignal, error) {
	return f.signals, nil
}

func weekCommits() []models.Commit {
	return []models.Commit{
		{Hash: "c1", Date: weekStart, Message: "ABC-1 parser", IssueKeys: []string{"ABC-1"}, Project: "backend", LinesChanged: 40},
		{Hash: "c2", Date: weekStart, Message: "ABC-2 cache", IssueKeys: []string{"ABC-2"}, Project: "backend", LinesChanged: 10},
		{Hash: "c3", Date: weekStart.AddDate(0, 0, 1), Message: "ABC-1 tests", IssueKeys: []string{"ABC-1"}, Project: "backend", LinesChanged: 120},
		{Hash: "c4", Date: weekStart.AddDate(0, 0, 3), Message: "DEF-9 deploy", IssueKeys: []string{"DEF-9"}, Project: "infra", LinesChanged: 25},
	}
}

func newOrchestrator(directory *fakeDirectory, sink *fakeSink, commits CommitSource, opts Options) *Orchestrator {
	return New(directory, sink, []CommitSource{commits}, []SignalSource{&fakeSignals{}}, allocate.LinesTimesEstimate{}, opts)
}

func TestRunRequiresMonday(t *testing.T) {
	o := newOrchestrator(&fakeDirectory{}, &fakeSink{}, &fakeCommits{},
		Options{WeekStart: weekStart.AddDate(0, 0, 1), DryRun: true})

	_, err := o.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a Monday")
}

func TestRunWeekShape(t *testing.T) {
	o := newOrchestrator(&fakeDirectory{}, &fakeSink{}, &fakeCommits{commits: weekCommits()},
		Options{WeekStart: weekStart, DryRun: true})

	plan, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, plan.Days, WorkdaysPerWeek)
	assert.Equal(t, "Monday", plan.Days[0].Weekday)
	assert.Equal(t, "Thursday", plan.Days[3].Weekday)

	// Monday, Tuesday and Thursday have commits; Wednesday does not.
	for _, i := range []int{0, 1, 3} {
		assert.InDelta(t, 8.0, plan.Days[i].TotalHours, 1e-9, "day %d", i)
		assert.False(t, plan.Days[i].NoActivity)
	}
	wednesday := plan.Days[2]
	assert.True(t, wednesday.NoActivity)
	assert.Empty(t, wednesday.Entries)
	assert.Zero(t, wednesday.TotalHours)

	found := false
	for _, warning := range plan.Warnings {
		if warning == "no commits on 2026-03-04" {
			found = true
		}
	}
	assert.True(t, found, "expected a no-commits warning for Wednesday, got %v", plan.Warnings)
}

func TestRunDryRunMatchesLiveRun(t *testing.T) {
	live := &fakeSink{}
	dry := &fakeSink{}

	livePlan, err := newOrchestrator(&fakeDirectory{}, live, &fakeCommits{commits: weekCommits()},
		Options{WeekStart: weekStart}).Run(context.Background())
	require.NoError(t, err)

	dryPlan, err := newOrchestrator(&fakeDirectory{}, dry, &fakeCommits{commits: weekCommits()},
		Options{WeekStart: weekStart, DryRun: true}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, livePlan.Days, dryPlan.Days)
	assert.Equal(t, livePlan.Warnings, dryPlan.Warnings)
	assert.Zero(t, dryPlan.WorklogsCreated)
	assert.Zero(t, dry.calls)
	assert.Equal(t, livePlan.WorklogsCreated, len(live.created))
	assert.Positive(t, livePlan.WorklogsCreated)
}

func TestRunSubmissionFailureIsolation(t *testing.T) {
	sink := &fakeSink{
		failKeys: map[string]error{
			"ABC-2": fmt.Errorf("boom"),
		},
	}
	o := newOrchestrator(&fakeDirectory{}, sink, &fakeCommits{commits: weekCommits()},
		Options{WeekStart: weekStart})

	plan, err := o.Run(context.Background())
	require.NoError(t, err)

	// ABC-2 only appears on Monday; everything else still gets created.
	require.Len(t, plan.Errors, 1)
	assert.Contains(t, plan.Errors[0], "ABC-2")
	assert.Equal(t, len(sink.created), plan.WorklogsCreated)
	assert.Equal(t, 3, plan.WorklogsCreated)
}

func TestRunRetriesOnceWithAlternateAccount(t *testing.T) {
	sink := &fakeSink{
		failKeys: map[string]error{
			"DEF-9": &models.WorklogError{Kind: models.WorklogErrorInactiveAccount, Status: 400, Message: "account closed"},
		},
		altAccounts: map[string]string{"DEF": "ACC-ALT"},
	}
	o := newOrchestrator(&fakeDirectory{}, sink, &fakeCommits{commits: weekCommits()},
		Options{WeekStart: weekStart})

	plan, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, plan.Errors)
	assert.Equal(t, 4, plan.WorklogsCreated)

	var retried *models.Worklog
	for i := range sink.created {
		if sink.created[i].IssueKey == "DEF-9" {
			retried = &sink.created[i]
		}
	}
	require.NotNil(t, retried)
	assert.Equal(t, "ACC-ALT", retried.AccountKey)
	// 4 entries plus exactly one retry.
	assert.Equal(t, 5, sink.calls)
}

func TestRunInactiveAccountWithoutAlternateRecordsError(t *testing.T) {
	sink := &fakeSink{
		failKeys: map[string]error{
			"DEF-9": &models.WorklogError{Kind: models.WorklogErrorInactiveAccount, Status: 400, Message: "account closed"},
		},
	}
	o := newOrchestrator(&fakeDirectory{}, sink, &fakeCommits{commits: weekCommits()},
		Options{WeekStart: weekStart})

	plan, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, plan.Errors, 1)
	assert.Contains(t, plan.Errors[0], "DEF-9")
	assert.Equal(t, 3, plan.WorklogsCreated)
}

func TestRunCommitSourceUnavailable(t *testing.T) {
	o := newOrchestrator(&fakeDirectory{}, &fakeSink{}, &fakeCommits{err: fmt.Errorf("repo missing")},
		Options{WeekStart: weekStart, DryRun: true})

	plan, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, plan.Days, WorkdaysPerWeek)
	found := false
	for _, warning := range plan.Warnings {
		if warning == "commit source fake-git unavailable: repo missing" {
			found = true
		}
	}
	assert.True(t, found, "warnings: %v", plan.Warnings)
}

func TestRunMatchedSignalContributesEntry(t *testing.T) {
	directory := &fakeDirectory{
		candidates: []models.CandidateIssue{
			{Key: "NET-4", Summary: "Investigate gateway packet loss", Project: "NET"},
		},
	}
	signals := &fakeSignals{signals: []models.EvidenceSignal{
		{
			Date:  weekStart,
			Kind:  models.SignalEmail,
			Title: "gateway packet loss investigation",
			Body:  "numbers from last night attached",
		},
		{
			// Unmatchable noise must not produce entries or warnings.
			Date:  weekStart,
			Kind:  models.SignalEmail,
			Title: "cake in the kitchen",
		},
	}}
	o := New(directory, &fakeSink{}, []CommitSource{&fakeCommits{commits: weekCommits()}},
		[]SignalSource{signals}, allocate.LinesTimesEstimate{},
		Options{WeekStart: weekStart, DryRun: true})

	plan, err := o.Run(context.Background())
	require.NoError(t, err)

	monday := plan.Days[0]
	keys := make(map[string]bool)
	for _, entry := range monday.Entries {
		keys[entry.IssueKey] = true
	}
	assert.True(t, keys["NET-4"], "expected a NET-4 entry, entries: %v", monday.Entries)
	assert.InDelta(t, 8.0, monday.TotalHours, 1e-9)

	for _, warning := range plan.Warnings {
		assert.NotContains(t, warning, "cake")
	}
}
