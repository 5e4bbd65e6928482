package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ptomasek/tally/internal/allocate"
	"github.com/ptomasek/tally/internal/config"
	"github.com/ptomasek/tally/internal/github"
	"github.com/ptomasek/tally/internal/gitlog"
	"github.com/ptomasek/tally/internal/jira"
	"github.com/ptomasek/tally/internal/logging"
	"github.com/ptomasek/tally/internal/msgraph"
	"github.com/ptomasek/tally/internal/tempo"
	"github.com/ptomasek/tally/internal/timesheet"
	"github.com/ptomasek/tally/pkg/models"
)

// syncCmd synthesizes and submits one week's timesheet.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synthesize and submit one week's timesheet",
	Long: `Synthesize timesheet entries for one Monday-Thursday week and submit
them as worklogs.

Evidence is gathered from local git repositories (--repo, repeatable),
GitHub-hosted repositories (--github-repo, repeatable), and, when a Graph
token is configured, Outlook mail and calendar. Commits naming issue keys
drive the allocation; emails and calendar events are matched heuristically
against recently active issues.

Each day with activity is normalized to exactly eight hours in quarter-hour
blocks. Days without commits are reported, not guessed at.

Example:
  tally sync -r ~/src/backend -r ~/src/infra --week 2026-03-02 --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := cmd.Flags().GetStringArray("repo")
		if err != nil {
			return err
		}
		githubRepos, err := cmd.Flags().GetStringArray("github-repo")
		if err != nil {
			return err
		}
		weekFlag, err := cmd.Flags().GetString("week")
		if err != nil {
			return err
		}
		dryRun, err := cmd.Flags().GetBool("dry-run")
		if err != nil {
			return err
		}

		if len(repos) == 0 && len(githubRepos) == 0 {
			return fmt.Errorf("at least one repository must be specified using --repo or --github-repo")
		}

		weekStart, err := resolveWeekStart(weekFlag)
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}

		ctx := cmd.Context()

		directory, err := jira.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize jira client: %v", err)
		}

		sink, err := tempo.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize worklog client: %v", err)
		}

		var commitSources []timesheet.CommitSource
		for _, repo := range repos {
			source, err := gitlog.NewSource(ctx, repo, cfg.Git.Author)
			if err != nil {
				return fmt.Errorf("failed to open repository %s: %v", repo, err)
			}
			commitSources = append(commitSources, source)
		}
		for _, repo := range githubRepos {
			source, err := github.NewSource(ctx, cfg, repo, cfg.Git.Author)
			if err != nil {
				return fmt.Errorf("failed to initialize github source %s: %v", repo, err)
			}
			commitSources = append(commitSources, source)
		}

		var signalSources []timesheet.SignalSource
		if cfg.Graph.Token != "" {
			client := msgraph.NewClient(ctx, cfg.Graph.Token, cfg.Graph.Timezone)
			signalSources = append(signalSources, msgraph.NewSource(client))
		} else {
			logging.Debug("no graph token configured, mail/calendar evidence disabled")
		}

		logging.Info("starting timesheet synthesis",
			"week", weekStart.Format("2006-01-02"),
			"dry_run", dryRun,
			"commit_sources", len(commitSources),
			"signal_sources", len(signalSources))

		orchestrator := timesheet.New(directory, sink, commitSources, signalSources,
			allocate.LinesTimesEstimate{}, timesheet.Options{
				WeekStart:       weekStart,
				DryRun:          dryRun,
				DailySyncHours:  cfg.Sync.DailySyncHours,
				WeeklySyncHours: cfg.Sync.WeeklySyncHours,
			})

		plan, err := orchestrator.Run(ctx)
		if err != nil {
			return err
		}

		printPlan(plan, dryRun)
		return nil
	},
}

func init() {
	syncCmd.Flags().StringArrayP("repo", "r", []string{}, "local git repository path (can be specified multiple times)")
	syncCmd.Flags().StringArray("github-repo", []string{}, "GitHub repository in owner/repo form (can be specified multiple times)")
	syncCmd.Flags().String("week", "", "Monday of the target week (YYYY-MM-DD, default: current week)")
	syncCmd.Flags().Bool("dry-run", false, "compute the plan without creating worklogs")
}

// resolveWeekStart parses the --week flag or falls back to the Monday of
// the current week.
func resolveWeekStart(weekFlag string) (time.Time, error) {
	if weekFlag == "" {
		return timesheet.MondayOf(time.Now()), nil
	}
	weekStart, err := time.Parse("2006-01-02", weekFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --week value %q, expected YYYY-MM-DD", weekFlag)
	}
	if weekStart.Weekday() != time.Monday {
		return time.Time{}, fmt.Errorf("--week %s is a %s, expected a Monday", weekFlag, weekStart.Weekday())
	}
	return weekStart, nil
}

// printPlan renders the week to stdout.
func printPlan(plan *models.WeekPlan, dryRun bool) {
	header := "Week plan"
	if dryRun {
		header = "Week plan (dry run)"
	}
	fmt.Printf("%s for %s\n", header, plan.WeekStart.Format("2006-01-02"))

	for _, day := range plan.Days {
		fmt.Printf("\n%s %s", day.Weekday, day.Date.Format("2006-01-02"))
		if day.NoActivity {
			fmt.Printf("  (no activity)\n")
			continue
		}
		fmt.Printf("  %.2fh\n", day.TotalHours)
		for _, entry := range day.Entries {
			marker := " "
			if entry.IsFixedMeeting {
				marker = "*"
			}
			fmt.Printf("  %s %-12s %5.2fh  %s\n", marker, entry.IssueKey, entry.Hours, entry.Description)
		}
	}

	if !dryRun {
		fmt.Printf("\nWorklogs created: %d\n", plan.WorklogsCreated)
	}
	for _, warning := range plan.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	for _, errMsg := range plan.Errors {
		fmt.Printf("error: %s\n", errMsg)
	}
}
