package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ptomasek/tally/internal/config"
	"github.com/ptomasek/tally/internal/tempo"
	"github.com/ptomasek/tally/pkg/models"
)

// worklogCmd groups corrections to already-submitted worklogs.
var worklogCmd = &cobra.Command{
	Use:   "worklog",
	Short: "Correct previously submitted worklogs",
	Long: `Correct worklogs after a sync run, for example when a day was booked
against the wrong issue or with the wrong duration.`,
}

var worklogUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace the fields of an existing worklog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		worklog, err := worklogFromFlags(cmd)
		if err != nil {
			return err
		}

		client, err := worklogClient()
		if err != nil {
			return err
		}

		if err := client.UpdateWorklog(cmd.Context(), args[0], worklog); err != nil {
			return fmt.Errorf("failed to update worklog %s: %v", args[0], err)
		}
		fmt.Printf("Updated worklog %s\n", args[0])
		return nil
	},
}

var worklogDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an existing worklog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := worklogClient()
		if err != nil {
			return err
		}

		if err := client.DeleteWorklog(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete worklog %s: %v", args[0], err)
		}
		fmt.Printf("Deleted worklog %s\n", args[0])
		return nil
	},
}

func worklogClient() (*tempo.Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}
	client, err := tempo.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize worklog client: %v", err)
	}
	return client, nil
}

// worklogFromFlags builds the replacement worklog for an update from the
// command's flags.
func worklogFromFlags(cmd *cobra.Command) (models.Worklog, error) {
	issueKey, err := cmd.Flags().GetString("issue")
	if err != nil {
		return models.Worklog{}, err
	}
	hours, err := cmd.Flags().GetFloat64("hours")
	if err != nil {
		return models.Worklog{}, err
	}
	dateFlag, err := cmd.Flags().GetString("date")
	if err != nil {
		return models.Worklog{}, err
	}
	description, err := cmd.Flags().GetString("description")
	if err != nil {
		return models.Worklog{}, err
	}

	if issueKey == "" {
		return models.Worklog{}, fmt.Errorf("--issue is required")
	}
	if hours <= 0 {
		return models.Worklog{}, fmt.Errorf("--hours must be positive, got %v", hours)
	}
	date, err := time.Parse("2006-01-02", dateFlag)
	if err != nil {
		return models.Worklog{}, fmt.Errorf("invalid --date value %q, expected YYYY-MM-DD", dateFlag)
	}

	return models.Worklog{
		IssueKey:    issueKey,
		Hours:       hours,
		Date:        date,
		Description: description,
	}, nil
}

func init() {
	worklogUpdateCmd.Flags().String("issue", "", "issue key the worklog is booked against")
	worklogUpdateCmd.Flags().Float64("hours", 0, "worklog duration in hours")
	worklogUpdateCmd.Flags().String("date", "", "day the work happened (YYYY-MM-DD)")
	worklogUpdateCmd.Flags().String("description", "", "worklog description")

	worklogCmd.AddCommand(worklogUpdateCmd)
	worklogCmd.AddCommand(worklogDeleteCmd)
}
