package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ptomasek/tally/internal/config"
	"github.com/ptomasek/tally/internal/tempo"
)

// attributesCmd inspects the sink's worklog metadata.
var attributesCmd = &cobra.Command{
	Use:   "attributes",
	Short: "List worklog attributes and billing accounts",
	Long: `List the work attribute definitions the time-tracking service expects
on worklogs. With --project, also list the billing accounts linked to that
project, which is useful when a submission fails with an inactive account.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectKey, err := cmd.Flags().GetString("project")
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}

		client, err := tempo.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize worklog client: %v", err)
		}

		ctx := cmd.Context()

		attributes, err := client.ListWorkAttributes(ctx)
		if err != nil {
			return fmt.Errorf("failed to list work attributes: %v", err)
		}

		if len(attributes) == 0 {
			fmt.Println("No work attributes defined.")
		}
		for _, attribute := range attributes {
			required := ""
			if attribute.Required {
				required = "  (required)"
			}
			fmt.Printf("%-20s %-30s %s%s\n", attribute.Key, attribute.Name, attribute.Type, required)
		}

		if projectKey == "" {
			return nil
		}

		accounts, err := client.ListAccounts(ctx, projectKey)
		if err != nil {
			return fmt.Errorf("failed to list accounts for %s: %v", projectKey, err)
		}

		fmt.Printf("\nAccounts for %s:\n", projectKey)
		if len(accounts) == 0 {
			fmt.Println("  none")
		}
		for _, account := range accounts {
			fmt.Printf("  %-15s %-30s %s\n", account.Key, account.Name, account.Status)
		}
		return nil
	},
}

func init() {
	attributesCmd.Flags().StringP("project", "p", "", "project key to list billing accounts for")
}
