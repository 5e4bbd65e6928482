// Package cmd provides the command-line interface for the tally tool.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "Tally reconciles git, mail, and calendar activity into timesheets",
	Long: `Tally is a CLI tool that reconciles version-control history, email, and
calendar events for one work week into issue-keyed worklogs posted to a
time-tracking service. Each workday is partitioned into exactly eight hours
across the issues the evidence points at.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(attributesCmd)
	rootCmd.AddCommand(worklogCmd)
}
