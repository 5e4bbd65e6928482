// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Jira   JiraConfig
	Tempo  TempoConfig
	GitHub GitHubConfig
	Graph  GraphConfig
	Git    GitConfig
	Sync   SyncConfig
}

// JiraConfig holds issue-tracker specific configuration.
type JiraConfig struct {
	BaseURL  string
	Username string
	Token    string

	// EstimateField is the custom field carrying the effort estimate.
	EstimateField string
}

// TempoConfig holds worklog-sink specific configuration.
type TempoConfig struct {
	URL    string
	Token  string
	Worker string
}

// GitHubConfig holds the optional GitHub commit source configuration.
type GitHubConfig struct {
	Token  string
	Domain string
}

// GraphConfig holds the optional Microsoft Graph mail/calendar source
// configuration.
type GraphConfig struct {
	Token    string
	Timezone string
}

// GitConfig holds local commit collection configuration.
type GitConfig struct {
	// Author filters git history to the configured identity.
	Author string
}

// SyncConfig holds the fixed recurring meeting durations.
type SyncConfig struct {
	DailySyncHours  float64
	WeeklySyncHours float64
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	// Initialize Viper for environment variables
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.token", "JIRA_TOKEN")
	v.BindEnv("jira.estimate_field", "JIRA_ESTIMATE_FIELD")
	v.BindEnv("tempo.url", "TEMPO_URL")
	v.BindEnv("tempo.token", "TEMPO_TOKEN")
	v.BindEnv("tempo.worker", "TEMPO_WORKER")
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")
	v.BindEnv("graph.token", "GRAPH_TOKEN")
	v.BindEnv("graph.timezone", "GRAPH_TIMEZONE")
	v.BindEnv("git.author", "GIT_AUTHOR")
	v.BindEnv("sync.daily_hours", "SYNC_DAILY_HOURS")
	v.BindEnv("sync.weekly_hours", "SYNC_WEEKLY_HOURS")

	v.SetDefault("jira.estimate_field", "customfield_10016")
	v.SetDefault("github.domain", "github.com")
	v.SetDefault("sync.daily_hours", 0.25)
	v.SetDefault("sync.weekly_hours", 1.0)

	// Create config structure
	config := &Config{
		Jira: JiraConfig{
			BaseURL:       v.GetString("jira.url"),
			Username:      v.GetString("jira.username"),
			Token:         v.GetString("jira.token"),
			EstimateField: v.GetString("jira.estimate_field"),
		},
		Tempo: TempoConfig{
			URL:    v.GetString("tempo.url"),
			Token:  v.GetString("tempo.token"),
			Worker: v.GetString("tempo.worker"),
		},
		GitHub: GitHubConfig{
			Token:  v.GetString("github.token"),
			Domain: v.GetString("github.domain"),
		},
		Graph: GraphConfig{
			Token:    v.GetString("graph.token"),
			Timezone: v.GetString("graph.timezone"),
		},
		Git: GitConfig{
			Author: v.GetString("git.author"),
		},
		Sync: SyncConfig{
			DailySyncHours:  v.GetFloat64("sync.daily_hours"),
			WeeklySyncHours: v.GetFloat64("sync.weekly_hours"),
		},
	}

	return config, nil
}

// ValidateJiraConfig validates issue-tracker specific configuration.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	if config.Jira.BaseURL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Username == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if config.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// ValidateTempoConfig validates worklog-sink specific configuration.
func ValidateTempoConfig(config *Config) error {
	var missingVars []string

	if config.Tempo.URL == "" {
		missingVars = append(missingVars, "TEMPO_URL")
	}
	if config.Tempo.Token == "" {
		missingVars = append(missingVars, "TEMPO_TOKEN")
	}
	if config.Tempo.Worker == "" {
		missingVars = append(missingVars, "TEMPO_WORKER")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// ValidateGitHubConfig validates the optional GitHub commit source
// configuration; only needed when a GitHub repository is configured.
func ValidateGitHubConfig(config *Config) error {
	if config.GitHub.Token == "" {
		return fmt.Errorf("missing required environment variables: [GITHUB_TOKEN]")
	}
	return nil
}
