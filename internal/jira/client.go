// Package jira provides the issue-tracker directory used for matching and
// allocation.
package jira

import (
	"context"
	"fmt"

	jira "github.com/andygrunwald/go-jira"

	"github.com/ptomasek/tally/internal/config"
	"github.com/ptomasek/tally/internal/logging"
	"github.com/ptomasek/tally/pkg/models"
)

// candidateJQL scopes the heuristic matching pool: issues of the configured
// identity touched in the last 30 days and not yet done. The 30-day window
// is the documented recency choice and is applied on every run.
const candidateJQL = `(assignee = currentUser() OR reporter = currentUser()) AND updated >= -30d AND statusCategory != Done ORDER BY updated DESC`

// meetingJQL finds a project's designated recurring-meeting issue.
const meetingJQL = `project = "%s" AND (summary ~ "daily" OR summary ~ "meeting") AND statusCategory != Done ORDER BY created ASC`

// maxCandidates caps the matching pool per run.
const maxCandidates = 200

// Client handles interactions with the JIRA API.
type Client struct {
	client *jira.Client

	// estimateField is the custom field carrying the effort estimate.
	estimateField string
}

// NewClient creates a new JIRA client from configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return nil, err
	}

	tp := jira.BasicAuthTransport{
		Username: cfg.Jira.Username,
		Password: cfg.Jira.Token,
	}

	client, err := jira.NewClient(tp.Client(), cfg.Jira.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %v", err)
	}

	logging.Debug("jira client initialized",
		"url", cfg.Jira.BaseURL,
		"username", cfg.Jira.Username,
		"token", logging.MaskSensitive(cfg.Jira.Token))

	return &Client{
		client:        client,
		estimateField: cfg.Jira.EstimateField,
	}, nil
}

// GetIssueDetails fetches the summary and effort estimate of one issue.
func (c *Client) GetIssueDetails(ctx context.Context, key string) (models.IssueDetails, error) {
	issue, resp, err := c.client.Issue.GetWithContext(ctx, key, &jira.GetQueryOptions{
		Fields: "summary," + c.estimateField,
	})
	if err != nil {
		return models.IssueDetails{}, fmt.Errorf("failed to get issue %s: %v (status: %d)", key, err, statusCode(resp))
	}

	details := models.IssueDetails{
		Summary: issue.Fields.Summary,
	}
	if raw, ok := issue.Fields.Unknowns[c.estimateField]; ok {
		if estimate, ok := raw.(float64); ok && estimate > 0 {
			details.EffortEstimate = &estimate
		}
	}
	return details, nil
}

// SearchCandidateIssues returns the heuristic matching pool, ordered by the
// tracker's most-recently-updated ordering.
func (c *Client) SearchCandidateIssues(ctx context.Context) ([]models.CandidateIssue, error) {
	issues, resp, err := c.client.Issue.SearchWithContext(ctx, candidateJQL, &jira.SearchOptions{
		MaxResults: maxCandidates,
		Fields:     []string{"summary", "project"},
	})
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %v (status: %d)", err, statusCode(resp))
	}

	candidates := make([]models.CandidateIssue, 0, len(issues))
	for _, issue := range issues {
		candidates = append(candidates, models.CandidateIssue{
			Key:     issue.Key,
			Summary: issue.Fields.Summary,
			Project: issue.Fields.Project.Key,
		})
	}

	logging.Debug("fetched candidate issues", "count", len(candidates))
	return candidates, nil
}

// FindRecurringMeetingIssue returns the issue key a project books its
// recurring meetings against, or "" when the project has none.
func (c *Client) FindRecurringMeetingIssue(ctx context.Context, projectKey string) (string, error) {
	jql := fmt.Sprintf(meetingJQL, projectKey)
	issues, resp, err := c.client.Issue.SearchWithContext(ctx, jql, &jira.SearchOptions{
		MaxResults: 1,
		Fields:     []string{"summary"},
	})
	if err != nil {
		return "", fmt.Errorf("meeting issue search failed for %s: %v (status: %d)", projectKey, err, statusCode(resp))
	}
	if len(issues) == 0 {
		return "", nil
	}
	return issues[0].Key, nil
}

// ListProjects returns all projects visible to the configured identity.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	list, resp, err := c.client.Project.GetListWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %v (status: %d)", err, statusCode(resp))
	}

	projects := make([]models.Project, 0, len(*list))
	for _, project := range *list {
		projects = append(projects, models.Project{
			Key:  project.Key,
			Name: project.Name,
		})
	}
	return projects, nil
}

func statusCode(resp *jira.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
