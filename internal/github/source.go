// Package github collects commits from repositories hosted on GitHub for
// which no local clone is available.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/ptomasek/tally/internal/config"
	"github.com/ptomasek/tally/internal/extract"
	"github.com/ptomasek/tally/internal/logging"
	"github.com/ptomasek/tally/pkg/models"
)

// Source lists commits of one GitHub repository, filtered by author.
type Source struct {
	client *github.Client
	owner  string
	repo   string
	author string
}

// NewSource creates a commit source for a repository in "owner/repo" form.
// It authenticates with the configured token, supports GitHub Enterprise
// domains, and verifies the token before returning.
func NewSource(ctx context.Context, cfg *config.Config, repository, author string) (*Source, error) {
	if err := config.ValidateGitHubConfig(cfg); err != nil {
		return nil, err
	}

	parts := strings.Split(repository, "/")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repository)
	}

	domain := cfg.GitHub.Domain
	if domain == "" {
		domain = "github.com"
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.GitHub.Token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	if domain != "github.com" {
		apiURL, err := url.Parse(fmt.Sprintf("https://%s/api/v3/", domain))
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		client.BaseURL = apiURL
		client.UploadURL = apiURL
	}

	// Test the token
	testCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user, _, err := client.Users.Get(testCtx, "")
	if err != nil {
		return nil, fmt.Errorf("error testing github token: %w", err)
	}

	logging.Info("github authentication successful",
		"username", user.GetLogin(),
		"repository", repository)

	return &Source{
		client: client,
		owner:  parts[0],
		repo:   parts[1],
		author: author,
	}, nil
}

// Name identifies the source in warnings and logs.
func (s *Source) Name() string {
	return "github:" + s.owner + "/" + s.repo
}

// ListCommits returns the author's commits in the inclusive date range.
// The list endpoint omits diff stats, so each commit is fetched once more
// for its additions/deletions.
func (s *Source) ListCommits(ctx context.Context, from, to time.Time) ([]models.Commit, error) {
	opts := &github.CommitsListOptions{
		Author: s.author,
		Since:  from,
		Until:  to.AddDate(0, 0, 1),
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var listed []*github.RepositoryCommit
	for {
		commits, resp, err := s.client.Repositories.ListCommits(ctx, s.owner, s.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits for %s/%s: %v", s.owner, s.repo, err)
		}

		listed = append(listed, commits...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	project := s.repo
	var result []models.Commit
	for _, listedCommit := range listed {
		sha := listedCommit.GetSHA()

		detail, _, err := s.client.Repositories.GetCommit(ctx, s.owner, s.repo, sha, nil)
		if err != nil {
			logging.Warn("failed to fetch commit stats, using minimum weight",
				"sha", sha,
				"error", err)
			detail = listedCommit
		}

		linesChanged := 0
		if stats := detail.GetStats(); stats != nil {
			linesChanged = stats.GetAdditions() + stats.GetDeletions()
		}
		if linesChanged < models.MinLinesChanged {
			linesChanged = models.MinLinesChanged
		}

		message := detail.GetCommit().GetMessage()
		if i := strings.IndexByte(message, '\n'); i >= 0 {
			message = message[:i]
		}

		result = append(result, models.Commit{
			Hash:         sha,
			Date:         detail.GetCommit().GetAuthor().GetDate(),
			Message:      message,
			IssueKeys:    extract.IssueKeys(message),
			Project:      project,
			LinesChanged: linesChanged,
		})
	}

	logging.Debug("listed github commits",
		"repository", s.owner+"/"+s.repo,
		"count", len(result))
	return result, nil
}
