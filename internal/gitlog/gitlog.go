// Package gitlog reads commit history from a local repository using the
// git CLI.
package gitlog

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ptomasek/tally/internal/extract"
	"github.com/ptomasek/tally/internal/logging"
	"github.com/ptomasek/tally/pkg/models"
)

// Record and field separators for machine-readable git log output.
const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"
)

// Source lists commits from one local repository, filtered by author.
type Source struct {
	gitPath  string
	repoPath string
	author   string
	project  string
}

// NewSource creates a commit source for the repository at repoPath.
// It verifies that git is available and that the path is a repository.
func NewSource(ctx context.Context, repoPath, author string) (*Source, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, gitPath, "-C", repoPath, "rev-parse", "--git-dir")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s is not a git repository: %w", repoPath, err)
	}

	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", repoPath, err)
	}

	return &Source{
		gitPath:  gitPath,
		repoPath: repoPath,
		author:   author,
		project:  filepath.Base(abs),
	}, nil
}

// Name identifies the source in warnings and logs.
func (s *Source) Name() string {
	return "git:" + s.project
}

// ListCommits returns the author's commits in the inclusive date range,
// merges excluded, with lines-changed summed from numstat output.
func (s *Source) ListCommits(ctx context.Context, from, to time.Time) ([]models.Commit, error) {
	args := []string{
		"-C", s.repoPath,
		"log",
		"--no-merges",
		"--date=short",
		fmt.Sprintf("--since=%s 00:00", from.Format("2006-01-02")),
		fmt.Sprintf("--until=%s 23:59", to.Format("2006-01-02")),
		"--pretty=format:" + recordSep + "%H" + fieldSep + "%ad" + fieldSep + "%s",
		"--numstat",
	}
	if s.author != "" {
		args = append(args, "--author="+s.author)
	}

	cmd := exec.CommandContext(ctx, s.gitPath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git log failed in %s: %w", s.repoPath, err)
	}

	commits, err := parseLog(string(output), s.project)
	if err != nil {
		return nil, fmt.Errorf("failed to parse git log output: %w", err)
	}

	logging.Debug("listed commits",
		"repo", s.project,
		"count", len(commits),
		"from", from.Format("2006-01-02"),
		"to", to.Format("2006-01-02"))
	return commits, nil
}

// parseLog converts git log records (pretty format plus numstat) into
// commits. Binary file markers ("-") contribute zero lines.
func parseLog(output, project string) ([]models.Commit, error) {
	var commits []models.Commit

	for _, record := range strings.Split(output, recordSep) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}

		lines := strings.Split(record, "\n")
		header := strings.Split(lines[0], fieldSep)
		if len(header) != 3 {
			return nil, fmt.Errorf("malformed log header %q", lines[0])
		}
		hash, dateStr, subject := header[0], header[1], header[2]

		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("bad commit date %q: %w", dateStr, err)
		}

		linesChanged := 0
		for _, line := range lines[1:] {
			fields := strings.Fields(line)
			if len(fields) < 3 {
				continue
			}
			if added, err := strconv.Atoi(fields[0]); err == nil {
				linesChanged += added
			}
			if deleted, err := strconv.Atoi(fields[1]); err == nil {
				linesChanged += deleted
			}
		}
		if linesChanged < models.MinLinesChanged {
			linesChanged = models.MinLinesChanged
		}

		commits = append(commits, models.Commit{
			Hash:         hash,
			Date:         date,
			Message:      subject,
			IssueKeys:    extract.IssueKeys(subject),
			Project:      project,
			LinesChanged: linesChanged,
		})
	}
	return commits, nil
}
