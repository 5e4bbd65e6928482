package allocate

import (
	"github.com/ptomasek/tally/pkg/models"
)

// CommitGroup is all of one day's commits naming the same issue key.
type CommitGroup struct {
	// IssueKey is the shared issue key
	IssueKey string

	// Project is the repository the group's commits came from
	Project string

	// Commits are the qualifying commits, in collection order
	Commits []models.Commit

	// LinesChanged is the summed lines-changed across the group
	LinesChanged int

	// Multiplier is the effort-estimate multiplier, 1 when the issue
	// carries no estimate or the lookup failed
	Multiplier float64
}

// Strategy computes the allocation weight of a commit group. Larger weights
// receive proportionally more of the day's available time.
type Strategy interface {
	Weight(group CommitGroup) float64
}

// LinesTimesEstimate is the canonical weighting: summed lines changed
// multiplied by the issue's effort-estimate multiplier.
type LinesTimesEstimate struct{}

func (LinesTimesEstimate) Weight(group CommitGroup) float64 {
	return float64(group.LinesChanged) * group.Multiplier
}

// CommitCount weights a group by its number of commits, ignoring size and
// estimates. Kept as the simplest alternative strategy.
type CommitCount struct{}

func (CommitCount) Weight(group CommitGroup) float64 {
	return float64(len(group.Commits))
}
