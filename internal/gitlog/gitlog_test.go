package gitlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLog(t *testing.T) {
	output := "\x1e" + "aaa111\x1f2026-03-02\x1fABC-1 rework allocation loop\n" +
		"10\t2\tinternal/allocate/allocate.go\n" +
		"5\t0\tinternal/allocate/allocate_test.go\n" +
		"\x1e" + "bbb222\x1f2026-03-03\x1ftypo fix\n" +
		"1\t1\tREADME.md\n" +
		"\x1e" + "ccc333\x1f2026-03-03\x1fABC-1 ABC-2 shared cleanup\n" +
		"-\t-\tassets/logo.png\n" +
		"30\t12\tinternal/match/matcher.go\n"

	commits, err := parseLog(output, "tally")
	require.NoError(t, err)
	require.Len(t, commits, 3)

	first := commits[0]
	assert.Equal(t, "aaa111", first.Hash)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, []string{"ABC-1"}, first.IssueKeys)
	assert.Equal(t, 17, first.LinesChanged)
	assert.Equal(t, "tally", first.Project)

	// 2 lines changed is floored to the minimum weight.
	second := commits[1]
	assert.Empty(t, second.IssueKeys)
	assert.Equal(t, 10, second.LinesChanged)

	// Binary markers count zero; both keys extracted.
	third := commits[2]
	assert.Equal(t, []string{"ABC-1", "ABC-2"}, third.IssueKeys)
	assert.Equal(t, 42, third.LinesChanged)
}

func TestParseLogEmpty(t *testing.T) {
	commits, err := parseLog("", "tally")
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestParseLogMalformedHeader(t *testing.T) {
	_, err := parseLog("\x1e"+"only-a-hash\n", "tally")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed log header")
}

func TestParseLogBadDate(t *testing.T) {
	_, err := parseLog("\x1e"+"aaa\x1fnot-a-date\x1fsubject\n", "tally")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad commit date")
}
