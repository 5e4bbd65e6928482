package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssueKeys(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "Single key",
			text: "ABC-123 fix login redirect",
			want: []string{"ABC-123"},
		},
		{
			name: "Multiple keys preserve first-occurrence order",
			text: "Relates to XYZ-9 and ABC-123, see XYZ-9 again",
			want: []string{"XYZ-9", "ABC-123"},
		},
		{
			name: "Key with digits in prefix",
			text: "deploy B2B-77 config",
			want: []string{"B2B-77"},
		},
		{
			name: "Bracketed key",
			text: "[PROJ-42] update docs",
			want: []string{"PROJ-42"},
		},
		{
			name: "Lowercase prefix is not a key",
			text: "abc-123 is not a ticket",
			want: nil,
		},
		{
			name: "Embedded in a word is not a key",
			text: "xABC-123 should not match",
			want: nil,
		},
		{
			name: "No matches",
			text: "refactor allocation loop",
			want: nil,
		},
		{
			name: "Empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IssueKeys(tt.text))
		})
	}
}

func TestIssueKeysIdempotent(t *testing.T) {
	text := "ABC-1 then DEF-2 then ABC-1"

	first := IssueKeys(text)
	second := IssueKeys(text)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"ABC-1", "DEF-2"}, first)
}

func TestFirstIssueKey(t *testing.T) {
	assert.Equal(t, "ABC-1", FirstIssueKey("ABC-1 and DEF-2"))
	assert.Equal(t, "", FirstIssueKey("no keys here"))
}
