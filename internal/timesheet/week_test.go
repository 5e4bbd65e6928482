package timesheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMondayOf(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "Monday maps to itself",
			in:   time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC),
			want: monday,
		},
		{
			name: "Thursday maps back to Monday",
			in:   time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
			want: monday,
		},
		{
			name: "Sunday maps to the preceding Monday",
			in:   time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC),
			want: monday,
		},
		{
			name: "Saturday maps to the preceding Monday",
			in:   time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
			want: monday,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MondayOf(tt.in)
			assert.True(t, got.Equal(tt.want), "got %s", got)
			assert.Equal(t, time.Monday, got.Weekday())
		})
	}
}
