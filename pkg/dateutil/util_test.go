package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStamp(t *testing.T) {
	now := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "today", t: now.Add(-2 * time.Hour), want: "10:00"},
		{name: "yesterday", t: now.AddDate(0, 0, -1), want: "Yesterday 12:00"},
		{name: "this week", t: now.AddDate(0, 0, -3), want: "Mon 12:00"},
		{name: "this year", t: now.AddDate(0, -2, 0), want: "Apr 15 12:00"},
		{name: "older", t: now.AddDate(-1, 0, 0), want: "Jun 15 2022"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Stamp(tc.t, now))
		})
	}
}
