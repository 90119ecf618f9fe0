package feed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func scrollable(top int) Viewport {
	return Viewport{Top: top, Height: 10000, ClientHeight: 800}
}

func Test_Pager_Placeholders(t *testing.T) {
	p := NewPager(100, 50)
	require.Equal(t, 0, p.Placeholders(0))
	require.Equal(t, 0, p.Placeholders(-1))
	require.Equal(t, 7, p.Placeholders(7))
	require.Equal(t, 50, p.Placeholders(500))
	require.Equal(t, 700, p.Threshold(7))
}

func Test_Pager_Observe(t *testing.T) {
	testCases := []struct {
		name      string
		first     Viewport
		second    Viewport
		remaining int
		want      bool
	}{
		{name: "near top", first: scrollable(900), second: scrollable(600), remaining: 7, want: true},
		{name: "same position", first: scrollable(600), second: scrollable(600), remaining: 7, want: true},
		{name: "above threshold", first: scrollable(900), second: scrollable(800), remaining: 7},
		{name: "scrolling down", first: scrollable(100), second: scrollable(200), remaining: 7},
		{name: "nothing left", first: scrollable(900), second: scrollable(0), remaining: 0},
		{
			name:      "not scrollable",
			first:     Viewport{Top: 0, Height: 500, ClientHeight: 800},
			second:    Viewport{Top: 0, Height: 500, ClientHeight: 800},
			remaining: 7,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPager(100, 50)

			_, ok := p.Observe(tc.first, tc.remaining)
			require.False(t, ok)

			page, ok := p.Observe(tc.second, tc.remaining)
			require.Equal(t, tc.want, ok)
			if tc.want {
				require.Equal(t, FirstBackfillPage, page)
				require.Equal(t, PagerRequesting, p.State())
			} else {
				require.Equal(t, PagerIdle, p.State())
			}
		})
	}
}

func Test_Pager_Cycle(t *testing.T) {
	p := NewPager(100, 50)
	p.Observe(scrollable(500), 100)

	page, ok := p.Observe(scrollable(400), 100)
	require.True(t, ok)
	require.Equal(t, 2, page)

	// At most one request in flight.
	_, ok = p.Observe(scrollable(300), 100)
	require.False(t, ok)

	require.False(t, p.Receive(3))
	require.True(t, p.Receive(2))
	require.Equal(t, PagerApplying, p.State())

	_, ok = p.Observe(scrollable(200), 100)
	require.True(t, ok)
	require.Equal(t, PagerRequesting, p.State())
}

func Test_Pager_AnchoredAdvances(t *testing.T) {
	p := NewPager(100, 50)
	p.Observe(scrollable(500), 100)
	page, _ := p.Observe(scrollable(400), 100)
	require.True(t, p.Receive(page))

	p.Anchored()
	require.Equal(t, PagerIdle, p.State())
	require.Equal(t, 3, p.NextPage())
}

func Test_Pager_FailRetriesSamePage(t *testing.T) {
	p := NewPager(100, 50)
	p.Observe(scrollable(500), 100)

	page, ok := p.Observe(scrollable(400), 100)
	require.True(t, ok)

	p.Fail(page)
	require.Equal(t, PagerIdle, p.State())
	require.Equal(t, 2, p.NextPage())

	retry, ok := p.Observe(scrollable(400), 100)
	require.True(t, ok)
	require.Equal(t, page, retry)
}
