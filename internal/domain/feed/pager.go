package feed

import "github.com/pkg/math"

type PagerState int

const (
	PagerIdle PagerState = iota
	PagerRequesting
	PagerApplying
)

func (s PagerState) String() string {
	switch s {
	case PagerRequesting:
		return "requesting"
	case PagerApplying:
		return "applying"
	default:
		return "idle"
	}
}

// FirstBackfillPage is the first page fetched by scrolling. The initial
// channel load is page 0 and already covers what page 1 would return.
const FirstBackfillPage = 2

// Pager decides when to fetch older history. At most one page is in flight,
// and the next request only starts once the previous page was applied and
// the viewport re-anchored.
type Pager struct {
	state    PagerState
	nextPage int
	inflight int

	prevTop    int
	hasPrevTop bool

	rowHeight       int
	maxPlaceholders int
}

func NewPager(rowHeight, maxPlaceholders int) *Pager {
	return &Pager{
		state:           PagerIdle,
		nextPage:        FirstBackfillPage,
		rowHeight:       rowHeight,
		maxPlaceholders: maxPlaceholders,
	}
}

func (p *Pager) State() PagerState {
	return p.state
}

func (p *Pager) NextPage() int {
	return p.nextPage
}

// Placeholders is the number of skeleton rows shown above the oldest loaded
// message.
func (p *Pager) Placeholders(remaining int) int {
	if remaining <= 0 {
		return 0
	}
	return math.MinInt(remaining, p.maxPlaceholders)
}

// Threshold is the scroll offset under which the next page is requested.
func (p *Pager) Threshold(remaining int) int {
	return p.rowHeight * p.Placeholders(remaining)
}

// Observe handles a scroll notification and returns the page to request,
// if any. The first observation only records the position. A scroll report
// while applying means the renderer already drew the prepended page.
func (p *Pager) Observe(v Viewport, remaining int) (int, bool) {
	p.Anchored()

	if !v.Scrollable() || remaining <= 0 {
		return 0, false
	}

	if !p.hasPrevTop {
		p.prevTop = v.Top
		p.hasPrevTop = true
		return 0, false
	}

	scrollingDown := v.Top > p.prevTop
	p.prevTop = v.Top
	if scrollingDown {
		return 0, false
	}

	if p.state != PagerIdle || v.Top > p.Threshold(remaining) {
		return 0, false
	}

	p.state = PagerRequesting
	p.inflight = p.nextPage
	return p.inflight, true
}

// Receive moves a successful response for page into the applying state.
func (p *Pager) Receive(page int) bool {
	if p.state != PagerRequesting || page != p.inflight {
		return false
	}

	p.state = PagerApplying
	return true
}

// Anchored completes the cycle once the renderer re-anchored the viewport.
func (p *Pager) Anchored() {
	if p.state != PagerApplying {
		return
	}

	p.state = PagerIdle
	p.nextPage = p.inflight + 1
}

// Fail returns to idle without advancing so the same page is retried on the
// next eligible scroll.
func (p *Pager) Fail(page int) {
	if p.state != PagerRequesting || page != p.inflight {
		return
	}

	p.state = PagerIdle
}
