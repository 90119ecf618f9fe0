package feed

import "github.com/wikid-app/feed/internal/model"

type EffectKind int

const (
	// EffectNone leaves the viewport where it is.
	EffectNone EffectKind = iota

	// EffectBottom scrolls to the newest message.
	EffectBottom

	// EffectAnchor keeps Effect.AnchorID at the same visual position.
	EffectAnchor
)

func (k EffectKind) String() string {
	switch k {
	case EffectBottom:
		return "bottom"
	case EffectAnchor:
		return "anchor"
	default:
		return "none"
	}
}

// Effect is the viewport adjustment the renderer must perform right after
// drawing the mutation it is attached to.
type Effect struct {
	Kind     EffectKind
	AnchorID model.ID
}

// Change describes one store mutation as seen by the scroll-anchor policy.
type Change struct {
	Mutation Mutation

	// ByViewer is true when the mutated message was authored by the local
	// viewer.
	ByViewer bool

	// WasAtBottom is the viewport state before the mutation.
	WasAtBottom bool

	// PreviousFirst is the id of the first message before a prepend.
	PreviousFirst model.ID
}

// Decide returns the viewport effect for a change.
func Decide(c Change) Effect {
	switch c.Mutation {
	case MutationReset:
		return Effect{Kind: EffectBottom}

	case MutationAppended, MutationMerged:
		if c.ByViewer || c.WasAtBottom {
			return Effect{Kind: EffectBottom}
		}
		return Effect{Kind: EffectNone}

	case MutationPrepended:
		if c.PreviousFirst.IsZero() {
			return Effect{Kind: EffectBottom}
		}
		return Effect{Kind: EffectAnchor, AnchorID: c.PreviousFirst}

	default:
		return Effect{Kind: EffectNone}
	}
}

// Viewport is the last scroll position reported by the renderer, in the
// renderer's units (pixels for a browser, lines for a terminal).
type Viewport struct {
	Top          int
	Height       int
	ClientHeight int
}

func (v Viewport) Scrollable() bool {
	return v.Height > v.ClientHeight
}

// AtBottom tolerates one unit of rounding.
func (v Viewport) AtBottom() bool {
	if !v.Scrollable() {
		return true
	}

	return v.Top+v.ClientHeight >= v.Height-1
}
