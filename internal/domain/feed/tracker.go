package feed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/wikid-app/feed/internal/model"
)

// Draft is everything needed to build, and rebuild on resend, a send
// request.
type Draft struct {
	Author     model.User
	Text       string
	Parent     *model.ParentMessage
	Files      []model.Attachment
	LocalFiles []model.LocalFile
	At         time.Time
}

// Message is the optimistic rendition of the draft.
func (d Draft) Message() model.Message {
	return model.Message{
		User:      d.Author,
		Text:      d.Text,
		CreatedAt: d.At,
		UpdatedAt: d.At,
		Parent:    d.Parent,
		Files:     d.Files,
	}
}

type send struct {
	draft  Draft
	status model.SendStatus
}

// Tracker issues correlation tokens and placeholder ids and remembers every
// send until it is confirmed. Tokens are never reused.
type Tracker struct {
	node     *snowflake.Node
	newToken func() string
	sends    map[string]*send
}

func NewTracker(node *snowflake.Node) *Tracker {
	return &Tracker{
		node:     node,
		newToken: uuid.NewString,
		sends:    map[string]*send{},
	}
}

// Begin registers a new in-flight send.
func (t *Tracker) Begin(d Draft) (string, model.ID) {
	token := t.newToken()
	t.sends[token] = &send{draft: d, status: model.Unsent}
	return token, t.placeholder()
}

// Confirm forgets token. It returns false when token is unknown, which is
// the case of a late confirmation for a send that was already resolved.
func (t *Tracker) Confirm(token string) bool {
	if _, ok := t.sends[token]; !ok {
		return false
	}

	delete(t.sends, token)
	return true
}

func (t *Tracker) Fail(token string) bool {
	s, ok := t.sends[token]
	if !ok || s.status != model.Unsent {
		return false
	}

	s.status = model.Failed
	return true
}

// Resend moves a failed send to a fresh token.
func (t *Tracker) Resend(token string) (string, Draft, bool) {
	s, ok := t.sends[token]
	if !ok || s.status != model.Failed {
		return "", Draft{}, false
	}

	delete(t.sends, token)

	newToken := t.newToken()
	t.sends[newToken] = &send{draft: s.draft, status: model.Unsent}
	return newToken, s.draft, true
}

func (t *Tracker) Status(token string) (model.SendStatus, bool) {
	s, ok := t.sends[token]
	if !ok {
		return model.Sent, false
	}
	return s.status, true
}

func (t *Tracker) Outstanding() int {
	return len(t.sends)
}

func (t *Tracker) placeholder() model.ID {
	return model.ID(PlaceholderPrefix + t.node.Generate().String())
}
