package feed

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/wikid-app/feed/config"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/errorx"
)

// ReplyDraft is the message the next send replies to.
type ReplyDraft struct {
	TargetID model.ID
	Parent   *model.ParentMessage
}

// Result is returned by every session operation that mutates the store.
type Result struct {
	Mutation Mutation
	Effect   Effect
}

// Session is the state of the selected channel. It is owned by the feed
// event loop and must not be used concurrently.
type Session struct {
	ref     model.ChannelRef
	channel model.Channel
	viewer  model.User
	epoch   uint64

	store   *Store
	pager   *Pager
	tracker *Tracker
	reply   *ReplyDraft

	viewport Viewport
}

func NewSession(ref model.ChannelRef, epoch uint64, node *snowflake.Node, cfg config.FeedConfigs) *Session {
	return &Session{
		ref:     ref,
		epoch:   epoch,
		store:   NewStore(),
		pager:   NewPager(cfg.PlaceholderRowHeight, cfg.MaxPlaceholders),
		tracker: NewTracker(node),
	}
}

func (s *Session) Ref() model.ChannelRef {
	return s.ref
}

func (s *Session) Epoch() uint64 {
	return s.epoch
}

func (s *Session) ChannelID() model.ID {
	return s.channel.ID
}

func (s *Session) Channel() model.Channel {
	return s.channel
}

func (s *Session) Viewer() model.User {
	return s.viewer
}

func (s *Session) Store() *Store {
	return s.store
}

func (s *Session) Pager() *Pager {
	return s.pager
}

func (s *Session) Tracker() *Tracker {
	return s.tracker
}

func (s *Session) Reply() *ReplyDraft {
	if s.reply == nil {
		return nil
	}

	r := *s.reply
	return &r
}

func (s *Session) Placeholders() int {
	return s.pager.Placeholders(s.store.Remaining())
}

// Load resets the session with the initial channel load.
func (s *Session) Load(ch model.Channel) Result {
	messages := ch.Messages
	ch.Messages = nil

	s.channel = ch
	s.viewer = ch.User
	s.reply = nil
	s.store.Reset(messages, ch.RemainingMessages)
	return s.result(MutationReset, false, "")
}

// ApplyEvent feeds one raw push event through the live update path.
func (s *Session) ApplyEvent(raw []byte) (Result, error) {
	topic, msg, err := DecodeEvent(raw)
	if err != nil {
		return Result{}, err
	}

	if topic != s.channel.ID.String() {
		return Result{}, errorx.New(errorx.StaleChannel, "Event for topic %s, expected %s", topic, s.channel.ID)
	}

	return s.ApplyIncoming(msg), nil
}

func (s *Session) ApplyIncoming(msg model.Message) Result {
	mutation := s.store.ApplyIncoming(msg)
	if msg.OptimisticUUID != "" && mutation == MutationReplaced {
		s.tracker.Confirm(msg.OptimisticUUID)
	}

	return s.result(mutation, msg.User.Same(s.viewer), "")
}

// BeginSend applies a local send optimistically and returns the request to
// issue. The reply draft is consumed.
func (s *Session) BeginSend(
	text string, attachments []model.Attachment, files []model.LocalFile, now time.Time,
) (*model.CreateMessageRequest, Result, error) {
	if strings.TrimSpace(text) == "" && len(files) == 0 {
		return nil, Result{}, errorx.New(errorx.BadRequest, "Empty message")
	}

	if s.channel.Community != nil && !s.channel.Community.Permissions.SendMessages {
		return nil, Result{}, errorx.New(errorx.Unauthenticated, "Not allowed to send messages in this channel")
	}

	draft := Draft{
		Author:     s.viewer,
		Text:       text,
		Files:      attachments,
		LocalFiles: files,
		At:         now,
	}

	if s.reply != nil {
		draft.Parent = s.reply.Parent
		s.reply = nil
	}

	token, placeholder := s.tracker.Begin(draft)
	mutation := s.store.ApplyOptimistic(draft.Message(), token, placeholder)
	return s.createRequest(token, draft), s.result(mutation, true, ""), nil
}

// ConfirmSend reconciles the send of token with the record returned by the
// backend. A token confirms at most once.
func (s *Session) ConfirmSend(token string, confirmed model.Message) (Result, bool) {
	if !s.tracker.Confirm(token) {
		return Result{}, false
	}

	mutation, ok := s.store.ReconcileOptimistic(token, confirmed)
	if !ok {
		return Result{}, false
	}

	return s.result(mutation, true, ""), true
}

// FailSend marks the send of token as failed. A send whose echo already
// arrived on the live stream is stored by the backend and cannot fail.
func (s *Session) FailSend(token string) (Result, bool) {
	if s.settled(token) {
		return Result{}, false
	}

	if !s.tracker.Fail(token) || !s.store.MarkFailed(token) {
		return Result{}, false
	}

	return s.result(MutationReplaced, true, ""), true
}

// Resend issues a failed send again under a fresh token.
func (s *Session) Resend(token string) (*model.CreateMessageRequest, Result, error) {
	if s.settled(token) {
		return nil, Result{}, errorx.New(errorx.NotPending, "Send %s already delivered", token)
	}

	newToken, draft, ok := s.tracker.Resend(token)
	if !ok {
		return nil, Result{}, errorx.New(errorx.NotPending, "No failed send for %s", token)
	}

	s.store.Retoken(token, newToken)
	return s.createRequest(newToken, draft), s.result(MutationReplaced, true, ""), nil
}

// Scroll records the viewport and returns the history page to fetch, if the
// pager decides one is due.
func (s *Session) Scroll(v Viewport) (int, bool) {
	s.viewport = v
	return s.pager.Observe(v, s.store.Remaining())
}

// ApplyPage prepends a page of older history. Responses for a page the pager
// is not waiting for are ignored.
func (s *Session) ApplyPage(page int, ch model.Channel) (Result, bool) {
	if !s.pager.Receive(page) {
		return Result{}, false
	}

	var previousFirst model.ID
	if first, ok := s.store.First(); ok {
		previousFirst = first.ID
	}

	if s.store.Prepend(ch.Messages, ch.RemainingMessages) == 0 {
		s.pager.Anchored()
		return s.result(MutationNone, false, ""), true
	}

	return s.result(MutationPrepended, false, previousFirst), true
}

func (s *Session) FailPage(page int) {
	s.pager.Fail(page)
}

// Anchored tells the pager the renderer applied the last prepend.
func (s *Session) Anchored() {
	s.pager.Anchored()
}

// Edit applies an edit of one of the viewer's confirmed messages locally and
// returns the request to issue.
func (s *Session) Edit(id model.ID, text string) (*model.EditMessageRequest, Result, error) {
	msg, ok := s.store.Find(id)
	if !ok {
		return nil, Result{}, errorx.New(errorx.NotFound, "Not found message %s", id)
	}

	if !msg.User.Same(s.viewer) {
		return nil, Result{}, errorx.New(errorx.Unauthenticated, "Cannot edit a message of another user")
	}

	if msg.Pending || IsPlaceholder(id) {
		return nil, Result{}, errorx.New(errorx.BadRequest, "Cannot edit a message being sent")
	}

	if msg.ID != id {
		return nil, Result{}, errorx.New(errorx.BadRequest, "Cannot edit a message grouped into %s", msg.ID)
	}

	if strings.TrimSpace(text) == "" {
		return nil, Result{}, errorx.New(errorx.BadRequest, "Empty message")
	}

	s.store.Update(id, func(m *model.Message) {
		m.Text = text
		m.Edited = true
	})

	return &model.EditMessageRequest{MessageID: id, Text: text}, s.result(MutationReplaced, true, ""), nil
}

// React toggles the viewer's reaction locally and returns the request to
// issue.
func (s *Session) React(id model.ID, symbol string) (*model.ReactMessageRequest, Result, error) {
	if symbol == "" {
		return nil, Result{}, errorx.New(errorx.BadRequest, "Empty reaction")
	}

	if IsPlaceholder(id) {
		return nil, Result{}, errorx.New(errorx.BadRequest, "Cannot react to a message being sent")
	}

	reactor := model.Reactor{UserID: s.viewer.ID, UserHandle: s.viewer.Handle}
	if !s.store.Update(id, func(m *model.Message) { m.ToggleReaction(symbol, reactor) }) {
		return nil, Result{}, errorx.New(errorx.NotFound, "Not found message %s", id)
	}

	return &model.ReactMessageRequest{MessageID: id, Reaction: symbol}, s.result(MutationReplaced, true, ""), nil
}

// SetReply starts a reply to id. Pending messages cannot be replied to.
func (s *Session) SetReply(id model.ID) error {
	msg, ok := s.store.Find(id)
	if !ok {
		return errorx.New(errorx.NotFound, "Not found message %s", id)
	}

	if msg.Pending || IsPlaceholder(id) {
		return errorx.New(errorx.BadRequest, "Cannot reply to a message being sent")
	}

	s.reply = &ReplyDraft{TargetID: id, Parent: msg.Snapshot()}
	return nil
}

func (s *Session) CancelReply() {
	s.reply = nil
}

// settled reports whether the store resolved the send of token, through its
// live echo, while the tracker still waits for the request to return. The
// tracker forgets such a token.
func (s *Session) settled(token string) bool {
	if _, ok := s.tracker.Status(token); !ok || s.store.Outstanding(token) {
		return false
	}

	s.tracker.Confirm(token)
	return true
}

func (s *Session) createRequest(token string, d Draft) *model.CreateMessageRequest {
	req := &model.CreateMessageRequest{
		CommunityHandle: s.ref.CommunityHandle,
		ChannelID:       s.channel.ID,
		Text:            d.Text,
		Files:           d.LocalFiles,
		OptimisticUUID:  token,
	}

	if d.Parent != nil {
		req.ParentID = d.Parent.ID
	}

	return req
}

func (s *Session) result(mutation Mutation, byViewer bool, previousFirst model.ID) Result {
	return Result{
		Mutation: mutation,
		Effect: Decide(Change{
			Mutation:      mutation,
			ByViewer:      byViewer,
			WasAtBottom:   s.viewport.AtBottom(),
			PreviousFirst: previousFirst,
		}),
	}
}
