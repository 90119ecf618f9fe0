package feed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"github.com/wikid-app/feed/internal/domain/live"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/errorx"
	"github.com/wikid-app/feed/pkg/testutil"
)

func newSession(t *testing.T, messages ...model.Message) *Session {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	s := NewSession(testutil.ChannelRef, 1, node, testutil.MockConfigs().Feed)
	result := s.Load(testutil.Channel("42", 120, messages...))
	require.Equal(t, Result{Mutation: MutationReset, Effect: Effect{Kind: EffectBottom}}, result)
	return s
}

func liveEvent(t *testing.T, topic string, msg model.Message) []byte {
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return live.Encode(topic, b)
}

func Test_Session_Load(t *testing.T) {
	s := newSession(t, testutil.Message("1", testutil.Alice, "a"))

	require.Equal(t, model.ID("42"), s.ChannelID())
	require.Equal(t, testutil.Viewer, s.Viewer())
	require.Nil(t, s.Channel().Messages)
	require.Equal(t, 1, s.Store().Len())
	require.Equal(t, 50, s.Placeholders())
}

func Test_Session_ApplyEvent(t *testing.T) {
	s := newSession(t, testutil.Message("1", testutil.Alice, "a"))

	result, err := s.ApplyEvent(liveEvent(t, "42", testutil.Message("2", testutil.Bob, "b")))
	require.NoError(t, err)
	require.Equal(t, MutationAppended, result.Mutation)
	require.Equal(t, EffectBottom, result.Effect.Kind)

	_, err = s.ApplyEvent(liveEvent(t, "7", testutil.Message("3", testutil.Bob, "c")))
	require.ErrorIs(t, err, errorx.New(errorx.StaleChannel, ""))

	_, err = s.ApplyEvent([]byte(`{"topic":"42","message":"not json"}`))
	require.ErrorIs(t, err, errorx.New(errorx.BadResponse, ""))

	_, err = s.ApplyEvent([]byte(`garbage`))
	require.Error(t, err)

	require.Equal(t, []model.ID{"1", "2"}, testutil.IDs(s.Store().Messages()))
}

func Test_Session_ApplyEvent_ScrolledUp(t *testing.T) {
	s := newSession(t, testutil.Message("1", testutil.Alice, "a"))
	s.Scroll(Viewport{Top: 100, Height: 5000, ClientHeight: 800})

	result, err := s.ApplyEvent(liveEvent(t, "42", testutil.Message("2", testutil.Bob, "b")))
	require.NoError(t, err)
	require.Equal(t, EffectNone, result.Effect.Kind)

	result, err = s.ApplyEvent(liveEvent(t, "42", testutil.Message("3", testutil.Viewer, "mine")))
	require.NoError(t, err)
	require.Equal(t, EffectBottom, result.Effect.Kind)
}

func Test_Session_BeginSend(t *testing.T) {
	s := newSession(t, testutil.Message("1", testutil.Alice, "question"))
	require.NoError(t, s.SetReply("1"))
	require.Equal(t, model.ID("1"), s.Reply().TargetID)

	now := time.Now()
	req, result, err := s.BeginSend("answer", nil, nil, now)
	require.NoError(t, err)
	require.Equal(t, Result{Mutation: MutationAppended, Effect: Effect{Kind: EffectBottom}}, result)
	require.Equal(t, model.ID("42"), req.ChannelID)
	require.Equal(t, "wikid", req.CommunityHandle)
	require.Equal(t, model.ID("1"), req.ParentID)
	require.NotEmpty(t, req.OptimisticUUID)
	require.Nil(t, s.Reply())

	last, _ := s.Store().Last()
	require.True(t, last.Pending)
	require.True(t, IsPlaceholder(last.ID))
	require.Equal(t, model.ID("1"), last.Parent.ID)
	require.Equal(t, now, last.CreatedAt)

	_, _, err = s.BeginSend("  ", nil, nil, now)
	require.ErrorIs(t, err, errorx.New(errorx.BadRequest, ""))
}

func Test_Session_BeginSend_NoPermission(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ch := testutil.Channel("42", 0)
	ch.Community.Permissions.SendMessages = false

	s := NewSession(testutil.ChannelRef, 1, node, testutil.MockConfigs().Feed)
	s.Load(ch)

	_, _, err = s.BeginSend("hi", nil, nil, time.Now())
	require.ErrorIs(t, err, errorx.New(errorx.Unauthenticated, ""))
	require.Zero(t, s.Store().Len())
}

func Test_Session_ConfirmSend(t *testing.T) {
	s := newSession(t, testutil.Message("1", testutil.Alice, "a"))
	req, _, err := s.BeginSend("hi", nil, nil, time.Now())
	require.NoError(t, err)

	result, ok := s.ConfirmSend(req.OptimisticUUID, testutil.Message("2", testutil.Viewer, "hi"))
	require.True(t, ok)
	require.Equal(t, Result{Mutation: MutationReplaced, Effect: Effect{Kind: EffectNone}}, result)

	_, ok = s.ConfirmSend(req.OptimisticUUID, testutil.Message("2", testutil.Viewer, "hi"))
	require.False(t, ok)

	messages := s.Store().Messages()
	require.Equal(t, []model.ID{"1", "2"}, testutil.IDs(messages))
	require.False(t, messages[1].Pending)
}

func Test_Session_FailResend(t *testing.T) {
	s := newSession(t)
	req, _, err := s.BeginSend("hi", nil, nil, time.Now())
	require.NoError(t, err)

	_, ok := s.FailSend(req.OptimisticUUID)
	require.True(t, ok)

	msg, _ := s.Store().FindByToken(req.OptimisticUUID)
	require.Equal(t, model.Failed, msg.Status)

	retry, _, err := s.Resend(req.OptimisticUUID)
	require.NoError(t, err)
	require.NotEqual(t, req.OptimisticUUID, retry.OptimisticUUID)
	require.Equal(t, "hi", retry.Text)

	_, _, err = s.Resend(req.OptimisticUUID)
	require.ErrorIs(t, err, errorx.New(errorx.NotPending, ""))

	_, ok = s.ConfirmSend(req.OptimisticUUID, testutil.Message("2", testutil.Viewer, "hi"))
	require.False(t, ok)

	_, ok = s.ConfirmSend(retry.OptimisticUUID, testutil.Message("2", testutil.Viewer, "hi"))
	require.True(t, ok)
	require.Equal(t, []model.ID{"2"}, testutil.IDs(s.Store().Messages()))
}

func Test_Session_FailSend_AfterEcho(t *testing.T) {
	s := newSession(t, testutil.Message("1", testutil.Alice, "a"))
	req, _, err := s.BeginSend("hello", nil, nil, time.Now())
	require.NoError(t, err)

	result, err := s.ApplyEvent(liveEvent(t, "42", testutil.Message("2", testutil.Viewer, "hello")))
	require.NoError(t, err)
	require.Equal(t, MutationReplaced, result.Mutation)

	_, ok := s.FailSend(req.OptimisticUUID)
	require.False(t, ok)

	msg, ok := s.Store().Find("2")
	require.True(t, ok)
	require.False(t, msg.Pending)
	require.Equal(t, model.Sent, msg.Status)

	_, _, err = s.Resend(req.OptimisticUUID)
	require.ErrorIs(t, err, errorx.New(errorx.NotPending, ""))
	require.Zero(t, s.Tracker().Outstanding())
	require.Equal(t, []model.ID{"1", "2"}, testutil.IDs(s.Store().Messages()))
}

func Test_Session_Resend_AfterEcho(t *testing.T) {
	s := newSession(t)
	req, _, err := s.BeginSend("hello", nil, nil, time.Now())
	require.NoError(t, err)

	_, ok := s.FailSend(req.OptimisticUUID)
	require.True(t, ok)

	// The request timed out but the backend stored the message.
	_, err = s.ApplyEvent(liveEvent(t, "42", testutil.Message("2", testutil.Viewer, "hello")))
	require.NoError(t, err)

	_, _, err = s.Resend(req.OptimisticUUID)
	require.ErrorIs(t, err, errorx.New(errorx.NotPending, ""))

	messages := s.Store().Messages()
	require.Equal(t, []model.ID{"2"}, testutil.IDs(messages))
	require.Equal(t, model.Sent, messages[0].Status)
}

func Test_Session_ApplyPage(t *testing.T) {
	s := newSession(t, testutil.Message("50", testutil.Alice, "newest"))
	s.Scroll(Viewport{Top: 600, Height: 5000, ClientHeight: 800})

	page, ok := s.Scroll(Viewport{Top: 400, Height: 5000, ClientHeight: 800})
	require.True(t, ok)
	require.Equal(t, 2, page)

	_, ok = s.ApplyPage(3, testutil.Channel("42", 70))
	require.False(t, ok)

	result, ok := s.ApplyPage(page, testutil.Channel("42", 70,
		testutil.Message("48", testutil.Bob, "older"),
		testutil.Message("49", testutil.Bob, "old"),
	))
	require.True(t, ok)
	require.Equal(t, Result{Mutation: MutationPrepended, Effect: Effect{Kind: EffectAnchor, AnchorID: "50"}}, result)
	require.Equal(t, 70, s.Store().Remaining())
	require.Equal(t, PagerApplying, s.Pager().State())

	s.Anchored()
	require.Equal(t, PagerIdle, s.Pager().State())
	require.Equal(t, 3, s.Pager().NextPage())
}

func Test_Session_Edit(t *testing.T) {
	s := newSession(t,
		testutil.Message("1", testutil.Alice, "theirs"),
		testutil.Message("2", testutil.Viewer, "mine"),
	)

	req, result, err := s.Edit("2", "fixed")
	require.NoError(t, err)
	require.Equal(t, &model.EditMessageRequest{MessageID: "2", Text: "fixed"}, req)
	require.Equal(t, EffectNone, result.Effect.Kind)

	msg, _ := s.Store().Find("2")
	require.Equal(t, "fixed", msg.Text)
	require.True(t, msg.Edited)

	_, _, err = s.Edit("1", "hijack")
	require.ErrorIs(t, err, errorx.New(errorx.Unauthenticated, ""))

	_, _, err = s.Edit("9", "missing")
	require.ErrorIs(t, err, errorx.New(errorx.NotFound, ""))
}

func Test_Session_Edit_GroupedRecord(t *testing.T) {
	s := newSession(t, testutil.Message("2", testutil.Viewer, "mine"))

	result, err := s.ApplyEvent(liveEvent(t, "42", testutil.Message("3", testutil.Viewer, "more")))
	require.NoError(t, err)
	require.Equal(t, MutationMerged, result.Mutation)

	_, _, err = s.Edit("3", "changed")
	require.ErrorIs(t, err, errorx.New(errorx.BadRequest, ""))

	msg, ok := s.Store().Find("3")
	require.True(t, ok)
	require.Equal(t, model.ID("2"), msg.ID)
	require.Equal(t, "mine\nmore", msg.Text)
	require.False(t, msg.Edited)
}

func Test_Session_React(t *testing.T) {
	s := newSession(t, testutil.Message("1", testutil.Alice, "a"))

	req, _, err := s.React("1", "🔥")
	require.NoError(t, err)
	require.Equal(t, &model.ReactMessageRequest{MessageID: "1", Reaction: "🔥"}, req)

	msg, _ := s.Store().Find("1")
	require.Equal(t, []model.Reactor{{UserID: "1", UserHandle: "viewer"}}, msg.Reactions["🔥"])

	_, _, err = s.React("1", "🔥")
	require.NoError(t, err)
	msg, _ = s.Store().Find("1")
	require.Empty(t, msg.Reactions)

	_, _, err = s.React("1", "")
	require.Error(t, err)
}

func Test_Session_CancelReply(t *testing.T) {
	s := newSession(t, testutil.Message("1", testutil.Alice, "a"))
	require.Error(t, s.SetReply("9"))

	require.NoError(t, s.SetReply("1"))
	s.CancelReply()
	require.Nil(t, s.Reply())
}
