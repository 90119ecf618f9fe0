package feed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/wikid-app/feed/config"
	"github.com/wikid-app/feed/internal/client"
	"github.com/wikid-app/feed/internal/common"
	"github.com/wikid-app/feed/internal/domain/live"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/errorx"
	"github.com/wikid-app/feed/pkg/xcontext"
)

var ErrNoChannel = errorx.New(errorx.NotFound, "No channel selected")

// LiveSource delivers the raw push events of a topic.
type LiveSource interface {
	Subscribe(ctx context.Context, topic string) (*live.Subscription, error)
}

// Update is the snapshot handed to the renderer after every state change.
// Result.Effect must be applied right after drawing Messages.
type Update struct {
	Ref          model.ChannelRef
	Channel      model.Channel
	Viewer       model.User
	Messages     []model.Message
	Remaining    int
	Placeholders int
	Reply        *ReplyDraft
	Loading      bool
	Result       Result
	Err          error
}

// Feed serializes every mutation of the selected channel on one goroutine.
// Network calls run concurrently and post their results back; results of a
// previous selection are discarded by epoch.
type Feed struct {
	caller client.HotCaller
	source LiveSource
	node   *snowflake.Node
	cfg    config.FeedConfigs
	now    func() time.Time

	tasks   chan func(context.Context)
	updates chan Update
	done    chan struct{}

	session *Session
	sub     *live.Subscription
	epoch   uint64
}

func New(ctx context.Context, caller client.HotCaller, source LiveSource) (*Feed, error) {
	cfg := xcontext.Configs(ctx).Feed

	node := xcontext.SnowFlake(ctx)
	if node == nil {
		var err error
		node, err = snowflake.NewNode(cfg.SnowflakeNode)
		if err != nil {
			return nil, err
		}
	}

	bufferSize := cfg.UpdateBuffer
	if bufferSize <= 0 {
		bufferSize = 64
	}

	return &Feed{
		caller:  caller,
		source:  source,
		node:    node,
		cfg:     cfg,
		now:     time.Now,
		tasks:   make(chan func(context.Context), bufferSize),
		updates: make(chan Update, bufferSize),
		done:    make(chan struct{}),
	}, nil
}

func (f *Feed) Updates() <-chan Update {
	return f.updates
}

// Run processes operations, responses and live events until ctx is done.
func (f *Feed) Run(ctx context.Context) error {
	defer close(f.done)
	defer f.unsubscribe(ctx)

	for {
		var events <-chan []byte
		if f.sub != nil {
			events = f.sub.C()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case task := <-f.tasks:
			task(ctx)

		case raw, ok := <-events:
			if !ok {
				f.sub = nil
				continue
			}
			f.handleEvent(ctx, raw)
		}
	}
}

// Select switches to another channel. Everything in flight for the previous
// one is discarded.
func (f *Feed) Select(ref model.ChannelRef) {
	f.post(func(ctx context.Context) {
		f.epoch++
		f.unsubscribe(ctx)
		f.session = NewSession(ref, f.epoch, f.node, f.cfg)
		f.emit(ctx, Result{}, nil, true)

		epoch := f.epoch
		go func() {
			resp, err := f.caller.GetChannel(ctx, &model.GetChannelRequest{ChannelRef: ref, Page: 0})
			f.post(func(ctx context.Context) { f.loaded(ctx, epoch, resp, err) })
		}()
	})
}

func (f *Feed) Send(text string, files []model.LocalFile) {
	f.post(func(ctx context.Context) {
		s, ok := f.ready(ctx)
		if !ok {
			return
		}

		attachments := make([]model.Attachment, 0, len(files))
		for _, file := range files {
			attachments = append(attachments, common.LocalAttachment(ctx, file))
		}

		req, result, err := s.BeginSend(text, attachments, files, f.now())
		if err != nil {
			f.emit(ctx, Result{}, err, false)
			return
		}

		f.emit(ctx, result, nil, false)
		f.dispatchSend(ctx, s.Epoch(), req)
	})
}

// Resend retries a failed send identified by its last correlation token.
func (f *Feed) Resend(token string) {
	f.post(func(ctx context.Context) {
		s, ok := f.ready(ctx)
		if !ok {
			return
		}

		req, result, err := s.Resend(token)
		if err != nil {
			f.emit(ctx, Result{}, err, false)
			return
		}

		f.emit(ctx, result, nil, false)
		f.dispatchSend(ctx, s.Epoch(), req)
	})
}

func (f *Feed) Edit(id model.ID, text string) {
	f.post(func(ctx context.Context) {
		s, ok := f.ready(ctx)
		if !ok {
			return
		}

		previous, _ := s.Store().Find(id)
		req, result, err := s.Edit(id, text)
		if err != nil {
			f.emit(ctx, Result{}, err, false)
			return
		}
		f.emit(ctx, result, nil, false)

		epoch := s.Epoch()
		community := s.Ref().CommunityHandle
		go func() {
			resp, err := f.caller.EditMessage(ctx, community, req)
			f.post(func(ctx context.Context) {
				s, ok := f.current(ctx, epoch, "edit")
				if !ok {
					return
				}

				if err != nil {
					f.revert(ctx, s, previous, err)
					return
				}

				if resp.Message != nil {
					f.emit(ctx, s.ApplyIncoming(*resp.Message), nil, false)
				}
			})
		}()
	})
}

func (f *Feed) React(id model.ID, symbol string) {
	f.post(func(ctx context.Context) {
		s, ok := f.ready(ctx)
		if !ok {
			return
		}

		previous, _ := s.Store().Find(id)
		req, result, err := s.React(id, symbol)
		if err != nil {
			f.emit(ctx, Result{}, err, false)
			return
		}
		f.emit(ctx, result, nil, false)

		epoch := s.Epoch()
		community := s.Ref().CommunityHandle
		go func() {
			resp, err := f.caller.ReactMessage(ctx, community, req)
			f.post(func(ctx context.Context) {
				s, ok := f.current(ctx, epoch, "react")
				if !ok {
					return
				}

				if err == nil && !resp.Updated {
					err = errorx.New(errorx.BadResponse, "Reaction was not updated")
				}

				if err != nil {
					f.revert(ctx, s, previous, err)
				}
			})
		}()
	})
}

// Scroll reports the viewport position. It may start a history fetch.
func (f *Feed) Scroll(v Viewport) {
	f.post(func(ctx context.Context) {
		s := f.session
		if s == nil || s.ChannelID().IsZero() {
			return
		}

		page, ok := s.Scroll(v)
		if !ok {
			return
		}

		epoch := s.Epoch()
		ref := s.Ref()
		xcontext.Logger(ctx).Debugf("Fetch page %d of channel %s", page, ref.ChannelHandle)
		go func() {
			resp, err := f.caller.GetChannel(ctx, &model.GetChannelRequest{ChannelRef: ref, Page: page})
			f.post(func(ctx context.Context) { f.paged(ctx, epoch, page, resp, err) })
		}()
	})
}

// Anchored is called by the renderer once it applied an anchor effect.
func (f *Feed) Anchored() {
	f.post(func(ctx context.Context) {
		if f.session != nil {
			f.session.Anchored()
		}
	})
}

func (f *Feed) Reply(id model.ID) {
	f.post(func(ctx context.Context) {
		s, ok := f.ready(ctx)
		if !ok {
			return
		}

		f.emit(ctx, Result{}, s.SetReply(id), false)
	})
}

func (f *Feed) CancelReply() {
	f.post(func(ctx context.Context) {
		if f.session == nil {
			return
		}

		f.session.CancelReply()
		f.emit(ctx, Result{}, nil, false)
	})
}

func (f *Feed) loaded(ctx context.Context, epoch uint64, resp *model.GetChannelResponse, err error) {
	s, ok := f.current(ctx, epoch, "load")
	if !ok {
		return
	}

	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load channel %s: %v", s.Ref().ChannelHandle, err)
		f.emit(ctx, Result{}, err, false)
		return
	}

	result := s.Load(resp.Channel)
	f.subscribe(ctx, s.ChannelID().String())
	f.emit(ctx, result, nil, false)

	ref := s.Ref()
	go func() {
		if err := f.caller.SelectChannel(ctx, ref); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot mark channel %s as selected: %v", ref.ChannelHandle, err)
		}
	}()
}

func (f *Feed) paged(ctx context.Context, epoch uint64, page int, resp *model.GetChannelResponse, err error) {
	s, ok := f.current(ctx, epoch, "paginate")
	if !ok {
		return
	}

	if err != nil {
		s.FailPage(page)
		xcontext.Logger(ctx).Warnf("Cannot load page %d of channel %s: %v", page, s.Ref().ChannelHandle, err)
		f.emit(ctx, Result{}, err, false)
		return
	}

	result, ok := s.ApplyPage(page, resp.Channel)
	if !ok {
		return
	}

	f.emit(ctx, result, nil, false)
}

func (f *Feed) dispatchSend(ctx context.Context, epoch uint64, req *model.CreateMessageRequest) {
	go func() {
		resp, err := f.caller.CreateMessage(ctx, req)
		f.post(func(ctx context.Context) {
			s, ok := f.current(ctx, epoch, "send")
			if !ok {
				return
			}

			if err != nil {
				common.IncCounter(common.FeedSendsTotal, "failed")
				xcontext.Logger(ctx).Warnf("Cannot send message %s: %v", req.OptimisticUUID, err)
				if result, ok := s.FailSend(req.OptimisticUUID); ok {
					f.emit(ctx, result, err, false)
				}
				return
			}

			common.IncCounter(common.FeedSendsTotal, "confirmed")
			if result, ok := s.ConfirmSend(req.OptimisticUUID, resp.Message); ok {
				f.emit(ctx, result, nil, false)
			}
		})
	}()
}

func (f *Feed) handleEvent(ctx context.Context, raw []byte) {
	if f.session == nil {
		return
	}

	result, err := f.session.ApplyEvent(raw)
	if err != nil {
		if errors.Is(err, errorx.New(errorx.StaleChannel, "")) {
			common.IncCounter(common.FeedLiveEventsTotal, "foreign")
			xcontext.Logger(ctx).Debugf("Drop live event: %v", err)
			return
		}

		common.IncCounter(common.FeedLiveEventsTotal, "malformed")
		xcontext.Logger(ctx).Errorf("Cannot apply live event: %v", err)
		return
	}

	common.IncCounter(common.FeedLiveEventsTotal, "applied")
	f.emit(ctx, result, nil, false)
}

func (f *Feed) revert(ctx context.Context, s *Session, previous model.Message, err error) {
	xcontext.Logger(ctx).Warnf("Cannot update message %s: %v", previous.ID, err)
	s.Store().Update(previous.ID, func(m *model.Message) {
		m.Text = previous.Text
		m.Edited = previous.Edited
		m.Reactions = previous.Reactions
	})
	f.emit(ctx, Result{Mutation: MutationReplaced, Effect: Effect{Kind: EffectNone}}, err, false)
}

func (f *Feed) subscribe(ctx context.Context, topic string) {
	if f.source == nil {
		return
	}

	sub, err := f.source.Subscribe(ctx, topic)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot subscribe to channel %s: %v", topic, err)
		return
	}

	f.sub = sub
}

func (f *Feed) unsubscribe(ctx context.Context) {
	if f.sub != nil {
		f.sub.Unsubscribe(ctx)
		f.sub = nil
	}
}

// current returns the session if epoch is still the selected one.
func (f *Feed) current(ctx context.Context, epoch uint64, operation string) (*Session, bool) {
	if f.session == nil || f.session.Epoch() != epoch {
		common.IncCounter(common.FeedStaleResponsesTotal, operation)
		xcontext.Logger(ctx).Debugf("Discard stale %s response of epoch %d", operation, epoch)
		return nil, false
	}

	return f.session, true
}

// ready returns the session once its channel is loaded, or emits an error.
func (f *Feed) ready(ctx context.Context) (*Session, bool) {
	if f.session == nil || f.session.ChannelID().IsZero() {
		f.emit(ctx, Result{}, ErrNoChannel, false)
		return nil, false
	}

	return f.session, true
}

func (f *Feed) post(task func(context.Context)) {
	select {
	case f.tasks <- task:
	case <-f.done:
	}
}

func (f *Feed) emit(ctx context.Context, result Result, err error, loading bool) {
	if result.Mutation != MutationNone {
		common.IncCounter(common.FeedMutationsTotal, result.Mutation.String())
	}

	update := Update{Result: result, Err: err, Loading: loading}
	if s := f.session; s != nil {
		update.Ref = s.Ref()
		update.Channel = s.Channel()
		update.Viewer = s.Viewer()
		update.Messages = s.Store().Messages()
		update.Remaining = s.Store().Remaining()
		update.Placeholders = s.Placeholders()
		update.Reply = s.Reply()
	}

	select {
	case f.updates <- update:
	case <-ctx.Done():
	}
}
