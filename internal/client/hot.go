package client

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/fatih/structs"
	"github.com/wikid-app/feed/internal/common"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/api"
	"github.com/wikid-app/feed/pkg/errorx"
	"github.com/wikid-app/feed/pkg/xcontext"
)

// HotCaller is the request/response collaborator of the feed: the read and
// write halves of the hot API.
type HotCaller interface {
	GetChannel(context.Context, *model.GetChannelRequest) (*model.GetChannelResponse, error)
	SelectChannel(context.Context, model.ChannelRef) error
	CreateMessage(context.Context, *model.CreateMessageRequest) (*model.CreateMessageResponse, error)
	EditMessage(context.Context, string, *model.EditMessageRequest) (*model.EditMessageResponse, error)
	ReactMessage(context.Context, string, *model.ReactMessageRequest) (*model.ReactMessageResponse, error)
}

type hotCaller struct {
	read  api.Generator
	write api.Generator
}

func NewHotCaller(read, write api.Generator) *hotCaller {
	return &hotCaller{read: read, write: write}
}

// NewHotCallerFromConfigs builds generators for the configured read and write
// base URLs, both carrying the wikid client header.
func NewHotCallerFromConfigs(ctx context.Context) *hotCaller {
	cfg := xcontext.Configs(ctx).HotAPI
	return NewHotCaller(
		api.NewGenerator(cfg.ReadURL).WithHeader("X-Wikid-Header", cfg.Header),
		api.NewGenerator(cfg.WriteURL).WithHeader("X-Wikid-Header", cfg.Header),
	)
}

func (c *hotCaller) GetChannel(
	ctx context.Context, req *model.GetChannelRequest,
) (*model.GetChannelResponse, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := observe(ctx, "get_channel", func() (*api.Response, error) {
		return c.read.New("/communities/%s/channels/%s",
			api.PathEscape(req.CommunityHandle), api.PathEscape(req.ChannelHandle)).
			Query(api.Parameter{"page": strconv.Itoa(req.Page)}).
			GET(ctx, bearer(ctx))
	})
	if err != nil {
		return nil, err
	}

	var channels []model.Channel
	if err := resp.Decode(&channels); err != nil {
		// Some deployments wrap the array as {"channel": [...]}.
		var wrapped struct {
			Channel []model.Channel `json:"channel"`
		}
		if werr := resp.Decode(&wrapped); werr != nil {
			return nil, err
		}
		channels = wrapped.Channel
	}

	if len(channels) == 0 {
		return nil, errorx.New(errorx.NotFound, "Not found channel %s", req.ChannelHandle)
	}

	return &model.GetChannelResponse{Channel: channels[0]}, nil
}

func (c *hotCaller) SelectChannel(ctx context.Context, ref model.ChannelRef) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := observe(ctx, "select_channel", func() (*api.Response, error) {
		body := structs.Map(model.SelectChannelRequest{ChannelHandle: ref.ChannelHandle})
		return c.write.New("/communities/%s/channels/select", api.PathEscape(ref.CommunityHandle)).
			Body(api.JSON(body)).
			POST(ctx, bearer(ctx))
	})
	return err
}

func (c *hotCaller) CreateMessage(
	ctx context.Context, req *model.CreateMessageRequest,
) (*model.CreateMessageResponse, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	form := api.NewMultipart().
		Field("text", req.Text).
		Field("channel_id", req.ChannelID.String())
	if !req.ParentID.IsZero() {
		form.Field("parent_id", req.ParentID.String())
	}
	if req.OptimisticUUID != "" {
		form.Field("optimistic_uuid", req.OptimisticUUID)
	}
	for _, f := range req.Files {
		form.File(api.MultipartFile{Field: "files", Name: f.Name, ContentType: f.MimeType, Data: f.Data})
	}

	resp, err := observe(ctx, "create_message", func() (*api.Response, error) {
		return c.write.New("/communities/%s/messages/create", api.PathEscape(req.CommunityHandle)).
			Body(form).
			POST(ctx, bearer(ctx))
	})
	if err != nil {
		return nil, err
	}

	var msg model.Message
	if err := resp.Decode(&msg); err != nil {
		return nil, err
	}

	if msg.ID.IsZero() {
		return nil, errorx.New(errorx.BadResponse, api.UnexpectedErrorMessage)
	}

	// The token is echoed back so the confirmation can be matched.
	if msg.OptimisticUUID == "" {
		msg.OptimisticUUID = req.OptimisticUUID
	}

	return &model.CreateMessageResponse{Message: msg}, nil
}

func (c *hotCaller) EditMessage(
	ctx context.Context, communityHandle string, req *model.EditMessageRequest,
) (*model.EditMessageResponse, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := observe(ctx, "edit_message", func() (*api.Response, error) {
		return c.write.New("/communities/%s/messages/edit", api.PathEscape(communityHandle)).
			Body(api.JSON(structs.Map(req))).
			POST(ctx, bearer(ctx))
	})
	if err != nil {
		return nil, err
	}

	var msg model.Message
	if err := resp.Decode(&msg); err != nil || msg.ID.IsZero() {
		return nil, errorx.New(errorx.BadResponse, api.UnexpectedErrorMessage)
	}

	// Only a full record is usable as a live-equivalent update.
	if msg.User.Handle == "" {
		return &model.EditMessageResponse{}, nil
	}

	return &model.EditMessageResponse{Message: &msg}, nil
}

func (c *hotCaller) ReactMessage(
	ctx context.Context, communityHandle string, req *model.ReactMessageRequest,
) (*model.ReactMessageResponse, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := observe(ctx, "react_message", func() (*api.Response, error) {
		return c.write.New("/communities/%s/messages/react", api.PathEscape(communityHandle)).
			Body(api.JSON(structs.Map(req))).
			POST(ctx, bearer(ctx))
	})
	if err != nil {
		return nil, err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, errorx.New(errorx.BadResponse, api.UnexpectedErrorMessage)
	}

	updated, err := body.GetBool("updated")
	if err != nil {
		return nil, errorx.New(errorx.BadResponse, api.UnexpectedErrorMessage)
	}

	return &model.ReactMessageResponse{Updated: updated}, nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, xcontext.Configs(ctx).HotAPI.Timeout)
}

func bearer(ctx context.Context) api.Opt {
	return api.Bearer(xcontext.ViewerToken(ctx))
}

func observe(ctx context.Context, endpoint string, call func() (*api.Response, error)) (*api.Response, error) {
	start := time.Now()
	resp, err := call()
	common.PromHistograms[common.HotAPIRequestDurationSeconds].
		WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	code := "ok"
	if err != nil {
		code = strconv.Itoa(int(errorx.CodeOf(err)))
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = errorx.New(errorx.Unavailable, api.UnableToConnectMessage)
		}
		xcontext.Logger(ctx).Warnf("Hot API %s failed: %v", endpoint, err)
	}
	common.IncCounter(common.HotAPIRequestTotal, endpoint, code)

	return resp, err
}
