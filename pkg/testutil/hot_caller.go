package testutil

import (
	"context"

	"github.com/wikid-app/feed/internal/model"
)

type MockHotCaller struct {
	GetChannelFunc    func(context.Context, *model.GetChannelRequest) (*model.GetChannelResponse, error)
	SelectChannelFunc func(context.Context, model.ChannelRef) error
	CreateMessageFunc func(context.Context, *model.CreateMessageRequest) (*model.CreateMessageResponse, error)
	EditMessageFunc   func(context.Context, string, *model.EditMessageRequest) (*model.EditMessageResponse, error)
	ReactMessageFunc  func(context.Context, string, *model.ReactMessageRequest) (*model.ReactMessageResponse, error)
}

func (m *MockHotCaller) GetChannel(
	ctx context.Context, req *model.GetChannelRequest,
) (*model.GetChannelResponse, error) {
	if m.GetChannelFunc != nil {
		return m.GetChannelFunc(ctx, req)
	}

	panic("not implemented")
}

func (m *MockHotCaller) SelectChannel(ctx context.Context, ref model.ChannelRef) error {
	if m.SelectChannelFunc != nil {
		return m.SelectChannelFunc(ctx, ref)
	}

	return nil
}

func (m *MockHotCaller) CreateMessage(
	ctx context.Context, req *model.CreateMessageRequest,
) (*model.CreateMessageResponse, error) {
	if m.CreateMessageFunc != nil {
		return m.CreateMessageFunc(ctx, req)
	}

	panic("not implemented")
}

func (m *MockHotCaller) EditMessage(
	ctx context.Context, communityHandle string, req *model.EditMessageRequest,
) (*model.EditMessageResponse, error) {
	if m.EditMessageFunc != nil {
		return m.EditMessageFunc(ctx, communityHandle, req)
	}

	panic("not implemented")
}

func (m *MockHotCaller) ReactMessage(
	ctx context.Context, communityHandle string, req *model.ReactMessageRequest,
) (*model.ReactMessageResponse, error) {
	if m.ReactMessageFunc != nil {
		return m.ReactMessageFunc(ctx, communityHandle, req)
	}

	panic("not implemented")
}
