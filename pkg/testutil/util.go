package testutil

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/wikid-app/feed/config"
	"github.com/wikid-app/feed/pkg/logger"
	"github.com/wikid-app/feed/pkg/xcontext"
)

func MockConfigs() config.Configs {
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.HotAPI.Timeout = time.Second
	cfg.Live.ReconnectDelay = 10 * time.Millisecond
	cfg.Live.BufferSize = 16
	return cfg
}

func MockContext() context.Context {
	return MockContextWithConfigs(MockConfigs())
}

func MockContextWithConfigs(cfg config.Configs) context.Context {
	node, err := snowflake.NewNode(cfg.Feed.SnowflakeNode)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.ParseLevel(cfg.Log.Level)))
	ctx = xcontext.WithSnowFlake(ctx, node)
	return ctx
}

func MockContextWithViewerToken(token string) context.Context {
	return xcontext.WithViewerToken(MockContext(), token)
}

// Eventually polls cond until it holds or the timeout elapses.
func Eventually(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
