package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/wikid-app/feed/config"
	"github.com/wikid-app/feed/internal/client"
	"github.com/wikid-app/feed/internal/domain/feed"
	"github.com/wikid-app/feed/internal/domain/live"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/jwt"
	"github.com/wikid-app/feed/pkg/logger"
	"github.com/wikid-app/feed/pkg/prometheus"
	"github.com/wikid-app/feed/pkg/redis"
	"github.com/wikid-app/feed/pkg/xcontext"
)

type srv struct {
	cli  *cli.App
	ctx  context.Context
	stop context.CancelFunc

	// rowHeight overrides the placeholder row height for renderers that
	// report scroll positions in lines.
	rowHeight int

	configs *config.Configs
	logger  logger.Logger
	claims  *jwt.Claims

	router *live.Router
	caller client.HotCaller
	feed   *feed.Feed
}

func (s *srv) loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String(configFlag.Name))
	if err != nil {
		return err
	}

	if s.rowHeight > 0 {
		cfg.Feed.PlaceholderRowHeight = s.rowHeight
	}

	s.configs = cfg
	return nil
}

// loadLogger writes to the configured log file, or to fallback.
func (s *srv) loadLogger(fallback io.Writer) error {
	w := fallback
	if s.configs.Log.File != "" {
		f, err := os.OpenFile(s.configs.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w = f
	}

	s.logger = logger.NewLoggerWithWriter(logger.ParseLevel(s.configs.Log.Level), w)
	return nil
}

func (s *srv) loadContext(ctx context.Context) {
	ctx, s.stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	ctx = xcontext.WithConfigs(ctx, *s.configs)
	ctx = xcontext.WithLogger(ctx, s.logger)
	ctx = xcontext.WithHTTPClient(ctx, &http.Client{Timeout: s.configs.HotAPI.Timeout})
	ctx = xcontext.WithViewerToken(ctx, s.configs.Session.JWT)
	s.ctx = ctx
}

// loadViewer inspects the session token. The feed works without one, but
// the backend rejects writes.
func (s *srv) loadViewer() {
	if s.configs.Session.JWT == "" {
		s.logger.Warnf("No session token, the feed is read-only")
		return
	}

	claims, err := jwt.Inspect(s.configs.Session.JWT)
	if err != nil {
		s.logger.Warnf("Cannot inspect session token: %v", err)
		return
	}

	if claims.Expired(time.Now()) {
		s.logger.Warnf("Session token of %s expired at %s", claims.Handle, claims.ExpiresAt.Time)
	}
	s.claims = claims
}

func (s *srv) loadLive() error {
	cfg := s.configs.Live

	var dial live.Dialer
	switch cfg.Transport {
	case config.TransportWebsocket:
		dial = live.WebsocketDialer(cfg.Endpoint, s.configs.Session.JWT, cfg.Compression)

	case config.TransportKafka:
		if s.configs.Kafka.Addr == "" {
			return errors.New("kafka transport needs KAFKA_ADDR")
		}
		dial = live.KafkaDialer(s.configs.Kafka, cfg.BufferSize)

	case config.TransportRedis:
		rdb, err := redis.NewClient(s.ctx, s.configs.Redis.Addr)
		if err != nil {
			return fmt.Errorf("cannot connect to redis: %w", err)
		}
		dial = live.RedisDialer(rdb, s.configs.Redis.ChannelPrefix, cfg.BufferSize)

	default:
		return fmt.Errorf("unknown live transport %q", cfg.Transport)
	}

	s.router = live.NewRouter(s.ctx, string(cfg.Transport), dial)
	return nil
}

func (s *srv) loadFeed() error {
	s.caller = client.NewHotCallerFromConfigs(s.ctx)

	f, err := feed.New(s.ctx, s.caller, s.router)
	if err != nil {
		return err
	}

	s.feed = f
	return nil
}

func (s *srv) startMetrics() {
	if s.configs.PrometheusServer.Port == "" {
		return
	}

	addr := s.configs.PrometheusServer.Address()
	server := &http.Server{Addr: addr, Handler: prometheus.NewHandler()}
	go func() {
		s.logger.Infof("Serve metrics on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("Metrics server stopped: %v", err)
		}
	}()

	go func() {
		<-s.ctx.Done()
		server.Close()
	}()
}

// setup loads everything a feed command needs and starts the feed loop.
func (s *srv) setup(c *cli.Context, logOutput io.Writer) error {
	if err := s.loadConfig(c); err != nil {
		return err
	}

	if err := s.loadLogger(logOutput); err != nil {
		return err
	}

	s.loadContext(c.Context)
	s.loadViewer()

	if err := s.loadLive(); err != nil {
		return err
	}

	if err := s.loadFeed(); err != nil {
		return err
	}

	s.startMetrics()

	go func() {
		if err := s.feed.Run(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Errorf("Feed stopped: %v", err)
		}
	}()

	return nil
}

func channelRef(c *cli.Context) model.ChannelRef {
	return model.ChannelRef{
		CommunityHandle: strings.TrimPrefix(c.String(communityFlag.Name), "@"),
		ChannelHandle:   strings.TrimPrefix(c.String(channelFlag.Name), "#"),
	}
}
