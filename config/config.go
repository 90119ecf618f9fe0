package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/wikid-app/feed/pkg/enum"
)

// Transport names the live event source.
type Transport string

var (
	TransportWebsocket = enum.New(Transport("websocket"), "websocket", "ws")
	TransportKafka     = enum.New(Transport("kafka"), "kafka")
	TransportRedis     = enum.New(Transport("redis"), "redis")
)

type Configs struct {
	Env string `toml:"env"`

	Log              LogConfigs     `toml:"log"`
	HotAPI           HotAPIConfigs  `toml:"hot_api"`
	Live             LiveConfigs    `toml:"live"`
	Feed             FeedConfigs    `toml:"feed"`
	Session          SessionConfigs `toml:"session"`
	Redis            RedisConfigs   `toml:"redis"`
	Kafka            KafkaConfigs   `toml:"kafka"`
	PrometheusServer ServerConfigs  `toml:"prometheus_server"`
}

type LogConfigs struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type HotAPIConfigs struct {
	ReadURL  string        `toml:"read_url"`
	WriteURL string        `toml:"write_url"`
	Header   string        `toml:"header"`
	Timeout  time.Duration `toml:"timeout"`
}

type LiveConfigs struct {
	Transport      Transport     `toml:"transport"`
	Endpoint       string        `toml:"endpoint"`
	Compression    bool          `toml:"compression"`
	ReconnectDelay time.Duration `toml:"reconnect_delay"`
	BufferSize     int           `toml:"buffer_size"`
}

type FeedConfigs struct {
	PageSize             int   `toml:"page_size"`
	MaxPlaceholders      int   `toml:"max_placeholders"`
	PlaceholderRowHeight int   `toml:"placeholder_row_height"`
	UpdateBuffer         int   `toml:"update_buffer"`
	SnowflakeNode        int64 `toml:"snowflake_node"`
}

type SessionConfigs struct {
	JWT string `toml:"jwt"`
}

type RedisConfigs struct {
	Addr          string `toml:"addr"`
	ChannelPrefix string `toml:"channel_prefix"`
}

type KafkaConfigs struct {
	Addr    string `toml:"addr"`
	GroupID string `toml:"group_id"`
	Topic   string `toml:"topic"`
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func Default() Configs {
	return Configs{
		Env: "local",
		Log: LogConfigs{Level: "info"},
		HotAPI: HotAPIConfigs{
			ReadURL:  "http://localhost:3005/v1",
			WriteURL: "http://localhost:3005/v1",
			Timeout:  15 * time.Second,
		},
		Live: LiveConfigs{
			Transport:      TransportWebsocket,
			Endpoint:       "ws://localhost:3006/ws",
			ReconnectDelay: 5 * time.Second,
			BufferSize:     128,
		},
		Feed: FeedConfigs{
			PageSize:             50,
			MaxPlaceholders:      50,
			PlaceholderRowHeight: 100,
			UpdateBuffer:         64,
			SnowflakeNode:        1,
		},
		Redis: RedisConfigs{ChannelPrefix: "wikid:channel:"},
		Kafka: KafkaConfigs{GroupID: "wikid-feed", Topic: "wikid.messages"},
	}
}

// Load builds the configuration from defaults, an optional TOML file, an
// optional .env file and the process environment, in that order.
func Load(path string) (*Configs, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot decode config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cannot load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnv(cfg *Configs) error {
	setString(&cfg.Env, "ENV")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.File, "LOG_FILE")
	setString(&cfg.HotAPI.ReadURL, "READ_HOT_URL")
	setString(&cfg.HotAPI.WriteURL, "WRITE_HOT_URL")
	setString(&cfg.HotAPI.Header, "X_WICKED_HEADER")
	if v := strings.TrimSpace(os.Getenv("LIVE_TRANSPORT")); v != "" {
		cfg.Live.Transport = Transport(v)
	}
	setString(&cfg.Live.Endpoint, "WS_URL")
	setString(&cfg.Session.JWT, "WIKID_JWT")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Kafka.Addr, "KAFKA_ADDR")
	setString(&cfg.PrometheusServer.Port, "PROMETHEUS_PORT")

	if v := strings.TrimSpace(os.Getenv("HOT_API_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid HOT_API_TIMEOUT value %q: %w", v, err)
		}
		cfg.HotAPI.Timeout = d
	}

	if v := strings.TrimSpace(os.Getenv("LIVE_COMPRESSION")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LIVE_COMPRESSION value %q: %w", v, err)
		}
		cfg.Live.Compression = b
	}

	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (cfg *Configs) Validate() error {
	if cfg.HotAPI.ReadURL == "" || cfg.HotAPI.WriteURL == "" {
		return errors.New("hot api urls must not be empty")
	}

	if cfg.HotAPI.Timeout <= 0 {
		return errors.New("hot api timeout must be positive")
	}

	transport, err := enum.ToEnum[Transport](strings.ToLower(string(cfg.Live.Transport)))
	if err != nil {
		return fmt.Errorf("unknown live transport %q", cfg.Live.Transport)
	}
	cfg.Live.Transport = transport

	if cfg.Feed.PageSize <= 0 || cfg.Feed.MaxPlaceholders < 0 || cfg.Feed.PlaceholderRowHeight <= 0 {
		return errors.New("feed sizes must be positive")
	}

	return nil
}
