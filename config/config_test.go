package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, TransportWebsocket, cfg.Live.Transport)
	require.Equal(t, 50, cfg.Feed.PageSize)
	require.Equal(t, 15*time.Second, cfg.HotAPI.Timeout)
}

func Test_Load_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "feed.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[hot_api]
read_url = "https://read.example.com/v1"
timeout = "3s"

[live]
transport = "redis"

[feed]
page_size = 20
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WIKID_JWT=from-dotenv\n"), 0o600))

	t.Setenv("WRITE_HOT_URL", "https://write.example.com/v1")
	t.Setenv("LIVE_COMPRESSION", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://read.example.com/v1", cfg.HotAPI.ReadURL)
	require.Equal(t, "https://write.example.com/v1", cfg.HotAPI.WriteURL)
	require.Equal(t, 3*time.Second, cfg.HotAPI.Timeout)
	require.Equal(t, TransportRedis, cfg.Live.Transport)
	require.True(t, cfg.Live.Compression)
	require.Equal(t, 20, cfg.Feed.PageSize)
	require.Equal(t, "from-dotenv", cfg.Session.JWT)
}

func Test_Load_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	testCases := []struct {
		name string
		key  string
		val  string
	}{
		{name: "transport", key: "LIVE_TRANSPORT", val: "carrier-pigeon"},
		{name: "timeout", key: "HOT_API_TIMEOUT", val: "soon"},
		{name: "compression", key: "LIVE_COMPRESSION", val: "maybe"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := Load("")
			require.Error(t, err)
		})
	}
}

func Test_Configs_Validate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Live.Transport = "WS"
	require.NoError(t, cfg.Validate())
	require.Equal(t, TransportWebsocket, cfg.Live.Transport)

	cfg.Feed.PlaceholderRowHeight = 0
	require.Error(t, cfg.Validate())
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(prev)) })
}
