package rediskit

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	base := Config{Host: "localhost", KeyPrefix: "agro"}

	cases := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"valid single node", func(c *Config) {}, ""},
		{"missing host", func(c *Config) { c.Host = "" }, "host"},
		{"missing prefix", func(c *Config) { c.KeyPrefix = "" }, "key_prefix"},
		{"negative db", func(c *Config) { c.DB = -1 }, "db"},
		{"both modes", func(c *Config) {
			c.Cluster.Enabled = true
			c.Cluster.Nodes = []string{"n1:6379"}
			c.Sentinel.Enabled = true
		}, "cluster/sentinel"},
		{"cluster without nodes", func(c *Config) { c.Cluster.Enabled = true }, "cluster.nodes"},
		{"cluster ignores host", func(c *Config) {
			c.Host = ""
			c.Cluster.Enabled = true
			c.Cluster.Nodes = []string{"n1:6379"}
		}, ""},
		{"sentinel without sentinels", func(c *Config) { c.Sentinel.Enabled = true }, "sentinel.sentinels"},
		{"sentinel without master", func(c *Config) {
			c.Sentinel.Enabled = true
			c.Sentinel.Sentinels = []string{"s1:26379"}
		}, "sentinel.master_name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.wantField, ce.Field)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: redis.internal
port: 6380
key_prefix: agro
max_memory: 256mb
eviction_policy: allkeys-lru
read_timeout: 2s
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "redis.internal", cfg.Host)
	assert.Equal(t, "redis.internal:6380", cfg.addr())
	assert.Equal(t, "256mb", cfg.MaxMemory)
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)

	_, err = LoadConfig(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("host: [unterminated"), 0o600))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("host: h\n"), 0o600))
	_, err = LoadConfig(invalid)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestConfigAddrDefaultsPort(t *testing.T) {
	assert.Equal(t, "h:6379", Config{Host: "h"}.addr())
}

func TestNewFromConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := Config{Host: host, Port: port, KeyPrefix: "agro"}
	cl, err := NewFromConfig(cfg, Options{WatchdogInterval: -1})
	require.NoError(t, err)
	defer cl.Close(context.Background())

	ctx := context.Background()
	require.True(t, cl.Set(ctx, "k", "v", time.Hour))
	assert.True(t, mr.Exists("agro:k"), "namespace defaults to the key prefix")
}

func TestNewFromConfigUnreachableBackend(t *testing.T) {
	cfg := Config{
		Host:        "127.0.0.1",
		Port:        1, // nothing listens here
		KeyPrefix:   "agro",
		DialTimeout: 100 * time.Millisecond,
	}
	_, err := NewFromConfig(cfg, Options{})
	assert.Error(t, err, "construction is the only place failures are fatal")
}
