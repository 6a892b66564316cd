package rediskit

import (
	"context"
	"fmt"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// Config is the file-level configuration surface. Mode selection
// (single-node vs cluster vs sentinel) happens exactly once, inside
// NewFromConfig; call sites never branch on deployment shape.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// KeyPrefix isolates deployments/environments sharing one backend.
	KeyPrefix string `yaml:"key_prefix"`

	// MaxMemory and EvictionPolicy are forwarded to the backend with
	// CONFIG SET at startup, best effort (managed providers often forbid
	// CONFIG). Values use redis syntax, e.g. "256mb", "allkeys-lru".
	MaxMemory      string `yaml:"max_memory"`
	EvictionPolicy string `yaml:"eviction_policy"`

	DialTimeout  time.Duration `yaml:"dial_timeout"`  // 0 => 5s
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // 0 => 3s
	WriteTimeout time.Duration `yaml:"write_timeout"` // 0 => 3s
	PoolSize     int           `yaml:"pool_size"`     // 0 => driver default
	MinIdleConns int           `yaml:"min_idle_conns"`

	Cluster  ClusterConfig  `yaml:"cluster"`
	Sentinel SentinelConfig `yaml:"sentinel"`
}

type ClusterConfig struct {
	Enabled bool     `yaml:"enabled"`
	Nodes   []string `yaml:"nodes"`
}

type SentinelConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Sentinels  []string `yaml:"sentinels"`
	MasterName string   `yaml:"master_name"`
}

// LoadConfig reads and validates a yaml config file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("rediskit: read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("rediskit: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate enforces the construction-time invariants. Errors here are fatal
// by design: a cache layer that cannot reach its configured backend shape
// must not silently run degraded forever.
func (cfg Config) Validate() error {
	if cfg.Cluster.Enabled && cfg.Sentinel.Enabled {
		return configErr("cluster/sentinel", "mutually exclusive modes both enabled")
	}
	switch {
	case cfg.Cluster.Enabled:
		if len(cfg.Cluster.Nodes) == 0 {
			return configErr("cluster.nodes", "required when cluster mode is enabled")
		}
	case cfg.Sentinel.Enabled:
		if len(cfg.Sentinel.Sentinels) == 0 {
			return configErr("sentinel.sentinels", "required when sentinel mode is enabled")
		}
		if cfg.Sentinel.MasterName == "" {
			return configErr("sentinel.master_name", "required when sentinel mode is enabled")
		}
	default:
		if cfg.Host == "" {
			return configErr("host", "required")
		}
	}
	if cfg.DB < 0 {
		return configErr("db", "must be >= 0")
	}
	if cfg.KeyPrefix == "" {
		return configErr("key_prefix", "required")
	}
	return nil
}

func (cfg Config) addr() string {
	port := cfg.Port
	if port == 0 {
		port = 6379
	}
	return fmt.Sprintf("%s:%d", cfg.Host, port)
}

// dial builds the redis client for the configured mode and verifies
// connectivity once. The returned client reconnects transparently after
// transient failures; callers only ever see degraded results, never a
// "disconnected" state.
func dial(cfg Config) (goredis.UniversalClient, error) {
	dialTimeout := coalesce(cfg.DialTimeout, 5*time.Second)
	readTimeout := coalesce(cfg.ReadTimeout, 3*time.Second)
	writeTimeout := coalesce(cfg.WriteTimeout, 3*time.Second)

	var rdb goredis.UniversalClient
	switch {
	case cfg.Cluster.Enabled:
		rdb = goredis.NewClusterClient(&goredis.ClusterOptions{
			Addrs:        cfg.Cluster.Nodes,
			Password:     cfg.Password,
			DialTimeout:  dialTimeout,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
		})
	case cfg.Sentinel.Enabled:
		rdb = goredis.NewFailoverClient(&goredis.FailoverOptions{
			MasterName:    cfg.Sentinel.MasterName,
			SentinelAddrs: cfg.Sentinel.Sentinels,
			Password:      cfg.Password,
			DB:            cfg.DB,
			DialTimeout:   dialTimeout,
			ReadTimeout:   readTimeout,
			WriteTimeout:  writeTimeout,
			PoolSize:      cfg.PoolSize,
			MinIdleConns:  cfg.MinIdleConns,
		})
	default:
		rdb = goredis.NewClient(&goredis.Options{
			Addr:         cfg.addr(),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  dialTimeout,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("rediskit: backend unreachable at startup: %w", err)
	}
	return rdb, nil
}

// NewFromConfig dials the backend per cfg and constructs a client that owns
// the connection. opts.Namespace defaults to cfg.KeyPrefix.
func NewFromConfig(cfg Config, opts Options) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rdb, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	opts.Client = rdb
	opts.CloseClient = true
	opts.Namespace = coalesce(opts.Namespace, cfg.KeyPrefix)

	cl, err := New(opts)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	cl.applyServerPolicy(cfg)
	return cl, nil
}

// applyServerPolicy forwards maxmemory and the eviction policy to the
// backend. Best effort: managed deployments commonly reject CONFIG, and a
// refusal must not take the cache layer down.
func (cl *Client) applyServerPolicy(cfg Config) {
	ctx, cancel := context.WithTimeout(context.Background(), cl.healthTimeout)
	defer cancel()

	if cfg.MaxMemory != "" {
		if err := cl.rdb.ConfigSet(ctx, "maxmemory", cfg.MaxMemory).Err(); err != nil {
			cl.log.Warn("could not forward maxmemory to backend", Fields{"err": err})
		}
	}
	if cfg.EvictionPolicy != "" {
		if err := cl.rdb.ConfigSet(ctx, "maxmemory-policy", cfg.EvictionPolicy).Err(); err != nil {
			cl.log.Warn("could not forward eviction policy to backend", Fields{"err": err})
		}
	}
}
