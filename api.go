package rediskit

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	c "github.com/unkn0wn-root/rediskit/codec"
)

// Cache is the operation surface request handlers depend on. *Client
// implements it; consumers should accept this interface and let the owning
// service construct the concrete client once at startup.
type Cache interface {
	// Single-key operations.
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) bool
	Del(ctx context.Context, keys ...string) int64
	Exists(ctx context.Context, key string) bool
	Expire(ctx context.Context, key string, ttl time.Duration) bool

	// Tag maintenance.
	InvalidateByTags(ctx context.Context, tags ...string) int64
	InvalidateByPattern(ctx context.Context, pattern string) int64

	// Quota enforcement. Fails open when the backend is unreachable.
	Allow(ctx context.Context, identifier string, limit int64, window time.Duration) Decision

	// Ephemeral sessions.
	SetSession(ctx context.Context, id string, payload any) bool
	GetSession(ctx context.Context, id string, dest any) bool
	ExtendSession(ctx context.Context, id string, ttl time.Duration) bool
	DestroySession(ctx context.Context, id string) bool

	// Pipelined batches.
	MGet(ctx context.Context, keys []string) []any
	MSet(ctx context.Context, entries []Entry) bool

	// Introspection.
	Stats(ctx context.Context) Stats
	Healthy(ctx context.Context) bool

	Close(ctx context.Context) error
}

// Entry is one pipelined write for MSet.
type Entry struct {
	Key   string
	Value any
	TTL   time.Duration // <= 0 selects the client's BulkTTL
}

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
}

// Stats merges local request counters with backend introspection. Backend
// fields are zero when the backend is unavailable.
type Stats struct {
	HitRate       float64
	MissRate      float64
	TotalRequests int64
	MemoryUsage   int64
	KeyCount      int64
	EvictionCount int64
}

// LocalConfig enables an optional in-process hot-entry front (ristretto) for
// single-key reads. Entries served from the front can be stale for up to TTL
// when another process rewrites the same key, so enable it only for
// single-writer deployments or staleness-tolerant data.
type LocalConfig struct {
	MaxCostBytes int64         // total byte budget; 0 => 64 MiB
	TTL          time.Duration // per-entry residency; 0 => 1m
}

// Options tune the client. Namespace and Client are required; everything
// else has defaults.
type Options struct {
	// Required.
	Namespace string // key prefix isolating this deployment, e.g. "agriai"
	Client    goredis.UniversalClient

	Codec         c.Codec       // nil => codec.JSON{}
	Logger        Logger        // nil => NopLogger
	Hooks         Hooks         // nil => NopHooks
	DefaultTTL    time.Duration // values; 0 => 10m
	SessionTTL    time.Duration // sessions; 0 => 24h
	BulkTTL       time.Duration // MSet entries without explicit TTL; 0 => DefaultTTL
	HealthTimeout time.Duration // ping / probe bound; 0 => 1s

	// CompressionThreshold is the serialized size above which payloads are
	// gzip-wrapped. 0 selects the default (1 KiB); negative disables
	// compression entirely.
	CompressionThreshold int

	// WatchdogInterval is the memory watchdog period. 0 selects 60s;
	// negative disables the watchdog.
	WatchdogInterval time.Duration

	// MaxMemoryBytes is the watchdog's reference ceiling. 0 means read
	// maxmemory from backend INFO on each probe.
	MaxMemoryBytes int64

	// ScanCount is the SCAN batch size for pattern invalidation; 0 => 200.
	ScanCount int64

	// Local enables the in-process hot-entry front. nil => disabled.
	Local *LocalConfig

	// CloseClient releases the redis client on Close. Set only if this
	// cache exclusively owns the client. NewFromConfig sets it.
	CloseClient bool
}

// New validates opts and returns a ready client. Configuration problems are
// the one fatal error class; everything after construction degrades.
func New(opts Options) (*Client, error) {
	return newClient(opts)
}

var _ Cache = (*Client)(nil)
