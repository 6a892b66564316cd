package rediskit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/rediskit/codec"
)

const (
	defaultTTL         = 10 * time.Minute
	defaultSessionTTL  = 24 * time.Hour
	defaultHealthBound = time.Second
	defaultWatchdog    = 60 * time.Second
	defaultScanCount   = 200
)

// Client is the caching and rate-limiting layer over a shared redis
// connection. Construct one per process with New or NewFromConfig and inject
// it where needed; there is no package-level instance.
type Client struct {
	ns    string
	rdb   goredis.UniversalClient
	codec c.Codec
	log   Logger
	hooks Hooks

	defaultTTL    time.Duration
	sessionTTL    time.Duration
	bulkTTL       time.Duration
	healthTimeout time.Duration
	threshold     int
	scanCount     int64
	maxMemory     int64
	closeClient   bool

	local *localFront

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
	dels   atomic.Int64
	faults atomic.Int64

	probe singleflight.Group

	// memory watchdog
	watchdogEvery time.Duration
	watchdogBusy  atomic.Bool
	ticker        *time.Ticker
	stopCh        chan struct{}
	closeWg       sync.WaitGroup
	closeOnce     sync.Once
}

func newClient(opts Options) (*Client, error) {
	if opts.Namespace == "" {
		return nil, configErr("namespace", "required")
	}
	if opts.Client == nil {
		return nil, configErr("client", "required")
	}

	cl := &Client{
		ns:          opts.Namespace,
		rdb:         opts.Client,
		closeClient: opts.CloseClient,
		maxMemory:   opts.MaxMemoryBytes,
	}

	cl.codec = opts.Codec
	if cl.codec == nil {
		cl.codec = c.JSON{}
	}
	cl.log = coalesce[Logger](opts.Logger, NopLogger{})
	cl.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cl.defaultTTL = coalesce(opts.DefaultTTL, defaultTTL)
	cl.sessionTTL = coalesce(opts.SessionTTL, defaultSessionTTL)
	cl.bulkTTL = coalesce(opts.BulkTTL, cl.defaultTTL)
	cl.healthTimeout = coalesce(opts.HealthTimeout, defaultHealthBound)
	cl.scanCount = coalesce(opts.ScanCount, int64(defaultScanCount))
	cl.threshold = opts.CompressionThreshold

	if opts.Local != nil {
		lf, err := newLocalFront(*opts.Local)
		if err != nil {
			return nil, err
		}
		cl.local = lf
	}

	cl.watchdogEvery = coalesce(opts.WatchdogInterval, defaultWatchdog)
	if cl.watchdogEvery > 0 {
		cl.ticker = time.NewTicker(cl.watchdogEvery)
		cl.stopCh = make(chan struct{})
		cl.closeWg.Add(1)
		go cl.watchdogLoop()
	}

	return cl, nil
}

// Close stops the watchdog and, when the client owns the connection,
// releases it. Safe to call more than once.
func (cl *Client) Close(context.Context) error {
	cl.closeOnce.Do(func() {
		if cl.stopCh != nil {
			close(cl.stopCh)
			cl.closeWg.Wait()
			cl.ticker.Stop()
		}
		if cl.local != nil {
			cl.local.close()
		}
	})
	if cl.closeClient {
		return cl.rdb.Close()
	}
	return nil
}

// storage key layout:
//
//	<ns>:<key>          values
//	<ns>:tag:<label>    tag member sets
//	<ns>:rl:<id>        rate-limit counters
//	<ns>:session:<id>   sessions
func (cl *Client) valueKey(key string) string { return JoinKey(cl.ns, key) }

func (cl *Client) tagKey(tag string) string { return JoinKey(cl.ns, "tag", tag) }

func (cl *Client) rateKey(id string) string { return JoinKey(cl.ns, "rl", id) }

func (cl *Client) sessionKey(id string) string { return JoinKey(cl.ns, "session", id) }

// degraded records a backend failure on a per-request operation. The caller
// has already resolved to the documented fallback value; nothing propagates.
func (cl *Client) degraded(op, key string, err error) {
	cl.faults.Add(1)
	cl.hooks.Degraded(op, key, err)
	cl.log.Warn("backend unavailable; operation degraded", Fields{"op": op, "key": key, "err": err})
}

// unreadable records a payload that survived in the backend but cannot be
// opened or decoded. The entry is left to expire naturally.
func (cl *Client) unreadable(key, reason string, err error) {
	cl.hooks.UnreadablePayload(key, reason)
	cl.log.Error("stored payload unreadable", Fields{"key": key, "reason": reason, "err": err})
}
