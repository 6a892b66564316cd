package rediskit

import (
	"context"
	"time"

	"github.com/unkn0wn-root/rediskit/internal/envelope"
)

// SetSession writes a session payload under the client's session TTL.
func (cl *Client) SetSession(ctx context.Context, id string, payload any) bool {
	raw, err := cl.codec.Marshal(payload)
	if err != nil {
		cl.unreadable(cl.sessionKey(id), "serialize", err)
		return false
	}
	k := cl.sessionKey(id)
	if err := cl.rdb.Set(ctx, k, cl.seal(raw), cl.sessionTTL).Err(); err != nil {
		cl.degraded("session.set", k, err)
		return false
	}
	cl.sets.Add(1)
	return true
}

// GetSession reads a session payload into dest. Sessions bypass the local
// front: they are mutable per-user state, not memoized computation.
func (cl *Client) GetSession(ctx context.Context, id string, dest any) bool {
	k := cl.sessionKey(id)
	b, ok := cl.fetchDirect(ctx, "session.get", k)
	if !ok {
		cl.misses.Add(1)
		return false
	}
	body, err := envelope.Open(b)
	if err != nil {
		cl.unreadable(k, "envelope", err)
		cl.misses.Add(1)
		return false
	}
	if err := cl.codec.Unmarshal(body, dest); err != nil {
		cl.unreadable(k, "decode", err)
		cl.misses.Add(1)
		return false
	}
	cl.hits.Add(1)
	return true
}

// ExtendSession renews the session TTL without rewriting the payload.
// A non-positive ttl selects the client's session TTL.
func (cl *Client) ExtendSession(ctx context.Context, id string, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = cl.sessionTTL
	}
	k := cl.sessionKey(id)
	ok, err := cl.rdb.Expire(ctx, k, ttl).Result()
	if err != nil {
		cl.degraded("session.extend", k, err)
		return false
	}
	return ok
}

// DestroySession removes the session, reporting true only when a record
// existed.
func (cl *Client) DestroySession(ctx context.Context, id string) bool {
	k := cl.sessionKey(id)
	n, err := cl.rdb.Del(ctx, k).Result()
	if err != nil {
		cl.degraded("session.destroy", k, err)
		return false
	}
	if n > 0 {
		cl.dels.Add(n)
	}
	return n > 0
}
