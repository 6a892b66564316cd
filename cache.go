package rediskit

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/rediskit/internal/envelope"
)

// Get reads key into dest. It reports false on a miss, on any backend
// failure, and on an unreadable stored payload - the cache is an
// optimization layer, so callers always recompute on false, never fail.
func (cl *Client) Get(ctx context.Context, key string, dest any) bool {
	k := cl.valueKey(key)
	raw, ok := cl.fetch(ctx, "get", k)
	if !ok {
		cl.misses.Add(1)
		return false
	}
	body, err := envelope.Open(raw)
	if err != nil {
		// Unreadable, not deleted: the entry expires on its own TTL.
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

// Set serializes value, compresses it past the threshold, and writes it with
// a single SET EX. A non-positive ttl selects the client default; no entry
// is ever persisted without an expiry. When tags are given the key is
// registered in each tag's member set after the value write; tag
// registration failures are logged but never roll the value back - tags are
// an optimization index, not a consistency boundary.
func (cl *Client) Set(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) bool {
	if ttl <= 0 {
		ttl = cl.defaultTTL
	}
	raw, err := cl.codec.Marshal(value)
	if err != nil {
		cl.unreadable(cl.valueKey(key), "serialize", err)
		return false
	}
	stored := cl.seal(raw)

	k := cl.valueKey(key)
	if err := cl.rdb.Set(ctx, k, stored, ttl).Err(); err != nil {
		cl.degraded("set", k, err)
		return false
	}
	cl.sets.Add(1)
	if cl.local != nil {
		cl.local.set(k, stored)
	}
	if len(tags) > 0 {
		cl.addTags(ctx, k, tags, ttl)
	}
	return true
}

// Del removes keys and returns how many actually existed. 0 on a backend
// failure.
func (cl *Client) Del(ctx context.Context, keys ...string) int64 {
	if len(keys) == 0 {
		return 0
	}
	ks := make([]string, len(keys))
	for i, key := range keys {
		ks[i] = cl.valueKey(key)
	}
	if cl.local != nil {
		for _, k := range ks {
			cl.local.del(k)
		}
	}
	n, err := cl.rdb.Del(ctx, ks...).Result()
	if err != nil {
		cl.degraded("del", ks[0], err)
		return 0
	}
	cl.dels.Add(n)
	return n
}

// Exists reports whether key is present. false on backend failure.
func (cl *Client) Exists(ctx context.Context, key string) bool {
	k := cl.valueKey(key)
	n, err := cl.rdb.Exists(ctx, k).Result()
	if err != nil {
		cl.degraded("exists", k, err)
		return false
	}
	return n > 0
}

// Expire renews key's TTL without touching the payload. A non-positive ttl
// selects the client default.
func (cl *Client) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = cl.defaultTTL
	}
	k := cl.valueKey(key)
	ok, err := cl.rdb.Expire(ctx, k, ttl).Result()
	if err != nil {
		cl.degraded("expire", k, err)
		return false
	}
	return ok
}

// fetch reads raw stored bytes for a storage key, consulting the local front
// first when enabled. Misses and backend failures both come back as !ok.
func (cl *Client) fetch(ctx context.Context, op, storageKey string) ([]byte, bool) {
	if cl.local != nil {
		if b, ok := cl.local.get(storageKey); ok {
			return b, true
		}
	}
	b, ok := cl.fetchDirect(ctx, op, storageKey)
	if ok && cl.local != nil {
		cl.local.set(storageKey, b)
	}
	return b, ok
}

// fetchDirect is fetch without the local front.
func (cl *Client) fetchDirect(ctx context.Context, op, storageKey string) ([]byte, bool) {
	b, err := cl.rdb.Get(ctx, storageKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		cl.degraded(op, storageKey, err)
		return nil, false
	}
	return b, true
}

func (cl *Client) seal(raw []byte) []byte {
	if cl.threshold < 0 {
		return raw
	}
	return envelope.Seal(raw, cl.threshold)
}
