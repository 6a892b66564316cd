package rediskit

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/rediskit/internal/envelope"
)

// MGet fetches keys in one pipelined round trip. The result always has
// len(keys) slots and slot i corresponds to keys[i]; a slot is nil on miss,
// on an unreadable payload, and - for every slot - when the backend is
// unavailable. Values decode into the codec's generic form (map[string]any
// and friends for JSON).
func (cl *Client) MGet(ctx context.Context, keys []string) []any {
	out := make([]any, len(keys))
	if len(keys) == 0 {
		return out
	}

	ks := make([]string, len(keys))
	for i, key := range keys {
		ks[i] = cl.valueKey(key)
	}
	vals, err := cl.rdb.MGet(ctx, ks...).Result()
	if err != nil {
		cl.degraded("mget", ks[0], err)
		cl.misses.Add(int64(len(keys)))
		return out
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok { // nil slot: miss
			cl.misses.Add(1)
			continue
		}
		body, err := envelope.Open([]byte(s))
		if err != nil {
			cl.unreadable(ks[i], "envelope", err)
			cl.misses.Add(1)
			continue
		}
		var decoded any
		if err := cl.codec.Unmarshal(body, &decoded); err != nil {
			cl.unreadable(ks[i], "decode", err)
			cl.misses.Add(1)
			continue
		}
		out[i] = decoded
		cl.hits.Add(1)
	}
	return out
}

// MSet writes all entries in one pipelined round trip and reports true only
// when every write succeeded. Entries without a TTL get the client's bulk
// default; nothing is persisted without an expiry.
func (cl *Client) MSet(ctx context.Context, entries []Entry) bool {
	if len(entries) == 0 {
		return true
	}

	// Serialize everything up front; a single bad value fails the batch
	// before any backend round trip.
	keys := make([]string, len(entries))
	blobs := make([][]byte, len(entries))
	for i, e := range entries {
		raw, err := cl.codec.Marshal(e.Value)
		if err != nil {
			cl.unreadable(cl.valueKey(e.Key), "serialize", err)
			return false
		}
		keys[i] = cl.valueKey(e.Key)
		blobs[i] = cl.seal(raw)
	}

	cmds, err := cl.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, e := range entries {
			ttl := e.TTL
			if ttl <= 0 {
				ttl = cl.bulkTTL
			}
			pipe.Set(ctx, keys[i], blobs[i], ttl)
		}
		return nil
	})
	if err != nil {
		cl.degraded("mset", keys[0], err)
		return false
	}
	for _, cmd := range cmds {
		if cmd.Err() != nil {
			cl.degraded("mset", cmd.Name(), cmd.Err())
			return false
		}
	}

	cl.sets.Add(int64(len(entries)))
	if cl.local != nil {
		for i := range entries {
			cl.local.set(keys[i], blobs[i])
		}
	}
	return true
}
