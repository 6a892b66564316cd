package rediskit

import (
	"context"
	"time"
)

// addTags registers storageKey in each tag's member set and raises - never
// lowers - the set's own TTL to ttl. Member sets hold full storage keys so
// invalidation can delete them directly. Best effort: a failure here leaves
// the already-written value in place.
func (cl *Client) addTags(ctx context.Context, storageKey string, tags []string, ttl time.Duration) {
	for _, tag := range tags {
		tk := cl.tagKey(tag)
		if err := cl.rdb.SAdd(ctx, tk, storageKey).Err(); err != nil {
			cl.degraded("tag.add", tk, err)
			return
		}
		cl.raiseTTL(ctx, tk, ttl)
	}
}

// raiseTTL arms key's TTL to ttl when the remaining TTL is shorter or absent.
// The tag set must never expire strictly before its longest-lived member.
func (cl *Client) raiseTTL(ctx context.Context, key string, ttl time.Duration) {
	cur, err := cl.rdb.TTL(ctx, key).Result()
	if err != nil {
		cl.degraded("tag.ttl", key, err)
		return
	}
	// cur < 0 covers both "no expiry" and "key vanished" (the latter makes
	// EXPIRE a no-op anyway).
	if cur < 0 || ttl > cur {
		if err := cl.rdb.Expire(ctx, key, ttl).Err(); err != nil {
			cl.degraded("tag.ttl", key, err)
		}
	}
}

// InvalidateByTags deletes every member of every given tag plus the tag sets
// themselves, returning the number of member keys actually removed. Members
// that already expired are skipped silently, so the operation is idempotent:
// a second call returns 0 without error.
func (cl *Client) InvalidateByTags(ctx context.Context, tags ...string) int64 {
	var total int64
	for _, tag := range tags {
		tk := cl.tagKey(tag)
		members, err := cl.rdb.SMembers(ctx, tk).Result()
		if err != nil {
			cl.degraded("tag.invalidate", tk, err)
			continue
		}
		if len(members) > 0 {
			if cl.local != nil {
				for _, m := range members {
					cl.local.del(m)
				}
			}
			n, err := cl.rdb.Del(ctx, members...).Result()
			if err != nil {
				cl.degraded("tag.invalidate", tk, err)
			} else {
				total += n
				cl.dels.Add(n)
			}
		}
		if err := cl.rdb.Del(ctx, tk).Err(); err != nil {
			cl.degraded("tag.invalidate", tk, err)
		}
	}
	return total
}

// InvalidateByPattern deletes all keys in this namespace matching a redis
// glob pattern (e.g. "analysis:*") and returns the count removed. Used for
// coarse invalidation not tied to a tag.
func (cl *Client) InvalidateByPattern(ctx context.Context, pattern string) int64 {
	// Patterns keep their glob characters, so no JoinKey digesting here.
	match := cl.ns + keySeparator + pattern

	var total int64
	var cursor uint64
	for {
		keys, next, err := cl.rdb.Scan(ctx, cursor, match, cl.scanCount).Result()
		if err != nil {
			cl.degraded("pattern.invalidate", match, err)
			return total
		}
		if len(keys) > 0 {
			n, err := cl.rdb.Del(ctx, keys...).Result()
			if err != nil {
				cl.degraded("pattern.invalidate", match, err)
				return total
			}
			total += n
			cl.dels.Add(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if cl.local != nil && total > 0 {
		// The front is keyed by full storage key; globs cannot be matched
		// against it, so purge wholesale.
		cl.local.purge()
	}
	return total
}
