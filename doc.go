// Package rediskit is the caching and rate-limiting layer between request
// handlers and both the primary data store and a costly inference provider.
// It memoizes expensive results with TTLs, groups entries under tags for
// bulk invalidation, enforces per-identifier quotas atomically, and holds
// ephemeral sessions - without ever becoming a source of incorrectness when
// the backend is unavailable.
//
// Components:
//   - Codec: (de)serializes values <-> []byte (codec/; JSON default,
//     Msgpack and CBOR included).
//   - envelope: threshold-gzip framing for large payloads (internal).
//   - Client: all operations over one shared goredis.UniversalClient.
//
// Keys:
//
//	<ns>:<key>          values
//	<ns>:tag:<label>    tag member sets
//	<ns>:rl:<id>        rate-limit counters
//	<ns>:session:<id>   sessions
//
// Degradation contract: construction is the only place that fails. Every
// per-request operation resolves to a documented fallback on backend
// failure - reads miss, writes report false, the rate limiter fails open -
// and logs instead of erroring. Worst case for an end user is recomputation
// latency, never a cache-originated failure.
package rediskit
