package rediskit

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; the cache calls them on
// hot paths.
type Hooks interface {
	// A per-request operation degraded because the backend was unreachable
	// or timed out. The operation already resolved to its documented
	// fallback value; this is observability only.
	Degraded(op, key string, err error)

	// A stored payload could not be opened or decoded.
	// reason is one of "envelope", "decode", "serialize".
	// The entry is left to expire naturally.
	UnreadablePayload(key, reason string)

	// The memory watchdog observed backend memory above 90% of maxmemory.
	HighMemory(usedBytes, maxBytes int64)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) Degraded(string, string, error)   {}
func (NopHooks) UnreadablePayload(string, string) {}
func (NopHooks) HighMemory(int64, int64)          {}
