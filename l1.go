package rediskit

import (
	"time"

	rc "github.com/dgraph-io/ristretto"
)

const (
	defaultLocalBudget = 64 << 20 // 64 MiB
	defaultLocalTTL    = time.Minute
)

// localFront is an optional in-process byte cache in front of single-key
// reads. It stores the exact bytes the backend holds (envelope included),
// keyed by full storage key, so a front hit and a backend hit decode
// identically.
type localFront struct {
	store *rc.Cache
	ttl   time.Duration
}

func newLocalFront(cfg LocalConfig) (*localFront, error) {
	budget := cfg.MaxCostBytes
	if budget <= 0 {
		budget = defaultLocalBudget
	}
	store, err := rc.NewCache(&rc.Config{
		// ~10x the item count a budget of 1KiB-average entries implies.
		NumCounters: budget / 100,
		MaxCost:     budget,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &localFront{
		store: store,
		ttl:   coalesce(cfg.TTL, defaultLocalTTL),
	}, nil
}

func (l *localFront) get(key string) ([]byte, bool) {
	v, ok := l.store.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	if !ok || b == nil {
		l.store.Del(key)
		return nil, false
	}
	return b, true
}

func (l *localFront) set(key string, b []byte) {
	l.store.SetWithTTL(key, b, int64(len(b)), l.ttl)
}

func (l *localFront) del(key string) { l.store.Del(key) }
func (l *localFront) purge()         { l.store.Clear() }

func (l *localFront) close() {
	l.store.Wait()
	l.store.Close()
}
