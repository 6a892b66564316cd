package rediskit

import (
	"context"
	"strconv"
	"strings"
)

type backendStats struct {
	usedMemory int64
	maxMemory  int64
	evicted    int64
	keys       int64
}

// Stats merges local hit/miss/write counters with backend introspection.
// Counter-derived fields are always populated; backend fields fall back to
// zero when the backend is unavailable rather than failing. Concurrent
// callers share a single INFO round trip.
func (cl *Client) Stats(ctx context.Context) Stats {
	hits := cl.hits.Load()
	misses := cl.misses.Load()

	st := Stats{
		TotalRequests: hits + misses + cl.sets.Load() + cl.dels.Load(),
	}
	if lookups := hits + misses; lookups > 0 {
		st.HitRate = float64(hits) / float64(lookups)
		st.MissRate = float64(misses) / float64(lookups)
	}

	v, err, _ := cl.probe.Do("backend-stats", func() (any, error) {
		return cl.backendStats(ctx)
	})
	if err != nil {
		cl.degraded("stats", "", err)
		return st
	}
	bs := v.(backendStats)
	st.MemoryUsage = bs.usedMemory
	st.KeyCount = bs.keys
	st.EvictionCount = bs.evicted
	return st
}

// Healthy is a lightweight liveness probe: a PING bounded by the health
// timeout. It reports false on any error and never panics or blocks past
// the bound.
func (cl *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, cl.healthTimeout)
	defer cancel()
	return cl.rdb.Ping(ctx).Err() == nil
}

func (cl *Client) backendStats(ctx context.Context) (backendStats, error) {
	var bs backendStats
	info, err := cl.rdb.Info(ctx, "memory", "stats").Result()
	if err != nil {
		return bs, err
	}
	bs.usedMemory = parseInfoInt(info, "used_memory")
	bs.maxMemory = parseInfoInt(info, "maxmemory")
	bs.evicted = parseInfoInt(info, "evicted_keys")

	n, err := cl.rdb.DBSize(ctx).Result()
	if err != nil {
		return bs, err
	}
	bs.keys = n
	return bs, nil
}

// parseInfoInt extracts one integer field from redis INFO output. Unknown
// or malformed fields read as 0; INFO is advisory, not a contract.
func parseInfoInt(info, field string) int64 {
	prefix := field + ":"
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(line[len(prefix):]), 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// watchdogLoop runs the memory watchdog. Each tick probes backend memory in
// its own goroutine; a busy flag drops ticks while a slow probe is still in
// flight so probes never pile up.
func (cl *Client) watchdogLoop() {
	defer cl.closeWg.Done()
	for {
		select {
		case <-cl.ticker.C:
			cl.closeWg.Add(1)
			go func() {
				defer cl.closeWg.Done()
				cl.watchdogTick()
			}()
		case <-cl.stopCh:
			return
		}
	}
}

// watchdogTick logs a warning when used memory crosses 90% of the ceiling.
// Purely observational: eviction stays with the backend's configured policy.
func (cl *Client) watchdogTick() {
	if !cl.watchdogBusy.CompareAndSwap(false, true) {
		return // previous probe still running
	}
	defer cl.watchdogBusy.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), cl.healthTimeout)
	defer cancel()

	bs, err := cl.backendStats(ctx)
	if err != nil {
		cl.log.Warn("memory watchdog probe failed", Fields{"err": err})
		return
	}
	ceiling := cl.maxMemory
	if ceiling == 0 {
		ceiling = bs.maxMemory
	}
	if ceiling <= 0 {
		return // no ceiling configured anywhere
	}
	if bs.usedMemory*10 >= ceiling*9 {
		cl.hooks.HighMemory(bs.usedMemory, ceiling)
		cl.log.Warn("backend memory above 90% of ceiling", Fields{
			"used_bytes": bs.usedMemory,
			"max_bytes":  ceiling,
		})
	}
}
