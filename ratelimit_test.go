package rediskit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowCountsDownThenDenies(t *testing.T) {
	ctx := context.Background()
	cl, _ := newTestClient(t, nil)

	for want := int64(4); want >= 0; want-- {
		d := cl.Allow(ctx, "farmer:7", 5, time.Minute)
		assert.True(t, d.Allowed)
		assert.Equal(t, want, d.Remaining)
	}

	d := cl.Allow(ctx, "farmer:7", 5, time.Minute)
	assert.False(t, d.Allowed)
	assert.Equal(t, int64(0), d.Remaining)
	assert.False(t, d.ResetAt.IsZero())
}

func TestAllowIdentifiersIndependent(t *testing.T) {
	ctx := context.Background()
	cl, _ := newTestClient(t, nil)

	for i := 0; i < 3; i++ {
		cl.Allow(ctx, "a", 2, time.Minute)
	}
	assert.False(t, cl.Allow(ctx, "a", 2, time.Minute).Allowed)
	assert.True(t, cl.Allow(ctx, "b", 2, time.Minute).Allowed)
}

func TestAllowWindowRearmsOnEveryHit(t *testing.T) {
	ctx := context.Background()
	cl, mr := newTestClient(t, nil)

	key := "agro:rl:farmer:7"

	require.True(t, cl.Allow(ctx, "farmer:7", 10, time.Minute).Allowed)
	mr.FastForward(30 * time.Second)
	assert.Equal(t, 30*time.Second, mr.TTL(key))

	// A second hit slides the window back to its full length.
	require.True(t, cl.Allow(ctx, "farmer:7", 10, time.Minute).Allowed)
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestAllowCounterExpiresWithWindow(t *testing.T) {
	ctx := context.Background()
	cl, mr := newTestClient(t, nil)

	for i := 0; i < 2; i++ {
		cl.Allow(ctx, "x", 2, time.Minute)
	}
	assert.False(t, cl.Allow(ctx, "x", 2, time.Minute).Allowed)

	mr.FastForward(61 * time.Second)
	d := cl.Allow(ctx, "x", 2, time.Minute)
	assert.True(t, d.Allowed)
	assert.Equal(t, int64(1), d.Remaining, "quota is fresh after the window lapses")
}

func TestAllowFailsOpenOnBackendFailure(t *testing.T) {
	ctx := context.Background()
	h := &recordingHooks{}
	cl, mr := newTestClient(t, func(o *Options) { o.Hooks = h })

	mr.SetError("simulated outage")
	d := cl.Allow(ctx, "farmer:7", 5, time.Minute)
	assert.True(t, d.Allowed, "an unreachable backend must never block traffic")
	assert.Equal(t, int64(5), d.Remaining)
	assert.Equal(t, int64(1), h.degraded.Load())
}

func TestAllowDegenerateParameters(t *testing.T) {
	ctx := context.Background()
	cl, mr := newTestClient(t, nil)

	assert.True(t, cl.Allow(ctx, "x", 0, time.Minute).Allowed)
	assert.True(t, cl.Allow(ctx, "x", 5, 0).Allowed)
	assert.False(t, mr.Exists("agro:rl:x"), "degenerate limits never touch the backend")
}
