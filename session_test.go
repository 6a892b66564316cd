package rediskit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	cl, mr := newTestClient(t, nil)

	payload := map[string]any{"user_id": "7", "locale": "en"}
	require.True(t, cl.SetSession(ctx, "s-1", payload))
	assert.Equal(t, 24*time.Hour, mr.TTL("agro:session:s-1"))

	var got map[string]any
	require.True(t, cl.GetSession(ctx, "s-1", &got))
	assert.Equal(t, "7", got["user_id"])

	var missing map[string]any
	assert.False(t, cl.GetSession(ctx, "nope", &missing))
}

func TestSessionTTLOverride(t *testing.T) {
	ctx := context.Background()
	cl, mr := newTestClient(t, func(o *Options) { o.SessionTTL = time.Hour })

	require.True(t, cl.SetSession(ctx, "s-1", "v"))
	assert.Equal(t, time.Hour, mr.TTL("agro:session:s-1"))
}

func TestExtendSessionKeepsPayload(t *testing.T) {
	ctx := context.Background()
	cl, mr := newTestClient(t, nil)

	require.True(t, cl.SetSession(ctx, "s-1", "state"))
	mr.FastForward(time.Hour)

	require.True(t, cl.ExtendSession(ctx, "s-1", 48*time.Hour))
	assert.Equal(t, 48*time.Hour, mr.TTL("agro:session:s-1"))

	var got string
	require.True(t, cl.GetSession(ctx, "s-1", &got))
	assert.Equal(t, "state", got)

	// Non-positive ttl falls back to the session default.
	require.True(t, cl.ExtendSession(ctx, "s-1", 0))
	assert.Equal(t, 24*time.Hour, mr.TTL("agro:session:s-1"))

	assert.False(t, cl.ExtendSession(ctx, "missing", time.Hour))
}

func TestDestroySession(t *testing.T) {
	ctx := context.Background()
	cl, _ := newTestClient(t, nil)

	require.True(t, cl.SetSession(ctx, "s-1", "v"))
	assert.True(t, cl.DestroySession(ctx, "s-1"))
	assert.False(t, cl.DestroySession(ctx, "s-1"), "second destroy finds nothing")

	var got string
	assert.False(t, cl.GetSession(ctx, "s-1", &got))
}

func TestSessionDegradesOnBackendFailure(t *testing.T) {
	ctx := context.Background()
	cl, mr := newTestClient(t, nil)

	require.True(t, cl.SetSession(ctx, "s-1", "v"))
	mr.SetError("simulated outage")

	var got string
	assert.False(t, cl.SetSession(ctx, "s-2", "v"))
	assert.False(t, cl.GetSession(ctx, "s-1", &got))
	assert.False(t, cl.ExtendSession(ctx, "s-1", time.Hour))
	assert.False(t, cl.DestroySession(ctx, "s-1"))
}
