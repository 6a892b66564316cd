package rediskit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHooks struct {
	degraded   atomic.Int64
	unreadable atomic.Int64
	highMem    atomic.Int64
}

func (h *recordingHooks) Degraded(string, string, error)   { h.degraded.Add(1) }
func (h *recordingHooks) UnreadablePayload(string, string) { h.unreadable.Add(1) }
func (h *recordingHooks) HighMemory(int64, int64)          { h.highMem.Add(1) }

func TestAIResponseMemoization(t *testing.T) {
	ctx := context.Background()
	cl, _ := newTestClient(t, nil)

	hash := HashContent([]byte("field photo bytes"))
	resp := map[string]any{"disease": "leaf rust", "confidence": 0.91}

	var out map[string]any
	assert.False(t, cl.AIResponse(ctx, hash, "cropnet-v2", &out))

	require.True(t, cl.CacheAIResponse(ctx, hash, "cropnet-v2", resp, time.Hour))
	require.True(t, cl.AIResponse(ctx, hash, "cropnet-v2", &out))
	assert.Equal(t, "leaf rust", out["disease"])

	// Same input under a different model version is a distinct entry.
	assert.False(t, cl.AIResponse(ctx, hash, "cropnet-v3", &out))
}

func TestOwnerInvalidationFlow(t *testing.T) {
	ctx := context.Background()
	cl, _ := newTestClient(t, nil)

	profile := map[string]any{"name": "Ada"}
	result := analysis{ID: "42", Score: 87}

	require.True(t, cl.CacheUserProfile(ctx, "7", profile, time.Hour))
	require.True(t, cl.CacheAnalysisResult(ctx, "42", "7", result, time.Hour))

	var gotProfile map[string]any
	var gotResult analysis
	require.True(t, cl.UserProfile(ctx, "7", &gotProfile))
	require.True(t, cl.AnalysisResult(ctx, "42", &gotResult))
	assert.Equal(t, 87, gotResult.Score)

	assert.Equal(t, int64(2), cl.InvalidateOwner(ctx, "7"))
	assert.False(t, cl.UserProfile(ctx, "7", &gotProfile))
	assert.False(t, cl.AnalysisResult(ctx, "42", &gotResult))

	// Idempotent: nothing left to remove.
	assert.Equal(t, int64(0), cl.InvalidateOwner(ctx, "7"))
}
