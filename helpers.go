package rediskit

import (
	"context"
	"time"
)

// Typed convenience wrappers for the layer's known consumers. Each one only
// builds a key and delegates to the core operations; nothing here calls back
// into application code.

// OwnerTag labels every cache entry belonging to one owner so a profile or
// record update can invalidate just that owner's entries.
func OwnerTag(ownerID string) string { return "owner:" + ownerID }

// CacheAIResponse memoizes an inference result keyed by a content hash of
// the input (see HashContent) plus the model version, so a model upgrade
// never serves responses computed by its predecessor.
func (cl *Client) CacheAIResponse(ctx context.Context, contentHash, model string, v any, ttl time.Duration) bool {
	return cl.Set(ctx, JoinKey("ai", model, contentHash), v, ttl)
}

// AIResponse reads a memoized inference result.
func (cl *Client) AIResponse(ctx context.Context, contentHash, model string, dest any) bool {
	return cl.Get(ctx, JoinKey("ai", model, contentHash), dest)
}

// CacheUserProfile caches a profile read, tagged by owner.
func (cl *Client) CacheUserProfile(ctx context.Context, userID string, v any, ttl time.Duration) bool {
	return cl.Set(ctx, JoinKey("user", userID), v, ttl, OwnerTag(userID))
}

// UserProfile reads a cached profile.
func (cl *Client) UserProfile(ctx context.Context, userID string, dest any) bool {
	return cl.Get(ctx, JoinKey("user", userID), dest)
}

// CacheAnalysisResult caches an analysis record, tagged by its owner.
func (cl *Client) CacheAnalysisResult(ctx context.Context, analysisID, ownerID string, v any, ttl time.Duration) bool {
	return cl.Set(ctx, JoinKey("analysis", analysisID), v, ttl, OwnerTag(ownerID))
}

// AnalysisResult reads a cached analysis record.
func (cl *Client) AnalysisResult(ctx context.Context, analysisID string, dest any) bool {
	return cl.Get(ctx, JoinKey("analysis", analysisID), dest)
}

// InvalidateOwner drops every entry tagged to ownerID.
func (cl *Client) InvalidateOwner(ctx context.Context, ownerID string) int64 {
	return cl.InvalidateByTags(ctx, OwnerTag(ownerID))
}
