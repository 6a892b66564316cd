package rediskit

import (
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

const (
	keySeparator = ":"

	// Key parts longer than this are replaced by a fixed-width digest so
	// storage keys stay bounded no matter what callers feed in.
	maxKeyPartLen = 64
)

// JoinKey builds a namespaced storage key from a prefix and parts, joined by
// ":". The result is deterministic: equal inputs always produce equal keys.
// Oversized parts are digested with xxh3 rather than truncated, so distinct
// long inputs never collide by prefix.
func JoinKey(prefix string, parts ...string) string {
	n := len(prefix)
	for _, p := range parts {
		n += len(keySeparator) + len(p)
	}
	out := make([]byte, 0, n)
	out = append(out, prefix...)
	for _, p := range parts {
		out = append(out, keySeparator...)
		out = append(out, boundPart(p)...)
	}
	return string(out)
}

func boundPart(p string) string {
	if len(p) <= maxKeyPartLen {
		return p
	}
	return "x3" + keySeparator + hashString(p)
}

// HashContent digests arbitrary material into a short hex token, suitable as
// a cache key part for inference inputs and other large payload identities.
func HashContent(material []byte) string {
	sum := xxh3.Hash128(material).Bytes()
	return hex.EncodeToString(sum[:])
}

func hashString(s string) string {
	sum := xxh3.HashString128(s).Bytes()
	return hex.EncodeToString(sum[:])
}
