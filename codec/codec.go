// Package codec provides pluggable payload serialization for rediskit.
package codec

// Codec turns values into stored bytes and back. The cache layer stores
// heterogeneous values behind a single client, so Unmarshal decodes into a
// caller-supplied destination (including *any for generic bulk reads).
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(b []byte, dest any) error
}
