package codec

import "encoding/json"

// JSON serializes values with encoding/json. The zero value is ready to use.
// It is the default codec: self-describing, debuggable with redis-cli, and
// decodes cleanly into any for bulk reads.
type JSON struct{}

var _ Codec = JSON{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(b []byte, dest any) error { return json.Unmarshal(b, dest) }
