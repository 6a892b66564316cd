package codec

import "errors"

var errRawType = errors.New("codec: raw codec handles []byte values only")

// Raw is an identity codec for []byte values. Marshal accepts []byte (or
// *[]byte) and returns it unchanged; Unmarshal requires a *[]byte
// destination. Useful when callers manage their own serialization and only
// need the cache layer's framing, TTLs and tagging.
type Raw struct{}

var _ Codec = Raw{}

func (Raw) Marshal(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case *[]byte:
		if b == nil {
			return nil, errRawType
		}
		return *b, nil
	default:
		return nil, errRawType
	}
}

func (Raw) Unmarshal(b []byte, dest any) error {
	out, ok := dest.(*[]byte)
	if !ok {
		return errRawType
	}
	*out = append((*out)[:0], b...)
	return nil
}
