// Package envelope frames stored payloads so compressed entries can be told
// apart from plain ones. Layout:
//
//	magic(4) | ver(1) | flags(1) | body
//
// Plain payloads below the compression threshold are stored as-is, with no
// envelope at all; Open passes anything without the magic straight through.
//
// The magic prefix is a reserved marker: a raw payload that legitimately
// begins with the 4 bytes "RDKE" would be misread as an envelope. Callers
// storing opaque binary blobs with a raw codec must account for this; codecs
// producing JSON/msgpack/CBOR cannot emit the marker.
package envelope

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/gzip"
)

const (
	version  byte = 1
	flagGzip byte = 1 << 0

	headerLen = 6

	// DefaultThreshold is the payload size above which Seal compresses.
	DefaultThreshold = 1024
)

var (
	ErrCorrupt = errors.New("envelope: corrupt payload")

	magic4 = [...]byte{'R', 'D', 'K', 'E'}
)

func hasMagic(b []byte) bool {
	return len(b) >= len(magic4) && bytes.Equal(b[:len(magic4)], magic4[:])
}

// Seal wraps raw in a gzip envelope when it exceeds threshold, otherwise
// returns raw unchanged. threshold <= 0 selects DefaultThreshold.
func Seal(raw []byte, threshold int) []byte {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if len(raw) <= threshold {
		return raw
	}

	var buf bytes.Buffer
	buf.Grow(headerLen + len(raw)/2)
	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(flagGzip)

	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write(raw) // bytes.Buffer writes cannot fail
	_ = zw.Close()
	return buf.Bytes()
}

// Open reverses Seal. Bytes without the envelope magic are returned verbatim.
// A malformed or undecompressable envelope yields ErrCorrupt; the caller maps
// that to an unreadable entry, never to a panic or a propagated failure.
func Open(stored []byte) ([]byte, error) {
	if !hasMagic(stored) {
		return stored, nil
	}
	if len(stored) < headerLen || stored[4] != version {
		return nil, ErrCorrupt
	}
	flags := stored[5]
	body := stored[headerLen:]
	if flags&flagGzip == 0 {
		return body, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Join(ErrCorrupt, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Join(ErrCorrupt, err)
	}
	return out, nil
}

// IsSealed reports whether stored carries the envelope marker.
func IsSealed(stored []byte) bool { return hasMagic(stored) }
