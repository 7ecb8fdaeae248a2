// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zipmap

import (
	"errors"

	"github.com/golang/snappy"
)

// ErrCorruptCompressedEntry is returned by GetCompressed when a stored
// value is empty or starts with an unknown tag byte. A snappy decoding
// failure is returned as snappy's own error.
var ErrCorruptCompressedEntry = errors.New("zipmap: corrupt compressed entry")

// SetCompressed is a domain-stack addition on top of spec.md §4.4's plain
// Set: it snappy-compresses val before storing, keeping the compressed
// form only if it's smaller than the original, the same rule falloc.go
// applies before keeping a compressed content block. The value region
// gains a one-byte tag (0 = stored raw, 1 = snappy-compressed) ahead of
// the payload; everything else about the blob's framing is untouched, so
// plain Get/Exists/Rewind still see a well-formed entry, just one whose
// first value byte is this package's own tag rather than application
// data. Pair with GetCompressed to read it back.
func SetCompressed(zm ZipMap, key, val []byte) (ZipMap, bool, error) {
	compressed := snappy.Encode(nil, val)

	tagged := make([]byte, 0, len(val)+1)
	if len(compressed) < len(val) {
		tagged = append(tagged, 1)
		tagged = append(tagged, compressed...)
	} else {
		tagged = append(tagged, 0)
		tagged = append(tagged, val...)
	}
	return Set(zm, key, tagged)
}

// GetCompressed reads back a value written by SetCompressed.
func GetCompressed(zm ZipMap, key []byte) ([]byte, bool, error) {
	raw, ok := zm.Get(key)
	if !ok {
		return nil, false, nil
	}
	if len(raw) == 0 {
		return nil, false, ErrCorruptCompressedEntry
	}

	switch raw[0] {
	case 0:
		return raw[1:], true, nil
	case 1:
		dst, err := snappy.Decode(nil, raw[1:])
		if err != nil {
			return nil, false, err
		}
		return dst, true, nil
	default:
		return nil, false, ErrCorruptCompressedEntry
	}
}
