// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zipmap

// Cursor is a position within a zipmap blob, returned by Rewind and
// advanced by Next. It aliases the blob it was produced from and is
// invalidated by any mutation to that blob.
type Cursor struct {
	zm  ZipMap
	off int
}

// Rewind returns a cursor positioned at zm's first entry (or already at
// the end, for an empty map).
func Rewind(zm ZipMap) Cursor {
	return Cursor{zm: zm, off: firstEntryOffset}
}

// Next returns the entry at the cursor and an advanced cursor, or
// ok == false once the terminator is reached. The key/value slices alias
// the blob.
func (c Cursor) Next() (key, val []byte, next Cursor, ok bool) {
	blob := c.zm.bytes()
	if c.off >= len(blob) || blob[c.off] == terminator {
		return nil, nil, c, false
	}
	ev := decodeEntry(blob, c.off)
	return blob[ev.keyStart:ev.keyEnd], blob[ev.valStart:ev.valEnd], Cursor{zm: c.zm, off: ev.next}, true
}
