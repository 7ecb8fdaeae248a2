// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package zipmap implements a compact, contiguous byte-blob string→string
// map optimized for very small element counts: O(n) lookup in exchange for
// a footprint close to the theoretical minimum, in the style of
// falloc.go's short/long content-block layout — a single small tag
// (here, a length byte) selects between an inline encoding and an escape
// form for anything larger.
//
// Layout (must be reproduced exactly, per spec.md §6, for any two
// implementations to share a blob):
//
//	[zmlen][entry]...[entry][0xFF]
//
// zmlen is one byte: the element count, saturating at 254 (so 254 means
// "unknown, count by scanning"). Each entry is:
//
//	[klen][key bytes][vlen][free][value bytes][free slack bytes]
//
// klen and vlen each use the same 1-or-5-byte encoding: a byte b < 254
// means length b directly; b == 254 is followed by a 4-byte
// little-endian extended length. free is always exactly one byte,
// recording the slack after the value (capped at 4) left by an in-place
// shrink.
package zipmap

import (
	"encoding/binary"
	"unsafe"

	"github.com/fyyzkd/redis/alloc"
)

// lenEscape is the klen/vlen byte value signaling a 4-byte extended
// length follows.
const lenEscape = 254

// countUnknown is the zmlen value meaning "254 or more; count by scanning".
const countUnknown = 254

// terminator ends the blob.
const terminator = 0xFF

// maxFreeSlack is the residual free gap at which Set compacts an entry
// instead of leaving slack behind, so Set leaves at most maxFreeSlack-1
// free bytes.
const maxFreeSlack = 4

// ZipMap is a handle to a zipmap blob. The zero value is invalid.
type ZipMap struct {
	p unsafe.Pointer
	a alloc.Allocator
	n int // current total blob length in bytes
}

// Valid reports whether zm refers to a live allocation.
func (zm ZipMap) Valid() bool { return zm.p != nil }

func (zm ZipMap) bytes() []byte {
	return unsafe.Slice((*byte)(zm.p), zm.n)
}

// New returns an empty zipmap: the two bytes [0x00, 0xFF].
func New(a alloc.Allocator) (ZipMap, error) {
	p, err := a.Alloc(2)
	if err != nil {
		return ZipMap{}, err
	}
	b := unsafe.Slice((*byte)(p), 2)
	b[0] = 0
	b[1] = terminator
	return ZipMap{p: p, a: a, n: 2}, nil
}

// Free releases zm's backing allocation.
func Free(zm ZipMap) {
	if zm.p == nil {
		return
	}
	zm.a.Free(zm.p)
}

// encodedLen returns how many bytes encodeLen needs to represent n.
func encodedLen(n int) int {
	if n < lenEscape {
		return 1
	}
	return 5
}

// encodeLen writes n's length encoding into dst[0:], returning the number
// of bytes written.
func encodeLen(dst []byte, n int) int {
	if n < lenEscape {
		dst[0] = byte(n)
		return 1
	}
	dst[0] = lenEscape
	binary.LittleEndian.PutUint32(dst[1:5], uint32(n))
	return 5
}

// decodeLen reads a length field starting at blob[off], returning the
// decoded length and the number of header bytes consumed.
func decodeLen(blob []byte, off int) (length int, hdrLen int) {
	b := blob[off]
	if b < lenEscape {
		return int(b), 1
	}
	return int(binary.LittleEndian.Uint32(blob[off+1 : off+5])), 5
}

// entryView describes one decoded entry's byte ranges within the blob.
type entryView struct {
	keyStart, keyEnd   int
	valStart, valEnd   int
	freeOff            int
	free               int
	next               int // offset of the following entry, or the terminator
}

// decodeEntry decodes the entry starting at off, which must not be the
// terminator byte.
func decodeEntry(blob []byte, off int) entryView {
	klen, khdr := decodeLen(blob, off)
	keyStart := off + khdr
	keyEnd := keyStart + klen

	vlen, vhdr := decodeLen(blob, keyEnd)
	freeOff := keyEnd + vhdr
	free := int(blob[freeOff])
	valStart := freeOff + 1
	valEnd := valStart + vlen

	return entryView{
		keyStart: keyStart, keyEnd: keyEnd,
		valStart: valStart, valEnd: valEnd,
		freeOff: freeOff, free: free,
		next: valEnd + free,
	}
}

// firstEntryOffset is the offset of the first entry (or the terminator, if
// the map is empty), immediately after the 1-byte zmlen field.
const firstEntryOffset = 1

// find scans for key, returning its decoded entryView and offset, or
// ok == false if absent.
func (zm ZipMap) find(key []byte) (ev entryView, off int, ok bool) {
	blob := zm.bytes()
	off = firstEntryOffset
	for blob[off] != terminator {
		ev = decodeEntry(blob, off)
		if bytesEqual(blob[ev.keyStart:ev.keyEnd], key) {
			return ev, off, true
		}
		off = ev.next
	}
	return entryView{}, -1, false
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Get returns the value stored for key and true, or false if absent. The
// returned slice aliases the blob and is invalidated by any mutation.
func (zm ZipMap) Get(key []byte) ([]byte, bool) {
	ev, _, ok := zm.find(key)
	if !ok {
		return nil, false
	}
	return zm.bytes()[ev.valStart:ev.valEnd], true
}

// Exists reports whether key is present.
func (zm ZipMap) Exists(key []byte) bool {
	_, _, ok := zm.find(key)
	return ok
}

// Len reports the element count: O(1) if the saturating counter hasn't
// overflowed, O(n) otherwise.
func (zm ZipMap) Len() int {
	blob := zm.bytes()
	zmlen := int(blob[0])
	if zmlen != countUnknown {
		return zmlen
	}

	count := 0
	off := firstEntryOffset
	for blob[off] != terminator {
		ev := decodeEntry(blob, off)
		off = ev.next
		count++
	}
	if count < countUnknown {
		blob[0] = byte(count)
	}
	return count
}

// BlobLen returns the total blob length in bytes, including the zmlen
// byte and the terminator, found by scanning to the terminator.
func (zm ZipMap) BlobLen() int {
	blob := zm.bytes()
	off := firstEntryOffset
	for blob[off] != terminator {
		off = decodeEntry(blob, off).next
	}
	return off + 1
}

func (zm ZipMap) incrZMLen(delta int) {
	blob := zm.bytes()
	cur := int(blob[0])
	if cur == countUnknown {
		return // already "unknown"; scanning is the only way back
	}
	next := cur + delta
	if next >= countUnknown {
		blob[0] = countUnknown
		return
	}
	blob[0] = byte(next)
}

// resize reallocates zm's blob to exactly newLen bytes, returning the
// updated handle. On failure the input zm is returned unchanged.
func resize(zm ZipMap, newLen int) (ZipMap, error) {
	p, err := zm.a.Realloc(zm.p, newLen)
	if err != nil {
		return zm, err
	}
	zm.p = p
	zm.n = newLen
	return zm, nil
}
