// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbs implements the dynamic byte string: a length-prefixed,
// binary-safe, amortized-O(1)-append byte buffer with a variable-width
// header, in the style of falloc.go's short/long/relocated block tags — a
// single tag byte selects among a handful of fixed header shapes, each
// sized for a different content-length range.
package dbs

import (
	"errors"
	"unsafe"

	"github.com/cznic/mathutil"

	"github.com/fyyzkd/redis/alloc"
)

// Variant identifies one of the five header shapes a DBS may currently use.
// It is stored in the low 3 bits of the flags byte that always immediately
// precedes the payload.
type Variant uint8

const (
	T5 Variant = iota
	T8
	T16
	T32
	T64
)

const variantMask = 0x07

// ErrInvalidSeparator is returned by Split when the separator is empty.
var ErrInvalidSeparator = errors.New("dbs: separator must be at least 1 byte")

// ErrUnbalancedQuotes is returned by SplitArgs on malformed quoting.
var ErrUnbalancedQuotes = errors.New("dbs: unbalanced quotes in input")

// ErrTooLarge is returned by MakeRoom when growing h would exceed
// maxStringLen.
var ErrTooLarge = errors.New("dbs: string exceeds maximum length")

// maxStringLen mirrors Redis's own per-string size ceiling
// (proto-max-bulk-len's historical default of 512MiB): the largest
// capacity MakeRoom will ever grow a handle to. A var, not a const, so
// tests can shrink it rather than actually allocating hundreds of
// megabytes to exercise the clamp.
var maxStringLen uint64 = 512 << 20

// DBS is a handle to a dynamic byte string. The zero value is the "null"
// handle spec.md's failure paths return: invalid, carries no allocation.
type DBS struct {
	p unsafe.Pointer // first payload byte; header sits at negative offsets
	a alloc.Allocator
}

// Valid reports whether h refers to a live allocation.
func (h DBS) Valid() bool { return h.p != nil }

func headerSize(v Variant) int {
	switch v {
	case T5:
		return 1
	case T8:
		return 3
	case T16:
		return 5
	case T32:
		return 9
	case T64:
		return 17
	default:
		panic("dbs: invalid variant")
	}
}

// fieldWidth is the byte width of the length and capacity fields for
// variants that have them (everything but T5).
func fieldWidth(v Variant) int {
	switch v {
	case T8:
		return 1
	case T16:
		return 2
	case T32:
		return 4
	case T64:
		return 8
	default:
		panic("dbs: T5 has no length/capacity fields")
	}
}

// variantFor picks the smallest variant able to hold a string of length n,
// per the max-length column of spec.md's header table. Callers wanting the
// "empty strings use T8" exception or the "never T5 after growth" rule
// apply it after calling this.
func variantFor(n int) Variant {
	switch {
	case n <= 31:
		return T5
	case n <= 0xFF:
		return T8
	case n <= 0xFFFF:
		return T16
	case n <= 0xFFFFFFFF:
		return T32
	default:
		return T64
	}
}

// variantForGrow is variantFor without the T5 case: make_room must never
// produce a T5 handle, since T5 cannot track spare capacity.
func variantForGrow(n uint64) Variant {
	switch {
	case n <= 0xFF:
		return T8
	case n <= 0xFFFF:
		return T16
	case n <= 0xFFFFFFFF:
		return T32
	default:
		return T64
	}
}

func readUint(p unsafe.Pointer, width int) uint64 {
	switch width {
	case 1:
		return uint64(*(*uint8)(p))
	case 2:
		return uint64(*(*uint16)(p))
	case 4:
		return uint64(*(*uint32)(p))
	case 8:
		return *(*uint64)(p)
	default:
		panic("dbs: bad field width")
	}
}

func writeUint(p unsafe.Pointer, width int, v uint64) {
	switch width {
	case 1:
		*(*uint8)(p) = uint8(v)
	case 2:
		*(*uint16)(p) = uint16(v)
	case 4:
		*(*uint32)(p) = uint32(v)
	case 8:
		*(*uint64)(p) = v
	default:
		panic("dbs: bad field width")
	}
}

func (h DBS) flagsPtr() *byte {
	return (*byte)(unsafe.Add(h.p, -1))
}

func (h DBS) variant() Variant {
	return Variant(*h.flagsPtr() & variantMask)
}

func (h DBS) lenPtr() unsafe.Pointer {
	w := fieldWidth(h.variant())
	return unsafe.Add(h.p, -(1 + 2*w))
}

func (h DBS) capPtr() unsafe.Pointer {
	w := fieldWidth(h.variant())
	return unsafe.Add(h.p, -(1 + w))
}

func (h DBS) initFlags(v Variant) {
	*h.flagsPtr() = byte(v)
}

func (h DBS) setLenRaw(n int) {
	v := h.variant()
	if v == T5 {
		*h.flagsPtr() = byte(n<<3) | byte(v)
		return
	}
	writeUint(h.lenPtr(), fieldWidth(v), uint64(n))
}

func (h DBS) setCapRaw(n int) {
	if h.variant() == T5 {
		return // capacity is implicitly == length for T5
	}
	writeUint(h.capPtr(), fieldWidth(h.variant()), uint64(n))
}

// Len returns the current content length. O(1).
func (h DBS) Len() int {
	v := h.variant()
	if v == T5 {
		return int(*h.flagsPtr() >> 3)
	}
	return int(readUint(h.lenPtr(), fieldWidth(v)))
}

// Cap returns the current content capacity. O(1).
func (h DBS) Cap() int {
	if h.variant() == T5 {
		return h.Len()
	}
	return int(readUint(h.capPtr(), fieldWidth(h.variant())))
}

// Avail returns the spare capacity, Cap()-Len(). O(1).
func (h DBS) Avail() int { return h.Cap() - h.Len() }

// Bytes returns a slice aliasing the live payload. It is invalidated by any
// mutating DBS call that may relocate the handle.
func (h DBS) Bytes() []byte {
	if h.p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(h.p), h.Len())
}

// String copies the payload into a Go string.
func (h DBS) String() string { return string(h.Bytes()) }

func writeTrailingNUL(p unsafe.Pointer, length int) {
	*(*byte)(unsafe.Add(p, length)) = 0
}

// Create allocates a new DBS containing a copy of b. Empty input always
// picks T8, not T5, per spec.md §9: T5 cannot track spare capacity and
// empty strings are usually appended to immediately afterward.
func Create(a alloc.Allocator, b []byte) (DBS, error) {
	n := len(b)
	v := variantFor(n)
	if n == 0 {
		v = T8
	}
	hsz := headerSize(v)
	base, err := a.Alloc(hsz + n + 1)
	if err != nil {
		return DBS{}, err
	}
	h := DBS{p: unsafe.Add(base, hsz), a: a}
	h.initFlags(v)
	h.setLenRaw(n)
	if v != T5 {
		h.setCapRaw(n)
	}
	copy(h.Bytes(), b)
	writeTrailingNUL(h.p, n)
	return h, nil
}

// CreateUninit allocates a new DBS of length n with unspecified content; the
// trailing NUL sentinel is still written.
func CreateUninit(a alloc.Allocator, n int) (DBS, error) {
	v := variantFor(n)
	if n == 0 {
		v = T8
	}
	hsz := headerSize(v)
	base, err := a.Alloc(hsz + n + 1)
	if err != nil {
		return DBS{}, err
	}
	h := DBS{p: unsafe.Add(base, hsz), a: a}
	h.initFlags(v)
	h.setLenRaw(n)
	if v != T5 {
		h.setCapRaw(n)
	}
	writeTrailingNUL(h.p, n)
	return h, nil
}

// Free releases h. Passing the zero value is a no-op.
func Free(h DBS) {
	if h.p == nil {
		return
	}
	base := unsafe.Add(h.p, -headerSize(h.variant()))
	h.a.Free(base)
}

// resizeTo changes h's variant/capacity, preserving the first `length`
// content bytes (plus the trailing NUL). Same variant: reallocate in place
// (cheap metadata update, retaining payload, per make_room's contract).
// Different variant: allocate fresh, copy payload+NUL, free old, per both
// make_room's and shrink's contract for a changed header shape.
func (h DBS) resizeTo(v Variant, length, capacity int) (DBS, error) {
	oldVariant := h.variant()
	newHsz := headerSize(v)

	if v == oldVariant {
		oldBase := unsafe.Add(h.p, -headerSize(oldVariant))
		newBase, err := h.a.Realloc(oldBase, newHsz+capacity+1)
		if err != nil {
			return h, err
		}
		nh := DBS{p: unsafe.Add(newBase, newHsz), a: h.a}
		nh.setLenRaw(length)
		nh.setCapRaw(capacity)
		return nh, nil
	}

	newBase, err := h.a.Alloc(newHsz + capacity + 1)
	if err != nil {
		return h, err
	}
	nh := DBS{p: unsafe.Add(newBase, newHsz), a: h.a}
	nh.initFlags(v)
	nh.setLenRaw(length)
	if v != T5 {
		nh.setCapRaw(capacity)
	}
	copy(nh.Bytes()[:length], h.Bytes()[:length])
	writeTrailingNUL(nh.p, length)

	oldBase := unsafe.Add(h.p, -headerSize(oldVariant))
	h.a.Free(oldBase)
	return nh, nil
}

// MakeRoom ensures Avail() >= addlen, growing and possibly relocating h.
// Growth policy: target = length+addlen; double it below the 1MiB
// preallocation threshold, otherwise add the threshold flat, capped at
// maxStringLen. The resulting variant is never T5 (append will need to
// track slack afterward).
func (h DBS) MakeRoom(addlen int) (DBS, error) {
	if addlen < 0 {
		panic("dbs: MakeRoom: negative addlen")
	}
	if h.Avail() >= addlen {
		return h, nil
	}

	curLen := h.Len()
	target := uint64(curLen) + uint64(addlen)
	if target > maxStringLen {
		return h, ErrTooLarge
	}

	const preallocThreshold = 1 << 20
	var newCap uint64
	if target < preallocThreshold {
		newCap = target * 2
	} else {
		newCap = target + preallocThreshold
	}
	// newCap can overshoot maxStringLen near the ceiling (target just
	// under it, plus a full preallocThreshold); mathutil.Min clamps it
	// back down to the limit.
	newCap = uint64(mathutil.Min(int64(newCap), int64(maxStringLen)))

	return h.resizeTo(variantForGrow(newCap), curLen, int(newCap))
}

// Shrink removes free space, selecting the smallest variant that fits the
// current length.
func (h DBS) Shrink() (DBS, error) {
	curLen := h.Len()
	v := variantFor(curLen)
	if curLen == 0 {
		v = T8
	}
	return h.resizeTo(v, curLen, curLen)
}

// Append (a.k.a. cat) appends b to h, growing h if necessary.
func (h DBS) Append(b []byte) (DBS, error) {
	n := len(b)
	if n == 0 {
		return h, nil
	}
	if h.Avail() < n {
		var err error
		h, err = h.MakeRoom(n)
		if err != nil {
			return h, err
		}
	}
	oldLen := h.Len()
	copy(unsafe.Slice((*byte)(unsafe.Add(h.p, oldLen)), n), b)
	h.setLenRaw(oldLen + n)
	writeTrailingNUL(h.p, oldLen+n)
	return h, nil
}

// SetLen sets the length field directly; the caller is responsible for
// capacity already covering newlen. Rewrites the trailing NUL.
func (h DBS) SetLen(newlen int) DBS {
	h.setLenRaw(newlen)
	writeTrailingNUL(h.p, newlen)
	return h
}

// IncLen adjusts the length field by delta; same contract as SetLen.
func (h DBS) IncLen(delta int) DBS { return h.SetLen(h.Len() + delta) }

// IncrementLen implements the "caller wrote delta bytes past length"
// contract: delta must not exceed available capacity (delta >= 0) or
// current length (delta < 0). Rewrites the trailing NUL at the new end.
func (h DBS) IncrementLen(delta int) DBS {
	cur := h.Len()
	if delta >= 0 {
		if delta > h.Avail() {
			panic("dbs: IncrementLen: delta exceeds available capacity")
		}
	} else if cur < -delta {
		panic("dbs: IncrementLen: negative delta exceeds current length")
	}
	newLen := cur + delta
	h.setLenRaw(newLen)
	writeTrailingNUL(h.p, newLen)
	return h
}

// CopyInto destructively overwrites h's content with b, growing h first if
// its capacity is too small.
func (h DBS) CopyInto(b []byte) (DBS, error) {
	n := len(b)
	if h.Cap() < n {
		var err error
		h, err = h.MakeRoom(n - h.Len())
		if err != nil {
			return h, err
		}
	}
	copy(unsafe.Slice((*byte)(h.p), n), b)
	h.setLenRaw(n)
	writeTrailingNUL(h.p, n)
	return h, nil
}
