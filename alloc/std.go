// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import "unsafe"

// sizeClasses rounds small requests up, the same way falloc.go rounds a
// requested block size up to a whole number of 16-byte atoms: a handful of
// fixed classes absorb the churn of repeated small grow/shrink cycles (DBS's
// make_room in particular) without the allocator having to track a full
// free-list table of its own.
var sizeClasses = [...]int{16, 32, 48, 64, 96, 128, 192, 256, 384, 512, 768, 1024, 1536, 2048}

func nextSizeClass(n int) int {
	for _, c := range sizeClasses {
		if n <= c {
			return c
		}
	}
	// Above the largest fixed class, round up to the next 4KiB page; there
	// is no benefit in tracking finer classes for content that large.
	const page = 4096
	return (n + page - 1) / page * page
}

// stdHeaderSize is the width of Std's own hidden block header: a single
// uint64 recording the usable size of the allocation, stored the same way
// falloc.go keeps a block's size in its head/tail tags and recovers it by
// stepping backward from the content.
const stdHeaderSize = int(unsafe.Sizeof(uint64(0)))

// Std is a direct, unpooled Allocator backed by Go's own runtime allocator.
// It exists because Go exposes no portable way to ask "how big is this
// allocation actually", so Std prefixes every block with its own tiny
// header recording the rounded-up usable size, and hands the caller a
// pointer past it — the same header-behind-the-handle trick DBS itself uses
// for its length/capacity fields.
type Std struct{}

// NewStd returns a ready-to-use Std allocator.
func NewStd() *Std { return &Std{} }

func (*Std) Alloc(n int) (unsafe.Pointer, error) {
	if n < 0 {
		panic("alloc: negative size")
	}

	usable := nextSizeClass(n)
	buf := make([]byte, stdHeaderSize+usable)
	*(*uint64)(unsafe.Pointer(&buf[0])) = uint64(usable)
	return unsafe.Pointer(&buf[stdHeaderSize]), nil
}

func (s *Std) Realloc(p unsafe.Pointer, n int) (unsafe.Pointer, error) {
	if p == nil {
		return s.Alloc(n)
	}
	if n < 0 {
		panic("alloc: negative size")
	}

	old := s.UsableSize(p)
	if n <= old {
		// Content already fits the live allocation; just shrink the
		// recorded usable size and keep the same address.
		*headerOf(p) = uint64(n)
		return p, nil
	}

	np, err := s.Alloc(n)
	if err != nil {
		return nil, err
	}

	dst := unsafe.Slice((*byte)(np), old)
	src := unsafe.Slice((*byte)(p), old)
	copy(dst, src)
	s.Free(p)
	return np, nil
}

// Free is a no-op: Go's garbage collector reclaims the backing array once
// the last live pointer into it (the one returned to the caller) is gone.
// The method exists so callers follow the alloc/realloc/free discipline the
// rest of this module assumes, in case a future Allocator is swapped in
// that does need explicit release.
func (*Std) Free(p unsafe.Pointer) { _ = p }

func (*Std) UsableSize(p unsafe.Pointer) int {
	if p == nil {
		return 0
	}
	return int(*headerOf(p))
}

func headerOf(p unsafe.Pointer) *uint64 {
	return (*uint64)(unsafe.Add(p, -stdHeaderSize))
}
