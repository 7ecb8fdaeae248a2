// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package alloc defines the byte-allocator contract every other package in
// this module is built on: DBS and ZIPMAP never touch Go's runtime
// allocator directly, they go through an Allocator. DICT's bucket arrays
// and the linked list's nodes hold Go pointers and are allocated with Go's
// own allocator instead; see DESIGN.md.
//
// There is exactly one contract: allocate n bytes, reallocate a live
// allocation (possibly relocating it), free it, and report the usable size
// of a live allocation (which may be larger than what was requested). No
// caching strategy, arena, or pooling behavior is specified; Std is a
// direct, unpooled implementation.
package alloc

import (
	"errors"
	"unsafe"
)

// ErrOOM is returned by Alloc and Realloc when the allocator cannot satisfy
// a request. It is the only error value the allocator contract defines;
// callers propagate it and leave their input handle valid and unchanged.
var ErrOOM = errors.New("alloc: out of memory")

// Allocator is the four-function contract described in spec.md §4.1.
// Components that allocate through an Allocator call only these four
// methods to obtain or release memory.
type Allocator interface {
	// Alloc returns a pointer to n freshly allocated, unspecified-content
	// bytes, or ErrOOM.
	Alloc(n int) (unsafe.Pointer, error)

	// Realloc resizes the live allocation at p to n bytes, preserving the
	// lesser of the old and new sizes worth of leading content. It may
	// return a different pointer than p; on success the caller must
	// substitute every stale reference to p with the returned pointer. On
	// failure p is left valid and unchanged.
	Realloc(p unsafe.Pointer, n int) (unsafe.Pointer, error)

	// Free releases the live allocation at p. Passing nil is a no-op.
	// Using p after Free is undefined, exactly as with C's free(3).
	Free(p unsafe.Pointer)

	// UsableSize reports the actual number of bytes obtainable at p,
	// which is always >= the size last requested for p.
	UsableSize(p unsafe.Pointer) int
}
