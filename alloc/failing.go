// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import "unsafe"

// Failing wraps an Allocator and deterministically fails one chosen call,
// the way lldb/memfiler.go's in-memory Filer stands in for a real file in
// lldb's own tests: every package in this module that grows, shrinks or
// reallocates must leave its input valid and unchanged on allocation
// failure, and Failing is how that is exercised without needing to exhaust
// real memory.
type Failing struct {
	Under  Allocator
	FailOn int // 1-based ordinal of the Alloc/Realloc call that fails; 0 disables failure

	calls int
}

// NewFailing returns a Failing allocator delegating to under, whose failOn'th
// call to Alloc or Realloc (counted together, starting at 1) returns ErrOOM
// instead of delegating. failOn == 0 never fails.
func NewFailing(under Allocator, failOn int) *Failing {
	return &Failing{Under: under, FailOn: failOn}
}

func (f *Failing) shouldFail() bool {
	f.calls++
	return f.FailOn > 0 && f.calls == f.FailOn
}

func (f *Failing) Alloc(n int) (unsafe.Pointer, error) {
	if f.shouldFail() {
		return nil, ErrOOM
	}
	return f.Under.Alloc(n)
}

func (f *Failing) Realloc(p unsafe.Pointer, n int) (unsafe.Pointer, error) {
	if f.shouldFail() {
		return nil, ErrOOM
	}
	return f.Under.Realloc(p, n)
}

func (f *Failing) Free(p unsafe.Pointer) { f.Under.Free(p) }

func (f *Failing) UsableSize(p unsafe.Pointer) int { return f.Under.UsableSize(p) }
