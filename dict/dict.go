// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dict implements a hash map with chained buckets, power-of-two
// sizing, and rehashing interleaved with normal operations one bucket at a
// time, in the style of flt.go's incremental free-list reorganization: a
// long-running structural change is sliced into small steps, each one
// riding along on an otherwise-unrelated caller operation, so no single
// call ever pays for migrating the whole table.
package dict

import (
	"errors"
	"sync"
	"time"

	"github.com/fyyzkd/redis/hash/siphash"
)

// ErrOOM is returned by Expand/Resize when growing a table fails (AddRaw,
// which calls through Expand, reports the same failure by returning nil
// instead): either the requested
// size overflows what a bucket array can address, or Go's own allocator
// raised the one failure it can signal synchronously instead of crashing
// the process (a request past the maximum slice length). A genuine
// process-wide out-of-memory condition is not caught here, the same
// limitation list.List's Node allocation has; see DESIGN.md.
var ErrOOM = errors.New("dict: out of memory")

// initialSize is the bucket count of a table's first allocation.
const initialSize = 4

// forceResizeRatio is the load factor above which Dict expands even while
// resizing has been globally disabled, per spec.md §4.3: small overloads
// wait, catastrophic ones do not.
const forceResizeRatio = 5

var (
	seedMu sync.Mutex
	seed   [siphash.KeySize]byte

	resizeMu      sync.Mutex
	resizeEnabled = true
)

// SetHashSeed installs the process-wide 128-bit seed used by HashString and
// HashStringCaseInsensitive. It is meant to be called once, by the host,
// before the first Dict is created.
func SetHashSeed(s [siphash.KeySize]byte) {
	seedMu.Lock()
	seed = s
	seedMu.Unlock()
}

// HashSeed returns the current process-wide hash seed.
func HashSeed() [siphash.KeySize]byte {
	seedMu.Lock()
	defer seedMu.Unlock()
	return seed
}

// HashString hashes b with SipHash-2-4 under the process-wide seed. It is
// the default Type.Hash for string/byte-slice keyed dicts.
func HashString(b []byte) uint64 {
	return siphash.Sum64(HashSeed(), b)
}

// HashStringCaseInsensitive is HashString with ASCII case folded out first.
func HashStringCaseInsensitive(b []byte) uint64 {
	return siphash.Sum64CaseInsensitive(HashSeed(), b)
}

// SetResizeEnabled toggles the global "resize allowed" flag shared by every
// Dict in the process, mirroring the single ambient boolean spec.md §5
// describes (e.g. cleared while a child process is believed to be copying
// pages via fork, so growing a table doesn't touch every page).
func SetResizeEnabled(enabled bool) {
	resizeMu.Lock()
	resizeEnabled = enabled
	resizeMu.Unlock()
}

func resizeAllowed() bool {
	resizeMu.Lock()
	defer resizeMu.Unlock()
	return resizeEnabled
}

// Type is the per-Dict vtable: the operations a Dict needs on its key and
// value types, plus an opaque PrivData threaded through to every callback.
// Only Hash is required; the rest default to identity/no-op behavior.
type Type[K any, V any] struct {
	Hash          func(privdata interface{}, key K) uint64
	KeyDup        func(privdata interface{}, key K) K
	ValDup        func(privdata interface{}, val V) V
	KeyCompare    func(privdata interface{}, a, b K) bool
	KeyDestructor func(privdata interface{}, key K)
	ValDestructor func(privdata interface{}, val V)
}

func (t *Type[K, V]) keysEqual(privdata interface{}, a, b K) bool {
	if t.KeyCompare != nil {
		return t.KeyCompare(privdata, a, b)
	}
	return any(a) == any(b)
}

func (t *Type[K, V]) dupKey(privdata interface{}, k K) K {
	if t.KeyDup != nil {
		return t.KeyDup(privdata, k)
	}
	return k
}

func (t *Type[K, V]) dupVal(privdata interface{}, v V) V {
	if t.ValDup != nil {
		return t.ValDup(privdata, v)
	}
	return v
}

func (t *Type[K, V]) destroyKey(privdata interface{}, k K) {
	if t.KeyDestructor != nil {
		t.KeyDestructor(privdata, k)
	}
}

func (t *Type[K, V]) destroyVal(privdata interface{}, v V) {
	if t.ValDestructor != nil {
		t.ValDestructor(privdata, v)
	}
}

// Entry is one chained bucket element. AddRaw returns one so a caller can
// install its value directly, the same role dictEntry plays for
// dictAddRaw in the algorithm this package follows.
type Entry[K any, V any] struct {
	key  K
	val  V
	next *Entry[K, V]
}

// Key returns the entry's key.
func (e *Entry[K, V]) Key() K { return e.key }

// Value returns the entry's current value.
func (e *Entry[K, V]) Value() V { return e.val }

// SetValue installs v as the entry's value directly, without running
// Type.ValDup. Add and Replace call this after AddRaw; a caller driving
// AddRaw itself is responsible for any duplication it would otherwise
// have performed.
func (e *Entry[K, V]) SetValue(v V) { e.val = v }

// table is one of a Dict's two hash tables.
type table[K any, V any] struct {
	buckets []*Entry[K, V]
	mask    uint64
	used    uint64
}

func (t *table[K, V]) size() uint64 {
	if t.buckets == nil {
		return 0
	}
	return uint64(len(t.buckets))
}

// Dict is a chained hash map with incremental, cooperative rehashing. The
// zero value is not usable; construct with New.
type Dict[K any, V any] struct {
	typ       *Type[K, V]
	privdata  interface{}
	ht        [2]table[K, V]
	rehashIdx int64 // -1 when idle
	iterators int
}

// New returns an empty Dict using typ for hashing, comparison, and element
// lifecycle, with privdata passed through to every Type callback.
func New[K any, V any](typ *Type[K, V], privdata interface{}) *Dict[K, V] {
	return &Dict[K, V]{
		typ:       typ,
		privdata:  privdata,
		rehashIdx: -1,
	}
}

// Len returns the total number of entries across both tables.
func (d *Dict[K, V]) Len() int {
	return int(d.ht[0].used + d.ht[1].used)
}

// Rehashing reports whether a rehash is in progress (r >= 0).
func (d *Dict[K, V]) Rehashing() bool {
	return d.rehashIdx != -1
}

func (d *Dict[K, V]) hash(key K) uint64 {
	return d.typ.Hash(d.privdata, key)
}

// RehashMilliseconds runs rehash(100) in a loop until ms have elapsed. It is
// meant to be called by the host during idle time, outside of any single
// mutating operation.
func (d *Dict[K, V]) RehashMilliseconds(ms int) {
	deadline := time.Now().Add(time.Duration(ms) * time.Millisecond)
	for time.Now().Before(deadline) {
		if d.rehash(100) == 0 {
			return
		}
	}
}
