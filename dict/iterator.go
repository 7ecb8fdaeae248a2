// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

import (
	"unsafe"

	"github.com/fyyzkd/redis/hash/siphash"
)

// Iterator walks every entry in a Dict exactly once (barring a concurrent
// rehash racing an unsafe iterator, which is forbidden). Construct with
// NewSafeIterator or NewUnsafeIterator; always call Release.
type Iterator[K any, V any] struct {
	d           *Dict[K, V]
	table       int
	index       int64
	cur         *Entry[K, V]
	next        *Entry[K, V]
	safe        bool
	started     bool
	fingerprint uint64
	released    bool
}

// NewSafeIterator returns an iterator under which arbitrary insert/delete
// is permitted. While any safe iterator is live, RehashStep is a no-op;
// Release must be called to let rehashing resume.
func (d *Dict[K, V]) NewSafeIterator() *Iterator[K, V] {
	return &Iterator[K, V]{d: d, index: -1, table: 0, safe: true}
}

// NewUnsafeIterator returns an iterator that forbids structural
// modification for its lifetime. Release panics if the dict changed shape
// since creation (fingerprint mismatch), per spec.md §4.3's "abort on
// misuse" rule.
func (d *Dict[K, V]) NewUnsafeIterator() *Iterator[K, V] {
	return &Iterator[K, V]{d: d, index: -1, table: 0, safe: false, fingerprint: d.fingerprint()}
}

// Next advances the iterator and reports whether a new entry is available
// at Key/Val. The chain's next pointer is read before the current entry is
// returned, so deleting exactly the entry just yielded is always safe.
func (it *Iterator[K, V]) Next() bool {
	for {
		if it.cur == nil {
			if it.index == -1 && it.table == 0 && !it.started {
				it.started = true
				if it.safe {
					it.d.iterators++
				}
			}
			it.index++
			if uint64(it.index) >= it.d.ht[it.table].size() {
				if it.table == 0 && it.d.Rehashing() {
					it.table = 1
					it.index = 0
				} else {
					return false
				}
			}
			if it.d.ht[it.table].buckets == nil {
				return false
			}
			it.cur = it.d.ht[it.table].buckets[it.index]
		} else {
			it.cur = it.next
		}

		if it.cur != nil {
			it.next = it.cur.next
			return true
		}
	}
}

// Key and Val return the entry most recently yielded by Next.
func (it *Iterator[K, V]) Key() K { return it.cur.key }
func (it *Iterator[K, V]) Val() V { return it.cur.val }

// Release must be called when iteration is complete. For a safe iterator
// it allows RehashStep to resume; for an unsafe iterator it verifies no
// structural mutation occurred, panicking if one did.
func (it *Iterator[K, V]) Release() {
	if it.released {
		return
	}
	it.released = true
	if it.safe {
		if it.started {
			it.d.iterators--
		}
		return
	}
	if it.fingerprint != it.d.fingerprint() {
		panic("dict: unsafe iterator used across a structural mutation")
	}
}

// fingerprint is a 64-bit hash of the dict's structural identity: both
// tables' slice headers and entry counts. Any insert, delete, or rehash
// step changes it, which is exactly what an unsafe iterator must detect.
func (d *Dict[K, V]) fingerprint() uint64 {
	var buf [6 * 8]byte
	putU := func(off int, v uint64) {
		for i := 0; i < 8; i++ {
			buf[off+i] = byte(v >> (8 * i))
		}
	}
	putU(0, tableIdentity(d.ht[0].buckets))
	putU(8, d.ht[0].size())
	putU(16, d.ht[0].used)
	putU(24, tableIdentity(d.ht[1].buckets))
	putU(32, d.ht[1].size())
	putU(40, d.ht[1].used)

	return siphash.Sum64(HashSeed(), buf[:])
}

// tableIdentity gives a stable-for-the-life-of-the-slice numeric identity
// to a bucket array, standing in for the raw pointer value C's fingerprint
// hash uses: Go never exposes a slice header's address as an integer
// directly, so reinterpreting the header's Data field via an anonymous
// struct recovers it.
func tableIdentity[K any, V any](s []*Entry[K, V]) uint64 {
	if s == nil {
		return 0
	}
	type sliceHeader struct {
		data uintptr
		len  int
		cap  int
	}
	h := (*sliceHeader)(unsafe.Pointer(&s))
	return uint64(h.data)
}
