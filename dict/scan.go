// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

import "math/bits"

// ScanFunc is invoked once per live entry visited by Scan.
type ScanFunc[K any, V any] func(key K, val V)

// Scan implements the reverse-binary-increment cursor walk of spec.md
// §4.3: callers start with cursor 0 and stop once the returned cursor is
// 0. Bit-reversing the cursor before incrementing means every table index
// a future growth would split from a currently-scanned index is a bit
// extension of it, and every index a future shrink would merge into one is
// a bit prefix of it — so buckets already visited never need revisiting,
// across any number of intervening expansions or shrinks. Every key
// present throughout the scan is visited at least once; duplicates are
// possible when rehashing races a scan.
func (d *Dict[K, V]) Scan(cursor uint64, fn ScanFunc[K, V]) uint64 {
	if d.Len() == 0 {
		return 0
	}

	t0 := &d.ht[0]
	var m0 uint64

	if !d.Rehashing() {
		m0 = t0.mask
		scanBucket(t0, cursor&m0, fn)
	} else {
		t1 := &d.ht[1]
		if t0.size() > t1.size() {
			t0, t1 = t1, t0
		}
		m0 = t0.mask
		m1 := t1.mask

		scanBucket(t0, cursor&m0, fn)

		for {
			scanBucket(t1, cursor&m1, fn)

			cursor |= ^m1
			cursor = bits.Reverse64(cursor)
			cursor++
			cursor = bits.Reverse64(cursor)

			if cursor&(m0^m1) == 0 {
				break
			}
		}
		// The inner loop's last increment already carried into the
		// smaller table's bits, advancing the cursor.
		return cursor
	}

	cursor |= ^m0
	cursor = bits.Reverse64(cursor)
	cursor++
	cursor = bits.Reverse64(cursor)
	return cursor
}

func scanBucket[K any, V any](t *table[K, V], idx uint64, fn ScanFunc[K, V]) {
	if t.buckets == nil || idx >= t.size() {
		return
	}
	for e := t.buckets[idx]; e != nil; e = e.next {
		fn(e.key, e.val)
	}
}
