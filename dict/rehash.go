// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

import "github.com/cznic/mathutil"

// nextPower returns the smallest power of two >= size, with a floor of
// initialSize, or 0 if size is too large for any uint64 power of two to
// hold (the doubling loop would wrap around before reaching it).
func nextPower(size uint64) uint64 {
	if size < initialSize {
		return initialSize
	}
	p := uint64(initialSize)
	for p < size {
		next := p << 1
		if next <= p {
			return 0
		}
		p = next
	}
	return p
}

// newTable allocates a bucket array of the given size. Go's make() has
// exactly one failure it can signal synchronously rather than crashing the
// process outright: a request past the maximum slice length, reported as a
// recoverable runtime panic. newTable turns that one case into ErrOOM so
// Expand can return it like any other allocation failure; a true
// process-wide out-of-memory condition still isn't recoverable, the same
// limit list.List's Node allocation accepts. See DESIGN.md for why bucket
// arrays are allocated this way instead of through alloc.Allocator.
func newTable[K any, V any](size uint64) (t table[K, V], err error) {
	defer func() {
		if recover() != nil {
			t = table[K, V]{}
			err = ErrOOM
		}
	}()
	t = table[K, V]{
		buckets: make([]*Entry[K, V], size),
		mask:    size - 1,
	}
	return t, nil
}

// Expand allocates a new table of the smallest power-of-two size holding
// size elements. If T[0] is not yet allocated, the new table becomes T[0]
// directly; otherwise it becomes T[1] and a rehash begins. The new table
// may be smaller than T[0] (this is how Resize shrinks). Expand does
// nothing while a rehash is already in progress, when size is below the
// current element count, or when the target equals T[0]'s size. Returns
// ErrOOM if size is unaddressable or the underlying allocation fails.
func (d *Dict[K, V]) Expand(size uint64) error {
	if d.Rehashing() {
		return nil
	}
	target := nextPower(size)
	if target == 0 {
		return ErrOOM
	}
	if d.ht[0].buckets != nil && (d.ht[0].used > size || target == d.ht[0].size()) {
		return nil
	}

	nt, err := newTable[K, V](target)
	if err != nil {
		return err
	}

	if d.ht[0].buckets == nil {
		d.ht[0] = nt
		return nil
	}

	d.ht[1] = nt
	d.rehashIdx = 0
	return nil
}

// Resize shrinks d's table to the smallest power of two that still holds
// its current entries, ignoring SetResizeEnabled and forceResizeRatio —
// the host's explicit "shrink to fit now" hook, mirroring dictResize's
// override of the global resize flag. A no-op while already rehashing.
// mathutil.Max supplies the initialSize floor: a near-empty dict's used
// count is routinely below initialSize, so Max genuinely picks the floor
// here rather than the table's actual occupancy.
func (d *Dict[K, V]) Resize() error {
	if d.Rehashing() {
		return nil
	}
	minimal := uint64(mathutil.Max(int64(d.ht[0].used), int64(initialSize)))
	return d.Expand(minimal)
}

// expandIfNeeded is consulted before every insert.
func (d *Dict[K, V]) expandIfNeeded() error {
	if d.Rehashing() {
		return nil
	}
	if d.ht[0].buckets == nil {
		return d.Expand(initialSize)
	}
	if d.ht[0].used >= d.ht[0].size() &&
		(resizeAllowed() || d.ht[0].used/d.ht[0].size() > forceResizeRatio) {
		return d.Expand(d.ht[0].used * 2)
	}
	return nil
}

// rehash migrates up to n non-empty buckets from T[0] to T[1]. It returns 1
// if more work remains, 0 if rehashing has completed (or was not in
// progress), giving up early (returning 1) after visiting 10*n empty
// buckets in total during the call, so a caller doing this
// opportunistically never stalls.
func (d *Dict[K, V]) rehash(n int) int {
	emptyVisits := n * 10
	if !d.Rehashing() {
		return 0
	}

	for n > 0 && d.ht[0].used != 0 {
		for d.ht[0].buckets[d.rehashIdx] == nil {
			d.rehashIdx++
			emptyVisits--
			if emptyVisits == 0 {
				return 1
			}
		}

		bucket := d.ht[0].buckets[d.rehashIdx]
		for bucket != nil {
			next := bucket.next
			idx := d.hash(bucket.key) & d.ht[1].mask
			bucket.next = d.ht[1].buckets[idx]
			d.ht[1].buckets[idx] = bucket
			d.ht[0].used--
			d.ht[1].used++
			bucket = next
		}
		d.ht[0].buckets[d.rehashIdx] = nil
		d.rehashIdx++
		n--
	}

	if d.ht[0].used == 0 {
		d.ht[0] = d.ht[1]
		d.ht[1] = table[K, V]{}
		d.rehashIdx = -1
		return 0
	}
	return 1
}

// RehashStep performs rehash(1) unless a safe iterator is currently live,
// in which case it is a no-op: structural migration while a safe iterator
// holds references into both tables would invalidate it. Exported so a
// host can drive cooperative rehashing directly, per spec.md §5, instead
// of only ever riding along on Find/AddRaw/Unlink.
func (d *Dict[K, V]) RehashStep() {
	if d.iterators == 0 {
		d.rehash(1)
	}
}
