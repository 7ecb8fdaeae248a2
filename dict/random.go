// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

import "math/rand"

// GetRandomKey returns a randomly chosen entry's key and value. It is
// O(1) amortized: one random bucket pick (possibly retried against an
// empty bucket) followed by a uniform pick within that bucket's chain, so
// an entry sharing a bucket with others is less likely to be picked than
// one alone in its bucket.
func (d *Dict[K, V]) GetRandomKey() (K, V, bool) {
	var zk K
	var zv V
	if d.Len() == 0 {
		return zk, zv, false
	}
	if d.Rehashing() {
		d.RehashStep()
	}

	var he *Entry[K, V]
	if d.Rehashing() {
		span := d.ht[0].size() + d.ht[1].size() - uint64(d.rehashIdx)
		for he == nil {
			h := uint64(d.rehashIdx) + uint64(rand.Int63())%span
			if h >= d.ht[0].size() {
				he = d.ht[1].buckets[h-d.ht[0].size()]
			} else {
				he = d.ht[0].buckets[h]
			}
		}
	} else {
		for he == nil {
			idx := uint64(rand.Int63()) & d.ht[0].mask
			he = d.ht[0].buckets[idx]
		}
	}

	length := 0
	for e := he; e != nil; e = e.next {
		length++
	}
	pick := rand.Intn(length)
	for i := 0; i < pick; i++ {
		he = he.next
	}
	return he.key, he.val, true
}

// sampledEntry is one entry surfaced by GetSomeKeys.
type sampledEntry[K any, V any] struct {
	Key K
	Val V
}

// GetSomeKeys samples up to count entries by walking forward from a random
// starting bucket, per spec.md §4.3: best-effort, not statistically
// uniform. Duplicates and a short result (even an empty one, on a sparse
// table) are both allowed outcomes.
func (d *Dict[K, V]) GetSomeKeys(count int) []sampledEntry[K, V] {
	var out []sampledEntry[K, V]
	if d.Len() == 0 || count <= 0 {
		return out
	}
	if count > d.Len() {
		count = d.Len()
	}

	maxSteps := count * 10
	if d.Rehashing() {
		for i := 0; i < 5 && i <= count; i++ {
			d.RehashStep()
		}
	}

	tables := 1
	if d.Rehashing() {
		tables = 2
	}

	i := uint64(rand.Int63()) & d.ht[0].mask
	emptyLen := 0
	for len(out) < count && maxSteps > 0 {
		for t := 0; t < tables; t++ {
			if t == 0 && d.Rehashing() && i < uint64(d.rehashIdx) {
				// already migrated out of T[0]; nothing to see here.
				continue
			}
			if i > d.ht[t].mask {
				continue
			}
			bucket := d.ht[t].buckets[i]
			if bucket == nil {
				emptyLen++
				if emptyLen >= 5 && emptyLen > count {
					i = uint64(rand.Int63())
					emptyLen = 0
				}
			} else {
				emptyLen = 0
				for e := bucket; e != nil; e = e.next {
					out = append(out, sampledEntry[K, V]{Key: e.key, Val: e.val})
					if len(out) == count {
						return out
					}
				}
			}
		}
		i = (i + 1) & d.maxMask()
		maxSteps--
	}
	return out
}

func (d *Dict[K, V]) maxMask() uint64 {
	if d.ht[1].mask > d.ht[0].mask {
		return d.ht[1].mask
	}
	return d.ht[0].mask
}
