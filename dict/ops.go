// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

// Find returns the value stored for key and true, or the zero value and
// false if key is absent. It opportunistically advances an in-progress
// rehash by one step.
func (d *Dict[K, V]) Find(key K) (V, bool) {
	var zero V
	if d.Len() == 0 {
		return zero, false
	}
	d.RehashStep()

	h := d.hash(key)
	for t := 0; t <= 1; t++ {
		if t == 1 && !d.Rehashing() {
			break
		}
		idx := h & d.ht[t].mask
		for e := d.ht[t].buckets[idx]; e != nil; e = e.next {
			if d.typ.keysEqual(d.privdata, e.key, key) {
				return e.val, true
			}
		}
	}
	return zero, false
}

// AddRaw inserts key if it is not already present and returns the new
// Entry so the caller can install its value via SetValue. It returns nil if key already exists or if growing the table
// failed with ErrOOM; distinguish the two with Find if it matters. Add and
// Replace are built directly on top of it.
func (d *Dict[K, V]) AddRaw(key K) *Entry[K, V] {
	if d.Rehashing() {
		d.RehashStep()
	}
	if err := d.expandIfNeeded(); err != nil {
		return nil
	}

	h := d.hash(key)
	if _, found := d.findEntry(h, key); found {
		return nil
	}

	ti := 0
	if d.Rehashing() {
		ti = 1
	}
	idx := h & d.ht[ti].mask
	e := &Entry[K, V]{key: d.typ.dupKey(d.privdata, key), next: d.ht[ti].buckets[idx]}
	d.ht[ti].buckets[idx] = e
	d.ht[ti].used++
	return e
}

func (d *Dict[K, V]) findEntry(h uint64, key K) (*Entry[K, V], bool) {
	for t := 0; t <= 1; t++ {
		if t == 1 && !d.Rehashing() {
			break
		}
		idx := h & d.ht[t].mask
		for e := d.ht[t].buckets[idx]; e != nil; e = e.next {
			if d.typ.keysEqual(d.privdata, e.key, key) {
				return e, true
			}
		}
	}
	return nil, false
}

// Add inserts key/val if key is not already present, returning false if it
// was (in which case the dict is unchanged; use Replace to overwrite).
func (d *Dict[K, V]) Add(key K, val V) bool {
	e := d.AddRaw(key)
	if e == nil {
		return false
	}
	e.SetValue(d.typ.dupVal(d.privdata, val))
	return true
}

// Replace inserts key/val, overwriting any existing value for key. The old
// value's destructor, if any, runs AFTER the new value is installed, so a
// reference-counted payload where new == old is never destroyed early.
func (d *Dict[K, V]) Replace(key K, val V) {
	if e := d.AddRaw(key); e != nil {
		e.SetValue(d.typ.dupVal(d.privdata, val))
		return
	}

	h := d.hash(key)
	e, _ := d.findEntry(h, key)
	old := e.Value()
	e.SetValue(d.typ.dupVal(d.privdata, val))
	d.typ.destroyVal(d.privdata, old)
}

// Delete removes key, running its key and value destructors, and reports
// whether it was present.
func (d *Dict[K, V]) Delete(key K) bool {
	e := d.unlink(key)
	if e == nil {
		return false
	}
	d.typ.destroyKey(d.privdata, e.key)
	d.typ.destroyVal(d.privdata, e.val)
	return true
}

// Unlink detaches key's entry from its chain and returns it without running
// destructors, so the caller can free it later (via FreeUnlinked) without a
// second lookup.
func (d *Dict[K, V]) Unlink(key K) (K, V, bool) {
	e := d.unlink(key)
	if e == nil {
		var zk K
		var zv V
		return zk, zv, false
	}
	return e.key, e.val, true
}

// FreeUnlinked runs key and value destructors on an entry previously
// removed via Unlink. Calling it on a key that was never unlinked from this
// dict has no effect beyond running the destructors on the values passed.
func (d *Dict[K, V]) FreeUnlinked(key K, val V) {
	d.typ.destroyKey(d.privdata, key)
	d.typ.destroyVal(d.privdata, val)
}

func (d *Dict[K, V]) unlink(key K) *Entry[K, V] {
	if d.Len() == 0 {
		return nil
	}
	d.RehashStep()

	h := d.hash(key)
	for t := 0; t <= 1; t++ {
		if t == 1 && !d.Rehashing() {
			break
		}
		idx := h & d.ht[t].mask
		var prev *Entry[K, V]
		for e := d.ht[t].buckets[idx]; e != nil; e = e.next {
			if d.typ.keysEqual(d.privdata, e.key, key) {
				if prev == nil {
					d.ht[t].buckets[idx] = e.next
				} else {
					prev.next = e.next
				}
				e.next = nil
				d.ht[t].used--
				return e
			}
			prev = e
		}
	}
	return nil
}
