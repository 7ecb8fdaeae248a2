// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zipmap

// Set stores val under key, returning the (possibly reallocated) handle,
// whether an existing entry was overwritten, and any allocation error. On
// allocation failure the original zm is returned unchanged, per the
// "every mutating op returns a handle; callers must substitute it"
// contract spec.md §4.4 shares with DBS.
func Set(zm ZipMap, key, val []byte) (ZipMap, bool, error) {
	if ev, off, found := zm.find(key); found {
		updated, err := setExisting(zm, ev, off, val)
		return updated, true, err
	}
	inserted, err := insertNew(zm, key, val)
	return inserted, false, err
}

func insertNew(zm ZipMap, key, val []byte) (ZipMap, error) {
	eK := encodedLen(len(key))
	eV := encodedLen(len(val))
	entryLen := eK + len(key) + eV + 1 + len(val) // free == 0

	oldTotal := zm.n
	newTotal := oldTotal - 1 + entryLen + 1 // drop old terminator, add entry + new terminator

	zm, err := resize(zm, newTotal)
	if err != nil {
		return zm, err
	}

	blob := zm.bytes()
	pos := oldTotal - 1 // the old terminator's offset becomes the new entry
	pos += encodeLen(blob[pos:], len(key))
	pos += copy(blob[pos:], key)
	pos += encodeLen(blob[pos:], len(val))
	blob[pos] = 0 // free
	pos++
	pos += copy(blob[pos:], val)
	blob[pos] = terminator

	zm.incrZMLen(1)
	return zm, nil
}

// setExisting overwrites the value of the entry at [off, ev.next), which
// must already hold key's bytes unchanged.
func setExisting(zm ZipMap, ev entryView, off int, val []byte) (ZipMap, error) {
	keyLen := ev.keyEnd - ev.keyStart
	eK := encodedLen(keyLen)
	eV := encodedLen(len(val))
	required := eK + keyLen + eV + 1 + len(val) // free == 0
	oldTotal := ev.next - off

	if required <= oldTotal {
		residual := oldTotal - required
		if residual >= maxFreeSlack {
			// Compact: write the entry at zero free, then close the gap
			// by sliding everything after it backward.
			blob := zm.bytes()
			writeEntryInPlace(blob, ev.keyEnd, val, 0)
			tailStart := off + required + residual
			newLen := zm.n - residual
			copy(blob[off+required:newLen], blob[tailStart:zm.n])
			shrunk, err := resize(zm, newLen)
			if err != nil {
				// The entry is already compacted in place; keep the
				// larger allocation and record the shorter length.
				zm.n = newLen
				return zm, nil
			}
			return shrunk, nil
		}

		blob := zm.bytes()
		writeEntryInPlace(blob, ev.keyEnd, val, residual)
		return zm, nil
	}

	// Value grew past what the existing slot (plus any slack) can hold:
	// make room by sliding the tail forward, then write in place.
	grow := required - oldTotal
	newLen := zm.n + grow
	zm, err := resize(zm, newLen)
	if err != nil {
		return zm, err
	}
	blob := zm.bytes()
	copy(blob[off+oldTotal+grow:newLen], blob[off+oldTotal:zm.n-grow])
	writeEntryInPlace(blob, ev.keyEnd, val, 0)
	return zm, nil
}

// writeEntryInPlace rewrites the vlen/free/value portion of an entry whose
// key (ending at keyEnd) is unchanged, using free as the residual slack
// byte.
func writeEntryInPlace(blob []byte, keyEnd int, val []byte, free int) {
	pos := keyEnd
	pos += encodeLen(blob[pos:], len(val))
	blob[pos] = byte(free)
	pos++
	copy(blob[pos:pos+len(val)], val)
}

// Delete removes key if present, returning the (possibly reallocated)
// handle and whether it was found. A miss leaves zm unchanged.
func Delete(zm ZipMap, key []byte) (ZipMap, bool, error) {
	ev, off, found := zm.find(key)
	if !found {
		return zm, false, nil
	}

	entryLen := ev.next - off
	blob := zm.bytes()
	copy(blob[off:zm.n-entryLen], blob[ev.next:zm.n])
	zm, err := resize(zm, zm.n-entryLen)
	if err != nil {
		return zm, false, err
	}
	zm.incrZMLen(-1)
	return zm, true, nil
}
