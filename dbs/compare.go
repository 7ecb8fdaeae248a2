// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbs

import (
	"bytes"
	"unsafe"
)

// Compare lexicographically compares a and b, breaking ties by length (the
// longer string sorts after a common prefix), matching bytes.Compare's own
// semantics exactly.
func Compare(a, b DBS) int {
	return bytes.Compare(a.Bytes(), b.Bytes())
}

// MapChars substitutes, in place, every byte in h's content that appears in
// from with the byte at the same position in to.
func (h DBS) MapChars(from, to []byte) {
	buf := h.Bytes()
	for i, c := range buf {
		for j, f := range from {
			if c == f {
				buf[i] = to[j]
				break
			}
		}
	}
}

func indexByte(set string, c byte) bool {
	for i := 0; i < len(set); i++ {
		if set[i] == c {
			return true
		}
	}
	return false
}

// Trim removes, in place, every leading and trailing byte of h's content
// found in cset, shifting the remaining bytes to the front of the buffer.
// Capacity is unchanged; no reallocation occurs.
func (h DBS) Trim(cset string) DBS {
	b := h.Bytes()
	start, end := 0, len(b)
	for start < end && indexByte(cset, b[start]) {
		start++
	}
	for end > start && indexByte(cset, b[end-1]) {
		end--
	}
	n := end - start
	if start > 0 && n > 0 {
		copy(b[:n], b[start:end])
	}
	h.setLenRaw(n)
	writeTrailingNUL(h.p, n)
	return h
}

// Range truncates h's content, in place, to the substring [start, end]
// (inclusive), accepting negative indices counted from the end of the
// string in the manner of Python slicing.
func (h DBS) Range(start, end int) DBS {
	l := h.Len()
	if l == 0 {
		return h
	}
	if start < 0 {
		start = l + start
		if start < 0 {
			start = 0
		}
	}
	if end < 0 {
		end = l + end
	}
	if end >= l {
		end = l - 1
	}

	var n int
	if start > end || start >= l {
		n, start = 0, 0
	} else {
		n = end - start + 1
	}

	if n > 0 {
		b := unsafe.Slice((*byte)(h.p), l)
		if start > 0 {
			copy(b[:n], b[start:start+n])
		}
	}
	h.setLenRaw(n)
	writeTrailingNUL(h.p, n)
	return h
}
