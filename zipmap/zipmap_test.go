// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zipmap

import (
	"bytes"
	"testing"

	"github.com/fyyzkd/redis/alloc"
)

// TestExactByteLayout mirrors spec.md §8 scenario 5: new() then
// set("foo","bar") then set("hello","world") must yield these exact bytes.
func TestExactByteLayout(t *testing.T) {
	a := alloc.NewStd()
	zm, err := New(a)
	if err != nil {
		t.Fatal(err)
	}
	zm, _, err = Set(zm, []byte("foo"), []byte("bar"))
	if err != nil {
		t.Fatal(err)
	}
	zm, _, err = Set(zm, []byte("hello"), []byte("world"))
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x02,
		0x03, 'f', 'o', 'o', 0x03, 0x00, 'b', 'a', 'r',
		0x05, 'h', 'e', 'l', 'l', 'o', 0x05, 0x00, 'w', 'o', 'r', 'l', 'd',
		0xFF,
	}
	got := zm.bytes()
	if !bytes.Equal(got, want) {
		t.Fatalf("blob = % x, want % x", got, want)
	}
}

// TestUpdateWithSlackReuse mirrors spec.md §8 scenario 6: shrinking a
// value leaves residual free without compaction below the threshold, and
// compacts once the residual reaches it.
func TestUpdateWithSlackReuse(t *testing.T) {
	a := alloc.NewStd()
	zm, err := New(a)
	if err != nil {
		t.Fatal(err)
	}
	zm, _, err = Set(zm, []byte("k"), bytes.Repeat([]byte{'x'}, 10))
	if err != nil {
		t.Fatal(err)
	}
	lenAfter10 := zm.BlobLen()

	zm, updated, err := Set(zm, []byte("k"), bytes.Repeat([]byte{'y'}, 8))
	if err != nil {
		t.Fatal(err)
	}
	if !updated {
		t.Fatal("expected Set to report an update")
	}
	lenAfter8 := zm.BlobLen()
	if lenAfter8 != lenAfter10 && lenAfter8 != lenAfter10-2 {
		t.Fatalf("blob length after shrink to 8 = %d, want %d or %d", lenAfter8, lenAfter10, lenAfter10-2)
	}
	val, ok := zm.Get([]byte("k"))
	if !ok || string(val) != "yyyyyyyy" {
		t.Fatalf("Get(k) = %q, %v", val, ok)
	}

	zm, updated, err = Set(zm, []byte("k"), []byte("zz"))
	if err != nil {
		t.Fatal(err)
	}
	if !updated {
		t.Fatal("expected Set to report an update")
	}
	lenAfter2 := zm.BlobLen()
	if lenAfter2 >= lenAfter8 {
		t.Fatalf("expected compaction to shrink the blob: %d >= %d", lenAfter2, lenAfter8)
	}
	val, ok = zm.Get([]byte("k"))
	if !ok || string(val) != "zz" {
		t.Fatalf("Get(k) after compaction = %q, %v", val, ok)
	}
}

func TestRoundTripSetGetDelete(t *testing.T) {
	a := alloc.NewStd()
	zm, err := New(a)
	if err != nil {
		t.Fatal(err)
	}

	zm, _, err = Set(zm, []byte("k"), []byte("v"))
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := zm.Get([]byte("k")); !ok || string(v) != "v" {
		t.Fatalf("Get(k) = %q, %v", v, ok)
	}

	zm, deleted, err := Delete(zm, []byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Fatal("expected Delete to report found")
	}
	if zm.Exists([]byte("k")) {
		t.Fatal("k should no longer exist after Delete")
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	a := alloc.NewStd()
	zm, err := New(a)
	if err != nil {
		t.Fatal(err)
	}
	before := zm.BlobLen()
	zm, deleted, err := Delete(zm, []byte("nope"))
	if err != nil {
		t.Fatal(err)
	}
	if deleted {
		t.Fatal("Delete of a missing key should report false")
	}
	if zm.BlobLen() != before {
		t.Fatal("Delete of a missing key should not change the blob")
	}
}

func TestLenCountsElements(t *testing.T) {
	a := alloc.NewStd()
	zm, err := New(a)
	if err != nil {
		t.Fatal(err)
	}
	if zm.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", zm.Len())
	}
	for i := 0; i < 5; i++ {
		k := []byte{'a' + byte(i)}
		zm, _, err = Set(zm, k, []byte("v"))
		if err != nil {
			t.Fatal(err)
		}
	}
	if zm.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", zm.Len())
	}
}

func TestRewindNextVisitsAllEntries(t *testing.T) {
	a := alloc.NewStd()
	zm, err := New(a)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"a": "1", "b": "2", "c": "3"}
	for k, v := range want {
		zm, _, err = Set(zm, []byte(k), []byte(v))
		if err != nil {
			t.Fatal(err)
		}
	}

	got := map[string]string{}
	c := Rewind(zm)
	for {
		key, val, next, ok := c.Next()
		if !ok {
			break
		}
		got[string(key)] = string(val)
		c = next
	}
	if len(got) != len(want) {
		t.Fatalf("visited %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("entry %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestSetCompressedRoundTrip(t *testing.T) {
	a := alloc.NewStd()
	zm, err := New(a)
	if err != nil {
		t.Fatal(err)
	}
	val := bytes.Repeat([]byte("compress-me "), 50)
	zm, _, err = SetCompressed(zm, []byte("k"), val)
	if err != nil {
		t.Fatal(err)
	}
	got, ok, err := GetCompressed(zm, []byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("GetCompressed(k) reported not found")
	}
	if !bytes.Equal(got, val) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(val))
	}
}

func TestGetMissingKey(t *testing.T) {
	a := alloc.NewStd()
	zm, err := New(a)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := zm.Get([]byte("missing")); ok {
		t.Fatal("Get on an empty map should report not found")
	}
}
