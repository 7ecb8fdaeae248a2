// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

import (
	"fmt"
	"testing"
)

func stringType() *Type[string, int] {
	return &Type[string, int]{
		Hash:       func(_ interface{}, k string) uint64 { return HashString([]byte(k)) },
		KeyCompare: func(_ interface{}, a, b string) bool { return a == b },
	}
}

func TestAddFindDelete(t *testing.T) {
	d := New(stringType(), nil)
	if !d.Add("a", 1) {
		t.Fatal("Add(a) should have succeeded")
	}
	if d.Add("a", 2) {
		t.Fatal("Add(a) a second time should fail")
	}
	if v, ok := d.Find("a"); !ok || v != 1 {
		t.Fatalf("Find(a) = %d, %v, want 1, true", v, ok)
	}
	d.Replace("a", 9)
	if v, ok := d.Find("a"); !ok || v != 9 {
		t.Fatalf("Find(a) after Replace = %d, %v, want 9, true", v, ok)
	}
	if !d.Delete("a") {
		t.Fatal("Delete(a) should have succeeded")
	}
	if _, ok := d.Find("a"); ok {
		t.Fatal("Find(a) after Delete should fail")
	}
	if d.Delete("a") {
		t.Fatal("second Delete(a) should fail")
	}
}

// TestIncrementalRehashCorrectness mirrors spec.md §8 scenario 2: insert
// k0..k999 and check that every previously-inserted key is still found
// after each insert, then that the dict ends with 1000 entries and no
// rehash pending. The per-call migration bound is not checked here.
func TestIncrementalRehashCorrectness(t *testing.T) {
	d := New(stringType(), nil)
	const n = 1000
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("k%d", i)
		if !d.Add(key, i) {
			t.Fatalf("Add(%s) failed", key)
		}
		for j := 0; j <= i; j++ {
			jk := fmt.Sprintf("k%d", j)
			if v, ok := d.Find(jk); !ok || v != j {
				t.Fatalf("after inserting %s, Find(%s) = %d, %v, want %d, true", key, jk, v, ok, j)
			}
		}
	}

	// Drive rehashing to completion explicitly; mutating calls only ever
	// advance it one bucket at a time, so a large dict may still be
	// mid-rehash after the loop above.
	for d.Rehashing() {
		d.rehash(1)
	}

	if d.Len() != n {
		t.Fatalf("Len() = %d, want %d", d.Len(), n)
	}
	if d.ht[1].buckets != nil {
		t.Fatal("T[1] should be empty once rehashing completes")
	}
	if d.rehashIdx != -1 {
		t.Fatalf("rehashIdx = %d, want -1", d.rehashIdx)
	}
}

// TestSafeIteratorDuringMutation mirrors spec.md §8 scenario 3: inserting
// under a live safe iterator is permitted, and the full key set (old and
// new) is eventually visited.
func TestSafeIteratorDuringMutation(t *testing.T) {
	d := New(stringType(), nil)
	for _, k := range []string{"a", "b", "c"} {
		d.Add(k, 0)
	}

	it := d.NewSafeIterator()
	seen := map[string]bool{}
	if it.Next() {
		seen[it.Key()] = true
	}
	d.Add("d", 0)
	for it.Next() {
		seen[it.Key()] = true
	}
	it.Release()

	for _, k := range []string{"a", "b", "c", "d"} {
		if !seen[k] {
			t.Errorf("key %q never visited by iterator", k)
		}
	}
}

// TestUnsafeIteratorDetectsMutation mirrors spec.md §8 scenario 4: mutating
// the dict while an unsafe iterator is live must be caught at Release.
func TestUnsafeIteratorDetectsMutation(t *testing.T) {
	d := New(stringType(), nil)
	for i := 0; i < 32; i++ {
		d.Add(fmt.Sprintf("k%d", i), i)
	}

	it := d.NewUnsafeIterator()
	it.Next()
	d.Add("k32", 32)

	defer func() {
		if recover() == nil {
			t.Fatal("Release should panic after a mutation under an unsafe iterator")
		}
	}()
	it.Release()
}

func TestUnsafeIteratorReleaseCleanWithoutMutation(t *testing.T) {
	d := New(stringType(), nil)
	for i := 0; i < 10; i++ {
		d.Add(fmt.Sprintf("k%d", i), i)
	}

	it := d.NewUnsafeIterator()
	count := 0
	for it.Next() {
		count++
	}
	it.Release() // must not panic
	if count != 10 {
		t.Fatalf("visited %d entries, want 10", count)
	}
}

// TestScanCoverage mirrors spec.md §8's scan-coverage property: starting
// from cursor 0, repeatedly scanning until the cursor returns to 0 visits
// every key present throughout.
func TestScanCoverage(t *testing.T) {
	d := New(stringType(), nil)
	want := map[string]bool{}
	for i := 0; i < 200; i++ {
		k := fmt.Sprintf("k%d", i)
		d.Add(k, i)
		want[k] = true
	}

	seen := map[string]bool{}
	cursor := uint64(0)
	steps := 0
	for {
		cursor = d.Scan(cursor, func(k string, v int) {
			seen[k] = true
		})
		steps++
		if cursor == 0 {
			break
		}
		if steps > 100000 {
			t.Fatal("scan never returned to cursor 0")
		}
	}

	for k := range want {
		if !seen[k] {
			t.Errorf("key %q never visited by Scan", k)
		}
	}
}

func TestScanCoverageDuringRehash(t *testing.T) {
	d := New(stringType(), nil)
	want := map[string]bool{}
	for i := 0; i < 50; i++ {
		k := fmt.Sprintf("k%d", i)
		d.Add(k, i)
		want[k] = true
	}
	// Force a pending rehash without letting it complete.
	if err := d.Expand(d.ht[0].used * 2); err != nil {
		t.Fatal(err)
	}
	if !d.Rehashing() {
		t.Fatal("expected rehash to be in progress")
	}

	seen := map[string]bool{}
	cursor := uint64(0)
	steps := 0
	for {
		cursor = d.Scan(cursor, func(k string, v int) {
			seen[k] = true
		})
		steps++
		if cursor == 0 {
			break
		}
		if steps > 100000 {
			t.Fatal("scan never returned to cursor 0")
		}
	}

	for k := range want {
		if !seen[k] {
			t.Errorf("key %q never visited by Scan during rehash", k)
		}
	}
}

func TestGetRandomKeyOnEmptyDict(t *testing.T) {
	d := New(stringType(), nil)
	if _, _, ok := d.GetRandomKey(); ok {
		t.Fatal("GetRandomKey on an empty dict should report false")
	}
}

func TestGetRandomKeyReturnsLiveEntry(t *testing.T) {
	d := New(stringType(), nil)
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	for k, v := range want {
		d.Add(k, v)
	}
	for i := 0; i < 50; i++ {
		k, v, ok := d.GetRandomKey()
		if !ok {
			t.Fatal("GetRandomKey should report true on a non-empty dict")
		}
		if want[k] != v {
			t.Fatalf("GetRandomKey returned (%q, %d), want value %d", k, v, want[k])
		}
	}
}

func TestGetSomeKeysSamplesPresentEntries(t *testing.T) {
	d := New(stringType(), nil)
	want := map[string]int{}
	for i := 0; i < 100; i++ {
		k := fmt.Sprintf("k%d", i)
		d.Add(k, i)
		want[k] = i
	}

	samples := d.GetSomeKeys(20)
	if len(samples) == 0 {
		t.Fatal("GetSomeKeys(20) returned nothing for a 100-entry dict")
	}
	for _, s := range samples {
		if want[s.Key] != s.Val {
			t.Fatalf("sampled (%q, %d) does not match inserted value %d", s.Key, s.Val, want[s.Key])
		}
	}
}

func TestUnlinkAndFreeUnlinked(t *testing.T) {
	destroyed := false
	typ := &Type[string, int]{
		Hash:          func(_ interface{}, k string) uint64 { return HashString([]byte(k)) },
		KeyCompare:    func(_ interface{}, a, b string) bool { return a == b },
		ValDestructor: func(_ interface{}, v int) { destroyed = true },
	}
	d := New(typ, nil)
	d.Add("a", 1)

	k, v, ok := d.Unlink("a")
	if !ok || k != "a" || v != 1 {
		t.Fatalf("Unlink(a) = %q, %d, %v", k, v, ok)
	}
	if destroyed {
		t.Fatal("Unlink must not run destructors")
	}
	if _, ok := d.Find("a"); ok {
		t.Fatal("a should no longer be reachable after Unlink")
	}
	d.FreeUnlinked(k, v)
	if !destroyed {
		t.Fatal("FreeUnlinked should have run the value destructor")
	}
}

// TestAddRawInstallsValueViaSetValue exercises the exported low-level
// insertion hook spec.md §5 describes: AddRaw locates or creates the slot,
// the caller fills it in via SetValue.
func TestAddRawInstallsValueViaSetValue(t *testing.T) {
	d := New(stringType(), nil)
	e := d.AddRaw("a")
	if e == nil {
		t.Fatal("AddRaw(a) should have succeeded on an empty dict")
	}
	e.SetValue(7)
	if v, ok := d.Find("a"); !ok || v != 7 {
		t.Fatalf("Find(a) = %d, %v, want 7, true", v, ok)
	}
	if d.AddRaw("a") != nil {
		t.Fatal("AddRaw(a) a second time should report the key as already present")
	}
}

// TestExpandAndResizeAreExported mirrors spec.md §5's cooperative-rehash
// contract: a host drives Expand/Resize/RehashStep directly rather than
// only ever riding along on Find/Add/Unlink.
func TestExpandAndResizeAreExported(t *testing.T) {
	d := New(stringType(), nil)
	for i := 0; i < 20; i++ {
		d.Add(fmt.Sprintf("k%d", i), i)
	}
	// Expand is a no-op mid-rehash, so finish any rehash the inserts
	// left pending before measuring.
	for d.Rehashing() {
		d.RehashStep()
	}
	before := d.ht[0].size()

	if err := d.Expand(before * 4); err != nil {
		t.Fatalf("Expand: %v", err)
	}
	for d.Rehashing() {
		d.RehashStep()
	}
	if d.ht[0].size() < before*4 {
		t.Fatalf("ht[0].size() = %d, want at least %d after Expand", d.ht[0].size(), before*4)
	}

	if err := d.Resize(); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	for d.Rehashing() {
		d.RehashStep()
	}
	if d.ht[0].size() >= before*4 {
		t.Fatalf("ht[0].size() = %d, want Resize to have shrunk it back down", d.ht[0].size())
	}
	if d.Len() != 20 {
		t.Fatalf("Len() = %d, want 20 after Expand/Resize", d.Len())
	}
}

// TestResizeFloorsAtInitialSize exercises mathutil.Max's role in Resize:
// a near-empty dict must not shrink its table below initialSize.
func TestResizeFloorsAtInitialSize(t *testing.T) {
	d := New(stringType(), nil)
	d.Add("a", 1)
	if err := d.Resize(); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if d.ht[0].size() < initialSize {
		t.Fatalf("ht[0].size() = %d, want at least initialSize (%d)", d.ht[0].size(), initialSize)
	}
}

// TestExpandReportsErrOOMOnUnaddressableSize exercises the one allocation
// failure Go's own allocator can signal synchronously instead of crashing:
// a bucket count past the maximum slice length.
func TestExpandReportsErrOOMOnUnaddressableSize(t *testing.T) {
	d := New(stringType(), nil)
	if err := d.Expand(1 << 62); err != ErrOOM {
		t.Fatalf("Expand(1<<62) = %v, want ErrOOM", err)
	}
}

// TestNextPowerReportsOverflow exercises nextPower's own guard: a target
// past the highest representable power of two must not spin forever.
func TestNextPowerReportsOverflow(t *testing.T) {
	if got := nextPower(1<<63 + 1); got != 0 {
		t.Fatalf("nextPower(1<<63+1) = %d, want 0 (overflow)", got)
	}
}
