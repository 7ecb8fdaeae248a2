// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package siphash implements SipHash-2-4, the pseudorandom function DICT
// uses to place keys into buckets. The output must match the reference
// algorithm bit-for-bit for any two implementations to interoperate, so
// nothing here is tunable beyond the 16-byte key.
package siphash
