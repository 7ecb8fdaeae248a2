// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command coredump drives the four core data structures end to end: a
// DBS-backed DICT of keys, a ZIPMAP standing in for a small hash, and a
// LIST of recently-touched keys. It exists to give the library a runnable
// smoke test outside of `go test`, the same role lldb/lab/1 and
// dbm/crash/main.go played for the file-backed storage engine.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/fyyzkd/redis/alloc"
	"github.com/fyyzkd/redis/dbs"
	"github.com/fyyzkd/redis/dict"
	"github.com/fyyzkd/redis/list"
	"github.com/fyyzkd/redis/zipmap"
)

var (
	n       = flag.Int("n", 64, "number of keys to insert into the dict")
	zipKeys = flag.Int("zipn", 8, "number of keys to insert into the zipmap")
)

func dbsDictType() *dict.Type[string, dbs.DBS] {
	return &dict.Type[string, dbs.DBS]{
		Hash:       func(_ interface{}, k string) uint64 { return dict.HashString([]byte(k)) },
		KeyCompare: func(_ interface{}, a, b string) bool { return a == b },
	}
}

func main() {
	flag.Parse()

	a := alloc.NewStd()
	d := dict.New(dbsDictType(), nil)
	recent := list.New(list.Callbacks[string]{})

	for i := 0; i < *n; i++ {
		key := fmt.Sprintf("key:%d", i)
		val, err := dbs.Create(a, []byte(fmt.Sprintf("value-%d", i)))
		if err != nil {
			log.Fatalf("dbs.Create: %v", err)
		}
		if !d.Add(key, val) {
			log.Fatalf("dict.Add(%s): already present", key)
		}
		recent.Prepend(key)
		if recent.Len() > 10 {
			recent.Delete(recent.Tail())
		}
	}

	log.Printf("dict holds %d entries after %d inserts", d.Len(), *n)

	sample := fmt.Sprintf("key:%d", rand.Intn(*n))
	if v, ok := d.Find(sample); ok {
		log.Printf("find(%s) = %s", sample, v.String())
	} else {
		log.Fatalf("find(%s): missing", sample)
	}

	log.Printf("most recently touched keys: ")
	for node := recent.Head(); node != nil; node = node.Next() {
		log.Printf("  %s", node.Value)
	}

	zm, err := zipmap.New(a)
	if err != nil {
		log.Fatalf("zipmap.New: %v", err)
	}
	for i := 0; i < *zipKeys; i++ {
		k := fmt.Sprintf("f%d", i)
		v := fmt.Sprintf("v%d", i)
		zm, _, err = zipmap.Set(zm, []byte(k), []byte(v))
		if err != nil {
			log.Fatalf("zipmap.Set(%s): %v", k, err)
		}
	}
	log.Printf("zipmap holds %d entries in %d bytes", zm.Len(), zm.BlobLen())

	cursor := zipmap.Rewind(zm)
	for {
		key, val, next, ok := cursor.Next()
		if !ok {
			break
		}
		log.Printf("  zipmap[%s] = %s", key, val)
		cursor = next
	}
}
