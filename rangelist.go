// Copyright (C) 2025, VigilantDoomer
//
// This file is part of VigilantClip program.
//
// VigilantClip is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// VigilantClip is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with VigilantClip.  If not, see <https://www.gnu.org/licenses/>.

// rangelist
package main

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// rangeList is a doubly linked list of range records that all come from the
// list's own pool.
// NOTE pointers returned by node() are only valid until the next allocation
// from the same pool (the arena may be reallocated), so hold handles, not
// pointers, across newNode calls
type rangeList struct {
	head rangeHandle
	pool rangePool
}

func (l *rangeList) init() {
	l.head = noRange
}

func (l *rangeList) node(h rangeHandle) *rangeNode {
	return &l.pool.nodes[h]
}

func (l *rangeList) empty() bool {
	return l.head == noRange
}

func (l *rangeList) newNode(from, to BinAngle) rangeHandle {
	return l.pool.alloc(from, to)
}

// linkAfter inserts unlinked h right after 'after', or at the head of the
// list if after is noRange
func (l *rangeList) linkAfter(after, h rangeHandle) {
	n := l.node(h)
	if after == noRange {
		n.prev = noRange
		n.next = l.head
		if l.head != noRange {
			l.node(l.head).prev = h
		}
		l.head = h
		return
	}
	a := l.node(after)
	n.prev = after
	n.next = a.next
	if a.next != noRange {
		l.node(a.next).prev = h
	}
	a.next = h
}

// linkBefore inserts unlinked h right before 'before' (which must be linked)
func (l *rangeList) linkBefore(before, h rangeHandle) {
	l.linkAfter(l.node(before).prev, h)
}

// remove unlinks h and gives it back to the pool
func (l *rangeList) remove(h rangeHandle) {
	n := l.node(h)
	if n.prev != noRange {
		l.node(n.prev).next = n.next
	} else {
		l.head = n.next
	}
	if n.next != noRange {
		l.node(n.next).prev = n.prev
	}
	n.prev = noRange
	n.next = noRange
	l.pool.release(h)
}

// clear empties the list and rewinds the pool
func (l *rangeList) clear() {
	l.head = noRange
	l.pool.rewind()
}

func (l *rangeList) length() int {
	cnt := 0
	for h := l.head; h != noRange; h = l.node(h).next {
		cnt++
	}
	return cnt
}

// checkLinks verifies prev/next agreement and that every linked record is
// marked in use. The walk is bounded so that a cycle is reported rather than
// hanging
func (l *rangeList) checkLinks(name string) error {
	prev := noRange
	limit := len(l.pool.nodes)
	steps := 0
	for h := l.head; h != noRange; h = l.node(h).next {
		if int(h) < 0 || int(h) >= limit {
			return errors.New("handle out of arena bounds").
				WithTag("list", name).
				WithTag("node", h).
				WithTag("arena_size", limit)
		}
		n := l.node(h)
		if n.prev != prev {
			return errors.New("broken prev link").
				WithTag("list", name).
				WithTag("node", h).
				WithTag("prev", n.prev).
				WithTag("expected_prev", prev)
		}
		if !n.inUse {
			return errors.New("linked node was released to the pool").
				WithTag("list", name).
				WithTag("node", h)
		}
		steps++
		if steps > limit {
			return errors.New("cycle detected").WithTag("list", name)
		}
		prev = h
	}
	return nil
}
