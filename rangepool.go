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

// rangepool
package main

// Range records live in one contiguous slice and refer to each other by
// index, not by pointer. Same trick as with multiarray in VigilantBSP: GC
// sees one slice instead of thousands of tiny nodes, and a record is never
// really freed until the whole clipper is gone - it just goes back into the
// pool to be handed out again next frame.

// rangeHandle is an index into rangePool.nodes. noRange is the nil handle
type rangeHandle int32

const noRange = rangeHandle(-1)

// rangeNode is used for both solid (clip) ranges and occlusion ranges.
// Clip ranges simply don't use normal and topHalf
type rangeNode struct {
	from    BinAngle
	to      BinAngle
	normal  Vec3
	topHalf bool
	prev    rangeHandle
	next    rangeHandle
	// linked into some list right now (only used for sanity checks)
	inUse bool
}

// rangePool hands out records. Every record ever added stays in nodes for
// the lifetime of the pool.
// Records nodes[rover:] were not handed out since the last rewind; released
// records are kept in free (LIFO) and are preferred over untouched ones.
type rangePool struct {
	nodes     []rangeNode
	free      []rangeHandle
	rover     int
	allocated int // how many records were ever added (not reused)
}

// add puts a brand new record in the pool, in use
func (p *rangePool) add(n rangeNode) rangeHandle {
	n.inUse = true
	p.nodes = append(p.nodes, n)
	p.allocated++
	h := rangeHandle(len(p.nodes) - 1)
	// everything before us was handed out already, otherwise get() would
	// have returned it
	p.rover = len(p.nodes)
	return h
}

// get returns a reusable record, or noRange if there is none left, in which
// case the caller must add a new one
func (p *rangePool) get() rangeHandle {
	if len(p.free) > 0 {
		h := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		p.nodes[h].inUse = true
		return h
	}
	if p.rover < len(p.nodes) {
		h := rangeHandle(p.rover)
		p.rover++
		p.nodes[h].inUse = true
		return h
	}
	return noRange
}

// release makes the record available for reuse. The record must not be
// linked into any list anymore
func (p *rangePool) release(h rangeHandle) {
	if !p.nodes[h].inUse {
		Log.Panic("Range record %d released twice.\n", h)
	}
	p.nodes[h].inUse = false
	p.free = append(p.free, h)
}

// rewind makes every record ever added reusable again, in the order they
// were added. Lists must be reset by the caller
func (p *rangePool) rewind() {
	p.rover = 0
	p.free = p.free[:0]
	for i := range p.nodes {
		p.nodes[i].inUse = false
	}
}

// alloc is get() with add() fallback, the record is initialized for a new
// unlinked range
func (p *rangePool) alloc(from, to BinAngle) rangeHandle {
	n := rangeNode{
		from: from,
		to:   to,
		prev: noRange,
		next: noRange,
	}
	h := p.get()
	if h == noRange {
		return p.add(n)
	}
	n.inUse = true
	p.nodes[h] = n
	return h
}

// inUseCount returns the number of records currently handed out
func (p *rangePool) inUseCount() int {
	return p.rover - len(p.free)
}
