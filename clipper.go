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

// clipper
package main

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// -- Angle clipper: keeps track of which directions around the eye are still
// potentially visible while the BSP tree is walked front-to-back.
// Two lists are kept:
// 1. clip ranges - solid, nothing behind them can ever be seen. Sorted by
// start angle, never overlapping or touching (they are merged on insert)
// 2. occlusion ranges - everything on the positive side of a plane through
// the eye is hidden within the angle range (used for floor/ceiling steps).
// Sorted by start angle, CAN overlap
// Not safe for concurrent use. Each thread/view must have its own clipper.

// Padding for range checks built from two points, so that rounding in
// BamsAtan2 doesn't cull a subtree that shares an edge with the solid walls
// (half a degree)
const RANGE_FUDGE = BANG_45 / 90

type ClipperStats struct {
	ClipNodes          int `json:"clip_nodes"`          // currently in clip list
	OcclusionNodes     int `json:"occlusion_nodes"`     // currently in occlusion list
	ClipAllocated      int `json:"clip_allocated"`      // records ever allocated for clip list
	OcclusionAllocated int `json:"occlusion_allocated"` // records ever allocated for occlusion list
}

type AngleClipper struct {
	clip rangeList
	occ  rangeList
	eye  Vec3 // view origin, world coordinates
	// scratch buffer for IsPolyVisible, grows but never shrinks
	angList []BinAngle
	// run Validate() after every mutation and panic on failure
	validate bool
}

func CreateAngleClipper() *AngleClipper {
	c := new(AngleClipper)
	c.clip.init()
	c.occ.init()
	c.angList = make([]BinAngle, 0, 64)
	c.validate = config.ValidateClipper // reference to global: config
	return c
}

// ClearRanges empties both lists for a new frame/view. Records are kept for
// reuse
func (c *AngleClipper) ClearRanges() {
	c.clip.clear()
	c.occ.clear()
}

// SetEye sets the view origin that view-relative operations are relative to
func (c *AngleClipper) SetEye(eye Vec3) {
	c.eye = eye
}

func (c *AngleClipper) Stats() ClipperStats {
	return ClipperStats{
		ClipNodes:          c.clip.length(),
		OcclusionNodes:     c.occ.length(),
		ClipAllocated:      c.clip.pool.allocated,
		OcclusionAllocated: c.occ.pool.allocated,
	}
}

// ClipRange and OcclusionRange are snapshots of list contents, for reports
// and tests
type ClipRange struct {
	From BinAngle
	To   BinAngle
}

type OcclusionRange struct {
	From    BinAngle
	To      BinAngle
	Normal  Vec3
	TopHalf bool
}

func (c *AngleClipper) ClipRanges() []ClipRange {
	var res []ClipRange
	for h := c.clip.head; h != noRange; h = c.clip.node(h).next {
		n := c.clip.node(h)
		res = append(res, ClipRange{From: n.from, To: n.to})
	}
	return res
}

func (c *AngleClipper) OcclusionRanges() []OcclusionRange {
	var res []OcclusionRange
	for h := c.occ.head; h != noRange; h = c.occ.node(h).next {
		n := c.occ.node(h)
		res = append(res, OcclusionRange{From: n.from, To: n.to,
			Normal: n.normal, TopHalf: n.topHalf})
	}
	return res
}

// -----------------------------------------------------------------------------
// Clip (solid) ranges
// -----------------------------------------------------------------------------

// IsRangeVisible returns false only if a single solid range contains all of
// [from, to]. Partial overlaps with several ranges are not combined, so a
// range covered piecewise is still reported visible
func (c *AngleClipper) IsRangeVisible(from, to BinAngle) bool {
	if config.NoCulling { // reference to global: config
		return true
	}
	return c.isRangeVisible(from, to)
}

func (c *AngleClipper) isRangeVisible(from, to BinAngle) bool {
	for h := c.clip.head; h != noRange; h = c.clip.node(h).next {
		n := c.clip.node(h)
		if from >= n.from && to <= n.to {
			return false
		}
	}
	return true
}

// SafeCheckRange is IsRangeVisible for ranges that may wrap past BANG_MAX
func (c *AngleClipper) SafeCheckRange(from, to BinAngle) bool {
	if config.NoCulling { // reference to global: config
		return true
	}
	return c.safeCheckRange(from, to)
}

func (c *AngleClipper) safeCheckRange(from, to BinAngle) bool {
	if from > to {
		return c.isRangeVisible(from, BANG_MAX) || c.isRangeVisible(0, to)
	}
	return c.isRangeVisible(from, to)
}

// AddRange marks [from, to] solid, from <= to. Use SafeAddRange for ranges
// that wrap
func (c *AngleClipper) AddRange(from, to BinAngle) {
	c.addRange(from, to)
	c.checkSanity("AddRange")
}

func (c *AngleClipper) addRange(from, to BinAngle) {
	// Solid always wins over partial occlusion
	c.cutOcclusionRange(from, to)

	if c.clip.empty() {
		h := c.clip.newNode(from, to)
		c.clip.linkAfter(noRange, h)
		return
	}

	// Already covered?
	for h := c.clip.head; h != noRange; h = c.clip.node(h).next {
		n := c.clip.node(h)
		if from >= n.from && to <= n.to {
			return
		}
	}

	// Absorb ranges that the new one covers completely
	for h := c.clip.head; h != noRange; {
		n := c.clip.node(h)
		next := n.next
		if n.from >= from && n.to <= to {
			c.clip.remove(h)
		}
		h = next
	}

	// What remains can overlap (or be adjacent to) at most two ranges, and
	// if so, they're consecutive. Also find the spot to link a new range at
	// if there is no overlap at all
	pred := noRange
	for h := c.clip.head; h != noRange; h = c.clip.node(h).next {
		n := c.clip.node(h)
		if n.from < from {
			pred = h
		}
		if n.from >= from && rangesTouch(to, n.from) {
			// Our end overlaps its start. Its end is outside, otherwise it
			// would have been absorbed above
			n.from = from
			return
		}
		if from >= n.from && rangesTouch(n.to, from) {
			// Our start overlaps its end. The next range may start inside
			// us too - then all three become one
			nextH := n.next
			if nextH != noRange && rangesTouch(to, c.clip.node(nextH).from) {
				n.to = c.clip.node(nextH).to
				c.clip.remove(nextH)
			} else {
				n.to = to
			}
			return
		}
	}

	// Disjoint from everything
	h := c.clip.newNode(from, to)
	c.clip.linkAfter(pred, h)
}

// rangesTouch tells whether a range ending at 'to' and a range starting at
// 'from' leave no angle between them
func rangesTouch(to, from BinAngle) bool {
	return int(from) <= int(to)+1
}

// SafeAddRange is AddRange for ranges that may wrap past BANG_MAX
func (c *AngleClipper) SafeAddRange(from, to BinAngle) {
	if from > to {
		c.addRange(from, BANG_MAX)
		c.addRange(0, to)
	} else {
		c.addRange(from, to)
	}
	c.checkSanity("SafeAddRange")
}

// IsFull means nothing more can be seen: one solid range spans everything
func (c *AngleClipper) IsFull() bool {
	if config.NoCulling { // reference to global: config
		return false
	}
	if c.clip.empty() {
		return false
	}
	n := c.clip.node(c.clip.head)
	return n.from == 0 && n.to == BANG_MAX
}

// IsAngleVisible - the range boundaries themselves are visible, otherwise
// seams would vanish where two walls meet
func (c *AngleClipper) IsAngleVisible(a BinAngle) bool {
	if config.NoCulling { // reference to global: config
		return true
	}
	return c.isAngleVisible(a)
}

func (c *AngleClipper) isAngleVisible(a BinAngle) bool {
	for h := c.clip.head; h != noRange; h = c.clip.node(h).next {
		n := c.clip.node(h)
		if a > n.from && a < n.to {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------
// Occlusion ranges
// -----------------------------------------------------------------------------

// AddOcclusionRange inserts a plane-bounded range, from <= to. The list stays
// sorted by start angle; the new range goes before others with the same start
func (c *AngleClipper) AddOcclusionRange(from, to BinAngle, normal Vec3, topHalf bool) {
	c.addOcclusionRange(from, to, normal, topHalf)
	c.checkSanity("AddOcclusionRange")
}

func (c *AngleClipper) addOcclusionRange(from, to BinAngle, normal Vec3, topHalf bool) {
	h := c.occ.newNode(from, to)
	n := c.occ.node(h)
	n.normal = normal
	n.topHalf = topHalf

	last := noRange
	for ci := c.occ.head; ci != noRange; ci = c.occ.node(ci).next {
		if c.occ.node(ci).from >= from {
			c.occ.linkBefore(ci, h)
			return
		}
		last = ci
	}
	// empty list, or goes to the end
	c.occ.linkAfter(last, h)
}

// SafeAddOcclusionRange skips spans already solid, and splits ranges that
// wrap past BANG_MAX
func (c *AngleClipper) SafeAddOcclusionRange(from, to BinAngle, normal Vec3, topHalf bool) {
	if !c.safeCheckRange(from, to) {
		return
	}
	if from > to {
		c.addOcclusionRange(from, BANG_MAX, normal, topHalf)
		c.addOcclusionRange(0, to, normal, topHalf)
	} else {
		c.addOcclusionRange(from, to, normal, topHalf)
	}
	c.mergeOccludes()
	c.checkSanity("SafeAddOcclusionRange")
}

// CutOcclusionRange removes [from, to) from every occlusion range
func (c *AngleClipper) CutOcclusionRange(from, to BinAngle) {
	c.cutOcclusionRange(from, to)
	c.checkSanity("CutOcclusionRange")
}

func (c *AngleClipper) cutOcclusionRange(from, to BinAngle) {
	if c.occ.empty() {
		return
	}
	// Pieces created by splitting start at 'to', and must be linked after
	// the last range that starts before 'to' to keep the order
	after := noRange
	for h := c.occ.head; h != noRange; h = c.occ.node(h).next {
		if c.occ.node(h).from < to {
			after = h
		} else {
			break
		}
	}

	for h := c.occ.head; h != noRange; {
		n := c.occ.node(h)
		next := n.next
		if n.from >= to {
			// sorted, nothing further can overlap
			break
		}
		if n.to <= from {
			h = next
			continue
		}
		switch {
		case n.from >= from && n.to <= to:
			// entirely inside the cut
			if h == after {
				after = n.prev
			}
			c.occ.remove(h)
		case n.from >= from:
			// cut covers the start
			n.from = to
		case n.to <= to:
			// cut covers the end
			n.to = from
		default:
			// cut is strictly inside: split in two
			oldTo, normal, topHalf := n.to, n.normal, n.topHalf
			n.to = from
			part := c.occ.newNode(to, oldTo)
			pn := c.occ.node(part) // n is stale from here
			pn.normal = normal
			pn.topHalf = topHalf
			c.occ.linkAfter(after, part)
		}
		h = next
	}
	c.mergeOccludes()
}

const (
	MERGE_NONE       = iota
	MERGE_DROP_OTHER // other was dominated (or identical) and removed
	MERGE_DROP_THIS  // this was dominated and removed
)

// MergeOccludes removes ranges that are made redundant by another range with
// exactly the same span and half
func (c *AngleClipper) MergeOccludes() {
	c.mergeOccludes()
	c.checkSanity("MergeOccludes")
}

func (c *AngleClipper) mergeOccludes() {
	for h := c.occ.head; h != noRange; {
		next := c.occ.node(h).next
		start := c.occ.node(h).from
	candidates:
		for other := next; other != noRange; {
			on := c.occ.node(other)
			if on.from != start {
				break
			}
			otherNext := on.next
			switch c.tryMergeOccludes(h, other) {
			case MERGE_DROP_OTHER:
				if other == next {
					next = otherNext
				}
			case MERGE_DROP_THIS:
				break candidates
			}
			other = otherNext
		}
		h = next
	}
}

// tryMergeOccludes decides whether one of the two ranges hides everything the
// other one does, and if so, removes the other one. When in doubt, both stay:
// an extra range costs time, a wrongly removed one hides visible stuff
func (c *AngleClipper) tryMergeOccludes(h, other rangeHandle) int {
	a := *c.occ.node(h)
	b := *c.occ.node(other)
	if a.from != b.from || a.to != b.to || a.topHalf != b.topHalf {
		return MERGE_NONE
	}
	// Planes without an up component can't tell us a height
	if a.normal.Z == 0 || b.normal.Z == 0 {
		return MERGE_NONE
	}

	cross := a.normal.Cross(b.normal)
	if cross.IsZero() {
		// Same plane (both pass through the eye)
		c.occ.remove(other)
		return MERGE_DROP_OTHER
	}

	// The cross vector runs along the line where the planes intersect. If
	// that line is inside the range, bounds included, each plane wins on one
	// side of it. Only the direction of the cross vector counts, not its length
	if cross.X == 0 && cross.Y == 0 {
		return MERGE_NONE
	}
	crossAngle := DirectionAngle(cross.X, cross.Y)
	if AngleInSpan(crossAngle, a.from, a.to) ||
		AngleInSpan(crossAngle+BANG_180, a.from, a.to) {
		return MERGE_NONE
	}

	// Take a point on plane 'a' in the middle of the range and see which
	// side of plane 'b' it is on
	mid := a.from + (a.to-a.from)/2
	rad := mid.Radians()
	p := Vec3{X: math.Cos(rad), Y: math.Sin(rad)}
	p.Z = -(a.normal.X*p.X + a.normal.Y*p.Y) / a.normal.Z
	d := b.normal.Dot(p)
	if d > 0 {
		// a's boundary is hidden by b, so b hides more
		c.occ.remove(h)
		return MERGE_DROP_THIS
	} else if d < 0 {
		c.occ.remove(other)
		return MERGE_DROP_OTHER
	}
	return MERGE_NONE
}

// -----------------------------------------------------------------------------
// Sanity
// -----------------------------------------------------------------------------

// Validate walks both lists and reports the first broken invariant
func (c *AngleClipper) Validate() error {
	if err := c.clip.checkLinks("clip"); err != nil {
		return err
	}
	if err := c.occ.checkLinks("occlusion"); err != nil {
		return err
	}
	prev := noRange
	for h := c.clip.head; h != noRange; h = c.clip.node(h).next {
		n := c.clip.node(h)
		if n.from > n.to {
			return errors.New("clip range is inverted").
				WithTag("node", h).WithTag("from", n.from).WithTag("to", n.to)
		}
		if prev != noRange {
			p := c.clip.node(prev)
			if rangesTouch(p.to, n.from) {
				// overlapping or touching ranges must have been merged
				return errors.New("clip ranges are out of order or unmerged").
					WithTag("prev_from", p.from).WithTag("prev_to", p.to).
					WithTag("from", n.from).WithTag("to", n.to)
			}
		}
		prev = h
	}
	prev = noRange
	for h := c.occ.head; h != noRange; h = c.occ.node(h).next {
		n := c.occ.node(h)
		if n.from > n.to {
			return errors.New("occlusion range is inverted").
				WithTag("node", h).WithTag("from", n.from).WithTag("to", n.to)
		}
		if prev != noRange && c.occ.node(prev).from > n.from {
			return errors.New("occlusion ranges are out of order").
				WithTag("prev_from", c.occ.node(prev).from).
				WithTag("from", n.from)
		}
		prev = h
	}
	return nil
}

func (c *AngleClipper) checkSanity(op string) {
	if !c.validate {
		return
	}
	if err := c.Validate(); err != nil {
		Log.Panic("Angle clipper is corrupt after %s: %s\n", op, err.Error())
	}
}
