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

// viewrel
package main

// Clipper operations that take world coordinates and convert them to angles
// relative to the eye (see SetEye).
// Winding: a wall seen from its front side goes from v1 (counterclockwise,
// greater angle) to v2, same as in Doom's R_AddLine. So the range a wall
// covers is [angle(v2), angle(v1)], that's why "from" and "to" points swap
// places when they become angles

// PointToAngle returns the direction from the eye to world point p
func (c *AngleClipper) PointToAngle(p FloatVertex) BinAngle {
	return ViewRelAngle(p.X-c.eye.X, p.Y-c.eye.Y)
}

// AddRangeFromViewRelPoints marks the wall from->to solid
func (c *AngleClipper) AddRangeFromViewRelPoints(from, to FloatVertex) {
	c.SafeAddRange(c.PointToAngle(to), c.PointToAngle(from))
}

// CheckRangeFromViewRelPoints tells whether anything between the two
// points may still be visible. With pad, the range is widened a bit on both
// sides to forgive rounding at shared edges
func (c *AngleClipper) CheckRangeFromViewRelPoints(from, to FloatVertex, pad bool) bool {
	if config.NoCulling { // reference to global: config
		return true
	}
	start := c.PointToAngle(to)
	end := c.PointToAngle(from)
	if pad {
		start -= RANGE_FUDGE
		end += RANGE_FUDGE
	}
	return c.safeCheckRange(start, end)
}

// AddViewRelOcclusion adds an occlusion plane passing through the eye and the
// edge from->to at the given height. With topHalf, everything above the edge
// (as seen from the eye) is occluded, otherwise everything below
func (c *AngleClipper) AddViewRelOcclusion(from, to FloatVertex, height float64, topHalf bool) {
	viewToV1 := Vec3{X: from.X - c.eye.X, Y: from.Y - c.eye.Y, Z: height - c.eye.Z}
	viewToV2 := Vec3{X: to.X - c.eye.X, Y: to.Y - c.eye.Y, Z: height - c.eye.Z}
	// The normal points to the half that is occluded
	var normal Vec3
	if topHalf {
		normal = viewToV2.Cross(viewToV1)
	} else {
		normal = viewToV1.Cross(viewToV2)
	}
	start := c.PointToAngle(to)
	end := c.PointToAngle(from)
	if start == end {
		// not a range
		return
	}
	c.SafeAddOcclusionRange(start, end, normal, topHalf)
}

// IsPointVisible tells whether world point p (with height) is not hidden by
// solid ranges or occlusion planes
func (c *AngleClipper) IsPointVisible(p Vec3) bool {
	if config.NoCulling { // reference to global: config
		return true
	}
	rel := p.Sub(c.eye)
	angle := ViewRelAngle(rel.X, rel.Y)
	if !c.isAngleVisible(angle) {
		return false
	}
	for h := c.occ.head; h != noRange; h = c.occ.node(h).next {
		n := c.occ.node(h)
		if n.from > angle {
			// sorted by start, no further range can contain the angle
			break
		}
		if angle <= n.to && rel.Dot(n.normal) > 0 {
			// positive side of the plane is the occluded one
			return false
		}
	}
	return true
}

// IsPolyVisible tells whether any part of convex polygon poly (world
// coordinates, in boundary order) can be seen. One unclipped edge is enough.
// The last edge is not checked: for a closed convex polygon its range is
// already covered by the other edges
func (c *AngleClipper) IsPolyVisible(poly []FloatVertex) bool {
	if config.NoCulling { // reference to global: config
		return true
	}
	if c.IsFull() {
		return false
	}
	if cap(c.angList) < len(poly) {
		c.angList = make([]BinAngle, len(poly), 2*len(poly))
	}
	c.angList = c.angList[:len(poly)]
	for i, v := range poly {
		c.angList[i] = c.PointToAngle(v)
	}
	for i := 0; i < len(poly)-1; i++ {
		a1 := c.angList[i]
		a2 := c.angList[i+1]
		angLen := a2 - a1
		if angLen == BANG_180 {
			// eye is on the edge line
			return true
		}
		// pick the order where the span is less than 180
		if angLen < BANG_180 {
			if c.safeCheckRange(a1, a2) {
				return true
			}
		} else {
			if c.safeCheckRange(a2, a1) {
				return true
			}
		}
	}
	return false
}
