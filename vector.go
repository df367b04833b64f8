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

// vector
package main

import (
	"sort"
)

// FloatVertex is a point on the map plane. Map coordinates are X, Y; the
// height is never part of it (see Vec3 for that)
type FloatVertex struct {
	X float64
	Y float64
}

// Vec3 is a 3D vector in map axis convention: X and Y span the map plane,
// Z is the height
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) IsZero() bool {
	return a.X == 0 && a.Y == 0 && a.Z == 0
}

// ConvexHull returns the convex hull of points in counterclockwise order,
// without collinear points (Andrew's monotone chain). Fewer than 3 distinct
// points are returned as they are (deduplicated)
func ConvexHull(points []FloatVertex) []FloatVertex {
	pts := make([]FloatVertex, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	// dedup
	n := 0
	for i := range pts {
		if n > 0 && pts[n-1] == pts[i] {
			continue
		}
		pts[n] = pts[i]
		n++
	}
	pts = pts[:n]
	if n < 3 {
		return pts
	}
	hull := make([]FloatVertex, 0, 2*n)
	for _, p := range pts { // lower
		for len(hull) >= 2 && hullTurn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- { // upper
		p := pts[i]
		for len(hull) >= lower && hullTurn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func hullTurn(o, a, b FloatVertex) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
