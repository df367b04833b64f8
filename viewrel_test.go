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
package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddRangeFromViewRelPoints(t *testing.T) {
	c := newTestClipper(t)
	c.SetEye(Vec3{X: 1000, Y: 1000, Z: 41})
	// wall east of the eye, seen from its front: v1 is to the left
	c.AddRangeFromViewRelPoints(FloatVertex{1100, 1100}, FloatVertex{1100, 900})
	require.Equal(t, []ClipRange{{0, BANG_45}, {BANG_315, BANG_MAX}}, c.ClipRanges())

	require.False(t, c.CheckRangeFromViewRelPoints(FloatVertex{1200, 1100}, FloatVertex{1200, 900}, false))
	// padding makes the range stick out of the solid one
	require.True(t, c.CheckRangeFromViewRelPoints(FloatVertex{1200, 1200}, FloatVertex{1200, 800}, true))
	require.True(t, c.CheckRangeFromViewRelPoints(FloatVertex{900, 1100}, FloatVertex{900, 900}, false))
}

func TestIsPointVisibleBehindWall(t *testing.T) {
	c := newTestClipper(t)
	c.SetEye(Vec3{X: 0, Y: 0, Z: 41})
	c.AddRangeFromViewRelPoints(FloatVertex{100, 100}, FloatVertex{100, -100})
	require.False(t, c.IsPointVisible(Vec3{X: 200, Y: 50, Z: 0}))
	require.True(t, c.IsPointVisible(Vec3{X: -200, Y: 50, Z: 0}))
}

// Two floor steps seen over the same span: the higher one hides more, so the
// lower one is dropped
func TestViewRelOcclusionFloorStep(t *testing.T) {
	c := newTestClipper(t)
	c.SetEye(Vec3{X: 0, Y: 0, Z: 41})
	from := FloatVertex{-100, 100}
	to := FloatVertex{100, 100}
	c.AddViewRelOcclusion(from, to, 50, false)
	c.AddViewRelOcclusion(from, to, 60, false)
	occ := c.OcclusionRanges()
	require.Len(t, occ, 1)
	require.Equal(t, BANG_45, occ[0].From)
	require.Equal(t, BANG_135, occ[0].To)
	require.False(t, occ[0].TopHalf)
	require.InDelta(t, 3800.0, occ[0].Normal.Y, 1e-9)

	// edge of 60 high step, 100 away from the eye: at 300 away, everything
	// below 41 + 3 * 19 = 98 is hidden
	require.False(t, c.IsPointVisible(Vec3{X: 0, Y: 300, Z: 90}))
	require.True(t, c.IsPointVisible(Vec3{X: 0, Y: 300, Z: 110}))
	// not inside the angle range
	require.True(t, c.IsPointVisible(Vec3{X: 300, Y: -10, Z: 0}))

	// adding the lower one after the higher one changes nothing
	c.AddViewRelOcclusion(from, to, 50, false)
	require.Len(t, c.OcclusionRanges(), 1)
	require.InDelta(t, 3800.0, c.OcclusionRanges()[0].Normal.Y, 1e-9)
}

func TestViewRelOcclusionCeiling(t *testing.T) {
	c := newTestClipper(t)
	c.SetEye(Vec3{X: 0, Y: 0, Z: 41})
	c.AddViewRelOcclusion(FloatVertex{-100, 100}, FloatVertex{100, 100}, 72, true)
	require.Len(t, c.OcclusionRanges(), 1)
	require.True(t, c.OcclusionRanges()[0].TopHalf)
	// boundary at 300 away: 41 + 3 * 31 = 134
	require.False(t, c.IsPointVisible(Vec3{X: 0, Y: 300, Z: 140}))
	require.True(t, c.IsPointVisible(Vec3{X: 0, Y: 300, Z: 120}))
}

func TestViewRelOcclusionSkippedWhereSolid(t *testing.T) {
	c := newTestClipper(t)
	c.SetEye(Vec3{X: 0, Y: 0, Z: 41})
	c.AddRangeFromViewRelPoints(FloatVertex{-200, 200}, FloatVertex{200, 200})
	c.AddViewRelOcclusion(FloatVertex{-100, 100}, FloatVertex{100, 100}, 60, false)
	require.Empty(t, c.OcclusionRanges())

	// zero length range is not a range
	c.AddViewRelOcclusion(FloatVertex{-100, -100}, FloatVertex{-200, -200}, 60, false)
	require.Empty(t, c.OcclusionRanges())
}

func TestIsPolyVisible(t *testing.T) {
	c := newTestClipper(t)
	c.SetEye(Vec3{})
	c.AddRange(DegreesToBinAngle(30), DegreesToBinAngle(60))
	behind := []FloatVertex{{95, 95}, {105, 95}, {105, 105}, {95, 105}}
	require.False(t, c.IsPolyVisible(behind))
	aside := []FloatVertex{{-5, 95}, {5, 95}, {5, 105}, {-5, 105}}
	require.True(t, c.IsPolyVisible(aside))

	// eye on the polygon's edge line sees it no matter what
	c.ClearRanges()
	c.AddRange(DegreesToBinAngle(1), DegreesToBinAngle(179))
	onEdge := []FloatVertex{{-10, 0}, {10, 0}, {10, 10}, {-10, 10}}
	require.True(t, c.IsPolyVisible(onEdge))

	// scratch buffer grows
	big := make([]FloatVertex, 0, 200)
	for i := 0; i < 200; i++ {
		big = append(big, FloatVertex{X: float64(1000 + i), Y: float64(-100 + i)})
	}
	require.True(t, c.IsPolyVisible(big))
	require.GreaterOrEqual(t, cap(c.angList), 200)
}
