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

func roomAViewpoint() Viewpoint {
	return Viewpoint{Name: "a", X: 128, Y: 128}
}

func TestPointInSubsector(t *testing.T) {
	lvl := loadTestLevel(t, defaultTwoRoomMap())
	v := CreateViewer(lvl, nil)
	require.Equal(t, 0, v.PointInSubsector(128, 128))
	require.Equal(t, 1, v.PointInSubsector(384, 128))
	// on the partition line goes to the back (left) side
	require.Equal(t, 0, v.PointInSubsector(256, 128))
}

func TestEyeFor(t *testing.T) {
	m := defaultTwoRoomMap()
	m.sectors[1].FloorHeight = 16
	lvl := loadTestLevel(t, m)
	v := CreateViewer(lvl, nil)

	eye, ss := v.EyeFor(Viewpoint{X: 384, Y: 64})
	require.Equal(t, 1, ss)
	require.Equal(t, Vec3{X: 384, Y: 64, Z: 16 + VIEWHEIGHT}, eye)

	z := 100.0
	eye, ss = v.EyeFor(Viewpoint{X: 100, Y: 100, Z: &z})
	require.Equal(t, 0, ss)
	require.Equal(t, 100.0, eye.Z)
}

func TestViewOpenRooms(t *testing.T) {
	lvl := loadTestLevel(t, defaultTwoRoomMap())
	v := CreateViewer(lvl, nil)
	vis := v.View(roomAViewpoint())

	require.Equal(t, "MAP01", vis.Level)
	require.Equal(t, Vec3{X: 128, Y: 128, Z: VIEWHEIGHT}, vis.Eye)
	require.Equal(t, 0, vis.EyeSubsector)
	require.Equal(t, 0, vis.EyeSector)
	require.Equal(t, []bool{true, true}, vis.SubSectors)
	require.Equal(t, []int{0, 1}, vis.VisibleSectorList())
	require.Equal(t, 2, vis.VisibleSubsectorCount())
	require.Equal(t, []int{0, 1}, vis.Things)
	require.Equal(t, 1, vis.NodesVisited)
	require.Zero(t, vis.NodesPruned)
	require.Nil(t, vis.RejectConflicts)
	// room A walls and all of room B but its opening: full circle
	require.True(t, v.Clipper().IsFull())
}

func TestViewClosedDoor(t *testing.T) {
	m := defaultTwoRoomMap()
	m.sectors[1].CeilHeight = 0
	lvl := loadTestLevel(t, m)
	v := CreateViewer(lvl, nil)
	vis := v.View(roomAViewpoint())

	require.Equal(t, []bool{true, false}, vis.SubSectors)
	require.Equal(t, []int{0}, vis.VisibleSectorList())
	require.Equal(t, []int{0}, vis.Things)
	require.Equal(t, 1, vis.NodesPruned)
	require.True(t, v.Clipper().IsFull())
}

// Room B is a 100 high step: the floor of room B is seen, but a monster
// standing in the middle of it is below the step edge
func TestViewFloorStep(t *testing.T) {
	m := defaultTwoRoomMap()
	m.sectors[1].FloorHeight = 100
	lvl := loadTestLevel(t, m)
	v := CreateViewer(lvl, nil)
	vis := v.View(roomAViewpoint())

	require.Equal(t, []int{0, 1}, vis.VisibleSectorList())
	require.Equal(t, []int{0}, vis.Things)

	// from above the step, the monster is in plain view
	z := 120.0
	vp := roomAViewpoint()
	vp.Z = &z
	vis = v.View(vp)
	require.Equal(t, []int{0, 1}, vis.Things)
}

func TestViewFromRoomB(t *testing.T) {
	m := defaultTwoRoomMap()
	m.sectors[0].CeilHeight = 0
	lvl := loadTestLevel(t, m)
	v := CreateViewer(lvl, nil)
	vis := v.View(Viewpoint{Name: "b", X: 384, Y: 128})
	require.Equal(t, 1, vis.EyeSector)
	require.Equal(t, []int{1}, vis.VisibleSectorList())
	require.Equal(t, []int{1}, vis.Things)
}

func TestViewNoCulling(t *testing.T) {
	withConfig(t, func(c *ProgramConfig) {
		c.NoCulling = true
	})
	m := defaultTwoRoomMap()
	m.sectors[1].CeilHeight = 0
	lvl := loadTestLevel(t, m)
	vis := CreateViewer(lvl, nil).View(roomAViewpoint())
	require.Equal(t, []int{0, 1}, vis.VisibleSectorList())
	require.Equal(t, []int{0, 1}, vis.Things)
}

func TestViewReusesRecords(t *testing.T) {
	lvl := loadTestLevel(t, defaultTwoRoomMap())
	v := CreateViewer(lvl, nil)
	first := v.View(roomAViewpoint())
	require.Positive(t, first.PoolAllocations)
	second := v.View(roomAViewpoint())
	require.Zero(t, second.PoolAllocations)
	require.Equal(t, first.SubSectors, second.SubSectors)
}

func TestViewRejectConflicts(t *testing.T) {
	withConfig(t, func(c *ProgramConfig) {
		c.CheckReject = true
	})
	m := defaultTwoRoomMap()
	// sector 1 hidden from sector 0
	m.reject = []byte{0x02}
	lvl := loadTestLevel(t, m)
	vis := CreateViewer(lvl, nil).View(roomAViewpoint())
	require.Equal(t, []int{1}, vis.RejectConflicts)
}

func TestIsClosed(t *testing.T) {
	open := LevelSector{FloorHeight: 0, CeilHeight: 128}
	require.False(t, isClosed(&open, &open))
	require.True(t, isClosed(&open, &LevelSector{FloorHeight: 0, CeilHeight: 0}))
	require.True(t, isClosed(&open, &LevelSector{FloorHeight: 128, CeilHeight: 256}))
	require.True(t, isClosed(&open, &LevelSector{FloorHeight: -64, CeilHeight: -8}))
	require.False(t, isClosed(&open, &LevelSector{FloorHeight: 24, CeilHeight: 72}))
}
