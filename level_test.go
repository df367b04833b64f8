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

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func requireTwoRoomLevel(t *testing.T, lvl *Level) {
	require.Equal(t, "MAP01", lvl.Name)
	require.Len(t, lvl.Vertices, 6)
	require.Len(t, lvl.Lines, 7)
	require.Len(t, lvl.Sides, 8)
	require.Len(t, lvl.Sectors, 2)
	require.Len(t, lvl.Segs, 8)
	require.Len(t, lvl.SubSectors, 2)
	require.Len(t, lvl.Nodes, 1)
	require.Len(t, lvl.Things, 2)

	require.Equal(t, 0, lvl.SubSectors[0].Sector)
	require.Equal(t, 1, lvl.SubSectors[1].Sector)
	require.Equal(t, 4, lvl.SubSectors[1].FirstSeg)

	node := lvl.Nodes[0]
	require.Equal(t, [2]int{1, 0}, node.Child)
	require.Equal(t, [2]bool{true, true}, node.ChildIsSubsec)
	require.Equal(t, [4]float64{256, 0, 256, 512}, node.BBox[0])
	require.Equal(t, [4]float64{256, 0, 0, 256}, node.BBox[1])

	root, isSubsec := lvl.RootNode()
	require.Equal(t, 0, root)
	require.False(t, isSubsec)
}

func TestLoadLevel(t *testing.T) {
	lvl := loadTestLevel(t, defaultTwoRoomMap())
	requireTwoRoomLevel(t, lvl)
	require.Equal(t, FORMAT_DOOM, lvl.Format)
	require.False(t, lvl.DeepNodes)
	require.Nil(t, lvl.Reject)

	require.Equal(t, LevelLine{V1: 4, V2: 1, Flags: LF_TWOSIDED, Front: 3, Back: 4}, lvl.Lines[3])
	require.Equal(t, -1, lvl.Lines[0].Back)

	// one-sided
	require.Equal(t, 0, lvl.SegFrontSector(0))
	require.Equal(t, -1, lvl.SegBackSector(0))
	// shared line, seen from both rooms
	require.Equal(t, 0, lvl.SegFrontSector(2))
	require.Equal(t, 1, lvl.SegBackSector(2))
	require.Equal(t, 1, lvl.SegFrontSector(4))
	require.Equal(t, 0, lvl.SegBackSector(4))

	th, ok := lvl.PlayerStart()
	require.True(t, ok)
	require.Equal(t, LevelThing{X: 128, Y: 128, Angle: 0, Type: THING_PLAYER1_START}, th)

	require.Equal(t, LevelBounds{Xmin: 0, Ymin: 0, Xmax: 512, Ymax: 256}, lvl.Bounds())
}

func TestLoadLevelDeepNodes(t *testing.T) {
	m := defaultTwoRoomMap()
	m.nodesFormat = testNodesDeep
	lvl := loadTestLevel(t, m)
	require.True(t, lvl.DeepNodes)
	requireTwoRoomLevel(t, lvl)
}

func TestLoadLevelHexen(t *testing.T) {
	m := defaultTwoRoomMap()
	m.hexen = true
	lvl := loadTestLevel(t, m)
	require.Equal(t, FORMAT_HEXEN, lvl.Format)
	requireTwoRoomLevel(t, lvl)
	require.Equal(t, 3001, lvl.Things[1].Type)
	require.Equal(t, 180.0, lvl.Things[1].Angle)
}

func TestLoadLevelZdoomNodes(t *testing.T) {
	m := defaultTwoRoomMap()
	m.nodesFormat = testNodesZdoom
	w := readTestWad(t, m.addTo(newTestWad(), "MAP01"))
	levels, errs := w.FindLevels()
	require.Empty(t, errs)
	_, err := LoadLevel(w, levels[0])
	require.Error(t, err)
	require.Equal(t, ErrTypeUnsupportedNodes, errors.Type(err))
}

func TestLoadLevelBadReference(t *testing.T) {
	m := defaultTwoRoomMap()
	// sidedefs of room B point to a sector that is not there
	m.sectors = m.sectors[:1]
	w := readTestWad(t, m.addTo(newTestWad(), "MAP01"))
	levels, _ := w.FindLevels()
	_, err := LoadLevel(w, levels[0])
	require.Error(t, err)
	require.Equal(t, ErrTypeBadLump, errors.Type(err))
}

func TestLoadLevelBadLumpSize(t *testing.T) {
	m := defaultTwoRoomMap()
	w := readTestWad(t, m.addTo(newTestWad(), "MAP01"))
	levels, _ := w.FindLevels()
	// pretend VERTEXES has a partial record
	w.Lumps[levels[0].Lumps["VERTEXES"]].Size -= 2
	_, err := LoadLevel(w, levels[0])
	require.Error(t, err)
	require.Equal(t, ErrTypeBadLump, errors.Type(err))
}

func TestLoadLevelReject(t *testing.T) {
	m := defaultTwoRoomMap()
	m.reject = []byte{0x02, 0xFF}
	lvl := loadTestLevel(t, m)
	// trailing bytes are dropped
	require.Equal(t, []byte{0x02}, lvl.Reject)

	m.reject = []byte{}
	lvl = loadTestLevel(t, m)
	require.Nil(t, lvl.Reject)
}

func TestLoadLevelSky(t *testing.T) {
	m := defaultTwoRoomMap()
	m.sectors[1].CeilName = lumpName8("F_SKY1")
	lvl := loadTestLevel(t, m)
	require.False(t, lvl.Sectors[0].CeilSky)
	require.True(t, lvl.Sectors[1].CeilSky)
	require.False(t, lvl.Sectors[1].FloorSky)
}
