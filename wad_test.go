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
	"bytes"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestReadWadNotAWad(t *testing.T) {
	b := newTestWad()
	b.magic = 0x4B4E554A // JUNK
	_, err := ReadWad(bytes.NewReader(b.bytes()))
	require.Error(t, err)
	require.Equal(t, ErrTypeNotAWad, errors.Type(err))

	_, err = ReadWad(bytes.NewReader([]byte("PWAD")))
	require.Error(t, err)
	require.True(t, errors.IsType(err, ErrTypeNotAWad))
}

func TestReadWadBadDirectory(t *testing.T) {
	data := newTestWad().add("DEMO1", []byte{1, 2, 3}).bytes()
	// directory is cut short
	_, err := ReadWad(bytes.NewReader(data[:len(data)-4]))
	require.Error(t, err)
	require.Equal(t, ErrTypeBadDirectory, errors.Type(err))
}

func TestReadWadIWAD(t *testing.T) {
	b := newTestWad().add("PLAYPAL", []byte{1, 2, 3, 4})
	b.magic = IWAD_MAGIC_SIG
	w := readTestWad(t, b)
	require.True(t, w.IsIWAD())
	require.Len(t, w.Lumps, 1)
	require.Equal(t, []byte("PLAYPAL"), w.LumpName(0))
	raw, err := w.ReadRawLump(0)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, raw)

	require.False(t, readTestWad(t, newTestWad()).IsIWAD())
}

func TestFindLevels(t *testing.T) {
	b := newTestWad().add("PLAYPAL", []byte{0})
	defaultTwoRoomMap().addTo(b, "MAP01")
	b.add("ENDOOM", []byte{0})
	defaultTwoRoomMap().addTo(b, "MAP02")
	w := readTestWad(t, b)

	levels, errs := w.FindLevels()
	require.Empty(t, errs)
	require.Len(t, levels, 2)
	require.Equal(t, "MAP01", levels[0].Name)
	require.Equal(t, "MAP02", levels[1].Name)
	require.Equal(t, FORMAT_DOOM, levels[0].LevelFormat)
	require.Equal(t, 1, levels[0].MarkerIndex)
	require.Equal(t, 2, levels[0].Lumps["THINGS"])
	require.Contains(t, levels[0].Lumps, "BLOCKMAP")
	require.NotContains(t, levels[0].Lumps, "ENDOOM")
}

func TestFindLevelsMissingLump(t *testing.T) {
	b := newTestWad().add("E1M1", nil).
		add("THINGS", nil).
		add("LINEDEFS", nil)
	defaultTwoRoomMap().addTo(b, "E1M2")
	w := readTestWad(t, b)

	levels, errs := w.FindLevels()
	require.Len(t, levels, 1)
	require.Equal(t, "E1M2", levels[0].Name)
	// one error per missing lump
	require.Len(t, errs, len(LUMP_MUSTEXIST)-2)
	for _, err := range errs {
		require.Equal(t, ErrTypeMissingLump, errors.Type(err))
	}
}

func TestFindLevelsDuplicateLump(t *testing.T) {
	b := defaultTwoRoomMap().addTo(newTestWad(), "MAP01")
	b.add("THINGS", []Thing{{Type: 2001}})
	w := readTestWad(t, b)

	levels, errs := w.FindLevels()
	require.Empty(t, errs)
	require.Len(t, levels, 1)
	// the first one wins
	require.Equal(t, 1, levels[0].Lumps["THINGS"])
}

func TestFindLevelsHexen(t *testing.T) {
	b := defaultTwoRoomMap().addTo(newTestWad(), "MAP01")
	b.add("BEHAVIOR", []byte{'A', 'C', 'S', 0})
	w := readTestWad(t, b)

	levels, errs := w.FindLevels()
	require.Empty(t, errs)
	require.Len(t, levels, 1)
	require.Equal(t, FORMAT_HEXEN, levels[0].LevelFormat)
}

func TestIsALevel(t *testing.T) {
	for _, name := range []string{"MAP01", "MAP32", "E1M1", "E4M9", "E2M10"} {
		require.True(t, IsALevel([]byte(name)), name)
	}
	for _, name := range []string{"MAP1", "map01", "E0M1", "THINGS", "MAP01X"} {
		require.False(t, IsALevel([]byte(name)), name)
	}
}

func TestCanProcessThisLevel(t *testing.T) {
	require.True(t, CanProcessThisLevel([]byte("MAP07")))

	withConfig(t, func(c *ProgramConfig) {
		c.FilterLevel = [][]byte{[]byte("MAP07")}
		c.FilterProhibitsLevels = false
	})
	require.True(t, CanProcessThisLevel([]byte("MAP07")))
	require.False(t, CanProcessThisLevel([]byte("MAP08")))
}

func TestByteSliceBeforeTerm(t *testing.T) {
	require.Equal(t, []byte("MAP01"), ByteSliceBeforeTerm([]byte{'M', 'A', 'P', '0', '1', 0, 0, 0}))
	require.Equal(t, []byte("BLOCKMAP"), ByteSliceBeforeTerm([]byte("BLOCKMAP")))
}
