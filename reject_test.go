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

func TestRejectBits(t *testing.T) {
	require.Equal(t, 7, RejectBitIndex(2, 1, 3))

	// 3 sectors: 9 bits, 2 bytes. 0 can't see 2 (bit 2), 2 can't see 1 (bit 7),
	// 2 can't see 2 (bit 8)
	reject := []byte{0x84, 0x01}
	require.True(t, RejectHides(reject, 3, 0, 2))
	require.True(t, RejectHides(reject, 3, 2, 1))
	require.True(t, RejectHides(reject, 3, 2, 2))
	require.False(t, RejectHides(reject, 3, 2, 0))
	require.False(t, RejectHides(reject, 3, 1, 2))

	// out of range pairs are never hidden
	require.False(t, RejectHides(reject, 3, 3, 0))
	require.False(t, RejectHides(reject, 3, -1, 0))
	require.False(t, RejectHides(reject[:1], 3, 2, 2))
}

func TestRejectConflicts(t *testing.T) {
	lvl := &Level{
		Sectors: make([]LevelSector, 3),
		// everything hidden from sector 1, including itself
		Reject: []byte{0x38, 0x00},
	}
	vis := &Visibility{
		EyeSector: 1,
		Sectors:   []bool{true, true, false},
	}
	// own sector is never a conflict, sector 2 is not visible
	require.Equal(t, []int{0}, RejectConflicts(lvl, vis))
}
