// Copyright (C) 2022-2025, VigilantDoomer
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

// REJECT is a numSectors x numSectors bit matrix, row i is the sector a
// monster is in, column j the sector of its target. Bit i*numSectors+j is set
// if sector j can NOT be seen from sector i. Bits are packed starting from
// the least significant one.
// Nodebuilders compute it conservatively, so if the walker sees a sector that
// REJECT hides, either REJECT or the map is broken (or REJECT was edited to
// make some monsters blind on purpose, which is a known mapping trick).

// RejectBitIndex returns the bit number for the pair of sectors
func RejectBitIndex(from, to, numSectors int) int {
	return from*numSectors + to
}

// RejectHides tells whether REJECT says sector 'to' can't be seen from
// sector 'from'. Out of range pairs are never hidden
func RejectHides(reject []byte, numSectors, from, to int) bool {
	if from < 0 || to < 0 || from >= numSectors || to >= numSectors {
		return false
	}
	bit := RejectBitIndex(from, to, numSectors)
	if bit>>3 >= len(reject) {
		return false
	}
	return reject[bit>>3]&(uint8(1)<<uint(bit&7)) != 0
}

// RejectConflicts lists sectors visible from the eye that REJECT marks as
// hidden from eye's sector
func RejectConflicts(lvl *Level, vis *Visibility) []int {
	var res []int
	numSectors := len(lvl.Sectors)
	for sector, visible := range vis.Sectors {
		if !visible || sector == vis.EyeSector {
			continue
		}
		if RejectHides(lvl.Reject, numSectors, vis.EyeSector, sector) {
			res = append(res, sector)
		}
	}
	return res
}
