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

// angle
package main

import (
	"math"
)

// BinAngle is a binary angle: the full turn is mapped onto the whole range of
// uint16, so that wrapping around 360 degrees is just unsigned overflow.
// 0 and BANG_MAX are (almost) the same direction.
type BinAngle uint16

const (
	BANG_0   = BinAngle(0)
	BANG_45  = BinAngle(0x2000)
	BANG_90  = BinAngle(0x4000)
	BANG_135 = BinAngle(0x6000)
	BANG_180 = BinAngle(0x8000)
	BANG_225 = BinAngle(0xA000)
	BANG_270 = BinAngle(0xC000)
	BANG_315 = BinAngle(0xE000)
	BANG_MAX = BinAngle(0xFFFF)
)

// Number of slope steps the atan table is built for, the table itself has one
// more entry so that slope 1 (exactly 45 degrees) is addressable
const SLOPEBITS = 11
const SLOPERANGE = 1 << SLOPEBITS

// View-relative coordinates are multiplied by this before truncation to int,
// otherwise sub-unit differences get lost near the eye
const VIEWREL_SCALE = 100.0

var atanTable [SLOPERANGE + 1]BinAngle

func init() {
	for i := 0; i <= SLOPERANGE; i++ {
		a := math.Atan(float64(i) / SLOPERANGE)
		atanTable[i] = BinAngle(math.Round(a * float64(BANG_180) / math.Pi))
	}
}

// BamsAtan2 returns the binary angle of vector (x, y), counterclockwise from
// positive x axis. Same input always gives same output, and the result is
// monotonic inside each octant.
// (0, 0) has no direction: BANG_0 is returned, callers must not depend on it
func BamsAtan2(y, x int) BinAngle {
	if x == 0 && y == 0 {
		return BANG_0
	}
	ax := absUint64(x)
	ay := absUint64(y)
	// Slope is ay*SLOPERANGE/ax, keep the product within 64 bits
	for ax > maxSlopeOperand || ay > maxSlopeOperand {
		ax >>= 1
		ay >>= 1
	}
	var v BinAngle
	if ax >= ay {
		v = atanTable[ay*SLOPERANGE/ax]
	} else {
		v = BANG_90 - atanTable[ax*SLOPERANGE/ay]
	}
	if x < 0 {
		v = BANG_180 - v
	}
	if y < 0 {
		v = -v
	}
	return v
}

const maxSlopeOperand = math.MaxUint64 / SLOPERANGE

func absUint64(v int) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

// DirectionAngle computes the angle of vector (dx, dy) of any length, no
// scaling or truncation is involved. (0, 0) gives BANG_0
func DirectionAngle(dx, dy float64) BinAngle {
	if dx == 0 && dy == 0 {
		return BANG_0
	}
	return DegreesToBinAngle(math.Atan2(dy, dx) * 180.0 / math.Pi)
}

// ViewRelAngle computes the angle of the view-relative 2D vector (dx, dy)
func ViewRelAngle(dx, dy float64) BinAngle {
	return BamsAtan2(int(dy*VIEWREL_SCALE), int(dx*VIEWREL_SCALE))
}

// DegreesToBinAngle converts degrees (any value, wraps) to binary angle
func DegreesToBinAngle(deg float64) BinAngle {
	turns := deg / 360.0
	turns -= math.Floor(turns)
	return BinAngle(uint32(math.Round(turns*65536.0)) & 0xFFFF)
}

// Radians returns the angle in radians, in [0, 2*Pi)
func (a BinAngle) Radians() float64 {
	return float64(a) * math.Pi / float64(BANG_180)
}

// Degrees returns the angle in degrees, in [0, 360)
func (a BinAngle) Degrees() float64 {
	return float64(a) * 180.0 / float64(BANG_180)
}

// AngleInSpan tells whether a lies inside [from, to], bounds included, where
// the range is measured counterclockwise from 'from'
func AngleInSpan(a, from, to BinAngle) bool {
	return a-from <= to-from
}
