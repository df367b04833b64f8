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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const ErrTypeSnapshot = "snapshot"

// Longest side of snapshot image, in pixels. Margin is on every side
const SNAPSHOT_SIZE = 1024
const SNAPSHOT_MARGIN = 16

var (
	snapBackground = color.RGBA{0x10, 0x10, 0x10, 0xFF}
	snapVisible    = color.RGBA{0x20, 0x80, 0x30, 0xFF}
	snapLine       = color.RGBA{0x90, 0x90, 0x90, 0xFF}
	snapSolidLine  = color.RGBA{0xE0, 0xE0, 0xE0, 0xFF}
	snapThing      = color.RGBA{0xF0, 0xD0, 0x20, 0xFF}
	snapEye        = color.RGBA{0xF0, 0x30, 0x30, 0xFF}
	snapText       = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
)

// snapProjection maps world coordinates to image pixels, y axis flipped
type snapProjection struct {
	bounds LevelBounds
	scale  float64
}

func (p snapProjection) pt(v FloatVertex) (float32, float32) {
	x := (v.X-p.bounds.Xmin)*p.scale + SNAPSHOT_MARGIN
	y := (p.bounds.Ymax-v.Y)*p.scale + SNAPSHOT_MARGIN
	return float32(x), float32(y)
}

// RenderSnapshot draws the level top-down: visible subsectors filled, lines
// on top, visible things as dots, the eye with a direction tick, and level
// and viewpoint name in the corner. angle is the view direction in degrees
func RenderSnapshot(lvl *Level, vis *Visibility, angle float64) *image.RGBA {
	bounds := lvl.Bounds()
	// eye may be outside the map
	bounds.Xmin = math.Min(bounds.Xmin, vis.Eye.X)
	bounds.Xmax = math.Max(bounds.Xmax, vis.Eye.X)
	bounds.Ymin = math.Min(bounds.Ymin, vis.Eye.Y)
	bounds.Ymax = math.Max(bounds.Ymax, vis.Eye.Y)
	w := bounds.Xmax - bounds.Xmin
	h := bounds.Ymax - bounds.Ymin
	side := math.Max(math.Max(w, h), 1)
	proj := snapProjection{
		bounds: bounds,
		scale:  float64(SNAPSHOT_SIZE-2*SNAPSHOT_MARGIN) / side,
	}
	imgW := int(math.Ceil(w*proj.scale)) + 2*SNAPSHOT_MARGIN
	imgH := int(math.Ceil(h*proj.scale)) + 2*SNAPSHOT_MARGIN
	img := image.NewRGBA(image.Rect(0, 0, imgW, imgH))
	draw.Draw(img, img.Bounds(), image.NewUniform(snapBackground), image.Point{}, draw.Src)

	z := vector.NewRasterizer(imgW, imgH)
	z.DrawOp = draw.Over

	hullPoints := make([]FloatVertex, 0, 32)
	for i, ss := range lvl.SubSectors {
		if !vis.SubSectors[i] {
			continue
		}
		hullPoints = hullPoints[:0]
		for s := ss.FirstSeg; s < ss.FirstSeg+ss.SegCount; s++ {
			hullPoints = append(hullPoints, lvl.Vertices[lvl.Segs[s].V1],
				lvl.Vertices[lvl.Segs[s].V2])
		}
		hull := ConvexHull(hullPoints)
		if len(hull) < 3 {
			continue
		}
		z.Reset(imgW, imgH)
		z.DrawOp = draw.Over
		z.MoveTo(proj.pt(hull[0]))
		for _, v := range hull[1:] {
			z.LineTo(proj.pt(v))
		}
		z.ClosePath()
		z.Draw(img, img.Bounds(), image.NewUniform(snapVisible), image.Point{})
	}

	for _, line := range lvl.Lines {
		c := snapLine
		if line.Back < 0 {
			c = snapSolidLine
		}
		strokeSegment(z, img, proj, lvl.Vertices[line.V1], lvl.Vertices[line.V2], 1.0, c)
	}

	for _, thIdx := range vis.Things {
		th := lvl.Things[thIdx]
		fillSquare(z, img, proj, FloatVertex{X: th.X, Y: th.Y}, 2.0, snapThing)
	}

	eye := FloatVertex{X: vis.Eye.X, Y: vis.Eye.Y}
	rad := angle * math.Pi / 180.0
	tickLen := 24.0 / proj.scale
	tip := FloatVertex{X: eye.X + math.Cos(rad)*tickLen, Y: eye.Y + math.Sin(rad)*tickLen}
	strokeSegment(z, img, proj, eye, tip, 2.0, snapEye)
	fillSquare(z, img, proj, eye, 3.0, snapEye)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(snapText),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, 13),
	}
	d.DrawString(lvl.Name + " " + vis.Viewpoint.Name)
	return img
}

// strokeSegment fills a rectangle of the given pixel width around a->b
func strokeSegment(z *vector.Rasterizer, img *image.RGBA, proj snapProjection,
	a, b FloatVertex, width float32, c color.RGBA) {
	ax, ay := proj.pt(a)
	bx, by := proj.pt(b)
	dx := bx - ax
	dy := by - ay
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	// half-width normal
	nx := -dy / l * width / 2
	ny := dx / l * width / 2
	z.Reset(img.Bounds().Dx(), img.Bounds().Dy())
	z.DrawOp = draw.Over
	z.MoveTo(ax+nx, ay+ny)
	z.LineTo(bx+nx, by+ny)
	z.LineTo(bx-nx, by-ny)
	z.LineTo(ax-nx, ay-ny)
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
}

func fillSquare(z *vector.Rasterizer, img *image.RGBA, proj snapProjection,
	center FloatVertex, half float32, c color.RGBA) {
	x, y := proj.pt(center)
	z.Reset(img.Bounds().Dx(), img.Bounds().Dy())
	z.DrawOp = draw.Over
	z.MoveTo(x-half, y-half)
	z.LineTo(x+half, y-half)
	z.LineTo(x+half, y+half)
	z.LineTo(x-half, y+half)
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
}

func WriteSnapshot(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return errors.New("couldn't encode snapshot").
			WithType(ErrTypeSnapshot).
			Wrap(err)
	}
	return nil
}
