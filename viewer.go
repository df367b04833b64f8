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

// viewer
package main

// Viewer walks BSP tree front to back from a viewpoint, the way the game
// renderer does, and feeds walls and floor/ceiling steps into the angle
// clipper. What passes clipper checks is what could be seen from the eye.

// Things are tested at their feet and this high above the floor
const THING_HEIGHT = 56

// Doom's R_CheckBBox table: for each position of the eye relative to the box
// (3x3 grid, see checkBBox), which two corners bound the box as seen from the
// eye. Values index the box: BB_TOP, BB_BOTTOM, BB_LEFT, BB_RIGHT. The
// corners are (box[c[0]], box[c[1]]) and (box[c[2]], box[c[3]])
var checkcoord = [12][4]int{
	{3, 0, 2, 1},
	{3, 0, 2, 0},
	{3, 1, 2, 0},
	{0, 0, 0, 0},
	{2, 0, 2, 1},
	{0, 0, 0, 0}, // eye inside the box
	{3, 1, 3, 0},
	{0, 0, 0, 0},
	{2, 0, 3, 1},
	{2, 1, 3, 1},
	{2, 1, 3, 0},
	{0, 0, 0, 0},
}

// Visibility is the result of a walk from one viewpoint
type Visibility struct {
	Level           string
	Viewpoint       Viewpoint
	Eye             Vec3
	EyeSubsector    int
	EyeSector       int
	SubSectors      []bool // visible subsectors
	Sectors         []bool // visible sectors
	Things          []int  // indices of visible things
	RejectConflicts []int  // visible sectors that REJECT says can't be seen from EyeSector
	NodesVisited    int
	NodesPruned     int // back subtrees skipped because their bbox was clipped
	Stats           ClipperStats
	// range records this walk had to allocate, the rest were reused from
	// earlier walks of the same viewer
	PoolAllocations int
}

func (vis *Visibility) VisibleSubsectorCount() int {
	cnt := 0
	for _, b := range vis.SubSectors {
		if b {
			cnt++
		}
	}
	return cnt
}

// VisibleSectorList returns visible sector numbers in increasing order
func (vis *Visibility) VisibleSectorList() []int {
	res := make([]int, 0, len(vis.Sectors))
	for i, b := range vis.Sectors {
		if b {
			res = append(res, i)
		}
	}
	return res
}

// Viewer is not safe for concurrent use, but any number of viewers may share
// the same Level, which is never modified
type Viewer struct {
	lvl     *Level
	clipper *AngleClipper
	// things in each subsector, built once
	ssThings [][]int
	// scratch
	hullPoints []FloatVertex
	vis        *Visibility
	mlog       *MiniLogger
}

func CreateViewer(lvl *Level, mlog *MiniLogger) *Viewer {
	v := &Viewer{
		lvl:        lvl,
		clipper:    CreateAngleClipper(),
		ssThings:   make([][]int, len(lvl.SubSectors)),
		hullPoints: make([]FloatVertex, 0, 32),
		mlog:       mlog,
	}
	for i, th := range lvl.Things {
		ss := v.PointInSubsector(th.X, th.Y)
		v.ssThings[ss] = append(v.ssThings[ss], i)
	}
	return v
}

func (v *Viewer) Clipper() *AngleClipper {
	return v.clipper
}

// pointOnSide returns 0 if point is on the front (right) side of node's
// partition line, and 1 otherwise. Points on the line itself go to the back,
// same as R_PointOnSide
func pointOnSide(x, y float64, node *LevelNode) int {
	dx := x - node.X
	dy := y - node.Y
	left := node.Dy * dx
	right := dy * node.Dx
	if right < left {
		return 0
	}
	return 1
}

// PointInSubsector returns the subsector that contains world point (x, y)
func (v *Viewer) PointInSubsector(x, y float64) int {
	num, isSubsec := v.lvl.RootNode()
	for !isSubsec {
		node := &v.lvl.Nodes[num]
		side := pointOnSide(x, y, node)
		num, isSubsec = node.Child[side], node.ChildIsSubsec[side]
	}
	return num
}

// EyeFor resolves the eye position for a viewpoint: unless specified, eye
// height is VIEWHEIGHT above the floor of the sector the eye is in
func (v *Viewer) EyeFor(vp Viewpoint) (Vec3, int) {
	ss := v.PointInSubsector(vp.X, vp.Y)
	eye := Vec3{X: vp.X, Y: vp.Y}
	if vp.Z != nil {
		eye.Z = *vp.Z
	} else {
		eye.Z = v.lvl.Sectors[v.lvl.SubSectors[ss].Sector].FloorHeight + VIEWHEIGHT
	}
	return eye, ss
}

// View walks the whole tree from the viewpoint and returns what can be seen
func (v *Viewer) View(vp Viewpoint) *Visibility {
	eye, eyeSS := v.EyeFor(vp)
	before := v.clipper.Stats()
	v.clipper.ClearRanges()
	v.clipper.SetEye(eye)
	v.vis = &Visibility{
		Level:        v.lvl.Name,
		Viewpoint:    vp,
		Eye:          eye,
		EyeSubsector: eyeSS,
		EyeSector:    v.lvl.SubSectors[eyeSS].Sector,
		SubSectors:   make([]bool, len(v.lvl.SubSectors)),
		Sectors:      make([]bool, len(v.lvl.Sectors)),
	}
	num, isSubsec := v.lvl.RootNode()
	v.renderNode(num, isSubsec)
	if v.lvl.Reject != nil && config.CheckReject { // reference to global: config
		v.vis.RejectConflicts = RejectConflicts(v.lvl, v.vis)
	}
	v.vis.Stats = v.clipper.Stats()
	v.vis.PoolAllocations = v.vis.Stats.ClipAllocated + v.vis.Stats.OcclusionAllocated -
		before.ClipAllocated - before.OcclusionAllocated
	v.mlog.Verbose(2, "  %s: %d nodes visited, %d subtrees pruned, %d clip ranges, %d occlusion ranges in the end\n",
		vp.Name, v.vis.NodesVisited, v.vis.NodesPruned, v.vis.Stats.ClipNodes,
		v.vis.Stats.OcclusionNodes)
	res := v.vis
	v.vis = nil
	return res
}

func (v *Viewer) renderNode(num int, isSubsec bool) {
	if v.clipper.IsFull() {
		v.vis.NodesPruned++
		return
	}
	if isSubsec {
		v.renderSubsector(num)
		return
	}
	v.vis.NodesVisited++
	node := &v.lvl.Nodes[num]
	side := pointOnSide(v.vis.Eye.X, v.vis.Eye.Y, node)
	v.renderNode(node.Child[side], node.ChildIsSubsec[side])
	back := side ^ 1
	if v.checkBBox(&node.BBox[back]) {
		v.renderNode(node.Child[back], node.ChildIsSubsec[back])
	} else {
		v.vis.NodesPruned++
	}
}

// checkBBox tells whether anything inside the box can still be seen
func (v *Viewer) checkBBox(box *[4]float64) bool {
	eye := v.vis.Eye
	var boxx, boxy int
	if eye.X <= box[BB_LEFT] {
		boxx = 0
	} else if eye.X < box[BB_RIGHT] {
		boxx = 1
	} else {
		boxx = 2
	}
	if eye.Y >= box[BB_TOP] {
		boxy = 0
	} else if eye.Y > box[BB_BOTTOM] {
		boxy = 1
	} else {
		boxy = 2
	}
	boxpos := (boxy << 2) + boxx
	if boxpos == 5 {
		return true
	}
	c := checkcoord[boxpos]
	p1 := FloatVertex{X: box[c[0]], Y: box[c[1]]}
	p2 := FloatVertex{X: box[c[2]], Y: box[c[3]]}
	if v.clipper.PointToAngle(p1)-v.clipper.PointToAngle(p2) >= BANG_180 {
		// eye is (nearly) on the box edge
		return true
	}
	return v.clipper.CheckRangeFromViewRelPoints(p1, p2, true)
}

func (v *Viewer) renderSubsector(num int) {
	ss := &v.lvl.SubSectors[num]
	if !v.isSubsectorVisible(ss) {
		return
	}
	v.vis.SubSectors[num] = true
	v.vis.Sectors[ss.Sector] = true

	// Things first: walls of this very subsector are behind them
	for _, thIdx := range v.ssThings[num] {
		if v.IsThingVisible(v.lvl.Things[thIdx], ss.Sector) {
			v.vis.Things = append(v.vis.Things, thIdx)
		}
	}

	for i := ss.FirstSeg; i < ss.FirstSeg+ss.SegCount; i++ {
		v.addSeg(i)
	}
}

func (v *Viewer) isSubsectorVisible(ss *LevelSubSector) bool {
	v.hullPoints = v.hullPoints[:0]
	for i := ss.FirstSeg; i < ss.FirstSeg+ss.SegCount; i++ {
		seg := &v.lvl.Segs[i]
		v.hullPoints = append(v.hullPoints, v.lvl.Vertices[seg.V1],
			v.lvl.Vertices[seg.V2])
	}
	hull := ConvexHull(v.hullPoints)
	if len(hull) < 2 {
		return true
	}
	return v.clipper.IsPolyVisible(hull)
}

// addSeg puts front-facing seg into clipper: as a solid range if nothing can
// be seen through it, or as occlusion planes for floor and ceiling steps
func (v *Viewer) addSeg(segIdx int) {
	lvl := v.lvl
	seg := &lvl.Segs[segIdx]
	v1 := lvl.Vertices[seg.V1]
	v2 := lvl.Vertices[seg.V2]
	span := v.clipper.PointToAngle(v1) - v.clipper.PointToAngle(v2)
	if span == 0 || span >= BANG_180 {
		// back side faces the eye, or seg is seen edge-on
		return
	}
	backSector := lvl.SegBackSector(segIdx)
	if backSector < 0 {
		v.clipper.AddRangeFromViewRelPoints(v1, v2)
		return
	}
	front := &lvl.Sectors[lvl.SegFrontSector(segIdx)]
	back := &lvl.Sectors[backSector]
	if isClosed(front, back) {
		v.clipper.AddRangeFromViewRelPoints(v1, v2)
		return
	}
	eyeZ := v.vis.Eye.Z

	// Do the floors create an occlusion?
	if !(front.FloorSky && back.FloorSky) &&
		((back.FloorHeight > front.FloorHeight && eyeZ <= back.FloorHeight) ||
			(back.FloorHeight < front.FloorHeight && eyeZ >= front.FloorHeight)) {
		v.clipper.AddViewRelOcclusion(v1, v2,
			max(front.FloorHeight, back.FloorHeight), false)
	}

	// Do the ceilings create an occlusion?
	if !(front.CeilSky && back.CeilSky) &&
		((back.CeilHeight < front.CeilHeight && eyeZ >= back.CeilHeight) ||
			(back.CeilHeight > front.CeilHeight && eyeZ <= front.CeilHeight)) {
		v.clipper.AddViewRelOcclusion(v1, v2,
			min(front.CeilHeight, back.CeilHeight), true)
	}
}

// isClosed means nothing can be seen through a two-sided line, e.g. a shut
// door or a lift that is all the way up
func isClosed(front, back *LevelSector) bool {
	return back.CeilHeight <= front.FloorHeight ||
		back.FloorHeight >= front.CeilHeight ||
		back.CeilHeight <= back.FloorHeight
}

// IsThingVisible tests thing's feet and head against the clipper. The sector
// thing stands in gives the floor height
func (v *Viewer) IsThingVisible(th LevelThing, sector int) bool {
	floor := v.lvl.Sectors[sector].FloorHeight
	return v.clipper.IsPointVisible(Vec3{X: th.X, Y: th.Y, Z: floor}) ||
		v.clipper.IsPointVisible(Vec3{X: th.X, Y: th.Y, Z: floor + THING_HEIGHT})
}
