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

import (
	"bytes"
	"encoding/binary"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Level is a map ready to be walked: everything is converted from on-disk
// records to plain ints and floats, and all cross-references are verified to
// be in range, so that the walker never needs to check them
type Level struct {
	Name       string
	Format     int  // FORMAT_DOOM or FORMAT_HEXEN
	DeepNodes  bool // nodes were in DeePBSP "standard V4" format
	Vertices   []FloatVertex
	Lines      []LevelLine
	Sides      []LevelSide
	Sectors    []LevelSector
	Segs       []LevelSeg
	SubSectors []LevelSubSector
	Nodes      []LevelNode
	Things     []LevelThing
	Reject     []byte // nil if level has no (usable) REJECT
}

type LevelLine struct {
	V1, V2 int
	Flags  uint16
	Front  int // sidedef index, -1 for none
	Back   int // sidedef index, -1 for none
}

type LevelSide struct {
	Sector int
}

type LevelSector struct {
	FloorHeight float64
	CeilHeight  float64
	FloorSky    bool
	CeilSky     bool
}

type LevelSeg struct {
	V1, V2  int
	Linedef int
	Flip    bool // seg runs opposite to its linedef
}

type LevelSubSector struct {
	FirstSeg int
	SegCount int
	Sector   int // sector of the first seg's front side
}

// LevelNode has children in Doom order: 0 is the right (front) side of the
// partition line, 1 is the left (back) side. Bounding boxes are indexed by
// BB_TOP, BB_BOTTOM, BB_LEFT, BB_RIGHT
type LevelNode struct {
	X, Y, Dx, Dy  float64
	BBox          [2][4]float64
	Child         [2]int
	ChildIsSubsec [2]bool
}

type LevelThing struct {
	X, Y  float64
	Angle float64 // degrees
	Type  int
}

type LevelBounds struct {
	Xmin float64
	Ymin float64
	Xmax float64
	Ymax float64
}

// LoadLevel reads and validates the level lumps. Nodes are required to be
// built already, in vanilla or DeePBSP format
func LoadLevel(w *WadFile, ll LevelLumps) (*Level, error) {
	lvl := &Level{
		Name:   ll.Name,
		Format: ll.LevelFormat,
	}
	if err := lvl.loadVertices(w, ll); err != nil {
		return nil, err
	}
	if err := lvl.loadSectors(w, ll); err != nil {
		return nil, err
	}
	if err := lvl.loadSides(w, ll); err != nil {
		return nil, err
	}
	if err := lvl.loadLines(w, ll); err != nil {
		return nil, err
	}
	if err := lvl.loadThings(w, ll); err != nil {
		return nil, err
	}
	if err := lvl.loadNodes(w, ll); err != nil {
		return nil, err
	}
	lvl.loadReject(w, ll)
	return lvl, nil
}

// lumpRecords returns directory index and the number of records of recSize
// bytes in named lump. Lump size must be a multiple of recSize
func lumpRecords(w *WadFile, ll LevelLumps, name string, recSize int) (int, int, error) {
	idx, ok := ll.Lumps[name]
	if !ok {
		return -1, 0, errors.New("level is missing lump").
			WithType(ErrTypeMissingLump).
			WithTag("level", ll.Name).
			WithTag("lump", name)
	}
	sz := int(w.Lumps[idx].Size)
	if sz%recSize != 0 {
		return idx, 0, errors.New("lump size is not a multiple of record size").
			WithType(ErrTypeBadLump).
			WithTag("level", ll.Name).
			WithTag("lump", name).
			WithTag("size", sz).
			WithTag("record_size", recSize)
	}
	return idx, sz / recSize, nil
}

func badReference(ll LevelLumps, what string, idx int, ref int, count int) error {
	return errors.New("reference out of range").
		WithType(ErrTypeBadLump).
		WithTag("level", ll.Name).
		WithTag("record", what).
		WithTag("index", idx).
		WithTag("reference", ref).
		WithTag("count", count)
}

func (lvl *Level) loadVertices(w *WadFile, ll LevelLumps) error {
	idx, cnt, err := lumpRecords(w, ll, "VERTEXES", VERTEX_SIZE)
	if err != nil {
		return err
	}
	vertices := make([]Vertex, cnt)
	if err := w.ReadLump(idx, vertices); err != nil {
		return err
	}
	lvl.Vertices = make([]FloatVertex, cnt)
	for i, v := range vertices {
		lvl.Vertices[i] = FloatVertex{X: float64(v.XPos), Y: float64(v.YPos)}
	}
	return nil
}

func (lvl *Level) loadSectors(w *WadFile, ll LevelLumps) error {
	idx, cnt, err := lumpRecords(w, ll, "SECTORS", DOOM_SECTOR_SIZE)
	if err != nil {
		return err
	}
	sectors := make([]Sector, cnt)
	if err := w.ReadLump(idx, sectors); err != nil {
		return err
	}
	lvl.Sectors = make([]LevelSector, cnt)
	for i, s := range sectors {
		lvl.Sectors[i] = LevelSector{
			FloorHeight: float64(s.FloorHeight),
			CeilHeight:  float64(s.CeilHeight),
			FloorSky:    isSkyFlat(s.FloorName),
			CeilSky:     isSkyFlat(s.CeilName),
		}
	}
	return nil
}

func isSkyFlat(name [8]byte) bool {
	return bytes.EqualFold(ByteSliceBeforeTerm(name[:]),
		ByteSliceBeforeTerm(SKY_FLAT_NAME[:]))
}

func (lvl *Level) loadSides(w *WadFile, ll LevelLumps) error {
	idx, cnt, err := lumpRecords(w, ll, "SIDEDEFS", DOOM_SIDEDEF_SIZE)
	if err != nil {
		return err
	}
	sidedefs := make([]Sidedef, cnt)
	if err := w.ReadLump(idx, sidedefs); err != nil {
		return err
	}
	lvl.Sides = make([]LevelSide, cnt)
	for i, sd := range sidedefs {
		if int(sd.Sector) >= len(lvl.Sectors) {
			return badReference(ll, "sidedef", i, int(sd.Sector), len(lvl.Sectors))
		}
		lvl.Sides[i] = LevelSide{Sector: int(sd.Sector)}
	}
	return nil
}

func (lvl *Level) loadLines(w *WadFile, ll LevelLumps) error {
	if lvl.Format == FORMAT_HEXEN {
		idx, cnt, err := lumpRecords(w, ll, "LINEDEFS", HEXEN_LINEDEF_SIZE)
		if err != nil {
			return err
		}
		hexenLinedefs := make([]HexenLinedef, cnt)
		if err := w.ReadLump(idx, hexenLinedefs); err != nil {
			return err
		}
		lvl.Lines = make([]LevelLine, cnt)
		for i, ld := range hexenLinedefs {
			lvl.Lines[i] = LevelLine{
				V1:    int(ld.StartVertex),
				V2:    int(ld.EndVertex),
				Flags: ld.Flags,
				Front: sideRef(ld.FrontSdef),
				Back:  sideRef(ld.BackSdef),
			}
		}
	} else {
		idx, cnt, err := lumpRecords(w, ll, "LINEDEFS", DOOM_LINEDEF_SIZE)
		if err != nil {
			return err
		}
		linedefs := make([]Linedef, cnt)
		if err := w.ReadLump(idx, linedefs); err != nil {
			return err
		}
		lvl.Lines = make([]LevelLine, cnt)
		for i, ld := range linedefs {
			lvl.Lines[i] = LevelLine{
				V1:    int(ld.StartVertex),
				V2:    int(ld.EndVertex),
				Flags: ld.Flags,
				Front: sideRef(ld.FrontSdef),
				Back:  sideRef(ld.BackSdef),
			}
		}
	}
	for i, line := range lvl.Lines {
		if line.V1 >= len(lvl.Vertices) {
			return badReference(ll, "linedef", i, line.V1, len(lvl.Vertices))
		}
		if line.V2 >= len(lvl.Vertices) {
			return badReference(ll, "linedef", i, line.V2, len(lvl.Vertices))
		}
		if line.Front >= len(lvl.Sides) {
			return badReference(ll, "linedef", i, line.Front, len(lvl.Sides))
		}
		if line.Back >= len(lvl.Sides) {
			return badReference(ll, "linedef", i, line.Back, len(lvl.Sides))
		}
	}
	return nil
}

func sideRef(sdef uint16) int {
	if sdef == SIDEDEF_NONE {
		return -1
	}
	return int(sdef)
}

func (lvl *Level) loadThings(w *WadFile, ll LevelLumps) error {
	if lvl.Format == FORMAT_HEXEN {
		idx, cnt, err := lumpRecords(w, ll, "THINGS", HEXEN_THING_SIZE)
		if err != nil {
			return err
		}
		hexenThings := make([]HexenThing, cnt)
		if err := w.ReadLump(idx, hexenThings); err != nil {
			return err
		}
		lvl.Things = make([]LevelThing, cnt)
		for i, th := range hexenThings {
			lvl.Things[i] = LevelThing{X: float64(th.XPos), Y: float64(th.YPos),
				Angle: float64(th.Angle), Type: int(th.Type)}
		}
		return nil
	}
	idx, cnt, err := lumpRecords(w, ll, "THINGS", DOOM_THING_SIZE)
	if err != nil {
		return err
	}
	things := make([]Thing, cnt)
	if err := w.ReadLump(idx, things); err != nil {
		return err
	}
	lvl.Things = make([]LevelThing, cnt)
	for i, th := range things {
		lvl.Things[i] = LevelThing{X: float64(th.XPos), Y: float64(th.YPos),
			Angle: float64(th.Angle), Type: int(th.Type)}
	}
	return nil
}

// loadNodes reads NODES, SEGS and SSECTORS together since their format is
// decided by the signature at the start of NODES
func (lvl *Level) loadNodes(w *WadFile, ll LevelLumps) error {
	nodesIdx := ll.Lumps["NODES"]
	head := make([]byte, 0, 8)
	if w.Lumps[nodesIdx].Size >= 8 {
		head = head[:8]
		if err := w.ReadLump(nodesIdx, head); err != nil {
			return err
		}
	}
	if len(head) == 8 && bytes.Equal(head, DEEPNODES_SIG[:]) {
		lvl.DeepNodes = true
		if err := lvl.loadDeepNodes(w, ll, nodesIdx); err != nil {
			return err
		}
	} else {
		if len(head) >= 4 && (bytes.Equal(head[:4], ZNODES_PLAIN_SIG[:]) ||
			bytes.Equal(head[:4], ZNODES_COMPRESSED_SIG[:])) &&
			w.Lumps[ll.Lumps["SEGS"]].Size == 0 {
			// Signature bytes may occur in vanilla nodes, but then segs are
			// not empty
			return errors.New("Zdoom extended nodes are not supported").
				WithType(ErrTypeUnsupportedNodes).
				WithTag("level", ll.Name)
		}
		if err := lvl.loadVanillaNodes(w, ll); err != nil {
			return err
		}
	}
	return lvl.validateNodes(ll)
}

func (lvl *Level) loadVanillaNodes(w *WadFile, ll LevelLumps) error {
	idx, cnt, err := lumpRecords(w, ll, "SEGS", SEG_SIZE)
	if err != nil {
		return err
	}
	segs := make([]Seg, cnt)
	if err := w.ReadLump(idx, segs); err != nil {
		return err
	}
	lvl.Segs = make([]LevelSeg, cnt)
	for i, s := range segs {
		lvl.Segs[i] = LevelSeg{V1: int(s.StartVertex), V2: int(s.EndVertex),
			Linedef: int(s.Linedef), Flip: s.Flip != 0}
	}

	idx, cnt, err = lumpRecords(w, ll, "SSECTORS", SSECTOR_SIZE)
	if err != nil {
		return err
	}
	ssectors := make([]SubSector, cnt)
	if err := w.ReadLump(idx, ssectors); err != nil {
		return err
	}
	lvl.SubSectors = make([]LevelSubSector, cnt)
	for i, ss := range ssectors {
		lvl.SubSectors[i] = LevelSubSector{FirstSeg: int(ss.FirstSeg),
			SegCount: int(ss.SegCount)}
	}

	idx, cnt, err = lumpRecords(w, ll, "NODES", NODE_SIZE)
	if err != nil {
		return err
	}
	nodes := make([]Node, cnt)
	if err := w.ReadLump(idx, nodes); err != nil {
		return err
	}
	lvl.Nodes = make([]LevelNode, cnt)
	for i, n := range nodes {
		ln := LevelNode{X: float64(n.X), Y: float64(n.Y), Dx: float64(n.Dx),
			Dy: float64(n.Dy)}
		ln.BBox[0] = bboxToFloat(n.Rbox)
		ln.BBox[1] = bboxToFloat(n.Lbox)
		for c, child := range [2]uint16{uint16(n.RChild), uint16(n.LChild)} {
			if child&NF_SUBSECTOR != 0 {
				ln.ChildIsSubsec[c] = true
				ln.Child[c] = int(child &^ NF_SUBSECTOR)
			} else {
				ln.Child[c] = int(child)
			}
		}
		lvl.Nodes[i] = ln
	}
	return nil
}

func (lvl *Level) loadDeepNodes(w *WadFile, ll LevelLumps, nodesIdx int) error {
	idx, cnt, err := lumpRecords(w, ll, "SEGS", DEEP_SEG_SIZE)
	if err != nil {
		return err
	}
	segs := make([]DeepSeg, cnt)
	if err := w.ReadLump(idx, segs); err != nil {
		return err
	}
	lvl.Segs = make([]LevelSeg, cnt)
	for i, s := range segs {
		lvl.Segs[i] = LevelSeg{V1: int(s.StartVertex), V2: int(s.EndVertex),
			Linedef: int(s.Linedef), Flip: s.Flip != 0}
	}

	idx, cnt, err = lumpRecords(w, ll, "SSECTORS", DEEP_SSECTOR_SIZE)
	if err != nil {
		return err
	}
	ssectors := make([]DeepSubSector, cnt)
	if err := w.ReadLump(idx, ssectors); err != nil {
		return err
	}
	lvl.SubSectors = make([]LevelSubSector, cnt)
	for i, ss := range ssectors {
		lvl.SubSectors[i] = LevelSubSector{FirstSeg: int(ss.FirstSeg),
			SegCount: int(ss.SegCount)}
	}

	// nodes follow the signature
	sz := int(w.Lumps[nodesIdx].Size) - len(DEEPNODES_SIG)
	if sz%DEEP_NODE_SIZE != 0 {
		return errors.New("lump size is not a multiple of record size").
			WithType(ErrTypeBadLump).
			WithTag("level", ll.Name).
			WithTag("lump", "NODES").
			WithTag("size", sz).
			WithTag("record_size", DEEP_NODE_SIZE)
	}
	raw, err := w.ReadRawLump(nodesIdx)
	if err != nil {
		return err
	}
	nodes := make([]DeepNode, sz/DEEP_NODE_SIZE)
	err = binary.Read(bytes.NewReader(raw[len(DEEPNODES_SIG):]), binary.LittleEndian, nodes)
	if err != nil {
		return errors.New("couldn't decode deep nodes").
			WithType(ErrTypeBadLump).
			WithTag("level", ll.Name).
			Wrap(err)
	}
	lvl.Nodes = make([]LevelNode, len(nodes))
	for i, n := range nodes {
		ln := LevelNode{X: float64(n.X), Y: float64(n.Y), Dx: float64(n.Dx),
			Dy: float64(n.Dy)}
		ln.BBox[0] = bboxToFloat(n.Rbox)
		ln.BBox[1] = bboxToFloat(n.Lbox)
		for c, child := range [2]uint32{uint32(n.RChild), uint32(n.LChild)} {
			if child&NF_DEEP_SUBSECTOR != 0 {
				ln.ChildIsSubsec[c] = true
				ln.Child[c] = int(child &^ NF_DEEP_SUBSECTOR)
			} else {
				ln.Child[c] = int(child)
			}
		}
		lvl.Nodes[i] = ln
	}
	return nil
}

func bboxToFloat(box [4]int16) [4]float64 {
	return [4]float64{float64(box[BB_TOP]), float64(box[BB_BOTTOM]),
		float64(box[BB_LEFT]), float64(box[BB_RIGHT])}
}

// validateNodes checks segs, subsectors and nodes references, and resolves
// the sector of every subsector
func (lvl *Level) validateNodes(ll LevelLumps) error {
	if len(lvl.SubSectors) == 0 {
		return errors.New("level has no subsectors").
			WithType(ErrTypeBadLump).
			WithTag("level", ll.Name)
	}
	for i, s := range lvl.Segs {
		if s.V1 >= len(lvl.Vertices) {
			return badReference(ll, "seg", i, s.V1, len(lvl.Vertices))
		}
		if s.V2 >= len(lvl.Vertices) {
			return badReference(ll, "seg", i, s.V2, len(lvl.Vertices))
		}
		if s.Linedef >= len(lvl.Lines) {
			return badReference(ll, "seg", i, s.Linedef, len(lvl.Lines))
		}
		if lvl.SegFrontSide(i) < 0 {
			return errors.New("seg has no sidedef on its front").
				WithType(ErrTypeBadLump).
				WithTag("level", ll.Name).
				WithTag("seg", i)
		}
	}
	for i := range lvl.SubSectors {
		ss := &lvl.SubSectors[i]
		if ss.SegCount == 0 || ss.FirstSeg+ss.SegCount > len(lvl.Segs) {
			return badReference(ll, "subsector", i, ss.FirstSeg+ss.SegCount,
				len(lvl.Segs))
		}
		ss.Sector = lvl.SegFrontSector(ss.FirstSeg)
	}
	for i, n := range lvl.Nodes {
		for c := 0; c < 2; c++ {
			if n.ChildIsSubsec[c] {
				if n.Child[c] >= len(lvl.SubSectors) {
					return badReference(ll, "node", i, n.Child[c], len(lvl.SubSectors))
				}
			} else if n.Child[c] >= i {
				// Children are always written before parents, anything else
				// could make a loop
				return badReference(ll, "node", i, n.Child[c], i)
			}
		}
	}
	return nil
}

// loadReject keeps REJECT only if it has the size the sector count implies
func (lvl *Level) loadReject(w *WadFile, ll LevelLumps) {
	idx, ok := ll.Lumps["REJECT"]
	if !ok {
		return
	}
	numSectors := len(lvl.Sectors)
	expected := (numSectors*numSectors + 7) / 8
	if int(w.Lumps[idx].Size) < expected {
		Log.Verbose(1, "Level %s: REJECT is %d bytes, need %d - ignoring it\n",
			ll.Name, w.Lumps[idx].Size, expected)
		return
	}
	raw, err := w.ReadRawLump(idx)
	if err != nil {
		Log.Error("Level %s: couldn't read REJECT: %s\n", ll.Name, err.Error())
		return
	}
	lvl.Reject = raw[:expected]
}

// SegFrontSide returns the sidedef facing the same way as seg
func (lvl *Level) SegFrontSide(seg int) int {
	s := lvl.Segs[seg]
	line := lvl.Lines[s.Linedef]
	if s.Flip {
		return line.Back
	}
	return line.Front
}

// SegBackSide returns the sidedef behind seg, -1 if seg is one-sided
func (lvl *Level) SegBackSide(seg int) int {
	s := lvl.Segs[seg]
	line := lvl.Lines[s.Linedef]
	if s.Flip {
		return line.Front
	}
	return line.Back
}

func (lvl *Level) SegFrontSector(seg int) int {
	return lvl.Sides[lvl.SegFrontSide(seg)].Sector
}

// SegBackSector returns -1 for one-sided segs
func (lvl *Level) SegBackSector(seg int) int {
	side := lvl.SegBackSide(seg)
	if side < 0 {
		return -1
	}
	return lvl.Sides[side].Sector
}

// RootNode returns the root of BSP tree. A level with only one subsector
// has no nodes at all, then the subsector is the root
func (lvl *Level) RootNode() (int, bool) {
	if len(lvl.Nodes) == 0 {
		return 0, true
	}
	return len(lvl.Nodes) - 1, false
}

// PlayerStart returns player 1 start, if level has one
func (lvl *Level) PlayerStart() (LevelThing, bool) {
	for _, th := range lvl.Things {
		if th.Type == THING_PLAYER1_START {
			return th, true
		}
	}
	return LevelThing{}, false
}

func (lvl *Level) Bounds() LevelBounds {
	b := LevelBounds{
		Xmin: 32767,
		Ymin: 32767,
		Xmax: -32768,
		Ymax: -32768,
	}
	for _, v := range lvl.Vertices {
		if v.X < b.Xmin {
			b.Xmin = v.X
		}
		if v.Y < b.Ymin {
			b.Ymin = v.Y
		}
		if v.X > b.Xmax {
			b.Xmax = v.X
		}
		if v.Y > b.Ymax {
			b.Ymax = v.Y
		}
	}
	return b
}
