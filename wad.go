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
	"encoding/binary"
	"io"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Error types, see errors.IsType
const (
	ErrTypeNotAWad          = "not_a_wad"
	ErrTypeBadDirectory     = "bad_directory"
	ErrTypeMissingLump      = "missing_lump"
	ErrTypeBadLump          = "bad_lump"
	ErrTypeUnsupportedNodes = "unsupported_nodes"
)

// Lumps that may follow a level marker
var LEVEL_LUMPS = []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SEGS",
	"SSECTORS", "NODES", "SECTORS", "REJECT", "BLOCKMAP", "BEHAVIOR", "SCRIPTS"}

// Without these, there is nothing to walk
var LUMP_MUSTEXIST = []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES",
	"SEGS", "SSECTORS", "NODES", "SECTORS"}

type WadFile struct {
	Header WadHeader
	Lumps  []LumpEntry
	r      io.ReadSeeker
}

// LevelLumps is where to find a level's lumps in the wad directory
type LevelLumps struct {
	Name        string
	MarkerIndex int
	LevelFormat int
	Lumps       map[string]int // lump name -> directory index
}

// ReadWad reads wad header and directory. Lump contents are read on demand,
// so r must stay open as long as the WadFile is used
func ReadWad(r io.ReadSeeker) (*WadFile, error) {
	w := &WadFile{r: r}
	err := binary.Read(r, binary.LittleEndian, &w.Header)
	if err != nil {
		return nil, errors.New("couldn't read wad header").
			WithType(ErrTypeNotAWad).
			Wrap(err)
	}
	if w.Header.MagicSig != IWAD_MAGIC_SIG && w.Header.MagicSig != PWAD_MAGIC_SIG {
		return nil, errors.New("the file is NOT a wad").
			WithType(ErrTypeNotAWad).
			WithTag("signature", w.Header.MagicSig)
	}
	if w.Header.LumpCount == 0 {
		return w, nil
	}
	_, err = r.Seek(int64(w.Header.DirectoryStart), io.SeekStart)
	if err != nil {
		return nil, errors.New("couldn't move to wad's directory structure").
			WithType(ErrTypeBadDirectory).
			WithTag("offset", w.Header.DirectoryStart).
			Wrap(err)
	}
	// Read in whole directory at once
	w.Lumps = make([]LumpEntry, w.Header.LumpCount)
	err = binary.Read(r, binary.LittleEndian, w.Lumps)
	if err != nil {
		return nil, errors.New("failed to read lump info from a wad's directory").
			WithType(ErrTypeBadDirectory).
			WithTag("lump_count", w.Header.LumpCount).
			Wrap(err)
	}
	return w, nil
}

func (w *WadFile) IsIWAD() bool {
	return w.Header.MagicSig == IWAD_MAGIC_SIG
}

func (w *WadFile) LumpName(idx int) []byte {
	return ByteSliceBeforeTerm(w.Lumps[idx].Name[:])
}

// ReadLump fills data (a slice of fixed size records) from lump idx. The
// slice must have been sized from lump size already
func (w *WadFile) ReadLump(idx int, data interface{}) error {
	_, err := w.r.Seek(int64(w.Lumps[idx].FilePos), io.SeekStart)
	if err == nil {
		err = binary.Read(w.r, binary.LittleEndian, data)
	}
	if err != nil {
		return errors.New("couldn't read lump").
			WithType(ErrTypeBadLump).
			WithTag("lump", string(w.LumpName(idx))).
			WithTag("index", idx).
			Wrap(err)
	}
	return nil
}

func (w *WadFile) ReadRawLump(idx int) ([]byte, error) {
	buf := make([]byte, w.Lumps[idx].Size)
	if len(buf) == 0 {
		return buf, nil
	}
	if err := w.ReadLump(idx, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// FindLevels identifies levels in the directory: a marker lump followed by
// level lumps. Levels missing lumps required to walk them are reported and
// skipped, duplicated lumps are reported and the first instance is used
func (w *WadFile) FindLevels() ([]LevelLumps, []error) {
	var levels []LevelLumps
	var errs []error
	var cur *LevelLumps
	flush := func() {
		if cur == nil {
			return
		}
		valid := true
		for _, name := range LUMP_MUSTEXIST {
			if _, ok := cur.Lumps[name]; !ok {
				errs = append(errs, errors.New("level is not valid: missing lump").
					WithType(ErrTypeMissingLump).
					WithTag("level", cur.Name).
					WithTag("lump", name))
				valid = false
			}
		}
		if valid {
			levels = append(levels, *cur)
		}
		cur = nil
	}
	for i := range w.Lumps {
		// exclude zero byte and all that follows it from string for pattern
		// matching to work correctly
		bname := w.LumpName(i)
		if IsALevel(bname) {
			flush()
			cur = &LevelLumps{
				Name:        string(bname),
				MarkerIndex: i,
				LevelFormat: FORMAT_DOOM,
				Lumps:       make(map[string]int),
			}
			continue
		}
		if cur == nil {
			continue
		}
		sname := string(bname)
		if !isLevelLump(sname) {
			flush()
			continue
		}
		if _, dup := cur.Lumps[sname]; dup {
			Log.Error("Level %s has one or more duplicate of lump %s - only the first one will be used\n",
				cur.Name, sname)
			continue
		}
		cur.Lumps[sname] = i
		if sname == "BEHAVIOR" {
			cur.LevelFormat = FORMAT_HEXEN
		}
	}
	flush()
	return levels, errs
}

func isLevelLump(name string) bool {
	for _, s := range LEVEL_LUMPS {
		if s == name {
			return true
		}
	}
	return false
}

// ByteSliceBeforeTerm returns a part of the original bytes
// excluding everything that starts with zero-byte character.
// This allows string operations (such as pattern matching) to be performed
// correctly on returned value
func ByteSliceBeforeTerm(b []byte) []byte {
	i := bytes.IndexByte(b, 0)
	if i == -1 {
		return b
	} else {
		return b[:i]
	}
}

// Returns whether a level should be processed based on current configuration
// If user supplied arguments specifying precise levels that should be (not)
// processed, they must have been stored in configuration in upper case, or
// this will fail to work as intended
func CanProcessThisLevel(levelName []byte) bool {
	// Go treats nil (null) array as having zero size
	if len(config.FilterLevel) == 0 { // reference to global: config
		return true
	}

	for _, entry := range config.FilterLevel {
		if bytes.Equal(entry, levelName) {
			if config.FilterProhibitsLevels { // reference to global: config
				// filter excludes specific levels
				return false
			} else {
				// filter includes specific levels
				return true
			}
		}
	}

	// if filter was inclusive, return false, if it was excluding levels from
	// being processed, return true
	return config.FilterProhibitsLevels // reference to global: config
}
