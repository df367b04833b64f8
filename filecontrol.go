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
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

const ErrTypeFileControl = "file_control"

// Controls lifetime of the input wad and of every output file - ensures they
// are properly closed by the end of program, regardless of success and
// failure. Output files that were left incomplete are deleted
type FileControl struct {
	success bool
	fin     *os.File
	outputs []*controlledOutput
}

type controlledOutput struct {
	f    *os.File
	name string
	done bool
}

func (fc *FileControl) OpenInputFile(inputFileName string) (*os.File, error) {
	var err error
	fc.fin, err = os.Open(inputFileName)
	if err != nil {
		fc.fin = nil
		return nil, errors.New("couldn't open input file").
			WithType(ErrTypeFileControl).
			WithTag("file", inputFileName).
			Wrap(err)
	}
	return fc.fin, nil
}

// OpenOutputFile creates (or truncates) an output file. Output that maps to
// the input file is refused
func (fc *FileControl) OpenOutputFile(outputFileName string) (*os.File, error) {
	if fc.fin != nil {
		fi1, err1 := fc.fin.Stat()
		fi2, err2 := os.Stat(outputFileName)
		if err1 == nil && err2 == nil && os.SameFile(fi1, fi2) {
			return nil, errors.New("output file maps to the input file").
				WithType(ErrTypeFileControl).
				WithTag("file", outputFileName)
		}
	}
	f, err := os.OpenFile(outputFileName, os.O_CREATE|os.O_RDWR|os.O_TRUNC,
		0o644)
	if err != nil {
		return nil, errors.New("couldn't create output file").
			WithType(ErrTypeFileControl).
			WithTag("file", outputFileName).
			Wrap(err)
	}
	fc.outputs = append(fc.outputs, &controlledOutput{f: f, name: outputFileName})
	return f, nil
}

// CloseOutputFile closes output file once it was completely written. Returns
// false if closing failed
func (fc *FileControl) CloseOutputFile(f *os.File) bool {
	for _, out := range fc.outputs {
		if out.f != f || out.done {
			continue
		}
		out.done = true
		if err := out.f.Close(); err != nil {
			Log.Error("Couldn't close output file '%s': %s\n", out.name, err.Error())
			return false
		}
		Log.Printf("Written %s\n", out.name)
		return true
	}
	return false
}

// Success closes the input. Output files still open at this point are
// considered complete
func (fc *FileControl) Success() bool {
	suc := true
	if fc.fin != nil {
		if err := fc.fin.Close(); err != nil {
			Log.Error("Closing input file returned error: %s.\n", err.Error())
			suc = false
		}
		fc.fin = nil
	}
	for _, out := range fc.outputs {
		if !out.done && !fc.CloseOutputFile(out.f) {
			suc = false
		}
	}
	fc.success = true
	return suc
}

// Ensures we close all files when program exits. Output files that were not
// finished are deleted
func (fc *FileControl) Shutdown() {
	if fc.success {
		return
	}
	if fc.fin != nil {
		if err := fc.fin.Close(); err != nil {
			Log.Error("Couldn't close input file: %s\n", err.Error())
		}
	}
	for _, out := range fc.outputs {
		if out.done {
			continue
		}
		out.done = true
		if err := out.f.Close(); err != nil {
			Log.Error("Couldn't delete incomplete file '%s' because failed to close it already.\n",
				out.name)
			continue
		}
		if err := os.Remove(out.name); err != nil {
			Log.Error("Got error when trying to delete an incomplete file '%s': %s\n",
				out.name, err.Error())
		}
	}
}

// PerLevelFileName derives output name for a level when several levels are
// processed: "shot.png" becomes "shot_MAP01.png"
func PerLevelFileName(fileName string, levelName string, multiple bool) string {
	if !multiple {
		return fileName
	}
	fext := filepath.Ext(fileName)
	return fileName[:len(fileName)-len(fext)] + "_" + levelName + fext
}

func StartCPUProfile(where string) func() {
	f, err := os.Create(where)
	if err != nil {
		Log.Error("Could not create CPU profile: %s\n", err.Error())
		return func() {}
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		Log.Error("Could not start CPU profile: %s\n", err.Error())
		f.Close()
		return func() {}
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}
}
