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

// -- This file is where the program entry is.
// VigilantClip walks the BSP tree of already built Doom levels from given
// viewpoints the way Doomsday-derived renderers do, using an angle clipper
// with floor/ceiling occlusion, and reports what is potentially visible.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"
)

func main() {
	timeStart := time.Now()

	// before config can be legitimately accessed, must call Configure()
	Configure()

	if config.Profile {
		stop := StartCPUProfile(config.ProfilePath)
		defer stop()
	}

	config.InputFileName, _ = filepath.Abs(config.InputFileName)

	mainFileControl := FileControl{}
	defer mainFileControl.Shutdown()

	if !run(&mainFileControl) {
		mainFileControl.Shutdown()
		os.Exit(1)
	}
	if !mainFileControl.Success() {
		Log.Printf("I/O error on flushing data / closing files. The data might not have been saved!\n")
	}
	Log.Printf("Total time: %s\n", time.Since(timeStart))
}

// run does all the work of the program. Returns false on fatal errors,
// which were already logged
func run(fc *FileControl) bool {
	viewpoints := config.Viewpoints // reference to global: config
	if config.ViewpointsFile != "" {
		fvp, err := os.Open(config.ViewpointsFile)
		if err != nil {
			Log.Error("Couldn't open viewpoints file '%s': %s\n", config.ViewpointsFile, err.Error())
			return false
		}
		loaded, err := LoadViewpoints(fvp)
		fvp.Close()
		if err != nil {
			Log.Error("%s\n", err.Error())
			return false
		}
		Log.Verbose(1, "Loaded %d viewpoints from %s\n", len(loaded), config.ViewpointsFile)
		viewpoints = append(append([]Viewpoint{}, viewpoints...), loaded...)
	}

	f, err := fc.OpenInputFile(config.InputFileName)
	if err != nil {
		Log.Error("%s\n", err.Error())
		return false
	}

	wad, err := ReadWad(f)
	if err != nil {
		Log.Error("%s\n", err.Error())
		return false
	}
	if wad.IsIWAD() {
		Log.Printf("The input file is an IWAD\n")
	} else {
		Log.Printf("The input file is a PWAD\n")
	}
	Log.Verbose(1, "The directory contains %d lumps and starts at %d byte offset\n",
		wad.Header.LumpCount, wad.Header.DirectoryStart)

	found, errs := wad.FindLevels()
	for _, err := range errs {
		Log.Error("%s\n", err.Error())
	}
	levels := make([]LevelLumps, 0, len(found))
	for _, ll := range found {
		if CanProcessThisLevel([]byte(ll.Name)) {
			levels = append(levels, ll)
		} else {
			Log.Verbose(1, "will not process level %s\n", ll.Name)
		}
	}
	if len(levels) == 0 {
		Log.Error("Unable to find any levels I can process - terminating.\n")
		return false
	}
	Log.Printf("Number of levels that will be processed: %d\n", len(levels))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	report := NewReport(config.InputFileName)
	var metrics *ClipMetrics
	if config.MetricsFile != "" {
		metrics = NewClipMetrics()
	}
	multiple := len(levels) > 1

	for _, ll := range levels {
		if ctx.Err() != nil {
			Log.Error("Interrupted, levels after %s are skipped\n", ll.Name)
			break
		}
		lvl, err := LoadLevel(wad, ll)
		if err != nil {
			Log.Error("Level %s: %s\n", ll.Name, err.Error())
			report.AddLevelError(ll.Name, err)
			continue
		}
		vps := levelViewpoints(lvl, viewpoints)
		if len(vps) == 0 {
			Log.Error("Level %s: no viewpoints (no player 1 start, none given) - skipping.\n",
				lvl.Name)
			continue
		}
		Log.Printf("Processing level %s (%d viewpoints)\n", lvl.Name, len(vps))
		results := ViewQueen(ctx, lvl, vps)
		report.AddLevel(lvl, results)
		if metrics != nil {
			for _, res := range results {
				if res.Vis != nil {
					metrics.Observe(res.Vis)
				}
			}
		}
		if config.SnapshotFile != "" && results[0].Vis != nil {
			name := PerLevelFileName(config.SnapshotFile, lvl.Name, multiple)
			img := RenderSnapshot(lvl, results[0].Vis, viewAngleOf(results[0].Viewpoint))
			if !writeOutput(fc, name, func(fout *os.File) error {
				return WriteSnapshot(fout, img)
			}) {
				return false
			}
		}
	}

	if config.ReportFile != "" {
		if !writeOutput(fc, config.ReportFile, func(fout *os.File) error {
			return report.Write(fout)
		}) {
			return false
		}
	}
	if metrics != nil {
		if !writeOutput(fc, config.MetricsFile, func(fout *os.File) error {
			return metrics.WriteText(fout)
		}) {
			return false
		}
	}
	return true
}

func writeOutput(fc *FileControl, name string, write func(fout *os.File) error) bool {
	fout, err := fc.OpenOutputFile(name)
	if err != nil {
		Log.Error("%s\n", err.Error())
		return false
	}
	if err := write(fout); err != nil {
		Log.Error("%s\n", err.Error())
		return false
	}
	return fc.CloseOutputFile(fout)
}

// levelViewpoints picks viewpoints that apply to the level, falling back to
// player 1 start
func levelViewpoints(lvl *Level, vps []Viewpoint) []Viewpoint {
	res := ViewpointsForLevel(vps, lvl.Name)
	if len(res) > 0 {
		return res
	}
	th, ok := lvl.PlayerStart()
	if !ok {
		return nil
	}
	angle := th.Angle
	return []Viewpoint{{
		Level: lvl.Name,
		Name:  "player1",
		X:     th.X,
		Y:     th.Y,
		Angle: &angle,
	}}
}

func viewAngleOf(vp Viewpoint) float64 {
	if vp.Angle != nil {
		return *vp.Angle
	}
	return config.ViewAngle // reference to global: config
}
