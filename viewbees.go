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
	"context"
	"reflect"
	"runtime"
	"time"
)

// If there is a single viewpoint, ViewQueen does the work itself.
// Otherwise it setups "bees" (ViewBee goroutines) that will run on their own
// threads, each with its own Viewer and thus its own clipper, and calls
// ViewHive which is where bees will report their results. (Honey = what was
// seen from a viewpoint)

type ViewJob struct {
	idx int
	vp  Viewpoint
}

type ViewResult struct {
	Viewpoint Viewpoint
	Vis       *Visibility // nil if job was cancelled before it was started
	Log       *MiniLogger
}

type ViewBeeOutput struct {
	idx    int
	result ViewResult
}

// ViewQueen computes visibility for every viewpoint of the level. Results
// come in the same order as viewpoints, and their logs are merged into
// the main log in that order too
func ViewQueen(ctx context.Context, lvl *Level, vps []Viewpoint) []ViewResult {
	start := time.Now()
	results := make([]ViewResult, len(vps))
	for i, vp := range vps {
		results[i].Viewpoint = vp
	}
	if len(vps) == 0 {
		return results
	}

	beeCount := config.Threads // reference to global: config
	if beeCount == 0 {         // auto mode
		beeCount = int16(runtime.NumCPU())
		if beeCount > MAX_BEES { // the limit is only applied in auto mode
			beeCount = MAX_BEES
		}
	}
	if int(beeCount) > len(vps) {
		beeCount = int16(len(vps))
	}
	if beeCount < 1 { // just in case something goes wrong
		beeCount = 1
	}

	if beeCount == 1 {
		viewer := CreateViewer(lvl, nil)
		for i, vp := range vps {
			if ctx.Err() != nil {
				break
			}
			results[i] = viewOne(viewer, vp)
		}
	} else {
		Log.Verbose(1, "Level %s: %d viewpoints will be processed using %d CPUs\n",
			lvl.Name, len(vps), beeCount)
		jobs := make(chan ViewJob, len(vps))
		for i, vp := range vps {
			jobs <- ViewJob{idx: i, vp: vp}
		}
		close(jobs)
		bees := make([]chan ViewBeeOutput, beeCount)
		for i := range bees {
			bees[i] = make(chan ViewBeeOutput)
			go ViewBee(ctx, lvl, jobs, bees[i])
		}
		ViewHive(bees, results)
	}

	for i := range results {
		Log.Merge(results[i].Log, "")
	}
	Log.Verbose(1, "Level %s: viewpoints took %s\n", lvl.Name, time.Since(start))
	return results
}

// ViewHive collects results off bees until every bee has closed its channel.
// A regular function called from ViewQueen, waiting synchronously for bees
// to complete their work.
func ViewHive(bees []chan ViewBeeOutput, results []ViewResult) {
	NA := reflect.Value{}
	// Because the number of channels to listen on is determined in run-time, we
	// have to resort to reflect package (rather than use "select" keyword that
	// only works for predetermined number and type of cases) to make a "select"
	// inside loop
	branches := make([]reflect.SelectCase, len(bees))
	for i := range bees {
		branches[i] = reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(bees[i]),
			Send: NA,
		}
	}
	for len(branches) > 0 {
		chi, recv, recvOk := reflect.Select(branches)
		if !recvOk { // channel closed
			branches = ViewHive_DeleteBranch(branches, chi)
			continue
		}
		work := (recv.Interface()).(ViewBeeOutput)
		results[work.idx] = work.result
	} // loop is exited when all branches are deleted (all channels closed)
}

func ViewHive_DeleteBranch(branches []reflect.SelectCase, chi int) []reflect.SelectCase {
	for i := chi; i < (len(branches) - 1); i++ {
		branches[i] = branches[i+1]
	}
	return branches[:(len(branches) - 1)]
}

// each ViewBee is run on its own goroutine and hopefully thread,
// communicating with ViewHive
func ViewBee(ctx context.Context, lvl *Level, jobs <-chan ViewJob,
	replyTo chan<- ViewBeeOutput) {
	defer close(replyTo) // allow Hive to exit loop
	viewer := CreateViewer(lvl, nil)
	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		replyTo <- ViewBeeOutput{
			idx:    job.idx,
			result: viewOne(viewer, job.vp),
		}
	}
}

func viewOne(viewer *Viewer, vp Viewpoint) ViewResult {
	mlog := CreateMiniLogger()
	viewer.mlog = mlog
	vis := viewer.View(vp)
	viewer.mlog = nil
	describeVisibility(mlog, viewer.lvl, vis)
	return ViewResult{
		Viewpoint: vp,
		Vis:       vis,
		Log:       mlog,
	}
}

func describeVisibility(mlog *MiniLogger, lvl *Level, vis *Visibility) {
	mlog.Printf("%s viewpoint %s at (%v, %v, %v), sector %d: %d of %d sectors, %d of %d subsectors, %d of %d things visible\n",
		lvl.Name, vis.Viewpoint.Name, vis.Eye.X, vis.Eye.Y, vis.Eye.Z,
		vis.EyeSector, len(vis.VisibleSectorList()), len(lvl.Sectors),
		vis.VisibleSubsectorCount(), len(lvl.SubSectors),
		len(vis.Things), len(lvl.Things))
	mlog.Verbose(1, "  visible sectors: %v\n", vis.VisibleSectorList())
	for _, sector := range vis.RejectConflicts {
		mlog.Printf("  REJECT hides sector %d from sector %d, but it is in plain view\n",
			sector, vis.EyeSector)
	}
}
