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
	"os"
)

const VERSION = "0.1a"

/*
-l= Only process these levels, comma separated: -l=MAP01,E1M1
	-l-=... process all levels except these

-p= Viewpoint x,y[,z]. May be repeated. z is the eye height in world
	coordinates; when omitted, floor height + 41 is used.
	Without viewpoints, player 1 start is used.

-a= View direction in degrees drawn on the snapshot (0 = east, 90 = north).
	Player 1 start uses its own angle.

-c Culling (default: enabled). -c- makes every visibility query succeed.

-g Validate clipper lists after every change (slow, for debugging).

-r Cross-check visible sectors against REJECT.

-t= Number of threads to process viewpoints with (0 = number of cores).

-v Add verbosity to text output. Use multiple times for increased verbosity.

--viewpoints <file>  YAML file with viewpoints
--report <file>      JSON report
--snapshot <file>    PNG top-down snapshot of the first viewpoint per level
                     (level name is appended to file name if more than one
                     level is processed)
--metrics <file>     Prometheus textfile with clipper statistics
--cpuprofile <file>  Write CPU profile
--help               Print usage
*/

// The limit is only applied if user didn't specify the number of threads
// explicitly
const MAX_BEES = 16

// Doom player's eye height above the floor
const VIEWHEIGHT = 41

type ProgramConfig struct {
	InputFileName         string
	FilterLevel           [][]byte // upper case level names
	FilterProhibitsLevels bool     // FilterLevel lists levels to skip rather than levels to process
	Viewpoints            []Viewpoint
	ViewAngle             float64 // degrees, for viewpoints that don't have their own
	ViewpointsFile        string
	ReportFile            string
	SnapshotFile          string
	MetricsFile           string
	Profile               bool
	ProfilePath           string
	NoCulling             bool  // every visibility query says "visible"
	ValidateClipper       bool  // sanity check clipper after every mutation
	CheckReject           bool  // report sectors seen but rejected by REJECT
	Threads               int16 // 0 = auto
	VerbosityLevel        int
	Help                  bool
}

var config *ProgramConfig // global variable that will be accessed from other threads too

func DefaultConfig() *ProgramConfig {
	return &(ProgramConfig{
		InputFileName:         "",
		FilterLevel:           nil,
		FilterProhibitsLevels: false,
		Viewpoints:            nil,
		ViewAngle:             90.0,
		ViewpointsFile:        "",
		ReportFile:            "",
		SnapshotFile:          "",
		MetricsFile:           "",
		Profile:               false,
		ProfilePath:           "",
		NoCulling:             false,
		ValidateClipper:       false,
		CheckReject:           false,
		Threads:               0,
		VerbosityLevel:        0,
		Help:                  false,
	})
}

func init() {
	// Defaults, so that config can be read before (or without - in tests)
	// parsing command line
	config = DefaultConfig()
}

// Configure prints banner and parses command line into config. Exits program
// on bad arguments or when there is nothing to do
func Configure() {
	Log.Printf("VigilantClip ver %s\n", VERSION)
	Log.Printf("Copyright (c)   2025 VigilantDoomer\n")
	Log.Printf("The angle clipper follows the design used by Doomsday Engine's renderer,\n")
	Log.Printf("level reading comes from VigilantBSP, and is distributed under the terms of\n")
	Log.Printf(" GNU General Public License v2.\n")
	Log.Printf("\n")
	if !(config.FromCommandLine(os.Args[1:])) {
		Log.Printf("\n")
		os.Exit(1)
	}

	// If input file name was not passed, print help
	if config.Help || config.InputFileName == "" {
		PrintHelp()
		os.Exit(0)
	}
}

func PrintHelp() {
	Log.Printf("Usage: vigilantclip {-options} filename.wad\n")
	Log.Printf("\n")
	Log.Printf("-x+ turn on option -x- turn off option")
	Log.Printf("\n")
	Log.Printf("-l= Only process these levels, comma separated: -l=MAP01,E1M1\n")
	Log.Printf("	-l-=... process all levels except these\n")
	Log.Printf("\n")
	Log.Printf("-p= Viewpoint x,y[,z]. May be repeated.\n")
	Log.Printf("	z is eye height in world coordinates, default is floor + %d.\n", VIEWHEIGHT)
	Log.Printf("	Without viewpoints, player 1 start is used.\n")
	Log.Printf("\n")
	Log.Printf("-a= View direction in degrees drawn on the snapshot (default 90 = north).\n")
	Log.Printf("\n")
	Log.Printf("-c Culling (default: enabled). -c- makes every query report visible.\n")
	Log.Printf("\n")
	Log.Printf("-g Validate clipper after every change (slow, for debugging).\n")
	Log.Printf("\n")
	Log.Printf("-r Cross-check visible sectors against REJECT lump.\n")
	Log.Printf("\n")
	Log.Printf("-t= Number of threads for viewpoints (0 = number of cores).\n")
	Log.Printf("\n")
	Log.Printf("-v Add verbosity to text output. Use multiple times for increased verbosity.\n")
	Log.Printf("\n")
	Log.Printf("--viewpoints <file>  YAML file with viewpoints\n")
	Log.Printf("--report <file>      Write JSON report\n")
	Log.Printf("--snapshot <file>    Write PNG top-down snapshot\n")
	Log.Printf("--metrics <file>     Write Prometheus textfile with clipper statistics\n")
	Log.Printf("--cpuprofile <file>  Write CPU profile\n")
	Log.Printf("--help               Print this text\n")
	Log.Printf("\n")
	Log.Printf("Example (1): vigilantclip -l=MAP01 -p=1056,-3616 file.wad\n")
	Log.Printf("	Reports which sectors of MAP01 can be seen from (1056,-3616).\n")
	Log.Printf("Example (2): vigilantclip -r -t=4 --viewpoints spots.yaml --report out.json file.wad\n")
	Log.Printf("	Processes every viewpoint in spots.yaml using 4 threads, checks\n")
	Log.Printf("	REJECT for sectors that it hides while they are in plain view,\n")
	Log.Printf("	and writes results to out.json\n")
	Log.Printf("\n")
}
