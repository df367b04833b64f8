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
	"math"
	"strconv"
)

const ( // NumericOrState.whichType values
	ARG_ENABLED = iota
	ARG_DISABLED
	ARG_IS_NUMBER
)

type NumericOrState struct {
	whichType int // see consts above
	value     int
}

// Inspired by from zokumbsp's parser
func (c *ProgramConfig) FromCommandLine(args []string) bool {
	files := make([]string, 0)
	skip := false
	for argIdx, arg := range args {
		if len(arg) < 1 {
			break
		}
		if skip {
			skip = false
			continue
		}

		if arg[0] != '-' {
			files = append(files, arg)
			if len(files) > 1 {
				Log.Error("This program doesn't support specifying more than one input file - aborting.\n")
				return false
			}
			c.InputFileName = files[0]
			continue
		}

		if len(arg) < 2 {
			continue
		}
		switch arg[1] {
		case 'l':
			{
				if !c.parseLevelFilter([]byte(arg)[2:]) {
					return false
				}
			}
		case 'p':
			{
				vp, ok := parseViewpointParams([]byte(arg)[2:])
				if !ok {
					Log.Error("Syntax error in '%s': expected -p=x,y or -p=x,y,z with integer coordinates - aborting.\n",
						arg)
					return false
				}
				vp.Name = "cmdline" + strconv.Itoa(len(c.Viewpoints)+1)
				c.Viewpoints = append(c.Viewpoints, vp)
			}
		case 'a':
			{
				nos, rest := readNumeric("-a", []byte(arg)[2:])
				if nos.whichType == ARG_IS_NUMBER {
					c.ViewAngle = float64(nos.value % 360)
				} else {
					Log.Error("-a expects a value: -a=<degrees>. Ignoring it.\n")
				}
				if len(rest) > 0 {
					Log.Error("Syntax error: -a parameter is followed by garbage '%s'. It will be ignored.\n",
						string(rest))
				}
			}
		case 'c':
			{
				enabled, rest := isEnabled([]byte(arg)[2:])
				c.NoCulling = !enabled
				if len(rest) > 0 {
					Log.Error("Syntax error: -c parameter is followed by garbage; expected -c, -c+ or -c-, no other variants allowed.\n")
				}
			}
		case 'g':
			{
				enabled, rest := isEnabled([]byte(arg)[2:])
				c.ValidateClipper = enabled
				if len(rest) > 0 {
					Log.Error("Syntax error: -g parameter is followed by garbage; expected -g, -g+ or -g-, no other variants allowed.\n")
				}
			}
		case 'r':
			{
				enabled, rest := isEnabled([]byte(arg)[2:])
				c.CheckReject = enabled
				if len(rest) > 0 {
					Log.Error("Syntax error: -r parameter is followed by garbage; expected -r, -r+ or -r-, no other variants allowed.\n")
				}
			}
		case 't':
			{
				nos, rest := readNumeric("-t", []byte(arg)[2:])
				switch nos.whichType {
				case ARG_IS_NUMBER:
					if nos.value > math.MaxInt16 {
						nos.value = math.MaxInt16
					}
					c.Threads = int16(nos.value)
				case ARG_ENABLED:
					c.Threads = 0
				case ARG_DISABLED:
					// -t- means no concurrency
					c.Threads = 1
				}
				if len(rest) > 0 {
					Log.Error("Syntax error: -t parameter is followed by garbage '%s'. It will be ignored.\n",
						string(rest))
				}
			}
		case 'v':
			{
				// "count" type: -v, -vv, -vvv, etc.
				vs := 0
				barg := []byte(arg)[1:]
				for i := 0; i < len(arg)-1; i++ {
					if barg[i] == 'v' {
						vs++
					} else {
						break
					}
				}
				c.VerbosityLevel += vs
			}
		case '-':
			{
				// parameter starts with double hyphen, e.g. --something
				if arg == "--help" {
					c.Help = true
					continue
				}
				var target *string
				switch arg {
				case "--viewpoints":
					target = &c.ViewpointsFile
				case "--report":
					target = &c.ReportFile
				case "--snapshot":
					target = &c.SnapshotFile
				case "--metrics":
					target = &c.MetricsFile
				case "--cpuprofile":
					c.Profile = true
					target = &c.ProfilePath
				default:
					Log.Error("Unrecognised argument '%s' - aborting.\n", arg)
					return false
				}
				fileSatisfied := len(args) > (argIdx+1) && args[argIdx+1] != ""
				if !fileSatisfied {
					Log.Error("Modifier '%s' was present without a file name following it - aborting.\n",
						arg)
					return false
				}
				*target = args[argIdx+1]
				skip = true
			}
		default:
			{
				Log.Error("Unrecognised argument '%s' - aborting.\n", arg)
				return false
			}
		}
	}
	return true
}

// -l=MAP01,MAP02 or -l-=MAP01,MAP02
func (c *ProgramConfig) parseLevelFilter(p []byte) bool {
	c.FilterProhibitsLevels = false
	if len(p) > 0 && p[0] == '-' {
		c.FilterProhibitsLevels = true
		p = p[1:]
	} else if len(p) > 0 && p[0] == '+' {
		p = p[1:]
	}
	if len(p) < 2 || p[0] != '=' {
		Log.Error("Level filter expects a list of levels, like -l=MAP01,MAP02 - aborting.\n")
		return false
	}
	c.FilterLevel = nil
	for _, name := range bytes.Split(p[1:], []byte(",")) {
		name = bytes.ToUpper(bytes.TrimSpace(name))
		if len(name) == 0 {
			continue
		}
		if !IsALevel(name) {
			Log.Error("'%s' in level filter doesn't look like a level name - it will never match.\n",
				string(name))
		}
		c.FilterLevel = append(c.FilterLevel, name)
	}
	return len(c.FilterLevel) > 0
}

// =x,y or =x,y,z
func parseViewpointParams(p []byte) (Viewpoint, bool) {
	if len(p) < 1 || p[0] != '=' {
		return Viewpoint{}, false
	}
	p = p[1:]
	var coords []int
	for {
		ok, v, rest := readSignedNumeric(p)
		if !ok {
			return Viewpoint{}, false
		}
		coords = append(coords, v)
		p = rest
		if len(p) == 0 {
			break
		}
		if p[0] != ',' || len(coords) == 3 {
			return Viewpoint{}, false
		}
		p = p[1:]
	}
	if len(coords) < 2 {
		return Viewpoint{}, false
	}
	vp := Viewpoint{
		X: float64(coords[0]),
		Y: float64(coords[1]),
	}
	if len(coords) == 3 {
		z := float64(coords[2])
		vp.Z = &z
	}
	return vp, true
}

func isEnabled(arg []byte) (bool, []byte) {
	if len(arg) == 0 {
		return true, arg
	}
	if arg[0] == '+' {
		return true, arg[1:]
	} else if arg[0] == '-' {
		return false, arg[1:]
	} else {
		return true, arg
	}
}

// a+, a-, or a=<numeric_value_without_sign>
func readNumeric(prefix string, arg []byte) (NumericOrState, []byte) {
	if len(arg) == 0 {
		return NumericOrState{whichType: ARG_ENABLED}, arg
	}
	if arg[0] == '+' {
		return NumericOrState{whichType: ARG_ENABLED}, arg[1:]
	} else if arg[0] == '-' {
		return NumericOrState{whichType: ARG_DISABLED}, arg[1:]
	} else if arg[0] == '=' {
		// !!! doesn't support negative values, and values with explicit "+"
		// sign either
		t, v, rest := readNumericOnly(arg[1:])
		if t {
			return NumericOrState{
				whichType: ARG_IS_NUMBER,
				value:     v,
			}, rest
		} else {
			Log.Error("Couldn't properly parse '%s=%s'. Some parameters are going to be ignored as the result.\n", prefix, string(arg))
			return NumericOrState{
				whichType: ARG_ENABLED,
			}, arg[:0] // ignore the rest of parameters
		}
	} else {
		return NumericOrState{whichType: ARG_ENABLED}, arg
	}
}

func readNumericOnly(arg []byte) (bool, int, []byte) {
	if len(arg) == 0 {
		return false, 0, arg
	}
	l := 0
	for i := 0; i < len(arg); i++ {
		c := arg[i]
		if '0' <= c && c <= '9' {
			l++
		} else {
			break
		}
	}
	if l > 0 {
		v, err := strconv.Atoi(string(arg[:l]))
		if err != nil {
			Log.Error("value '%s' was too big to interpret as int.\n",
				string(arg[:l]))
			return false, 0, arg[l:]
		}
		return true, v, arg[l:]
	}
	return false, 0, arg
}

// Like readNumericOnly, but map coordinates can be negative
func readSignedNumeric(arg []byte) (bool, int, []byte) {
	if len(arg) > 0 && arg[0] == '-' {
		ok, v, rest := readNumericOnly(arg[1:])
		return ok, -v, rest
	}
	return readNumericOnly(arg)
}
