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
	"io"
	"strconv"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"gopkg.in/yaml.v3"
)

const ErrTypeBadViewpoints = "bad_viewpoints"

// Viewpoint is where the eye is placed. Z and Angle are optional: eye height
// defaults to floor height + VIEWHEIGHT of the sector the eye is in, angle to
// config.ViewAngle. Empty Level means "every processed level"
type Viewpoint struct {
	Level string   `yaml:"level,omitempty" json:"level,omitempty"`
	Name  string   `yaml:"name,omitempty" json:"name,omitempty"`
	X     float64  `yaml:"x" json:"x"`
	Y     float64  `yaml:"y" json:"y"`
	Z     *float64 `yaml:"z,omitempty" json:"z,omitempty"`
	Angle *float64 `yaml:"angle,omitempty" json:"angle,omitempty"`
}

// ViewpointFile is the document read from --viewpoints file:
//
//	viewpoints:
//	  - level: MAP01
//	    name: start
//	    x: 1056
//	    y: -3616
//	  - level: MAP01
//	    x: 0
//	    y: 0
//	    z: 128
type ViewpointFile struct {
	Viewpoints []Viewpoint `yaml:"viewpoints"`
}

// LoadViewpoints decodes viewpoint list. Level names are upper cased,
// unnamed viewpoints get their ordinal number as a name
func LoadViewpoints(r io.Reader) ([]Viewpoint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New("couldn't read viewpoints").
			WithType(ErrTypeBadViewpoints).
			Wrap(err)
	}
	var doc ViewpointFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.New("couldn't parse viewpoints").
			WithType(ErrTypeBadViewpoints).
			Wrap(err)
	}
	for i := range doc.Viewpoints {
		vp := &doc.Viewpoints[i]
		vp.Level = string(bytes.ToUpper([]byte(vp.Level)))
		if vp.Level != "" && !IsALevel([]byte(vp.Level)) {
			return nil, errors.New("viewpoint refers to something that is not a level").
				WithType(ErrTypeBadViewpoints).
				WithTag("index", i).
				WithTag("level", vp.Level)
		}
		if vp.Name == "" {
			vp.Name = "#" + strconv.Itoa(i+1)
		}
	}
	return doc.Viewpoints, nil
}

// ViewpointsForLevel picks viewpoints that apply to the level
func ViewpointsForLevel(vps []Viewpoint, levelName string) []Viewpoint {
	var res []Viewpoint
	for _, vp := range vps {
		if vp.Level == "" || vp.Level == levelName {
			res = append(res, vp)
		}
	}
	return res
}
