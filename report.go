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
	"io"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
)

const ErrTypeReport = "report"

// Report is what --report writes, one per program run
type Report struct {
	RunID     string        `json:"run_id"`
	Version   string        `json:"version"`
	InputFile string        `json:"input_file"`
	Culling   bool          `json:"culling"`
	StartedAt time.Time     `json:"started_at"`
	Levels    []LevelReport `json:"levels"`
}

type LevelReport struct {
	Name       string            `json:"name"`
	Format     string            `json:"format,omitempty"`
	DeepNodes  bool              `json:"deep_nodes,omitempty"`
	Sectors    int               `json:"sectors"`
	SubSectors int               `json:"subsectors"`
	Things     int               `json:"things"`
	HasReject  bool              `json:"has_reject"`
	Viewpoints []ViewpointReport `json:"viewpoints"`
	Error      string            `json:"error,omitempty"`
}

type ViewpointReport struct {
	Name              string       `json:"name"`
	Eye               [3]float64   `json:"eye"`
	EyeSector         int          `json:"eye_sector"`
	EyeSubsector      int          `json:"eye_subsector"`
	VisibleSectors    []int        `json:"visible_sectors"`
	VisibleSubsectors int          `json:"visible_subsectors"`
	VisibleThings     []int        `json:"visible_things"`
	RejectConflicts   []int        `json:"reject_conflicts,omitempty"`
	NodesVisited      int          `json:"nodes_visited"`
	NodesPruned       int          `json:"nodes_pruned"`
	Clipper           ClipperStats `json:"clipper"`
	Cancelled         bool         `json:"cancelled,omitempty"`
}

func NewReport(inputFile string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Version:   VERSION,
		InputFile: inputFile,
		Culling:   !config.NoCulling, // reference to global: config
		StartedAt: time.Now().UTC(),
		Levels:    make([]LevelReport, 0),
	}
}

func (r *Report) AddLevel(lvl *Level, results []ViewResult) {
	lr := LevelReport{
		Name:       lvl.Name,
		Format:     formatName(lvl.Format),
		DeepNodes:  lvl.DeepNodes,
		Sectors:    len(lvl.Sectors),
		SubSectors: len(lvl.SubSectors),
		Things:     len(lvl.Things),
		HasReject:  lvl.Reject != nil,
		Viewpoints: make([]ViewpointReport, 0, len(results)),
	}
	for _, res := range results {
		if res.Vis == nil {
			lr.Viewpoints = append(lr.Viewpoints, ViewpointReport{
				Name:      res.Viewpoint.Name,
				Cancelled: true,
			})
			continue
		}
		vis := res.Vis
		things := vis.Things
		if things == nil {
			things = []int{}
		}
		lr.Viewpoints = append(lr.Viewpoints, ViewpointReport{
			Name:              res.Viewpoint.Name,
			Eye:               [3]float64{vis.Eye.X, vis.Eye.Y, vis.Eye.Z},
			EyeSector:         vis.EyeSector,
			EyeSubsector:      vis.EyeSubsector,
			VisibleSectors:    vis.VisibleSectorList(),
			VisibleSubsectors: vis.VisibleSubsectorCount(),
			VisibleThings:     things,
			RejectConflicts:   vis.RejectConflicts,
			NodesVisited:      vis.NodesVisited,
			NodesPruned:       vis.NodesPruned,
			Clipper:           vis.Stats,
		})
	}
	r.Levels = append(r.Levels, lr)
}

// AddLevelError records a level that couldn't be processed
func (r *Report) AddLevelError(name string, err error) {
	r.Levels = append(r.Levels, LevelReport{
		Name:       name,
		Viewpoints: make([]ViewpointReport, 0),
		Error:      err.Error(),
	})
}

func (r *Report) Write(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.New("couldn't encode report").
			WithType(ErrTypeReport).
			Wrap(err)
	}
	if _, err := w.Write(data); err != nil {
		return errors.New("couldn't write report").
			WithType(ErrTypeReport).
			Wrap(err)
	}
	return nil
}

func formatName(format int) string {
	switch format {
	case FORMAT_HEXEN:
		return "hexen"
	default:
		return "doom"
	}
}
