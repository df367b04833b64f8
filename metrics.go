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

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const (
	levelLabel     = "level"
	viewpointLabel = "viewpoint"

	metricsNamespace = "vigilantclip"

	ErrTypeMetrics = "metrics"
)

// ClipMetrics are written as a textfile for node_exporter's textfile
// collector, so a batch of runs over a map set can be graphed
type ClipMetrics struct {
	registry *prometheus.Registry

	visibleSubsectors *prometheus.GaugeVec
	visibleSectors    *prometheus.GaugeVec
	clipNodes         *prometheus.GaugeVec
	occlusionNodes    *prometheus.GaugeVec
	poolAllocations   *prometheus.CounterVec
	nodesPruned       *prometheus.CounterVec
	rejectConflicts   *prometheus.CounterVec
	viewpoints        *prometheus.CounterVec
}

func NewClipMetrics() *ClipMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &ClipMetrics{
		registry: reg,
		visibleSubsectors: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "visible_subsectors",
			Help:      "The number of subsectors visible from the viewpoint.",
		}, []string{levelLabel, viewpointLabel}),
		visibleSectors: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "visible_sectors",
			Help:      "The number of sectors visible from the viewpoint.",
		}, []string{levelLabel, viewpointLabel}),
		clipNodes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "clip_nodes",
			Help:      "The number of solid angle ranges after the walk.",
		}, []string{levelLabel, viewpointLabel}),
		occlusionNodes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "occlusion_nodes",
			Help:      "The number of occlusion ranges after the walk.",
		}, []string{levelLabel, viewpointLabel}),
		poolAllocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pool_allocations_total",
			Help:      "The number of range records allocated by clippers.",
		}, []string{levelLabel}),
		nodesPruned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "nodes_pruned_total",
			Help:      "The number of BSP subtrees skipped because they were clipped.",
		}, []string{levelLabel}),
		rejectConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reject_conflicts_total",
			Help:      "The number of visible sectors that REJECT marks as hidden.",
		}, []string{levelLabel}),
		viewpoints: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "viewpoints_total",
			Help:      "The number of processed viewpoints.",
		}, []string{levelLabel}),
	}
}

func (m *ClipMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *ClipMetrics) Observe(vis *Visibility) {
	viewLabels := prometheus.Labels{levelLabel: vis.Level, viewpointLabel: vis.Viewpoint.Name}
	levelLabels := prometheus.Labels{levelLabel: vis.Level}
	m.visibleSubsectors.With(viewLabels).Set(float64(vis.VisibleSubsectorCount()))
	m.visibleSectors.With(viewLabels).Set(float64(len(vis.VisibleSectorList())))
	m.clipNodes.With(viewLabels).Set(float64(vis.Stats.ClipNodes))
	m.occlusionNodes.With(viewLabels).Set(float64(vis.Stats.OcclusionNodes))
	m.poolAllocations.With(levelLabels).Add(float64(vis.PoolAllocations))
	m.nodesPruned.With(levelLabels).Add(float64(vis.NodesPruned))
	m.rejectConflicts.With(levelLabels).Add(float64(len(vis.RejectConflicts)))
	m.viewpoints.With(levelLabels).Inc()
}

// WriteText writes every gathered metric in the text exposition format, the
// one node_exporter's textfile collector reads
func (m *ClipMetrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return errors.New("couldn't gather metrics").
			WithType(ErrTypeMetrics).
			Wrap(err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.New("couldn't write metrics").
				WithType(ErrTypeMetrics).
				WithTag("metric", mf.GetName()).
				Wrap(err)
		}
	}
	return nil
}
