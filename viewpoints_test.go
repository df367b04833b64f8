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
	"strings"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestLoadViewpoints(t *testing.T) {
	vps, err := LoadViewpoints(strings.NewReader(`
viewpoints:
  - level: map01
    name: start
    x: 1056
    y: -3616
  - x: 0
    y: 0
    z: 128
    angle: 270
`))
	require.NoError(t, err)
	require.Len(t, vps, 2)
	require.Equal(t, "MAP01", vps[0].Level)
	require.Equal(t, "start", vps[0].Name)
	require.Equal(t, 1056.0, vps[0].X)
	require.Equal(t, -3616.0, vps[0].Y)
	require.Nil(t, vps[0].Z)
	require.Nil(t, vps[0].Angle)

	require.Equal(t, "", vps[1].Level)
	require.Equal(t, "#2", vps[1].Name)
	require.NotNil(t, vps[1].Z)
	require.Equal(t, 128.0, *vps[1].Z)
	require.Equal(t, 270.0, *vps[1].Angle)

	require.Len(t, ViewpointsForLevel(vps, "MAP01"), 2)
	only := ViewpointsForLevel(vps, "MAP02")
	require.Len(t, only, 1)
	require.Equal(t, "#2", only[0].Name)
}

func TestLoadViewpointsEmpty(t *testing.T) {
	vps, err := LoadViewpoints(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, vps)
}

func TestLoadViewpointsErrors(t *testing.T) {
	tests := []string{
		// typo in a field name
		"viewpoints:\n  - x: 1\n    yy: 2\n",
		"viewpoints:\n  - level: THINGS\n    x: 1\n    y: 2\n",
		"viewpoints: [",
		"viewpoints:\n  - x: east\n",
	}
	for _, doc := range tests {
		_, err := LoadViewpoints(strings.NewReader(doc))
		require.Error(t, err, doc)
		require.Equal(t, ErrTypeBadViewpoints, errors.Type(err))
	}
}
