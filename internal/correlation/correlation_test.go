// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package correlation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

func impossibleTargets() []types.TargetCorrelation {
	return []types.TargetCorrelation{
		{A: "A", B: "B", R: 0.9},
		{A: "A", B: "C", R: 0.9},
		{A: "B", B: "C", R: -0.9},
	}
}

func TestBuildAssemblesSymmetricMatrix(t *testing.T) {
	targets := []types.TargetCorrelation{
		{A: "EQI", B: "JPI", R: 0.45},
		{A: "JPI", B: "age", R: -0.2},
	}
	m, err := Build(targets, []string{"MBI"}, types.PSDFail)
	require.NoError(t, err)

	assert.Equal(t, []string{"MBI", "EQI", "JPI", "age"}, m.Vars)
	for i := range m.Vars {
		assert.Equal(t, 1.0, m.At(i, i))
	}
	r, ok := m.Get("JPI", "EQI")
	require.True(t, ok)
	assert.Equal(t, 0.45, r)
	r, _ = m.Get("age", "JPI")
	assert.Equal(t, -0.2, r)
	r, _ = m.Get("MBI", "EQI")
	assert.Zero(t, r, "unspecified pairs default to zero")
	assert.False(t, m.Corrected)
	assert.Greater(t, m.MinEigenvalue, 0.0)
}

func TestBuildRejectsNonPSDUnderFailPolicy(t *testing.T) {
	_, err := Build(impossibleTargets(), nil, types.PSDFail)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNonPositiveSemiDefinite))
	assert.True(t, types.IsConfigError(err))
}

func TestBuildClipsNonPSDUnderClipPolicy(t *testing.T) {
	m, err := Build(impossibleTargets(), nil, types.PSDClip)
	require.NoError(t, err)

	assert.True(t, m.Corrected)
	assert.Less(t, m.MinEigenvalue, 0.0, "records the eigenvalue before correction")
	ok, err := IsPSD(m)
	require.NoError(t, err)
	assert.True(t, ok)

	for i := range m.Vars {
		assert.Equal(t, 1.0, m.At(i, i))
		for j := range m.Vars {
			assert.InDelta(t, m.At(i, j), m.At(j, i), 1e-12)
			assert.LessOrEqual(t, m.At(i, j), 1.0+1e-12)
			assert.GreaterOrEqual(t, m.At(i, j), -1.0-1e-12)
		}
	}

	// Signs of the original targets survive the projection.
	ab, _ := m.Get("A", "B")
	bc, _ := m.Get("B", "C")
	assert.Greater(t, ab, 0.0)
	assert.Less(t, bc, 0.0)
}

func TestClipIsDeterministic(t *testing.T) {
	first, err := Build(impossibleTargets(), nil, types.PSDClip)
	require.NoError(t, err)
	second, err := Build(impossibleTargets(), nil, types.PSDClip)
	require.NoError(t, err)
	assert.Equal(t, first.Values, second.Values)
}

func TestBuildConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		targets []types.TargetCorrelation
	}{
		{name: "self pair", targets: []types.TargetCorrelation{{A: "A", B: "A", R: 0.3}}},
		{name: "out of range", targets: []types.TargetCorrelation{{A: "A", B: "B", R: 1.2}}},
		{name: "missing variable", targets: []types.TargetCorrelation{{A: "A", R: 0.3}}},
		{name: "duplicate pair", targets: []types.TargetCorrelation{
			{A: "A", B: "B", R: 0.3},
			{A: "B", B: "A", R: 0.4},
		}},
		{name: "empty", targets: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.targets, nil, types.PSDClip)
			require.Error(t, err)
			assert.True(t, types.IsConfigError(err))
		})
	}
}

func TestFactorReproducesMatrix(t *testing.T) {
	targets := []types.TargetCorrelation{
		{A: "X", B: "Y", R: 0.6},
		{A: "X", B: "Z", R: -0.3},
		{A: "Y", B: "Z", R: 1.0 / 3},
	}
	m, err := Build(targets, nil, types.PSDFail)
	require.NoError(t, err)

	l, err := Factor(m)
	require.NoError(t, err)

	var back mat.Dense
	back.Mul(l, l.T())
	for i := range m.Vars {
		for j := range m.Vars {
			assert.InDelta(t, m.At(i, j), back.At(i, j), 1e-9)
		}
	}
}

func TestFactorAcceptsSingularMatrix(t *testing.T) {
	m, err := Build([]types.TargetCorrelation{{A: "X", B: "Y", R: 1}}, nil, types.PSDFail)
	require.NoError(t, err)

	l, err := Factor(m)
	require.NoError(t, err)
	var back mat.Dense
	back.Mul(l, l.T())
	assert.InDelta(t, 1.0, back.At(0, 1), 1e-9)
}
