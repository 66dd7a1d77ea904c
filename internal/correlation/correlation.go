// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package correlation assembles target correlation matrices from pairwise
// targets and guarantees they are valid covariance structures before any
// sample is drawn.
//
// A matrix whose smallest eigenvalue is below -Epsilon is rejected with
// types.ErrNonPositiveSemiDefinite under the fail policy. Under the clip
// policy it is replaced by the matrix obtained by flooring every eigenvalue
// at ClipFloor, reconstructing, and rescaling to a unit diagonal. The
// correction depends only on the input matrix, so it is deterministic.
package correlation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

const (
	// Epsilon is the eigenvalue tolerance of the PSD check.
	Epsilon = 1e-10

	// ClipFloor is the smallest eigenvalue kept by the clip policy.
	ClipFloor = 1e-6
)

// Build assembles the correlation matrix over vars plus every variable named
// by targets, in that order. Unspecified pairs are 0 and the diagonal is 1.
// Duplicate pairs, self pairs, and coefficients outside [-1, 1] are
// configuration errors. The PSD check is applied under policy.
func Build(targets []types.TargetCorrelation, vars []string, policy types.PSDPolicy) (*types.CorrelationMatrix, error) {
	names, index := collectVars(targets, vars)
	n := len(names)
	if n == 0 {
		return nil, types.Configf("targets", "no variables to correlate")
	}

	values := make([]float64, n*n)
	for i := 0; i < n; i++ {
		values[i*n+i] = 1
	}

	seen := make(map[string]int)
	for k, t := range targets {
		field := fmt.Sprintf("targets[%d]", k)
		if t.A == "" || t.B == "" {
			return nil, types.Configf(field, "both variables are required")
		}
		if t.A == t.B {
			return nil, types.Configf(field, "variable %q is paired with itself", t.A)
		}
		if math.IsNaN(t.R) || t.R < -1 || t.R > 1 {
			return nil, types.Configf(field, "coefficient %v outside [-1, 1]", t.R)
		}
		key := types.PairKey(t.A, t.B)
		if prev, dup := seen[key]; dup {
			return nil, types.Configf(field, "pair %s already set by targets[%d]", key, prev)
		}
		seen[key] = k

		i, j := index[t.A], index[t.B]
		values[i*n+j] = t.R
		values[j*n+i] = t.R
	}

	m := &types.CorrelationMatrix{Vars: names, Values: values}
	if err := Ensure(m, policy); err != nil {
		return nil, err
	}
	return m, nil
}

// collectVars returns the ordered union of vars and target variable names.
func collectVars(targets []types.TargetCorrelation, vars []string) ([]string, map[string]int) {
	index := make(map[string]int)
	var names []string
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := index[v]; !ok {
			index[v] = len(names)
			names = append(names, v)
		}
	}
	for _, v := range vars {
		add(v)
	}
	for _, t := range targets {
		add(t.A)
		add(t.B)
	}
	return names, index
}

// Ensure checks m for positive semi-definiteness and applies policy. It
// records the smallest eigenvalue on m. Under PSDClip an invalid matrix is
// corrected in place and m.Corrected is set; under PSDFail (or an unknown
// policy) a ConfigError wrapping types.ErrNonPositiveSemiDefinite is returned.
func Ensure(m *types.CorrelationMatrix, policy types.PSDPolicy) error {
	values, _, err := eigen(m)
	if err != nil {
		return err
	}
	minEV := floats.Min(values)
	m.MinEigenvalue = minEV
	if minEV >= -Epsilon {
		return nil
	}

	if policy != types.PSDClip {
		return &types.ConfigError{
			Field:  "targets",
			Reason: fmt.Sprintf("smallest eigenvalue %.4f over %v", minEV, m.Vars),
			Err:    types.ErrNonPositiveSemiDefinite,
		}
	}

	return clip(m)
}

// IsPSD reports whether m has no eigenvalue below -Epsilon.
func IsPSD(m *types.CorrelationMatrix) (bool, error) {
	values, _, err := eigen(m)
	if err != nil {
		return false, err
	}
	return floats.Min(values) >= -Epsilon, nil
}

// clip projects m onto a positive definite matrix with unit diagonal.
func clip(m *types.CorrelationMatrix) error {
	values, vectors, err := eigen(m)
	if err != nil {
		return err
	}
	n := len(values)
	for i, v := range values {
		if v < ClipFloor {
			values[i] = ClipFloor
		}
	}

	var scaled mat.Dense
	scaled.Apply(func(_, j int, v float64) float64 {
		return v * values[j]
	}, vectors)

	var rebuilt mat.Dense
	rebuilt.Mul(&scaled, vectors.T())

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				m.Values[i*n+j] = 1
				continue
			}
			d := math.Sqrt(rebuilt.At(i, i) * rebuilt.At(j, j))
			m.Values[i*n+j] = rebuilt.At(i, j) / d
		}
	}
	m.Corrected = true
	return nil
}

// eigen returns the eigenvalues and the eigenvectors (as columns)
// of m.
func eigen(m *types.CorrelationMatrix) ([]float64, *mat.Dense, error) {
	n := m.Size()
	if n == 0 || len(m.Values) != n*n {
		return nil, nil, types.Configf("matrix", "expected %d values, got %d", n*n, len(m.Values))
	}
	sym := mat.NewSymDense(n, append([]float64(nil), m.Values...))

	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, nil, fmt.Errorf("eigendecomposition of %d×%d matrix did not converge", n, n)
	}
	values := es.Values(nil)
	var vectors mat.Dense
	es.VectorsTo(&vectors)
	return values, &vectors, nil
}

// Factor returns a matrix L with L·Lᵀ equal to m, built from the
// eigendecomposition so singular (PSD but not PD) matrices are accepted.
// Eigenvalues in [-Epsilon, 0) are treated as zero.
func Factor(m *types.CorrelationMatrix) (*mat.Dense, error) {
	values, vectors, err := eigen(m)
	if err != nil {
		return nil, err
	}
	if floats.Min(values) < -Epsilon {
		return nil, types.ErrNonPositiveSemiDefinite
	}
	roots := make([]float64, len(values))
	for i, v := range values {
		if v > 0 {
			roots[i] = math.Sqrt(v)
		}
	}
	var l mat.Dense
	l.Apply(func(_, j int, v float64) float64 {
		return v * roots[j]
	}, vectors)
	return &l, nil
}
