// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sampler draws joint samples from a target correlation structure and
// maps them onto bounded ordinal (Likert) or truncated continuous marginals.
package sampler

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pdiddy/thesis-engine/internal/correlation"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Marginal describes how one variable of the joint normal draw is mapped to
// its observed scale.
type Marginal struct {
	// Scale is the ordinal range of a Likert-type variable.
	Scale types.ScaleRange

	// Skew reshapes the uniform score through a Beta quantile before
	// rescaling. Positive values pile responses at the low end (positive
	// skew), negative values at the high end. Zero is the identity.
	Skew float64

	// Continuous maps the normal draw to Mean + Std·z clipped to [Lo, Hi]
	// instead of the ordinal scale.
	Continuous bool
	Mean       float64
	Std        float64
	Lo, Hi     float64

	// Integer rounds a continuous variable.
	Integer bool
}

// Ordinal returns a Likert marginal over r.
func Ordinal(r types.ScaleRange, skew float64) Marginal {
	return Marginal{Scale: r, Skew: skew}
}

// Sample holds N draws of every variable, stored by column.
type Sample struct {
	// Vars lists the variable names, matching the matrix order.
	Vars []string

	// Columns holds len(Vars) slices of N values.
	Columns [][]float64

	// Latent holds the copula-adjusted matrix the normal draw used.
	Latent *types.CorrelationMatrix
}

// Column returns the values of the named variable, or nil.
func (s *Sample) Column(name string) []float64 {
	for i, v := range s.Vars {
		if v == name {
			return s.Columns[i]
		}
	}
	return nil
}

// Draw samples n rows from a zero-mean multivariate normal whose correlation
// is the copula-adjusted version of m, then maps every column through its
// marginal. Every variable in m needs an entry in marginals.
//
// m is expected to be positive semi-definite already. The adjusted matrix
// may not be; Draw always clips it, and Sample.Latent.Corrected reports
// whether that happened so callers can surface it.
func Draw(rng *rand.Rand, m *types.CorrelationMatrix, n int, marginals map[string]Marginal) (*Sample, error) {
	if n <= 0 {
		return nil, types.Configf("sample_size", "must be positive, got %d", n)
	}
	margs := make([]Marginal, m.Size())
	for i, v := range m.Vars {
		mg, ok := marginals[v]
		if !ok {
			return nil, types.Configf("marginals", "no marginal for variable %q", v)
		}
		if err := mg.validate(); err != nil {
			return nil, types.Configf(fmt.Sprintf("marginals[%s]", v), "%v", err)
		}
		margs[i] = mg
	}

	latent := Adjust(m, margs)
	if err := correlation.Ensure(latent, types.PSDClip); err != nil {
		return nil, err
	}
	l, err := correlation.Factor(latent)
	if err != nil {
		return nil, err
	}

	k := m.Size()
	cols := make([][]float64, k)
	for j := range cols {
		cols[j] = make([]float64, n)
	}

	z := mat.NewVecDense(k, nil)
	var x mat.VecDense
	for row := 0; row < n; row++ {
		for j := 0; j < k; j++ {
			z.SetVec(j, rng.NormFloat64())
		}
		x.MulVec(l, z)
		for j := 0; j < k; j++ {
			cols[j][row] = margs[j].transform(x.AtVec(j))
		}
	}

	return &Sample{
		Vars:    append([]string(nil), m.Vars...),
		Columns: cols,
		Latent:  latent,
	}, nil
}

// Adjust returns a copy of m whose coefficients are moved so that, after
// each variable passes through its marginal, the observed correlations equal
// the targets. Every marginal is a step function of its normal draw, so the
// observed correlation at a latent ρ has a closed form in bivariate normal
// orthant probabilities; Adjust solves it for ρ pair by pair. Skew and scale
// width are taken into account. Targets the marginals cannot reach are pushed
// to ±MaxLatentR.
func Adjust(m *types.CorrelationMatrix, margs []Marginal) *types.CorrelationMatrix {
	n := m.Size()
	out := &types.CorrelationMatrix{
		Vars:   append([]string(nil), m.Vars...),
		Values: append([]float64(nil), m.Values...),
	}
	st := make([]steps, n)
	for i, mg := range margs {
		st[i] = mg.steps()
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := latentCorrelation(m.At(i, j), st[i], st[j])
			out.Values[i*n+j] = r
			out.Values[j*n+i] = r
		}
	}
	return out
}

func (mg Marginal) validate() error {
	if mg.Continuous {
		if mg.Std < 0 || math.IsNaN(mg.Std) {
			return fmt.Errorf("std must be non-negative")
		}
		if mg.Hi < mg.Lo {
			return fmt.Errorf("bounds [%v, %v] are inverted", mg.Lo, mg.Hi)
		}
		return nil
	}
	if mg.Scale.Max < mg.Scale.Min {
		return fmt.Errorf("scale [%d, %d] is inverted", mg.Scale.Min, mg.Scale.Max)
	}
	if math.IsNaN(mg.Skew) || math.IsInf(mg.Skew, 0) {
		return fmt.Errorf("skew must be finite")
	}
	return nil
}

// transform maps a standard normal draw to the marginal's observed scale.
func (mg Marginal) transform(z float64) float64 {
	if mg.Continuous {
		v := mg.Mean + mg.Std*z
		if mg.Integer {
			v = math.Round(v)
		}
		return math.Max(mg.Lo, math.Min(mg.Hi, v))
	}
	u := distuv.UnitNormal.CDF(z)
	u = Reshape(u, mg.Skew)
	return float64(ToOrdinal(u, mg.Scale))
}

// Reshape applies the skew-parameterized Beta quantile to a uniform value.
// skew > 0 uses Beta(1, 1+skew); skew < 0 uses Beta(1+|skew|, 1).
func Reshape(u, skew float64) float64 {
	u = math.Max(0, math.Min(1, u))
	if skew == 0 {
		return u
	}
	b := distuv.Beta{Alpha: 1, Beta: 1 + skew}
	if skew < 0 {
		b = distuv.Beta{Alpha: 1 - skew, Beta: 1}
	}
	return b.Quantile(u)
}

// ToOrdinal rescales u in [0, 1] to the range, rounds to the nearest integer,
// and clips.
func ToOrdinal(u float64, r types.ScaleRange) int {
	v := int(math.Round(float64(r.Min) + u*float64(r.Width())))
	return r.Clip(v)
}
