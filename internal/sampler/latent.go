// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sampler

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// MaxLatentR bounds the latent coefficients Adjust produces.
	MaxLatentR = 0.9999

	// continuousSteps is the resolution of the staircase that stands in for
	// an unrounded continuous marginal.
	continuousSteps = 64

	// continuousZ limits that staircase to |z| ≤ continuousZ.
	continuousZ = 6.0

	quadNodes      = 32
	bisectionSteps = 50
)

// legendre holds Gauss–Legendre nodes and weights on [0, 1].
var legendreX, legendreW = func() ([]float64, []float64) {
	x := make([]float64, quadNodes)
	w := make([]float64, quadNodes)
	quad.Legendre{}.FixedLocations(x, w, 0, 1)
	return x, w
}()

// steps is a marginal written as a non-decreasing step function of the
// latent standard normal z:
//
//	value(z) = base + Σ jumps[i]·1[z > cuts[i]]
//
// Ordinal marginals are exactly of this form; rounded continuous marginals
// too, up to their clipping ends; unrounded ones are approximated by a fine
// staircase.
type steps struct {
	cuts  []float64
	jumps []float64
}

func (s *steps) add(cut, jump float64) {
	// A cut at ±Inf never fires (or always does) and adds no variance.
	if math.IsInf(cut, 0) || math.IsNaN(cut) || jump == 0 {
		return
	}
	s.cuts = append(s.cuts, cut)
	s.jumps = append(s.jumps, jump)
}

// steps returns the step representation of mg.
func (mg Marginal) steps() steps {
	var s steps
	if mg.Continuous {
		if !(mg.Std > 0) || !(mg.Hi > mg.Lo) {
			return s
		}
		if mg.Integer {
			for v := math.Floor(mg.Lo) + 0.5; v < mg.Hi; v++ {
				if v > mg.Lo {
					s.add((v-mg.Mean)/mg.Std, 1)
				}
			}
			return s
		}
		lo := math.Max((mg.Lo-mg.Mean)/mg.Std, -continuousZ)
		hi := math.Min((mg.Hi-mg.Mean)/mg.Std, continuousZ)
		if !(hi > lo) {
			return s
		}
		dz := (hi - lo) / continuousSteps
		for i := 0; i < continuousSteps; i++ {
			s.add(lo+(float64(i)+0.5)*dz, mg.Std*dz)
		}
		return s
	}

	width := mg.Scale.Width()
	for k := 0; k < width; k++ {
		// ToOrdinal moves to the next value when the reshaped uniform
		// crosses the midpoint between two scale points.
		p := (float64(k) + 0.5) / float64(width)
		s.add(distuv.UnitNormal.Quantile(skewCDF(p, mg.Skew)), 1)
	}
	return s
}

// skewCDF inverts Reshape: the uniform u with Reshape(u, skew) = p.
func skewCDF(p, skew float64) float64 {
	switch {
	case skew > 0:
		return distuv.Beta{Alpha: 1, Beta: 1 + skew}.CDF(p)
	case skew < 0:
		return distuv.Beta{Alpha: 1 - skew, Beta: 1}.CDF(p)
	default:
		return p
	}
}

// variance is Var(value(Z)) for a standard normal Z.
func (s steps) variance() float64 {
	var v float64
	for i, ci := range s.cuts {
		for j, cj := range s.cuts {
			v += s.jumps[i] * s.jumps[j] * (distuv.UnitNormal.CDF(-math.Max(ci, cj)) -
				distuv.UnitNormal.CDF(-ci)*distuv.UnitNormal.CDF(-cj))
		}
	}
	return v
}

// covariance is Cov(a(Z1), b(Z2)) for standard normals with correlation
// rho. Each pair of cuts contributes Φ2(x, y; rho) − Φ(x)Φ(y), written as
//
//	(1/2π) ∫_0^asin(rho) exp(−(x² − 2xy·sinθ + y²) / (2cos²θ)) dθ
//
// and integrated by Gauss–Legendre.
func covariance(a, b steps, rho float64) float64 {
	if rho == 0 || len(a.cuts) == 0 || len(b.cuts) == 0 {
		return 0
	}
	sign := 1.0
	if rho < 0 {
		sign = -1
	}
	h := math.Asin(math.Min(1, math.Abs(rho)))

	var total float64
	for n, x := range legendreX {
		theta := h * x
		sin := sign * math.Sin(theta)
		cos2 := math.Cos(theta) * math.Cos(theta)
		var sum float64
		for i, ca := range a.cuts {
			for j, cb := range b.cuts {
				sum += a.jumps[i] * b.jumps[j] * math.Exp(-(ca*ca-2*ca*cb*sin+cb*cb)/(2*cos2))
			}
		}
		total += h * legendreW[n] * sum
	}
	return sign * total / (2 * math.Pi)
}

// observedCorrelation is the correlation of a(Z1) and b(Z2) at latent rho.
func observedCorrelation(a, b steps, rho float64) float64 {
	va, vb := a.variance(), b.variance()
	if va <= 0 || vb <= 0 {
		return math.NaN()
	}
	return covariance(a, b, rho) / math.Sqrt(va*vb)
}

// latentCorrelation solves observedCorrelation(a, b, rho) = target for rho.
// The observed correlation increases with rho, so bisection converges.
// Targets beyond what the marginals can reach map to ±MaxLatentR, and
// degenerate marginals keep the target unchanged.
func latentCorrelation(target float64, a, b steps) float64 {
	if target == 0 {
		return 0
	}
	va, vb := a.variance(), b.variance()
	if va <= 0 || vb <= 0 {
		return target
	}
	norm := math.Sqrt(va * vb)
	f := func(rho float64) float64 { return covariance(a, b, rho) / norm }

	lo, hi := -MaxLatentR, MaxLatentR
	if target >= f(hi) {
		return hi
	}
	if target <= f(lo) {
		return lo
	}
	for i := 0; i < bisectionSteps; i++ {
		mid := (lo + hi) / 2
		if f(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
