// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultTolerance is the accepted absolute deviation between achieved and
// target correlation when a TargetCorrelation leaves Tolerance unset.
const DefaultTolerance = 0.15

// TargetCorrelation is a desired correlation between two variables. Variables
// are instrument totals ("EQI"), subscales ("EQI.Wellbeing"), or numeric
// demographic covariates ("age"). The pair is unordered.
type TargetCorrelation struct {
	// A is the first variable name.
	A string `json:"a" yaml:"a"`

	// B is the second variable name.
	B string `json:"b" yaml:"b"`

	// R is the signed target coefficient in [-1, 1].
	R float64 `json:"r" yaml:"r"`

	// Tolerance is the accepted |achieved - R|. Zero uses DefaultTolerance.
	Tolerance float64 `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`

	// Hypothesis optionally links the entry to a declared hypothesis id.
	Hypothesis string `json:"hypothesis,omitempty" yaml:"hypothesis,omitempty"`
}

// Tol returns the effective tolerance.
func (t TargetCorrelation) Tol() float64 {
	if t.Tolerance <= 0 {
		return DefaultTolerance
	}
	return t.Tolerance
}

// PairKey returns an order-independent key for the pair.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "~" + b
}

// CorrelationMatrix is a symmetric correlation structure over named variables.
// Values is row-major with len(Vars)*len(Vars) entries.
type CorrelationMatrix struct {
	// Vars lists the variable names in matrix order.
	Vars []string `json:"vars" yaml:"vars"`

	// Values holds the coefficients row-major.
	Values []float64 `json:"values" yaml:"values"`

	// Corrected is true when the matrix was projected to the nearest PSD
	// matrix by eigenvalue clipping.
	Corrected bool `json:"corrected,omitempty" yaml:"corrected,omitempty"`

	// MinEigenvalue is the smallest eigenvalue of the assembled matrix before
	// any correction.
	MinEigenvalue float64 `json:"min_eigenvalue" yaml:"min_eigenvalue"`
}

// Size returns the number of variables.
func (m *CorrelationMatrix) Size() int {
	return len(m.Vars)
}

// At returns the coefficient at row i, column j.
func (m *CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i*len(m.Vars)+j]
}

// Index returns the position of name in Vars, or -1.
func (m *CorrelationMatrix) Index(name string) int {
	for i, v := range m.Vars {
		if v == name {
			return i
		}
	}
	return -1
}

// Get returns the coefficient between two named variables.
func (m *CorrelationMatrix) Get(a, b string) (float64, bool) {
	i, j := m.Index(a), m.Index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.At(i, j), true
}
