// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DemographicKind selects the distribution of a demographic variable.
type DemographicKind string

const (
	DemographicNumeric     DemographicKind = "numeric"
	DemographicCategorical DemographicKind = "categorical"
)

// Category is one level of a categorical demographic with its sampling weight.
type Category struct {
	// Name is the category label written to the data tables.
	Name string `json:"name" yaml:"name"`

	// Weight is the sampling probability. Weights of a variable sum to 1.
	Weight float64 `json:"weight" yaml:"weight"`
}

// Demographic describes how to generate one demographic variable.
type Demographic struct {
	// Name is the column name (e.g. "age", "gender").
	Name string `json:"name" yaml:"name"`

	// Kind is numeric (truncated normal) or categorical.
	Kind DemographicKind `json:"kind" yaml:"kind"`

	// Mean and Std parameterize a numeric variable.
	Mean float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std  float64 `json:"std,omitempty" yaml:"std,omitempty"`

	// Min and Max truncate a numeric variable.
	Min float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max float64 `json:"max,omitempty" yaml:"max,omitempty"`

	// Integer rounds a numeric variable (e.g. age in whole years).
	Integer bool `json:"integer,omitempty" yaml:"integer,omitempty"`

	// Categories lists the levels of a categorical variable.
	Categories []Category `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// TestType identifies the statistical test behind a hypothesis.
type TestType string

const (
	TestCorrelation TestType = "correlation"
	TestTwoGroup    TestType = "two_group"
)

// Hypothesis is a declared test whose power the validation gate estimates.
type Hypothesis struct {
	// ID is a short label such as "H1".
	ID string `json:"id" yaml:"id"`

	// Test is correlation or two_group.
	Test TestType `json:"test" yaml:"test"`

	// EffectSize is the expected r (correlation) or Cohen's d (two_group).
	EffectSize float64 `json:"effect_size" yaml:"effect_size"`

	// Alpha is the two-tailed significance level (default 0.05).
	Alpha float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`

	// Primary marks a hypothesis whose power drives the verdict.
	Primary bool `json:"primary,omitempty" yaml:"primary,omitempty"`

	// Variables names the two variables a correlation hypothesis relates.
	// When empty, the first target linked to the hypothesis supplies them.
	Variables []string `json:"variables,omitempty" yaml:"variables,omitempty"`

	// Outcome is the score compared by a two_group hypothesis.
	Outcome string `json:"outcome,omitempty" yaml:"outcome,omitempty"`

	// Group is the categorical demographic splitting the sample.
	Group string `json:"group,omitempty" yaml:"group,omitempty"`

	// Levels picks the two categories to compare, first minus second.
	// Optional when the group has exactly two.
	Levels []string `json:"levels,omitempty" yaml:"levels,omitempty"`

	// Description is free text carried into the report.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Study bundles every immutable input of a simulation run.
type Study struct {
	// Title is a free-text label for the study.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Instruments lists the questionnaires administered.
	Instruments []Instrument `json:"instruments" yaml:"instruments"`

	// Targets lists the desired correlations.
	Targets []TargetCorrelation `json:"targets" yaml:"targets"`

	// Demographics lists the demographic variables to generate.
	Demographics []Demographic `json:"demographics,omitempty" yaml:"demographics,omitempty"`

	// Hypotheses lists the tests to estimate power for.
	Hypotheses []Hypothesis `json:"hypotheses,omitempty" yaml:"hypotheses,omitempty"`
}
