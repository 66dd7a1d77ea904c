// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ScoringRule selects how item or subscale values aggregate into a score.
type ScoringRule string

const (
	ScoreMean ScoringRule = "mean"
	ScoreSum  ScoringRule = "sum"
)

// Valid reports whether r names a known rule. The empty rule is treated as mean.
func (r ScoringRule) Valid() bool {
	return r == "" || r == ScoreMean || r == ScoreSum
}

// ScaleRange is the inclusive ordinal range of a Likert item (e.g. 1-5).
type ScaleRange struct {
	// Min is the lowest valid response value.
	Min int `json:"min" yaml:"min" mapstructure:"min"`

	// Max is the highest valid response value.
	Max int `json:"max" yaml:"max" mapstructure:"max"`
}

// Width returns Max - Min.
func (r ScaleRange) Width() int {
	return r.Max - r.Min
}

// Clip bounds v to [Min, Max].
func (r ScaleRange) Clip(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Reverse maps a reverse-keyed answer onto the keyed direction:
// Max + Min - v. Applying it twice returns v.
func (r ScaleRange) Reverse(v int) int {
	return r.Max + r.Min - v
}

// Contains reports whether v lies in [Min, Max].
func (r ScaleRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Item is a single Likert question belonging to exactly one subscale.
type Item struct {
	// ID is unique across all instruments in a study (e.g. "EQ01").
	ID string `json:"id" yaml:"id"`

	// Subscale is the name of the owning subscale within the instrument.
	Subscale string `json:"subscale" yaml:"subscale"`

	// Reverse marks a reverse-keyed item; its raw value is inverted
	// (Max + Min - value) before scoring.
	Reverse bool `json:"reverse,omitempty" yaml:"reverse,omitempty"`

	// Text is the optional question wording, carried into the codebook.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Subscale describes one partition of an instrument's items.
type Subscale struct {
	// Name is unique within the instrument.
	Name string `json:"name" yaml:"name"`

	// Rule aggregates the subscale's items (default mean).
	Rule ScoringRule `json:"rule,omitempty" yaml:"rule,omitempty"`

	// NoiseScale is the per-item Gaussian noise, as a fraction of the range
	// width, used when expanding the subscale score into items. Zero uses
	// the simulation default.
	NoiseScale float64 `json:"noise_scale,omitempty" yaml:"noise_scale,omitempty"`

	// Skew reshapes the subscale's sampled marginal. Zero leaves it symmetric.
	Skew float64 `json:"skew,omitempty" yaml:"skew,omitempty"`
}

// Instrument is the specification of a questionnaire (a construct with its
// subscales and items).
type Instrument struct {
	// Name identifies the instrument and its total-score variable (e.g. "EQI").
	Name string `json:"name" yaml:"name"`

	// Description is free text carried into the codebook.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Scale is the response range shared by all items of the instrument.
	Scale ScaleRange `json:"scale" yaml:"scale"`

	// Subscales lists the partition in order.
	Subscales []Subscale `json:"subscales" yaml:"subscales"`

	// Items lists the questions in administration order.
	Items []Item `json:"items" yaml:"items"`

	// TotalRule aggregates subscale scores into the total (default mean).
	TotalRule ScoringRule `json:"total_rule,omitempty" yaml:"total_rule,omitempty"`
}

// SubscaleVar returns the variable name of a subscale score: "INSTR.SUB".
func SubscaleVar(instrument, subscale string) string {
	return instrument + "." + subscale
}

// ItemsOf returns the instrument's items that belong to subscale, in order.
func (in Instrument) ItemsOf(subscale string) []Item {
	var out []Item
	for _, it := range in.Items {
		if it.Subscale == subscale {
			out = append(out, it)
		}
	}
	return out
}

// ItemIDs returns every item id of the instrument in order.
func (in Instrument) ItemIDs() []string {
	ids := make([]string, len(in.Items))
	for i, it := range in.Items {
		ids[i] = it.ID
	}
	return ids
}

// ReverseSet returns the ids of reverse-keyed items.
func (in Instrument) ReverseSet() map[string]bool {
	set := make(map[string]bool)
	for _, it := range in.Items {
		if it.Reverse {
			set[it.ID] = true
		}
	}
	return set
}
