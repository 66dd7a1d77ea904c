// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CarelessKind records which contamination a respondent received, if any.
type CarelessKind string

const (
	CarelessNone         CarelessKind = ""
	CarelessStraightLine CarelessKind = "straight_line"
	CarelessRandom       CarelessKind = "random"
)

// Respondent is one simulated (or externally supplied) survey participant.
type Respondent struct {
	// ID is a stable identifier, deterministic for a given seed and index.
	ID string `json:"id" yaml:"id"`

	// Demographics maps a demographic variable to its value. Numeric
	// variables hold a float64, categorical variables a string.
	Demographics map[string]any `json:"demographics,omitempty" yaml:"demographics,omitempty"`

	// Responses maps item id to the raw ordinal answer. A nil value marks the
	// cell as missing; the key is always present for every administered item.
	Responses map[string]*int `json:"responses" yaml:"responses"`

	// Scores maps subscale ("INSTR.SUB") and total ("INSTR") variables to the
	// derived score. A nil value means the score could not be computed.
	Scores map[string]*float64 `json:"scores,omitempty" yaml:"scores,omitempty"`

	// Careless is set when the noise injector overwrote this respondent.
	Careless CarelessKind `json:"careless,omitempty" yaml:"careless,omitempty"`
}

// Dataset is a batch of respondents administered the same instruments.
type Dataset struct {
	// Instruments are the specifications the responses were collected with.
	Instruments []Instrument `json:"instruments" yaml:"instruments"`

	// Demographics lists the demographic variable names in column order.
	Demographics []string `json:"demographics,omitempty" yaml:"demographics,omitempty"`

	// Respondents holds one entry per participant.
	Respondents []Respondent `json:"respondents" yaml:"respondents"`
}

// ItemIDs returns the ids of all items across instruments in column order.
func (d *Dataset) ItemIDs() []string {
	var ids []string
	for _, in := range d.Instruments {
		ids = append(ids, in.ItemIDs()...)
	}
	return ids
}

// ScoreVars returns every subscale and total variable in column order:
// each instrument's subscales followed by its total.
func (d *Dataset) ScoreVars() []string {
	var vars []string
	for _, in := range d.Instruments {
		for _, s := range in.Subscales {
			vars = append(vars, SubscaleVar(in.Name, s.Name))
		}
		vars = append(vars, in.Name)
	}
	return vars
}

// ScaleOf returns the response range for the instrument owning a score or
// item variable. The bool is false for unknown names.
func (d *Dataset) ScaleOf(instrument string) (ScaleRange, bool) {
	for _, in := range d.Instruments {
		if in.Name == instrument {
			return in.Scale, true
		}
	}
	return ScaleRange{}, false
}

// Column returns the values of a variable across respondents. Scores,
// numeric demographics, and items are looked up in that order. Missing cells
// are reported through the ok slice.
func (d *Dataset) Column(name string) (values []float64, ok []bool) {
	values = make([]float64, len(d.Respondents))
	ok = make([]bool, len(d.Respondents))
	for i, r := range d.Respondents {
		if s, found := r.Scores[name]; found {
			if s != nil {
				values[i], ok[i] = *s, true
			}
			continue
		}
		if v, found := r.Demographics[name]; found {
			if f, isNum := v.(float64); isNum {
				values[i], ok[i] = f, true
			}
			continue
		}
		if v, found := r.Responses[name]; found && v != nil {
			values[i], ok[i] = float64(*v), true
		}
	}
	return values, ok
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 {
	return &v
}

// Clone returns a deep copy of d's respondents. Instruments and demographic
// names are shared since they are never mutated after loading.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Instruments:  d.Instruments,
		Demographics: d.Demographics,
		Respondents:  make([]Respondent, len(d.Respondents)),
	}
	for i, r := range d.Respondents {
		c := Respondent{ID: r.ID, Careless: r.Careless}
		if r.Demographics != nil {
			c.Demographics = make(map[string]any, len(r.Demographics))
			for k, v := range r.Demographics {
				c.Demographics[k] = v
			}
		}
		if r.Responses != nil {
			c.Responses = make(map[string]*int, len(r.Responses))
			for k, v := range r.Responses {
				if v != nil {
					v = IntPtr(*v)
				}
				c.Responses[k] = v
			}
		}
		if r.Scores != nil {
			c.Scores = make(map[string]*float64, len(r.Scores))
			for k, v := range r.Scores {
				if v != nil {
					v = FloatPtr(*v)
				}
				c.Scores[k] = v
			}
		}
		out.Respondents[i] = c
	}
	return out
}
