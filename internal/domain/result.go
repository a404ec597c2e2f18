package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Status tags a single parameter as within or outside its optimal range.
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
)

// Quality is the overall grade derived from the confidence score.
type Quality string

const (
	QualityExcellent Quality = "Excellent"
	QualityGood      Quality = "Good"
	QualityFair      Quality = "Fair"
	QualityPoor      Quality = "Poor"
)

// ParameterStatus is the per-parameter verdict together with the raw value
// and its unit.
type ParameterStatus struct {
	Parameter Parameter `json:"-"`
	Status    Status    `json:"status"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}

// Label returns the display name of the parameter.
func (s ParameterStatus) Label() string {
	return s.Parameter.Label()
}

// Statuses holds one ParameterStatus per parameter in canonical order.
// It encodes as a JSON object keyed by label, preserving that order.
type Statuses []ParameterStatus

func (s Statuses) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, st := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(st.Label())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(st)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Statuses) UnmarshalJSON(data []byte) error {
	var byLabel map[string]ParameterStatus
	if err := json.Unmarshal(data, &byLabel); err != nil {
		return err
	}
	out := make(Statuses, 0, len(byLabel))
	for label, st := range byLabel {
		p, ok := ParameterByLabel(label)
		if !ok {
			return fmt.Errorf("unknown parameter label %q", label)
		}
		st.Parameter = p
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		return canonicalIndex(out[i].Parameter) < canonicalIndex(out[j].Parameter)
	})
	*s = out
	return nil
}

func canonicalIndex(p Parameter) int {
	for i, q := range Parameters {
		if q == p {
			return i
		}
	}
	return len(Parameters)
}

// ScoreResult is the outcome of scoring one measurement.
type ScoreResult struct {
	Potable    bool     `json:"potable"`
	Confidence float64  `json:"confidence"`
	Quality    Quality  `json:"quality"`
	Parameters Statuses `json:"parameters"`
}

// Status returns the verdict for p.
func (r ScoreResult) Status(p Parameter) (ParameterStatus, bool) {
	for _, st := range r.Parameters {
		if st.Parameter == p {
			return st, true
		}
	}
	return ParameterStatus{}, false
}

// StatusByLabel maps each parameter label to its status tag.
func (r ScoreResult) StatusByLabel() map[string]Status {
	out := make(map[string]Status, len(r.Parameters))
	for _, st := range r.Parameters {
		out[st.Label()] = st.Status
	}
	return out
}

// Issues returns the parameters outside their optimal range, in canonical order.
func (r ScoreResult) Issues() []ParameterStatus {
	var out []ParameterStatus
	for _, st := range r.Parameters {
		if st.Status == StatusWarning {
			out = append(out, st)
		}
	}
	return out
}

// Verdict returns "POTABLE" or "NOT POTABLE".
func (r ScoreResult) Verdict() string {
	if r.Potable {
		return "POTABLE"
	}
	return "NOT POTABLE"
}
