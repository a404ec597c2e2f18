package domain

// Measurement is a complete set of the nine water-chemistry values.
// It has no identity beyond its values and is treated as immutable once scored.
type Measurement struct {
	PH              float64 `json:"ph"`
	Hardness        float64 `json:"hardness"`
	Solids          float64 `json:"solids"`
	Chloramines     float64 `json:"chloramines"`
	Sulfate         float64 `json:"sulfate"`
	Conductivity    float64 `json:"conductivity"`
	OrganicCarbon   float64 `json:"organic_carbon"`
	Trihalomethanes float64 `json:"trihalomethanes"`
	Turbidity       float64 `json:"turbidity"`
}

// Value returns the measured value for p. Unknown parameters return 0.
func (m Measurement) Value(p Parameter) float64 {
	switch p {
	case ParamPH:
		return m.PH
	case ParamHardness:
		return m.Hardness
	case ParamSolids:
		return m.Solids
	case ParamChloramines:
		return m.Chloramines
	case ParamSulfate:
		return m.Sulfate
	case ParamConductivity:
		return m.Conductivity
	case ParamOrganicCarbon:
		return m.OrganicCarbon
	case ParamTrihalomethanes:
		return m.Trihalomethanes
	case ParamTurbidity:
		return m.Turbidity
	default:
		return 0
	}
}

func (m *Measurement) set(p Parameter, v float64) {
	switch p {
	case ParamPH:
		m.PH = v
	case ParamHardness:
		m.Hardness = v
	case ParamSolids:
		m.Solids = v
	case ParamChloramines:
		m.Chloramines = v
	case ParamSulfate:
		m.Sulfate = v
	case ParamConductivity:
		m.Conductivity = v
	case ParamOrganicCarbon:
		m.OrganicCarbon = v
	case ParamTrihalomethanes:
		m.Trihalomethanes = v
	case ParamTurbidity:
		m.Turbidity = v
	}
}

// RawMeasurement is the wire form of a measurement in which any field may be
// absent. Absent fields are nil.
type RawMeasurement struct {
	PH              *float64 `json:"ph"`
	Hardness        *float64 `json:"hardness"`
	Solids          *float64 `json:"solids"`
	Chloramines     *float64 `json:"chloramines"`
	Sulfate         *float64 `json:"sulfate"`
	Conductivity    *float64 `json:"conductivity"`
	OrganicCarbon   *float64 `json:"organic_carbon"`
	Trihalomethanes *float64 `json:"trihalomethanes"`
	Turbidity       *float64 `json:"turbidity"`
}

// RawFrom wraps a complete measurement in its wire form.
func RawFrom(m Measurement) RawMeasurement {
	var raw RawMeasurement
	for _, p := range Parameters {
		v := m.Value(p)
		*raw.field(p) = &v
	}
	return raw
}

func (r *RawMeasurement) field(p Parameter) **float64 {
	switch p {
	case ParamPH:
		return &r.PH
	case ParamHardness:
		return &r.Hardness
	case ParamSolids:
		return &r.Solids
	case ParamChloramines:
		return &r.Chloramines
	case ParamSulfate:
		return &r.Sulfate
	case ParamConductivity:
		return &r.Conductivity
	case ParamOrganicCarbon:
		return &r.OrganicCarbon
	case ParamTrihalomethanes:
		return &r.Trihalomethanes
	case ParamTurbidity:
		return &r.Turbidity
	default:
		return new(*float64)
	}
}

// Get returns the value for p and whether it was present.
func (r RawMeasurement) Get(p Parameter) (float64, bool) {
	v := *r.field(p)
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Set stores v for p.
func (r *RawMeasurement) Set(p Parameter, v float64) {
	*r.field(p) = &v
}

// Missing returns the absent parameters in canonical order.
func (r RawMeasurement) Missing() []Parameter {
	var out []Parameter
	for _, p := range Parameters {
		if _, ok := r.Get(p); !ok {
			out = append(out, p)
		}
	}
	return out
}

// WithDefaults returns a copy in which every absent field holds the form
// default for its parameter. Defaults are an input-layer concern; the scorer
// never applies them.
func (r RawMeasurement) WithDefaults() RawMeasurement {
	out := r
	for _, p := range r.Missing() {
		out.Set(p, parameterInfo[p].Default)
	}
	return out
}

// Measurement converts the wire form into a complete Measurement. The first
// absent parameter in canonical order yields a missing-field ScoringError.
func (r RawMeasurement) Measurement() (Measurement, error) {
	var m Measurement
	for _, p := range Parameters {
		v, ok := r.Get(p)
		if !ok {
			return Measurement{}, &ScoringError{Kind: ErrKindMissingField, Parameter: p}
		}
		m.set(p, v)
	}
	return m, nil
}
