package domain

// Parameter identifies one of the nine water-chemistry measurements.
// The value is the wire key used for raw parameters in requests and reports.
type Parameter string

const (
	ParamPH              Parameter = "ph"
	ParamHardness        Parameter = "hardness"
	ParamSolids          Parameter = "solids"
	ParamChloramines     Parameter = "chloramines"
	ParamSulfate         Parameter = "sulfate"
	ParamConductivity    Parameter = "conductivity"
	ParamOrganicCarbon   Parameter = "organic_carbon"
	ParamTrihalomethanes Parameter = "trihalomethanes"
	ParamTurbidity       Parameter = "turbidity"
)

// Parameters lists every parameter in canonical order. Statuses, reports,
// and error reporting all follow this order.
var Parameters = []Parameter{
	ParamPH,
	ParamHardness,
	ParamSolids,
	ParamChloramines,
	ParamSulfate,
	ParamConductivity,
	ParamOrganicCarbon,
	ParamTrihalomethanes,
	ParamTurbidity,
}

// ParameterInfo is the reference data for a parameter: how it is labelled,
// its unit, the weight it carries in the score, the optimal range in words,
// and the default value offered by input forms.
type ParameterInfo struct {
	Key          Parameter `json:"key"`
	Label        string    `json:"label"`
	Unit         string    `json:"unit"`
	Weight       float64   `json:"weight"`
	OptimalRange string    `json:"optimal_range"`
	Default      float64   `json:"default"`
	Standard     string    `json:"standard"`
}

var parameterInfo = map[Parameter]ParameterInfo{
	ParamPH: {
		Key: ParamPH, Label: "pH", Unit: "", Weight: 0.128,
		OptimalRange: "6.5-8.5", Default: 7.0, Standard: "WHO",
	},
	ParamHardness: {
		Key: ParamHardness, Label: "Hardness", Unit: "mg/L", Weight: 0.119,
		OptimalRange: "<300 mg/L", Default: 200.0, Standard: "soft to moderately hard",
	},
	ParamSolids: {
		Key: ParamSolids, Label: "TDS", Unit: "ppm", Weight: 0.114,
		OptimalRange: "<500 ppm", Default: 400.0, Standard: "EPA secondary standard",
	},
	ParamChloramines: {
		Key: ParamChloramines, Label: "Chloramines", Unit: "ppm", Weight: 0.108,
		OptimalRange: "<4 ppm", Default: 3.0, Standard: "EPA maximum contaminant level",
	},
	ParamSulfate: {
		Key: ParamSulfate, Label: "Sulfate", Unit: "mg/L", Weight: 0.142,
		OptimalRange: "<250 mg/L", Default: 200.0, Standard: "EPA secondary standard",
	},
	ParamConductivity: {
		Key: ParamConductivity, Label: "Conductivity", Unit: "μS/cm", Weight: 0.102,
		OptimalRange: "<400 μS/cm", Default: 350.0, Standard: "typical for potable water",
	},
	ParamOrganicCarbon: {
		Key: ParamOrganicCarbon, Label: "Organic Carbon", Unit: "ppm", Weight: 0.098,
		OptimalRange: "<2 ppm", Default: 1.5, Standard: "typical for treated water",
	},
	ParamTrihalomethanes: {
		Key: ParamTrihalomethanes, Label: "Trihalomethanes", Unit: "μg/L", Weight: 0.095,
		OptimalRange: "<80 μg/L", Default: 60.0, Standard: "EPA maximum",
	},
	ParamTurbidity: {
		Key: ParamTurbidity, Label: "Turbidity", Unit: "NTU", Weight: 0.094,
		OptimalRange: "<5 NTU", Default: 3.0, Standard: "WHO guideline",
	},
}

// Info returns the reference data for p. Unknown parameters return the zero value.
func (p Parameter) Info() ParameterInfo {
	return parameterInfo[p]
}

// Label returns the display name used for per-parameter status, e.g. "TDS".
func (p Parameter) Label() string {
	return parameterInfo[p].Label
}

// Unit returns the measurement unit, empty for pH.
func (p Parameter) Unit() string {
	return parameterInfo[p].Unit
}

// Weight returns the parameter's weight in the score.
func (p Parameter) Weight() float64 {
	return parameterInfo[p].Weight
}

// Valid reports whether p is one of the nine known parameters.
func (p Parameter) Valid() bool {
	_, ok := parameterInfo[p]
	return ok
}

// ParameterByLabel resolves a display label back to its parameter.
func ParameterByLabel(label string) (Parameter, bool) {
	for _, p := range Parameters {
		if parameterInfo[p].Label == label {
			return p, true
		}
	}
	return "", false
}

// Reference returns the reference table in canonical order.
func Reference() []ParameterInfo {
	out := make([]ParameterInfo, len(Parameters))
	for i, p := range Parameters {
		out[i] = parameterInfo[p]
	}
	return out
}

// DefaultMeasurement returns the values input forms start from.
func DefaultMeasurement() Measurement {
	var m Measurement
	for _, p := range Parameters {
		m.set(p, parameterInfo[p].Default)
	}
	return m
}
