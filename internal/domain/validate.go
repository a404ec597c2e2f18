package domain

// Plausibility limits for advisory validation. Values beyond them are
// reported but never block scoring.
const (
	phRealisticMin = 4.0
	phRealisticMax = 10.0
	phOptimalMin   = 6.5
	phOptimalMax   = 8.5

	hardnessLimit        = 500.0
	solidsLimit          = 1500.0
	chloraminesLimit     = 8.0
	sulfateLimit         = 500.0
	conductivityLimit    = 1500.0
	organicCarbonLimit   = 5.0
	trihalomethanesLimit = 160.0
	turbidityLimit       = 10.0
)

// Warning messages produced by Validate.
const (
	WarnPHUnrealistic   = "pH is outside realistic range for natural water (4-10)"
	WarnPHOutsideWHO    = "pH is outside WHO recommended range (6.5-8.5)"
	WarnHardness        = "Water hardness is extremely high (>500 mg/L)"
	WarnSolids          = "Total Dissolved Solids is extremely high (>1500 ppm)"
	WarnChloramines     = "Chloramines level is extremely high (>8 ppm)"
	WarnSulfate         = "Sulfate level exceeds WHO guideline (>500 mg/L)"
	WarnConductivity    = "Conductivity is extremely high (>1500 μS/cm)"
	WarnOrganicCarbon   = "Organic carbon is extremely high (>5 ppm)"
	WarnTrihalomethanes = "Trihalomethanes significantly exceed EPA limit (>160 μg/L)"
	WarnTurbidity       = "Turbidity is extremely high (>10 NTU)"
)

// limitCheck is a single upper-bound plausibility rule.
type limitCheck struct {
	param   Parameter
	limit   float64
	message string
}

var limitChecks = []limitCheck{
	{ParamHardness, hardnessLimit, WarnHardness},
	{ParamSolids, solidsLimit, WarnSolids},
	{ParamChloramines, chloraminesLimit, WarnChloramines},
	{ParamSulfate, sulfateLimit, WarnSulfate},
	{ParamConductivity, conductivityLimit, WarnConductivity},
	{ParamOrganicCarbon, organicCarbonLimit, WarnOrganicCarbon},
	{ParamTrihalomethanes, trihalomethanesLimit, WarnTrihalomethanes},
	{ParamTurbidity, turbidityLimit, WarnTurbidity},
}

// Validate checks a measurement against plausibility bounds based on WHO and
// EPA drinking water standards and returns advisory warnings in a fixed
// order. The result is empty when nothing is out of range.
//
// The pH checks are exclusive: a value outside the realistic 4-10 range
// reports only the hard warning, never the WHO range warning as well.
func Validate(m Measurement) []string {
	warnings := []string{}

	switch {
	case m.PH < phRealisticMin || m.PH > phRealisticMax:
		warnings = append(warnings, WarnPHUnrealistic)
	case m.PH < phOptimalMin || m.PH > phOptimalMax:
		warnings = append(warnings, WarnPHOutsideWHO)
	}

	for _, c := range limitChecks {
		if m.Value(c.param) > c.limit {
			warnings = append(warnings, c.message)
		}
	}

	return warnings
}
