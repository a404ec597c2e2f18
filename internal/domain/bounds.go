package domain

// Input bounds enforced at the entry layer. Scoring itself accepts any
// finite value; these only reject what a form would never let through.
const (
	InputMin = 0.0
	PHMax    = 14.0
)

// OutOfBounds returns the supplied parameters whose values fall below
// InputMin, or pH above PHMax, in canonical order. Absent fields are skipped.
func OutOfBounds(r RawMeasurement) []Parameter {
	var out []Parameter
	for _, p := range Parameters {
		v, ok := r.Get(p)
		if !ok {
			continue
		}
		if v < InputMin || (p == ParamPH && v > PHMax) {
			out = append(out, p)
		}
	}
	return out
}
