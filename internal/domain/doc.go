// Package domain models drinking-water chemistry measurements and the
// threshold-based potability score derived from them.
//
// # Parameters
//
// Nine measurements make up a sample. Each carries a weight taken from
// published feature-importance research and a single optimal threshold drawn
// from WHO and EPA drinking water guidance:
//
//	pH               0.128   6.5 ≤ x ≤ 8.5        (WHO)
//	Hardness         0.119   x < 300 mg/L         (soft to moderately hard)
//	TDS              0.114   x < 500 ppm          (EPA secondary standard)
//	Chloramines      0.108   x < 4 ppm            (EPA maximum)
//	Sulfate          0.142   x < 250 mg/L         (EPA secondary standard)
//	Conductivity     0.102   x < 400 μS/cm        (typical for potable water)
//	Organic Carbon   0.098   x < 2 ppm            (typical for treated water)
//	Trihalomethanes  0.095   x < 80 μg/L          (EPA maximum)
//	Turbidity        0.094   x < 5 NTU            (WHO guideline)
//
// # Score
//
// A parameter inside its threshold contributes weight × 100. Outside it
// contributes weight × a reduced factor:
//
//	pH, Sulfate, Trihalomethanes            50
//	Hardness, Chloramines, Turbidity        60
//	Conductivity, Organic Carbon            70
//	TDS                                     70 below 1000 ppm, 40 at or above
//
// The nine contributions are summed and divided by 9, the number of
// parameters. The weights already sum to 1.0, so this caps the score near
// 11.1; the divisor is nonetheless the documented behavior of the tool and is
// kept for compatibility. [NormalizeWeightSum] is available for callers that
// want the weight-sum divisor instead.
//
// The score is rounded to one decimal and graded:
//
//	> 85 Excellent | > 70 Good | > 50 Fair | otherwise Poor
//
// A sample is potable when its rounded score exceeds 70.
//
// # Validation
//
// [Validate] flags physically implausible or extreme values (pH outside 4-10,
// hardness above 500 mg/L, and so on). Its warnings are advisory: scoring
// proceeds regardless. Input bounds (no negative values, pH at most 14) are
// reported by [OutOfBounds] for the input layer to enforce; scoring itself
// accepts any finite value.
package domain
