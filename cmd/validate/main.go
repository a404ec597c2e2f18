// Command validate re-checks a scored fixture written by genmock: it re-scores
// every record with the current domain package, verifies the grade and
// potability rules, checks warnings and per-parameter statuses, renders each
// record's report, and (optionally) cross-references the source CSV.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -fixture data/mock/water_quality_fixture.json \
//	  -csv data/water_potability.csv
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/couchcryptid/water-quality-service/internal/dataset"
	"github.com/couchcryptid/water-quality-service/internal/domain"
	"github.com/couchcryptid/water-quality-service/internal/history"
	"github.com/couchcryptid/water-quality-service/internal/report"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixturePath := flag.String("fixture", "", "path to the scored JSON fixture")
	csvPath := flag.String("csv", "", "optional path to the source potability CSV")
	flag.Parse()

	if *fixturePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*fixturePath, *csvPath); code != 0 {
		os.Exit(code)
	}
}

func run(fixturePath, csvPath string) int {
	fmt.Println("=== Water Quality Fixture Validation ===")
	fmt.Println()

	fx, err := loadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	scorer, err := domain.NewScorer(fx.Normalization)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: fixture normalization: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRescore(fx, scorer),
		validateGrades(fx),
		validateStatuses(fx),
		validateWarnings(fx),
		validateReports(fx),
	}

	if csvPath != "" {
		samples, err := loadSamples(csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load source CSV: %v\n", err)
			return 1
		}
		phases = append(phases, validateSourceParity(fx, samples))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d (normalization=%s)\n", len(fx.Records), fx.Normalization)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadFixture(path string) (dataset.Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dataset.Fixture{}, err
	}
	var fx dataset.Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return dataset.Fixture{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(fx.Records) == 0 {
		return dataset.Fixture{}, fmt.Errorf("no records in %s", path)
	}
	return fx, nil
}

func loadSamples(path string) (map[int]dataset.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	samples, err := dataset.ReadCSV(f)
	if err != nil {
		return nil, err
	}
	byRow := make(map[int]dataset.Sample, len(samples))
	for _, s := range samples {
		byRow[s.Row] = s
	}
	return byRow, nil
}

// ── Phases ──

func validateRescore(fx dataset.Fixture, scorer *domain.Scorer) *phase {
	p := &phase{name: "Scores reproduce"}
	for _, r := range fx.Records {
		got, err := scorer.Score(r.Data)
		if err != nil {
			p.errorf("row %d: %v", r.Row, err)
			continue
		}
		if diff := cmp.Diff(r.Result, got); diff != "" {
			p.errorf("row %d: result mismatch (-fixture +rescored):\n%s", r.Row, diff)
		}
	}
	return p
}

func validateGrades(fx dataset.Fixture) *phase {
	p := &phase{name: "Grade and potability thresholds"}
	for _, r := range fx.Records {
		c := r.Result.Confidence
		if c < 0 || c > 100 || math.IsNaN(c) {
			p.errorf("row %d: confidence %v outside [0,100]", r.Row, c)
		}
		if c != math.Round(c*10)/10 {
			p.errorf("row %d: confidence %v not rounded to one decimal", r.Row, c)
		}
		if r.Result.Potable != (c > domain.PotableThreshold) {
			p.errorf("row %d: potable=%t at confidence %.1f", r.Row, r.Result.Potable, c)
		}
		if want := expectedQuality(c); r.Result.Quality != want {
			p.errorf("row %d: quality %s at confidence %.1f, want %s", r.Row, r.Result.Quality, c, want)
		}
	}
	return p
}

func expectedQuality(c float64) domain.Quality {
	switch {
	case c > domain.ExcellentThreshold:
		return domain.QualityExcellent
	case c > domain.PotableThreshold:
		return domain.QualityGood
	case c > domain.FairThreshold:
		return domain.QualityFair
	default:
		return domain.QualityPoor
	}
}

func validateStatuses(fx dataset.Fixture) *phase {
	p := &phase{name: "Per-parameter statuses"}
	for _, r := range fx.Records {
		if len(r.Result.Parameters) != len(domain.Parameters) {
			p.errorf("row %d: %d statuses, want %d", r.Row, len(r.Result.Parameters), len(domain.Parameters))
			continue
		}
		for i, st := range r.Result.Parameters {
			want := domain.Parameters[i]
			if st.Parameter != want {
				p.errorf("row %d: status %d is %s, want %s", r.Row, i, st.Parameter, want)
				continue
			}
			if !floatEq(st.Value, r.Data.Value(want)) {
				p.errorf("row %d: %s status value %v, data %v", r.Row, want.Label(), st.Value, r.Data.Value(want))
			}
			if st.Unit != want.Unit() {
				p.errorf("row %d: %s unit %q, want %q", r.Row, want.Label(), st.Unit, want.Unit())
			}
			if st.Status != domain.StatusGood && st.Status != domain.StatusWarning {
				p.errorf("row %d: %s has unknown status %q", r.Row, want.Label(), st.Status)
			}
		}
	}
	return p
}

func validateWarnings(fx dataset.Fixture) *phase {
	p := &phase{name: "Validation warnings reproduce"}
	for _, r := range fx.Records {
		got := domain.Validate(r.Data)
		if diff := cmp.Diff(r.Warnings, got); diff != "" {
			p.errorf("row %d: warnings mismatch (-fixture +revalidated):\n%s", r.Row, diff)
		}
	}
	return p
}

func validateReports(fx dataset.Fixture) *phase {
	p := &phase{name: "Reports render"}
	for _, r := range fx.Records {
		e := history.Entry{ID: uuid.New(), Timestamp: fx.GeneratedAt, Measurement: r.Data, Result: r.Result}

		data, err := report.Render(report.FormatJSON, e)
		if err != nil {
			p.errorf("row %d: json report: %v", r.Row, err)
			continue
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			p.errorf("row %d: json report does not parse: %v", r.Row, err)
			continue
		}
		if want := fmt.Sprintf("%.1f%%", r.Result.Confidence); doc["Confidence Score"] != want {
			p.errorf("row %d: confidence score %v, want %s", r.Row, doc["Confidence Score"], want)
		}
		if doc["Result"] != r.Result.Verdict() {
			p.errorf("row %d: result %v, want %s", r.Row, doc["Result"], r.Result.Verdict())
		}

		data, err = report.Render(report.FormatCSV, e)
		if err != nil {
			p.errorf("row %d: csv report: %v", r.Row, err)
			continue
		}
		if lines := bytes.Count(data, []byte("\n")); lines != 2 {
			p.errorf("row %d: csv report has %d lines, want 2", r.Row, lines)
		}
		if !strings.Contains(string(data), ","+r.Result.Verdict()+",") {
			p.errorf("row %d: csv report missing verdict", r.Row)
		}
	}
	return p
}

func validateSourceParity(fx dataset.Fixture, samples map[int]dataset.Sample) *phase {
	p := &phase{name: "Source CSV parity"}
	for _, r := range fx.Records {
		s, ok := samples[r.Row]
		if !ok {
			p.errorf("row %d: not in source CSV", r.Row)
			continue
		}
		defaulted := make(map[domain.Parameter]bool, len(r.Defaulted))
		for _, d := range r.Defaulted {
			defaulted[d] = true
		}
		for _, param := range domain.Parameters {
			v, present := s.Raw.Get(param)
			switch {
			case defaulted[param] && present:
				p.errorf("row %d: %s marked defaulted but present in source", r.Row, param)
			case defaulted[param]:
				if !floatEq(r.Data.Value(param), param.Info().Default) {
					p.errorf("row %d: defaulted %s = %v, want %v", r.Row, param, r.Data.Value(param), param.Info().Default)
				}
			case !present:
				p.errorf("row %d: %s absent in source but not marked defaulted", r.Row, param)
			case !floatEq(v, r.Data.Value(param)):
				p.errorf("row %d: %s = %v, source %v", r.Row, param, r.Data.Value(param), v)
			}
		}
		if !ptrBoolEq(s.Label, r.Label) {
			p.errorf("row %d: label mismatch", r.Row)
		}
	}
	return p
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ptrBoolEq(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
