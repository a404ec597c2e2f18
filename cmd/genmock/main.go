// Command genmock reads a water potability CSV (the Kaggle layout: ph,
// Hardness, Solids, ..., Turbidity, Potability) and writes a scored JSON
// fixture using the same domain package the service runs.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/water_potability.csv \
//	  -out data/mock/water_quality_fixture.json \
//	  -normalization field_count -defaults
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/water-quality-service/internal/dataset"
	"github.com/couchcryptid/water-quality-service/internal/domain"
)

// generatedAt is fixed so regenerated fixtures diff cleanly.
var generatedAt = time.Date(2025, time.March, 22, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "path to the potability CSV")
	out := flag.String("out", "", "output path for the scored JSON fixture")
	normalization := flag.String("normalization", string(domain.NormalizeFieldCount), "confidence divisor: field_count or weight_sum")
	fillDefaults := flag.Bool("defaults", false, "fill blank cells with input-form defaults instead of skipping the row")
	flag.Parse()

	if *csvPath == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -out")
	}

	scorer, err := domain.NewScorer(domain.Normalization(*normalization))
	if err != nil {
		return err
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	samples, err := dataset.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("read %d samples", len(samples))

	clock := clockwork.NewFakeClockAt(generatedAt)
	fx, skipped := dataset.Build(samples, scorer, *fillDefaults, clock.Now())
	log.Printf("scored %d records (normalization=%s)", len(fx.Records), fx.Normalization)
	for _, reason := range sortedKeys(skipped) {
		log.Printf("skipped %d: %s", skipped[reason], reason)
	}

	if err := writeJSON(*out, fx); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(fx)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// statsResult holds aggregated counts for printStats reporting.
type statsResult struct {
	qualityCounts map[domain.Quality]int
	issueCounts   map[domain.Parameter]int
	potable       int
	withWarnings  int
	defaulted     int
	minConfidence float64
	maxConfidence float64
}

func collectStats(fx dataset.Fixture) statsResult {
	s := statsResult{
		qualityCounts: map[domain.Quality]int{},
		issueCounts:   map[domain.Parameter]int{},
	}
	for i := range fx.Records {
		r := &fx.Records[i]
		s.qualityCounts[r.Result.Quality]++
		if r.Result.Potable {
			s.potable++
		}
		if len(r.Warnings) > 0 {
			s.withWarnings++
		}
		if len(r.Defaulted) > 0 {
			s.defaulted++
		}
		for _, st := range r.Result.Issues() {
			s.issueCounts[st.Parameter]++
		}
		if i == 0 || r.Result.Confidence < s.minConfidence {
			s.minConfidence = r.Result.Confidence
		}
		if i == 0 || r.Result.Confidence > s.maxConfidence {
			s.maxConfidence = r.Result.Confidence
		}
	}
	return s
}

func printStats(fx dataset.Fixture) {
	stats := collectStats(fx)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(fx.Records))
	fmt.Printf("Potable: %d, not potable: %d\n", stats.potable, len(fx.Records)-stats.potable)
	fmt.Printf("By quality: excellent=%d, good=%d, fair=%d, poor=%d\n",
		stats.qualityCounts[domain.QualityExcellent], stats.qualityCounts[domain.QualityGood],
		stats.qualityCounts[domain.QualityFair], stats.qualityCounts[domain.QualityPoor])
	fmt.Printf("Confidence range: %.1f - %.1f\n", stats.minConfidence, stats.maxConfidence)
	fmt.Printf("With warnings: %d\n", stats.withWarnings)
	fmt.Printf("With defaulted cells: %d\n", stats.defaulted)

	fmt.Println("\nOut-of-range counts by parameter:")
	for _, p := range domain.Parameters {
		fmt.Printf("  %-16s %d\n", p.Label(), stats.issueCounts[p])
	}

	if agree, labelled := fx.Agreement(); labelled > 0 {
		fmt.Printf("\nAgreement with dataset label: %d/%d (%.1f%%)\n",
			agree, labelled, 100*float64(agree)/float64(labelled))
	}
}
