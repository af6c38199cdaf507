// Command validate inspects an input directory before an animation run: it
// parses the well inventory and every level series, and reports inventory
// wells without a series file, series wells without a depth, rows out of depth
// order, observations outside the plot window, and the resulting frame count.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data-dir data/mock \
//	  -metadata List_HGSD_Area1and2_Wells_Selected.txt \
//	  -pattern '*_orig_dyear.col'
package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/couchcryptid/groundwater-animation/internal/adapter/wellfile"
	"github.com/couchcryptid/groundwater-animation/internal/domain"
)

// Plot windows, in years and meters.
const (
	minYear       = 1920
	maxYear       = 2025
	minLevel      = -180
	maxLevel      = 30
	minLevelWells = -150
)

// phase tracks pass/fail for a validation phase. Warnings do not fail it.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", ".", "directory containing the metadata and series files")
	metadata := flag.String("metadata", "List_HGSD_Area1and2_Wells_Selected.txt", "well inventory file, relative to -data-dir")
	pattern := flag.String("pattern", "*_orig_dyear.col", "glob matching series files")
	flag.Parse()

	os.Exit(run(*dataDir, *metadata, *pattern))
}

func run(dataDir, metadata, pattern string) int {
	fmt.Println("=== Groundwater Input Validation ===")
	fmt.Println()

	seriesSchema := wellfile.DefaultSeriesSchema()
	seriesSchema.Pattern = pattern

	meta, metaPhase := validateMetadata(filepath.Join(dataDir, metadata))
	series, seriesPhase := validateSeries(dataDir, seriesSchema, meta)
	ds := domain.Aggregate(series...)

	framesPhase, framesSummary := validateFrames(ds)
	phases := []*phase{
		metaPhase,
		seriesPhase,
		validateCoverage(meta, series),
		validateDepthCoverage(ds),
		validateSortOrder(ds.Observations()),
		validateWindow(ds),
		framesPhase,
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		} else if len(p.warnings) > 0 {
			status = fmt.Sprintf("\033[33mPASS (%d warnings)\033[0m", len(p.warnings))
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Wells: %d with depth, %d series files, %d observations\n",
		meta.Len(), len(series), ds.Len())
	if framesSummary != "" {
		fmt.Println(framesSummary)
	}

	for _, p := range phases {
		if len(p.errors) == 0 && len(p.warnings) == 0 {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
		for _, w := range p.warnings {
			fmt.Printf("  warn: %s\n", w)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Metadata ──

func validateMetadata(path string) (domain.WellMetadata, *phase) {
	p := &phase{name: "Phase 1: Well inventory"}

	res, err := wellfile.LoadMetadata(path, wellfile.DefaultMetadataSchema())
	if err != nil {
		p.errorf("%v", err)
		return domain.NewWellMetadata(nil), p
	}
	if res.Metadata.Len() == 0 {
		p.errorf("%s: no well has a numeric depth", path)
	}
	for _, id := range res.Dropped {
		p.warnf("well %s: depth is not a finite number", id)
	}
	return res.Metadata, p
}

// ── Phase 2: Series ──

func validateSeries(dir string, schema wellfile.SeriesSchema, meta domain.WellMetadata) ([]domain.Series, *phase) {
	p := &phase{name: "Phase 2: Level series"}

	paths, err := wellfile.DiscoverSeries(dir, schema)
	if err != nil {
		p.errorf("%v", err)
		return nil, p
	}

	series := make([]domain.Series, 0, len(paths))
	for _, path := range paths {
		s, err := wellfile.LoadSeries(path, schema, meta)
		if err != nil {
			var pe *wellfile.ParseError
			if errors.As(err, &pe) {
				p.errorf("%s line %d: %v", filepath.Base(pe.File), pe.Line, pe.Err)
			} else {
				p.errorf("%v", err)
			}
			continue
		}
		if len(s.Observations) == 0 {
			p.warnf("%s: no observations", filepath.Base(path))
		}
		series = append(series, s)
	}
	return series, p
}

// ── Phase 3: Inventory coverage ──
// Wells listed with a depth but lacking a series file never appear in a plot.

func validateCoverage(meta domain.WellMetadata, series []domain.Series) *phase {
	p := &phase{name: "Phase 3: Inventory coverage"}

	loaded := make(map[string]bool, len(series))
	for i := range series {
		loaded[series[i].WellID] = true
	}
	for _, id := range meta.IDs() {
		if !loaded[id] {
			p.warnf("well %s is listed in the inventory but has no series file", id)
		}
	}
	return p
}

// ── Phase 4: Depth coverage ──

func validateDepthCoverage(ds domain.Dataset) *phase {
	p := &phase{name: "Phase 4: Depth coverage"}
	for _, id := range ds.MissingDepthWells() {
		p.warnf("well %s has no depth; excluded from the animation by default", id)
	}
	return p
}

// ── Phase 5: Sort order ──
// Frames assume depth never decreases along the dataset, unknown depths last.

func validateSortOrder(obs []domain.Observation) *phase {
	p := &phase{name: "Phase 5: Depth sort order"}
	for i := 1; i < len(obs); i++ {
		if obs[i].Depth.Less(obs[i-1].Depth) {
			p.errorf("row %d (well %s, %s) sorts before row %d (well %s, %s)",
				i, obs[i].WellID, obs[i].Depth.Label(), i-1, obs[i-1].WellID, obs[i-1].Depth.Label())
		}
	}
	return p
}

// ── Phase 6: Plot window ──

func validateWindow(ds domain.Dataset) *phase {
	p := &phase{name: "Phase 6: Plot window"}

	var nonFinite, outYear, outAnim, outStatic int
	for _, o := range ds.Observations() {
		if math.IsNaN(o.Year) || math.IsNaN(o.Level) || math.IsInf(o.Year, 0) || math.IsInf(o.Level, 0) {
			nonFinite++
			continue
		}
		if o.Year < minYear || o.Year > maxYear {
			outYear++
		}
		if o.Level < minLevel || o.Level > maxLevel {
			outAnim++
		}
		if o.Level < minLevelWells || o.Level > maxLevel {
			outStatic++
		}
	}
	if nonFinite > 0 {
		p.warnf("%d observations are not finite and will not be drawn", nonFinite)
	}
	if outYear > 0 {
		p.warnf("%d observations fall outside %d-%d", outYear, minYear, maxYear)
	}
	if outAnim > 0 {
		p.warnf("%d levels fall outside the animation window %d..%d m", outAnim, minLevel, maxLevel)
	}
	if outStatic > 0 {
		p.warnf("%d levels fall outside the per-well window %d..%d m", outStatic, minLevelWells, maxLevel)
	}
	return p
}

// ── Phase 7: Frames ──

func validateFrames(ds domain.Dataset) (*phase, string) {
	p := &phase{name: "Phase 7: Animation frames"}

	frames := ds.Frames(domain.ExcludeMissing)
	if len(frames) == 0 {
		p.errorf("no observation has a known depth; the animation would be empty")
		return p, ""
	}
	first, last := frames[0], frames[len(frames)-1]
	return p, fmt.Sprintf("Frames: %d, shallowest %s (%s), deepest %s (%s)", len(frames),
		first.WellID, first.Depth.Label(), last.WellID, last.Depth.Label())
}
