// Command genmock writes a synthetic well inventory and per-well level series
// in the layout the animation job reads. The output is read back through the
// wellfile loaders so malformed fixtures fail here rather than in the job.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -wells 12 -seed 7
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/couchcryptid/groundwater-animation/internal/adapter/wellfile"
	"github.com/couchcryptid/groundwater-animation/internal/domain"
)

const metadataName = "List_HGSD_Area1and2_Wells_Selected.txt"

// well is one synthetic well: a depth (NaN when unknown) and a level trend.
type well struct {
	id      string
	depth   float64
	start   float64
	decline float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the metadata and series files")
	wells := flag.Int("wells", 10, "number of wells to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" || *wells < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -wells >= 1")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	ws := generate(rng, *wells)

	metaPath := filepath.Join(*out, metadataName)
	if err := writeMetadata(metaPath, ws); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	log.Printf("wrote metadata: %s (%d wells)", metaPath, len(ws))

	for _, w := range ws {
		path := filepath.Join(*out, w.id+"_orig_dyear.col")
		n, err := writeSeries(path, rng, w)
		if err != nil {
			return fmt.Errorf("writing series %s: %w", w.id, err)
		}
		log.Printf("%s: %d observations", w.id, n)
	}

	return verify(metaPath, *out)
}

// generate picks depths between 50 and 2500 ft; every fifth well has no depth.
func generate(rng *rand.Rand, n int) []well {
	ws := make([]well, n)
	for i := range ws {
		depth := math.Round(50 + rng.Float64()*2450)
		if i%5 == 4 {
			depth = math.NaN()
		}
		ws[i] = well{
			id:      fmt.Sprintf("LJ-65-%02d-%03d", 10+i%30, 100+i),
			depth:   depth,
			start:   -5 - rng.Float64()*20,
			decline: 0.2 + rng.Float64()*1.3,
		}
	}
	return ws
}

func writeMetadata(path string, ws []well) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	fmt.Fprintln(bw, "Num WellID Aquifer WellDepth")
	for i, w := range ws {
		depth := "NaN"
		if !math.IsNaN(w.depth) {
			depth = fmt.Sprintf("%.0f", w.depth)
		}
		fmt.Fprintf(bw, "%d %s Chicot %s\n", i+1, w.id, depth)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeSeries writes yearly winter measurements with noise, levels in meters.
func writeSeries(path string, rng *rand.Rand, w well) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(f)
	fmt.Fprintln(bw, "DecYear Month Level_m")

	first := 1930 + rng.IntN(50)
	n := 0
	for year := first; year <= 2024; year++ {
		if rng.Float64() < 0.15 {
			continue
		}
		t := float64(year - first)
		level := w.start - w.decline*t + rng.NormFloat64()*1.5
		if year > 1980 {
			// Subsidence district regulation: levels recover after 1980.
			level += 0.9 * w.decline * float64(year-1980)
		}
		fmt.Fprintf(bw, "%.3f %d %.2f\n", float64(year)+0.04, 1, level)
		n++
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return 0, err
	}
	return n, f.Close()
}

func verify(metaPath, dir string) error {
	src := wellfile.DefaultSeriesSchema()
	res, err := wellfile.LoadMetadata(metaPath, wellfile.DefaultMetadataSchema())
	if err != nil {
		return fmt.Errorf("verify metadata: %w", err)
	}
	paths, err := wellfile.DiscoverSeries(dir, src)
	if err != nil {
		return fmt.Errorf("verify series: %w", err)
	}

	var all []domain.Series
	for _, p := range paths {
		s, err := wellfile.LoadSeries(p, src, res.Metadata)
		if err != nil {
			return fmt.Errorf("verify series: %w", err)
		}
		all = append(all, s)
	}

	ds := domain.Aggregate(all...)
	fmt.Println("\n=== Generated fixture ===")
	fmt.Printf("Wells with depth: %d (dropped %d)\n", res.Metadata.Len(), len(res.Dropped))
	fmt.Printf("Series files: %d\n", len(paths))
	fmt.Printf("Observations: %d\n", ds.Len())
	fmt.Printf("Animation frames: %d (exclude), %d (bucket)\n",
		len(ds.Frames(domain.ExcludeMissing)), len(ds.Frames(domain.BucketMissing)))
	return nil
}
