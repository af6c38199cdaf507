package report

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/groundwater-animation/internal/domain"
)

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	img.Set(10, 10, color.RGBA{B: 255, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func group(id string, depth domain.Depth, years ...float64) domain.WellGroup {
	g := domain.WellGroup{WellID: id, Depth: depth}
	for _, y := range years {
		g.Observations = append(g.Observations, domain.Observation{WellID: id, Year: y, Depth: depth})
	}
	return g
}

func TestSummarize(t *testing.T) {
	s := Summarize(group("W1", domain.KnownDepth(100), 1995, 1980.5, 2020))

	assert.Equal(t, "W1", s.WellID)
	assert.Equal(t, "100.0", s.DepthFeet)
	assert.Equal(t, "30.5", s.DepthMeters)
	assert.Equal(t, 3, s.Observations)
	assert.Equal(t, 1980.5, s.FirstYear)
	assert.Equal(t, 2020.0, s.LastYear)
}

func TestSummarize_UnknownAndEmpty(t *testing.T) {
	s := Summarize(group("X", domain.UnknownDepth()))

	assert.Equal(t, "unknown", s.DepthFeet)
	assert.Equal(t, "unknown", s.DepthMeters)
	assert.Equal(t, "-", formatYear(s.FirstYear))
}

func TestWriteAtlas(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "W1_30m.png")
	writeTestPNG(t, img)

	path := filepath.Join(dir, "atlas.pdf")
	entries := []Entry{{Group: group("W1", domain.KnownDepth(100), 1990, 1991), ImagePath: img}}
	require.NoError(t, WriteAtlas(path, "HGSD Areas 1&2 Wells", entries, time.Date(2024, 2, 24, 12, 0, 0, 0, time.UTC)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF")
}

func TestWriteAtlas_MissingImage(t *testing.T) {
	dir := t.TempDir()
	entries := []Entry{{Group: group("W1", domain.KnownDepth(100), 1990), ImagePath: filepath.Join(dir, "nope.png")}}

	err := WriteAtlas(filepath.Join(dir, "atlas.pdf"), "Wells", entries, time.Now())
	require.Error(t, err)
}

func TestAtlas_MismatchedInputs(t *testing.T) {
	a := Atlas{Path: filepath.Join(t.TempDir(), "atlas.pdf"), Title: "Wells"}
	err := a.WriteAtlas([]domain.WellGroup{group("W1", domain.KnownDepth(1))}, nil)
	require.Error(t, err)
}
