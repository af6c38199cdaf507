package domain

import (
	"fmt"
	"sort"
)

// Observation is one groundwater level reading of a well.
type Observation struct {
	WellID string
	Year   float64 // decimal year, e.g. 1987.4167
	Level  float64 // meters, NAVD88
	Depth  Depth
}

// Series holds the observations read from one input file.
type Series struct {
	WellID       string
	Source       string
	Depth        Depth
	Observations []Observation
}

// MissingDepthPolicy decides what frames and per-well groups do with
// observations whose well has no known depth.
type MissingDepthPolicy int

const (
	// ExcludeMissing drops unknown-depth observations.
	ExcludeMissing MissingDepthPolicy = iota
	// BucketMissing keeps them, one bucket per well, after all known depths.
	BucketMissing
)

// ParseMissingDepthPolicy parses "exclude" or "bucket".
func ParseMissingDepthPolicy(s string) (MissingDepthPolicy, error) {
	switch s {
	case "exclude", "":
		return ExcludeMissing, nil
	case "bucket":
		return BucketMissing, nil
	default:
		return ExcludeMissing, fmt.Errorf("unknown missing depth policy %q", s)
	}
}

func (p MissingDepthPolicy) String() string {
	if p == BucketMissing {
		return "bucket"
	}
	return "exclude"
}

// Dataset is every observation across all wells, ordered by depth ascending.
type Dataset struct {
	obs []Observation
}

// Aggregate concatenates series in the given order and stable-sorts the
// result by depth, so observations at equal depth keep their input order.
func Aggregate(series ...Series) Dataset {
	n := 0
	for i := range series {
		n += len(series[i].Observations)
	}
	obs := make([]Observation, 0, n)
	for i := range series {
		obs = append(obs, series[i].Observations...)
	}
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Depth.Less(obs[j].Depth)
	})
	return Dataset{obs: obs}
}

// Len returns the number of observations.
func (d Dataset) Len() int { return len(d.obs) }

// At returns the i-th observation.
func (d Dataset) At(i int) Observation { return d.obs[i] }

// Observations returns a copy of the ordered observations.
func (d Dataset) Observations() []Observation {
	out := make([]Observation, len(d.obs))
	copy(out, d.obs)
	return out
}

// DistinctDepths returns the known depths in dataset order without repeats.
func (d Dataset) DistinctDepths() []float64 {
	var depths []float64
	seen := make(map[float64]bool)
	for i := range d.obs {
		dep := d.obs[i].Depth
		if !dep.Known || seen[dep.Feet] {
			continue
		}
		seen[dep.Feet] = true
		depths = append(depths, dep.Feet)
	}
	return depths
}

// Frame is the set of observations drawn in one animation frame.
type Frame struct {
	WellID       string
	Depth        Depth
	Observations []Observation
}

// Frames returns one frame per distinct known depth, in ascending order.
// Under BucketMissing, each well without a depth adds one more frame at the
// end in order of first appearance.
func (d Dataset) Frames(policy MissingDepthPolicy) []Frame {
	var frames []Frame
	index := make(map[float64]int)
	unknown := make(map[string]int)

	for i := range d.obs {
		o := d.obs[i]
		if !o.Depth.Known {
			if policy != BucketMissing {
				continue
			}
			k, ok := unknown[o.WellID]
			if !ok {
				k = len(frames)
				unknown[o.WellID] = k
				frames = append(frames, Frame{WellID: o.WellID, Depth: o.Depth})
			}
			frames[k].Observations = append(frames[k].Observations, o)
			continue
		}
		k, ok := index[o.Depth.Feet]
		if !ok {
			k = len(frames)
			index[o.Depth.Feet] = k
			frames = append(frames, Frame{WellID: o.WellID, Depth: o.Depth})
		}
		frames[k].Observations = append(frames[k].Observations, o)
	}
	return frames
}

// WellGroup is every observation of one well.
type WellGroup struct {
	WellID       string
	Depth        Depth
	Observations []Observation
}

// GroupByWell groups observations by well identifier, sorted by identifier.
// Wells without a depth are skipped under ExcludeMissing.
func (d Dataset) GroupByWell(policy MissingDepthPolicy) []WellGroup {
	byID := make(map[string]*WellGroup)
	for i := range d.obs {
		o := d.obs[i]
		if !o.Depth.Known && policy != BucketMissing {
			continue
		}
		g, ok := byID[o.WellID]
		if !ok {
			g = &WellGroup{WellID: o.WellID, Depth: o.Depth}
			byID[o.WellID] = g
		}
		g.Observations = append(g.Observations, o)
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	groups := make([]WellGroup, 0, len(ids))
	for _, id := range ids {
		groups = append(groups, *byID[id])
	}
	return groups
}

// MissingDepthWells returns the identifiers of wells with no known depth,
// in order of first appearance.
func (d Dataset) MissingDepthWells() []string {
	var ids []string
	seen := make(map[string]bool)
	for i := range d.obs {
		o := d.obs[i]
		if o.Depth.Known || seen[o.WellID] {
			continue
		}
		seen[o.WellID] = true
		ids = append(ids, o.WellID)
	}
	return ids
}
