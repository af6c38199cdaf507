package domain

import (
	"sort"
	"strconv"
)

// FeetToMeters converts well depths from feet to meters.
const FeetToMeters = 0.3048

// Depth is a well depth in feet that may be unknown.
type Depth struct {
	Feet  float64
	Known bool
}

// KnownDepth returns a depth of ft feet.
func KnownDepth(ft float64) Depth { return Depth{Feet: ft, Known: true} }

// UnknownDepth returns the depth of a well missing from the metadata.
func UnknownDepth() Depth { return Depth{} }

// Meters returns the depth in meters. The result is meaningless for unknown depths.
func (d Depth) Meters() float64 { return d.Feet * FeetToMeters }

// Label formats the depth for titles, e.g. "30.5m", or "unknown".
func (d Depth) Label() string {
	if !d.Known {
		return "unknown"
	}
	return FormatMeters(d.Feet) + "m"
}

// FormatMeters converts ft to meters and formats it with one decimal place.
func FormatMeters(ft float64) string {
	return strconv.FormatFloat(ft*FeetToMeters, 'f', 1, 64)
}

// TruncatedMeters converts ft to meters and truncates toward zero.
func TruncatedMeters(ft float64) int {
	return int(ft * FeetToMeters)
}

// Less orders known depths ascending and puts unknown depths last.
func (d Depth) Less(o Depth) bool {
	switch {
	case !d.Known:
		return false
	case !o.Known:
		return true
	default:
		return d.Feet < o.Feet
	}
}

// WellMetadata maps well identifiers to depths in feet. It is immutable
// once built.
type WellMetadata struct {
	depths map[string]float64
}

// NewWellMetadata copies depths into a new WellMetadata.
func NewWellMetadata(depths map[string]float64) WellMetadata {
	m := make(map[string]float64, len(depths))
	for id, ft := range depths {
		m[id] = ft
	}
	return WellMetadata{depths: m}
}

// Depth looks up the depth of a well in feet.
func (m WellMetadata) Depth(id string) (float64, bool) {
	ft, ok := m.depths[id]
	return ft, ok
}

// DepthOf returns the well's depth, unknown when the well is not listed.
func (m WellMetadata) DepthOf(id string) Depth {
	if ft, ok := m.depths[id]; ok {
		return KnownDepth(ft)
	}
	return UnknownDepth()
}

// Len returns the number of wells with a depth.
func (m WellMetadata) Len() int { return len(m.depths) }

// IDs returns the well identifiers in sorted order.
func (m WellMetadata) IDs() []string {
	ids := make([]string, 0, len(m.depths))
	for id := range m.depths {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
