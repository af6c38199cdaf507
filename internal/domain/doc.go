// Package domain models groundwater-level observations from monitoring wells
// and the depth-ordered dataset built from them.
//
// # Data Source
//
// Wells are listed in a whitespace-delimited metadata text file: a header
// line, then one row per well whose second field is the well identifier and
// whose last field is the well depth in feet. Rows with an unparsable depth
// are dropped.
//
// Each well's record lives in its own file named "<WellID>_orig_dyear.col".
// The file is a whitespace-delimited table with a header row. Column 1 holds
// the decimal year (e.g. 1987.4167) and column 3 the groundwater level in
// meters relative to NAVD88. Column 2 and anything after column 3 are ignored.
//
// # Units
//
// Depths are stored in feet and displayed in meters:
//
//	meters = feet * 0.3048
//
// Titles show meters with one decimal ("30.5m" for 100 ft). Static plot
// filenames use the meters truncated toward zero ("W1_30m.png" for 100 ft).
// Groundwater levels are never converted.
//
// # Missing Depth
//
// A well whose identifier is absent from the metadata carries an unknown
// [Depth] rather than NaN. Unknown depths sort after every known depth.
// Callers choose a [MissingDepthPolicy] to exclude such wells from frames and
// per-well groups or to bucket them at the end.
//
// # Frames
//
// The animation shows one frame per distinct depth in ascending order. All
// observations at that depth belong to the frame, and the frame is labelled
// with the first observation's well. See [Dataset.Frames].
package domain
