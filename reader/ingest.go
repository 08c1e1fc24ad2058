package reader

import (
	"sort"

	"github.com/exchange/hftbacktest/event"
)

// Sort stably reorders rows by LocalTs ascending, the order the local
// processor must see them in. Stable so same-timestamp rows keep
// their original relative order (e.g. clear before snapshot).
func Sort(rows []event.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].LocalTs < rows[j].LocalTs
	})
}

// CorrectionMethod selects how a row violating local_ts >= exch_ts is
// repaired during ingestion.
type CorrectionMethod int

const (
	// Adjust pulls local_ts up to exch_ts in place, preserving a
	// single series at the cost of losing the true local delay for
	// that row.
	Adjust CorrectionMethod = iota
	// Separate moves the offending row out of the primary series
	// into a side series, with its local_ts pulled up to exch_ts, so
	// both series independently satisfy the invariant pointwise.
	Separate
)

// Correct repairs rows violating local_ts >= exch_ts according to
// method. For Adjust, it returns rows unmodified in length with bad
// rows patched in place. For Separate, it returns the corrected
// primary series and a second series holding the offending rows
// (each still eligible for its own Sort pass).
func Correct(rows []event.Row, method CorrectionMethod) (primary, side []event.Row) {
	switch method {
	case Separate:
		primary = make([]event.Row, 0, len(rows))
		for _, r := range rows {
			if r.LocalTs < r.ExchTs {
				r.LocalTs = r.ExchTs
				side = append(side, r)
				continue
			}
			primary = append(primary, r)
		}
		return primary, side
	default:
		primary = make([]event.Row, len(rows))
		copy(primary, rows)
		for i := range primary {
			if primary[i].LocalTs < primary[i].ExchTs {
				primary[i].LocalTs = primary[i].ExchTs
			}
		}
		return primary, nil
	}
}

// SnapshotMode selects how DepthClearEvent/DepthSnapshotEvent pairs at
// the start of a series (or a reconnect) are treated.
type SnapshotMode int

const (
	// ProcessSnapshots keeps clear/snapshot rows as ordinary events
	// fed to the depth the way any other row is.
	ProcessSnapshots SnapshotMode = iota
	// IgnoreSOD drops every clear and snapshot row that occurs at the
	// very start of the series (timestamp equal to the series' first
	// timestamp), since an initial snapshot carries no information
	// beyond what apply_snapshot would do anyway during setup.
	IgnoreSOD
	// IgnoreAll drops every DepthClearEvent/DepthSnapshotEvent row in
	// the series, for callers that seed the starting book out of band
	// and only want diffs and trades replayed.
	IgnoreAll
)

// BracketSnapshots applies mode to rows, assumed already sorted by
// Sort. Clear and snapshot rows are judged one row at a time; no
// pairing of a clear with the snapshot after it is checked.
// Start-of-day rows are those at the series' first timestamp.
func BracketSnapshots(rows []event.Row, mode SnapshotMode) []event.Row {
	if mode == ProcessSnapshots || len(rows) == 0 {
		return rows
	}

	firstTs := rows[0].LocalTs
	out := make([]event.Row, 0, len(rows))
	for _, r := range rows {
		isBracketRow := r.Kind == event.DepthClearEvent || r.Kind == event.DepthSnapshotEvent
		if !isBracketRow {
			out = append(out, r)
			continue
		}
		if mode == IgnoreAll {
			continue
		}
		// IgnoreSOD: drop only brackets at the series' first timestamp.
		if r.LocalTs == firstTs {
			continue
		}
		out = append(out, r)
	}
	return out
}
