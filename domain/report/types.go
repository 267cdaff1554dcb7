package report

import (
	"math"

	"voxreport/domain/core"
)

// SubstitutionRecord maps template field names to values for one unit.
// It both resolves the unit's file path and annotates its output row.
// Records are caller-owned and never mutated here.
type SubstitutionRecord map[string]string

// Lookup returns the value for a metadata key and whether it is present.
func (r SubstitutionRecord) Lookup(key string) (string, bool) {
	v, ok := r[key]
	return v, ok
}

// MetadataFields is the candidate metadata key set attached to result rows
// when present in the substitution records.
var MetadataFields = []string{"subject", "session", "task", "acquisition"}

// SignalStats holds the significance-style statistic for one unit: the mean
// and median of the masked -log10 transform of a p-value map.
type SignalStats struct {
	Mean   float64
	Median float64
}

// NaNSignal is the sentinel emitted for units whose map could not be found.
func NaNSignal() SignalStats {
	return SignalStats{Mean: math.NaN(), Median: math.NaN()}
}

// IsNaN reports whether the stats are the unavailable sentinel.
func (s SignalStats) IsNaN() bool {
	return math.IsNaN(s.Mean) && math.IsNaN(s.Median)
}

// SeriesStats holds the per-timepoint base metrics of one 3D frame of a
// 4D series.
type SeriesStats struct {
	Mean   float64
	Median float64
	Mode   float64
	StdDev float64
}

// RunKind distinguishes the two batch statistic modes.
type RunKind string

const (
	RunSignal RunKind = "significant_signal"
	RunSeries RunKind = "base_metrics"
)

// Run describes one persisted batch aggregation.
type Run struct {
	ID         core.RunID
	Kind       RunKind
	Template   string
	MaskPath   string
	Units      int
	Rows       int
	StartedAt  core.Timestamp
	FinishedAt core.Timestamp
}

// NewRun starts a run record for a batch aggregation.
func NewRun(kind RunKind, template, maskPath string) *Run {
	return &Run{
		ID:        core.RunID(core.NewID()),
		Kind:      kind,
		Template:  template,
		MaskPath:  maskPath,
		StartedAt: core.Now(),
	}
}

// Finish stamps the run with its outcome counts and completion time.
func (r *Run) Finish(units, rows int) {
	r.Units = units
	r.Rows = rows
	r.FinishedAt = core.Now()
}
