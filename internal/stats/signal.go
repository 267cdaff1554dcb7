// Package stats holds the statistic kernels applied to loaded volumetric
// maps: the masked inverse-logarithm significance summary and the
// per-timepoint base metrics.
package stats

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"voxreport/domain/core"
	"voxreport/domain/report"
)

// SignificantSignal returns the mean and median of -log10 over a p-value
// map. mask may be nil; where given it must match data voxel-for-voxel, and
// voxels with mask < 0.5 are excluded from every step below.
//
// Statistic images populate the whole circumscribed 3D space around the
// structure of interest and commonly assign null values to the background.
// -log10(0) is +Inf, which would dominate both reductions, so exact-zero
// voxels are floored to min(nonzero) * 0.99 before the transform.
func SignificantSignal(data, mask []float64) (report.SignalStats, error) {
	if mask != nil && len(mask) != len(data) {
		return report.SignalStats{}, fmt.Errorf("mask has %d voxels, data has %d", len(mask), len(data))
	}

	retained := make([]float64, 0, len(data))
	for i, v := range data {
		if mask != nil && mask[i] < 0.5 {
			continue
		}
		if math.IsNaN(v) {
			continue
		}
		retained = append(retained, v)
	}
	if len(retained) == 0 {
		return report.SignalStats{}, fmt.Errorf("%w: all voxels masked or NaN", core.ErrDegenerateInput)
	}

	nonzero := make([]float64, 0, len(retained))
	for _, v := range retained {
		if v != 0 {
			nonzero = append(nonzero, v)
		}
	}
	if len(nonzero) == 0 {
		return report.SignalStats{}, fmt.Errorf("%w: map is all-zero within mask", core.ErrDegenerateInput)
	}

	floor := floats.Min(nonzero) * 0.99
	transformed := make([]float64, len(retained))
	for i, v := range retained {
		if v == 0 {
			v = floor
		}
		transformed[i] = -math.Log10(v)
	}

	mean, err := stats.Mean(transformed)
	if err != nil {
		return report.SignalStats{}, fmt.Errorf("%w: %v", core.ErrDegenerateInput, err)
	}
	median, err := stats.Median(transformed)
	if err != nil {
		return report.SignalStats{}, fmt.Errorf("%w: %v", core.ErrDegenerateInput, err)
	}
	return report.SignalStats{Mean: mean, Median: median}, nil
}
