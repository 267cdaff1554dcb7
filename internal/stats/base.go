package stats

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"voxreport/domain/core"
	"voxreport/domain/report"
)

// SeriesMetrics computes standard deviation, mean, median, and mode for each
// 3D frame along the series axis of a 4D map. No masking is applied in this
// mode. The returned slice has one entry per series index, in series order.
func SeriesMetrics(frames [][]float64) ([]report.SeriesStats, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: series has no frames", core.ErrDegenerateInput)
	}
	out := make([]report.SeriesStats, len(frames))
	for t, frame := range frames {
		if len(frame) == 0 {
			return nil, fmt.Errorf("%w: frame %d is empty", core.ErrDegenerateInput, t)
		}
		mean, err := stats.Mean(frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d mean: %w", t, err)
		}
		median, err := stats.Median(frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d median: %w", t, err)
		}
		std, err := stats.StandardDeviation(frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d standard deviation: %w", t, err)
		}
		mode, err := firstMode(frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d mode: %w", t, err)
		}
		out[t] = report.SeriesStats{Mean: mean, Median: median, Mode: mode, StdDev: std}
	}
	return out, nil
}

// firstMode returns the smallest modal value of the frame. When every value
// occurs exactly once there is no repeated mode and the smallest value wins,
// matching the usual first-mode convention of scientific stacks.
func firstMode(frame []float64) (float64, error) {
	modes, err := stats.Mode(frame)
	if err != nil {
		return 0, err
	}
	if len(modes) == 0 {
		return floats.Min(frame), nil
	}
	return floats.Min(modes), nil
}
