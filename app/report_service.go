package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"voxreport/domain/core"
	"voxreport/domain/report"
	"voxreport/domain/table"
	"voxreport/internal"
	"voxreport/internal/config"
	"voxreport/internal/pathtemplate"
	"voxreport/internal/stats"
	"voxreport/ports"
)

// Options configures a ReportService.
type Options struct {
	// Workers bounds concurrent unit pipelines; <= 0 uses the hardware
	// default (available parallelism minus two, floored at one).
	Workers int
	Logger  *internal.Logger
}

// ReportService runs batch statistic aggregations: it resolves one file path
// per substitution record, loads and summarizes each map, and assembles the
// per-unit results into a metadata-annotated table in input order.
type ReportService struct {
	loader  ports.VolumeLoader
	workers int
	log     *internal.Logger
}

// NewReportService creates a report service around a volume loader.
func NewReportService(loader ports.VolumeLoader, opts Options) *ReportService {
	workers := opts.Workers
	if workers <= 0 {
		workers = config.DefaultWorkers()
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &ReportService{loader: loader, workers: workers, log: logger}
}

// SignificantSignal computes the mean and median -log10 statistic of one
// p-value map per substitution record and returns a table with one row per
// record, in record order, under columns Mean and Median plus whichever of
// subject/session/task/acquisition the records carry.
//
// Units whose resolved map does not exist (or holds no usable voxels) get
// NaN cells and the batch continues; template defects and unreadable maps
// abort the whole batch.
func (s *ReportService) SignificantSignal(ctx context.Context, template string, records []report.SubstitutionRecord, maskPath string) (*table.Table, error) {
	var mask []float64
	if maskPath != "" {
		expanded, err := pathtemplate.Expand(maskPath)
		if err != nil {
			return nil, err
		}
		maskVol, err := s.loader.Load(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to load mask: %w", err)
		}
		// Read-only from here on; every unit shares this slice.
		mask = maskVol.Data
	}

	results := make([]report.SignalStats, len(records))
	errs := make([]error, len(records))

	if err := s.forEachUnit(ctx, len(records), func(i int) {
		results[i], errs[i] = s.signalUnit(template, records[i], mask)
	}); err != nil {
		return nil, err
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("unit %d %v: %w", i, records[i], err)
		}
	}

	tbl := table.New("Mean", "Median")
	for _, r := range results {
		if err := tbl.AppendRow(table.FormatFloat(r.Mean), table.FormatFloat(r.Median)); err != nil {
			return nil, err
		}
	}
	if err := attachMetadata(tbl, records); err != nil {
		return nil, err
	}
	s.log.Info("[ReportService] significant signal batch done: %d units, %d columns", len(records), len(tbl.Columns()))
	return tbl, nil
}

// signalUnit runs the resolve -> load -> compute pipeline for one record.
// Recoverable conditions are absorbed into the NaN sentinel here.
func (s *ReportService) signalUnit(template string, record report.SubstitutionRecord, mask []float64) (report.SignalStats, error) {
	path, err := pathtemplate.Resolve(template, record)
	if err != nil {
		return report.SignalStats{}, err
	}
	vol, err := s.loader.Load(path)
	if core.IsMapNotFound(err) {
		s.log.Debug("[ReportService] map missing, emitting NaN: %s", path)
		return report.NaNSignal(), nil
	}
	if err != nil {
		return report.SignalStats{}, err
	}
	if mask != nil && len(mask) != len(vol.Data) {
		return report.SignalStats{}, fmt.Errorf("mask grid (%d voxels) does not match map %s (%d voxels)",
			len(mask), path, len(vol.Data))
	}
	st, err := stats.SignificantSignal(vol.Data, mask)
	if core.IsDegenerateInput(err) {
		s.log.Warn("[ReportService] degenerate map, emitting NaN: %s: %v", path, err)
		return report.NaNSignal(), nil
	}
	if err != nil {
		return report.SignalStats{}, err
	}
	return st, nil
}

// BaseMetrics computes per-timepoint standard deviation, mean, median, and
// mode for one 4D series per substitution record. The returned table holds
// one row per (unit, timepoint), units in record order and timepoints in
// series order, annotated with the records' metadata fields.
//
// Unlike SignificantSignal there is no per-unit recovery: a missing or
// unreadable series fails the whole batch.
func (s *ReportService) BaseMetrics(ctx context.Context, template string, records []report.SubstitutionRecord) (*table.Table, error) {
	results := make([][]report.SeriesStats, len(records))
	errs := make([]error, len(records))

	if err := s.forEachUnit(ctx, len(records), func(i int) {
		results[i], errs[i] = s.seriesUnit(template, records[i])
	}); err != nil {
		return nil, err
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("unit %d %v: %w", i, records[i], err)
		}
	}

	tbl := table.New("Mean", "Median", "Mode", "Standard Deviation")
	var perRow []report.SubstitutionRecord
	for i, unit := range results {
		for _, r := range unit {
			err := tbl.AppendRow(
				table.FormatFloat(r.Mean),
				table.FormatFloat(r.Median),
				table.FormatFloat(r.Mode),
				table.FormatFloat(r.StdDev),
			)
			if err != nil {
				return nil, err
			}
			perRow = append(perRow, records[i])
		}
	}
	if err := attachMetadata(tbl, perRow); err != nil {
		return nil, err
	}
	s.log.Info("[ReportService] base metrics batch done: %d units, %d rows", len(records), tbl.NumRows())
	return tbl, nil
}

func (s *ReportService) seriesUnit(template string, record report.SubstitutionRecord) ([]report.SeriesStats, error) {
	path, err := pathtemplate.Resolve(template, record)
	if err != nil {
		return nil, err
	}
	vol, err := s.loader.Load(path)
	if err != nil {
		return nil, err
	}
	frames := make([][]float64, vol.Nt)
	for t := range frames {
		frames[t] = vol.Frame(t)
	}
	return stats.SeriesMetrics(frames)
}

// forEachUnit runs fn(i) for i in [0, n) on a worker pool bounded by the
// configured worker count. Each invocation writes only to its own index, so
// output order is fixed by construction, not by completion order. Returns
// the context error if cancellation interrupts scheduling.
func (s *ReportService) forEachUnit(ctx context.Context, n int, fn func(i int)) error {
	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup
	var acquireErr error
	for i := 0; i < n; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			acquireErr = err
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			fn(i)
		}(i)
	}
	wg.Wait()
	return acquireErr
}

// attachMetadata adds a column for each candidate metadata field present in
// at least one of the per-row records; rows whose record lacks the key get
// an empty cell rather than dropping the column.
func attachMetadata(tbl *table.Table, perRow []report.SubstitutionRecord) error {
	for _, field := range report.MetadataFields {
		present := false
		for _, rec := range perRow {
			if _, ok := rec.Lookup(field); ok {
				present = true
				break
			}
		}
		if !present {
			continue
		}
		values := make([]string, len(perRow))
		for i, rec := range perRow {
			values[i], _ = rec.Lookup(field)
		}
		if err := tbl.AddColumn(field, values); err != nil {
			return err
		}
	}
	return nil
}
