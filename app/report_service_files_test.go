package app

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxreport/adapters/nifti"
	"voxreport/domain/report"
	"voxreport/domain/table"
	"voxreport/internal/testkit"
)

// End-to-end over real files: fabricate NIfTI maps on disk, run the batch
// against a path template, and persist the table.
func TestSignificantSignal_OverFiles(t *testing.T) {
	dir := t.TempDir()
	voxels := []float64{0.1, 0.01, 0.001, 0, 0, 0}
	maskVox := []float64{1, 1, 1, 0, 0, 0}

	for _, subject := range []string{"5691", "5689"} {
		vol := testkit.VolumeFromVoxels(len(voxels), 1, 1, voxels)
		path := filepath.Join(dir, "sub-"+subject+"_tstat.nii.gz")
		require.NoError(t, testkit.WriteMap(path, vol))
	}
	maskPath := filepath.Join(dir, "mask.nii.gz")
	require.NoError(t, testkit.WriteMap(maskPath, testkit.VolumeFromVoxels(len(maskVox), 1, 1, maskVox)))

	records := []report.SubstitutionRecord{
		{"subject": "5691"},
		{"subject": "5689"},
		{"subject": "5700"}, // no file
	}
	svc := NewReportService(nifti.NewReader(), Options{Workers: 2})
	template := filepath.Join(dir, "sub-{subject}_tstat.nii.gz")

	tbl, err := svc.SignificantSignal(context.Background(), template, records, maskPath)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.NumRows())

	mean0, _ := tbl.Cell(0, "Mean")
	v, err := table.ParseFloat(mean0)
	require.NoError(t, err)
	assert.InDelta(t, 2, v, 1e-6, "float32 storage tolerance")

	meanMissing, _ := tbl.Cell(2, "Mean")
	vm, err := table.ParseFloat(meanMissing)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(vm))

	// Persist and spot-check the CSV exists with the right shape.
	out := filepath.Join(dir, "summary.csv")
	require.NoError(t, tbl.Save(out))
}

func TestBaseMetrics_OverFiles(t *testing.T) {
	dir := t.TempDir()
	series := testkit.SeriesVolume(3, 3, 3, []float64{5, 7})
	require.NoError(t, testkit.WriteMap(filepath.Join(dir, "sub-01_bold.nii"), series))

	svc := NewReportService(nifti.NewReader(), Options{Workers: 1})
	tbl, err := svc.BaseMetrics(context.Background(),
		filepath.Join(dir, "sub-{subject}_bold.nii"),
		[]report.SubstitutionRecord{{"subject": "01", "acquisition": "EPI"}},
	)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.NumRows(), "one row per timepoint")

	for row, want := range map[int]string{0: "5", 1: "7"} {
		mean, _ := tbl.Cell(row, "Mean")
		assert.Equal(t, want, mean)
		std, _ := tbl.Cell(row, "Standard Deviation")
		assert.Equal(t, "0", std)
		acq, _ := tbl.Cell(row, "acquisition")
		assert.Equal(t, "EPI", acq)
	}
}
