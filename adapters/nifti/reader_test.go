package nifti

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"voxreport/domain/core"
	"voxreport/domain/volume"
)

func gradientVolume(t *testing.T, nx, ny, nz, nt int) *volume.Volume {
	t.Helper()
	data := make([]float64, nx*ny*nz*nt)
	for i := range data {
		data[i] = float64(i) * 0.5
	}
	vol, err := volume.New(nx, ny, nz, nt, data)
	if err != nil {
		t.Fatalf("volume.New failed: %v", err)
	}
	return vol
}

func TestLoad_RoundTrip(t *testing.T) {
	for _, name := range []string{"map.nii", "map.nii.gz"} {
		t.Run(name, func(t *testing.T) {
			want := gradientVolume(t, 4, 3, 2, 1)
			path := filepath.Join(t.TempDir(), name)
			if err := Write(path, want); err != nil {
				t.Fatalf("Write failed: %v", err)
			}

			got, err := NewReader().Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got.Nx != want.Nx || got.Ny != want.Ny || got.Nz != want.Nz || got.Nt != want.Nt {
				t.Fatalf("extents = %dx%dx%dx%d, want %dx%dx%dx%d",
					got.Nx, got.Ny, got.Nz, got.Nt, want.Nx, want.Ny, want.Nz, want.Nt)
			}
			for i := range want.Data {
				if math.Abs(got.Data[i]-want.Data[i]) > 1e-6 {
					t.Fatalf("voxel %d = %v, want %v", i, got.Data[i], want.Data[i])
				}
			}
		})
	}
}

func TestLoad_4DSeries(t *testing.T) {
	want := gradientVolume(t, 3, 3, 3, 5)
	path := filepath.Join(t.TempDir(), "series.nii.gz")
	if err := Write(path, want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := NewReader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !got.Is4D() || got.Nt != 5 {
		t.Fatalf("expected 4D volume with 5 frames, got Nt=%d", got.Nt)
	}
	frame := got.Frame(4)
	if len(frame) != 27 {
		t.Fatalf("frame has %d voxels, want 27", len(frame))
	}
	if math.Abs(frame[0]-want.Data[4*27]) > 1e-6 {
		t.Errorf("frame 4 starts at %v, want %v", frame[0], want.Data[4*27])
	}
}

func TestLoad_MissingFileIsNotFound(t *testing.T) {
	_, err := NewReader().Load(filepath.Join(t.TempDir(), "absent.nii.gz"))
	if !core.IsMapNotFound(err) {
		t.Fatalf("expected ErrMapNotFound, got %v", err)
	}
}

func TestLoad_CorruptFileIsUnreadableNotMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.nii")
	if err := os.WriteFile(path, []byte("this is not a nifti map at all"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := NewReader().Load(path)
	if !errors.Is(err, core.ErrMapUnreadable) {
		t.Fatalf("expected ErrMapUnreadable, got %v", err)
	}
	if core.IsMapNotFound(err) {
		t.Error("corruption must not be reported as not-found")
	}
}

func TestLoad_TruncatedVoxelsIsUnreadable(t *testing.T) {
	vol := gradientVolume(t, 8, 8, 8, 1)
	dir := t.TempDir()
	full := filepath.Join(dir, "full.nii")
	if err := Write(full, vol); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	raw, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	truncated := filepath.Join(dir, "truncated.nii")
	if err := os.WriteFile(truncated, raw[:len(raw)/2], 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err = NewReader().Load(truncated)
	if !errors.Is(err, core.ErrMapUnreadable) {
		t.Fatalf("expected ErrMapUnreadable, got %v", err)
	}
}
