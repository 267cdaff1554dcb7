package volume

import (
	"fmt"
)

// Volume is an in-memory volumetric map decoded to float64 voxels.
// Data is stored in on-disk NIfTI order: x fastest, then y, z, and the
// series axis slowest, so one series frame is a contiguous block.
type Volume struct {
	Nx, Ny, Nz int
	Nt         int // series-axis length, 1 for plain 3D maps
	Data       []float64
}

// New validates extents against the voxel buffer and wraps it in a Volume.
func New(nx, ny, nz, nt int, data []float64) (*Volume, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("invalid volume extents %dx%dx%d", nx, ny, nz)
	}
	if nt <= 0 {
		nt = 1
	}
	if want := nx * ny * nz * nt; len(data) != want {
		return nil, fmt.Errorf("voxel buffer length %d does not match extents %dx%dx%dx%d (%d)",
			len(data), nx, ny, nz, nt, want)
	}
	return &Volume{Nx: nx, Ny: ny, Nz: nz, Nt: nt, Data: data}, nil
}

// FrameVoxels returns the number of voxels in one 3D frame.
func (v *Volume) FrameVoxels() int {
	return v.Nx * v.Ny * v.Nz
}

// NVox returns the total number of voxels across all frames.
func (v *Volume) NVox() int {
	return v.FrameVoxels() * v.Nt
}

// Frame returns the voxels of the t-th 3D frame along the series axis.
// The returned slice aliases the volume's buffer; callers must not mutate it
// when the volume is shared.
func (v *Volume) Frame(t int) []float64 {
	n := v.FrameVoxels()
	return v.Data[t*n : (t+1)*n]
}

// Is4D reports whether the volume carries more than one series frame.
func (v *Volume) Is4D() bool {
	return v.Nt > 1
}
