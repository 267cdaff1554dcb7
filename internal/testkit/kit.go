// Package testkit provides synthetic volumetric fixtures for tests.
package testkit

import (
	"voxreport/adapters/nifti"
	"voxreport/domain/volume"
)

// ConstVolume builds a 3D volume with every voxel set to value.
func ConstVolume(nx, ny, nz int, value float64) *volume.Volume {
	data := make([]float64, nx*ny*nz)
	for i := range data {
		data[i] = value
	}
	v, err := volume.New(nx, ny, nz, 1, data)
	if err != nil {
		panic(err)
	}
	return v
}

// SeriesVolume builds a 4D volume whose frame t is filled with values[t].
func SeriesVolume(nx, ny, nz int, values []float64) *volume.Volume {
	n := nx * ny * nz
	data := make([]float64, n*len(values))
	for t, v := range values {
		for i := 0; i < n; i++ {
			data[t*n+i] = v
		}
	}
	vol, err := volume.New(nx, ny, nz, len(values), data)
	if err != nil {
		panic(err)
	}
	return vol
}

// VolumeFromVoxels wraps a raw voxel slice as a 3D volume of the given grid.
func VolumeFromVoxels(nx, ny, nz int, voxels []float64) *volume.Volume {
	v, err := volume.New(nx, ny, nz, 1, voxels)
	if err != nil {
		panic(err)
	}
	return v
}

// WriteMap persists a fixture volume as a NIfTI-1 file.
func WriteMap(path string, vol *volume.Volume) error {
	return nifti.Write(path, vol)
}
