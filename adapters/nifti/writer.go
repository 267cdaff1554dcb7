package nifti

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"voxreport/domain/volume"
)

// Write persists a volume as a single-file float32 NIfTI-1 dataset. Paths
// ending in .gz are gzip-compressed. The writer exists so pipelines and
// tests can fabricate maps; it emits only the fields the reader consumes.
func Write(path string, vol *volume.Volume) error {
	h := header{
		SizeOfHdr: headerSize,
		DataType:  dtFloat32,
		BitPix:    32,
		VoxOffset: defaultOffset,
		SclSlope:  1,
		Magic:     magicN1,
	}
	h.Dim[0] = 3
	if vol.Is4D() {
		h.Dim[0] = 4
	}
	h.Dim[1], h.Dim[2], h.Dim[3], h.Dim[4] = int16(vol.Nx), int16(vol.Ny), int16(vol.Nz), int16(vol.Nt)
	for i := 5; i < 8; i++ {
		h.Dim[i] = 1
	}
	for i := 0; i < 8; i++ {
		h.PixDim[i] = 1
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	// Four zero bytes: no header extensions.
	buf.Write([]byte{0, 0, 0, 0})

	voxels := make([]byte, 4*len(vol.Data))
	for i, v := range vol.Data {
		binary.LittleEndian.PutUint32(voxels[i*4:], math.Float32bits(float32(v)))
	}
	buf.Write(voxels)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create map file: %w", err)
	}
	defer f.Close()

	var dst io.Writer = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		dst = gz
	}
	if _, err := dst.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write map file: %w", err)
	}
	return nil
}
