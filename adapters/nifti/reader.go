package nifti

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"voxreport/domain/core"
	"voxreport/domain/volume"
	"voxreport/ports"
)

// Reader loads NIfTI-1 files into volumes. It implements ports.VolumeLoader.
type Reader struct{}

// NewReader creates a new NIfTI-1 reader.
func NewReader() *Reader {
	return &Reader{}
}

var _ ports.VolumeLoader = (*Reader)(nil)

// Load reads a .nii or .nii.gz file and decodes its voxels to float64.
//
// A missing file maps to core.ErrMapNotFound so callers can branch on the
// recoverable case; every other failure (bad magic, unsupported datatype,
// truncated voxel data) is core.ErrMapUnreadable and is never downgraded
// to not-found.
func (r *Reader) Load(path string) (*volume.Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewMapNotFoundError(path)
		}
		return nil, core.NewMapUnreadableError(path, err)
	}
	defer f.Close()

	raw, err := readMaybeGzipped(f)
	if err != nil {
		return nil, core.NewMapUnreadableError(path, err)
	}

	h, order, err := parseHeader(raw)
	if err != nil {
		return nil, core.NewMapUnreadableError(path, err)
	}

	vol, err := decodeVoxels(raw, h, order)
	if err != nil {
		return nil, core.NewMapUnreadableError(path, err)
	}
	return vol, nil
}

// readMaybeGzipped slurps the file, transparently ungzipping when the
// stream starts with the gzip magic. Gzip detection is by content, not
// extension, since .nii files are sometimes gzipped without renaming.
func readMaybeGzipped(f *os.File) ([]byte, error) {
	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("file too short: %w", err)
	}
	var src io.Reader = br
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("bad gzip stream: %w", err)
		}
		defer gz.Close()
		src = gz
	}
	return io.ReadAll(src)
}

// parseHeader decodes the 348-byte header, inferring byte order from the
// documented validity range of Dim[0] (1..7).
func parseHeader(raw []byte) (header, binary.ByteOrder, error) {
	if len(raw) < headerSize {
		return header{}, nil, fmt.Errorf("file shorter than NIfTI-1 header (%d bytes)", len(raw))
	}

	var h header
	var order binary.ByteOrder = binary.LittleEndian
	if err := binary.Read(bytes.NewReader(raw[:headerSize]), order, &h); err != nil {
		return header{}, nil, err
	}
	if h.Dim[0] <= 0 || h.Dim[0] > 7 {
		h = header{}
		order = binary.BigEndian
		if err := binary.Read(bytes.NewReader(raw[:headerSize]), order, &h); err != nil {
			return header{}, nil, err
		}
	}
	if h.Dim[0] <= 0 || h.Dim[0] > 7 {
		return header{}, nil, fmt.Errorf("cannot infer byte order: dim[0] not in [1, 7]")
	}
	if h.SizeOfHdr != headerSize {
		return header{}, nil, fmt.Errorf("invalid header size %d, want %d", h.SizeOfHdr, headerSize)
	}
	if h.Magic != magicN1 {
		return header{}, nil, fmt.Errorf("invalid file magic: single-file 'n+1' dataset required")
	}
	return h, order, nil
}

// decodeVoxels converts the on-disk voxel block to float64 and applies the
// header's scl_slope/scl_inter rescaling when set.
func decodeVoxels(raw []byte, h header, order binary.ByteOrder) (*volume.Volume, error) {
	nbyper := bytesPerVoxel(h.DataType)
	if nbyper == 0 {
		return nil, fmt.Errorf("unsupported datatype code %d", h.DataType)
	}

	extent := func(i int) int {
		if int(h.Dim[0]) >= i && h.Dim[i] > 0 {
			return int(h.Dim[i])
		}
		return 1
	}
	nx, ny, nz, nt := extent(1), extent(2), extent(3), extent(4)
	if extent(5) > 1 || extent(6) > 1 || extent(7) > 1 {
		return nil, fmt.Errorf("maps with more than 4 dimensions are not supported")
	}
	nvox := nx * ny * nz * nt

	offset := int(h.VoxOffset)
	if offset < headerSize {
		offset = defaultOffset
	}
	if len(raw) < offset+nvox*nbyper {
		return nil, fmt.Errorf("truncated voxel data: have %d bytes, need %d", len(raw), offset+nvox*nbyper)
	}
	block := raw[offset : offset+nvox*nbyper]

	data := make([]float64, nvox)
	for i := 0; i < nvox; i++ {
		b := block[i*nbyper : (i+1)*nbyper]
		switch h.DataType {
		case dtUint8:
			data[i] = float64(b[0])
		case dtInt8:
			data[i] = float64(int8(b[0]))
		case dtInt16:
			data[i] = float64(int16(order.Uint16(b)))
		case dtUint16:
			data[i] = float64(order.Uint16(b))
		case dtInt32:
			data[i] = float64(int32(order.Uint32(b)))
		case dtUint32:
			data[i] = float64(order.Uint32(b))
		case dtFloat32:
			data[i] = float64(math.Float32frombits(order.Uint32(b)))
		case dtFloat64:
			data[i] = math.Float64frombits(order.Uint64(b))
		}
	}

	slope, inter := float64(h.SclSlope), float64(h.SclInter)
	if slope != 0 && (slope != 1 || inter != 0) {
		for i := range data {
			data[i] = data[i]*slope + inter
		}
	}

	return volume.New(nx, ny, nz, nt, data)
}
