package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Flat index file layout, little-endian: 4-byte magic, uint32 format
// version, uint32 dimension, uint32 vector count, then count*dimension
// float32 values in position order.
const (
	formatMagic   = "RRIX"
	formatVersion = 1
)

var errBadFormat = errors.New("malformed index file")

// writeVectors writes the flat index artifact via a temp file and rename
// so a crash never leaves a partial file behind.
func writeVectors(path string, dim int, vectors [][]float32) error {
	buf := make([]byte, 0, 16+len(vectors)*dim*4)
	buf = append(buf, formatMagic...)
	buf = binary.LittleEndian.AppendUint32(buf, formatVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dim))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(vectors)))
	for _, vec := range vectors {
		for _, v := range vec {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	return atomicWrite(path, buf)
}

// readVectors loads a flat index artifact.
func readVectors(path string) (dim int, vectors [][]float32, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}
	if len(data) < 16 || string(data[:4]) != formatMagic {
		return 0, nil, fmt.Errorf("%s: %w: bad magic", path, errBadFormat)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != formatVersion {
		return 0, nil, fmt.Errorf("%s: %w: unsupported version %d", path, errBadFormat, version)
	}
	dim = int(binary.LittleEndian.Uint32(data[8:12]))
	count := int(binary.LittleEndian.Uint32(data[12:16]))
	if len(data) != 16+count*dim*4 {
		return 0, nil, fmt.Errorf("%s: %w: truncated payload", path, errBadFormat)
	}

	vectors = make([][]float32, count)
	off := 16
	for i := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
		}
		vectors[i] = vec
	}
	return dim, vectors, nil
}

// atomicWrite writes data to a temp file in the target directory and
// renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
