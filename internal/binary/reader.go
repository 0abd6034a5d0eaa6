// Package binary provides low-level binary I/O for run file parsing and writing.
//
// Run files are always little-endian, so unlike general-purpose readers
// there is no byte-order or field-width configuration here.
package binary

import (
	"encoding/binary"
	"math"
)

// ReaderAt is the minimal interface the Reader needs from its source.
type ReaderAt interface {
	ReadAt(p []byte, off int64) (int, error)
}

// Reader reads little-endian values from an underlying ReaderAt while
// tracking its own position.
type Reader struct {
	r   ReaderAt
	pos int64
}

// NewReader creates a reader positioned at the start of r.
func NewReader(r ReaderAt) *Reader {
	return &Reader{r: r}
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying source but has independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{r: r.r, pos: offset}
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) {
	r.pos += n
}

// ReadBytes reads exactly n bytes from the current position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := r.r.ReadAt(buf, r.pos); err != nil {
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadFloat32 reads an IEEE 754 32-bit float.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads an IEEE 754 64-bit float.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadInt16s reads n signed 16-bit integers into dst, which must have
// length at least n. Sample blocks are the hot path of event decoding,
// so this reads one contiguous byte slice instead of n individual values.
func (r *Reader) ReadInt16s(dst []int16, n int) error {
	buf, err := r.ReadBytes(2 * n)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(buf[2*i:]))
	}
	return nil
}

// ReadFloat32s reads n 32-bit floats into dst, which must have length at
// least n.
func (r *Reader) ReadFloat32s(dst []float32, n int) error {
	buf, err := r.ReadBytes(4 * n)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return nil
}
