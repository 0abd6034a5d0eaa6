package binary

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFile is a growable in-memory io.WriterAt.
type memFile struct {
	b []byte
}

func (m *memFile) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(m.b) {
		m.b = append(m.b, make([]byte, end-len(m.b))...)
	}
	return copy(m.b[off:], p), nil
}

func TestReaderValues(t *testing.T) {
	data := []byte{
		0x2a,                   // uint8
		0x34, 0x12,             // uint16
		0x78, 0x56, 0x34, 0x12, // uint32
		0xf0, 0xde, 0xbc, 0x9a, 0x78, 0x56, 0x34, 0x12, // uint64
	}
	r := NewReader(bytes.NewReader(data))

	v8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x2a), v8)

	v16, err := r.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v16)

	v32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), v32)

	v64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x123456789abcdef0), v64)

	assert.Equal(t, int64(len(data)), r.Pos())
}

func TestReaderAtAndSkip(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	r := NewReader(bytes.NewReader(data))

	r2 := r.At(4)
	b, err := r2.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5}, b)

	// The original reader's position is untouched.
	assert.Equal(t, int64(0), r.Pos())

	r.Skip(6)
	b, err = r.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{6, 7}, b)
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}))
	_, err := r.ReadUint32()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRoundTripScalars(t *testing.T) {
	var m memFile
	w := NewWriter(&m)

	require.NoError(t, w.WriteUint8(7))
	require.NoError(t, w.WriteUint16(0xbeef))
	require.NoError(t, w.WriteUint32(0xdeadbeef))
	require.NoError(t, w.WriteUint64(1<<40))
	require.NoError(t, w.WriteFloat32(2.5))
	require.NoError(t, w.WriteFloat64(-1e-9))
	require.NoError(t, w.WriteBytes([]byte("ANR4")))

	r := NewReader(bytes.NewReader(m.b))
	v8, _ := r.ReadUint8()
	v16, _ := r.ReadUint16()
	v32, _ := r.ReadUint32()
	v64, _ := r.ReadUint64()
	f32, _ := r.ReadFloat32()
	f64, _ := r.ReadFloat64()
	b, err := r.ReadBytes(4)
	require.NoError(t, err)

	assert.Equal(t, uint8(7), v8)
	assert.Equal(t, uint16(0xbeef), v16)
	assert.Equal(t, uint32(0xdeadbeef), v32)
	assert.Equal(t, uint64(1<<40), v64)
	assert.Equal(t, float32(2.5), f32)
	assert.Equal(t, -1e-9, f64)
	assert.Equal(t, []byte("ANR4"), b)
}

func TestRoundTripBlocks(t *testing.T) {
	samples := []int16{0, -1, 32767, -32768, 1000}
	floats := []float32{0, 1.5, -2.25, 3e7}

	var m memFile
	w := NewWriter(&m)
	require.NoError(t, w.WriteInt16s(samples))
	require.NoError(t, w.WriteFloat32s(floats))
	assert.Equal(t, int64(2*len(samples)+4*len(floats)), w.Pos())

	r := NewReader(bytes.NewReader(m.b))
	gotSamples := make([]int16, len(samples))
	require.NoError(t, r.ReadInt16s(gotSamples, len(samples)))
	gotFloats := make([]float32, len(floats))
	require.NoError(t, r.ReadFloat32s(gotFloats, len(floats)))

	assert.Equal(t, samples, gotSamples)
	assert.Equal(t, floats, gotFloats)
}

func TestWriterAtOverwrites(t *testing.T) {
	var m memFile
	w := NewWriter(&m)
	require.NoError(t, w.WriteUint32(0))
	require.NoError(t, w.WriteUint32(0x11111111))

	// Rewriting the first word must not disturb the second.
	require.NoError(t, w.At(0).WriteUint32(0x22222222))

	r := NewReader(bytes.NewReader(m.b))
	first, _ := r.ReadUint32()
	second, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x22222222), first)
	assert.Equal(t, uint32(0x11111111), second)
}
