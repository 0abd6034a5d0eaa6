package anita

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBufferShape(t *testing.T) {
	buf, err := NewBuffer(2, 16, 3, 2, 260)
	require.NoError(t, err)

	assert.Equal(t, [5]int{2, 16, 3, 2, 260}, buf.Shape())
	assert.Equal(t, 2, buf.Events())
	assert.Equal(t, 16, buf.PhiSectors())
	assert.Equal(t, 3, buf.Rings())
	assert.Equal(t, 2, buf.Pols())
	assert.Equal(t, 260, buf.Samples())
	assert.Len(t, buf.Data(), 2*16*3*2*260)
}

func TestNewBufferRejectsNonPositiveAxes(t *testing.T) {
	for _, shape := range [][5]int{
		{0, 16, 3, 2, 260},
		{1, 0, 3, 2, 260},
		{1, 16, -1, 2, 260},
		{1, 16, 3, 0, 260},
		{1, 16, 3, 2, 0},
	} {
		_, err := NewBuffer(shape[0], shape[1], shape[2], shape[3], shape[4])
		assert.ErrorIs(t, err, ErrShapeMismatch, "shape %v", shape)
	}
}

func TestNewStandardBuffer(t *testing.T) {
	buf, err := NewStandardBuffer(3)
	require.NoError(t, err)
	assert.Equal(t, [5]int{3, NumPhiSectors, 3, 2, NumSamples}, buf.Shape())
}

func TestBufferSetAt(t *testing.T) {
	buf, err := NewBuffer(2, 4, 3, 2, 8)
	require.NoError(t, err)

	require.NoError(t, buf.Set(1, 3, RingBottom, PolVertical, 7, 2.5))
	v, err := buf.At(1, 3, RingBottom, PolVertical, 7)
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), v)

	// Row-major layout: the element above is the very last one.
	assert.Equal(t, float32(2.5), buf.Data()[len(buf.Data())-1])
}

func TestBufferAtBounds(t *testing.T) {
	buf, err := NewBuffer(1, 4, 3, 2, 8)
	require.NoError(t, err)

	_, err = buf.At(1, 0, RingTop, PolHorizontal, 0)
	assert.Error(t, err)
	_, err = buf.At(0, 4, RingTop, PolHorizontal, 0)
	assert.Error(t, err)
	_, err = buf.At(0, 0, Ring(3), PolHorizontal, 0)
	assert.Error(t, err)
	_, err = buf.At(0, 0, RingTop, Pol(2), 0)
	assert.Error(t, err)
	_, err = buf.At(0, 0, RingTop, PolHorizontal, 8)
	assert.Error(t, err)
	assert.Error(t, buf.Set(0, 0, RingTop, PolHorizontal, -1, 0))
}

func TestBufferFill(t *testing.T) {
	buf, err := NewBuffer(1, 2, 3, 2, 4)
	require.NoError(t, err)

	buf.Fill(-3)
	for _, v := range buf.Data() {
		require.Equal(t, float32(-3), v)
	}
}

func TestBufferIndexMirrorsAxisOrder(t *testing.T) {
	buf, err := NewBuffer(2, 4, 3, 2, 8)
	require.NoError(t, err)

	// Walking the axes in (event, phi, ring, pol) order must walk the
	// backing slice in contiguous sample-sized steps.
	want := 0
	for event := 0; event < 2; event++ {
		for phi := 0; phi < 4; phi++ {
			for ring := 0; ring < 3; ring++ {
				for pol := 0; pol < 2; pol++ {
					assert.Equal(t, want, buf.index(event, phi, ring, pol))
					want += 8
				}
			}
		}
	}
	assert.Equal(t, len(buf.Data()), want)
}
