package anita

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEvent is one event of a synthetic source.
type fakeEvent struct {
	num uint32
	run int
}

// fakeSource is a synthetic EventSource whose channel traces carry a
// caller-chosen constant amplitude per (ring, phi, pol), sampled evenly
// at the nominal rate so resampling reproduces the constant exactly.
type fakeSource struct {
	events     []fakeEvent
	idx        int
	done       bool
	phiSectors int
	traceLen   int
	value      func(ring Ring, phi int, pol Pol) float64
	hdr        Header
}

func newFakeSource(traceLen int, value func(Ring, int, Pol) float64, events ...fakeEvent) *fakeSource {
	return &fakeSource{
		events:     events,
		phiSectors: 4,
		traceLen:   traceLen,
		value:      value,
	}
}

func (s *fakeSource) Header() *Header {
	e := s.events[s.idx]
	s.hdr = Header{EventNumber: e.num, Run: e.run}
	return &s.hdr
}

func (s *fakeSource) Calibrated() (CalibratedEvent, error) {
	if s.done {
		return nil, ErrRunExhausted
	}
	return &fakeCalibrated{src: s}, nil
}

func (s *fakeSource) Advance() error {
	if s.done {
		return ErrRunExhausted
	}
	if s.idx+1 < len(s.events) {
		s.idx++
		return nil
	}
	s.done = true
	return nil
}

func (s *fakeSource) CurrentRun() int { return s.events[s.idx].run }

func (s *fakeSource) PhiSectors() int { return s.phiSectors }

func (s *fakeSource) Done() bool { return s.done }

type fakeCalibrated struct {
	src *fakeSource
}

func (c *fakeCalibrated) ChannelTrace(ring Ring, phi int, pol Pol) *Trace {
	tr := newTrace(c.src.traceLen)
	v := c.src.value(ring, phi, pol)
	for i := range tr.Times {
		tr.Times[i] = float64(i) / SampleRate
		tr.Amps[i] = v
	}
	return tr
}

func constant(v float64) func(Ring, int, Pol) float64 {
	return func(Ring, int, Pol) float64 { return v }
}

func TestFillNextBatchSequentialEvents(t *testing.T) {
	src := newFakeSource(16, constant(1),
		fakeEvent{100, 1}, fakeEvent{101, 1}, fakeEvent{102, 1}, fakeEvent{103, 1})
	r := NewWaveformReaderFrom(src)

	buf, err := NewBuffer(1, src.phiSectors, len(Rings), len(Pols), 16)
	require.NoError(t, err)

	for _, want := range []uint32{100, 101, 102, 103} {
		res, err := r.FillNextBatch(buf)
		require.NoError(t, err)
		assert.Equal(t, want, res.LastEvent)
		assert.Equal(t, 1, res.Filled)
		assert.False(t, res.RunChanged)
	}

	// The source is spent; the next attempt fails fast instead of
	// rereading the final event.
	_, err = r.FillNextBatch(buf)
	require.ErrorIs(t, err, ErrRunExhausted)
}

func TestFillNextBatchTruncatesToWaveform(t *testing.T) {
	const sentinel = 42.0

	// 5 trace samples resample to 5 waveform samples, shorter than the
	// 9-sample buffer axis.
	src := newFakeSource(5, constant(7), fakeEvent{1, 1})
	r := NewWaveformReaderFrom(src)

	buf, err := NewBuffer(1, src.phiSectors, len(Rings), len(Pols), 9)
	require.NoError(t, err)
	buf.Fill(sentinel)

	_, err = r.FillNextBatch(buf)
	require.NoError(t, err)

	for phi := 0; phi < buf.PhiSectors(); phi++ {
		for _, ring := range Rings {
			for _, pol := range Pols {
				for s := 0; s < buf.Samples(); s++ {
					v, err := buf.At(0, phi, ring, pol, s)
					require.NoError(t, err)
					if s < 5 {
						assert.InDelta(t, 7, v, 1e-4, "sample %d should be written", s)
					} else {
						assert.Equal(t, float32(sentinel), v, "sample %d should keep its prior value", s)
					}
				}
			}
		}
	}
}

func TestFillNextBatchClipsLongWaveform(t *testing.T) {
	// 14 trace samples against a 9-sample buffer axis: exactly 9 written.
	src := newFakeSource(14, constant(3), fakeEvent{1, 1})
	r := NewWaveformReaderFrom(src)

	buf, err := NewBuffer(1, src.phiSectors, len(Rings), len(Pols), 9)
	require.NoError(t, err)

	_, err = r.FillNextBatch(buf)
	require.NoError(t, err)

	for s := 0; s < buf.Samples(); s++ {
		v, err := buf.At(0, 0, RingTop, PolHorizontal, s)
		require.NoError(t, err)
		assert.InDelta(t, 3, v, 1e-4)
	}
}

func TestFillNextBatchChannelOrdering(t *testing.T) {
	encode := func(ring Ring, phi int, pol Pol) float64 {
		return float64(100*phi + 10*int(ring) + int(pol))
	}
	src := newFakeSource(8, encode, fakeEvent{1, 1}, fakeEvent{2, 1})
	r := NewWaveformReaderFrom(src)

	buf, err := NewBuffer(2, src.phiSectors, len(Rings), len(Pols), 8)
	require.NoError(t, err)

	res, err := r.FillNextBatch(buf)
	require.NoError(t, err)
	require.Equal(t, 2, res.Filled)

	// The ring axis must decode to top/middle/bottom in index order and
	// the pol axis to horizontal/vertical, for every event and sector.
	for event := 0; event < 2; event++ {
		for phi := 0; phi < buf.PhiSectors(); phi++ {
			for ri, ring := range Rings {
				for pi, pol := range Pols {
					v, err := buf.At(event, phi, Ring(ri), Pol(pi), 0)
					require.NoError(t, err)
					assert.InDelta(t, encode(ring, phi, pol), v, 1e-4,
						"event %d phi %d ring %d pol %d", event, phi, ri, pi)
				}
			}
		}
	}
}

func TestFillNextBatchRunBoundary(t *testing.T) {
	const sentinel = -1.0

	src := newFakeSource(8, constant(5),
		fakeEvent{100, 1}, fakeEvent{101, 1}, fakeEvent{102, 2}, fakeEvent{103, 2})
	r := NewWaveformReaderFrom(src)
	require.Equal(t, 1, r.Run())

	buf, err := NewBuffer(3, src.phiSectors, len(Rings), len(Pols), 8)
	require.NoError(t, err)
	buf.Fill(sentinel)

	res, err := r.FillNextBatch(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(101), res.LastEvent, "should return the last event of run 1")
	assert.Equal(t, 2, res.Filled)
	assert.True(t, res.RunChanged)
	assert.Equal(t, 2, r.Run(), "stored run should move to run 2")

	// Slot 2 was never written.
	for s := 0; s < buf.Samples(); s++ {
		v, err := buf.At(2, 0, RingTop, PolHorizontal, s)
		require.NoError(t, err)
		assert.Equal(t, float32(sentinel), v)
	}

	// The next batch picks up at the first event of run 2 and runs out
	// of events mid-batch.
	buf.Fill(sentinel)
	res, err = r.FillNextBatch(buf)
	require.ErrorIs(t, err, ErrRunExhausted)
	assert.Equal(t, uint32(103), res.LastEvent)
	assert.Equal(t, 2, res.Filled)
}

func TestFillNextBatchExactFit(t *testing.T) {
	src := newFakeSource(8, constant(5), fakeEvent{10, 7}, fakeEvent{11, 7})
	r := NewWaveformReaderFrom(src)

	buf, err := NewBuffer(2, src.phiSectors, len(Rings), len(Pols), 8)
	require.NoError(t, err)

	res, err := r.FillNextBatch(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(11), res.LastEvent)
	assert.Equal(t, 2, res.Filled)
	assert.False(t, res.RunChanged, "exact fit must not report a boundary")
	assert.Equal(t, 7, r.Run())
}

func TestFillNextBatchReleasesIntermediates(t *testing.T) {
	src := newFakeSource(16, constant(1),
		fakeEvent{1, 1}, fakeEvent{2, 1}, fakeEvent{3, 1})
	r := NewWaveformReaderFrom(src)

	buf, err := NewBuffer(3, src.phiSectors, len(Rings), len(Pols), 16)
	require.NoError(t, err)

	_, err = r.FillNextBatch(buf)
	require.NoError(t, err)

	traces, waveforms := liveIntermediates()
	assert.Zero(t, traces, "all traces should be released")
	assert.Zero(t, waveforms, "all waveforms should be released")
}

func TestFillNextBatchCheckedShapeMismatch(t *testing.T) {
	src := newFakeSource(8, constant(1), fakeEvent{1, 1})
	r := NewWaveformReaderFrom(src)

	// Wrong ring axis.
	buf, err := NewBuffer(1, src.phiSectors, 2, len(Pols), 8)
	require.NoError(t, err)
	_, err = r.FillNextBatchChecked(buf)
	require.ErrorIs(t, err, ErrShapeMismatch)

	// Wrong phi axis for this source's geometry.
	buf, err = NewBuffer(1, src.phiSectors+1, len(Rings), len(Pols), 8)
	require.NoError(t, err)
	_, err = r.FillNextBatchChecked(buf)
	require.ErrorIs(t, err, ErrShapeMismatch)

	// The unchecked path accepts the same buffer.
	_, err = r.FillNextBatch(buf)
	require.NoError(t, err)
}

func TestFillNextBatchCheckedExhausted(t *testing.T) {
	src := newFakeSource(8, constant(1), fakeEvent{1, 1})
	r := NewWaveformReaderFrom(src)

	buf, err := NewBuffer(1, src.phiSectors, len(Rings), len(Pols), 8)
	require.NoError(t, err)

	_, err = r.FillNextBatchChecked(buf)
	require.NoError(t, err)

	buf.Fill(9)
	_, err = r.FillNextBatchChecked(buf)
	require.ErrorIs(t, err, ErrRunExhausted)

	// Nothing was written by the failed call.
	v, err := buf.At(0, 0, RingTop, PolHorizontal, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(9), v)
}
