package anita

import (
	"sync"
	"sync/atomic"
)

// Trace is one channel's calibrated signal as (time, amplitude) pairs.
// Times are in nanoseconds and, with timing calibration applied, are not
// evenly spaced. Traces are pooled: a Trace is valid until Release is
// called and must be released exactly once, before the next channel of
// the same calibrated view is extracted.
type Trace struct {
	Times []float64
	Amps  []float64
}

// Waveform is an evenly sampled channel signal produced by a Resampler.
// Samples are amplitudes in mV separated by Dt nanoseconds. Like Trace,
// a Waveform is pooled and must be released exactly once.
type Waveform struct {
	Samples []float32
	Dt      float64
}

// Live intermediate accounting. Pools recycle the backing slices; the
// counters exist so tests can verify that every per-channel intermediate
// acquired during a batch fill was released.
var (
	liveTraces    atomic.Int64
	liveWaveforms atomic.Int64
)

var tracePool = sync.Pool{
	New: func() any { return new(Trace) },
}

var waveformPool = sync.Pool{
	New: func() any { return new(Waveform) },
}

// newTrace acquires a pooled trace with n-element slices.
func newTrace(n int) *Trace {
	t := tracePool.Get().(*Trace)
	if cap(t.Times) < n {
		t.Times = make([]float64, n)
		t.Amps = make([]float64, n)
	}
	t.Times = t.Times[:n]
	t.Amps = t.Amps[:n]
	liveTraces.Add(1)
	return t
}

// Release returns the trace to its pool. The trace and its slices must
// not be used afterwards.
func (t *Trace) Release() {
	liveTraces.Add(-1)
	tracePool.Put(t)
}

// newWaveform acquires a pooled waveform with an n-element sample slice.
func newWaveform(n int) *Waveform {
	w := waveformPool.Get().(*Waveform)
	if cap(w.Samples) < n {
		w.Samples = make([]float32, n)
	}
	w.Samples = w.Samples[:n]
	liveWaveforms.Add(1)
	return w
}

// Release returns the waveform to its pool. The waveform and its sample
// slice must not be used afterwards.
func (w *Waveform) Release() {
	liveWaveforms.Add(-1)
	waveformPool.Put(w)
}

// liveIntermediates reports the number of unreleased traces and
// waveforms. Test hook.
func liveIntermediates() (traces, waveforms int64) {
	return liveTraces.Load(), liveWaveforms.Load()
}
