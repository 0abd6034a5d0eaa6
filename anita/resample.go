package anita

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// akimaMinPoints is the smallest trace an Akima spline can be fitted to.
const akimaMinPoints = 5

// Resampler converts irregularly sampled traces into evenly sampled
// waveforms on a fixed-rate grid. The grid spans the trace's own time
// range, so the output sample count depends on the trace and may differ
// from any particular buffer's sample axis.
type Resampler struct {
	rate float64 // GSa/s
	dt   float64 // ns
}

// NewResampler creates a resampler with the given rate in GSa/s. A
// non-positive rate selects the nominal digitizer rate.
func NewResampler(rate float64) *Resampler {
	if rate <= 0 {
		rate = SampleRate
	}
	return &Resampler{rate: rate, dt: 1 / rate}
}

// Rate returns the resampling rate in GSa/s.
func (r *Resampler) Rate() float64 {
	return r.rate
}

// Resample interpolates the trace onto an even grid starting at the
// trace's first sample time. Traces with at least akimaMinPoints samples
// use an Akima spline; shorter traces fall back to piecewise-linear
// interpolation. The returned waveform is pooled; the caller must
// release it.
func (r *Resampler) Resample(tr *Trace) (*Waveform, error) {
	n := len(tr.Times)
	if n == 0 {
		return nil, fmt.Errorf("resampling: %w", ErrNoData)
	}

	t0 := tr.Times[0]
	tEnd := tr.Times[n-1]
	// The epsilon keeps float rounding from cutting the grid one point
	// short when the span is an exact multiple of dt.
	count := int(math.Floor((tEnd-t0)/r.dt+1e-9)) + 1

	wf := newWaveform(count)
	wf.Dt = r.dt

	if n == 1 {
		wf.Samples[0] = float32(tr.Amps[0])
		return wf, nil
	}

	var p interp.FittablePredictor
	if n >= akimaMinPoints {
		p = &interp.AkimaSpline{}
	} else {
		p = &interp.PiecewiseLinear{}
	}
	if err := p.Fit(tr.Times, tr.Amps); err != nil {
		wf.Release()
		return nil, fmt.Errorf("fitting trace: %w", err)
	}

	for i := 0; i < count; i++ {
		t := t0 + float64(i)*r.dt
		// Rounding can push the last grid point past the fitted range.
		if t > tEnd {
			t = tEnd
		}
		wf.Samples[i] = float32(p.Predict(t))
	}

	return wf, nil
}
