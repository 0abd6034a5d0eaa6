// Package calib converts raw event records into calibrated channel traces.
//
// Calibration has two parts: amplitude (pedestal subtraction and the
// counts-to-millivolts scale) and timing (the nominal sample clock plus
// the per-sample clock offsets measured for the run). With timing
// calibration applied the sample times are no longer evenly spaced;
// downstream code resamples them onto an even grid.
package calib

import (
	"fmt"

	"github.com/robert-malhotra/go-anita/internal/runfile"
)

// Mode selects how much calibration is applied to a trace.
type Mode int

const (
	// ModeDefault applies pedestal subtraction, voltage scaling, and
	// per-sample clock timing.
	ModeDefault Mode = iota

	// ModeNone applies only the voltage scale, with nominal even timing.
	ModeNone
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeNone:
		return "none"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Calibrator applies a run's calibration constants to its raw events.
// Sample times depend only on the run constants, not on the event, so
// they are computed once at construction.
type Calibrator struct {
	mode    Mode
	cal     runfile.Calibration
	geom    runfile.Geometry
	times   []float64 // per-sample times in ns, shared by every channel
	mvScale float64
}

// New creates a calibrator for a run's calibration block and geometry.
// rate is the nominal sampling rate in GSa/s.
func New(mode Mode, cal runfile.Calibration, geom runfile.Geometry, rate float64) *Calibrator {
	c := &Calibrator{
		mode:    mode,
		cal:     cal,
		geom:    geom,
		times:   make([]float64, geom.Samples),
		mvScale: float64(cal.MilliVoltsPerCount),
	}

	// Clock offsets are fractions of a sample period; they are assumed
	// to stay within (-0.5, 0.5) so the calibrated times remain strictly
	// increasing.
	for i := range c.times {
		t := float64(i)
		if mode == ModeDefault {
			t += float64(cal.ClockOffsets[i])
		}
		c.times[i] = t / rate
	}

	return c
}

// Mode returns the calibration mode.
func (c *Calibrator) Mode() Mode {
	return c.mode
}

// Channel fills times (ns) and amps (mV) for one channel of a raw event.
// Both slices must be at least Geometry.Samples long. ch is the
// channel-major index from Geometry.ChannelIndex.
func (c *Calibrator) Channel(ev *runfile.Event, ch int, times, amps []float64) {
	n := c.geom.Samples
	raw := ev.Data[ch*n : (ch+1)*n]

	pedestal := 0.0
	if c.mode == ModeDefault {
		pedestal = float64(c.cal.Pedestals[ch])
	}

	for i := 0; i < n; i++ {
		times[i] = c.times[i]
		amps[i] = (float64(raw[i]) - pedestal) * c.mvScale
	}
}
