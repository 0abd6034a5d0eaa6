package anita

import "go.uber.org/zap"

// CalMode selects the calibration applied when events are read.
type CalMode int

const (
	// CalDefault applies full amplitude and timing calibration.
	CalDefault CalMode = iota

	// CalNone applies only the voltage scale with nominal even timing.
	CalNone
)

// Option configures datasets and waveform readers.
type Option func(*options)

type options struct {
	flight  int
	dataDir string
	mode    CalMode
	rate    float64
	log     *zap.Logger
}

func defaultOptions() *options {
	return &options{
		flight: 4,
		mode:   CalDefault,
		log:    zap.NewNop(),
	}
}

// WithFlight sets the flight whose data directory is searched for runs.
// The default is flight 4.
func WithFlight(flight int) Option {
	return func(o *options) {
		o.flight = flight
	}
}

// WithDataDir overrides the configured flight data directory.
func WithDataDir(dir string) Option {
	return func(o *options) {
		o.dataDir = dir
	}
}

// WithCalibration sets the calibration mode. The default is CalDefault.
func WithCalibration(mode CalMode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithSampleRate overrides the resampling rate in GSa/s. By default a
// reader resamples at the rate recorded in the run file.
func WithSampleRate(rate float64) Option {
	return func(o *options) {
		if rate > 0 {
			o.rate = rate
		}
	}
}

// WithLogger attaches a logger. The default discards all output.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}
