package anita

import (
	"fmt"

	"go.uber.org/zap"
)

// BatchResult reports what a fill call actually did. LastEvent alone
// cannot distinguish a completed batch from one truncated by a run
// boundary, so the filled slot count and the boundary flag are returned
// alongside it.
type BatchResult struct {
	// LastEvent is the event number of the last event processed.
	LastEvent uint32

	// Filled is the number of event slots written, counting from slot 0.
	// Slots at indices >= Filled retain their prior contents.
	Filled int

	// RunChanged reports that the source crossed a run boundary and the
	// reader's stored run was updated.
	RunChanged bool
}

// WaveformReader extracts per-channel waveforms from a sequential run of
// calibrated events and packs them into caller-supplied buffers, one
// batch per call. It owns a cursor into the event source and tracks the
// run of the most recently attempted read.
//
// A WaveformReader is not safe for concurrent use, and a fill call
// blocks for its full duration on the source's file I/O and calibration.
type WaveformReader struct {
	run       int
	source    EventSource
	resampler *Resampler
	log       *zap.Logger

	ds *Dataset // set when the reader owns its dataset
}

// NewWaveformReader opens the calibrated event source for the given run
// and wraps it in a reader. The source is opened with the default
// calibration mode unless WithCalibration overrides it.
func NewWaveformReader(run int, opts ...Option) (*WaveformReader, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	ds, err := OpenRun(run, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening run %d: %w", run, err)
	}

	rate := o.rate
	if rate == 0 {
		rate = ds.SampleRate()
	}

	return &WaveformReader{
		run:       ds.CurrentRun(),
		source:    ds,
		resampler: NewResampler(rate),
		log:       o.log,
		ds:        ds,
	}, nil
}

// NewWaveformReaderFrom wraps an existing event source. The caller keeps
// ownership of the source; Close does not touch it.
func NewWaveformReaderFrom(source EventSource, opts ...Option) *WaveformReader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &WaveformReader{
		run:       source.CurrentRun(),
		source:    source,
		resampler: NewResampler(o.rate),
		log:       o.log,
	}
}

// Run returns the run of the most recently attempted event read.
func (r *WaveformReader) Run() int {
	return r.run
}

// Close closes the underlying dataset if the reader owns one.
func (r *WaveformReader) Close() error {
	if r.ds != nil {
		return r.ds.Close()
	}
	return nil
}

// FillNextBatch fills the buffer with the next batch of waveforms, one
// event per event slot, and returns what it did.
//
// This is the unchecked fast path: the buffer's declared shape is
// trusted absolutely, and nothing verifies that its phi, ring, or pol
// axes match the detector geometry. A mismatched buffer is filled with
// semantically misplaced values, not rejected. FillNextBatchChecked is
// the validated entry point.
//
// For each channel, only samples [0, N) are written, where N is the
// smaller of the resampled waveform length and the buffer's sample axis;
// the rest of the slot keeps its prior contents. If a run boundary is
// crossed mid-batch the call returns early with the remaining slots
// untouched and the reader's stored run updated.
func (r *WaveformReader) FillNextBatch(buf *Buffer) (BatchResult, error) {
	return r.fill(buf)
}

// FillNextBatchChecked validates the buffer against the fixed ring and
// polarization enumerations and the source's geometry before filling,
// returning ErrShapeMismatch on a bad shape and ErrRunExhausted when the
// source has nothing left. The fill itself is identical to FillNextBatch.
func (r *WaveformReader) FillNextBatchChecked(buf *Buffer) (BatchResult, error) {
	if buf.Rings() != len(Rings) || buf.Pols() != len(Pols) {
		return BatchResult{}, fmt.Errorf("%w: buffer has %dx%d ring/pol axes, detector has %dx%d",
			ErrShapeMismatch, buf.Rings(), buf.Pols(), len(Rings), len(Pols))
	}
	if g, ok := r.source.(interface{ PhiSectors() int }); ok {
		if buf.PhiSectors() != g.PhiSectors() {
			return BatchResult{}, fmt.Errorf("%w: buffer has %d phi sectors, source has %d",
				ErrShapeMismatch, buf.PhiSectors(), g.PhiSectors())
		}
	}
	if d, ok := r.source.(interface{ Done() bool }); ok && d.Done() {
		return BatchResult{}, ErrRunExhausted
	}
	return r.fill(buf)
}

// fill drives the extraction loop. The nested order (event, phi, ring,
// pol, sample) mirrors the buffer's axis order so writes are sequential.
func (r *WaveformReader) fill(buf *Buffer) (res BatchResult, err error) {
	for slot := 0; slot < buf.events; slot++ {
		hdr := r.source.Header()
		res.LastEvent = hdr.EventNumber

		cal, err := r.source.Calibrated()
		if err != nil {
			return res, fmt.Errorf("calibrating event %d: %w", hdr.EventNumber, err)
		}

		for phi := 0; phi < buf.phiSectors; phi++ {
			for _, ring := range Rings {
				for _, pol := range Pols {
					tr := cal.ChannelTrace(ring, phi, pol)
					wf, err := r.resampler.Resample(tr)
					if err != nil {
						tr.Release()
						return res, fmt.Errorf("resampling event %d channel %s: %w",
							hdr.EventNumber, ChannelID(phi, ring, pol), err)
					}

					n := len(wf.Samples)
					if n > buf.samples {
						n = buf.samples
					}
					off := buf.index(slot, phi, int(ring), int(pol))
					copy(buf.data[off:off+n], wf.Samples[:n])

					// Intermediates must not outlive this channel's copy;
					// the next extraction reuses the same calibrated view.
					wf.Release()
					tr.Release()
				}
			}
		}
		res.Filled = slot + 1

		if err := r.source.Advance(); err != nil {
			return res, fmt.Errorf("advancing past event %d: %w", hdr.EventNumber, err)
		}

		if cur := r.source.CurrentRun(); cur != r.run {
			r.run = cur
			res.RunChanged = true
			r.log.Debug("run boundary during batch",
				zap.Int("run", cur),
				zap.Uint32("last_event", res.LastEvent),
				zap.Int("filled", res.Filled))
			return res, nil
		}
	}

	r.log.Debug("filled batch",
		zap.Int("run", r.run),
		zap.Uint32("last_event", res.LastEvent),
		zap.Int("filled", res.Filled))
	return res, nil
}
