package anita

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-anita/internal/calib"
	"github.com/robert-malhotra/go-anita/internal/runfile"
)

// Header summarizes the event the dataset cursor is positioned on.
type Header struct {
	EventNumber uint32
	RealTime    time.Time
	TrigType    TrigType
	TrigTimeNs  uint32
	Run         int
}

// CalibratedEvent is the calibrated view of the current event. A view is
// valid only until the next Advance; extracting a trace after advancing
// reads the wrong event.
type CalibratedEvent interface {
	// ChannelTrace returns the calibrated trace for one channel. Like the
	// buffer fill path, it performs no geometry validation: a phi sector
	// outside the file's geometry yields an aliased or out-of-range
	// channel. The returned trace is pooled and must be released.
	ChannelTrace(ring Ring, phi int, pol Pol) *Trace
}

// EventSource is a sequential cursor over a run's calibrated events.
// Advancing past the end of a run crosses into the next available run
// when one exists.
type EventSource interface {
	Header() *Header
	Calibrated() (CalibratedEvent, error)
	Advance() error
	CurrentRun() int
}

// Dataset is the file-backed EventSource. It traverses the opened run and
// then any higher-numbered runs available under the same data directory,
// calibrating events on demand.
//
// A Dataset is not safe for concurrent use.
type Dataset struct {
	flight  int
	dataDir string
	mode    calib.Mode
	log     *zap.Logger

	runs   []int // traversal sequence: opened run, then available later runs
	runIdx int

	file *runfile.File
	cal  *calib.Calibrator
	view calibratedEvent

	ev    runfile.Event
	index int
	hdr   Header

	done   bool
	closed bool
}

// OpenRun opens the dataset for a run and positions it on the run's first
// event. The flight data directory is resolved from configuration unless
// WithDataDir is given.
func OpenRun(run int, opts ...Option) (*Dataset, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	dir := o.dataDir
	if dir == "" {
		var err error
		if dir, err = DataDirectory(o.flight); err != nil {
			return nil, err
		}
		if dir == "" {
			return nil, fmt.Errorf("no data directory configured for flight %d", o.flight)
		}
	}

	d := &Dataset{
		flight:  o.flight,
		dataDir: dir,
		mode:    calMode(o.mode),
		log:     o.log,
		runs:    []int{run},
	}
	d.view.d = d

	// Later runs under the same directory are crossed into when this
	// run's events are exhausted.
	if avail, err := AvailableRunsIn(dir); err == nil {
		for _, r := range avail {
			if r > run {
				d.runs = append(d.runs, r)
			}
		}
	}

	if err := d.openRunFile(run); err != nil {
		return nil, err
	}
	if err := d.loadEvent(0); err != nil {
		d.file.Close()
		return nil, err
	}

	return d, nil
}

// Close closes the dataset and its open run file.
func (d *Dataset) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// Header returns the current event's header. The returned pointer is
// into dataset state and is overwritten by Advance.
func (d *Dataset) Header() *Header {
	return &d.hdr
}

// Calibrated returns the calibrated view of the current event. The view
// is reused; it is valid only until the next Advance.
func (d *Dataset) Calibrated() (CalibratedEvent, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.done {
		return nil, ErrRunExhausted
	}
	return &d.view, nil
}

// Advance moves the cursor to the next event, crossing into the next
// available run when the current run file is exhausted. Consuming the
// final event of the final run succeeds and marks the dataset done;
// only a further Advance returns ErrRunExhausted.
func (d *Dataset) Advance() error {
	if d.closed {
		return ErrClosed
	}
	if d.done {
		return ErrRunExhausted
	}

	if d.index+1 < d.file.NumEvents() {
		return d.loadEvent(d.index + 1)
	}

	// Current run file exhausted; cross into the next available run.
	if d.runIdx+1 < len(d.runs) {
		d.runIdx++
		next := d.runs[d.runIdx]
		prev := d.hdr.Run
		d.file.Close()
		d.file = nil
		// A failed crossing leaves no open file; close the dataset so
		// later calls fail with ErrClosed instead of dereferencing it.
		if err := d.openRunFile(next); err != nil {
			d.closed = true
			return err
		}
		if err := d.loadEvent(0); err != nil {
			d.file.Close()
			d.file = nil
			d.closed = true
			return err
		}
		d.log.Debug("crossed run boundary",
			zap.Int("from_run", prev),
			zap.Int("to_run", next))
		return nil
	}

	d.done = true
	return nil
}

// CurrentRun returns the run of the most recently loaded event.
func (d *Dataset) CurrentRun() int {
	return d.hdr.Run
}

// Done reports whether the cursor has consumed the final event of the
// final available run.
func (d *Dataset) Done() bool {
	return d.done
}

// PhiSectors returns the phi-sector count of the current run's geometry.
func (d *Dataset) PhiSectors() int {
	return d.file.Header().Geometry.PhiSectors
}

// SampleRate returns the current run's nominal digitizer rate in GSa/s.
func (d *Dataset) SampleRate() float64 {
	return d.file.Header().SampleRate
}

// NumEntries returns the event count of every run this dataset will
// traverse, keyed by run number.
func (d *Dataset) NumEntries() (map[int]int, error) {
	if d.closed {
		return nil, ErrClosed
	}

	counts := make(map[int]int, len(d.runs))
	for i, run := range d.runs {
		if i == d.runIdx && d.file != nil {
			counts[run] = d.file.NumEvents()
			continue
		}
		f, err := runfile.Open(runFilePath(d.dataDir, run))
		if err != nil {
			return nil, fmt.Errorf("counting entries in run %d: %w", run, err)
		}
		counts[run] = f.NumEvents()
		f.Close()
	}

	return counts, nil
}

// openRunFile opens a run's event file and rebuilds the calibrator for
// its calibration block and geometry.
func (d *Dataset) openRunFile(run int) error {
	path := runFilePath(d.dataDir, run)
	f, err := runfile.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: run %d (flight %d)", ErrRunNotFound, run, d.flight)
		}
		return fmt.Errorf("opening run %d: %w", run, err)
	}

	hdr := f.Header()
	d.file = f
	d.cal = calib.New(d.mode, f.Calibration(), hdr.Geometry, hdr.SampleRate)

	d.log.Debug("opened run file",
		zap.String("path", path),
		zap.Int("run", hdr.Run),
		zap.Int("events", hdr.EventCount),
		zap.String("calibration", d.mode.String()))

	return nil
}

// loadEvent decodes event i of the current file into the reusable record
// and refreshes the header.
func (d *Dataset) loadEvent(i int) error {
	if err := d.file.Event(i, &d.ev); err != nil {
		return err
	}
	d.index = i
	d.hdr = Header{
		EventNumber: d.ev.EventNumber,
		RealTime:    time.Unix(0, int64(d.ev.RealTime)),
		TrigType:    TrigType(d.ev.TrigType),
		TrigTimeNs:  d.ev.TrigTimeNs,
		Run:         d.file.Header().Run,
	}
	return nil
}

// calibratedEvent adapts the dataset's current raw event to the
// CalibratedEvent interface. One view per dataset, reused across events.
type calibratedEvent struct {
	d *Dataset
}

// ChannelTrace extracts and calibrates one channel of the current event.
func (c *calibratedEvent) ChannelTrace(ring Ring, phi int, pol Pol) *Trace {
	g := c.d.file.Header().Geometry
	ch := g.ChannelIndex(phi, int(ring), int(pol))
	tr := newTrace(g.Samples)
	c.d.cal.Channel(&c.d.ev, ch, tr.Times, tr.Amps)
	return tr
}

// calMode maps the public calibration mode to the internal one.
func calMode(m CalMode) calib.Mode {
	if m == CalNone {
		return calib.ModeNone
	}
	return calib.ModeDefault
}
