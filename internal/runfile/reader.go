package runfile

import (
	"fmt"
	"os"

	"github.com/robert-malhotra/go-anita/internal/binary"
)

// File is an open run file.
type File struct {
	path   string
	file   *os.File
	reader *binary.Reader

	header Header
	calib  Calibration

	dataStart  int64
	recordSize int64
	closed     bool
}

// Open opens a run file for reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening run file: %w", err)
	}

	rf := &File{
		path:   path,
		file:   f,
		reader: binary.NewReader(f),
	}

	if err := rf.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	if err := rf.readCalibration(); err != nil {
		f.Close()
		return nil, err
	}

	rf.dataStart = headerSize + calibSize(rf.header.Geometry)
	rf.recordSize = recordSize(rf.header.Geometry)

	return rf, nil
}

// Close closes the run file.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.file.Close()
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Header returns the parsed file header.
func (f *File) Header() Header {
	return f.header
}

// Calibration returns the run's calibration block.
func (f *File) Calibration() Calibration {
	return f.calib
}

// NumEvents returns the number of event records in the file.
func (f *File) NumEvents() int {
	return f.header.EventCount
}

// Event decodes the record at index i into ev. The Data slice is
// allocated (or grown) on first use and reused on subsequent calls, so a
// caller iterating sequentially decodes without per-event allocation.
func (f *File) Event(i int, ev *Event) error {
	if f.closed {
		return ErrClosed
	}
	if i < 0 || i >= f.header.EventCount {
		return fmt.Errorf("event index %d out of range [0, %d)", i, f.header.EventCount)
	}

	r := f.reader.At(f.dataStart + int64(i)*f.recordSize)

	var err error
	if ev.EventNumber, err = r.ReadUint32(); err != nil {
		return fmt.Errorf("reading event %d: %w", i, err)
	}
	if ev.RealTime, err = r.ReadUint64(); err != nil {
		return fmt.Errorf("reading event %d: %w", i, err)
	}
	if ev.TrigType, err = r.ReadUint16(); err != nil {
		return fmt.Errorf("reading event %d: %w", i, err)
	}
	if ev.TrigTimeNs, err = r.ReadUint32(); err != nil {
		return fmt.Errorf("reading event %d: %w", i, err)
	}

	n := f.header.Geometry.Channels() * f.header.Geometry.Samples
	if cap(ev.Data) < n {
		ev.Data = make([]int16, n)
	}
	ev.Data = ev.Data[:n]
	if err := r.ReadInt16s(ev.Data, n); err != nil {
		return fmt.Errorf("reading event %d samples: %w", i, err)
	}

	return nil
}

// readHeader parses and validates the fixed header.
func (f *File) readHeader() error {
	r := f.reader.At(0)

	magic, err := r.ReadBytes(4)
	if err != nil {
		return fmt.Errorf("reading magic: %w", err)
	}
	if [4]byte(magic) != Magic {
		return ErrBadMagic
	}

	version, err := r.ReadUint8()
	if err != nil {
		return fmt.Errorf("reading version: %w", err)
	}
	if version != Version {
		return fmt.Errorf("%w: %d", ErrBadVersion, version)
	}
	f.header.Version = version

	flight, err := r.ReadUint8()
	if err != nil {
		return fmt.Errorf("reading flight: %w", err)
	}
	f.header.Flight = int(flight)

	run, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("reading run number: %w", err)
	}
	f.header.Run = int(run)

	count, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("reading event count: %w", err)
	}
	f.header.EventCount = int(count)

	phi, err := r.ReadUint16()
	if err != nil {
		return fmt.Errorf("reading geometry: %w", err)
	}
	rings, err := r.ReadUint8()
	if err != nil {
		return fmt.Errorf("reading geometry: %w", err)
	}
	pols, err := r.ReadUint8()
	if err != nil {
		return fmt.Errorf("reading geometry: %w", err)
	}
	samples, err := r.ReadUint16()
	if err != nil {
		return fmt.Errorf("reading geometry: %w", err)
	}
	f.header.Geometry = Geometry{
		PhiSectors: int(phi),
		Rings:      int(rings),
		Pols:       int(pols),
		Samples:    int(samples),
	}
	if !f.header.Geometry.valid() {
		return ErrBadGeometry
	}

	if f.header.SampleRate, err = r.ReadFloat64(); err != nil {
		return fmt.Errorf("reading sample rate: %w", err)
	}
	if f.header.StartTime, err = r.ReadUint64(); err != nil {
		return fmt.Errorf("reading start time: %w", err)
	}

	return nil
}

// readCalibration parses the calibration block following the header.
func (f *File) readCalibration() error {
	r := f.reader.At(headerSize)
	g := f.header.Geometry

	f.calib.Pedestals = make([]float32, g.Channels())
	if err := r.ReadFloat32s(f.calib.Pedestals, g.Channels()); err != nil {
		return fmt.Errorf("reading pedestals: %w", err)
	}

	f.calib.ClockOffsets = make([]float32, g.Samples)
	if err := r.ReadFloat32s(f.calib.ClockOffsets, g.Samples); err != nil {
		return fmt.Errorf("reading clock offsets: %w", err)
	}

	mv, err := r.ReadFloat32()
	if err != nil {
		return fmt.Errorf("reading mV scale: %w", err)
	}
	f.calib.MilliVoltsPerCount = mv

	return nil
}
