package runfile

import (
	"fmt"
	"os"

	"github.com/robert-malhotra/go-anita/internal/binary"
)

// Writer creates a run file and appends event records to it. The header's
// event count is finalized on Close, so a partially written file records
// how many events it actually holds.
type Writer struct {
	file   *os.File
	writer *binary.Writer

	header Header
	calib  Calibration

	recordSize int64
	written    int
	closed     bool
}

// Create creates a run file with the given header and calibration block.
// Header.EventCount is ignored; the count is tracked by the writer.
func Create(path string, hdr Header, cal Calibration) (*Writer, error) {
	if !hdr.Geometry.valid() {
		return nil, ErrBadGeometry
	}
	g := hdr.Geometry
	if len(cal.Pedestals) != g.Channels() {
		return nil, fmt.Errorf("calibration has %d pedestals, geometry has %d channels",
			len(cal.Pedestals), g.Channels())
	}
	if len(cal.ClockOffsets) != g.Samples {
		return nil, fmt.Errorf("calibration has %d clock offsets, geometry has %d samples",
			len(cal.ClockOffsets), g.Samples)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating run file: %w", err)
	}

	hdr.Version = Version
	hdr.EventCount = 0

	w := &Writer{
		file:       f,
		writer:     binary.NewWriter(f),
		header:     hdr,
		calib:      cal,
		recordSize: recordSize(g),
	}

	if err := w.writeHeader(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	if err := w.writeCalibration(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}

	return w, nil
}

// WriteEvent appends one event record.
func (w *Writer) WriteEvent(ev *Event) error {
	if w.closed {
		return ErrClosed
	}
	g := w.header.Geometry
	if want := g.Channels() * g.Samples; len(ev.Data) != want {
		return fmt.Errorf("event has %d samples, geometry requires %d", len(ev.Data), want)
	}

	bw := w.writer.At(headerSize + calibSize(g) + int64(w.written)*w.recordSize)

	if err := bw.WriteUint32(ev.EventNumber); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	if err := bw.WriteUint64(ev.RealTime); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	if err := bw.WriteUint16(ev.TrigType); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	if err := bw.WriteUint32(ev.TrigTimeNs); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	if err := bw.WriteInt16s(ev.Data); err != nil {
		return fmt.Errorf("writing event samples: %w", err)
	}

	w.written++
	return nil
}

// Close finalizes the event count in the header and closes the file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.header.EventCount = w.written
	if err := w.writeHeader(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// writeHeader writes the fixed header at offset 0.
func (w *Writer) writeHeader() error {
	bw := w.writer.At(0)
	h := w.header
	g := h.Geometry

	if err := bw.WriteBytes(Magic[:]); err != nil {
		return fmt.Errorf("writing magic: %w", err)
	}
	if err := bw.WriteUint8(h.Version); err != nil {
		return fmt.Errorf("writing version: %w", err)
	}
	if err := bw.WriteUint8(uint8(h.Flight)); err != nil {
		return fmt.Errorf("writing flight: %w", err)
	}
	if err := bw.WriteUint32(uint32(h.Run)); err != nil {
		return fmt.Errorf("writing run number: %w", err)
	}
	if err := bw.WriteUint32(uint32(h.EventCount)); err != nil {
		return fmt.Errorf("writing event count: %w", err)
	}
	if err := bw.WriteUint16(uint16(g.PhiSectors)); err != nil {
		return fmt.Errorf("writing geometry: %w", err)
	}
	if err := bw.WriteUint8(uint8(g.Rings)); err != nil {
		return fmt.Errorf("writing geometry: %w", err)
	}
	if err := bw.WriteUint8(uint8(g.Pols)); err != nil {
		return fmt.Errorf("writing geometry: %w", err)
	}
	if err := bw.WriteUint16(uint16(g.Samples)); err != nil {
		return fmt.Errorf("writing geometry: %w", err)
	}
	if err := bw.WriteFloat64(h.SampleRate); err != nil {
		return fmt.Errorf("writing sample rate: %w", err)
	}
	if err := bw.WriteUint64(h.StartTime); err != nil {
		return fmt.Errorf("writing start time: %w", err)
	}

	return nil
}

// writeCalibration writes the calibration block after the header.
func (w *Writer) writeCalibration() error {
	bw := w.writer.At(headerSize)

	if err := bw.WriteFloat32s(w.calib.Pedestals); err != nil {
		return fmt.Errorf("writing pedestals: %w", err)
	}
	if err := bw.WriteFloat32s(w.calib.ClockOffsets); err != nil {
		return fmt.Errorf("writing clock offsets: %w", err)
	}
	if err := bw.WriteFloat32(w.calib.MilliVoltsPerCount); err != nil {
		return fmt.Errorf("writing mV scale: %w", err)
	}

	return nil
}
