package anita

import "fmt"

// Buffer is a caller-owned, dense 5-axis float32 array with axes, in
// order: event slot, phi sector, ring, polarization, sample. Its shape
// determines how many events, channels, and samples a WaveformReader
// attempts to fill; the reader never resizes it and never zero-fills
// unwritten elements.
//
// The ring and polarization axes are indexed in the fixed Rings and Pols
// orders. Nothing validates that the buffer's ring/pol axis sizes match
// the detector geometry; a mismatched buffer yields semantically
// misplaced values rather than an error (see FillNextBatchChecked for
// the validated entry point).
type Buffer struct {
	data []float32

	events     int
	phiSectors int
	rings      int
	pols       int
	samples    int

	// strides in elements for each axis above the sample axis
	strideEvent int
	stridePhi   int
	strideRing  int
	stridePol   int
}

// NewBuffer allocates a buffer with the given shape. All axis sizes must
// be positive.
func NewBuffer(events, phiSectors, rings, pols, samples int) (*Buffer, error) {
	for _, n := range []int{events, phiSectors, rings, pols, samples} {
		if n <= 0 {
			return nil, fmt.Errorf("%w: shape (%d, %d, %d, %d, %d) has a non-positive axis",
				ErrShapeMismatch, events, phiSectors, rings, pols, samples)
		}
	}

	b := &Buffer{
		events:     events,
		phiSectors: phiSectors,
		rings:      rings,
		pols:       pols,
		samples:    samples,
	}
	b.stridePol = samples
	b.strideRing = pols * b.stridePol
	b.stridePhi = rings * b.strideRing
	b.strideEvent = phiSectors * b.stridePhi
	b.data = make([]float32, events*b.strideEvent)

	return b, nil
}

// NewStandardBuffer allocates a buffer shaped for the full ANITA-4
// geometry: (events, 16, 3, 2, 260).
func NewStandardBuffer(events int) (*Buffer, error) {
	return NewBuffer(events, NumPhiSectors, len(Rings), len(Pols), NumSamples)
}

// Shape returns the axis sizes in (event, phi, ring, pol, sample) order.
func (b *Buffer) Shape() [5]int {
	return [5]int{b.events, b.phiSectors, b.rings, b.pols, b.samples}
}

// Events returns the event-slot axis size.
func (b *Buffer) Events() int { return b.events }

// PhiSectors returns the phi-sector axis size.
func (b *Buffer) PhiSectors() int { return b.phiSectors }

// Rings returns the ring axis size.
func (b *Buffer) Rings() int { return b.rings }

// Pols returns the polarization axis size.
func (b *Buffer) Pols() int { return b.pols }

// Samples returns the sample axis size.
func (b *Buffer) Samples() int { return b.samples }

// Data returns the row-major backing slice. Mutating it mutates the
// buffer.
func (b *Buffer) Data() []float32 {
	return b.data
}

// Fill sets every element to v. Callers that need clean padding beyond a
// waveform's last sample should pre-fill, since the reader leaves
// unwritten elements untouched.
func (b *Buffer) Fill(v float32) {
	for i := range b.data {
		b.data[i] = v
	}
}

// At returns the element at the given indices, with bounds checking.
func (b *Buffer) At(event, phi int, ring Ring, pol Pol, sample int) (float32, error) {
	if err := b.check(event, phi, ring, pol, sample); err != nil {
		return 0, err
	}
	return b.data[b.index(event, phi, int(ring), int(pol))+sample], nil
}

// Set assigns the element at the given indices, with bounds checking.
func (b *Buffer) Set(event, phi int, ring Ring, pol Pol, sample int, v float32) error {
	if err := b.check(event, phi, ring, pol, sample); err != nil {
		return err
	}
	b.data[b.index(event, phi, int(ring), int(pol))+sample] = v
	return nil
}

// index returns the backing-slice offset of sample 0 for a channel slot.
// It performs no bounds checking: this is the fill loop's fast path, and
// the buffer's declared shape is trusted absolutely there. Everything
// else should go through At/Set.
func (b *Buffer) index(event, phi, ring, pol int) int {
	return event*b.strideEvent + phi*b.stridePhi + ring*b.strideRing + pol*b.stridePol
}

// check validates indices against the buffer's own shape.
func (b *Buffer) check(event, phi int, ring Ring, pol Pol, sample int) error {
	if event < 0 || event >= b.events ||
		phi < 0 || phi >= b.phiSectors ||
		int(ring) < 0 || int(ring) >= b.rings ||
		int(pol) < 0 || int(pol) >= b.pols ||
		sample < 0 || sample >= b.samples {
		return fmt.Errorf("index (%d, %d, %d, %d, %d) out of range for shape %v",
			event, phi, int(ring), int(pol), sample, b.Shape())
	}
	return nil
}
