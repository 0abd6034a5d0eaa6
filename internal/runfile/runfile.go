package runfile

import "errors"

// Magic identifies an ANR run file.
var Magic = [4]byte{'A', 'N', 'R', '4'}

// Version is the current format version.
const Version = 1

// Common errors.
var (
	ErrBadMagic    = errors.New("not an ANR run file")
	ErrBadVersion  = errors.New("unsupported ANR version")
	ErrBadGeometry = errors.New("invalid channel geometry")
	ErrClosed      = errors.New("run file is closed")
)

// headerSize is the fixed byte size of the file header.
const headerSize = 36

// Geometry describes the channel layout of a run file.
type Geometry struct {
	PhiSectors int
	Rings      int
	Pols       int
	Samples    int
}

// Channels returns the total channel count.
func (g Geometry) Channels() int {
	return g.PhiSectors * g.Rings * g.Pols
}

// ChannelIndex returns the channel-major index of (phi, ring, pol).
// The ordering is phi outermost, then ring, then polarization, matching
// the record layout on disk.
func (g Geometry) ChannelIndex(phi, ring, pol int) int {
	return (phi*g.Rings+ring)*g.Pols + pol
}

// valid reports whether every axis is positive.
func (g Geometry) valid() bool {
	return g.PhiSectors > 0 && g.Rings > 0 && g.Pols > 0 && g.Samples > 0
}

// Header is the run file header.
type Header struct {
	Version    uint8
	Flight     int
	Run        int
	EventCount int
	Geometry   Geometry
	SampleRate float64 // GSa/s
	StartTime  uint64  // unix seconds of the first event
}

// Calibration holds the per-run calibration constants stored after the
// header.
type Calibration struct {
	// Pedestals is the per-channel baseline in raw counts,
	// Geometry.Channels() long.
	Pedestals []float32

	// ClockOffsets is the per-sample deviation from the nominal clock,
	// in fractional samples, Geometry.Samples long.
	ClockOffsets []float32

	// MilliVoltsPerCount converts pedestal-subtracted counts to mV.
	MilliVoltsPerCount float32
}

// Event is one decoded event record. Data is channel-major: the trace
// for channel c occupies Data[c*samples : (c+1)*samples].
type Event struct {
	EventNumber uint32
	RealTime    uint64 // unix nanoseconds
	TrigType    uint16
	TrigTimeNs  uint32
	Data        []int16
}

// eventFixedSize is the size of the non-sample fields of a record.
const eventFixedSize = 4 + 8 + 2 + 4

// recordSize returns the on-disk size of one event record.
func recordSize(g Geometry) int64 {
	return eventFixedSize + 2*int64(g.Channels())*int64(g.Samples)
}

// calibSize returns the on-disk size of the calibration block.
func calibSize(g Geometry) int64 {
	return 4*int64(g.Channels()) + 4*int64(g.Samples) + 4
}
