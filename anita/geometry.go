package anita

import "fmt"

// Detector geometry for the ANITA-4 payload.
const (
	// NumPhiSectors is the number of azimuthal antenna positions.
	NumPhiSectors = 16

	// NumSamples is the nominal trace length in samples.
	NumSamples = 260

	// SampleRate is the nominal digitizer rate in GSa/s.
	SampleRate = 2.6
)

// Ring is one of the three vertical antenna tiers.
type Ring int

const (
	RingTop Ring = iota
	RingMiddle
	RingBottom
)

// Rings lists the rings in their canonical axis order. This order is a
// fixed contract for buffer layout, not configurable.
var Rings = [...]Ring{RingTop, RingMiddle, RingBottom}

// String returns the ring name.
func (r Ring) String() string {
	switch r {
	case RingTop:
		return "top"
	case RingMiddle:
		return "middle"
	case RingBottom:
		return "bottom"
	default:
		return fmt.Sprintf("Ring(%d)", int(r))
	}
}

// Letter returns the single-letter ring code used in channel IDs.
func (r Ring) Letter() string {
	switch r {
	case RingTop:
		return "T"
	case RingMiddle:
		return "M"
	case RingBottom:
		return "B"
	default:
		return "?"
	}
}

// Pol is an antenna polarization.
type Pol int

const (
	PolHorizontal Pol = iota
	PolVertical
)

// Pols lists the polarizations in their canonical axis order: horizontal
// then vertical. Like Rings, this order is a fixed contract.
var Pols = [...]Pol{PolHorizontal, PolVertical}

// String returns the polarization name.
func (p Pol) String() string {
	switch p {
	case PolHorizontal:
		return "horizontal"
	case PolVertical:
		return "vertical"
	default:
		return fmt.Sprintf("Pol(%d)", int(p))
	}
}

// Letter returns the single-letter polarization code used in channel IDs.
func (p Pol) Letter() string {
	switch p {
	case PolHorizontal:
		return "H"
	case PolVertical:
		return "V"
	default:
		return "?"
	}
}

// ChannelIndex returns the channel-major index of (phi, ring, pol) with
// phi outermost, matching both the run file record layout and the
// canonical channel ordering. phi is zero-based.
func ChannelIndex(phi int, ring Ring, pol Pol) int {
	return (phi*len(Rings)+int(ring))*len(Pols) + int(pol)
}

// ChannelID returns the conventional channel name, e.g. "01TH" for the
// top-ring horizontal channel of the first phi sector. phi is zero-based;
// the name uses one-based sectors.
func ChannelID(phi int, ring Ring, pol Pol) string {
	return fmt.Sprintf("%02d%s%s", phi+1, ring.Letter(), pol.Letter())
}

// Channels returns all channel IDs in canonical order.
func Channels() []string {
	ids := make([]string, 0, NumPhiSectors*len(Rings)*len(Pols))
	for phi := 0; phi < NumPhiSectors; phi++ {
		for _, ring := range Rings {
			for _, pol := range Pols {
				ids = append(ids, ChannelID(phi, ring, pol))
			}
		}
	}
	return ids
}
