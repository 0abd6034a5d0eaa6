package anita

import "strings"

// TrigType is the ANITA-4 trigger type bitmask recorded with each event.
type TrigType uint16

const (
	// TrigRF is set for radio-frequency triggers.
	TrigRF TrigType = 1 << iota

	// TrigADU5 is set for ADU5 GPS timing triggers.
	TrigADU5

	// TrigG12 is set for G12 GPS timing triggers.
	TrigG12

	// TrigSoft is set for software triggers.
	TrigSoft
)

// IsRF reports whether the event had an RF trigger.
func (t TrigType) IsRF() bool {
	return t&TrigRF != 0
}

// IsADU5 reports whether the event had an ADU5 trigger.
func (t TrigType) IsADU5() bool {
	return t&TrigADU5 != 0
}

// IsG12 reports whether the event had a G12 trigger.
func (t TrigType) IsG12() bool {
	return t&TrigG12 != 0
}

// IsSoft reports whether the event had a software trigger.
func (t TrigType) IsSoft() bool {
	return t&TrigSoft != 0
}

// IsMinBias reports whether the event is minimum bias. For ANITA-4 that
// is any ADU5, G12, or software trigger.
func (t TrigType) IsMinBias() bool {
	return t.IsADU5() || t.IsG12() || t.IsSoft()
}

// String returns the set trigger bits as a "|"-separated list.
func (t TrigType) String() string {
	if t == 0 {
		return "none"
	}
	var names []string
	if t.IsRF() {
		names = append(names, "RF")
	}
	if t.IsADU5() {
		names = append(names, "ADU5")
	}
	if t.IsG12() {
		names = append(names, "G12")
	}
	if t.IsSoft() {
		names = append(names, "soft")
	}
	return strings.Join(names, "|")
}
