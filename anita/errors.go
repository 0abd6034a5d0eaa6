// Package anita reads calibrated ANITA detector waveforms from run files
// into caller-supplied numeric buffers.
package anita

import (
	"errors"

	"github.com/robert-malhotra/go-anita/internal/config"
	"github.com/robert-malhotra/go-anita/internal/runfile"
)

// Common errors
var (
	// ErrNotRunFile reports that a file is not an ANR run file.
	ErrNotRunFile = runfile.ErrBadMagic

	// ErrInvalidFlight reports a flight number outside the known flights.
	ErrInvalidFlight = config.ErrInvalidFlight

	// ErrRunNotFound reports that a run's event file does not exist under
	// the flight data directory.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunExhausted reports that the event cursor has moved past the
	// last event of the last available run.
	ErrRunExhausted = errors.New("run exhausted")

	// ErrShapeMismatch reports an invalid buffer shape, either at
	// allocation or from the checked fill path. The unchecked fill path
	// never returns it.
	ErrShapeMismatch = errors.New("buffer shape mismatch")

	// ErrNoData reports an empty trace or an empty flight path.
	ErrNoData = errors.New("no data")

	// ErrClosed is returned when using a closed dataset or reader.
	ErrClosed = errors.New("dataset is closed")
)
