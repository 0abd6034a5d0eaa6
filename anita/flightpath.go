package anita

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/interp"
)

// FlightPath holds the payload GPS track of a flight, indexed by time.
// Pitch and roll are recorded for flights 3 and 4.
type FlightPath struct {
	Times     []float64 // unix seconds
	Altitude  []float64 // m
	Latitude  []float64 // degrees
	Longitude []float64 // degrees
	Heading   []float64 // degrees
	Pitch     []float64 // degrees
	Roll      []float64 // degrees

	// fits holds one interpolant per field above, in the same order,
	// built once rather than refitted on every At call.
	fits []interp.PiecewiseLinear
}

// Position is the interpolated payload state at one instant.
type Position struct {
	Altitude  float64
	Latitude  float64
	Longitude float64
	Heading   float64
	Pitch     float64
	Roll      float64
}

// flightPathColumns is the required CSV column order.
var flightPathColumns = []string{
	"realTime", "altitude", "latitude", "longitude", "heading", "pitch", "roll",
}

// LoadFlightPath loads the flight path for a flight (currently 3 or 4)
// from flightpaths/anita<N>.csv under the flight data directory.
func LoadFlightPath(flight int, opts ...Option) (*FlightPath, error) {
	if flight != 3 && flight != 4 {
		return nil, fmt.Errorf("%w: flight paths exist for flights 3 and 4 only (got %d)",
			ErrInvalidFlight, flight)
	}

	o := defaultOptions()
	o.flight = flight
	for _, opt := range opts {
		opt(o)
	}

	dir := o.dataDir
	if dir == "" {
		var err error
		if dir, err = DataDirectory(o.flight); err != nil {
			return nil, err
		}
	}

	path := filepath.Join(dir, "flightpaths", fmt.Sprintf("anita%d.csv", flight))
	return LoadFlightPathFile(path)
}

// LoadFlightPathFile loads a flight path from a CSV file with columns
// realTime, altitude, latitude, longitude, heading, pitch, roll.
func LoadFlightPathFile(path string) (*FlightPath, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening flight path: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading flight path header: %w", err)
	}
	if len(header) != len(flightPathColumns) {
		return nil, fmt.Errorf("flight path has %d columns, want %d", len(header), len(flightPathColumns))
	}
	for i, want := range flightPathColumns {
		if header[i] != want {
			return nil, fmt.Errorf("flight path column %d is %q, want %q", i, header[i], want)
		}
	}

	p := &FlightPath{}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading flight path: %w", err)
		}

		vals := make([]float64, len(rec))
		for i, s := range rec {
			if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("flight path line %d: %w", line, err)
			}
		}

		p.Times = append(p.Times, vals[0])
		p.Altitude = append(p.Altitude, vals[1])
		p.Latitude = append(p.Latitude, vals[2])
		p.Longitude = append(p.Longitude, vals[3])
		p.Heading = append(p.Heading, vals[4])
		p.Pitch = append(p.Pitch, vals[5])
		p.Roll = append(p.Roll, vals[6])
	}

	if len(p.Times) == 0 {
		return nil, fmt.Errorf("flight path %s: %w", path, ErrNoData)
	}
	if len(p.Times) > 1 {
		if err := p.fit(); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// fit builds the per-field interpolants. The track data is treated as
// immutable from here on.
func (p *FlightPath) fit() error {
	fields := [][]float64{p.Altitude, p.Latitude, p.Longitude, p.Heading, p.Pitch, p.Roll}
	fits := make([]interp.PiecewiseLinear, len(fields))
	for i, ys := range fields {
		if err := fits[i].Fit(p.Times, ys); err != nil {
			return fmt.Errorf("fitting flight path: %w", err)
		}
	}
	p.fits = fits
	return nil
}

// Len returns the number of track points.
func (p *FlightPath) Len() int {
	return len(p.Times)
}

// At interpolates the payload position at time t (unix seconds) with
// piecewise-linear interpolation. t must lie within the recorded track.
func (p *FlightPath) At(t float64) (Position, error) {
	n := len(p.Times)
	if n == 0 {
		return Position{}, ErrNoData
	}
	if t < p.Times[0] || t > p.Times[n-1] {
		return Position{}, fmt.Errorf("time %.3f outside flight path range [%.3f, %.3f]",
			t, p.Times[0], p.Times[n-1])
	}
	if n == 1 {
		return Position{p.Altitude[0], p.Latitude[0], p.Longitude[0],
			p.Heading[0], p.Pitch[0], p.Roll[0]}, nil
	}

	// Manually assembled paths have not been fitted yet.
	if p.fits == nil {
		if err := p.fit(); err != nil {
			return Position{}, err
		}
	}

	return Position{
		Altitude:  p.fits[0].Predict(t),
		Latitude:  p.fits[1].Predict(t),
		Longitude: p.fits[2].Predict(t),
		Heading:   p.fits[3].Predict(t),
		Pitch:     p.fits[4].Predict(t),
		Roll:      p.fits[5].Predict(t),
	}, nil
}
