package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/robert-malhotra/go-anita/anita"
	"github.com/robert-malhotra/go-anita/internal/runfile"
)

// writeSyntheticRun generates run<N>/eventFile<N>.anr under dir with
// plausible waveforms: a decaying sine burst per channel over pedestal
// noise, with a slightly jittered sample clock.
func writeSyntheticRun(dir string, flight, run, events int, seed int64) (string, error) {
	rng := rand.New(rand.NewSource(seed))

	geom := runfile.Geometry{
		PhiSectors: anita.NumPhiSectors,
		Rings:      len(anita.Rings),
		Pols:       len(anita.Pols),
		Samples:    anita.NumSamples,
	}

	cal := runfile.Calibration{
		Pedestals:          make([]float32, geom.Channels()),
		ClockOffsets:       make([]float32, geom.Samples),
		MilliVoltsPerCount: 0.4,
	}
	for ch := range cal.Pedestals {
		cal.Pedestals[ch] = 1000 + float32(rng.Intn(40))
	}
	for i := range cal.ClockOffsets {
		cal.ClockOffsets[i] = 0.2 * float32(math.Sin(2*math.Pi*float64(i)/float64(geom.Samples)))
	}

	start := time.Date(2016, 12, 2, 0, 0, 0, 0, time.UTC)

	runDir := filepath.Join(dir, fmt.Sprintf("run%d", run))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run directory: %w", err)
	}
	path := filepath.Join(runDir, fmt.Sprintf("eventFile%d.anr", run))

	w, err := runfile.Create(path, runfile.Header{
		Flight:     flight,
		Run:        run,
		Geometry:   geom,
		SampleRate: anita.SampleRate,
		StartTime:  uint64(start.Unix()),
	}, cal)
	if err != nil {
		return "", err
	}

	ev := runfile.Event{
		Data: make([]int16, geom.Channels()*geom.Samples),
	}
	for i := 0; i < events; i++ {
		ev.EventNumber = uint32(run*100000 + i)
		ev.RealTime = uint64(start.Add(time.Duration(i) * 10 * time.Millisecond).UnixNano())
		ev.TrigType = uint16(anita.TrigRF)
		if i%10 == 9 {
			ev.TrigType = uint16(anita.TrigSoft)
		}
		ev.TrigTimeNs = uint32(rng.Intn(1e9))

		for ch := 0; ch < geom.Channels(); ch++ {
			base := cal.Pedestals[ch]
			arrival := 40 + rng.Intn(60)
			freq := 0.1 + 0.3*rng.Float64()
			amp := 100 + 400*rng.Float64()
			for s := 0; s < geom.Samples; s++ {
				v := float64(base) + 4*rng.NormFloat64()
				if s >= arrival {
					dt := float64(s - arrival)
					v += amp * math.Exp(-dt/30) * math.Sin(2*math.Pi*freq*dt)
				}
				ev.Data[ch*geom.Samples+s] = int16(v)
			}
		}

		if err := w.WriteEvent(&ev); err != nil {
			w.Close()
			return "", err
		}
	}

	return path, w.Close()
}
