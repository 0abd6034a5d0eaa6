// Command anita inspects and bulk-extracts waveforms from ANITA run files.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-anita/anita"
	"github.com/robert-malhotra/go-anita/internal/binary"
)

var (
	flight  int
	dataDir string
	verbose bool

	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "anita",
	Short:         "Read ANITA detector waveforms from run files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			log, err = zap.NewDevelopment()
		} else {
			log, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flight, "flight", 4, "flight number")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "flight data directory (default from ANITA<N>_ROOT_DATA)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(synthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// resolveDataDir returns the --data-dir flag or the configured directory.
func resolveDataDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	dir, err := anita.DataDirectory(flight)
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", fmt.Errorf("no data directory configured for flight %d", flight)
	}
	return dir, nil
}

// datasetOpts builds the common dataset options from the global flags.
func datasetOpts() ([]anita.Option, error) {
	dir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}
	return []anita.Option{
		anita.WithFlight(flight),
		anita.WithDataDir(dir),
		anita.WithLogger(log),
	}, nil
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the runs available for a flight",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveDataDir()
		if err != nil {
			return err
		}
		runs, err := anita.AvailableRunsIn(dir)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Printf("no runs found under %s\n", dir)
			return nil
		}
		for _, run := range runs {
			fmt.Println(run)
		}
		return nil
	},
}

var infoRun int

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show header and event counts for a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := datasetOpts()
		if err != nil {
			return err
		}
		ds, err := anita.OpenRun(infoRun, opts...)
		if err != nil {
			return err
		}
		defer ds.Close()

		counts, err := ds.NumEntries()
		if err != nil {
			return err
		}

		hdr := ds.Header()
		fmt.Printf("Run:          %d\n", ds.CurrentRun())
		fmt.Printf("First event:  %d\n", hdr.EventNumber)
		fmt.Printf("Start time:   %s\n", hdr.RealTime.UTC())
		fmt.Printf("Phi sectors:  %d\n", ds.PhiSectors())
		fmt.Printf("Sample rate:  %.2f GSa/s\n", ds.SampleRate())

		runs := make([]int, 0, len(counts))
		for run := range counts {
			runs = append(runs, run)
		}
		sort.Ints(runs)
		fmt.Println("Entries:")
		for _, run := range runs {
			fmt.Printf("  run %d: %d events\n", run, counts[run])
		}
		return nil
	},
}

var (
	extractRuns  []int
	extractBatch int
	extractOut   string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Bulk-extract waveforms into flat float32 files, one per run",
	Long: `Extract resampled waveforms for whole runs into <out>/run<N>.f32.

Each output file is a row-major little-endian float32 array with axes
(event, phi sector, ring, polarization, sample) where rings are ordered
top/middle/bottom and polarizations horizontal/vertical. Runs are
extracted concurrently, one single-threaded reader per run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(extractRuns) == 0 {
			return errors.New("at least one --runs value is required")
		}
		opts, err := datasetOpts()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(extractOut, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		var g errgroup.Group
		for _, run := range extractRuns {
			run := run
			g.Go(func() error {
				return extractRun(run, opts)
			})
		}
		return g.Wait()
	},
}

// extractRun drains one run through a reader, writing filled slots after
// each batch. The reader stops at the run boundary, so a boundary mid-
// batch just ends the run early.
func extractRun(run int, opts []anita.Option) error {
	r, err := anita.NewWaveformReader(run, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	buf, err := anita.NewStandardBuffer(extractBatch)
	if err != nil {
		return err
	}
	slotSize := len(buf.Data()) / buf.Events()

	path := filepath.Join(extractOut, fmt.Sprintf("run%d.f32", run))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	w := binary.NewWriter(f)

	total := 0
	for {
		// Waveforms can resample shorter than the sample axis, and the
		// reader leaves unwritten elements untouched. Re-zero the reused
		// buffer so no slot carries samples from the previous batch.
		buf.Fill(0)
		res, err := r.FillNextBatchChecked(buf)
		if res.Filled > 0 {
			if werr := w.WriteFloat32s(buf.Data()[:res.Filled*slotSize]); werr != nil {
				return fmt.Errorf("writing %s: %w", path, werr)
			}
			total += res.Filled
		}
		if err != nil {
			if errors.Is(err, anita.ErrRunExhausted) {
				break
			}
			return fmt.Errorf("extracting run %d: %w", run, err)
		}
		if res.RunChanged {
			break
		}
	}

	log.Info("extracted run",
		zap.Int("run", run),
		zap.Int("events", total),
		zap.String("path", path))
	return f.Close()
}

var (
	synthRun    int
	synthEvents int
	synthSeed   int64
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Generate a synthetic run file for testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveDataDir()
		if err != nil {
			return err
		}
		path, err := writeSyntheticRun(dir, flight, synthRun, synthEvents, synthSeed)
		if err != nil {
			return err
		}
		log.Info("wrote synthetic run",
			zap.Int("run", synthRun),
			zap.Int("events", synthEvents),
			zap.String("path", path))
		return nil
	},
}

func init() {
	infoCmd.Flags().IntVar(&infoRun, "run", 0, "run number")
	infoCmd.MarkFlagRequired("run")

	extractCmd.Flags().IntSliceVar(&extractRuns, "runs", nil, "run numbers to extract")
	extractCmd.Flags().IntVar(&extractBatch, "events", 64, "events per batch")
	extractCmd.Flags().StringVar(&extractOut, "out", ".", "output directory")

	synthCmd.Flags().IntVar(&synthRun, "run", 1, "run number to generate")
	synthCmd.Flags().IntVar(&synthEvents, "events", 100, "events to generate")
	synthCmd.Flags().Int64Var(&synthSeed, "seed", 1, "random seed")
}
