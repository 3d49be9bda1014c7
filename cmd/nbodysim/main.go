package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/nbodysim/internal/config"
)

var (
	dataDir  string
	logLevel string

	// generation
	seed    int64
	count   int
	dt      float64
	maxMass float64
	maxVel  float64
	maxAcc  float64

	// driver
	ticks       int
	sampleEvery int
	workers     int
	history     int
	backendName string
	snapshotOut string
	configFile  string
	preset      string
	noPlot      bool

	// inspect / view
	limit      int
	viewWidth  int
	viewHeight int
	rotX       float64
	rotY       float64
	zoom       float64
	svgOut     string

	// ensemble / bench
	members  int
	benchN   []int
	benchRep int
)

var log = logrus.New()

// main registers the nbodysim commands and executes the root command,
// exiting with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "nbodysim",
		Short:         "dense gravitational n-body simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nbodysim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "generate particles and run a simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	defaults := config.DefaultConfig()
	runCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "random seed")
	runCmd.Flags().IntVar(&count, "count", defaults.Count, "number of particles")
	runCmd.Flags().Float64Var(&dt, "dt", defaults.Dt, "timestep")
	runCmd.Flags().Float64Var(&maxMass, "max-mass", defaults.MaxMass, "upper bound of particle mass")
	runCmd.Flags().Float64Var(&maxVel, "max-vel", defaults.MaxVel, "bound of initial velocity components")
	runCmd.Flags().Float64Var(&maxAcc, "max-acc", defaults.MaxAcc, "bound of initial acceleration components")
	addDriverFlags(runCmd, defaults)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	resumeCmd := &cobra.Command{
		Use:   "resume [run_id]",
		Short: "continue a stored run from its final state",
		Args:  cobra.ExactArgs(1),
		RunE:  resumeRun,
	}
	addDriverFlags(resumeCmd, defaults)
	resumeCmd.Flags().Float64Var(&dt, "dt", defaults.Dt, "timestep (default: the run's)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy trace of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the total energy series as SVG")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "find the dominant energy oscillation of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and energy trace as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [state_file | run_id]",
		Short: "show the header and particles of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectSnapshot,
	}
	inspectCmd.Flags().IntVar(&limit, "limit", 10, "number of particles to list")

	viewCmd := &cobra.Command{
		Use:   "view [state_file | run_id]",
		Short: "render a snapshot in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  viewSnapshot,
	}
	viewCmd.Flags().IntVar(&viewWidth, "width", 60, "canvas width in cells")
	viewCmd.Flags().IntVar(&viewHeight, "height", 24, "canvas height in cells")
	viewCmd.Flags().Float64Var(&rotX, "rot-x", 0.4, "rotation about x (radians)")
	viewCmd.Flags().Float64Var(&rotY, "rot-y", 0.6, "rotation about y (radians)")
	viewCmd.Flags().Float64Var(&zoom, "zoom", 1.0, "zoom relative to the fitted view")
	viewCmd.Flags().StringVar(&svgOut, "svg", "", "also write the rendering as SVG")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure tick throughput",
		Args:  cobra.NoArgs,
		RunE:  benchTicks,
	}
	benchCmd.Flags().IntSliceVar(&benchN, "counts", []int{256, 512, 1024, 2048}, "particle counts")
	benchCmd.Flags().IntVar(&benchRep, "ticks", 10, "ticks per count")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = all cores)")
	benchCmd.Flags().StringVar(&backendName, "backend", "cpu", "compute backend")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run a preset over consecutive seeds and compare energy drift",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().IntVar(&members, "members", 4, "number of seeds")
	ensembleCmd.Flags().StringVar(&preset, "preset", "default", "preset to run")
	ensembleCmd.Flags().IntVar(&count, "count", 256, "number of particles")
	ensembleCmd.Flags().IntVar(&ticks, "ticks", 100, "ticks per member")
	ensembleCmd.Flags().Int64Var(&seed, "seed", 1, "first seed")

	rootCmd.AddCommand(runCmd, resumeCmd, listCmd, plotCmd, analyzeCmd, exportCmd, inspectCmd, viewCmd, presetsCmd, benchCmd, ensembleCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addDriverFlags(cmd *cobra.Command, defaults *config.Config) {
	cmd.Flags().IntVar(&ticks, "ticks", defaults.Ticks, "number of ticks")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", defaults.SampleEvery, "record energy every n ticks")
	cmd.Flags().IntVar(&workers, "workers", defaults.Workers, "worker count (0 = all cores)")
	cmd.Flags().IntVar(&history, "history", defaults.History, "energy history length")
	cmd.Flags().StringVar(&backendName, "backend", "cpu", "compute backend (cpu, serial)")
	cmd.Flags().StringVar(&snapshotOut, "snapshot", "", "also write the final state to this file")
	cmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the energy plot")
}
