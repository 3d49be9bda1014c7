package main

import (
	"fmt"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/experiment"
	"github.com/san-kum/nbodysim/internal/metrics"
	"github.com/san-kum/nbodysim/internal/nbody"
	"github.com/san-kum/nbodysim/internal/storage"
	"github.com/san-kum/nbodysim/internal/viz"
)

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if cmd.Flags().Changed("preset") {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if cmd.Flags().Changed("config") {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("count") {
		cfg.Count = count
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("max-mass") {
		cfg.MaxMass = maxMass
	}
	if flags.Changed("max-vel") {
		cfg.MaxVel = maxVel
	}
	if flags.Changed("max-acc") {
		cfg.MaxAcc = maxAcc
	}
	applyDriverFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDriverFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("history") {
		cfg.History = history
	}
	if flags.Changed("snapshot") {
		cfg.Snapshot = snapshotOut
	}
}

func newSimulation(cfg *config.Config) (*nbody.Simulation, error) {
	backend, err := experiment.NewRegistry().GetBackend(backendName, cfg.Workers)
	if err != nil {
		return nil, err
	}
	return nbody.New(nbody.WithBackend(backend)), nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	sim, err := newSimulation(cfg)
	if err != nil {
		return err
	}
	if err := sim.Init(cfg.Params()); err != nil {
		return err
	}

	meta := storage.RunMetadata{Ticks: cfg.Ticks}
	if cmd.Flags().Changed("preset") {
		meta.Preset = preset
	}
	meta.SetParams(sim.Params())

	return drive(cmd, sim, cfg, meta)
}

func resumeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir, log)
	parent, err := st.Load(runID)
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.Workers = parent.Workers
	cfg.Ticks = parent.Ticks
	applyDriverFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	sim, err := newSimulation(cfg)
	if err != nil {
		return err
	}
	if err := sim.Load(st.SnapshotPath(runID)); err != nil {
		return err
	}
	if parent.MaxMass > 0 {
		if err := sim.RecolorWith(parent.MaxMass); err != nil {
			return err
		}
	}

	step := parent.Dt
	if cmd.Flags().Changed("dt") {
		step = dt
	}
	if err := sim.SetDt(step); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"run":   runID,
		"tick":  sim.TickCount(),
		"count": sim.Count(),
	}).Info("resuming")

	meta := storage.RunMetadata{Preset: parent.Preset, Parent: runID, Ticks: cfg.Ticks}
	meta.SetParams(parent.Params())
	meta.Dt = step
	meta.Count = sim.Count()

	return drive(cmd, sim, cfg, meta)
}

// drive runs the configured ticks, stores the run and prints a summary. An
// interrupted run is still stored up to its last completed tick.
func drive(cmd *cobra.Command, sim *nbody.Simulation, cfg *config.Config, meta storage.RunMetadata) error {
	st := storage.New(dataDir, log)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(sim, experiment.Config{
		Ticks:       cfg.Ticks,
		SampleEvery: cfg.SampleEvery,
		History:     cfg.History,
	}, log)
	for _, m := range metrics.Defaults() {
		exp.AddMetric(m)
	}

	result, runErr := exp.Run(cmd.Context())
	if runErr != nil && result == nil {
		return runErr
	}

	meta.Workers = sim.Backend().Workers()
	meta.Metrics = result.Metrics

	runID, err := st.Save(meta, result.Trace, sim)
	if err != nil {
		return err
	}

	if cfg.Snapshot != "" {
		if err := sim.Save(cfg.Snapshot); err != nil {
			return err
		}
		log.WithField("path", cfg.Snapshot).Info("snapshot written")
	}

	printSummary(runID, sim, result)

	if !noPlot && len(result.History) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(result.History,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("total energy"),
		))
	}

	if runErr != nil {
		log.WithField("run", runID).Warn("stored partial run")
	}
	return runErr
}

func printSummary(runID string, sim *nbody.Simulation, result *experiment.Result) {
	deviation := "undefined (zero baseline)"
	if dev, err := sim.EnergyDeviation(); err == nil {
		deviation = fmt.Sprintf("%.6f %%", dev)
	}

	rows := []viz.Row{
		{Label: "run id", Value: runID},
		{Label: "particles", Value: fmt.Sprintf("%d", sim.Count())},
		{Label: "backend", Value: sim.Backend().Name()},
		{Label: "ticks", Value: fmt.Sprintf("%d (total %d)", result.TicksTaken, sim.TickCount())},
		{Label: "elapsed time", Value: fmt.Sprintf("%.4f", sim.ElapsedTime())},
		{Label: "wall time", Value: result.Wall.Round(time.Millisecond).String()},
		{Label: "kinetic", Value: fmt.Sprintf("%.6e", sim.KineticEnergy())},
		{Label: "potential", Value: fmt.Sprintf("%.6e", sim.PotentialEnergy())},
		{Label: "total", Value: fmt.Sprintf("%.6e", sim.TotalEnergy())},
		{Label: "deviation", Value: deviation},
	}
	for _, name := range []string{"energy_drift", "stability", "tick_ms"} {
		if v, ok := result.Metrics[name]; ok {
			rows = append(rows, viz.Row{Label: name, Value: fmt.Sprintf("%.6f", v)})
		}
	}

	fmt.Println(viz.Summary("nbodysim", rows))
}
