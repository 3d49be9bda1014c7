package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/nbodysim/internal/analysis"
	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/experiment"
	"github.com/san-kum/nbodysim/internal/export"
	"github.com/san-kum/nbodysim/internal/nbody"
	"github.com/san-kum/nbodysim/internal/snapshot"
	"github.com/san-kum/nbodysim/internal/storage"
	"github.com/san-kum/nbodysim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, log)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tCOUNT\tDT\tTICK\tDRIFT%\tPARENT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%d\t%.4g\t%s\n",
			run.ID,
			orDash(run.Preset),
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Count,
			run.Dt,
			run.FinalTick,
			run.Metrics["energy_drift"],
			orDash(run.Parent),
		)
	}

	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir, log)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	trace, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}

	if len(trace) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d, dt: %g\n", meta.Count, meta.Dt)
	fmt.Printf("samples: %d (ticks %d..%d)\n\n", len(trace), trace[0].Tick, trace[len(trace)-1].Tick)

	series := []struct {
		caption string
		value   func(nbody.Report) float64
	}{
		{"total energy", func(r nbody.Report) float64 { return r.Total }},
		{"kinetic energy", func(r nbody.Report) float64 { return r.Kinetic }},
		{"potential energy", func(r nbody.Report) float64 { return r.Potential }},
	}

	for _, s := range series {
		data := make([]float64, len(trace))
		for i, r := range trace {
			data[i] = s.value(r)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if svgOut != "" {
		totals := make([]float64, len(trace))
		for i, r := range trace {
			totals[i] = r.Total
		}
		if err := os.WriteFile(svgOut, []byte(export.SeriesToSVG(totals, 800, 300, "#00ccff")), 0644); err != nil {
			return err
		}
		log.WithField("path", svgOut).Info("svg written")
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	trace, err := storage.New(dataDir, log).LoadEnergy(args[0])
	if err != nil {
		return err
	}
	if len(trace) < 4 {
		return fmt.Errorf("need at least 4 samples, have %d", len(trace))
	}

	// the final sample may not sit on the sampling grid
	spacing := trace[1].Time - trace[0].Time
	samples := trace
	if n := len(trace); n > 2 && trace[n-1].Tick-trace[n-2].Tick != trace[1].Tick-trace[0].Tick {
		samples = trace[:n-1]
	}

	series := []struct {
		name  string
		value func(nbody.Report) float64
	}{
		{"total", func(r nbody.Report) float64 { return r.Total }},
		{"kinetic", func(r nbody.Report) float64 { return r.Kinetic }},
		{"potential", func(r nbody.Report) float64 { return r.Potential }},
	}

	rows := []viz.Row{
		{Label: "samples", Value: fmt.Sprintf("%d", len(samples))},
		{Label: "spacing", Value: fmt.Sprintf("%g", spacing)},
	}
	for _, s := range series {
		data := make([]float64, len(samples))
		for i, r := range samples {
			data[i] = s.value(r)
		}

		value := "flat"
		if peak, ok := analysis.Dominant(data, spacing); ok {
			value = fmt.Sprintf("f=%.4g  period=%.4g  power=%.3e", peak.Frequency, 1/peak.Frequency, peak.Power)
		}
		rows = append(rows, viz.Row{Label: s.name, Value: value})
	}

	fmt.Println(viz.Summary("spectrum", rows))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir, log).ExportJSON(os.Stdout, args[0])
}

// snapshotPath accepts either a state file or a stored run ID.
func snapshotPath(arg string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	return storage.New(dataDir, log).SnapshotPath(arg)
}

func inspectSnapshot(cmd *cobra.Command, args []string) error {
	path := snapshotPath(args[0])

	h, recs, err := snapshot.ReadFile(path)
	if err != nil {
		return err
	}

	rows := []viz.Row{
		{Label: "file", Value: path},
		{Label: "particles", Value: fmt.Sprintf("%d", h.Count)},
		{Label: "tick", Value: fmt.Sprintf("%d", h.TickCount)},
		{Label: "elapsed time", Value: fmt.Sprintf("%.4f", h.ElapsedTime)},
		{Label: "initial energy", Value: fmt.Sprintf("%.6e", h.InitialEnergy)},
		{Label: "size", Value: fmt.Sprintf("%d bytes", snapshot.HeaderSize+len(recs)*snapshot.RecordSize)},
	}
	fmt.Println(viz.Summary("snapshot", rows))

	if len(recs) == 0 || limit <= 0 {
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPOS\tVEL\tMASS\tKE\tPE")
	for i, r := range recs {
		if i >= limit {
			break
		}
		fmt.Fprintf(w, "%d\t(%.4f, %.4f, %.4f)\t(%.3e, %.3e, %.3e)\t%.4f\t%.3e\t%.3e\n",
			i,
			r.Pos[0], r.Pos[1], r.Pos[2],
			r.Vel[0], r.Vel[1], r.Vel[2],
			r.Mass,
			r.KineticEnergy,
			r.PotentialEnergy,
		)
	}
	if len(recs) > limit {
		fmt.Fprintf(w, "...\t%d more\t\t\t\t\n", len(recs)-limit)
	}

	return w.Flush()
}

func viewSnapshot(cmd *cobra.Command, args []string) error {
	path := snapshotPath(args[0])

	sim := nbody.New()
	if err := sim.Load(path); err != nil {
		return err
	}

	cam := viz.NewCamera()
	viz.FitCamera(cam, sim.Particles())
	cam.Zoom *= zoom
	cam.RotateX(rotX)
	cam.RotateY(rotY)

	canvas := viz.RenderParticles(sim.Particles(), cam, viewWidth, viewHeight)

	fmt.Println(viz.GradientText(fmt.Sprintf("tick %d  t=%.3f  n=%d", sim.TickCount(), sim.ElapsedTime(), sim.Count()), "#00ffff", "#ff00ff"))
	fmt.Print(viz.Panel.Render(canvas.Render()))
	fmt.Println()

	if svgOut != "" {
		if err := os.WriteFile(svgOut, []byte(export.CanvasToSVG(canvas, 4)), 0644); err != nil {
			return err
		}
		log.WithField("path", svgOut).Info("svg written")
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOUNT\tDT\tMAX_MASS\tMAX_VEL\tMAX_ACC\tTICKS\tSEED")

	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%g\t%g\t%d\t%d\n",
			name, p.Count, p.Dt, p.MaxMass, p.MaxVel, p.MaxAcc, p.Ticks, p.Seed)
	}

	return w.Flush()
}

func benchTicks(cmd *cobra.Command, args []string) error {
	backend, err := experiment.NewRegistry().GetBackend(backendName, workers)
	if err != nil {
		return err
	}

	if benchRep < 1 {
		return fmt.Errorf("--ticks must be at least 1, got %d", benchRep)
	}

	fmt.Printf("benchmarking %s\n\n", backend.Name())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COUNT\tTICKS\tTIME\tMS/TICK\tPAIRS/SEC")

	for _, n := range benchN {
		p := nbody.DefaultParams()
		p.Count = n

		sim := nbody.New(nbody.WithBackend(backend))
		if err := sim.Init(p); err != nil {
			return err
		}

		var elapsed time.Duration
		for i := 0; i < benchRep; i++ {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			elapsed += sim.TickTimed()
		}

		perTick := elapsed / time.Duration(benchRep)
		fmt.Fprintf(w, "%d\t%d\t%v\t%.3f\t%s\n",
			n, benchRep, elapsed.Round(time.Microsecond),
			float64(perTick)/float64(time.Millisecond), pairRate(n, benchRep, elapsed))
	}

	return w.Flush()
}

// pairRate formats pair interactions per second, or "-" when no time was
// measured.
func pairRate(n, ticks int, elapsed time.Duration) string {
	if elapsed <= 0 || ticks < 1 {
		return "-"
	}
	return fmt.Sprintf("%.3g", float64(n)*float64(n-1)*float64(ticks)/elapsed.Seconds())
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	name, _ := flags.GetString("preset")
	n, _ := flags.GetInt("count")
	t, _ := flags.GetInt("ticks")
	first, _ := flags.GetInt64("seed")

	cfg := config.GetPreset(name)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}
	cfg.Count = n
	cfg.Ticks = t
	if err := cfg.Validate(); err != nil {
		return err
	}

	ens := experiment.NewEnsemble(cfg.Params(), experiment.Config{
		Ticks:       cfg.Ticks,
		SampleEvery: cfg.SampleEvery,
		History:     cfg.History,
	}, members, first, log.WithField("preset", name))

	start := time.Now()
	results, err := ens.Run(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tTICKS\tDRIFT%\tSTABILITY\tENERGY")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.4g\t%.3f\t%s\n",
			first+int64(i),
			r.TicksTaken,
			r.Metrics["energy_drift"],
			r.Metrics["stability"],
			viz.SparklineChart(r.History, 30),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean, std := experiment.Spread(results, "energy_drift")
	fmt.Println(viz.Separator(60))
	fmt.Printf("energy drift: %.4g %% ± %.2g over %d seeds (%v)\n",
		mean, std, len(results), time.Since(start).Round(time.Millisecond))
	if math.IsNaN(mean) {
		log.Warn("drift undefined for every member")
	}

	return nil
}
