package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravfield/internal/analysis"
	"github.com/san-kum/gravfield/internal/automation"
	"github.com/san-kum/gravfield/internal/config"
	"github.com/san-kum/gravfield/internal/export"
	"github.com/san-kum/gravfield/internal/field"
	"github.com/san-kum/gravfield/internal/metrics"
	"github.com/san-kum/gravfield/internal/sim"
	"github.com/san-kum/gravfield/internal/storage"
	"github.com/san-kum/gravfield/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	dt       float64
	duration float64
	parallel bool
	dbFile   string

	fromFlag string
	toFlag   string
	atFlag   string
	count    int

	sweepMin    float64
	sweepMax    float64
	sweepPoints int

	jitter float64
	trials int
	seed   int64

	outFile string
	width   int
	height  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gravfield",
		Short: "artificial gravity field workbench",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravfield", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and save the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (0 uses the scene's)")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration (0 uses the scene's)")
	runCmd.Flags().BoolVar(&parallel, "parallel", false, "solve entities concurrently")
	runCmd.Flags().StringVar(&dbFile, "db", "", "also record ticks into this sqlite file")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "watch a scene tick in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (0 uses the scene's)")

	sampleCmd := &cobra.Command{
		Use:   "sample [scene]",
		Short: "query the field at a point",
		Args:  cobra.ExactArgs(1),
		RunE:  samplePoint,
	}
	sampleCmd.Flags().StringVar(&atFlag, "at", "0,0,0", "query point as x,y,z")

	profileCmd := &cobra.Command{
		Use:   "profile [scene]",
		Short: "sample the field along a segment",
		Args:  cobra.ExactArgs(1),
		RunE:  profileScene,
	}
	profileCmd.Flags().StringVar(&fromFlag, "from", "", "segment start as x,y,z")
	profileCmd.Flags().StringVar(&toFlag, "to", "", "segment end as x,y,z")
	profileCmd.Flags().IntVar(&count, "count", 40, "number of samples")

	crossoverCmd := &cobra.Command{
		Use:   "crossover [scene] [source_a] [source_b]",
		Short: "locate the dominance handover between two sources",
		Args:  cobra.ExactArgs(3),
		RunE:  findCrossover,
	}
	crossoverCmd.Flags().StringVar(&fromFlag, "from", "", "segment start as x,y,z")
	crossoverCmd.Flags().StringVar(&toFlag, "to", "", "segment end as x,y,z")

	equilibriumCmd := &cobra.Command{
		Use:   "equilibrium [scene]",
		Short: "locate the axial balance point along a segment",
		Args:  cobra.ExactArgs(1),
		RunE:  findEquilibrium,
	}
	equilibriumCmd.Flags().StringVar(&fromFlag, "from", "", "segment start as x,y,z")
	equilibriumCmd.Flags().StringVar(&toFlag, "to", "", "segment end as x,y,z")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene] [source]",
		Short: "rerun a scene across a strength range",
		Args:  cobra.ExactArgs(2),
		RunE:  sweepScene,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1, "lowest surface strength")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 20, "highest surface strength")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 8, "number of sweep points")
	sweepCmd.Flags().Float64Var(&duration, "time", 0, "duration per point (0 uses the scene's)")
	sweepCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (0 uses the scene's)")

	scatterCmd := &cobra.Command{
		Use:   "scatter [scene]",
		Short: "rerun a scene with jittered entity starts",
		Args:  cobra.ExactArgs(1),
		RunE:  scatterScene,
	}
	scatterCmd.Flags().Float64Var(&jitter, "jitter", 10, "per-axis start offset bound")
	scatterCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	scatterCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	scatterCmd.Flags().Float64Var(&duration, "time", 0, "duration per trial (0 uses the scene's)")
	scatterCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (0 uses the scene's)")

	batchCmd := &cobra.Command{
		Use:   "batch [playlist]",
		Short: "run a playlist of scenes, saving each run",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run's field magnitudes",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a saved run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [scene]",
		Short: "render a scene map with entity trails",
		Args:  cobra.ExactArgs(1),
		RunE:  renderSVG,
	}
	svgCmd.Flags().StringVar(&outFile, "out", "", "output path (default stdout)")
	svgCmd.Flags().IntVar(&width, "width", 800, "image width")
	svgCmd.Flags().IntVar(&height, "height", 600, "image height")
	svgCmd.Flags().Float64Var(&duration, "time", 0, "duration (0 uses the scene's)")
	svgCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (0 uses the scene's)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list ready-made scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDURATION\tSOURCES\tZONES\tENTITIES")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.0fs\t%d\t%d\t%d\n",
					name, cfg.Duration, len(cfg.Sources), len(cfg.Zones), len(cfg.Entities))
			}
			return w.Flush()
		},
	}

	sceneCmd := &cobra.Command{
		Use:   "scene [preset]",
		Short: "write a preset out as an editable scene file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(args[0])
			if err != nil {
				return err
			}
			path := outFile
			if path == "" {
				path = cfg.Name + ".yaml"
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	sceneCmd.Flags().StringVar(&outFile, "out", "", "output path (default <scene>.yaml)")

	rootCmd.AddCommand(runCmd, liveCmd, sampleCmd, profileCmd, crossoverCmd,
		equilibriumCmd, sweepCmd, scatterCmd, batchCmd, listCmd, plotCmd,
		exportCmd, exportCSVCmd, svgCmd, presetsCmd, sceneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildScene(name string) (*config.Scene, *sim.Scene, error) {
	cfg, err := config.Resolve(name)
	if err != nil {
		return nil, nil, err
	}
	sc, err := sim.FromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, sc, nil
}

func parseVec(s string) (v mgl64.Vec3, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected x,y,z, got %q", s)
	}
	for i, p := range parts {
		v[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v, fmt.Errorf("bad coordinate %q: %w", p, err)
		}
	}
	return v, nil
}

func parseSegment() (p0, p1 mgl64.Vec3, err error) {
	if p0, err = parseVec(fromFlag); err != nil {
		return p0, p1, fmt.Errorf("--from: %w", err)
	}
	if p1, err = parseVec(toFlag); err != nil {
		return p0, p1, fmt.Errorf("--to: %w", err)
	}
	return p0, p1, nil
}

func sourceByName(reg *field.Registry, name string) (field.SourceID, error) {
	for _, id := range reg.IDs() {
		src, err := reg.Source(id)
		if err != nil {
			continue
		}
		if src.Name == name {
			return id, nil
		}
	}
	return field.NoSource, fmt.Errorf("no source named %q", name)
}

func sourceName(reg *field.Registry, id field.SourceID) string {
	if id == field.NoSource {
		return "none"
	}
	src, err := reg.Source(id)
	if err != nil {
		return fmt.Sprintf("#%d", id)
	}
	return src.Name
}

func entityNames(sc *sim.Scene) []string {
	names := make([]string, len(sc.Entities))
	for i, e := range sc.Entities {
		names[i] = e.Name
	}
	return names
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, sc, err := buildScene(args[0])
	if err != nil {
		return err
	}

	sc.AddMetric(metrics.NewZeroGFraction())
	sc.AddMetric(metrics.NewDominantSwitches())
	sc.AddMetric(metrics.NewMaxUpRate())
	sc.AddMetric(metrics.NewFieldStats())

	runCfg := sim.RunConfig(cfg)
	if dt > 0 {
		runCfg.Dt = dt
	}
	if duration > 0 {
		runCfg.Duration = duration
	}
	if parallel {
		runCfg.Parallel = true
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s...\n", cfg.Name)
	start := time.Now()

	result, err := sc.Run(context.Background(), runCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Name, entityNames(sc), runCfg, result)
	if err != nil {
		return err
	}

	if dbFile != "" {
		rec, err := storage.OpenRecorder(dbFile)
		if err != nil {
			return err
		}
		defer rec.Close()
		if err := rec.WriteRun(runID, entityNames(sc), result); err != nil {
			return err
		}
		fmt.Printf("recorded into %s\n", dbFile)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)

	if len(result.Events) > 0 {
		show := result.Events
		extra := 0
		if len(show) > 20 {
			extra = len(show) - 20
			show = show[:20]
		}
		fmt.Println("\nevents:")
		for _, ev := range show {
			fmt.Printf("  %7.2fs %-10s %s%s\n", ev.T, ev.Entity, ev.Kind, eventDetail(sc, ev))
		}
		if extra > 0 {
			fmt.Printf("  ... %d more\n", extra)
		}
	}

	fmt.Println("\nmetrics:")
	keys := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	for _, name := range keys {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func eventDetail(sc *sim.Scene, ev sim.Event) string {
	if ev.Kind != sim.EventDominantChanged {
		return ""
	}
	return fmt.Sprintf(" (%s -> %s)",
		sourceName(sc.Registry, ev.Prev), sourceName(sc.Registry, ev.Next))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(args[0])
	if err != nil {
		return err
	}

	step := cfg.Dt
	if dt > 0 {
		step = dt
	}

	m, err := viz.NewModel(func() (*sim.Scene, error) { return sim.FromConfig(cfg) }, step)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func samplePoint(cmd *cobra.Command, args []string) error {
	_, sc, err := buildScene(args[0])
	if err != nil {
		return err
	}
	p, err := parseVec(atFlag)
	if err != nil {
		return err
	}

	smp := sc.Registry.Sample(p)
	fmt.Printf("point: (%.2f, %.2f, %.2f)\n", p.X(), p.Y(), p.Z())
	fmt.Printf("net field: (%.4f, %.4f, %.4f), magnitude %.4f\n",
		smp.Net.X(), smp.Net.Y(), smp.Net.Z(), smp.Net.Len())
	fmt.Printf("dominant: %s\n\n", sourceName(sc.Registry, smp.Dominant))

	contribs := sc.Registry.Contributions(p)
	if len(contribs) == 0 {
		fmt.Println("no sources in range")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tMAG\tDIST\tINFLUENCE\tPARTICIPATION")
	for _, c := range contribs {
		fmt.Fprintf(w, "%s\t%.4f\t%.1f\t%.1f%%\t%s\n",
			c.Name, c.Magnitude, c.Distance, c.Influence*100, c.Participation)
	}
	return w.Flush()
}

func profileScene(cmd *cobra.Command, args []string) error {
	_, sc, err := buildScene(args[0])
	if err != nil {
		return err
	}
	p0, p1, err := parseSegment()
	if err != nil {
		return err
	}

	points := analysis.Profile(sc.Registry, p0, p1, count)
	if points == nil {
		return fmt.Errorf("profile needs at least 2 samples, got %d", count)
	}

	graph := asciigraph.Plot(analysis.Magnitudes(points),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("field magnitude along segment"),
	)
	fmt.Println(graph)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T\tPOS\tMAG\tDOMINANT")
	for _, pt := range points {
		fmt.Fprintf(w, "%.3f\t(%.1f, %.1f, %.1f)\t%.4f\t%s\n",
			pt.T, pt.Pos.X(), pt.Pos.Y(), pt.Pos.Z(), pt.Mag,
			sourceName(sc.Registry, pt.Dominant))
	}
	return w.Flush()
}

func findCrossover(cmd *cobra.Command, args []string) error {
	_, sc, err := buildScene(args[0])
	if err != nil {
		return err
	}
	a, err := sourceByName(sc.Registry, args[1])
	if err != nil {
		return err
	}
	b, err := sourceByName(sc.Registry, args[2])
	if err != nil {
		return err
	}
	p0, p1, err := parseSegment()
	if err != nil {
		return err
	}

	t, ok := analysis.Crossover(sc.Registry, a, b, p0, p1, 0)
	if !ok {
		fmt.Printf("no handover from %s to %s along the segment\n", args[1], args[2])
		return nil
	}

	pos := analysis.Lerp(p0, p1, t)
	smp := sc.Registry.Sample(pos)
	fmt.Printf("handover at t=%.6f\n", t)
	fmt.Printf("position: (%.2f, %.2f, %.2f)\n", pos.X(), pos.Y(), pos.Z())
	fmt.Printf("field there: %.4f\n", smp.Net.Len())
	return nil
}

func findEquilibrium(cmd *cobra.Command, args []string) error {
	_, sc, err := buildScene(args[0])
	if err != nil {
		return err
	}
	p0, p1, err := parseSegment()
	if err != nil {
		return err
	}

	t, ok := analysis.Equilibrium(sc.Registry, p0, p1, 0)
	if !ok {
		fmt.Println("no axial balance point along the segment")
		return nil
	}

	pos := analysis.Lerp(p0, p1, t)
	smp := sc.Registry.Sample(pos)
	fmt.Printf("balance at t=%.6f\n", t)
	fmt.Printf("position: (%.2f, %.2f, %.2f)\n", pos.X(), pos.Y(), pos.Z())
	fmt.Printf("residual field: %.6f\n", smp.Net.Len())
	return nil
}

func sweepScene(cmd *cobra.Command, args []string) error {
	sw := &automation.Sweep{
		Scene:    args[0],
		Source:   args[1],
		Min:      sweepMin,
		Max:      sweepMax,
		Points:   sweepPoints,
		Duration: duration,
		Dt:       dt,
	}

	points, err := automation.RunSweep(context.Background(), sw, os.Stdout)
	if err != nil {
		return err
	}

	fracs := make([]float64, len(points))
	for i, p := range points {
		fracs[i] = p.ZeroGFraction
	}
	fmt.Println()
	graph := asciigraph.Plot(fracs,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("zero-g fraction vs %s strength", args[1])),
	)
	fmt.Println(graph)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRENGTH\tZERO_G\tSWITCHES\tMEAN_FIELD")
	for _, p := range points {
		fmt.Fprintf(w, "%.3f\t%.3f\t%.0f\t%.4f\n",
			p.Strength, p.ZeroGFraction, p.Switches, p.MeanField)
	}
	return w.Flush()
}

func scatterScene(cmd *cobra.Command, args []string) error {
	sct := &automation.Scatter{
		Scene:    args[0],
		Jitter:   jitter,
		Trials:   trials,
		Seed:     seed,
		Duration: duration,
		Dt:       dt,
	}

	out, err := automation.RunScatter(context.Background(), sct, os.Stdout)
	if err != nil {
		return err
	}

	weightless, weighted := automation.ScatterStats(out)
	fmt.Printf("\n%d/%d trials ended weightless\n", weightless, weightless+weighted)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	pl, err := automation.LoadPlaylist(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if pl.Name != "" {
		fmt.Printf("playlist: %s\n", pl.Name)
	}
	results, err := automation.RunPlaylist(context.Background(), pl, st, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTEPS\tZERO_G\tSWITCHES")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%.3f\t%.0f\n",
			r.RunID, r.Steps, r.Metrics["zero_g_fraction"], r.Metrics["dominant_switches"])
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tENTITIES\tSTEPS\tEVENTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\t%d\n",
			run.ID, run.Scene, run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration, run.Dt, len(run.Entities), run.Steps, run.Events)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(rows))

	for _, entity := range meta.Entities {
		data := make([]float64, 0, meta.Steps+1)
		for _, r := range rows {
			if r.Entity == entity {
				data = append(data, r.State.Mag)
			}
		}
		if len(data) == 0 {
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(entity+" field magnitude"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportJSON(os.Stdout, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportCSV(os.Stdout, args[0])
}

func renderSVG(cmd *cobra.Command, args []string) error {
	cfg, sc, err := buildScene(args[0])
	if err != nil {
		return err
	}

	// Snapshot before running so orbiting sources draw at their
	// starting positions.
	views := sc.Registry.Snapshot(nil)

	runCfg := sim.RunConfig(cfg)
	if dt > 0 {
		runCfg.Dt = dt
	}
	if duration > 0 {
		runCfg.Duration = duration
	}

	result, err := sc.Run(context.Background(), runCfg)
	if err != nil {
		return err
	}

	trails := export.Trails(entityNames(sc), result.Ticks)
	doc := export.SceneToSVG(views, sc.Zones, trails, width, height)

	if outFile == "" {
		fmt.Print(doc)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(doc), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}
