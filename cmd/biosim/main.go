package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/biosim/internal/analysis"
	"github.com/san-kum/biosim/internal/biomodel"
	"github.com/san-kum/biosim/internal/config"
	"github.com/san-kum/biosim/internal/engine"
	"github.com/san-kum/biosim/internal/experiment"
	"github.com/san-kum/biosim/internal/export"
	"github.com/san-kum/biosim/internal/integrators"
	"github.com/san-kum/biosim/internal/metrics"
	"github.com/san-kum/biosim/internal/optim"
	"github.com/san-kum/biosim/internal/scan"
	"github.com/san-kum/biosim/internal/storage"
	"github.com/san-kum/biosim/internal/viz"
)

var (
	dataDir     string
	verbose     bool
	dumpMetrics bool

	configFile string
	preset     string
	timeEnd    float64
	timeStep   float64
	method     string
	maxSteps   int
	maxValues  int
	noSave     bool

	setConc  []string
	setParam []string
	setRate  []string

	scanParam    string
	scanReaction string
	scanValues   []float64
	scanFrom     float64
	scanTo       float64
	scanPoints   int

	plotSpecies []string
	phaseAxes   []string
	width       int
	height      int

	crossSpecies string
	threshold    float64
	transient    float64

	sensitivity float64
	outPath     string
	svgPath     string

	fitRates   []string
	fitTargets []string

	log       *zap.Logger
	collector *metrics.Collector
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "biosim",
		Short:             "reaction network simulator",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if dumpMetrics {
				return collector.WriteText(os.Stderr)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".biosim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false, "print prometheus metrics to stderr on exit")

	runCmd := &cobra.Command{
		Use:   "run [model.xml]",
		Short: "simulate a model and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	addWindowFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	scanCmd := &cobra.Command{
		Use:   "scan [model.xml]",
		Short: "sweep a parameter or rate constant over the fixed scan window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScan,
	}
	addModelFlags(scanCmd)
	scanCmd.Flags().StringVar(&scanParam, "param", "", "parameter to sweep")
	scanCmd.Flags().StringVar(&scanReaction, "reaction", "", "reaction whose rate constant to sweep")
	scanCmd.Flags().Float64SliceVar(&scanValues, "values", nil, "explicit values")
	scanCmd.Flags().Float64Var(&scanFrom, "from", 0, "range start")
	scanCmd.Flags().Float64Var(&scanTo, "to", 1, "range end")
	scanCmd.Flags().IntVar(&scanPoints, "points", config.DefaultPoints, "range size")
	scanCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the scan")

	inspectCmd := &cobra.Command{
		Use:   "inspect [model.xml]",
		Short: "show species, reactions and initial rates",
		Args:  cobra.MaximumNArgs(1),
		RunE:  inspectModel,
	}
	addModelFlags(inspectCmd)
	addWindowFlags(inspectCmd)
	inspectCmd.Flags().Float64Var(&sensitivity, "sensitivity", 0, "estimate perturbation growth over this duration")

	tuneCmd := &cobra.Command{
		Use:   "tune [model.xml]",
		Short: "edit values interactively and re-simulate",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneModel,
	}
	addModelFlags(tuneCmd)
	addWindowFlags(tuneCmd)

	fitCmd := &cobra.Command{
		Use:   "fit [model.xml]",
		Short: "grid search rate constants to hit target final concentrations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  fitModel,
	}
	addModelFlags(fitCmd)
	addWindowFlags(fitCmd)
	fitCmd.Flags().StringArrayVar(&fitRates, "grid", nil, "reaction=from:to:points axis to search")
	fitCmd.Flags().StringArrayVar(&fitTargets, "target", nil, "species=value final concentration target")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored trajectories",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotSpecies, "species", nil, "species to plot (default all)")
	plotCmd.Flags().StringSliceVar(&phaseAxes, "phase", nil, "plot two species against each other, e.g. --phase prey,predator")
	plotCmd.Flags().IntVar(&width, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 20, "plot height")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the plot as svg")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "periods and sections of a run, or the bifurcation diagram of a scan",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&crossSpecies, "cross", "", "species whose upward threshold crossings define a Poincaré section")
	analyzeCmd.Flags().Float64Var(&threshold, "threshold", 1, "crossing threshold")
	analyzeCmd.Flags().StringSliceVar(&plotSpecies, "species", nil, "species to analyze (default all)")
	analyzeCmd.Flags().StringSliceVar(&phaseAxes, "phase", nil, "phase portrait of two species, e.g. --phase prey,predator")
	analyzeCmd.Flags().Float64Var(&transient, "transient", 0.5, "fraction of each scan trajectory discarded before bifurcation sampling")
	analyzeCmd.Flags().IntVar(&width, "width", 80, "plot width")
	analyzeCmd.Flags().IntVar(&height, "height", 20, "plot height")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export trajectories as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run or scan as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list run presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, scanCmd, inspectCmd, tuneCmd, fitCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if log != nil {
		_ = log.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringArrayVar(&setConc, "set", nil, "initial concentration override, species=value")
	cmd.Flags().StringArrayVar(&setParam, "param-value", nil, "parameter override, id=value")
	cmd.Flags().StringArrayVar(&setRate, "rate", nil, "rate constant override, reaction=value")
	cmd.Flags().IntVar(&maxSteps, "max-steps", engine.DefaultMaxSteps, "step ceiling per simulation")
	cmd.Flags().IntVar(&maxValues, "max-values", engine.DefaultMaxValues, "recorded value ceiling per simulation (steps+1 times species)")
}

func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset window")
	cmd.Flags().Float64Var(&timeEnd, "time-end", config.DefaultTimeEnd, "simulation end time")
	cmd.Flags().Float64Var(&timeStep, "time-step", config.DefaultTimeStep, "integration step")
	cmd.Flags().StringVar(&method, "method", integrators.DefaultMethod, fmt.Sprintf("integration method %v", integrators.Methods()))
}

func setup(cmd *cobra.Command, args []string) error {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := zcfg.Build()
	if err != nil {
		return err
	}
	log = l

	collector, err = metrics.NewCollector(prometheus.NewRegistry())
	return err
}

func parseAssignments(flag string, items []string) (map[string]float64, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(items))
	for _, item := range items {
		id, raw, ok := strings.Cut(item, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("--%s %q: want id=value", flag, item)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("--%s %q: %w", flag, item, err)
		}
		out[id] = v
	}
	return out, nil
}

func merge(dst map[string]float64, src map[string]float64) map[string]float64 {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]float64, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// loadConfig layers file, preset and flags; flags win only when given.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
		log.Info("loaded config", zap.String("path", configFile))
	}
	if preset != "" && !cfg.WithPreset(preset) {
		return nil, fmt.Errorf("unknown preset %q (have %v)", preset, config.ListPresets())
	}

	flags := cmd.Flags()
	if flags.Changed("time-end") {
		cfg.TimeEnd = timeEnd
	}
	if flags.Changed("time-step") {
		cfg.TimeStep = timeStep
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if flags.Changed("max-values") {
		cfg.MaxValues = maxValues
	}
	if len(args) > 0 {
		cfg.Model = args[0]
	}

	for _, o := range []struct {
		flag  string
		items []string
		dst   *map[string]float64
	}{
		{"set", setConc, &cfg.InitialConcentrations},
		{"param-value", setParam, &cfg.Parameters},
		{"rate", setRate, &cfg.RateConstants},
	} {
		values, err := parseAssignments(o.flag, o.items)
		if err != nil {
			return nil, err
		}
		*o.dst = merge(*o.dst, values)
	}

	if flags.Changed("param") || flags.Changed("reaction") {
		cfg.Scan.Parameter = scanParam
		cfg.Scan.Reaction = scanReaction
	}
	if flags.Changed("values") {
		cfg.Scan.Values = scanValues
	}
	if flags.Changed("from") || flags.Changed("to") || flags.Changed("points") {
		cfg.Scan.Values = nil
		cfg.Scan.From = scanFrom
		cfg.Scan.To = scanTo
		cfg.Scan.Points = scanPoints
	}

	if cfg.Model == "" {
		return nil, errors.New("no model given: pass a file or set model in the config")
	}
	return cfg, nil
}

func openExperiment(cmd *cobra.Command, args []string) (*experiment.Experiment, *config.Config, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	exp := experiment.New(cfg, log.Named("experiment"))
	if err := exp.Setup(biomodel.WithObserver(collector)); err != nil {
		return nil, nil, err
	}
	return exp, cfg, nil
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	return st, st.Init()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, cfg, err := openExperiment(cmd, args)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "simulating %s: t=0..%g dt=%g (%s)\n",
		cfg.Model, cfg.TimeEnd, cfg.TimeStep, integrators.Resolve(cfg.Method))

	out, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	res := out.Results

	fmt.Println(viz.SummaryTable(analysis.Summarize(res), res.Trajectory))
	fmt.Println(viz.KeyValues([][2]string{
		{"points", strconv.Itoa(res.Len())},
		{"elapsed", out.Elapsed.String()},
		{"mass drift", viz.Num(out.Metrics["mass_drift"])},
		{"settling time", viz.Num(out.Metrics["settling_time"])},
		{"activity", viz.Num(out.Metrics["activity"])},
	}))

	if noSave {
		return nil
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := exp.Record(st, out)
	if err != nil {
		return err
	}
	fmt.Printf("saved run %s in %s\n", runID, st.Path(runID))
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	exp, _, err := openExperiment(cmd, args)
	if err != nil {
		return err
	}

	out, err := exp.Scan(cmd.Context())
	if err != nil {
		return err
	}

	names := exp.Model().SpeciesNames()
	headers := append([]string{out.Knob}, names...)
	rows := make([][]string, len(out.Points))
	for i, p := range out.Points {
		row := []string{viz.Num(p.Value)}
		for _, v := range p.Results.Final() {
			row = append(row, viz.Num(v))
		}
		rows[i] = row
	}
	fmt.Println(viz.Title.Render(fmt.Sprintf("final concentrations at t=%g", scan.Window.TimeEnd)))
	fmt.Println(viz.RenderTable(headers, rows))
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("%d points in %s", len(out.Points), out.Elapsed)))

	if noSave {
		return nil
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := exp.RecordScan(st, out)
	if err != nil {
		return err
	}
	fmt.Printf("saved scan %s in %s\n", runID, st.Path(runID))
	return nil
}

func inspectModel(cmd *cobra.Command, args []string) error {
	exp, cfg, err := openExperiment(cmd, args)
	if err != nil {
		return err
	}
	b := exp.Model()
	m := b.Model()

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s %s", m.ID, m.Name)))

	deriv := b.Derivatives()
	speciesRows := make([][]string, len(m.Species))
	for i, s := range m.Species {
		speciesRows[i] = []string{s.ID, s.Name, s.Compartment, viz.Num(s.InitialConcentration), viz.Num(deriv[i])}
	}
	fmt.Println(viz.RenderTable([]string{"species", "name", "compartment", "initial", "dX/dt"}, speciesRows))

	rates := b.Rates()
	reactionIDs := make([]string, len(m.Reactions))
	reactionRows := make([][]string, len(m.Reactions))
	for j, r := range m.Reactions {
		reactionIDs[j] = r.ID
		law := strings.Join(strings.Fields(r.KineticLaw), " ")
		reactionRows[j] = []string{r.ID, strings.Join(r.Reactants, " + ") + " -> " + strings.Join(r.Products, " + "), viz.Num(r.RateConstant), viz.Num(rates[j]), law}
	}
	fmt.Println(viz.RenderTable([]string{"reaction", "equation", "k", "rate", "kinetic law (not evaluated)"}, reactionRows))

	if len(m.Parameters) > 0 {
		paramRows := make([][]string, len(m.Parameters))
		for i, p := range m.Parameters {
			paramRows[i] = []string{p.ID, viz.Num(p.Value), strconv.FormatBool(p.Constant)}
		}
		fmt.Println(viz.RenderTable([]string{"parameter", "value", "constant"}, paramRows))
	}

	if len(m.Species) > 0 && len(m.Reactions) > 0 {
		fmt.Println(viz.MatrixTable(m.SpeciesIDs(), reactionIDs, b.Stoichiometry()))
	}

	if sensitivity > 0 {
		eng := engine.New(m, engine.WithLogger(log.Named("engine")))
		sim := cfg.Simulation()
		growth := analysis.Sensitivity(eng, integrators.Lookup(sim.Method), eng.State(), sim.TimeStep, sensitivity, 1e-6)
		pairs := make([][2]string, len(growth))
		for i, g := range growth {
			pairs[i] = [2]string{m.Species[i].ID, viz.Num(g)}
		}
		fmt.Println(viz.Title.Render(fmt.Sprintf("perturbation growth rate over t=%g", sensitivity)))
		fmt.Print(viz.KeyValues(pairs))
	}
	return nil
}

func tuneModel(cmd *cobra.Command, args []string) error {
	exp, cfg, err := openExperiment(cmd, args)
	if err != nil {
		return err
	}
	sim := cfg.Simulation()
	return viz.RunTuner(cmd.Context(), exp.Model(), biomodel.SimulationConfig{
		TimeEnd:  sim.TimeEnd,
		TimeStep: sim.TimeStep,
		Method:   sim.Method,
	})
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
	fmt.Fprintln(w, "ID\tKIND\tMODEL\tTIME\tT_END\tDT\tMETHOD\tKNOB")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%g\t%s\t%s\n",
			run.ID,
			run.Kind,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.TimeEnd,
			run.TimeStep,
			run.Method,
			run.Knob,
		)
	}

	return w.Flush()
}

// loadTrajectories returns the stored results of a simulation run.
func loadTrajectories(st *storage.Store, runID string) (*storage.RunMetadata, *engine.Results, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	if meta.Kind == storage.KindScan {
		return nil, nil, fmt.Errorf("run %s is a scan; use analyze or export-json", runID)
	}
	res, err := st.LoadResults(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, res, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	_, res, err := loadTrajectories(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}

	if len(phaseAxes) > 0 {
		if len(phaseAxes) != 2 {
			return fmt.Errorf("--phase wants two species, got %d", len(phaseAxes))
		}
		idx, err := viz.IndicesOf(res, phaseAxes)
		if err != nil {
			return err
		}
		xs, ys := res.Trajectory(idx[0]), res.Trajectory(idx[1])
		canvas := viz.NewCanvas(width, height)
		canvas.DrawPath(xs, ys)
		fmt.Print(viz.Panel.Render(canvas.String()))
		fmt.Println()
		fmt.Println(viz.Subtle.Render(fmt.Sprintf("%s (x) vs %s (y)", phaseAxes[0], phaseAxes[1])))
		return writeSVG(export.PhaseSVG(xs, ys, width*10, height*20, export.Palette[0]))
	}

	idx, err := viz.IndicesOf(res, plotSpecies)
	if err != nil {
		return err
	}
	graph, err := viz.PlotSpecies(res, idx, width, height)
	if err != nil {
		return err
	}
	fmt.Println(graph)

	if svgPath == "" {
		return nil
	}
	svg, err := export.TrajectoriesSVG(res, idx, width*10, height*20)
	if err != nil {
		return err
	}
	return writeSVG(svg)
}

func writeSVG(svg string) error {
	if svgPath == "" {
		return nil
	}
	if svg == "" {
		return errors.New("not enough points for svg")
	}
	if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", svgPath)
	return nil
}

// parseAxis reads reaction=from:to:points.
func parseAxis(item string) (optim.Axis, error) {
	id, spec, ok := strings.Cut(item, "=")
	parts := strings.Split(spec, ":")
	if !ok || id == "" || len(parts) != 3 {
		return optim.Axis{}, fmt.Errorf("--grid %q: want reaction=from:to:points", item)
	}
	from, err1 := strconv.ParseFloat(parts[0], 64)
	to, err2 := strconv.ParseFloat(parts[1], 64)
	n, err3 := strconv.Atoi(parts[2])
	if err := errors.Join(err1, err2, err3); err != nil {
		return optim.Axis{}, fmt.Errorf("--grid %q: %w", item, err)
	}
	return optim.Axis{Reaction: id, Values: scan.Values(from, to, n)}, nil
}

func fitModel(cmd *cobra.Command, args []string) error {
	if len(fitRates) == 0 || len(fitTargets) == 0 {
		return errors.New("fit needs at least one --grid and one --target")
	}
	axes := make([]optim.Axis, 0, len(fitRates))
	for _, item := range fitRates {
		a, err := parseAxis(item)
		if err != nil {
			return err
		}
		axes = append(axes, a)
	}
	targets, err := parseAssignments("target", fitTargets)
	if err != nil {
		return err
	}

	exp, cfg, err := openExperiment(cmd, args)
	if err != nil {
		return err
	}
	sim := cfg.Simulation()
	g := optim.NewGridSearch(axes, biomodel.SimulationConfig{
		TimeEnd:  sim.TimeEnd,
		TimeStep: sim.TimeStep,
		Method:   sim.Method,
	}, log.Named("optim"))

	best, err := g.Search(cmd.Context(), exp.Model(), optim.FinalTargets(targets))
	if err != nil {
		return err
	}

	pairs := make([][2]string, 0, len(axes)+3)
	for _, a := range axes {
		pairs = append(pairs, [2]string{a.Reaction, viz.Num(best.RateConstants[a.Reaction])})
	}
	pairs = append(pairs,
		[2]string{"score", viz.Num(best.Score)},
		[2]string{"evaluated", strconv.Itoa(best.Evaluated)},
		[2]string{"failed", strconv.Itoa(best.Failed)},
	)
	fmt.Print(viz.KeyValues(pairs))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if meta.Kind == storage.KindScan {
		return analyzeScan(st, meta)
	}

	res, err := st.LoadResults(args[0])
	if err != nil {
		return err
	}
	idx, err := viz.IndicesOf(res, plotSpecies)
	if err != nil {
		return err
	}
	if len(idx) == 0 {
		for i := 0; i < res.NumSpecies; i++ {
			idx = append(idx, i)
		}
	}

	dt := meta.TimeStep
	rows := make([][]string, 0, len(idx))
	for _, i := range idx {
		period := "-"
		if p, ok := analysis.DominantPeriod(res.Trajectory(i), dt); ok {
			period = viz.Num(p)
		}
		rows = append(rows, []string{res.SpeciesNames[i], period})
	}
	fmt.Println(viz.RenderTable([]string{"species", "dominant period"}, rows))

	ms := analysis.DefaultMetrics()
	values := analysis.Evaluate(res, ms...)
	pairs := make([][2]string, len(ms))
	for i, m := range ms {
		pairs[i] = [2]string{m.Name(), viz.Num(values[m.Name()])}
	}
	fmt.Print(viz.KeyValues(pairs))

	if len(phaseAxes) > 0 {
		if len(phaseAxes) != 2 {
			return fmt.Errorf("--phase wants two species, got %d", len(phaseAxes))
		}
		axes, err := viz.IndicesOf(res, phaseAxes)
		if err != nil {
			return err
		}
		portrait := analysis.PhasePortrait(res, axes[0], axes[1])
		fmt.Println(viz.Title.Render(fmt.Sprintf("%s (x) vs %s (y)", phaseAxes[0], phaseAxes[1])))
		fmt.Println(analysis.PhasePortraitToASCII(portrait, width, height))
	}

	if crossSpecies == "" {
		return nil
	}
	cross, err := viz.IndicesOf(res, []string{crossSpecies})
	if err != nil {
		return err
	}
	if len(idx) < 2 {
		return errors.New("a Poincaré section needs two recorded species")
	}
	section := analysis.GeneratePoincareSection(res, cross[0], threshold, idx[0], idx[1])
	fmt.Println(viz.Title.Render(fmt.Sprintf("%s rising through %g", crossSpecies, threshold)))
	fmt.Println(analysis.PoincareSectionToASCII(section, width, height))
	return nil
}

func analyzeScan(st *storage.Store, meta *storage.RunMetadata) error {
	points, err := st.LoadScan(meta.ID)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return errors.New("scan has no points")
	}

	names := plotSpecies
	if len(names) == 0 {
		names = points[0].Results.SpeciesNames
	}
	idx, err := viz.IndicesOf(points[0].Results, names)
	if err != nil {
		return err
	}
	for k, i := range idx {
		data := analysis.Bifurcation(points, i, transient)
		fmt.Println(viz.Title.Render(fmt.Sprintf("%s long-run values vs %s", names[k], meta.Knob)))
		fmt.Println(analysis.BifurcationToASCII(data, width, height))
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, res, err := loadTrajectories(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(outPath, res)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	if meta.Kind == storage.KindScan {
		points, err := st.LoadScan(meta.ID)
		if err != nil {
			return err
		}
		if outPath == "" {
			return storage.ExportScanJSONStdout(points)
		}
		return storage.ExportScanJSON(outPath, points)
	}

	res, err := st.LoadResults(meta.ID)
	if err != nil {
		return err
	}
	data := storage.NewExportData(meta.Model, engine.Config{
		TimeEnd:  meta.TimeEnd,
		TimeStep: meta.TimeStep,
		Method:   meta.Method,
	}, res)
	if outPath == "" {
		return storage.ExportJSONStdout(data)
	}
	if err := storage.ExportJSON(outPath, data); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported to %s\n", outPath)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tMETHOD\tT_END\tDT\tSTEPS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%d\n", name, p.Method, p.TimeEnd, p.TimeStep, p.Simulation().Steps())
	}
	return w.Flush()
}
