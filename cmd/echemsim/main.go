package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/echemsim/internal/analysis"
	"github.com/san-kum/echemsim/internal/api"
	"github.com/san-kum/echemsim/internal/automation"
	"github.com/san-kum/echemsim/internal/config"
	"github.com/san-kum/echemsim/internal/echem"
	"github.com/san-kum/echemsim/internal/experiment"
	"github.com/san-kum/echemsim/internal/export"
	"github.com/san-kum/echemsim/internal/logging"
	"github.com/san-kum/echemsim/internal/metrics"
	"github.com/san-kum/echemsim/internal/optim"
	"github.com/san-kum/echemsim/internal/refdata"
	"github.com/san-kum/echemsim/internal/storage"
	"github.com/san-kum/echemsim/internal/viz"
)

var (
	dataDir   string
	logLevel  string
	logFormat string
	log       *logrus.Logger

	// simulation parameters
	configFile string
	preset     string
	technique  string
	mechanism  string
	scanRate   float64
	k0         float64
	alpha      float64
	kf         float64
	kr         float64
	overrides  []string

	noSave   bool
	showPlot bool
	plotMode string
	width    int
	height   int
	refFile  string
	axis     string
	output   string
	grids    bool
	profile  int
	theme    string
	parallel int

	// sweep and monte carlo
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepSteps  int
	sweepLog    bool
	sweepMetric string
	perturb     map[string]string
	trials      int
	seed        int64

	fitParams []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "echemsim",
		Short:         "electrochemical voltammetry and chronoamperometry simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			log, err = logging.New(logLevel, logFormat, os.Stderr)
			return err
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".echemsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	simFlags(runCmd.Flags())
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "print the trace after the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotFlags(plotCmd.Flags())
	plotCmd.Flags().IntVar(&profile, "profile", -1, "also plot concentration profiles at this sample")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "simulate and replay the trace as it is recorded",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	simFlags(liveCmd.Flags())
	plotFlags(liveCmd.Flags())
	liveCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	exportJSONCmd.Flags().BoolVar(&grids, "grids", false, "include concentration grids")

	exportPlotCmd := &cobra.Command{
		Use:   "export-plot [run_id]",
		Short: "render a run to an image (png, svg, pdf)",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPlot,
	}
	plotFlags(exportPlotCmd.Flags())
	exportPlotCmd.Flags().StringVarP(&output, "output", "o", "", "output image file")
	_ = exportPlotCmd.MarkFlagRequired("output")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-18s %s %s\n", name, cfg.Technique, cfg.Mechanism)
			}
			return nil
		},
	}

	mechanismsCmd := &cobra.Command{
		Use:   "mechanisms",
		Short: "list mechanisms and techniques",
		Args:  cobra.NoArgs,
		RunE:  listMechanisms,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter and tabulate metrics",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	simFlags(sweepCmd.Flags())
	sweepCmd.Flags().StringVar(&sweepParam, "param", "sweep.scan_rate", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.01, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().BoolVar(&sweepLog, "log", false, "space values geometrically")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "", "metric to plot against the parameter")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = GOMAXPROCS)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb parameters at random and summarize metric spread",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	simFlags(monteCarloCmd.Flags())
	monteCarloCmd.Flags().StringToStringVar(&perturb, "perturb", map[string]string{"kinetics.rate_constant": "0.1"}, "relative half-widths, name=fraction")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	monteCarloCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = GOMAXPROCS)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = GOMAXPROCS)")

	compareCmd := &cobra.Command{
		Use:   "compare [run_id]",
		Short: "compare a saved run with a measured trace",
		Args:  cobra.ExactArgs(1),
		RunE:  compareRun,
	}
	compareCmd.Flags().StringVar(&refFile, "ref", "", "reference data file")
	compareCmd.Flags().StringVar(&axis, "axis", "potential", "matching axis (potential, time)")
	_ = compareCmd.MarkFlagRequired("ref")

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "grid-search parameters against a measured trace",
		Args:  cobra.NoArgs,
		RunE:  runFit,
	}
	simFlags(fitCmd.Flags())
	fitCmd.Flags().StringVar(&refFile, "ref", "", "reference data file")
	fitCmd.Flags().StringVar(&axis, "axis", "potential", "matching axis (potential, time)")
	fitCmd.Flags().StringArrayVar(&fitParams, "vary", nil, "parameter range, name=min:max:steps (repeatable)")
	fitCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = GOMAXPROCS)")
	_ = fitCmd.MarkFlagRequired("ref")
	_ = fitCmd.MarkFlagRequired("vary")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the simulator over HTTP",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().StringSlice("cors-origins", nil, "allowed CORS origins (default any)")
	serveCmd.Flags().Bool("save-runs", false, "store runs requested with save=true")
	serveCmd.Flags().Bool("release", false, "run gin in release mode")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, liveCmd, exportCSVCmd, exportJSONCmd, exportPlotCmd,
		presetsCmd, mechanismsCmd, sweepCmd, monteCarloCmd, scenarioCmd, compareCmd, fitCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func simFlags(fs *pflag.FlagSet) {
	fs.StringVar(&configFile, "config", "", "config file path (yaml)")
	fs.StringVar(&preset, "preset", "", "start from a preset")
	fs.StringVar(&technique, "technique", "sweep", "sweep or step")
	fs.StringVar(&mechanism, "mechanism", "E", "E, EC, ECE, CE or ECat")
	fs.Float64Var(&scanRate, "scan-rate", config.DefaultScanRate, "scan rate (V/s)")
	fs.Float64Var(&k0, "k0", config.DefaultRateConstant, "standard rate constant (cm/s)")
	fs.Float64Var(&alpha, "alpha", config.DefaultAlpha, "transfer coefficient")
	fs.Float64Var(&kf, "kf", 0, "forward chemical rate (1/s)")
	fs.Float64Var(&kr, "kr", 0, "reverse chemical rate (1/s)")
	fs.StringArrayVar(&overrides, "set", nil, "override any parameter, name=value (repeatable)")
}

func plotFlags(fs *pflag.FlagSet) {
	fs.StringVar(&plotMode, "mode", "", "plot mode (i-E, i-t, E-t, E-i); default follows the technique")
	fs.IntVar(&width, "width", 70, "plot width")
	fs.IntVar(&height, "height", 16, "plot height")
	fs.StringVar(&refFile, "ref", "", "overlay a measured trace")
}

// buildConfig layers preset, config file, flags and --set overrides, in
// that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("technique") {
		cfg.Technique = technique
	}
	if flags.Changed("mechanism") {
		cfg.Mechanism = mechanism
	}
	if flags.Changed("scan-rate") {
		cfg.Sweep.ScanRate = scanRate
	}
	if flags.Changed("k0") {
		cfg.Kinetics.RateConstant = k0
	}
	if flags.Changed("alpha") {
		cfg.Kinetics.Alpha = alpha
	}
	if flags.Changed("kf") {
		cfg.Chemistry.Forward = kf
	}
	if flags.Changed("kr") {
		cfg.Chemistry.Reverse = kr
	}

	for _, kv := range overrides {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, want name=value", kv)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", kv, err)
		}
		if err := cfg.Set(name, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func mode(tech string) (viz.Mode, error) {
	if plotMode != "" {
		return viz.ParseMode(plotMode)
	}
	t, err := echem.ParseTechnique(tech)
	if err != nil {
		return 0, err
	}
	return viz.DefaultMode(t), nil
}

// reference loads --ref as an overlay when the mode plots current against
// the reference's own axis.
func reference(m viz.Mode) (*refdata.Trace, *viz.Overlay, error) {
	if refFile == "" {
		return nil, nil, nil
	}
	ref, err := refdata.Load(refFile)
	if err != nil {
		return nil, nil, err
	}
	if m != viz.CurrentVsPotential && m != viz.CurrentVsTime {
		return ref, nil, nil
	}
	return ref, &viz.Overlay{X: ref.X, Y: ref.Y}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s %s simulation...\n", cfg.Mechanism, cfg.Technique)
	out, err := experiment.New(cfg, log).Run(ctx)
	if err != nil {
		return err
	}
	res := out.Result

	fmt.Printf("completed in %v\n", out.Elapsed)
	if !noSave {
		st, err := openStore()
		if err != nil {
			return err
		}
		runID, err := st.Save(cfg, res, out.Metrics)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("samples: %d  dt: %.4g s  dx: %.4g cm  lambda: %.4f\n",
		res.Len(), res.Grid.TimeStep, res.Grid.SpaceStep, res.Grid.Lambda[0])
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	fmt.Println("\nmetrics:")
	fmt.Print(indent(viz.MetricTable(out.Metrics)))

	if showPlot {
		m, err := mode(cfg.Technique)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Print(viz.RenderResult(res, m, width, height, nil))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMECH\tTECHNIQUE\tTIME\tSAMPLES\tLAMBDA")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.4f\n",
			run.ID,
			run.Mechanism,
			run.Technique,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Samples,
			run.Lambda,
		)
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
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(tr.Time) == 0 {
		return fmt.Errorf("no data to plot")
	}

	m, err := mode(meta.Technique)
	if err != nil {
		return err
	}
	_, overlay, err := reference(m)
	if err != nil {
		return err
	}

	current := make([]float64, len(tr.Current))
	for i, v := range tr.Current {
		current[i] = v * viz.MicroAmps
	}
	var x, y []float64
	var xl, yl string
	switch m {
	case viz.CurrentVsTime:
		x, y, xl, yl = tr.Time, current, "t / s", "i / µA"
	case viz.PotentialVsTime:
		x, y, xl, yl = tr.Time, tr.Potential, "t / s", "E / V"
	case viz.PotentialVsCurrent:
		x, y, xl, yl = current, tr.Potential, "i / µA", "E / V"
	default:
		x, y, xl, yl = tr.Potential, current, "E / V", "i / µA"
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("mechanism: %s  technique: %s  samples: %d\n\n", meta.Mechanism, meta.Technique, len(tr.Time))
	fmt.Print(viz.RenderXY(x, y, xl, yl, width, height, overlay))

	if profile < 0 {
		return nil
	}
	res, err := st.Rerun(runID)
	if err != nil {
		return err
	}
	out, err := viz.RenderProfile(res, profile, width, height/2)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(out)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	m, err := mode(cfg.Technique)
	if err != nil {
		return err
	}
	_, overlay, err := reference(m)
	if err != nil {
		return err
	}

	out, err := experiment.New(cfg, log).Run(context.Background())
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s %s", out.Result.Mechanism, out.Result.Technique)
	player := viz.NewPlayer(out.Result, title).
		WithMode(m).
		WithTheme(viz.GetTheme(theme)).
		WithReference(overlay)

	p := tea.NewProgram(player, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// loadRun recomputes a saved run from its stored config.
func loadRun(runID string) (*experiment.Outcome, error) {
	cfg, err := storage.New(dataDir).LoadConfig(runID)
	if err != nil {
		return nil, err
	}
	return experiment.New(cfg, log).Run(context.Background())
}

func outputFile() (*os.File, func() error, error) {
	if output == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(output)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	out, err := loadRun(args[0])
	if err != nil {
		return err
	}
	f, closeFn, err := outputFile()
	if err != nil {
		return err
	}
	if err := export.WriteTraceCSV(f, out.Result); err != nil {
		closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	if output != "" {
		fmt.Printf("exported %d samples to %s\n", out.Result.Len(), output)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	out, err := loadRun(args[0])
	if err != nil {
		return err
	}
	f, closeFn, err := outputFile()
	if err != nil {
		return err
	}
	if err := export.WriteJSON(f, out.Result, out.Metrics, grids); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportPlot(cmd *cobra.Command, args []string) error {
	out, err := loadRun(args[0])
	if err != nil {
		return err
	}
	m, err := mode(out.Config.Technique)
	if err != nil {
		return err
	}
	_, overlay, err := reference(m)
	if err != nil {
		return err
	}
	if err := export.SavePlot(output, out.Result, m, overlay); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", output)
	return nil
}

func listMechanisms(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MECHANISM\tSTATUS\tDESCRIPTION")
	for _, e := range registry.ListMechanisms() {
		status := "ok"
		if !e.Implemented {
			status = "fallback"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, status, e.Description)
	}
	fmt.Fprintln(w, "\nTECHNIQUE\t\tDESCRIPTION")
	for _, e := range registry.ListTechniques() {
		fmt.Fprintf(w, "%s\t\t%s\n", e.Name, e.Description)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	sw := &automation.ParameterSweep{
		Base:  cfg,
		Param: sweepParam,
		Min:   sweepMin,
		Max:   sweepMax,
		Steps: sweepSteps,
		Log:   sweepLog,
	}
	results, err := automation.RunSweep(ctx, sw, automation.Options{Parallel: parallel, Log: log})
	if err != nil {
		return err
	}

	names := metricNames(results)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(sweepParam), strings.ToUpper(strings.Join(names, "\t")))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g", r.Value)
		if r.Err != nil {
			fmt.Fprintf(w, "\tfailed: %v\n", r.Err)
			continue
		}
		for _, n := range names {
			fmt.Fprintf(w, "\t%.4g", r.Metrics[n])
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if sweepMetric != "" {
		col := automation.Column(results, sweepMetric)
		fmt.Println()
		fmt.Println(viz.RenderTrace(col, sweepMetric+" vs "+sweepParam, width, height/2))
	}
	return nil
}

func metricNames(results []automation.SweepResult) []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range results {
		for k := range r.Metrics {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	rel := make(map[string]float64, len(perturb))
	for k, raw := range perturb {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid --perturb %s=%s: %w", k, raw, err)
		}
		rel[k] = v
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:      cfg,
		Perturb:   rel,
		NumTrials: trials,
		Seed:      seed,
	}, automation.Options{Parallel: parallel, Log: log})
	if err != nil {
		return err
	}

	fmt.Printf("trials: %d  failed: %d\n\n", res.Trials, res.Failed)
	names := make([]string, 0, len(res.Stats))
	for k := range res.Stats {
		names = append(names, k)
	}
	sort.Strings(names)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, n := range names {
		s := res.Stats[n]
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\n", n, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s (%d steps)\n", sc.Name, len(sc.Steps))
	results, err := automation.RunScenario(ctx, sc, automation.Options{Parallel: parallel, Log: log, Store: st})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMECH\tTECHNIQUE\tRUN ID\tELAPSED")
	for _, r := range results {
		res := r.Outcome.Result
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", r.Step, res.Mechanism, res.Technique, r.RunID, r.Outcome.Elapsed)
	}
	return w.Flush()
}

func compareRun(cmd *cobra.Command, args []string) error {
	ax, err := analysis.ParseAxis(axis)
	if err != nil {
		return err
	}
	ref, err := refdata.Load(refFile)
	if err != nil {
		return err
	}
	out, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fit, err := analysis.Compare(out.Result, ref, ax)
	if err != nil {
		return err
	}
	fmt.Printf("reference: %s (%d points)\n", ref.Name, ref.Len())
	fmt.Printf("matched: %d  skipped: %d\n", fit.Points, fit.Skipped)
	fmt.Printf("rmse: %.4g µA  max |residual|: %.4g µA\n", fit.RMSE*viz.MicroAmps, fit.MaxAbs*viz.MicroAmps)

	if out.Result.Technique == echem.Sweep {
		s := metrics.Summarize(out.Result)
		fmt.Printf("simulated peaks: %.4g µA at %.4f V, %.4g µA at %.4f V\n",
			s.CathodicCurrent*viz.MicroAmps, s.CathodicPotential,
			s.AnodicCurrent*viz.MicroAmps, s.AnodicPotential)
	}
	return nil
}

func parseRange(arg string) (string, []float64, error) {
	name, rng, ok := strings.Cut(arg, "=")
	if !ok {
		return "", nil, fmt.Errorf("invalid --vary %q, want name=min:max:steps", arg)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("invalid --vary %q, want name=min:max:steps", arg)
	}
	lo, err1 := strconv.ParseFloat(parts[0], 64)
	hi, err2 := strconv.ParseFloat(parts[1], 64)
	n, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || n < 1 {
		return "", nil, fmt.Errorf("invalid --vary %q", arg)
	}
	if n == 1 {
		return name, []float64{lo}, nil
	}
	return name, floats.Span(make([]float64, n), lo, hi), nil
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ax, err := analysis.ParseAxis(axis)
	if err != nil {
		return err
	}
	ref, err := refdata.Load(refFile)
	if err != nil {
		return err
	}

	var names []string
	var ranges [][]float64
	for _, arg := range fitParams {
		name, values, err := parseRange(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	ctx, cancel := signalContext()
	defer cancel()

	best, err := optim.NewGridSearch(names, ranges).
		WithParallel(parallel).
		Search(ctx, cfg, optim.MatchReference(ref, ax))
	if err != nil {
		return err
	}

	fmt.Printf("evaluated: %d  failed: %d\n", best.Evaluated, best.Failed)
	fmt.Printf("best rmse: %.4g µA\n", best.Score*viz.MicroAmps)
	for _, n := range names {
		fmt.Printf("  %s = %.6g\n", n, best.Params[n])
	}
	return nil
}

// serve reads its settings through viper so each flag can also come from
// an ECHEMSIM_ environment variable, e.g. ECHEMSIM_ADDR.
func serve(cmd *cobra.Command, args []string) error {
	v := viper.New()
	v.SetEnvPrefix("echemsim")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	opts := api.Options{
		Log:            log,
		AllowedOrigins: v.GetStringSlice("cors-origins"),
		Release:        v.GetBool("release"),
	}
	if v.GetBool("save-runs") {
		st, err := openStore()
		if err != nil {
			return err
		}
		opts.Store = st
	}

	ctx, cancel := signalContext()
	defer cancel()
	return api.New(opts).ListenAndServe(ctx, v.GetString("addr"))
}

func indent(s string) string {
	if s == "" {
		return s
	}
	return "  " + strings.ReplaceAll(strings.TrimSuffix(s, "\n"), "\n", "\n  ") + "\n"
}
