package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/chaoscrypt/internal/analysis"
	"github.com/san-kum/chaoscrypt/internal/automation"
	"github.com/san-kum/chaoscrypt/internal/config"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/imageio"
	"github.com/san-kum/chaoscrypt/internal/logging"
	"github.com/san-kum/chaoscrypt/internal/metrics"
	"github.com/san-kum/chaoscrypt/internal/optim"
	"github.com/san-kum/chaoscrypt/internal/pipeline"
	"github.com/san-kum/chaoscrypt/internal/seed"
	"github.com/san-kum/chaoscrypt/internal/sim"
	"github.com/san-kum/chaoscrypt/internal/storage"
	"github.com/san-kum/chaoscrypt/internal/systems"
	"github.com/san-kum/chaoscrypt/internal/telemetry"
	"github.com/san-kum/chaoscrypt/internal/viz"
)

var (
	configFile  string
	preset      string
	dataDir     string
	logLevel    string
	logFormat   string
	metricsFile string
	themeName   string

	seedValue  string
	rounds     int
	save       bool
	jsonOut    bool
	bitLags    int
	histograms bool
	useDefault bool
	crossCheck bool

	systemName string
	steps      int
	stride     int
	transient  int
	xAxis      int
	yAxis      int
	csvOut     bool

	param      string
	paramMin   float64
	paramMax   float64
	points     int
	coordinate int

	svgPath    string
	initState  []float64
	scanParams []string
	scanSteps  int
)

// app is the state shared by every command after flags are resolved.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	telemetry *telemetry.Metrics
	pipeline  *pipeline.Pipeline
	styles    viz.Styles
}

var current *app

func main() {
	rootCmd := &cobra.Command{
		Use:           "chaoscrypt",
		Short:         "hyperchaotic image cipher and chaos analysis toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			current = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if current == nil || current.cfg.Metrics.File == "" {
				return nil
			}
			return current.telemetry.WriteTextfile(current.cfg.Metrics.File)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "named configuration preset")
	pf.StringVar(&dataDir, "data", "", "run storage directory")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "log format (text, json)")
	pf.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	pf.StringVar(&themeName, "theme", "cyberpunk", "output theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	deriveCmd := &cobra.Command{
		Use:   "derive",
		Short: "derive keys and s-boxes from a seed",
		RunE:  runDerive,
	}
	deriveCmd.Flags().StringVar(&seedValue, "seed", "", "secret seed")
	deriveCmd.Flags().BoolVar(&save, "save", false, "persist the run and its trajectories")
	deriveCmd.Flags().IntVar(&bitLags, "bit-lags", 0, "report bitstream quality up to this autocorrelation lag")
	deriveCmd.Flags().BoolVar(&jsonOut, "json", false, "print the derivation as JSON")

	encryptCmd := &cobra.Command{
		Use:   "encrypt [input.png] [output.png]",
		Short: "encrypt an image",
		Args:  cobra.ExactArgs(2),
		RunE:  runEncrypt,
	}
	decryptCmd := &cobra.Command{
		Use:   "decrypt [input.png] [output.png]",
		Short: "decrypt an image",
		Args:  cobra.ExactArgs(2),
		RunE:  runDecrypt,
	}
	for _, c := range []*cobra.Command{encryptCmd, decryptCmd} {
		c.Flags().StringVar(&seedValue, "seed", "", "secret seed")
		c.Flags().IntVar(&rounds, "rounds", 0, "cipher rounds (default from config)")
	}

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the Lyapunov spectra of the seeded systems",
		RunE:  runLyapunov,
	}
	lyapunovCmd.Flags().StringVar(&seedValue, "seed", "", "secret seed")
	lyapunovCmd.Flags().BoolVar(&useDefault, "defaults", false, "use the default systems instead of a seed")
	lyapunovCmd.Flags().BoolVar(&save, "save", false, "persist the spectra")
	lyapunovCmd.Flags().BoolVar(&jsonOut, "json", false, "print spectra as JSON")
	lyapunovCmd.Flags().BoolVar(&crossCheck, "cross-check", false, "also estimate lambda1 by trajectory separation")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [input.png]",
		Short: "encrypt, decrypt and report image statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringVar(&seedValue, "seed", "", "secret seed")
	analyzeCmd.Flags().IntVar(&rounds, "rounds", 0, "cipher rounds (default from config)")
	analyzeCmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")
	analyzeCmd.Flags().BoolVar(&histograms, "histograms", false, "plot channel histograms")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "integrate one system and plot it",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().StringVar(&systemName, "system", "lorenz", "system (rossler, chen, lorenz)")
	simulateCmd.Flags().StringVar(&seedValue, "seed", "", "seed (default parameters when empty)")
	simulateCmd.Flags().IntVar(&steps, "steps", 20000, "integration steps")
	simulateCmd.Flags().IntVar(&stride, "stride", 10, "record every n-th step")
	simulateCmd.Flags().IntVar(&transient, "transient", 0, "discarded steps")
	simulateCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for the phase portrait x-axis")
	simulateCmd.Flags().IntVar(&yAxis, "y-axis", 2, "state index for the phase portrait y-axis")
	simulateCmd.Flags().BoolVar(&csvOut, "csv", false, "write samples as CSV to stdout")
	simulateCmd.Flags().BoolVar(&jsonOut, "json", false, "write samples as JSON to stdout")
	simulateCmd.Flags().StringVar(&svgPath, "svg", "", "also write the phase portrait as SVG")
	simulateCmd.Flags().Float64SliceVar(&initState, "init", nil, "override the initial state (four comma-separated values)")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "sweep one parameter and plot local maxima",
		RunE:  runBifurcation,
	}
	bifurcationCmd.Flags().StringVar(&systemName, "system", "lorenz", "system (rossler, chen, lorenz)")
	bifurcationCmd.Flags().StringVar(&param, "param", "r", "parameter to sweep")
	bifurcationCmd.Flags().Float64Var(&paramMin, "min", 27, "sweep start")
	bifurcationCmd.Flags().Float64Var(&paramMax, "max", 29, "sweep end")
	bifurcationCmd.Flags().IntVar(&points, "points", 40, "parameter values")
	bifurcationCmd.Flags().IntVar(&coordinate, "coord", 0, "observed state component")
	bifurcationCmd.Flags().IntVar(&steps, "steps", 20000, "steps per parameter value")
	bifurcationCmd.Flags().IntVar(&transient, "transient", 5000, "discarded steps per parameter value")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "grid-search parameters for the strongest hyperchaos",
		Long: "scan evaluates the second Lyapunov exponent over a parameter grid.\n" +
			"Each --param takes name=min:max:points, e.g. --param a=34.5:35.5:5.",
		RunE: runScan,
	}
	scanCmd.Flags().StringVar(&systemName, "system", "chen", "system (rossler, chen, lorenz)")
	scanCmd.Flags().StringVar(&seedValue, "seed", "", "seed for the base system (default parameters when empty)")
	scanCmd.Flags().StringArrayVar(&scanParams, "param", nil, "parameter grid name=min:max:points (repeatable)")
	scanCmd.Flags().IntVar(&scanSteps, "steps", 20000, "Lyapunov steps per grid point")
	scanCmd.Flags().BoolVar(&jsonOut, "json", false, "print every evaluation as JSON")

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "print step results as JSON")

	runsCmd := &cobra.Command{
		Use:   "runs [run_id]",
		Short: "list saved runs, or plot one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRuns,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPresets,
	}

	rootCmd.AddCommand(deriveCmd, encryptCmd, decryptCmd, lyapunovCmd, analyzeCmd, simulateCmd, bifurcationCmd, scanCmd, runCmd, runsCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// setup resolves preset, config file and flag overrides, in that order.
func setup(cmd *cobra.Command) (*app, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
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

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if metricsFile != "" {
		cfg.Metrics.File = metricsFile
	}
	if dataDir != "" {
		cfg.Storage.Dir = dataDir
	}
	if f := cmd.Flags().Lookup("rounds"); f != nil && f.Changed {
		cfg.Cipher.Rounds = rounds
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	tm := telemetry.NewMetrics()
	p, err := pipeline.New(cfg, pipeline.WithLogger(logger), pipeline.WithTelemetry(tm))
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		telemetry: tm,
		pipeline:  p,
		styles:    viz.NewStyles(viz.GetTheme(themeName)),
	}, nil
}

func requireSeed() (string, error) {
	if seedValue != "" {
		return seedValue, nil
	}
	if s := os.Getenv("CHAOSCRYPT_SEED"); s != "" {
		return s, nil
	}
	return "", fmt.Errorf("%w: --seed or CHAOSCRYPT_SEED is required", dynamo.ErrInvalidInput)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runDerive(cmd *cobra.Command, args []string) error {
	a := current
	s, err := requireSeed()
	if err != nil {
		return err
	}

	start := time.Now()
	d, err := a.pipeline.Derive(cmd.Context(), s)
	if err != nil {
		return err
	}
	m := d.Material

	var quality []analysis.BitQuality
	if bitLags > 0 {
		for _, kind := range systems.Kinds {
			quality = append(quality, analysis.AnalyzeBits(m.Bitstreams[kind], bitLags))
		}
	}

	var runID string
	if save {
		st := storage.New(a.cfg.Storage.Dir)
		if err := st.Init(); err != nil {
			return err
		}
		if runID, err = st.Save(a.pipeline.RunMetadata("derive", d, nil), d.Trajectories()); err != nil {
			return err
		}
	}

	if jsonOut {
		out := struct {
			RunID       string                `json:"run_id,omitempty"`
			Fingerprint string                `json:"fingerprint"`
			Systems     []systems.Info        `json:"systems"`
			Attempts    [systems.Count]int    `json:"attempts"`
			Keys        []string              `json:"keys"`
			BitQuality  []analysis.BitQuality `json:"bit_quality,omitempty"`
		}{RunID: runID, Fingerprint: m.FingerprintHex(), Attempts: d.Expansion.Attempts, BitQuality: quality}
		for _, kind := range systems.Kinds {
			out.Systems = append(out.Systems, m.Specs[kind].Info())
			out.Keys = append(out.Keys, m.Keys[kind].String())
		}
		return printJSON(out)
	}

	st := a.styles
	fmt.Println(st.Title.Render("systems"))
	fmt.Println(st.RenderSpecs(m.Specs))
	fmt.Println(st.RenderMaterial(m))
	for i, q := range quality {
		fmt.Println(st.Subtle.Render(viz.Separator(60)))
		fmt.Print(st.RenderBitQuality(systems.Kinds[i].Label(), q))
	}
	fmt.Println(st.KeyValue("elapsed", time.Since(start).Round(time.Millisecond).String()))
	if runID != "" {
		fmt.Println(st.KeyValue("run id", runID))
	}
	return nil
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	return transform(cmd, args[0], args[1], true)
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	return transform(cmd, args[0], args[1], false)
}

func transform(cmd *cobra.Command, in, out string, encrypt bool) error {
	a := current
	s, err := requireSeed()
	if err != nil {
		return err
	}
	px, shape, err := imageio.ReadPNG(in)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	m, err := a.pipeline.DeriveMaterial(ctx, s)
	if err != nil {
		return err
	}

	var res []byte
	if encrypt {
		res, err = a.pipeline.EncryptImage(ctx, px, shape, a.cfg.Cipher.Rounds, m)
	} else {
		res, err = a.pipeline.DecryptImage(ctx, px, shape, a.cfg.Cipher.Rounds, m)
	}
	if err != nil {
		return err
	}
	if err := imageio.WritePNG(out, res, shape); err != nil {
		return err
	}

	verb := "decrypted"
	if encrypt {
		verb = "encrypted"
	}
	fmt.Printf("%s %s -> %s (%s, %d rounds)\n", verb, in, out, shape, a.cfg.Cipher.Rounds)
	return nil
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	a := current
	ctx := cmd.Context()

	specs := systems.Defaults()
	if !useDefault {
		s, err := requireSeed()
		if err != nil {
			return err
		}
		exp, err := seed.ExpandContext(ctx, s, a.cfg.SeedOptions())
		if err != nil {
			return err
		}
		specs = exp.Specs
	}

	spectra, err := a.pipeline.ComputeLyapunov(ctx, specs)
	if err != nil {
		return err
	}
	var separation [systems.Count]float64
	if crossCheck {
		if separation, err = a.pipeline.CrossCheckLyapunov(ctx, specs); err != nil {
			return err
		}
	}

	var runID string
	if save {
		st := storage.New(a.cfg.Storage.Dir)
		if err := st.Init(); err != nil {
			return err
		}
		meta := storage.RunMetadata{Command: "lyapunov", Sim: a.cfg.MaterialSim(), Spectra: spectra[:]}
		for _, spec := range specs {
			meta.Systems = append(meta.Systems, spec.Info())
		}
		if runID, err = st.Save(meta, nil); err != nil {
			return err
		}
	}

	if jsonOut {
		if !crossCheck {
			return printJSON(spectra)
		}
		return printJSON(struct {
			Spectra    [systems.Count]analysis.Spectrum `json:"spectra"`
			Separation [systems.Count]float64           `json:"separation_lambda1"`
		}{spectra, separation})
	}
	fmt.Println(a.styles.Title.Render("lyapunov spectra"))
	fmt.Println(a.styles.RenderSpectra(spectra[:]))
	if crossCheck {
		for i, sp := range spectra {
			fmt.Println(a.styles.KeyValue(sp.System+" λ1", fmt.Sprintf("%+.4f benettin  %+.4f separation  (Δ %.4f)",
				sp.Sorted[0], separation[i], math.Abs(sp.Sorted[0]-separation[i]))))
		}
	}
	lc := a.cfg.Lyapunov
	fmt.Println(a.styles.Subtle.Render(fmt.Sprintf("dt=%g steps=%d transient=%d reortho=%d", lc.Dt, lc.Steps, lc.TransientSteps, lc.ReorthoInterval)))
	if runID != "" {
		fmt.Println(a.styles.KeyValue("run id", runID))
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a := current
	s, err := requireSeed()
	if err != nil {
		return err
	}
	px, shape, err := imageio.ReadPNG(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	m, err := a.pipeline.DeriveMaterial(ctx, s)
	if err != nil {
		return err
	}
	n := a.cfg.Cipher.Rounds
	enc, err := a.pipeline.EncryptImage(ctx, px, shape, n, m)
	if err != nil {
		return err
	}
	dec, err := a.pipeline.DecryptImage(ctx, enc, shape, n, m)
	if err != nil {
		return err
	}
	report, err := a.pipeline.Analyze(ctx, px, enc, dec, shape, n, m)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(report)
	}
	fmt.Println(a.styles.RenderReport(report))
	if histograms {
		for c := range report.Original.Histograms {
			fmt.Println(viz.PlotHistogram(report.Original.Histograms[c], fmt.Sprintf("original channel %d", c), 8))
			fmt.Println(viz.PlotHistogram(report.Encrypted.Histograms[c], fmt.Sprintf("encrypted channel %d", c), 8))
		}
	}
	return nil
}

func resolveSpec() (systems.Spec, error) {
	kind, err := systems.ParseKind(systemName)
	if err != nil {
		return systems.Spec{}, err
	}
	if seedValue == "" {
		return systems.Default(kind), nil
	}
	exp, err := seed.ExpandContext(context.Background(), seedValue, current.cfg.SeedOptions())
	if err != nil {
		return systems.Spec{}, err
	}
	return exp.Specs[kind], nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	a := current
	if xAxis < 0 || xAxis >= dynamo.Dim || yAxis < 0 || yAxis >= dynamo.Dim {
		return fmt.Errorf("%w: phase axes must be in [0,%d)", dynamo.ErrInvalidInput, dynamo.Dim)
	}
	spec, err := resolveSpec()
	if err != nil {
		return err
	}
	if len(initState) > 0 {
		if len(initState) != dynamo.Dim {
			return fmt.Errorf("%w: --init needs %d values, got %d", dynamo.ErrInvalidInput, dynamo.Dim, len(initState))
		}
		if spec, err = spec.WithInit([dynamo.Dim]float64(initState)); err != nil {
			return err
		}
	}

	s := sim.New()
	for _, m := range metrics.Standard(a.cfg.Screen.Bound) {
		s.AddMetric(m)
	}
	cfg := dynamo.Config{Dt: a.cfg.Material.Dt, Steps: steps, TransientSteps: transient, SampleEvery: stride}
	res, err := s.Run(cmd.Context(), spec, cfg)
	if err != nil {
		return err
	}
	traj := res.Trajectory

	switch {
	case csvOut:
		w := csv.NewWriter(os.Stdout)
		if err := storage.WriteTrajectoryCSV(w, traj); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	case jsonOut:
		return storage.ExportJSON(os.Stdout, traj)
	}

	st := a.styles
	fmt.Println(st.Title.Render(spec.Kind().Label()))
	fmt.Println(st.KeyValue("samples", fmt.Sprint(traj.Len())) + "  " + st.KeyValue("elapsed", res.Elapsed.Round(time.Millisecond).String()))
	for _, name := range slices.Sorted(maps.Keys(res.Metrics)) {
		fmt.Println(st.KeyValue(name, fmt.Sprintf("%.6f", res.Metrics[name])))
	}
	fmt.Println()
	for i := 0; i < dynamo.Dim; i++ {
		fmt.Println(viz.PlotSeries(traj.Component(i), fmt.Sprintf("x%d vs time", i), 8, 80))
		fmt.Println()
	}
	fmt.Println(st.Panel.Render(viz.PhasePortrait(traj, xAxis, yAxis, 60, 20)))
	fmt.Println(st.Subtle.Render(fmt.Sprintf("phase portrait x%d vs x%d", yAxis, xAxis)))

	if svgPath != "" {
		f, err := os.Create(svgPath)
		if err != nil {
			return err
		}
		if err := viz.WriteTrajectorySVG(f, traj, xAxis, yAxis, 800, 600, string(viz.GetTheme(themeName).Primary)); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Println(st.KeyValue("svg", svgPath))
	}
	return nil
}

// parseGrid parses name=min:max:points.
func parseGrid(s string) (string, []float64, error) {
	name, rng, ok := strings.Cut(s, "=")
	parts := strings.Split(rng, ":")
	if !ok || name == "" || len(parts) != 3 {
		return "", nil, fmt.Errorf("%w: bad grid %q, want name=min:max:points", dynamo.ErrInvalidInput, s)
	}
	lo, err1 := strconv.ParseFloat(parts[0], 64)
	hi, err2 := strconv.ParseFloat(parts[1], 64)
	n, err3 := strconv.Atoi(parts[2])
	if err := errors.Join(err1, err2, err3); err != nil {
		return "", nil, fmt.Errorf("%w: bad grid %q: %w", dynamo.ErrInvalidInput, s, err)
	}
	if n < 1 || hi < lo {
		return "", nil, fmt.Errorf("%w: bad grid %q", dynamo.ErrInvalidInput, s)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func runScan(cmd *cobra.Command, args []string) error {
	a := current
	spec, err := resolveSpec()
	if err != nil {
		return err
	}
	if len(scanParams) == 0 {
		return fmt.Errorf("%w: at least one --param is required", dynamo.ErrInvalidInput)
	}

	names := make([]string, 0, len(scanParams))
	ranges := make([][]float64, 0, len(scanParams))
	for _, p := range scanParams {
		name, values, err := parseGrid(p)
		if err != nil {
			return err
		}
		if _, ok := spec.Param(name); !ok {
			return fmt.Errorf("%w: %s has no parameter %q (have %v)", dynamo.ErrInvalidInput, spec.Kind(), name, spec.Kind().ParamNames())
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	grid, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	lc := a.cfg.Lyapunov
	lc.Steps = scanSteps
	a.logger.Info("scanning", "system", spec.Kind().String(), "points", grid.Size(), "steps", lc.Steps)
	best, evals, err := grid.Search(cmd.Context(), optim.SecondExponent(spec, lc))
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(struct {
			Best        optim.Evaluation   `json:"best"`
			Evaluations []optim.Evaluation `json:"evaluations"`
		}{best, evals})
	}

	st := a.styles
	scores := make([]float64, 0, len(evals))
	for _, e := range evals {
		if e.Err == "" {
			scores = append(scores, e.Score)
		}
	}
	fmt.Println(st.Title.Render(fmt.Sprintf("%s: λ2 over %d grid points", spec.Kind().Label(), grid.Size())))
	fmt.Println(st.Label.Render("λ2 ") + viz.Sparkline(scores, min(len(scores), 80)))
	for _, name := range names {
		fmt.Println(st.KeyValue(name, fmt.Sprintf("%.6g", best.Params[name])))
	}
	fmt.Println(st.KeyValue("λ2", fmt.Sprintf("%+.4f", best.Score)) + "  " +
		st.Verdict(best.Score > 0, "hyperchaotic", "not hyperchaotic"))
	if failed := len(evals) - len(scores); failed > 0 {
		fmt.Println(st.Warn.Render(fmt.Sprintf("%d grid points diverged", failed)))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	a := current
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	store := storage.New(a.cfg.Storage.Dir)
	if err := store.Init(); err != nil {
		return err
	}

	results, err := automation.NewRunner(a.pipeline, store, a.logger).Run(cmd.Context(), sc)
	if jsonOut {
		if jerr := printJSON(results); jerr != nil {
			return jerr
		}
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tCOMMAND\tELAPSED\tRESULT")
	for _, r := range results {
		summary := r.Fingerprint
		switch {
		case r.Report != nil:
			summary = fmt.Sprintf("entropy %.3f -> %.3f", r.Report.Original.Entropy.Overall, r.Report.Encrypted.Entropy.Overall)
		case len(r.Spectra) > 0:
			hyper := 0
			for _, sp := range r.Spectra {
				if sp.Hyperchaotic {
					hyper++
				}
			}
			summary = fmt.Sprintf("%d/%d hyperchaotic", hyper, len(r.Spectra))
		case len(summary) > 16:
			summary = summary[:16]
		}
		if r.RunID != "" {
			summary += " run " + r.RunID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, r.Command, r.Elapsed.Round(time.Millisecond), summary)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runBifurcation(cmd *cobra.Command, args []string) error {
	a := current
	spec, err := resolveSpec()
	if err != nil {
		return err
	}

	cfg := analysis.BifurcationConfig{
		Param:      param,
		Min:        paramMin,
		Max:        paramMax,
		Points:     points,
		Coordinate: coordinate,
		Sim:        dynamo.Config{Dt: a.cfg.Material.Dt, Steps: steps, TransientSteps: transient, SampleEvery: 1},
	}
	data, err := analysis.Bifurcation(cmd.Context(), spec, cfg)
	if err != nil {
		return err
	}

	fmt.Println(a.styles.Title.Render(fmt.Sprintf("%s: %s in [%g, %g]", spec.Kind().Label(), param, paramMin, paramMax)))
	fmt.Println(analysis.BifurcationToASCII(data, 80, 24))
	return nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	a := current
	st := storage.New(a.cfg.Storage.Dir)

	if len(args) == 1 {
		return plotRun(st, args[0])
	}

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMMAND\tTIME\tFINGERPRINT\tFILES")
	for _, run := range runs {
		fp := run.Fingerprint
		if len(fp) > 16 {
			fp = fp[:16]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			run.ID,
			run.Command,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			fp,
			len(run.Files),
		)
	}
	return w.Flush()
}

func plotRun(st *storage.Store, runID string) error {
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	s := current.styles
	fmt.Println(s.KeyValue("run", meta.ID) + "  " + s.KeyValue("command", meta.Command))
	if len(meta.Spectra) > 0 {
		fmt.Println(s.RenderSpectra(meta.Spectra))
	}
	for _, info := range meta.Systems {
		states, _, err := st.LoadTrajectory(runID, info.Name)
		if err != nil {
			continue
		}
		data := make([]float64, len(states))
		for i, x := range states {
			data[i] = x[0]
		}
		fmt.Println(viz.PlotSeries(data, info.Label+" x0", 8, 80))
		fmt.Println()
	}
	return nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		return config.Write(os.Stdout, cfg)
	}

	fmt.Println("presets:")
	for _, p := range config.ListPresets() {
		cfg := config.GetPreset(p)
		fmt.Printf("  %-10s material steps=%d lyapunov steps=%d rounds=%d\n",
			p, cfg.Material.Steps, cfg.Lyapunov.Steps, cfg.Cipher.Rounds)
	}
	return nil
}
