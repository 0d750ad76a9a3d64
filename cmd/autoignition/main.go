package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/idtlab/autoignition/internal/config"
	"github.com/idtlab/autoignition/internal/detect"
	"github.com/idtlab/autoignition/internal/figure"
	"github.com/idtlab/autoignition/internal/store"
	"github.com/idtlab/autoignition/internal/sweep"
	"github.com/idtlab/autoignition/internal/tui"
	"github.com/idtlab/autoignition/internal/uncertainty"
)

var (
	dataDir    string
	configFile string
	preset     string
	label      string
	workers    int
	timeout    string
	live       bool
	dbPath     string
	// detect flags
	method  string
	channel string
	value   float64
	minRise float64
	topN    int
	sigmas  []string
	// plot flags
	pngPath  string
	htmlPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "autoignition",
		Short: "ignition delay sweeps with uncertainty propagation",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".autoignition", "data directory")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a condition sweep with the built-in mechanism",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	sweepCmd.Flags().StringVar(&label, "label", "sweep", "label for the stored run")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent integrations (0 = config value)")
	sweepCmd.Flags().StringVar(&timeout, "timeout", "", "per-condition timeout (0s disables)")
	sweepCmd.Flags().BoolVar(&live, "live", false, "live progress view")
	sweepCmd.Flags().StringVar(&dbPath, "db", "", "also archive into a sqlite database")

	detectCmd := &cobra.Command{
		Use:   "detect [series.csv]",
		Short: "extract ignition delay from a time series file",
		Args:  cobra.ExactArgs(1),
		RunE:  runDetect,
	}
	detectCmd.Flags().StringVar(&method, "method", "max-slope", "criterion: max-slope, threshold-crossing, peak")
	detectCmd.Flags().StringVar(&channel, "channel", "T", "channel to detect on")
	detectCmd.Flags().Float64Var(&value, "value", 0, "threshold value (threshold-crossing)")
	detectCmd.Flags().Float64Var(&minRise, "min-rise", 0, "minimum channel rise for ignition")
	detectCmd.Flags().IntVar(&topN, "top", 0, "rank the n most active channels")
	detectCmd.Flags().StringSliceVar(&sigmas, "sigma", nil, "parameter sigma as name=value (repeatable)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored sweeps",
		RunE:  listSweeps,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored sweep",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSweep,
	}
	plotCmd.Flags().StringVar(&pngPath, "png", "", "write an Arrhenius figure (PNG)")
	plotCmd.Flags().StringVar(&htmlPath, "html", "", "write an interactive chart (HTML)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export sweep metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSweep,
	}

	archiveCmd := &cobra.Command{
		Use:   "archive [run_id]",
		Short: "copy a stored sweep into a sqlite database",
		Args:  cobra.ExactArgs(1),
		RunE:  archiveSweep,
	}
	archiveCmd.Flags().StringVar(&dbPath, "db", "sweeps.db", "sqlite database path")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(sweepCmd, detectCmd, listCmd, plotCmd, exportCmd, archiveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
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
	if cmd.Flags().Changed("workers") {
		cfg.Sweep.Workers = workers
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Sweep.Timeout = timeout
	}
	return cfg, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	criterion, err := cfg.BuildCriterion()
	if err != nil {
		return err
	}
	model, err := cfg.BuildModel()
	if err != nil {
		return err
	}
	runner, err := cfg.BuildRunner()
	if err != nil {
		return err
	}
	integ := cfg.BuildIntegrator()
	conds := cfg.Conditions()

	fmt.Printf("sweeping %d conditions (%d workers)...\n", len(conds), runner.Workers)
	start := time.Now()

	var rs *sweep.ResultSet
	var runErr error
	if live {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		ch := make(chan sweep.Outcome, len(conds))
		runner.OnOutcome = func(i int, o sweep.Outcome) { ch <- o }
		done := make(chan struct{})
		go func() {
			rs, runErr = runner.Run(ctx, conds, criterion, model, integ)
			close(ch)
			close(done)
		}()
		prog := tea.NewProgram(tui.NewModel(label, len(conds), ch))
		if _, err := prog.Run(); err != nil {
			return err
		}
		// Quitting the view cancels whatever has not finished yet.
		cancel()
		<-done
	} else {
		rs, runErr = runner.Run(context.Background(), conds, criterion, model, integ)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if runErr != nil {
		fmt.Println("sweep canceled; keeping completed conditions")
	}
	elapsed := time.Since(start)

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(label, criterion.String(), rs)
	if err != nil {
		return err
	}

	tab := rs.Export()
	printSummary(tab, elapsed, runID)
	plotTerminal(tab)

	if dbPath != "" {
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		db, err := store.OpenDB(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.SaveSweep(*meta, tab); err != nil {
			return err
		}
		fmt.Printf("archived to %s\n", dbPath)
	}
	return nil
}

func printSummary(tab sweep.Table, elapsed time.Duration, runID string) {
	failures := 0
	for _, ok := range tab.OK {
		if !ok {
			failures++
		}
	}
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("conditions: %d (%d failed)\n", len(tab.OK), failures)
}

// plotTerminal draws log10 delay against the sweep order, which for the
// default grids is ascending temperature.
func plotTerminal(tab sweep.Table) {
	data := make([]float64, 0, len(tab.OK))
	for i := range tab.OK {
		if tab.OK[i] && tab.Delay[i] > 0 {
			data = append(data, math.Log10(tab.Delay[i]))
		}
	}
	if len(data) < 2 {
		return
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption("log10 ignition delay (s)"),
	))
}

func runDetect(cmd *cobra.Command, args []string) error {
	s, err := store.LoadSeriesCSV(args[0])
	if err != nil {
		return err
	}

	m, err := detect.ParseMethod(method)
	if err != nil {
		return err
	}
	criterion := detect.Criterion{Method: m, Channel: channel, Value: value}

	det := detect.NewDetector()
	det.MinRise = minRise
	res, err := det.Detect(s, criterion)
	if err != nil {
		return err
	}

	fmt.Printf("ignition delay: %.6g s\n", res.Time)
	fmt.Printf("anchor index: %d (window %d..%d)\n", res.Index, res.Window[0], res.Window[1])
	if res.Flag != "" {
		fmt.Printf("flag: %s\n", res.Flag)
	}

	if len(sigmas) > 0 {
		model, err := parseSigmas(sigmas)
		if err != nil {
			return err
		}
		est, err := uncertainty.NewPropagator().Propagate(s, res, model)
		if err != nil {
			return err
		}
		fmt.Printf("sigma: %.6g s (from %s)\n", est.Sigma, strings.Join(est.Params, ", "))
	}

	if topN > 0 {
		fmt.Println("\nmost active channels:")
		for i, name := range s.TopChannels(topN, "T", "P") {
			fmt.Printf("  %d. %s\n", i+1, name)
		}
	}
	return nil
}

func parseSigmas(pairs []string) (uncertainty.Model, error) {
	m := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, val, found := strings.Cut(pair, "=")
		if !found {
			return uncertainty.Model{}, fmt.Errorf("bad sigma %q, want name=value", pair)
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return uncertainty.Model{}, fmt.Errorf("bad sigma %q: %w", pair, err)
		}
		m[name] = v
	}
	return uncertainty.NewModel(m), nil
}

func listSweeps(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no sweeps found")
		return nil
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tCRITERION\tCONDS\tFAILED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			run.ID,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Criterion,
			run.Conditions,
			run.Failures,
		)
	}
	return w.Flush()
}

func plotSweep(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tab, err := st.LoadTable(runID)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s (%s)", meta.Label, meta.Criterion)
	if pngPath != "" {
		if err := figure.SavePNG(tab, title, pngPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pngPath)
	}
	if htmlPath != "" {
		if err := figure.SaveHTML(tab, title, htmlPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", htmlPath)
	}
	if pngPath == "" && htmlPath == "" {
		fmt.Printf("run: %s\ncriterion: %s\n", meta.ID, meta.Criterion)
		plotTerminal(tab)
	}
	return nil
}

func exportSweep(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func archiveSweep(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tab, err := st.LoadTable(args[0])
	if err != nil {
		return err
	}
	db, err := store.OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.SaveSweep(*meta, tab); err != nil {
		return err
	}
	fmt.Printf("archived %s to %s\n", meta.ID, dbPath)
	return nil
}
