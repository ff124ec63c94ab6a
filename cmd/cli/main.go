package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"transitvet/adapters/excel"
	"transitvet/domain/core"
	"transitvet/domain/lightcurve"
	"transitvet/domain/tce"
	"transitvet/domain/vet"
	"transitvet/internal/config"
	"transitvet/internal/report"
	"transitvet/internal/testkit"
	"transitvet/ports"
	"transitvet/vetters"
)

func main() {
	// Flags override env config, env config overrides built-in defaults
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env")
	}

	rootCmd := &cobra.Command{
		Use:   "transitvet",
		Short: "Transit candidate vetting against sinusoidal false positives",
	}

	rootCmd.AddCommand(
		newVetCmd(),
		newBatchCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// sweetFlags are the tuning knobs shared by every subcommand
type sweetFlags struct {
	threshold     float64
	numDurations  float64
	detrendWindow int
}

func (f *sweetFlags) register(cmd *cobra.Command) {
	defaults := defaultVetting()
	cmd.Flags().Float64Var(&f.threshold, "threshold", defaults.ThresholdSigma, "Amplitude-to-uncertainty ratio that flags a trial period")
	cmd.Flags().Float64Var(&f.numDurations, "num-durations", defaults.NumDurations, "Transit mask width in transit durations")
	cmd.Flags().IntVar(&f.detrendWindow, "detrend-window", defaults.DetrendWindow, "Median detrend half window in cadences, 0 disables")
}

func (f *sweetFlags) config() vetters.SweetConfig {
	return vetters.SweetConfig{
		ThresholdSigma: f.threshold,
		NumDurations:   f.numDurations,
		DetrendWindow:  f.detrendWindow,
	}
}

// defaultVetting pulls flag defaults from the environment so SWEET_* vars
// work on the CLI the same way they do on the server
func defaultVetting() config.VettingConfig {
	cfg, err := config.Load()
	if err != nil {
		return config.VettingConfig{ThresholdSigma: vetters.DefaultThresholdSigma, NumDurations: 1.0}
	}
	return cfg.Vetting
}

func newVetCmd() *cobra.Command {
	var (
		file     string
		target   string
		period   float64
		epoch    float64
		duration float64
		depth    float64
		jsonOut  string
		markdown bool
		flags    sweetFlags
	)

	cmd := &cobra.Command{
		Use:   "vet",
		Short: "Run the SWEET check on one candidate",
		Long: `Run the SWEET check on one transit candidate against a lightcurve file.

Example: transitvet vet --file kplr005130369.csv --period 2.2047 --epoch 132.545 --duration 0.18`,
		RunE: func(cmd *cobra.Command, args []string) error {
			candidate := tce.Tce{
				Target:       core.TargetKey(target),
				PeriodDays:   period,
				EpochDays:    epoch,
				DurationDays: duration,
				Depth:        depth,
			}
			return runVet(cmd.Context(), file, candidate, flags, jsonOut, markdown)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Lightcurve file (.csv or .xlsx) with time/flux columns")
	cmd.Flags().StringVar(&target, "target", "", "Target identifier carried into the report")
	cmd.Flags().Float64Var(&period, "period", 0, "Candidate orbital period in days")
	cmd.Flags().Float64Var(&epoch, "epoch", 0, "Transit epoch in days, on the lightcurve time offset")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Transit duration in days")
	cmd.Flags().Float64Var(&depth, "depth", 0, "Fractional transit depth (optional)")
	cmd.Flags().StringVar(&jsonOut, "json", "", "Write the full report as JSON to this path")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the report as markdown")
	flags.register(cmd)

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("period")
	_ = cmd.MarkFlagRequired("epoch")
	_ = cmd.MarkFlagRequired("duration")

	return cmd
}

func newBatchCmd() *cobra.Command {
	var (
		file          string
		tceFile       string
		maxConcurrent int64
		flags         sweetFlags
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Vet many candidates from a TCE table against one lightcurve",
		Long: `Vet every candidate in a TCE table against one lightcurve file.

The table is a CSV with a header row and columns
target,period_days,epoch_days,duration_days[,depth].

Example: transitvet batch --file kplr005130369.csv --tces candidates.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), file, tceFile, maxConcurrent, flags)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Lightcurve file (.csv or .xlsx)")
	cmd.Flags().StringVar(&tceFile, "tces", "", "CSV table of candidate ephemerides")
	cmd.Flags().Int64Var(&maxConcurrent, "max-concurrent", vetters.DefaultMaxConcurrent, "Candidates vetted in parallel")
	flags.register(cmd)

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("tces")

	return cmd
}

func newDemoCmd() *cobra.Command {
	var (
		seed     int64
		saveFile string
		flags    sweetFlags
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Vet two synthetic candidates, one contaminated and one clean",
		Long: `Generate synthetic lightcurves and vet two candidates end to end: one on a
star with sinusoidal variability at the candidate period (should flag) and
one on a quiet star (should pass). No input files needed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), seed, saveFile, flags)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the synthetic lightcurves")
	cmd.Flags().StringVar(&saveFile, "save-markdown", "", "Write the flagged report as markdown to this path")
	flags.register(cmd)

	return cmd
}

func runVet(ctx context.Context, file string, candidate tce.Tce, flags sweetFlags, jsonOut string, markdown bool) error {
	series, err := excel.NewLightcurveReader().ReadSeries(ctx, file)
	if err != nil {
		return fmt.Errorf("loading lightcurve: %w", err)
	}
	fmt.Printf("Loaded %d cadences from %s\n", series.Len(), file)

	sweet := vetters.NewSweet(flags.config())
	rep, err := sweet.RunSweet(ctx, series, candidate)
	if err != nil {
		return fmt.Errorf("sweet check failed: %w", err)
	}

	printSweetReport(rep)

	if jsonOut != "" {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(jsonOut, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", jsonOut, err)
		}
		fmt.Printf("\n💾 Report JSON saved to %s\n", jsonOut)
	}
	if markdown {
		fmt.Printf("\n%s", report.SweetMarkdown(rep))
	}
	return nil
}

func runBatch(ctx context.Context, file, tceFile string, maxConcurrent int64, flags sweetFlags) error {
	series, err := excel.NewLightcurveReader().ReadSeries(ctx, file)
	if err != nil {
		return fmt.Errorf("loading lightcurve: %w", err)
	}
	candidates, err := loadTces(tceFile)
	if err != nil {
		return fmt.Errorf("loading TCE table: %w", err)
	}
	fmt.Printf("Loaded %d cadences and %d candidates\n", series.Len(), len(candidates))

	engine := vetters.NewEngine(vetters.NewSweet(flags.config()), maxConcurrent)
	results, err := engine.VetAll(ctx, series, candidates)
	if err != nil {
		return fmt.Errorf("batch vetting failed: %w", err)
	}

	fmt.Printf("\n📊 BATCH RESULTS\n")
	flagged := 0
	for _, res := range results {
		label := res.Candidate.Target.String()
		if label == "" {
			label = fmt.Sprintf("candidate %d", res.Index)
		}
		if res.Err != nil {
			fmt.Printf("🚫 %-20s P=%-8.4g failed: %v\n", label, res.Candidate.PeriodDays, res.Err)
			continue
		}
		verdict := "✅ ok"
		if suspiciousEnvelope(res.Report) {
			verdict = "🚨 SUSPICIOUS"
			flagged++
		}
		fmt.Printf("%s %-20s P=%-8.4g snr(P)=%.2f (%v)\n",
			verdict, label, res.Candidate.PeriodDays, res.Report.Metrics["snr_period"], res.Duration.Round(time.Millisecond))
	}
	fmt.Printf("\n%d of %d candidates flagged\n", flagged, len(results))
	return nil
}

func runDemo(ctx context.Context, seed int64, saveFile string, flags sweetFlags) error {
	fmt.Printf("🔭 SWEET DEMO (seed %d)\n", seed)

	gen := testkit.NewGenerator(seed)
	repo := testkit.NewInMemoryReportRepository()
	sweet := vetters.NewSweet(flags.config())

	// A candidate on a spotted star: sinusoidal variability at the candidate
	// period leaks through and should flag.
	contaminated := gen.FlatSeries(2000, 0, 0.02)
	spotted := tce.Tce{Target: "demo-spotted", PeriodDays: 2.0, EpochDays: 1.0, DurationDays: 0.1, Depth: 0.003}
	gen.AddSinusoid(contaminated, spotted.PeriodDays, spotted.EpochDays, 0.005)
	gen.InjectTransits(contaminated, spotted)
	gen.AddNoise(contaminated, 0.001)

	// A candidate on a quiet star: same ephemeris, transits only.
	quiet := gen.FlatSeries(2000, 0, 0.02)
	planet := tce.Tce{Target: "demo-quiet", PeriodDays: 2.0, EpochDays: 1.0, DurationDays: 0.1, Depth: 0.003}
	gen.InjectTransits(quiet, planet)
	gen.AddNoise(quiet, 0.001)

	var flaggedID core.ReportID
	for _, run := range []struct {
		series    *lightcurve.Series
		candidate tce.Tce
	}{
		{contaminated, spotted},
		{quiet, planet},
	} {
		rep, err := sweet.RunSweet(ctx, run.series, run.candidate)
		if err != nil {
			return fmt.Errorf("vetting %s: %w", run.candidate.Target, err)
		}
		printSweetReport(rep)

		envelope := rep.ToReport(sweet.Name())
		if err := repo.SaveReport(ctx, envelope); err != nil {
			return err
		}
		if rep.Suspicious() && flaggedID == "" {
			flaggedID = envelope.ID
		}
	}

	stored, err := repo.ListReports(ctx, ports.ReportFilters{})
	if err != nil {
		return err
	}
	fmt.Printf("\n📈 %d reports stored in memory\n", len(stored))

	if saveFile != "" && flaggedID != "" {
		envelope, err := repo.GetReport(ctx, flaggedID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(saveFile, []byte(report.Markdown(envelope)), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", saveFile, err)
		}
		fmt.Printf("💾 Flagged report saved to %s\n", saveFile)
	}
	return nil
}

// printSweetReport writes the verdict, trial rows, and messages to stdout
func printSweetReport(rep *vet.SweetReport) {
	target := rep.Target.String()
	if target == "" {
		target = "(unnamed target)"
	}

	if rep.Suspicious() {
		fmt.Printf("\n🚨 %s: SUSPICIOUS above %.2f sigma\n", target, rep.ThresholdSigma)
	} else {
		fmt.Printf("\n✅ %s: no significant sinusoid (threshold %.2f sigma)\n", target, rep.ThresholdSigma)
	}
	fmt.Printf("scatter %.4g, %d cadences used, %d masked in transit\n",
		rep.Scatter, rep.CadencesUsed, rep.CadencesMasked)

	fmt.Printf("\n📊 %-14s %12s %12s %12s %8s %10s\n", "trial", "period (d)", "amplitude", "amp unc", "SNR", "p-value")
	for _, row := range rep.Rows {
		fmt.Printf("   %-14s %12.6g %12.4g %12.4g %8.2f %10.3g\n",
			row.Trial, row.PeriodDays, row.Amplitude, row.AmplitudeUnc, row.SNR, row.PValue)
	}

	for _, msg := range rep.Messages {
		fmt.Printf("   %s\n", msg)
	}
}

// suspiciousEnvelope applies the threshold check to a stored envelope
func suspiciousEnvelope(rep *vet.Report) bool {
	threshold, ok := rep.Metrics["threshold_sigma"]
	if !ok {
		return false
	}
	for _, trial := range vet.Trials() {
		if snr, ok := rep.Metrics["snr_"+string(trial)]; ok && snr > threshold {
			return true
		}
	}
	return false
}

// loadTces parses a CSV table of candidate ephemerides with a header row and
// columns target,period_days,epoch_days,duration_days[,depth]
func loadTces(path string) ([]tce.Tce, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("TCE table %s needs a header row and at least one candidate", path)
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"period_days", "epoch_days", "duration_days"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("TCE table %s is missing column %s", path, required)
		}
	}

	parse := func(row []string, name string) (float64, error) {
		idx, ok := col[name]
		if !ok || idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
			return 0, nil
		}
		return strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	}

	candidates := make([]tce.Tce, 0, len(rows)-1)
	for i, row := range rows[1:] {
		period, err := parse(row, "period_days")
		if err != nil {
			return nil, fmt.Errorf("row %d: bad period: %w", i+2, err)
		}
		epoch, err := parse(row, "epoch_days")
		if err != nil {
			return nil, fmt.Errorf("row %d: bad epoch: %w", i+2, err)
		}
		duration, err := parse(row, "duration_days")
		if err != nil {
			return nil, fmt.Errorf("row %d: bad duration: %w", i+2, err)
		}
		depth, err := parse(row, "depth")
		if err != nil {
			return nil, fmt.Errorf("row %d: bad depth: %w", i+2, err)
		}

		var target core.TargetKey
		if idx, ok := col["target"]; ok && idx < len(row) {
			target = core.TargetKey(strings.TrimSpace(row[idx]))
		}

		candidates = append(candidates, tce.Tce{
			Target:       target,
			PeriodDays:   period,
			EpochDays:    epoch,
			DurationDays: duration,
			Depth:        depth,
		})
	}
	return candidates, nil
}
