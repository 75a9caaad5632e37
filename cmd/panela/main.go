package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/Guilherme-Argilar/minha-panela/internal/config"
	"github.com/Guilherme-Argilar/minha-panela/internal/kettle"
	"github.com/Guilherme-Argilar/minha-panela/internal/metrics"
	"github.com/Guilherme-Argilar/minha-panela/internal/process"
	"github.com/Guilherme-Argilar/minha-panela/internal/runner"
	"github.com/Guilherme-Argilar/minha-panela/internal/store"
	"github.com/Guilherme-Argilar/minha-panela/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	ticks      int
	stirRPM    float64
	series     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "panela",
		Short: "batch sugar kettle process model",
		Run: func(cmd *cobra.Command, args []string) {
			// Default to the live dashboard when no command given.
			if err := runLive(cmd, args); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".panela", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless batch cook",
		RunE:  runCook,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 0, "physics tick period in seconds")
	runCmd.Flags().IntVar(&ticks, "ticks", 0, "tick budget")
	runCmd.Flags().Float64Var(&stirRPM, "rpm", 0, "stirrer speed override")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive kettle dashboard",
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", 0, "physics tick period in seconds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&series, "series", "temperature", "series to plot (temperature|brix|torque)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if preset != "" {
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (try: %v)", preset, config.ListPresets())
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

func runCook(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dt > 0 {
		cfg.Dt = dt
	}
	if ticks > 0 {
		cfg.Ticks = ticks
	}

	ctrl := process.New(cfg.Process())
	if stirRPM > 0 {
		if err := ctrl.SetCommandedRPM(stirRPM); err != nil {
			return err
		}
	}

	r := runner.New(ctrl)
	r.AddMetric(metrics.NewMeanEfficiency())
	r.AddMetric(metrics.NewProtectionDuty())
	r.AddMetric(metrics.NewPeakTorque())
	r.AddMetric(metrics.NewStirEffort())
	r.AddMetric(metrics.NewSetpointHold(2))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := r.Run(ctx, cfg.Ticks, cfg.TickPeriod())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Printf("cook finished: phase=%s brix=%.1f ticks=%d elapsed=%ds\n",
		res.Final.Phase, res.Final.Brix, res.TicksTaken, res.Final.ElapsedSeconds)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for name, value := range res.Metrics {
		fmt.Fprintf(w, "%s\t%.3f\n", name, value)
	}
	w.Flush()

	plotSamples(res.Samples, "temperature")
	plotSamples(res.Samples, "brix")

	if len(res.Alarms) > 0 {
		fmt.Println("\nalarms:")
		for _, a := range res.Alarms {
			fmt.Printf("  #%d [%s] %s\n", a.ID, a.Severity, a.Message)
		}
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	presetName := preset
	if presetName == "" {
		presetName = "standard"
	}
	runID, err := st.Save(presetName, cfg.Dt, res)
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved run %s\n", runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dt > 0 {
		cfg.Dt = dt
	}
	ctrl := process.New(cfg.Process())
	return tui.Run(ctrl, cfg.TickPeriod())
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs stored")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPRESET\tPHASE\tBRIX\tTICKS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\t%d\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04"), r.Preset,
			r.FinalPhase, r.FinalBrix, r.Ticks)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Println("run has no samples")
		return nil
	}
	plotSamples(samples, series)
	return nil
}

func plotSamples(samples []kettle.Sample, name string) {
	if len(samples) < 2 {
		return
	}
	data := make([]float64, 0, len(samples))
	for _, s := range samples {
		switch name {
		case "brix":
			data = append(data, s.Brix)
		case "torque":
			data = append(data, s.Torque)
		default:
			data = append(data, s.Temperature)
		}
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(name),
	))
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
