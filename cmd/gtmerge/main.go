// Command gtmerge reconciles ground truth trip logs with OBA travel behavior
// exports and writes merged tables, summaries and plots per match tolerance.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/banshee-data/gtmerge/internal/config"
	"github.com/banshee-data/gtmerge/internal/export"
	"github.com/banshee-data/gtmerge/internal/fsutil"
	"github.com/banshee-data/gtmerge/internal/ingest"
	"github.com/banshee-data/gtmerge/internal/monitoring"
	"github.com/banshee-data/gtmerge/internal/preprocess"
	"github.com/banshee-data/gtmerge/internal/sweep"
	"github.com/banshee-data/gtmerge/internal/timeutil"
	"github.com/banshee-data/gtmerge/internal/trip"
	"github.com/banshee-data/gtmerge/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], fsutil.OSFileSystem{}, timeutil.RealClock{}, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "gtmerge: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run executes one invocation. Every fatal condition is returned as an error.
func run(ctx context.Context, args []string, fsys fsutil.FileSystem, clock timeutil.Clock, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("gtmerge", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.BindFlags(fs)
	showVersion := fs.Bool("version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return nil
	}

	cfg, err := config.Load(viper.New(), fs)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := monitoring.New(monitoring.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: stderr})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	monitoring.Install(logger)
	defer func() { _ = logger.Sync() }()

	return merge(ctx, cfg, fsys, clock, logger)
}

func merge(ctx context.Context, cfg config.MergeConfig, fsys fsutil.FileSystem, clock timeutil.Clock, log *zap.Logger) error {
	inputs := []string{cfg.OBAFile, cfg.GTFile}
	if cfg.DeviceList != "" {
		inputs = append(inputs, cfg.DeviceList)
	}
	if err := ingest.CheckInputs(fsys, inputs...); err != nil {
		return err
	}

	obaTable, err := ingest.ReadOBAFile(fsys, cfg.OBAFile)
	if err != nil {
		return err
	}
	if err := ingest.ValidateSchema(cfg.OBAFile, obaTable, trip.OBARequiredColumns); err != nil {
		return err
	}
	gtTable, err := ingest.ReadGTFile(fsys, cfg.GTFile)
	if err != nil {
		return err
	}
	if err := ingest.ValidateSchema(cfg.GTFile, gtTable, trip.GTRequiredColumns); err != nil {
		return err
	}

	var devices map[string]struct{}
	if cfg.DeviceList != "" {
		ids, err := ingest.ReadDeviceList(fsys, cfg.DeviceList)
		if err != nil {
			return err
		}
		devices = ingest.DeviceSet(ids)
		log.Info("device whitelist loaded", zap.Int("devices", len(ids)))
	}

	plan, err := sweep.NewPlan(cfg)
	if err != nil {
		return err
	}

	gt := preprocess.NormalizeGT(gtTable, cfg.GTOptions())
	oba := preprocess.NormalizeOBA(obaTable, cfg.OBAOptions(devices))
	log.Info("inputs normalized",
		zap.Int("gt_clean", len(gt.Clean)),
		zap.Int("gt_dropped", len(gt.Dropped)),
		zap.Int("oba_clean", len(oba.Clean)),
		zap.Int("oba_dropped", len(oba.Dropped)),
		zap.Int("oba_excluded", oba.Excluded))

	w := export.NewWriter(fsys, cfg.OutputDir)
	if err := w.PrepareOutputDirs(); err != nil {
		return err
	}
	if err := w.WriteDroppedGT(gt.Header, gt.Dropped); err != nil {
		return err
	}
	if err := w.WriteDroppedOBA(oba.Header, oba.Dropped); err != nil {
		return err
	}

	m := sweep.NewManifest(clock, cfg)
	m.Inputs = sweep.InputCounts{
		GTRows:      len(gtTable.Rows),
		GTClean:     len(gt.Clean),
		GTDropped:   len(gt.Dropped),
		OBARows:     len(obaTable.Rows),
		OBAClean:    len(oba.Clean),
		OBADropped:  len(oba.Dropped),
		OBAExcluded: oba.Excluded,
	}
	log.Info("starting merge",
		zap.String("run_id", m.RunID),
		zap.String("mode", m.Mode),
		zap.Int64s("tolerances_ms", plan.Tolerances))

	points, runErr := sweep.NewRunner(cfg, w, clock).Run(ctx, plan, gt.Clean, oba.Clean)
	for _, p := range points {
		m.Record(p)
	}
	m.Finish(clock, runErr)
	if err := sweep.WriteManifest(w, m); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}
	log.Info("merge complete", zap.String("output", w.Root()), zap.Int("tolerances", len(points)))
	return nil
}
