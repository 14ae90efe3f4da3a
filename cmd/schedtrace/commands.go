package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/schedtrace/schedtrace/pkg/analyze"
	"github.com/schedtrace/schedtrace/pkg/config"
	"github.com/schedtrace/schedtrace/pkg/report"
	"github.com/schedtrace/schedtrace/pkg/telemetry"
	"github.com/schedtrace/schedtrace/pkg/watch"
)

// setup loads config, installs signal handling, and initializes optional
// OTLP export. The returned cleanup flushes telemetry and releases the
// signal context.
func setup(cmd *cobra.Command) (context.Context, *config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)

	cleanup := stop
	if cfg.Telemetry.Enabled {
		otlpCfg := telemetry.DefaultOTLPConfig("schedtrace", version)
		otlpCfg.Endpoint = cfg.Telemetry.Endpoint
		shutdown, err := telemetry.Init(ctx, otlpCfg)
		if err != nil {
			stop()
			return nil, nil, nil, err
		}
		cleanup = func() {
			shutdown(context.Background())
			stop()
		}
	}

	return ctx, cfg, cleanup, nil
}

func analysisOptions(cfg *config.Config) analyze.Options {
	return analyze.Options{
		InfraTasks:   cfg.Tasks.Infra,
		WatchdogTask: cfg.Tasks.Watchdog,
	}
}

// analyzeFile runs the ingest→analyze pipeline for one trace file.
func analyzeFile(ctx context.Context, cfg *config.Config, path, policy string) (*analyze.TraceReport, error) {
	ctx, span := telemetry.StartSpan(ctx, "analyze_trace",
		trace.WithAttributes(
			attribute.String("trace.path", path),
			attribute.String("trace.policy", policy),
		))
	defer span.End()

	tr, err := loadTrace(ctx, path, policy)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	rep, err := analyze.Analyze(ctx, tr, analysisOptions(cfg))
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("trace.events", rep.EventCount),
		attribute.Int("trace.tasks", len(rep.Tasks)),
	)
	return rep, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cfg, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := analyzeFile(ctx, cfg, args[0], policyLabel(policyFlag, args[0]))
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(rep)
	}
	report.PrintTraceReport(os.Stdout, rep)

	if exportPath != "" {
		return report.ExportWorkbook(exportPath, rep)
	}
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, cfg, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	comparison, err := compareFiles(ctx, cfg, args[0], args[1])
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(comparison)
	}
	report.PrintComparison(os.Stdout, comparison)

	if exportPath != "" {
		return report.ExportWorkbook(exportPath, comparison.Left, comparison.Right)
	}
	return nil
}

func compareFiles(ctx context.Context, cfg *config.Config, leftPath, rightPath string) (*analyze.Comparison, error) {
	left, err := analyzeFile(ctx, cfg, leftPath, policyLabel(leftPolicy, leftPath))
	if err != nil {
		return nil, err
	}
	right, err := analyzeFile(ctx, cfg, rightPath, policyLabel(rightPolicy, rightPath))
	if err != nil {
		return nil, err
	}
	return analyze.Compare(left, right), nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cfg, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	refresh := func() error {
		if len(args) == 2 {
			comparison, err := compareFiles(ctx, cfg, args[0], args[1])
			if err != nil {
				return err
			}
			report.PrintComparison(os.Stdout, comparison)
			return nil
		}
		rep, err := analyzeFile(ctx, cfg, args[0], policyLabel(policyFlag, args[0]))
		if err != nil {
			return err
		}
		report.PrintTraceReport(os.Stdout, rep)
		return nil
	}

	// Initial analysis before waiting on changes.
	if err := refresh(); err != nil {
		return err
	}

	w, err := watch.NewWatcher(time.Duration(cfg.Watch.Debounce))
	if err != nil {
		return err
	}
	w.OnChange = func(string) error { return refresh() }
	w.OnError = func(path string, err error) {
		fmt.Fprintf(os.Stderr, "watch %s: %v\n", path, err)
	}

	for _, path := range args {
		if err := w.Watch(path); err != nil {
			return err
		}
	}

	fmt.Fprintln(os.Stderr, "watching for changes (ctrl-c to stop)")
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cfg, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	reports := make([]*analyze.TraceReport, 0, len(args))
	labels := []string{leftPolicy, rightPolicy}
	for i, path := range args {
		rep, err := analyzeFile(ctx, cfg, path, policyLabel(labels[i], path))
		if err != nil {
			return err
		}
		reports = append(reports, rep)
	}

	if err := report.ExportWorkbook(exportPath, reports...); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", exportPath)
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
