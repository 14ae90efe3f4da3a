// Package analyze turns a parsed trace into per-task summaries and
// comparison reports.
package analyze

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/schedtrace/schedtrace/internal/model"
	"github.com/schedtrace/schedtrace/pkg/metrics"
	"github.com/schedtrace/schedtrace/pkg/reconcile"
)

// Options controls trace analysis.
type Options struct {
	// InfraTasks are pseudo-task names excluded from task-level rows.
	InfraTasks []string

	// WatchdogTask is the pseudo-task the firmware logs watchdog pets
	// under.
	WatchdogTask string
}

// DefaultOptions matches the firmware's logging conventions.
func DefaultOptions() Options {
	return Options{
		InfraTasks:   []string{"WDT", "INFO", "Supervisor"},
		WatchdogTask: "WDT",
	}
}

// TraceReport is the full analysis output for one trace: one summary row
// per schedulable task plus the trace-level watchdog estimate. Immutable
// once built.
type TraceReport struct {
	RunID  string `json:"run_id"`
	Policy string `json:"policy"`

	EventCount int `json:"event_count"`

	// Tasks holds task identifiers in lexical order.
	Tasks     []string                       `json:"tasks"`
	Summaries map[string]metrics.TaskSummary `json:"summaries"`

	// Watchdog is the mean inter-pet interval in ms; HasWatchdog is
	// false when fewer than two pet events were observed.
	Watchdog    float64 `json:"watchdog_interval_ms"`
	HasWatchdog bool    `json:"has_watchdog"`

	Anomalies []reconcile.Anomaly `json:"anomalies,omitempty"`
}

// Analyze reconciles and summarizes every task in the trace. Per-task
// reconciliations share no state, so they run concurrently, one goroutine
// per task partition.
func Analyze(ctx context.Context, trace model.Trace, opts Options) (*TraceReport, error) {
	timelines := model.Partition(trace, opts.InfraTasks)

	report := &TraceReport{
		RunID:      uuid.NewString(),
		Policy:     trace.Policy,
		EventCount: len(trace.Events),
		Tasks:      make([]string, len(timelines)),
		Summaries:  make(map[string]metrics.TaskSummary, len(timelines)),
	}

	summaries := make([]metrics.TaskSummary, len(timelines))
	anomalies := make([][]reconcile.Anomaly, len(timelines))

	g, ctx := errgroup.WithContext(ctx)
	for i, tl := range timelines {
		i, tl := i, tl
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			res := reconcile.Reconcile(tl)
			summaries[i] = metrics.Summarize(tl.Task, res, tl.Count(model.KindMiss))
			anomalies[i] = res.Anomalies
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, s := range summaries {
		report.Tasks[i] = s.Task
		report.Summaries[s.Task] = s
		report.Anomalies = append(report.Anomalies, anomalies[i]...)
	}

	if interval, ok := metrics.WatchdogInterval(model.TaskTimestamps(trace, opts.WatchdogTask)); ok {
		report.Watchdog = interval
		report.HasWatchdog = true
	}

	return report, nil
}
