// Package metrics reduces reconciled per-task sequences into summary rows.
package metrics

import (
	"math"

	"github.com/schedtrace/schedtrace/pkg/reconcile"
)

// TaskSummary is the per-task summary row for one trace. Real-valued
// metrics are rounded for output stability: 2 decimal places, except the
// miss ratio at 3. Sums and means are computed at full precision and
// rounded only here.
type TaskSummary struct {
	Task string `json:"task"`

	// MeanExec is the mean execution duration in ms. Undefined (HasExec
	// false) when no execution interval was reconciled; undefined is
	// reported as no data, never as zero.
	MeanExec float64 `json:"avg_exec_time_ms"`
	HasExec  bool    `json:"has_exec"`

	// MeanResponse is the mean response duration in ms, with the same
	// undefined convention.
	MeanResponse float64 `json:"avg_response_ms"`
	HasResponse  bool    `json:"has_response"`

	// MissRatio is misses / max(releases, 1). With zero releases the
	// denominator floor makes the ratio equal the raw miss count, which
	// can exceed 1. That artifact is kept deliberately: downstream
	// consumers detect the degenerate never-released case by the
	// out-of-range value.
	MissRatio float64 `json:"miss_ratio"`

	// TotalExec is the summed execution time in ms. Unlike the means it
	// is always defined; an empty sequence sums to 0.
	TotalExec float64 `json:"total_exec_time_ms"`

	Releases int `json:"release_count"`
	Misses   int `json:"miss_count"`
}

// Summarize reduces one task's reconciled sequences and raw miss count
// into its summary row.
func Summarize(task string, r reconcile.Result, misses int) TaskSummary {
	s := TaskSummary{
		Task:     task,
		Releases: len(r.Releases),
		Misses:   misses,
	}

	if len(r.Executions) > 0 {
		var total int64
		for _, d := range r.Executions {
			total += d
		}
		s.MeanExec = Round2(float64(total) / float64(len(r.Executions)))
		s.TotalExec = Round2(float64(total))
		s.HasExec = true
	}

	if len(r.Responses) > 0 {
		var total int64
		for _, d := range r.Responses {
			total += d
		}
		s.MeanResponse = Round2(float64(total) / float64(len(r.Responses)))
		s.HasResponse = true
	}

	denom := len(r.Releases)
	if denom == 0 {
		denom = 1
	}
	s.MissRatio = Round3(float64(misses) / float64(denom))

	return s
}

// WatchdogInterval estimates the mean gap between consecutive watchdog pet
// timestamps, in ms rounded to 2 decimals. ok is false below two samples,
// where no interval exists. The cadence itself is not validated; this is
// the observed mean only.
func WatchdogInterval(timestamps []int64) (float64, bool) {
	if len(timestamps) < 2 {
		return 0, false
	}
	span := timestamps[len(timestamps)-1] - timestamps[0]
	n := len(timestamps) - 1
	return Round2(float64(span) / float64(n)), true
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to 3 decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
