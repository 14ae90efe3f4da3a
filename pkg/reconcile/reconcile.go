// Package reconcile pairs scheduler lifecycle events into execution and
// response intervals. This is the core of schedtrace: an append-only stream
// of discrete START/COMPLETE/RELEASE/MISS events per task becomes committed
// (start, completion) and (release, completion) durations, robust to
// missing events, duplicate timing, and ties.
package reconcile

import (
	"fmt"

	"github.com/schedtrace/schedtrace/internal/model"
)

// View distinguishes the two derived interval views over one task's
// completion list.
type View uint8

const (
	// ViewExecution pairs START with COMPLETE: CPU burst length.
	ViewExecution View = iota

	// ViewResponse pairs RELEASE with COMPLETE: demand-to-satisfaction.
	ViewResponse
)

// String returns the view name.
func (v View) String() string {
	if v == ViewResponse {
		return "response"
	}
	return "execution"
}

// MarshalJSON renders the view by name.
func (v View) MarshalJSON() ([]byte, error) {
	return []byte(`"` + v.String() + `"`), nil
}

// Anomaly records a matched pair whose duration came out negative. The
// sample is discarded; the anomaly is informational, never fatal.
type Anomaly struct {
	Task     string `json:"task"`
	View     View   `json:"view"`
	Opener   int64  `json:"opener_ms"`
	Complete int64  `json:"complete_ms"`
}

// String renders the anomaly as a warning line.
func (a Anomaly) String() string {
	return fmt.Sprintf("negative %s time for task %s (opener %d, complete %d); sample skipped",
		a.View, a.Task, a.Opener, a.Complete)
}

// Result holds the derived sequences for one task.
type Result struct {
	// Executions are committed start→complete durations, milliseconds.
	Executions []int64

	// Responses are committed release→complete durations, milliseconds.
	Responses []int64

	// Releases are the raw ascending RELEASE timestamps, passed through
	// for miss-ratio denominators and release-count reporting.
	Releases []int64

	// Anomalies are discarded negative-duration samples.
	Anomalies []Anomaly
}

// Reconcile derives the execution, response, and release sequences for one
// task timeline. The timeline must be time-sorted (ties in stream order),
// which model.Partition guarantees; beyond that there are no preconditions.
// Empty or malformed timelines (a COMPLETE with no prior START, runs cut
// off by the end of the trace window) are valid inputs.
//
// Matching is first-fit earliest-available: each START claims the
// lowest-index unconsumed COMPLETE at or after it, and likewise each
// RELEASE against its own independent consumption pool. A completion can
// therefore satisfy one execution pairing and one response pairing — the
// two views answer different questions over the same run — but is never
// spent twice within one pool. Openers with no qualifying completion are
// dropped: a run that never completed in the trace window is missing data,
// not an error.
func Reconcile(tl model.Timeline) Result {
	completes := tl.Timestamps(model.KindComplete)

	res := Result{
		Releases: tl.Timestamps(model.KindRelease),
	}
	res.Executions, res.Anomalies = match(tl.Task, ViewExecution,
		tl.Timestamps(model.KindStart), completes, res.Anomalies)
	res.Responses, res.Anomalies = match(tl.Task, ViewResponse,
		res.Releases, completes, res.Anomalies)
	return res
}

// match walks both ascending timestamp lists with a single completion
// cursor. Every completion the cursor skips for opener s is below s, hence
// below every later opener too, so it can never be claimed again: the walk
// is exactly the first-fit earliest-available scan, ties resolved in trace
// order, in O(n+m) instead of the naive O(n·m) consumed-set scan.
//
// The cursor is the only mutable matching state and is local to this call.
func match(task string, view View, openers, completes []int64, anomalies []Anomaly) ([]int64, []Anomaly) {
	durations := make([]int64, 0, len(openers))

	j := 0
	for _, s := range openers {
		for j < len(completes) && completes[j] < s {
			j++
		}
		if j == len(completes) {
			break
		}
		c := completes[j]
		j++

		// The cursor invariant makes c >= s; the check guards against a
		// clock anomaly in the source trace surfacing here.
		if d := c - s; d >= 0 {
			durations = append(durations, d)
		} else {
			anomalies = append(anomalies, Anomaly{
				Task: task, View: view, Opener: s, Complete: c,
			})
		}
	}
	return durations, anomalies
}
