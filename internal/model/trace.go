package model

import "sort"

// Trace is the full ordered event log for one scheduling-policy run
// (e.g. one EDF run or one RM run). Read-only once built.
type Trace struct {
	// Policy labels the scheduling policy under test ("EDF", "RM", ...).
	Policy string

	Events []Event
}

// Timeline is the time-ordered lifecycle event subsequence for one task
// within one trace. Infrastructure pseudo-tasks never get a Timeline.
type Timeline struct {
	Task   string
	Events []Event
}

// Timestamps returns the ascending timestamps of events matching kind.
// Trace order is preserved for equal timestamps.
func (tl Timeline) Timestamps(kind Kind) []int64 {
	var ts []int64
	for _, e := range tl.Events {
		if e.Kind == kind {
			ts = append(ts, e.Timestamp)
		}
	}
	return ts
}

// Count returns the number of events matching kind.
func (tl Timeline) Count(kind Kind) int {
	n := 0
	for _, e := range tl.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Partition splits a trace into per-task timelines, sorted by timestamp
// with stream order preserved for ties. Tasks named in infra are
// infrastructure pseudo-tasks (watchdog, informational, supervisor) and
// are excluded. Timelines are returned in lexical task order.
func Partition(trace Trace, infra []string) []Timeline {
	skip := make(map[string]struct{}, len(infra))
	for _, name := range infra {
		skip[name] = struct{}{}
	}

	byTask := make(map[string][]Event)
	var order []string
	for _, e := range trace.Events {
		if _, ok := skip[e.Task]; ok {
			continue
		}
		if _, seen := byTask[e.Task]; !seen {
			order = append(order, e.Task)
		}
		byTask[e.Task] = append(byTask[e.Task], e)
	}
	sort.Strings(order)

	timelines := make([]Timeline, 0, len(order))
	for _, task := range order {
		events := byTask[task]
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Timestamp < events[j].Timestamp
		})
		timelines = append(timelines, Timeline{Task: task, Events: events})
	}
	return timelines
}

// TaskTimestamps returns the ascending timestamps of every event belonging
// to the named task, regardless of kind. Used for watchdog pseudo-task
// interval estimation, which keys on the task name the firmware logs under.
func TaskTimestamps(trace Trace, task string) []int64 {
	var ts []int64
	for _, e := range trace.Events {
		if e.Task == task {
			ts = append(ts, e.Timestamp)
		}
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	return ts
}
