package reconcile

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/schedtrace/schedtrace/internal/model"
)

func timeline(task string, events ...model.Event) model.Timeline {
	return model.Timeline{Task: task, Events: events}
}

func ev(ts int64, kind model.Kind) model.Event {
	return model.Event{Timestamp: ts, Kind: kind, Task: "T1"}
}

func TestReconcile_OutOfOrderComplete(t *testing.T) {
	// START@10 pairs with COMPLETE@40. The second START@50 finds only
	// COMPLETE@45 left, which is below it, so the start is dropped.
	tl := timeline("T1",
		ev(10, model.KindStart),
		ev(40, model.KindComplete),
		ev(45, model.KindComplete),
		ev(50, model.KindStart),
	)

	res := Reconcile(tl)

	if !reflect.DeepEqual(res.Executions, []int64{30}) {
		t.Errorf("Expected executions [30], got %v", res.Executions)
	}
	if len(res.Anomalies) != 0 {
		t.Errorf("Expected no anomalies, got %v", res.Anomalies)
	}
}

func TestReconcile_Responses(t *testing.T) {
	tl := timeline("T1",
		ev(0, model.KindRelease),
		ev(50, model.KindComplete),
		ev(100, model.KindRelease),
		ev(150, model.KindComplete),
	)

	res := Reconcile(tl)

	if !reflect.DeepEqual(res.Responses, []int64{50, 50}) {
		t.Errorf("Expected responses [50 50], got %v", res.Responses)
	}
	if !reflect.DeepEqual(res.Releases, []int64{0, 100}) {
		t.Errorf("Expected releases [0 100], got %v", res.Releases)
	}
}

func TestReconcile_IndependentPools(t *testing.T) {
	// One completion satisfies both the execution and the response view.
	tl := timeline("T1",
		ev(0, model.KindRelease),
		ev(20, model.KindStart),
		ev(60, model.KindComplete),
	)

	res := Reconcile(tl)

	if !reflect.DeepEqual(res.Executions, []int64{40}) {
		t.Errorf("Expected executions [40], got %v", res.Executions)
	}
	if !reflect.DeepEqual(res.Responses, []int64{60}) {
		t.Errorf("Expected responses [60], got %v", res.Responses)
	}
}

func TestReconcile_TieBreaksInTraceOrder(t *testing.T) {
	// Two completions at the same timestamp: the first in trace order is
	// consumed first. With extras distinguishing them this is only
	// observable through the pairing counts, which must not double-spend.
	tl := timeline("T1",
		ev(10, model.KindStart),
		ev(30, model.KindComplete),
		ev(30, model.KindComplete),
		ev(30, model.KindStart),
	)

	res := Reconcile(tl)

	if !reflect.DeepEqual(res.Executions, []int64{20, 0}) {
		t.Errorf("Expected executions [20 0], got %v", res.Executions)
	}
}

func TestReconcile_EmptyAndMalformed(t *testing.T) {
	tests := []struct {
		name   string
		events []model.Event
	}{
		{"empty", nil},
		{"complete without start", []model.Event{ev(10, model.KindComplete)}},
		{"start without complete", []model.Event{ev(10, model.KindStart)}},
		{"only misses", []model.Event{ev(10, model.KindMiss), ev(20, model.KindMiss)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Reconcile(timeline("T1", tt.events...))
			if len(res.Executions) != 0 || len(res.Responses) != 0 {
				t.Errorf("Expected empty sequences, got %+v", res)
			}
		})
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	tl := timeline("T1",
		ev(0, model.KindRelease),
		ev(5, model.KindStart),
		ev(30, model.KindComplete),
		ev(100, model.KindRelease),
		ev(110, model.KindStart),
		ev(160, model.KindComplete),
	)

	first := Reconcile(tl)
	second := Reconcile(tl)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Reconcile not idempotent: %+v vs %+v", first, second)
	}
}

// naiveMatch is a direct scan-with-consumed-set matcher, the reference
// semantics for the two-pointer walk.
func naiveMatch(openers, completes []int64) []int64 {
	used := make(map[int]bool)
	durations := []int64{}
	for _, s := range openers {
		idx := -1
		for i, c := range completes {
			if c >= s && !used[i] {
				idx = i
				break
			}
		}
		if idx == -1 {
			continue
		}
		used[idx] = true
		if d := completes[idx] - s; d >= 0 {
			durations = append(durations, d)
		}
	}
	return durations
}

func TestMatch_EquivalentToNaiveScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 500; trial++ {
		// Small timestamp ranges force duplicates and ties.
		openers := sortedTimestamps(rng, rng.Intn(20), 50)
		completes := sortedTimestamps(rng, rng.Intn(20), 50)

		want := naiveMatch(openers, completes)
		got, anomalies := match("T1", ViewExecution, openers, completes, nil)

		if len(got) == 0 && len(want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("trial %d: openers=%v completes=%v: two-pointer %v != naive %v",
				trial, openers, completes, got, want)
		}
		if len(anomalies) != 0 {
			t.Fatalf("trial %d: unexpected anomalies %v", trial, anomalies)
		}
		if len(got) > len(openers) {
			t.Fatalf("trial %d: pairing invented samples: %d > %d", trial, len(got), len(openers))
		}
		for _, d := range got {
			if d < 0 {
				t.Fatalf("trial %d: negative duration %d surfaced", trial, d)
			}
		}
	}
}

func sortedTimestamps(rng *rand.Rand, n, max int) []int64 {
	ts := make([]int64, n)
	for i := range ts {
		ts[i] = int64(rng.Intn(max))
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	return ts
}
