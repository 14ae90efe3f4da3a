package metrics

import (
	"testing"

	"github.com/schedtrace/schedtrace/pkg/reconcile"
)

func TestSummarize(t *testing.T) {
	res := reconcile.Result{
		Executions: []int64{10, 21, 14},
		Responses:  []int64{30, 50},
		Releases:   []int64{0, 100, 200, 300},
	}

	s := Summarize("T1", res, 1)

	if !s.HasExec || s.MeanExec != 15.0 {
		t.Errorf("Expected mean exec 15.0, got %v (valid=%v)", s.MeanExec, s.HasExec)
	}
	if !s.HasResponse || s.MeanResponse != 40.0 {
		t.Errorf("Expected mean response 40.0, got %v (valid=%v)", s.MeanResponse, s.HasResponse)
	}
	if s.TotalExec != 45.0 {
		t.Errorf("Expected total exec 45.0, got %v", s.TotalExec)
	}
	if s.MissRatio != 0.25 {
		t.Errorf("Expected miss ratio 0.25, got %v", s.MissRatio)
	}
	if s.Releases != 4 {
		t.Errorf("Expected 4 releases, got %d", s.Releases)
	}
}

func TestSummarize_EmptySequences(t *testing.T) {
	s := Summarize("T1", reconcile.Result{}, 0)

	if s.HasExec {
		t.Error("Expected undefined mean exec for empty sequence")
	}
	if s.HasResponse {
		t.Error("Expected undefined mean response for empty sequence")
	}
	// A sum is always defined; an empty one is 0, distinct from the
	// undefined means.
	if s.TotalExec != 0 {
		t.Errorf("Expected total exec 0, got %v", s.TotalExec)
	}
	if s.MissRatio != 0 {
		t.Errorf("Expected miss ratio 0, got %v", s.MissRatio)
	}
}

func TestSummarize_MissRatio(t *testing.T) {
	tests := []struct {
		name     string
		releases []int64
		misses   int
		expected float64
	}{
		{"no misses", []int64{0, 10, 20, 30}, 0, 0.0},
		{"half missed", []int64{0, 10}, 1, 0.5},
		{"rounded to 3 places", []int64{0, 10, 20}, 1, 0.333},
		// Denominator floor: with zero releases the ratio equals the raw
		// miss count and is deliberately not clamped to 1.
		{"zero releases", nil, 2, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize("T1", reconcile.Result{Releases: tt.releases}, tt.misses)
			if s.MissRatio != tt.expected {
				t.Errorf("Expected miss ratio %v, got %v", tt.expected, s.MissRatio)
			}
			if len(tt.releases) > 0 && (s.MissRatio < 0 || s.MissRatio > 1) {
				t.Errorf("Miss ratio %v outside [0,1] with releases present", s.MissRatio)
			}
		})
	}
}

func TestSummarize_Rounding(t *testing.T) {
	res := reconcile.Result{Executions: []int64{1, 2}} // mean 1.5
	s := Summarize("T1", res, 0)
	if s.MeanExec != 1.5 {
		t.Errorf("Expected mean exec 1.5, got %v", s.MeanExec)
	}

	res = reconcile.Result{Executions: []int64{10, 10, 11}} // mean 10.333...
	s = Summarize("T1", res, 0)
	if s.MeanExec != 10.33 {
		t.Errorf("Expected mean exec 10.33, got %v", s.MeanExec)
	}
}

func TestWatchdogInterval(t *testing.T) {
	tests := []struct {
		name       string
		timestamps []int64
		expected   float64
		ok         bool
	}{
		{"none", nil, 0, false},
		{"single", []int64{100}, 0, false},
		{"pair", []int64{100, 600}, 500.0, true},
		{"uneven cadence", []int64{100, 600, 1150}, 525.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WatchdogInterval(tt.timestamps)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if got != tt.expected {
				t.Errorf("Expected interval %v, got %v", tt.expected, got)
			}
		})
	}
}
