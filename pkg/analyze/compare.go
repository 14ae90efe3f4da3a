package analyze

import (
	"fmt"
	"sort"

	"github.com/schedtrace/schedtrace/pkg/metrics"
)

// Comparison is the semantic diff of two trace reports, one per scheduling
// policy under test.
type Comparison struct {
	Left  *TraceReport `json:"left"`
	Right *TraceReport `json:"right"`

	// Tasks is the union of both reports' task sets, lexical order.
	Tasks []string `json:"tasks"`

	// Aggregates are means over per-task summary rows. Tasks without
	// response data are skipped from the response mean; an aggregate
	// with no contributing task is undefined.
	LeftMeanResponse     float64 `json:"left_mean_response_ms"`
	HasLeftMeanResponse  bool    `json:"has_left_mean_response"`
	RightMeanResponse    float64 `json:"right_mean_response_ms"`
	HasRightMeanResponse bool    `json:"has_right_mean_response"`

	LeftMeanMissRatio  float64 `json:"left_mean_miss_ratio"`
	RightMeanMissRatio float64 `json:"right_mean_miss_ratio"`

	// Verdicts are the human-readable conclusions; empty when the
	// underlying aggregate is undefined on either side.
	ResponseVerdict string `json:"response_verdict,omitempty"`
	MissVerdict     string `json:"miss_verdict,omitempty"`
}

// Compare builds the policy comparison from two trace reports.
func Compare(left, right *TraceReport) *Comparison {
	c := &Comparison{
		Left:  left,
		Right: right,
		Tasks: unionTasks(left.Tasks, right.Tasks),
	}

	c.LeftMeanResponse, c.HasLeftMeanResponse = meanResponse(left.Summaries)
	c.RightMeanResponse, c.HasRightMeanResponse = meanResponse(right.Summaries)
	c.LeftMeanMissRatio = meanMissRatio(left.Summaries)
	c.RightMeanMissRatio = meanMissRatio(right.Summaries)

	if c.HasLeftMeanResponse && c.HasRightMeanResponse {
		winner, loser := left.Policy, right.Policy
		w, l := c.LeftMeanResponse, c.RightMeanResponse
		if c.RightMeanResponse < c.LeftMeanResponse {
			winner, loser = right.Policy, left.Policy
			w, l = c.RightMeanResponse, c.LeftMeanResponse
		}
		c.ResponseVerdict = fmt.Sprintf(
			"%s shows better average response time (%.2f ms) vs %s (%.2f ms)",
			winner, w, loser, l)
	}

	if len(left.Tasks) > 0 && len(right.Tasks) > 0 {
		winner := left.Policy
		w, l := c.LeftMeanMissRatio, c.RightMeanMissRatio
		if c.RightMeanMissRatio < c.LeftMeanMissRatio {
			winner = right.Policy
			w, l = c.RightMeanMissRatio, c.LeftMeanMissRatio
		}
		c.MissVerdict = fmt.Sprintf(
			"%s is more deadline-tolerant (miss ratio %.3f vs %.3f)",
			winner, w, l)
	}

	return c
}

// CPUShare returns each task's share of the report's total recorded
// execution time, in [0, 1]. Shares are zero when nothing executed.
func CPUShare(report *TraceReport) map[string]float64 {
	var total float64
	for _, s := range report.Summaries {
		total += s.TotalExec
	}

	shares := make(map[string]float64, len(report.Summaries))
	for task, s := range report.Summaries {
		if total > 0 {
			shares[task] = s.TotalExec / total
		} else {
			shares[task] = 0
		}
	}
	return shares
}

func meanResponse(summaries map[string]metrics.TaskSummary) (float64, bool) {
	var total float64
	n := 0
	for _, s := range summaries {
		if s.HasResponse {
			total += s.MeanResponse
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

func meanMissRatio(summaries map[string]metrics.TaskSummary) float64 {
	if len(summaries) == 0 {
		return 0
	}
	var total float64
	for _, s := range summaries {
		total += s.MissRatio
	}
	return total / float64(len(summaries))
}

func unionTasks(left, right []string) []string {
	seen := make(map[string]struct{}, len(left)+len(right))
	var union []string
	for _, task := range left {
		if _, ok := seen[task]; !ok {
			seen[task] = struct{}{}
			union = append(union, task)
		}
	}
	for _, task := range right {
		if _, ok := seen[task]; !ok {
			seen[task] = struct{}{}
			union = append(union, task)
		}
	}
	sort.Strings(union)
	return union
}
