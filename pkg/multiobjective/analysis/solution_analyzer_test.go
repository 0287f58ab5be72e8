package analysis_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cloudsched/mobat/pkg/multiobjective/algorithms"
	"github.com/cloudsched/mobat/pkg/multiobjective/analysis"
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

func TestHypervolume(t *testing.T) {
	tests := []struct {
		name   string
		points []framework.Fitness
		ref    framework.Fitness
		want   float64
	}{
		{
			name:   "SinglePoint",
			points: []framework.Fitness{{Time: 1, Cost: 1}},
			ref:    framework.Fitness{Time: 2, Cost: 2},
			want:   1,
		},
		{
			name:   "TwoTradeOffs",
			points: []framework.Fitness{{Time: 2, Cost: 1}, {Time: 1, Cost: 3}},
			ref:    framework.Fitness{Time: 4, Cost: 4},
			want:   7,
		},
		{
			name:   "DominatedPointAddsNothing",
			points: []framework.Fitness{{Time: 1, Cost: 1}, {Time: 1.5, Cost: 1.5}},
			ref:    framework.Fitness{Time: 2, Cost: 2},
			want:   1,
		},
		{
			name:   "OutsideReference",
			points: []framework.Fitness{{Time: 3, Cost: 1}},
			ref:    framework.Fitness{Time: 2, Cost: 2},
			want:   0,
		},
		{
			name: "Empty",
			ref:  framework.Fitness{Time: 2, Cost: 2},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysis.Hypervolume(tt.points, tt.ref)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Hypervolume() = %v, want %v", got, tt.want)
			}
		})
	}
}

func testInstance(t *testing.T) *framework.Instance {
	t.Helper()
	inst, err := framework.NewInstance(
		[]framework.TaskInfo{{Idx: 0, Name: "t0", Workload: 3}, {Idx: 1, Name: "t1", Workload: 5}},
		[]framework.MachineInfo{{Idx: 0, Name: "vm0", Capacity: 6}, {Idx: 1, Name: "vm1", Capacity: 5}},
		framework.Matrix{{2, 4}, {3, 1}},
		framework.Matrix{{5, 6}, {2, 3}},
	)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	return inst
}

func TestAnalyze(t *testing.T) {
	inst := testInstance(t)
	results := []algorithms.Result{
		{BatID: 4, Assignment: framework.Assignment{{0, 1}, {1, 0}}, Fitness: framework.Fitness{Time: 7, Cost: 8}},
		{BatID: 2, Assignment: framework.Assignment{{1, 0}, {0, 0}}, Fitness: framework.Fitness{Time: 2, Cost: 5}},
	}

	report := analysis.Analyze(inst, results)

	if len(report.Solutions) != 2 {
		t.Fatalf("expected 2 solutions, got %d", len(report.Solutions))
	}
	if report.Solutions[0].BatID != 2 {
		t.Errorf("solutions should be sorted by time, first is bat %d", report.Solutions[0].BatID)
	}
	if report.CompleteCount != 1 {
		t.Errorf("CompleteCount = %d, want 1", report.CompleteCount)
	}
	if diff := cmp.Diff([]int{1}, report.Solutions[0].UnassignedTasks); diff != "" {
		t.Errorf("unassigned mismatch (-want +got):\n%s", diff)
	}

	full := report.Solutions[1]
	wantLoads := []analysis.MachineLoad{
		{Machine: 0, Name: "vm0", Tasks: 1, Workload: 5, Capacity: 6, Utilization: 5.0 / 6.0, CompletionTime: 4, Cost: 6},
		{Machine: 1, Name: "vm1", Tasks: 1, Workload: 3, Capacity: 5, Utilization: 3.0 / 5.0, CompletionTime: 3, Cost: 2},
	}
	if diff := cmp.Diff(wantLoads, full.Machines); diff != "" {
		t.Errorf("machine loads mismatch (-want +got):\n%s", diff)
	}
	if full.Makespan != 4 {
		t.Errorf("Makespan = %v, want 4", full.Makespan)
	}
	if report.Hypervolume <= 0 {
		t.Errorf("expected positive hypervolume, got %v", report.Hypervolume)
	}

	var buf bytes.Buffer
	if err := report.Print(&buf); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if !strings.Contains(buf.String(), "COMPLETION TIME") {
		t.Errorf("printed report is missing the header:\n%s", buf.String())
	}
}

func TestRank(t *testing.T) {
	inst := testInstance(t)
	results := []algorithms.Result{
		{BatID: 0, Assignment: framework.Assignment{{0, 1}, {1, 0}}, Fitness: framework.Fitness{Time: 7, Cost: 8}},
		{BatID: 1, Assignment: framework.Assignment{{1, 0}, {0, 1}}, Fitness: framework.Fitness{Time: 3, Cost: 10}},
		{BatID: 2, Assignment: framework.Assignment{{1, 0}, {0, 0}}, Fitness: framework.Fitness{Time: 2, Cost: 5}},
	}
	report := analysis.Analyze(inst, results)

	ranked := analysis.Rank(&report, 1, 0, false)
	if ranked[0].BatID != 2 {
		t.Errorf("time-only ranking should put bat 2 first, got %d", ranked[0].BatID)
	}

	ranked = analysis.Rank(&report, 0.5, 0.5, true)
	if !ranked[0].Complete {
		t.Errorf("complete solutions should come first")
	}
	if ranked[len(ranked)-1].BatID != 2 {
		t.Errorf("incomplete bat 2 should be last, got %d", ranked[len(ranked)-1].BatID)
	}
}
