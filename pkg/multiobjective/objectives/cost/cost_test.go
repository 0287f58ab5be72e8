package cost_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cloudsched/mobat/pkg/multiobjective/constraints"
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
	"github.com/cloudsched/mobat/pkg/multiobjective/objectives/cost"
)

func TestTotalCost(t *testing.T) {
	costs := framework.Matrix{{5, 6}, {2, 3}}

	testCases := []struct {
		name         string
		assignment   framework.Assignment
		expectedCost float64
	}{
		{
			name:         "CrossAssignment",
			assignment:   framework.Assignment{{0, 1}, {1, 0}},
			expectedCost: 8, // costs[0][1] + costs[1][0]
		},
		{
			name:         "AllOnFirstMachine",
			assignment:   framework.Assignment{{1, 1}, {0, 0}},
			expectedCost: 11,
		},
		{
			name:         "PartiallyAssigned",
			assignment:   framework.Assignment{{0, 0}, {0, 1}},
			expectedCost: 3,
		},
		{
			name:         "NothingAssigned",
			assignment:   framework.NewAssignment(2, 2),
			expectedCost: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := cost.TotalCost(tc.assignment, costs)
			if got != tc.expectedCost {
				t.Errorf("Expected cost %v, got %v", tc.expectedCost, got)
			}
			if got < 0 {
				t.Errorf("Cost must be non-negative, got %v", got)
			}
		})
	}
}

func TestCostObjective(t *testing.T) {
	inst, err := framework.NewInstance(
		[]framework.TaskInfo{{Idx: 0, Workload: 3}, {Idx: 1, Workload: 5}},
		[]framework.MachineInfo{{Idx: 0, Capacity: 6}, {Idx: 1, Capacity: 5}},
		framework.Matrix{{2, 4}, {3, 1}},
		framework.Matrix{{5, 6}, {2, 3}},
	)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}

	costObj := cost.CostObjective(inst)
	if got := costObj(framework.Assignment{{0, 1}, {1, 0}}); got != 8 {
		t.Errorf("Expected 8, got %v", got)
	}

	perMachine := cost.PerMachine(framework.Assignment{{0, 1}, {1, 0}}, inst.Costs)
	if diff := cmp.Diff([]float64{6, 2}, perMachine); diff != "" {
		t.Errorf("PerMachine() mismatch (-want +got):\n%s", diff)
	}
}

func TestBestFitDecreasing(t *testing.T) {
	inst, err := framework.NewInstance(
		[]framework.TaskInfo{{Idx: 0, Workload: 3}, {Idx: 1, Workload: 5}, {Idx: 2, Workload: 2}},
		[]framework.MachineInfo{{Idx: 0, Capacity: 6}, {Idx: 1, Capacity: 5}},
		framework.Matrix{{1, 1, 1}, {1, 1, 1}},
		framework.Matrix{{4, 6, 1}, {2, 3, 2}},
	)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}

	total, solution := cost.BestFitDecreasing(inst)

	// task 1 (5) -> machine 1 (cheaper), task 0 (3) -> machine 0 (machine 1 full),
	// task 2 (2) -> machine 0 (cheapest with room)
	want := framework.Assignment{{1, 0, 1}, {0, 1, 0}}
	if diff := cmp.Diff(want, solution); diff != "" {
		t.Errorf("BestFitDecreasing() assignment mismatch (-want +got):\n%s", diff)
	}
	if total != 8 {
		t.Errorf("Expected baseline cost 8, got %v", total)
	}
	if !constraints.Feasible(inst)(solution) {
		t.Error("baseline violates capacity or single assignment")
	}
}
