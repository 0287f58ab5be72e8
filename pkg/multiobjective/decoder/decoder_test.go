package decoder_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/rand"

	"github.com/cloudsched/mobat/pkg/multiobjective/constraints"
	"github.com/cloudsched/mobat/pkg/multiobjective/decoder"
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

func TestVisitOrder(t *testing.T) {
	testCases := []struct {
		name     string
		position []float64
		want     []int
	}{
		{name: "Ascending", position: []float64{0.1, 0.5, 0.9}, want: []int{0, 1, 2}},
		{name: "Descending", position: []float64{0.9, 0.5, 0.1}, want: []int{2, 1, 0}},
		{name: "TiesKeepIndexOrder", position: []float64{0.3, 0.1, 0.3, 0.1}, want: []int{1, 3, 0, 2}},
		{name: "Unbounded", position: []float64{4.2, -3, 0.5}, want: []int{1, 2, 0}},
		{name: "Empty", position: nil, want: []int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := decoder.VisitOrder(tc.position)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("VisitOrder() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name       string
		position   []float64
		workloads  []float64
		capacities []float64
		want       framework.Assignment
	}{
		{
			// task 1 goes first and takes machine 0, task 0 no longer fits there
			name:       "FirstFitAfterOrdering",
			position:   []float64{0.9, 0.1},
			workloads:  []float64{3, 5},
			capacities: []float64{6, 5},
			want:       framework.Assignment{{0, 1}, {1, 0}},
		},
		{
			name:       "SameMachineWhenRoomLeft",
			position:   []float64{0.1, 0.2},
			workloads:  []float64{2, 3},
			capacities: []float64{5, 5},
			want:       framework.Assignment{{1, 1}, {0, 0}},
		},
		{
			name:       "TaskLargerThanEveryMachine",
			position:   []float64{0.1, 0.2},
			workloads:  []float64{10, 1},
			capacities: []float64{4, 4},
			want:       framework.Assignment{{0, 1}, {0, 0}},
		},
		{
			name:       "CapacityExhausted",
			position:   []float64{0.1, 0.2, 0.3},
			workloads:  []float64{4, 4, 4},
			capacities: []float64{4, 4},
			want:       framework.Assignment{{1, 0, 0}, {0, 1, 0}},
		},
		{
			name:       "SkipsSmallMachine",
			position:   []float64{0.5},
			workloads:  []float64{3},
			capacities: []float64{2, 3},
			want:       framework.Assignment{{0}, {1}},
		},
		{
			name:       "ExactFit",
			position:   []float64{0.2, 0.1},
			workloads:  []float64{2, 2},
			capacities: []float64{4},
			want:       framework.Assignment{{1, 1}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := decoder.Decode(tc.position, tc.workloads, tc.capacities)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		tasks := 1 + rng.Intn(30)
		machines := 1 + rng.Intn(6)

		workloads := make([]float64, tasks)
		for j := range workloads {
			workloads[j] = 1 + rng.Float64()*20
		}
		capacities := make([]float64, machines)
		for i := range capacities {
			capacities[i] = rng.Float64() * 60
		}
		position := make([]float64, tasks)
		for j := range position {
			position[j] = rng.Float64()*4 - 2
		}

		first := decoder.Decode(position, workloads, capacities)
		second := decoder.Decode(position, workloads, capacities)
		if !first.Equal(second) {
			t.Fatalf("trial %d: decode is not deterministic", trial)
		}

		if !constraints.SingleAssignment(first) {
			t.Errorf("trial %d: a task is assigned to more than one machine: %v", trial, first)
		}
		if !constraints.WithinCapacity(first, workloads, capacities) {
			t.Errorf("trial %d: machine capacity exceeded: %v", trial, first)
		}
		if first.NumMachines() != machines || first.NumTasks() != tasks {
			t.Errorf("trial %d: shape %dx%d, want %dx%d", trial, first.NumMachines(), first.NumTasks(), machines, tasks)
		}
	}
}
