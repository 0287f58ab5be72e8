package warmstart_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/rand"

	"github.com/cloudsched/mobat/pkg/multiobjective/benchmarks"
	"github.com/cloudsched/mobat/pkg/multiobjective/constraints"
	"github.com/cloudsched/mobat/pkg/multiobjective/decoder"
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
	"github.com/cloudsched/mobat/pkg/multiobjective/warmstart"
)

func tradeOffInstance(t *testing.T, capacities ...float64) *framework.Instance {
	t.Helper()
	machines := make([]framework.MachineInfo, len(capacities))
	for i, c := range capacities {
		machines[i] = framework.MachineInfo{Idx: i, Capacity: c}
	}
	// machine 0 is fast and expensive, machine 1 slow and cheap
	inst, err := framework.NewInstance(
		[]framework.TaskInfo{{Idx: 0, Workload: 3}, {Idx: 1, Workload: 3}, {Idx: 2, Workload: 3}},
		machines,
		framework.Matrix{{1, 1, 1}, {2, 2, 2}},
		framework.Matrix{{3, 3, 3}, {1, 1, 1}},
	)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	return inst
}

func TestGenerateWeightVectors(t *testing.T) {
	want := []warmstart.ObjectiveWeights{{1, 0}, {0.75, 0.25}, {0.5, 0.5}, {0.25, 0.75}, {0, 1}}
	if diff := cmp.Diff(want, warmstart.GenerateWeightVectors(5, 2)); diff != "" {
		t.Errorf("weights mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]warmstart.ObjectiveWeights{{0.5, 0.5}}, warmstart.GenerateWeightVectors(1, 2)); diff != "" {
		t.Errorf("single weight mismatch (-want +got):\n%s", diff)
	}
}

func TestSeedCount(t *testing.T) {
	tests := []struct {
		pop      int
		fraction float64
		want     int
	}{
		{pop: 100, fraction: 0, want: 0},
		{pop: 100, fraction: 0.1, want: 10},
		{pop: 30, fraction: 0.25, want: 8},
		{pop: 10, fraction: 1, want: 10},
		{pop: 0, fraction: 0.5, want: 0},
	}
	for _, tt := range tests {
		if got := warmstart.SeedCount(tt.pop, tt.fraction); got != tt.want {
			t.Errorf("SeedCount(%d, %v) = %d, want %d", tt.pop, tt.fraction, got, tt.want)
		}
	}
}

func TestConstructFollowsWeights(t *testing.T) {
	inst := tradeOffInstance(t, 100, 100)
	g, err := warmstart.NewGCSH(warmstart.GCSHConfig{Instance: inst}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewGCSH: %v", err)
	}

	timeFocused := g.Construct(warmstart.ObjectiveWeights{1, 0})
	if diff := cmp.Diff(framework.Assignment{{1, 1, 1}, {0, 0, 0}}, timeFocused); diff != "" {
		t.Errorf("time-focused assignment mismatch (-want +got):\n%s", diff)
	}
	costFocused := g.Construct(warmstart.ObjectiveWeights{0, 1})
	if diff := cmp.Diff(framework.Assignment{{0, 0, 0}, {1, 1, 1}}, costFocused); diff != "" {
		t.Errorf("cost-focused assignment mismatch (-want +got):\n%s", diff)
	}
}

func TestConstructRespectsCapacity(t *testing.T) {
	inst := tradeOffInstance(t, 5, 5)
	g, err := warmstart.NewGCSH(warmstart.GCSHConfig{Instance: inst}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewGCSH: %v", err)
	}

	a := g.Construct(warmstart.ObjectiveWeights{1, 0})
	if !constraints.Feasible(inst)(a) {
		t.Fatalf("greedy assignment is infeasible: %v", a)
	}
	// one task on each machine fills both; the third fits nowhere
	if got := a.AssignedCount(); got != 2 {
		t.Errorf("AssignedCount = %d, want 2", got)
	}
}

func TestToPositionReproducesPackedAssignment(t *testing.T) {
	inst := tradeOffInstance(t, 6, 3)
	g, err := warmstart.NewGCSH(warmstart.GCSHConfig{Instance: inst}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewGCSH: %v", err)
	}

	a := g.Construct(warmstart.ObjectiveWeights{1, 0})
	pos := g.ToPosition(a)
	for d, k := range pos {
		if k <= 0 || k >= 1 {
			t.Errorf("key %d = %v is outside (0,1)", d, k)
		}
	}

	decoded := decoder.DecodeInstance(inst, pos)
	if !decoded.Equal(a) {
		t.Errorf("decoded %v, want the greedy assignment %v", decoded, a)
	}
}

func TestGenerateInitialPositions(t *testing.T) {
	cfg := benchmarks.Task40()
	inst, err := benchmarks.RandomInstance(cfg, rand.New(rand.NewSource(40)))
	if err != nil {
		t.Fatalf("RandomInstance: %v", err)
	}

	generate := func() [][]float64 {
		g, err := warmstart.NewGCSH(warmstart.GCSHConfig{Instance: inst, Jitter: 0.2}, rand.New(rand.NewSource(7)))
		if err != nil {
			t.Fatalf("NewGCSH: %v", err)
		}
		return g.GenerateInitialPositions(10)
	}

	positions := generate()
	if len(positions) != 10 {
		t.Fatalf("got %d positions, want 10", len(positions))
	}
	feasible := constraints.Feasible(inst)
	for p, pos := range positions {
		if len(pos) != inst.NumTasks() {
			t.Fatalf("position %d has %d keys, want %d", p, len(pos), inst.NumTasks())
		}
		if !feasible(decoder.DecodeInstance(inst, pos)) {
			t.Errorf("position %d decodes to an infeasible assignment", p)
		}
	}

	if diff := cmp.Diff(positions, generate()); diff != "" {
		t.Errorf("positions differ for the same seed (-first +second):\n%s", diff)
	}
}

func TestNewGCSHRejectsBadInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := warmstart.NewGCSH(warmstart.GCSHConfig{}, rng); err == nil {
		t.Error("expected an error for a missing instance")
	}
	inst := tradeOffInstance(t, 10, 10)
	if _, err := warmstart.NewGCSH(warmstart.GCSHConfig{Instance: inst, Jitter: 1}, rng); err == nil {
		t.Error("expected an error for jitter >= 1")
	}
	if _, err := warmstart.NewGCSH(warmstart.GCSHConfig{Instance: inst}, nil); err == nil {
		t.Error("expected an error for a nil random source")
	}
}
