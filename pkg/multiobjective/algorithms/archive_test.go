package algorithms_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cloudsched/mobat/pkg/multiobjective/algorithms"
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

func batWith(id int, time, cost float64) *algorithms.Bat {
	b := &algorithms.Bat{ID: id}
	b.SetEvaluation(nil, framework.Fitness{Time: time, Cost: cost})
	return b
}

func memberIDs(a *algorithms.Archive) []int {
	var ids []int
	for _, m := range a.Members() {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestDominates(t *testing.T) {
	tests := []struct {
		name       string
		a, b       framework.Fitness
		strict     bool
		weak       bool
	}{
		{name: "BetterInBoth", a: framework.Fitness{Time: 1, Cost: 1}, b: framework.Fitness{Time: 2, Cost: 2}, strict: true, weak: true},
		{name: "EqualTime", a: framework.Fitness{Time: 1, Cost: 1}, b: framework.Fitness{Time: 1, Cost: 2}, strict: false, weak: true},
		{name: "Identical", a: framework.Fitness{Time: 1, Cost: 1}, b: framework.Fitness{Time: 1, Cost: 1}, strict: false, weak: true},
		{name: "TradeOff", a: framework.Fitness{Time: 1, Cost: 3}, b: framework.Fitness{Time: 2, Cost: 2}, strict: false, weak: false},
		{name: "Worse", a: framework.Fitness{Time: 3, Cost: 3}, b: framework.Fitness{Time: 2, Cost: 2}, strict: false, weak: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := algorithms.Dominates(tt.a, tt.b); got != tt.strict {
				t.Errorf("Dominates() = %v, want %v", got, tt.strict)
			}
			if got := algorithms.WeaklyDominates(tt.a, tt.b); got != tt.weak {
				t.Errorf("WeaklyDominates() = %v, want %v", got, tt.weak)
			}
		})
	}
}

func TestArchiveAdmission(t *testing.T) {
	archive := algorithms.NewArchive()
	if archive.Reference() != nil {
		t.Fatal("empty archive must not have a reference")
	}

	first := batWith(0, 5, 5)
	if out := archive.Update(first); !out.Admitted {
		t.Fatal("first bat should always be admitted")
	}
	if archive.Reference() != first {
		t.Error("reference should be the first admitted bat")
	}

	// trade-off: both stay, reference moves to the newcomer
	second := batWith(1, 3, 8)
	if out := archive.Update(second); !out.Admitted || len(out.Evicted) != 0 {
		t.Errorf("trade-off bat should be admitted without evictions, got %+v", out)
	}
	if archive.Reference() != second {
		t.Error("reference should be the most recently admitted bat")
	}

	// an identical pair is not admitted and the reference does not move
	twin := batWith(2, 3, 8)
	if out := archive.Update(twin); out.Admitted {
		t.Error("bat tying an existing member must not be admitted")
	}
	if archive.Contains(twin) {
		t.Error("membership must be by identity, not by fitness")
	}
	if archive.Reference() != second {
		t.Error("rejected bat must not become the reference")
	}

	// weakly dominated by a member
	worse := batWith(3, 5, 6)
	if out := archive.Update(worse); out.Admitted {
		t.Error("weakly dominated bat must not be admitted")
	}

	if diff := cmp.Diff([]int{0, 1}, memberIDs(archive)); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestArchiveEvictsEveryDominatedMember(t *testing.T) {
	archive := algorithms.NewArchive()
	for i, f := range []framework.Fitness{{Time: 4, Cost: 9}, {Time: 5, Cost: 8}, {Time: 6, Cost: 7}, {Time: 1, Cost: 20}} {
		archive.Update(batWith(i, f.Time, f.Cost))
	}
	if archive.Len() != 4 {
		t.Fatalf("expected 4 mutually non-dominated members, got %d", archive.Len())
	}

	// dominates the three consecutive members; a naive in-place removal would skip one
	strong := batWith(10, 3, 6)
	out := archive.Update(strong)
	if !out.Admitted {
		t.Fatal("dominating bat should be admitted")
	}
	if diff := cmp.Diff([]int{0, 1, 2}, out.Evicted); diff != "" {
		t.Errorf("evicted mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3, 10}, memberIDs(archive)); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestArchiveMemberRecheck(t *testing.T) {
	archive := algorithms.NewArchive()
	older := batWith(0, 5, 4)
	newer := batWith(1, 5, 3)

	archive.Update(older)
	// same time, lower cost: admitted, but does not strictly dominate the older member
	if out := archive.Update(newer); !out.Admitted || len(out.Evicted) != 0 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if archive.Len() != 2 {
		t.Fatalf("expected both bats in the archive, got %d", archive.Len())
	}

	// next generation: the older member is re-checked and falls out
	if out := archive.Update(older); !out.Dropped {
		t.Error("member beaten on cost at equal time should be dropped")
	}
	if archive.Contains(older) {
		t.Error("dropped bat is still a member")
	}

	// the surviving member stays on re-check
	if out := archive.Update(newer); out.Dropped || out.Admitted {
		t.Errorf("surviving member changed state: %+v", out)
	}
	if archive.Reference() != newer {
		t.Error("reference should still be the newer bat")
	}
}

func TestArchiveMemberWithEqualFitnessStays(t *testing.T) {
	archive := algorithms.NewArchive()
	a := batWith(0, 2, 2)
	archive.Update(a)
	archive.Update(batWith(1, 1, 3))

	if out := archive.Update(a); out.Dropped {
		t.Error("member should not be dropped by a trade-off peer")
	}
}

func TestArchiveResultsAndFront(t *testing.T) {
	archive := algorithms.NewArchive()
	b0 := batWith(0, 7, 8)
	b0.Assignment = framework.Assignment{{0, 1}, {1, 0}}
	b1 := batWith(1, 3, 9)
	b1.Assignment = framework.Assignment{{1, 0}, {0, 1}}
	archive.Update(b0)
	archive.Update(b1)

	results := archive.Results()
	if len(results) != 2 || results[0].BatID != 0 || results[1].BatID != 1 {
		t.Fatalf("unexpected results %+v", results)
	}
	// results are snapshots
	results[0].Assignment[0][0] = 1
	if b0.Assignment[0][0] != 0 {
		t.Error("Results must deep copy assignments")
	}

	want := []framework.Fitness{{Time: 3, Cost: 9}, {Time: 7, Cost: 8}}
	if diff := cmp.Diff(want, archive.Front()); diff != "" {
		t.Errorf("front mismatch (-want +got):\n%s", diff)
	}
}
