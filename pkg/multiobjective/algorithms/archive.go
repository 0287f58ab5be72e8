package algorithms

import (
	"sort"

	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// Dominates checks if a is strictly better than b in both objectives
func Dominates(a, b framework.Fitness) bool {
	return a.Time < b.Time && a.Cost < b.Cost
}

// WeaklyDominates checks if a is at least as good as b in both objectives
func WeaklyDominates(a, b framework.Fitness) bool {
	return a.Time <= b.Time && a.Cost <= b.Cost
}

// Result is an archived solution as handed to callers
type Result struct {
	BatID      int
	Assignment framework.Assignment
	Fitness    framework.Fitness
}

// UpdateOutcome describes what a single Archive.Update changed
type UpdateOutcome struct {
	Admitted bool
	// Evicted lists the IDs of members removed because the candidate dominated them
	Evicted []int
	// Dropped is set when an existing member fell out of the frontier
	Dropped bool
}

// Archive keeps the bats found mutually non-dominated so far. Membership is
// by bat identity. The reference is the most recently admitted bat.
type Archive struct {
	members   []*Bat
	index     map[int]struct{}
	reference *Bat
}

// NewArchive returns an empty archive with no reference
func NewArchive() *Archive {
	return &Archive{index: make(map[int]struct{})}
}

// Contains reports whether this exact bat is a member
func (a *Archive) Contains(b *Bat) bool {
	_, ok := a.index[b.ID]
	return ok
}

// Len returns the number of members
func (a *Archive) Len() int {
	return len(a.members)
}

// Members returns the members in admission order. The slice is a copy.
func (a *Archive) Members() []*Bat {
	return append([]*Bat(nil), a.members...)
}

// Reference returns the most recently admitted bat, or nil before the first admission.
// The reference is not cleared if that bat later leaves the archive.
func (a *Archive) Reference() *Bat {
	return a.reference
}

// Update folds an evaluated bat into the archive.
//
// A bat that is not a member evicts every member it strictly dominates and is
// admitted unless some member is at least as good in both objectives. A bat
// that is already a member is dropped when another member is at least as good
// in both objectives with a different fitness pair.
//
// Removals are collected during the scan and applied afterwards, so every
// member is compared exactly once.
func (a *Archive) Update(b *Bat) UpdateOutcome {
	var out UpdateOutcome

	if a.Contains(b) {
		for _, other := range a.members {
			if other.ID == b.ID {
				continue
			}
			if WeaklyDominates(other.Fitness, b.Fitness) && other.Fitness != b.Fitness {
				out.Dropped = true
				break
			}
		}
		if out.Dropped {
			a.remove(map[int]struct{}{b.ID: {}})
		}
		return out
	}

	dominated := false
	evict := make(map[int]struct{})
	for _, other := range a.members {
		if Dominates(b.Fitness, other.Fitness) {
			evict[other.ID] = struct{}{}
			out.Evicted = append(out.Evicted, other.ID)
		} else if WeaklyDominates(other.Fitness, b.Fitness) {
			dominated = true
		}
	}
	if len(evict) > 0 {
		a.remove(evict)
	}

	if !dominated {
		a.members = append(a.members, b)
		a.index[b.ID] = struct{}{}
		a.reference = b
		out.Admitted = true
	}
	return out
}

func (a *Archive) remove(ids map[int]struct{}) {
	kept := a.members[:0]
	for _, m := range a.members {
		if _, drop := ids[m.ID]; drop {
			delete(a.index, m.ID)
			continue
		}
		kept = append(kept, m)
	}
	// clear the tail so removed bats are not pinned by the backing array
	for i := len(kept); i < len(a.members); i++ {
		a.members[i] = nil
	}
	a.members = kept
}

// Results snapshots the members as results in admission order
func (a *Archive) Results() []Result {
	results := make([]Result, len(a.members))
	for i, m := range a.members {
		results[i] = Result{
			BatID:      m.ID,
			Assignment: m.Assignment.Clone(),
			Fitness:    m.Fitness,
		}
	}
	return results
}

// Front returns the members' fitness pairs sorted by ascending time, then cost
func (a *Archive) Front() []framework.Fitness {
	front := make([]framework.Fitness, len(a.members))
	for i, m := range a.members {
		front[i] = m.Fitness
	}
	SortFront(front)
	return front
}

// SortFront orders fitness pairs by ascending time, then ascending cost
func SortFront(front []framework.Fitness) {
	sort.SliceStable(front, func(i, j int) bool {
		if front[i].Time != front[j].Time {
			return front[i].Time < front[j].Time
		}
		return front[i].Cost < front[j].Cost
	})
}
