// Package decoder turns a continuous position vector into a discrete,
// capacity-respecting task to machine assignment.
//
// The position is a random-key encoding: only the relative order of its
// entries matters. Tasks are visited in ascending key order (ties keep the
// original task order) and each one is placed first-fit on the lowest indexed
// machine that still has room for it.
package decoder

import (
	"sort"

	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// VisitOrder returns the task indices sorted by ascending position value.
// The sort is stable so equal keys keep their index order.
func VisitOrder(position []float64) []int {
	order := make([]int, len(position))
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return position[order[a]] < position[order[b]]
	})
	return order
}

// Decode maps a position to an assignment matrix of shape
// len(capacities) x len(workloads). It is pure: identical arguments always
// produce an identical matrix. Tasks that fit nowhere stay unassigned.
func Decode(position, workloads, capacities []float64) framework.Assignment {
	solution := framework.NewAssignment(len(capacities), len(workloads))
	assigned := make([]float64, len(capacities))

	for _, task := range VisitOrder(position) {
		w := workloads[task]
		for vm, c := range capacities {
			// machines too small for the task on their own are never candidates
			if c < w {
				continue
			}
			if assigned[vm]+w <= c {
				solution[vm][task] = 1
				assigned[vm] += w
				break
			}
		}
	}
	return solution
}

// DecodeInstance decodes a position against an instance's workloads and capacities
func DecodeInstance(inst *framework.Instance, position []float64) framework.Assignment {
	return Decode(position, inst.Workloads(), inst.Capacities())
}
