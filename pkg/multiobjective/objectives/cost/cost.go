package cost

import (
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// CostObjective creates a cost objective function compatible with the framework.
// The returned function sums the cost matrix entries of every assigned
// (machine, task) pair.
func CostObjective(inst *framework.Instance) framework.ObjectiveFunc {
	costs := inst.Costs
	return func(a framework.Assignment) float64 {
		return TotalCost(a, costs)
	}
}

// TotalCost sums costs[i][j] over all pairs with a[i][j] == 1.
// It is zero only when nothing is assigned (given positive costs).
func TotalCost(a framework.Assignment, costs framework.Matrix) float64 {
	total := 0.0
	for i, row := range a {
		for j, x := range row {
			if x == 1 {
				total += costs[i][j]
			}
		}
	}
	return total
}

// PerMachine returns the cost accumulated on each machine
func PerMachine(a framework.Assignment, costs framework.Matrix) []float64 {
	out := make([]float64, len(a))
	for i, row := range a {
		for j, x := range row {
			if x == 1 {
				out[i] += costs[i][j]
			}
		}
	}
	return out
}
