// Package completiontime implements the time objective.
//
// Each machine's completion time is the sum of the execution times of the
// tasks placed on it. The objective then sums those completion times across
// machines. This is a total (weighted) completion time rather than a
// critical-path makespan, which would take the maximum instead; the sum is
// the contract callers rely on. Use Makespan when the maximum is wanted for
// reporting.
package completiontime

import (
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// CompletionTimeObjective creates the aggregate completion time objective for an instance
func CompletionTimeObjective(inst *framework.Instance) framework.ObjectiveFunc {
	times := inst.Times
	return func(a framework.Assignment) float64 {
		return AggregateCompletionTime(a, times)
	}
}

// AggregateCompletionTime sums per-machine completion times
func AggregateCompletionTime(a framework.Assignment, times framework.Matrix) float64 {
	total := 0.0
	for _, c := range PerMachine(a, times) {
		total += c
	}
	return total
}

// PerMachine returns the completion time of every machine
func PerMachine(a framework.Assignment, times framework.Matrix) []float64 {
	completion := make([]float64, len(a))
	for i, row := range a {
		for j, x := range row {
			if x == 1 {
				completion[i] += times[i][j]
			}
		}
	}
	return completion
}

// Makespan returns the largest per-machine completion time
func Makespan(a framework.Assignment, times framework.Matrix) float64 {
	max := 0.0
	for _, c := range PerMachine(a, times) {
		if c > max {
			max = c
		}
	}
	return max
}
