package constraints

import (
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// Constraint reports whether an assignment satisfies some property
type Constraint func(framework.Assignment) bool

// WithinCapacity checks that no machine holds more workload than its capacity
func WithinCapacity(a framework.Assignment, workloads, capacities []float64) bool {
	if len(a) != len(capacities) {
		return false
	}
	for i, row := range a {
		used := 0.0
		for j, x := range row {
			if x == 1 {
				used += workloads[j]
			}
		}
		if used > capacities[i] {
			return false // capacity exceeded
		}
	}
	return true
}

// SingleAssignment checks that every task column sums to at most one
func SingleAssignment(a framework.Assignment) bool {
	for j := 0; j < a.NumTasks(); j++ {
		sum := 0
		for i := range a {
			switch a[i][j] {
			case 0:
			case 1:
				sum++
			default:
				return false // not a 0/1 entry
			}
		}
		if sum > 1 {
			return false
		}
	}
	return true
}

// FullCoverage checks that every task is placed on some machine.
// Decoding does not guarantee this; callers that need complete schedules
// filter archive results with it.
func FullCoverage(a framework.Assignment) bool {
	return len(a.UnassignedTasks()) == 0
}

// ResourceConstraint creates a constraint function that checks machine capacity
func ResourceConstraint(inst *framework.Instance) Constraint {
	workloads := inst.Workloads()
	capacities := inst.Capacities()
	return func(a framework.Assignment) bool {
		return WithinCapacity(a, workloads, capacities)
	}
}

// CombineConstraints combines multiple constraints into one
func CombineConstraints(constraints ...Constraint) Constraint {
	return func(a framework.Assignment) bool {
		for _, constraint := range constraints {
			if !constraint(a) {
				return false
			}
		}
		return true
	}
}

// Feasible is the combination every decoded assignment satisfies
func Feasible(inst *framework.Instance) Constraint {
	return CombineConstraints(ResourceConstraint(inst), SingleAssignment)
}
