package cost

import (
	"sort"

	"k8s.io/klog/v2"

	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// BestFitDecreasing builds a cheap baseline schedule: tasks are visited by
// decreasing workload and each goes to the cheapest machine that still has
// room for it, ties going to the tighter fit. The result is a reference
// point for reports, not a bound.
func BestFitDecreasing(inst *framework.Instance) (float64, framework.Assignment) {
	solution := framework.NewAssignment(inst.NumMachines(), inst.NumTasks())
	if inst.NumMachines() == 0 || inst.NumTasks() == 0 {
		return 0, solution
	}

	type indexedTask struct {
		idx      int
		workload float64
	}
	tasks := make([]indexedTask, inst.NumTasks())
	for j, t := range inst.Tasks {
		tasks[j] = indexedTask{idx: j, workload: t.Workload}
	}

	// Sort by size descending (largest tasks first)
	sort.SliceStable(tasks, func(a, b int) bool {
		return tasks[a].workload > tasks[b].workload
	})

	remaining := inst.Capacities()

	unplaced := 0
	for _, task := range tasks {
		best := -1
		for i := range remaining {
			if remaining[i] < task.workload {
				continue
			}
			if best == -1 {
				best = i
				continue
			}
			c, bc := inst.Costs[i][task.idx], inst.Costs[best][task.idx]
			if c < bc || (c == bc && remaining[i] < remaining[best]) {
				best = i
			}
		}
		if best == -1 {
			unplaced++
			continue
		}
		solution[best][task.idx] = 1
		remaining[best] -= task.workload
	}

	if unplaced > 0 {
		klog.V(3).InfoS("Best fit baseline left tasks unassigned", "unassigned", unplaced)
	}

	return TotalCost(solution, inst.Costs), solution
}
