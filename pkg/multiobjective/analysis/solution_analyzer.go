// Package analysis summarizes archived solutions: task coverage, per-machine
// load, hypervolume of the front and weighted rankings for picking a
// compromise schedule.
package analysis

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/cloudsched/mobat/pkg/multiobjective/algorithms"
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
	"github.com/cloudsched/mobat/pkg/multiobjective/objectives/completiontime"
	"github.com/cloudsched/mobat/pkg/multiobjective/objectives/cost"
)

// MachineLoad describes what one machine carries in a solution
type MachineLoad struct {
	Machine        int
	Name           string
	Tasks          int
	Workload       float64
	Capacity       float64
	Utilization    float64 // workload / capacity, 0 for zero-capacity machines
	CompletionTime float64
	Cost           float64
}

// SolutionResult is the breakdown of one archived solution
type SolutionResult struct {
	BatID           int
	Fitness         framework.Fitness
	Makespan        float64
	Assigned        int
	UnassignedTasks []int
	Complete        bool
	Machines        []MachineLoad
	WeightedScore   float64
}

// Report summarizes a whole archive
type Report struct {
	// Solutions are sorted by ascending completion time, then cost
	Solutions     []SolutionResult
	CompleteCount int
	Reference     framework.Fitness
	Hypervolume   float64
	// Baseline is the best-fit-decreasing schedule's fitness
	Baseline         framework.Fitness
	BaselineComplete bool
}

// AnalyzeSolution breaks one result down per machine
func AnalyzeSolution(inst *framework.Instance, r algorithms.Result) SolutionResult {
	unassigned := r.Assignment.UnassignedTasks()
	res := SolutionResult{
		BatID:           r.BatID,
		Fitness:         r.Fitness,
		Makespan:        completiontime.Makespan(r.Assignment, inst.Times),
		Assigned:        r.Assignment.AssignedCount(),
		UnassignedTasks: unassigned,
		Complete:        len(unassigned) == 0,
	}

	completion := completiontime.PerMachine(r.Assignment, inst.Times)
	costs := cost.PerMachine(r.Assignment, inst.Costs)
	res.Machines = make([]MachineLoad, inst.NumMachines())
	for i, m := range inst.Machines {
		load := MachineLoad{
			Machine:        i,
			Name:           inst.MachineName(i),
			Capacity:       m.Capacity,
			CompletionTime: completion[i],
			Cost:           costs[i],
		}
		for j, x := range r.Assignment[i] {
			if x == 1 {
				load.Tasks++
				load.Workload += inst.Tasks[j].Workload
			}
		}
		if m.Capacity > 0 {
			load.Utilization = load.Workload / m.Capacity
		}
		res.Machines[i] = load
	}
	return res
}

// Analyze builds a report over archived results
func Analyze(inst *framework.Instance, results []algorithms.Result) Report {
	var report Report
	front := make([]framework.Fitness, 0, len(results))
	for _, r := range results {
		sr := AnalyzeSolution(inst, r)
		if sr.Complete {
			report.CompleteCount++
		}
		report.Solutions = append(report.Solutions, sr)
		front = append(front, r.Fitness)
	}
	sort.SliceStable(report.Solutions, func(i, j int) bool {
		a, b := report.Solutions[i].Fitness, report.Solutions[j].Fitness
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.Cost < b.Cost
	})

	baselineCost, baseline := cost.BestFitDecreasing(inst)
	report.Baseline = framework.Fitness{
		Time: completiontime.AggregateCompletionTime(baseline, inst.Times),
		Cost: baselineCost,
	}
	report.BaselineComplete = len(baseline.UnassignedTasks()) == 0

	report.Reference = ReferencePoint(append(front, report.Baseline))
	report.Hypervolume = Hypervolume(front, report.Reference)
	return report
}

// ReferencePoint returns the nadir of the points pushed out by 10% so that
// boundary points still contribute volume
func ReferencePoint(points []framework.Fitness) framework.Fitness {
	var ref framework.Fitness
	for _, p := range points {
		ref.Time = max(ref.Time, p.Time)
		ref.Cost = max(ref.Cost, p.Cost)
	}
	return framework.Fitness{Time: ref.Time*1.1 + 1e-9, Cost: ref.Cost*1.1 + 1e-9}
}

// Hypervolume computes the area dominated by the points and bounded by ref,
// both objectives minimized. Points not strictly better than ref in both
// objectives add nothing.
func Hypervolume(points []framework.Fitness, ref framework.Fitness) float64 {
	var inside []framework.Fitness
	for _, p := range points {
		if p.Time < ref.Time && p.Cost < ref.Cost {
			inside = append(inside, p)
		}
	}
	algorithms.SortFront(inside)

	hv := 0.0
	prevCost := ref.Cost
	for _, p := range inside {
		if p.Cost < prevCost {
			hv += (ref.Time - p.Time) * (prevCost - p.Cost)
			prevCost = p.Cost
		}
	}
	return hv
}

// Rank orders the report's solutions by a weighted sum of min-max normalized
// objectives (lower is better) and stores each score. Incomplete solutions
// are ranked after complete ones when completeFirst is set.
func Rank(report *Report, timeWeight, costWeight float64, completeFirst bool) []SolutionResult {
	if len(report.Solutions) == 0 {
		return nil
	}
	minT, maxT := report.Solutions[0].Fitness.Time, report.Solutions[0].Fitness.Time
	minC, maxC := report.Solutions[0].Fitness.Cost, report.Solutions[0].Fitness.Cost
	for _, s := range report.Solutions {
		minT, maxT = min(minT, s.Fitness.Time), max(maxT, s.Fitness.Time)
		minC, maxC = min(minC, s.Fitness.Cost), max(maxC, s.Fitness.Cost)
	}
	norm := func(v, lo, hi float64) float64 {
		if hi == lo {
			return 0
		}
		return (v - lo) / (hi - lo)
	}
	for i := range report.Solutions {
		f := report.Solutions[i].Fitness
		report.Solutions[i].WeightedScore = timeWeight*norm(f.Time, minT, maxT) + costWeight*norm(f.Cost, minC, maxC)
	}

	ranked := append([]SolutionResult(nil), report.Solutions...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if completeFirst && ranked[i].Complete != ranked[j].Complete {
			return ranked[i].Complete
		}
		return ranked[i].WeightedScore < ranked[j].WeightedScore
	})
	return ranked
}

// Print writes the report as aligned tables
func (r Report) Print(w io.Writer) error {
	fmt.Fprintf(w, "Non-dominated solutions in the archive: %d (%d assign every task)\n", len(r.Solutions), r.CompleteCount)
	fmt.Fprintf(w, "Hypervolume: %.4f (reference time=%.4f cost=%.4f)\n", r.Hypervolume, r.Reference.Time, r.Reference.Cost)
	fmt.Fprintf(w, "Best-fit baseline: time=%.4f cost=%.4f complete=%v\n\n", r.Baseline.Time, r.Baseline.Cost, r.BaselineComplete)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BAT\tCOMPLETION TIME\tTOTAL COST\tMAKESPAN\tASSIGNED\tUNASSIGNED")
	for _, s := range r.Solutions {
		fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%.4f\t%d\t%d\n",
			s.BatID, s.Fitness.Time, s.Fitness.Cost, s.Makespan, s.Assigned, len(s.UnassignedTasks))
	}
	return tw.Flush()
}
