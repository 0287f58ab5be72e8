// Package warmstart provides a Greedy Constructive State Heuristic (GCSH) for
// seeding part of the initial bat population.
//
// GCSH builds one greedy assignment per weight vector, sweeping from
// time-focused to cost-focused, and turns each into a vector of priority keys
// in [0,1]. Decoding such a key vector visits tasks grouped by the machine the
// greedy pass chose, so first-fit lands close to the greedy assignment.
package warmstart

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"

	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// ObjectiveWeights defines the weights for objectives: [time, cost]
type ObjectiveWeights []float64

// GCSHConfig contains configuration for the Greedy Constructive State Heuristic
type GCSHConfig struct {
	Instance *framework.Instance
	// Jitter scales a random factor in [1-Jitter, 1+Jitter] applied to task
	// sizes before ordering, so equal weights still yield different keys
	Jitter float64
}

// GenerateWeightVectors creates evenly distributed weight vectors
func GenerateWeightVectors(count int, numObjectives int) []ObjectiveWeights {
	weights := make([]ObjectiveWeights, count)

	for i := 0; i < count; i++ {
		weights[i] = make(ObjectiveWeights, numObjectives)

		if count == 1 || numObjectives != 2 {
			// Single weight - equal distribution
			for j := 0; j < numObjectives; j++ {
				weights[i][j] = 1.0 / float64(numObjectives)
			}
		} else {
			t := float64(i) / float64(count-1)
			weights[i][0] = 1.0 - t
			weights[i][1] = t
		}
	}

	return weights
}

// SeedCount returns how many of popSize bats a warm-start fraction seeds
func SeedCount(popSize int, fraction float64) int {
	if fraction <= 0 || popSize <= 0 {
		return 0
	}
	return min(popSize, int(math.Round(fraction*float64(popSize))))
}

// GCSH implements the Greedy Constructive State Heuristic
type GCSH struct {
	config GCSHConfig
	rng    *rand.Rand

	// column-normalized matrices so both objectives weigh on the same scale
	normTimes framework.Matrix
	normCosts framework.Matrix
}

// NewGCSH creates a new GCSH instance
func NewGCSH(config GCSHConfig, rng *rand.Rand) (*GCSH, error) {
	if err := config.Instance.Validate(); err != nil {
		return nil, err
	}
	if config.Jitter < 0 || config.Jitter >= 1 {
		return nil, fmt.Errorf("jitter must be in [0, 1) (got %v)", config.Jitter)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is nil")
	}
	return &GCSH{
		config:    config,
		rng:       rng,
		normTimes: normalize(config.Instance.Times),
		normCosts: normalize(config.Instance.Costs),
	}, nil
}

// normalize divides every entry by its task column's maximum
func normalize(m framework.Matrix) framework.Matrix {
	out := make(framework.Matrix, len(m))
	for i := range m {
		out[i] = make([]float64, len(m[i]))
	}
	if len(m) == 0 {
		return out
	}
	for j := range m[0] {
		colMax := 0.0
		for i := range m {
			colMax = max(colMax, m[i][j])
		}
		for i := range m {
			if colMax > 0 {
				out[i][j] = m[i][j] / colMax
			}
		}
	}
	return out
}

// GenerateInitialPositions creates count priority-key vectors, one per weight vector
func (g *GCSH) GenerateInitialPositions(count int) [][]float64 {
	if count <= 0 {
		return nil
	}
	weightVectors := GenerateWeightVectors(count, 2)

	positions := make([][]float64, count)
	unique := make(map[string]struct{})
	for i, w := range weightVectors {
		a := g.Construct(w)
		unique[fmt.Sprintf("%v", a)] = struct{}{}
		positions[i] = g.ToPosition(a)
	}

	klog.V(2).InfoS("GCSH generated initial positions", "count", count, "uniqueAssignments", len(unique))
	return positions
}

// Construct builds an assignment greedily: tasks from largest to smallest
// (jittered), each on the machine with room that minimizes the weighted
// normalized time and cost it adds. Tasks that fit nowhere stay unassigned.
func (g *GCSH) Construct(weights ObjectiveWeights) framework.Assignment {
	inst := g.config.Instance
	a := framework.NewAssignment(inst.NumMachines(), inst.NumTasks())

	type taskWithPriority struct {
		index    int
		priority float64
	}
	tasks := make([]taskWithPriority, inst.NumTasks())
	for j, t := range inst.Tasks {
		jitter := 1.0
		if g.config.Jitter > 0 {
			jitter = 1 - g.config.Jitter + g.rng.Float64()*2*g.config.Jitter
		}
		tasks[j] = taskWithPriority{index: j, priority: t.Workload * jitter}
	}
	sort.SliceStable(tasks, func(x, y int) bool {
		return tasks[x].priority > tasks[y].priority
	})

	remaining := inst.Capacities()
	for _, tp := range tasks {
		j := tp.index
		w := inst.Tasks[j].Workload
		bestMachine := -1
		bestScore := math.Inf(1)

		for i := range remaining {
			if remaining[i] < w {
				continue
			}
			if score := g.greedyScore(i, j, weights); score < bestScore {
				bestScore = score
				bestMachine = i
			}
		}

		if bestMachine == -1 {
			klog.V(4).InfoS("GCSH could not place task", "task", j, "workload", w)
			continue
		}
		a[bestMachine][j] = 1
		remaining[bestMachine] -= w
	}

	return a
}

// greedyScore is the weighted normalized cost of running task j on machine i
func (g *GCSH) greedyScore(i, j int, weights ObjectiveWeights) float64 {
	score := 0.0
	if len(weights) > 0 {
		score += weights[0] * g.normTimes[i][j]
	}
	if len(weights) > 1 {
		score += weights[1] * g.normCosts[i][j]
	}
	return score
}

// ToPosition encodes an assignment as priority keys, see EncodeAssignment
func (g *GCSH) ToPosition(a framework.Assignment) []float64 {
	return EncodeAssignment(g.config.Instance, a)
}

// EncodeAssignment turns an assignment into priority keys in (0,1): tasks on
// machine 0 first, then machine 1 and so on, larger workloads first within a
// machine, unassigned tasks last.
func EncodeAssignment(inst *framework.Instance, a framework.Assignment) []float64 {
	n := inst.NumTasks()
	order := make([]int, n)
	group := make([]int, n)
	for j := range order {
		order[j] = j
		if i, ok := a.MachineOf(j); ok {
			group[j] = i
		} else {
			group[j] = inst.NumMachines()
		}
	}
	sort.SliceStable(order, func(x, y int) bool {
		jx, jy := order[x], order[y]
		if group[jx] != group[jy] {
			return group[jx] < group[jy]
		}
		return inst.Tasks[jx].Workload > inst.Tasks[jy].Workload
	})

	position := make([]float64, n)
	for rank, j := range order {
		position[j] = (float64(rank) + 0.5) / float64(n)
	}
	return position
}
