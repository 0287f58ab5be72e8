package benchmarks

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// GeneratorConfig describes a family of random heterogeneous cluster instances.
// Workloads are in 10^9 instructions, machine rates in MIPS. Capacity is the
// rate divided by CapacityWindow, execution time is workload*1000/rate and
// cost is time times the machine's price.
type GeneratorConfig struct {
	Name     string
	Tasks    int
	Machines int

	WorkloadMin, WorkloadMax float64
	MIPSMin, MIPSMax         float64
	PriceMin, PriceMax       float64
	CapacityWindow           float64
}

// Task40 mirrors the small reference scenario
func Task40() GeneratorConfig {
	return GeneratorConfig{
		Name:           "task40",
		Tasks:          40,
		Machines:       10,
		WorkloadMin:    10,
		WorkloadMax:    60,
		MIPSMin:        500,
		MIPSMax:        3000,
		PriceMin:       0.0001,
		PriceMax:       0.001,
		CapacityWindow: 10,
	}
}

// Task120 mirrors the large reference scenario
func Task120() GeneratorConfig {
	cfg := Task40()
	cfg.Name = "task120"
	cfg.Tasks = 120
	cfg.Machines = 20
	return cfg
}

// Validate checks the generator bounds
func (c GeneratorConfig) Validate() error {
	if c.Tasks <= 0 || c.Machines <= 0 {
		return fmt.Errorf("tasks and machines must be > 0 (got %d, %d)", c.Tasks, c.Machines)
	}
	if c.WorkloadMin < 0 || c.WorkloadMax < c.WorkloadMin {
		return fmt.Errorf("invalid workload bounds [%v, %v]", c.WorkloadMin, c.WorkloadMax)
	}
	if c.MIPSMin <= 0 || c.MIPSMax < c.MIPSMin {
		return fmt.Errorf("invalid MIPS bounds [%v, %v]", c.MIPSMin, c.MIPSMax)
	}
	if c.PriceMin < 0 || c.PriceMax < c.PriceMin {
		return fmt.Errorf("invalid price bounds [%v, %v]", c.PriceMin, c.PriceMax)
	}
	if c.CapacityWindow <= 0 {
		return fmt.Errorf("capacity window must be > 0 (got %v)", c.CapacityWindow)
	}
	return nil
}

// RandomInstance draws an instance from the generator configuration
func RandomInstance(cfg GeneratorConfig, rng *rand.Rand) (*framework.Instance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is nil")
	}
	draw := func(lo, hi float64) float64 {
		return lo + rng.Float64()*(hi-lo)
	}

	tasks := make([]framework.TaskInfo, cfg.Tasks)
	for j := range tasks {
		tasks[j] = framework.TaskInfo{
			Idx:      j,
			Name:     fmt.Sprintf("task-%d", j),
			Workload: draw(cfg.WorkloadMin, cfg.WorkloadMax),
		}
	}

	machines := make([]framework.MachineInfo, cfg.Machines)
	mips := make([]float64, cfg.Machines)
	price := make([]float64, cfg.Machines)
	for i := range machines {
		mips[i] = draw(cfg.MIPSMin, cfg.MIPSMax)
		price[i] = draw(cfg.PriceMin, cfg.PriceMax)
		machines[i] = framework.MachineInfo{
			Idx:      i,
			Name:     fmt.Sprintf("vm-%d", i),
			Capacity: mips[i] / cfg.CapacityWindow,
		}
	}

	times := make(framework.Matrix, cfg.Machines)
	costs := make(framework.Matrix, cfg.Machines)
	for i := range times {
		times[i] = make([]float64, cfg.Tasks)
		costs[i] = make([]float64, cfg.Tasks)
		for j := range tasks {
			times[i][j] = tasks[j].Workload * 1000 / mips[i]
			costs[i][j] = times[i][j] * price[i]
		}
	}

	return framework.NewInstance(tasks, machines, times, costs)
}
