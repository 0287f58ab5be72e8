package framework

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInstance is returned when a problem instance fails validation
var ErrInvalidInstance = errors.New("invalid problem instance")

// TaskInfo contains task information for optimization
type TaskInfo struct {
	Idx      int
	Name     string
	Workload float64 // instruction count
}

// MachineInfo contains machine information for optimization
type MachineInfo struct {
	Idx      int
	Name     string
	Capacity float64 // workload units processable per time window
}

// Matrix is a machine-major table: m[i][j] is the entry for machine i and task j.
type Matrix [][]float64

// ObjectiveSpacePoint represents an N-dimensional point in the objective space.
// For this problem a point is [aggregate completion time, total cost].
type ObjectiveSpacePoint []float64

// Fitness is the objective pair of an evaluated assignment. Both are minimized.
type Fitness struct {
	Time float64
	Cost float64
}

// Point returns the fitness as an objective space point
func (f Fitness) Point() ObjectiveSpacePoint {
	return ObjectiveSpacePoint{f.Time, f.Cost}
}

// ObjectiveFunc scores an assignment
type ObjectiveFunc func(Assignment) float64

// Instance is an immutable description of tasks, machines and the
// precomputed execution time and cost matrices.
type Instance struct {
	Tasks    []TaskInfo
	Machines []MachineInfo
	Times    Matrix
	Costs    Matrix
}

// NewInstance builds and validates an instance
func NewInstance(tasks []TaskInfo, machines []MachineInfo, times, costs Matrix) (*Instance, error) {
	inst := &Instance{Tasks: tasks, Machines: machines, Times: times, Costs: costs}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// Validate checks matrix dimensions, that every value is non-negative and
// that task and machine names are unique
func (inst *Instance) Validate() error {
	if inst == nil {
		return fmt.Errorf("%w: instance is nil", ErrInvalidInstance)
	}
	if len(inst.Tasks) == 0 {
		return fmt.Errorf("%w: no tasks", ErrInvalidInstance)
	}
	if len(inst.Machines) == 0 {
		return fmt.Errorf("%w: no machines", ErrInvalidInstance)
	}
	for j, t := range inst.Tasks {
		if !nonNegative(t.Workload) {
			return fmt.Errorf("%w: task %d workload must be >= 0 (got %v)", ErrInvalidInstance, j, t.Workload)
		}
	}
	for i, m := range inst.Machines {
		if !nonNegative(m.Capacity) {
			return fmt.Errorf("%w: machine %d capacity must be >= 0 (got %v)", ErrInvalidInstance, i, m.Capacity)
		}
	}
	if err := uniqueNames("task", len(inst.Tasks), inst.TaskName); err != nil {
		return err
	}
	if err := uniqueNames("machine", len(inst.Machines), inst.MachineName); err != nil {
		return err
	}
	if err := validateMatrix("times", inst.Times, len(inst.Machines), len(inst.Tasks)); err != nil {
		return err
	}
	return validateMatrix("costs", inst.Costs, len(inst.Machines), len(inst.Tasks))
}

func validateMatrix(name string, m Matrix, rows, cols int) error {
	if len(m) != rows {
		return fmt.Errorf("%w: %s must have %d machine rows (got %d)", ErrInvalidInstance, name, rows, len(m))
	}
	for i, row := range m {
		if len(row) != cols {
			return fmt.Errorf("%w: %s row %d must have %d task columns (got %d)", ErrInvalidInstance, name, i, cols, len(row))
		}
		for j, v := range row {
			if !nonNegative(v) {
				return fmt.Errorf("%w: %s[%d][%d] must be >= 0 (got %v)", ErrInvalidInstance, name, i, j, v)
			}
		}
	}
	return nil
}

// uniqueNames rejects two entries sharing a name. Schedules refer to tasks and
// machines by name.
func uniqueNames(kind string, n int, name func(int) string) error {
	seen := make(map[string]int, n)
	for k := 0; k < n; k++ {
		if prev, ok := seen[name(k)]; ok {
			return fmt.Errorf("%w: %s %d and %s %d share the name %q", ErrInvalidInstance, kind, prev, kind, k, name(k))
		}
		seen[name(k)] = k
	}
	return nil
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && v >= 0
}

// NumTasks returns the task count, which is also the position dimension
func (inst *Instance) NumTasks() int {
	return len(inst.Tasks)
}

// NumMachines returns the machine count
func (inst *Instance) NumMachines() int {
	return len(inst.Machines)
}

// TaskName returns the name of task j, task-<j> when it has none
func (inst *Instance) TaskName(j int) string {
	if name := inst.Tasks[j].Name; name != "" {
		return name
	}
	return fmt.Sprintf("task-%d", j)
}

// MachineName returns the name of machine i, vm-<i> when it has none
func (inst *Instance) MachineName(i int) string {
	if name := inst.Machines[i].Name; name != "" {
		return name
	}
	return fmt.Sprintf("vm-%d", i)
}

// Workloads returns the task workloads in task order
func (inst *Instance) Workloads() []float64 {
	w := make([]float64, len(inst.Tasks))
	for j, t := range inst.Tasks {
		w[j] = t.Workload
	}
	return w
}

// Capacities returns the machine capacities in machine order
func (inst *Instance) Capacities() []float64 {
	c := make([]float64, len(inst.Machines))
	for i, m := range inst.Machines {
		c[i] = m.Capacity
	}
	return c
}
