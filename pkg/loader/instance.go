// Package loader reads problem instances from xlsx workbooks and from YAML or
// JSON instance files.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// InstanceFile is the YAML/JSON form of an instance
type InstanceFile struct {
	Tasks    []TaskSpec    `json:"tasks"`
	Machines []MachineSpec `json:"machines"`
	// Times and Costs have one row per machine and one column per task
	Times [][]float64 `json:"times"`
	Costs [][]float64 `json:"costs"`
}

// TaskSpec describes a task
type TaskSpec struct {
	Name     string  `json:"name,omitempty"`
	Workload float64 `json:"workload"`
}

// MachineSpec describes a machine. Capacity wins over MIPS when both are set.
type MachineSpec struct {
	Name     string  `json:"name,omitempty"`
	Capacity float64 `json:"capacity,omitempty"`
	MIPS     float64 `json:"mips,omitempty"`
}

// ToInstance builds a validated instance. capacityWindow converts MIPS rates
// into capacities for machines that give no capacity.
func (f *InstanceFile) ToInstance(capacityWindow float64) (*framework.Instance, error) {
	tasks := make([]framework.TaskInfo, len(f.Tasks))
	for j, t := range f.Tasks {
		tasks[j] = framework.TaskInfo{Idx: j, Name: nameOr(t.Name, "task", j), Workload: t.Workload}
	}

	machines := make([]framework.MachineInfo, len(f.Machines))
	for i, m := range f.Machines {
		capacity := m.Capacity
		if capacity == 0 && m.MIPS != 0 {
			if !(capacityWindow > 0) {
				return nil, fmt.Errorf("machine %d: capacity window must be > 0 to convert MIPS (got %v)", i, capacityWindow)
			}
			capacity = m.MIPS / capacityWindow
		}
		machines[i] = framework.MachineInfo{Idx: i, Name: nameOr(m.Name, "vm", i), Capacity: capacity}
	}

	return framework.NewInstance(tasks, machines, toMatrix(f.Times), toMatrix(f.Costs))
}

func toMatrix(rows [][]float64) framework.Matrix {
	m := make(framework.Matrix, len(rows))
	for i, row := range rows {
		m[i] = append([]float64(nil), row...)
	}
	return m
}

// FromInstance converts an instance into its file form
func FromInstance(inst *framework.Instance) *InstanceFile {
	f := &InstanceFile{
		Tasks:    make([]TaskSpec, len(inst.Tasks)),
		Machines: make([]MachineSpec, len(inst.Machines)),
		Times:    toMatrix(inst.Times),
		Costs:    toMatrix(inst.Costs),
	}
	for j, t := range inst.Tasks {
		f.Tasks[j] = TaskSpec{Name: t.Name, Workload: t.Workload}
	}
	for i, m := range inst.Machines {
		f.Machines[i] = MachineSpec{Name: m.Name, Capacity: m.Capacity}
	}
	return f
}

// DecodeInstance parses a YAML or JSON instance file
func DecodeInstance(data []byte, capacityWindow float64) (*framework.Instance, error) {
	var f InstanceFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode instance: %w", err)
	}
	return f.ToInstance(capacityWindow)
}

// WriteInstance writes an instance. Paths ending in .xlsx get a workbook,
// anything else YAML.
func WriteInstance(path string, inst *framework.Instance, capacityWindow float64) error {
	if isWorkbook(path) {
		opts := DefaultWorkbookOptions()
		opts.CapacityWindow = capacityWindow
		return WriteWorkbook(path, inst, opts)
	}
	data, err := yaml.Marshal(FromInstance(inst))
	if err != nil {
		return fmt.Errorf("failed to marshal instance: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write instance: %w", err)
	}
	return nil
}

// Load reads an instance, picking the format from the file extension
func Load(path string, capacityWindow float64) (*framework.Instance, error) {
	if isWorkbook(path) {
		opts := DefaultWorkbookOptions()
		opts.CapacityWindow = capacityWindow
		return LoadWorkbook(path, opts)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read instance file: %w", err)
	}
	return DecodeInstance(data, capacityWindow)
}

func isWorkbook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}
