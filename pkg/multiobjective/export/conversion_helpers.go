/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package export

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"os"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/cloudsched/mobat/pkg/api/v1alpha1"
	"github.com/cloudsched/mobat/pkg/multiobjective/algorithms"
	"github.com/cloudsched/mobat/pkg/multiobjective/analysis"
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// GenerateScheduleName generates a consistent name for a Schedule based on the instance fingerprint
func GenerateScheduleName(fingerprint string) string {
	return fmt.Sprintf("schedule-%s", fingerprint)
}

// InstanceFingerprint hashes the workloads, capacities and both matrices.
// Names do not take part.
func InstanceFingerprint(inst *framework.Instance) string {
	h := sha256.New()
	var buf [8]byte
	put := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	put(float64(inst.NumMachines()))
	put(float64(inst.NumTasks()))
	for _, w := range inst.Workloads() {
		put(w)
	}
	for _, c := range inst.Capacities() {
		put(c)
	}
	for _, m := range []framework.Matrix{inst.Times, inst.Costs} {
		for _, row := range m {
			for _, v := range row {
				put(v)
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ConvertResults converts a finished run into a Schedule. Solutions are
// ranked with analysis.Rank using the given weights, complete ones first.
func ConvertResults(inst *framework.Instance, run *algorithms.RunResult, report analysis.Report, timeWeight, costWeight float64) *v1alpha1.Schedule {
	fingerprint := InstanceFingerprint(inst)
	now := metav1.Now()

	schedule := &v1alpha1.Schedule{
		TypeMeta: metav1.TypeMeta{
			APIVersion: v1alpha1.SchemeGroupVersion.String(),
			Kind:       "Schedule",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: GenerateScheduleName(fingerprint),
			Labels: map[string]string{
				"mobat.cloudsched.io/algorithm":            algorithms.Name,
				"mobat.cloudsched.io/instance-fingerprint": fingerprint,
			},
		},
		Spec: v1alpha1.ScheduleSpec{
			InstanceFingerprint: fingerprint,
			Tasks:               taskNames(inst),
			Machines:            machineNames(inst),
			GeneratedAt:         &now,
		},
		Status: v1alpha1.ScheduleStatus{
			Generations: run.Generations,
			Evaluations: run.Evaluations,
			Hypervolume: report.Hypervolume,
			Baseline: v1alpha1.ObjectiveValues{
				CompletionTime: report.Baseline.Time,
				Cost:           report.Baseline.Cost,
			},
			BaselineComplete: report.BaselineComplete,
		},
	}

	byBat := make(map[int]framework.Assignment, len(run.Archive))
	for _, r := range run.Archive {
		byBat[r.BatID] = r.Assignment
	}

	ranked := analysis.Rank(&report, timeWeight, costWeight, true)
	solutions := make([]v1alpha1.ScheduleSolution, 0, len(ranked))
	for i, s := range ranked {
		solution := v1alpha1.ScheduleSolution{
			Rank:  i + 1,
			BatID: s.BatID,
			Objectives: v1alpha1.ObjectiveValues{
				CompletionTime: s.Fitness.Time,
				Cost:           s.Fitness.Cost,
			},
			Complete:   s.Complete,
			Placements: createPlacements(inst, byBat[s.BatID]),
		}
		for _, j := range s.UnassignedTasks {
			solution.Unassigned = append(solution.Unassigned, inst.TaskName(j))
		}
		solutions = append(solutions, solution)
	}
	schedule.Spec.Solutions = solutions

	return schedule
}

// createPlacements lists placed tasks in task order
func createPlacements(inst *framework.Instance, a framework.Assignment) []v1alpha1.TaskPlacement {
	placements := make([]v1alpha1.TaskPlacement, 0, inst.NumTasks())
	if a == nil {
		return placements
	}
	for j := 0; j < a.NumTasks(); j++ {
		i, ok := a.MachineOf(j)
		if !ok {
			continue
		}
		placements = append(placements, v1alpha1.TaskPlacement{
			Task:    inst.TaskName(j),
			Machine: inst.MachineName(i),
		})
	}
	return placements
}

func taskNames(inst *framework.Instance) []string {
	names := make([]string, len(inst.Tasks))
	for j := range inst.Tasks {
		names[j] = inst.TaskName(j)
	}
	return names
}

func machineNames(inst *framework.Instance) []string {
	names := make([]string, len(inst.Machines))
	for i := range inst.Machines {
		names[i] = inst.MachineName(i)
	}
	return names
}

// WriteSchedule writes the schedule as YAML
func WriteSchedule(path string, schedule *v1alpha1.Schedule) error {
	data, err := yaml.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write schedule: %w", err)
	}
	return nil
}

// ReadSchedule reads a schedule written by WriteSchedule
func ReadSchedule(path string) (*v1alpha1.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}
	schedule := &v1alpha1.Schedule{}
	if err := yaml.Unmarshal(data, schedule); err != nil {
		return nil, fmt.Errorf("failed to decode schedule: %w", err)
	}
	if schedule.Kind != "Schedule" {
		return nil, fmt.Errorf("%s: want kind Schedule, got %q", path, schedule.Kind)
	}
	return schedule, nil
}

// ToAssignments rebuilds the assignments of a schedule against inst, in rank
// order. The schedule must carry inst's fingerprint.
func ToAssignments(inst *framework.Instance, schedule *v1alpha1.Schedule) ([]framework.Assignment, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	fingerprint := InstanceFingerprint(inst)
	if schedule.Spec.InstanceFingerprint != fingerprint {
		return nil, fmt.Errorf("schedule %s was generated for instance %s, not %s",
			schedule.Name, schedule.Spec.InstanceFingerprint, fingerprint)
	}

	taskIdx := make(map[string]int, len(inst.Tasks))
	for j := range inst.Tasks {
		taskIdx[inst.TaskName(j)] = j
	}
	machineIdx := make(map[string]int, len(inst.Machines))
	for i := range inst.Machines {
		machineIdx[inst.MachineName(i)] = i
	}

	assignments := make([]framework.Assignment, 0, len(schedule.Spec.Solutions))
	for _, s := range schedule.Spec.Solutions {
		a := framework.NewAssignment(inst.NumMachines(), inst.NumTasks())
		for _, p := range s.Placements {
			j, ok := taskIdx[p.Task]
			if !ok {
				return nil, fmt.Errorf("solution %d: unknown task %q", s.Rank, p.Task)
			}
			i, ok := machineIdx[p.Machine]
			if !ok {
				return nil, fmt.Errorf("solution %d: unknown machine %q", s.Rank, p.Machine)
			}
			if _, placed := a.MachineOf(j); placed {
				return nil, fmt.Errorf("solution %d: task %q is placed twice", s.Rank, p.Task)
			}
			a[i][j] = 1
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}
