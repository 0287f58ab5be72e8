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

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// BatSchedulingArgs holds the arguments of a bat algorithm run
type BatSchedulingArgs struct {
	metav1.TypeMeta `json:",inline"`

	// Dim is the position dimension. It must equal the task count when set.
	Dim int `json:"dim,omitempty"`

	// Epochs is the number of generations. Zero evaluates the initial
	// population once; nil means the default.
	Epochs *int `json:"epochs,omitempty"`

	// PopSize is the number of bats
	PopSize int `json:"popSize,omitempty"`

	// Gamma sets how fast pulse rates approach their maximum
	Gamma float64 `json:"gamma,omitempty"`

	// Qmin and Qmax bound the frequency draw
	Qmin float64 `json:"qmin,omitempty"`
	Qmax float64 `json:"qmax,omitempty"`

	// Parallel spreads decoding and scoring over Workers goroutines
	Parallel bool `json:"parallel,omitempty"`
	Workers  int  `json:"workers,omitempty"`

	// Seed makes a run reproducible. Nil picks a seed from the clock.
	Seed *uint64 `json:"seed,omitempty"`

	// CapacityWindow divides a machine's MIPS rate into its capacity when
	// loading workbooks
	CapacityWindow float64 `json:"capacityWindow,omitempty"`

	// WarmStartFraction is the share of the population seeded by greedy
	// priority keys. Zero disables warm starting.
	WarmStartFraction float64 `json:"warmStartFraction,omitempty"`
}

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// Schedule records the non-dominated task placements found by a run
type Schedule struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ScheduleSpec   `json:"spec,omitempty"`
	Status ScheduleStatus `json:"status,omitempty"`
}

// ScheduleSpec describes the instance and the solutions found for it
type ScheduleSpec struct {
	// InstanceFingerprint identifies the instance the solutions belong to
	InstanceFingerprint string `json:"instanceFingerprint"`

	Tasks    []string `json:"tasks"`
	Machines []string `json:"machines"`

	// Solutions are ranked, best first
	Solutions []ScheduleSolution `json:"solutions"`

	GeneratedAt *metav1.Time `json:"generatedAt,omitempty"`
}

// ScheduleSolution is one archived assignment
type ScheduleSolution struct {
	Rank       int             `json:"rank"`
	BatID      int             `json:"batID"`
	Objectives ObjectiveValues `json:"objectives"`

	// Complete is false when some task could not be placed
	Complete   bool            `json:"complete"`
	Placements []TaskPlacement `json:"placements"`
	Unassigned []string        `json:"unassigned,omitempty"`
}

// ObjectiveValues holds both objective values of a solution
type ObjectiveValues struct {
	CompletionTime float64 `json:"completionTime"`
	Cost           float64 `json:"cost"`
}

// TaskPlacement maps a task to the machine it runs on
type TaskPlacement struct {
	Task    string `json:"task"`
	Machine string `json:"machine"`
}

// ScheduleStatus summarizes the run that produced the schedule
type ScheduleStatus struct {
	Generations int     `json:"generations"`
	Evaluations int     `json:"evaluations"`
	Hypervolume float64 `json:"hypervolume"`
	// Baseline holds the objectives of the greedy best-fit-decreasing schedule
	Baseline         ObjectiveValues `json:"baseline"`
	BaselineComplete bool            `json:"baselineComplete"`
}
