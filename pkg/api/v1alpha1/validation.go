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
	"fmt"
	"math"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ValidateBatSchedulingArgs validates defaulted arguments against an instance
// with taskCount tasks. A taskCount of 0 skips the dimension check.
func ValidateBatSchedulingArgs(obj runtime.Object, taskCount int) error {
	args := obj.(*BatSchedulingArgs)
	var allErrs field.ErrorList

	if args.Dim < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("dim"), args.Dim, "must be >= 0"))
	} else if args.Dim != 0 && taskCount > 0 && args.Dim != taskCount {
		allErrs = append(allErrs, field.Invalid(field.NewPath("dim"), args.Dim,
			fmt.Sprintf("must equal the number of tasks (%d)", taskCount)))
	}
	if args.Epochs == nil {
		allErrs = append(allErrs, field.Required(field.NewPath("epochs"), ""))
	} else if *args.Epochs < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("epochs"), *args.Epochs, "must be >= 0"))
	}
	if args.PopSize <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("popSize"), args.PopSize, "must be > 0"))
	}
	if !(args.Gamma > 0) || math.IsInf(args.Gamma, 0) {
		allErrs = append(allErrs, field.Invalid(field.NewPath("gamma"), args.Gamma, "must be a finite value > 0"))
	}
	if math.IsNaN(args.Qmin) || math.IsNaN(args.Qmax) || args.Qmin > args.Qmax {
		allErrs = append(allErrs, field.Invalid(field.NewPath("qmin"), args.Qmin,
			fmt.Sprintf("must be <= qmax (%v)", args.Qmax)))
	}
	if args.Workers < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("workers"), args.Workers, "must be >= 0"))
	}
	if !(args.CapacityWindow > 0) {
		allErrs = append(allErrs, field.Invalid(field.NewPath("capacityWindow"), args.CapacityWindow, "must be > 0"))
	}
	if !(args.WarmStartFraction >= 0 && args.WarmStartFraction <= 1) {
		allErrs = append(allErrs, field.Invalid(field.NewPath("warmStartFraction"), args.WarmStartFraction, "must be between 0 and 1"))
	}

	return allErrs.ToAggregate()
}
