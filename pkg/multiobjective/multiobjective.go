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

// Package multiobjective ties the bat algorithm, warm starting and result
// analysis together into a single scheduling entry point.
package multiobjective

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/klog/v2"

	"github.com/cloudsched/mobat/pkg/api/v1alpha1"
	"github.com/cloudsched/mobat/pkg/metrics"
	"github.com/cloudsched/mobat/pkg/multiobjective/algorithms"
	"github.com/cloudsched/mobat/pkg/multiobjective/analysis"
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
	"github.com/cloudsched/mobat/pkg/multiobjective/warmstart"
)

const PluginName = "BatScheduling"

// warmStartJitter spreads the greedy task order between weight vectors
const warmStartJitter = 0.2

// BatScheduling schedules the tasks of one instance with the multi-objective
// bat algorithm
type BatScheduling struct {
	logger   klog.Logger
	args     *v1alpha1.BatSchedulingArgs
	instance *framework.Instance
	metrics  *metrics.Collectors

	// previous holds assignments from an earlier run, used as seeds
	previous []framework.Assignment
}

// Outcome is the result of one Schedule call
type Outcome struct {
	Run    *algorithms.RunResult
	Report analysis.Report
	Seed   uint64
}

// New builds the scheduler from its arguments. collectors may be nil.
func New(ctx context.Context, args runtime.Object, inst *framework.Instance, collectors *metrics.Collectors) (*BatScheduling, error) {
	batArgs, ok := args.(*v1alpha1.BatSchedulingArgs)
	if !ok {
		return nil, fmt.Errorf("want args to be of type BatSchedulingArgs, got %T", args)
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if err := v1alpha1.ValidateBatSchedulingArgs(batArgs, inst.NumTasks()); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	logger := klog.FromContext(ctx).WithValues("plugin", PluginName)

	return &BatScheduling{
		logger:   logger,
		args:     batArgs,
		instance: inst,
		metrics:  collectors,
	}, nil
}

// Name retrieves the scheduler name
func (b *BatScheduling) Name() string {
	return PluginName
}

// SeedWith adds assignments from an earlier run to the initial population.
// They take precedence over greedy warm-start seeds.
func (b *BatScheduling) SeedWith(assignments []framework.Assignment) error {
	for k, a := range assignments {
		if a.NumMachines() != b.instance.NumMachines() || a.NumTasks() != b.instance.NumTasks() {
			return fmt.Errorf("seed %d is %dx%d, want %dx%d", k, a.NumMachines(), a.NumTasks(),
				b.instance.NumMachines(), b.instance.NumTasks())
		}
	}
	b.previous = append(b.previous, assignments...)
	return nil
}

// Schedule runs the algorithm and analyzes the archive it ends with
func (b *BatScheduling) Schedule(ctx context.Context) (*Outcome, error) {
	logger := klog.FromContext(klog.NewContext(ctx, b.logger))

	var seed uint64
	if b.args.Seed != nil {
		seed = *b.args.Seed
	} else {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))
	b.printAlgorithmConfig(logger, seed)

	positions, err := b.initialPositions(logger, rng)
	if err != nil {
		return nil, err
	}

	opts := []algorithms.Option{algorithms.WithLogger(logger)}
	if b.metrics != nil {
		opts = append(opts, algorithms.WithMetrics(b.metrics))
	}
	if len(positions) > 0 {
		opts = append(opts, algorithms.WithInitialPositions(positions))
	}

	moba, err := algorithms.NewMOBA(b.args.ToConfig(), b.instance, rng, opts...)
	if err != nil {
		return nil, err
	}
	run, err := moba.Run(ctx)
	if err != nil {
		return nil, err
	}

	report := analysis.Analyze(b.instance, run.Archive)
	logger.Info("Scheduling finished",
		"solutions", len(report.Solutions),
		"complete", report.CompleteCount,
		"hypervolume", report.Hypervolume,
		"duration", run.Duration)

	return &Outcome{Run: run, Report: report, Seed: seed}, nil
}

// initialPositions encodes previous assignments first, then fills up to the
// warm-start share with greedy seeds
func (b *BatScheduling) initialPositions(logger klog.Logger, rng *rand.Rand) ([][]float64, error) {
	var positions [][]float64
	for _, a := range b.previous {
		if len(positions) == b.args.PopSize {
			break
		}
		positions = append(positions, warmstart.EncodeAssignment(b.instance, a))
	}
	if len(positions) > 0 {
		logger.Info("Seeding optimization with existing solutions", "existingSolutions", len(positions))
	}

	n := warmstart.SeedCount(b.args.PopSize, b.args.WarmStartFraction) - len(positions)
	if n <= 0 {
		return positions, nil
	}
	g, err := warmstart.NewGCSH(warmstart.GCSHConfig{Instance: b.instance, Jitter: warmStartJitter}, rng)
	if err != nil {
		return nil, err
	}
	return append(positions, g.GenerateInitialPositions(n)...), nil
}

func (b *BatScheduling) printAlgorithmConfig(logger klog.Logger, seed uint64) {
	logger.Info("Algorithm configuration",
		"tasks", b.instance.NumTasks(),
		"machines", b.instance.NumMachines(),
		"populationSize", b.args.PopSize,
		"epochs", *b.args.Epochs,
		"gamma", b.args.Gamma,
		"qmin", b.args.Qmin,
		"qmax", b.args.Qmax,
		"parallel", b.args.Parallel,
		"warmStartFraction", b.args.WarmStartFraction,
		"seed", seed)
}
