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

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"

	"github.com/cloudsched/mobat/cmd/mobat/app/options"
	"github.com/cloudsched/mobat/pkg/loader"
	"github.com/cloudsched/mobat/pkg/metrics"
	"github.com/cloudsched/mobat/pkg/multiobjective"
	"github.com/cloudsched/mobat/pkg/multiobjective/benchmarks"
	"github.com/cloudsched/mobat/pkg/multiobjective/export"
	"github.com/cloudsched/mobat/pkg/multiobjective/util"
	"github.com/cloudsched/mobat/pkg/tracing"
)

// Run loads the instance and arguments, runs the scheduler and writes the
// report and any requested artifacts
func Run(ctx context.Context, o *options.RunOptions, out io.Writer) error {
	logger := klog.FromContext(ctx)

	args, err := o.BatSchedulingArgs()
	if err != nil {
		return err
	}
	inst, err := loader.Load(o.InstancePath, args.CapacityWindow)
	if err != nil {
		return fmt.Errorf("failed to load instance: %w", err)
	}
	logger.Info("Loaded instance", "path", o.InstancePath, "tasks", inst.NumTasks(), "machines", inst.NumMachines())

	shutdown, err := tracing.Setup(ctx, tracing.Options{Endpoint: o.OTLPEndpoint, Insecure: o.OTLPInsecure})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error(err, "Failed to shut down tracing")
		}
	}()

	reg := prometheus.NewRegistry()
	scheduler, err := multiobjective.New(ctx, args, inst, metrics.New(reg))
	if err != nil {
		return err
	}
	if o.SeedFrom != "" {
		previous, err := export.ReadSchedule(o.SeedFrom)
		if err != nil {
			return err
		}
		assignments, err := export.ToAssignments(inst, previous)
		if err != nil {
			return err
		}
		if err := scheduler.SeedWith(assignments); err != nil {
			return err
		}
	}

	outcome, err := scheduler.Schedule(ctx)
	if err != nil {
		return err
	}
	res, report := outcome.Run, outcome.Report
	if err := report.Print(out); err != nil {
		return err
	}

	if o.PlotPath != "" {
		if err := util.PlotTrace(res.Trace, res.Archive, inst.NumTasks(), o.PlotPath); err != nil {
			return fmt.Errorf("failed to plot results: %w", err)
		}
		logger.Info("Wrote chart", "path", o.PlotPath)
	}
	if o.OutputPath != "" {
		schedule := export.ConvertResults(inst, res, report, o.TimeWeight, o.CostWeight)
		if err := export.WriteSchedule(o.OutputPath, schedule); err != nil {
			return err
		}
		logger.Info("Wrote schedule", "path", o.OutputPath, "solutions", len(schedule.Spec.Solutions))
	}
	if o.MetricsFile != "" {
		if err := metrics.WriteTextfile(o.MetricsFile, reg); err != nil {
			return err
		}
	}
	return nil
}

// Generate writes a random instance
func Generate(o *options.GenerateOptions, out io.Writer) error {
	cfg, err := o.GeneratorConfig()
	if err != nil {
		return err
	}
	inst, err := benchmarks.RandomInstance(cfg, rand.New(rand.NewSource(o.Seed)))
	if err != nil {
		return err
	}
	if err := loader.WriteInstance(o.Output, inst, cfg.CapacityWindow); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s instance with %d tasks and %d machines to %s\n", cfg.Name, inst.NumTasks(), inst.NumMachines(), o.Output)
	return nil
}
