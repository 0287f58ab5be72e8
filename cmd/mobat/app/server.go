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

// Package app implements the mobat command line
package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/cloudsched/mobat/cmd/mobat/app/options"
	"github.com/cloudsched/mobat/pkg/multiobjective/benchmarks"
)

// NewMobatCommand creates the root command with the run, generate and bench subcommands
func NewMobatCommand(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mobat",
		Short: "mobat assigns tasks to machines with a multi-objective bat algorithm",
		Long: `mobat searches for task to machine assignments that trade aggregate
completion time against total cost, and reports the non-dominated ones it finds.`,
		SilenceUsage: true,
	}
	cmd.SetOut(out)

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)

	cmd.AddCommand(newRunCommand(out), newGenerateCommand(out), newBenchCommand(out))
	return cmd
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newRunCommand(out io.Writer) *cobra.Command {
	o := options.NewRunOptions()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bat algorithm on an instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return Run(ctx, o, out)
		},
	}
	o.AddFlags(cmd.Flags())
	return cmd
}

func newGenerateCommand(out io.Writer) *cobra.Command {
	o := options.NewGenerateOptions()
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random instance from a preset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Generate(o, out)
		},
	}
	o.AddFlags(cmd.Flags())
	return cmd
}

func newBenchCommand(out io.Writer) *cobra.Command {
	o := &options.BenchOptions{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the task40 and task120 reference cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			suite := benchmarks.NewTestSuite(klog.FromContext(ctx))
			suite.AddStandardCases()
			results, err := suite.Run(ctx, o.OutputDir)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintf(out, "%s: front=%d complete=%d hypervolume=%.4f evaluations=%d\n",
					r.Name, r.FrontSize, r.CompleteCount, r.Hypervolume, r.Evaluations)
			}
			return nil
		},
	}
	o.AddFlags(cmd.Flags())
	return cmd
}
