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

// Package options provides the flags used by the mobat commands
package options

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/cloudsched/mobat/pkg/api/v1alpha1"
	"github.com/cloudsched/mobat/pkg/multiobjective/benchmarks"
)

// RunOptions holds the flags of the run command
type RunOptions struct {
	InstancePath string
	ArgsPath     string

	Epochs            int
	PopSize           int
	Gamma             float64
	Qmin              float64
	Qmax              float64
	Parallel          bool
	Workers           int
	Seed              uint64
	CapacityWindow    float64
	WarmStartFraction float64

	PlotPath     string
	OutputPath   string
	MetricsFile  string
	SeedFrom     string
	OTLPEndpoint string
	OTLPInsecure bool

	// TimeWeight and CostWeight rank the solutions of the written schedule
	TimeWeight float64
	CostWeight float64

	flags *pflag.FlagSet
}

// NewRunOptions returns options with the argument defaults filled in
func NewRunOptions() *RunOptions {
	defaults := v1alpha1.NewDefaultArgs()
	return &RunOptions{
		Epochs:         *defaults.Epochs,
		PopSize:        defaults.PopSize,
		Gamma:          defaults.Gamma,
		Qmin:           defaults.Qmin,
		Qmax:           defaults.Qmax,
		CapacityWindow: defaults.CapacityWindow,
		TimeWeight:     0.5,
		CostWeight:     0.5,
		OTLPInsecure:   true,
	}
}

// AddFlags adds flags for the run command to the specified FlagSet
func (o *RunOptions) AddFlags(fs *pflag.FlagSet) {
	o.flags = fs
	fs.StringVarP(&o.InstancePath, "instance", "i", o.InstancePath, "Instance file: .xlsx workbook or YAML/JSON")
	fs.StringVar(&o.ArgsPath, "args", o.ArgsPath, "BatSchedulingArgs file; flags set on the command line override it")

	fs.IntVar(&o.Epochs, "epochs", o.Epochs, "Number of generations; 0 evaluates the initial population only")
	fs.IntVar(&o.PopSize, "pop-size", o.PopSize, "Number of bats")
	fs.Float64Var(&o.Gamma, "gamma", o.Gamma, "Pulse rate growth constant")
	fs.Float64Var(&o.Qmin, "qmin", o.Qmin, "Lower bound of the frequency draw")
	fs.Float64Var(&o.Qmax, "qmax", o.Qmax, "Upper bound of the frequency draw")
	fs.BoolVar(&o.Parallel, "parallel", o.Parallel, "Decode and score bats concurrently")
	fs.IntVar(&o.Workers, "workers", o.Workers, "Concurrent evaluations when --parallel is set; 0 uses every CPU")
	fs.Uint64Var(&o.Seed, "seed", o.Seed, "Random seed; unset picks one from the clock")
	fs.Float64Var(&o.CapacityWindow, "capacity-window", o.CapacityWindow, "Divides a machine's MIPS rate into its capacity")
	fs.Float64Var(&o.WarmStartFraction, "warm-start", o.WarmStartFraction, "Fraction of the population seeded by greedy priority keys")

	fs.StringVar(&o.PlotPath, "plot", o.PlotPath, "Write an HTML chart of the run to this path")
	fs.StringVarP(&o.OutputPath, "output", "o", o.OutputPath, "Write the archive as a Schedule YAML to this path")
	fs.StringVar(&o.MetricsFile, "metrics-file", o.MetricsFile, "Write run metrics in Prometheus text format to this path")
	fs.StringVar(&o.SeedFrom, "seed-from", o.SeedFrom, "Seed the population with the solutions of a Schedule written by an earlier run on the same instance")
	fs.StringVar(&o.OTLPEndpoint, "otlp-endpoint", o.OTLPEndpoint, "OTLP/gRPC collector endpoint for traces; empty disables tracing")
	fs.BoolVar(&o.OTLPInsecure, "otlp-insecure", o.OTLPInsecure, "Connect to the collector without TLS")
	fs.Float64Var(&o.TimeWeight, "time-weight", o.TimeWeight, "Completion time weight when ranking solutions")
	fs.Float64Var(&o.CostWeight, "cost-weight", o.CostWeight, "Cost weight when ranking solutions")
}

func (o *RunOptions) changed(name string) bool {
	return o.flags != nil && o.flags.Changed(name)
}

// BatSchedulingArgs loads the args file, or the defaults when none is given,
// and applies every flag set on the command line on top
func (o *RunOptions) BatSchedulingArgs() (*v1alpha1.BatSchedulingArgs, error) {
	args := v1alpha1.NewDefaultArgs()
	if o.ArgsPath != "" {
		var err error
		if args, err = v1alpha1.LoadArgs(o.ArgsPath); err != nil {
			return nil, err
		}
	}

	if o.changed("epochs") {
		epochs := o.Epochs
		args.Epochs = &epochs
	}
	if o.changed("pop-size") {
		args.PopSize = o.PopSize
	}
	if o.changed("gamma") {
		args.Gamma = o.Gamma
	}
	if o.changed("qmin") {
		args.Qmin = o.Qmin
	}
	if o.changed("qmax") {
		args.Qmax = o.Qmax
	}
	if o.changed("parallel") {
		args.Parallel = o.Parallel
	}
	if o.changed("workers") {
		args.Workers = o.Workers
	}
	if o.changed("seed") {
		seed := o.Seed
		args.Seed = &seed
	}
	if o.changed("capacity-window") {
		args.CapacityWindow = o.CapacityWindow
	}
	if o.changed("warm-start") {
		args.WarmStartFraction = o.WarmStartFraction
	}
	return args, nil
}

// Validate checks the flags that are not part of the arguments
func (o *RunOptions) Validate() error {
	if o.InstancePath == "" {
		return fmt.Errorf("--instance is required")
	}
	if o.TimeWeight < 0 || o.CostWeight < 0 {
		return fmt.Errorf("ranking weights must be >= 0 (got time=%v cost=%v)", o.TimeWeight, o.CostWeight)
	}
	return nil
}

// GenerateOptions holds the flags of the generate command
type GenerateOptions struct {
	Preset   string
	Tasks    int
	Machines int
	Seed     uint64
	Output   string
}

// NewGenerateOptions returns options for the task40 preset
func NewGenerateOptions() *GenerateOptions {
	return &GenerateOptions{Preset: "task40", Seed: 40}
}

// AddFlags adds flags for the generate command to the specified FlagSet
func (o *GenerateOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Preset, "preset", o.Preset, "Instance family: task40 or task120")
	fs.IntVar(&o.Tasks, "tasks", o.Tasks, "Override the preset's task count")
	fs.IntVar(&o.Machines, "machines", o.Machines, "Override the preset's machine count")
	fs.Uint64Var(&o.Seed, "seed", o.Seed, "Random seed of the instance")
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output path; .xlsx writes a workbook, anything else YAML")
}

// GeneratorConfig resolves the preset and overrides
func (o *GenerateOptions) GeneratorConfig() (benchmarks.GeneratorConfig, error) {
	var cfg benchmarks.GeneratorConfig
	switch o.Preset {
	case "task40":
		cfg = benchmarks.Task40()
	case "task120":
		cfg = benchmarks.Task120()
	default:
		return cfg, fmt.Errorf("unknown preset %q", o.Preset)
	}
	if o.Tasks > 0 {
		cfg.Tasks = o.Tasks
	}
	if o.Machines > 0 {
		cfg.Machines = o.Machines
	}
	if o.Output == "" {
		return cfg, fmt.Errorf("--output is required")
	}
	return cfg, cfg.Validate()
}

// BenchOptions holds the flags of the bench command
type BenchOptions struct {
	OutputDir string
}

// AddFlags adds flags for the bench command to the specified FlagSet
func (o *BenchOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.OutputDir, "output-dir", o.OutputDir, "Directory for the per-case charts; empty skips charts")
}
