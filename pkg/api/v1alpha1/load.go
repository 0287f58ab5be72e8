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
	"os"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"sigs.k8s.io/yaml"

	"github.com/cloudsched/mobat/pkg/multiobjective/algorithms"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(AddToScheme(scheme))
}

// NewDefaultArgs returns arguments with every default applied
func NewDefaultArgs() *BatSchedulingArgs {
	args := &BatSchedulingArgs{}
	scheme.Default(args)
	return args
}

// DecodeArgs parses YAML or JSON arguments and applies defaults. Unknown
// fields are rejected.
func DecodeArgs(data []byte) (*BatSchedulingArgs, error) {
	args := &BatSchedulingArgs{}
	if err := yaml.UnmarshalStrict(data, args); err != nil {
		return nil, fmt.Errorf("failed to decode args: %w", err)
	}
	if args.APIVersion != "" && args.APIVersion != SchemeGroupVersion.String() {
		return nil, fmt.Errorf("unsupported apiVersion %q, want %q", args.APIVersion, SchemeGroupVersion.String())
	}
	if args.Kind != "" && args.Kind != "BatSchedulingArgs" {
		return nil, fmt.Errorf("unexpected kind %q, want BatSchedulingArgs", args.Kind)
	}
	scheme.Default(args)
	return args, nil
}

// LoadArgs reads and decodes an arguments file
func LoadArgs(path string) (*BatSchedulingArgs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read args file: %w", err)
	}
	return DecodeArgs(data)
}

// ToConfig converts defaulted arguments into a driver configuration
func (args *BatSchedulingArgs) ToConfig() algorithms.MOBAConfig {
	epochs := DefaultEpochs
	if args.Epochs != nil {
		epochs = *args.Epochs
	}
	return algorithms.MOBAConfig{
		PopulationSize:    args.PopSize,
		MaxGenerations:    epochs,
		Gamma:             args.Gamma,
		FrequencyMin:      args.Qmin,
		FrequencyMax:      args.Qmax,
		ParallelExecution: args.Parallel,
		Workers:           args.Workers,
	}
}
