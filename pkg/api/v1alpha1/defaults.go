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
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/klog/v2"
)

const (
	DefaultEpochs         = 100
	DefaultPopSize        = 100
	DefaultGamma          = 0.1
	DefaultQmax           = 1.0
	DefaultCapacityWindow = 10.0
)

func addDefaultingFuncs(scheme *runtime.Scheme) error {
	return RegisterDefaults(scheme)
}

func RegisterDefaults(scheme *runtime.Scheme) error {
	klog.V(5).InfoS("Registering defaults", "kind", "BatSchedulingArgs")
	scheme.AddTypeDefaultingFunc(&BatSchedulingArgs{}, func(obj interface{}) {
		SetDefaults_BatSchedulingArgs(obj.(*BatSchedulingArgs))
	})
	return nil
}

func SetDefaults_BatSchedulingArgs(obj runtime.Object) {
	args := obj.(*BatSchedulingArgs)

	if args.APIVersion == "" {
		args.APIVersion = SchemeGroupVersion.String()
	}
	if args.Kind == "" {
		args.Kind = "BatSchedulingArgs"
	}
	if args.Epochs == nil {
		epochs := DefaultEpochs
		args.Epochs = &epochs
	}
	if args.PopSize == 0 {
		args.PopSize = DefaultPopSize
	}
	if args.Gamma == 0 {
		args.Gamma = DefaultGamma
	}
	// an unset frequency range is [0, 1]
	if args.Qmin == 0 && args.Qmax == 0 {
		args.Qmax = DefaultQmax
	}
	if args.CapacityWindow == 0 {
		args.CapacityWindow = DefaultCapacityWindow
	}
}
