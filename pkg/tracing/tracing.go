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

package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"k8s.io/klog/v2"
)

const (
	// DefaultServiceName is the service.name resource attribute of exported spans
	DefaultServiceName = "mobat"
)

// ShutdownFunc flushes and stops the installed tracer provider
type ShutdownFunc func(context.Context) error

// Options configures the OTLP exporter
type Options struct {
	// Endpoint is the collector's host:port. Empty disables tracing.
	Endpoint    string
	ServiceName string
	// SampleRate is the fraction of root spans kept, 0 means all
	SampleRate float64
	Insecure   bool
}

// Setup installs a global tracer provider that exports spans over OTLP/gRPC.
// With an empty endpoint the global no-op provider stays in place.
func Setup(ctx context.Context, opts Options) (ShutdownFunc, error) {
	if opts.Endpoint == "" {
		klog.V(3).InfoS("Tracing disabled, no collector endpoint set")
		return func(context.Context) error { return nil }, nil
	}
	if opts.ServiceName == "" {
		opts.ServiceName = DefaultServiceName
	}
	if opts.SampleRate < 0 || opts.SampleRate > 1 {
		return nil, fmt.Errorf("sample rate must be in [0, 1] (got %v)", opts.SampleRate)
	}

	clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	tp := NewProvider(opts.ServiceName, opts.SampleRate, sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	klog.InfoS("Tracing enabled", "endpoint", opts.Endpoint, "service", opts.ServiceName)

	return tp.Shutdown, nil
}

// NewProvider builds a tracer provider tagged with the service name
func NewProvider(serviceName string, sampleRate float64, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	sampler := sdktrace.AlwaysSample()
	if sampleRate > 0 && sampleRate < 1 {
		sampler = sdktrace.TraceIDRatioBased(sampleRate)
	}
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
		sdktrace.WithResource(res),
	}, opts...)
	return sdktrace.NewTracerProvider(opts...)
}
