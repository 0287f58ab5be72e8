package benchmarks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"

	"github.com/cloudsched/mobat/pkg/multiobjective/algorithms"
	"github.com/cloudsched/mobat/pkg/multiobjective/analysis"
	"github.com/cloudsched/mobat/pkg/multiobjective/util"
)

// Case is one benchmark scenario
type Case struct {
	Generator    GeneratorConfig
	InstanceSeed uint64
	RunSeed      uint64
	Config       algorithms.MOBAConfig
}

// CaseResult summarizes a finished case
type CaseResult struct {
	Name          string
	FrontSize     int
	CompleteCount int
	Hypervolume   float64
	Evaluations   int
}

// TestSuite runs a set of benchmark scenarios
type TestSuite struct {
	cases  []Case
	logger klog.Logger
}

// NewTestSuite creates a new benchmark test suite
func NewTestSuite(logger klog.Logger) *TestSuite {
	return &TestSuite{logger: logger}
}

// AddCase adds a scenario to the test suite
func (ts *TestSuite) AddCase(c Case) {
	ts.cases = append(ts.cases, c)
}

// AddStandardCases adds the 40 and 120 task scenarios with their reference settings
func (ts *TestSuite) AddStandardCases() {
	ts.AddCase(Case{
		Generator:    Task40(),
		InstanceSeed: 40,
		RunSeed:      1,
		Config: algorithms.MOBAConfig{
			PopulationSize: 100,
			MaxGenerations: 100,
			Gamma:          0.1,
			FrequencyMin:   0,
			FrequencyMax:   1,
		},
	})
	ts.AddCase(Case{
		Generator:    Task120(),
		InstanceSeed: 120,
		RunSeed:      1,
		Config: algorithms.MOBAConfig{
			PopulationSize: 30,
			MaxGenerations: 100,
			Gamma:          0.1,
			FrequencyMin:   0,
			FrequencyMax:   1,
		},
	})
}

// Run executes the test suite. When outputDir is not empty a chart is
// written there for every case.
func (ts *TestSuite) Run(ctx context.Context, outputDir string) ([]CaseResult, error) {
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	results := make([]CaseResult, 0, len(ts.cases))
	for _, c := range ts.cases {
		ts.logger.Info("Running bat algorithm", "case", c.Generator.Name)

		inst, err := RandomInstance(c.Generator, rand.New(rand.NewSource(c.InstanceSeed)))
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Generator.Name, err)
		}

		moba, err := algorithms.NewMOBA(c.Config, inst, rand.New(rand.NewSource(c.RunSeed)), algorithms.WithLogger(ts.logger))
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Generator.Name, err)
		}
		res, err := moba.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Generator.Name, err)
		}

		report := analysis.Analyze(inst, res.Archive)
		cr := CaseResult{
			Name:          c.Generator.Name,
			FrontSize:     len(res.Archive),
			CompleteCount: report.CompleteCount,
			Hypervolume:   report.Hypervolume,
			Evaluations:   res.Evaluations,
		}
		results = append(results, cr)

		if outputDir != "" {
			plotFile := filepath.Join(outputDir, fmt.Sprintf("%s_%s_results.html", c.Generator.Name, algorithms.Name))
			if err := util.PlotTrace(res.Trace, res.Archive, inst.NumTasks(), plotFile); err != nil {
				ts.logger.Error(err, "Failed to plot results", "case", c.Generator.Name)
			}
		}

		ts.logger.Info("Case complete",
			"case", cr.Name,
			"frontSize", cr.FrontSize,
			"complete", cr.CompleteCount,
			"hypervolume", cr.Hypervolume)
	}

	return results, nil
}
