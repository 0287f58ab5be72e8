package algorithms

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"

	"github.com/cloudsched/mobat/pkg/metrics"
	"github.com/cloudsched/mobat/pkg/multiobjective/decoder"
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
	"github.com/cloudsched/mobat/pkg/multiobjective/objectives/completiontime"
	"github.com/cloudsched/mobat/pkg/multiobjective/objectives/cost"
)

const (
	Name = "MOBA"

	tracerName = "github.com/cloudsched/mobat/pkg/multiobjective/algorithms"
)

// MOBAConfig holds configuration parameters for the multi-objective bat algorithm
type MOBAConfig struct {
	PopulationSize int
	MaxGenerations int
	// Gamma controls how fast pulse rates grow toward their maximum
	Gamma float64
	// FrequencyMin and FrequencyMax bound the per-generation frequency draw
	FrequencyMin float64
	FrequencyMax float64

	ParallelExecution bool // Enable parallel decoding and scoring
	Workers           int  // 0 means runtime.NumCPU()
}

// Validate checks the configuration
func (c MOBAConfig) Validate() error {
	var errs []error
	if c.PopulationSize <= 0 {
		errs = append(errs, fmt.Errorf("population size must be > 0 (got %d)", c.PopulationSize))
	}
	if c.MaxGenerations < 0 {
		errs = append(errs, fmt.Errorf("max generations must be >= 0 (got %d)", c.MaxGenerations))
	}
	if !(c.Gamma > 0) {
		errs = append(errs, fmt.Errorf("gamma must be > 0 (got %v)", c.Gamma))
	}
	if c.FrequencyMin > c.FrequencyMax {
		errs = append(errs, fmt.Errorf("frequency min must be <= max (got %v > %v)", c.FrequencyMin, c.FrequencyMax))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0 (got %d)", c.Workers))
	}
	return errors.Join(errs...)
}

// RunResult is what a finished run hands back
type RunResult struct {
	// Archive holds the final non-dominated results in admission order
	Archive []Result
	// Trace has one entry per evaluation pass, each aligned with population order
	Trace [][]framework.Fitness

	Generations int
	Evaluations int
	Duration    time.Duration
}

// Option customizes a MOBA instance
type Option func(*MOBA)

// WithLogger sets the logger used for progress output
func WithLogger(logger klog.Logger) Option {
	return func(m *MOBA) {
		m.logger = logger
	}
}

// WithMetrics records run statistics into the given collectors
func WithMetrics(c *metrics.Collectors) Option {
	return func(m *MOBA) {
		m.metrics = c
	}
}

// WithInitialPositions seeds the first len(positions) bats instead of drawing
// their positions at random. Extra positions are ignored.
func WithInitialPositions(positions [][]float64) Option {
	return func(m *MOBA) {
		m.seeds = positions
	}
}

// MOBA represents a configured multi-objective bat algorithm run
type MOBA struct {
	config  MOBAConfig
	problem *framework.Problem
	rng     *rand.Rand

	logger  klog.Logger
	metrics *metrics.Collectors
	seeds   [][]float64

	workloads  []float64
	capacities []float64
}

// NewProblem pairs an instance with the completion time and cost objectives
func NewProblem(inst *framework.Instance) *framework.Problem {
	return &framework.Problem{
		Instance: inst,
		Objectives: []framework.ObjectiveFunc{
			completiontime.CompletionTimeObjective(inst),
			cost.CostObjective(inst),
		},
	}
}

// NewMOBA validates the instance and configuration and creates a new MOBA.
// All stochastic draws come from rng.
func NewMOBA(config MOBAConfig, inst *framework.Instance, rng *rand.Rand, opts ...Option) (*MOBA, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", Name, err)
	}
	if rng == nil {
		return nil, errors.New("random source is nil")
	}

	m := &MOBA{
		config:     config,
		problem:    NewProblem(inst),
		rng:        rng,
		logger:     klog.Background(),
		workloads:  inst.Workloads(),
		capacities: inst.Capacities(),
	}
	for _, opt := range opts {
		opt(m)
	}
	for i, pos := range m.seeds {
		if len(pos) != inst.NumTasks() {
			return nil, fmt.Errorf("initial position %d has %d entries, want %d", i, len(pos), inst.NumTasks())
		}
	}
	return m, nil
}

// Initialize creates the population: seeded positions first, the rest drawn
// uniformly from [0,1]^dim, all with zero velocity.
func (m *MOBA) Initialize() []*Bat {
	dim := m.problem.Instance.NumTasks()
	population := make([]*Bat, m.config.PopulationSize)
	for i := range population {
		var pos []float64
		if i < len(m.seeds) {
			pos = append([]float64(nil), m.seeds[i]...)
		} else {
			pos = RandomPosition(dim, m.rng)
		}
		population[i] = NewBat(i, pos, m.rng)
	}
	return population
}

// Evaluate decodes and scores every bat of the population. Bats are
// independent here, so the work may be spread over a worker pool.
func (m *MOBA) Evaluate(population []*Bat) {
	evalOne := func(b *Bat) {
		a := decoder.Decode(b.Position, m.workloads, m.capacities)
		b.SetEvaluation(a, m.problem.Evaluate(a))
	}

	if !m.config.ParallelExecution {
		for _, b := range population {
			evalOne(b)
		}
		return
	}

	workers := m.config.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	p := pool.New().WithMaxGoroutines(workers)
	for _, b := range population {
		b := b
		p.Go(func() {
			evalOne(b)
		})
	}
	p.Wait()
}

type passStats struct {
	admissions, evictions, drops int
}

// fold merges evaluated bats into the archive strictly in population order
func (m *MOBA) fold(archive *Archive, population []*Bat) passStats {
	var s passStats
	for _, b := range population {
		out := archive.Update(b)
		if out.Admitted {
			s.admissions++
			m.logger.V(4).Info("Bat admitted to archive", "bat", b.ID, "time", b.Fitness.Time, "cost", b.Fitness.Cost)
		}
		if out.Dropped {
			s.drops++
			m.logger.V(4).Info("Bat dropped from archive", "bat", b.ID)
		}
		s.evictions += len(out.Evicted)
	}
	return s
}

// evaluationPass evaluates and folds the population. generation is false for
// the lone pass of a zero-generation run, which is not counted as one.
func (m *MOBA) evaluationPass(archive *Archive, population []*Bat, generation bool) ([]framework.Fitness, passStats) {
	m.Evaluate(population)
	stats := m.fold(archive, population)

	fitness := make([]framework.Fitness, len(population))
	for i, b := range population {
		fitness[i] = b.Fitness
	}
	if generation {
		m.metrics.ObserveGeneration(len(population), stats.admissions, stats.evictions, stats.drops, archive.Len())
	} else {
		m.metrics.ObservePass(len(population), stats.admissions, stats.evictions, stats.drops, archive.Len())
	}
	return fitness, stats
}

// movementPass moves every bat that is not in the archive toward the reference
func (m *MOBA) movementPass(archive *Archive, population []*Bat, generation int) int {
	reference := archive.Reference()
	if reference == nil {
		return 0
	}
	moved := 0
	for _, b := range population {
		if archive.Contains(b) {
			continue
		}
		Move(b, reference, generation, m.config.Gamma, m.config.FrequencyMin, m.config.FrequencyMax, m.rng)
		moved++
	}
	return moved
}

// Run executes the bat algorithm for the configured number of generations.
// Every generation evaluates the whole population and folds it into the
// archive before any bat moves. With zero generations the initial population
// is evaluated once and nothing moves. The only early exit is context
// cancellation, checked between generations.
func (m *MOBA) Run(ctx context.Context) (*RunResult, error) {
	startTime := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MOBA.Run")
	defer span.End()
	span.SetAttributes(
		attribute.Int("mobat.population_size", m.config.PopulationSize),
		attribute.Int("mobat.generations", m.config.MaxGenerations),
		attribute.Int("mobat.tasks", m.problem.Instance.NumTasks()),
		attribute.Int("mobat.machines", m.problem.Instance.NumMachines()),
	)

	mode := "SEQUENTIAL"
	if m.config.ParallelExecution {
		mode = "PARALLEL"
	}
	m.logger.Info("Starting bat algorithm",
		"populationSize", m.config.PopulationSize,
		"generations", m.config.MaxGenerations,
		"gamma", m.config.Gamma,
		"qmin", m.config.FrequencyMin,
		"qmax", m.config.FrequencyMax,
		"tasks", m.problem.Instance.NumTasks(),
		"machines", m.problem.Instance.NumMachines(),
		"seeded", min(len(m.seeds), m.config.PopulationSize),
		"mode", mode)

	population := m.Initialize()
	archive := NewArchive()
	result := &RunResult{}

	if m.config.MaxGenerations == 0 {
		fitness, _ := m.evaluationPass(archive, population, false)
		result.Trace = append(result.Trace, fitness)
		result.Evaluations += len(population)
	}

	for e := 1; e <= m.config.MaxGenerations; e++ {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return nil, err
		}

		_, genSpan := otel.Tracer(tracerName).Start(ctx, "MOBA.Generation")
		genSpan.SetAttributes(attribute.Int("mobat.generation", e))

		fitness, stats := m.evaluationPass(archive, population, true)
		result.Trace = append(result.Trace, fitness)
		result.Evaluations += len(population)

		moved := m.movementPass(archive, population, e)
		genSpan.SetAttributes(attribute.Int("mobat.archive_size", archive.Len()))
		genSpan.End()

		result.Generations = e
		if v := m.logger.V(2); v.Enabled() && (e%10 == 0 || e <= 5 || e == m.config.MaxGenerations) {
			v.Info("Generation complete",
				"generation", e,
				"of", m.config.MaxGenerations,
				"archiveSize", archive.Len(),
				"populationFront", len(GetParetoFront(population)),
				"admitted", stats.admissions,
				"evicted", stats.evictions,
				"dropped", stats.drops,
				"moved", moved)
		}
	}

	result.Archive = archive.Results()
	result.Duration = time.Since(startTime)
	m.metrics.ObserveRun(result.Duration.Seconds())

	m.logger.Info("Bat algorithm completed",
		"archiveSize", len(result.Archive),
		"evaluations", result.Evaluations,
		"duration", result.Duration)
	return result, nil
}
