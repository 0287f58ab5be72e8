package algorithms

import (
	"golang.org/x/exp/rand"

	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// Bat is one candidate of the population. Bats are handled by pointer and
// compared by ID, never by fitness: two bats may share a fitness pair while
// being different candidates.
type Bat struct {
	ID int

	// Position holds one priority key per task; only the relative order is
	// used when decoding. It starts in [0,1] and is never clamped afterwards.
	Position []float64
	Velocity []float64

	// MaxPulseRate is drawn once at creation; PulseRate grows toward it as
	// generations pass.
	MaxPulseRate float64
	PulseRate    float64

	// Fitness and Assignment come from the most recent evaluation
	Fitness    framework.Fitness
	Assignment framework.Assignment

	evaluated bool
}

// NewBat creates a bat at the given position with zero velocity
func NewBat(id int, position []float64, rng *rand.Rand) *Bat {
	return &Bat{
		ID:           id,
		Position:     position,
		Velocity:     make([]float64, len(position)),
		MaxPulseRate: rng.Float64(),
	}
}

// RandomPosition draws a position uniformly from [0,1]^dim
func RandomPosition(dim int, rng *rand.Rand) []float64 {
	pos := make([]float64, dim)
	for d := range pos {
		pos[d] = rng.Float64()
	}
	return pos
}

// SetEvaluation stores the result of decoding and scoring the current position
func (b *Bat) SetEvaluation(a framework.Assignment, f framework.Fitness) {
	b.Assignment = a
	b.Fitness = f
	b.evaluated = true
}

// Evaluated reports whether the bat has been scored at least once
func (b *Bat) Evaluated() bool {
	return b.evaluated
}
