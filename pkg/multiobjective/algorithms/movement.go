package algorithms

import (
	"math"

	"golang.org/x/exp/rand"
)

// LocalStep scales the random walk taken around the reference bat
const LocalStep = 0.1

// uniform draws from U(lo, hi)
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Move updates the velocity, position and pulse rate of a bat that is not
// in the archive. generation is 1-based.
//
// A single frequency and a single pulse draw are shared by all dimensions.
// When the pulse draw exceeds the bat's pulse rate the bat jumps next to the
// reference (exploitation); otherwise it follows its own velocity
// (exploration). Positions are not clamped.
func Move(bat, reference *Bat, generation int, gamma, qmin, qmax float64, rng *rand.Rand) {
	dim := len(bat.Position)
	newPos := make([]float64, dim)
	newVel := make([]float64, dim)

	freq := uniform(rng, qmin, qmax)
	pulseChance := rng.Float64()

	for d := 0; d < dim; d++ {
		newVel[d] = bat.Velocity[d] + (bat.Position[d]-reference.Position[d])*freq

		if pulseChance > bat.PulseRate {
			newPos[d] = reference.Position[d] + uniform(rng, -1, 1)*LocalStep
		} else {
			newPos[d] = bat.Position[d] + newVel[d]
		}
	}

	bat.Velocity = newVel
	bat.Position = newPos
	bat.PulseRate = PulseRate(bat.MaxPulseRate, gamma, generation)
}

// PulseRate returns maxRate * (1 - exp(-gamma*generation)). It rises
// monotonically toward maxRate for gamma > 0.
func PulseRate(maxRate, gamma float64, generation int) float64 {
	return maxRate * (1 - math.Exp(-gamma*float64(generation)))
}
