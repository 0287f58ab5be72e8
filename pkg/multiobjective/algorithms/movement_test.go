package algorithms_test

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/cloudsched/mobat/pkg/multiobjective/algorithms"
)

func TestPulseRate(t *testing.T) {
	if got := algorithms.PulseRate(0.8, 0.1, 0); got != 0 {
		t.Errorf("PulseRate at generation 0 = %v, want 0", got)
	}

	want := 0.8 * (1 - math.Exp(-0.1))
	if got := algorithms.PulseRate(0.8, 0.1, 1); math.Abs(got-want) > 1e-15 {
		t.Errorf("PulseRate(0.8, 0.1, 1) = %v, want %v", got, want)
	}

	prev := 0.0
	for e := 1; e <= 200; e++ {
		r := algorithms.PulseRate(0.8, 0.1, e)
		if r < prev {
			t.Fatalf("pulse rate decreased at generation %d: %v < %v", e, r, prev)
		}
		if r > 0.8 {
			t.Fatalf("pulse rate %v exceeds its maximum", r)
		}
		prev = r
	}
}

func TestMoveExploration(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	reference := &algorithms.Bat{ID: 0, Position: []float64{0.2, 0.4}}
	bat := &algorithms.Bat{
		ID:           1,
		Position:     []float64{0.6, 0.1},
		Velocity:     []float64{0.1, -0.1},
		MaxPulseRate: 0.5,
		PulseRate:    1, // pulse draw in [0,1) never exceeds it
	}

	// fixed frequency 0.5
	algorithms.Move(bat, reference, 3, 0.1, 0.5, 0.5, rng)

	wantVel := []float64{0.1 + (0.6-0.2)*0.5, -0.1 + (0.1-0.4)*0.5}
	wantPos := []float64{0.6 + wantVel[0], 0.1 + wantVel[1]}
	for d := range wantVel {
		if math.Abs(bat.Velocity[d]-wantVel[d]) > 1e-12 {
			t.Errorf("velocity[%d] = %v, want %v", d, bat.Velocity[d], wantVel[d])
		}
		if math.Abs(bat.Position[d]-wantPos[d]) > 1e-12 {
			t.Errorf("position[%d] = %v, want %v", d, bat.Position[d], wantPos[d])
		}
	}

	if want := algorithms.PulseRate(0.5, 0.1, 3); bat.PulseRate != want {
		t.Errorf("pulse rate = %v, want %v", bat.PulseRate, want)
	}
	if reference.Position[0] != 0.2 || reference.Position[1] != 0.4 {
		t.Error("reference position must not change")
	}
}

func TestMoveExploitation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	reference := &algorithms.Bat{ID: 0, Position: []float64{0.2, 0.4, 3.0}}

	for trial := 0; trial < 50; trial++ {
		bat := &algorithms.Bat{
			ID:        1,
			Position:  []float64{0.9, 0.9, 0.9},
			Velocity:  []float64{0, 0, 0},
			PulseRate: -1, // every pulse draw exceeds it
		}
		algorithms.Move(bat, reference, 1, 0.1, 0, 1, rng)

		for d := range bat.Position {
			if diff := math.Abs(bat.Position[d] - reference.Position[d]); diff > algorithms.LocalStep {
				t.Fatalf("trial %d: position[%d] = %v is %v away from the reference", trial, d, bat.Position[d], diff)
			}
		}
	}
}

func TestMoveUpdatesVelocityWhenExploiting(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	reference := &algorithms.Bat{ID: 0, Position: []float64{0.25}}
	bat := &algorithms.Bat{ID: 1, Position: []float64{0.75}, Velocity: []float64{0.5}, PulseRate: -1}

	// fixed frequency 2
	algorithms.Move(bat, reference, 1, 0.1, 2, 2, rng)
	if want := 0.5 + (0.75-0.25)*2; bat.Velocity[0] != want {
		t.Errorf("velocity = %v, want %v", bat.Velocity[0], want)
	}
}

func TestMoveDoesNotClamp(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	reference := &algorithms.Bat{ID: 0, Position: []float64{0}}
	bat := &algorithms.Bat{ID: 1, Position: []float64{1}, Velocity: []float64{5}, PulseRate: 1}

	algorithms.Move(bat, reference, 1, 0.1, 1, 1, rng)
	// velocity 5 + (1-0)*1 = 6, position 1 + 6 = 7
	if bat.Position[0] != 7 {
		t.Errorf("position = %v, want 7 (no clamping)", bat.Position[0])
	}
}
