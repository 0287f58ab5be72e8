package algorithms

import (
	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// NonDominatedSort performs non-dominated sorting on a set of fitness pairs
// and returns the fronts as index lists. Front 0 holds the points no other
// point strictly dominates.
func NonDominatedSort(points []framework.Fitness) [][]int {
	if len(points) == 0 {
		return nil
	}

	var fronts [][]int
	dominated := make([][]int, len(points))
	domCount := make([]int, len(points))

	// Calculate domination for each point
	for i := range points {
		for j := range points {
			if i == j {
				continue
			}
			if Dominates(points[i], points[j]) {
				dominated[i] = append(dominated[i], j)
			} else if Dominates(points[j], points[i]) {
				domCount[i]++
			}
		}
	}

	// Find first front
	var current []int
	for i := range points {
		if domCount[i] == 0 {
			current = append(current, i)
		}
	}

	// Find subsequent fronts
	for len(current) > 0 {
		fronts = append(fronts, current)
		var next []int
		for _, idx := range current {
			for _, d := range dominated[idx] {
				domCount[d]--
				if domCount[d] == 0 {
					next = append(next, d)
				}
			}
		}
		current = next
	}

	return fronts
}

// GetParetoFront extracts the first non-dominated front of evaluated bats
func GetParetoFront(population []*Bat) []framework.Fitness {
	points := make([]framework.Fitness, len(population))
	for i, b := range population {
		points[i] = b.Fitness
	}
	fronts := NonDominatedSort(points)
	if len(fronts) == 0 {
		return nil
	}

	front := make([]framework.Fitness, len(fronts[0]))
	for i, idx := range fronts[0] {
		front[i] = points[idx]
	}
	SortFront(front)
	return front
}

// FlattenTrace returns every fitness pair of a trace in generation order
func FlattenTrace(trace [][]framework.Fitness) []framework.Fitness {
	var out []framework.Fitness
	for _, gen := range trace {
		out = append(out, gen...)
	}
	return out
}
