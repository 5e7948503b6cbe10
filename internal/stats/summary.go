package stats

import (
	"gonum.org/v1/gonum/stat"

	"archipelago/internal/genome"
	"archipelago/internal/model"
)

// Summarize reduces an evaluated member sequence to one generation
// record. Members are expected to carry valid fitnesses.
func Summarize(generation, island int, members []*genome.Individual, scale float64, evals int) model.GenerationStats {
	fits := make([]float64, 0, len(members))
	best := 0.0
	for i, ind := range members {
		fits = append(fits, ind.Fitness)
		if i == 0 || ind.Fitness > best {
			best = ind.Fitness
		}
	}

	mean := stat.Mean(fits, nil)
	variance := stat.Variance(fits, nil)
	return model.GenerationStats{
		Generation:   generation,
		Island:       island,
		BestFitness:  best,
		MeanFitness:  mean,
		FitnessVar:   variance,
		Evaluations:  evals,
		ScopingScale: scale,
	}
}
