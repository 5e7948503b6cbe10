package evo

import (
	"math/rand"

	"archipelago/internal/genome"
)

// SelectTournament fills a pool of newsize clones by running
// independent tournaments: each draws tournsize members uniformly with
// replacement and keeps the one with the highest fitness, ties going to
// the first drawn. Every member must already carry a valid fitness.
func SelectTournament(rng *rand.Rand, members []*genome.Individual, tournsize, newsize int) []*genome.Individual {
	if newsize <= 0 {
		newsize = len(members)
	}
	selected := make([]*genome.Individual, 0, newsize)
	for t := 0; t < newsize; t++ {
		winner := members[rng.Intn(len(members))]
		for i := 1; i < tournsize; i++ {
			challenger := members[rng.Intn(len(members))]
			if challenger.Fitness > winner.Fitness {
				winner = challenger
			}
		}
		selected = append(selected, winner.Clone())
	}
	return selected
}

// Best folds a member sequence to the individual with the highest
// fitness, first-seen winning ties. Members without a valid fitness are
// skipped; nil when none qualify.
func Best(members []*genome.Individual) *genome.Individual {
	var best *genome.Individual
	for _, ind := range members {
		if !ind.Valid {
			continue
		}
		if best == nil || ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best
}

// FitnessFunc scores a raw gene sequence. It must be pure and
// deterministic for a given sequence; an error aborts the evolution
// call that triggered the evaluation.
type FitnessFunc func(genes []float64) (float64, error)

// Evaluate scores every member whose fitness is absent and reports how
// many evaluations ran. The first fitness error propagates unwrapped.
func Evaluate(fn FitnessFunc, members []*genome.Individual) (int, error) {
	evals := 0
	for _, ind := range members {
		if ind.Valid {
			continue
		}
		fitness, err := fn(ind.Genes)
		if err != nil {
			return evals, err
		}
		ind.Fitness = fitness
		ind.Valid = true
		evals++
	}
	return evals, nil
}
