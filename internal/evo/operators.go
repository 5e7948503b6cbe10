package evo

import (
	"math/rand"

	"archipelago/internal/genome"
)

// Generate draws a fresh individual conforming to the schema: booleans
// by coin flip, ints and floats uniformly within the position's range.
// Fitness starts absent.
func Generate(rng *rand.Rand, s *genome.Schema) *genome.Individual {
	genes := make([]float64, s.Len())
	for i := range genes {
		b, _ := s.BoundsAt(i)
		switch s.KindAt(i) {
		case genome.KindBool:
			genes[i] = float64(rng.Intn(2))
		case genome.KindInt:
			genes[i] = float64(randInt(rng, b))
		case genome.KindFloat:
			genes[i] = b.Low + rng.Float64()*b.Width()
		}
	}
	return genome.NewIndividual(genes)
}

// Crossover recombines a pair in place with probability matepb using
// two-point crossover: two distinct cut indices are drawn uniformly and
// the gene segment between them is swapped whole-value, so schema
// conformance is preserved. A child whose genes changed loses its
// cached fitness. Genomes shorter than two positions are never
// recombined.
func Crossover(rng *rand.Rand, a, b *genome.Individual, matepb float64) {
	n := len(a.Genes)
	if n < 2 || rng.Float64() >= matepb {
		return
	}

	lo := rng.Intn(n)
	hi := rng.Intn(n - 1)
	if hi >= lo {
		hi++
	} else {
		lo, hi = hi, lo
	}

	changed := false
	for i := lo; i < hi; i++ {
		if a.Genes[i] != b.Genes[i] {
			changed = true
		}
		a.Genes[i], b.Genes[i] = b.Genes[i], a.Genes[i]
	}
	if changed {
		a.Invalidate()
		b.Invalidate()
	}
}

// Mutate perturbs one individual in place. With probability mutpb the
// individual is eligible; each gene then mutates independently with
// probability indpb: booleans flip, ints resample uniformly within
// their range, floats move by a zero-mean offset scaled by
// scale×width, clamped when the schema carries explicit bounds. Any
// mutated gene drops the cached fitness.
func Mutate(rng *rand.Rand, s *genome.Schema, ind *genome.Individual, mutpb, indpb, scale float64) {
	if rng.Float64() >= mutpb {
		return
	}

	changed := false
	for i := range ind.Genes {
		if rng.Float64() >= indpb {
			continue
		}
		b, explicit := s.BoundsAt(i)
		old := ind.Genes[i]
		switch s.KindAt(i) {
		case genome.KindBool:
			ind.Genes[i] = 1 - ind.Genes[i]
		case genome.KindInt:
			ind.Genes[i] = float64(randInt(rng, b))
		case genome.KindFloat:
			offset := (rng.Float64()*2 - 1) * scale * b.Width() / 2
			next := ind.Genes[i] + offset
			if explicit {
				next = b.Clamp(next)
			}
			ind.Genes[i] = next
		}
		if ind.Genes[i] != old {
			changed = true
		}
	}
	if changed {
		ind.Invalidate()
	}
}

// randInt draws a uniform integer from the inclusive range spanned by b.
func randInt(rng *rand.Rand, b genome.Bounds) int64 {
	lo := int64(b.Low)
	if float64(lo) < b.Low {
		lo++
	}
	hi := int64(b.High)
	if float64(hi) > b.High {
		hi--
	}
	if hi <= lo {
		return lo
	}
	return lo + rng.Int63n(hi-lo+1)
}
