package archipelago

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
)

func boolPrototype(n int) []any {
	proto := make([]any, n)
	for i := range proto {
		proto[i] = false
	}
	return proto
}

func sumFitness(genes []float64) (float64, error) {
	total := 0.0
	for _, g := range genes {
		total += g
	}
	return total, nil
}

func quietOneMax(t *testing.T, genomeLen, popsize int, seed int64, opts ...Option) *Population {
	t.Helper()
	opts = append([]Option{WithSeed(seed), WithProgress(io.Discard)}, opts...)
	pop, err := NewPopulation(boolPrototype(genomeLen), nil, sumFitness, opts...)
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	if err := pop.Populate(popsize, nil); err != nil {
		t.Fatalf("populate: %v", err)
	}
	return pop
}

func TestNewPopulationRequiresFitness(t *testing.T) {
	if _, err := NewPopulation(boolPrototype(4), nil, nil); err == nil {
		t.Fatal("expected error for nil fitness function")
	}
}

func TestPopulateGeneratesAndEvaluates(t *testing.T) {
	pop := quietOneMax(t, 10, 25, 1)
	if pop.Len() != 25 {
		t.Fatalf("len = %d, want 25", pop.Len())
	}
	if pop.Best() == nil {
		t.Fatal("expected Best to be defined after Populate")
	}
	if pop.Evaluations() != 25 {
		t.Fatalf("evaluations = %d, want 25", pop.Evaluations())
	}
	for _, ind := range pop.Slice(0, pop.Len()) {
		if !ind.Valid {
			t.Fatal("expected every initial individual to be evaluated")
		}
		for j, g := range ind.Genes {
			if g != 0 && g != 1 {
				t.Fatalf("gene %d = %f, want 0 or 1", j, g)
			}
		}
	}
}

func TestPopulateFromBase(t *testing.T) {
	pop, err := NewPopulation(boolPrototype(3), nil, sumFitness, WithProgress(io.Discard))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	base := [][]float64{{0, 0, 1}, {1, 1, 1}}
	if err := pop.Populate(0, base); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if pop.Len() != 2 {
		t.Fatalf("len = %d, want 2", pop.Len())
	}
	if pop.Best().Fitness != 3 {
		t.Fatalf("best fitness = %f, want 3", pop.Best().Fitness)
	}

	// The base slices must have been copied.
	base[1][0] = 0
	if pop.At(1).Genes[0] != 1 {
		t.Fatal("population shares memory with the base slices")
	}
}

func TestPopulateErrors(t *testing.T) {
	pop, err := NewPopulation(boolPrototype(3), nil, sumFitness, WithProgress(io.Discard))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}

	if err := pop.Populate(0, nil); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState for non-positive popsize, got %v", err)
	}
	if err := pop.Populate(3, [][]float64{{0, 0, 1}}); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema for popsize disagreement, got %v", err)
	}
	if err := pop.Populate(0, [][]float64{{0, 0.5, 1}}); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema for non-boolean base gene, got %v", err)
	}
	if err := pop.Populate(0, [][]float64{{0, 1}}); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema for short base individual, got %v", err)
	}
}

func TestEvolveBeforePopulate(t *testing.T) {
	pop, err := NewPopulation(boolPrototype(3), nil, sumFitness, WithProgress(io.Discard))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	opts := DefaultEvolveOptions()
	opts.Verbose = false
	if err := pop.Evolve(context.Background(), 5, opts); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState, got %v", err)
	}
}

func TestEvolveOneMax(t *testing.T) {
	pop := quietOneMax(t, 100, 50, 42)
	initialBest := pop.Best().Fitness

	bests := make([]float64, 0, 50)
	pop.observers = append(pop.observers, func(GenerationStats) {
		bests = append(bests, pop.Best().Fitness)
	})

	opts := DefaultEvolveOptions()
	opts.Verbose = false
	if err := pop.Evolve(context.Background(), 50, opts); err != nil {
		t.Fatalf("evolve: %v", err)
	}

	if pop.Len() != 50 {
		t.Fatalf("len = %d, want 50 after evolution", pop.Len())
	}
	if len(bests) != 50 {
		t.Fatalf("observed %d generations, want 50", len(bests))
	}
	best := pop.Best().Fitness
	if best <= initialBest {
		t.Fatalf("best did not improve: initial %f, final %f", initialBest, best)
	}
	if best > 100 {
		t.Fatalf("best %f exceeds the genome length", best)
	}
	// The tracked best never regresses across generations.
	seen := initialBest
	for gen, b := range bests {
		if b < seen {
			t.Fatalf("generation %d best %f below earlier best %f", gen, b, seen)
		}
		seen = b
	}
}

func TestEvolveScopingShrinksLateSteps(t *testing.T) {
	const genomeLen = 5
	proto := make([]any, genomeLen)
	bounds := make([]Bounds, genomeLen)
	start := make([]float64, genomeLen)
	for i := range proto {
		proto[i] = 0.5
		bounds[i] = Bounds{Low: 0, High: 1}
		start[i] = 0.5
	}
	fitness := func(genes []float64) (float64, error) {
		total := 0.0
		for _, g := range genes {
			d := g - 0.5
			total -= d * d
		}
		return total, nil
	}

	pop, err := NewPopulation(proto, bounds, fitness, WithSeed(77), WithProgress(io.Discard))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	if err := pop.Populate(0, [][]float64{start}); err != nil {
		t.Fatalf("populate: %v", err)
	}

	// A lone individual with crossover off and a one-member tournament
	// changes only through mutation, so the generation-over-generation
	// gene delta is the mutation step itself.
	prev := pop.At(0).Slice(0, genomeLen)
	steps := make([]float64, 0, 50)
	pop.observers = append(pop.observers, func(GenerationStats) {
		cur := pop.At(0).Slice(0, genomeLen)
		total := 0.0
		for i := range cur {
			total += math.Abs(cur[i] - prev[i])
		}
		steps = append(steps, total/genomeLen)
		prev = cur
	})

	opts := DefaultEvolveOptions()
	opts.MatePb = 0
	opts.MutPb = 1
	opts.IndPb = 1
	opts.Scoping = 1
	opts.TournSize = 1
	opts.Verbose = false
	if err := pop.Evolve(context.Background(), 50, opts); err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if len(steps) != 50 {
		t.Fatalf("observed %d generations, want 50", len(steps))
	}

	window := func(lo, hi int) float64 {
		total := 0.0
		for _, s := range steps[lo:hi] {
			total += s
		}
		return total / float64(hi-lo)
	}
	early, late := window(0, 10), window(40, 50)
	if late >= early {
		t.Fatalf("late mutation steps did not shrink: first 10 gens %g, last 10 gens %g", early, late)
	}
}

func TestEvolveDeterministicWithSeed(t *testing.T) {
	run := func() float64 {
		pop := quietOneMax(t, 40, 30, 7)
		opts := DefaultEvolveOptions()
		opts.Verbose = false
		if err := pop.Evolve(context.Background(), 20, opts); err != nil {
			t.Fatalf("evolve: %v", err)
		}
		return pop.Best().Fitness
	}
	if a, b := run(), run(); a != b {
		t.Fatalf("same seed produced different bests: %f vs %f", a, b)
	}
}

func TestEvolveValidatesOptions(t *testing.T) {
	pop := quietOneMax(t, 5, 10, 1)
	ctx := context.Background()

	opts := DefaultEvolveOptions()
	opts.Verbose = false
	if err := pop.Evolve(ctx, 0, opts); err == nil {
		t.Fatal("expected error for non-positive ngen")
	}

	bad := opts
	bad.MatePb = 1.5
	if err := pop.Evolve(ctx, 5, bad); err == nil {
		t.Fatal("expected error for out-of-range matepb")
	}

	bad = opts
	bad.TournSize = 0
	if err := pop.Evolve(ctx, 5, bad); err == nil {
		t.Fatal("expected error for non-positive tournsize")
	}
}

func TestEvolveHonorsContextCancellation(t *testing.T) {
	pop := quietOneMax(t, 10, 20, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultEvolveOptions()
	opts.Verbose = false
	if err := pop.Evolve(ctx, 10, opts); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEvolvePropagatesFitnessError(t *testing.T) {
	boom := errors.New("sensor offline")
	calls := 0
	pop, err := NewPopulation(boolPrototype(4), nil, func(genes []float64) (float64, error) {
		calls++
		if calls > 10 {
			return 0, boom
		}
		return sumFitness(genes)
	}, WithSeed(9), WithProgress(io.Discard))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	if err := pop.Populate(10, nil); err != nil {
		t.Fatalf("populate: %v", err)
	}

	opts := DefaultEvolveOptions()
	opts.Verbose = false
	if err := pop.Evolve(context.Background(), 10, opts); !errors.Is(err, boom) {
		t.Fatalf("expected the fitness error unwrapped, got %v", err)
	}
}

func TestSetValidatesAgainstSchema(t *testing.T) {
	pop := quietOneMax(t, 3, 4, 5)

	if err := pop.Set(0, &Individual{Genes: []float64{1, 0, 1}}); err != nil {
		t.Fatalf("set valid individual: %v", err)
	}
	if err := pop.Set(0, &Individual{Genes: []float64{1, 0.5, 1}}); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema for non-boolean gene, got %v", err)
	}
	if err := pop.Set(0, nil); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema for nil individual, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	pop := quietOneMax(t, 6, 8, 11)
	clone := pop.Clone()

	clone.At(0).Genes[0] = 1 - clone.At(0).Genes[0]
	if pop.At(0).Genes[0] == clone.At(0).Genes[0] {
		t.Fatal("clone shares gene memory with the original")
	}

	opts := DefaultEvolveOptions()
	opts.Verbose = false
	if err := clone.Evolve(context.Background(), 5, opts); err != nil {
		t.Fatalf("evolve clone: %v", err)
	}
	if pop.Evaluations() != 8 {
		t.Fatalf("evolving the clone changed the original's evaluation count: %d", pop.Evaluations())
	}
}
