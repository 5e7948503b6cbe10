package archipelago

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"archipelago/internal/evo"
	"archipelago/internal/genome"
	"archipelago/internal/model"
	"archipelago/internal/stats"
)

// Re-exported building blocks, so callers never import internal
// packages directly.
type (
	// Individual is one candidate solution; see genome.Individual.
	Individual = genome.Individual
	// Bounds is an inclusive [Low, High] range for one gene position.
	Bounds = genome.Bounds
	// Kind tags the static type of one gene position.
	Kind = genome.Kind
	// Sequence is the list-like capability shared by Individual (over
	// genes) and Population (over individuals).
	Sequence[E any] = genome.Sequence[E]
	// FitnessFunc scores a raw gene sequence. It must be pure; errors
	// abort the evolution call in progress and are never retried.
	FitnessFunc = evo.FitnessFunc
	// GenerationStats summarizes one generation of one population.
	GenerationStats = model.GenerationStats
)

const (
	KindBool  = genome.KindBool
	KindInt   = genome.KindInt
	KindFloat = genome.KindFloat
)

// Observer receives the statistics of every completed generation.
type Observer func(GenerationStats)

// Population owns a genotype schema, a fitness function and an ordered
// sequence of individuals, and runs the single-population generational
// loop. It is not safe for concurrent use.
type Population struct {
	schema    *genome.Schema
	fitness   FitnessFunc
	members   []*genome.Individual
	best      *genome.Individual
	rng       *rand.Rand
	seed      int64
	reporter  *stats.Reporter
	observers []Observer

	// island is the 1-based position inside an IslandModel, 0 for a
	// standalone population. Only used for reporting.
	island     int
	totalEvals int
}

// Option configures a Population at construction time.
type Option func(*Population)

// WithSeed makes the population's random source reproducible.
func WithSeed(seed int64) Option {
	return func(p *Population) {
		p.seed = seed
		p.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand supplies the random source directly, overriding WithSeed.
func WithRand(rng *rand.Rand) Option {
	return func(p *Population) {
		p.rng = rng
	}
}

// WithProgress redirects verbose per-generation reporting, which
// otherwise goes to stdout.
func WithProgress(w io.Writer) Option {
	return func(p *Population) {
		p.reporter = stats.NewReporter(w)
	}
}

// WithObserver registers a callback for every completed generation,
// independent of the Verbose flag.
func WithObserver(fn Observer) Option {
	return func(p *Population) {
		p.observers = append(p.observers, fn)
	}
}

// NewPopulation derives the genotype schema from the prototype (values
// fix each position's kind only) and optional bounds, and binds the
// fitness function. The population starts empty; call Populate before
// Evolve.
func NewPopulation(prototype []any, bounds []Bounds, fitness FitnessFunc, opts ...Option) (*Population, error) {
	if fitness == nil {
		return nil, fmt.Errorf("fitness function is required")
	}
	schema, err := genome.NewSchema(prototype, bounds)
	if err != nil {
		return nil, err
	}

	p := &Population{
		schema:  schema,
		fitness: fitness,
		seed:    time.Now().UnixNano(),
	}
	p.rng = rand.New(rand.NewSource(p.seed))
	p.reporter = stats.NewReporter(os.Stdout)
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Populate seeds the population. Without a base population it generates
// popsize random individuals. With one, each element is wrapped as an
// individual with fitness absent and validated against the schema;
// popsize is inferred from its length and, when also given, must agree.
// The initial population is evaluated before Populate returns, so Best
// is defined immediately.
func (p *Population) Populate(popsize int, base [][]float64) error {
	if base == nil {
		if popsize <= 0 {
			return fmt.Errorf("%w: popsize must be positive, got %d", ErrState, popsize)
		}
		members := make([]*genome.Individual, popsize)
		for i := range members {
			members[i] = evo.Generate(p.rng, p.schema)
		}
		p.members = members
		return p.evaluate()
	}

	if popsize > 0 && popsize != len(base) {
		return fmt.Errorf("%w: popsize %d disagrees with base population size %d", ErrSchema, popsize, len(base))
	}
	if len(base) == 0 {
		return fmt.Errorf("%w: empty base population", ErrSchema)
	}
	members := make([]*genome.Individual, len(base))
	for i, genes := range base {
		if err := p.schema.Validate(genes); err != nil {
			return fmt.Errorf("base individual %d: %w", i, err)
		}
		copied := make([]float64, len(genes))
		copy(copied, genes)
		members[i] = genome.NewIndividual(copied)
	}
	p.members = members
	return p.evaluate()
}

// EvolveOptions are the knobs of one evolution run. Use
// DefaultEvolveOptions as the base and override selectively.
type EvolveOptions struct {
	// MatePb is the per-pair crossover probability.
	MatePb float64
	// MutPb is the per-individual mutation probability.
	MutPb float64
	// IndPb is the per-gene mutation probability of an eligible
	// individual.
	IndPb float64
	// Scoping shrinks float mutation steps as generations advance:
	// the step scale at generation g is (1-g/ngen)^Scoping. Zero or
	// negative disables the decay.
	Scoping float64
	// TournSize is the tournament size of the selection stage.
	TournSize int
	// Verbose reports per-generation progress; it has no effect on
	// the evolution itself.
	Verbose bool
}

func DefaultEvolveOptions() EvolveOptions {
	return EvolveOptions{
		MatePb:    0.3,
		MutPb:     0.2,
		IndPb:     0.05,
		Scoping:   0,
		TournSize: 3,
		Verbose:   true,
	}
}

func (o EvolveOptions) validate() error {
	for _, pb := range []struct {
		name  string
		value float64
	}{
		{"matepb", o.MatePb},
		{"mutpb", o.MutPb},
		{"indpb", o.IndPb},
	} {
		if pb.value < 0 || pb.value > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %g", pb.name, pb.value)
		}
	}
	if o.TournSize < 1 {
		return fmt.Errorf("tournsize must be >= 1, got %d", o.TournSize)
	}
	return nil
}

// Evolve advances the population ngen generations in place: evaluate
// missing fitnesses, select popsize tournament winners, vary them in
// disjoint consecutive pairs (crossover, then mutation with the
// generation's scoping scale) and replace the previous generation
// wholesale. The all-time best individual is tracked separately; no
// other elitism applies.
func (p *Population) Evolve(ctx context.Context, ngen int, opts EvolveOptions) error {
	if err := p.ready(); err != nil {
		return err
	}
	if ngen <= 0 {
		return fmt.Errorf("ngen must be positive, got %d", ngen)
	}
	if err := opts.validate(); err != nil {
		return err
	}
	if err := p.evaluate(); err != nil {
		return err
	}
	for gen := 0; gen < ngen; gen++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.step(gen, ngen, opts); err != nil {
			return err
		}
	}
	return nil
}

// Step advances exactly one generation gen of a nominal ngen-generation
// run. The pair only feeds the scoping schedule; island coordination
// uses Step to interleave generations with migration.
func (p *Population) Step(ctx context.Context, gen, ngen int, opts EvolveOptions) error {
	if err := p.ready(); err != nil {
		return err
	}
	if err := opts.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.evaluate(); err != nil {
		return err
	}
	return p.step(gen, ngen, opts)
}

func (p *Population) step(gen, ngen int, opts EvolveOptions) error {
	pool := evo.SelectTournament(p.rng, p.members, opts.TournSize, len(p.members))
	scale := evo.Scale(opts.Scoping, gen, ngen)
	for i := 0; i+1 < len(pool); i += 2 {
		evo.Crossover(p.rng, pool[i], pool[i+1], opts.MatePb)
	}
	for _, ind := range pool {
		evo.Mutate(p.rng, p.schema, ind, opts.MutPb, opts.IndPb, scale)
	}
	p.members = pool

	evals, err := evo.Evaluate(p.fitness, p.members)
	if err != nil {
		return err
	}
	p.totalEvals += evals
	p.foldBest()

	st := stats.Summarize(gen, p.island, p.members, scale, evals)
	p.publish(st, opts.Verbose)
	return nil
}

func (p *Population) publish(st GenerationStats, verbose bool) {
	if verbose {
		p.reporter.Generation(st)
	}
	for _, observe := range p.observers {
		observe(st)
	}
}

func (p *Population) evaluate() error {
	evals, err := evo.Evaluate(p.fitness, p.members)
	if err != nil {
		return err
	}
	p.totalEvals += evals
	p.foldBest()
	return nil
}

// foldBest recomputes the all-time best: the current generation's best
// replaces it only on a strict improvement, so the first-seen holder
// wins ties.
func (p *Population) foldBest() {
	generationBest := evo.Best(p.members)
	if generationBest == nil {
		return
	}
	if p.best == nil || generationBest.Fitness > p.best.Fitness {
		p.best = generationBest.Clone()
	}
}

func (p *Population) ready() error {
	if len(p.members) == 0 {
		return fmt.Errorf("%w: population is empty; call Populate first", ErrState)
	}
	return nil
}

// Best returns the fittest individual seen across the population's
// history, or nil before the first evaluation.
func (p *Population) Best() *Individual {
	return p.best
}

// Evaluations returns the total number of fitness evaluations run so
// far.
func (p *Population) Evaluations() int {
	return p.totalEvals
}

// Len returns the number of individuals.
func (p *Population) Len() int {
	return len(p.members)
}

// At returns the individual at position i.
func (p *Population) At(i int) *Individual {
	return p.members[i]
}

// Set replaces the individual at position i after validating it
// against the schema.
func (p *Population) Set(i int, ind *Individual) error {
	if ind == nil {
		return fmt.Errorf("%w: nil individual", ErrSchema)
	}
	if err := p.schema.Validate(ind.Genes); err != nil {
		return err
	}
	p.members[i] = ind
	return nil
}

// Slice returns a copy of the member sequence [lo, hi); the individuals
// themselves are shared. Ranging over Slice(0, Len()) is the forward
// iteration surface.
func (p *Population) Slice(lo, hi int) []*Individual {
	out := make([]*Individual, hi-lo)
	copy(out, p.members[lo:hi])
	return out
}

// Clone value-copies the population: individuals and the tracked best
// are deep-copied, the schema and fitness function are shared, and the
// copy gets its own random source derived from the parent's.
func (p *Population) Clone() *Population {
	clone := p.snapshot(p.rng.Int63())
	clone.reporter = p.reporter
	clone.observers = append([]Observer(nil), p.observers...)
	return clone
}

// snapshot deep-copies the evolution state with a fresh random source
// and no attached reporting, for handing to an isolated worker.
func (p *Population) snapshot(seed int64) *Population {
	members := make([]*genome.Individual, len(p.members))
	for i, ind := range p.members {
		members[i] = ind.Clone()
	}
	var best *genome.Individual
	if p.best != nil {
		best = p.best.Clone()
	}
	return &Population{
		schema:     p.schema,
		fitness:    p.fitness,
		members:    members,
		best:       best,
		rng:        rand.New(rand.NewSource(seed)),
		seed:       seed,
		island:     p.island,
		totalEvals: p.totalEvals,
	}
}

var _ Sequence[*Individual] = (*Population)(nil)
