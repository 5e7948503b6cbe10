package archipelago

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"time"

	"archipelago/internal/genome"
	"archipelago/internal/stats"
)

// IslandModel coordinates several populations sharing a compatible
// schema (same length and per-position kinds; sizes may differ). It
// interleaves synchronized batches of independent evolution with ring
// migration. Not safe for concurrent use.
type IslandModel struct {
	islands  []*Population
	rng      *rand.Rand
	reporter *stats.Reporter
}

// IslandOption configures an IslandModel at construction time.
type IslandOption func(*IslandModel)

// WithIslandSeed makes the coordinator's random source reproducible; it
// drives migration-independent draws such as worker seeds and SelectPop
// sampling. Island populations keep their own sources.
func WithIslandSeed(seed int64) IslandOption {
	return func(m *IslandModel) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// WithIslandProgress redirects the coordinator's migration reporting,
// which otherwise goes to the first island's progress writer.
func WithIslandProgress(w io.Writer) IslandOption {
	return func(m *IslandModel) {
		m.reporter = stats.NewReporter(w)
	}
}

// NewIslandModel binds at least two populations into one model. All
// populations must share a compatible schema; sizes may differ.
func NewIslandModel(islands []*Population, opts ...IslandOption) (*IslandModel, error) {
	if len(islands) < 2 {
		return nil, fmt.Errorf("%w: at least two islands required, got %d", ErrState, len(islands))
	}
	first := islands[0]
	for i, island := range islands[1:] {
		if !first.schema.Compatible(island.schema) {
			return nil, fmt.Errorf("%w: island %d schema incompatible with island 0", ErrSchema, i+1)
		}
	}

	m := &IslandModel{
		islands:  append([]*Population(nil), islands...),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		reporter: first.reporter,
	}
	for i, island := range m.islands {
		island.island = i + 1
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Islands returns the coordinated populations in order.
func (m *IslandModel) Islands() []*Population {
	return append([]*Population(nil), m.islands...)
}

// Size returns the total individual count across all islands.
func (m *IslandModel) Size() int {
	total := 0
	for _, island := range m.islands {
		total += island.Len()
	}
	return total
}

// Best returns the fittest individual across all islands' tracked
// bests, the earliest island winning ties, or nil before any
// evaluation.
func (m *IslandModel) Best() *Individual {
	var best *genome.Individual
	for _, island := range m.islands {
		candidate := island.Best()
		if candidate == nil {
			continue
		}
		if best == nil || candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best
}

// AmalgPop amalgamates every island, in island order, into one large
// population sharing the first island's schema and fitness function.
// Individuals are value-copied; the source islands are untouched.
func (m *IslandModel) AmalgPop() (*Population, error) {
	first := m.islands[0]
	out := first.snapshot(m.rng.Int63())
	out.island = 0

	members := make([]*genome.Individual, 0, m.Size())
	for _, island := range m.islands {
		for _, ind := range island.members {
			members = append(members, ind.Clone())
		}
	}
	out.members = members
	out.best = nil
	if err := out.evaluate(); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectPop draws a uniform random sample, without replacement, of the
// first island's size from the amalgamation of all islands. Useful for
// reseeding or re-balancing a single population from the whole model.
func (m *IslandModel) SelectPop() (*Population, error) {
	first := m.islands[0]
	out := first.snapshot(m.rng.Int63())
	out.island = 0

	pool := make([]*genome.Individual, 0, m.Size())
	for _, island := range m.islands {
		for _, ind := range island.members {
			pool = append(pool, ind.Clone())
		}
	}
	members := make([]*genome.Individual, 0, first.Len())
	for _, idx := range m.rng.Perm(len(pool))[:first.Len()] {
		members = append(members, pool[idx])
	}
	out.members = members
	out.best = nil
	if err := out.evaluate(); err != nil {
		return nil, err
	}
	return out, nil
}

// IslandEvolveOptions extends EvolveOptions with the migration knobs.
// Use DefaultIslandEvolveOptions as the base.
type IslandEvolveOptions struct {
	EvolveOptions
	// MigFreq is the number of generations each island evolves
	// between migrations.
	MigFreq int
	// Migrants is the number of individuals each island donates per
	// migration.
	Migrants int
}

func DefaultIslandEvolveOptions() IslandEvolveOptions {
	return IslandEvolveOptions{
		EvolveOptions: DefaultEvolveOptions(),
		MigFreq:       5,
		Migrants:      1,
	}
}

func (m *IslandModel) validateRun(ngen int, opts IslandEvolveOptions) error {
	if ngen <= 0 {
		return fmt.Errorf("ngen must be positive, got %d", ngen)
	}
	if err := opts.validate(); err != nil {
		return err
	}
	if opts.MigFreq < 1 {
		return fmt.Errorf("mig_freq must be >= 1, got %d", opts.MigFreq)
	}
	if opts.Migrants < 1 {
		return fmt.Errorf("migrants must be >= 1, got %d", opts.Migrants)
	}
	for i, island := range m.islands {
		if island.Len() == 0 {
			return fmt.Errorf("%w: island %d is empty; call Populate first", ErrState, i)
		}
		if 2*opts.Migrants > island.Len() {
			return fmt.Errorf("%w: island %d of size %d cannot exchange %d migrants", ErrState, i, island.Len(), opts.Migrants)
		}
	}
	return nil
}

// Evolve runs every island for MigFreq generations, migrates, and
// repeats until ngen generations have elapsed on each island; the final
// batch is truncated when ngen is not a multiple of MigFreq. Migration
// follows every batch, the final one included.
func (m *IslandModel) Evolve(ctx context.Context, ngen int, opts IslandEvolveOptions) error {
	if err := m.validateRun(ngen, opts); err != nil {
		return err
	}
	for start := 0; start < ngen; start += opts.MigFreq {
		end := start + opts.MigFreq
		if end > ngen {
			end = ngen
		}
		for _, island := range m.islands {
			for gen := start; gen < end; gen++ {
				if err := island.Step(ctx, gen, ngen, opts.EvolveOptions); err != nil {
					return err
				}
			}
		}
		m.migrate(opts.Migrants)
		if opts.Verbose {
			m.reporter.Migration(end, opts.Migrants, len(m.islands))
		}
	}
	return nil
}

// migrate redistributes individuals in a ring: each island's best
// migrants move to the next island, taking the slots of its weakest,
// which travel back to the donor. A pure exchange, so every island's
// size and the global individual count are invariant. Donor and
// receiver slots are picked from the pre-migration state; validateRun
// guarantees they never overlap.
func (m *IslandModel) migrate(migrants int) {
	k := len(m.islands)
	bestIdx := make([][]int, k)
	worstIdx := make([][]int, k)
	for i, island := range m.islands {
		order := make([]int, island.Len())
		for j := range order {
			order[j] = j
		}
		sort.SliceStable(order, func(a, b int) bool {
			return island.members[order[a]].Fitness > island.members[order[b]].Fitness
		})
		bestIdx[i] = order[:migrants]
		worstIdx[i] = order[len(order)-migrants:]
	}

	for i := range m.islands {
		src := m.islands[i]
		dst := m.islands[(i+1)%k]
		for j := 0; j < migrants; j++ {
			give := bestIdx[i][j]
			take := worstIdx[(i+1)%k][j]
			src.members[give], dst.members[take] = dst.members[take], src.members[give]
		}
	}
}
