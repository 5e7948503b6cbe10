package archipelago

import (
	"context"

	"archipelago/internal/model"
	"archipelago/internal/platform"
)

// MultiEvolve is the parallel variant of Evolve: same contract, same
// migration protocol, but every island's batch runs as an isolated unit
// of work on its own worker. Each worker receives a value-copied
// snapshot of one island (individuals, schema reference, a derived
// random seed) and returns the evolved members and updated best; no
// mutable state is shared across workers, so the fitness function must
// not rely on shared mutable state either. The coordinator joins all
// workers of a batch before migrating and dispatching the next one,
// and a single worker failure aborts the whole call without retry.
// Generation reporting and observers fire between batches, in island
// order, from the returned statistics.
func (m *IslandModel) MultiEvolve(ctx context.Context, ngen int, opts IslandEvolveOptions) error {
	if err := m.validateRun(ngen, opts); err != nil {
		return err
	}

	workerOpts := opts.EvolveOptions
	workerOpts.Verbose = false

	for start := 0; start < ngen; start += opts.MigFreq {
		end := start + opts.MigFreq
		if end > ngen {
			end = ngen
		}

		tasks := make([]platform.Task, len(m.islands))
		for i, island := range m.islands {
			snap := island.snapshot(m.rng.Int63())
			gFrom, gTo := start, end
			tasks[i] = platform.Task{
				Island: i,
				Run: func(ctx context.Context) (platform.Result, error) {
					collected := make([]model.GenerationStats, 0, gTo-gFrom)
					snap.observers = []Observer{func(st GenerationStats) {
						collected = append(collected, st)
					}}
					evalsBefore := snap.totalEvals
					for gen := gFrom; gen < gTo; gen++ {
						if err := ctx.Err(); err != nil {
							return platform.Result{}, err
						}
						if err := snap.step(gen, ngen, workerOpts); err != nil {
							return platform.Result{}, err
						}
					}
					return platform.Result{
						Island:      snap.island - 1,
						Members:     snap.members,
						Best:        snap.best,
						Evaluations: snap.totalEvals - evalsBefore,
						Stats:       collected,
					}, nil
				},
			}
		}

		results, err := platform.RunBatch(ctx, tasks)
		if err != nil {
			return err
		}

		for i, res := range results {
			island := m.islands[i]
			island.members = res.Members
			island.best = res.Best
			island.totalEvals += res.Evaluations
			for _, st := range res.Stats {
				island.publish(st, opts.Verbose)
			}
		}

		m.migrate(opts.Migrants)
		if opts.Verbose {
			m.reporter.Migration(end, opts.Migrants, len(m.islands))
		}
	}
	return nil
}
