// Package archipelago is a generic evolutionary-algorithm engine.
//
// A Population is built from a prototype gene sequence (whose values
// only fix the kind of each position: bool, int or float64), optional
// per-position bounds and a fitness function. Populate seeds it with
// random or caller-supplied individuals and Evolve runs the
// generational loop: evaluate, tournament selection, two-point
// crossover, scoped mutation, wholesale replacement.
//
// An IslandModel coordinates several populations sharing a compatible
// schema, interleaving batches of independent evolution with ring
// migration. MultiEvolve runs each island's batch on its own worker
// with a value-copied snapshot and joins all workers before migrating.
//
// Gene values are carried as float64 throughout: booleans as 0/1, ints
// as integral values. Fitness functions receive the raw sequence.
package archipelago
