package archipelago

import (
	"errors"

	"archipelago/internal/genome"
)

var (
	// ErrSchema is the root of every prototype, bounds or
	// base-population shape/type mismatch. Match with errors.Is.
	ErrSchema = genome.ErrSchema
	// ErrState indicates an operation invoked out of order: Evolve
	// before Populate, an empty population, or an island model that
	// cannot migrate. Match with errors.Is.
	ErrState = errors.New("archipelago: invalid state")
)
