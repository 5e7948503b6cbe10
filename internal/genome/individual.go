package genome

// Individual is one candidate solution: a raw gene sequence plus a
// cached fitness. Valid reports whether Fitness applies to the current
// genes; any operator that changes a gene must call Invalidate.
type Individual struct {
	Genes   []float64
	Fitness float64
	Valid   bool
}

// NewIndividual wraps a raw gene sequence. The caller keeps ownership
// checks (schema validation) to itself; fitness starts absent.
func NewIndividual(genes []float64) *Individual {
	return &Individual{Genes: genes}
}

func (ind *Individual) Len() int {
	return len(ind.Genes)
}

func (ind *Individual) At(i int) float64 {
	return ind.Genes[i]
}

// Set writes gene i and drops the cached fitness when the value
// actually changes. The error is always nil; it exists to satisfy the
// Sequence contract shared with containers that do validate.
func (ind *Individual) Set(i int, v float64) error {
	if ind.Genes[i] == v {
		return nil
	}
	ind.Genes[i] = v
	ind.Valid = false
	return nil
}

// Slice returns a copy of genes [lo, hi).
func (ind *Individual) Slice(lo, hi int) []float64 {
	out := make([]float64, hi-lo)
	copy(out, ind.Genes[lo:hi])
	return out
}

// Clone deep-copies the individual, fitness cache included.
func (ind *Individual) Clone() *Individual {
	genes := make([]float64, len(ind.Genes))
	copy(genes, ind.Genes)
	return &Individual{Genes: genes, Fitness: ind.Fitness, Valid: ind.Valid}
}

// Invalidate drops the cached fitness, forcing re-evaluation.
func (ind *Individual) Invalidate() {
	ind.Fitness = 0
	ind.Valid = false
}

var _ Sequence[float64] = (*Individual)(nil)
