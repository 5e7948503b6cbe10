package genome

// Sequence is the list-like capability shared by the engine's ordered
// containers: indexed read and write access, slicing and a length
// query. Individual implements Sequence[float64] over its genes;
// populations implement Sequence[*Individual] over their members.
// Forward iteration is ranging over Slice(0, Len()).
type Sequence[E any] interface {
	Len() int
	At(i int) E
	Set(i int, v E) error
	Slice(lo, hi int) []E
}
