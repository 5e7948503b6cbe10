package stats

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"archipelago/internal/model"
)

// Reporter writes per-generation progress lines. It has no influence on
// the evolution itself.
type Reporter struct {
	w io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) Generation(s model.GenerationStats) {
	if r == nil || r.w == nil {
		return
	}
	prefix := fmt.Sprintf("--- generation %d ---", s.Generation)
	if s.Island > 0 {
		prefix = fmt.Sprintf("--- island %d, generation %d ---", s.Island, s.Generation)
	}
	fmt.Fprintf(r.w, "%s\n    best: %f  mean: %f  variance: %f  evaluations: %s\n",
		prefix, s.BestFitness, s.MeanFitness, s.FitnessVar, humanize.Comma(int64(s.Evaluations)))
}

// Migration reports one completed migration round.
func (r *Reporter) Migration(generation, migrants, islands int) {
	if r == nil || r.w == nil {
		return
	}
	fmt.Fprintf(r.w, "--- migration after generation %d: %d migrant(s) across %d islands ---\n",
		generation, migrants, islands)
}
