package evo

import "math"

// Scale computes the scoping factor for generation gen of a nominal
// ngen-generation run: (1 - gen/ngen)^scoping, decaying monotonically
// from 1 toward 0 so late mutations take smaller float steps. A
// scoping of 1 gives the plain linear decay; scoping <= 0 disables
// decay and pins the factor at full strength.
func Scale(scoping float64, gen, ngen int) float64 {
	if scoping <= 0 || ngen <= 0 {
		return 1
	}
	remaining := 1 - float64(gen)/float64(ngen)
	if remaining < 0 {
		return 0
	}
	return math.Pow(remaining, scoping)
}
