package sweep

import "iter"

// Axes holds the ordered values of every sweep axis. Enumeration nests the
// axes in field order: Remat is the outermost loop and PRNGKey the innermost.
type Axes struct {
	Remat    []string
	Int8     []string
	Dtype    []string
	FwdQuant []string
	PRNGKey  []string
}

// Combination is one point of the sweep.
type Combination struct {
	Remat    string
	Int8     string
	Dtype    string
	FwdQuant string
	PRNGKey  string
}

// Count returns the number of combinations Enumerate yields.
func (a Axes) Count() int {
	return len(a.Remat) * len(a.Int8) * len(a.Dtype) * len(a.FwdQuant) * len(a.PRNGKey)
}

// Enumerate yields every combination of the axes in nested order. An empty
// axis yields nothing.
func Enumerate(a Axes) iter.Seq[Combination] {
	return func(yield func(Combination) bool) {
		for _, remat := range a.Remat {
			for _, i8 := range a.Int8 {
				for _, dtype := range a.Dtype {
					for _, fwd := range a.FwdQuant {
						for _, key := range a.PRNGKey {
							c := Combination{
								Remat:    remat,
								Int8:     i8,
								Dtype:    dtype,
								FwdQuant: fwd,
								PRNGKey:  key,
							}
							if !yield(c) {
								return
							}
						}
					}
				}
			}
		}
	}
}

// Combinations collects Enumerate into a slice.
func Combinations(a Axes) []Combination {
	out := make([]Combination, 0, a.Count())
	for c := range Enumerate(a) {
		out = append(out, c)
	}
	return out
}
