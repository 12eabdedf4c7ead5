package trace

// Stats summarizes the work recorded in a trace.
type Stats struct {
	Steps       int `json:"steps"`
	Comparisons int `json:"comparisons"`
	Swaps       int `json:"swaps"`
	Passes      int `json:"passes"`
}

// Summarize counts comparisons, swaps, and passes. A comparison step is one
// with comparing markers and no swap marker; a pass begins with every
// comparison of positions 0 and 1.
func Summarize(t Trace) Stats {
	st := Stats{Steps: len(t)}
	for _, s := range t {
		switch {
		case len(s.Swapped) > 0:
			st.Swaps++
		case len(s.Comparing) > 0:
			st.Comparisons++
			if s.Comparing[0] == 0 {
				st.Passes++
			}
		}
	}
	return st
}

// Inversions counts the pairs i < j with xs[i] > xs[j].
func Inversions(xs []int) int {
	n := 0
	for i := range xs {
		for j := i + 1; j < len(xs); j++ {
			if xs[i] > xs[j] {
				n++
			}
		}
	}
	return n
}

// InversionSeries returns the inversion count of every step, in order.
func InversionSeries(t Trace) []float64 {
	out := make([]float64, len(t))
	for i, s := range t {
		out[i] = float64(Inversions(s.Array))
	}
	return out
}
