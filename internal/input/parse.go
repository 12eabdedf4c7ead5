// Package input converts between the comma-separated text form of an array
// and its integer values.
package input

import (
	"math/rand"
	"strconv"
	"strings"
)

// Parse splits raw on commas and keeps every token that is a base-10
// integer after trimming. Anything else is dropped without error. The
// result is never nil.
func Parse(raw string) []int {
	out := make([]int, 0)
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Format renders xs the way the input box shows it: "5, 3, 8".
func Format(xs []int) string {
	parts := make([]string, len(xs))
	for i, v := range xs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

// Random returns n values in [1, max] drawn from seed. The same seed always
// yields the same array.
func Random(n, max int, seed int64) []int {
	if n <= 0 {
		return []int{}
	}
	if max < 1 {
		max = 1
	}
	rng := rand.New(rand.NewSource(seed))
	out := make([]int, n)
	for i := range out {
		out[i] = rng.Intn(max) + 1
	}
	return out
}
