package trace

import "slices"

// Step is one immutable frame of a visualization.
type Step struct {
	Array     []int `json:"arrayState"`
	Comparing []int `json:"comparingIndices,omitempty"`
	Swapped   []int `json:"swappedIndices,omitempty"`
}

// Snapshot builds a step that owns copies of all three slices.
// Empty marker slices are stored as nil.
func Snapshot(arr []int, comparing, swapped []int) Step {
	return Step{
		Array:     cloneInts(arr),
		Comparing: cloneMarkers(comparing),
		Swapped:   cloneMarkers(swapped),
	}
}

func (s Step) Clone() Step {
	return Snapshot(s.Array, s.Comparing, s.Swapped)
}

func (s Step) Len() int { return len(s.Array) }

func (s Step) HasMarkers() bool {
	return len(s.Comparing) > 0 || len(s.Swapped) > 0
}

func (s Step) IsComparing(i int) bool { return slices.Contains(s.Comparing, i) }
func (s Step) IsSwapped(i int) bool   { return slices.Contains(s.Swapped, i) }

// Equal reports whether both steps hold the same array and markers.
// A nil slice and an empty slice compare equal.
func (s Step) Equal(o Step) bool {
	return slices.Equal(s.Array, o.Array) &&
		slices.Equal(s.Comparing, o.Comparing) &&
		slices.Equal(s.Swapped, o.Swapped)
}

// Max returns the largest value in the array, floored at 1 so it can be
// used directly as a bar-height denominator.
func (s Step) Max() int {
	m := 1
	for _, v := range s.Array {
		if v > m {
			m = v
		}
	}
	return m
}

type Trace []Step

func (t Trace) Len() int { return len(t) }

func (t Trace) First() Step {
	if len(t) == 0 {
		return Step{Array: []int{}}
	}
	return t[0]
}

func (t Trace) Last() Step {
	if len(t) == 0 {
		return Step{Array: []int{}}
	}
	return t[len(t)-1]
}

// At returns the step at i, clamped into range.
func (t Trace) At(i int) Step {
	if len(t) == 0 {
		return Step{Array: []int{}}
	}
	if i < 0 {
		i = 0
	}
	if i >= len(t) {
		i = len(t) - 1
	}
	return t[i]
}

func (t Trace) Clone() Trace {
	c := make(Trace, len(t))
	for i, s := range t {
		c[i] = s.Clone()
	}
	return c
}

func (t Trace) Equal(o Trace) bool {
	return slices.EqualFunc(t, o, Step.Equal)
}

func cloneInts(xs []int) []int {
	c := make([]int, len(xs))
	copy(c, xs)
	return c
}

func cloneMarkers(xs []int) []int {
	if len(xs) == 0 {
		return nil
	}
	return cloneInts(xs)
}
