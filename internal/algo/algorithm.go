// Package algo turns an input array and an algorithm choice into a trace of
// animation steps.
//
// Only [Sorting] has a real step generator (bubble sort). The remaining
// identifiers are selectable but not implemented yet: they yield the single
// initial snapshot.
package algo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/algoviz/internal/trace"
)

var ErrUnknownAlgorithm = errors.New("algo: unknown algorithm")

type Algorithm string

const (
	Sorting   Algorithm = "sorting"
	Searching Algorithm = "searching"
	Graph     Algorithm = "graph"
	Tree      Algorithm = "tree"
)

// All lists the selectable algorithms in menu order.
var All = []Algorithm{Sorting, Searching, Graph, Tree}

func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case Sorting, Searching, Graph, Tree:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

func (a Algorithm) String() string { return string(a) }

// Implemented reports whether a has a step generator beyond the initial
// snapshot.
func (a Algorithm) Implemented() bool { return a == Sorting }

// Next cycles through All, wrapping at the end.
func (a Algorithm) Next() Algorithm {
	for i, x := range All {
		if x == a {
			return All[(i+1)%len(All)]
		}
	}
	return All[0]
}

// Generate produces the step list for input under a. It never mutates input
// and always returns at least one step.
func Generate(input []int, a Algorithm) trace.Trace {
	switch a {
	case Sorting:
		return BubbleSort(input)
	case Searching, Graph, Tree:
		return notImplemented(input)
	default:
		// Unknown ids never reach here through ParseAlgorithm. A raw value
		// still yields a playable trace: the input, unchanged.
		return initialOnly(input)
	}
}

// notImplemented is the generator of declared algorithms that have no step
// logic yet.
func notImplemented(input []int) trace.Trace {
	return initialOnly(input)
}

func initialOnly(input []int) trace.Trace {
	return trace.Trace{trace.Snapshot(input, nil, nil)}
}
