package algo

import (
	"fmt"

	"github.com/san-kum/algoviz/internal/trace"
)

// Generator produces the trace for one algorithm.
type Generator func(input []int) trace.Trace

// Info describes a selectable algorithm.
type Info struct {
	ID          Algorithm `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Implemented bool      `json:"implemented"`
}

type Registry struct {
	infos      map[Algorithm]Info
	generators map[Algorithm]Generator
}

func NewRegistry() *Registry {
	r := &Registry{
		infos:      make(map[Algorithm]Info),
		generators: make(map[Algorithm]Generator),
	}

	r.register(Sorting, "Sorting", "bubble sort with early exit", BubbleSort)
	r.register(Searching, "Searching", "not implemented yet", notImplemented)
	r.register(Graph, "Graph Traversal", "not implemented yet", notImplemented)
	r.register(Tree, "Tree Operations", "not implemented yet", notImplemented)

	return r
}

func (r *Registry) register(id Algorithm, label, desc string, gen Generator) {
	r.infos[id] = Info{ID: id, Label: label, Description: desc, Implemented: id.Implemented()}
	r.generators[id] = gen
}

func (r *Registry) Get(name string) (Generator, error) {
	id, err := ParseAlgorithm(name)
	if err != nil {
		return nil, err
	}
	gen, ok := r.generators[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return gen, nil
}

func (r *Registry) Info(id Algorithm) (Info, bool) {
	info, ok := r.infos[id]
	return info, ok
}

// List returns every registered algorithm in menu order.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.infos))
	for _, id := range All {
		if info, ok := r.infos[id]; ok {
			out = append(out, info)
		}
	}
	return out
}
