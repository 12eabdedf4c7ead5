package config

import (
	"slices"
	"sort"
)

var Presets = map[string][]int{
	"classic":    {5, 3, 8, 1, 9, 4, 7, 2, 6},
	"reversed":   {9, 8, 7, 6, 5, 4, 3, 2, 1},
	"sorted":     {1, 2, 3, 4, 5, 6, 7, 8, 9},
	"duplicates": {4, 2, 4, 1, 2, 4, 3, 1},
	"nearly":     {1, 2, 3, 5, 4, 6, 7, 9, 8},
	"single":     {42},
	"empty":      {},
}

// GetPreset returns a copy of the named input.
func GetPreset(name string) ([]int, bool) {
	p, ok := Presets[name]
	if !ok {
		return nil, false
	}
	out := slices.Clone(p)
	if out == nil {
		out = []int{}
	}
	return out, true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
