package trace

import (
	"fmt"
	"strconv"
	"strings"
)

const fieldSep = ";"

// JoinInts renders xs as "1;2;3". Used by the CSV layouts.
func JoinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, v := range xs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, fieldSep)
}

// SplitInts is the inverse of JoinInts. An empty field yields an empty,
// non-nil slice.
func SplitInts(field string) ([]int, error) {
	if field == "" {
		return []int{}, nil
	}
	parts := strings.Split(field, fieldSep)
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

// EncodeRow flattens a step into the array, comparing and swapped fields.
func EncodeRow(s Step) [3]string {
	return [3]string{JoinInts(s.Array), JoinInts(s.Comparing), JoinInts(s.Swapped)}
}

// DecodeRow rebuilds a step from the fields written by EncodeRow.
func DecodeRow(array, comparing, swapped string) (Step, error) {
	arr, err := SplitInts(array)
	if err != nil {
		return Step{}, fmt.Errorf("array: %w", err)
	}
	cmp, err := SplitInts(comparing)
	if err != nil {
		return Step{}, fmt.Errorf("comparing: %w", err)
	}
	sw, err := SplitInts(swapped)
	if err != nil {
		return Step{}, fmt.Errorf("swapped: %w", err)
	}
	return Snapshot(arr, cmp, sw), nil
}
