package algo

import "github.com/san-kum/algoviz/internal/trace"

// BubbleSort records a classic bubble sort with early exit.
//
// Every comparison of j and j+1 emits a step marking both positions. A swap
// adds two more: one carrying the swap marker over the pre-swap array, then
// one with the exchanged array and no markers. A final unmarked snapshot
// closes the trace unless the input has fewer than two elements.
func BubbleSort(input []int) trace.Trace {
	arr := make([]int, len(input))
	copy(arr, input)
	n := len(arr)

	steps := make(trace.Trace, 0, 2+n)
	steps = append(steps, trace.Snapshot(arr, nil, nil))
	if n <= 1 {
		return steps
	}

	for i := 0; i < n-1; i++ {
		swapped := false
		for j := 0; j < n-i-1; j++ {
			pair := []int{j, j + 1}
			steps = append(steps, trace.Snapshot(arr, pair, nil))
			if arr[j] > arr[j+1] {
				steps = append(steps, trace.Snapshot(arr, pair, pair))
				arr[j], arr[j+1] = arr[j+1], arr[j]
				swapped = true
				steps = append(steps, trace.Snapshot(arr, nil, nil))
			}
		}
		if !swapped {
			break
		}
	}

	steps = append(steps, trace.Snapshot(arr, nil, nil))
	return steps
}
