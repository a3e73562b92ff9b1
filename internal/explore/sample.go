package explore

import "github.com/crossview-lab/project-crossview/internal/dataset"

// Sample returns the first k records of the view with every field untouched.
// The view preserves dataset order, so for a given FilterConfig the preview
// is stable across calls. Fewer than k records are returned when the view is
// smaller; k <= 0 yields an empty, non-nil slice.
func Sample(v View, k int) []dataset.AccidentRecord {
	if k < 0 {
		k = 0
	}
	if k > v.Len() {
		k = v.Len()
	}
	out := make([]dataset.AccidentRecord, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, v.Record(i))
	}
	return out
}
