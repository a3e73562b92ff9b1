package explore

import (
	"fmt"

	"github.com/crossview-lab/project-crossview/internal/dataset"
)

// View is a filtered subsequence of a Dataset: an index list into the
// underlying records, in dataset order. No record data is copied.
type View struct {
	ds  *dataset.Dataset
	idx []int
}

// Len returns the number of records in the view.
func (v View) Len() int { return len(v.idx) }

// Record returns the i-th record of the view.
func (v View) Record(i int) dataset.AccidentRecord { return v.ds.Record(v.idx[i]) }

// ErrInvalidFilter marks a FilterConfig that cannot be applied.
var ErrInvalidFilter = fmt.Errorf("invalid filter")

// Filter applies cfg to ds and returns the matching view. It is a pure
// function: the same config on the same dataset always yields an identical
// view, which is what makes view results cacheable.
//
// A record matches when its year lies in [YearMin, YearMax] and, if any
// states are selected, its state code is among them. An empty selection
// applies no state predicate.
func Filter(ds *dataset.Dataset, cfg FilterConfig) (View, error) {
	if cfg.YearMin > cfg.YearMax {
		return View{}, fmt.Errorf("%w: year_min %d > year_max %d", ErrInvalidFilter, cfg.YearMin, cfg.YearMax)
	}

	var selected map[string]bool
	if len(cfg.States) > 0 {
		selected = make(map[string]bool, len(cfg.States))
		for _, s := range cfg.States {
			selected[s] = true
		}
	}

	idx := make([]int, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		rec := ds.Record(i)
		if rec.Year < cfg.YearMin || rec.Year > cfg.YearMax {
			continue
		}
		if selected != nil && !selected[rec.StateCode] {
			continue
		}
		idx = append(idx, i)
	}
	return View{ds: ds, idx: idx}, nil
}
