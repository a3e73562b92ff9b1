package explore

import (
	"sort"

	"github.com/crossview-lab/project-crossview/internal/core/metric"
	"github.com/crossview-lab/project-crossview/internal/dataset"
	"github.com/shopspring/decimal"
)

// The four aggregation routines below all consume a filtered view and a
// resolved reducer. None of them can fail: an empty view produces all-zero
// aggregates with the full domain key set, which is the defined result when
// a filter matches nothing.

// ByState groups the view by state code and reduces each group. Every state
// in the registry appears in the result, zero-filled when unmatched, ordered
// by code ascending. Codes seen in the data but absent from the registry are
// appended with the name carried by their first record. Records with no
// state code contribute nowhere.
func ByState(v View, r metric.Reducer, reg *dataset.StateRegistry) RegionAggregate {
	totals := make(map[string]decimal.Decimal)
	names := make(map[string]string)

	for i := 0; i < v.Len(); i++ {
		rec := v.Record(i)
		if rec.StateCode == "" {
			continue
		}
		if cur, ok := totals[rec.StateCode]; ok {
			totals[rec.StateCode] = r.Apply(cur, r.Contribution(rec))
		} else {
			totals[rec.StateCode] = r.Contribution(rec)
			names[rec.StateCode] = rec.StateName
		}
	}

	out := make(RegionAggregate, 0, reg.Len())
	for _, code := range reg.Codes() {
		name, _ := reg.Name(code)
		value := int64(0)
		if total, ok := totals[code]; ok {
			value = total.IntPart()
			delete(totals, code)
		}
		out = append(out, StateValue{Code: code, Name: name, Value: value})
	}

	// Whatever is left was seen in the data but is not a registered state.
	extra := make([]string, 0, len(totals))
	for code := range totals {
		extra = append(extra, code)
	}
	sort.Strings(extra)
	for _, code := range extra {
		out = append(out, StateValue{Code: code, Name: names[code], Value: totals[code].IntPart()})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ByWeekdayHour groups the view by (weekday, hour) and reduces each cell.
// The result is always the complete 7×24 grid; records missing either field
// are skipped.
func ByWeekdayHour(v View, r metric.Reducer) TimeGridAggregate {
	var totals [dataset.NumWeekdays][dataset.NumHours]decimal.Decimal
	var seen [dataset.NumWeekdays][dataset.NumHours]bool

	for i := 0; i < v.Len(); i++ {
		rec := v.Record(i)
		if rec.Weekday == dataset.WeekdayNone || rec.Hour == dataset.HourNone {
			continue
		}
		w, h := rec.Weekday, rec.Hour
		if seen[w][h] {
			totals[w][h] = r.Apply(totals[w][h], r.Contribution(rec))
		} else {
			totals[w][h] = r.Contribution(rec)
			seen[w][h] = true
		}
	}

	grid := TimeGridAggregate{
		Weekdays: dataset.WeekdayLabels(),
		Hours:    make([]int, dataset.NumHours),
		Values:   make([][]int64, dataset.NumWeekdays),
	}
	for h := 0; h < dataset.NumHours; h++ {
		grid.Hours[h] = h
	}
	for w := 0; w < dataset.NumWeekdays; w++ {
		row := make([]int64, dataset.NumHours)
		for h := 0; h < dataset.NumHours; h++ {
			if seen[w][h] {
				row[h] = totals[w][h].IntPart()
			}
		}
		grid.Values[w] = row
	}
	return grid
}

// ByWeekday groups the view by weekday only, skipping records without one.
// All seven canonical weekdays are always present, Monday-first. A record
// that has a weekday but no hour counts here even though the time grid
// skips it.
func ByWeekday(v View, r metric.Reducer) WeekdayAggregate {
	var totals [dataset.NumWeekdays]decimal.Decimal
	var seen [dataset.NumWeekdays]bool

	for i := 0; i < v.Len(); i++ {
		rec := v.Record(i)
		if rec.Weekday == dataset.WeekdayNone {
			continue
		}
		if seen[rec.Weekday] {
			totals[rec.Weekday] = r.Apply(totals[rec.Weekday], r.Contribution(rec))
		} else {
			totals[rec.Weekday] = r.Contribution(rec)
			seen[rec.Weekday] = true
		}
	}

	out := make(WeekdayAggregate, 0, dataset.NumWeekdays)
	for w := 0; w < dataset.NumWeekdays; w++ {
		value := int64(0)
		if seen[w] {
			value = totals[w].IntPart()
		}
		out = append(out, WeekdayValue{Weekday: dataset.Weekday(w).Label(), Value: value})
	}
	return out
}

// RankedStates orders a region aggregate by value descending and truncates
// to the top n. Equal values fall back to state code ascending, so repeated
// runs over identical input always rank identically.
func RankedStates(region RegionAggregate, n int) []StateValue {
	ranked := make([]StateValue, len(region))
	copy(ranked, region)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Code < ranked[j].Code
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Reduce folds an entire view into a single value with the given reducer.
func Reduce(v View, r metric.Reducer) int64 {
	if v.Len() == 0 {
		return 0
	}
	total := r.Contribution(v.Record(0))
	for i := 1; i < v.Len(); i++ {
		total = r.Apply(total, r.Contribution(v.Record(i)))
	}
	return total.IntPart()
}
