package explore

import (
	"testing"

	"github.com/crossview-lab/project-crossview/internal/core/metric"
	"github.com/crossview-lab/project-crossview/internal/dataset"
	"github.com/stretchr/testify/require"
)

func mustReducer(t *testing.T, m metric.Metric) metric.Reducer {
	t.Helper()
	r, err := metric.Resolve(m)
	require.NoError(t, err)
	return r
}

func fullView(t *testing.T, ds *dataset.Dataset) View {
	t.Helper()
	min, max := ds.YearRange()
	v, err := Filter(ds, FilterConfig{YearMin: min, YearMax: max})
	require.NoError(t, err)
	return v
}

func regionValue(t *testing.T, region RegionAggregate, code string) int64 {
	t.Helper()
	for _, sv := range region {
		if sv.Code == code {
			return sv.Value
		}
	}
	t.Fatalf("state %s not present in region aggregate", code)
	return 0
}

// Three records, year filter 2005-2021, metric killed.
func TestByState_Scenario(t *testing.T) {
	ds := makeDataset(t,
		row{year: 2000, state: "CA", name: "California", killed: 1, weekday: "Mon", hour: "8"},
		row{year: 2010, state: "CA", name: "California", killed: 0, weekday: "Mon", hour: "8"},
		row{year: 2020, state: "TX", name: "Texas", killed: 2, weekday: "Tue", hour: "9"},
	)
	reg := testRegistry(t)

	v, err := Filter(ds, FilterConfig{YearMin: 2005, YearMax: 2021})
	require.NoError(t, err)

	region := ByState(v, mustReducer(t, metric.Killed), reg)
	require.Len(t, region, reg.Len())
	require.Equal(t, int64(0), regionValue(t, region, "CA"))
	require.Equal(t, int64(2), regionValue(t, region, "TX"))
	for _, sv := range region {
		if sv.Code != "TX" {
			require.Equal(t, int64(0), sv.Value, "state %s", sv.Code)
		}
		require.GreaterOrEqual(t, sv.Value, int64(0))
	}

	weekday := ByWeekday(v, mustReducer(t, metric.Killed))
	require.Len(t, weekday, 7)
	require.Equal(t, "Mon", weekday[0].Weekday)
	require.Equal(t, int64(0), weekday[0].Value)
	require.Equal(t, "Tue", weekday[1].Weekday)
	require.Equal(t, int64(2), weekday[1].Value)

	ranked := RankedStates(region, 2)
	require.Len(t, ranked, 2)
	require.Equal(t, "TX", ranked[0].Code)
	require.Equal(t, int64(2), ranked[0].Value)
	// All remaining states are tied at 0; the lowest code wins the tie.
	require.Equal(t, "AK", ranked[1].Code)
	require.Equal(t, int64(0), ranked[1].Value)
}

func TestByState_SelectedStateStillReportsAllStates(t *testing.T) {
	ds := makeDataset(t,
		row{year: 2000, state: "CA", name: "California", killed: 1, weekday: "Mon", hour: "8"},
	)
	reg := testRegistry(t)

	v, err := Filter(ds, FilterConfig{YearMin: 1975, YearMax: 2021, States: []string{"NY"}})
	require.NoError(t, err)
	require.Equal(t, 0, v.Len())

	region := ByState(v, mustReducer(t, metric.Incidents), reg)
	require.Len(t, region, reg.Len())
	for _, sv := range region {
		require.Equal(t, int64(0), sv.Value)
	}
}

func TestByState_UnregisteredCodeCarriesRecordName(t *testing.T) {
	ds := makeDataset(t,
		row{year: 2000, state: "PR", name: "Puerto Rico", weekday: "Mon", hour: "8"},
		row{year: 2000, state: "CA", name: "California", weekday: "Mon", hour: "8"},
	)
	reg := testRegistry(t)

	region := ByState(fullView(t, ds), mustReducer(t, metric.Incidents), reg)
	require.Len(t, region, reg.Len()+1)
	require.Equal(t, int64(1), regionValue(t, region, "PR"))

	for _, sv := range region {
		if sv.Code == "PR" {
			require.Equal(t, "Puerto Rico", sv.Name)
		}
	}
}

func TestByWeekdayHour_FullGridAlways(t *testing.T) {
	ds := makeDataset(t,
		row{year: 2000, state: "CA", name: "California", weekday: "Mon", hour: "8"},
		row{year: 2000, state: "CA", name: "California", weekday: "Mon", hour: "8"},
		row{year: 2000, state: "TX", name: "Texas", weekday: "Sun", hour: "23"},
	)

	grid := ByWeekdayHour(fullView(t, ds), mustReducer(t, metric.Incidents))
	require.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, grid.Weekdays)
	require.Len(t, grid.Hours, 24)
	require.Len(t, grid.Values, 7)

	cells := 0
	for _, r := range grid.Values {
		require.Len(t, r, 24)
		cells += len(r)
	}
	require.Equal(t, 168, cells)

	require.Equal(t, int64(2), grid.Values[0][8])  // Mon 08
	require.Equal(t, int64(1), grid.Values[6][23]) // Sun 23
	require.Equal(t, int64(0), grid.Values[3][12])
}

func TestByWeekdayHour_EmptyViewIsZeroGrid(t *testing.T) {
	ds := makeDataset(t, row{year: 2000, state: "CA", name: "California", weekday: "Mon", hour: "8"})

	v, err := Filter(ds, FilterConfig{YearMin: 2010, YearMax: 2020})
	require.NoError(t, err)

	grid := ByWeekdayHour(v, mustReducer(t, metric.Incidents))
	require.Len(t, grid.Values, 7)
	for _, r := range grid.Values {
		require.Len(t, r, 24)
		for _, val := range r {
			require.Equal(t, int64(0), val)
		}
	}
}

func TestByWeekdayHour_SkipsRowsMissingEitherField(t *testing.T) {
	ds := makeDataset(t,
		row{year: 2000, state: "CA", name: "California", weekday: "Mon", hour: "8"},
		row{year: 2000, state: "CA", name: "California", weekday: "Mon", hour: ""},       // no hour
		row{year: 2000, state: "CA", name: "California", weekday: "someday", hour: "8"}, // no weekday
	)

	grid := ByWeekdayHour(fullView(t, ds), mustReducer(t, metric.Incidents))
	total := int64(0)
	for _, r := range grid.Values {
		for _, val := range r {
			total += val
		}
	}
	require.Equal(t, int64(1), total)
}

func TestByWeekday_KeepsHourlessRows(t *testing.T) {
	// A row with a weekday but no hour counts in the weekday aggregate and
	// not in the grid, so the weekday sum can exceed the grid sum.
	ds := makeDataset(t,
		row{year: 2000, state: "CA", name: "California", weekday: "Mon", hour: "8"},
		row{year: 2000, state: "CA", name: "California", weekday: "Mon", hour: ""},
	)
	v := fullView(t, ds)
	r := mustReducer(t, metric.Incidents)

	weekday := ByWeekday(v, r)
	require.Equal(t, int64(2), weekday[0].Value)

	grid := ByWeekdayHour(v, r)
	gridTotal := int64(0)
	for _, gr := range grid.Values {
		for _, val := range gr {
			gridTotal += val
		}
	}
	require.Equal(t, int64(1), gridTotal)
}

func TestByWeekday_GridSumsMatchWhenAllRowsHaveHours(t *testing.T) {
	ds := makeDataset(t,
		row{year: 2000, state: "CA", name: "California", injured: 2, weekday: "Mon", hour: "8"},
		row{year: 2001, state: "TX", name: "Texas", injured: 3, weekday: "Fri", hour: "17"},
		row{year: 2002, state: "NY", name: "New York", injured: 1, weekday: "Fri", hour: "17"},
	)
	v := fullView(t, ds)
	r := mustReducer(t, metric.Injured)

	weekdaySum := int64(0)
	for _, wv := range ByWeekday(v, r) {
		weekdaySum += wv.Value
	}
	gridSum := int64(0)
	for _, gr := range ByWeekdayHour(v, r).Values {
		for _, val := range gr {
			gridSum += val
		}
	}
	require.Equal(t, weekdaySum, gridSum)
	require.Equal(t, int64(6), weekdaySum)
}

func TestRankedStates_OrderingAndTieBreak(t *testing.T) {
	region := RegionAggregate{
		{Code: "CA", Name: "California", Value: 5},
		{Code: "NY", Name: "New York", Value: 9},
		{Code: "TX", Name: "Texas", Value: 5},
		{Code: "WY", Name: "Wyoming", Value: 0},
	}

	ranked := RankedStates(region, 10)
	require.Len(t, ranked, 4)
	require.Equal(t, "NY", ranked[0].Code)
	// CA and TX tie at 5; ascending code breaks the tie.
	require.Equal(t, "CA", ranked[1].Code)
	require.Equal(t, "TX", ranked[2].Code)
	require.Equal(t, "WY", ranked[3].Code)

	for i := 1; i < len(ranked); i++ {
		require.LessOrEqual(t, ranked[i].Value, ranked[i-1].Value)
	}
}

func TestRankedStates_Truncation(t *testing.T) {
	ds := makeDataset(t,
		row{year: 2000, state: "CA", name: "California", weekday: "Mon", hour: "8"},
	)
	reg := testRegistry(t)
	region := ByState(fullView(t, ds), mustReducer(t, metric.Incidents), reg)

	require.Len(t, RankedStates(region, 5), 5)
	require.Len(t, RankedStates(region, reg.Len()+10), reg.Len())
}

func TestFullYearFilterSumEqualsWholeDatasetReduction(t *testing.T) {
	ds := makeDataset(t,
		row{year: 2000, state: "CA", name: "California", killed: 1, weekday: "Mon", hour: "8"},
		row{year: 2005, state: "TX", name: "Texas", killed: 2, weekday: "Tue", hour: "9"},
		row{year: 2010, state: "NY", name: "New York", killed: 4, weekday: "Wed", hour: "10"},
	)
	reg := testRegistry(t)
	r := mustReducer(t, metric.Killed)
	v := fullView(t, ds)

	regionSum := int64(0)
	for _, sv := range ByState(v, r, reg) {
		regionSum += sv.Value
	}
	require.Equal(t, Reduce(v, r), regionSum)
	require.Equal(t, int64(7), regionSum)
}

func TestAggregates_NonNegativeAcrossMetrics(t *testing.T) {
	ds := makeDataset(t,
		row{year: 2000, state: "CA", name: "California", killed: 1, injured: 3, weekday: "Mon", hour: "8"},
		row{year: 2010, state: "TX", name: "Texas", killed: 0, injured: 0, weekday: "", hour: ""},
	)
	reg := testRegistry(t)
	v := fullView(t, ds)

	for _, m := range []metric.Metric{metric.Incidents, metric.Killed, metric.Injured} {
		r := mustReducer(t, m)
		for _, sv := range ByState(v, r, reg) {
			require.GreaterOrEqual(t, sv.Value, int64(0))
		}
		for _, wv := range ByWeekday(v, r) {
			require.GreaterOrEqual(t, wv.Value, int64(0))
		}
		for _, gr := range ByWeekdayHour(v, r).Values {
			for _, val := range gr {
				require.GreaterOrEqual(t, val, int64(0))
			}
		}
	}
}
