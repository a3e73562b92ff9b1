package explore

import (
	"sort"
	"strings"

	"github.com/crossview-lab/project-crossview/internal/core/metric"
	"github.com/crossview-lab/project-crossview/internal/dataset"
)

// FilterConfig narrows the dataset to a year range and a set of states.
// An empty States set means no state filtering at all ("show everything"),
// not "show nothing" — the same reading the interactive controls apply to an
// empty multi-select.
type FilterConfig struct {
	YearMin int      `json:"year_min"`
	YearMax int      `json:"year_max"`
	States  []string `json:"states,omitempty"` // state codes, uppercase
}

// normalize uppercases, dedupes and sorts the state selection so that two
// configs selecting the same states compare and cache identically.
func (c FilterConfig) normalize() FilterConfig {
	if len(c.States) == 0 {
		return c
	}
	seen := make(map[string]bool, len(c.States))
	states := make([]string, 0, len(c.States))
	for _, s := range c.States {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		states = append(states, s)
	}
	sort.Strings(states)
	c.States = states
	return c
}

// StateValue is one region's aggregate value plus its display name.
type StateValue struct {
	Code  string `json:"state_code"`
	Name  string `json:"state_name"`
	Value int64  `json:"value"`
}

// RegionAggregate holds one value per known state, ordered by state code
// ascending. States with no matching records appear at 0 — the choropleth
// needs every region colored, data or not.
type RegionAggregate []StateValue

// TimeGridAggregate is the full weekday×hour grid. Values[w][h] is the value
// for weekday w (Monday-first) at hour h; cells with no data hold 0. Rows
// missing either the weekday or the hour are not represented here.
type TimeGridAggregate struct {
	Weekdays []string  `json:"weekdays"`
	Hours    []int     `json:"hours"`
	Values   [][]int64 `json:"values"`
}

// WeekdayValue is one weekday's aggregate value.
type WeekdayValue struct {
	Weekday string `json:"weekday"`
	Value   int64  `json:"value"`
}

// WeekdayAggregate holds one value per canonical weekday, Monday-first,
// always all seven.
type WeekdayAggregate []WeekdayValue

// ViewRequest is one user interaction: a filter, a metric, and the two view
// sizes. All fields participate in the cache key.
type ViewRequest struct {
	Filter     FilterConfig
	Metric     metric.Metric
	TopN       int
	SampleRows int
}

// ViewResult bundles everything the rendering layer needs for one
// interaction: the four aggregates plus the sample, computed from the same
// filtered view.
type ViewResult struct {
	LoadID      string                   `json:"load_id"`
	Metric      metric.Metric            `json:"metric"`
	Filter      FilterConfig             `json:"filter"`
	MatchedRows int                      `json:"matched_rows"`
	ByState     RegionAggregate          `json:"by_state"`
	TimeGrid    TimeGridAggregate        `json:"time_grid"`
	ByWeekday   WeekdayAggregate         `json:"by_weekday"`
	Ranked      []StateValue             `json:"ranked"`
	Sample      []dataset.AccidentRecord `json:"sample"`
}
