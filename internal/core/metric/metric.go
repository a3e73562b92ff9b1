package metric

import (
	"fmt"

	"github.com/crossview-lab/project-crossview/internal/dataset"
	"github.com/shopspring/decimal"
)

// Metric is the measurable quantity driving every aggregate view.
// The set is closed: an unknown metric is a programming error, never a
// silent default.
type Metric string

const (
	Incidents Metric = "incidents" // count of rows
	Killed    Metric = "killed"    // sum of fatalities
	Injured   Metric = "injured"   // sum of injuries
)

// ErrUnknownMetric is returned by Resolve and Parse for values outside the
// closed set.
var ErrUnknownMetric = fmt.Errorf("unknown metric")

// Reducer defines the reduce semantics of a metric.
// To add a metric: implement this interface and register it in Reducers.
// Aggregation loops become a single map lookup — no switch.
type Reducer interface {
	// Contribution returns the value a single record adds to an aggregate.
	// incidents → 1; killed/injured → the record's field value.
	Contribution(rec dataset.AccidentRecord) decimal.Decimal

	// Apply folds an incoming contribution into an existing aggregate.
	Apply(current, incoming decimal.Decimal) decimal.Decimal
}

// Reducers is the registry of all supported metrics.
var Reducers = map[Metric]Reducer{
	Incidents: countReducer{},
	Killed:    sumReducer{field: func(r dataset.AccidentRecord) int { return r.Killed }},
	Injured:   sumReducer{field: func(r dataset.AccidentRecord) int { return r.Injured }},
}

// Resolve returns the reducer for m, or ErrUnknownMetric. Callers must treat
// the error as fatal for internally-constructed metrics: it means the closed
// enum was violated.
func Resolve(m Metric) (Reducer, error) {
	r, ok := Reducers[m]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, m)
	}
	return r, nil
}

// Valid reports whether m is a registered metric.
func Valid(m Metric) bool {
	_, ok := Reducers[m]
	return ok
}

// Parse converts an external metric name into a Metric.
func Parse(s string) (Metric, error) {
	m := Metric(s)
	if !Valid(m) {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
	return m, nil
}

// Names returns all registered metric names, for surfacing to the UI layer.
func Names() []string {
	return []string{string(Incidents), string(Killed), string(Injured)}
}

var one = decimal.NewFromInt(1)

// countReducer contributes 1 per record. The record's fields are ignored.
type countReducer struct{}

func (countReducer) Contribution(_ dataset.AccidentRecord) decimal.Decimal { return one }
func (countReducer) Apply(cur, _ decimal.Decimal) decimal.Decimal          { return cur.Add(one) }

// sumReducer accumulates a single integer field.
type sumReducer struct {
	field func(dataset.AccidentRecord) int
}

func (s sumReducer) Contribution(rec dataset.AccidentRecord) decimal.Decimal {
	return decimal.NewFromInt(int64(s.field(rec)))
}

func (sumReducer) Apply(cur, inc decimal.Decimal) decimal.Decimal { return cur.Add(inc) }
