package dataset

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source column names, fixed by the app-ready export schema.
const (
	colYear         = "Year"
	colMonth        = "Month"
	colDate         = "Date"
	colWeekday      = "Weekday"
	colHour         = "Hour24"
	colStateCode    = "State Code"
	colStateName    = "State Name"
	colCounty       = "County Name"
	colCity         = "City Name"
	colKilled       = "Killed"
	colInjured      = "Injured"
	colCrossingType = "Crossing Type"
	colHighwayUser  = "Highway User"
	colWeather      = "Weather Condition"
	colVisibility   = "Visibility"
	colRoadway      = "Roadway Condition"
	colRailroad     = "Railroad Code"
	colTrainSpeed   = "Train Speed"
)

// missingPolicy says what to do when a numeric field is absent or unparseable.
type missingPolicy int

const (
	// policyDrop removes the whole row. Applies to year/month: a row without
	// them cannot be placed in any time-based view.
	policyDrop missingPolicy = iota

	// policyZero substitutes 0. Applies to killed/injured.
	policyZero

	// policyNone keeps the row and records "no value". Applies to the hour,
	// which must never be coerced to hour 0.
	policyNone
)

// intField is one entry of the numeric coercion table: column name, value
// domain, fallback policy, and where the parsed value lands on the record.
// All loose-typing fixes happen here, once, rather than as scattered checks.
type intField struct {
	column   string
	policy   missingPolicy
	min, max int
	assign   func(*AccidentRecord, int)
}

var intFields = []intField{
	{colYear, policyDrop, math.MinInt, math.MaxInt, func(r *AccidentRecord, v int) { r.Year = v }},
	{colMonth, policyDrop, 1, 12, func(r *AccidentRecord, v int) { r.Month = v }},
	{colHour, policyNone, 0, 23, func(r *AccidentRecord, v int) { r.Hour = v }},
	{colKilled, policyZero, 0, math.MaxInt, func(r *AccidentRecord, v int) { r.Killed = v }},
	{colInjured, policyZero, 0, math.MaxInt, func(r *AccidentRecord, v int) { r.Injured = v }},
}

// Stats summarizes one normalization pass, for diagnostics only.
type Stats struct {
	Kept           int
	Dropped        int
	MissingHour    int
	MissingWeekday int
}

// Normalize runs the one-time typing pass over raw rows and produces the
// immutable Dataset the rest of the pipeline works against. Rows whose year
// or month cannot be parsed are dropped; rows missing only the hour or the
// weekday are kept and excluded later from just the aggregates that need the
// missing field.
func Normalize(rows []RawRow) (*Dataset, Stats) {
	ds := &Dataset{loadID: uuid.New().String()}
	var st Stats

	for _, row := range rows {
		rec, ok := normalizeRow(row)
		if !ok {
			st.Dropped++
			continue
		}
		if rec.Hour == HourNone {
			st.MissingHour++
		}
		if rec.Weekday == WeekdayNone {
			st.MissingWeekday++
		}
		if len(ds.records) == 0 || rec.Year < ds.yearMin {
			ds.yearMin = rec.Year
		}
		if len(ds.records) == 0 || rec.Year > ds.yearMax {
			ds.yearMax = rec.Year
		}
		ds.records = append(ds.records, rec)
	}
	st.Kept = len(ds.records)

	slog.Info("Dataset normalized",
		"load_id", ds.loadID,
		"rows", st.Kept,
		"dropped", st.Dropped,
		"missing_hour", st.MissingHour,
		"missing_weekday", st.MissingWeekday,
	)
	return ds, st
}

func normalizeRow(row RawRow) (AccidentRecord, bool) {
	rec := AccidentRecord{
		Hour:             HourNone,
		Weekday:          WeekdayNone,
		StateCode:        strings.ToUpper(strings.TrimSpace(row[colStateCode])),
		StateName:        strings.TrimSpace(row[colStateName]),
		County:           strings.TrimSpace(row[colCounty]),
		City:             strings.TrimSpace(row[colCity]),
		CrossingType:     strings.TrimSpace(row[colCrossingType]),
		HighwayUser:      strings.TrimSpace(row[colHighwayUser]),
		Weather:          strings.TrimSpace(row[colWeather]),
		Visibility:       strings.TrimSpace(row[colVisibility]),
		RoadwayCondition: strings.TrimSpace(row[colRoadway]),
		Railroad:         strings.TrimSpace(row[colRailroad]),
		TrainSpeed:       strings.TrimSpace(row[colTrainSpeed]),
	}

	for _, f := range intFields {
		v, ok := parseInt(row[f.column])
		if ok && (v < f.min || v > f.max) {
			ok = false
		}
		if ok {
			f.assign(&rec, v)
			continue
		}
		switch f.policy {
		case policyDrop:
			return AccidentRecord{}, false
		case policyZero:
			f.assign(&rec, 0)
		case policyNone:
			// leave the sentinel in place
		}
	}

	rec.Weekday = deriveWeekday(row)
	return rec, true
}

// parseInt accepts plain integers plus integral floats ("8.0"), which the
// source emits for columns that passed through a nullable-numeric export.
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// weekdayNames maps accepted spellings (lowercased) to the canonical index.
var weekdayNames = map[string]Weekday{
	"mon": Monday, "monday": Monday,
	"tue": Tuesday, "tuesday": Tuesday,
	"wed": Wednesday, "wednesday": Wednesday,
	"thu": Thursday, "thursday": Thursday,
	"fri": Friday, "friday": Friday,
	"sat": Saturday, "saturday": Saturday,
	"sun": Sunday, "sunday": Sunday,
}

// dateLayouts are tried in order when the weekday must be derived from a
// full date column.
var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006"}

// deriveWeekday uses the best available date information: the weekday column
// when it parses, otherwise the full date column. Returns WeekdayNone when
// neither yields a day.
func deriveWeekday(row RawRow) Weekday {
	if wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(row[colWeekday]))]; ok {
		return wd
	}
	date := strings.TrimSpace(row[colDate])
	if date == "" {
		return WeekdayNone
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, date)
		if err != nil {
			continue
		}
		// time.Weekday is Sunday-first; shift to Monday-first.
		return Weekday((int(t.Weekday()) + 6) % NumWeekdays)
	}
	return WeekdayNone
}
