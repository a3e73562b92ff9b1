package dataset

// Weekday is a Monday-first day-of-week index (0 = Monday .. 6 = Sunday).
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayNone marks a record whose weekday could not be derived.
const WeekdayNone Weekday = -1

const (
	// NumWeekdays is the size of the weekday domain.
	NumWeekdays = 7

	// NumHours is the size of the hour-of-day domain.
	NumHours = 24
)

// HourNone marks a record with no recorded hour. Such records are kept but
// excluded from the weekday×hour grid; they are never coerced to hour 0.
const HourNone = -1

// weekdayLabels are the canonical Monday-first display labels.
var weekdayLabels = [NumWeekdays]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekdayLabels returns the canonical Monday-first weekday labels.
func WeekdayLabels() []string {
	out := make([]string, NumWeekdays)
	copy(out, weekdayLabels[:])
	return out
}

// Label returns the canonical three-letter label, or "" for WeekdayNone.
func (w Weekday) Label() string {
	if w < 0 || w >= NumWeekdays {
		return ""
	}
	return weekdayLabels[w]
}

// MarshalJSON renders a weekday as its canonical label, or null when the
// weekday is unknown.
func (w Weekday) MarshalJSON() ([]byte, error) {
	if w < 0 || w >= NumWeekdays {
		return []byte("null"), nil
	}
	return []byte(`"` + weekdayLabels[w] + `"`), nil
}

// AccidentRecord is one normalized grade crossing accident event.
// Records are value types; the fields below are never mutated after
// normalization.
type AccidentRecord struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Weekday   Weekday `json:"weekday"`
	Hour      int     `json:"hour24"` // 0-23, or HourNone
	StateCode string  `json:"state_code"`
	StateName string  `json:"state_name"`
	County    string  `json:"county"`
	City      string  `json:"city"`
	Killed    int     `json:"killed"`
	Injured   int     `json:"injured"`

	// Contextual fields. Not aggregated on; passed through untouched so the
	// sample view shows the row as it appeared in the source.
	CrossingType     string `json:"crossing_type"`
	HighwayUser      string `json:"highway_user"`
	Weather          string `json:"weather"`
	Visibility       string `json:"visibility"`
	RoadwayCondition string `json:"roadway_condition"`
	Railroad         string `json:"railroad"`
	TrainSpeed       string `json:"train_speed"`
}

// Dataset is an immutable, ordered sequence of normalized accident records.
// It is built once by Normalize and never mutated afterwards, so a single
// Dataset can be shared across sessions without locking.
type Dataset struct {
	loadID  string
	records []AccidentRecord
	yearMin int
	yearMax int
}

// LoadID identifies this load of the source data. Two Datasets built from
// separate loads never share an ID, which makes the ID usable as a view
// identity marker downstream.
func (d *Dataset) LoadID() string { return d.loadID }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Record returns the record at index i, in source order.
func (d *Dataset) Record(i int) AccidentRecord { return d.records[i] }

// YearRange returns the minimum and maximum year present in the data.
// Both are 0 when the dataset is empty.
func (d *Dataset) YearRange() (int, int) { return d.yearMin, d.yearMax }
