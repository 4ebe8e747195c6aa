package domain

import "time"

type TimeOption string

const (
	TimeOptionAny      TimeOption = "any"
	TimeOptionSpecific TimeOption = "specific"
)

// AllDayBounds are the visit-window hours a task kind uses when the caller
// asks for an all-day window
type AllDayBounds struct {
	FromHour int
	EndHour  int
}

// allDayByKind: every task kind shares the 08:00-22:00 all-day window. Kept
// as a table so a kind can diverge without touching the normalizer.
var allDayByKind = map[TaskKind]AllDayBounds{
	TaskKindDelivery: {FromHour: 8, EndHour: 22},
	TaskKindPickup:   {FromHour: 8, EndHour: 22},
	TaskKindChange:   {FromHour: 8, EndHour: 22},
}

// TimeWindow is a resolved visit window on a concrete date
type TimeWindow struct {
	Date   time.Time
	From   time.Time
	End    time.Time
	Option TimeOption
}

// NormalizeTimeWindow resolves the caller's time selection onto the target
// date. "any" maps to the kind's all-day bounds; "specific" maps the
// supplied clock times onto the target date.
func NormalizeTimeWindow(kind TaskKind, date time.Time, option TimeOption, from, end time.Time) (TimeWindow, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	switch option {
	case TimeOptionAny:
		bounds := allDayByKind[kind]
		return TimeWindow{
			Date:   day,
			From:   day.Add(time.Duration(bounds.FromHour) * time.Hour),
			End:    day.Add(time.Duration(bounds.EndHour) * time.Hour),
			Option: TimeOptionAny,
		}, nil
	case TimeOptionSpecific:
		f := time.Date(day.Year(), day.Month(), day.Day(), from.Hour(), from.Minute(), 0, 0, day.Location())
		e := time.Date(day.Year(), day.Month(), day.Day(), end.Hour(), end.Minute(), 0, 0, day.Location())
		if !e.After(f) {
			return TimeWindow{}, NewError(CodeMissingField, "la hora final debe ser posterior a la inicial")
		}
		return TimeWindow{Date: day, From: f, End: e, Option: TimeOptionSpecific}, nil
	default:
		return TimeWindow{}, Errorf(CodeMissingField, "opción de horario desconocida: %s", option)
	}
}

// EndOfDay normalizes a timestamp to 23:59:59 of its calendar day
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// StartOfDay normalizes a timestamp to 00:00:00 of its calendar day
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
