package service

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// PlannedSlot is one (date, time, slot) occurrence the rotation table says
// should happen, independent of whether a task row exists for it.
type PlannedSlot struct {
	Date   string
	Time   string
	SlotID string
}

// weekdayKeys maps business weekdays to rotation table keys. Weekend days
// are absent and contribute nothing to the plan.
var weekdayKeys = map[time.Weekday]string{
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
}

// Planner expands the weekly rotation table into concrete planned slots.
// Expansion is deterministic: identical inputs always yield the identical
// sequence.
type Planner struct {
	rotation map[string]map[string]string
	times    []string
}

// NewPlanner builds a planner over a rotation table (weekday key -> time ->
// slot id) and the ordered list of recognized times-of-day.
func NewPlanner(rotation map[string]map[string]string, times []string) *Planner {
	return &Planner{rotation: rotation, times: times}
}

// Expand returns every planned slot in the inclusive date range, iterating
// calendar days in order and recognized times in their configured order.
// Rotation entries at unrecognized times, and any weekend or unknown
// weekday keys, are silently omitted.
func (p *Planner) Expand(dateStart, dateEnd string) ([]PlannedSlot, error) {
	start, err := time.Parse(dateLayout, dateStart)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", dateStart, err)
	}
	end, err := time.Parse(dateLayout, dateEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", dateEnd, err)
	}

	var planned []PlannedSlot
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key, ok := weekdayKeys[day.Weekday()]
		if !ok {
			continue
		}
		entry, ok := p.rotation[key]
		if !ok {
			continue
		}
		date := day.Format(dateLayout)
		for _, timeStr := range p.times {
			slotID, ok := entry[timeStr]
			if !ok {
				continue
			}
			planned = append(planned, PlannedSlot{Date: date, Time: timeStr, SlotID: slotID})
		}
	}
	return planned, nil
}
