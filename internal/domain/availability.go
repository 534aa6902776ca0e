package domain

import (
	"fmt"
	"time"
)

// Opening hours are fixed per day class: weekdays serve dinner only, weekends
// run lunch through late evening. Hours are 24h clock, open inclusive, close
// exclusive.
const (
	weekdayOpenHour  = 17
	weekdayCloseHour = 22
	weekendOpenHour  = 12
	weekendCloseHour = 23

	slotIntervalMinutes = 30
)

// OpeningHours is the open/close pair for one day class.
type OpeningHours struct {
	Open  int
	Close int
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// HoursFor returns the opening hours for the date's day class.
func HoursFor(date time.Time) OpeningHours {
	if IsWeekend(date) {
		return OpeningHours{Open: weekendOpenHour, Close: weekendCloseHour}
	}
	return OpeningHours{Open: weekdayOpenHour, Close: weekdayCloseHour}
}

// AvailableSlots derives the ordered sequence of bookable time labels for a
// date: one label per half-hour boundary from open (inclusive) to close
// (exclusive), formatted on the 12-hour clock. Pure function of the date and
// the static hours table; recomputed fresh on every call.
func AvailableSlots(date time.Time) []string {
	hours := HoursFor(date)
	slots := make([]string, 0, (hours.Close-hours.Open)*60/slotIntervalMinutes)
	for m := hours.Open * 60; m < hours.Close*60; m += slotIntervalMinutes {
		slots = append(slots, formatSlot(m/60, m%60))
	}
	return slots
}

// SlotAvailable reports whether label is a member of the date's slot sequence.
func SlotAvailable(date time.Time, label string) bool {
	for _, s := range AvailableSlots(date) {
		if s == label {
			return true
		}
	}
	return false
}

func formatSlot(hour, minute int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, suffix)
}
