package domain

import (
	"fmt"
	"strings"
)

// Business hours run Monday to Friday from OpeningHour up to but not
// including ClosingHour, on a half-hour grid.
const (
	OpeningHour = 9
	ClosingHour = 18
)

// SlotUniverse returns every bookable time-of-day in grid order:
// 09:00:00, 09:30:00, ..., 17:30:00.
func SlotUniverse() []string {
	slots := make([]string, 0, (ClosingHour-OpeningHour)*2)
	for hour := OpeningHour; hour < ClosingHour; hour++ {
		slots = append(slots,
			fmt.Sprintf("%02d:00:00", hour),
			fmt.Sprintf("%02d:30:00", hour),
		)
	}
	return slots
}

// NormalizeClock pads an HH:MM value to HH:MM:SS. Values already carrying a
// seconds component pass through unchanged. Stored times may arrive in
// either form; comparisons must always happen on the padded form.
func NormalizeClock(clock string) string {
	if strings.Count(clock, ":") == 1 {
		return clock + ":00"
	}
	return clock
}

// AvailableSlots subtracts the booked times from the slot universe,
// preserving grid order. Booked values outside the grid are ignored.
func AvailableSlots(booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[NormalizeClock(b)] = struct{}{}
	}

	universe := SlotUniverse()
	open := make([]string, 0, len(universe))
	for _, slot := range universe {
		if _, ok := taken[slot]; !ok {
			open = append(open, slot)
		}
	}
	return open
}
