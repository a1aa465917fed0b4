package models

import (
	"fmt"
	"time"
)

// TimeSlot is a coarse bucket of the hour of day.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotLunch     TimeSlot = "lunch"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

// TimeSlots lists the slots in day order.
var TimeSlots = []TimeSlot{SlotMorning, SlotLunch, SlotAfternoon, SlotEvening}

// SlotWindow is the hour range in which an auto-order for a slot is placed.
// End is inclusive.
type SlotWindow struct {
	Start int
	End   int
}

var slotWindows = map[TimeSlot]SlotWindow{
	SlotMorning:   {Start: 8, End: 10},
	SlotLunch:     {Start: 12, End: 13},
	SlotAfternoon: {Start: 15, End: 16},
	SlotEvening:   {Start: 18, End: 19},
}

// TimeSlotForHour maps 06-11 morning, 11-15 lunch, 15-18 afternoon, everything else evening.
func TimeSlotForHour(hour int) TimeSlot {
	switch {
	case hour >= 6 && hour < 11:
		return SlotMorning
	case hour >= 11 && hour < 15:
		return SlotLunch
	case hour >= 15 && hour < 18:
		return SlotAfternoon
	default:
		return SlotEvening
	}
}

func TimeSlotOf(t time.Time) TimeSlot {
	return TimeSlotForHour(t.Hour())
}

func (s TimeSlot) Valid() bool {
	_, ok := slotWindows[s]
	return ok
}

// Window returns the ordering window of the slot, lunch for unknown slots.
func (s TimeSlot) Window() SlotWindow {
	if w, ok := slotWindows[s]; ok {
		return w
	}
	return slotWindows[SlotLunch]
}

func ParseTimeSlot(raw string) (TimeSlot, error) {
	s := TimeSlot(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown time slot %q", raw)
	}
	return s, nil
}

// HalfHourSlot labels the 30 minute delivery slot containing t, e.g. "12:30-13:00".
func HalfHourSlot(t time.Time) string {
	hour, minute := t.Hour(), t.Minute()
	if minute < 30 {
		return fmt.Sprintf("%02d:00-%02d:30", hour, hour)
	}
	return fmt.Sprintf("%02d:30-%02d:00", hour, hour+1)
}

// DeliverySlots returns the half-hour slot catalogue spanning [startHour, endHour).
func DeliverySlots(startHour, endHour int) []string {
	slots := make([]string, 0, (endHour-startHour)*2)
	for hour := startHour; hour < endHour; hour++ {
		slots = append(slots,
			fmt.Sprintf("%02d:00-%02d:30", hour, hour),
			fmt.Sprintf("%02d:30-%02d:00", hour, hour+1),
		)
	}
	return slots
}
