package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ShiftType is one of the three fixed daily windows a reservation claims.
// The symbolic name is canonical; the clock window is a display alias.
type ShiftType string

const (
	ShiftMorning   ShiftType = "MORNING"
	ShiftAfternoon ShiftType = "AFTERNOON"
	ShiftFullDay   ShiftType = "FULL_DAY"
)

var AllShifts = []ShiftType{ShiftMorning, ShiftAfternoon, ShiftFullDay}

var shiftWindows = map[ShiftType]string{
	ShiftMorning:   "8:00-14:00",
	ShiftAfternoon: "14:00-21:00",
	ShiftFullDay:   "9:30-18:30",
}

// DayHalf is the unit a shift occupies in a space's daily schedule.
type DayHalf string

const (
	HalfAM DayHalf = "AM"
	HalfPM DayHalf = "PM"
)

// ParseShiftType accepts either the canonical name or its window alias.
func ParseShiftType(s string) (ShiftType, error) {
	s = strings.TrimSpace(s)
	for _, st := range AllShifts {
		if strings.EqualFold(s, string(st)) || s == shiftWindows[st] {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid shift type %q", s)
}

func (s ShiftType) Valid() bool {
	_, ok := shiftWindows[s]
	return ok
}

func (s ShiftType) Window() string {
	return shiftWindows[s]
}

// Halves reports which halves of the day the shift occupies.
func (s ShiftType) Halves() []DayHalf {
	switch s {
	case ShiftMorning:
		return []DayHalf{HalfAM}
	case ShiftAfternoon:
		return []DayHalf{HalfPM}
	case ShiftFullDay:
		return []DayHalf{HalfAM, HalfPM}
	}
	return nil
}

// Overlaps reports whether two shifts on the same date cannot both be honored.
func (s ShiftType) Overlaps(o ShiftType) bool {
	switch s {
	case ShiftFullDay:
		return o.Valid()
	case ShiftMorning:
		return o == ShiftMorning || o == ShiftFullDay
	case ShiftAfternoon:
		return o == ShiftAfternoon || o == ShiftFullDay
	}
	return false
}

func (s *ShiftType) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("shift type must be a string: %w", err)
	}
	if raw == "" {
		*s = ""
		return nil
	}
	parsed, err := ParseShiftType(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *ShiftType) UnmarshalParam(param string) error {
	parsed, err := ParseShiftType(param)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
