package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

type ScheduleType string

const (
	ScheduleExact  ScheduleType = "exact"
	ScheduleOffset ScheduleType = "offset"
)

// Frequency labels are free-form; these are the ones the app offers.
const (
	FrequencyDaily         = "Diario"
	FrequencyWeekly        = "Semanal"
	FrequencyAlternateDays = "Días alternos"
)

// Habit is the canonical, normalized habit record.
type Habit struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Icon          string       `json:"icon"`
	Frequency     string       `json:"frequency"`
	DailyRepeats  int          `json:"dailyRepeats"`
	StartDate     string       `json:"startDate"`          // YYYY-MM-DD format
	EndDate       *string      `json:"endDate"`            // YYYY-MM-DD format, nil for no end
	ScheduleType  ScheduleType `json:"scheduleType"`       // exact | offset
	ExactTime     string       `json:"exactTime,omitempty"` // hh:mm AM/PM, exact only
	OffsetMinutes *int         `json:"offsetMinutes,omitempty"`
}

func (h Habit) IsExact() bool {
	return h.ScheduleType != ScheduleOffset
}

func (h Habit) IsOffset() bool {
	return h.ScheduleType == ScheduleOffset
}

// Offset returns the offset in minutes, or 0 for exact habits.
func (h Habit) Offset() int {
	if h.OffsetMinutes == nil {
		return 0
	}
	return *h.OffsetMinutes
}

// RawHabit is any partial habit payload before normalization: a form
// submission, a suggested habit being activated, an edit patch, or a record
// persisted by an older version of the app (bare Time, no ScheduleType).
type RawHabit struct {
	ID            string       `json:"id,omitempty"`
	Title         string       `json:"title,omitempty"`
	Icon          string       `json:"icon,omitempty"`
	Frequency     string       `json:"frequency,omitempty"`
	DailyRepeats  LooseInt     `json:"dailyRepeats"`
	StartDate     string       `json:"startDate,omitempty"`
	EndDate       *string      `json:"endDate,omitempty"`
	ScheduleType  ScheduleType `json:"scheduleType,omitempty"`
	ExactTime     string       `json:"exactTime,omitempty"`
	OffsetMinutes LooseInt     `json:"offsetMinutes"`
	Time          string       `json:"time,omitempty"` // legacy
}

// LooseInt is an integer decoded permissively from stored data. Numbers are
// truncated, numeric strings are read up to the first non-digit, and anything
// else decodes as absent instead of failing the whole record.
type LooseInt struct {
	Value int
	Valid bool
}

// Int returns a present LooseInt.
func Int(v int) LooseInt {
	return LooseInt{Value: v, Valid: true}
}

// OrDefault returns the value when present, def otherwise.
func (n LooseInt) OrDefault(def int) int {
	if !n.Valid {
		return def
	}
	return n.Value
}

func (n LooseInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(n.Value)), nil
}

func (n *LooseInt) UnmarshalJSON(data []byte) error {
	*n = LooseInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*n = ParseLooseInt(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = Int(saturate(math.Trunc(f)))
	return nil
}

// saturate converts f to int, pinning values outside the int range to the
// nearest end.
func saturate(f float64) int {
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// ParseLooseInt reads an optionally signed run of leading digits, ignoring
// surrounding whitespace. "3x" is 3; "x3" is absent.
func ParseLooseInt(s string) LooseInt {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return LooseInt{}
	}
	v, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		if s[0] == '-' {
			return Int(math.MinInt)
		}
		return Int(math.MaxInt)
	}
	if err != nil {
		return LooseInt{}
	}
	return Int(v)
}
