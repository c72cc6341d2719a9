package models

import (
	"encoding/json"
	"math"
	"testing"
)

func TestLooseIntUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  LooseInt
	}{
		{name: "integer", input: `3`, want: Int(3)},
		{name: "float truncates", input: `2.9`, want: Int(2)},
		{name: "negative", input: `-4`, want: Int(-4)},
		{name: "numeric string", input: `"5"`, want: Int(5)},
		{name: "string with suffix", input: `"7 veces"`, want: Int(7)},
		{name: "non-numeric string", input: `"abc"`, want: LooseInt{}},
		{name: "null", input: `null`, want: LooseInt{}},
		{name: "bool", input: `true`, want: LooseInt{}},
		{name: "object", input: `{}`, want: LooseInt{}},
		{name: "huge number saturates", input: `1e30`, want: Int(math.MaxInt)},
		{name: "huge negative saturates", input: `-1e30`, want: Int(math.MinInt)},
		{name: "overflowing digits saturate", input: `"99999999999999999999"`, want: Int(math.MaxInt)},
		{name: "overflowing negative digits saturate", input: `"-99999999999999999999"`, want: Int(math.MinInt)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got LooseInt
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRawHabitDecodesLegacyRecord(t *testing.T) {
	data := []byte(`{"id":"1700000000000","title":"Leer","icon":"📘","frequency":"Diario","time":"9:15 pm","dailyRepeats":"2"}`)

	var raw RawHabit
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to decode legacy habit: %v", err)
	}
	if raw.Time != "9:15 pm" {
		t.Errorf("expected legacy time to be kept, got %q", raw.Time)
	}
	if raw.ScheduleType != "" {
		t.Errorf("expected no schedule type, got %q", raw.ScheduleType)
	}
	if got := raw.DailyRepeats.OrDefault(1); got != 2 {
		t.Errorf("expected dailyRepeats 2, got %d", got)
	}
	if raw.OffsetMinutes.Valid {
		t.Error("expected offsetMinutes to be absent")
	}
}

func TestSettingsMapRoundTrip(t *testing.T) {
	settings := Settings{
		Timezone:                   "Europe/Madrid",
		NotificationsEnabled:       false,
		NotificationGracePeriodMin: 3,
		DefaultSnoozeMin:           30,
	}

	got, err := MapToSettings(SettingsToMap(settings))
	if err != nil {
		t.Fatalf("MapToSettings failed: %v", err)
	}
	if got != settings {
		t.Errorf("round trip = %+v, want %+v", got, settings)
	}
}

func TestMapToSettingsDefaults(t *testing.T) {
	got, err := MapToSettings(map[string]string{})
	if err != nil {
		t.Fatalf("MapToSettings failed: %v", err)
	}
	if got != DefaultSettings() {
		t.Errorf("expected defaults, got %+v", got)
	}

	if _, err := MapToSettings(map[string]string{"default_snooze_min": "soon"}); err == nil {
		t.Error("expected error for non-numeric snooze")
	}
}
