// Package normalize turns any habit payload into the canonical models.Habit.
//
// It is the single ingestion boundary: manual form input, activated
// suggestions, edit patches and records persisted by older versions all pass
// through Habit before anything downstream sees them, so legacy shapes (a bare
// time string, missing schedule fields) never reappear after loading.
package normalize

import (
	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/utils"
)

// Habit produces the canonical record for raw. today is the date key used
// when no start date is given. Normalizing an already canonical habit (via
// ToRaw) returns it unchanged.
func Habit(raw models.RawHabit, today string) models.Habit {
	h := models.Habit{
		ID:           raw.ID,
		Title:        raw.Title,
		Icon:         raw.Icon,
		Frequency:    raw.Frequency,
		DailyRepeats: utils.Clamp(raw.DailyRepeats.OrDefault(1), constants.MinDailyRepeats, constants.MaxDailyRepeats),
		StartDate:    raw.StartDate,
	}
	if h.Icon == "" {
		h.Icon = constants.DefaultIcon
	}
	if h.Frequency == "" {
		h.Frequency = constants.DefaultFrequency
	}
	if h.StartDate == "" {
		h.StartDate = today
	}
	if raw.EndDate != nil && *raw.EndDate != "" {
		end := *raw.EndDate
		h.EndDate = &end
	}

	switch raw.ScheduleType {
	case models.ScheduleOffset:
		h.ScheduleType = models.ScheduleOffset
		offset := utils.Clamp(raw.OffsetMinutes.OrDefault(constants.DefaultOffsetMinutes), constants.MinOffsetMinutes, constants.MaxOffsetMinutes)
		h.OffsetMinutes = &offset
	default:
		// Missing or unknown schedule types resolve to exact; a legacy time
		// string fills in when no exact time is given.
		h.ScheduleType = models.ScheduleExact
		exact := raw.ExactTime
		if exact == "" {
			exact = raw.Time
		}
		h.ExactTime = utils.NormalizeTimeString(exact)
	}

	return h
}

// ToRaw converts a canonical habit back into raw form without loss.
func ToRaw(h models.Habit) models.RawHabit {
	raw := models.RawHabit{
		ID:           h.ID,
		Title:        h.Title,
		Icon:         h.Icon,
		Frequency:    h.Frequency,
		DailyRepeats: models.Int(h.DailyRepeats),
		StartDate:    h.StartDate,
		ScheduleType: h.ScheduleType,
		ExactTime:    h.ExactTime,
	}
	if h.EndDate != nil {
		end := *h.EndDate
		raw.EndDate = &end
	}
	if h.OffsetMinutes != nil {
		raw.OffsetMinutes = models.Int(*h.OffsetMinutes)
	}
	return raw
}

// Patch overlays the fields set in patch onto existing and re-normalizes the
// result.
func Patch(existing models.Habit, patch models.RawHabit, today string) models.Habit {
	return Habit(Merge(existing, patch), today)
}

// Merge overlays the fields set in patch onto existing without normalizing,
// so the combined record can be validated before it is saved. The habit id
// cannot be changed by a patch. Switching the schedule type drops the payload
// of the previous type.
func Merge(existing models.Habit, patch models.RawHabit) models.RawHabit {
	merged := ToRaw(existing)

	if patch.Title != "" {
		merged.Title = patch.Title
	}
	if patch.Icon != "" {
		merged.Icon = patch.Icon
	}
	if patch.Frequency != "" {
		merged.Frequency = patch.Frequency
	}
	if patch.DailyRepeats.Valid {
		merged.DailyRepeats = patch.DailyRepeats
	}
	if patch.StartDate != "" {
		merged.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		merged.EndDate = patch.EndDate
	}
	if patch.ScheduleType != "" && patch.ScheduleType != merged.ScheduleType {
		merged.ScheduleType = patch.ScheduleType
		merged.ExactTime = ""
		merged.OffsetMinutes = models.LooseInt{}
	}
	if patch.ExactTime != "" {
		merged.ExactTime = patch.ExactTime
	} else if patch.Time != "" {
		merged.ExactTime = patch.Time
	}
	if patch.OffsetMinutes.Valid {
		merged.OffsetMinutes = patch.OffsetMinutes
	}

	merged.ID = existing.ID
	return merged
}
