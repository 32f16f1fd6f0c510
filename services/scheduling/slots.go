package scheduling

import (
	"time"

	"curbside/models"
)

// buildDayBuckets generates the candidate buckets for one service day. Bucket
// identity is deterministic, so repeated generation of the same day is
// harmless. Returns nil for excluded weekend days.
func buildDayBuckets(cfg SlotConfig, policyID string, day time.Time) []models.SlotBucket {
	if cfg.ExcludeWeekends {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return nil
		}
	}

	dateStr := day.Format("2006-01-02")
	var buckets []models.SlotBucket
	for start := cfg.DayStartMinute; start+cfg.BucketMinutes <= cfg.DayEndMinute; start += cfg.BucketMinutes {
		buckets = append(buckets, models.SlotBucket{
			ID:            models.SlotID(policyID, dateStr, start),
			ItemPolicyID:  policyID,
			Date:          dateStr,
			Start:         start,
			End:           start + cfg.BucketMinutes,
			CapacityTotal: cfg.DefaultCapacity,
		})
	}
	return buckets
}

// slotStartTime resolves a bucket's absolute start instant in local time.
func slotStartTime(date string, startMinute int) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(startMinute) * time.Minute), nil
}

// withinLookahead reports whether the given day falls inside the bookable
// window [today, today+daysAhead].
func withinLookahead(cfg SlotConfig, now, day time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	target := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	if target.Before(today) {
		return false
	}
	horizon := today.AddDate(0, 0, cfg.DaysAhead)
	return !target.After(horizon)
}

// minuteOfDay returns t as minutes from its local midnight.
func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
