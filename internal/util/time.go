package util

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Seoul returns the Asia/Seoul location, falling back to a fixed +09:00 zone
// when the tz database is unavailable.
func Seoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		log.Errorf("Failed to load location 'Asia/Seoul': %v. Falling back to fixed KST.", err)
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// DateIn truncates t to midnight of its calendar day in loc.
func DateIn(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// WeekStart returns the Monday of the ISO week containing t, at midnight UTC.
// Bars keyed this way resample daily closes into weekly ones.
func WeekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}

// MonthsAgo returns the calendar date n months before now, at midnight UTC.
func MonthsAgo(now time.Time, n int) time.Time {
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, -n, 0)
}
