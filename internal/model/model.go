package model

import "time"

// Event is a qualifying Luma event: a calendar entry that passed the
// platform, attendance and time-window checks. Instances are immutable
// once built by the filter.
type Event struct {
	// ID is the stable per-event token derived from the iCalendar UID
	// (the part before the "@domain" suffix, which varies run to run).
	ID string

	Name     string
	Location string
	URL      string

	// StartAt is always timezone-aware and normalized to UTC, even when
	// the source entry was date-only or had no timezone.
	StartAt time.Time
}
