package filter

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"lumanotify/internal/ics"
	appLog "lumanotify/internal/log"
	"lumanotify/internal/model"
)

// The two domains Luma uses. Branding shows up inconsistently across the
// organizer, UID and description fields, so platform detection checks all
// three.
const (
	platformDomain    = "lu.ma"
	platformAltDomain = "luma.com"
)

const defaultEventName = "Untitled Event"

// Matches the first Luma URL inside a description. The character class
// stops at whitespace and at backslashes left over from ICS text escaping.
var urlPattern = regexp.MustCompile(`https?://(?:lu\.ma|luma\.com)/(?:event/|e/|join/)?[^\s\\]+`)

// Criteria bundles the inputs the filter needs beyond the feed itself.
type Criteria struct {
	// Now is the reference moment; events starting before it are gone.
	Now time.Time
	// Window is the forward horizon. The window is inclusive at both
	// ends: Now <= start <= Now+Window.
	Window time.Duration
	// AttendeeMatch identifies the user's own attendee entry: a
	// case-insensitive substring of the attendee identifier.
	AttendeeMatch string
}

// Filter reduces raw feed components to the qualifying Luma events: the
// ones the platform hosts, that the user accepted, and that start inside
// the window. The result is sorted by start time ascending.
func Filter(components []ics.Component, c Criteria) []model.Event {
	cutoff := c.Now.Add(c.Window)
	events := make([]model.Event, 0)

	for _, comp := range components {
		if !isPlatformEvent(comp) {
			continue
		}
		if !userAccepted(comp, c.AttendeeMatch) {
			continue
		}

		start, ok := eventStart(comp, c.Now, cutoff)
		if !ok {
			continue
		}
		if start.Before(c.Now) || start.After(cutoff) {
			continue
		}

		events = append(events, buildEvent(comp, start))
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].StartAt.Before(events[j].StartAt)
	})
	return events
}

// isPlatformEvent reports whether the component carries Luma branding in
// any of the three fields the feed is known to put it in.
func isPlatformEvent(comp ics.Component) bool {
	for _, field := range []string{comp.Organizer, comp.UID, comp.Description} {
		lower := strings.ToLower(field)
		if strings.Contains(lower, platformDomain) || strings.Contains(lower, platformAltDomain) {
			return true
		}
	}
	return false
}

// userAccepted reports whether a single attendee entry both belongs to
// the user and has PARTSTAT exactly "ACCEPTED". The two conditions must
// hold on the same entry; no attendees at all means the user is not on
// this event.
func userAccepted(comp ics.Component, match string) bool {
	if len(comp.Attendees) == 0 {
		return false
	}
	needle := strings.ToLower(match)
	for _, att := range comp.Attendees {
		if att.PartStat != "ACCEPTED" {
			continue
		}
		if strings.Contains(strings.ToLower(att.Value), needle) {
			return true
		}
	}
	return false
}

// eventStart resolves the component's effective start as an aware UTC
// timestamp. A missing or unparseable DTSTART disqualifies the component
// outright. For a recurring event whose base start is already past, the
// next RRULE occurrence no later than cutoff is used instead.
func eventStart(comp ics.Component, now, cutoff time.Time) (time.Time, bool) {
	start, ok := normalizeStart(comp)
	if !ok {
		return time.Time{}, false
	}

	if start.Before(now) && comp.RRule != "" {
		next, ok := nextOccurrence(comp, start, now)
		if !ok || next.After(cutoff) {
			return time.Time{}, false
		}
		return next, true
	}

	return start, true
}

// normalizeStart turns the raw DTSTART into UTC. A date-only value is
// midnight UTC of that date; a date-time without timezone is taken as
// UTC; a TZID-qualified value is converted.
func normalizeStart(comp ics.Component) (time.Time, bool) {
	v := strings.TrimSpace(comp.DTStart)
	if v == "" {
		return time.Time{}, false
	}

	// UTC form, e.g. 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	// Date-time, possibly with a TZID parameter.
	if strings.Contains(v, "T") {
		loc := time.UTC
		if comp.DTStartTZID != "" {
			l, err := time.LoadLocation(comp.DTStartTZID)
			if err != nil {
				appLog.Error("unknown TZID, assuming UTC", err, "tzid", comp.DTStartTZID, "uid", comp.UID)
			} else {
				loc = l
			}
		}
		t, err := time.ParseInLocation("20060102T150405", v, loc)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}

	// Date-only (all-day), e.g. 20250101
	t, err := time.Parse("20060102", v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// nextOccurrence finds the first RRULE occurrence at or after now, in UTC.
func nextOccurrence(comp ics.Component, start, now time.Time) (time.Time, bool) {
	r, err := rrule.StrToRRule(comp.RRule)
	if err != nil {
		appLog.Error("bad RRULE, skipping recurrence", err, "uid", comp.UID, "rrule", comp.RRule)
		return time.Time{}, false
	}
	r.DTStart(start)

	next := r.After(now, true)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next.UTC(), true
}

func buildEvent(comp ics.Component, start time.Time) model.Event {
	name := comp.Summary
	if name == "" {
		name = defaultEventName
	}

	return model.Event{
		ID:       EventID(comp.UID),
		Name:     name,
		Location: comp.Location,
		URL:      extractURL(comp.Description),
		StartAt:  start,
	}
}

// extractURL pulls the first Luma link out of the description, cleaned
// of trailing escape artifacts. Empty when the description has none.
func extractURL(description string) string {
	m := urlPattern.FindString(description)
	if m == "" {
		return ""
	}
	m = strings.TrimRight(m, `\`)
	return strings.TrimSpace(m)
}
