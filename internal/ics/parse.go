package ics

import (
	"bytes"
	"errors"

	ical "github.com/arran4/golang-ical"

	appLog "lumanotify/internal/log"
)

// Attendee is a single ATTENDEE line of a VEVENT.
type Attendee struct {
	// Value is the attendee identifier, usually "mailto:someone@example.com".
	Value string
	// PartStat is the PARTSTAT parameter ("ACCEPTED", "DECLINED", ...),
	// empty when the parameter is absent.
	PartStat string
}

// Component is one VEVENT as it appears in the feed, before any
// filtering or time normalization. Values are kept raw; the filter owns
// interpretation.
type Component struct {
	UID         string
	Organizer   string
	Summary     string
	Description string
	Location    string

	Attendees []Attendee

	// DTStart is the raw DTSTART value ("20250101", "20250101T090000",
	// "20250101T090000Z"), empty when the property is missing.
	DTStart string
	// DTStartTZID is the TZID parameter of DTSTART, if any.
	DTStartTZID string

	// RRule is the raw RRULE value for recurring events.
	RRule string
}

// Parse parses an ICS payload into the VEVENT components it contains.
// Non-event entries (VTODO, VALARM, VFREEBUSY, ...) are ignored. A
// malformed document is an error; the caller treats it as fatal for the
// run, so no partial result is returned alongside one.
func Parse(body []byte) ([]Component, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	components := make([]Component, 0)
	for _, ve := range cal.Events() {
		components = append(components, parseVEvent(ve))
	}

	appLog.Info("feed parse completed", "event_count", len(components))
	return components, nil
}

func parseVEvent(ve *ical.VEvent) Component {
	var out Component

	// A missing UID is tolerated here; such a component can still match
	// on organizer or description and the filter decides what to do.
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyOrganizer); p != nil {
		out.Organizer = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyAttendee) {
		att := Attendee{Value: p.Value}
		if params := p.ICalParameters; params != nil {
			if vs, ok := params["PARTSTAT"]; ok && len(vs) > 0 {
				att.PartStat = vs[0]
			}
		}
		out.Attendees = append(out.Attendees, att)
	}

	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		out.DTStart = p.Value
		if params := p.ICalParameters; params != nil {
			if tzs, ok := params["TZID"]; ok && len(tzs) > 0 {
				out.DTStartTZID = tzs[0]
			}
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RRule = p.Value
	}

	return out
}
