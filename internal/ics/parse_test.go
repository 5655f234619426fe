package ics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feed builds a CRLF-terminated ICS document from bare lines.
func feed(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

func TestParseVEvent(t *testing.T) {
	body := feed(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Test//EN",
		"BEGIN:VEVENT",
		"UID:evt-abc123@events.lu.ma",
		"ORGANIZER;CN=Luma:mailto:calendar@lu.ma",
		"SUMMARY:Go Meetup",
		"DESCRIPTION:Join here: https://lu.ma/abcd1234",
		"LOCATION:575 Market St",
		"DTSTART;TZID=America/New_York:20250310T183000",
		"RRULE:FREQ=WEEKLY",
		"ATTENDEE;PARTSTAT=ACCEPTED;CN=Sree:mailto:sreeprasad@example.com",
		"ATTENDEE;PARTSTAT=DECLINED:mailto:other@example.com",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	components, err := Parse(body)
	require.NoError(t, err)
	require.Len(t, components, 1)

	c := components[0]
	assert.Equal(t, "evt-abc123@events.lu.ma", c.UID)
	assert.Equal(t, "mailto:calendar@lu.ma", c.Organizer)
	assert.Equal(t, "Go Meetup", c.Summary)
	assert.Equal(t, "Join here: https://lu.ma/abcd1234", c.Description)
	assert.Equal(t, "575 Market St", c.Location)
	assert.Equal(t, "20250310T183000", c.DTStart)
	assert.Equal(t, "America/New_York", c.DTStartTZID)
	assert.Equal(t, "FREQ=WEEKLY", c.RRule)

	require.Len(t, c.Attendees, 2)
	assert.Equal(t, "mailto:sreeprasad@example.com", c.Attendees[0].Value)
	assert.Equal(t, "ACCEPTED", c.Attendees[0].PartStat)
	assert.Equal(t, "mailto:other@example.com", c.Attendees[1].Value)
	assert.Equal(t, "DECLINED", c.Attendees[1].PartStat)
}

func TestParseIgnoresNonEventComponents(t *testing.T) {
	body := feed(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Test//EN",
		"BEGIN:VTODO",
		"UID:todo-1",
		"SUMMARY:Not an event",
		"END:VTODO",
		"BEGIN:VEVENT",
		"UID:evt-1@events.lu.ma",
		"SUMMARY:Real event",
		"DTSTART:20250315T183000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	components, err := Parse(body)
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, "Real event", components[0].Summary)
	assert.Equal(t, "20250315T183000Z", components[0].DTStart)
	assert.Empty(t, components[0].DTStartTZID)
	assert.Empty(t, components[0].Attendees)
}

func TestParseMissingOptionalFields(t *testing.T) {
	body := feed(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Test//EN",
		"BEGIN:VEVENT",
		"UID:evt-bare@events.lu.ma",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	components, err := Parse(body)
	require.NoError(t, err)
	require.Len(t, components, 1)

	c := components[0]
	assert.Empty(t, c.Summary)
	assert.Empty(t, c.DTStart)
	assert.Empty(t, c.Organizer)
}

func TestParseMalformedBody(t *testing.T) {
	_, err := Parse([]byte("this is not a calendar"))
	assert.Error(t, err)
}

func TestParseEmptyBody(t *testing.T) {
	_, err := Parse(nil)
	assert.Error(t, err)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t,
		"https://calendar.google.com/...(redacted)",
		redactURL("https://calendar.google.com/calendar/ical/secret-token/basic.ics"))
	assert.Equal(t, "ics://...(redacted)", redactURL("no-scheme"))
}
