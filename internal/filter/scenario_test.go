package filter

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumanotify/internal/dedup"
	"lumanotify/internal/ics"
	"lumanotify/internal/notify"
)

// Runs the parse -> filter -> dedup pipeline over a realistic feed the
// way the orchestrator does, across two consecutive runs.
func TestPipelineFirstRunThenRepeat(t *testing.T) {
	body := []byte(strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Google Inc//Google Calendar 70.9054//EN",
		"BEGIN:VEVENT",
		"UID:evt-abc123@events.lu.ma",
		"SUMMARY:Go Meetup SF",
		"DESCRIPTION:You're in! Details: https://lu.ma/abcd1234",
		"LOCATION:575 Market St",
		"DTSTART:20250315T183000Z",
		"ATTENDEE;PARTSTAT=ACCEPTED:mailto:sreeprasad@example.com",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:other-meeting@google.com",
		"SUMMARY:1:1 with manager",
		"DTSTART:20250312T100000Z",
		"ATTENDEE;PARTSTAT=ACCEPTED:mailto:sreeprasad@example.com",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n"))

	components, err := ics.Parse(body)
	require.NoError(t, err)
	require.Len(t, components, 2)

	events := Filter(components, Criteria{
		Now:           time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Window:        30 * 24 * time.Hour,
		AttendeeMatch: "sreeprasad",
	})

	// Only the Luma event qualifies; the plain meeting has no branding.
	require.Len(t, events, 1)
	assert.Equal(t, "evt-abc123", events[0].ID)

	store := &dedup.Store{Path: filepath.Join(t.TempDir(), "sent_events.json")}

	// First run: the event is new, gets formatted with singular phrasing,
	// and is committed after the (assumed successful) delivery.
	sent := store.Load()
	newEvents := dedup.Diff(events, sent)
	require.Len(t, newEvents, 1)

	message := notify.FormatMessage(newEvents)
	assert.Contains(t, message, "registered for an event")
	assert.Contains(t, message, "Go Meetup SF")
	assert.Contains(t, message, "https://lu.ma/abcd1234")

	require.NoError(t, store.Commit(sent, []string{newEvents[0].ID}))

	// Second run over the same feed: nothing new, nothing to send.
	sent = store.Load()
	assert.Empty(t, dedup.Diff(events, sent))
}
