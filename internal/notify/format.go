package notify

import (
	"fmt"
	"strings"

	"lumanotify/internal/model"
)

// dateLayout renders "Tue, Mar 10 at 06:30 PM". Times are shown in UTC,
// matching the normalized start timestamps.
const dateLayout = "Mon, Jan 02 at 03:04 PM"

// FormatMessage renders the new events into one notification body. A
// single event gets the singular phrasing; several get a numbered list.
// Callers must not pass an empty slice; the orchestrator short-circuits
// before formatting when there is nothing new.
func FormatMessage(events []model.Event) string {
	var lines []string

	if len(events) == 1 {
		e := events[0]
		lines = append(lines, "Hey! I just registered for an event:", "")
		lines = append(lines, e.Name)
		lines = append(lines, e.StartAt.Format(dateLayout))
		if e.URL != "" {
			lines = append(lines, e.URL)
		}
	} else {
		lines = append(lines, fmt.Sprintf("Hey! I just registered for %d events:", len(events)), "")
		for i, e := range events {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, e.Name))
			lines = append(lines, "   "+e.StartAt.Format(dateLayout))
			if e.URL != "" {
				lines = append(lines, "   "+e.URL)
			}
			lines = append(lines, "")
		}
	}

	return strings.Join(lines, "\n")
}
