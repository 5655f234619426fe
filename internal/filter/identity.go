package filter

import "strings"

// EventID derives the stable notification identity from a feed UID.
// Luma UIDs look like "evt-abc123@events.lu.ma": a stable token followed
// by a domain suffix that can differ between exports, so only the part
// before the first "@" identifies the event. UIDs without an "@" are
// used as-is. Deterministic by construction; no other field contributes.
func EventID(uid string) string {
	if i := strings.Index(uid, "@"); i >= 0 {
		return uid[:i]
	}
	return uid
}
