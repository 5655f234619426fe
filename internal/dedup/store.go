package dedup

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	appLog "lumanotify/internal/log"
	"lumanotify/internal/model"
)

// Set is the in-memory form of the persisted sent-event state.
type Set map[string]struct{}

// Contains reports whether id has already been notified.
func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// state is the on-disk schema. It matches the historical sent_events.json
// layout, so existing state files keep working.
type state struct {
	SentEventIDs []string `json:"sent_event_ids"`
	LastUpdated  string   `json:"last_updated"`
}

// Store persists the set of event ids that have already triggered a
// notification. One file, fully rewritten on commit; ids only ever
// accumulate. The design assumes a single run at a time (enforced by the
// invoking scheduler, not here).
type Store struct {
	// Path is the state file location.
	Path string
}

// Load reads the persisted set. It fails soft: a missing, unreadable or
// corrupt file yields an empty set, because re-notifying once is better
// than a run that can never complete.
func (s *Store) Load() Set {
	set := make(Set)

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			appLog.Error("sent-event state unreadable, starting empty", err, "path", s.Path)
		}
		return set
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		appLog.Error("sent-event state corrupt, starting empty", err, "path", s.Path)
		return set
	}

	for _, id := range st.SentEventIDs {
		set[id] = struct{}{}
	}
	return set
}

// Diff returns the events whose id is not yet in sent, preserving the
// input order.
func Diff(all []model.Event, sent Set) []model.Event {
	out := make([]model.Event, 0, len(all))
	for _, ev := range all {
		if !sent.Contains(ev.ID) {
			out = append(out, ev)
		}
	}
	return out
}

// Commit persists the union of sent and newIDs, stamping the write time.
// Called exactly once per run, and only after delivery succeeded; a
// failed delivery leaves the file untouched so the same events count as
// new again next run.
func (s *Store) Commit(sent Set, newIDs []string) error {
	union := make(Set, len(sent)+len(newIDs))
	for id := range sent {
		union[id] = struct{}{}
	}
	for _, id := range newIDs {
		union[id] = struct{}{}
	}

	ids := make([]string, 0, len(union))
	for id := range union {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	st := state{
		SentEventIDs: ids,
		LastUpdated:  time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(&st, "", "  ")
	if err != nil {
		return err
	}

	appLog.Info("saving sent-event state", "path", s.Path, "count", len(ids))
	return writeAtomic(s.Path, data)
}

// writeAtomic writes data via a temp file in the same directory followed
// by a rename, so a crash mid-write never leaves a truncated state file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".sent-events-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
