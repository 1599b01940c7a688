// Package scheduler holds deferred one-shot callbacks for a game session.
//
// Entries are fired from Advance, which the session calls on its own tick,
// so callbacks run on the same path as every other state mutation. Each
// entry carries a guard that is re-evaluated at fire time; state may have
// changed since the entry was scheduled.
package scheduler

import (
	"sort"
	"time"
)

// Guard reports whether a due entry still applies.
type Guard func() bool

type entry struct {
	id    uint64
	key   string
	due   time.Time
	guard Guard
	fire  func()
}

// Scheduler is not safe for concurrent use; the owning session serializes access.
type Scheduler struct {
	entries []*entry
	nextID  uint64
}

// Handle identifies one scheduled entry.
type Handle struct {
	s  *Scheduler
	id uint64
}

// New creates an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// After schedules fire to run once at now+d. A non-empty key replaces any
// pending entry with the same key, so a key names at most one pending entry.
// A nil guard always passes.
func (s *Scheduler) After(now time.Time, d time.Duration, key string, guard Guard, fire func()) Handle {
	if key != "" {
		s.Cancel(key)
	}
	s.nextID++
	s.entries = append(s.entries, &entry{
		id:    s.nextID,
		key:   key,
		due:   now.Add(d),
		guard: guard,
		fire:  fire,
	})
	return Handle{s: s, id: s.nextID}
}

// Cancel removes the pending entry with the given key.
func (s *Scheduler) Cancel(key string) bool {
	if key == "" {
		return false
	}
	return s.remove(func(e *entry) bool { return e.key == key })
}

// Cancel removes the entry if it is still pending.
func (h Handle) Cancel() bool {
	if h.s == nil {
		return false
	}
	return h.s.remove(func(e *entry) bool { return e.id == h.id })
}

// Pending reports whether an entry with the key is waiting to fire.
func (s *Scheduler) Pending(key string) bool {
	for _, e := range s.entries {
		if e.key == key {
			return true
		}
	}
	return false
}

// Len returns the number of pending entries.
func (s *Scheduler) Len() int {
	return len(s.entries)
}

// Clear drops every pending entry.
func (s *Scheduler) Clear() {
	s.entries = nil
}

// Advance fires every entry due at or before now, oldest deadline first, and
// returns how many callbacks ran. Entries scheduled by a callback wait for
// the next Advance.
func (s *Scheduler) Advance(now time.Time) int {
	var due, rest []*entry
	for _, e := range s.entries {
		if !e.due.After(now) {
			due = append(due, e)
		} else {
			rest = append(rest, e)
		}
	}
	if len(due) == 0 {
		return 0
	}
	s.entries = rest

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].id < due[j].id
		}
		return due[i].due.Before(due[j].due)
	})

	fired := 0
	for _, e := range due {
		if e.guard != nil && !e.guard() {
			continue
		}
		e.fire()
		fired++
	}
	return fired
}

func (s *Scheduler) remove(match func(*entry) bool) bool {
	for i, e := range s.entries {
		if match(e) {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}
