package reminder

import (
	"fmt"
	"sort"
	"time"
)

// Repository is the durable side of the reminder subsystem.
type Repository interface {
	// Save appends a new reminder or overwrites the one with the same ID.
	Save(r Reminder) error
	// LoadAll returns every stored reminder in insertion order.
	LoadAll() ([]Reminder, error)
	Close() error
}

// Clock supplies the current time for overdue and due-soon checks.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// DefaultDueSoonWindow is used when no window is configured.
const DefaultDueSoonWindow = 48 * time.Hour

// Snapshot is a point-in-time list of reminders with the same filter
// queries the Manager answers.
type Snapshot []Reminder

// LoadSnapshot reloads every reminder from repo.
func LoadSnapshot(repo Repository) (Snapshot, error) {
	all, err := repo.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}
	return Snapshot(all), nil
}

func (s Snapshot) filter(keep func(Reminder) bool) []Reminder {
	out := make([]Reminder, 0, len(s))
	for _, r := range s {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Pending returns reminders that have not been sent or completed.
func (s Snapshot) Pending() []Reminder {
	return s.filter(func(r Reminder) bool { return r.Status == StatusPending })
}

// ByKind returns reminders of one kind.
func (s Snapshot) ByKind(k Kind) []Reminder {
	return s.filter(func(r Reminder) bool { return r.Kind() == k })
}

// Overdue returns active reminders whose due time is before now.
func (s Snapshot) Overdue(now time.Time) []Reminder {
	return s.filter(func(r Reminder) bool { return r.Overdue(now) })
}

// DueSoon returns pending reminders due within [now, now+window].
func (s Snapshot) DueSoon(now time.Time, window time.Duration) []Reminder {
	return s.filter(func(r Reminder) bool { return r.DueSoon(now, window) })
}

// Active returns reminders that are not completed.
func (s Snapshot) Active() []Reminder {
	return s.filter(func(r Reminder) bool { return r.Status.Active() })
}

// Summary counts reminders by status and urgency.
type Summary struct {
	Total     int
	Active    int
	Pending   int
	Sent      int
	Completed int
	Overdue   int
	DueSoon   int
}

// Summarize counts s at the given time.
func (s Snapshot) Summarize(now time.Time, window time.Duration) Summary {
	var sum Summary
	for _, r := range s {
		sum.Total++
		switch r.Status {
		case StatusPending:
			sum.Pending++
		case StatusSent:
			sum.Sent++
		case StatusCompleted:
			sum.Completed++
		}
		if r.Status.Active() {
			sum.Active++
		}
		if r.Overdue(now) {
			sum.Overdue++
		}
		if r.DueSoon(now, window) {
			sum.DueSoon++
		}
	}
	return sum
}

// SortByUrgency orders reminders by priority (highest first), then due time,
// then ID. The input slice is sorted in place.
func SortByUrgency(rs []Reminder) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Priority != rs[j].Priority {
			return rs[i].Priority > rs[j].Priority
		}
		if !rs[i].DueAt.Equal(rs[j].DueAt) {
			return rs[i].DueAt.Before(rs[j].DueAt)
		}
		return rs[i].ID < rs[j].ID
	})
}
