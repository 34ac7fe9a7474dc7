package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Manager is the in-memory registry of reminders for one session. It applies
// the creation and status rules and writes every change through to its
// Repository before committing it in memory.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	repo   Repository
	clock  Clock
	window time.Duration
	logger *zap.Logger
	order  []int64
	byID   map[int64]*Reminder
	nextID int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source used by overdue and due-soon queries.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithDueSoonWindow sets the default window for RemindersDueSoon.
func WithDueSoonWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.window = d
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager loads every reminder from repo and continues the id sequence
// after the highest stored id.
func NewManager(repo Repository, opts ...Option) (*Manager, error) {
	m := &Manager{
		repo:   repo,
		clock:  SystemClock,
		window: DefaultDueSoonWindow,
		logger: zap.NewNop(),
		byID:   make(map[int64]*Reminder),
		nextID: 1,
	}
	for _, opt := range opts {
		opt(m)
	}

	stored, err := repo.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}
	for i := range stored {
		r := stored[i]
		if _, dup := m.byID[r.ID]; dup {
			m.logger.Warn("duplicate reminder id in store, keeping first", zap.Int64("id", r.ID))
			continue
		}
		m.byID[r.ID] = &r
		m.order = append(m.order, r.ID)
		if r.ID >= m.nextID {
			m.nextID = r.ID + 1
		}
	}

	m.logger.Debug("reminders loaded", zap.Int("count", len(m.order)), zap.Int64("next_id", m.nextID))
	return m, nil
}

// DueSoonWindow returns the default window used by RemindersDueSoon.
func (m *Manager) DueSoonWindow() time.Duration {
	return m.window
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.clock.Now()
}

// CreateReturnReminder schedules a vehicle return reminder for a rental.
func (m *Manager) CreateReturnReminder(subjectID int64, dueAt time.Time) (Reminder, error) {
	return m.create(ReturnDetails{}, subjectID, dueAt)
}

// CreateMaintenanceReminder schedules maintenance work for a vehicle.
func (m *Manager) CreateMaintenanceReminder(subjectID int64, dueAt time.Time, description string) (Reminder, error) {
	// encoding/csv reads a quoted \r\n back as \n; store the form that round-trips.
	description = lineEndings.Replace(strings.TrimSpace(description))
	if description == "" {
		return Reminder{}, &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	return m.create(MaintenanceDetails{Description: description}, subjectID, dueAt)
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// CreatePaymentReminder schedules a reminder for an outstanding payment.
func (m *Manager) CreatePaymentReminder(subjectID int64, dueAt time.Time, amount decimal.Decimal) (Reminder, error) {
	if amount.IsNegative() {
		return Reminder{}, &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	return m.create(PaymentDetails{Amount: amount.Round(2)}, subjectID, dueAt)
}

func (m *Manager) create(d Details, subjectID int64, dueAt time.Time) (Reminder, error) {
	if dueAt.IsZero() {
		return Reminder{}, &ValidationError{Field: "due date", Reason: "is required"}
	}
	// RFC3339 only has room for four-digit years.
	if y := dueAt.UTC().Year(); y < 0 || y > 9999 {
		return Reminder{}, &ValidationError{Field: "due date", Reason: fmt.Sprintf("year must be between 0 and 9999, got %d", y)}
	}
	if subjectID < 0 {
		return Reminder{}, &ValidationError{Field: "subject id", Reason: fmt.Sprintf("must not be negative, got %d", subjectID)}
	}

	dueAt = dueAt.UTC().Truncate(time.Second)
	r := Reminder{
		ID:        m.nextID,
		Details:   d,
		Message:   renderMessage(d, subjectID, dueAt),
		DueAt:     dueAt,
		SubjectID: subjectID,
		Priority:  PriorityFor(d.Kind()),
		Status:    StatusPending,
	}
	// Consumed even if the save fails so an id that may have reached the
	// store is never handed out twice.
	m.nextID++

	if err := m.repo.Save(r); err != nil {
		return Reminder{}, fmt.Errorf("failed to save reminder %d: %w", r.ID, err)
	}

	stored := r
	m.byID[r.ID] = &stored
	m.order = append(m.order, r.ID)

	m.logger.Debug("reminder created",
		zap.Int64("id", r.ID),
		zap.String("kind", string(r.Kind())),
		zap.Int64("subject_id", r.SubjectID),
		zap.Time("due_at", r.DueAt))
	return r, nil
}

// Reminder returns the reminder with the given id.
func (m *Manager) Reminder(id int64) (Reminder, error) {
	r, ok := m.byID[id]
	if !ok {
		return Reminder{}, &NotFoundError{ID: id}
	}
	return *r, nil
}

// AllReminders returns every reminder in insertion order.
func (m *Manager) AllReminders() []Reminder {
	return m.snapshot()
}

// PendingReminders returns reminders still in the pending state.
func (m *Manager) PendingReminders() []Reminder {
	return m.snapshot().Pending()
}

// RemindersByKind returns reminders of one kind.
func (m *Manager) RemindersByKind(k Kind) []Reminder {
	return m.snapshot().ByKind(k)
}

// OverdueReminders returns reminders that are past due and not completed.
func (m *Manager) OverdueReminders() []Reminder {
	return m.snapshot().Overdue(m.clock.Now())
}

// RemindersDueSoon returns pending reminders due within window from now.
// A non-positive window uses the manager's default.
func (m *Manager) RemindersDueSoon(window time.Duration) []Reminder {
	if window <= 0 {
		window = m.window
	}
	return m.snapshot().DueSoon(m.clock.Now(), window)
}

// TotalActiveReminders counts reminders that are not completed.
func (m *Manager) TotalActiveReminders() int {
	n := 0
	for _, id := range m.order {
		if m.byID[id].Status.Active() {
			n++
		}
	}
	return n
}

// Summary counts reminders by status and urgency using the default window.
func (m *Manager) Summary() Summary {
	return m.snapshot().Summarize(m.clock.Now(), m.window)
}

// MarkReminderAsSent records that the reminder has been delivered.
func (m *Manager) MarkReminderAsSent(id int64) (Reminder, error) {
	return m.transition(id, StatusSent)
}

// MarkReminderAsCompleted closes the reminder.
func (m *Manager) MarkReminderAsCompleted(id int64) (Reminder, error) {
	return m.transition(id, StatusCompleted)
}

func (m *Manager) transition(id int64, next Status) (Reminder, error) {
	cur, ok := m.byID[id]
	if !ok {
		return Reminder{}, &NotFoundError{ID: id}
	}
	if !cur.Status.CanTransitionTo(next) {
		return Reminder{}, &InvalidTransitionError{ID: id, From: cur.Status, To: next}
	}

	updated := *cur
	updated.Status = next
	if err := m.repo.Save(updated); err != nil {
		return Reminder{}, fmt.Errorf("failed to save reminder %d: %w", id, err)
	}
	*cur = updated

	m.logger.Debug("reminder status changed",
		zap.Int64("id", id),
		zap.String("status", string(next)))
	return updated, nil
}

func (m *Manager) snapshot() Snapshot {
	out := make(Snapshot, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.byID[id])
	}
	return out
}
