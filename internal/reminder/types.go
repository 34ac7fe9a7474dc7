package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the closed category of a reminder.
type Kind string

const (
	KindReturn      Kind = "RETURN"
	KindMaintenance Kind = "MAINTENANCE"
	KindPayment     Kind = "PAYMENT"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindReturn, KindMaintenance, KindPayment}

// ParseKind accepts a kind name in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	switch k {
	case KindReturn, KindMaintenance, KindPayment:
		return k, nil
	}
	return "", fmt.Errorf("unknown reminder kind %q (supported: return, maintenance, payment)", s)
}

// Priority orders reminders for display. Higher values sort first.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

// PriorityFor returns the fixed priority tier of a kind.
func PriorityFor(k Kind) Priority {
	switch k {
	case KindPayment:
		return PriorityHigh
	case KindReturn:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// ParsePriority is the inverse of Priority.String.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

// Status is the delivery state of a reminder.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusCompleted Status = "completed"
)

// transitions is the only place that decides which status changes are legal.
var transitions = map[Status][]Status{
	StatusPending: {StatusSent, StatusCompleted},
	StatusSent:    {StatusCompleted},
}

// CanTransitionTo reports whether the status machine allows s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active reports whether the reminder still needs attention.
func (s Status) Active() bool {
	return s != StatusCompleted
}

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusSent, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Details carries the kind-specific context of a reminder. The set of
// implementations is closed to this package.
type Details interface {
	Kind() Kind
	isDetails()
}

// ReturnDetails is the context of a vehicle return reminder. It has no fields.
type ReturnDetails struct{}

// MaintenanceDetails describes the maintenance work that is due.
type MaintenanceDetails struct {
	Description string
}

// PaymentDetails holds the amount that is due.
type PaymentDetails struct {
	Amount decimal.Decimal
}

func (ReturnDetails) Kind() Kind      { return KindReturn }
func (MaintenanceDetails) Kind() Kind { return KindMaintenance }
func (PaymentDetails) Kind() Kind     { return KindPayment }

func (ReturnDetails) isDetails()      {}
func (MaintenanceDetails) isDetails() {}
func (PaymentDetails) isDetails()     {}

// Reminder is one scheduled notification tied to a due date and a subject
// entity (rental, vehicle or payment). Values are copies; the Manager owns the
// canonical record.
type Reminder struct {
	ID        int64
	Details   Details
	Message   string
	DueAt     time.Time
	SubjectID int64
	Priority  Priority
	Status    Status
}

// Kind returns the reminder category, derived from its details.
func (r Reminder) Kind() Kind {
	if r.Details == nil {
		return ""
	}
	return r.Details.Kind()
}

// Overdue reports whether the deadline has passed and the reminder is not completed.
func (r Reminder) Overdue(now time.Time) bool {
	return r.Status.Active() && r.DueAt.Before(now)
}

// DueSoon reports whether a pending reminder falls inside [now, now+window].
func (r Reminder) DueSoon(now time.Time, window time.Duration) bool {
	if r.Status != StatusPending {
		return false
	}
	return !r.DueAt.Before(now) && !r.DueAt.After(now.Add(window))
}

const messageTimeLayout = "2006-01-02 15:04 UTC"

// renderMessage builds the human readable text of a reminder. It is called
// once, at creation.
func renderMessage(d Details, subjectID int64, dueAt time.Time) string {
	due := dueAt.UTC().Format(messageTimeLayout)
	switch v := d.(type) {
	case MaintenanceDetails:
		return fmt.Sprintf("Maintenance due for vehicle #%d: %s", subjectID, v.Description)
	case PaymentDetails:
		return fmt.Sprintf("Payment of $%s due for payment #%d on %s", v.Amount.StringFixed(2), subjectID, due)
	default:
		return fmt.Sprintf("Vehicle return due for rental #%d on %s", subjectID, due)
	}
}
