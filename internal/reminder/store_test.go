package reminder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestStore(t *testing.T) (*Store, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "reminders.csv"), zap.New(core))
	require.NoError(t, err)
	return s, logs
}

// assertSameReminder compares field by field; decimals and times are
// compared by value rather than representation.
func assertSameReminder(t *testing.T, want, got Reminder) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Kind(), got.Kind())
	assert.Equal(t, want.Message, got.Message)
	assert.True(t, want.DueAt.Equal(got.DueAt), "due_at: want %s, got %s", want.DueAt, got.DueAt)
	assert.Equal(t, want.SubjectID, got.SubjectID)
	assert.Equal(t, want.Priority, got.Priority)
	assert.Equal(t, want.Status, got.Status)

	switch w := want.Details.(type) {
	case PaymentDetails:
		g, ok := got.Details.(PaymentDetails)
		require.True(t, ok)
		assert.True(t, w.Amount.Equal(g.Amount), "amount: want %s, got %s", w.Amount, g.Amount)
	default:
		assert.Equal(t, want.Details, got.Details)
	}
}

func TestNewStoreWritesHeader(t *testing.T) {
	s, _ := newTestStore(t)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "id,kind,message,due_at,subject_id,priority,status,detail\n", string(data))

	all, err := s.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStoreRoundTrip(t *testing.T) {
	s, logs := newTestStore(t)
	m, err := NewManager(s, WithClock(fixedClock(testNow)))
	require.NoError(t, err)

	due := time.Date(2026, 3, 15, 9, 30, 45, 0, time.FixedZone("CET", 3600))
	ret, err := m.CreateReturnReminder(5, due)
	require.NoError(t, err)
	maint, err := m.CreateMaintenanceReminder(8, due, `replace "front" pads, check fluid`)
	require.NoError(t, err)
	pay, err := m.CreatePaymentReminder(13, due, decimal.RequireFromString("150.5"))
	require.NoError(t, err)
	pay, err = m.MarkReminderAsSent(pay.ID)
	require.NoError(t, err)

	loaded, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	for i, want := range []Reminder{ret, maint, pay} {
		assertSameReminder(t, want, loaded[i])
	}
	assert.Equal(t, 0, logs.Len())
}

func TestStoreRoundTripMultilineDescription(t *testing.T) {
	s, _ := newTestStore(t)
	m, err := NewManager(s, WithClock(fixedClock(testNow)))
	require.NoError(t, err)

	crlf, err := m.CreateMaintenanceReminder(1, testNow, "drain oil\r\nreplace filter")
	require.NoError(t, err)
	cr, err := m.CreateMaintenanceReminder(2, testNow, "rotate tyres\rcheck pressure")
	require.NoError(t, err)

	assert.Equal(t, MaintenanceDetails{Description: "drain oil\nreplace filter"}, crlf.Details)
	assert.Equal(t, MaintenanceDetails{Description: "rotate tyres\ncheck pressure"}, cr.Details)
	assert.NotContains(t, crlf.Message, "\r")

	loaded, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assertSameReminder(t, crlf, loaded[0])
	assertSameReminder(t, cr, loaded[1])
}

func TestStoreSaveOverwritesInPlace(t *testing.T) {
	s, _ := newTestStore(t)
	m, err := NewManager(s, WithClock(fixedClock(testNow)))
	require.NoError(t, err)

	a, err := m.CreateReturnReminder(1, testNow)
	require.NoError(t, err)
	b, err := m.CreateReturnReminder(2, testNow)
	require.NoError(t, err)
	_, err = m.MarkReminderAsCompleted(a.ID)
	require.NoError(t, err)

	loaded, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, a.ID, loaded[0].ID, "updated row keeps its position")
	assert.Equal(t, StatusCompleted, loaded[0].Status)
	assert.Equal(t, b.ID, loaded[1].ID)
	assert.Equal(t, StatusPending, loaded[1].Status)
}

func TestStoreSaveIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	m, err := NewManager(s, WithClock(fixedClock(testNow)))
	require.NoError(t, err)

	r, err := m.CreateMaintenanceReminder(3, testNow, "inspection")
	require.NoError(t, err)

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.NoError(t, s.Save(r))
	require.NoError(t, s.Save(r))
	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	assert.Equal(t, string(before), string(after))
}

func TestStoreSkipsCorruptRows(t *testing.T) {
	s, logs := newTestStore(t)
	m, err := NewManager(s, WithClock(fixedClock(testNow)))
	require.NoError(t, err)

	good, err := m.CreateReturnReminder(1, testNow)
	require.NoError(t, err)

	f, err := os.OpenFile(s.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(strings.Join([]string{
		"20,RETURN,short row",
		"21,RETURN,msg,not-a-date,1,medium,pending,",
		"22,TOWING,msg,2026-03-10T12:00:00Z,1,medium,pending,",
		"23,PAYMENT,msg,2026-03-10T12:00:00Z,1,high,pending,lots",
		"24,RETURN,msg,2026-03-10T12:00:00Z,1,high,pending,",
		"25,RETURN,msg,2026-03-10T12:00:00Z,1,medium,archived,",
	}, "\n") + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	later, err := m.CreateReturnReminder(2, testNow)
	require.NoError(t, err)

	loaded, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, good.ID, loaded[0].ID)
	assert.Equal(t, later.ID, loaded[1].ID)

	assert.Equal(t, 6, logs.FilterMessage("skipping corrupt reminder row").Len())
}

func TestStoreRewriteKeepsUnparseableRows(t *testing.T) {
	s, _ := newTestStore(t)
	m, err := NewManager(s, WithClock(fixedClock(testNow)))
	require.NoError(t, err)

	r, err := m.CreateReturnReminder(1, testNow)
	require.NoError(t, err)

	f, err := os.OpenFile(s.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("garbage row without enough columns\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = m.MarkReminderAsSent(r.ID)
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "garbage row without enough columns\n")
	assert.Contains(t, string(data), ",sent,")
}

func TestStoreAppendsAfterMissingNewline(t *testing.T) {
	s, _ := newTestStore(t)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	trimmed := strings.TrimSuffix(string(data), "\n")
	require.NoError(t, os.WriteFile(s.Path(), []byte(trimmed), 0o644))

	m, err := NewManager(s, WithClock(fixedClock(testNow)))
	require.NoError(t, err)
	_, err = m.CreateReturnReminder(1, testNow)
	require.NoError(t, err)

	loaded, err := s.LoadAll()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestRestartRestoresManager(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reminders.csv")

	s, err := NewStore(path, nil)
	require.NoError(t, err)
	m, err := NewManager(s, WithClock(fixedClock(testNow)))
	require.NoError(t, err)

	overdue, err := m.CreateReturnReminder(1, testNow.Add(-2*time.Hour))
	require.NoError(t, err)
	soon, err := m.CreatePaymentReminder(2, testNow.Add(3*time.Hour), decimal.NewFromInt(99))
	require.NoError(t, err)
	_, err = m.CreateMaintenanceReminder(3, testNow.Add(200*time.Hour), "service")
	require.NoError(t, err)

	reopened, err := NewStore(path, nil)
	require.NoError(t, err)

	snap, err := reopened.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Overdue(testNow), 1)
	assert.Equal(t, overdue.ID, snap.Overdue(testNow)[0].ID)
	require.Len(t, snap.DueSoon(testNow, 48*time.Hour), 1)
	assert.Equal(t, soon.ID, snap.DueSoon(testNow, 48*time.Hour)[0].ID)
	assert.Len(t, snap.ByKind(KindMaintenance), 1)
	assert.Len(t, snap.Pending(), 3)
	assert.Len(t, snap.Active(), 3)

	fresh, err := NewManager(reopened, WithClock(fixedClock(testNow)))
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.TotalActiveReminders())
	next, err := fresh.CreateReturnReminder(4, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(4), next.ID)
}
