package repl

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/notexe/rentdesk/internal/reminder"
	"github.com/notexe/rentdesk/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestREPL(t *testing.T) (*REPL, *reminder.Manager, *bytes.Buffer) {
	t.Helper()
	store, err := reminder.NewStore(filepath.Join(t.TempDir(), "reminders.csv"), nil)
	require.NoError(t, err)
	m, err := reminder.NewManager(store, reminder.WithClock(reminder.ClockFunc(func() time.Time { return now })))
	require.NoError(t, err)

	var out bytes.Buffer
	return &REPL{manager: m, formatter: ui.NewFormatter(false), out: &out}, m, &out
}

func TestCreateCommands(t *testing.T) {
	r, m, out := newTestREPL(t)

	require.NoError(t, r.handleCommand("/return", "17 +2d"))
	require.NoError(t, r.handleCommand("/maintenance", "4 2026-03-20 replace wiper blades"))
	require.NoError(t, r.handleCommand("/payment", "9 +5d $150"))

	all := m.AllReminders()
	require.Len(t, all, 3)

	assert.Equal(t, reminder.KindReturn, all[0].Kind())
	assert.Equal(t, int64(17), all[0].SubjectID)
	assert.True(t, all[0].DueAt.Equal(now.Add(48*time.Hour)))

	assert.Equal(t, reminder.MaintenanceDetails{Description: "replace wiper blades"}, all[1].Details)

	assert.Contains(t, all[2].Message, "$150.00")
	assert.Contains(t, out.String(), "Created reminder 3.")
}

func TestMaintenanceCommandToleratesExtraSpaces(t *testing.T) {
	r, m, _ := newTestREPL(t)

	require.NoError(t, r.handleCommand("/maintenance", "3  +5d   tyres and  brakes"))

	all := m.AllReminders()
	require.Len(t, all, 1)
	assert.Equal(t, int64(3), all[0].SubjectID)
	assert.True(t, all[0].DueAt.Equal(now.AddDate(0, 0, 5)))
	assert.Equal(t, reminder.MaintenanceDetails{Description: "tyres and brakes"}, all[0].Details)
}

func TestCreateCommandErrors(t *testing.T) {
	r, m, _ := newTestREPL(t)

	assert.Error(t, r.handleCommand("/return", "17"))
	assert.Error(t, r.handleCommand("/return", "x +1d"))
	assert.Error(t, r.handleCommand("/return", "-3 +1d"))
	assert.Error(t, r.handleCommand("/payment", "1 +1d lots"))
	assert.Error(t, r.handleCommand("/maintenance", "1 +1d"))
	assert.Error(t, r.handleCommand("/bogus", ""))

	assert.Empty(t, m.AllReminders())
}

func TestTransitionCommands(t *testing.T) {
	r, m, out := newTestREPL(t)

	created, err := m.CreateReturnReminder(1, now.Add(-time.Hour))
	require.NoError(t, err)

	require.NoError(t, r.handleCommand("/sent", "#1"))
	require.NoError(t, r.handleCommand("/done", "1"))
	assert.Contains(t, out.String(), "Reminder 1 marked as completed.")

	err = r.handleCommand("/done", "1")
	assert.ErrorIs(t, err, reminder.ErrInvalidTransition)
	assert.ErrorIs(t, r.handleCommand("/sent", "42"), reminder.ErrNotFound)
	assert.EqualError(t, r.handleCommand("/sent", "abc"), "usage: /sent <id>")

	got, err := m.Reminder(created.ID)
	require.NoError(t, err)
	assert.Equal(t, reminder.StatusCompleted, got.Status)
}

func TestListCommand(t *testing.T) {
	r, m, out := newTestREPL(t)

	_, err := m.CreateReturnReminder(1, now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = m.CreateMaintenanceReminder(2, now.Add(10*time.Hour), "tyres")
	require.NoError(t, err)

	require.NoError(t, r.handleCommand("/list", "overdue"))
	assert.Contains(t, out.String(), "Overdue (1)")

	out.Reset()
	require.NoError(t, r.handleCommand("/list", "soon 12"))
	assert.Contains(t, out.String(), "Due soon (1)")

	out.Reset()
	require.NoError(t, r.handleCommand("/list", "maintenance"))
	assert.Contains(t, out.String(), "Maintenance reminders (1)")

	assert.Error(t, r.handleCommand("/list", "soon never"))
	assert.Error(t, r.handleCommand("/list", "archived"))
}

func TestParseDue(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"+5d", now.AddDate(0, 0, 5)},
		{"+36h", now.Add(36 * time.Hour)},
		{"2026-04-01", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-04-01T09:30", time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)},
		{"2026-04-01T09:30:00+02:00", time.Date(2026, 4, 1, 7, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDue(tt.in, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	for _, bad := range []string{"tomorrow", "+xd", "+-2h", ""} {
		_, err := parseDue(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestParseCommand(t *testing.T) {
	r, _, _ := newTestREPL(t)

	isCmd, cmd, args := r.parseCommand("/LIST  soon 12")
	assert.True(t, isCmd)
	assert.Equal(t, "/list", cmd)
	assert.Equal(t, "soon 12", args)

	isCmd, _, _ = r.parseCommand("hello")
	assert.False(t, isCmd)
}
