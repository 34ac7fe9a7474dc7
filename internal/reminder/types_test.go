package reminder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitionTable(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusSent, true},
		{StatusPending, StatusCompleted, true},
		{StatusSent, StatusCompleted, true},
		{StatusPending, StatusPending, false},
		{StatusSent, StatusSent, false},
		{StatusSent, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusSent, false},
		{StatusCompleted, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPriorityOrder(t *testing.T) {
	assert.Greater(t, PriorityFor(KindPayment), PriorityFor(KindReturn))
	assert.Greater(t, PriorityFor(KindReturn), PriorityFor(KindMaintenance))

	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		parsed, err := ParsePriority(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" payment ")
	require.NoError(t, err)
	assert.Equal(t, KindPayment, k)

	_, err = ParseKind("towing")
	assert.Error(t, err)
}

func TestDetailsCarryKind(t *testing.T) {
	assert.Equal(t, KindReturn, Reminder{Details: ReturnDetails{}}.Kind())
	assert.Equal(t, KindMaintenance, Reminder{Details: MaintenanceDetails{Description: "x"}}.Kind())
	assert.Equal(t, KindPayment, Reminder{Details: PaymentDetails{}}.Kind())
	assert.Equal(t, Kind(""), Reminder{}.Kind())
}
