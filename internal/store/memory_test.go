package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JobReach/internal/models"
)

func TestMemoryUpdateStatusRoundTrip(t *testing.T) {
	m := NewMemory()
	id := m.Add(models.Recipient{
		Company:      "Acme",
		ContactEmail: "a@acme.test",
		TargetRole:   "SOC Analyst",
	})

	require.NoError(t, m.UpdateStatus(context.Background(), id, models.StatusInterview))

	all, err := m.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusInterview, all[0].Status)
}

func TestMemoryUpdateStatusNotFound(t *testing.T) {
	m := NewMemory()
	assert.ErrorIs(t, m.UpdateStatus(context.Background(), 42, models.StatusSent), ErrNotFound)
	assert.ErrorIs(t, m.TouchContacted(context.Background(), 42), ErrNotFound)
}

func TestMemoryTouchContacted(t *testing.T) {
	m := NewMemory()
	id := m.Add(models.Recipient{Company: "Acme", ContactEmail: "a@acme.test", TargetRole: "SOC Analyst"})

	require.NoError(t, m.TouchContacted(context.Background(), id))

	all, err := m.ListAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, all[0].LastContactedAt)
	// Status untouched by the timestamp touch.
	assert.Equal(t, models.StatusPending, all[0].Status)
}

func TestMemoryLogsNewestFirst(t *testing.T) {
	m := NewMemory()
	id := m.Add(models.Recipient{Company: "Acme", ContactEmail: "a@acme.test", TargetRole: "SOC Analyst"})

	ctx := context.Background()
	require.NoError(t, m.AppendLog(ctx, id, models.OutcomeSent, ""))
	require.NoError(t, m.AppendLog(ctx, id, models.OutcomeFailed, "timeout"))

	logs, err := m.ListLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.OutcomeFailed, logs[0].Outcome)
	assert.Equal(t, "Acme", logs[0].Company)

	limited, err := m.ListLogs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, models.OutcomeFailed, limited[0].Outcome)
}
