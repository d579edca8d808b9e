package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"JobReach/internal/models"
	"JobReach/internal/store"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeNotifier struct {
	sent    []sentMail
	failFor map[string]error
}

func (f *fakeNotifier) Send(ctx context.Context, to, subject, body string) error {
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func newRunner(t *testing.T, st store.Store, n *fakeNotifier) *Runner {
	t.Helper()
	return &Runner{
		Store:    st,
		Notifier: n,
		Log:      zap.NewNop(),
	}
}

func seed(m *store.Memory, company, mail, role string, status models.RecipientStatus) int64 {
	return m.Add(models.Recipient{
		Company:      company,
		ContactEmail: mail,
		TargetRole:   role,
		Status:       status,
	})
}

func TestRunAllValid(t *testing.T) {
	mem := store.NewMemory()
	seed(mem, "Acme", "a@acme.test", "SOC Analyst", models.StatusPending)
	seed(mem, "Globex", "b@globex.test", "Security Engineer", models.StatusPending)
	seed(mem, "Initech", "c@initech.test", "IAM Engineer", models.StatusPending)

	notifier := &fakeNotifier{}
	result, err := newRunner(t, mem, notifier).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Sent)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)
	assert.Len(t, notifier.sent, 3)
}

func TestRunMissingFields(t *testing.T) {
	mem := store.NewMemory()
	seed(mem, "Acme", "a@acme.test", "SOC Analyst", models.StatusPending)
	id := seed(mem, "Globex", "", "Security Engineer", models.StatusPending)

	notifier := &fakeNotifier{}
	result, err := newRunner(t, mem, notifier).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Skipping row - missing fields")

	// The invalid row got no send attempt and kept its status.
	assert.Len(t, notifier.sent, 1)
	all, err := mem.ListAll(context.Background())
	require.NoError(t, err)
	for _, r := range all {
		if r.ID == id {
			assert.Equal(t, models.StatusPending, r.Status)
			assert.Nil(t, r.LastContactedAt)
		}
	}
}

func TestRunNoPending(t *testing.T) {
	mem := store.NewMemory()
	seed(mem, "Acme", "a@acme.test", "SOC Analyst", models.StatusInterview)

	notifier := &fakeNotifier{}
	result, err := newRunner(t, mem, notifier).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 0, result.Failed)
	assert.Contains(t, result.Message, "No rows")
	assert.Empty(t, notifier.sent)
}

func TestRunPartialFailure(t *testing.T) {
	mem := store.NewMemory()
	seed(mem, "Acme", "a@acme.test", "SOC Analyst", models.StatusPending)
	seed(mem, "Globex", "b@globex.test", "Security Engineer", models.StatusPending)
	seed(mem, "Initech", "c@initech.test", "IAM Engineer", models.StatusPending)

	notifier := &fakeNotifier{
		failFor: map[string]error{"b@globex.test": errors.New("mailbox unavailable")},
	}
	result, err := newRunner(t, mem, notifier).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Failed to send to b@globex.test")

	// The failure did not abort the remaining recipients.
	assert.Len(t, notifier.sent, 2)
}

func TestRunDoesNotTouchNonPending(t *testing.T) {
	mem := store.NewMemory()
	seed(mem, "Acme", "a@acme.test", "SOC Analyst", models.StatusInterview)
	seed(mem, "Globex", "b@globex.test", "Security Engineer", models.StatusRejected)

	notifier := &fakeNotifier{}
	_, err := newRunner(t, mem, notifier).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, notifier.sent)

	all, err := mem.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, all[0].Status)
	assert.Equal(t, models.StatusRejected, all[1].Status)
	assert.Nil(t, all[0].LastContactedAt)
	assert.Nil(t, all[1].LastContactedAt)
}

func TestRunStatusNotAdvancedOnSuccess(t *testing.T) {
	mem := store.NewMemory()
	seed(mem, "Acme", "a@acme.test", "SOC Analyst", models.StatusPending)

	notifier := &fakeNotifier{}
	result, err := newRunner(t, mem, notifier).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Sent)

	all, err := mem.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, all[0].Status)
	assert.NotNil(t, all[0].LastContactedAt)
}

func TestRunSequentialOrdering(t *testing.T) {
	mem := store.NewMemory()
	ids := []int64{
		seed(mem, "Acme", "a@acme.test", "SOC Analyst", models.StatusPending),
		seed(mem, "Globex", "b@globex.test", "Security Engineer", models.StatusPending),
		seed(mem, "Initech", "c@initech.test", "IAM Engineer", models.StatusPending),
	}

	notifier := &fakeNotifier{}
	_, err := newRunner(t, mem, notifier).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, notifier.sent, 3)
	assert.Equal(t, "a@acme.test", notifier.sent[0].To)
	assert.Equal(t, "b@globex.test", notifier.sent[1].To)
	assert.Equal(t, "c@initech.test", notifier.sent[2].To)

	// Attempts were logged in read order.
	logs, err := mem.ListLogs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	for i, id := range ids {
		assert.Equal(t, id, logs[len(logs)-1-i].RecipientID)
	}
}

func TestRunFailedAttemptRecorded(t *testing.T) {
	mem := store.NewMemory()
	seed(mem, "Acme", "a@acme.test", "SOC Analyst", models.StatusPending)

	notifier := &fakeNotifier{
		failFor: map[string]error{"a@acme.test": errors.New("connection refused")},
	}
	result, err := newRunner(t, mem, notifier).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)

	logs, err := mem.ListLogs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.OutcomeFailed, logs[0].Outcome)
	assert.Contains(t, logs[0].ErrorMessage, "connection refused")

	// A failed attempt never mutates the status.
	all, err := mem.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, all[0].Status)
}

type failingStore struct {
	store.Store
}

func (f *failingStore) ListPending(ctx context.Context) ([]models.Recipient, error) {
	return nil, errors.New("store unavailable")
}

func TestRunStoreUnavailable(t *testing.T) {
	notifier := &fakeNotifier{}
	runner := newRunner(t, &failingStore{Store: store.NewMemory()}, notifier)

	_, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")
	assert.Empty(t, notifier.sent)
}
