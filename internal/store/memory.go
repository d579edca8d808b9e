package store

import (
	"context"
	"sync"
	"time"

	"JobReach/internal/models"
)

// Memory is an in-process Store. It backs tests and the "memory" backend
// option; nothing survives a restart.
type Memory struct {
	mu         sync.Mutex
	recipients []models.Recipient
	logs       []models.SendAttempt
	executions []models.ExecutionRecord
	nextID     int64
	nextLogID  int64
	nextExecID int64
}

func NewMemory() *Memory {
	return &Memory{nextID: 1, nextLogID: 1, nextExecID: 1}
}

// Add seeds a recipient and returns its assigned id.
func (m *Memory) Add(r models.Recipient) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = m.nextID
	m.nextID++
	if r.Status == "" {
		r.Status = models.StatusPending
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	m.recipients = append(m.recipients, r)
	return r.ID
}

func (m *Memory) ListPending(ctx context.Context) ([]models.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Recipient
	for _, r := range m.recipients {
		if r.Status == models.StatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) ListAll(ctx context.Context) ([]models.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Recipient, len(m.recipients))
	copy(out, m.recipients)
	return out, nil
}

func (m *Memory) TouchContacted(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.recipients {
		if m.recipients[i].ID == id {
			now := time.Now()
			m.recipients[i].LastContactedAt = &now
			m.recipients[i].UpdatedAt = now
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) UpdateStatus(ctx context.Context, id int64, status models.RecipientStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.recipients {
		if m.recipients[i].ID == id {
			m.recipients[i].Status = status
			m.recipients[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) AppendLog(ctx context.Context, recipientID int64, outcome models.AttemptOutcome, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt := models.SendAttempt{
		ID:           m.nextLogID,
		RecipientID:  recipientID,
		SentAt:       time.Now(),
		Outcome:      outcome,
		ErrorMessage: errMsg,
	}
	for _, r := range m.recipients {
		if r.ID == recipientID {
			attempt.Company = r.Company
			attempt.ContactEmail = r.ContactEmail
			attempt.TargetRole = r.TargetRole
			break
		}
	}
	m.nextLogID++
	m.logs = append(m.logs, attempt)
	return nil
}

func (m *Memory) ListLogs(ctx context.Context, limit int) ([]models.SendAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.SendAttempt, 0, limit)
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.logs[i])
	}
	return out, nil
}

func (m *Memory) AppendExecutionRecord(ctx context.Context, rec models.ExecutionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = m.nextExecID
	m.nextExecID++
	if rec.ExecutedAt.IsZero() {
		rec.ExecutedAt = time.Now()
	}
	m.executions = append(m.executions, rec)
	return nil
}

func (m *Memory) ListExecutionRecords(ctx context.Context, limit int) ([]models.ExecutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.ExecutionRecord, 0, limit)
	for i := len(m.executions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.executions[i])
	}
	return out, nil
}
