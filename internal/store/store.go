package store

import (
	"context"
	"errors"

	"JobReach/internal/models"
)

// ErrNotFound is returned when a recipient id does not exist.
var ErrNotFound = errors.New("recipient not found")

// Store holds recipient records and their send history. The batch sender and
// the scheduler are written against this interface only; the postgres, csv and
// memory backends are interchangeable.
type Store interface {
	// ListPending returns recipients whose status is "Pending", in stable order.
	ListPending(ctx context.Context) ([]models.Recipient, error)

	// ListAll returns every recipient for display.
	ListAll(ctx context.Context) ([]models.Recipient, error)

	// TouchContacted sets the recipient's last-contacted timestamp. It never
	// changes the status field.
	TouchContacted(ctx context.Context, id int64) error

	// UpdateStatus is the human-driven status change. Returns ErrNotFound when
	// the id does not exist.
	UpdateStatus(ctx context.Context, id int64, status models.RecipientStatus) error

	// AppendLog records one send attempt. Append-only.
	AppendLog(ctx context.Context, recipientID int64, outcome models.AttemptOutcome, errMsg string) error

	// ListLogs returns recent send attempts, newest first.
	ListLogs(ctx context.Context, limit int) ([]models.SendAttempt, error)

	// AppendExecutionRecord records one scheduler run. Append-only.
	AppendExecutionRecord(ctx context.Context, rec models.ExecutionRecord) error

	// ListExecutionRecords returns recent scheduler runs, newest first.
	ListExecutionRecords(ctx context.Context, limit int) ([]models.ExecutionRecord, error)
}
