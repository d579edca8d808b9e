package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"JobReach/internal/models"
)

// Postgres is the table-backed Store.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres connects and pings the database, retrying transient dial
// failures with exponential backoff.
func NewPostgres(ctx context.Context, conn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	ping := func() error {
		return pool.Ping(ctx)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(ping, backoff.WithContext(b, ctx)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Postgres{Pool: pool}, nil
}

func (s *Postgres) Close() {
	s.Pool.Close()
}

// EnsureSchema creates the recipients, email_logs and cron_logs tables when
// they do not exist yet.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS recipients (
			id SERIAL PRIMARY KEY,
			company VARCHAR(255) NOT NULL,
			contact_email VARCHAR(255) NOT NULL,
			target_role VARCHAR(255) NOT NULL,
			status VARCHAR(50) DEFAULT 'Pending',
			last_contacted_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS email_logs (
			id SERIAL PRIMARY KEY,
			recipient_id INTEGER REFERENCES recipients(id) ON DELETE CASCADE,
			sent_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			status VARCHAR(50) NOT NULL,
			error_message TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS cron_logs (
			id SERIAL PRIMARY KEY,
			executed_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			status VARCHAR(50) NOT NULL,
			emails_sent INTEGER DEFAULT 0,
			emails_failed INTEGER DEFAULT 0,
			error_message TEXT,
			execution_time_ms BIGINT,
			cron_mode VARCHAR(20)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SeedFromCSV imports recipients from a CSV sheet when the table is empty.
// Rows without a company or email are skipped.
func (s *Postgres) SeedFromCSV(ctx context.Context, path string) (int, error) {
	var count int
	if err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM recipients`).Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	rows, err := NewCSV(path).load()
	if err != nil {
		return 0, err
	}

	seeded := 0
	for _, row := range rows {
		company := row[colCompany]
		email := row[colEmail]
		if company == "" || email == "" {
			continue
		}
		status := row[colStatus]
		if status == "" {
			status = string(models.StatusPending)
		}

		_, err := s.Pool.Exec(ctx,
			`INSERT INTO recipients (company, contact_email, target_role, status)
			 VALUES ($1, $2, $3, $4)`,
			company, email, row[colRole], status,
		)
		if err != nil {
			return seeded, fmt.Errorf("seed recipient %s: %w", email, err)
		}
		seeded++
	}
	return seeded, nil
}

func (s *Postgres) ListPending(ctx context.Context) ([]models.Recipient, error) {
	return s.list(ctx,
		`SELECT id, company, contact_email, target_role, status, last_contacted_at, created_at, updated_at
		 FROM recipients
		 WHERE status = $1
		 ORDER BY id`,
		string(models.StatusPending),
	)
}

func (s *Postgres) ListAll(ctx context.Context) ([]models.Recipient, error) {
	return s.list(ctx,
		`SELECT id, company, contact_email, target_role, status, last_contacted_at, created_at, updated_at
		 FROM recipients
		 ORDER BY id`,
	)
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]models.Recipient, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Recipient
	for rows.Next() {
		var r models.Recipient
		if err := rows.Scan(
			&r.ID, &r.Company, &r.ContactEmail, &r.TargetRole, &r.Status,
			&r.LastContactedAt, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Postgres) TouchContacted(ctx context.Context, id int64) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE recipients
		 SET last_contacted_at = NOW(),
		     updated_at = NOW()
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) UpdateStatus(ctx context.Context, id int64, status models.RecipientStatus) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE recipients
		 SET status = $1,
		     updated_at = NOW()
		 WHERE id = $2`,
		string(status),
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) AppendLog(ctx context.Context, recipientID int64, outcome models.AttemptOutcome, errMsg string) error {
	var detail *string
	if errMsg != "" {
		detail = &errMsg
	}

	_, err := s.Pool.Exec(ctx,
		`INSERT INTO email_logs (recipient_id, sent_at, status, error_message)
		 VALUES ($1, NOW(), $2, $3)`,
		recipientID,
		string(outcome),
		detail,
	)
	return err
}

func (s *Postgres) ListLogs(ctx context.Context, limit int) ([]models.SendAttempt, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT l.id, l.recipient_id, l.sent_at, l.status, l.error_message,
		        r.company, r.contact_email, r.target_role
		 FROM email_logs l
		 JOIN recipients r ON l.recipient_id = r.id
		 ORDER BY l.sent_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SendAttempt
	for rows.Next() {
		var a models.SendAttempt
		var detail *string
		if err := rows.Scan(
			&a.ID, &a.RecipientID, &a.SentAt, &a.Outcome, &detail,
			&a.Company, &a.ContactEmail, &a.TargetRole,
		); err != nil {
			return nil, err
		}
		if detail != nil {
			a.ErrorMessage = *detail
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Postgres) AppendExecutionRecord(ctx context.Context, rec models.ExecutionRecord) error {
	var detail *string
	if rec.ErrorMessage != "" {
		msg := rec.ErrorMessage
		detail = &msg
	}

	_, err := s.Pool.Exec(ctx,
		`INSERT INTO cron_logs (executed_at, status, emails_sent, emails_failed, error_message, execution_time_ms, cron_mode)
		 VALUES (CURRENT_TIMESTAMP, $1, $2, $3, $4, $5, $6)`,
		string(rec.Status),
		rec.EmailsSent,
		rec.EmailsFailed,
		detail,
		rec.DurationMS,
		string(rec.Mode),
	)
	return err
}

func (s *Postgres) ListExecutionRecords(ctx context.Context, limit int) ([]models.ExecutionRecord, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, executed_at, status, emails_sent, emails_failed, error_message, execution_time_ms, cron_mode
		 FROM cron_logs
		 ORDER BY executed_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ExecutionRecord
	for rows.Next() {
		var rec models.ExecutionRecord
		var detail *string
		var duration *int64
		if err := rows.Scan(
			&rec.ID, &rec.ExecutedAt, &rec.Status, &rec.EmailsSent,
			&rec.EmailsFailed, &detail, &duration, &rec.Mode,
		); err != nil {
			return nil, err
		}
		if detail != nil {
			rec.ErrorMessage = *detail
		}
		if duration != nil {
			rec.DurationMS = *duration
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
