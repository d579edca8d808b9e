package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"JobReach/internal/models"
)

const (
	colCompany = "Company"
	colEmail   = "Contact Email"
	colRole    = "Target Role"
	colStatus  = "Status"
)

var canonicalColumns = []string{colCompany, colEmail, colRole, colStatus}

// bom is stripped on read and prepended on write for Excel compatibility.
const bom = "\uFEFF"

// CSV is the file-backed Store. Every operation reads the whole file, mutates
// rows in memory and writes the file back, so the sheet stays hand-editable
// between runs.
//
// The send job never touches the Status column here. Each batch run instead
// gets a fresh history column named "Sent YYYY-MM-DD HH:MM" holding a ✓ or ✗
// per attempted row. Send attempts and execution records are additionally kept
// in memory for the display endpoints; they do not survive a restart.
type CSV struct {
	path string

	mu         sync.Mutex
	logs       []models.SendAttempt
	executions []models.ExecutionRecord
	nextLogID  int64
	nextExecID int64

	now func() time.Time
}

func NewCSV(path string) *CSV {
	return &CSV{path: path, nextLogID: 1, nextExecID: 1, now: time.Now}
}

type csvRow map[string]string

func (c *CSV) load() ([]csvRow, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	content := strings.TrimPrefix(string(raw), bom)

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv %s has no header row", c.path)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]csvRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(csvRow, len(headers))
		empty := true
		for i, h := range headers {
			if i >= len(record) {
				break
			}
			v := strings.TrimSpace(record[i])
			row[h] = v
			if v != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// save writes rows back with canonical columns first and history columns
// sorted chronologically after them. The BOM prefix keeps Excel happy.
func (c *CSV) save(rows []csvRow) error {
	seen := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			seen[k] = true
		}
	}

	var history []string
	for col := range seen {
		canonical := false
		for _, known := range canonicalColumns {
			if col == known {
				canonical = true
				break
			}
		}
		if !canonical {
			history = append(history, col)
		}
	}
	sort.Strings(history)

	var fieldnames []string
	for _, col := range canonicalColumns {
		if seen[col] {
			fieldnames = append(fieldnames, col)
		}
	}
	fieldnames = append(fieldnames, history...)

	var sb strings.Builder
	sb.WriteString(bom)

	w := csv.NewWriter(&sb)
	if err := w.Write(fieldnames); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(fieldnames))
		for i, field := range fieldnames {
			record[i] = row[field]
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if err := os.WriteFile(c.path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func rowToRecipient(id int64, row csvRow) models.Recipient {
	return models.Recipient{
		ID:           id,
		Company:      row[colCompany],
		ContactEmail: row[colEmail],
		TargetRole:   row[colRole],
		Status:       models.RecipientStatus(row[colStatus]),
	}
}

func (c *CSV) ListPending(ctx context.Context) ([]models.Recipient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.load()
	if err != nil {
		return nil, err
	}

	var out []models.Recipient
	for i, row := range rows {
		if models.RecipientStatus(row[colStatus]) == models.StatusPending {
			out = append(out, rowToRecipient(int64(i+1), row))
		}
	}
	return out, nil
}

func (c *CSV) ListAll(ctx context.Context) ([]models.Recipient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.load()
	if err != nil {
		return nil, err
	}

	out := make([]models.Recipient, 0, len(rows))
	for i, row := range rows {
		out = append(out, rowToRecipient(int64(i+1), row))
	}
	return out, nil
}

// TouchContacted is a no-op for the file backend; the history column written
// by AppendLog is the only contact marker the sheet carries.
func (c *CSV) TouchContacted(ctx context.Context, id int64) error {
	return nil
}

func (c *CSV) UpdateStatus(ctx context.Context, id int64, status models.RecipientStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.load()
	if err != nil {
		return err
	}
	if id < 1 || id > int64(len(rows)) {
		return ErrNotFound
	}

	rows[id-1][colStatus] = string(status)
	return c.save(rows)
}

// AppendLog marks the recipient's cell in the current run's history column.
// Appends within the same minute share one column, matching one column per
// send session.
func (c *CSV) AppendLog(ctx context.Context, recipientID int64, outcome models.AttemptOutcome, errMsg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.load()
	if err != nil {
		return err
	}
	if recipientID < 1 || recipientID > int64(len(rows)) {
		return ErrNotFound
	}

	column := "Sent " + c.now().Format("2006-01-02 15:04")

	mark := "✓"
	if outcome == models.OutcomeFailed {
		mark = "✗"
	}
	rows[recipientID-1][column] = mark

	if err := c.save(rows); err != nil {
		return err
	}

	attempt := models.SendAttempt{
		ID:           c.nextLogID,
		RecipientID:  recipientID,
		SentAt:       c.now(),
		Outcome:      outcome,
		ErrorMessage: errMsg,
		Company:      rows[recipientID-1][colCompany],
		ContactEmail: rows[recipientID-1][colEmail],
		TargetRole:   rows[recipientID-1][colRole],
	}
	c.nextLogID++
	c.logs = append(c.logs, attempt)
	return nil
}

func (c *CSV) ListLogs(ctx context.Context, limit int) ([]models.SendAttempt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.SendAttempt, 0, limit)
	for i := len(c.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, c.logs[i])
	}
	return out, nil
}

func (c *CSV) AppendExecutionRecord(ctx context.Context, rec models.ExecutionRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec.ID = c.nextExecID
	c.nextExecID++
	if rec.ExecutedAt.IsZero() {
		rec.ExecutedAt = c.now()
	}
	c.executions = append(c.executions, rec)
	return nil
}

func (c *CSV) ListExecutionRecords(ctx context.Context, limit int) ([]models.ExecutionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.ExecutionRecord, 0, limit)
	for i := len(c.executions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, c.executions[i])
	}
	return out, nil
}
