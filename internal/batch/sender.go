package batch

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"JobReach/internal/email"
	"JobReach/internal/metrics"
	"JobReach/internal/models"
	"JobReach/internal/store"
)

// Runner performs one batch pass: every "Pending" recipient gets one send
// attempt, strictly in the order the store returned them. A failure for one
// recipient never aborts the rest; only store unavailability on the initial
// read fails the whole run.
type Runner struct {
	Store    store.Store
	Notifier email.Notifier
	Limiter  *rate.Limiter
	Log      *zap.Logger
}

// Run executes one batch pass and returns aggregated counts plus the
// human-readable error strings for that run.
func (r *Runner) Run(ctx context.Context) (*models.BatchResult, error) {
	metrics.BatchRuns.Inc()

	pending, err := r.Store.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending recipients: %w", err)
	}

	result := &models.BatchResult{Errors: []string{}}

	if len(pending) == 0 {
		result.Message = `No rows with "Pending" status found`
		r.Log.Info("batch run: nothing to do")
		return result, nil
	}

	for _, recipient := range pending {
		r.process(ctx, recipient, result)
	}

	result.Message = fmt.Sprintf("Processed %d pending emails", len(pending))

	r.Log.Info("batch run complete",
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

// process handles one recipient. Sends are sequential and rate limited; the
// recipient's status field is never advanced here, that stays a manual action.
func (r *Runner) process(ctx context.Context, recipient models.Recipient, result *models.BatchResult) {
	if recipient.Company == "" || recipient.ContactEmail == "" || recipient.TargetRole == "" {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf(
			"Skipping row - missing fields (Company: %s, Email: %s, Role: %s)",
			recipient.Company, recipient.ContactEmail, recipient.TargetRole,
		))
		r.Log.Warn("skipping recipient with missing fields",
			zap.Int64("recipient_id", recipient.ID),
		)
		return
	}

	subject, body, err := email.Render(recipient)
	if err != nil {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf(
			"Failed to send to %s: %v", recipient.ContactEmail, err,
		))
		return
	}

	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Failed to send to %s: %v", recipient.ContactEmail, err,
			))
			return
		}
	}

	if err := r.Notifier.Send(ctx, recipient.ContactEmail, subject, body); err != nil {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf(
			"Failed to send to %s: %v", recipient.ContactEmail, err,
		))

		r.Log.Error("email send failed",
			zap.Int64("recipient_id", recipient.ID),
			zap.String("to", recipient.ContactEmail),
			zap.Error(err),
		)

		if logErr := r.Store.AppendLog(ctx, recipient.ID, models.OutcomeFailed, err.Error()); logErr != nil {
			r.Log.Error("failed to record send attempt",
				zap.Int64("recipient_id", recipient.ID),
				zap.Error(logErr),
			)
		}

		metrics.EmailFailures.Inc()
		return
	}

	result.Sent++

	if err := r.Store.TouchContacted(ctx, recipient.ID); err != nil {
		r.Log.Error("failed to touch last-contacted timestamp",
			zap.Int64("recipient_id", recipient.ID),
			zap.Error(err),
		)
	}

	if err := r.Store.AppendLog(ctx, recipient.ID, models.OutcomeSent, ""); err != nil {
		r.Log.Error("failed to record send attempt",
			zap.Int64("recipient_id", recipient.ID),
			zap.Error(err),
		)
	}

	r.Log.Info("email sent",
		zap.Int64("recipient_id", recipient.ID),
		zap.String("to", recipient.ContactEmail),
	)

	metrics.EmailsSent.Inc()
}
