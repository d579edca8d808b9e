package models

import "time"

type RecipientStatus string

// Status is an open string set; only StatusPending has send semantics.
// The remaining values are human-driven tracking states.
const (
	StatusPending   RecipientStatus = "Pending"
	StatusSent      RecipientStatus = "Sent"
	StatusRejected  RecipientStatus = "Rejected"
	StatusInterview RecipientStatus = "Interview"
	StatusFollowUp  RecipientStatus = "FollowUp"
)

type Recipient struct {
	ID           int64           `json:"id"`
	Company      string          `json:"company"`
	ContactEmail string          `json:"contact_email"`
	TargetRole   string          `json:"target_role"`
	Status       RecipientStatus `json:"status"`

	LastContactedAt *time.Time `json:"last_contacted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AttemptOutcome string

const (
	OutcomeSent   AttemptOutcome = "sent"
	OutcomeFailed AttemptOutcome = "failed"
)

// SendAttempt is one append-only row of send history for a recipient.
type SendAttempt struct {
	ID           int64          `json:"id"`
	RecipientID  int64          `json:"recipient_id"`
	SentAt       time.Time      `json:"sent_at"`
	Outcome      AttemptOutcome `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`

	// Denormalized recipient fields for display.
	Company      string `json:"company,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	TargetRole   string `json:"target_role,omitempty"`
}
