package account

import (
	"gitlab.com/souqly/auth-backend/internal/domain/event"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
)

const EventStreamName = "events_account"

type AccountRegistered struct {
	event.Header
	event.Otel
	AccountID       ID        `json:"account_id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	Role            role.Role `json:"role"`
	Language        Language  `json:"language"`
	PendingApproval bool      `json:"pending_approval"`
}

func (e *AccountRegistered) GetStreamName() string {
	return EventStreamName
}

type VerificationCardReviewed struct {
	event.Header
	event.Otel
	AccountID ID       `json:"account_id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	Language  Language `json:"language"`
	Approved  bool     `json:"approved"`
	Reason    string   `json:"reason,omitempty"`
}

func (e *VerificationCardReviewed) GetStreamName() string {
	return EventStreamName
}
