package account

import "time"

type CardStatus string

const (
	CardStatusUnverified CardStatus = "unverified"
	CardStatusSubmitted  CardStatus = "submitted"
	CardStatusVerified   CardStatus = "verified"
	CardStatusRejected   CardStatus = "rejected"
)

func (s CardStatus) String() string {
	return string(s)
}

func (s CardStatus) IsValid() bool {
	switch s {
	case CardStatusUnverified, CardStatusSubmitted, CardStatusVerified, CardStatusRejected:
		return true
	default:
		return false
	}
}

const (
	DefaultIDType   = "national_id"
	DefaultIDNumber = "unknown"
)

// CardSubmission is what a seller hands in. It has no status: a new card always starts as submitted.
type CardSubmission struct {
	IDType      string
	IDNumber    string
	DocumentURL string
	SubmittedAt time.Time
}

// VerificationCard is a seller's identity document and its review state.
type VerificationCard struct {
	IDType          string
	IDNumber        string
	DocumentURL     string
	SubmittedAt     time.Time
	Status          CardStatus
	VerifiedBy      *ID
	VerifiedAt      *time.Time
	RejectionReason string
}

func newSubmittedCard(sub CardSubmission) (*VerificationCard, error) {
	if sub.DocumentURL == "" {
		return nil, ErrMissingDocument
	}
	if sub.IDType == "" {
		sub.IDType = DefaultIDType
	}
	if sub.IDNumber == "" {
		sub.IDNumber = DefaultIDNumber
	}
	return &VerificationCard{
		IDType:      sub.IDType,
		IDNumber:    sub.IDNumber,
		DocumentURL: sub.DocumentURL,
		SubmittedAt: sub.SubmittedAt.UTC(),
		Status:      CardStatusSubmitted,
	}, nil
}

func (c *VerificationCard) approve(adminID ID, now time.Time) error {
	if c.Status != CardStatusSubmitted {
		return ErrCardNotSubmitted
	}
	if adminID.IsZero() {
		return ErrMissingReviewer
	}
	now = now.UTC()
	c.Status = CardStatusVerified
	c.VerifiedBy = &adminID
	c.VerifiedAt = &now
	c.RejectionReason = ""
	return nil
}

func (c *VerificationCard) reject(adminID ID, reason string, now time.Time) error {
	if c.Status != CardStatusSubmitted {
		return ErrCardNotSubmitted
	}
	if adminID.IsZero() {
		return ErrMissingReviewer
	}
	now = now.UTC()
	c.Status = CardStatusRejected
	c.VerifiedBy = &adminID
	c.VerifiedAt = &now
	c.RejectionReason = reason
	return nil
}
