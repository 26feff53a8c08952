package mocks

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"testing"

	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/mail"
)

type MockMailSender struct {
	mu        sync.Mutex
	sentMails []mail.Payload
	err       error
}

func NewMockMailSender() *MockMailSender {
	return &MockMailSender{
		sentMails: make([]mail.Payload, 0),
	}
}

func (m *MockMailSender) SendMail(ctx context.Context, payload mail.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sentMails = append(m.sentMails, payload)
	return nil
}

// FailWith makes every following SendMail call fail with err.
func (m *MockMailSender) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockMailSender) GetSentMails() []mail.Payload {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]mail.Payload{}, m.sentMails...)
}

func (m *MockMailSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sentMails = make([]mail.Payload, 0)
	m.err = nil
}

// LastMailTo returns the most recent mail sent to email, or false.
func (m *MockMailSender) LastMailTo(email string) (mail.Payload, bool) {
	mails := m.GetSentMails()
	for i := len(mails) - 1; i >= 0; i-- {
		if mails[i].To == email {
			return mails[i], true
		}
	}
	return mail.Payload{}, false
}

func (m *MockMailSender) AssertMailSent(t *testing.T, email, subject string) {
	t.Helper()
	for _, mail := range m.GetSentMails() {
		if mail.To == email && strings.Contains(mail.Subject, subject) {
			return
		}
	}
	t.Errorf("expected mail to %s with subject containing %q not found", email, subject)
}

func (m *MockMailSender) AssertNoMailSent(t *testing.T) {
	t.Helper()
	if mails := m.GetSentMails(); len(mails) != 0 {
		t.Errorf("expected no mails, got %d", len(mails))
	}
}

var codePattern = regexp.MustCompile(`\b[0-9]{6}\b`)

// RequireCode pulls the six digit code out of a mail body.
func RequireCode(t *testing.T, payload mail.Payload) string {
	t.Helper()
	code := codePattern.FindString(payload.Body)
	if code == "" {
		t.Fatalf("no code found in mail body %q", payload.Body)
	}
	return code
}
