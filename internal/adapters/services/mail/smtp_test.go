package mail

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/mail"
)

type fakeDialer struct {
	sent  []*gomail.Message
	err   error
	block chan struct{}
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.block != nil {
		<-d.block
	}
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func newTestSender(d dialer) *SMTPSender {
	s := NewSMTPSender(SMTPArgs{Host: "localhost", Port: 1025, Username: "noreply@souqly.test"})
	s.dialer = d
	return s
}

func TestSMTPSender_SendMail(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	s := newTestSender(d)

	err := s.SendMail(t.Context(), mail.Payload{
		To:      "buyer@example.com",
		Subject: "Email Verification Code",
		Body:    "Your verification code is 123456",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"noreply@souqly.test"}, m.GetHeader("From"))
	assert.Equal(t, []string{"buyer@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Email Verification Code"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "123456")
}

func TestSMTPSender_SendMail_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty recipient", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{}
		err := newTestSender(d).SendMail(t.Context(), mail.Payload{Subject: "x"})
		assert.ErrorIs(t, err, ErrMissingRecipient)
		assert.Empty(t, d.sent)
	})

	t.Run("dial failure", func(t *testing.T) {
		t.Parallel()
		dialErr := errors.New("connection refused")
		err := newTestSender(&fakeDialer{err: dialErr}).SendMail(t.Context(), mail.Payload{To: "a@b.com"})
		assert.ErrorIs(t, err, dialErr)
	})

	t.Run("context done before server answers", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{block: make(chan struct{})}
		t.Cleanup(func() { close(d.block) })

		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()
		err := newTestSender(d).SendMail(ctx, mail.Payload{To: "a@b.com"})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNewSMTPSender_FromDefaultsToUsername(t *testing.T) {
	t.Parallel()

	s := NewSMTPSender(SMTPArgs{Username: "user@smtp.test", From: ""})
	assert.Equal(t, "user@smtp.test", s.from)

	s = NewSMTPSender(SMTPArgs{Username: "user@smtp.test", From: "Souqly <noreply@souqly.test>"})
	assert.Equal(t, "Souqly <noreply@souqly.test>", s.from)
}

func TestLogSender_SendMail(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, s.SendMail(t.Context(), mail.Payload{
		To:      "seller@example.com",
		Subject: "Password Reset Code",
		Body:    "code 654321",
	}))
	out := buf.String()
	assert.True(t, strings.Contains(out, "seller@example.com"))
	assert.Contains(t, out, "654321")

	assert.ErrorIs(t, s.SendMail(t.Context(), mail.Payload{}), ErrMissingRecipient)
}
