package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
)

const accountEventsTable = "watermill_" + account.EventStreamName

const (
	AccountRegisteredName        = "account.AccountRegistered"
	VerificationCardReviewedName = "account.VerificationCardReviewed"
)

type Helper struct {
	pool *pgxpool.Pool
}

func NewHelper(pool *pgxpool.Pool) *Helper {
	return &Helper{pool: pool}
}

// WaitForEvent polls the outbox until an event of eventType for email shows up.
func (h *Helper) WaitForEvent(t *testing.T, eventType, email string, timeout time.Duration) {
	t.Helper()

	require.Eventually(t, func() bool {
		return h.countEvents(t, eventType, email) > 0
	}, timeout, 50*time.Millisecond, "timeout waiting for event %s for %s", eventType, email)
}

func (h *Helper) countEvents(t *testing.T, eventType, email string) int {
	t.Helper()

	var count int
	err := h.pool.QueryRow(context.Background(), `
        SELECT COUNT(*) FROM `+accountEventsTable+`
        WHERE metadata->>'name' = $1 AND payload->>'email' = $2`, eventType, email).Scan(&count)
	require.NoError(t, err)

	return count
}

// AssertEvent returns the newest event of eventType for email.
func (h *Helper) AssertEvent(t *testing.T, eventType, email string) *EventAssertion {
	t.Helper()

	h.WaitForEvent(t, eventType, email, 5*time.Second)

	var payload json.RawMessage
	err := h.pool.QueryRow(context.Background(), `
        SELECT payload FROM `+accountEventsTable+`
        WHERE metadata->>'name' = $1 AND payload->>'email' = $2
        ORDER BY "offset" DESC
        LIMIT 1`, eventType, email).Scan(&payload)
	require.NoError(t, err, "event %s not found", eventType)

	return &EventAssertion{t: t, eventType: eventType, payload: payload}
}

func (h *Helper) AssertNoEvent(t *testing.T, eventType, email string) {
	t.Helper()

	count := h.countEvents(t, eventType, email)
	assert.Equal(t, 0, count, "expected no %s events for %s, found %d", eventType, email, count)
}

func (h *Helper) AssertEventCount(t *testing.T, eventType, email string, expected int) {
	t.Helper()

	assert.Equal(t, expected, h.countEvents(t, eventType, email), "unexpected %s event count", eventType)
}

func (h *Helper) AssertAccountRegistered(t *testing.T, email string) *account.AccountRegistered {
	t.Helper()

	var e account.AccountRegistered
	h.AssertEvent(t, AccountRegisteredName, email).Parse(&e)
	return &e
}

func (h *Helper) AssertVerificationCardReviewed(t *testing.T, email string) *account.VerificationCardReviewed {
	t.Helper()

	var e account.VerificationCardReviewed
	h.AssertEvent(t, VerificationCardReviewedName, email).Parse(&e)
	return &e
}

type EventAssertion struct {
	t         *testing.T
	eventType string
	payload   json.RawMessage
}

func (a *EventAssertion) Parse(event any) *EventAssertion {
	a.t.Helper()
	err := json.Unmarshal(a.payload, event)
	require.NoError(a.t, err, "failed to parse %s payload", a.eventType)
	return a
}

func (a *EventAssertion) HasField(field string, expected any) *EventAssertion {
	a.t.Helper()

	var data map[string]any
	err := json.Unmarshal(a.payload, &data)
	require.NoError(a.t, err)

	actual, exists := data[field]
	require.True(a.t, exists, "field %s not found in event", field)
	assert.Equal(a.t, expected, actual, "unexpected value for field %s", field)

	return a
}
