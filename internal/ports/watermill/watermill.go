package watermill

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5/pgxpool"

	mailevent "gitlab.com/souqly/auth-backend/internal/application/mail/event"
	"gitlab.com/souqly/auth-backend/pkg/watermillx"
)

// MailGroup is the consumer group for every mail handler. All account events share one stream,
// so one group keeps them in order per account.
const MailGroup = "mail"

type Port struct {
	eventGroupProcessor *cqrs.EventGroupProcessor
}

type AppEventHandlers struct {
	Mail *mailevent.MailEventHandler
}

func NewPort(router *message.Router, conn *pgxpool.Pool, wmlogger watermill.LoggerAdapter) (*Port, error) {
	eventGroupProcessor, err := watermillx.NewEventGroupProcessor(router, conn, wmlogger)
	if err != nil {
		return nil, err
	}

	return &Port{eventGroupProcessor: eventGroupProcessor}, nil
}

func NewPortForTest(router *message.Router, conn *pgxpool.Pool, wmlogger watermill.LoggerAdapter) (*Port, error) {
	eventGroupProcessor, err := watermillx.NewEventGroupProcessorForTests(router, conn, wmlogger)
	if err != nil {
		return nil, err
	}

	return &Port{eventGroupProcessor: eventGroupProcessor}, nil
}

// Register adds the handlers to the router. The router itself is started by the caller.
func (p *Port) Register(handlers AppEventHandlers) error {
	if handlers.Mail == nil {
		return fmt.Errorf("mail event handler is required")
	}

	err := p.eventGroupProcessor.AddHandlersGroup(
		MailGroup,
		cqrs.NewGroupEventHandler(handlers.Mail.HandleAccountRegistered),
		cqrs.NewGroupEventHandler(handlers.Mail.HandleVerificationCardReviewed),
	)
	if err != nil {
		return fmt.Errorf("failed to add event handlers: %w", err)
	}

	return nil
}
