package mail

import (
	mailevent "gitlab.com/souqly/auth-backend/internal/application/mail/event"
)

type App struct {
	Event *mailevent.MailEventHandler
}

type Args struct {
	Mailsender mailevent.MailSender
}

func NewApp(args Args) *App {
	return &App{
		Event: mailevent.NewMailEventHandler(mailevent.MailEventHandlerArgs{
			Mailsender: args.Mailsender,
		}),
	}
}
