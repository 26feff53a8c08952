package registration

import (
	"time"

	"gitlab.com/souqly/auth-backend/internal/application/registration/cmd"
)

type App struct {
	CMD Command
}

type Command struct {
	RequestEmailVerification *cmd.RequestEmailVerificationHandler
	ConfirmEmailVerification *cmd.ConfirmEmailVerificationHandler
}

type Args struct {
	VerificationRepo cmd.VerificationRepo
	AccountRepo      cmd.AccountRepo
	MailSender       cmd.MailSender
	SessionIssuer    cmd.SessionIssuer
	MailTimeout      time.Duration
}

func NewApp(args Args) *App {
	return &App{
		CMD: Command{
			RequestEmailVerification: cmd.NewRequestEmailVerificationHandler(cmd.RequestEmailVerificationHandlerArgs{
				VerificationRepo: args.VerificationRepo,
				AccountRepo:      args.AccountRepo,
				MailSender:       args.MailSender,
				MailTimeout:      args.MailTimeout,
			}),
			ConfirmEmailVerification: cmd.NewConfirmEmailVerificationHandler(cmd.ConfirmEmailVerificationHandlerArgs{
				VerificationRepo: args.VerificationRepo,
				AccountRepo:      args.AccountRepo,
				SessionIssuer:    args.SessionIssuer,
			}),
		},
	}
}
