package passwordreset

import (
	"time"

	"gitlab.com/souqly/auth-backend/internal/application/passwordreset/cmd"
)

type App struct {
	CMD Command
}

type Command struct {
	Request     *cmd.RequestPasswordResetHandler
	ConfirmCode *cmd.ConfirmPasswordResetCodeHandler
	Complete    *cmd.CompletePasswordResetHandler
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
			Request: cmd.NewRequestPasswordResetHandler(cmd.RequestPasswordResetHandlerArgs{
				VerificationRepo: args.VerificationRepo,
				AccountRepo:      args.AccountRepo,
				MailSender:       args.MailSender,
				MailTimeout:      args.MailTimeout,
			}),
			ConfirmCode: cmd.NewConfirmPasswordResetCodeHandler(cmd.ConfirmPasswordResetCodeHandlerArgs{
				VerificationRepo: args.VerificationRepo,
			}),
			Complete: cmd.NewCompletePasswordResetHandler(cmd.CompletePasswordResetHandlerArgs{
				VerificationRepo: args.VerificationRepo,
				AccountRepo:      args.AccountRepo,
				SessionIssuer:    args.SessionIssuer,
			}),
		},
	}
}
