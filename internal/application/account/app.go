package account

import (
	"gitlab.com/souqly/auth-backend/internal/application/account/cmd"
	"gitlab.com/souqly/auth-backend/internal/application/account/query"
)

type App struct {
	CMD   Command
	Query Query
}

type Command struct {
	UpdateNotificationToken *cmd.UpdateNotificationTokenHandler
	SubmitVerificationCard  *cmd.SubmitVerificationCardHandler
	ReviewVerificationCard  *cmd.ReviewVerificationCardHandler
}

type Query struct {
	GetAccount *query.GetAccountHandler
}

type Args struct {
	AccountRepo interface {
		cmd.AccountRepo
		query.AccountGetter
	}
	TokenSealer cmd.TokenSealer
}

func NewApp(args Args) *App {
	return &App{
		CMD: Command{
			UpdateNotificationToken: cmd.NewUpdateNotificationTokenHandler(cmd.UpdateNotificationTokenHandlerArgs{
				AccountRepo: args.AccountRepo,
				TokenSealer: args.TokenSealer,
			}),
			SubmitVerificationCard: cmd.NewSubmitVerificationCardHandler(cmd.SubmitVerificationCardHandlerArgs{
				AccountRepo: args.AccountRepo,
			}),
			ReviewVerificationCard: cmd.NewReviewVerificationCardHandler(cmd.ReviewVerificationCardHandlerArgs{
				AccountRepo: args.AccountRepo,
			}),
		},
		Query: Query{
			GetAccount: query.NewGetAccountHandler(query.GetAccountHandlerArgs{
				AccountGetter: args.AccountRepo,
			}),
		},
	}
}
