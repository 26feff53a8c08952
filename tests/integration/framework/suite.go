package framework

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	authbackend "gitlab.com/souqly/auth-backend"
	postgresrepo "gitlab.com/souqly/auth-backend/internal/adapters/repos/postgres"
	"gitlab.com/souqly/auth-backend/internal/adapters/services/s3"
	accountapp "gitlab.com/souqly/auth-backend/internal/application/account"
	authapp "gitlab.com/souqly/auth-backend/internal/application/auth"
	mailapp "gitlab.com/souqly/auth-backend/internal/application/mail"
	"gitlab.com/souqly/auth-backend/internal/application/passwordreset"
	"gitlab.com/souqly/auth-backend/internal/application/registration"
	"gitlab.com/souqly/auth-backend/internal/domain/account"
	httpport "gitlab.com/souqly/auth-backend/internal/ports/http"
	watermillport "gitlab.com/souqly/auth-backend/internal/ports/watermill"
	"gitlab.com/souqly/auth-backend/pkg/cryptox"
	"gitlab.com/souqly/auth-backend/pkg/env"
	"gitlab.com/souqly/auth-backend/pkg/httpx"
	pgpkg "gitlab.com/souqly/auth-backend/pkg/postgres"
	"gitlab.com/souqly/auth-backend/pkg/watermillx"
	"gitlab.com/souqly/auth-backend/tests/integration/builders"
	"gitlab.com/souqly/auth-backend/tests/integration/fixtures"
	dbhelper "gitlab.com/souqly/auth-backend/tests/integration/framework/db"
	eventhelper "gitlab.com/souqly/auth-backend/tests/integration/framework/event"
	httphelper "gitlab.com/souqly/auth-backend/tests/integration/framework/http"
	s3helper "gitlab.com/souqly/auth-backend/tests/integration/framework/s3"
	"gitlab.com/souqly/auth-backend/tests/mocks"
)

const (
	testBucket = "souqly-test"

	// EventTimeout bounds how long a test waits for the mail consumer.
	EventTimeout = 10 * time.Second
	EventTick    = 50 * time.Millisecond
)

// IntegrationTestSuite runs the whole HTTP surface against real postgres and minio containers.
type IntegrationTestSuite struct {
	suite.Suite

	pgContainer    *postgres.PostgresContainer
	minioContainer *minio.MinioContainer
	pool           *pgxpool.Pool
	router         *message.Router
	cancelRouter   context.CancelFunc

	httpHandler chi.Router
	Sessions    *authapp.SessionIssuer
	Sealer      *cryptox.Sealer
	MailSender  *mocks.MockMailSender

	HTTP    *httphelper.Helper
	DB      *dbhelper.Helper
	Event   *eventhelper.Helper
	S3      *s3helper.Helper
	Builder *builders.Factory
}

func (s *IntegrationTestSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("integration tests need docker, skipped in -short mode")
	}
	env.SetMode(env.Test)

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("souqly_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pool, err = pgxpool.New(ctx, connStr)
	s.Require().NoError(err)

	err = pgpkg.Migrate(strings.Replace(connStr, "postgres://", "pgx://", 1), authbackend.Migrations)
	s.Require().NoError(err)

	minioContainer, err := minio.Run(ctx, "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		minio.WithUsername("minioadmin"),
		minio.WithPassword("minioadmin"),
	)
	s.Require().NoError(err)
	s.minioContainer = minioContainer

	minioAddr, err := minioContainer.ConnectionString(ctx)
	s.Require().NoError(err)

	s3Client, err := s3.NewClient(ctx, s3.ClientArgs{
		Endpoint:  "http://" + minioAddr,
		AccessKey: minioContainer.Username,
		SecretKey: minioContainer.Password,
		Bucket:    testBucket,
		Region:    "us-east-1",
	})
	s.Require().NoError(err)
	s.Require().NoError(s3Client.CreateBucket(ctx))

	s.buildApp(ctx, s3Client)
}

func (s *IntegrationTestSuite) buildApp(ctx context.Context, s3Client *s3.Client) {
	accountRepo := postgresrepo.NewAccountRepo(s.pool, nil, nil)
	verificationRepo := postgresrepo.NewVerificationRepo(s.pool, nil, nil)

	var err error
	s.Sessions, err = authapp.NewSessionIssuer(authapp.SessionIssuerArgs{SecretKey: fixtures.AccessTokenSecretKey})
	s.Require().NoError(err)
	s.Sealer, err = cryptox.NewSealer(fixtures.NotificationTokenKey)
	s.Require().NoError(err)
	s.MailSender = mocks.NewMockMailSender()

	registrationApp := registration.NewApp(registration.Args{
		VerificationRepo: verificationRepo,
		AccountRepo:      accountRepo,
		MailSender:       s.MailSender,
		SessionIssuer:    s.Sessions,
	})
	passwordResetApp := passwordreset.NewApp(passwordreset.Args{
		VerificationRepo: verificationRepo,
		AccountRepo:      accountRepo,
		MailSender:       s.MailSender,
		SessionIssuer:    s.Sessions,
	})
	accountApp := accountapp.NewApp(accountapp.Args{
		AccountRepo: accountRepo,
		TokenSealer: s.Sealer,
	})
	authApp := authapp.NewApp(authapp.Args{
		AccountGetter: accountRepo,
		SessionIssuer: s.Sessions,
	})
	mailApp := mailapp.NewApp(mailapp.Args{Mailsender: s.MailSender})

	wlogger := watermillx.NewOTelFilteredSlogLogger(slog.Default(), slog.LevelWarn)
	s.Require().NoError(watermillx.InitializeEventSchema(ctx, s.pool, wlogger))

	s.router, err = message.NewRouter(message.RouterConfig{}, wlogger)
	s.Require().NoError(err)
	wmport, err := watermillport.NewPortForTest(s.router, s.pool, wlogger)
	s.Require().NoError(err)
	s.Require().NoError(wmport.Register(watermillport.AppEventHandlers{Mail: mailApp.Event}))

	routerCtx, cancel := context.WithCancel(ctx)
	s.cancelRouter = cancel
	go func() {
		_ = s.router.Run(routerCtx)
	}()
	select {
	case <-s.router.Running():
	case <-time.After(10 * time.Second):
		s.Require().Fail("watermill router did not start")
	}

	errhandler, err := httpx.NewErrorHandler()
	s.Require().NoError(err)

	documents := s3.NewDocumentStore(s3.DocumentStoreArgs{Client: s3Client})

	s.httpHandler = chi.NewRouter()
	httpport.NewPort(httpport.Args{
		AuthApp:       authApp,
		Registration:  registrationApp,
		PasswordReset: passwordResetApp,
		AccountApp:    accountApp,
		Documents:     documents,
		TokenParser:   s.Sessions,
		Errhandler:    errhandler,
	}).Route(s.httpHandler)

	s.HTTP = httphelper.NewHelper(s.httpHandler)
	s.DB = dbhelper.NewHelper(dbhelper.Args{
		Pool:         s.pool,
		Account:      accountRepo,
		Verification: verificationRepo,
	})
	s.Event = eventhelper.NewHelper(s.pool)
	s.S3 = s3helper.NewHelper(s3Client)
	s.Builder = builders.NewFactory()
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.cancelRouter != nil {
		s.cancelRouter()
	}
	if s.router != nil {
		_ = s.router.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.minioContainer != nil {
		s.NoError(testcontainers.TerminateContainer(s.minioContainer))
	}
	if s.pgContainer != nil {
		s.NoError(testcontainers.TerminateContainer(s.pgContainer))
	}
}

func (s *IntegrationTestSuite) SetupTest() {
	s.DB.TruncateAll(s.T())
	s.MailSender.Reset()
}

// AccessToken issues a bearer token the same way login does.
func (s *IntegrationTestSuite) AccessToken(a *account.Account) string {
	s.T().Helper()
	token, err := s.Sessions.Issue(a)
	s.Require().NoError(err)
	return token
}

// RequireMailEventually waits for the event consumer to mail email with subject.
func (s *IntegrationTestSuite) RequireMailEventually(t *testing.T, email, subject string) {
	t.Helper()

	require.Eventually(t, func() bool {
		for _, m := range s.MailSender.GetSentMails() {
			if m.To == email && m.Subject == subject {
				return true
			}
		}
		return false
	}, EventTimeout, EventTick, "mail %q to %s not sent", subject, email)
}
