package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	authbackend "gitlab.com/souqly/auth-backend"
	"gitlab.com/souqly/auth-backend/internal/adapters/repos/postgres"
	mailsvc "gitlab.com/souqly/auth-backend/internal/adapters/services/mail"
	"gitlab.com/souqly/auth-backend/internal/adapters/services/s3"
	accountapp "gitlab.com/souqly/auth-backend/internal/application/account"
	authapp "gitlab.com/souqly/auth-backend/internal/application/auth"
	mailapp "gitlab.com/souqly/auth-backend/internal/application/mail"
	mailevent "gitlab.com/souqly/auth-backend/internal/application/mail/event"
	"gitlab.com/souqly/auth-backend/internal/application/passwordreset"
	"gitlab.com/souqly/auth-backend/internal/application/registration"
	"gitlab.com/souqly/auth-backend/internal/domain/account"
	httpport "gitlab.com/souqly/auth-backend/internal/ports/http"
	watermillport "gitlab.com/souqly/auth-backend/internal/ports/watermill"
	"gitlab.com/souqly/auth-backend/pkg/cryptox"
	"gitlab.com/souqly/auth-backend/pkg/env"
	"gitlab.com/souqly/auth-backend/pkg/httpx"
	"gitlab.com/souqly/auth-backend/pkg/logging"
	pgpkg "gitlab.com/souqly/auth-backend/pkg/postgres"
	"gitlab.com/souqly/auth-backend/pkg/watermillx"
)

// Application holds all the application dependencies
type Application struct {
	Registration  *registration.App
	PasswordReset *passwordreset.App
	Account       *accountapp.App
	Auth          *authapp.App
	Mail          *mailapp.App
	Sessions      *authapp.SessionIssuer
}

type Repositories struct {
	Account      *postgres.AccountRepo
	Verification *postgres.VerificationRepo
}

func main() {
	if err := run(); err != nil {
		slog.Error("souqly auth exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	env.SetMode(config.Mode)
	logging.Setup(os.Stdout, config.Mode, serviceName)

	shutdownOTel, err := setupOTelSDK(ctx, config.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up OpenTelemetry SDK: %w", err)
	}
	defer func() {
		if err := shutdownOTel(context.WithoutCancel(ctx)); err != nil {
			slog.ErrorContext(ctx, "Failed to shutdown OpenTelemetry SDK", "error", err)
		}
	}()

	slog.InfoContext(ctx, "Starting souqly auth API server",
		"mode", config.Mode,
		"port", config.Port,
	)

	pool, err := setupDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	repos := setupRepositories(pool)

	if err := bootstrapAdmin(ctx, config, repos.Account); err != nil {
		return err
	}

	documents, err := setupDocumentStore(ctx, config)
	if err != nil {
		return err
	}

	apps, err := setupApplications(config, repos)
	if err != nil {
		return err
	}

	eventRouter, err := setupEventProcessing(ctx, pool, apps)
	if err != nil {
		return err
	}
	go func() {
		if err := eventRouter.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "Event router stopped", "error", err)
			stop()
		}
	}()
	defer func() {
		if err := eventRouter.Close(); err != nil {
			slog.ErrorContext(ctx, "Failed to close event router", "error", err)
		}
	}()

	errhandler, err := httpx.NewErrorHandler()
	if err != nil {
		return fmt.Errorf("failed to create error handler: %w", err)
	}
	httpServer := setupHTTPServer(config, apps, documents, errhandler)

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting HTTP server", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	slog.InfoContext(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.InfoContext(ctx, "Server exited")
	return nil
}

func setupDatabase(ctx context.Context, config *Config) (*pgxpool.Pool, error) {
	pool, err := pgpkg.NewPgxPool(ctx, config.PgDSN, config.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	migrateDSN := config.PgDSN
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(migrateDSN, prefix) {
			migrateDSN = "pgx://" + strings.TrimPrefix(migrateDSN, prefix)
			break
		}
	}

	if err := pgpkg.Migrate(migrateDSN, authbackend.Migrations); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return pool, nil
}

func setupRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Account:      postgres.NewAccountRepo(pool, nil, nil),
		Verification: postgres.NewVerificationRepo(pool, nil, nil),
	}
}

// bootstrapAdmin creates the configured administrator when the store has none.
// Admins cannot sign up through the public API.
func bootstrapAdmin(ctx context.Context, config *Config, repo *postgres.AccountRepo) error {
	admins, err := repo.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}

	if config.InitialAdmin == nil || admins > 0 {
		slog.InfoContext(ctx, "Skipping initial admin creation",
			"admins", admins, "initialAdminConfigured", config.InitialAdmin != nil)
		return nil
	}

	hash, err := account.HashPassword(config.InitialAdmin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin, err := account.NewAdmin(account.NewAdminArgs{
		ID:        account.NewID(),
		Email:     strings.ToLower(strings.TrimSpace(config.InitialAdmin.Email)),
		FirstName: config.InitialAdmin.FirstName,
		LastName:  config.InitialAdmin.LastName,
		PassHash:  hash,
		Now:       time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to create initial admin: %w", err)
	}
	if err := repo.SaveAccount(ctx, admin); err != nil {
		return fmt.Errorf("failed to save initial admin: %w", err)
	}

	slog.InfoContext(ctx, "Initial admin created", "email", logging.RedactEmail(config.InitialAdmin.Email))
	return nil
}

func setupDocumentStore(ctx context.Context, config *Config) (*s3.DocumentStore, error) {
	client, err := s3.NewClient(ctx, s3.ClientArgs{
		Endpoint:      config.S3.Endpoint,
		AccessKey:     config.S3.AccessKey,
		SecretKey:     config.S3.SecretKey,
		Bucket:        config.S3.Bucket,
		Region:        config.S3.Region,
		PublicBaseURL: config.S3.PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	if err := client.CreateBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket %q: %w", client.Bucket(), err)
	}

	return s3.NewDocumentStore(s3.DocumentStoreArgs{Client: client}), nil
}

func setupMailSender(config *Config) mailevent.MailSender {
	if config.SMTP.Host == "" || config.Mode == env.Test || config.Mode == env.Local {
		slog.Info("SMTP not configured, mail is written to the log", "mode", config.Mode)
		return mailsvc.NewLogSender(slog.Default())
	}

	return mailsvc.NewSMTPSender(mailsvc.SMTPArgs{
		Host:     config.SMTP.Host,
		Port:     config.SMTP.Port,
		Username: config.SMTP.Username,
		Password: config.SMTP.Password,
		From:     config.SMTP.From,
	})
}

func setupApplications(config *Config, repos *Repositories) (*Application, error) {
	sessions, err := authapp.NewSessionIssuer(authapp.SessionIssuerArgs{
		SecretKey: config.JWTSecret,
		TTL:       config.JWTTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session issuer: %w", err)
	}

	sealer, err := cryptox.NewSealer(config.NotificationTokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification token sealer: %w", err)
	}

	sender := setupMailSender(config)

	return &Application{
		Registration: registration.NewApp(registration.Args{
			VerificationRepo: repos.Verification,
			AccountRepo:      repos.Account,
			MailSender:       sender,
			SessionIssuer:    sessions,
			MailTimeout:      config.MailTimeout,
		}),
		PasswordReset: passwordreset.NewApp(passwordreset.Args{
			VerificationRepo: repos.Verification,
			AccountRepo:      repos.Account,
			MailSender:       sender,
			SessionIssuer:    sessions,
			MailTimeout:      config.MailTimeout,
		}),
		Account: accountapp.NewApp(accountapp.Args{
			AccountRepo: repos.Account,
			TokenSealer: sealer,
		}),
		Auth: authapp.NewApp(authapp.Args{
			AccountGetter: repos.Account,
			SessionIssuer: sessions,
		}),
		Mail: mailapp.NewApp(mailapp.Args{
			Mailsender: sender,
		}),
		Sessions: sessions,
	}, nil
}

func setupEventProcessing(ctx context.Context, pool *pgxpool.Pool, apps *Application) (*message.Router, error) {
	wlogger := watermillx.NewOTelFilteredSlogLogger(slog.Default(), slog.LevelInfo)

	router, err := message.NewRouter(message.RouterConfig{}, wlogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	if err := watermillx.InitializeEventSchema(ctx, pool, wlogger); err != nil {
		return nil, fmt.Errorf("failed to initialize event schema: %w", err)
	}

	wmport, err := watermillport.NewPort(router, pool, wlogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill port: %w", err)
	}
	if err := wmport.Register(watermillport.AppEventHandlers{Mail: apps.Mail.Event}); err != nil {
		return nil, fmt.Errorf("failed to register event handlers: %w", err)
	}

	slog.InfoContext(ctx, "Event processing setup completed")
	return router, nil
}

func setupHTTPServer(config *Config, apps *Application, documents *s3.DocumentStore, errhandler *httpx.ErrorHandler) *http.Server {
	router := chi.NewRouter()

	if config.Mode == env.Dev || config.Mode == env.Local {
		router.Use(devCORS)
	}

	httpport.NewPort(httpport.Args{
		AuthApp:       apps.Auth,
		Registration:  apps.Registration,
		PasswordReset: apps.PasswordReset,
		AccountApp:    apps.Account,
		Documents:     documents,
		TokenParser:   apps.Sessions,
		Errhandler:    errhandler,
	}).Route(router)

	return &http.Server{
		Addr:              ":" + config.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var devOrigins = map[string]bool{
	"http://localhost:3000": true,
	"http://localhost:5173": true,
	"http://127.0.0.1:3000": true,
	"http://127.0.0.1:5173": true,
	"null":                  true,
}

func devCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); devOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
